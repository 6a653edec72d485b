package generation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/observability"
)

const (
	// DefaultInterval is used when a policy leaves Interval unset.
	DefaultInterval = 2 * time.Second
	// DefaultDeadline bounds every poll whose policy leaves Deadline unset.
	DefaultDeadline = 5 * time.Minute
	// DefaultMaxCheckErrors allows one failed check to be retried.
	DefaultMaxCheckErrors = 2
)

// PollPolicy controls the cadence and bounds of a poll.
type PollPolicy struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	Deadline time.Duration `yaml:"deadline" mapstructure:"deadline"`

	// MaxCheckErrors is the number of consecutive failed checks that ends
	// the poll with INVALID_RESPONSE.
	MaxCheckErrors int `yaml:"max_check_errors" mapstructure:"max_check_errors"`
}

// WithDefaults returns a copy with zero fields replaced by the defaults.
func (p PollPolicy) WithDefaults() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.Deadline <= 0 {
		p.Deadline = DefaultDeadline
	}
	if p.MaxCheckErrors <= 0 {
		p.MaxCheckErrors = DefaultMaxCheckErrors
	}
	return p
}

// CheckFunc performs one status check.
type CheckFunc func(ctx context.Context) (JobStatus, error)

// Poller repeatedly checks a job until it is terminal, the deadline passes,
// or the caller cancels.
type Poller struct {
	name    string
	policy  PollPolicy
	log     *logger.Logger
	metrics *observability.Metrics
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollLogger sets the logger used for per-check debug lines.
func WithPollLogger(l *logger.Logger) PollerOption {
	return func(p *Poller) { p.log = l }
}

// WithPollMetrics records every check in poll.checks.
func WithPollMetrics(m *observability.Metrics) PollerOption {
	return func(p *Poller) { p.metrics = m }
}

// NewPoller creates a poller for the named provider.
func NewPoller(name string, policy PollPolicy, opts ...PollerOption) *Poller {
	p := &Poller{name: name, policy: policy.WithDefaults(), log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the effective policy.
func (p *Poller) Policy() PollPolicy {
	return p.policy
}

// Await polls with a throwaway Poller.
func Await(ctx context.Context, check CheckFunc, policy PollPolicy) (JobStatus, error) {
	return NewPoller("job", policy).Await(ctx, check)
}

// Await runs check immediately and then once per interval until it reports a
// terminal status. Waiting is a timer selected against ctx, so cancellation
// returns without another check. The last wait is shortened so the final
// check lands on the deadline.
func (p *Poller) Await(ctx context.Context, check CheckFunc) (JobStatus, error) {
	start := time.Now()
	deadline := start.Add(p.policy.Deadline)

	// Checks in flight at the deadline get one interval of grace.
	checkCtx, cancel := context.WithDeadline(ctx, deadline.Add(p.policy.Interval))
	defer cancel()

	timer := time.NewTimer(p.policy.Interval)
	timer.Stop()
	defer timer.Stop()

	log := p.log.WithContext(ctx)
	checks, failures := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return JobStatus{}, p.interrupted(err, checks)
		}

		status, err := check(checkCtx)
		checks++
		switch {
		case err != nil && ctx.Err() != nil:
			return JobStatus{}, p.interrupted(ctx.Err(), checks)
		case err != nil && checkCtx.Err() != nil:
			return JobStatus{}, p.timeout(checks)
		case err != nil:
			failures++
			p.metrics.RecordPollCheck(ctx, p.name, "error")
			log.Warn("status check failed", logger.Fields(
				logger.FieldProvider, p.name,
				logger.FieldAttempt, checks,
				logger.FieldError, err.Error(),
			))
			if failures >= p.policy.MaxCheckErrors {
				return JobStatus{}, errors.InvalidResponse(
					fmt.Sprintf("%s: status check failed %d times in a row: %v", p.name, failures, err),
				).WithCause(err).WithDetail("checks", checks)
			}
		default:
			failures = 0
			p.metrics.RecordPollCheck(ctx, p.name, string(status.State))
			observability.AddSpanEvent(ctx, "poll.check",
				attribute.String(observability.AttrJobState, string(status.State)),
				attribute.Int("attempt", checks),
			)
			log.Debug("status checked", logger.Fields(
				logger.FieldProvider, p.name,
				logger.FieldAttempt, checks,
				logger.FieldState, string(status.State),
			))
			if status.IsTerminal() {
				return status, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return JobStatus{}, p.timeout(checks)
		}
		timer.Reset(min(p.policy.Interval, remaining))
		select {
		case <-ctx.Done():
			return JobStatus{}, p.interrupted(ctx.Err(), checks)
		case <-timer.C:
		}
	}
}

func (p *Poller) timeout(checks int) error {
	err := errors.Timeout(p.name + " poll")
	err.Message = fmt.Sprintf("%s after %d checks", err.Message, checks)
	return err.WithDetail("checks", checks).WithDetail("deadline", p.policy.Deadline.String())
}

func (p *Poller) interrupted(cause error, checks int) error {
	return errors.Classify(cause).WithDetail("checks", checks)
}
