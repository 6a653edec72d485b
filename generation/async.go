package generation

import (
	"context"
	"strings"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/logger"
)

// AsyncJob adapts a backend that returns a job handle. The handle is polled
// until terminal, then the artifact is fetched and written.
type AsyncJob struct {
	backend JobBackend
	policy  PollPolicy
	adapter
}

// NewAsyncJob wraps backend with the given poll policy. writer must not be nil.
func NewAsyncJob(backend JobBackend, writer artifact.Writer, policy PollPolicy, opts ...Option) *AsyncJob {
	return &AsyncJob{backend: backend, policy: policy.WithDefaults(), adapter: newAdapter(writer, opts)}
}

func (a *AsyncJob) Name() string                         { return a.backend.Name() }
func (a *AsyncJob) IsAvailable(ctx context.Context) bool { return a.backend.IsAvailable(ctx) }
func (a *AsyncJob) Kind() Kind                           { return KindAsyncJob }
func (a *AsyncJob) Models() []string                     { return catalog(a.backend) }

// Policy returns the effective poll policy.
func (a *AsyncJob) Policy() PollPolicy { return a.policy }

// Execute submits the job, waits for a terminal status and writes the
// artifact. The job handle never outlives this call.
func (a *AsyncJob) Execute(ctx context.Context, req Request) (Result, error) {
	name := a.Name()
	if err := a.checkDestination(req.DestinationPath); err != nil {
		return fail(name, err)
	}
	if err := checkCredentials(a.backend); err != nil {
		return fail(name, err)
	}

	job, err := a.backend.Submit(ctx, req)
	if err != nil {
		return fail(name, err)
	}
	if strings.TrimSpace(job.ID) == "" {
		return fail(name, errors.InvalidResponse(name+": submission returned no job id"))
	}
	log := a.log.WithContext(ctx)
	log.Info("job submitted", logger.Fields(logger.FieldProvider, name, logger.FieldJobID, job.ID))

	poller := NewPoller(name, a.policy, WithPollLogger(a.log), WithPollMetrics(a.metrics))
	status, err := poller.Await(ctx, func(ctx context.Context) (JobStatus, error) {
		return a.backend.Check(ctx, job)
	})
	if err != nil {
		return a.failJob(name, job, errors.Classify(err))
	}
	if status.State == StateFailed {
		detail := status.Detail
		if detail == "" {
			detail = "job failed"
		}
		return a.failJob(name, job, errors.Upstream(name, 0, detail))
	}

	art, err := a.backend.Fetch(ctx, status)
	if err != nil {
		return a.failJob(name, job, errors.Classify(err))
	}
	res, err := a.store(ctx, name, req.DestinationPath, art)
	res.JobID = job.ID
	return res, err
}

func (a *AsyncJob) failJob(name string, job JobHandle, err *errors.AppError) (Result, error) {
	res, _ := fail(name, err.WithDetail("job_id", job.ID))
	res.JobID = job.ID
	return res, res.Failure
}

var _ Generator = (*AsyncJob)(nil)
