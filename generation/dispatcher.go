package generation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/observability"
	"github.com/fxgurv/ALONE/provider"
	"github.com/fxgurv/ALONE/validation"
)

// ProviderInfo describes one registered generator.
type ProviderInfo struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Models    []string `json:"models"`
	Available bool     `json:"available"`
}

// route pairs a generator with its middleware-wrapped executor.
type route struct {
	gen  Generator
	exec provider.RequestResponse[Request, Result]
}

func (r *route) Name() string                         { return r.gen.Name() }
func (r *route) IsAvailable(ctx context.Context) bool { return r.gen.IsAvailable(ctx) }

// Dispatcher routes requests to registered generators by provider id. It is
// built once at startup; Dispatch is safe for concurrent use.
type Dispatcher struct {
	service string
	routes  *provider.Registry[*route]
	log     *logger.Logger
	metrics *observability.Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the dispatcher logger.
func WithDispatchLogger(l *logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// WithDispatchMetrics records per-request operation metrics.
func WithDispatchMetrics(m *observability.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithServiceName sets the name used for spans and metric attributes.
func WithServiceName(name string) DispatcherOption {
	return func(d *Dispatcher) { d.service = name }
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		service: "mediagen",
		routes:  provider.NewRegistry[*route](),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds g under its name, replacing any generator with the same name.
// Registration must finish before the first Dispatch.
func (d *Dispatcher) Register(g Generator) {
	exec := provider.Chain(
		provider.WithLogging[Request, Result](d.log),
		provider.WithTracing[Request, Result](d.service),
		provider.WithMetrics[Request, Result](d.service, d.metrics),
		provider.WithRecovery[Request, Result](),
	)(g)
	d.routes.Set(g.Name(), &route{gen: g, exec: exec})
}

// Lookup returns the generator registered under id.
func (d *Dispatcher) Lookup(id string) (Generator, bool) {
	r, ok := d.routes.Get(id)
	if !ok {
		return nil, false
	}
	return r.gen, true
}

// Providers lists registered generators sorted by id.
func (d *Dispatcher) Providers(ctx context.Context) []ProviderInfo {
	ids := d.routes.Instances()
	infos := make([]ProviderInfo, 0, len(ids))
	for _, id := range ids {
		r, _ := d.routes.Get(id)
		infos = append(infos, ProviderInfo{
			ID:        id,
			Kind:      r.gen.Kind(),
			Models:    r.gen.Models(),
			Available: r.gen.IsAvailable(ctx),
		})
	}
	return infos
}

// Dispatch validates req, selects its generator and returns exactly one
// Result. It never returns an error and never panics on provider failure.
// An unknown provider id fails with INVALID_RESPONSE before any network call.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	start := time.Now()
	if logger.RequestIDFromContext(ctx) == "" {
		ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
	}

	res := d.dispatch(ctx, req)
	res.Provider = req.ProviderID
	res.Duration = time.Since(start)
	if res.Failure != nil {
		res.FilePath = ""
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Result {
	if err := validation.Validate(req); err != nil {
		return d.reject(ctx, req, err)
	}
	r, ok := d.routes.Get(req.ProviderID)
	if !ok {
		return d.reject(ctx, req, errors.UnknownProvider(req.ProviderID))
	}
	res, err := r.exec.Execute(ctx, req)
	if err != nil && res.Failure == nil {
		res = Failed(req.ProviderID, err)
	}
	return res
}

// reject fails a request that never reached a generator.
func (d *Dispatcher) reject(ctx context.Context, req Request, err error) Result {
	res := Failed(req.ProviderID, err)
	d.metrics.RecordError(ctx, string(res.Failure.Code), "dispatcher")
	d.log.WithContext(ctx).Warn("request rejected", logger.Fields(
		logger.FieldProvider, req.ProviderID,
		logger.FieldReason, res.Failure.Reason(),
		logger.FieldError, res.Failure.Error(),
	))
	return res
}
