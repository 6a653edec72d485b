// Package provider implements a generic provider framework for swappable
// backends.
//
// A Registry holds live instances by name. RequestResponse[I, O]
// is the single interaction pattern: one input, one output. Middleware wraps a
// RequestResponse with cross-cutting behavior and Chain composes them:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out]("mediagen", metrics),
//	    provider.WithTracing[In, Out]("mediagen"),
//	    provider.WithRecovery[In, Out](),
//	)(raw)
//
// The first middleware is outermost. Keep WithRecovery innermost so the
// other middleware observe a recovered panic as an ordinary error.
package provider
