package provider

import "context"

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable reports whether the provider can take requests right now,
	// e.g. its credentials are configured. It must not perform network calls.
	IsAvailable(ctx context.Context) bool
}
