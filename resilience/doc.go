// Package resilience provides outbound call pacing.
//
// RateLimiter is a token bucket used to keep a provider's submission, status
// and download calls within its published request rate. Waiting is
// cancellable through the caller's context.
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: "prodia", Rate: 2, Burst: 2})
//	if err := rl.Wait(ctx); err != nil {
//	    return err
//	}
package resilience
