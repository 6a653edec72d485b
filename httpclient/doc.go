// Package httpclient is the HTTP transport shared by the generation backends.
//
// A Client resolves paths against a base URL, applies default headers and
// authentication, optionally rate-limits outbound calls, and classifies every
// non-2xx status or transport failure into an *Error. *Error implements
// AppError, so errors.Classify maps it onto the generation failure reasons:
// 401/403 become AUTH_ERROR, deadlines become TIMEOUT, everything else
// becomes UPSTREAM_ERROR with the HTTP status attached.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Service: "stability",
//	    BaseURL: "https://api.stability.ai",
//	    Auth:    httpclient.BearerAuth(key),
//	})
//	resp, err := httpclient.Post[stabilityResponse](client, ctx, "/v1/generation/sdxl/text-to-image", body)
package httpclient
