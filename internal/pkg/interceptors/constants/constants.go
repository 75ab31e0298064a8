// Package constants names the headers and context keys shared by the
// flight services and their gRPC interceptors.
package constants

type contextKey string

// gRPC metadata keys are lower case; HTTP handlers canonicalise them.
const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"

	// HeaderXPricingDegraded carries the number of search results priced
	// from the base-fare fallback.
	HeaderXPricingDegraded = "X-Pricing-Degraded"
)

const (
	ContextKeyRequestID      contextKey = HeaderXRequestId
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)
