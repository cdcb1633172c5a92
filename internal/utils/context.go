package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// ClaimsKey is the context key used for storing JWT claims in a request context.
var ClaimsKey = &contextKey{"claims"}

// TraceIdKey is the context key used for the per-request trace id.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey is the context key for the validated request body.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}

// SessionKey is the context key for the resolved user session.
var SessionKey = &contextKey{"session"}
