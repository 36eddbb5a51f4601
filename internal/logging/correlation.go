package logging

import "context"

// correlationIDKey is the context key under which a request's correlation ID
// travels. It lives here rather than in the HTTP layer so services and tests
// can read it without importing the middleware.
const correlationIDKey = "correlation_id"

// WithCorrelationID attaches a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID retrieves the correlation ID from the context, or "" when
// none is set.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
