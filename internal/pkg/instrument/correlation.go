package instrument

import "context"

type correlationKey struct{}

// SetCorrelationID stores the request correlation id for log enrichment.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored by SetCorrelationID, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// DetachedContext keeps the values of parent (correlation id, active span) but
// drops its deadline and cancellation, for work that outlives the request.
func DetachedContext(parent context.Context) context.Context {
	if parent == nil {
		return context.Background()
	}
	return context.WithoutCancel(parent)
}
