package analyzer

import "context"

type requestIDKey struct{}

// WithRequestID tags ctx so the analysis logs can be tied back to the HTTP
// request that started them.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
