package context

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	previewGenerationKey
)

// WithRequestID stores the request correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithPreviewGeneration stores the generation a preview request was issued for.
func WithPreviewGeneration(ctx context.Context, generation string) context.Context {
	return context.WithValue(ctx, previewGenerationKey, generation)
}

func PreviewGenerationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(previewGenerationKey).(string)
	return v
}
