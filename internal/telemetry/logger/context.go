package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "modi.logger"
	// bootIDKey is the context key for boot ID.
	bootIDKey contextKey = "modi.boot_id"
	// componentKey is the context key for component.
	componentKey contextKey = "modi.component"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithBootID adds a boot ID to the context.
func WithBootID(ctx context.Context, bootID string) context.Context {
	return context.WithValue(ctx, bootIDKey, bootID)
}

// BootIDFromContext extracts the boot ID from context.
func BootIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(bootIDKey).(string); ok {
		return id
	}
	return ""
}

// WithComponent adds a component to the context.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext extracts the component from context.
func ComponentFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(componentKey).(string); ok {
		return id
	}
	return ""
}

// L returns the context's logger bound to ctx, so its records carry the
// boot ID and component stored there.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
