package logging

import "context"

type contextKey string

const (
	workerKey    contextKey = "worker"
	operationKey contextKey = "operation"
)

// WithWorker adds a worker identity to the context.
func WithWorker(ctx context.Context, worker string) context.Context {
	return context.WithValue(ctx, workerKey, worker)
}

// WithOperation adds the name of the running operation to the context.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// GetWorker retrieves the worker identity from the context.
// Returns empty string if not present.
func GetWorker(ctx context.Context) string {
	if w, ok := ctx.Value(workerKey).(string); ok {
		return w
	}
	return ""
}

// GetOperation retrieves the operation name from the context.
// Returns empty string if not present.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}
