package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts worker and operation from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if worker := GetWorker(ctx); worker != "" {
		e.Str("worker", worker)
	}

	if op := GetOperation(ctx); op != "" {
		e.Str("operation", op)
	}
}
