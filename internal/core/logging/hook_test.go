package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "both worker and operation",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithWorker(ctx, "w-123")
				ctx = WithOperation(ctx, "todo.update")
				return ctx
			},
			wantKeys: []string{"worker", "operation"},
		},
		{
			name: "only worker",
			setupCtx: func() context.Context {
				return WithWorker(context.Background(), "w-123")
			},
			wantKeys:  []string{"worker"},
			wantEmpty: []string{"operation"},
		},
		{
			name: "only operation",
			setupCtx: func() context.Context {
				return WithOperation(context.Background(), "todo.update")
			},
			wantKeys:  []string{"operation"},
			wantEmpty: []string{"worker"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"worker", "operation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
