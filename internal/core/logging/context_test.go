package logging

import (
	"context"
	"testing"
)

func TestWithWorker(t *testing.T) {
	ctx := context.Background()
	worker := "w-test"

	ctx = WithWorker(ctx, worker)
	got := GetWorker(ctx)

	if got != worker {
		t.Errorf("GetWorker() = %q, want %q", got, worker)
	}
}

func TestWithOperation(t *testing.T) {
	ctx := context.Background()
	op := "test-todo.update"

	ctx = WithOperation(ctx, op)
	got := GetOperation(ctx)

	if got != op {
		t.Errorf("GetOperation() = %q, want %q", got, op)
	}
}

func TestGetWorker_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetWorker(ctx)

	if got != "" {
		t.Errorf("GetWorker() = %q, want empty string", got)
	}
}

func TestGetOperation_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetOperation(ctx)

	if got != "" {
		t.Errorf("GetOperation() = %q, want empty string", got)
	}
}

func TestBothIDs(t *testing.T) {
	ctx := context.Background()
	worker := "w-1"
	op := "todo.show"

	ctx = WithWorker(ctx, worker)
	ctx = WithOperation(ctx, op)

	if got := GetWorker(ctx); got != worker {
		t.Errorf("GetWorker() = %q, want %q", got, worker)
	}

	if got := GetOperation(ctx); got != op {
		t.Errorf("GetOperation() = %q, want %q", got, op)
	}
}
