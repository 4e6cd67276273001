package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklist/internal/core/config"
	"github.com/hay-kot/worklist/internal/core/todo"
	"github.com/hay-kot/worklist/internal/data/stores"
	"github.com/hay-kot/worklist/internal/worklist"
)

type todoHarness struct {
	flags *Flags
	app   *worklist.App
	out   bytes.Buffer
	err   bytes.Buffer
}

func newTodoHarness(t *testing.T) *todoHarness {
	t.Helper()

	store := stores.NewMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)
	todos := worklist.New(store, "default", zerolog.Nop(), worklist.WithClock(func() time.Time { return now }))

	return &todoHarness{
		flags: &Flags{},
		app:   worklist.NewApp(nil, todos, store, nil),
	}
}

func (h *todoHarness) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.err.Reset()

	cmd := NewTodoCmd(h.flags, h.app)
	if stdin != "" {
		cmd.batchInput.Stdin = strings.NewReader(stdin)
	}

	app := &cli.Command{
		Name:      "worklist",
		Writer:    &h.out,
		ErrWriter: &h.err,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "worker", Destination: &h.flags.Worker},
		},
	}
	app = cmd.Register(app)

	return app.Run(context.Background(), append([]string{"worklist"}, args...))
}

func TestTodoCmd_InitAndShow(t *testing.T) {
	h := newTodoHarness(t)

	require.NoError(t, h.run(t, "", "todo", "init", "Write tests", "Fix bug"))
	want := "## Todo List\n- id:task-1 (pending) Write tests\n- id:task-2 (pending) Fix bug\n"
	assert.Equal(t, want, h.out.String())

	require.NoError(t, h.run(t, "", "todo", "show"))
	assert.Equal(t, want, h.out.String())
}

func TestTodoCmd_InitRequiresArgs(t *testing.T) {
	h := newTodoHarness(t)

	err := h.run(t, "", "todo", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}

func TestTodoCmd_ShowEmpty(t *testing.T) {
	h := newTodoHarness(t)

	require.NoError(t, h.run(t, "", "todo", "show"))
	assert.Empty(t, h.out.String())

	// Pretty output falls back to plain text when not writing to a terminal.
	require.NoError(t, h.run(t, "", "todo", "init", "a"))
	require.NoError(t, h.run(t, "", "todo", "show", "--pretty"))
	assert.Equal(t, "## Todo List\n- id:task-1 (pending) a\n", h.out.String())
}

func TestTodoCmd_ShowJSON(t *testing.T) {
	h := newTodoHarness(t)

	require.NoError(t, h.run(t, "", "todo", "show", "--json"))
	assert.Equal(t, "null\n", h.out.String())

	require.NoError(t, h.run(t, "", "todo", "init", "a"))
	require.NoError(t, h.run(t, "", "todo", "show", "--json"))
	assert.Contains(t, h.out.String(), `"id": "task-1"`)
	assert.Contains(t, h.out.String(), `"lastUpdated": 1700000000000`)
}

func TestTodoCmd_Update(t *testing.T) {
	h := newTodoHarness(t)
	require.NoError(t, h.run(t, "", "todo", "init", "a", "b"))

	require.NoError(t, h.run(t, "", "todo", "update", "task-2", "--status", "in_progress", "--description", "B"))
	assert.Equal(t, "## Todo List\n- id:task-1 (pending) a\n- id:task-2 (in_progress) B\n", h.out.String())
}

func TestTodoCmd_UpdateRejected(t *testing.T) {
	h := newTodoHarness(t)
	require.NoError(t, h.run(t, "", "todo", "init", "a"))

	err := h.run(t, "", "todo", "update", "task-9", "--status", "completed")
	require.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, h.out.String())
	assert.Contains(t, h.err.String(), `"message":"Task id task-9 was not found."`)
	assert.Contains(t, h.err.String(), `"current"`)
}

func TestTodoCmd_UpdateNoList(t *testing.T) {
	h := newTodoHarness(t)

	err := h.run(t, "", "todo", "update", "task-1", "--status", "completed")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, h.err.String(), todo.MsgNoList)
	assert.NotContains(t, h.err.String(), `"current"`)
}

func TestTodoCmd_UpdateInvalidStatus(t *testing.T) {
	h := newTodoHarness(t)
	require.NoError(t, h.run(t, "", "todo", "init", "a"))

	err := h.run(t, "", "todo", "update", "task-1", "--status", "done")
	require.ErrorIs(t, err, todo.ErrInvalidStatus)
}

func TestTodoCmd_Batch(t *testing.T) {
	h := newTodoHarness(t)
	require.NoError(t, h.run(t, "", "todo", "init", "a", "b"))

	input := `[{"id":"task-1","status":"completed"},{"id":"task-2","status":"in_progress"}]`
	require.NoError(t, h.run(t, input, "todo", "batch"))
	assert.Equal(t, "## Todo List\n- id:task-1 (completed) a\n- id:task-2 (in_progress) b\n", h.out.String())
}

func TestTodoCmd_BatchFromFile(t *testing.T) {
	h := newTodoHarness(t)
	require.NoError(t, h.run(t, "", "todo", "init", "a"))

	path := filepath.Join(t.TempDir(), "updates.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"task-1","status":"completed","description":"A"}]`), 0o644))

	require.NoError(t, h.run(t, "", "todo", "batch", "-f", path))
	assert.Equal(t, "## Todo List\n- id:task-1 (completed) A\n", h.out.String())
}

func TestTodoCmd_BatchTooManyInProgress(t *testing.T) {
	h := newTodoHarness(t)
	require.NoError(t, h.run(t, "", "todo", "init", "a", "b"))

	input := `[{"id":"task-1","status":"in_progress"},{"id":"task-2","status":"in_progress"}]`
	err := h.run(t, input, "todo", "batch")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, h.err.String(), todo.MsgTooManyInProgress)

	require.NoError(t, h.run(t, "", "todo", "show"))
	assert.Equal(t, "## Todo List\n- id:task-1 (pending) a\n- id:task-2 (pending) b\n", h.out.String())
}

func TestTodoCmd_BatchInvalidJSON(t *testing.T) {
	h := newTodoHarness(t)

	err := h.run(t, "{not json", "todo", "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

func TestTodoCmd_WorkerFlag(t *testing.T) {
	h := newTodoHarness(t)

	require.NoError(t, h.run(t, "", "--worker", "alpha", "todo", "init", "a"))
	require.NoError(t, h.run(t, "", "--worker", "beta", "todo", "init", "b"))

	require.NoError(t, h.run(t, "", "--worker", "", "todo", "show"))
	assert.Empty(t, h.out.String())

	require.NoError(t, h.run(t, "", "--worker", "beta", "todo", "show"))
	assert.Equal(t, "## Todo List\n- id:task-1 (pending) b\n", h.out.String())

	require.NoError(t, h.run(t, "", "todo", "workers"))
	assert.Equal(t, "alpha\nbeta\n", h.out.String())
}

func TestTodoCmd_BlankWorkerRejected(t *testing.T) {
	h := newTodoHarness(t)

	err := h.run(t, "", "--worker", "  ", "todo", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker is required")
}

func TestTodoCmd_WatchRequiresSQLite(t *testing.T) {
	h := newTodoHarness(t)
	cfg := config.DefaultConfig()
	cfg.Store = config.StoreMemory
	h.app.Config = &cfg

	err := h.run(t, "", "todo", "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires the sqlite store")
}
