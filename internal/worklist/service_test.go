package worklist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/worklist/internal/core/eventbus"
	"github.com/hay-kot/worklist/internal/core/eventbus/testbus"
	"github.com/hay-kot/worklist/internal/core/metadata"
	"github.com/hay-kot/worklist/internal/core/todo"
	"github.com/hay-kot/worklist/internal/data/db"
	"github.com/hay-kot/worklist/internal/data/stores"
)

const testWorker = "worker-1"

// stepClock returns a clock that advances one second on every call.
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

func newTestService(t *testing.T, store metadata.Store, opts ...Option) *TodoListStore {
	t.Helper()
	opts = append([]Option{WithClock(stepClock(time.UnixMilli(1_700_000_000_000)))}, opts...)
	return New(store, testWorker, zerolog.Nop(), opts...)
}

func newSQLiteStore(t *testing.T) *stores.MetadataStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewMetadataStore(database)
}

func ptr(s string) *string { return &s }

func requireUpdated(t *testing.T, res todo.Result) todo.List {
	t.Helper()
	updated, ok := res.(todo.Updated)
	require.Truef(t, ok, "expected todo.Updated, got %#v", res)
	return updated.List
}

func requireRejected(t *testing.T, res todo.Result) todo.Rejected {
	t.Helper()
	rejected, ok := res.(todo.Rejected)
	require.Truef(t, ok, "expected todo.Rejected, got %#v", res)
	return rejected
}

func TestTodoListStore_Initialize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	list, err := svc.Initialize(ctx, "", []string{"plan", "build", "verify"})
	require.NoError(t, err)

	require.Len(t, list.Items, 3)
	for i, item := range list.Items {
		assert.Equal(t, todo.ItemID(i), item.ID)
		assert.Equal(t, todo.StatusPending, item.Status)
		assert.Equal(t, item.CreatedAt, item.UpdatedAt)
		assert.Equal(t, list.LastUpdated, item.CreatedAt)
	}

	stored, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, list, *stored)
}

func TestTodoListStore_InitializeReplaces(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a", "b", "c"})
	require.NoError(t, err)

	_, err = svc.Initialize(ctx, testWorker, []string{"only"})
	require.NoError(t, err)

	stored, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "only", stored.Items[0].Description)
	assert.Equal(t, "task-1", stored.Items[0].ID)
}

func TestTodoListStore_GetList(t *testing.T) {
	ctx := context.Background()

	t.Run("missing list is nil", func(t *testing.T) {
		svc := newTestService(t, stores.NewMemoryStore())

		list, err := svc.GetList(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, list)
	})

	t.Run("document without items is nil", func(t *testing.T) {
		store := stores.NewMemoryStore()
		require.NoError(t, store.Write(ctx, testWorker, TodoListKey, map[string]any{"lastUpdated": 5}))
		svc := newTestService(t, store)

		list, err := svc.GetList(ctx, testWorker)
		require.NoError(t, err)
		assert.Nil(t, list)
	})

	t.Run("items that are not an array are nil", func(t *testing.T) {
		store := stores.NewMemoryStore()
		require.NoError(t, store.Write(ctx, testWorker, TodoListKey, map[string]any{"items": "nope"}))
		svc := newTestService(t, store)

		list, err := svc.GetList(ctx, testWorker)
		require.NoError(t, err)
		assert.Nil(t, list)
	})

	t.Run("workers are isolated", func(t *testing.T) {
		svc := newTestService(t, stores.NewMemoryStore())

		_, err := svc.Initialize(ctx, "alpha", []string{"a"})
		require.NoError(t, err)

		list, err := svc.GetList(ctx, "beta")
		require.NoError(t, err)
		assert.Nil(t, list)
	})
}

func TestTodoListStore_SaveListVerbatim(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	// Two in-progress items: SaveList does not validate.
	list := todo.List{
		Items: []todo.Item{
			{ID: "x", Description: "one", Status: todo.StatusInProgress, CreatedAt: 1, UpdatedAt: 1},
			{ID: "y", Description: "two", Status: todo.StatusInProgress, CreatedAt: 1, UpdatedAt: 2},
		},
		LastUpdated: 2,
	}
	require.NoError(t, svc.SaveList(ctx, list, testWorker))

	got, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	assert.Equal(t, list, *got)
}

func TestTodoListStore_UpdateItem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	initial, err := svc.Initialize(ctx, testWorker, []string{"a", "b"})
	require.NoError(t, err)

	res, err := svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusInProgress, nil)
	require.NoError(t, err)
	list := requireUpdated(t, res)

	assert.Equal(t, todo.StatusInProgress, list.Items[0].Status)
	assert.Equal(t, "a", list.Items[0].Description)
	assert.Greater(t, list.Items[0].UpdatedAt, initial.Items[0].UpdatedAt)
	assert.Equal(t, initial.Items[0].CreatedAt, list.Items[0].CreatedAt)
	assert.Equal(t, initial.Items[1], list.Items[1], "untouched item is unchanged")
	assert.Equal(t, list.Items[0].UpdatedAt, list.LastUpdated)

	stored, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	assert.Equal(t, list, *stored)
}

func TestTodoListStore_UpdateItemDescription(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a"})
	require.NoError(t, err)

	res, err := svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusCompleted, ptr("a, but better"))
	require.NoError(t, err)
	list := requireUpdated(t, res)

	assert.Equal(t, "a, but better", list.Items[0].Description)
	assert.Equal(t, todo.StatusCompleted, list.Items[0].Status)
}

func TestTodoListStore_UpdateItems_Batch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a", "b", "c"})
	require.NoError(t, err)

	res, err := svc.UpdateItems(ctx, testWorker, []todo.Update{
		{ID: "task-1", Status: todo.StatusCompleted},
		{ID: "task-2", Status: todo.StatusInProgress},
	})
	require.NoError(t, err)
	list := requireUpdated(t, res)

	assert.Equal(t, todo.StatusCompleted, list.Items[0].Status)
	assert.Equal(t, todo.StatusInProgress, list.Items[1].Status)
	assert.Equal(t, todo.StatusPending, list.Items[2].Status)
	assert.Equal(t, list.Items[0].UpdatedAt, list.Items[1].UpdatedAt, "batch shares one timestamp")

	ids := []string{list.Items[0].ID, list.Items[1].ID, list.Items[2].ID}
	assert.Equal(t, []string{"task-1", "task-2", "task-3"}, ids, "order is preserved")
}

func TestTodoListStore_UpdateItems_SwapInProgressInOneBatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a", "b"})
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusInProgress, nil)
	require.NoError(t, err)

	// The invariant is checked after the whole batch is applied.
	res, err := svc.UpdateItems(ctx, testWorker, []todo.Update{
		{ID: "task-2", Status: todo.StatusInProgress},
		{ID: "task-1", Status: todo.StatusCompleted},
	})
	require.NoError(t, err)
	list := requireUpdated(t, res)

	item, ok := list.InProgress()
	require.True(t, ok)
	assert.Equal(t, "task-2", item.ID)
}

func TestTodoListStore_UpdateItems_NoList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	res, err := svc.UpdateItems(ctx, testWorker, []todo.Update{{ID: "task-1", Status: todo.StatusCompleted}})
	require.NoError(t, err)

	rejected := requireRejected(t, res)
	assert.Equal(t, "No todo list exists. Please create one first.", rejected.Reason)
	assert.Nil(t, rejected.Current)
}

func TestTodoListStore_UpdateItems_TooManyInProgress(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a", "b"})
	require.NoError(t, err)
	res, err := svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusInProgress, nil)
	require.NoError(t, err)
	before := requireUpdated(t, res)

	res, err = svc.UpdateItem(ctx, testWorker, "task-2", todo.StatusInProgress, nil)
	require.NoError(t, err)

	rejected := requireRejected(t, res)
	assert.Equal(t, "Only one task can be in progress at a time.", rejected.Reason)
	require.NotNil(t, rejected.Current)
	assert.Equal(t, before, *rejected.Current)

	stored, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	assert.Equal(t, before, *stored, "rejected batch is not persisted")
}

func TestTodoListStore_UpdateItems_UnknownIDRollsBack(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	initial, err := svc.Initialize(ctx, testWorker, []string{"a", "b"})
	require.NoError(t, err)

	res, err := svc.UpdateItems(ctx, testWorker, []todo.Update{
		{ID: "task-1", Status: todo.StatusCompleted, Description: ptr("changed")},
		{ID: "task-99", Status: todo.StatusCompleted},
	})
	require.NoError(t, err)

	rejected := requireRejected(t, res)
	assert.Equal(t, "Task id task-99 was not found.", rejected.Reason)
	require.NotNil(t, rejected.Current)
	assert.Equal(t, initial, *rejected.Current)

	stored, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	assert.Equal(t, initial, *stored, "first update in the batch is not persisted")
}

func TestTodoListStore_UpdateItems_ExactIDMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a"})
	require.NoError(t, err)

	res, err := svc.UpdateItem(ctx, testWorker, " task-1", todo.StatusCompleted, nil)
	require.NoError(t, err)
	rejected := requireRejected(t, res)
	assert.Equal(t, "Task id  task-1 was not found.", rejected.Reason)
}

func TestTodoListStore_UpdateItems_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	_, err := svc.Initialize(ctx, testWorker, []string{"a"})
	require.NoError(t, err)

	res, err := svc.UpdateItem(ctx, testWorker, "task-1", todo.Status("done"), nil)
	require.ErrorIs(t, err, todo.ErrInvalidStatus)
	assert.Nil(t, res)
}

func TestTodoListStore_UpdateItems_InvalidStatusCheckedBeforeListLookup(t *testing.T) {
	svc := newTestService(t, stores.NewMemoryStore())

	res, err := svc.UpdateItem(context.Background(), testWorker, "task-1", todo.Status("done"), nil)
	require.ErrorIs(t, err, todo.ErrInvalidStatus)
	assert.Nil(t, res)
}

type failingStore struct {
	metadata.Store
	writeErr error
}

func (f failingStore) Write(ctx context.Context, worker, key string, doc any) error {
	return f.writeErr
}

func TestTodoListStore_UpdateItems_StoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	mem := stores.NewMemoryStore()

	seed := newTestService(t, mem)
	_, err := seed.Initialize(ctx, testWorker, []string{"a"})
	require.NoError(t, err)

	boom := errors.New("disk full")
	svc := newTestService(t, failingStore{Store: mem, writeErr: boom})

	res, err := svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusCompleted, nil)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, res)
}

func TestTodoListStore_CurrentFormatted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	out, err := svc.CurrentFormatted(ctx, testWorker)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	_, err = svc.Initialize(ctx, testWorker, []string{"first", "second"})
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusInProgress, nil)
	require.NoError(t, err)

	out, err = svc.CurrentFormatted(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "## Todo List\n- id:task-1 (in_progress) first\n- id:task-2 (pending) second\n", out)
}

func TestTodoListStore_SQLite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newSQLiteStore(t))

	_, err := svc.Initialize(ctx, testWorker, []string{"a", "b"})
	require.NoError(t, err)

	res, err := svc.UpdateItems(ctx, testWorker, []todo.Update{
		{ID: "task-1", Status: todo.StatusInProgress},
		{ID: "task-2", Status: todo.StatusInProgress},
	})
	require.NoError(t, err)
	requireRejected(t, res)

	res, err = svc.UpdateItem(ctx, testWorker, "task-2", todo.StatusCompleted, nil)
	require.NoError(t, err)
	list := requireUpdated(t, res)

	stored, err := svc.GetList(ctx, testWorker)
	require.NoError(t, err)
	assert.Equal(t, list, *stored)
}

func TestTodoListStore_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	tb := testbus.New(t)
	svc := newTestService(t, stores.NewMemoryStore(), WithEventBus(tb.EventBus))

	_, err := svc.Initialize(ctx, testWorker, []string{"a"})
	require.NoError(t, err)
	tb.AssertPublished(t, eventbus.EventTodoInitialized)

	_, err = svc.UpdateItem(ctx, testWorker, "task-1", todo.StatusCompleted, nil)
	require.NoError(t, err)
	tb.AssertPublished(t, eventbus.EventTodoUpdated)

	payload, ok := tb.Last(eventbus.EventTodoUpdated)
	require.True(t, ok)
	updated := payload.(eventbus.TodoUpdatedPayload)
	assert.Equal(t, testWorker, updated.Worker)
	assert.Equal(t, todo.StatusCompleted, updated.List.Items[0].Status)

	_, err = svc.UpdateItem(ctx, testWorker, "task-7", todo.StatusCompleted, nil)
	require.NoError(t, err)
	tb.AssertPublished(t, eventbus.EventTodoRejected)
}

func TestTodoListStore_UpdateItems_EmptyBatchTouchesLastUpdated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	initial, err := svc.Initialize(ctx, "", []string{"a"})
	require.NoError(t, err)

	res, err := svc.UpdateItems(ctx, "", nil)
	require.NoError(t, err)

	list := requireUpdated(t, res)
	assert.Greater(t, list.LastUpdated, initial.LastUpdated)
	assert.Equal(t, initial.Items, list.Items)
}

func TestTodoListStore_EmptyItemsIsPresent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, stores.NewMemoryStore())

	require.NoError(t, svc.SaveList(ctx, todo.List{Items: []todo.Item{}}, ""))

	list, err := svc.GetList(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list.Items)

	out, err := svc.CurrentFormatted(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, out)
}
