package todo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusInProgress, true},
		{StatusCompleted, true},
		{Status("dismissed"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestNewList(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	list := NewList([]string{"write parser", "add tests", "ship it"}, now)

	require.Len(t, list.Items, 3)
	assert.Equal(t, now.UnixMilli(), list.LastUpdated)

	for i, item := range list.Items {
		assert.Equal(t, ItemID(i), item.ID)
		assert.Equal(t, StatusPending, item.Status)
		assert.Equal(t, list.LastUpdated, item.CreatedAt)
		assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	}

	assert.Equal(t, "task-1", list.Items[0].ID)
	assert.Equal(t, "task-3", list.Items[2].ID)
	assert.Equal(t, "add tests", list.Items[1].Description)
}

func TestNewList_Empty(t *testing.T) {
	list := NewList(nil, time.UnixMilli(5))
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)
	assert.Equal(t, int64(5), list.LastUpdated)
}

func TestList_Clone(t *testing.T) {
	list := NewList([]string{"a", "b"}, time.UnixMilli(1))

	cp := list.Clone()
	cp.Items[0].Status = StatusCompleted

	assert.Equal(t, StatusPending, list.Items[0].Status)
}

func TestList_IndexOf(t *testing.T) {
	list := NewList([]string{"a", "b"}, time.UnixMilli(1))

	assert.Equal(t, 1, list.IndexOf("task-2"))
	assert.Equal(t, -1, list.IndexOf("task-3"))
	assert.Equal(t, -1, list.IndexOf("TASK-1"))
}

func TestList_InProgress(t *testing.T) {
	list := NewList([]string{"a", "b"}, time.UnixMilli(1))

	_, ok := list.InProgress()
	assert.False(t, ok)

	list.Items[1].Status = StatusInProgress
	item, ok := list.InProgress()
	require.True(t, ok)
	assert.Equal(t, "task-2", item.ID)
}

func TestUpdate_Validate(t *testing.T) {
	assert.NoError(t, Update{ID: "task-1", Status: StatusCompleted}.Validate())

	err := Update{ID: "task-1", Status: "done"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestValidate(t *testing.T) {
	list := NewList([]string{"a", "b", "c"}, time.UnixMilli(1))
	require.NoError(t, Validate(list))

	list.Items[0].Status = StatusInProgress
	require.NoError(t, Validate(list))

	list.Items[2].Status = StatusInProgress
	err := Validate(list)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgTooManyInProgress, verr.Error())
}

func TestTaskNotFound(t *testing.T) {
	assert.Equal(t, "Task id task-9 was not found.", TaskNotFound("task-9"))
}
