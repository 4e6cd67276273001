// Package todo defines the todo list domain model tracked per worker.
package todo

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidStatus is returned when an update carries a status outside the known set.
var ErrInvalidStatus = errors.New("invalid todo status")

// Status represents the lifecycle state of a todo item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Item is a single task in a worker's todo list.
// Timestamps are epoch milliseconds.
type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// List is the document stored for a worker. Item order is insertion order.
type List struct {
	Items       []Item `json:"items"`
	LastUpdated int64  `json:"lastUpdated"`
}

// Clone returns a copy of the list that shares no item storage with l.
func (l List) Clone() List {
	items := make([]Item, len(l.Items))
	copy(items, l.Items)
	return List{Items: items, LastUpdated: l.LastUpdated}
}

// IndexOf returns the position of the item with the given id, or -1.
func (l List) IndexOf(id string) int {
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// InProgress returns the item currently in progress, if any.
func (l List) InProgress() (Item, bool) {
	for _, item := range l.Items {
		if item.Status == StatusInProgress {
			return item, true
		}
	}
	return Item{}, false
}

// Update describes a change to one item. A nil Description keeps the existing one.
type Update struct {
	ID          string  `json:"id"`
	Status      Status  `json:"status"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the update's status.
func (u Update) Validate() error {
	if !u.Status.IsValid() {
		return fmt.Errorf("task %s: %w %q", u.ID, ErrInvalidStatus, u.Status)
	}
	return nil
}

// ItemID returns the id assigned to the item at the given zero-based position.
func ItemID(index int) string {
	return fmt.Sprintf("task-%d", index+1)
}

// NewList builds a list of pending items from descriptions, all stamped with now.
func NewList(descriptions []string, now time.Time) List {
	ts := now.UnixMilli()

	items := make([]Item, 0, len(descriptions))
	for i, desc := range descriptions {
		items = append(items, Item{
			ID:          ItemID(i),
			Description: desc,
			Status:      StatusPending,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	}

	return List{Items: items, LastUpdated: ts}
}
