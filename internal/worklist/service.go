// Package worklist implements the per-worker todo list on top of a metadata store.
package worklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/hay-kot/worklist/internal/core/eventbus"
	"github.com/hay-kot/worklist/internal/core/logging"
	"github.com/hay-kot/worklist/internal/core/metadata"
	"github.com/hay-kot/worklist/internal/core/todo"
)

// TodoListKey is the metadata key the list is stored under.
const TodoListKey = "todo-list"

// TodoListStore reads, updates and renders a worker's todo list.
//
// Every operation takes an explicit worker. An empty worker resolves to the
// default worker the store was built with. There is no locking: concurrent
// updaters for the same worker race and the last write wins.
type TodoListStore struct {
	doc           *metadata.Document[todo.List]
	bus           *eventbus.EventBus
	log           zerolog.Logger
	defaultWorker string
	now           func() time.Time
}

// Option configures a TodoListStore.
type Option func(*TodoListStore)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TodoListStore) { s.now = now }
}

// WithEventBus publishes list changes to bus.
func WithEventBus(bus *eventbus.EventBus) Option {
	return func(s *TodoListStore) { s.bus = bus }
}

// New creates a TodoListStore over store. defaultWorker is used whenever an
// operation is called with an empty worker.
func New(store metadata.Store, defaultWorker string, log zerolog.Logger, opts ...Option) *TodoListStore {
	s := &TodoListStore{
		doc:           metadata.Bind[todo.List](store, TodoListKey),
		log:           log.With().Str("cmp", "worklist").Logger(),
		defaultWorker: defaultWorker,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DefaultWorker returns the worker used when none is supplied.
func (s *TodoListStore) DefaultWorker() string {
	return s.defaultWorker
}

// GetList returns the worker's list, or nil if none is stored. A stored
// document without an items array is treated as absent.
func (s *TodoListStore) GetList(ctx context.Context, worker string) (*todo.List, error) {
	worker = s.resolve(worker)

	raw, err := s.doc.Raw(ctx, worker)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read todo list: %w", err)
	}

	if !gjson.GetBytes(raw, "items").IsArray() {
		s.log.Debug().Ctx(logging.WithWorker(ctx, worker)).Msg("stored todo list has no items, treating as absent")
		return nil, nil
	}

	var list todo.List
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode todo list for %q: %w", worker, err)
	}

	return &list, nil
}

// SaveList writes list verbatim. No validation is performed.
func (s *TodoListStore) SaveList(ctx context.Context, list todo.List, worker string) error {
	if err := s.doc.Set(ctx, s.resolve(worker), list); err != nil {
		return fmt.Errorf("save todo list: %w", err)
	}
	return nil
}

// Initialize replaces the worker's list with one pending item per description.
func (s *TodoListStore) Initialize(ctx context.Context, worker string, descriptions []string) (todo.List, error) {
	worker = s.resolve(worker)
	list := todo.NewList(descriptions, s.now())

	if err := s.SaveList(ctx, list, worker); err != nil {
		return todo.List{}, err
	}

	s.log.Debug().
		Ctx(logging.WithWorker(ctx, worker)).
		Int("items", len(list.Items)).
		Msg("todo list initialized")

	if s.bus != nil {
		s.bus.PublishTodoInitialized(eventbus.TodoInitializedPayload{Worker: worker, List: list.Clone()})
	}

	return list, nil
}

// UpdateItem applies a single update. See UpdateItems.
func (s *TodoListStore) UpdateItem(ctx context.Context, worker, id string, status todo.Status, description *string) (todo.Result, error) {
	return s.UpdateItems(ctx, worker, []todo.Update{{ID: id, Status: status, Description: description}})
}

// UpdateItems applies updates in order as a single batch. Either every update
// is persisted or none is. Expected refusals (no list, unknown id, more than
// one item in progress) are returned as todo.Rejected carrying the list as it
// was before the batch; the error is reserved for store failures and invalid
// input. Statuses are checked before the list is read, so an invalid status
// yields ErrInvalidStatus even when the worker has no list.
func (s *TodoListStore) UpdateItems(ctx context.Context, worker string, updates []todo.Update) (todo.Result, error) {
	worker = s.resolve(worker)
	ctx = logging.WithWorker(ctx, worker)

	for _, u := range updates {
		if err := u.Validate(); err != nil {
			return nil, err
		}
	}

	current, err := s.GetList(ctx, worker)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return s.reject(ctx, worker, todo.MsgNoList, nil), nil
	}

	now := s.now().UnixMilli()
	next := current.Clone()

	for _, u := range updates {
		idx := next.IndexOf(u.ID)
		if idx == -1 {
			return s.reject(ctx, worker, todo.TaskNotFound(u.ID), current), nil
		}

		item := &next.Items[idx]
		item.Status = u.Status
		if u.Description != nil {
			item.Description = *u.Description
		}
		item.UpdatedAt = now
	}

	next.LastUpdated = now

	if err := todo.Validate(next); err != nil {
		var verr *todo.ValidationError
		if errors.As(err, &verr) {
			return s.reject(ctx, worker, verr.Error(), current), nil
		}
		return nil, err
	}

	if err := s.SaveList(ctx, next, worker); err != nil {
		return nil, err
	}

	s.log.Debug().Ctx(ctx).Int("updates", len(updates)).Msg("todo list updated")

	if s.bus != nil {
		s.bus.PublishTodoUpdated(eventbus.TodoUpdatedPayload{Worker: worker, List: next.Clone()})
	}

	return todo.Updated{List: next}, nil
}

// CurrentFormatted returns the worker's list rendered by todo.Format, or the
// empty string when there is none.
func (s *TodoListStore) CurrentFormatted(ctx context.Context, worker string) (string, error) {
	list, err := s.GetList(ctx, worker)
	if err != nil {
		return "", err
	}
	return todo.Format(list), nil
}

func (s *TodoListStore) reject(ctx context.Context, worker, reason string, current *todo.List) todo.Rejected {
	s.log.Debug().Ctx(ctx).Str("reason", reason).Msg("todo update rejected")

	if s.bus != nil {
		s.bus.PublishTodoRejected(eventbus.TodoRejectedPayload{Worker: worker, Reason: reason})
	}

	return todo.Rejected{Reason: reason, Current: current}
}

func (s *TodoListStore) resolve(worker string) string {
	if worker == "" {
		return s.defaultWorker
	}
	return worker
}
