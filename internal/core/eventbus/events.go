// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within worklist.
package eventbus

import "github.com/hay-kot/worklist/internal/core/todo"

// Event names a kind of published payload.
type Event string

const (
	// Keep list sorted A-Z
	EventTodoInitialized Event = "todo.initialized"
	EventTodoRejected    Event = "todo.rejected"
	EventTodoUpdated     Event = "todo.updated"
)

// TodoInitializedPayload is emitted when a worker's list is created or replaced.
type TodoInitializedPayload struct {
	Worker string
	List   todo.List
}

// TodoUpdatedPayload is emitted after a batch update is persisted.
type TodoUpdatedPayload struct {
	Worker string
	List   todo.List
}

// TodoRejectedPayload is emitted when a batch update is refused.
type TodoRejectedPayload struct {
	Worker string
	Reason string
}

// PublishTodoInitialized enqueues a todo.initialized event.
func (bus *EventBus) PublishTodoInitialized(p TodoInitializedPayload) {
	bus.send(EventTodoInitialized, p)
}

// SubscribeTodoInitialized registers fn for todo.initialized events.
func (bus *EventBus) SubscribeTodoInitialized(fn func(TodoInitializedPayload)) {
	bus.subscribe(EventTodoInitialized, func(p any) { fn(p.(TodoInitializedPayload)) })
}

// PublishTodoUpdated enqueues a todo.updated event.
func (bus *EventBus) PublishTodoUpdated(p TodoUpdatedPayload) {
	bus.send(EventTodoUpdated, p)
}

// SubscribeTodoUpdated registers fn for todo.updated events.
func (bus *EventBus) SubscribeTodoUpdated(fn func(TodoUpdatedPayload)) {
	bus.subscribe(EventTodoUpdated, func(p any) { fn(p.(TodoUpdatedPayload)) })
}

// PublishTodoRejected enqueues a todo.rejected event.
func (bus *EventBus) PublishTodoRejected(p TodoRejectedPayload) {
	bus.send(EventTodoRejected, p)
}

// SubscribeTodoRejected registers fn for todo.rejected events.
func (bus *EventBus) SubscribeTodoRejected(fn func(TodoRejectedPayload)) {
	bus.subscribe(EventTodoRejected, func(p any) { fn(p.(TodoRejectedPayload)) })
}
