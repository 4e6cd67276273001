package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/worklist/internal/core/todo"
)

// ListSource is the subset of the todo list service the lists check needs.
type ListSource interface {
	GetList(ctx context.Context, worker string) (*todo.List, error)
}

// WorkerSource enumerates workers that have a stored todo list.
type WorkerSource interface {
	ListWorkers(ctx context.Context) ([]string, error)
}

// ListsCheck reads every stored todo list and reports lists that are
// unreadable, malformed, or have more than one item in progress. The last
// case can only arise from a direct save, since batch updates reject it.
type ListsCheck struct {
	workers WorkerSource
	lists   ListSource
}

// NewListsCheck creates a new lists check.
func NewListsCheck(workers WorkerSource, lists ListSource) *ListsCheck {
	return &ListsCheck{workers: workers, lists: lists}
}

func (c *ListsCheck) Name() string {
	return "Todo Lists"
}

func (c *ListsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	workers, err := c.workers.ListWorkers(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "store",
			Status: StatusFail,
			Detail: fmt.Sprintf("list workers: %v", err),
		})
		return result
	}

	if len(workers) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "lists",
			Status: StatusPass,
			Detail: "none stored",
		})
		return result
	}

	for _, worker := range workers {
		result.Items = append(result.Items, c.checkWorker(ctx, worker))
	}

	return result
}

func (c *ListsCheck) checkWorker(ctx context.Context, worker string) CheckItem {
	list, err := c.lists.GetList(ctx, worker)
	switch {
	case err != nil:
		return CheckItem{Label: worker, Status: StatusFail, Detail: err.Error()}
	case list == nil:
		return CheckItem{Label: worker, Status: StatusWarn, Detail: "stored document has no items array"}
	}

	if err := todo.Validate(*list); err != nil {
		var verr *todo.ValidationError
		if errors.As(err, &verr) {
			return CheckItem{Label: worker, Status: StatusWarn, Detail: verr.Error()}
		}
		return CheckItem{Label: worker, Status: StatusFail, Detail: err.Error()}
	}

	completed := 0
	for _, item := range list.Items {
		if item.Status == todo.StatusCompleted {
			completed++
		}
	}

	return CheckItem{
		Label:  worker,
		Status: StatusPass,
		Detail: fmt.Sprintf("%d/%d completed", completed, len(list.Items)),
	}
}
