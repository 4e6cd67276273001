package todo

// Messages reported in Rejected results.
const (
	MsgNoList             = "No todo list exists. Please create one first."
	MsgTooManyInProgress  = "Only one task can be in progress at a time."
	msgTaskNotFoundFormat = "Task id %s was not found."
)

// Result is the outcome of a batch update. It is either Updated or Rejected.
type Result interface {
	isResult()
}

// Updated carries the list that was persisted.
type Updated struct {
	List List
}

// Rejected carries the reason a batch was refused and the list as it was before
// the batch. Current is nil when the worker had no list.
type Rejected struct {
	Reason  string
	Current *List
}

func (Updated) isResult()  {}
func (Rejected) isResult() {}
