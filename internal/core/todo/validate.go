package todo

import "fmt"

// ValidationError reports a list that breaks a business rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate enforces the list-wide rules: at most one item may be in progress.
func Validate(l List) error {
	inProgress := 0
	for _, item := range l.Items {
		if item.Status == StatusInProgress {
			inProgress++
		}
	}

	if inProgress > 1 {
		return &ValidationError{Message: MsgTooManyInProgress}
	}

	return nil
}

// TaskNotFound returns the rejection message for an unknown task id.
func TaskNotFound(id string) string {
	return fmt.Sprintf(msgTaskNotFoundFormat, id)
}
