// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// WorkerName validates a worker name is non-empty after trimming whitespace
// and contains no control characters.
func WorkerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("worker is required")
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return fmt.Errorf("worker %q contains control characters", name)
	}
	return nil
}

// WorkerNameField returns a criterio validator for worker names.
func WorkerNameField(field, name string) error {
	return criterio.Run(field, name, WorkerName)
}
