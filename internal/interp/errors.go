package interp

import "fmt"

// RuntimeError represents an error during tree-walking evaluation.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %s", e.Msg)
}

func errorf(format string, args ...interface{}) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}
