package compiler

import "fmt"

// Error reports a user error found during compilation: an unbound
// variable reference or a labelcall to an undefined label. Structural
// errors (wrong arity, unknown primitive head, malformed trees) are
// precondition violations and panic instead, per the error-handling
// design's three-way split.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func errorf(format string, args ...interface{}) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}
