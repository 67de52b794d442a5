// Package fault provides the precondition-violation helper the compiler
// uses for its arity (operand-count) checks: invariants a well-formed
// program never breaks, as opposed to the user-facing errors
// *compiler.Error and *reader.Error report for things real programs get
// wrong. Malformed-tree checks in the compiler and the encoder's range
// checks panic directly rather than through this package.
package fault

import "fmt"

// Require panics with a formatted message if cond is false.
func Require(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
