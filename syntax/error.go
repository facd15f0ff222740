package syntax

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a syntax error.
type Error struct {
	// Position of the offending token.
	Pos Pos
	Msg string
	// Incomplete reports whether the error was caused by reaching the end of
	// input, in which case more input may complete the program.
	Incomplete bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%v: syntax error: %s", e.Pos, e.Msg)
}

// errorf returns a new syntax error at the given position.
func errorf(pos Pos, format string, a ...interface{}) error {
	return errors.WithStack(&Error{Pos: pos, Msg: fmt.Sprintf(format, a...)})
}

// IsIncomplete reports whether err is a syntax error caused by reaching the
// end of input.
func IsIncomplete(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Incomplete
}
