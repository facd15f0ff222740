package ast

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind specifies the kind of a compilation error.
//
// A Kind is itself an error, so that callers may test the kind of an error
// returned by the AST builder or code generator with errors.Is.
//
//	if errors.Is(err, ast.TypeMismatch) { ... }
type Kind uint8

// Compilation error kinds.
const (
	// TypeMismatch is raised when the operand types of an expression or
	// statement violate the type rules.
	TypeMismatch Kind = iota + 1
	// DuplicateDeclaration is raised when a name is bound twice in visible
	// scope.
	DuplicateDeclaration
	// UnboundIdentifier is raised when a name is referenced without being
	// bound in visible scope.
	UnboundIdentifier
	// UnsupportedOperation is raised by the code generator for constructs that
	// type-check but have no lowering.
	UnsupportedOperation
	// InternalInvariantViolation is raised for states that should be
	// impossible after successful type checking.
	InternalInvariantViolation
)

// String returns the string representation of the error kind.
func (kind Kind) String() string {
	switch kind {
	case TypeMismatch:
		return "type mismatch"
	case DuplicateDeclaration:
		return "duplicate declaration"
	case UnboundIdentifier:
		return "unbound identifier"
	case UnsupportedOperation:
		return "unsupported operation"
	case InternalInvariantViolation:
		return "internal invariant violation"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(kind))
	}
}

// Error implements the error interface.
func (kind Kind) Error() string {
	return kind.String()
}

// Error is a compilation error of a given kind.
type Error struct {
	// Error kind.
	Kind Kind
	// Error message identifying the offending construct.
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// Errorf returns a new compilation error of the given kind, annotated with a
// stack trace. The message is formatted according to a format specifier.
func Errorf(kind Kind, format string, a ...interface{}) error {
	e := &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, a...),
	}
	return errors.WithStack(e)
}

// KindOf returns the kind of the given compilation error, or 0 if err is not a
// compilation error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
