package ast

import "fmt"

// DataType is the static type of an expression.
type DataType uint8

// Data types.
const (
	// Unset is only ever seen transiently before validation completes; a fully
	// constructed node never carries it.
	Unset DataType = iota
	// Int is a 32-bit signed integer.
	Int
	// Bool is a 1-bit truth value.
	Bool
	// String is a handle to immutable NUL-terminated character data.
	String
)

// String returns the string representation of the data type.
func (t DataType) String() string {
	switch t {
	case Unset:
		return "unset"
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case String:
		return "String"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(t))
	}
}

// ParseDataType returns the data type of the given type name.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "Int":
		return Int, true
	case "Bool":
		return Bool, true
	case "String":
		return String, true
	}
	return Unset, false
}

// UnaryOp is a unary operator.
type UnaryOp uint8

// Unary operators.
const (
	// Minus is arithmetic negation (-x).
	Minus UnaryOp = iota
	// Neg is logical negation (!x).
	Neg
)

// String returns the string representation of the unary operator.
func (op UnaryOp) String() string {
	switch op {
	case Minus:
		return "-"
	case Neg:
		return "!"
	default:
		return fmt.Sprintf("UnaryOp(%d)", uint8(op))
	}
}

// BinaryOp is a binary operator.
type BinaryOp uint8

// Binary operators.
const (
	Pow  BinaryOp = iota // ^
	Mult                 // *
	Div                  // /
	Sum                  // +
	Sub                  // -
	Leq                  // <=
	Les                  // <
	Geq                  // >=
	Gre                  // >
	Eq                   // ==
	Neq                  // !=
	And                  // &&
	Or                   // ||
)

// String returns the string representation of the binary operator.
func (op BinaryOp) String() string {
	switch op {
	case Pow:
		return "^"
	case Mult:
		return "*"
	case Div:
		return "/"
	case Sum:
		return "+"
	case Sub:
		return "-"
	case Leq:
		return "<="
	case Les:
		return "<"
	case Geq:
		return ">="
	case Gre:
		return ">"
	case Eq:
		return "=="
	case Neq:
		return "!="
	case And:
		return "&&"
	case Or:
		return "||"
	default:
		return fmt.Sprintf("BinaryOp(%d)", uint8(op))
	}
}
