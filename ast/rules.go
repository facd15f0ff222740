package ast

// UnaryType returns the result type of applying the unary operator to an
// operand of type x, or a TypeMismatch error.
func UnaryType(op UnaryOp, x DataType) (DataType, error) {
	switch op {
	case Minus:
		if x == Int {
			return Int, nil
		}
	case Neg:
		if x == Bool {
			return Bool, nil
		}
	default:
		return Unset, Errorf(InternalInvariantViolation, "unknown unary operator %v", op)
	}
	return Unset, Errorf(TypeMismatch, "invalid operand type to '%v' unary expression; got %v", op, x)
}

// BinaryType returns the result type of applying the binary operator to
// operands of type x and y, or a TypeMismatch error.
func BinaryType(op BinaryOp, x, y DataType) (DataType, error) {
	switch op {
	// Arithmetic operations.
	case Pow, Mult, Div, Sub:
		if x == Int && y == Int {
			return Int, nil
		}
	case Sum:
		// String + String type-checks; the code generator rejects it.
		if x == y && (x == Int || x == String) {
			return x, nil
		}
	// Relational operations.
	case Leq, Les, Geq, Gre:
		if x == Int && y == Int {
			return Bool, nil
		}
	case Eq, Neq:
		if x == y && x != Unset {
			return Bool, nil
		}
	// Logical operations.
	case And, Or:
		if x == Bool && y == Bool {
			return Bool, nil
		}
	default:
		return Unset, Errorf(InternalInvariantViolation, "unknown binary operator %v", op)
	}
	return Unset, Errorf(TypeMismatch, "invalid operand types to '%v' binary expression; got %v and %v", op, x, y)
}
