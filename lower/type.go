package lower

import (
	"github.com/llir/llvm/ir/types"
	"github.com/mewspring/tiny/ast"
)

// i8ptr is the IR type of string handles.
var i8ptr = types.NewPointer(types.I8)

// irType returns the IR type of the given data type.
func (gen *Generator) irType(t ast.DataType) (types.Type, error) {
	switch t {
	case ast.Int:
		return types.I32, nil
	case ast.Bool:
		// Booleans are 1-bit truth values.
		return types.I1, nil
	case ast.String:
		return i8ptr, nil
	default:
		return nil, gen.errorf(ast.InternalInvariantViolation, "invalid data type %v", t)
	}
}
