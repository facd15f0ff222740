package lower

import (
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
)

// lowerPrintStmt lowers the print statement to a call to the runtime printf
// routine, emitting to f. The format descriptor is selected by the data type
// of the operand; booleans are printed as integers.
func (fgen *funcGen) lowerPrintStmt(old *ast.PrintStmt) (value.Value, error) {
	x := fgen.gen.unit.Expr(old.X)
	if x == nil {
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "invalid operand %d of print statement", old.X)
	}
	v, err := fgen.lowerExpr(old.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var format value.Value
	switch x.Type() {
	case ast.Int:
		format = fgen.gen.fmtInt
	case ast.Bool:
		format = fgen.gen.fmtInt
		v = fgen.cur.NewZExt(v, types.I32)
	case ast.String:
		format = fgen.gen.fmtStr
	default:
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "print of value with data type %v", x.Type())
	}
	return fgen.cur.NewCall(fgen.gen.printf, format, v), nil
}
