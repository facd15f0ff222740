package lower

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
)

// lowerExpr lowers the expression to LLVM IR, emitting to the current basic
// block of f.
func (fgen *funcGen) lowerExpr(id ast.ExprID) (value.Value, error) {
	old := fgen.gen.unit.Expr(id)
	if old != nil && old.Type() == ast.Unset {
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "expression %d (%T) of unset type", id, old)
	}
	switch old := old.(type) {
	case *ast.ConstantInt:
		return constant.NewInt(types.I32, int64(old.Val)), nil
	case *ast.ConstantBool:
		return constant.NewBool(old.Val), nil
	case *ast.ConstantString:
		return fgen.gen.stringHandle(old.Val), nil
	case *ast.Identifier:
		return fgen.lowerIdent(id, old)
	case *ast.UnaryExpr:
		return fgen.lowerUnaryExpr(old)
	case *ast.BinaryExpr:
		return fgen.lowerBinaryExpr(old)
	default:
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "invalid expression node %d of type %T", id, old)
	}
}

// lowerIdent lowers the identifier to LLVM IR, emitting to the current basic
// block of f.
//
// An identifier has dual behaviour: its first occurrence allocates the storage
// slot of the variable, and every occurrence reads the variable by loading
// from that slot. Declarations rely on the former (see lowerVarDecl), uses on
// the latter.
func (fgen *funcGen) lowerIdent(id ast.ExprID, old *ast.Identifier) (value.Value, error) {
	slot, err := fgen.slot(id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return fgen.cur.NewLoad(slot.ElemType, slot), nil
}

// lowerUnaryExpr lowers the unary expression to LLVM IR, emitting to the
// current basic block of f.
func (fgen *funcGen) lowerUnaryExpr(old *ast.UnaryExpr) (value.Value, error) {
	x, err := fgen.lowerExpr(old.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch old.Op {
	case ast.Minus: // -
		zero := constant.NewInt(types.I32, 0)
		return fgen.cur.NewSub(zero, x), nil
	case ast.Neg: // !
		return fgen.cur.NewXor(x, constant.True), nil
	default:
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "support for '%v' unary expression not implemented", old.Op)
	}
}

// lowerBinaryExpr lowers the binary expression to LLVM IR, emitting to the
// current basic block of f.
func (fgen *funcGen) lowerBinaryExpr(old *ast.BinaryExpr) (value.Value, error) {
	if old.Op == ast.Sum && old.Typ == ast.String {
		return nil, fgen.gen.errorf(ast.UnsupportedOperation, "string concatenation ('%v' binary expression on String operands) not supported", old.Op)
	}
	x, err := fgen.lowerExpr(old.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	y, err := fgen.lowerExpr(old.Y)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch old.Op {
	// Arithmetic operations.
	case ast.Pow: // ^
		return fgen.lowerPow(x, y)
	case ast.Mult: // *
		return fgen.cur.NewMul(x, y), nil
	case ast.Div: // /
		return fgen.cur.NewSDiv(x, y), nil
	case ast.Sum: // +
		return fgen.cur.NewAdd(x, y), nil
	case ast.Sub: // -
		return fgen.cur.NewSub(x, y), nil
	// Relational operations.
	case ast.Leq: // <=
		return fgen.cur.NewICmp(enum.IPredSLE, x, y), nil
	case ast.Les: // <
		return fgen.cur.NewICmp(enum.IPredSLT, x, y), nil
	case ast.Geq: // >=
		return fgen.cur.NewICmp(enum.IPredSGE, x, y), nil
	case ast.Gre: // >
		return fgen.cur.NewICmp(enum.IPredSGT, x, y), nil
	case ast.Eq: // ==
		x, y = fgen.comparable(x, y)
		return fgen.cur.NewICmp(enum.IPredEQ, x, y), nil
	case ast.Neq: // !=
		x, y = fgen.comparable(x, y)
		return fgen.cur.NewICmp(enum.IPredNE, x, y), nil
	// Logical operations.
	case ast.And: // &&
		return fgen.cur.NewAnd(x, y), nil
	case ast.Or: // ||
		return fgen.cur.NewOr(x, y), nil
	default:
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "support for '%v' binary expression not implemented", old.Op)
	}
}

// comparable returns x and y in a representation comparable by integer
// comparison. String values are handles to storage, and are reinterpreted as
// integers.
func (fgen *funcGen) comparable(x, y value.Value) (value.Value, value.Value) {
	if _, ok := x.Type().(*types.PointerType); ok {
		x = fgen.cur.NewPtrToInt(x, types.I64)
	}
	if _, ok := y.Type().(*types.PointerType); ok {
		y = fgen.cur.NewPtrToInt(y, types.I64)
	}
	return x, y
}
