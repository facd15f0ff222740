package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
)

// placeholder is the neutral truth value produced by statements and code
// blocks as their result.
var placeholder = constant.True

// lowerBlock lowers the code block to LLVM IR, emitting to f. It returns the
// result of the code block, which is always the neutral placeholder, and the
// basic block current once the last statement has been lowered.
func (fgen *funcGen) lowerBlock(id ast.BlockID) (value.Value, *ir.Block, error) {
	block, ok := fgen.gen.unit.Block(id)
	if !ok {
		return nil, nil, fgen.gen.errorf(ast.InternalInvariantViolation, "invalid code block %d", id)
	}
	for _, stmt := range block.Stmts {
		if _, err := fgen.lowerStmt(stmt); err != nil {
			return nil, nil, errors.WithStack(err)
		}
		if err := fgen.checkCursor("statement"); err != nil {
			return nil, nil, err
		}
	}
	return placeholder, fgen.cur, nil
}

// lowerStmt lowers the statement to LLVM IR, emitting to f.
func (fgen *funcGen) lowerStmt(id ast.StmtID) (value.Value, error) {
	switch old := fgen.gen.unit.Stmt(id).(type) {
	case *ast.Skip:
		return placeholder, nil
	case *ast.VarDecl:
		return fgen.lowerVarDecl(old)
	case *ast.VarAssign:
		return fgen.lowerVarAssign(old)
	case *ast.IfStmt:
		return fgen.lowerIfStmt(old)
	case *ast.WhileStmt:
		return fgen.lowerWhileStmt(old)
	case *ast.PrintStmt:
		return fgen.lowerPrintStmt(old)
	default:
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "invalid statement node %d of type %T", id, old)
	}
}

// lowerVarDecl lowers the variable declaration to LLVM IR, emitting to f.
func (fgen *funcGen) lowerVarDecl(old *ast.VarDecl) (value.Value, error) {
	// Allocate storage slot.
	if _, err := fgen.slot(old.Ident); err != nil {
		return nil, errors.WithStack(err)
	}
	return fgen.assign(old.Ident, old.Value)
}

// lowerVarAssign lowers the assignment to LLVM IR, emitting to f.
func (fgen *funcGen) lowerVarAssign(old *ast.VarAssign) (value.Value, error) {
	return fgen.assign(old.Ident, old.Value)
}

// assign evaluates the value expression and stores it into the existing
// storage slot of the identifier.
func (fgen *funcGen) assign(ident, val ast.ExprID) (value.Value, error) {
	slot, err := fgen.existingSlot(ident)
	if err != nil {
		return nil, err
	}
	v, err := fgen.lowerExpr(val)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fgen.cur.NewStore(v, slot)
	return v, nil
}
