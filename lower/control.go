package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
)

// === [ Conditional statements ] ==============================================

// lowerIfStmt lowers the conditional statement to LLVM IR, emitting to f.
//
// The condition is evaluated in the current basic block, which branches to
// the then or else basic block. Both branches end by jumping to the merge
// basic block, where a phi instruction receives the result of each branch
// from the final basic block of that branch. The cursor is left at the merge
// basic block.
func (fgen *funcGen) lowerIfStmt(old *ast.IfStmt) (value.Value, error) {
	n := fgen.nifs
	fgen.nifs++
	cond, err := fgen.lowerExpr(old.Cond)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	thenBlock := fgen.newBlock("if.then", n)
	elseBlock := fgen.newBlock("if.else", n)
	mergeBlock := fgen.newBlock("if.merge", n)
	fgen.cur.NewCondBr(cond, thenBlock, elseBlock)

	// Then branch.
	fgen.cur = thenBlock
	thenValue, thenEnd, err := fgen.lowerBlock(old.Then)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	thenEnd.NewBr(mergeBlock)

	// Else branch; a missing else branch is an implicit skip.
	fgen.cur = elseBlock
	var elseValue value.Value = placeholder
	elseEnd := elseBlock
	if old.Else != ast.NoBlock {
		elseValue, elseEnd, err = fgen.lowerBlock(old.Else)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	elseEnd.NewBr(mergeBlock)

	// Merge.
	fgen.cur = mergeBlock
	phi := mergeBlock.NewPhi(ir.NewIncoming(thenValue, thenEnd), ir.NewIncoming(elseValue, elseEnd))
	if err := fgen.checkMerge(phi, thenEnd, elseEnd); err != nil {
		return nil, err
	}
	return phi, nil
}

// checkMerge checks that the merge instruction has exactly one incoming value
// for each of the given predecessor basic blocks, and that each of them
// branches to the basic block of the merge.
func (fgen *funcGen) checkMerge(phi *ir.InstPhi, preds ...*ir.Block) error {
	if len(phi.Incs) != len(preds) {
		return fgen.gen.errorf(ast.InternalInvariantViolation, "merge in basic block %q has %d incoming values; expected %d", fgen.cur.Name(), len(phi.Incs), len(preds))
	}
	for _, pred := range preds {
		n := 0
		for _, inc := range phi.Incs {
			if inc.Pred == pred {
				n++
			}
		}
		if n != 1 {
			return fgen.gen.errorf(ast.InternalInvariantViolation, "merge in basic block %q has %d incoming values from predecessor %q; expected 1", fgen.cur.Name(), n, pred.Name())
		}
		if !branchesTo(pred, fgen.cur) {
			return fgen.gen.errorf(ast.InternalInvariantViolation, "predecessor %q of merge does not branch to basic block %q", pred.Name(), fgen.cur.Name())
		}
	}
	return nil
}

// === [ Loop statements ] =====================================================

// lowerWhileStmt lowers the pre-test loop to LLVM IR, emitting to f.
//
// The current basic block jumps to the cond basic block, which evaluates the
// condition and branches to either the loop body or the after basic block.
// The final basic block of the loop body jumps back to cond. The cursor is
// left at the after basic block.
func (fgen *funcGen) lowerWhileStmt(old *ast.WhileStmt) (value.Value, error) {
	n := fgen.nwhiles
	fgen.nwhiles++
	condBlock := fgen.newBlock("while.cond", n)
	bodyBlock := fgen.newBlock("while.body", n)
	afterBlock := fgen.newBlock("while.after", n)
	fgen.cur.NewBr(condBlock)

	// Condition; its evaluation may itself create basic blocks.
	fgen.cur = condBlock
	cond, err := fgen.lowerExpr(old.Cond)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fgen.cur.NewCondBr(cond, bodyBlock, afterBlock)

	// Loop body.
	fgen.cur = bodyBlock
	_, bodyEnd, err := fgen.lowerBlock(old.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	bodyEnd.NewBr(condBlock)

	fgen.cur = afterBlock
	return placeholder, nil
}

// === [ Exponentiation ] ======================================================

// lowerPow lowers the integer exponentiation x^y to a counted loop, emitting
// to f. A non-positive exponent yields 1.
//
//	pow.cond:
//	  %acc = phi i32 [ 1, %pre ], [ %acc.next, %pow.body ]
//	  %i = phi i32 [ 0, %pre ], [ %i.next, %pow.body ]
//	  br (%i < y), %pow.body, %pow.after
//	pow.body:
//	  %acc.next = mul %acc, x
//	  %i.next = add %i, 1
//	  br %pow.cond
func (fgen *funcGen) lowerPow(x, y value.Value) (value.Value, error) {
	n := fgen.npows
	fgen.npows++
	zero := constant.NewInt(types.I32, 0)
	one := constant.NewInt(types.I32, 1)
	pre := fgen.cur
	condBlock := fgen.newBlock("pow.cond", n)
	bodyBlock := fgen.newBlock("pow.body", n)
	afterBlock := fgen.newBlock("pow.after", n)
	pre.NewBr(condBlock)

	acc := condBlock.NewPhi(ir.NewIncoming(one, pre))
	i := condBlock.NewPhi(ir.NewIncoming(zero, pre))
	cmp := condBlock.NewICmp(enum.IPredSLT, i, y)
	condBlock.NewCondBr(cmp, bodyBlock, afterBlock)

	accNext := bodyBlock.NewMul(acc, x)
	iNext := bodyBlock.NewAdd(i, one)
	bodyBlock.NewBr(condBlock)
	acc.Incs = append(acc.Incs, ir.NewIncoming(accNext, bodyBlock))
	i.Incs = append(i.Incs, ir.NewIncoming(iNext, bodyBlock))

	fgen.cur = condBlock
	if err := fgen.checkMerge(acc, pre, bodyBlock); err != nil {
		return nil, err
	}
	if err := fgen.checkMerge(i, pre, bodyBlock); err != nil {
		return nil, err
	}
	fgen.cur = afterBlock
	return acc, nil
}

// ### [ Helper functions ] ####################################################

// branchesTo reports whether the terminator of the basic block has target as
// a successor.
func branchesTo(block, target *ir.Block) bool {
	switch term := block.Term.(type) {
	case *ir.TermBr:
		return term.Target == target
	case *ir.TermCondBr:
		return term.TargetTrue == target || term.TargetFalse == target
	default:
		return false
	}
}
