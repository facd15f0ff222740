package lower

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
)

// mainName is the name of the implicit entry routine.
const mainName = "main"

// lowerMain lowers the root code block to the body of the implicit entry
// routine `i32 @main()`, which returns 0 once the block has run.
func (gen *Generator) lowerMain(root ast.BlockID) error {
	f := gen.m.NewFunc(mainName, types.I32)
	gen.funcs[mainName] = f
	fgen := gen.newFuncGen(f)
	if err := fgen.lowerFuncBody(root); err != nil {
		return errors.WithStack(err)
	}
	gen.main = fgen
	return nil
}

// lowerFuncBody lowers the code block to the body of f.
func (fgen *funcGen) lowerFuncBody(body ast.BlockID) error {
	fgen.entry = fgen.f.NewBlock(fgen.localName("entry"))
	fgen.cur = fgen.entry
	_, end, err := fgen.lowerBlock(body)
	if err != nil {
		return errors.WithStack(err)
	}
	end.NewRet(constant.NewInt(types.I32, 0))
	// Every basic block must be terminated.
	for _, block := range fgen.f.Blocks {
		if block.Term == nil {
			return fgen.gen.errorf(ast.InternalInvariantViolation, "basic block %q of function %q not terminated", block.Name(), fgen.f.Name())
		}
	}
	return nil
}
