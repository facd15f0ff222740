package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/mewspring/tiny/ast"
)

// funcGen is an LLVM IR generator for a given function.
type funcGen struct {
	// Module generator.
	gen *Generator
	// LLVM IR function being generated.
	f *ir.Func
	// Entry basic block; holds the storage slots of the function.
	entry *ir.Block
	// Current basic block being generated.
	//
	// Every lowering method leaves cur pointing at a basic block without a
	// terminator.
	cur *ir.Block

	// slots maps from identifier node to its storage slot.
	slots map[ast.ExprID]*ir.InstAlloca
	// nslots is the number of storage slots at the start of the entry block.
	nslots int
	// names tracks the local names in use.
	names map[string]bool
	// suffixes maps from requested local name to the last numeric suffix used
	// to make it unique.
	suffixes map[string]int
	// Number of lowered constructs which create basic blocks, used to name
	// them.
	nifs, nwhiles, npows int
}

// newFuncGen returns a new LLVM IR function generator for the given module
// generator.
func (gen *Generator) newFuncGen(f *ir.Func) *funcGen {
	return &funcGen{
		gen:      gen,
		f:        f,
		slots:    make(map[ast.ExprID]*ir.InstAlloca),
		names:    make(map[string]bool),
		suffixes: make(map[string]int),
	}
}
