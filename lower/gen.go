package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/mewspring/tiny/ast"
)

// Generator keeps track of top-level entities when translating a tiny
// compilation unit from AST to LLVM IR representation.
//
// A Generator lowers exactly one root code block; its constant pool and
// storage slots live for the duration of that compilation.
type Generator struct {
	// Compilation unit being lowered.
	unit *ast.Unit
	// LLVM IR module being generated.
	m *ir.Module

	// Index of IR top-level entities.

	// globals maps from global identifier (without '@' prefix) to global
	// definitions. Globals are appended to the module in natural sort order of
	// their names once lowering has completed.
	globals map[string]*ir.Global
	// funcs maps from global identifier (without '@' prefix) to function
	// declarations and defintions.
	funcs map[string]*ir.Func
	// strs maps from string literal content to the handle of the global
	// constant holding its characters.
	strs map[string]*constant.ExprGetElementPtr
	// Number of pooled string literals, used to name them.
	nstrs int

	// Runtime.

	// printf is the external variadic formatting routine.
	printf *ir.Func
	// Format descriptors of integer and string values.
	fmtInt, fmtStr constant.Constant

	// Implicit entry routine; nil before lowering.
	main *funcGen
	// lowered reports whether Lower has been invoked.
	lowered bool
}

// NewGenerator returns a new generator for lowering the compilation unit to
// LLVM IR assembly.
func NewGenerator(unit *ast.Unit) *Generator {
	gen := &Generator{
		unit:    unit,
		m:       ir.NewModule(),
		globals: make(map[string]*ir.Global),
		funcs:   make(map[string]*ir.Func),
		strs:    make(map[string]*constant.ExprGetElementPtr),
	}
	gen.indexRuntime()
	return gen
}
