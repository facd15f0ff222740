package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// stringHandle returns the handle of the global constant holding the
// characters of s. The first occurrence of a given content creates the global
// constant; subsequent occurrences reuse its handle.
func (gen *Generator) stringHandle(s string) *constant.ExprGetElementPtr {
	if ptr, ok := gen.strs[s]; ok {
		return ptr
	}
	name := fmt.Sprintf(".str.%d", gen.nstrs)
	gen.nstrs++
	return gen.newString(name, s)
}

// newString creates a private global constant of the given name holding the
// NUL-terminated characters of s, and records its handle in the constant pool.
func (gen *Generator) newString(name, s string) *constant.ExprGetElementPtr {
	init := constant.NewCharArrayFromString(s + "\x00")
	g := ir.NewGlobalDef(name, init)
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	gen.globals[name] = g
	// Handle to the first character.
	zero := constant.NewInt(types.I64, 0)
	ptr := constant.NewGetElementPtr(init.Typ, g, zero, zero)
	ptr.InBounds = true
	gen.strs[s] = ptr
	dbg.Printf("string constant @%s created for %q", name, s)
	return ptr
}
