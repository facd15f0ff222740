// Package lower lowers tiny programs in AST-form to LLVM IR assembly.
package lower

import (
	"io"
	"log"

	"github.com/llir/llvm/ir"
	"github.com/mewkiz/pkg/term"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
	"github.com/rickypai/natsort"
)

var (
	// dbg is a logger with the "lower:" prefix which logs debug messages to
	// standard error when enabled.
	dbg = log.New(io.Discard, term.CyanBold("lower:")+" ", 0)
)

// SetDebugOutput sets the output destination of debug messages.
func SetDebugOutput(w io.Writer) {
	dbg.SetOutput(w)
}

// Lower lowers the root code block of the compilation unit to the implicit
// entry routine of an LLVM IR module.
//
// The compilation is aborted on the first error, in which case no module is
// returned.
func (gen *Generator) Lower(root ast.BlockID) (*ir.Module, error) {
	if gen.lowered {
		return nil, gen.errorf(ast.InternalInvariantViolation, "generator already used")
	}
	gen.lowered = true
	if err := gen.lowerMain(root); err != nil {
		return nil, errors.WithStack(err)
	}
	// Append global definitions to module.
	var globalNames []string
	for globalName := range gen.globals {
		globalNames = append(globalNames, globalName)
	}
	natsort.Strings(globalNames)
	for _, globalName := range globalNames {
		gen.m.Globals = append(gen.m.Globals, gen.globals[globalName])
	}
	return gen.m, nil
}

// Main returns the implicit entry routine, or nil if the generator has not
// successfully lowered a program.
func (gen *Generator) Main() *ir.Func {
	if gen.main == nil {
		return nil
	}
	return gen.main.f
}

// SlotNames returns the names of the storage slots allocated by the entry
// routine, in natural sort order.
func (gen *Generator) SlotNames() []string {
	if gen.main == nil {
		return nil
	}
	var names []string
	for _, slot := range gen.main.slots {
		names = append(names, slot.Name())
	}
	natsort.Strings(names)
	return names
}
