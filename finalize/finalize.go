// Package finalize collects the LLVM IR module generated from a tiny program,
// and executes or serializes it.
package finalize

import (
	"os"
	"strings"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/mewspring/tiny/ast"
	"github.com/mewspring/tiny/interp"
	"github.com/mewspring/tiny/lower"
	"github.com/pkg/errors"
)

// Ext is the file extension of serialized LLVM IR modules.
const Ext = ".ll"

// EntryName is the name of the implicit entry routine.
const EntryName = "main"

// Program is a generated LLVM IR module and its implicit entry routine.
type Program struct {
	// LLVM IR module.
	Module *ir.Module
	// Implicit entry routine of the module.
	Main *ir.Func
	// Names of the storage slots of the entry routine.
	Slots []string
}

// Generate lowers the root code block of the compilation unit to a new LLVM IR
// module. The textual form of the module is deterministic for a given AST.
func Generate(unit *ast.Unit, root ast.BlockID) (*Program, error) {
	gen := lower.NewGenerator(unit)
	m, err := gen.Lower(root)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	p := &Program{
		Module: m,
		Main:   gen.Main(),
		Slots:  gen.SlotNames(),
	}
	return p, nil
}

// Execute invokes the implicit entry routine of the module with no arguments,
// and returns its status value. Output of the program is written to
// cfg.Stdout.
func Execute(m *ir.Module, cfg interp.Config) (int32, error) {
	status, err := interp.Run(m, EntryName, cfg)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return status, nil
}

// Serialize writes the textual form of the module to path, adding the file
// extension of LLVM IR modules if not present. It returns the path of the
// output file.
func Serialize(m *ir.Module, path string) (string, error) {
	if !strings.HasSuffix(path, Ext) {
		path += Ext
	}
	if err := os.WriteFile(path, []byte(m.String()), 0o644); err != nil {
		return "", errors.WithStack(err)
	}
	return path, nil
}

// Load parses the textual LLVM IR module at path.
func Load(path string) (*ir.Module, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return m, nil
}
