package main

import (
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/mewspring/tiny/finalize"
	"github.com/mewspring/tiny/interp"
	"github.com/mewspring/tiny/syntax"
	"github.com/pkg/errors"
)

// compiler tracks the state of the compiler, including any errors encountered
// during compilation.
type compiler struct {
	// Output of compiled programs and printed LLVM IR modules.
	w io.Writer
	// Maximum number of instructions executed per program; zero means no
	// limit.
	maxSteps int64
	// Output path of the LLVM IR module; empty to print the module, unless
	// run is set.
	output string
	// Execute compiled programs.
	run bool
	// Status value of the last program executed.
	status int32
	// List of errors encountered during compilation.
	errs []error
}

// newCompiler returns a new compiler for tracking the state of compilation.
func newCompiler(w io.Writer, maxSteps int64) *compiler {
	return &compiler{
		w:        w,
		maxSteps: maxSteps,
	}
}

// compileFile compiles the tiny source file at path. Errors are recorded, and
// the compilation of other files may proceed.
func (c *compiler) compileFile(path string) {
	dbg.Println("compiling:", path)
	if err := c.compile(path); err != nil {
		c.errs = append(c.errs, errors.Wrapf(err, "%s", path))
	}
}

// compile compiles the tiny source file at path, and serializes, executes or
// prints the resulting LLVM IR module.
func (c *compiler) compile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	unit, root, err := syntax.Parse(string(buf))
	if err != nil {
		return errors.WithStack(err)
	}
	p, err := finalize.Generate(unit, root)
	if err != nil {
		return errors.WithStack(err)
	}
	dbg.Printf("storage slots of %q: %v", path, p.Slots)
	if len(c.output) > 0 {
		outPath, err := finalize.Serialize(p.Module, c.output)
		if err != nil {
			return errors.WithStack(err)
		}
		dbg.Println("created:", outPath)
	}
	if c.run {
		return c.exec(p.Module)
	}
	if len(c.output) == 0 {
		if _, err := fmt.Fprint(c.w, p.Module); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// execFile loads and executes the LLVM IR module at path.
func (c *compiler) execFile(path string) {
	dbg.Println("executing:", path)
	m, err := finalize.Load(path)
	if err == nil {
		err = c.exec(m)
	}
	if err != nil {
		c.errs = append(c.errs, errors.Wrapf(err, "%s", path))
	}
}

// exec executes the entry routine of the module, and records its status value.
func (c *compiler) exec(m *ir.Module) error {
	cfg := interp.Config{
		Stdout:   c.w,
		MaxSteps: c.maxSteps,
	}
	status, err := finalize.Execute(m, cfg)
	if err != nil {
		return errors.WithStack(err)
	}
	c.status = status
	return nil
}
