// Package interp executes LLVM IR modules produced by the tiny code generator.
//
// The interpreter supports the subset of LLVM IR emitted by package lower:
// integer arithmetic and comparison, stack slots, phi instructions, branches,
// string constants and calls to the printf runtime routine.
package interp

import (
	"io"
	"log"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/mewkiz/pkg/term"
	"github.com/pkg/errors"
)

var (
	// dbg is a logger with the "interp:" prefix which logs debug messages to
	// standard error when enabled.
	dbg = log.New(io.Discard, term.MagentaBold("interp:")+" ", 0)
)

// SetDebugOutput sets the output destination of debug messages.
func SetDebugOutput(w io.Writer) {
	dbg.SetOutput(w)
}

// ErrStepLimit is returned when the execution exceeds the configured number of
// steps.
var ErrStepLimit = errors.New("step limit exceeded")

// Config specifies the execution environment.
type Config struct {
	// Output of the printf runtime routine; defaults to standard output.
	Stdout io.Writer
	// Maximum number of instructions executed; zero means no limit.
	MaxSteps int64
}

// Run executes the named function of the module with no arguments, and
// returns its integer result.
func Run(m *ir.Module, entry string, cfg Config) (int32, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	var f *ir.Func
	for _, fn := range m.Funcs {
		if fn.Name() == entry {
			f = fn
			break
		}
	}
	if f == nil {
		return 0, errors.Errorf("unable to locate entry function %q", entry)
	}
	if len(f.Params) != 0 {
		return 0, errors.Errorf("invalid entry function %q; expected no parameters, got %d", entry, len(f.Params))
	}
	mc := newMachine(m, cfg)
	result, err := mc.call(f, nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	dbg.Printf("%q returned %d after %d steps", entry, result.I, mc.steps)
	return int32(result.I), nil
}
