// tinyc is a compiler for the tiny language, producing LLVM IR.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mewkiz/pkg/term"
	"github.com/mewspring/tiny/ast"
	"github.com/mewspring/tiny/interp"
	"github.com/mewspring/tiny/lower"
	"github.com/mewspring/tiny/syntax"
)

var (
	// dbg is a logger with the "tinyc:" prefix which logs debug messages to
	// standard error.
	dbg = log.New(io.Discard, term.MagentaBold("tinyc:")+" ", 0)
	// warn is a logger with the "tinyc:" prefix which logs warning messages to
	// standard error.
	warn = log.New(os.Stderr, term.RedBold("tinyc:")+" ", 0)
)

func usage() {
	const use = `
Usage: tinyc [OPTION]... FILE...
       tinyc -ll [OPTION]... FILE.ll
       tinyc -repl [OPTION]...

Compile tiny programs to LLVM IR. The IR is printed to standard output unless
-o or -run is given.

Flags:
`
	fmt.Fprint(os.Stderr, use[1:])
	flag.PrintDefaults()
}

func main() {
	var (
		// output specifies the output path of the LLVM IR module.
		output string
		// run specifies whether to execute the compiled program.
		run bool
		// ll specifies whether the input is an LLVM IR module to execute.
		ll bool
		// repl specifies whether to start an interactive session.
		repl bool
		// maxSteps bounds the number of instructions executed.
		maxSteps int64
		// verbose specifies whether to output debug messages.
		verbose bool
	)
	flag.StringVar(&output, "o", "", "output path of LLVM IR module (\".ll\" extension added if missing)")
	flag.BoolVar(&run, "run", false, "execute the compiled program")
	flag.BoolVar(&ll, "ll", false, "load and execute a textual LLVM IR module")
	flag.BoolVar(&repl, "repl", false, "start an interactive session")
	flag.Int64Var(&maxSteps, "max-steps", 0, "maximum number of instructions executed (0 means no limit)")
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.Usage = usage
	flag.Parse()
	if verbose {
		dbg.SetOutput(os.Stderr)
		ast.SetDebugOutput(os.Stderr)
		syntax.SetDebugOutput(os.Stderr)
		lower.SetDebugOutput(os.Stderr)
		interp.SetDebugOutput(os.Stderr)
	}
	if repl {
		// Default step limit of interactive sessions, to recover from runaway
		// loops.
		if maxSteps == 0 {
			maxSteps = defaultREPLSteps
		}
		if err := runREPL(os.Stdout, maxSteps); err != nil {
			log.Fatalf("%+v", err)
		}
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if len(output) > 0 && flag.NArg() > 1 {
		warn.Fatalf("-o flag given with %d input files; expected 1", flag.NArg())
	}
	c := newCompiler(os.Stdout, maxSteps)
	c.output = output
	c.run = run
	for _, path := range flag.Args() {
		if ll {
			c.execFile(path)
		} else {
			c.compileFile(path)
		}
	}
	if len(c.errs) > 0 {
		for _, err := range c.errs {
			if verbose {
				warn.Printf("%+v", err)
			} else {
				warn.Print(err)
			}
		}
		os.Exit(1)
	}
	os.Exit(int(c.status))
}
