package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mewspring/tiny/ast"
	"github.com/mewspring/tiny/finalize"
	"github.com/mewspring/tiny/interp"
	"github.com/mewspring/tiny/syntax"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rickypai/natsort"
)

const (
	// defaultREPLSteps is the default step limit of programs run in
	// interactive sessions.
	defaultREPLSteps = 10_000_000
	// historyFile is the name of the history file, relative to the home
	// directory.
	historyFile = ".tinyc_history"
	promptMain  = "tiny> "
	promptCont  = "....> "
)

const banner = `tiny interactive session. Type :help for commands.`

const help = `Commands:
  :help  list the commands
  :vars  list the variables of the session
  :ir    print the LLVM IR module of the session
  :reset forget all entries of the session
  :quit  exit the session (alias :q)`

// runREPL starts an interactive session reading from the terminal.
func runREPL(w io.Writer, maxSteps int64) error {
	fmt.Fprintln(w, banner)
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	s := newSession(maxSteps)
	for {
		entry, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(w)
			return nil
		}
		if len(strings.TrimSpace(entry)) == 0 {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
		quit, err := s.handle(w, entry)
		if err != nil {
			warn.Print(err)
		}
		if quit {
			return nil
		}
	}
}

// readEntry reads an entry from the terminal, prompting for continuation lines
// for as long as the entry is an incomplete program.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Aborted entry.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, _, err := syntax.Parse(src); !syntax.IsIncomplete(err) {
			return src, true
		}
	}
}

// session is an interactive session. Accepted entries accumulate into a
// program which is recompiled and rerun for every new entry; only the output
// not seen before is shown.
type session struct {
	maxSteps int64
	// Source code of the accepted entries.
	src string
	// Length of the output of the accepted entries.
	nout int
	// Compilation unit and program of the accepted entries; nil before the
	// first accepted entry.
	unit *ast.Unit
	root ast.BlockID
	prog *finalize.Program
}

// newSession returns a new interactive session.
func newSession(maxSteps int64) *session {
	return &session{maxSteps: maxSteps}
}

// handle handles the command or program entry. The returned boolean reports
// whether the session should end.
func (s *session) handle(w io.Writer, entry string) (bool, error) {
	cmd := strings.TrimSpace(entry)
	if !strings.HasPrefix(cmd, ":") {
		return false, s.eval(w, entry)
	}
	switch cmd {
	case ":quit", ":q":
		return true, nil
	case ":help":
		fmt.Fprintln(w, help)
	case ":vars":
		for _, v := range s.vars() {
			fmt.Fprintln(w, v)
		}
	case ":ir":
		if s.prog != nil {
			fmt.Fprint(w, s.prog.Module)
		}
	case ":reset":
		*s = session{maxSteps: s.maxSteps}
	default:
		return false, errors.Errorf("unknown command %q; type :help for commands", cmd)
	}
	return false, nil
}

// eval compiles and runs the entry as a continuation of the session. The entry
// is rejected, leaving the session unchanged, if the program fails to compile
// or run.
func (s *session) eval(w io.Writer, entry string) error {
	src := s.src + entry + "\n"
	unit, root, err := syntax.Parse(src)
	if err != nil {
		return errors.WithStack(err)
	}
	prog, err := finalize.Generate(unit, root)
	if err != nil {
		return errors.WithStack(err)
	}
	buf := &bytes.Buffer{}
	cfg := interp.Config{
		Stdout:   buf,
		MaxSteps: s.maxSteps,
	}
	if _, err := finalize.Execute(prog.Module, cfg); err != nil {
		return errors.WithStack(err)
	}
	out := buf.Bytes()
	if len(out) < s.nout {
		return errors.Errorf("output of session shrunk from %d to %d bytes", s.nout, len(out))
	}
	if _, err := w.Write(out[s.nout:]); err != nil {
		return errors.WithStack(err)
	}
	s.src, s.nout = src, len(out)
	s.unit, s.root, s.prog = unit, root, prog
	return nil
}

// vars returns the variables declared at the top level of the session, in
// natural sort order of their names.
func (s *session) vars() []string {
	if s.unit == nil {
		return nil
	}
	block, ok := s.unit.Block(s.root)
	if !ok {
		return nil
	}
	types := make(map[string]ast.DataType)
	var names []string
	for _, id := range block.Stmts {
		decl, ok := s.unit.Stmt(id).(*ast.VarDecl)
		if !ok {
			continue
		}
		ident, ok := s.unit.Expr(decl.Ident).(*ast.Identifier)
		if !ok {
			continue
		}
		names = append(names, ident.Name)
		types[ident.Name] = ident.Typ
	}
	natsort.Strings(names)
	var vars []string
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("%s: %v", name, types[name]))
	}
	return vars
}
