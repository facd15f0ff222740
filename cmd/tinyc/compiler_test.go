package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mewspring/tiny/ast"
	"github.com/nalgeon/be"
)

// writeFile writes the contents to a new file in a temporary directory.
func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	be.Err(t, os.WriteFile(path, []byte(contents), 0o644), nil)
	return path
}

func TestCompilePrint(t *testing.T) {
	path := writeFile(t, "a.tiny", `print "hi";`)
	out := &bytes.Buffer{}
	c := newCompiler(out, 0)
	c.compileFile(path)
	be.Equal(t, 0, len(c.errs))
	be.True(t, strings.Contains(out.String(), "declare i32 @printf(i8* %format, ...)"))
	be.True(t, strings.Contains(out.String(), `c"hi\00"`))
}

func TestCompileRun(t *testing.T) {
	path := writeFile(t, "a.tiny", `i: Int = 0; while (i < 3) { print i; i = i + 1; }`)
	out := &bytes.Buffer{}
	c := newCompiler(out, 0)
	c.run = true
	c.compileFile(path)
	be.Equal(t, 0, len(c.errs))
	be.Equal(t, "0\n1\n2\n", out.String())
	be.Equal(t, int32(0), c.status)
}

func TestCompileSerializeExec(t *testing.T) {
	path := writeFile(t, "a.tiny", `print 6 * 7;`)
	outPath := filepath.Join(t.TempDir(), "a")
	c := newCompiler(&bytes.Buffer{}, 0)
	c.output = outPath
	c.compileFile(path)
	be.Equal(t, 0, len(c.errs))

	out := &bytes.Buffer{}
	c = newCompiler(out, 0)
	c.execFile(outPath + ".ll")
	be.Equal(t, 0, len(c.errs))
	be.Equal(t, "42\n", out.String())
}

func TestCompileErrors(t *testing.T) {
	bad := writeFile(t, "bad.tiny", "x: Int = 1;\nx: Int = 2;\n")
	good := writeFile(t, "good.tiny", `print 1;`)
	out := &bytes.Buffer{}
	c := newCompiler(out, 0)
	c.run = true
	c.compileFile(bad)
	c.compileFile(filepath.Join(t.TempDir(), "missing.tiny"))
	// Errors do not prevent the compilation of other files.
	c.compileFile(good)
	be.Equal(t, 2, len(c.errs))
	be.True(t, errors.Is(c.errs[0], ast.DuplicateDeclaration))
	be.True(t, strings.HasPrefix(c.errs[0].Error(), bad+": 2:1: "))
	be.Equal(t, "1\n", out.String())
}
