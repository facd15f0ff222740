package finalize

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/mewspring/tiny/ast"
	"github.com/mewspring/tiny/internal/mdtest"
	"github.com/mewspring/tiny/interp"
	"github.com/mewspring/tiny/syntax"
	"github.com/nalgeon/be"
)

// maxSteps bounds the execution of test programs.
const maxSteps = 1_000_000

// run generates and executes the program, returning its output.
func run(unit *ast.Unit, root ast.BlockID) (string, error) {
	p, err := Generate(unit, root)
	if err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	cfg := interp.Config{Stdout: buf, MaxSteps: maxSteps}
	status, err := Execute(p.Module, cfg)
	if err != nil {
		return buf.String(), err
	}
	if status != 0 {
		return buf.String(), errors.New("non-zero exit status")
	}
	return buf.String(), nil
}

// runSource parses, generates and executes the program.
func runSource(src string) (string, error) {
	unit, root, err := syntax.Parse(src)
	if err != nil {
		return "", err
	}
	return run(unit, root)
}

func TestArithmetic(t *testing.T) {
	// x: Int = 2 + 3 * 4; print x;
	u := ast.NewUnit()
	u.OpenBlock()
	mul, err := u.NewBinary(u.NewInt(3), ast.Mult, u.NewInt(4))
	be.Err(t, err, nil)
	sum, err := u.NewBinary(u.NewInt(2), ast.Sum, mul)
	be.Err(t, err, nil)
	decl, err := u.Declare(ast.Int, "x", sum)
	be.Err(t, err, nil)
	be.Err(t, u.Add(decl), nil)
	x, err := u.Lookup("x")
	be.Err(t, err, nil)
	print, err := u.NewPrint(x)
	be.Err(t, err, nil)
	be.Err(t, u.Add(print), nil)
	root, err := u.CloseBlock()
	be.Err(t, err, nil)

	out, err := run(u, root)
	be.Err(t, err, nil)
	be.Equal(t, "14\n", out)
}

func TestSiblingBlocks(t *testing.T) {
	const src = `
if (true) { y: Int = 1; print y; } else { y: Int = 2; print y; }
`
	unit, root, err := syntax.Parse(src)
	be.Err(t, err, nil)
	p, err := Generate(unit, root)
	be.Err(t, err, nil)
	be.Equal(t, []string{"y", "y.1"}, p.Slots)

	// The merge receives the result of the then branch along the edge from it.
	blocks := make(map[string]*ir.Block)
	for _, block := range p.Main.Blocks {
		blocks[block.Name()] = block
	}
	phi := blocks["if.merge.0"].Insts[0].(*ir.InstPhi)
	be.True(t, phi.Incs[0].Pred == blocks["if.then.0"])

	out, err := run(unit, root)
	be.Err(t, err, nil)
	be.Equal(t, "1\n", out)
}

func TestWhileNeverEntered(t *testing.T) {
	out, err := runSource(`
n: Int = 5;
while (false) {
	n = n + 1;
}
print n;
`)
	be.Err(t, err, nil)
	be.Equal(t, "5\n", out)
}

func TestDuplicateDeclaration(t *testing.T) {
	u := ast.NewUnit()
	u.OpenBlock()
	decl, err := u.Declare(ast.Int, "z", u.NewInt(0))
	be.Err(t, err, nil)
	be.Err(t, u.Add(decl), nil)
	_, err = u.Declare(ast.Int, "z", u.NewInt(0))
	be.True(t, errors.Is(err, ast.DuplicateDeclaration))

	_, err = runSource("z: Int = 0;\nz: Int = 0;\n")
	be.True(t, errors.Is(err, ast.DuplicateDeclaration))
}

func TestSumOfBool(t *testing.T) {
	u := ast.NewUnit()
	_, err := u.NewBinary(u.NewBool(true), ast.Sum, u.NewInt(1))
	be.True(t, errors.Is(err, ast.TypeMismatch))
}

func TestSumOfStrings(t *testing.T) {
	u := ast.NewUnit()
	u.OpenBlock()
	sum, err := u.NewBinary(u.NewString("a"), ast.Sum, u.NewString("b"))
	be.Err(t, err, nil)
	be.Equal(t, ast.String, u.Expr(sum).Type())
	print, err := u.NewPrint(sum)
	be.Err(t, err, nil)
	be.Err(t, u.Add(print), nil)
	root, err := u.CloseBlock()
	be.Err(t, err, nil)

	p, err := Generate(u, root)
	be.True(t, errors.Is(err, ast.UnsupportedOperation))
	be.True(t, p == nil)
}

func TestSerializeLoad(t *testing.T) {
	const src = `
s: String = "fib";
print s;
a: Int = 0;
b: Int = 1;
i: Int = 0;
while (i < 10) {
	t: Int = a + b;
	a = b;
	b = t;
	i = i + 1;
}
print a;
print a == 55 && s == "fib";
`
	unit, root, err := syntax.Parse(src)
	be.Err(t, err, nil)
	p, err := Generate(unit, root)
	be.Err(t, err, nil)

	path, err := Serialize(p.Module, filepath.Join(t.TempDir(), "fib"))
	be.Err(t, err, nil)
	be.True(t, strings.HasSuffix(path, "fib.ll"))
	buf, err := os.ReadFile(path)
	be.Err(t, err, nil)
	be.Equal(t, p.Module.String(), string(buf))

	// A path with the extension is kept as is.
	path2, err := Serialize(p.Module, path)
	be.Err(t, err, nil)
	be.Equal(t, path, path2)

	m, err := Load(path)
	be.Err(t, err, nil)
	want := &bytes.Buffer{}
	_, err = Execute(p.Module, interp.Config{Stdout: want})
	be.Err(t, err, nil)
	got := &bytes.Buffer{}
	_, err = Execute(m, interp.Config{Stdout: got})
	be.Err(t, err, nil)
	be.Equal(t, "fib\n55\n1\n", want.String())
	be.Equal(t, want.String(), got.String())
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ll")
	be.Err(t, os.WriteFile(path, []byte("define i32 @main( {"), 0o644), nil)
	_, err := Load(path)
	be.True(t, err != nil)
}

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(paths) > 0)
	for _, path := range paths {
		cases, err := mdtest.ParseFile(path)
		be.Err(t, err, nil)
		for _, tc := range cases {
			t.Run(tc.Name, func(t *testing.T) {
				out, err := runSource(tc.Program)
				if len(tc.WantErr) > 0 {
					if err == nil {
						t.Fatalf("%s:%d: expected error %q, got output %q", path, tc.Line, tc.WantErr, out)
					}
					if !strings.Contains(err.Error(), tc.WantErr) {
						t.Fatalf("%s:%d: expected error containing %q, got %q", path, tc.Line, tc.WantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("%s:%d: unexpected error: %+v", path, tc.Line, err)
				}
				be.Equal(t, tc.Output, out)
			})
		}
	}
}
