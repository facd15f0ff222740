package lower

import (
	"errors"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/mewspring/tiny/ast"
	"github.com/mewspring/tiny/syntax"
	"github.com/nalgeon/be"
)

// lowerSource parses and lowers the given program.
func lowerSource(t *testing.T, src string) (*Generator, *ir.Module, error) {
	t.Helper()
	unit, root, err := syntax.Parse(src)
	be.Err(t, err, nil)
	gen := NewGenerator(unit)
	m, err := gen.Lower(root)
	return gen, m, err
}

// findBlock returns the basic block of the given name in f.
func findBlock(t *testing.T, f *ir.Func, name string) *ir.Block {
	t.Helper()
	for _, block := range f.Blocks {
		if block.Name() == name {
			return block
		}
	}
	t.Fatalf("unable to locate basic block %q in function %q", name, f.Name())
	return nil
}

// globalNames returns the names of the global variables of the module.
func globalNames(m *ir.Module) []string {
	var names []string
	for _, g := range m.Globals {
		names = append(names, g.Name())
	}
	return names
}

func TestLowerEmpty(t *testing.T) {
	gen, m, err := lowerSource(t, "")
	be.Err(t, err, nil)
	be.Equal(t, 2, len(m.Funcs))
	be.Equal(t, "printf", m.Funcs[0].Name())
	be.True(t, m.Funcs[0].Sig.Variadic)
	be.Equal(t, 0, len(m.Funcs[0].Blocks))

	main := gen.Main()
	be.True(t, main == m.Funcs[1])
	be.Equal(t, "main", main.Name())
	be.Equal(t, 1, len(main.Blocks))
	entry := main.Blocks[0]
	be.Equal(t, "entry", entry.Name())
	ret, ok := entry.Term.(*ir.TermRet)
	be.True(t, ok)
	be.Equal(t, int64(0), ret.X.(*constant.Int).X.Int64())

	be.Equal(t, []string{"fmt.int", "fmt.str"}, globalNames(m))
	be.Equal(t, 0, len(gen.SlotNames()))
}

func TestLowerStringPool(t *testing.T) {
	_, m, err := lowerSource(t, `
print "b";
print "a";
print "b";
s: String = "a";
print "%d\n";
`)
	be.Err(t, err, nil)
	// Equal contents share a single global constant; the format descriptors
	// take part in the pool.
	be.Equal(t, []string{".str.0", ".str.1", "fmt.int", "fmt.str"}, globalNames(m))
	for _, g := range m.Globals {
		be.True(t, g.Immutable)
	}
}

func TestLowerSlots(t *testing.T) {
	gen, m, err := lowerSource(t, `
x: Int = 1;
x = x + 1;
print x;
if (x > 1) {
	y: Bool = true;
	print y;
} else {
	y: String = "y";
	print y;
}
entry: Int = 2;
`)
	be.Err(t, err, nil)
	be.Equal(t, []string{"entry.1", "x", "y", "y.1"}, gen.SlotNames())

	// Storage slots are allocated once, at the start of the entry block.
	main := m.Funcs[1]
	nallocas := 0
	for _, block := range main.Blocks {
		for i, inst := range block.Insts {
			if _, ok := inst.(*ir.InstAlloca); ok {
				be.True(t, block == main.Blocks[0])
				be.Equal(t, nallocas, i)
				nallocas++
			}
		}
	}
	be.Equal(t, 4, nallocas)
}

func TestLowerIfMerge(t *testing.T) {
	gen, _, err := lowerSource(t, `
x: Int = 0;
if (x < 1) {
	x = 1;
} else {
	x = 2;
}
`)
	be.Err(t, err, nil)
	main := gen.Main()
	entry := findBlock(t, main, "entry")
	thenBlock := findBlock(t, main, "if.then.0")
	elseBlock := findBlock(t, main, "if.else.0")
	merge := findBlock(t, main, "if.merge.0")

	condBr, ok := entry.Term.(*ir.TermCondBr)
	be.True(t, ok)
	be.True(t, condBr.TargetTrue == thenBlock)
	be.True(t, condBr.TargetFalse == elseBlock)
	be.True(t, branchesTo(thenBlock, merge))
	be.True(t, branchesTo(elseBlock, merge))

	phi, ok := merge.Insts[0].(*ir.InstPhi)
	be.True(t, ok)
	be.Equal(t, 2, len(phi.Incs))
	be.True(t, phi.Incs[0].Pred == thenBlock)
	be.True(t, phi.Incs[1].Pred == elseBlock)
	be.True(t, phi.Incs[0].X == placeholder)
	be.True(t, phi.Incs[1].X == placeholder)

	_, ok = merge.Term.(*ir.TermRet)
	be.True(t, ok)
}

func TestLowerIfWithoutElse(t *testing.T) {
	gen, _, err := lowerSource(t, `if (true) { print 1; }`)
	be.Err(t, err, nil)
	main := gen.Main()
	elseBlock := findBlock(t, main, "if.else.0")
	merge := findBlock(t, main, "if.merge.0")
	be.Equal(t, 0, len(elseBlock.Insts))
	be.True(t, branchesTo(elseBlock, merge))
	phi := merge.Insts[0].(*ir.InstPhi)
	be.Equal(t, 2, len(phi.Incs))
}

func TestLowerNestedIf(t *testing.T) {
	gen, _, err := lowerSource(t, `
if (true) {
	if (false) { print 1; } else { print 2; }
} else {
	skip;
}
`)
	be.Err(t, err, nil)
	main := gen.Main()
	outerMerge := findBlock(t, main, "if.merge.0")
	innerMerge := findBlock(t, main, "if.merge.1")
	elseBlock := findBlock(t, main, "if.else.0")
	// The then branch of the outer statement ends in the merge of the inner
	// one.
	phi := outerMerge.Insts[0].(*ir.InstPhi)
	be.True(t, phi.Incs[0].Pred == innerMerge)
	be.True(t, phi.Incs[1].Pred == elseBlock)
	be.True(t, branchesTo(innerMerge, outerMerge))
}

func TestLowerWhile(t *testing.T) {
	gen, _, err := lowerSource(t, `
i: Int = 0;
while (i < 3) {
	i = i + 1;
}
print i;
`)
	be.Err(t, err, nil)
	main := gen.Main()
	entry := findBlock(t, main, "entry")
	cond := findBlock(t, main, "while.cond.0")
	body := findBlock(t, main, "while.body.0")
	after := findBlock(t, main, "while.after.0")

	br, ok := entry.Term.(*ir.TermBr)
	be.True(t, ok)
	be.True(t, br.Target == cond)
	condBr, ok := cond.Term.(*ir.TermCondBr)
	be.True(t, ok)
	be.True(t, condBr.TargetTrue == body)
	be.True(t, condBr.TargetFalse == after)
	be.True(t, branchesTo(body, cond))
	_, ok = after.Term.(*ir.TermRet)
	be.True(t, ok)
}

func TestLowerWhileFalse(t *testing.T) {
	gen, _, err := lowerSource(t, `while (false) { print 1; }`)
	be.Err(t, err, nil)
	main := gen.Main()
	cond := findBlock(t, main, "while.cond.0")
	after := findBlock(t, main, "while.after.0")
	// The after block is reachable from cond.
	condBr := cond.Term.(*ir.TermCondBr)
	be.True(t, condBr.TargetFalse == after)
}

func TestLowerPow(t *testing.T) {
	gen, _, err := lowerSource(t, `print 2 ^ 10;`)
	be.Err(t, err, nil)
	main := gen.Main()
	entry := findBlock(t, main, "entry")
	cond := findBlock(t, main, "pow.cond.0")
	body := findBlock(t, main, "pow.body.0")
	after := findBlock(t, main, "pow.after.0")
	be.True(t, branchesTo(entry, cond))
	be.True(t, branchesTo(body, cond))
	for _, inst := range cond.Insts[:2] {
		phi, ok := inst.(*ir.InstPhi)
		be.True(t, ok)
		be.Equal(t, 2, len(phi.Incs))
		be.True(t, phi.Incs[0].Pred == entry)
		be.True(t, phi.Incs[1].Pred == body)
	}
	// The print statement follows the loop.
	_, ok := after.Insts[0].(*ir.InstCall)
	be.True(t, ok)
}

func TestLowerStringSum(t *testing.T) {
	gen, m, err := lowerSource(t, `s: String = "a" + "b";`)
	be.True(t, errors.Is(err, ast.UnsupportedOperation))
	be.True(t, m == nil)
	be.True(t, gen.Main() == nil)
	be.Equal(t, 0, len(gen.SlotNames()))
}

func TestLowerDeterministic(t *testing.T) {
	const src = `
a: Int = 3;
s: String = "hello";
while (a > 0) {
	if (a == 2 || s != "x") {
		print s;
	} else {
		b: Bool = !(a >= 1);
		print b;
	}
	a = a - 1;
}
print -a * 2 ^ a / 1;
`
	_, m1, err := lowerSource(t, src)
	be.Err(t, err, nil)
	_, m2, err := lowerSource(t, src)
	be.Err(t, err, nil)
	be.Equal(t, m1.String(), m2.String())
}

func TestLowerOnce(t *testing.T) {
	unit := ast.NewUnit()
	unit.OpenBlock()
	root, err := unit.CloseBlock()
	be.Err(t, err, nil)
	gen := NewGenerator(unit)
	_, err = gen.Lower(root)
	be.Err(t, err, nil)
	_, err = gen.Lower(root)
	be.True(t, errors.Is(err, ast.InternalInvariantViolation))
}

func TestLowerInvalidRoot(t *testing.T) {
	gen := NewGenerator(ast.NewUnit())
	m, err := gen.Lower(42)
	be.True(t, errors.Is(err, ast.InternalInvariantViolation))
	be.True(t, m == nil)
}

func TestCheckMerge(t *testing.T) {
	gen := NewGenerator(ast.NewUnit())
	f := ir.NewFunc("f", i8ptr)
	fgen := gen.newFuncGen(f)
	a := f.NewBlock("a")
	b := f.NewBlock("b")
	merge := f.NewBlock("merge")
	fgen.cur = merge
	a.NewBr(merge)
	b.NewBr(a)

	// Predecessor without edge to the merge.
	phi := merge.NewPhi(ir.NewIncoming(placeholder, a), ir.NewIncoming(placeholder, b))
	be.True(t, errors.Is(fgen.checkMerge(phi, a, b), ast.InternalInvariantViolation))

	// Incoming values from the same predecessor.
	phi = merge.NewPhi(ir.NewIncoming(placeholder, a), ir.NewIncoming(placeholder, a))
	be.True(t, errors.Is(fgen.checkMerge(phi, a, b), ast.InternalInvariantViolation))

	// Missing incoming value.
	phi = merge.NewPhi(ir.NewIncoming(placeholder, a))
	be.True(t, errors.Is(fgen.checkMerge(phi, a, b), ast.InternalInvariantViolation))

	phi = merge.NewPhi(ir.NewIncoming(placeholder, a))
	be.Err(t, fgen.checkMerge(phi, a), nil)
}

func TestLowerAssignWithoutSlot(t *testing.T) {
	// x is declared, but its declaration is left out of the code block.
	unit := ast.NewUnit()
	unit.OpenBlock()
	_, err := unit.Declare(ast.Int, "x", unit.NewInt(1))
	be.Err(t, err, nil)
	assign, err := unit.NewVarAssign("x", unit.NewInt(2))
	be.Err(t, err, nil)
	be.Err(t, unit.Add(assign), nil)
	root, err := unit.CloseBlock()
	be.Err(t, err, nil)

	gen := NewGenerator(unit)
	m, err := gen.Lower(root)
	be.True(t, errors.Is(err, ast.InternalInvariantViolation))
	be.True(t, m == nil)
	be.True(t, gen.Main() == nil)
}
