package interp

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// objectAlign is the alignment of memory object base addresses.
const objectAlign = 16

// machine holds the execution state of a module.
type machine struct {
	cfg Config
	m   *ir.Module
	// globals maps from global variable to its memory object, created on first
	// reference.
	globals map[*ir.Global]*object
	// Base address of the next memory object.
	next int64
	// Number of instructions executed.
	steps int64
}

// newMachine returns a new machine for executing the given module.
func newMachine(m *ir.Module, cfg Config) *machine {
	return &machine{
		cfg:     cfg,
		m:       m,
		globals: make(map[*ir.Global]*object),
		next:    objectAlign,
	}
}

// frame holds the local values of a function invocation.
type frame struct {
	// locals maps from parameter or instruction to its value.
	locals map[value.Value]Value
}

// newObject returns a new memory object of the given size in bytes.
func (mc *machine) newObject(size int64) *object {
	obj := &object{addr: mc.next}
	if size < 1 {
		size = 1
	}
	mc.next += (size + objectAlign - 1) / objectAlign * objectAlign
	return obj
}

// step accounts for the execution of one instruction.
func (mc *machine) step() error {
	mc.steps++
	if mc.cfg.MaxSteps > 0 && mc.steps > mc.cfg.MaxSteps {
		return errors.WithStack(ErrStepLimit)
	}
	return nil
}

// === [ Functions ] ===========================================================

// call invokes the function with the given arguments.
func (mc *machine) call(f *ir.Func, args []Value) (Value, error) {
	if len(f.Blocks) == 0 {
		return mc.callExternal(f, args)
	}
	if len(args) < len(f.Params) {
		return Value{}, errors.Errorf("too few arguments to %q; expected %d, got %d", f.Name(), len(f.Params), len(args))
	}
	fr := &frame{locals: make(map[value.Value]Value)}
	for i, param := range f.Params {
		fr.locals[param] = args[i]
	}
	var prev *ir.Block
	block := f.Blocks[0]
	for {
		if err := mc.enterBlock(fr, block, prev); err != nil {
			return Value{}, errors.WithStack(err)
		}
		for _, inst := range block.Insts {
			if _, ok := inst.(*ir.InstPhi); ok {
				continue
			}
			if err := mc.step(); err != nil {
				return Value{}, err
			}
			if err := mc.execInst(fr, inst); err != nil {
				return Value{}, errors.WithStack(err)
			}
		}
		if err := mc.step(); err != nil {
			return Value{}, err
		}
		switch term := block.Term.(type) {
		case *ir.TermRet:
			if term.X == nil {
				return Value{}, nil
			}
			return mc.eval(fr, term.X)
		case *ir.TermBr:
			target, err := asBlock(term.Target)
			if err != nil {
				return Value{}, err
			}
			prev, block = block, target
		case *ir.TermCondBr:
			cond, err := mc.eval(fr, term.Cond)
			if err != nil {
				return Value{}, errors.WithStack(err)
			}
			var target *ir.Block
			if cond.I != 0 {
				target, err = asBlock(term.TargetTrue)
			} else {
				target, err = asBlock(term.TargetFalse)
			}
			if err != nil {
				return Value{}, err
			}
			prev, block = block, target
		case nil:
			return Value{}, errors.Errorf("basic block %q of function %q not terminated", block.Name(), f.Name())
		default:
			return Value{}, errors.Errorf("support for terminator %T not implemented", term)
		}
	}
}

// enterBlock evaluates the phi instructions at the start of the basic block,
// entered from prev. All phi instructions are evaluated before any of them is
// assigned.
func (mc *machine) enterBlock(fr *frame, block, prev *ir.Block) error {
	var phis []*ir.InstPhi
	var vals []Value
	for _, inst := range block.Insts {
		phi, ok := inst.(*ir.InstPhi)
		if !ok {
			break
		}
		found := false
		for _, inc := range phi.Incs {
			pred, err := asBlock(inc.Pred)
			if err != nil {
				return err
			}
			if pred != prev {
				continue
			}
			v, err := mc.eval(fr, inc.X)
			if err != nil {
				return errors.WithStack(err)
			}
			phis = append(phis, phi)
			vals = append(vals, v)
			found = true
			break
		}
		if !found {
			prevName := "<entry>"
			if prev != nil {
				prevName = prev.Name()
			}
			return errors.Errorf("phi instruction %q in basic block %q has no incoming value from %q", phi.Name(), block.Name(), prevName)
		}
	}
	for i, phi := range phis {
		fr.locals[phi] = vals[i]
	}
	return nil
}

// === [ Instructions ] ========================================================

// execInst executes the instruction.
func (mc *machine) execInst(fr *frame, inst ir.Instruction) error {
	switch inst := inst.(type) {
	// Memory instructions.
	case *ir.InstAlloca:
		size, err := sizeOf(inst.ElemType)
		if err != nil {
			return err
		}
		obj := mc.newObject(size)
		obj.scalar = true
		fr.locals[inst] = Value{P: &Pointer{Obj: obj}}
	case *ir.InstLoad:
		src, err := mc.eval(fr, inst.Src)
		if err != nil {
			return err
		}
		v, err := load(src.P, inst.ElemType)
		if err != nil {
			return err
		}
		fr.locals[inst] = v
	case *ir.InstStore:
		src, err := mc.eval(fr, inst.Src)
		if err != nil {
			return err
		}
		dst, err := mc.eval(fr, inst.Dst)
		if err != nil {
			return err
		}
		if err := store(dst.P, src); err != nil {
			return err
		}
	case *ir.InstGetElementPtr:
		src, err := mc.eval(fr, inst.Src)
		if err != nil {
			return err
		}
		var indices []int64
		for _, index := range inst.Indices {
			v, err := mc.eval(fr, index)
			if err != nil {
				return err
			}
			indices = append(indices, v.I)
		}
		p, err := gep(src.P, inst.ElemType, indices)
		if err != nil {
			return err
		}
		fr.locals[inst] = Value{P: p}
	// Binary and bitwise instructions.
	case *ir.InstAdd:
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) { return x + y, nil })
	case *ir.InstSub:
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) { return x - y, nil })
	case *ir.InstMul:
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) { return x * y, nil })
	case *ir.InstSDiv:
		size, err := bitSize(inst.Type())
		if err != nil {
			return err
		}
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, errors.New("integer division by zero")
			}
			if y == -1 && x == sext(1<<(size-1), size) {
				return 0, errors.New("integer overflow in division")
			}
			return x / y, nil
		})
	case *ir.InstAnd:
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) { return x & y, nil })
	case *ir.InstOr:
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) { return x | y, nil })
	case *ir.InstXor:
		return mc.binary(fr, inst, inst.X, inst.Y, func(x, y int64) (int64, error) { return x ^ y, nil })
	// Conversion instructions.
	case *ir.InstZExt:
		from, err := bitSize(inst.From.Type())
		if err != nil {
			return err
		}
		x, err := mc.eval(fr, inst.From)
		if err != nil {
			return err
		}
		fr.locals[inst] = Value{I: int64(zext(x.I, from))}
	case *ir.InstPtrToInt:
		x, err := mc.eval(fr, inst.From)
		if err != nil {
			return err
		}
		size, err := bitSize(inst.To)
		if err != nil {
			return err
		}
		fr.locals[inst] = Value{I: sext(x.P.Addr(), size)}
	// Other instructions.
	case *ir.InstICmp:
		x, err := mc.eval(fr, inst.X)
		if err != nil {
			return err
		}
		y, err := mc.eval(fr, inst.Y)
		if err != nil {
			return err
		}
		size, err := bitSize(inst.X.Type())
		if err != nil {
			return err
		}
		ok, err := icmp(inst.Pred, x, y, size)
		if err != nil {
			return err
		}
		fr.locals[inst] = boolValue(ok)
	case *ir.InstCall:
		callee, ok := inst.Callee.(*ir.Func)
		if !ok {
			return errors.Errorf("support for indirect call through %T not implemented", inst.Callee)
		}
		var args []Value
		for _, arg := range inst.Args {
			v, err := mc.eval(fr, arg)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		result, err := mc.call(callee, args)
		if err != nil {
			return errors.WithStack(err)
		}
		fr.locals[inst] = result
	default:
		return errors.Errorf("support for instruction %T not implemented", inst)
	}
	return nil
}

// binary executes the binary instruction inst with operands x and y.
func (mc *machine) binary(fr *frame, inst value.Value, x, y value.Value, op func(x, y int64) (int64, error)) error {
	size, err := bitSize(inst.Type())
	if err != nil {
		return err
	}
	xv, err := mc.eval(fr, x)
	if err != nil {
		return err
	}
	yv, err := mc.eval(fr, y)
	if err != nil {
		return err
	}
	z, err := op(xv.I, yv.I)
	if err != nil {
		return errors.WithStack(err)
	}
	fr.locals[inst] = Value{I: sext(z, size)}
	return nil
}

// === [ Values ] ==============================================================

// eval returns the runtime value of the given IR value.
func (mc *machine) eval(fr *frame, v value.Value) (Value, error) {
	switch v := v.(type) {
	case *constant.Int:
		return Value{I: sext(v.X.Int64(), v.Typ.BitSize)}, nil
	case *constant.Null:
		return Value{}, nil
	case *ir.Global:
		obj, err := mc.global(v)
		if err != nil {
			return Value{}, err
		}
		return Value{P: &Pointer{Obj: obj}}, nil
	case *constant.ExprGetElementPtr:
		src, err := mc.eval(fr, v.Src)
		if err != nil {
			return Value{}, err
		}
		var indices []int64
		for _, index := range v.Indices {
			x, err := mc.eval(fr, index)
			if err != nil {
				return Value{}, err
			}
			indices = append(indices, x.I)
		}
		p, err := gep(src.P, v.ElemType, indices)
		if err != nil {
			return Value{}, err
		}
		return Value{P: p}, nil
	case *constant.Index:
		// Indices of constant expressions parsed from textual IR.
		return mc.eval(fr, v.Constant)
	}
	if x, ok := fr.locals[v]; ok {
		return x, nil
	}
	return Value{}, errors.Errorf("support for value %T (%v) not implemented or value not yet defined", v, v.Ident())
}

// global returns the memory object of the global variable.
func (mc *machine) global(g *ir.Global) (*object, error) {
	if obj, ok := mc.globals[g]; ok {
		return obj, nil
	}
	var obj *object
	switch init := g.Init.(type) {
	case *constant.CharArray:
		obj = mc.newObject(int64(len(init.X)))
		obj.data = append([]byte(nil), init.X...)
	case *constant.Int:
		obj = mc.newObject(8)
		obj.scalar = true
		obj.cell = Value{I: sext(init.X.Int64(), init.Typ.BitSize)}
	case nil:
		return nil, errors.Errorf("global %q has no definition", g.Name())
	default:
		return nil, errors.Errorf("support for initializer %T of global %q not implemented", init, g.Name())
	}
	mc.globals[g] = obj
	return obj, nil
}

// ### [ Helper functions ] ####################################################

// load reads a value of the given type from memory.
func load(p *Pointer, elemType types.Type) (Value, error) {
	if p == nil {
		return Value{}, errors.New("load from null pointer")
	}
	if p.Obj.scalar {
		if p.Off != 0 {
			return Value{}, errors.Errorf("load at offset %d of scalar object", p.Off)
		}
		return p.Obj.cell, nil
	}
	if t, ok := elemType.(*types.IntType); ok && t.BitSize == 8 {
		if p.Off < 0 || p.Off >= int64(len(p.Obj.data)) {
			return Value{}, errors.Errorf("load out of bounds at offset %d", p.Off)
		}
		return Value{I: sext(int64(p.Obj.data[p.Off]), 8)}, nil
	}
	return Value{}, errors.Errorf("support for load of type %v from byte array not implemented", elemType)
}

// store writes the value to memory.
func store(p *Pointer, v Value) error {
	if p == nil {
		return errors.New("store to null pointer")
	}
	if !p.Obj.scalar || p.Off != 0 {
		return errors.New("store to constant memory")
	}
	p.Obj.cell = v
	return nil
}

// gep returns the address of the element at the given indices into an
// aggregate of the element type pointed to by p.
func gep(p *Pointer, elemType types.Type, indices []int64) (*Pointer, error) {
	if p == nil {
		return nil, errors.New("getelementptr on null pointer")
	}
	off := p.Off
	t := elemType
	for i, index := range indices {
		if i > 0 {
			elem, err := elemOf(t)
			if err != nil {
				return nil, err
			}
			t = elem
		}
		size, err := sizeOf(t)
		if err != nil {
			return nil, err
		}
		off += index * size
	}
	return &Pointer{Obj: p.Obj, Off: off}, nil
}

// icmp compares x and y of the given bit size according to the predicate.
func icmp(pred enum.IPred, x, y Value, size uint64) (bool, error) {
	a, b := x.I, y.I
	if x.P != nil || y.P != nil {
		a, b = x.P.Addr(), y.P.Addr()
	}
	ua, ub := zext(a, size), zext(b, size)
	switch pred {
	case enum.IPredEQ:
		return a == b, nil
	case enum.IPredNE:
		return a != b, nil
	case enum.IPredSLT:
		return a < b, nil
	case enum.IPredSLE:
		return a <= b, nil
	case enum.IPredSGT:
		return a > b, nil
	case enum.IPredSGE:
		return a >= b, nil
	case enum.IPredULT:
		return ua < ub, nil
	case enum.IPredULE:
		return ua <= ub, nil
	case enum.IPredUGT:
		return ua > ub, nil
	case enum.IPredUGE:
		return ua >= ub, nil
	default:
		return false, errors.Errorf("support for icmp predicate %v not implemented", pred)
	}
}

// boolValue returns the i1 value of b.
func boolValue(b bool) Value {
	if b {
		return Value{I: sext(1, 1)}
	}
	return Value{}
}

// asBlock returns the basic block of a branch target or phi predecessor.
func asBlock(v interface{}) (*ir.Block, error) {
	block, ok := v.(*ir.Block)
	if !ok {
		return nil, errors.Errorf("invalid basic block value; expected *ir.Block, got %T", v)
	}
	return block, nil
}
