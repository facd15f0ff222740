package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/mewspring/tiny/ast"
)

// slot returns the storage slot of the given identifier, allocating it on
// first request. The slot is placed at the start of the entry block so that
// it is allocated once, regardless of where the identifier first occurs.
func (fgen *funcGen) slot(id ast.ExprID) (*ir.InstAlloca, error) {
	if slot, ok := fgen.slots[id]; ok {
		return slot, nil
	}
	ident, ok := fgen.gen.unit.Expr(id).(*ast.Identifier)
	if !ok || ident == nil {
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "storage slot requested for non-identifier node %d", id)
	}
	typ, err := fgen.gen.irType(ident.Typ)
	if err != nil {
		return nil, err
	}
	slot := ir.NewAlloca(typ)
	slot.SetName(fgen.localName(ident.Name))
	// Insert after the slots already present in the entry block.
	insts := fgen.entry.Insts
	insts = append(insts, nil)
	copy(insts[fgen.nslots+1:], insts[fgen.nslots:])
	insts[fgen.nslots] = slot
	fgen.entry.Insts = insts
	fgen.nslots++
	fgen.slots[id] = slot
	dbg.Printf("storage slot %%%s allocated for %q (node %d)", slot.Name(), ident.Name, id)
	return slot, nil
}

// existingSlot returns the storage slot of the given identifier, which must
// already have been allocated.
func (fgen *funcGen) existingSlot(id ast.ExprID) (*ir.InstAlloca, error) {
	slot, ok := fgen.slots[id]
	if !ok {
		return nil, fgen.gen.errorf(ast.InternalInvariantViolation, "storage slot of identifier node %d not allocated", id)
	}
	return slot, nil
}

// localName returns a unique local name based on the given name. Identifiers
// of sibling code blocks may share a name, and basic blocks share the
// namespace of local variables.
func (fgen *funcGen) localName(name string) string {
	candidate := name
	for fgen.names[candidate] {
		fgen.suffixes[name]++
		candidate = fmt.Sprintf("%s.%d", name, fgen.suffixes[name])
	}
	fgen.names[candidate] = true
	return candidate
}

// newBlock appends a new basic block of the given kind to the function being
// generated, named after the kind and the sequence number of its construct.
func (fgen *funcGen) newBlock(kind string, n int) *ir.Block {
	return fgen.f.NewBlock(fgen.localName(fmt.Sprintf("%s.%d", kind, n)))
}

// checkCursor reports an internal invariant violation if the current basic
// block has already been terminated.
func (fgen *funcGen) checkCursor(after string) error {
	if fgen.cur == nil {
		return fgen.gen.errorf(ast.InternalInvariantViolation, "no current basic block after %s", after)
	}
	if fgen.cur.Term != nil {
		return fgen.gen.errorf(ast.InternalInvariantViolation, "current basic block %q terminated after %s", fgen.cur.Name(), after)
	}
	return nil
}
