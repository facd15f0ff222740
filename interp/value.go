package interp

import (
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
)

// Value is a runtime value. Integers are stored sign-extended from the bit
// size of their type.
type Value struct {
	// Integer value.
	I int64
	// Pointer value; nil for integers and the null pointer.
	P *Pointer
}

// Pointer is an address into a memory object.
type Pointer struct {
	// Memory object.
	Obj *object
	// Byte offset into the memory object.
	Off int64
}

// Addr returns the integer address of the pointer.
func (p *Pointer) Addr() int64 {
	if p == nil {
		return 0
	}
	return p.Obj.addr + p.Off
}

// object is a memory object; either a scalar stack slot or an array of bytes.
type object struct {
	// Base address of the object.
	addr int64
	// Contents of byte array objects.
	data []byte
	// Contents of scalar objects.
	cell Value
	// Scalar reports whether the object holds a single scalar value.
	scalar bool
}

// ### [ Helper functions ] ####################################################

// bitSize returns the bit size of the given integer or pointer type.
func bitSize(t types.Type) (uint64, error) {
	switch t := t.(type) {
	case *types.IntType:
		return t.BitSize, nil
	case *types.PointerType:
		return 64, nil
	default:
		return 0, errors.Errorf("support for type %v not implemented", t)
	}
}

// sext returns x truncated to the given bit size and sign-extended to 64 bits.
func sext(x int64, size uint64) int64 {
	if size == 0 || size >= 64 {
		return x
	}
	shift := 64 - size
	return x << shift >> shift
}

// zext returns x truncated to the given bit size and zero-extended to 64 bits.
func zext(x int64, size uint64) uint64 {
	if size == 0 || size >= 64 {
		return uint64(x)
	}
	return uint64(x) & (1<<size - 1)
}

// sizeOf returns the size in bytes of the given type.
func sizeOf(t types.Type) (int64, error) {
	switch t := t.(type) {
	case *types.IntType:
		return int64((t.BitSize + 7) / 8), nil
	case *types.PointerType:
		return 8, nil
	case *types.ArrayType:
		elemSize, err := sizeOf(t.ElemType)
		if err != nil {
			return 0, err
		}
		return int64(t.Len) * elemSize, nil
	default:
		return 0, errors.Errorf("support for size of type %v not implemented", t)
	}
}

// elemOf returns the element type of the given aggregate type.
func elemOf(t types.Type) (types.Type, error) {
	switch t := t.(type) {
	case *types.ArrayType:
		return t.ElemType, nil
	case *types.PointerType:
		return t.ElemType, nil
	default:
		return nil, errors.Errorf("support for indexing into type %v not implemented", t)
	}
}
