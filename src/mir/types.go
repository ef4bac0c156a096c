// Package mir implements the target-independent mid-level intermediate
// representation consumed by the backend. A finalized mir.Module is the
// boundary artifact the front-end (lexer, parser, semantic analysis - all
// external collaborators, not part of this repository) hands to the backend.
package mir

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind discriminates the variants of Type.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindPtr
	KindArray
	KindStruct
)

// Type is a tagged variant describing the shape of an MIR value: a plain
// integer of some bit width, a pointer, a fixed-length array, or a struct
// of member types. Exactly one of Elem/Members/BitWidth is meaningful,
// selected by Kind.
type Type struct {
	Kind         Kind
	BitWidth     int    // meaningful when Kind == KindInt.
	PointerLevel int    // number of pointer indirections wrapping this type.
	Elem         *Type  // element type, meaningful when Kind == KindPtr or KindArray.
	ArrayLen     int    // meaningful when Kind == KindArray.
	Members      []Type // meaningful when Kind == KindStruct.
	Name         string // optional struct tag, for diagnostics only.
}

// ---------------------
// ----- Constants -----
// ---------------------

// PointerWidth is the architecture's pointer width in bits. The backend
// targets AArch64 exclusively, so this is a fixed constant rather than a
// TD lookup.
const PointerWidth = 64

// ---------------------
// ----- functions -----
// ---------------------

// IntType returns a plain integer type of the given bit width.
func IntType(bits int) Type { return Type{Kind: KindInt, BitWidth: bits} }

// PtrType returns a pointer-to-elem type.
func PtrType(elem Type) Type {
	e := elem
	return Type{Kind: KindPtr, BitWidth: PointerWidth, Elem: &e, PointerLevel: elem.PointerLevel + 1}
}

// ArrayType returns a fixed-length array-of-elem type.
func ArrayType(elem Type, n int) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e, ArrayLen: n}
}

// StructType returns a struct type with the given members, in declaration order.
func StructType(name string, members ...Type) Type {
	return Type{Kind: KindStruct, Name: name, Members: members}
}

// IsPTR reports whether t is a pointer type.
func (t Type) IsPTR() bool { return t.Kind == KindPtr }

// IsStruct reports whether t is a struct type.
func (t Type) IsStruct() bool { return t.Kind == KindStruct }

// IsArray reports whether t is an array type.
func (t Type) IsArray() bool { return t.Kind == KindArray }

// GetByteSize returns t's size in bytes.
func (t Type) GetByteSize() int {
	switch t.Kind {
	case KindInt:
		return (t.BitWidth + 7) / 8
	case KindPtr:
		return PointerWidth / 8
	case KindArray:
		return t.ArrayLen * t.Elem.GetByteSize()
	case KindStruct:
		size := 0
		for _, m := range t.Members {
			size += m.GetByteSize()
		}
		return size
	default:
		return 0
	}
}

// GetMemberTypes returns t's struct members, or nil if t is not a struct.
func (t Type) GetMemberTypes() []Type { return t.Members }

// GetBaseType returns the pointee/element type for pointers and arrays,
// or t itself otherwise.
func (t Type) GetBaseType() Type {
	if t.Elem != nil {
		return *t.Elem
	}
	return t
}

// CalcElemSize returns the byte size of one element, for pointer/array
// arithmetic. For structs the caller should use GetElemByteOffset instead.
func (t Type) CalcElemSize() int {
	if t.Elem != nil {
		return t.Elem.GetByteSize()
	}
	return t.GetByteSize()
}

// GetElemByteOffset returns the byte offset of the idx'th member (structs)
// or the idx'th element (arrays/pointers).
func (t Type) GetElemByteOffset(idx int) int {
	if t.Kind == KindStruct {
		off := 0
		for i := 0; i < idx && i < len(t.Members); i++ {
			off += t.Members[i].GetByteSize()
		}
		return off
	}
	return idx * t.CalcElemSize()
}

// GetPointerLevel returns the number of pointer indirections in t.
func (t Type) GetPointerLevel() int { return t.PointerLevel }

// String renders t for diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", t.BitWidth)
	case KindPtr:
		return t.Elem.String() + "*"
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.ArrayLen)
	case KindStruct:
		return "struct " + t.Name
	default:
		return "?"
	}
}
