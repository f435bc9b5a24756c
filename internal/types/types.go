package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types. The set is closed: every
// consumer switches exhaustively over it.
type Kind uint8

const (
	// KindInvalid is the sentinel for unresolved types.
	KindInvalid Kind = iota
	// KindUnit is the empty type of functions without a return annotation.
	KindUnit
	// KindI32 is a signed 32-bit integer.
	KindI32
	// KindBool is a boolean.
	KindBool
	// KindU8 is an unsigned 8-bit integer.
	KindU8
	// KindStruct is a nominal struct; identity is the struct registry entry,
	// never an embedded recursive value.
	KindStruct
	// KindArray is a fixed array with a compile-time length.
	KindArray
	// KindSlice is an unsized view: a fat pointer {ptr, len} at runtime.
	KindSlice
	// KindPointer is a raw pointer.
	KindPointer
	// KindFn is a function type.
	KindFn
	// KindRange is the type of `a..b`; it exists only between type checking
	// a for header and lowering the loop.
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindI32:
		return "i32"
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindPointer:
		return "pointer"
	case KindFn:
		return "fn"
	case KindRange:
		return "range"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type. Payload indexes the
// struct or function side tables for KindStruct/KindFn.
type Type struct {
	Kind    Kind
	Elem    TypeID // arrays, slices, pointers
	Count   uint32 // arrays
	Payload uint32 // KindStruct: StructID, KindFn: FnID
}

// IsScalar reports whether the type is one of the scalar primitives.
func (t Type) IsScalar() bool {
	switch t.Kind {
	case KindI32, KindBool, KindU8:
		return true
	default:
		return false
	}
}

// MakeArray describes a fixed array of elem with the given length.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes a slice of elem.
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}

// MakePointer describes a raw pointer to elem.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}
