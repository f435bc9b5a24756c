package ast

import "github.com/haiman1024/Contractus/internal/source"

// TypeExprKind distinguishes syntactic type forms.
type TypeExprKind uint8

const (
	// TypeI32 is the 'i32' scalar type.
	TypeI32 TypeExprKind = iota
	// TypeBool is the 'bool' scalar type.
	TypeBool
	// TypeU8 is the 'u8' scalar type.
	TypeU8
	// TypeNamed refers to a struct by name.
	TypeNamed
	// TypeArray is a fixed-size array [T; N].
	TypeArray
	// TypeSlice is an unsized slice [T].
	TypeSlice
	// TypePointer is a raw pointer *T.
	TypePointer
)

// TypeExpr is the syntactic form of a type annotation. Resolution into a
// types.TypeID happens in sema.
type TypeExpr struct {
	Kind TypeExprKind
	Name string    // TypeNamed
	Elem *TypeExpr // TypeArray, TypeSlice, TypePointer
	Len  uint32    // TypeArray
	Span source.Span
}

func (t *TypeExpr) String() string {
	switch t.Kind {
	case TypeI32:
		return "i32"
	case TypeBool:
		return "bool"
	case TypeU8:
		return "u8"
	case TypeNamed:
		return t.Name
	case TypeArray:
		return "[" + t.Elem.String() + "; N]"
	case TypeSlice:
		return "[" + t.Elem.String() + "]"
	case TypePointer:
		return "*" + t.Elem.String()
	}
	return "?"
}
