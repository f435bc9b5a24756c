package ast

import "github.com/haiman1024/Contractus/internal/source"

// ExprKind distinguishes expression forms.
type ExprKind uint8

const (
	// ExprIntLit is an integer literal.
	ExprIntLit ExprKind = iota
	// ExprBoolLit is a boolean literal.
	ExprBoolLit
	// ExprIdent is a name reference.
	ExprIdent
	// ExprUnary is a prefix operation.
	ExprUnary
	// ExprBinary is an infix operation.
	ExprBinary
	// ExprAssign is `target = value` (right-associative).
	ExprAssign
	// ExprRange is `start..end`, valid only as a for iterable.
	ExprRange
	// ExprCall is a function call.
	ExprCall
	// ExprField is `object.field`.
	ExprField
	// ExprIndex is `object[index]`.
	ExprIndex
	// ExprStructLit is `Name { field: value, ... }`.
	ExprStructLit
	// ExprArrayLit is `[e0, e1, ...]`.
	ExprArrayLit
)

// Expr is one expression node; the variant named by Kind is populated.
type Expr struct {
	Kind ExprKind
	Span source.Span

	IntVal  int64  // ExprIntLit
	BoolVal bool   // ExprBoolLit
	Name    string // ExprIdent, ExprStructLit (type name), ExprField (field name)

	Op      BinOp   // ExprBinary
	UnOp    UnOp    // ExprUnary
	Left    *Expr   // ExprBinary, ExprAssign (target), ExprRange (start)
	Right   *Expr   // ExprBinary, ExprAssign (value), ExprRange (end)
	Operand *Expr   // ExprUnary, ExprCall (callee), ExprField/ExprIndex (object)
	Index   *Expr   // ExprIndex
	Args    []*Expr // ExprCall
	Elems   []*Expr // ExprArrayLit

	Fields []StructLitField // ExprStructLit

	NameSpan source.Span // ExprField: span of the field name
}

// StructLitField is one `name: value` entry in a struct literal.
type StructLitField struct {
	Name     string
	NameSpan source.Span
	Value    *Expr
}

// BinOp enumerates infix operators.
type BinOp uint8

const (
	// BinAdd is '+'.
	BinAdd BinOp = iota
	// BinSub is '-'.
	BinSub
	// BinMul is '*'.
	BinMul
	// BinDiv is '/'.
	BinDiv
	// BinMod is '%'.
	BinMod
	// BinEq is '=='.
	BinEq
	// BinNe is '!='.
	BinNe
	// BinLt is '<'.
	BinLt
	// BinLe is '<='.
	BinLe
	// BinGt is '>'.
	BinGt
	// BinGe is '>='.
	BinGe
	// BinAnd is '&&'.
	BinAnd
	// BinOr is '||'.
	BinOr
)

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	}
	return "?"
}

// IsComparison reports whether the operator yields bool from two scalars.
func (op BinOp) IsComparison() bool {
	switch op {
	case BinEq, BinNe, BinLt, BinLe, BinGt, BinGe:
		return true
	default:
		return false
	}
}

// IsLogical reports whether the operator takes and yields bool.
func (op BinOp) IsLogical() bool {
	return op == BinAnd || op == BinOr
}

// UnOp enumerates prefix operators.
type UnOp uint8

const (
	// UnNot is logical '!'.
	UnNot UnOp = iota
	// UnNeg is arithmetic '-'.
	UnNeg
	// UnDeref is pointer dereference '*'.
	UnDeref
	// UnAddr is address-of '&'.
	UnAddr
)

func (op UnOp) String() string {
	switch op {
	case UnNot:
		return "!"
	case UnNeg:
		return "-"
	case UnDeref:
		return "*"
	case UnAddr:
		return "&"
	}
	return "?"
}
