// Package mir defines the mid-level intermediate representation: a flat,
// register-based instruction list per function. Structured control flow is
// already gone by this point; loops and conditionals are labels and jumps.
// Mutable storage is explicit through Alloc/Load/Store, so the C backend
// can emit each register as a single-assignment local.
package mir

import (
	"github.com/haiman1024/Contractus/internal/types"
)

// Reg names a virtual register. Registers are function-local, typed, and
// assigned by exactly one instruction.
type Reg uint32

// NoReg marks an absent register operand.
const NoReg Reg = 0xFFFFFFFF

// LabelID names a jump target within one function.
type LabelID uint32

// BinOp enumerates arithmetic and comparison opcodes. Logical && and ||
// never reach MIR; lowering turns them into control flow.
type BinOp uint8

const (
	// OpAdd is integer addition.
	OpAdd BinOp = iota
	// OpSub is integer subtraction.
	OpSub
	// OpMul is integer multiplication.
	OpMul
	// OpDiv is integer division.
	OpDiv
	// OpMod is integer remainder.
	OpMod
	// OpEq compares for equality.
	OpEq
	// OpNe compares for inequality.
	OpNe
	// OpLt is less-than.
	OpLt
	// OpLe is less-or-equal.
	OpLe
	// OpGt is greater-than.
	OpGt
	// OpGe is greater-or-equal.
	OpGe
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	}
	return "?"
}

// IsComparison reports whether the opcode yields bool.
func (op BinOp) IsComparison() bool {
	return op >= OpEq
}

// UnOp enumerates unary opcodes.
type UnOp uint8

const (
	// OpNeg is integer negation.
	OpNeg UnOp = iota
	// OpNot is boolean negation.
	OpNot
)

func (op UnOp) String() string {
	if op == OpNeg {
		return "neg"
	}
	return "not"
}

// InstrKind discriminates instruction variants.
type InstrKind uint8

const (
	// ConstInt loads an integer constant into Dst.
	ConstInt InstrKind = iota
	// ConstBool loads a boolean constant into Dst.
	ConstBool
	// Bin applies Op to X and Y.
	Bin
	// Un applies UOp to X.
	Un
	// Alloc reserves a stack slot for AllocType; Dst holds its address
	// and has pointer type.
	Alloc
	// Load reads the value behind address X into Dst.
	Load
	// Store writes Y to the address in X.
	Store
	// FieldPtr computes the address of a struct field: X is the struct
	// address, Offset the byte offset, Name the field for readability.
	FieldPtr
	// ElemPtr computes the address of element Y within the storage at X.
	// X points at the first element.
	ElemPtr
	// MakeSlice builds a fat pointer from data address X and length Y.
	MakeSlice
	// SlicePtr extracts the data pointer of slice X.
	SlicePtr
	// SliceLen extracts the length of slice X.
	SliceLen
	// Call invokes Callee with Args; Dst receives the result when the
	// callee returns a value.
	Call
	// Jump transfers control to Target unconditionally.
	Jump
	// JumpIf branches on X: Target when true, Else when false.
	JumpIf
	// Label binds Target as a jump destination at this position.
	Label
	// Ret leaves the function, returning X when HasValue.
	Ret
)

// Instr is one MIR instruction. Kind selects which fields are meaningful.
type Instr struct {
	Kind InstrKind
	Dst  Reg
	Type types.TypeID // type of Dst

	AllocType types.TypeID // Alloc: type of the reserved slot

	IntVal  int64
	BoolVal bool
	Op      BinOp
	UOp     UnOp
	X, Y    Reg

	Offset int    // FieldPtr
	Name   string // FieldPtr field name

	Callee string
	Args   []Reg

	Target   LabelID // Jump, JumpIf, Label
	Else     LabelID // JumpIf
	HasValue bool    // Ret
}

// Param is one function parameter bound to an incoming register.
type Param struct {
	Name string
	Type types.TypeID
	Reg  Reg
}

// Function is the lowered form of one source function.
type Function struct {
	Name    string
	Params  []Param
	Ret     types.TypeID
	Instrs  []Instr
	NumRegs uint32
	// NumLabels is the number of labels allocated; every LabelID in the
	// instruction list is below it.
	NumLabels uint32
}

// RegTypes maps each register to its type by scanning the instruction
// list. Index by Reg; NoTypeID means the register is never defined.
func (f *Function) RegTypes() []types.TypeID {
	out := make([]types.TypeID, f.NumRegs)
	for _, p := range f.Params {
		out[p.Reg] = p.Type
	}
	for i := range f.Instrs {
		in := &f.Instrs[i]
		if in.defines() {
			out[in.Dst] = in.Type
		}
	}
	return out
}

func (in *Instr) defines() bool {
	switch in.Kind {
	case Store, Jump, JumpIf, Label, Ret:
		return false
	case Call:
		return in.Dst != NoReg
	default:
		return true
	}
}

// Module is the lowered program: functions in source order.
type Module struct {
	Funcs []*Function
}
