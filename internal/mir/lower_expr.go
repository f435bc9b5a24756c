package mir

import (
	"fmt"

	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/types"
)

// lowerExpr produces the value of an expression, applying the implicit
// array-to-slice coercion the checker recorded for this site.
func (l *fnLowerer) lowerExpr(e *ast.Expr) Reg {
	if target, ok := l.res.SliceCoercions[e]; ok {
		return l.lowerSliceCoercion(e, target)
	}
	return l.lowerValue(e)
}

// lowerSliceCoercion materializes an array as a fat pointer: the data
// pointer and the statically known length, computed once at this site.
func (l *fnLowerer) lowerSliceCoercion(e *ast.Expr, target types.TypeID) Reg {
	arrType := l.res.TypeOf(e)
	tt := l.res.Types.MustLookup(arrType)
	addr := l.lowerPlaceOrSpill(e)

	data := l.newReg()
	l.emit(Instr{
		Kind: ElemPtr,
		Dst:  data,
		Type: l.res.Types.Intern(types.MakePointer(tt.Elem)),
		X:    addr,
		Y:    l.constInt(0),
	})
	length := l.constInt(int64(tt.Count))

	dst := l.newReg()
	l.emit(Instr{Kind: MakeSlice, Dst: dst, Type: target, X: data, Y: length})
	return dst
}

func (l *fnLowerer) lowerValue(e *ast.Expr) Reg {
	b := l.builtins()

	switch e.Kind {
	case ast.ExprIntLit:
		dst := l.newReg()
		l.emit(Instr{Kind: ConstInt, Dst: dst, Type: l.res.TypeOf(e), IntVal: e.IntVal})
		return dst

	case ast.ExprBoolLit:
		dst := l.newReg()
		l.emit(Instr{Kind: ConstBool, Dst: dst, Type: b.Bool, BoolVal: e.BoolVal})
		return dst

	case ast.ExprIdent:
		v := l.lookup(e.Name)
		if v.inSlot {
			return l.load(v.reg, v.ty)
		}
		return v.reg

	case ast.ExprUnary:
		return l.lowerUnary(e)

	case ast.ExprBinary:
		return l.lowerBinary(e)

	case ast.ExprAssign:
		addr := l.lowerPlace(e.Left)
		v := l.lowerExpr(e.Right)
		l.emit(Instr{Kind: Store, X: addr, Y: v})
		return NoReg

	case ast.ExprCall:
		return l.lowerCall(e)

	case ast.ExprField:
		addr := l.lowerFieldPtr(e)
		return l.load(addr, l.res.TypeOf(e))

	case ast.ExprIndex:
		addr := l.lowerPlace(e)
		return l.load(addr, l.res.TypeOf(e))

	case ast.ExprStructLit:
		return l.lowerStructLit(e)

	case ast.ExprArrayLit:
		return l.lowerArrayLit(e)
	}
	panic(fmt.Sprintf("mir: expression kind %d survived checking", e.Kind))
}

func (l *fnLowerer) lowerUnary(e *ast.Expr) Reg {
	switch e.UnOp {
	case ast.UnNot:
		x := l.lowerExpr(e.Operand)
		dst := l.newReg()
		l.emit(Instr{Kind: Un, Dst: dst, Type: l.builtins().Bool, UOp: OpNot, X: x})
		return dst
	case ast.UnNeg:
		x := l.lowerExpr(e.Operand)
		dst := l.newReg()
		l.emit(Instr{Kind: Un, Dst: dst, Type: l.builtins().I32, UOp: OpNeg, X: x})
		return dst
	case ast.UnDeref:
		ptr := l.lowerExpr(e.Operand)
		return l.load(ptr, l.res.TypeOf(e))
	case ast.UnAddr:
		return l.lowerPlaceOrSpill(e.Operand)
	}
	panic("mir: unknown unary operator")
}

func binOpFor(op ast.BinOp) BinOp {
	switch op {
	case ast.BinAdd:
		return OpAdd
	case ast.BinSub:
		return OpSub
	case ast.BinMul:
		return OpMul
	case ast.BinDiv:
		return OpDiv
	case ast.BinMod:
		return OpMod
	case ast.BinEq:
		return OpEq
	case ast.BinNe:
		return OpNe
	case ast.BinLt:
		return OpLt
	case ast.BinLe:
		return OpLe
	case ast.BinGt:
		return OpGt
	case ast.BinGe:
		return OpGe
	}
	panic("mir: logical operator reached binOpFor")
}

func (l *fnLowerer) lowerBinary(e *ast.Expr) Reg {
	if e.Op.IsLogical() {
		return l.lowerShortCircuit(e)
	}
	x := l.lowerExpr(e.Left)
	y := l.lowerExpr(e.Right)
	dst := l.newReg()
	l.emit(Instr{Kind: Bin, Dst: dst, Type: l.res.TypeOf(e), Op: binOpFor(e.Op), X: x, Y: y})
	return dst
}

// lowerShortCircuit lowers && and || with control flow so the right-hand
// side only evaluates when it must. The result flows through a slot.
func (l *fnLowerer) lowerShortCircuit(e *ast.Expr) Reg {
	boolT := l.builtins().Bool
	slot := l.alloc(boolT)

	left := l.lowerExpr(e.Left)
	l.emit(Instr{Kind: Store, X: slot, Y: left})

	rhsL := l.newLabel()
	endL := l.newLabel()
	if e.Op == ast.BinAnd {
		l.emit(Instr{Kind: JumpIf, X: left, Target: rhsL, Else: endL})
	} else {
		l.emit(Instr{Kind: JumpIf, X: left, Target: endL, Else: rhsL})
	}

	l.placeLabel(rhsL)
	right := l.lowerExpr(e.Right)
	l.emit(Instr{Kind: Store, X: slot, Y: right})
	l.emit(Instr{Kind: Jump, Target: endL})

	l.placeLabel(endL)
	return l.load(slot, boolT)
}

func (l *fnLowerer) lowerCall(e *ast.Expr) Reg {
	sig := l.res.Funcs[e.Operand.Name]
	args := make([]Reg, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, l.lowerExpr(a))
	}
	dst := NoReg
	if sig.Ret != l.builtins().Unit {
		dst = l.newReg()
	}
	l.emit(Instr{Kind: Call, Dst: dst, Type: sig.Ret, Callee: sig.Name, Args: args})
	return dst
}

// lowerStructLit allocates a slot and stores fields in declaration order,
// regardless of the order written in the literal.
func (l *fnLowerer) lowerStructLit(e *ast.Expr) Reg {
	structType := l.res.TypeOf(e)
	info, ok := l.res.Types.StructInfo(structType)
	if !ok {
		panic("mir: struct literal without struct info")
	}
	addr := l.alloc(structType)
	for idx, field := range info.Fields {
		var value *ast.Expr
		for i := range e.Fields {
			if e.Fields[i].Name == field.Name {
				value = e.Fields[i].Value
				break
			}
		}
		if value == nil {
			panic("mir: incomplete struct literal survived checking")
		}
		v := l.lowerExpr(value)
		fptr := l.fieldPtr(addr, structType, idx)
		l.emit(Instr{Kind: Store, X: fptr, Y: v})
	}
	return l.load(addr, structType)
}

func (l *fnLowerer) lowerArrayLit(e *ast.Expr) Reg {
	arrType := l.res.TypeOf(e)
	tt := l.res.Types.MustLookup(arrType)
	elemPtrType := l.res.Types.Intern(types.MakePointer(tt.Elem))

	addr := l.alloc(arrType)
	for i, elem := range e.Elems {
		v := l.lowerExpr(elem)
		eptr := l.newReg()
		l.emit(Instr{Kind: ElemPtr, Dst: eptr, Type: elemPtrType, X: addr, Y: l.constInt(int64(i))})
		l.emit(Instr{Kind: Store, X: eptr, Y: v})
	}
	return l.load(addr, arrType)
}

// fieldPtr emits a FieldPtr for field idx of the struct at addr.
func (l *fnLowerer) fieldPtr(addr Reg, structType types.TypeID, idx int) Reg {
	info, _ := l.res.Types.StructInfo(structType)
	offset, err := l.res.Layouts.FieldOffset(structType, idx)
	if err != nil {
		panic(fmt.Sprintf("mir: field offset unavailable: %v", err))
	}
	dst := l.newReg()
	l.emit(Instr{
		Kind:   FieldPtr,
		Dst:    dst,
		Type:   l.res.Types.Intern(types.MakePointer(info.Fields[idx].Type)),
		X:      addr,
		Offset: offset,
		Name:   info.Fields[idx].Name,
	})
	return dst
}

// lowerFieldPtr computes the address of `obj.field`, spilling the object
// first when it is not already in memory.
func (l *fnLowerer) lowerFieldPtr(e *ast.Expr) Reg {
	objType := l.res.TypeOf(e.Operand)
	info, ok := l.res.Types.StructInfo(objType)
	if !ok {
		panic("mir: field access on non-struct survived checking")
	}
	idx, ok := info.FieldIndex(e.Name)
	if !ok {
		panic("mir: unknown field survived checking")
	}
	addr := l.lowerPlaceOrSpill(e.Operand)
	return l.fieldPtr(addr, objType, idx)
}

// lowerPlace computes the address of an assignable location. The checker
// guarantees the expression is a place backed by memory.
func (l *fnLowerer) lowerPlace(e *ast.Expr) Reg {
	switch e.Kind {
	case ast.ExprIdent:
		v := l.lookup(e.Name)
		if !v.inSlot {
			panic(fmt.Sprintf("mir: assignment to register binding %q survived checking", e.Name))
		}
		return v.reg

	case ast.ExprField:
		return l.lowerFieldPtr(e)

	case ast.ExprIndex:
		return l.lowerIndexPtr(e)

	case ast.ExprUnary:
		if e.UnOp == ast.UnDeref {
			return l.lowerExpr(e.Operand)
		}
	}
	panic("mir: non-place assignment target survived checking")
}

// lowerIndexPtr computes the address of `obj[idx]` for arrays, slices,
// and raw pointers.
func (l *fnLowerer) lowerIndexPtr(e *ast.Expr) Reg {
	objType := l.res.TypeOf(e.Operand)
	tt := l.res.Types.MustLookup(objType)
	idx := l.lowerExpr(e.Index)

	var base Reg
	switch tt.Kind {
	case types.KindArray:
		base = l.lowerPlaceOrSpill(e.Operand)
	case types.KindSlice:
		sl := l.lowerExpr(e.Operand)
		base = l.newReg()
		l.emit(Instr{
			Kind: SlicePtr,
			Dst:  base,
			Type: l.res.Types.Intern(types.MakePointer(tt.Elem)),
			X:    sl,
		})
	case types.KindPointer:
		// The pointer value is already an element address.
		base = l.lowerExpr(e.Operand)
	default:
		panic("mir: indexing non-indexable survived checking")
	}

	dst := l.newReg()
	l.emit(Instr{
		Kind: ElemPtr,
		Dst:  dst,
		Type: l.res.Types.Intern(types.MakePointer(tt.Elem)),
		X:    base,
		Y:    idx,
	})
	return dst
}

// lowerPlaceOrSpill returns an address for the expression, copying rvalues
// into a fresh slot when they have no storage of their own.
func (l *fnLowerer) lowerPlaceOrSpill(e *ast.Expr) Reg {
	switch e.Kind {
	case ast.ExprIdent:
		v := l.lookup(e.Name)
		if v.inSlot {
			return v.reg
		}
	case ast.ExprField, ast.ExprIndex:
		return l.lowerPlace(e)
	case ast.ExprUnary:
		if e.UnOp == ast.UnDeref {
			return l.lowerExpr(e.Operand)
		}
	}
	ty := l.res.TypeOf(e)
	v := l.lowerValue(e)
	addr := l.alloc(ty)
	l.emit(Instr{Kind: Store, X: addr, Y: v})
	return addr
}
