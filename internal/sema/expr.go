package sema

import (
	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/types"
)

// checkExpr types an expression and records the result. `want` is a local
// hint, not full inference: it lets integer literals adopt u8 in u8
// positions and gives empty array literals a type. NoTypeID means no hint.
// A NoTypeID result means the error was already reported; callers must not
// pile further diagnostics onto it.
func (fc *fnChecker) checkExpr(e *ast.Expr, want types.TypeID) types.TypeID {
	ty := fc.checkExprInner(e, want)
	fc.c.result.ExprTypes[e] = ty
	return ty
}

func (fc *fnChecker) checkExprInner(e *ast.Expr, want types.TypeID) types.TypeID {
	c := fc.c
	b := c.result.Types.Builtins()

	switch e.Kind {
	case ast.ExprIntLit:
		if want == b.U8 {
			if e.IntVal < 0 || e.IntVal > 255 {
				c.report(diag.TypeMismatch, e.Span,
					"integer literal `%d` out of range for u8", e.IntVal)
				return types.NoTypeID
			}
			return b.U8
		}
		if e.IntVal < -2147483648 || e.IntVal > 2147483647 {
			c.report(diag.TypeMismatch, e.Span,
				"integer literal `%d` out of range for i32", e.IntVal)
			return types.NoTypeID
		}
		return b.I32

	case ast.ExprBoolLit:
		return b.Bool

	case ast.ExprIdent:
		bind, ok := fc.scopes.lookup(e.Name)
		if !ok {
			c.report(diag.SemaUndefinedVariable, e.Span, "undefined variable `%s`", e.Name)
			return types.NoTypeID
		}
		if !bind.initialized {
			c.report(diag.SemaUninitialized, e.Span,
				"`%s` is used before it is initialized", e.Name)
			return types.NoTypeID
		}
		return bind.ty

	case ast.ExprUnary:
		return fc.checkUnary(e)

	case ast.ExprBinary:
		return fc.checkBinary(e, want)

	case ast.ExprAssign:
		return fc.checkAssign(e)

	case ast.ExprRange:
		// A range is only meaningful as a `for` iterable; checkFor handles
		// that form directly, so reaching here means it leaked elsewhere.
		fc.checkRangeBounds(e)
		c.report(diag.SemaInvalidIterable, e.Span,
			"a range expression is only valid as a `for` loop iterable")
		return types.NoTypeID

	case ast.ExprCall:
		return fc.checkCall(e)

	case ast.ExprField:
		return fc.checkField(e)

	case ast.ExprIndex:
		return fc.checkIndex(e)

	case ast.ExprStructLit:
		return fc.checkStructLit(e)

	case ast.ExprArrayLit:
		return fc.checkArrayLit(e, want)
	}
	return types.NoTypeID
}

func (fc *fnChecker) checkUnary(e *ast.Expr) types.TypeID {
	c := fc.c
	b := c.result.Types.Builtins()

	switch e.UnOp {
	case ast.UnNot:
		got := fc.checkExpr(e.Operand, b.Bool)
		if got != types.NoTypeID && got != b.Bool {
			c.report(diag.TypeBadOperand, e.Span,
				"`!` requires bool, found %s", c.typeName(got))
			return types.NoTypeID
		}
		return b.Bool

	case ast.UnNeg:
		got := fc.checkExpr(e.Operand, b.I32)
		if got != types.NoTypeID && got != b.I32 {
			c.report(diag.TypeBadOperand, e.Span,
				"unary `-` requires i32, found %s", c.typeName(got))
			return types.NoTypeID
		}
		return b.I32

	case ast.UnDeref:
		got := fc.checkExpr(e.Operand, types.NoTypeID)
		if got == types.NoTypeID {
			return types.NoTypeID
		}
		tt, ok := c.result.Types.Lookup(got)
		if !ok || tt.Kind != types.KindPointer {
			c.report(diag.TypeBadOperand, e.Span,
				"cannot dereference %s", c.typeName(got))
			return types.NoTypeID
		}
		return tt.Elem

	case ast.UnAddr:
		if !isPlaceExpr(e.Operand) {
			c.report(diag.TypeBadOperand, e.Span,
				"`&` requires a variable, field, or element")
			return types.NoTypeID
		}
		got := fc.checkExpr(e.Operand, types.NoTypeID)
		if got == types.NoTypeID {
			return types.NoTypeID
		}
		return c.result.Types.Intern(types.MakePointer(got))
	}
	return types.NoTypeID
}

// isPlaceExpr reports whether an expression names a memory location.
func isPlaceExpr(e *ast.Expr) bool {
	switch e.Kind {
	case ast.ExprIdent, ast.ExprField, ast.ExprIndex:
		return true
	case ast.ExprUnary:
		return e.UnOp == ast.UnDeref
	default:
		return false
	}
}

func (fc *fnChecker) checkBinary(e *ast.Expr, want types.TypeID) types.TypeID {
	c := fc.c
	b := c.result.Types.Builtins()

	if e.Op.IsLogical() {
		for _, operand := range []*ast.Expr{e.Left, e.Right} {
			got := fc.checkExpr(operand, b.Bool)
			if got != types.NoTypeID && got != b.Bool {
				c.report(diag.TypeBadOperand, operand.Span,
					"`%s` requires bool operands, found %s", e.Op, c.typeName(got))
			}
		}
		return b.Bool
	}

	lt := fc.checkExpr(e.Left, want)
	rt := fc.checkExpr(e.Right, lt)
	if lt == types.NoTypeID || rt == types.NoTypeID {
		if e.Op.IsComparison() {
			return b.Bool
		}
		return types.NoTypeID
	}
	if lt != rt {
		c.report(diag.TypeMismatch, e.Span,
			"mismatched operand types for `%s`: %s and %s",
			e.Op, c.typeName(lt), c.typeName(rt))
		return types.NoTypeID
	}

	if e.Op.IsComparison() {
		if !isComparable(c.result.Types, lt, e.Op) {
			c.report(diag.TypeBadOperand, e.Span,
				"`%s` cannot compare values of type %s", e.Op, c.typeName(lt))
		}
		return b.Bool
	}

	// Arithmetic: i32 and u8 only, result keeps the operand type.
	if lt != b.I32 && lt != b.U8 {
		c.report(diag.TypeBadOperand, e.Span,
			"`%s` requires integer operands, found %s", e.Op, c.typeName(lt))
		return types.NoTypeID
	}
	return lt
}

// isComparable allows equality on any scalar and ordering on integers only.
func isComparable(in *types.Interner, id types.TypeID, op ast.BinOp) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindI32, types.KindU8:
		return true
	case types.KindBool, types.KindPointer:
		return op == ast.BinEq || op == ast.BinNe
	default:
		return false
	}
}

// checkAssign validates the target as a mutable place, marks identifier
// targets initialized, and requires the value type to match. The whole
// assignment has unit type.
func (fc *fnChecker) checkAssign(e *ast.Expr) types.TypeID {
	c := fc.c
	unit := c.result.Types.Builtins().Unit

	var targetType types.TypeID
	var targetBind *binding
	if e.Left.Kind == ast.ExprIdent {
		bind, ok := fc.scopes.lookup(e.Left.Name)
		if !ok {
			c.report(diag.SemaUndefinedVariable, e.Left.Span,
				"undefined variable `%s`", e.Left.Name)
		} else {
			if !bind.mutable {
				c.report(diag.SemaAssignImmutable, e.Left.Span,
					"cannot assign to immutable binding `%s`", bind.name)
			}
			targetBind = bind
			targetType = bind.ty
			c.result.ExprTypes[e.Left] = bind.ty
		}
	} else if isPlaceExpr(e.Left) {
		targetType = fc.checkExpr(e.Left, types.NoTypeID)
	} else {
		c.report(diag.SemaNotAssignable, e.Left.Span,
			"this expression cannot be assigned to")
	}

	// The value is checked before the target counts as initialized, so
	// `x = x + 1` on an uninitialized `x` still reports the read.
	got := fc.checkExpr(e.Right, targetType)
	if targetBind != nil {
		targetBind.initialized = true
	}
	if targetType != types.NoTypeID && got != types.NoTypeID && got != targetType {
		if !fc.coerceToSlice(e.Right, got, targetType) {
			c.report(diag.TypeMismatch, e.Right.Span,
				"mismatched types in assignment: expected %s, found %s",
				c.typeName(targetType), c.typeName(got))
		}
	}
	return unit
}

func (fc *fnChecker) checkCall(e *ast.Expr) types.TypeID {
	c := fc.c

	if e.Operand.Kind != ast.ExprIdent {
		c.report(diag.TypeNotCallable, e.Operand.Span, "only named functions can be called")
		for _, arg := range e.Args {
			fc.checkExpr(arg, types.NoTypeID)
		}
		return types.NoTypeID
	}
	name := e.Operand.Name
	sig, ok := c.result.Funcs[name]
	if !ok {
		if _, isVar := fc.scopes.lookup(name); isVar {
			c.report(diag.TypeNotCallable, e.Operand.Span, "`%s` is not a function", name)
		} else {
			c.report(diag.SemaUndefinedFunction, e.Operand.Span, "undefined function `%s`", name)
		}
		for _, arg := range e.Args {
			fc.checkExpr(arg, types.NoTypeID)
		}
		return types.NoTypeID
	}
	c.result.ExprTypes[e.Operand] = sig.Type

	if len(e.Args) != len(sig.Params) {
		c.report(diag.TypeArgCount, e.Span,
			"`%s` takes %d argument(s), %d given", name, len(sig.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		if i >= len(sig.Params) {
			fc.checkExpr(arg, types.NoTypeID)
			continue
		}
		want := sig.Params[i]
		got := fc.checkExpr(arg, want)
		if got == types.NoTypeID || got == want {
			continue
		}
		if fc.coerceToSlice(arg, got, want) {
			continue
		}
		c.report(diag.TypeMismatch, arg.Span,
			"argument %d to `%s`: expected %s, found %s",
			i+1, name, c.typeName(want), c.typeName(got))
	}
	return sig.Ret
}

func (fc *fnChecker) checkField(e *ast.Expr) types.TypeID {
	c := fc.c
	objType := fc.checkExpr(e.Operand, types.NoTypeID)
	if objType == types.NoTypeID {
		return types.NoTypeID
	}
	info, ok := c.result.Types.StructInfo(objType)
	if !ok {
		c.report(diag.TypeBadOperand, e.Operand.Span,
			"field access requires a struct, found %s", c.typeName(objType))
		return types.NoTypeID
	}
	idx, ok := info.FieldIndex(e.Name)
	if !ok {
		c.report(diag.SemaUndefinedField, e.NameSpan,
			"struct `%s` has no field `%s`", info.Name, e.Name)
		return types.NoTypeID
	}
	return info.Fields[idx].Type
}

func (fc *fnChecker) checkIndex(e *ast.Expr) types.TypeID {
	c := fc.c
	b := c.result.Types.Builtins()

	idxType := fc.checkExpr(e.Index, b.I32)
	if idxType != types.NoTypeID && idxType != b.I32 {
		c.report(diag.TypeIndexNotI32, e.Index.Span,
			"index must be i32, found %s", c.typeName(idxType))
	}

	objType := fc.checkExpr(e.Operand, types.NoTypeID)
	if objType == types.NoTypeID {
		return types.NoTypeID
	}
	tt, ok := c.result.Types.Lookup(objType)
	if !ok || (tt.Kind != types.KindArray && tt.Kind != types.KindSlice && tt.Kind != types.KindPointer) {
		c.report(diag.TypeNotIndexable, e.Operand.Span,
			"cannot index %s", c.typeName(objType))
		return types.NoTypeID
	}
	return tt.Elem
}

// checkStructLit requires the field list to cover the struct exactly:
// every declared field once, no extras.
func (fc *fnChecker) checkStructLit(e *ast.Expr) types.TypeID {
	c := fc.c
	structType, ok := c.result.StructTypes[e.Name]
	if !ok {
		c.report(diag.SemaUndefinedStruct, e.Span, "undefined struct `%s`", e.Name)
		for i := range e.Fields {
			fc.checkExpr(e.Fields[i].Value, types.NoTypeID)
		}
		return types.NoTypeID
	}
	info, ok := c.result.Types.StructInfo(structType)
	if !ok {
		return types.NoTypeID
	}

	seen := make(map[string]bool, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		idx, declared := info.FieldIndex(f.Name)
		if !declared {
			c.report(diag.SemaUndefinedField, f.NameSpan,
				"struct `%s` has no field `%s`", info.Name, f.Name)
			fc.checkExpr(f.Value, types.NoTypeID)
			continue
		}
		if seen[f.Name] {
			c.report(diag.SemaStructLitField, f.NameSpan,
				"field `%s` is set more than once", f.Name)
			fc.checkExpr(f.Value, types.NoTypeID)
			continue
		}
		seen[f.Name] = true
		want := info.Fields[idx].Type
		got := fc.checkExpr(f.Value, want)
		if got != types.NoTypeID && got != want && !fc.coerceToSlice(f.Value, got, want) {
			c.report(diag.TypeMismatch, f.Value.Span,
				"field `%s` has type %s, found %s",
				f.Name, c.typeName(want), c.typeName(got))
		}
	}
	for _, field := range info.Fields {
		if !seen[field.Name] {
			c.report(diag.SemaStructLitField, e.Span,
				"missing field `%s` in literal of struct `%s`", field.Name, info.Name)
		}
	}
	return structType
}

func (fc *fnChecker) checkArrayLit(e *ast.Expr, want types.TypeID) types.TypeID {
	c := fc.c

	var elemWant types.TypeID
	if wt, ok := c.result.Types.Lookup(want); ok &&
		(wt.Kind == types.KindArray || wt.Kind == types.KindSlice) {
		elemWant = wt.Elem
	}

	if len(e.Elems) == 0 {
		c.report(diag.SemaZeroSizeArray, e.Span, "array literals must have at least one element")
		return types.NoTypeID
	}

	elemType := fc.checkExpr(e.Elems[0], elemWant)
	for _, elem := range e.Elems[1:] {
		got := fc.checkExpr(elem, elemType)
		if elemType == types.NoTypeID {
			elemType = got
			continue
		}
		if got != types.NoTypeID && got != elemType {
			c.report(diag.TypeMismatch, elem.Span,
				"array elements must share one type: expected %s, found %s",
				c.typeName(elemType), c.typeName(got))
		}
	}
	if elemType == types.NoTypeID {
		return types.NoTypeID
	}
	return c.result.Types.Intern(types.MakeArray(elemType, uint32(len(e.Elems))))
}
