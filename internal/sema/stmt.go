package sema

import (
	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/types"
)

// fnChecker checks one function body against its collected signature.
type fnChecker struct {
	c         *checker
	sig       *FnSig
	scopes    scopeStack
	loopDepth int
}

func (c *checker) checkFnBody(fn *ast.FnDecl, sig *FnSig) {
	fc := &fnChecker{c: c, sig: sig}
	fc.scopes.push()
	for i := range fn.Params {
		p := &fn.Params[i]
		ok := fc.scopes.declare(&binding{
			name:        p.Name,
			ty:          sig.Params[i],
			initialized: true,
			span:        p.NameSpan,
		})
		if !ok {
			c.report(diag.SemaDuplicateBinding, p.NameSpan,
				"parameter `%s` is declared more than once", p.Name)
		}
	}
	fc.checkBlock(fn.Body)
	fc.scopes.pop()
}

func (fc *fnChecker) checkBlock(b *ast.Block) {
	fc.scopes.push()
	for i := range b.Stmts {
		fc.checkStmt(&b.Stmts[i])
	}
	fc.scopes.pop()
}

func (fc *fnChecker) checkStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.StmtLet:
		fc.checkLet(s.Let)
	case ast.StmtExpr:
		fc.checkExpr(s.Expr, types.NoTypeID)
	case ast.StmtReturn:
		fc.checkReturn(s)
	case ast.StmtIf:
		fc.checkCond(s.If.Cond)
		fc.checkBlock(s.If.Then)
		if s.If.Else != nil {
			fc.checkBlock(s.If.Else)
		}
	case ast.StmtWhile:
		fc.checkCond(s.While.Cond)
		fc.loopDepth++
		fc.checkBlock(s.While.Body)
		fc.loopDepth--
	case ast.StmtFor:
		fc.checkFor(s.For)
	case ast.StmtBreak:
		if fc.loopDepth == 0 {
			fc.c.report(diag.SemaLoopControl, s.Span, "`break` outside of a loop")
		}
	case ast.StmtContinue:
		if fc.loopDepth == 0 {
			fc.c.report(diag.SemaLoopControl, s.Span, "`continue` outside of a loop")
		}
	case ast.StmtBlock:
		fc.checkBlock(s.Block)
	}
}

func (fc *fnChecker) checkLet(let *ast.LetStmt) {
	c := fc.c
	var declared types.TypeID
	if let.Type != nil {
		declared = c.resolveType(let.Type)
	}

	var inferred types.TypeID
	if let.Init != nil {
		inferred = fc.checkExpr(let.Init, declared)
		// Assignments and unit-returning calls carry no value to bind.
		if inferred == c.result.Types.Builtins().Unit {
			c.report(diag.TypeMismatch, let.Init.Span,
				"cannot bind `%s` to an expression of unit type", let.Name)
			inferred = types.NoTypeID
		}
	}

	ty := declared
	switch {
	case declared == types.NoTypeID && let.Init == nil:
		if let.Type == nil {
			c.report(diag.TypeCannotInfer, let.NameSpan,
				"cannot infer type of `%s` without a type or initializer", let.Name)
		}
	case declared == types.NoTypeID:
		ty = inferred
	case let.Init != nil && inferred != types.NoTypeID && inferred != declared:
		if !fc.coerceToSlice(let.Init, inferred, declared) {
			c.report(diag.TypeMismatch, let.Init.Span,
				"mismatched types: expected %s, found %s",
				c.typeName(declared), c.typeName(inferred))
		}
	}

	ok := fc.scopes.declare(&binding{
		name:        let.Name,
		ty:          ty,
		mutable:     let.Mutable,
		initialized: let.Init != nil,
		span:        let.NameSpan,
	})
	if !ok {
		c.report(diag.SemaDuplicateBinding, let.NameSpan,
			"`%s` is already declared in this scope", let.Name)
	}
}

func (fc *fnChecker) checkReturn(s *ast.Stmt) {
	c := fc.c
	unit := c.result.Types.Builtins().Unit
	if s.Ret.Value == nil {
		if fc.sig.Ret != unit {
			c.report(diag.TypeReturnMismatch, s.Span,
				"missing return value: function returns %s", c.typeName(fc.sig.Ret))
		}
		return
	}
	got := fc.checkExpr(s.Ret.Value, fc.sig.Ret)
	if got == types.NoTypeID || got == fc.sig.Ret {
		return
	}
	if fc.coerceToSlice(s.Ret.Value, got, fc.sig.Ret) {
		return
	}
	c.report(diag.TypeReturnMismatch, s.Ret.Value.Span,
		"mismatched return type: expected %s, found %s",
		c.typeName(fc.sig.Ret), c.typeName(got))
}

func (fc *fnChecker) checkCond(cond *ast.Expr) {
	c := fc.c
	got := fc.checkExpr(cond, c.result.Types.Builtins().Bool)
	if got != types.NoTypeID && got != c.result.Types.Builtins().Bool {
		c.report(diag.TypeCondNotBool, cond.Span,
			"condition must be bool, found %s", c.typeName(got))
	}
}

// checkFor validates the iterable and binds the loop variable in a scope
// covering only the body. Range loops iterate i32; array and slice loops
// bind the element type. The loop variable is immutable.
func (fc *fnChecker) checkFor(f *ast.ForStmt) {
	c := fc.c
	b := c.result.Types.Builtins()

	var elemType types.TypeID
	if f.Iterable.Kind == ast.ExprRange {
		fc.checkRangeBounds(f.Iterable)
		elemType = b.I32
	} else {
		iterType := fc.checkExpr(f.Iterable, types.NoTypeID)
		if iterType != types.NoTypeID {
			tt, ok := c.result.Types.Lookup(iterType)
			if ok && (tt.Kind == types.KindArray || tt.Kind == types.KindSlice) {
				elemType = tt.Elem
			} else {
				c.report(diag.SemaInvalidIterable, f.Iterable.Span,
					"`for` expects a range, array, or slice, found %s", c.typeName(iterType))
			}
		}
	}

	fc.scopes.push()
	fc.scopes.declare(&binding{
		name:        f.Var,
		ty:          elemType,
		initialized: true,
		span:        f.VarSpan,
	})
	fc.loopDepth++
	for i := range f.Body.Stmts {
		fc.checkStmt(&f.Body.Stmts[i])
	}
	fc.loopDepth--
	fc.scopes.pop()
}

// checkRangeBounds types `start..end` where both bounds must be i32.
func (fc *fnChecker) checkRangeBounds(r *ast.Expr) {
	c := fc.c
	b := c.result.Types.Builtins()
	for _, bound := range []*ast.Expr{r.Left, r.Right} {
		got := fc.checkExpr(bound, b.I32)
		if got != types.NoTypeID && got != b.I32 {
			c.report(diag.TypeMismatch, bound.Span,
				"range bound must be i32, found %s", c.typeName(got))
		}
	}
	c.result.ExprTypes[r] = b.Range
}

// coerceToSlice records an implicit array-to-slice coercion when `got` is
// an array whose element type matches the expected slice. The coercion
// materializes the static length at the use site during lowering.
func (fc *fnChecker) coerceToSlice(e *ast.Expr, got, want types.TypeID) bool {
	in := fc.c.result.Types
	gt, ok1 := in.Lookup(got)
	wt, ok2 := in.Lookup(want)
	if !ok1 || !ok2 {
		return false
	}
	if gt.Kind != types.KindArray || wt.Kind != types.KindSlice || gt.Elem != wt.Elem {
		return false
	}
	fc.c.result.SliceCoercions[e] = want
	return true
}
