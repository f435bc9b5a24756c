package mir

import (
	"fmt"

	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/sema"
	"github.com/haiman1024/Contractus/internal/types"
)

// Lower translates a checked program into MIR. The program must be free
// of semantic errors; lowering panics on trees the checker would reject.
func Lower(prog *ast.Program, res *sema.Result) *Module {
	mod := &Module{}
	for _, name := range res.FuncOrder {
		sig := res.Funcs[name]
		if sig.Builtin || sig.Decl == nil {
			continue
		}
		mod.Funcs = append(mod.Funcs, lowerFn(sig, res))
	}
	return mod
}

// varSlot binds a source name to its lowered form. Bindings backed by a
// stack slot hold the slot address in reg; direct bindings hold the value.
type varSlot struct {
	reg    Reg
	ty     types.TypeID
	inSlot bool
}

// loopLabels are the break and continue targets of the enclosing loop.
// continueTo points at the increment step for `for` loops, so `continue`
// never skips it.
type loopLabels struct {
	breakTo    LabelID
	continueTo LabelID
}

type fnLowerer struct {
	res *sema.Result
	sig *sema.FnSig
	fn  *Function

	scopes    []map[string]varSlot
	loops     []loopLabels
	addrTaken map[string]bool

	nextReg   Reg
	nextLabel LabelID
}

func lowerFn(sig *sema.FnSig, res *sema.Result) *Function {
	l := &fnLowerer{
		res: res,
		sig: sig,
		fn: &Function{
			Name: sig.Name,
			Ret:  sig.Ret,
		},
		addrTaken: collectAddrTaken(sig.Decl.Body),
	}
	l.pushScope()

	for i := range sig.Decl.Params {
		p := &sig.Decl.Params[i]
		reg := l.newReg()
		l.fn.Params = append(l.fn.Params, Param{Name: p.Name, Type: sig.Params[i], Reg: reg})
		if l.addrTaken[p.Name] {
			// Spill so `&param` has an address to take.
			addr := l.alloc(sig.Params[i])
			l.emit(Instr{Kind: Store, X: addr, Y: reg})
			l.bind(p.Name, varSlot{reg: addr, ty: sig.Params[i], inSlot: true})
		} else {
			l.bind(p.Name, varSlot{reg: reg, ty: sig.Params[i]})
		}
	}

	l.lowerBlock(sig.Decl.Body)
	l.popScope()

	// A unit function may fall off the end without `return`.
	if n := len(l.fn.Instrs); n == 0 || l.fn.Instrs[n-1].Kind != Ret {
		l.emit(Instr{Kind: Ret})
	}
	l.fn.NumRegs = uint32(l.nextReg)
	l.fn.NumLabels = uint32(l.nextLabel)
	return l.fn
}

// collectAddrTaken scans for `&name` so those bindings get stack slots.
// It is name-based and so over-approximates across shadowing, which only
// costs an extra slot, never correctness.
func collectAddrTaken(b *ast.Block) map[string]bool {
	names := make(map[string]bool)
	var walkExpr func(e *ast.Expr)
	var walkBlock func(b *ast.Block)
	walkExpr = func(e *ast.Expr) {
		if e == nil {
			return
		}
		if e.Kind == ast.ExprUnary && e.UnOp == ast.UnAddr && e.Operand.Kind == ast.ExprIdent {
			names[e.Operand.Name] = true
		}
		walkExpr(e.Left)
		walkExpr(e.Right)
		walkExpr(e.Operand)
		walkExpr(e.Index)
		for _, a := range e.Args {
			walkExpr(a)
		}
		for _, el := range e.Elems {
			walkExpr(el)
		}
		for i := range e.Fields {
			walkExpr(e.Fields[i].Value)
		}
	}
	walkBlock = func(b *ast.Block) {
		for i := range b.Stmts {
			s := &b.Stmts[i]
			switch s.Kind {
			case ast.StmtLet:
				walkExpr(s.Let.Init)
			case ast.StmtExpr:
				walkExpr(s.Expr)
			case ast.StmtReturn:
				walkExpr(s.Ret.Value)
			case ast.StmtIf:
				walkExpr(s.If.Cond)
				walkBlock(s.If.Then)
				if s.If.Else != nil {
					walkBlock(s.If.Else)
				}
			case ast.StmtWhile:
				walkExpr(s.While.Cond)
				walkBlock(s.While.Body)
			case ast.StmtFor:
				walkExpr(s.For.Iterable)
				walkBlock(s.For.Body)
			case ast.StmtBlock:
				walkBlock(s.Block)
			}
		}
	}
	walkBlock(b)
	return names
}

func (l *fnLowerer) emit(in Instr) {
	l.fn.Instrs = append(l.fn.Instrs, in)
}

func (l *fnLowerer) newReg() Reg {
	r := l.nextReg
	l.nextReg++
	return r
}

func (l *fnLowerer) newLabel() LabelID {
	id := l.nextLabel
	l.nextLabel++
	return id
}

func (l *fnLowerer) placeLabel(id LabelID) {
	l.emit(Instr{Kind: Label, Target: id})
}

func (l *fnLowerer) pushScope() {
	l.scopes = append(l.scopes, make(map[string]varSlot, 4))
}

func (l *fnLowerer) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *fnLowerer) bind(name string, v varSlot) {
	l.scopes[len(l.scopes)-1][name] = v
}

func (l *fnLowerer) lookup(name string) varSlot {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if v, ok := l.scopes[i][name]; ok {
			return v
		}
	}
	panic(fmt.Sprintf("mir: unbound name %q survived checking", name))
}

func (l *fnLowerer) builtins() types.Builtins {
	return l.res.Types.Builtins()
}

// alloc reserves a slot for ty and returns its address register.
func (l *fnLowerer) alloc(ty types.TypeID) Reg {
	dst := l.newReg()
	l.emit(Instr{
		Kind:      Alloc,
		Dst:       dst,
		Type:      l.res.Types.Intern(types.MakePointer(ty)),
		AllocType: ty,
	})
	return dst
}

func (l *fnLowerer) load(addr Reg, ty types.TypeID) Reg {
	dst := l.newReg()
	l.emit(Instr{Kind: Load, Dst: dst, Type: ty, X: addr})
	return dst
}

func (l *fnLowerer) lowerBlock(b *ast.Block) {
	l.pushScope()
	for i := range b.Stmts {
		l.lowerStmt(&b.Stmts[i])
	}
	l.popScope()
}

func (l *fnLowerer) lowerStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.StmtLet:
		l.lowerLet(s.Let)
	case ast.StmtExpr:
		l.lowerExpr(s.Expr)
	case ast.StmtReturn:
		if s.Ret.Value != nil {
			v := l.lowerExpr(s.Ret.Value)
			// Unit-valued expressions produce no register; the value was
			// still evaluated for its effects, so return plain.
			if v == NoReg {
				l.emit(Instr{Kind: Ret})
			} else {
				l.emit(Instr{Kind: Ret, X: v, HasValue: true})
			}
		} else {
			l.emit(Instr{Kind: Ret})
		}
	case ast.StmtIf:
		l.lowerIf(s.If)
	case ast.StmtWhile:
		l.lowerWhile(s.While)
	case ast.StmtFor:
		l.lowerFor(s.For)
	case ast.StmtBreak:
		l.emit(Instr{Kind: Jump, Target: l.loops[len(l.loops)-1].breakTo})
	case ast.StmtContinue:
		l.emit(Instr{Kind: Jump, Target: l.loops[len(l.loops)-1].continueTo})
	case ast.StmtBlock:
		l.lowerBlock(s.Block)
	}
}

func (l *fnLowerer) lowerLet(let *ast.LetStmt) {
	ty := l.bindingType(let)
	needsSlot := let.Mutable || l.addrTaken[let.Name] || let.Init == nil

	if !needsSlot {
		// Immutable, address never taken: the initializer register is the
		// binding.
		v := l.lowerExpr(let.Init)
		l.bind(let.Name, varSlot{reg: v, ty: ty})
		return
	}

	addr := l.alloc(ty)
	if let.Init != nil {
		v := l.lowerExpr(let.Init)
		l.emit(Instr{Kind: Store, X: addr, Y: v})
	}
	l.bind(let.Name, varSlot{reg: addr, ty: ty, inSlot: true})
}

// bindingType resolves the slot type of a let: the initializer's checked
// type, falling back to the annotation for uninitialized bindings.
func (l *fnLowerer) bindingType(let *ast.LetStmt) types.TypeID {
	if let.Init != nil {
		if target, ok := l.res.SliceCoercions[let.Init]; ok {
			return target
		}
		return l.res.TypeOf(let.Init)
	}
	return l.annotatedType(let.Type)
}

func (l *fnLowerer) annotatedType(t *ast.TypeExpr) types.TypeID {
	b := l.builtins()
	switch t.Kind {
	case ast.TypeI32:
		return b.I32
	case ast.TypeBool:
		return b.Bool
	case ast.TypeU8:
		return b.U8
	case ast.TypeNamed:
		return l.res.StructTypes[t.Name]
	case ast.TypeArray:
		return l.res.Types.Intern(types.MakeArray(l.annotatedType(t.Elem), t.Len))
	case ast.TypeSlice:
		return l.res.Types.Intern(types.MakeSlice(l.annotatedType(t.Elem)))
	case ast.TypePointer:
		return l.res.Types.Intern(types.MakePointer(l.annotatedType(t.Elem)))
	}
	return types.NoTypeID
}

func (l *fnLowerer) lowerIf(s *ast.IfStmt) {
	thenL := l.newLabel()
	endL := l.newLabel()
	elseL := endL
	if s.Else != nil {
		elseL = l.newLabel()
	}

	cond := l.lowerExpr(s.Cond)
	l.emit(Instr{Kind: JumpIf, X: cond, Target: thenL, Else: elseL})

	l.placeLabel(thenL)
	l.lowerBlock(s.Then)
	l.emit(Instr{Kind: Jump, Target: endL})

	if s.Else != nil {
		l.placeLabel(elseL)
		l.lowerBlock(s.Else)
		l.emit(Instr{Kind: Jump, Target: endL})
	}
	l.placeLabel(endL)
}

func (l *fnLowerer) lowerWhile(s *ast.WhileStmt) {
	headL := l.newLabel()
	bodyL := l.newLabel()
	endL := l.newLabel()

	l.placeLabel(headL)
	cond := l.lowerExpr(s.Cond)
	l.emit(Instr{Kind: JumpIf, X: cond, Target: bodyL, Else: endL})

	l.loops = append(l.loops, loopLabels{breakTo: endL, continueTo: headL})
	l.placeLabel(bodyL)
	l.lowerBlock(s.Body)
	l.loops = l.loops[:len(l.loops)-1]

	l.emit(Instr{Kind: Jump, Target: headL})
	l.placeLabel(endL)
}

// lowerFor desugars both loop forms. The bounds or the iterable are
// evaluated exactly once, before the loop head; the induction state lives
// in a hidden slot invisible to the body's scope.
func (l *fnLowerer) lowerFor(s *ast.ForStmt) {
	if s.Iterable.Kind == ast.ExprRange {
		l.lowerForRange(s)
		return
	}
	l.lowerForElems(s)
}

// lowerForRange turns `for v in a..b { body }` into
//
//	v := a; while v < b { body; v = v + 1 }
//
// with both bounds evaluated once up front.
func (l *fnLowerer) lowerForRange(s *ast.ForStmt) {
	i32 := l.builtins().I32
	start := l.lowerExpr(s.Iterable.Left)
	end := l.lowerExpr(s.Iterable.Right)

	slot := l.alloc(i32)
	l.emit(Instr{Kind: Store, X: slot, Y: start})

	headL := l.newLabel()
	bodyL := l.newLabel()
	stepL := l.newLabel()
	endL := l.newLabel()

	l.placeLabel(headL)
	cur := l.load(slot, i32)
	cond := l.newReg()
	l.emit(Instr{Kind: Bin, Dst: cond, Type: l.builtins().Bool, Op: OpLt, X: cur, Y: end})
	l.emit(Instr{Kind: JumpIf, X: cond, Target: bodyL, Else: endL})

	l.placeLabel(bodyL)
	l.pushScope()
	l.bind(s.Var, varSlot{reg: slot, ty: i32, inSlot: true})
	l.loops = append(l.loops, loopLabels{breakTo: endL, continueTo: stepL})
	for i := range s.Body.Stmts {
		l.lowerStmt(&s.Body.Stmts[i])
	}
	l.loops = l.loops[:len(l.loops)-1]
	l.popScope()

	l.placeLabel(stepL)
	v := l.load(slot, i32)
	one := l.newReg()
	l.emit(Instr{Kind: ConstInt, Dst: one, Type: i32, IntVal: 1})
	next := l.newReg()
	l.emit(Instr{Kind: Bin, Dst: next, Type: i32, Op: OpAdd, X: v, Y: one})
	l.emit(Instr{Kind: Store, X: slot, Y: next})
	l.emit(Instr{Kind: Jump, Target: headL})

	l.placeLabel(endL)
}

// lowerForElems turns `for v in xs { body }` over an array or slice into
// an index loop with a hidden counter. The element is loaded fresh each
// iteration into the loop variable.
func (l *fnLowerer) lowerForElems(s *ast.ForStmt) {
	b := l.builtins()
	iterType := l.res.TypeOf(s.Iterable)
	tt := l.res.Types.MustLookup(iterType)

	var dataPtr, length Reg
	switch tt.Kind {
	case types.KindArray:
		addr := l.lowerPlaceOrSpill(s.Iterable)
		dataPtr = l.newReg()
		l.emit(Instr{
			Kind: ElemPtr,
			Dst:  dataPtr,
			Type: l.res.Types.Intern(types.MakePointer(tt.Elem)),
			X:    addr,
			Y:    l.constInt(0),
		})
		length = l.constInt(int64(tt.Count))
	case types.KindSlice:
		sl := l.lowerExpr(s.Iterable)
		dataPtr = l.newReg()
		l.emit(Instr{
			Kind: SlicePtr,
			Dst:  dataPtr,
			Type: l.res.Types.Intern(types.MakePointer(tt.Elem)),
			X:    sl,
		})
		length = l.newReg()
		l.emit(Instr{Kind: SliceLen, Dst: length, Type: b.I32, X: sl})
	default:
		panic("mir: non-iterable survived checking")
	}

	idxSlot := l.alloc(b.I32)
	l.emit(Instr{Kind: Store, X: idxSlot, Y: l.constInt(0)})

	headL := l.newLabel()
	bodyL := l.newLabel()
	stepL := l.newLabel()
	endL := l.newLabel()

	l.placeLabel(headL)
	idx := l.load(idxSlot, b.I32)
	cond := l.newReg()
	l.emit(Instr{Kind: Bin, Dst: cond, Type: b.Bool, Op: OpLt, X: idx, Y: length})
	l.emit(Instr{Kind: JumpIf, X: cond, Target: bodyL, Else: endL})

	l.placeLabel(bodyL)
	eptr := l.newReg()
	l.emit(Instr{
		Kind: ElemPtr,
		Dst:  eptr,
		Type: l.res.Types.Intern(types.MakePointer(tt.Elem)),
		X:    dataPtr,
		Y:    idx,
	})
	elem := l.load(eptr, tt.Elem)

	l.pushScope()
	l.bind(s.Var, varSlot{reg: elem, ty: tt.Elem})
	l.loops = append(l.loops, loopLabels{breakTo: endL, continueTo: stepL})
	for i := range s.Body.Stmts {
		l.lowerStmt(&s.Body.Stmts[i])
	}
	l.loops = l.loops[:len(l.loops)-1]
	l.popScope()

	l.placeLabel(stepL)
	cur := l.load(idxSlot, b.I32)
	next := l.newReg()
	l.emit(Instr{Kind: Bin, Dst: next, Type: b.I32, Op: OpAdd, X: cur, Y: l.constInt(1)})
	l.emit(Instr{Kind: Store, X: idxSlot, Y: next})
	l.emit(Instr{Kind: Jump, Target: headL})

	l.placeLabel(endL)
}

func (l *fnLowerer) constInt(v int64) Reg {
	dst := l.newReg()
	l.emit(Instr{Kind: ConstInt, Dst: dst, Type: l.builtins().I32, IntVal: v})
	return dst
}
