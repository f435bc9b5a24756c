package parser

import (
	"testing"

	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/lexer"
	"github.com/haiman1024/Contractus/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	file := source.NewFile("test.ctx", []byte(src))
	toks := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	res := Parse(toks, Options{Reporter: reporter})
	return res.Program, bag
}

func TestParseFunctionAndStruct(t *testing.T) {
	prog, bag := parseSource(t, `
struct Point { x: i32, y: i32 }

fn add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	structs := prog.Structs()
	if len(structs) != 1 || structs[0].Name != "Point" || len(structs[0].Fields) != 2 {
		t.Fatalf("structs = %+v", structs)
	}
	fns := prog.Funcs()
	if len(fns) != 1 || fns[0].Name != "add" || len(fns[0].Params) != 2 {
		t.Fatalf("fns = %+v", fns)
	}
	if fns[0].Ret == nil || fns[0].Ret.Kind != ast.TypeI32 {
		t.Errorf("return type = %+v", fns[0].Ret)
	}
}

func TestPrecedence(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { let x = 1 + 2 * 3; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	let := prog.Funcs()[0].Body.Stmts[0].Let
	// Must parse as 1 + (2 * 3).
	e := let.Init
	if e.Kind != ast.ExprBinary || e.Op != ast.BinAdd {
		t.Fatalf("root = %+v", e)
	}
	if e.Right.Kind != ast.ExprBinary || e.Right.Op != ast.BinMul {
		t.Fatalf("rhs = %+v", e.Right)
	}
}

func TestComparisonBindsTighterThanLogical(t *testing.T) {
	prog, bag := parseSource(t, "fn f(a: i32, b: i32) { let x = a < 1 && b > 2; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	e := prog.Funcs()[0].Body.Stmts[0].Let.Init
	if e.Kind != ast.ExprBinary || e.Op != ast.BinAnd {
		t.Fatalf("root should be &&, got %+v", e)
	}
	if e.Left.Op != ast.BinLt || e.Right.Op != ast.BinGt {
		t.Errorf("operands = %v, %v", e.Left.Op, e.Right.Op)
	}
}

func TestAssignmentRightAssociative(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { let mut a = 0; let mut b = 0; a = b = 1; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	e := prog.Funcs()[0].Body.Stmts[2].Expr
	if e.Kind != ast.ExprAssign {
		t.Fatalf("root = %+v", e)
	}
	if e.Right.Kind != ast.ExprAssign {
		t.Fatalf("rhs should be nested assign, got %+v", e.Right)
	}
}

func TestCompoundAssignDesugars(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { let mut x = 0; x += 2; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	e := prog.Funcs()[0].Body.Stmts[1].Expr
	if e.Kind != ast.ExprAssign {
		t.Fatalf("root = %+v", e)
	}
	if e.Right.Kind != ast.ExprBinary || e.Right.Op != ast.BinAdd {
		t.Fatalf("rhs should be x + 2, got %+v", e.Right)
	}
	if e.Right.Left.Kind != ast.ExprIdent || e.Right.Left.Name != "x" {
		t.Errorf("desugared lhs = %+v", e.Right.Left)
	}
}

func TestRangeNonAssociative(t *testing.T) {
	_, bag := parseSource(t, "fn f() { for i in 0..5..10 { } }")
	if !bag.HasCode(diag.SynChainedRange) {
		t.Fatalf("expected SynChainedRange, got %+v", bag.Items())
	}
}

func TestPostfixChain(t *testing.T) {
	prog, bag := parseSource(t, "fn f(p: Point) { let x = p.pos.xs[0]; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	e := prog.Funcs()[0].Body.Stmts[0].Let.Init
	if e.Kind != ast.ExprIndex {
		t.Fatalf("root = %+v", e)
	}
	if e.Operand.Kind != ast.ExprField || e.Operand.Name != "xs" {
		t.Fatalf("object = %+v", e.Operand)
	}
	if e.Operand.Operand.Kind != ast.ExprField || e.Operand.Operand.Name != "pos" {
		t.Fatalf("inner = %+v", e.Operand.Operand)
	}
}

func TestStructLiteral(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { let p = Point { x: 1, y: 2 }; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	e := prog.Funcs()[0].Body.Stmts[0].Let.Init
	if e.Kind != ast.ExprStructLit || e.Name != "Point" || len(e.Fields) != 2 {
		t.Fatalf("struct lit = %+v", e)
	}
	if e.Fields[0].Name != "x" || e.Fields[1].Name != "y" {
		t.Errorf("fields = %+v", e.Fields)
	}
}

func TestStructLiteralNotInHeader(t *testing.T) {
	// `while done { }` must read `done` as a condition, not `done {}`.
	prog, bag := parseSource(t, "fn f(done: bool) { while done { } }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	cond := prog.Funcs()[0].Body.Stmts[0].While.Cond
	if cond.Kind != ast.ExprIdent {
		t.Fatalf("cond = %+v", cond)
	}
}

func TestArrayLiteralAndTypes(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { let a: [i32; 3] = [10, 20, 30]; let s: [u8] = a2; let p: *Point = q; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	stmts := prog.Funcs()[0].Body.Stmts
	a := stmts[0].Let
	if a.Type.Kind != ast.TypeArray || a.Type.Len != 3 || a.Type.Elem.Kind != ast.TypeI32 {
		t.Fatalf("array type = %+v", a.Type)
	}
	if a.Init.Kind != ast.ExprArrayLit || len(a.Init.Elems) != 3 {
		t.Fatalf("array lit = %+v", a.Init)
	}
	if stmts[1].Let.Type.Kind != ast.TypeSlice {
		t.Errorf("slice type = %+v", stmts[1].Let.Type)
	}
	if stmts[2].Let.Type.Kind != ast.TypePointer || stmts[2].Let.Type.Elem.Kind != ast.TypeNamed {
		t.Errorf("pointer type = %+v", stmts[2].Let.Type)
	}
}

func TestForLoop(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { for i in 0..5 { } for item in xs { } }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	stmts := prog.Funcs()[0].Body.Stmts
	if stmts[0].For.Var != "i" || stmts[0].For.Iterable.Kind != ast.ExprRange {
		t.Fatalf("range for = %+v", stmts[0].For)
	}
	if stmts[1].For.Var != "item" || stmts[1].For.Iterable.Kind != ast.ExprIdent {
		t.Fatalf("array for = %+v", stmts[1].For)
	}
}

func TestRecoveryReportsMultipleErrors(t *testing.T) {
	prog, bag := parseSource(t, `
fn f() {
    let x = ;
    let y = 1;
    let z = ;
}
`)
	if bag.Len() < 2 {
		t.Fatalf("expected at least 2 errors, got %d: %+v", bag.Len(), bag.Items())
	}
	// The valid statement between the broken ones survives; the broken
	// statements are dropped without placeholder nodes.
	stmts := prog.Funcs()[0].Body.Stmts
	if len(stmts) != 1 {
		t.Fatalf("surviving statements = %d, want 1", len(stmts))
	}
	if stmts[0].Let == nil || stmts[0].Let.Name != "y" {
		t.Errorf("surviving statement = %+v", stmts[0])
	}
}

func TestRecoveryAcrossItems(t *testing.T) {
	prog, bag := parseSource(t, `
struct Broken { x: }
fn ok() { }
`)
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
	fns := prog.Funcs()
	if len(fns) != 1 || fns[0].Name != "ok" {
		t.Fatalf("expected fn ok to survive, got %+v", fns)
	}
}

func TestBreakContinue(t *testing.T) {
	prog, bag := parseSource(t, "fn f() { while true { break; continue; } }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	body := prog.Funcs()[0].Body.Stmts[0].While.Body.Stmts
	if body[0].Kind != ast.StmtBreak || body[1].Kind != ast.StmtContinue {
		t.Fatalf("body = %+v", body)
	}
}

func TestElseIfChain(t *testing.T) {
	prog, bag := parseSource(t, "fn f(x: i32) { if x < 0 { } else if x == 0 { } else { } }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	ifStmt := prog.Funcs()[0].Body.Stmts[0].If
	if ifStmt.Else == nil || len(ifStmt.Else.Stmts) != 1 {
		t.Fatalf("else = %+v", ifStmt.Else)
	}
	nested := ifStmt.Else.Stmts[0]
	if nested.Kind != ast.StmtIf || nested.If.Else == nil {
		t.Fatalf("nested = %+v", nested)
	}
}

func TestUnaryOperators(t *testing.T) {
	prog, bag := parseSource(t, "fn f(p: *i32, b: bool) { let a = -*p; let c = !b; let d = &a; }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	stmts := prog.Funcs()[0].Body.Stmts
	neg := stmts[0].Let.Init
	if neg.Kind != ast.ExprUnary || neg.UnOp != ast.UnNeg {
		t.Fatalf("neg = %+v", neg)
	}
	if neg.Operand.Kind != ast.ExprUnary || neg.Operand.UnOp != ast.UnDeref {
		t.Fatalf("deref = %+v", neg.Operand)
	}
	if stmts[1].Let.Init.UnOp != ast.UnNot {
		t.Errorf("not = %+v", stmts[1].Let.Init)
	}
	if stmts[2].Let.Init.UnOp != ast.UnAddr {
		t.Errorf("addr = %+v", stmts[2].Let.Init)
	}
}
