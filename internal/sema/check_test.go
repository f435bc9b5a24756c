package sema

import (
	"testing"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/lexer"
	"github.com/haiman1024/Contractus/internal/parser"
	"github.com/haiman1024/Contractus/internal/source"
)

func checkSource(t *testing.T, src string) (*Result, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	file := source.NewFile("test.ctx", []byte(src))
	toks := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	parsed := parser.Parse(toks, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %+v", bag.Items())
	}
	res := Check(parsed.Program, Options{Reporter: reporter})
	return res, bag
}

func requireClean(t *testing.T, src string) *Result {
	t.Helper()
	res, bag := checkSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	return res
}

func requireCode(t *testing.T, src string, code diag.Code) {
	t.Helper()
	_, bag := checkSource(t, src)
	if !bag.HasCode(code) {
		t.Fatalf("expected %s, got %+v", code, bag.Items())
	}
}

func TestWellTypedProgram(t *testing.T) {
	res := requireClean(t, `
struct Point { x: i32, y: i32 }

fn dot(a: Point, b: Point) -> i32 {
    return a.x * b.x + a.y * b.y;
}

fn main() {
    let p = Point { x: 1, y: 2 };
    let q = Point { x: 3, y: 4 };
    print_i32(dot(p, q));
}
`)
	if _, ok := res.Funcs["dot"]; !ok {
		t.Fatal("dot signature missing")
	}
	if _, ok := res.Funcs["print_i32"]; !ok {
		t.Fatal("builtin print_i32 missing")
	}
	if _, ok := res.StructTypes["Point"]; !ok {
		t.Fatal("Point type missing")
	}
}

func TestForwardReferences(t *testing.T) {
	// Call before definition and struct use before declaration both resolve.
	requireClean(t, `
fn a() -> i32 { return b(); }
fn b() -> i32 { return 1; }

struct Outer { inner: Inner }
struct Inner { v: i32 }
`)
}

func TestDuplicateDefinitions(t *testing.T) {
	requireCode(t, "struct S { x: i32 } struct S { y: i32 }", diag.SemaDuplicateStruct)
	requireCode(t, "struct S { x: i32, x: bool }", diag.SemaDuplicateField)
	requireCode(t, "fn f() { } fn f() { }", diag.SemaDuplicateFunction)
	requireCode(t, "fn f() { let x = 1; let x = 2; }", diag.SemaDuplicateBinding)
}

func TestShadowingAcrossScopesIsLegal(t *testing.T) {
	requireClean(t, `
fn f() {
    let x = 1;
    {
        let x = true;
        let y = !x;
    }
    let z = x + 1;
}
`)
}

func TestRecursiveStruct(t *testing.T) {
	requireCode(t, "struct Node { next: Node }", diag.SemaRecursiveStruct)
	requireCode(t, `
struct A { b: B }
struct B { a: A }
`, diag.SemaRecursiveStruct)
	// Through a pointer the cycle is fine.
	requireClean(t, "struct Node { v: i32, next: *Node }")
}

func TestUndefinedNames(t *testing.T) {
	requireCode(t, "fn f() { let x = y; }", diag.SemaUndefinedVariable)
	requireCode(t, "fn f() { g(); }", diag.SemaUndefinedFunction)
	requireCode(t, "fn f(p: Unknown) { }", diag.SemaUndefinedStruct)
	requireCode(t, `
struct P { x: i32 }
fn f(p: P) { let v = p.z; }
`, diag.SemaUndefinedField)
}

func TestUninitializedUse(t *testing.T) {
	requireCode(t, "fn f() { let x: i32; let y = x; }", diag.SemaUninitialized)
	// Assignment before the read initializes.
	requireClean(t, "fn f() { let mut x: i32; x = 1; let y = x; }")
	// The right-hand side is checked before the target counts as assigned.
	requireCode(t, "fn f() { let mut x: i32; x = x + 1; }", diag.SemaUninitialized)
	requireCode(t, "fn f() { let mut x: i32; x += 1; }", diag.SemaUninitialized)
}

func TestUnitValueCannotBeBound(t *testing.T) {
	// Assignments have unit type, as do calls to unit functions; neither
	// carries a value a binding could hold.
	requireCode(t, "fn f() { let mut a = 0; let u = a = 1; }", diag.TypeMismatch)
	requireCode(t, `
fn g() { }
fn f() { let u = g(); }
`, diag.TypeMismatch)
}

func TestImmutableAssignment(t *testing.T) {
	requireCode(t, "fn f() { let x = 1; x = 2; }", diag.SemaAssignImmutable)
	requireClean(t, "fn f() { let mut x = 1; x = 2; }")
}

func TestLoopVariableImmutableAndScoped(t *testing.T) {
	requireCode(t, "fn f() { for i in 0..3 { i = 1; } }", diag.SemaAssignImmutable)
	requireCode(t, "fn f() { for i in 0..3 { } let x = i; }", diag.SemaUndefinedVariable)
}

func TestForIterables(t *testing.T) {
	requireClean(t, `
fn f(xs: [i32], ys: [i32; 4]) {
    for x in xs { print_i32(x); }
    for y in ys { print_i32(y); }
    for i in 0..10 { print_i32(i); }
}
`)
	requireCode(t, "fn f() { for x in 5 { } }", diag.SemaInvalidIterable)
	requireCode(t, "fn f(b: bool) { for x in b { } }", diag.SemaInvalidIterable)
}

func TestRangeOutsideFor(t *testing.T) {
	requireCode(t, "fn f() { let r = 0..5; }", diag.SemaInvalidIterable)
}

func TestConditionMustBeBool(t *testing.T) {
	requireCode(t, "fn f() { if 1 { } }", diag.TypeCondNotBool)
	requireCode(t, "fn f() { while 0 { } }", diag.TypeCondNotBool)
}

func TestTypeMismatches(t *testing.T) {
	requireCode(t, "fn f() { let x: i32 = true; }", diag.TypeMismatch)
	requireCode(t, "fn f() { let x = 1 + true; }", diag.TypeMismatch)
	requireCode(t, "fn f() -> i32 { return true; }", diag.TypeReturnMismatch)
	requireCode(t, "fn f() -> i32 { return; }", diag.TypeReturnMismatch)
}

func TestOperandTypes(t *testing.T) {
	requireCode(t, "fn f(b: bool) { let x = -b; }", diag.TypeBadOperand)
	requireCode(t, "fn f(n: i32) { let x = !n; }", diag.TypeBadOperand)
	requireCode(t, "fn f(b: bool, c: bool) { let x = b < c; }", diag.TypeBadOperand)
	requireCode(t, "fn f(n: i32) { let x = *n; }", diag.TypeBadOperand)
	requireClean(t, "fn f(p: *i32) { let x = *p + 1; }")
	requireClean(t, "fn f(b: bool, c: bool) { let x = b == c; }")
}

func TestAddressOf(t *testing.T) {
	requireClean(t, "fn f() { let x = 1; let p = &x; let y = *p; }")
	requireCode(t, "fn f() { let p = &1; }", diag.TypeBadOperand)
}

func TestCalls(t *testing.T) {
	requireCode(t, `
fn g(a: i32, b: i32) -> i32 { return a + b; }
fn f() { g(1); }
`, diag.TypeArgCount)
	requireCode(t, `
fn g(a: i32) { }
fn f() { g(true); }
`, diag.TypeMismatch)
	requireCode(t, "fn f() { let x = 1; x(); }", diag.TypeNotCallable)
}

func TestZeroLengthArraysRejected(t *testing.T) {
	requireCode(t, "fn f() { let x: [i32; 0]; }", diag.SemaZeroSizeArray)
	requireCode(t, "fn f() { let x = []; }", diag.SemaZeroSizeArray)
	requireCode(t, "fn f() { let s: [i32] = []; }", diag.SemaZeroSizeArray)
	requireCode(t, "struct S { xs: [u8; 0] }", diag.SemaZeroSizeArray)
}

func TestIndexing(t *testing.T) {
	requireClean(t, "fn f(xs: [i32; 3]) -> i32 { return xs[0]; }")
	requireClean(t, "fn f(p: *i32) -> i32 { return p[1]; }")
	requireCode(t, "fn f(n: i32) { let x = n[0]; }", diag.TypeNotIndexable)
	requireCode(t, "fn f(xs: [i32; 3], b: bool) { let x = xs[b]; }", diag.TypeIndexNotI32)
}

func TestStructLiteralFields(t *testing.T) {
	requireCode(t, `
struct P { x: i32, y: i32 }
fn f() { let p = P { x: 1 }; }
`, diag.SemaStructLitField)
	requireCode(t, `
struct P { x: i32 }
fn f() { let p = P { x: 1, x: 2 }; }
`, diag.SemaStructLitField)
	requireCode(t, `
struct P { x: i32 }
fn f() { let p = P { x: 1, z: 2 }; }
`, diag.SemaUndefinedField)
}

func TestArrayToSliceCoercion(t *testing.T) {
	res := requireClean(t, `
fn sum(xs: [i32]) -> i32 {
    let mut total = 0;
    for x in xs { total = total + x; }
    return total;
}

fn main() {
    let a: [i32; 3] = [1, 2, 3];
    print_i32(sum(a));
}
`)
	if len(res.SliceCoercions) != 1 {
		t.Fatalf("expected 1 coercion site, got %d", len(res.SliceCoercions))
	}
}

func TestSliceCoercionElementMismatch(t *testing.T) {
	requireCode(t, `
fn take(xs: [u8]) { }
fn f() { let a: [i32; 2] = [1, 2]; take(a); }
`, diag.TypeMismatch)
}

func TestU8LiteralAdoption(t *testing.T) {
	requireClean(t, "fn f() { let b: u8 = 7; print_u8(b); }")
	requireCode(t, "fn f() { let b: u8 = 300; }", diag.TypeMismatch)
	// Without a u8 context a literal is i32.
	requireCode(t, "fn f(b: u8) { let x = b + 1000000; }", diag.TypeMismatch)
}

func TestBreakContinueOutsideLoop(t *testing.T) {
	requireCode(t, "fn f() { break; }", diag.SemaLoopControl)
	requireCode(t, "fn f() { continue; }", diag.SemaLoopControl)
	requireClean(t, "fn f() { while true { if true { break; } continue; } }")
}

func TestMultipleErrorsCollected(t *testing.T) {
	_, bag := checkSource(t, `
fn f() {
    let a = missing1;
    let b = missing2;
    let c: i32 = true;
}
`)
	if bag.Len() < 3 {
		t.Fatalf("expected at least 3 errors, got %d: %+v", bag.Len(), bag.Items())
	}
}

func TestExprTypesRecorded(t *testing.T) {
	res := requireClean(t, "fn f(a: i32, b: i32) -> i32 { return a + b; }")
	fn := res.Funcs["f"]
	ret := fn.Decl.Body.Stmts[0].Ret.Value
	if res.TypeOf(ret) != res.Types.Builtins().I32 {
		t.Fatalf("a + b typed as %s", res.Types.String(res.TypeOf(ret)))
	}
}
