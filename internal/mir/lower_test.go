package mir

import (
	"testing"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/lexer"
	"github.com/haiman1024/Contractus/internal/parser"
	"github.com/haiman1024/Contractus/internal/sema"
	"github.com/haiman1024/Contractus/internal/source"
)

func lowerSource(t *testing.T, src string) (*Module, *sema.Result) {
	t.Helper()
	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	file := source.NewFile("test.ctx", []byte(src))
	toks := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	parsed := parser.Parse(toks, parser.Options{Reporter: reporter})
	res := sema.Check(parsed.Program, sema.Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("front-end errors: %+v", bag.Items())
	}
	return Lower(parsed.Program, res), res
}

func findFn(t *testing.T, mod *Module, name string) *Function {
	t.Helper()
	for _, f := range mod.Funcs {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not lowered", name)
	return nil
}

func countKind(f *Function, k InstrKind) int {
	n := 0
	for i := range f.Instrs {
		if f.Instrs[i].Kind == k {
			n++
		}
	}
	return n
}

func countCalls(f *Function, callee string) int {
	n := 0
	for i := range f.Instrs {
		if f.Instrs[i].Kind == Call && f.Instrs[i].Callee == callee {
			n++
		}
	}
	return n
}

func TestRangeBoundsEvaluatedOnce(t *testing.T) {
	mod, _ := lowerSource(t, `
fn lo() -> i32 { return 0; }
fn hi() -> i32 { return 10; }
fn main() {
    for i in lo()..hi() {
        print_i32(i);
    }
}
`)
	main := findFn(t, mod, "main")
	if n := countCalls(main, "lo"); n != 1 {
		t.Errorf("lo() lowered %d times, want 1", n)
	}
	if n := countCalls(main, "hi"); n != 1 {
		t.Errorf("hi() lowered %d times, want 1", n)
	}
	// Bound calls must precede the loop head label.
	firstLabel := -1
	lastCall := -1
	for i := range main.Instrs {
		if main.Instrs[i].Kind == Label && firstLabel < 0 {
			firstLabel = i
		}
		if main.Instrs[i].Kind == Call && main.Instrs[i].Callee != "print_i32" {
			lastCall = i
		}
	}
	if lastCall > firstLabel {
		t.Errorf("bound evaluation at %d after loop head at %d", lastCall, firstLabel)
	}
}

func TestRangeForDesugarsToWhileShape(t *testing.T) {
	mod, _ := lowerSource(t, `
fn main() {
    let mut sum = 0;
    for i in 0..5 {
        sum = sum + i;
    }
    print_i32(sum);
}
`)
	main := findFn(t, mod, "main")
	// Hidden induction slot plus the sum slot.
	if n := countKind(main, Alloc); n != 2 {
		t.Errorf("allocs = %d, want 2", n)
	}
	// The comparison is `v < end` exactly once.
	lt := 0
	for i := range main.Instrs {
		if main.Instrs[i].Kind == Bin && main.Instrs[i].Op == OpLt {
			lt++
		}
	}
	if lt != 1 {
		t.Errorf("OpLt count = %d, want 1", lt)
	}
	if countKind(main, JumpIf) != 1 {
		t.Errorf("JumpIf count = %d, want 1", countKind(main, JumpIf))
	}
}

func TestElemForLoadsThroughHiddenIndex(t *testing.T) {
	mod, _ := lowerSource(t, `
fn sum(xs: [i32]) -> i32 {
    let mut total = 0;
    for x in xs {
        total = total + x;
    }
    return total;
}
`)
	f := findFn(t, mod, "sum")
	if countKind(f, SlicePtr) != 1 || countKind(f, SliceLen) != 1 {
		t.Errorf("fat pointer unpacked %d/%d times, want 1/1",
			countKind(f, SlicePtr), countKind(f, SliceLen))
	}
	// One hidden index slot; one element address per iteration.
	if countKind(f, Alloc) != 2 { // total + index
		t.Errorf("allocs = %d, want 2", countKind(f, Alloc))
	}
	if countKind(f, ElemPtr) != 1 {
		t.Errorf("elem ptrs = %d, want 1", countKind(f, ElemPtr))
	}
}

func TestImmutableBindingStaysInRegister(t *testing.T) {
	mod, _ := lowerSource(t, `
fn f() -> i32 {
    let x = 2;
    let y = x * 3;
    return y;
}
`)
	f := findFn(t, mod, "f")
	if n := countKind(f, Alloc); n != 0 {
		t.Errorf("allocs = %d, want 0 for immutable bindings", n)
	}
	if n := countKind(f, Load); n != 0 {
		t.Errorf("loads = %d, want 0", n)
	}
}

func TestMutableBindingUsesSlot(t *testing.T) {
	mod, _ := lowerSource(t, `
fn f() -> i32 {
    let mut x = 1;
    x = x + 1;
    return x;
}
`)
	f := findFn(t, mod, "f")
	if countKind(f, Alloc) != 1 {
		t.Errorf("allocs = %d, want 1", countKind(f, Alloc))
	}
	// Initial store plus the assignment.
	if countKind(f, Store) != 2 {
		t.Errorf("stores = %d, want 2", countKind(f, Store))
	}
}

func TestAddressTakenBindingSpills(t *testing.T) {
	mod, _ := lowerSource(t, `
fn f() -> i32 {
    let x = 41;
    let p = &x;
    return *p + 1;
}
`)
	f := findFn(t, mod, "f")
	if countKind(f, Alloc) != 1 {
		t.Errorf("allocs = %d, want 1 for the address-taken binding", countKind(f, Alloc))
	}
}

func TestShortCircuitSkipsRhs(t *testing.T) {
	mod, _ := lowerSource(t, `
fn pred() -> bool { return true; }
fn f(a: bool) -> bool {
    return a && pred();
}
`)
	f := findFn(t, mod, "f")
	jumpIfAt, callAt := -1, -1
	for i := range f.Instrs {
		if f.Instrs[i].Kind == JumpIf && jumpIfAt < 0 {
			jumpIfAt = i
		}
		if f.Instrs[i].Kind == Call {
			callAt = i
		}
	}
	if jumpIfAt < 0 || callAt < 0 || callAt < jumpIfAt {
		t.Errorf("pred() at %d not guarded by branch at %d", callAt, jumpIfAt)
	}
}

func TestStructLiteralStoresInDeclOrder(t *testing.T) {
	mod, _ := lowerSource(t, `
struct P { x: i32, y: i32 }
fn f() -> i32 {
    let p = P { y: 2, x: 1 };
    return p.x;
}
`)
	f := findFn(t, mod, "f")
	var names []string
	for i := range f.Instrs {
		if f.Instrs[i].Kind == FieldPtr {
			names = append(names, f.Instrs[i].Name)
		}
	}
	// Two stores in declaration order, then the read of x.
	if len(names) != 3 || names[0] != "x" || names[1] != "y" || names[2] != "x" {
		t.Errorf("field ptr order = %v", names)
	}
}

func TestFieldOffsetsComeFromLayout(t *testing.T) {
	mod, _ := lowerSource(t, `
struct Mixed { a: u8, b: i32, c: u8 }
fn f(m: Mixed) -> i32 {
    return m.b;
}
`)
	f := findFn(t, mod, "f")
	for i := range f.Instrs {
		if f.Instrs[i].Kind == FieldPtr && f.Instrs[i].Name == "b" {
			if f.Instrs[i].Offset != 4 {
				t.Errorf("offset of b = %d, want 4", f.Instrs[i].Offset)
			}
			return
		}
	}
	t.Fatal("no FieldPtr for b")
}

func TestSliceCoercionMaterializesLength(t *testing.T) {
	mod, _ := lowerSource(t, `
fn take(xs: [i32]) { }
fn f() {
    let a: [i32; 3] = [7, 8, 9];
    take(a);
}
`)
	f := findFn(t, mod, "f")
	if countKind(f, MakeSlice) != 1 {
		t.Fatalf("MakeSlice count = %d, want 1", countKind(f, MakeSlice))
	}
	// The static length 3 must appear as a constant feeding the fat pointer.
	var lenReg Reg
	for i := range f.Instrs {
		if f.Instrs[i].Kind == MakeSlice {
			lenReg = f.Instrs[i].Y
		}
	}
	for i := range f.Instrs {
		in := &f.Instrs[i]
		if in.Kind == ConstInt && in.Dst == lenReg {
			if in.IntVal != 3 {
				t.Errorf("materialized length = %d, want 3", in.IntVal)
			}
			return
		}
	}
	t.Fatal("length constant not found")
}

func TestUnitFunctionGetsTrailingRet(t *testing.T) {
	mod, _ := lowerSource(t, "fn f() { print_i32(1); }")
	f := findFn(t, mod, "f")
	last := f.Instrs[len(f.Instrs)-1]
	if last.Kind != Ret || last.HasValue {
		t.Errorf("last instr = %+v, want bare Ret", last)
	}
}

func TestReturnOfUnitValueLowersToBareRet(t *testing.T) {
	// Returning a unit-valued expression evaluates it for its effects but
	// must not name an absent register in the Ret.
	mod, _ := lowerSource(t, `
fn g() { print_i32(1); }
fn f() { return g(); }
`)
	f := findFn(t, mod, "f")
	if n := countCalls(f, "g"); n != 1 {
		t.Fatalf("g() lowered %d times, want 1", n)
	}
	for i := range f.Instrs {
		in := &f.Instrs[i]
		if in.Kind == Ret && in.HasValue {
			t.Errorf("instr %d = %+v, want bare Ret", i, in)
		}
	}
}

func TestCallArgsLowerLeftToRight(t *testing.T) {
	mod, _ := lowerSource(t, `
fn a() -> i32 { return 1; }
fn b() -> i32 { return 2; }
fn add(x: i32, y: i32) -> i32 { return x + y; }
fn f() -> i32 { return add(a(), b()); }
`)
	f := findFn(t, mod, "f")
	var order []string
	for i := range f.Instrs {
		if f.Instrs[i].Kind == Call {
			order = append(order, f.Instrs[i].Callee)
		}
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "add" {
		t.Errorf("call order = %v", order)
	}
}

func TestContinueTargetsIncrement(t *testing.T) {
	mod, _ := lowerSource(t, `
fn main() {
    let mut n = 0;
    for i in 0..10 {
        if i == 5 {
            continue;
        }
        n = n + 1;
    }
    print_i32(n);
}
`)
	main := findFn(t, mod, "main")
	// Find the continue jump: it precedes the step label holding the
	// increment. Verify its target label is immediately followed by the
	// induction load, not the loop head comparison.
	labelPos := make(map[LabelID]int)
	for i := range main.Instrs {
		if main.Instrs[i].Kind == Label {
			labelPos[main.Instrs[i].Target] = i
		}
	}
	found := false
	for i := range main.Instrs {
		in := &main.Instrs[i]
		if in.Kind != Jump {
			continue
		}
		at := labelPos[in.Target]
		// The step block starts with a Load of the induction slot.
		if at+1 < len(main.Instrs) && main.Instrs[at+1].Kind == Load {
			found = true
		}
	}
	if !found {
		t.Error("no jump lands on the increment block")
	}
}

func TestRegisterTypesAreComplete(t *testing.T) {
	mod, res := lowerSource(t, `
struct P { x: i32 }
fn f(p: P, b: bool) -> i32 {
    if b { return p.x; }
    return 0;
}
`)
	f := findFn(t, mod, "f")
	regTypes := f.RegTypes()
	for r, ty := range regTypes {
		if ty == 0 {
			t.Errorf("register r%d has no type", r)
		}
	}
	_ = res
}
