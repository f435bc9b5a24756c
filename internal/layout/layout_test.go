package layout

import (
	"errors"
	"testing"

	"github.com/haiman1024/Contractus/internal/types"
)

func newEngine() (*Engine, *types.Interner) {
	in := types.NewInterner()
	return New(X86_64LinuxGNU(), in), in
}

func TestPointLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	point := in.DeclareStruct("Point")
	in.SetStructFields(point, []types.StructField{
		{Name: "x", Type: b.I32},
		{Name: "y", Type: b.I32},
	})

	l, err := e.LayoutOf(point)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.Size != 8 || l.Align != 4 {
		t.Errorf("size=%d align=%d, want 8/4", l.Size, l.Align)
	}
	if l.FieldOffsets[0] != 0 || l.FieldOffsets[1] != 4 {
		t.Errorf("offsets = %v, want [0 4]", l.FieldOffsets)
	}
}

func TestMixedAlignmentPadding(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	s := in.DeclareStruct("Mixed")
	in.SetStructFields(s, []types.StructField{
		{Name: "flag", Type: b.U8},
		{Name: "value", Type: b.I32},
		{Name: "tail", Type: b.U8},
	})

	l, err := e.LayoutOf(s)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	// u8 at 0, i32 padded to 4, u8 at 8, size rounded to 12.
	want := []int{0, 4, 8}
	for i, off := range l.FieldOffsets {
		if off != want[i] {
			t.Errorf("offset[%d] = %d, want %d", i, off, want[i])
		}
	}
	if l.Size != 12 || l.Align != 4 {
		t.Errorf("size=%d align=%d, want 12/4", l.Size, l.Align)
	}
}

func TestArrayAndSliceLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()

	arr := in.Intern(types.MakeArray(b.I32, 3))
	if size, err := e.SizeOf(arr); err != nil || size != 12 {
		t.Errorf("SizeOf([i32;3]) = %d, %v", size, err)
	}
	if align, err := e.AlignOf(arr); err != nil || align != 4 {
		t.Errorf("AlignOf([i32;3]) = %d, %v", align, err)
	}

	slice := in.Intern(types.MakeSlice(b.I32))
	if size, err := e.SizeOf(slice); err != nil || size != 16 {
		t.Errorf("SizeOf([i32]) = %d, %v (fat pointer)", size, err)
	}

	ptr := in.Intern(types.MakePointer(b.U8))
	if size, err := e.SizeOf(ptr); err != nil || size != 8 {
		t.Errorf("SizeOf(*u8) = %d, %v", size, err)
	}
}

func TestNestedStructLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	inner := in.DeclareStruct("Inner")
	in.SetStructFields(inner, []types.StructField{
		{Name: "a", Type: b.I32},
		{Name: "b", Type: b.I32},
	})
	outer := in.DeclareStruct("Outer")
	in.SetStructFields(outer, []types.StructField{
		{Name: "tag", Type: b.U8},
		{Name: "inner", Type: inner},
	})

	l, err := e.LayoutOf(outer)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.FieldOffsets[1] != 4 {
		t.Errorf("inner offset = %d, want 4", l.FieldOffsets[1])
	}
	if l.Size != 12 {
		t.Errorf("size = %d, want 12", l.Size)
	}
}

func TestRecursiveStructByValue(t *testing.T) {
	e, in := newEngine()
	node := in.DeclareStruct("Node")
	in.SetStructFields(node, []types.StructField{
		{Name: "next", Type: node},
	})

	_, err := e.LayoutOf(node)
	if err == nil {
		t.Fatal("expected recursive layout error")
	}
	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T (%v)", err, err)
	}
	if lerr.Kind != ErrRecursiveStruct {
		t.Fatalf("kind = %d, want ErrRecursiveStruct", lerr.Kind)
	}
	if len(lerr.Cycle) == 0 {
		t.Error("expected non-empty cycle")
	}
}

func TestSelfReferenceViaPointerIsLegal(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	node := in.DeclareStruct("Node")
	in.SetStructFields(node, []types.StructField{
		{Name: "value", Type: b.I32},
		{Name: "next", Type: in.Intern(types.MakePointer(node))},
	})

	l, err := e.LayoutOf(node)
	if err != nil {
		t.Fatalf("self-reference via pointer should be legal: %v", err)
	}
	if l.FieldOffsets[1] != 8 || l.Size != 16 || l.Align != 8 {
		t.Errorf("layout = %+v", l)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	s := in.DeclareStruct("S")
	in.SetStructFields(s, []types.StructField{
		{Name: "a", Type: b.U8},
		{Name: "b", Type: b.I32},
	})
	l1, _ := e.LayoutOf(s)
	l2, _ := e.LayoutOf(s)
	if l1.Size != l2.Size || l1.Align != l2.Align {
		t.Errorf("layout not stable: %+v vs %+v", l1, l2)
	}
}
