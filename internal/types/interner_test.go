package types

import "testing"

func TestInternStructuralEquality(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	arrA := in.Intern(MakeArray(b.I32, 4))
	arrB := in.Intern(MakeArray(b.I32, 4))
	if arrA != arrB {
		t.Errorf("identical arrays interned to %d and %d", arrA, arrB)
	}
	arrC := in.Intern(MakeArray(b.I32, 5))
	if arrA == arrC {
		t.Error("arrays of different length share a TypeID")
	}

	ptrA := in.Intern(MakePointer(b.I32))
	ptrB := in.Intern(MakePointer(b.I32))
	if ptrA != ptrB {
		t.Errorf("identical pointers interned to %d and %d", ptrA, ptrB)
	}
	if ptrA == in.Intern(MakePointer(b.Bool)) {
		t.Error("pointers to different pointees share a TypeID")
	}
}

func TestStructNominalIdentity(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	point := in.DeclareStruct("Point")
	vec := in.DeclareStruct("Vec")
	if point == vec {
		t.Fatal("distinct structs share a TypeID")
	}
	fields := []StructField{{Name: "x", Type: b.I32}, {Name: "y", Type: b.I32}}
	in.SetStructFields(point, fields)
	in.SetStructFields(vec, fields)
	// Same field list, different names: still distinct types.
	if point == vec {
		t.Fatal("structs with identical fields collapsed")
	}

	info, ok := in.StructInfo(point)
	if !ok || info.Name != "Point" || len(info.Fields) != 2 {
		t.Fatalf("StructInfo = %+v, ok=%v", info, ok)
	}
	if idx, ok := info.FieldIndex("y"); !ok || idx != 1 {
		t.Errorf("FieldIndex(y) = %d, %v", idx, ok)
	}
	if _, ok := info.FieldIndex("z"); ok {
		t.Error("FieldIndex(z) should fail")
	}
}

func TestInternFn(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	f1 := in.InternFn([]TypeID{b.I32, b.I32}, b.I32)
	f2 := in.InternFn([]TypeID{b.I32, b.I32}, b.I32)
	if f1 != f2 {
		t.Errorf("identical fn types interned to %d and %d", f1, f2)
	}
	f3 := in.InternFn([]TypeID{b.I32}, b.I32)
	if f1 == f3 {
		t.Error("fn types with different arity share a TypeID")
	}
	info, ok := in.FnInfo(f1)
	if !ok || len(info.Params) != 2 || info.Ret != b.I32 {
		t.Fatalf("FnInfo = %+v, ok=%v", info, ok)
	}
}

func TestTypeString(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	point := in.DeclareStruct("Point")

	cases := []struct {
		id   TypeID
		want string
	}{
		{b.I32, "i32"},
		{b.Bool, "bool"},
		{b.U8, "u8"},
		{b.Unit, "()"},
		{point, "Point"},
		{in.Intern(MakeArray(b.U8, 3)), "[u8; 3]"},
		{in.Intern(MakeSlice(b.I32)), "[i32]"},
		{in.Intern(MakePointer(point)), "*Point"},
	}
	for _, tc := range cases {
		if got := in.String(tc.id); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
