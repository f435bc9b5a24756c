package types

import (
	"fmt"

	"fortio.org/safecast"
)

// StructID indexes the struct side table; 0 is the invalid sentinel.
type StructID uint32

// StructField describes one declared field.
type StructField struct {
	Name string
	Type TypeID
}

// StructInfo is the nominal identity of a struct: its name and field list
// in declaration order. Field types are TypeIDs, so a struct "contains"
// another struct only via a table reference.
type StructInfo struct {
	Name   string
	Fields []StructField
}

// FieldIndex returns the declaration index of the named field.
func (si *StructInfo) FieldIndex(name string) (int, bool) {
	for i := range si.Fields {
		if si.Fields[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// DeclareStruct registers a new struct name with empty fields and returns
// its nominal TypeID. Fields are filled in later via SetStructFields, which
// lets signature and layout passes see every struct name up front.
func (in *Interner) DeclareStruct(name string) TypeID {
	lenStructs, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	sid := StructID(lenStructs)
	in.structs = append(in.structs, StructInfo{Name: name})
	return in.Intern(Type{Kind: KindStruct, Payload: uint32(sid)})
}

// SetStructFields fills in the field list of a declared struct.
func (in *Interner) SetStructFields(id TypeID, fields []StructField) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		panic("types: SetStructFields on non-struct TypeID")
	}
	in.structs[tt.Payload].Fields = fields
}

// StructInfo returns the registry entry behind a struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct || tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Payload], true
}

// FnID indexes the function type side table; 0 is the invalid sentinel.
type FnID uint32

// FnInfo describes a function type.
type FnInfo struct {
	Params []TypeID
	Ret    TypeID
}

// InternFn returns a stable TypeID for the given signature.
func (in *Interner) InternFn(params []TypeID, ret TypeID) TypeID {
	for fid := 1; fid < len(in.fns); fid++ {
		if in.fns[fid].Ret != ret || len(in.fns[fid].Params) != len(params) {
			continue
		}
		same := true
		for i := range params {
			if in.fns[fid].Params[i] != params[i] {
				same = false
				break
			}
		}
		if same {
			value, err := safecast.Conv[uint32](fid)
			if err != nil {
				panic(fmt.Errorf("fn index overflow: %w", err))
			}
			return in.Intern(Type{Kind: KindFn, Payload: value})
		}
	}
	lenFns, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("len(fns) overflow: %w", err))
	}
	fid := FnID(lenFns)
	in.fns = append(in.fns, FnInfo{Params: params, Ret: ret})
	return in.Intern(Type{Kind: KindFn, Payload: uint32(fid)})
}

// FnInfo returns the signature behind a function TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}
