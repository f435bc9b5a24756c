package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	I32     TypeID
	Bool    TypeID
	U8      TypeID
	Range   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Struct types are nominal: interning the same StructID twice yields the
// same TypeID, and distinct structs never compare equal.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
	fns      []FnInfo
}

// NewInterner constructs an interner seeded with the built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.I32 = in.Intern(Type{Kind: KindI32})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.U8 = in.Intern(Type{Kind: KindU8})
	in.builtins.Range = in.Intern(Type{Kind: KindRange})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// String renders a type for diagnostics.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindI32, KindBool, KindU8, KindRange:
		return tt.Kind.String()
	case KindStruct:
		if info, ok := in.StructInfo(id); ok {
			return info.Name
		}
		return "struct"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", in.String(tt.Elem), tt.Count)
	case KindSlice:
		return "[" + in.String(tt.Elem) + "]"
	case KindPointer:
		return "*" + in.String(tt.Elem)
	case KindFn:
		if info, ok := in.FnInfo(id); ok {
			s := "fn("
			for i, p := range info.Params {
				if i > 0 {
					s += ", "
				}
				s += in.String(p)
			}
			return s + ") -> " + in.String(info.Ret)
		}
		return "fn"
	default:
		return tt.Kind.String()
	}
}
