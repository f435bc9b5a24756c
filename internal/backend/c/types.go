package c

import (
	"fmt"
	"strings"

	"github.com/haiman1024/Contractus/internal/sema"
	"github.com/haiman1024/Contractus/internal/types"
)

// typeNamer maps Contractus types onto C spellings. Arrays get wrapper
// structs so they behave as assignable values; every slice is the one
// generic ctx_slice fat pointer, re-cast at element access.
type typeNamer struct {
	res *sema.Result
}

// cname returns the C type spelling for declarations.
func (n *typeNamer) cname(id types.TypeID) string {
	b := n.res.Types.Builtins()
	switch id {
	case b.Unit:
		return "void"
	case b.I32:
		return "int32_t"
	case b.Bool:
		return "int"
	case b.U8:
		return "uint8_t"
	}
	tt := n.res.Types.MustLookup(id)
	switch tt.Kind {
	case types.KindStruct:
		info, _ := n.res.Types.StructInfo(id)
		return info.Name
	case types.KindPointer:
		return n.cname(tt.Elem) + "*"
	case types.KindSlice:
		return "ctx_slice"
	case types.KindArray:
		return n.arrayName(id)
	}
	panic(fmt.Sprintf("c: no C spelling for %s", n.res.Types.String(id)))
}

// arrayName builds the wrapper typedef name for an array type.
func (n *typeNamer) arrayName(id types.TypeID) string {
	tt := n.res.Types.MustLookup(id)
	return fmt.Sprintf("ctx_arr_%s_%d", n.mangle(tt.Elem), tt.Count)
}

// mangle flattens a type into an identifier fragment.
func (n *typeNamer) mangle(id types.TypeID) string {
	b := n.res.Types.Builtins()
	switch id {
	case b.I32:
		return "i32"
	case b.Bool:
		return "bool"
	case b.U8:
		return "u8"
	}
	tt := n.res.Types.MustLookup(id)
	switch tt.Kind {
	case types.KindStruct:
		info, _ := n.res.Types.StructInfo(id)
		return info.Name
	case types.KindPointer:
		return "p" + n.mangle(tt.Elem)
	case types.KindSlice:
		return "slice"
	case types.KindArray:
		return fmt.Sprintf("arr_%s_%d", n.mangle(tt.Elem), tt.Count)
	}
	return "t"
}

// typeDefs emits forward declarations plus struct and array-wrapper
// definitions in dependency order, so every by-value member is complete
// before use. Pointer members only need the forward typedef.
type typeDefs struct {
	namer   *typeNamer
	emitted map[types.TypeID]bool
	buf     *strings.Builder
}

func newTypeDefs(namer *typeNamer, buf *strings.Builder) *typeDefs {
	return &typeDefs{namer: namer, emitted: make(map[types.TypeID]bool), buf: buf}
}

// forwardDecls emits `typedef struct S S;` for every declared struct.
func (d *typeDefs) forwardDecls() {
	for _, name := range d.namer.res.StructOrder {
		fmt.Fprintf(d.buf, "typedef struct %s %s;\n", name, name)
	}
	if len(d.namer.res.StructOrder) > 0 {
		d.buf.WriteString("\n")
	}
}

// ensure emits the definition of id and everything it contains by value.
func (d *typeDefs) ensure(id types.TypeID) {
	if d.emitted[id] {
		return
	}
	tt, ok := d.namer.res.Types.Lookup(id)
	if !ok {
		return
	}
	switch tt.Kind {
	case types.KindStruct:
		d.emitted[id] = true
		info, _ := d.namer.res.Types.StructInfo(id)
		for _, f := range info.Fields {
			d.ensureMember(f.Type)
		}
		fmt.Fprintf(d.buf, "struct %s {\n", info.Name)
		for _, f := range info.Fields {
			fmt.Fprintf(d.buf, "    %s %s;\n", d.namer.cname(f.Type), f.Name)
		}
		d.buf.WriteString("};\n\n")
	case types.KindArray:
		d.emitted[id] = true
		d.ensureMember(tt.Elem)
		fmt.Fprintf(d.buf, "typedef struct {\n    %s data[%d];\n} %s;\n\n",
			d.namer.cname(tt.Elem), tt.Count, d.namer.arrayName(id))
	case types.KindPointer, types.KindSlice:
		// Usable with only the forward declarations in place, but the
		// pointee may still need a definition for derefs elsewhere.
		d.ensure(tt.Elem)
	}
}

// ensureMember completes a by-value member type; pointers are left to the
// forward declarations.
func (d *typeDefs) ensureMember(id types.TypeID) {
	tt, ok := d.namer.res.Types.Lookup(id)
	if !ok {
		return
	}
	if tt.Kind == types.KindPointer {
		return
	}
	d.ensure(id)
}
