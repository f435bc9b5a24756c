// Package c emits portable C99 from MIR. Output is deterministic: the
// same module and analysis results always produce byte-identical text.
// Every function body declares its registers up front and lowers control
// flow to labels and goto, one statement per instruction.
package c

import (
	"fmt"
	"sort"
	"strings"

	"github.com/haiman1024/Contractus/internal/mir"
	"github.com/haiman1024/Contractus/internal/sema"
	"github.com/haiman1024/Contractus/internal/types"
)

// Emit renders the whole module as one C translation unit.
func Emit(mod *mir.Module, res *sema.Result) (string, error) {
	for _, f := range mod.Funcs {
		if err := verifyFn(f); err != nil {
			return "", err
		}
	}

	namer := &typeNamer{res: res}
	var buf strings.Builder
	buf.WriteString(preamble)

	defs := newTypeDefs(namer, &buf)
	defs.forwardDecls()
	for _, name := range res.StructOrder {
		defs.ensure(res.StructTypes[name])
	}
	for _, id := range usedTypes(mod, res) {
		defs.ensure(id)
	}

	emitPrototypes(&buf, namer, mod, res)
	for i, f := range mod.Funcs {
		if i > 0 {
			buf.WriteString("\n")
		}
		fe := &fnEmitter{namer: namer, res: res, fn: f, buf: &buf, regTypes: f.RegTypes()}
		fe.emit()
	}
	return buf.String(), nil
}

// usedTypes gathers every type that appears on a register or slot, in a
// deterministic order, so array wrappers exist before function bodies.
func usedTypes(mod *mir.Module, res *sema.Result) []types.TypeID {
	seen := make(map[types.TypeID]bool)
	var order []types.TypeID
	add := func(id types.TypeID) {
		if id == types.NoTypeID || seen[id] {
			return
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, f := range mod.Funcs {
		for _, p := range f.Params {
			add(p.Type)
		}
		add(f.Ret)
		for i := range f.Instrs {
			add(f.Instrs[i].Type)
			add(f.Instrs[i].AllocType)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}

func emitPrototypes(buf *strings.Builder, namer *typeNamer, mod *mir.Module, res *sema.Result) {
	wrote := false
	for _, f := range mod.Funcs {
		if isCMain(f) {
			continue
		}
		buf.WriteString(signature(namer, res, f))
		buf.WriteString(";\n")
		wrote = true
	}
	if wrote {
		buf.WriteString("\n")
	}
}

// isCMain reports whether the function becomes the C entry point.
func isCMain(f *mir.Function) bool {
	return f.Name == "main" && len(f.Params) == 0
}

func signature(namer *typeNamer, res *sema.Result, f *mir.Function) string {
	var sb strings.Builder
	sb.WriteString("static ")
	sb.WriteString(namer.cname(f.Ret))
	sb.WriteString(" ")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	if len(f.Params) == 0 {
		sb.WriteString("void")
	}
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s r%d", namer.cname(p.Type), p.Reg)
	}
	sb.WriteString(")")
	return sb.String()
}

type fnEmitter struct {
	namer    *typeNamer
	res      *sema.Result
	fn       *mir.Function
	buf      *strings.Builder
	regTypes []types.TypeID
}

func (fe *fnEmitter) emit() {
	if isCMain(fe.fn) {
		fe.buf.WriteString("int main(void)")
	} else {
		fe.buf.WriteString(signature(fe.namer, fe.res, fe.fn))
	}
	fe.buf.WriteString(" {\n")
	fe.declareLocals()
	for i := range fe.fn.Instrs {
		fe.emitInstr(&fe.fn.Instrs[i])
	}
	if isCMain(fe.fn) {
		// The trailing MIR Ret already produced `return 0;`, but a body
		// ending on a label still needs a statement after it.
		fe.line("return 0;")
	}
	fe.buf.WriteString("}\n")
}

// declareLocals hoists every register and slot declaration to the top of
// the function, so goto never jumps over an initialization.
func (fe *fnEmitter) declareLocals() {
	params := make(map[mir.Reg]bool, len(fe.fn.Params))
	for _, p := range fe.fn.Params {
		params[p.Reg] = true
	}
	wrote := false
	for i := range fe.fn.Instrs {
		in := &fe.fn.Instrs[i]
		if in.Kind == mir.Alloc {
			fe.line("%s s%d;", fe.namer.cname(in.AllocType), in.Dst)
			wrote = true
		}
		if !defines(in) || params[in.Dst] {
			continue
		}
		fe.line("%s r%d;", fe.namer.cname(in.Type), in.Dst)
		wrote = true
	}
	if wrote {
		fe.buf.WriteString("\n")
	}
}

func (fe *fnEmitter) line(format string, args ...any) {
	fe.buf.WriteString("    ")
	fmt.Fprintf(fe.buf, format, args...)
	fe.buf.WriteString("\n")
}

func (fe *fnEmitter) emitInstr(in *mir.Instr) {
	switch in.Kind {
	case mir.ConstInt:
		fe.line("r%d = %d;", in.Dst, in.IntVal)

	case mir.ConstBool:
		v := 0
		if in.BoolVal {
			v = 1
		}
		fe.line("r%d = %d;", in.Dst, v)

	case mir.Bin:
		fe.line("r%d = r%d %s r%d;", in.Dst, in.X, cBinOp(in.Op), in.Y)

	case mir.Un:
		if in.UOp == mir.OpNeg {
			fe.line("r%d = -r%d;", in.Dst, in.X)
		} else {
			fe.line("r%d = !r%d;", in.Dst, in.X)
		}

	case mir.Alloc:
		fe.line("r%d = &s%d;", in.Dst, in.Dst)

	case mir.Load:
		fe.line("r%d = *r%d;", in.Dst, in.X)

	case mir.Store:
		fe.line("*r%d = r%d;", in.X, in.Y)

	case mir.FieldPtr:
		fe.line("r%d = &r%d->%s;", in.Dst, in.X, in.Name)

	case mir.ElemPtr:
		if fe.entersArray(in.X, in.Type) {
			fe.line("r%d = r%d->data + r%d;", in.Dst, in.X, in.Y)
		} else {
			fe.line("r%d = r%d + r%d;", in.Dst, in.X, in.Y)
		}

	case mir.MakeSlice:
		fe.line("r%d = (ctx_slice){ (void*)r%d, r%d };", in.Dst, in.X, in.Y)

	case mir.SlicePtr:
		fe.line("r%d = (%s)r%d.ptr;", in.Dst, fe.namer.cname(in.Type), in.X)

	case mir.SliceLen:
		fe.line("r%d = r%d.len;", in.Dst, in.X)

	case mir.Call:
		name := in.Callee
		if sig, ok := fe.res.Funcs[name]; ok && sig.Builtin {
			name = "ctx_" + name
		}
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = fmt.Sprintf("r%d", a)
		}
		if in.Dst == mir.NoReg {
			fe.line("%s(%s);", name, strings.Join(args, ", "))
		} else {
			fe.line("r%d = %s(%s);", in.Dst, name, strings.Join(args, ", "))
		}

	case mir.Jump:
		fe.line("goto L%d;", in.Target)

	case mir.JumpIf:
		fe.line("if (r%d) goto L%d; else goto L%d;", in.X, in.Target, in.Else)

	case mir.Label:
		fmt.Fprintf(fe.buf, "L%d:;\n", in.Target)

	case mir.Ret:
		fe.emitRet(in)
	}
}

func (fe *fnEmitter) emitRet(in *mir.Instr) {
	if isCMain(fe.fn) {
		if in.HasValue {
			fe.line("return (int)r%d;", in.X)
		} else {
			fe.line("return 0;")
		}
		return
	}
	unit := fe.res.Types.Builtins().Unit
	switch {
	case in.HasValue:
		fe.line("return r%d;", in.X)
	case fe.fn.Ret == unit:
		fe.line("return;")
	default:
		// Control fell off the end of a value-returning function.
		fe.line("return (%s){0};", fe.namer.cname(fe.fn.Ret))
	}
}

// entersArray reports whether an ElemPtr steps from a whole array wrapper
// into its elements, which needs the `->data` hop in C. A raw pointer that
// happens to address an array steps over whole wrappers and keeps plain
// pointer arithmetic; the two cases differ in the result type.
func (fe *fnEmitter) entersArray(x mir.Reg, dstType types.TypeID) bool {
	tt, ok := fe.res.Types.Lookup(fe.regTypes[x])
	if !ok || tt.Kind != types.KindPointer {
		return false
	}
	elem, ok := fe.res.Types.Lookup(tt.Elem)
	if !ok || elem.Kind != types.KindArray {
		return false
	}
	dst, ok := fe.res.Types.Lookup(dstType)
	return ok && dst.Kind == types.KindPointer && dst.Elem == elem.Elem
}

func cBinOp(op mir.BinOp) string {
	switch op {
	case mir.OpAdd:
		return "+"
	case mir.OpSub:
		return "-"
	case mir.OpMul:
		return "*"
	case mir.OpDiv:
		return "/"
	case mir.OpMod:
		return "%"
	case mir.OpEq:
		return "=="
	case mir.OpNe:
		return "!="
	case mir.OpLt:
		return "<"
	case mir.OpLe:
		return "<="
	case mir.OpGt:
		return ">"
	case mir.OpGe:
		return ">="
	}
	return "?"
}
