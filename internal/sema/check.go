// Package sema performs semantic analysis over a parsed program: name
// resolution against lexical scopes, type checking, and struct layout
// computation. It accumulates diagnostics instead of stopping at the first
// error, but any error makes the program non-viable for lowering.
package sema

import (
	"fmt"

	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/layout"
	"github.com/haiman1024/Contractus/internal/source"
	"github.com/haiman1024/Contractus/internal/types"
)

// Options configure a semantic pass.
type Options struct {
	Reporter diag.Reporter
	Target   layout.Target
}

// FnSig is a collected function signature. Signatures for every function
// are collected before any body is checked, so forward references and
// mutual calls resolve.
type FnSig struct {
	Name    string
	Params  []types.TypeID
	Ret     types.TypeID
	Type    types.TypeID
	Builtin bool
	Decl    *ast.FnDecl // nil for builtins
}

// Result carries everything later stages need: the type interner, the
// layout engine (read-only from here on), resolved struct and function
// tables, and per-expression types. The scope stack is internal to the
// checker and is not retained.
type Result struct {
	Types   *types.Interner
	Layouts *layout.Engine

	StructTypes map[string]types.TypeID
	StructOrder []string
	Funcs       map[string]*FnSig
	FuncOrder   []string

	// ExprTypes records the resolved type of every checked expression.
	ExprTypes map[*ast.Expr]types.TypeID

	// SliceCoercions marks array-valued expressions that must materialize
	// as a fat pointer because they were used where a slice was expected.
	// The value is the target slice type.
	SliceCoercions map[*ast.Expr]types.TypeID
}

// TypeOf returns the recorded type of an expression.
func (r *Result) TypeOf(e *ast.Expr) types.TypeID {
	return r.ExprTypes[e]
}

// Check analyzes a program. Passes run in order: struct collection, layout
// computation, signature collection, then per-function body checks.
func Check(prog *ast.Program, opts Options) *Result {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	target := opts.Target
	if target.PtrSize == 0 {
		target = layout.X86_64LinuxGNU()
	}

	in := types.NewInterner()
	c := &checker{
		reporter: reporter,
		result: &Result{
			Types:          in,
			Layouts:        layout.New(target, in),
			StructTypes:    make(map[string]types.TypeID),
			Funcs:          make(map[string]*FnSig),
			ExprTypes:      make(map[*ast.Expr]types.TypeID),
			SliceCoercions: make(map[*ast.Expr]types.TypeID),
		},
	}
	c.collectStructs(prog)
	c.computeLayouts(prog)
	c.collectSignatures(prog)
	for _, fn := range prog.Funcs() {
		sig, ok := c.result.Funcs[fn.Name]
		if !ok || sig.Decl != fn {
			// Duplicate definition; only the first registered body is checked.
			continue
		}
		c.checkFnBody(fn, sig)
	}
	return c.result
}

type checker struct {
	reporter diag.Reporter
	result   *Result
}

func (c *checker) report(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(c.reporter, code, span, fmt.Sprintf(format, args...))
}

func (c *checker) typeName(id types.TypeID) string {
	return c.result.Types.String(id)
}

// collectStructs registers every struct name before field types resolve,
// so structs can reference each other regardless of declaration order.
func (c *checker) collectStructs(prog *ast.Program) {
	for _, st := range prog.Structs() {
		if _, dup := c.result.StructTypes[st.Name]; dup {
			c.report(diag.SemaDuplicateStruct, st.NameSpan,
				"struct `%s` is defined more than once", st.Name)
			continue
		}
		c.result.StructTypes[st.Name] = c.result.Types.DeclareStruct(st.Name)
		c.result.StructOrder = append(c.result.StructOrder, st.Name)
	}
	for _, st := range prog.Structs() {
		id := c.result.StructTypes[st.Name]
		if info, ok := c.result.Types.StructInfo(id); ok && len(info.Fields) > 0 {
			continue // duplicate declaration, first one already filled
		}
		seen := make(map[string]bool, len(st.Fields))
		fields := make([]types.StructField, 0, len(st.Fields))
		for _, f := range st.Fields {
			if seen[f.Name] {
				c.report(diag.SemaDuplicateField, f.NameSpan,
					"field `%s` is declared more than once in struct `%s`", f.Name, st.Name)
				continue
			}
			seen[f.Name] = true
			fields = append(fields, types.StructField{
				Name: f.Name,
				Type: c.resolveType(&f.Type),
			})
		}
		c.result.Types.SetStructFields(id, fields)
	}
}

// computeLayouts forces a layout for every struct so recursive-by-value
// structs are rejected here, before any body check observes them.
func (c *checker) computeLayouts(prog *ast.Program) {
	for _, st := range prog.Structs() {
		id, ok := c.result.StructTypes[st.Name]
		if !ok {
			continue
		}
		if _, err := c.result.Layouts.LayoutOf(id); err != nil {
			c.report(diag.SemaRecursiveStruct, st.NameSpan,
				"struct `%s` contains itself by value and has infinite size", st.Name)
		}
	}
}

func (c *checker) collectSignatures(prog *ast.Program) {
	c.registerBuiltins()
	for _, fn := range prog.Funcs() {
		if _, dup := c.result.Funcs[fn.Name]; dup {
			c.report(diag.SemaDuplicateFunction, fn.NameSpan,
				"function `%s` is defined more than once", fn.Name)
			continue
		}
		params := make([]types.TypeID, 0, len(fn.Params))
		for i := range fn.Params {
			params = append(params, c.resolveType(&fn.Params[i].Type))
		}
		ret := c.result.Types.Builtins().Unit
		if fn.Ret != nil {
			ret = c.resolveType(fn.Ret)
		}
		sig := &FnSig{
			Name:   fn.Name,
			Params: params,
			Ret:    ret,
			Type:   c.result.Types.InternFn(params, ret),
			Decl:   fn,
		}
		c.result.Funcs[fn.Name] = sig
		c.result.FuncOrder = append(c.result.FuncOrder, fn.Name)
	}
}

// registerBuiltins adds the runtime print primitives. They resolve like
// ordinary functions and lower to calls into the generated C preamble.
func (c *checker) registerBuiltins() {
	b := c.result.Types.Builtins()
	for _, bi := range []struct {
		name  string
		param types.TypeID
	}{
		{"print_i32", b.I32},
		{"print_bool", b.Bool},
		{"print_u8", b.U8},
	} {
		params := []types.TypeID{bi.param}
		c.result.Funcs[bi.name] = &FnSig{
			Name:    bi.name,
			Params:  params,
			Ret:     b.Unit,
			Type:    c.result.Types.InternFn(params, b.Unit),
			Builtin: true,
		}
	}
}

// resolveType converts a syntactic type into an interned TypeID. Unknown
// struct names report SemaUndefinedStruct and resolve to invalid.
func (c *checker) resolveType(t *ast.TypeExpr) types.TypeID {
	b := c.result.Types.Builtins()
	switch t.Kind {
	case ast.TypeI32:
		return b.I32
	case ast.TypeBool:
		return b.Bool
	case ast.TypeU8:
		return b.U8
	case ast.TypeNamed:
		if id, ok := c.result.StructTypes[t.Name]; ok {
			return id
		}
		c.report(diag.SemaUndefinedStruct, t.Span, "undefined struct `%s`", t.Name)
		return types.NoTypeID
	case ast.TypeArray:
		elem := c.resolveType(t.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		if t.Len == 0 {
			c.report(diag.SemaZeroSizeArray, t.Span, "arrays must have at least one element")
			return types.NoTypeID
		}
		return c.result.Types.Intern(types.MakeArray(elem, t.Len))
	case ast.TypeSlice:
		elem := c.resolveType(t.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return c.result.Types.Intern(types.MakeSlice(elem))
	case ast.TypePointer:
		elem := c.resolveType(t.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return c.result.Types.Intern(types.MakePointer(elem))
	}
	return types.NoTypeID
}
