// Package ast defines the Contractus abstract syntax tree. Every node
// category is a closed tagged union so consumers can switch exhaustively;
// the parser owns the tree while building it and every later stage treats
// it as read-only.
package ast

import "github.com/haiman1024/Contractus/internal/source"

// Program is one parsed compilation unit: struct and function definitions
// in source order.
type Program struct {
	Items []Item
	Span  source.Span
}

// Structs returns the struct declarations in source order.
func (p *Program) Structs() []*StructDecl {
	var out []*StructDecl
	for i := range p.Items {
		if p.Items[i].Kind == ItemStruct {
			out = append(out, p.Items[i].Struct)
		}
	}
	return out
}

// Funcs returns the function declarations in source order.
func (p *Program) Funcs() []*FnDecl {
	var out []*FnDecl
	for i := range p.Items {
		if p.Items[i].Kind == ItemFn {
			out = append(out, p.Items[i].Fn)
		}
	}
	return out
}

// ItemKind distinguishes top-level items.
type ItemKind uint8

const (
	// ItemFn is a function definition.
	ItemFn ItemKind = iota
	// ItemStruct is a struct definition.
	ItemStruct
)

// Item is one top-level definition.
type Item struct {
	Kind   ItemKind
	Fn     *FnDecl
	Struct *StructDecl
	Span   source.Span
}

// StructDecl declares a nominal struct type.
type StructDecl struct {
	Name     string
	NameSpan source.Span
	Fields   []FieldDecl
	Span     source.Span
}

// FieldDecl is one field in a struct declaration.
type FieldDecl struct {
	Name     string
	NameSpan source.Span
	Type     TypeExpr
	Span     source.Span
}

// FnDecl declares a function with an optional return type (nil means unit).
type FnDecl struct {
	Name     string
	NameSpan source.Span
	Params   []Param
	Ret      *TypeExpr
	Body     *Block
	Span     source.Span
}

// Param is one function parameter.
type Param struct {
	Name     string
	NameSpan source.Span
	Type     TypeExpr
	Span     source.Span
}

// Block is a brace-delimited statement list introducing a lexical scope.
type Block struct {
	Stmts []Stmt
	Span  source.Span
}
