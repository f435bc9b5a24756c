// Package layout computes C-compatible memory layout for Contractus types:
// sequential field offsets respecting natural alignment, no reordering.
// Layouts are computed once during semantic analysis and shared read-only
// with MIR lowering and code generation.
package layout

import (
	"github.com/haiman1024/Contractus/internal/types"
)

// TypeLayout is the computed size and alignment of a type, plus per-field
// byte offsets for structs.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
	FieldAligns  []int
}

// Engine computes and caches layouts against one immutable type interner.
type Engine struct {
	Target Target
	Types  *types.Interner

	cache map[types.TypeID]cacheEntry
}

type cacheEntry struct {
	layout TypeLayout
	err    *Error
}

// New creates an Engine for the given target.
func New(target Target, typesIn *types.Interner) *Engine {
	return &Engine{
		Target: target,
		Types:  typesIn,
		cache:  make(map[types.TypeID]cacheEntry, 32),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[types.TypeID]int, 8)}
}

// LayoutOf computes and caches the layout of a type. A struct embedding
// itself by value yields ErrRecursiveStruct; self-reference through a
// pointer or slice is legal and never recurses.
func (e *Engine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *Engine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *Error) {
	if cached, ok := e.cache[t]; ok {
		return cached.layout, cached.err
	}

	if idx, ok := state.index[t]; ok {
		cycle := append([]types.TypeID(nil), state.stack[idx:]...)
		cycle = append(cycle, t)
		err := &Error{Kind: ErrRecursiveStruct, Type: t, Cycle: cycle}
		e.cache[t] = cacheEntry{layout: TypeLayout{Size: 0, Align: 1}, err: err}
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.compute(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache[t] = cacheEntry{layout: l, err: err}
	return l, err
}

// SizeOf returns the size of a type in bytes.
func (e *Engine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field by declaration index.
func (e *Engine) FieldOffset(structT types.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}
