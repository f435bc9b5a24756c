package sema

import (
	"github.com/haiman1024/Contractus/internal/source"
	"github.com/haiman1024/Contractus/internal/types"
)

// binding is one named value in scope. Parameters and for-loop variables
// are immutable and always initialized; let bindings track definite
// initialization so reads before the first assignment are rejected.
type binding struct {
	name        string
	ty          types.TypeID
	mutable     bool
	initialized bool
	span        source.Span
}

// scopeStack is a stack of lexical scopes. Shadowing across scopes is
// legal; redeclaring a name within the same scope is not.
type scopeStack struct {
	scopes []map[string]*binding
}

func (s *scopeStack) push() {
	s.scopes = append(s.scopes, make(map[string]*binding, 4))
}

func (s *scopeStack) pop() {
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// declare adds a binding to the innermost scope. It returns false when the
// name already exists in that scope.
func (s *scopeStack) declare(b *binding) bool {
	top := s.scopes[len(s.scopes)-1]
	if _, exists := top[b.name]; exists {
		return false
	}
	top[b.name] = b
	return true
}

// lookup resolves a name innermost-first.
func (s *scopeStack) lookup(name string) (*binding, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if b, ok := s.scopes[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}
