package layout

import (
	"fmt"
	"strings"

	"github.com/haiman1024/Contractus/internal/types"
)

// ErrorKind enumerates layout computation failures.
type ErrorKind uint8

const (
	// ErrRecursiveStruct indicates a struct that embeds itself by value and
	// would have infinite size.
	ErrRecursiveStruct ErrorKind = iota + 1
)

// Error is a typed layout computation error.
type Error struct {
	Kind  ErrorKind
	Type  types.TypeID
	Cycle []types.TypeID
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrRecursiveStruct:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive struct has infinite size (type#%d)", e.Type)
		}
		parts := make([]string, 0, len(e.Cycle))
		for _, id := range e.Cycle {
			parts = append(parts, fmt.Sprintf("type#%d", id))
		}
		return fmt.Sprintf("recursive struct has infinite size (cycle: %s)", strings.Join(parts, " -> "))
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}
