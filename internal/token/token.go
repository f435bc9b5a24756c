package token

import (
	"github.com/haiman1024/Contractus/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is an integer or boolean literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwFn, KwStruct, KwLet, KwMut, KwIf, KwElse, KwWhile, KwFor, KwIn,
		KwBreak, KwContinue, KwReturn, KwTrue, KwFalse, KwI32, KwBool, KwU8:
		return true
	default:
		return false
	}
}

// IsTypeKeyword reports whether the token names a builtin scalar type.
func (t Token) IsTypeKeyword() bool {
	switch t.Kind {
	case KwI32, KwBool, KwU8:
		return true
	default:
		return false
	}
}

// StartsItem reports whether the token can begin a top-level item or a
// statement. The parser resynchronizes at these tokens after an error.
func (t Token) StartsItem() bool {
	switch t.Kind {
	case KwFn, KwStruct, KwLet, RBrace, EOF:
		return true
	default:
		return false
	}
}
