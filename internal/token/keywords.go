package token

var keywords = map[string]Kind{
	"fn":       KwFn,
	"struct":   KwStruct,
	"let":      KwLet,
	"mut":      KwMut,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"true":     KwTrue,
	"false":    KwFalse,
	"i32":      KwI32,
	"bool":     KwBool,
	"u8":       KwU8,
}

// LookupKeyword returns the keyword kind for ident, if any. Keywords are
// case-sensitive; only lowercase forms are recognized.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
