// Package lexer turns Contractus source bytes into an ordered token stream.
// It is a collaborator of the core pipeline: the parser consumes its output
// and never touches raw source bytes itself.
package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/source"
	"github.com/haiman1024/Contractus/internal/token"
)

// Options configure a Lexer.
type Options struct {
	Reporter diag.Reporter
}

// Lexer scans one file. Peek/Next never fail; errors become diagnostics and
// an Invalid token, and scanning continues on the next byte.
type Lexer struct {
	file     *source.File
	reporter diag.Reporter

	pos    uint32
	line   uint32
	column uint32

	peeked  token.Token
	hasPeek bool
}

// New creates a lexer over file.
func New(file *source.File, opts Options) *Lexer {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Lexer{
		file:     file,
		reporter: r,
		line:     1,
		column:   1,
	}
}

// Tokenize scans the whole file, EOF token included.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if !lx.hasPeek {
		lx.peeked = lx.scan()
		lx.hasPeek = true
	}
	return lx.peeked
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() token.Token {
	if lx.hasPeek {
		lx.hasPeek = false
		return lx.peeked
	}
	return lx.scan()
}

func (lx *Lexer) len() uint32 {
	n, err := safecast.Conv[uint32](len(lx.file.Content))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	return n
}

func (lx *Lexer) byteAt(off uint32) byte {
	if off >= lx.len() {
		return 0
	}
	return lx.file.Content[off]
}

func (lx *Lexer) bump() byte {
	b := lx.byteAt(lx.pos)
	lx.pos++
	if b == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return b
}

func (lx *Lexer) spanFrom(start uint32, line, column uint32) source.Span {
	return source.Span{Start: start, End: lx.pos, Line: line, Column: column}
}

func (lx *Lexer) skipTrivia() {
	for lx.pos < lx.len() {
		b := lx.byteAt(lx.pos)
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.bump()
		case b == '/' && lx.byteAt(lx.pos+1) == '/':
			for lx.pos < lx.len() && lx.byteAt(lx.pos) != '\n' {
				lx.bump()
			}
		case b == '/' && lx.byteAt(lx.pos+1) == '*':
			start, line, col := lx.pos, lx.line, lx.column
			lx.bump()
			lx.bump()
			closed := false
			for lx.pos < lx.len() {
				if lx.byteAt(lx.pos) == '*' && lx.byteAt(lx.pos+1) == '/' {
					lx.bump()
					lx.bump()
					closed = true
					break
				}
				lx.bump()
			}
			if !closed {
				diag.ReportError(lx.reporter, diag.LexUnterminatedComment,
					lx.spanFrom(start, line, col), "unterminated block comment")
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scan() token.Token {
	lx.skipTrivia()

	start, line, col := lx.pos, lx.line, lx.column
	if lx.pos >= lx.len() {
		return token.Token{Kind: token.EOF, Span: lx.spanFrom(start, line, col)}
	}

	b := lx.bump()
	switch {
	case isIdentStart(b):
		return lx.scanIdent(start, line, col)
	case isDigit(b):
		return lx.scanNumber(start, line, col)
	}

	mk := func(kind token.Kind) token.Token {
		sp := lx.spanFrom(start, line, col)
		return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	// Two-byte operators first.
	next := lx.byteAt(lx.pos)
	switch b {
	case '+':
		if next == '=' {
			lx.bump()
			return mk(token.PlusAssign)
		}
		return mk(token.Plus)
	case '-':
		switch next {
		case '=':
			lx.bump()
			return mk(token.MinusAssign)
		case '>':
			lx.bump()
			return mk(token.Arrow)
		}
		return mk(token.Minus)
	case '*':
		if next == '=' {
			lx.bump()
			return mk(token.StarAssign)
		}
		return mk(token.Star)
	case '/':
		if next == '=' {
			lx.bump()
			return mk(token.SlashAssign)
		}
		return mk(token.Slash)
	case '%':
		return mk(token.Percent)
	case '=':
		if next == '=' {
			lx.bump()
			return mk(token.EqEq)
		}
		return mk(token.Assign)
	case '!':
		if next == '=' {
			lx.bump()
			return mk(token.BangEq)
		}
		return mk(token.Bang)
	case '<':
		if next == '=' {
			lx.bump()
			return mk(token.LtEq)
		}
		return mk(token.Lt)
	case '>':
		if next == '=' {
			lx.bump()
			return mk(token.GtEq)
		}
		return mk(token.Gt)
	case '&':
		if next == '&' {
			lx.bump()
			return mk(token.AndAnd)
		}
		return mk(token.Amp)
	case '|':
		if next == '|' {
			lx.bump()
			return mk(token.OrOr)
		}
	case '.':
		if next == '.' {
			lx.bump()
			return mk(token.DotDot)
		}
		return mk(token.Dot)
	case '(':
		return mk(token.LParen)
	case ')':
		return mk(token.RParen)
	case '{':
		return mk(token.LBrace)
	case '}':
		return mk(token.RBrace)
	case '[':
		return mk(token.LBracket)
	case ']':
		return mk(token.RBracket)
	case ';':
		return mk(token.Semicolon)
	case ':':
		return mk(token.Colon)
	case ',':
		return mk(token.Comma)
	}

	sp := lx.spanFrom(start, line, col)
	diag.ReportError(lx.reporter, diag.LexUnknownChar, sp,
		fmt.Sprintf("unknown character %q", b))
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) scanIdent(start, line, col uint32) token.Token {
	for lx.pos < lx.len() && isIdentCont(lx.byteAt(lx.pos)) {
		lx.bump()
	}
	sp := lx.spanFrom(start, line, col)
	text := string(lx.file.Content[sp.Start:sp.End])
	if kind, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kind, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

func (lx *Lexer) scanNumber(start, line, col uint32) token.Token {
	for lx.pos < lx.len() && isDigit(lx.byteAt(lx.pos)) {
		lx.bump()
	}
	if lx.pos < lx.len() && isIdentStart(lx.byteAt(lx.pos)) {
		for lx.pos < lx.len() && isIdentCont(lx.byteAt(lx.pos)) {
			lx.bump()
		}
		sp := lx.spanFrom(start, line, col)
		diag.ReportError(lx.reporter, diag.LexBadNumber, sp,
			fmt.Sprintf("malformed number %q", lx.file.Content[sp.Start:sp.End]))
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	sp := lx.spanFrom(start, line, col)
	return token.Token{Kind: token.IntLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
