// Package parser builds a Contractus AST from the lexer's token stream.
// It is a multi-error collector: a syntax error drops the surrounding
// statement or item and resynchronizes at the next statement-starting
// token, so a broken construct never appears in the output tree. Callers
// must treat a non-empty error bag as fatal for all later stages.
package parser

import (
	"fmt"

	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/token"
)

// Options configure one parse.
type Options struct {
	Reporter diag.Reporter
}

// Result is the outcome of parsing one file.
type Result struct {
	Program *ast.Program
}

// Parser holds state for parsing a single token stream.
type Parser struct {
	toks     []token.Token
	pos      int
	reporter diag.Reporter

	// noStructLit suppresses struct-literal parsing while reading an
	// if/while/for header, where `Ident {` must mean "name then block".
	noStructLit bool
}

// Parse consumes the full token stream and returns the program. The stream
// must end with an EOF token.
func Parse(toks []token.Token, opts Options) Result {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	p := Parser{toks: toks, reporter: r}
	prog := p.parseProgram()
	return Result{Program: prog}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		if len(p.toks) == 0 {
			return token.Token{Kind: token.EOF}
		}
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) && tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

// eat consumes the next token if it has the wanted kind.
func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect consumes a token of the wanted kind or reports what was found.
func (p *Parser) expect(k token.Kind, code diag.Code) (token.Token, bool) {
	if tok, ok := p.eat(k); ok {
		return tok, true
	}
	found := p.peek()
	diag.ReportError(p.reporter, code, found.Span,
		fmt.Sprintf("expected %s, found %s", k, describe(found)))
	return token.Token{}, false
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident, token.IntLit:
		return fmt.Sprintf("%s `%s`", tok.Kind, tok.Text)
	default:
		return "`" + tok.Kind.String() + "`"
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	startSpan := p.peek().Span
	for !p.at(token.EOF) {
		before := p.pos
		item, ok := p.parseItem()
		if !ok {
			// Guarantee progress: the offending token may itself be a
			// sync point, so skip it before resynchronizing.
			if p.pos == before {
				p.advance()
			}
			p.resyncTop()
			continue
		}
		prog.Items = append(prog.Items, item)
	}
	prog.Span = startSpan.Cover(p.peek().Span)
	return prog
}

func (p *Parser) parseItem() (ast.Item, bool) {
	switch p.peek().Kind {
	case token.KwFn:
		fn, ok := p.parseFn()
		if !ok {
			return ast.Item{}, false
		}
		return ast.Item{Kind: ast.ItemFn, Fn: fn, Span: fn.Span}, true
	case token.KwStruct:
		st, ok := p.parseStruct()
		if !ok {
			return ast.Item{}, false
		}
		return ast.Item{Kind: ast.ItemStruct, Struct: st, Span: st.Span}, true
	default:
		diag.ReportError(p.reporter, diag.SynUnexpectedTopLevel, p.peek().Span,
			fmt.Sprintf("expected `fn` or `struct`, found %s", describe(p.peek())))
		return ast.Item{}, false
	}
}

// resyncTop skips to the next item-starting token after a top-level error.
func (p *Parser) resyncTop() {
	for {
		switch p.peek().Kind {
		case token.KwFn, token.KwStruct, token.KwLet, token.EOF:
			return
		default:
			p.advance()
		}
	}
}

// resyncStmt skips to the next statement boundary: `fn`, `struct`, `let`,
// `}`, or end of input.
func (p *Parser) resyncStmt() {
	for !p.peek().StartsItem() {
		p.advance()
	}
}

func (p *Parser) parseStruct() (*ast.StructDecl, bool) {
	kw := p.advance() // struct
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken); !ok {
		return nil, false
	}
	st := &ast.StructDecl{
		Name:     nameTok.Text,
		NameSpan: nameTok.Span,
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fieldTok, ok := p.expect(token.Ident, diag.SynExpectFieldName)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
			return nil, false
		}
		fieldType, ok := p.parseType()
		if !ok {
			return nil, false
		}
		st.Fields = append(st.Fields, ast.FieldDecl{
			Name:     fieldTok.Text,
			NameSpan: fieldTok.Span,
			Type:     fieldType,
			Span:     fieldTok.Span.Cover(fieldType.Span),
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	rbrace, ok := p.expect(token.RBrace, diag.SynUnexpectedToken)
	if !ok {
		return nil, false
	}
	st.Span = kw.Span.Cover(rbrace.Span)
	return st, true
}

func (p *Parser) parseFn() (*ast.FnDecl, bool) {
	kw := p.advance() // fn
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken); !ok {
		return nil, false
	}
	fn := &ast.FnDecl{
		Name:     nameTok.Text,
		NameSpan: nameTok.Span,
	}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		paramTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
			return nil, false
		}
		paramType, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fn.Params = append(fn.Params, ast.Param{
			Name:     paramTok.Text,
			NameSpan: paramTok.Span,
			Type:     paramType,
			Span:     paramTok.Span.Cover(paramType.Span),
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken); !ok {
		return nil, false
	}
	if _, ok := p.eat(token.Arrow); ok {
		ret, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fn.Ret = &ret
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	fn.Body = body
	fn.Span = kw.Span.Cover(body.Span)
	return fn, true
}

func (p *Parser) parseType() (ast.TypeExpr, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.KwI32:
		p.advance()
		return ast.TypeExpr{Kind: ast.TypeI32, Span: tok.Span}, true
	case token.KwBool:
		p.advance()
		return ast.TypeExpr{Kind: ast.TypeBool, Span: tok.Span}, true
	case token.KwU8:
		p.advance()
		return ast.TypeExpr{Kind: ast.TypeU8, Span: tok.Span}, true
	case token.Ident:
		p.advance()
		return ast.TypeExpr{Kind: ast.TypeNamed, Name: tok.Text, Span: tok.Span}, true
	case token.Star:
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.TypeExpr{}, false
		}
		return ast.TypeExpr{Kind: ast.TypePointer, Elem: &elem, Span: tok.Span.Cover(elem.Span)}, true
	case token.LBracket:
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.TypeExpr{}, false
		}
		if _, isArray := p.eat(token.Semicolon); isArray {
			lenTok, ok := p.expect(token.IntLit, diag.SynExpectType)
			if !ok {
				return ast.TypeExpr{}, false
			}
			length, err := parseArrayLen(lenTok.Text)
			if err != nil {
				diag.ReportError(p.reporter, diag.SynExpectType, lenTok.Span,
					fmt.Sprintf("invalid array length `%s`", lenTok.Text))
				return ast.TypeExpr{}, false
			}
			rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
			if !ok {
				return ast.TypeExpr{}, false
			}
			return ast.TypeExpr{Kind: ast.TypeArray, Elem: &elem, Len: length, Span: tok.Span.Cover(rb.Span)}, true
		}
		rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
		if !ok {
			return ast.TypeExpr{}, false
		}
		return ast.TypeExpr{Kind: ast.TypeSlice, Elem: &elem, Span: tok.Span.Cover(rb.Span)}, true
	default:
		diag.ReportError(p.reporter, diag.SynExpectType, tok.Span,
			fmt.Sprintf("expected type, found %s", describe(tok)))
		return ast.TypeExpr{}, false
	}
}

func parseArrayLen(text string) (uint32, error) {
	var n uint64
	if _, err := fmt.Sscanf(text, "%d", &n); err != nil {
		return 0, err
	}
	if n > 0xFFFFFFFF {
		return 0, fmt.Errorf("array length %d out of range", n)
	}
	return uint32(n), nil
}

func (p *Parser) parseBlock() (*ast.Block, bool) {
	lbrace, ok := p.expect(token.LBrace, diag.SynUnexpectedToken)
	if !ok {
		return nil, false
	}
	block := &ast.Block{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		stmt, ok := p.parseStmt()
		if !ok {
			// The broken statement is dropped entirely; no placeholder
			// node. Skip the offending token when nothing was consumed,
			// otherwise resynchronization could spin in place.
			if p.pos == before {
				p.advance()
			}
			p.resyncStmt()
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	rbrace, ok := p.expect(token.RBrace, diag.SynUnexpectedToken)
	if !ok {
		return nil, false
	}
	block.Span = lbrace.Span.Cover(rbrace.Span)
	return block, true
}
