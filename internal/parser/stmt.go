package parser

import (
	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/token"
)

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	switch p.peek().Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwBreak:
		kw := p.advance()
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon)
		if !ok {
			return ast.Stmt{}, false
		}
		return ast.Stmt{Kind: ast.StmtBreak, Span: kw.Span.Cover(semi.Span)}, true
	case token.KwContinue:
		kw := p.advance()
		semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon)
		if !ok {
			return ast.Stmt{}, false
		}
		return ast.Stmt{Kind: ast.StmtContinue, Span: kw.Span.Cover(semi.Span)}, true
	case token.LBrace:
		block, ok := p.parseBlock()
		if !ok {
			return ast.Stmt{}, false
		}
		return ast.Stmt{Kind: ast.StmtBlock, Block: block, Span: block.Span}, true
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLetStmt() (ast.Stmt, bool) {
	kw := p.advance() // let
	_, mutable := p.eat(token.KwMut)
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.Stmt{}, false
	}
	let := &ast.LetStmt{
		Name:     nameTok.Text,
		NameSpan: nameTok.Span,
		Mutable:  mutable,
	}
	if _, ok := p.eat(token.Colon); ok {
		ty, ok := p.parseType()
		if !ok {
			return ast.Stmt{}, false
		}
		let.Type = &ty
	}
	if _, ok := p.eat(token.Assign); ok {
		init, ok := p.parseExpr()
		if !ok {
			return ast.Stmt{}, false
		}
		let.Init = init
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon)
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{Kind: ast.StmtLet, Let: let, Span: kw.Span.Cover(semi.Span)}, true
}

func (p *Parser) parseReturnStmt() (ast.Stmt, bool) {
	kw := p.advance() // return
	ret := &ast.ReturnStmt{}
	if !p.at(token.Semicolon) {
		value, ok := p.parseExpr()
		if !ok {
			return ast.Stmt{}, false
		}
		ret.Value = value
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon)
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{Kind: ast.StmtReturn, Ret: ret, Span: kw.Span.Cover(semi.Span)}, true
}

func (p *Parser) parseIfStmt() (ast.Stmt, bool) {
	kw := p.advance() // if
	cond, ok := p.parseHeaderExpr()
	if !ok {
		return ast.Stmt{}, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	ifStmt := &ast.IfStmt{Cond: cond, Then: then}
	span := kw.Span.Cover(then.Span)
	if _, ok := p.eat(token.KwElse); ok {
		// `else if` nests as an else block holding a single if statement.
		if p.at(token.KwIf) {
			nested, ok := p.parseIfStmt()
			if !ok {
				return ast.Stmt{}, false
			}
			ifStmt.Else = &ast.Block{Stmts: []ast.Stmt{nested}, Span: nested.Span}
			span = span.Cover(nested.Span)
		} else {
			elseBlock, ok := p.parseBlock()
			if !ok {
				return ast.Stmt{}, false
			}
			ifStmt.Else = elseBlock
			span = span.Cover(elseBlock.Span)
		}
	}
	return ast.Stmt{Kind: ast.StmtIf, If: ifStmt, Span: span}, true
}

func (p *Parser) parseWhileStmt() (ast.Stmt, bool) {
	kw := p.advance() // while
	cond, ok := p.parseHeaderExpr()
	if !ok {
		return ast.Stmt{}, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{
		Kind:  ast.StmtWhile,
		While: &ast.WhileStmt{Cond: cond, Body: body},
		Span:  kw.Span.Cover(body.Span),
	}, true
}

func (p *Parser) parseForStmt() (ast.Stmt, bool) {
	kw := p.advance() // for
	varTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.KwIn, diag.SynForMissingIn); !ok {
		return ast.Stmt{}, false
	}
	iterable, ok := p.parseHeaderExpr()
	if !ok {
		return ast.Stmt{}, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{
		Kind: ast.StmtFor,
		For: &ast.ForStmt{
			Var:      varTok.Text,
			VarSpan:  varTok.Span,
			Iterable: iterable,
			Body:     body,
		},
		Span: kw.Span.Cover(body.Span),
	}, true
}

// parseHeaderExpr parses an if/while/for header expression, where `Name {`
// must be read as a name followed by the block, not a struct literal.
func (p *Parser) parseHeaderExpr() (*ast.Expr, bool) {
	saved := p.noStructLit
	p.noStructLit = true
	expr, ok := p.parseExpr()
	p.noStructLit = saved
	return expr, ok
}

func (p *Parser) parseExprStmt() (ast.Stmt, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		return ast.Stmt{}, false
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon)
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{Kind: ast.StmtExpr, Expr: expr, Span: expr.Span.Cover(semi.Span)}, true
}
