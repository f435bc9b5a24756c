package parser

import (
	"fmt"
	"strconv"

	"github.com/haiman1024/Contractus/internal/ast"
	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/token"
)

// Binding powers, loosest to tightest. Unary and postfix operators bind
// tighter than any of these and are handled structurally.
const (
	precAssign = 1 // right-associative
	precOr     = 2
	precAnd    = 3
	precEq     = 4
	precCmp    = 5
	precRange  = 6 // non-associative, at most one per expression
	precAdd    = 7
	precMul    = 8
)

func binaryPrec(k token.Kind) (int, bool) {
	switch k {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign:
		return precAssign, true
	case token.OrOr:
		return precOr, true
	case token.AndAnd:
		return precAnd, true
	case token.EqEq, token.BangEq:
		return precEq, true
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precCmp, true
	case token.DotDot:
		return precRange, true
	case token.Plus, token.Minus:
		return precAdd, true
	case token.Star, token.Slash, token.Percent:
		return precMul, true
	default:
		return 0, false
	}
}

func binaryOp(k token.Kind) ast.BinOp {
	switch k {
	case token.Plus:
		return ast.BinAdd
	case token.Minus:
		return ast.BinSub
	case token.Star:
		return ast.BinMul
	case token.Slash:
		return ast.BinDiv
	case token.Percent:
		return ast.BinMod
	case token.EqEq:
		return ast.BinEq
	case token.BangEq:
		return ast.BinNe
	case token.Lt:
		return ast.BinLt
	case token.LtEq:
		return ast.BinLe
	case token.Gt:
		return ast.BinGt
	case token.GtEq:
		return ast.BinGe
	case token.AndAnd:
		return ast.BinAnd
	case token.OrOr:
		return ast.BinOr
	}
	panic("parser: not a binary operator token")
}

// compoundOp maps a compound-assignment token to the operator it applies.
func compoundOp(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.PlusAssign:
		return ast.BinAdd, true
	case token.MinusAssign:
		return ast.BinSub, true
	case token.StarAssign:
		return ast.BinMul, true
	case token.SlashAssign:
		return ast.BinDiv, true
	default:
		return 0, false
	}
}

func (p *Parser) parseExpr() (*ast.Expr, bool) {
	return p.parseBinaryExpr(0)
}

func (p *Parser) parseBinaryExpr(minPrec int) (*ast.Expr, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}

	for {
		opTok := p.peek()
		prec, isOp := binaryPrec(opTok.Kind)
		if !isOp || prec < minPrec {
			return left, true
		}
		p.advance()

		switch {
		case prec == precAssign:
			// Right-associative: recurse at the same level.
			value, ok := p.parseBinaryExpr(precAssign)
			if !ok {
				diag.ReportError(p.reporter, diag.SynExpectExpression, p.peek().Span,
					"expected expression after assignment operator")
				return nil, false
			}
			if op, compound := compoundOp(opTok.Kind); compound {
				// `x += e` is sugar for `x = x + e`; later stages never see it.
				value = &ast.Expr{
					Kind:  ast.ExprBinary,
					Op:    op,
					Left:  left,
					Right: value,
					Span:  left.Span.Cover(value.Span),
				}
			}
			left = &ast.Expr{
				Kind:  ast.ExprAssign,
				Left:  left,
				Right: value,
				Span:  left.Span.Cover(value.Span),
			}

		case prec == precRange:
			end, ok := p.parseBinaryExpr(precRange + 1)
			if !ok {
				diag.ReportError(p.reporter, diag.SynExpectExpression, p.peek().Span,
					"expected expression after `..`")
				return nil, false
			}
			left = &ast.Expr{
				Kind:  ast.ExprRange,
				Left:  left,
				Right: end,
				Span:  left.Span.Cover(end.Span),
			}
			if p.at(token.DotDot) {
				diag.ReportError(p.reporter, diag.SynChainedRange, p.peek().Span,
					"`..` cannot be chained")
				return nil, false
			}

		default:
			right, ok := p.parseBinaryExpr(prec + 1)
			if !ok {
				diag.ReportError(p.reporter, diag.SynExpectExpression, p.peek().Span,
					fmt.Sprintf("expected expression after `%s`", opTok.Kind))
				return nil, false
			}
			left = &ast.Expr{
				Kind:  ast.ExprBinary,
				Op:    binaryOp(opTok.Kind),
				Left:  left,
				Right: right,
				Span:  left.Span.Cover(right.Span),
			}
		}
	}
}

func (p *Parser) parseUnaryExpr() (*ast.Expr, bool) {
	tok := p.peek()
	var op ast.UnOp
	switch tok.Kind {
	case token.Bang:
		op = ast.UnNot
	case token.Minus:
		op = ast.UnNeg
	case token.Star:
		op = ast.UnDeref
	case token.Amp:
		op = ast.UnAddr
	default:
		return p.parsePostfixExpr()
	}
	p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	return &ast.Expr{
		Kind:    ast.ExprUnary,
		UnOp:    op,
		Operand: operand,
		Span:    tok.Span.Cover(operand.Span),
	}, true
}

func (p *Parser) parsePostfixExpr() (*ast.Expr, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return nil, false
	}
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			fieldTok, ok := p.expect(token.Ident, diag.SynExpectFieldName)
			if !ok {
				return nil, false
			}
			expr = &ast.Expr{
				Kind:     ast.ExprField,
				Operand:  expr,
				Name:     fieldTok.Text,
				NameSpan: fieldTok.Span,
				Span:     expr.Span.Cover(fieldTok.Span),
			}
		case token.LBracket:
			p.advance()
			index, ok := p.parseExprAllowingStructLit()
			if !ok {
				return nil, false
			}
			rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
			if !ok {
				return nil, false
			}
			expr = &ast.Expr{
				Kind:    ast.ExprIndex,
				Operand: expr,
				Index:   index,
				Span:    expr.Span.Cover(rb.Span),
			}
		case token.LParen:
			p.advance()
			var args []*ast.Expr
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg, ok := p.parseExprAllowingStructLit()
				if !ok {
					return nil, false
				}
				args = append(args, arg)
				if _, ok := p.eat(token.Comma); !ok {
					break
				}
			}
			rp, ok := p.expect(token.RParen, diag.SynUnexpectedToken)
			if !ok {
				return nil, false
			}
			expr = &ast.Expr{
				Kind:    ast.ExprCall,
				Operand: expr,
				Args:    args,
				Span:    expr.Span.Cover(rp.Span),
			}
		default:
			return expr, true
		}
	}
}

// parseExprAllowingStructLit lifts the header restriction inside bracketed
// positions, where `Name { ... }` is unambiguous again.
func (p *Parser) parseExprAllowingStructLit() (*ast.Expr, bool) {
	saved := p.noStructLit
	p.noStructLit = false
	expr, ok := p.parseExpr()
	p.noStructLit = saved
	return expr, ok
}

func (p *Parser) parsePrimaryExpr() (*ast.Expr, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		value, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			diag.ReportError(p.reporter, diag.SynExpectExpression, tok.Span,
				fmt.Sprintf("integer literal `%s` out of range", tok.Text))
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprIntLit, IntVal: value, Span: tok.Span}, true

	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Expr{Kind: ast.ExprBoolLit, BoolVal: tok.Kind == token.KwTrue, Span: tok.Span}, true

	case token.Ident:
		p.advance()
		if p.at(token.LBrace) && !p.noStructLit {
			return p.parseStructLit(tok)
		}
		return &ast.Expr{Kind: ast.ExprIdent, Name: tok.Text, Span: tok.Span}, true

	case token.LParen:
		p.advance()
		inner, ok := p.parseExprAllowingStructLit()
		if !ok {
			return nil, false
		}
		rp, ok := p.expect(token.RParen, diag.SynUnexpectedToken)
		if !ok {
			return nil, false
		}
		inner.Span = tok.Span.Cover(rp.Span)
		return inner, true

	case token.LBracket:
		p.advance()
		lit := &ast.Expr{Kind: ast.ExprArrayLit}
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			elem, ok := p.parseExprAllowingStructLit()
			if !ok {
				return nil, false
			}
			lit.Elems = append(lit.Elems, elem)
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
		if !ok {
			return nil, false
		}
		lit.Span = tok.Span.Cover(rb.Span)
		return lit, true

	default:
		diag.ReportError(p.reporter, diag.SynExpectExpression, tok.Span,
			fmt.Sprintf("expected expression, found %s", describe(tok)))
		return nil, false
	}
}

// parseStructLit parses `Name { field: value, ... }` after Name was eaten.
// Field names are mandatory; positional fields are a syntax error.
func (p *Parser) parseStructLit(nameTok token.Token) (*ast.Expr, bool) {
	p.advance() // {
	lit := &ast.Expr{Kind: ast.ExprStructLit, Name: nameTok.Text}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fieldTok, ok := p.expect(token.Ident, diag.SynExpectFieldName)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectFieldName); !ok {
			return nil, false
		}
		value, ok := p.parseExprAllowingStructLit()
		if !ok {
			return nil, false
		}
		lit.Fields = append(lit.Fields, ast.StructLitField{
			Name:     fieldTok.Text,
			NameSpan: fieldTok.Span,
			Value:    value,
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	rb, ok := p.expect(token.RBrace, diag.SynUnexpectedToken)
	if !ok {
		return nil, false
	}
	lit.Span = nameTok.Span.Cover(rb.Span)
	return lit, true
}
