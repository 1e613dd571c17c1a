// Package grammar is the formula expression language: arithmetic, comparison
// and logical operators, function calls and field references.
//
// Expression grammar (from lowest to highest precedence):
//
//	expression  → ternary
//	ternary     → logicalOr ( "?" expression ":" expression )?
//	logicalOr   → logicalAnd ( "||" logicalAnd )*
//	logicalAnd  → equality ( "&&" equality )*
//	equality    → comparison ( ( "==" | "!=" ) comparison )*
//	comparison  → term ( ( "<" | "<=" | ">" | ">=" ) term )*
//	term        → factor ( ( "+" | "-" ) factor )*
//	factor      → unary ( ( "*" | "/" | "%" ) unary )*
//	unary       → ( "!" | "-" ) unary | postfix
//	postfix     → primary ( "." IDENT | "[" "*"? "]" | "[" expression "]" )*
//	primary     → NUMBER | STRING | "true" | "false" | "null"
//	            | IDENT "(" arguments? ")" | IDENT | RELPATH | ROOTPATH
//	            | "(" expression ")"
//
// Field references are identifiers, relative paths (../sibling) and root
// paths (/order.total), with any member, index or wildcard access chained on
// them. Their source text is reported as the expression's dependencies.
package grammar

import (
	"fmt"
	"strconv"

	"github.com/reoring/schemaformula/formula/ast"
)

// Parser implements ast.Parser.
type Parser struct{}

// New returns the formula parser.
func New() *Parser { return &Parser{} }

var _ ast.Parser = (*Parser)(nil)

// Parse parses expression and collects its field references.
func (*Parser) Parse(expression string) (*ast.ParseResult, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return nil, err
	}
	p := &parser{src: expression, tokens: tokens}
	if p.check(TokenEOF) {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenEOF) {
		return nil, p.errorf(p.peek(), "unexpected %s", p.peek().Type)
	}
	return &ast.ParseResult{AST: node, Dependencies: Dependencies(expression, node)}, nil
}

// Dependencies lists the source text of every field reference in node, in
// encounter order, without duplicates. References nested in index
// expressions are included.
func Dependencies(src string, node ast.Node) []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		ast.Walk(n, func(x ast.Node) bool {
			if !ast.IsReference(x) {
				return true
			}
			span := x.Pos()
			if text := src[span.Start:span.End]; !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
			for cur := x; cur != nil; {
				switch v := cur.(type) {
				case *ast.Member:
					cur = v.Object
				case *ast.Wildcard:
					cur = v.Object
				case *ast.Index:
					collect(v.Index)
					cur = v.Object
				default:
					cur = nil
				}
			}
			return false
		})
	}
	collect(node)
	return out
}

type parser struct {
	src     string
	tokens  []Token
	current int
}

type binaryLevel struct {
	ops  []TokenType
	next func(*parser) (ast.Node, error)
}

func (p *parser) expression() (ast.Node, error) { return p.ternary() }

func (p *parser) ternary() (ast.Node, error) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenQuestion) {
		return cond, nil
	}
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenColon, "expected ':' in conditional"); err != nil {
		return nil, err
	}
	otherwise, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.Call{
		Name: "if",
		Args: []ast.Node{cond, then, otherwise},
		Loc:  ast.Span{Start: cond.Pos().Start, End: otherwise.Pos().End},
	}, nil
}

func (p *parser) logicalOr() (ast.Node, error) {
	return p.binary(binaryLevel{ops: []TokenType{TokenOr}, next: (*parser).logicalAnd})
}

func (p *parser) logicalAnd() (ast.Node, error) {
	return p.binary(binaryLevel{ops: []TokenType{TokenAnd}, next: (*parser).equality})
}

func (p *parser) equality() (ast.Node, error) {
	return p.binary(binaryLevel{ops: []TokenType{TokenEq, TokenNotEq}, next: (*parser).comparison})
}

func (p *parser) comparison() (ast.Node, error) {
	return p.binary(binaryLevel{
		ops:  []TokenType{TokenLess, TokenLessEq, TokenGreater, TokenGreaterEq},
		next: (*parser).term,
	})
}

func (p *parser) term() (ast.Node, error) {
	return p.binary(binaryLevel{ops: []TokenType{TokenPlus, TokenMinus}, next: (*parser).factor})
}

func (p *parser) factor() (ast.Node, error) {
	return p.binary(binaryLevel{ops: []TokenType{TokenStar, TokenSlash, TokenPercent}, next: (*parser).unary})
}

// binary parses a left-associative chain of one precedence level.
func (p *parser) binary(level binaryLevel) (ast.Node, error) {
	left, err := level.next(p)
	if err != nil {
		return nil, err
	}
	for p.match(level.ops...) {
		op := p.previous()
		right, err := level.next(p)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{
			Op:    op.Lexeme,
			Left:  left,
			Right: right,
			Loc:   ast.Span{Start: left.Pos().Start, End: right.Pos().End},
		}
	}
	return left, nil
}

func (p *parser) unary() (ast.Node, error) {
	if p.match(TokenBang, TokenMinus) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op.Lexeme, Operand: operand, Loc: ast.Span{Start: op.Start, End: operand.Pos().End}}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (ast.Node, error) {
	start := p.peek().Start
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(TokenDot):
			name, err := p.consume(TokenIdent, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Member{Object: expr, Property: name.Lexeme, Loc: ast.Span{Start: start, End: name.End}}
		case p.match(TokenLBracket):
			if p.check(TokenRBracket) || (p.check(TokenStar) && p.checkNext(TokenRBracket)) {
				p.match(TokenStar)
				end := p.advance()
				expr = &ast.Wildcard{Object: expr, Loc: ast.Span{Start: start, End: end.End}}
				continue
			}
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			end, err := p.consume(TokenRBracket, "expected ']' after index")
			if err != nil {
				return nil, err
			}
			expr = &ast.Index{Object: expr, Index: index, Loc: ast.Span{Start: start, End: end.End}}
		default:
			return expr, nil
		}
	}
}

func (p *parser) primary() (ast.Node, error) {
	tok := p.advance()
	loc := ast.Span{Start: tok.Start, End: tok.End}
	switch tok.Type {
	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %q", tok.Lexeme)
		}
		return &ast.Literal{Value: v, Raw: tok.Lexeme, Loc: loc}, nil
	case TokenString:
		return &ast.Literal{Value: tok.Lexeme, Raw: p.src[tok.Start:tok.End], Loc: loc}, nil
	case TokenRelativePath:
		return &ast.RelativePath{Text: tok.Lexeme, Loc: loc}, nil
	case TokenRootPath:
		return &ast.RootPath{Text: tok.Lexeme, Loc: loc}, nil
	case TokenIdent:
		switch tok.Lexeme {
		case "true":
			return &ast.Literal{Value: true, Raw: tok.Lexeme, Loc: loc}, nil
		case "false":
			return &ast.Literal{Value: false, Raw: tok.Lexeme, Loc: loc}, nil
		case "null":
			return &ast.Literal{Value: nil, Raw: tok.Lexeme, Loc: loc}, nil
		}
		if p.match(TokenLParen) {
			return p.call(tok)
		}
		return &ast.Identifier{Name: tok.Lexeme, Loc: loc}, nil
	case TokenLParen:
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRParen, "expected ')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf(tok, "unexpected %s", tok.Type)
}

func (p *parser) call(name Token) (ast.Node, error) {
	var args []ast.Node
	if !p.check(TokenRParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	end, err := p.consume(TokenRParen, "expected ')' after arguments")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Name: name.Lexeme, Args: args, Loc: ast.Span{Start: name.Start, End: end.End}}, nil
}

func (p *parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) check(t TokenType) bool { return p.peek().Type == t }

func (p *parser) checkNext(t TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *parser) consume(t TokenType, msg string) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return Token{}, p.errorf(p.peek(), "%s, got %s", msg, p.peek().Type)
}

func (p *parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Type != TokenEOF {
		p.current++
	}
	return tok
}

func (p *parser) peek() Token     { return p.tokens[p.current] }
func (p *parser) previous() Token { return p.tokens[p.current-1] }

func (p *parser) errorf(at Token, format string, a ...any) error {
	return &SyntaxError{Offset: at.Start, Msg: fmt.Sprintf(format, a...), Source: p.src}
}
