package grammar

import (
	"fmt"
	"strings"
)

// TokenType identifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdent
	TokenRelativePath
	TokenRootPath

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenEq
	TokenNotEq
	TokenLess
	TokenLessEq
	TokenGreater
	TokenGreaterEq
	TokenAnd
	TokenOr
	TokenBang
	TokenQuestion
	TokenColon

	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenDot
	TokenComma
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "end of expression",
	TokenNumber:       "number",
	TokenString:       "string",
	TokenIdent:        "identifier",
	TokenRelativePath: "relative path",
	TokenRootPath:     "root path",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenStar:         "'*'",
	TokenSlash:        "'/'",
	TokenPercent:      "'%'",
	TokenEq:           "'=='",
	TokenNotEq:        "'!='",
	TokenLess:         "'<'",
	TokenLessEq:       "'<='",
	TokenGreater:      "'>'",
	TokenGreaterEq:    "'>='",
	TokenAnd:          "'&&'",
	TokenOr:           "'||'",
	TokenBang:         "'!'",
	TokenQuestion:     "'?'",
	TokenColon:        "':'",
	TokenLParen:       "'('",
	TokenRParen:       "')'",
	TokenLBracket:     "'['",
	TokenRBracket:     "']'",
	TokenDot:          "'.'",
	TokenComma:        "','",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is one lexeme with its byte offsets in the source.
type Token struct {
	Type   TokenType
	Lexeme string
	Start  int
	End    int
}

// SyntaxError reports a lexing or parsing failure at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
	Source string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("formula: %s at offset %d in %q", e.Msg, e.Offset, e.Source)
}

// lexer tokenizes a formula expression.
//
// "/" and "." are ambiguous: at an operand position they start a root path or
// a relative path, elsewhere they are division and member access. The lexer
// tracks the previous token to tell the two apart.
type lexer struct {
	src     string
	start   int
	current int
	tokens  []Token
}

func tokenize(src string) ([]Token, error) {
	l := &lexer{src: src}
	for !l.isAtEnd() {
		l.start = l.current
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Start: len(src), End: len(src)})
	return l.tokens, nil
}

func (l *lexer) scanToken() error {
	c := l.advance()
	switch {
	case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		return nil
	case c == '(':
		l.add(TokenLParen)
	case c == ')':
		l.add(TokenRParen)
	case c == '[':
		l.add(TokenLBracket)
	case c == ']':
		l.add(TokenRBracket)
	case c == ',':
		l.add(TokenComma)
	case c == '+':
		l.add(TokenPlus)
	case c == '-':
		l.add(TokenMinus)
	case c == '*':
		l.add(TokenStar)
	case c == '%':
		l.add(TokenPercent)
	case c == '?':
		l.add(TokenQuestion)
	case c == ':':
		l.add(TokenColon)
	case c == '=':
		if !l.match('=') {
			return l.errorf("unexpected '=' (use '==')")
		}
		l.add(TokenEq)
	case c == '!':
		l.addIf('=', TokenNotEq, TokenBang)
	case c == '<':
		l.addIf('=', TokenLessEq, TokenLess)
	case c == '>':
		l.addIf('=', TokenGreaterEq, TokenGreater)
	case c == '&':
		if !l.match('&') {
			return l.errorf("unexpected '&' (use '&&')")
		}
		l.add(TokenAnd)
	case c == '|':
		if !l.match('|') {
			return l.errorf("unexpected '|' (use '||')")
		}
		l.add(TokenOr)
	case c == '"' || c == '\'':
		return l.string(c)
	case c == '/':
		if l.operandPosition() {
			return l.rootPath()
		}
		l.add(TokenSlash)
	case c == '.':
		switch {
		case isDigit(l.peek()) && l.operandPosition():
			l.number()
		case l.operandPosition() && (l.peek() == '.' || l.peek() == '/'):
			return l.relativePath()
		default:
			l.add(TokenDot)
		}
	case isDigit(c):
		l.number()
	case isIdentStart(c):
		for isIdentPart(l.peek()) {
			l.advance()
		}
		l.add(TokenIdent)
	default:
		return l.errorf("unexpected character %q", c)
	}
	return nil
}

// operandPosition reports whether the next token starts an operand.
func (l *lexer) operandPosition() bool {
	if len(l.tokens) == 0 {
		return true
	}
	switch l.tokens[len(l.tokens)-1].Type {
	case TokenNumber, TokenString, TokenIdent, TokenRelativePath, TokenRootPath,
		TokenRParen, TokenRBracket:
		return false
	}
	return true
}

// relativePath scans ("." | "..") ("/" ("." | ".." | ident))*, stopping after
// the first identifier segment that is not followed by "/". Any ".name"
// that follows is member access on the path.
func (l *lexer) relativePath() error {
	// the first '.' is consumed
	l.match('.')
	for l.peek() == '/' {
		l.advance()
		switch {
		case l.peek() == '.':
			l.advance()
			l.match('.')
			if c := l.peek(); c != '/' && !isBoundary(c) {
				return l.errorf("malformed relative path %q", l.src[l.start:l.current+1])
			}
		case isIdentStart(l.peek()):
			for isIdentPart(l.peek()) {
				l.advance()
			}
			if l.peek() != '/' {
				l.add(TokenRelativePath)
				return nil
			}
		default:
			return l.errorf("malformed relative path %q", l.src[l.start:l.current])
		}
	}
	l.add(TokenRelativePath)
	return nil
}

// rootPath scans "/" followed by a dotted/bracket simple path. Bracket groups
// may only hold digits or "*".
func (l *lexer) rootPath() error {
	for {
		c := l.peek()
		switch {
		case isIdentPart(c) || c == '.':
			l.advance()
		case c == '[':
			l.advance()
			for isDigit(l.peek()) || l.peek() == '*' {
				l.advance()
			}
			if !l.match(']') {
				return l.errorf("unterminated '[' in root path")
			}
		default:
			l.add(TokenRootPath)
			return nil
		}
	}
}

func (l *lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		save := l.current
		l.advance()
		if c := l.peek(); c == '+' || c == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			l.current = save
		} else {
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	l.add(TokenNumber)
}

func (l *lexer) string(quote byte) error {
	var b strings.Builder
	for !l.isAtEnd() {
		c := l.advance()
		switch c {
		case quote:
			l.tokens = append(l.tokens, Token{Type: TokenString, Lexeme: b.String(), Start: l.start, End: l.current})
			return nil
		case '\\':
			if l.isAtEnd() {
				return l.errorf("unterminated string")
			}
			switch e := l.advance(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return l.errorf("unterminated string")
}

func (l *lexer) add(t TokenType) {
	l.tokens = append(l.tokens, Token{Type: t, Lexeme: l.src[l.start:l.current], Start: l.start, End: l.current})
}

func (l *lexer) addIf(next byte, matched, otherwise TokenType) {
	if l.match(next) {
		l.add(matched)
		return
	}
	l.add(otherwise)
}

func (l *lexer) errorf(format string, a ...any) error {
	return &SyntaxError{Offset: l.start, Msg: fmt.Sprintf(format, a...), Source: l.src}
}

func (l *lexer) isAtEnd() bool { return l.current >= len(l.src) }

func (l *lexer) advance() byte {
	c := l.src[l.current]
	l.current++
	return c
}

func (l *lexer) match(c byte) bool {
	if l.isAtEnd() || l.src[l.current] != c {
		return false
	}
	l.current++
	return true
}

func (l *lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.current]
}

func (l *lexer) peekNext() byte {
	if l.current+1 >= len(l.src) {
		return 0
	}
	return l.src[l.current+1]
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c == '$' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// isBoundary reports whether c may follow a complete path token.
func isBoundary(c byte) bool {
	return c == 0 || strings.IndexByte(" \t\r\n)],+-*%<>=!&|?:", c) >= 0
}
