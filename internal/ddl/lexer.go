// Package ddl provides lexing and parsing for the schema-definition
// surface: CREATE/ALTER/DROP TABLE, INDEX, VIEW, and CHANGE STREAM.
// Expressions inside DDL (generated columns, defaults, checks, row deletion
// policies) are captured as source text, not analyzed; the validators
// resolve their column references lexically.
package ddl

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a lexical token. Keywords are not
// tokenized specially; the parser matches identifier tokens against
// keywords case-insensitively, which keeps the keyword surface in one
// place and lets keywords double as identifiers where the grammar allows.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenIdent
	TokenNumber
	TokenString

	TokenEq        // =
	TokenLt        // <
	TokenGt        // >
	TokenComma     // ,
	TokenLParen    // (
	TokenRParen    // )
	TokenDot       // .
	TokenSemicolon // ;
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
)

// String returns the string representation of a TokenType.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "ERROR"
	case TokenIdent:
		return "IDENT"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenEq:
		return "="
	case TokenLt:
		return "<"
	case TokenGt:
		return ">"
	case TokenComma:
		return ","
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenDot:
		return "."
	case TokenSemicolon:
		return ";"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	default:
		return fmt.Sprintf("TOKEN(%d)", int(t))
	}
}

// Token represents a lexical token. Pos and End are byte offsets into the
// input; the parser uses them to slice raw expression text out of the
// original statement.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
	End     int
}

// String returns a string representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("Token{%s, %q, %d}", t.Type, t.Literal, t.Pos)
}

// Keyword reports whether the token is an identifier matching the given
// keyword, case-insensitively.
func (t Token) Keyword(kw string) bool {
	return t.Type == TokenIdent && strings.EqualFold(t.Literal, kw)
}

// Lexer tokenizes DDL input.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token in the input.
func (l *Lexer) NextToken() Token {
	l.skipSpaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos, End: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '=':
		l.pos++
		return Token{Type: TokenEq, Literal: "=", Pos: start, End: l.pos}
	case '<':
		l.pos++
		return Token{Type: TokenLt, Literal: "<", Pos: start, End: l.pos}
	case '>':
		l.pos++
		return Token{Type: TokenGt, Literal: ">", Pos: start, End: l.pos}
	case ',':
		l.pos++
		return Token{Type: TokenComma, Literal: ",", Pos: start, End: l.pos}
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Literal: "(", Pos: start, End: l.pos}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Literal: ")", Pos: start, End: l.pos}
	case '.':
		l.pos++
		return Token{Type: TokenDot, Literal: ".", Pos: start, End: l.pos}
	case ';':
		l.pos++
		return Token{Type: TokenSemicolon, Literal: ";", Pos: start, End: l.pos}
	case '+':
		l.pos++
		return Token{Type: TokenPlus, Literal: "+", Pos: start, End: l.pos}
	case '-':
		l.pos++
		return Token{Type: TokenMinus, Literal: "-", Pos: start, End: l.pos}
	case '*':
		l.pos++
		return Token{Type: TokenStar, Literal: "*", Pos: start, End: l.pos}
	case '/':
		l.pos++
		return Token{Type: TokenSlash, Literal: "/", Pos: start, End: l.pos}
	case '\'':
		return l.lexString()
	case '`':
		return l.lexQuotedIdent()
	}

	if isDigit(ch) {
		return l.lexNumber()
	}
	if isIdentStart(ch) {
		return l.lexIdent()
	}

	l.pos++
	return Token{Type: TokenError, Literal: string(ch), Pos: start, End: l.pos}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.pos++
		case ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '-':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) lexString() Token {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			// Doubled quote is an escaped quote.
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenString, Literal: sb.String(), Pos: start, End: l.pos}
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return Token{Type: TokenError, Literal: "unterminated string", Pos: start, End: l.pos}
}

func (l *Lexer) lexQuotedIdent() Token {
	start := l.pos
	l.pos++ // opening backtick
	identStart := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '`' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return Token{Type: TokenError, Literal: "unterminated quoted identifier", Pos: start, End: l.pos}
	}
	lit := l.input[identStart:l.pos]
	l.pos++ // closing backtick
	return Token{Type: TokenIdent, Literal: lit, Pos: start, End: l.pos}
}

func (l *Lexer) lexNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: start, End: l.pos}
}

func (l *Lexer) lexIdent() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenIdent, Literal: l.input[start:l.pos], Pos: start, End: l.pos}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch)) || isDigit(ch)
}
