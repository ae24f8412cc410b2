// Package lexer turns robot-language source text into a token
// sequence. The lexer never fails: malformed input produces a
// token stream the parser can still walk, ending in an EOF token.
package lexer

import (
	"strings"

	"github.com/gmofishsauce/rlc/token"
)

// Lexer scans a source buffer into tokens one at a time, tracking
// line/column the way the teacher's Lexer tracks source lines while
// reading from a bufio.Reader, adapted here to scan an in-memory byte
// slice since the compiler accepts a source string rather than a
// stream (§5: single in-process call, no I/O).
type Lexer struct {
	src    []byte
	pos    int
	line   int
	column int
}

// New creates a Lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: []byte(src), pos: 0, line: 1, column: 1}
}

// Lex tokenizes the entire source and returns the token list. The
// final token is always EOF (§8.1 invariant 1).
func Lex(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Next scans and returns the next token, advancing internal state.
func (l *Lexer) Next() token.Token {
	l.skipSpacesAndComments()

	line, col := l.line, l.column
	ch := l.peek()

	if ch == 0 {
		return token.Token{Kind: token.EOF, Line: line, Column: col}
	}

	if ch == '\n' {
		l.advance()
		return token.Token{Kind: token.Newline, Lexeme: "\n", Line: line, Column: col}
	}

	if isLetter(ch) {
		return l.scanIdentifier(line, col)
	}

	if isDigit(ch) {
		return l.scanNumber(line, col)
	}

	if ch == '"' {
		return l.scanString(line, col)
	}

	if tok, ok := l.scanOperator(line, col); ok {
		return tok
	}

	// Unknown character: drop it silently and keep scanning (§4.1:
	// "Unknown characters are silently skipped"). Recurse to produce
	// the next real token instead of returning an Illegal one.
	l.advance()
	return l.Next()
}

func (l *Lexer) skipSpacesAndComments() {
	for {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier(line, col int) token.Token {
	var b strings.Builder
	for isLetter(l.peek()) || isDigit(l.peek()) {
		b.WriteByte(l.advance())
	}
	lexeme := b.String()
	if kind, ok := token.Keywords[lexeme]; ok {
		return token.Token{Kind: kind, Lexeme: lexeme, Line: line, Column: col}
	}
	return token.Token{Kind: token.Ident, Lexeme: lexeme, Line: line, Column: col}
}

// scanNumber scans an integer or floating literal. A '.' not followed
// by a digit is not part of the number: it is left for the next call
// to tokenize as Dot (§4.1).
func (l *Lexer) scanNumber(line, col int) token.Token {
	var b strings.Builder
	for isDigit(l.peek()) {
		b.WriteByte(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		b.WriteByte(l.advance()) // consume '.'
		for isDigit(l.peek()) {
			b.WriteByte(l.advance())
		}
		return token.Token{Kind: token.Float, Lexeme: b.String(), Line: line, Column: col}
	}
	return token.Token{Kind: token.Int, Lexeme: b.String(), Line: line, Column: col}
}

// scanString scans a double-quoted string literal with \n \t \\ \"
// escapes. Any other escape yields the escaped character itself. An
// unterminated string at newline or EOF closes implicitly (§4.1).
func (l *Lexer) scanString(line, col int) token.Token {
	l.advance() // opening quote
	var b strings.Builder
	for {
		ch := l.peek()
		if ch == 0 || ch == '\n' {
			break
		}
		if ch == '"' {
			l.advance()
			break
		}
		if ch == '\\' {
			l.advance()
			esc := l.peek()
			switch esc {
			case 'n':
				b.WriteByte('\n')
				l.advance()
			case 't':
				b.WriteByte('\t')
				l.advance()
			case '\\':
				b.WriteByte('\\')
				l.advance()
			case '"':
				b.WriteByte('"')
				l.advance()
			case 0:
				// EOF right after a backslash: nothing more to escape.
			default:
				b.WriteByte(esc)
				l.advance()
			}
			continue
		}
		b.WriteByte(l.advance())
	}
	return token.Token{Kind: token.String, Lexeme: b.String(), Line: line, Column: col}
}

// twoCharOps lists two-character operators matched before their
// one-character prefixes, longest match first (§4.1).
var twoCharOps = map[string]token.Kind{
	":=": token.Walrus, "+=": token.PlusEq, "-=": token.MinusEq,
	"*=": token.StarEq, "/=": token.SlashEq, "==": token.Eq, "!=": token.NotEq,
	"<=": token.LtEq, ">=": token.GtEq, "&&": token.AndAnd, "||": token.OrOr,
	"<<": token.Shl, ">>": token.Shr,
}

var oneCharOps = map[byte]token.Kind{
	'=': token.Assign, '+': token.Plus, '-': token.Minus, '*': token.Star,
	'/': token.Slash, '%': token.Percent, '<': token.Lt, '>': token.Gt,
	'!': token.Not, '&': token.Amp, '|': token.Pipe, '^': token.Caret,
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket, ',': token.Comma, '.': token.Dot,
	':': token.Colon, ';': token.Semicolon,
}

func (l *Lexer) scanOperator(line, col int) (token.Token, bool) {
	two := string([]byte{l.peek(), l.peekN(1)})
	if kind, ok := twoCharOps[two]; ok {
		l.advance()
		l.advance()
		return token.Token{Kind: kind, Lexeme: two, Line: line, Column: col}, true
	}
	if kind, ok := oneCharOps[l.peek()]; ok {
		ch := l.advance()
		return token.Token{Kind: kind, Lexeme: string(ch), Line: line, Column: col}, true
	}
	return token.Token{}, false
}
