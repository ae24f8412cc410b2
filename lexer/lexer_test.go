package lexer

import (
	"testing"

	"github.com/gmofishsauce/rlc/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexEmptySourceIsJustEOF(t *testing.T) {
	toks := Lex("")
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Fatalf("Lex(\"\") = %v, want [EOF]", toks)
	}
}

func TestLexWhitespaceOnlyIsJustEOF(t *testing.T) {
	toks := Lex("   \t\t   ")
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Fatalf("Lex(whitespace) = %v, want [EOF]", toks)
	}
}

func TestLexNewlinesAreSignificant(t *testing.T) {
	toks := Lex("a\n\nb\n")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.Newline, token.Newline, token.Ident, token.Newline, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexLineComment(t *testing.T) {
	toks := Lex("a // comment\nb")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.Newline, token.Ident, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexIntegerAndDotAreSeparateWhenNoFractionalDigit(t *testing.T) {
	toks := Lex("3.")
	got := kinds(toks)
	want := []token.Kind{token.Int, token.Dot, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[0].Lexeme != "3" {
		t.Errorf("want lexeme 3, got %q", toks[0].Lexeme)
	}
}

func TestLexFloatingLiteral(t *testing.T) {
	toks := Lex("3.14")
	if toks[0].Kind != token.Float || toks[0].Lexeme != "3.14" {
		t.Fatalf("got %v, want Float(3.14)", toks[0])
	}
}

func TestLexKeywordsVsIdentifiers(t *testing.T) {
	toks := Lex("robot robotName")
	if toks[0].Kind != token.Robot {
		t.Fatalf("got %s, want robot keyword", toks[0].Kind)
	}
	if toks[1].Kind != token.Ident || toks[1].Lexeme != "robotName" {
		t.Fatalf("got %v, want Ident(robotName)", toks[1])
	}
}

func TestLexBooleanLiterals(t *testing.T) {
	toks := Lex("true false")
	if toks[0].Kind != token.Bool || toks[1].Kind != token.Bool {
		t.Fatalf("got %v %v, want Bool Bool", toks[0], toks[1])
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := Lex(`"a\nb\t\\\"z"`)
	want := "a\nb\t\\\"z"
	if toks[0].Kind != token.String || toks[0].Lexeme != want {
		t.Fatalf("got %q, want %q", toks[0].Lexeme, want)
	}
}

func TestLexStringUnusualEscapeYieldsEscapedChar(t *testing.T) {
	toks := Lex(`"\q"`)
	if toks[0].Lexeme != "q" {
		t.Fatalf("got %q, want %q", toks[0].Lexeme, "q")
	}
}

func TestLexUnterminatedStringClosesAtNewline(t *testing.T) {
	toks := Lex("\"abc\ndef")
	if toks[0].Kind != token.String || toks[0].Lexeme != "abc" {
		t.Fatalf("got %v, want String(abc)", toks[0])
	}
	// lexing continues past the implicit close
	if toks[1].Kind != token.Newline {
		t.Fatalf("got %v, want Newline", toks[1])
	}
}

func TestLexLongestMatchOperators(t *testing.T) {
	toks := Lex(":= += -= *= /= == != <= >= && || << >>")
	want := []token.Kind{
		token.Walrus, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq,
		token.Eq, token.NotEq, token.LtEq, token.GtEq, token.AndAnd, token.OrOr,
		token.Shl, token.Shr, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexUnknownCharactersAreSilentlyDropped(t *testing.T) {
	toks := Lex("a $ b")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.Ident, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexPositionsAreOneBased(t *testing.T) {
	toks := Lex("ab\ncd")
	if toks[0].Line != 1 || toks[0].Column != 1 {
		t.Fatalf("got %v, want line 1 col 1", toks[0])
	}
	// toks[2] is "cd" on line 2
	if toks[2].Line != 2 || toks[2].Column != 1 {
		t.Fatalf("got %v, want line 2 col 1", toks[2])
	}
}

func TestLexArbitrarilyLargeIntegerAccepted(t *testing.T) {
	toks := Lex("999999999999999999999999999")
	if toks[0].Kind != token.Int {
		t.Fatalf("got %v, want Int", toks[0])
	}
}
