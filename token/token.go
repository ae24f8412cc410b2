// Package token defines the shared token and diagnostic vocabulary used
// across the lexer, parser, analyzer, and emitter stages of the robot
// language compiler.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Illegal Kind = iota
	EOF
	Newline

	// Literals
	Int
	Float
	Bool
	String
	Ident

	// Keywords
	Robot
	Var
	Const
	Func
	On
	If
	Else
	For
	While
	Switch
	Case
	Default
	Return
	Break
	Continue
	Type
	Struct

	// Type keywords
	IntType
	FloatType
	BoolType
	AngleType

	// Operators and delimiters
	Assign     // =
	Walrus     // :=
	PlusEq     // +=
	MinusEq    // -=
	StarEq     // *=
	SlashEq    // /=
	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Eq         // ==
	NotEq      // !=
	Lt         // <
	Gt         // >
	LtEq       // <=
	GtEq       // >=
	AndAnd     // &&
	OrOr       // ||
	Not        // !
	Amp        // &
	Pipe       // |
	Caret      // ^
	Shl        // <<
	Shr        // >>
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	Comma      // ,
	Dot        // .
	Colon      // :
	Semicolon  // ;
)

var kindNames = map[Kind]string{
	Illegal: "Illegal", EOF: "EOF", Newline: "Newline",
	Int: "Int", Float: "Float", Bool: "Bool", String: "String", Ident: "Ident",
	Robot: "robot", Var: "var", Const: "const", Func: "func", On: "on",
	If: "if", Else: "else", For: "for", While: "while", Switch: "switch",
	Case: "case", Default: "default", Return: "return", Break: "break",
	Continue: "continue", Type: "type", Struct: "struct",
	IntType: "int", FloatType: "float", BoolType: "bool", AngleType: "angle",
	Assign: "=", Walrus: ":=", PlusEq: "+=", MinusEq: "-=", StarEq: "*=",
	SlashEq: "/=", Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Eq: "==", NotEq: "!=", Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=",
	AndAnd: "&&", OrOr: "||", Not: "!", Amp: "&", Pipe: "|", Caret: "^",
	Shl: "<<", Shr: ">>", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Comma: ",", Dot: ".", Colon: ":",
	Semicolon: ";",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps a lexeme to its keyword Kind. Identifiers that don't
// appear here are plain Ident tokens.
var Keywords = map[string]Kind{
	"robot": Robot, "var": Var, "const": Const, "func": Func, "on": On,
	"if": If, "else": Else, "for": For, "while": While, "switch": Switch,
	"case": Case, "default": Default, "return": Return, "break": Break,
	"continue": Continue, "type": Type, "struct": Struct,
	"int": IntType, "float": FloatType, "bool": BoolType, "angle": AngleType,
	"true": Bool, "false": Bool,
}

// Position is a 1-based line/column pair pointing at a source location.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit: a kind, its source text, and the
// position of its first character.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

func (t Token) Pos() Position { return Position{Line: t.Line, Column: t.Column} }

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Kind, t.Lexeme, t.Line, t.Column)
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// Phase names a pipeline stage for diagnostic reporting.
type Phase string

const (
	PhaseTokenize Phase = "tokenize"
	PhaseParse    Phase = "parse"
	PhaseAnalyze  Phase = "analyze"
	PhaseCodegen  Phase = "codegen"
)

// Diagnostic is a single compiler-reported problem, never used for Go
// control flow — diagnostics are values accumulated into a list and
// returned to the caller.
type Diagnostic struct {
	Phase   Phase
	Line    int
	Column  int
	Message string
	Hint    string
}

func (d Diagnostic) String() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s:%d:%d: %s (%s)", d.Phase, d.Line, d.Column, d.Message, d.Hint)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.Phase, d.Line, d.Column, d.Message)
}

// DiagnosticList accumulates diagnostics across every pipeline stage.
// A single list travels through the whole compile call, matching the
// teacher's per-pass `errors []string` accumulator generalized into a
// structured record carrying phase, position, and an optional hint.
type DiagnosticList struct {
	items []Diagnostic
}

// Add appends a diagnostic at the given position.
func (l *DiagnosticList) Add(phase Phase, pos Position, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{
		Phase:   phase,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

// AddHint appends a diagnostic carrying a remediation hint.
func (l *DiagnosticList) AddHint(phase Phase, pos Position, hint string, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{
		Phase:   phase,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
		Hint:    hint,
	})
}

// Items returns the accumulated diagnostics in recording order.
func (l *DiagnosticList) Items() []Diagnostic { return l.items }

// Len reports how many diagnostics have been recorded.
func (l *DiagnosticList) Len() int { return len(l.items) }

// HasErrors reports whether any diagnostic has been recorded. All
// current diagnostic kinds are hard errors; there is no warning tier
// in this implementation, so HasErrors is equivalent to Len() > 0.
func (l *DiagnosticList) HasErrors() bool { return len(l.items) > 0 }
