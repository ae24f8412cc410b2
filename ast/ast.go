package ast

// TypeNode is the untyped, as-written type annotation that appears in
// declarations before the analyzer resolves it against the symbol and
// struct tables (§3.2).
type TypeNode interface {
	typeNode()
	GetSpan() Span
}

type BaseTypeNode struct{ Span Span }

func (n *BaseTypeNode) GetSpan() Span { return n.Span }

// PrimitiveType is one of int, float, bool, angle.
type PrimitiveType struct {
	BaseTypeNode
	Name string // "int" | "float" | "bool" | "angle"
}

func (*PrimitiveType) typeNode() {}

// ArrayTypeNode is a fixed-size array type `[N]T`.
type ArrayTypeNode struct {
	BaseTypeNode
	Size    int
	Element TypeNode
}

func (*ArrayTypeNode) typeNode() {}

// NamedType references a user-declared struct type by name.
type NamedType struct {
	BaseTypeNode
	Name string
}

func (*NamedType) typeNode() {}

// ============================================================
// Declarations
// ============================================================

// Decl is implemented by every top-level declaration kind.
type Decl interface {
	declNode()
	GetSpan() Span
}

type BaseDecl struct{ Span Span }

func (d *BaseDecl) GetSpan() Span { return d.Span }
func (d *BaseDecl) SetSpan(s Span) { d.Span = s }

// ConstDecl is `const N = expr`.
type ConstDecl struct {
	BaseDecl
	Name string
	Expr Expr
}

func (*ConstDecl) declNode() {}

// FieldSpec is one field of a TypeDecl (struct only, per §3.2).
type FieldSpec struct {
	Name string
	Type TypeNode
}

// TypeDecl is `type T struct { ... }`.
type TypeDecl struct {
	BaseDecl
	Name   string
	Fields []FieldSpec
}

func (*TypeDecl) declNode() {}

// VarDecl is a global `var x T [= expr]`.
type VarDecl struct {
	BaseDecl
	Name string
	Type TypeNode
	Init Expr // nil if no initializer
}

func (*VarDecl) declNode() {}

// Param is a function or event parameter.
type Param struct {
	Name string
	Type TypeNode
}

// FuncDecl is `func name(params) returns { body }`.
type FuncDecl struct {
	BaseDecl
	Name        string
	Params      []Param
	ReturnTypes []TypeNode
	Body        *BlockStmt
}

func (*FuncDecl) declNode() {}

// EventDecl is `on event(params) { body }`.
type EventDecl struct {
	BaseDecl
	Name   string
	Params []Param
	Body   *BlockStmt
}

func (*EventDecl) declNode() {}

// Program is the root of the AST (§3.2).
type Program struct {
	Span      Span
	RobotName string
	Consts    []*ConstDecl
	Types     []*TypeDecl
	Globals   []*VarDecl
	Funcs     []*FuncDecl
	Events    []*EventDecl
}

// ============================================================
// Statements
// ============================================================

// Stmt is implemented by every statement kind.
type Stmt interface {
	stmtNode()
	GetSpan() Span
}

type BaseStmt struct{ Span Span }

func (s *BaseStmt) GetSpan() Span { return s.Span }
func (s *BaseStmt) SetSpan(sp Span) { s.Span = sp }

// BlockStmt is `{ stmt* }`.
type BlockStmt struct {
	BaseStmt
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}

// LocalVarStmt is a `var` statement inside a function body.
type LocalVarStmt struct {
	BaseStmt
	Name string
	Type TypeNode // nil if inferred from Init
	Init Expr     // nil if no initializer
}

func (*LocalVarStmt) stmtNode() {}

// ShortDeclStmt is `a, b := e1, e2`.
type ShortDeclStmt struct {
	BaseStmt
	Names []string
	Exprs []Expr
}

func (*ShortDeclStmt) stmtNode() {}

// AssignOp identifies the operator of an AssignStmt.
type AssignOp int

const (
	AssignSet AssignOp = iota // =
	AssignAdd                 // +=
	AssignSub                 // -=
	AssignMul                 // *=
	AssignDiv                 // /=
)

// AssignStmt is `target op= expr`.
type AssignStmt struct {
	BaseStmt
	Target Expr
	Op     AssignOp
	Value  Expr
}

func (*AssignStmt) stmtNode() {}

// IfStmt is `if cond { ... }`; IfStmt.Elifs holds the `else if` chain
// (each an ElifClause pairing a condition with its body) and
// IfStmt.Else holds the trailing plain else.
type IfStmt struct {
	BaseStmt
	Cond  Expr
	Then  *BlockStmt
	Elifs []ElifClause
	Else  *BlockStmt // nil if no else
}

// ElifClause is one `else if cond { ... }` link.
type ElifClause struct {
	Cond Expr
	Body *BlockStmt
}

func (*IfStmt) stmtNode() {}

// ForStmt covers all three surface forms (three-part, condition-only,
// infinite) plus `while`, which the parser lowers into this same node
// (§4.2 "while cond { ... } is lowered to for cond { ... }").
type ForStmt struct {
	BaseStmt
	Init Stmt // nil if omitted
	Cond Expr // nil if omitted (infinite form)
	Post Stmt // nil if omitted
	Body *BlockStmt
}

func (*ForStmt) stmtNode() {}

// SwitchCase is one `case v1, v2: ...` arm.
type SwitchCase struct {
	Values []Expr
	Body   []Stmt
}

// SwitchStmt is a non-fallthrough switch over a tag expression.
type SwitchStmt struct {
	BaseStmt
	Tag     Expr
	Cases   []SwitchCase
	Default []Stmt // nil if no default
}

func (*SwitchStmt) stmtNode() {}

// ReturnStmt carries zero or more return values.
type ReturnStmt struct {
	BaseStmt
	Values []Expr
}

func (*ReturnStmt) stmtNode() {}

// BreakStmt is `break`.
type BreakStmt struct{ BaseStmt }

func (*BreakStmt) stmtNode() {}

// ContinueStmt is `continue`.
type ContinueStmt struct{ BaseStmt }

func (*ContinueStmt) stmtNode() {}

// ExprStmt is a bare expression used as a statement (a call, usually).
type ExprStmt struct {
	BaseStmt
	X Expr
}

func (*ExprStmt) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// Expr is implemented by every expression kind. Every expression node
// has a stable ID used to key the analyzer's expr_info side table
// (§3.4, §9).
type Expr interface {
	exprNode()
	GetSpan() Span
	ID() ExprID
}

type BaseExpr struct {
	Span Span
	Eid  ExprID
}

func (e *BaseExpr) GetSpan() Span { return e.Span }
func (e *BaseExpr) ID() ExprID    { return e.Eid }

// IntLit is an integer literal.
type IntLit struct {
	BaseExpr
	Value string // raw digits; the analyzer parses/folds into int64
}

func (*IntLit) exprNode() {}

// FloatLit is a floating literal.
type FloatLit struct {
	BaseExpr
	Value string // raw text; the analyzer parses into float64
}

func (*FloatLit) exprNode() {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	BaseExpr
	Value bool
}

func (*BoolLit) exprNode() {}

// StringLit is a string literal. Accepted by the lexer and parser,
// always rejected by the analyzer in any expression context (§1).
type StringLit struct {
	BaseExpr
	Value string
}

func (*StringLit) exprNode() {}

// Ident is an identifier reference.
type Ident struct {
	BaseExpr
	Name string
}

func (*Ident) exprNode() {}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota // -
	UnaryNot                // !
)

// UnaryExpr is a prefix unary expression.
type UnaryExpr struct {
	BaseExpr
	Op UnaryOp
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNotEq
	BinLt
	BinGt
	BinLtEq
	BinGtEq
	BinAndAnd
	BinOrOr
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
)

// BinaryExpr is an infix binary expression.
type BinaryExpr struct {
	BaseExpr
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// CallExpr is `name(args...)`, dispatched by the analyzer to a type
// conversion, a debug overload, or a user/import function (§4.3).
type CallExpr struct {
	BaseExpr
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// FieldExpr is `object.field`.
type FieldExpr struct {
	BaseExpr
	Object Expr
	Field  string
}

func (*FieldExpr) exprNode() {}

// IndexExpr is `object[index]`.
type IndexExpr struct {
	BaseExpr
	Object Expr
	Index  Expr
}

func (*IndexExpr) exprNode() {}

// StructFieldInit is one `field: expr` entry of a StructLit.
type StructFieldInit struct {
	Name  string
	Value Expr
}

// StructLit is `TypeName{ field: expr, ... }`.
type StructLit struct {
	BaseExpr
	TypeName string
	Fields   []StructFieldInit
}

func (*StructLit) exprNode() {}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	BaseExpr
	Elements []Expr
}

func (*ArrayLit) exprNode() {}

// GroupExpr is a parenthesised expression, kept as a distinct node so
// the printer (§SPEC_FULL-F.2) can round-trip parens; it carries no
// semantics of its own beyond its inner expression.
type GroupExpr struct {
	BaseExpr
	X Expr
}

func (*GroupExpr) exprNode() {}
