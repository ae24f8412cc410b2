// Package parser implements a recursive-descent parser for the robot
// language with Pratt-style precedence climbing for binary
// expressions. It never panics past the top level: every syntax error
// is recorded as a diagnostic and recovery guarantees forward
// progress (§4.2), following the teacher's (lang/parse) panic-mode
// recovery shape generalized into precondition/postcondition form per
// §9's "make it a function-level pre/postcondition" guidance.
package parser

import (
	"strconv"

	"github.com/gmofishsauce/rlc/ast"
	"github.com/gmofishsauce/rlc/token"
)

// knownTypeNames pre-scans the token stream for declared struct names
// so struct literals (`TypeName{...}`) can be distinguished from a
// block-starting identifier at statement position (§4.2).
type knownTypeNames map[string]bool

// Parser consumes a token slice and produces an AST plus a diagnostic
// list.
type Parser struct {
	toks   []token.Token
	pos    int
	diags  *token.DiagnosticList
	ids    *ast.IDGen
	types  knownTypeNames
}

// Parse tokenizes-already tokens into a Program. It never panics:
// every malformed input yields a (possibly partial) Program and a
// populated diagnostic list (§8.1 invariant 2).
func Parse(toks []token.Token) (*ast.Program, *token.DiagnosticList) {
	p := &Parser{
		toks:  toks,
		diags: &token.DiagnosticList{},
		ids:   ast.NewIDGen(),
		types: scanTypeNames(toks),
	}
	return p.parseProgram(), p.diags
}

// scanTypeNames does a lightweight prepass over the token stream
// looking for `type Name struct` to seed the struct-literal/block
// disambiguation set (§4.2).
func scanTypeNames(toks []token.Token) knownTypeNames {
	names := make(knownTypeNames)
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].Kind == token.Type && toks[i+1].Kind == token.Ident && toks[i+2].Kind == token.Struct {
			names[toks[i+1].Lexeme] = true
		}
	}
	return names
}

// ---- token stream primitives ----

func (p *Parser) peek() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}
func (p *Parser) atEOF() bool { return p.peek().Kind == token.EOF }

func (p *Parser) next() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.check(k) {
		return p.next(), true
	}
	p.errorf("expected %s, got %s", what, p.peek().Kind)
	return p.peek(), false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	t := p.peek()
	p.diags.Add(token.PhaseParse, t.Pos(), format, args...)
}

func (p *Parser) spanFrom(start token.Token) ast.Span {
	end := p.peek()
	return ast.Span{StartLine: start.Line, StartCol: start.Column, EndLine: end.Line, EndCol: end.Column}
}

// skipNewlines consumes any run of leading newline tokens; RL treats
// newlines as statement-insignificant except where used to terminate
// declarations loosely (§4.2: "skipping leading newlines").
func (p *Parser) skipNewlines() {
	for p.check(token.Newline) {
		p.next()
	}
}

// recover implements §4.2's error-recovery contract: it MUST consume
// at least one token before returning, and stops at the next
// Newline, the next top-level keyword, or a closing brace (consumed
// only if no other progress was made yet this call). This is the
// single invariant the rest of the parser leans on to guarantee
// termination (§8.1 invariant 2, §9).
func (p *Parser) recover() {
	consumed := false
	for !p.atEOF() {
		t := p.peek()
		if consumed && isTopLevelKeyword(t.Kind) {
			return
		}
		if t.Kind == token.Newline {
			p.next()
			return
		}
		if t.Kind == token.RBrace {
			if !consumed {
				p.next()
			}
			return
		}
		p.next()
		consumed = true
	}
}

func isTopLevelKeyword(k token.Kind) bool {
	switch k {
	case token.Const, token.Type, token.Var, token.Func, token.On:
		return true
	}
	return false
}

// ---- top level ----

func (p *Parser) parseProgram() *ast.Program {
	start := p.peek()
	prog := &ast.Program{}

	p.skipNewlines()
	if p.check(token.Robot) {
		p.next()
		nameTok, ok := p.expect(token.String, "robot name string")
		if ok {
			prog.RobotName = nameTok.Lexeme
		}
	} else {
		p.errorf("missing robot declaration")
	}
	p.skipNewlines()

	for !p.atEOF() {
		p.skipNewlines()
		if p.atEOF() {
			break
		}
		switch p.peek().Kind {
		case token.Const:
			if d := p.parseConstDecl(); d != nil {
				prog.Consts = append(prog.Consts, d)
			}
		case token.Type:
			if d := p.parseTypeDecl(); d != nil {
				prog.Types = append(prog.Types, d)
			}
		case token.Var:
			if d := p.parseVarDecl(); d != nil {
				prog.Globals = append(prog.Globals, d)
			}
		case token.Func:
			if d := p.parseFuncDecl(); d != nil {
				prog.Funcs = append(prog.Funcs, d)
			}
		case token.On:
			if d := p.parseEventDecl(); d != nil {
				prog.Events = append(prog.Events, d)
			}
		default:
			p.errorf("expected a declaration, got %s", p.peek().Kind)
			p.recover()
		}
	}

	prog.Span = p.spanFrom(start)
	return prog
}

// ---- types ----

var primitiveTypeKinds = map[token.Kind]string{
	token.IntType: "int", token.FloatType: "float", token.BoolType: "bool", token.AngleType: "angle",
}

func (p *Parser) parseTypeNode() ast.TypeNode {
	start := p.peek()
	if name, ok := primitiveTypeKinds[start.Kind]; ok {
		p.next()
		return &ast.PrimitiveType{Name: name, BaseTypeNode: ast.BaseTypeNode{Span: p.spanFrom(start)}}
	}
	if p.check(token.LBracket) {
		p.next()
		sizeTok, ok := p.expect(token.Int, "array size")
		size := 0
		if ok {
			size, _ = strconv.Atoi(sizeTok.Lexeme)
		}
		p.expect(token.RBracket, "]")
		elem := p.parseTypeNode()
		return &ast.ArrayTypeNode{Size: size, Element: elem, BaseTypeNode: ast.BaseTypeNode{Span: p.spanFrom(start)}}
	}
	if p.check(token.Ident) {
		name := p.next().Lexeme
		return &ast.NamedType{Name: name, BaseTypeNode: ast.BaseTypeNode{Span: p.spanFrom(start)}}
	}
	p.errorf("expected a type, got %s", start.Kind)
	return &ast.PrimitiveType{Name: "int"} // placeholder so callers can keep walking
}

// ---- declarations ----

func (p *Parser) parseConstDecl() *ast.ConstDecl {
	start := p.next() // 'const'
	nameTok, ok := p.expect(token.Ident, "constant name")
	if !ok {
		p.recover()
		return nil
	}
	if !p.expectPunct(token.Assign, "=") {
		p.recover()
		return nil
	}
	expr := p.parseExpr()
	return &ast.ConstDecl{Name: nameTok.Lexeme, Expr: expr, BaseDecl: ast.BaseDecl{Span: p.spanFrom(start)}}
}

func (p *Parser) expectPunct(k token.Kind, what string) bool {
	if p.check(k) {
		p.next()
		return true
	}
	p.errorf("expected %q, got %s", what, p.peek().Kind)
	return false
}

func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	start := p.next() // 'type'
	nameTok, ok := p.expect(token.Ident, "type name")
	if !ok {
		p.recover()
		return nil
	}
	if !p.expectPunct(token.Struct, "struct") {
		p.recover()
		return nil
	}
	if !p.expectPunct(token.LBrace, "{") {
		p.recover()
		return nil
	}
	p.skipNewlines()
	var fields []ast.FieldSpec
	for !p.check(token.RBrace) && !p.atEOF() {
		fname, ok := p.expect(token.Ident, "field name")
		if !ok {
			p.recover()
			continue
		}
		ftype := p.parseTypeNode()
		fields = append(fields, ast.FieldSpec{Name: fname.Lexeme, Type: ftype})
		p.skipNewlines()
	}
	p.expectPunct(token.RBrace, "}")
	return &ast.TypeDecl{Name: nameTok.Lexeme, Fields: fields, BaseDecl: ast.BaseDecl{Span: p.spanFrom(start)}}
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	start := p.next() // 'var'
	nameTok, ok := p.expect(token.Ident, "variable name")
	if !ok {
		p.recover()
		return nil
	}
	vtype := p.parseTypeNode()
	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpr()
	}
	return &ast.VarDecl{Name: nameTok.Lexeme, Type: vtype, Init: init, BaseDecl: ast.BaseDecl{Span: p.spanFrom(start)}}
}

func (p *Parser) parseParamList() []ast.Param {
	p.expectPunct(token.LParen, "(")
	var params []ast.Param
	for !p.check(token.RParen) && !p.atEOF() {
		nameTok, ok := p.expect(token.Ident, "parameter name")
		if !ok {
			p.recover()
			break
		}
		ptype := p.parseTypeNode()
		params = append(params, ast.Param{Name: nameTok.Lexeme, Type: ptype})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expectPunct(token.RParen, ")")
	return params
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.next() // 'func'
	nameTok, ok := p.expect(token.Ident, "function name")
	if !ok {
		p.recover()
		return nil
	}
	params := p.parseParamList()
	var returns []ast.TypeNode
	for !p.check(token.LBrace) && !p.atEOF() {
		returns = append(returns, p.parseTypeNode())
		if !p.match(token.Comma) {
			break
		}
	}
	body := p.parseBlock()
	return &ast.FuncDecl{Name: nameTok.Lexeme, Params: params, ReturnTypes: returns, Body: body, BaseDecl: ast.BaseDecl{Span: p.spanFrom(start)}}
}

func (p *Parser) parseEventDecl() *ast.EventDecl {
	start := p.next() // 'on'
	nameTok, ok := p.expect(token.Ident, "event name")
	if !ok {
		p.recover()
		return nil
	}
	params := p.parseParamList()
	body := p.parseBlock()
	return &ast.EventDecl{Name: nameTok.Lexeme, Params: params, Body: body, BaseDecl: ast.BaseDecl{Span: p.spanFrom(start)}}
}

// ---- statements ----

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	if !p.expectPunct(token.LBrace, "{") {
		p.recover()
		return &ast.BlockStmt{BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
	}
	p.skipNewlines()
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEOF() {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	if !p.expectPunct(token.RBrace, "}") {
		p.recover()
	}
	return &ast.BlockStmt{Stmts: stmts, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Var:
		return p.parseLocalVarStmt()
	case token.If:
		return p.parseIfStmt()
	case token.For:
		return p.parseForStmt()
	case token.While:
		return p.parseWhileStmt()
	case token.Switch:
		return p.parseSwitchStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.Break:
		start := p.next()
		return &ast.BreakStmt{BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
	case token.Continue:
		start := p.next()
		return &ast.ContinueStmt{BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseLocalVarStmt() ast.Stmt {
	start := p.next() // 'var'
	nameTok, ok := p.expect(token.Ident, "variable name")
	if !ok {
		p.recover()
		return nil
	}
	var vtype ast.TypeNode
	if !p.check(token.Assign) {
		vtype = p.parseTypeNode()
	}
	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpr()
	}
	return &ast.LocalVarStmt{Name: nameTok.Lexeme, Type: vtype, Init: init, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

// parseSimpleStmt handles short declarations, assignments, and bare
// expression statements, disambiguated with one token of lookahead
// plus backtracking for the `Ident (, Ident)* :=` short-declaration
// form (§4.2).
func (p *Parser) parseSimpleStmt() ast.Stmt {
	start := p.peek()
	if p.check(token.Ident) && p.looksLikeShortDecl() {
		return p.parseShortDecl()
	}

	expr := p.parseExpr()
	if op, ok := assignOpFor(p.peek().Kind); ok {
		p.next()
		value := p.parseExpr()
		return &ast.AssignStmt{Target: expr, Op: op, Value: value, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
	}
	return &ast.ExprStmt{X: expr, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

func assignOpFor(k token.Kind) (ast.AssignOp, bool) {
	switch k {
	case token.Assign:
		return ast.AssignSet, true
	case token.PlusEq:
		return ast.AssignAdd, true
	case token.MinusEq:
		return ast.AssignSub, true
	case token.StarEq:
		return ast.AssignMul, true
	case token.SlashEq:
		return ast.AssignDiv, true
	}
	return 0, false
}

// looksLikeShortDecl scans ahead, without consuming, for an
// Ident(,Ident)* sequence immediately followed by `:=` (§4.2).
func (p *Parser) looksLikeShortDecl() bool {
	i := 0
	if p.peekN(i).Kind != token.Ident {
		return false
	}
	i++
	for p.peekN(i).Kind == token.Comma {
		i++
		if p.peekN(i).Kind != token.Ident {
			return false
		}
		i++
	}
	return p.peekN(i).Kind == token.Walrus
}

func (p *Parser) parseShortDecl() ast.Stmt {
	start := p.peek()
	var names []string
	for {
		nameTok, _ := p.expect(token.Ident, "identifier")
		names = append(names, nameTok.Lexeme)
		if !p.match(token.Comma) {
			break
		}
	}
	p.expectPunct(token.Walrus, ":=")
	var exprs []ast.Expr
	for {
		exprs = append(exprs, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	return &ast.ShortDeclStmt{Names: names, Exprs: exprs, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.next() // 'if'
	cond := p.parseExpr()
	then := p.parseBlock()
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	for p.check(token.Else) {
		p.next()
		if p.check(token.If) {
			p.next()
			c := p.parseExpr()
			b := p.parseBlock()
			stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Cond: c, Body: b})
			continue
		}
		stmt.Else = p.parseBlock()
		break
	}
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.next() // 'while'
	cond := p.parseExpr()
	body := p.parseBlock()
	// while is lowered into for right here, so downstream stages see
	// only ForStmt (§4.2).
	return &ast.ForStmt{Cond: cond, Body: body, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

// parseForStmt distinguishes the three for-forms by scanning ahead,
// brace/bracket/paren-balanced, for a top-level `;` before the
// body's opening `{` (§4.2).
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.next() // 'for'

	if p.check(token.LBrace) {
		body := p.parseBlock()
		return &ast.ForStmt{Body: body, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
	}

	if p.scanHasTopLevelSemicolonBeforeBrace() {
		var initStmt ast.Stmt
		if !p.check(token.Semicolon) {
			initStmt = p.parseSimpleStmtOrVar()
		}
		p.expectPunct(token.Semicolon, ";")
		var cond ast.Expr
		if !p.check(token.Semicolon) {
			cond = p.parseExpr()
		}
		p.expectPunct(token.Semicolon, ";")
		var post ast.Stmt
		if !p.check(token.LBrace) {
			post = p.parseSimpleStmtOrVar()
		}
		body := p.parseBlock()
		return &ast.ForStmt{Init: initStmt, Cond: cond, Post: post, Body: body, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
	}

	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForStmt{Cond: cond, Body: body, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

func (p *Parser) parseSimpleStmtOrVar() ast.Stmt {
	if p.check(token.Var) {
		return p.parseLocalVarStmt()
	}
	return p.parseSimpleStmt()
}

// scanHasTopLevelSemicolonBeforeBrace looks ahead, tracking
// bracket/paren/brace nesting, for a depth-0 `;` before the first
// depth-0 `{` (§4.2's "for" parsing).
func (p *Parser) scanHasTopLevelSemicolonBeforeBrace() bool {
	depth := 0
	for i := 0; ; i++ {
		t := p.peekN(i)
		switch t.Kind {
		case token.EOF:
			return false
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.LBrace:
			if depth == 0 {
				return false
			}
			depth++
		case token.RBrace:
			depth--
		case token.Semicolon:
			if depth == 0 {
				return true
			}
		}
	}
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	start := p.next() // 'switch'
	tag := p.parseExpr()
	p.expectPunct(token.LBrace, "{")
	p.skipNewlines()
	stmt := &ast.SwitchStmt{Tag: tag}
	for p.check(token.Case) {
		p.next()
		var vals []ast.Expr
		for {
			vals = append(vals, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expectPunct(token.Colon, ":")
		p.skipNewlines()
		body := p.parseCaseBody()
		stmt.Cases = append(stmt.Cases, ast.SwitchCase{Values: vals, Body: body})
	}
	if p.check(token.Default) {
		p.next()
		p.expectPunct(token.Colon, ":")
		p.skipNewlines()
		stmt.Default = p.parseCaseBody()
	}
	p.expectPunct(token.RBrace, "}")
	stmt.SetSpan(p.spanFrom(start))
	return stmt
}

func (p *Parser) parseCaseBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.Case) && !p.check(token.Default) && !p.check(token.RBrace) && !p.atEOF() {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	return stmts
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.next() // 'return'
	var values []ast.Expr
	if !p.check(token.Newline) && !p.check(token.RBrace) && !p.atEOF() {
		values = append(values, p.parseExpr())
		for p.match(token.Comma) {
			values = append(values, p.parseExpr())
		}
	}
	return &ast.ReturnStmt{Values: values, BaseStmt: ast.BaseStmt{Span: p.spanFrom(start)}}
}

// ---- expressions ----

// precedence table, low to high, matching §4.2.
var precedence = map[token.Kind]int{
	token.OrOr:  1,
	token.AndAnd: 2,
	token.Pipe:  3,
	token.Caret: 4,
	token.Amp:   5,
	token.Eq:    6, token.NotEq: 6,
	token.Lt: 7, token.Gt: 7, token.LtEq: 7, token.GtEq: 7,
	token.Shl: 8, token.Shr: 8,
	token.Plus: 9, token.Minus: 9,
	token.Star: 10, token.Slash: 10, token.Percent: 10,
}

var binOpFor = map[token.Kind]ast.BinaryOp{
	token.OrOr: ast.BinOrOr, token.AndAnd: ast.BinAndAnd,
	token.Pipe: ast.BinOr, token.Caret: ast.BinXor, token.Amp: ast.BinAnd,
	token.Eq: ast.BinEq, token.NotEq: ast.BinNotEq,
	token.Lt: ast.BinLt, token.Gt: ast.BinGt, token.LtEq: ast.BinLtEq, token.GtEq: ast.BinGtEq,
	token.Shl: ast.BinShl, token.Shr: ast.BinShr,
	token.Plus: ast.BinAdd, token.Minus: ast.BinSub,
	token.Star: ast.BinMul, token.Slash: ast.BinDiv, token.Percent: ast.BinMod,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(1)
}

// parseBinary implements precedence-climbing over the table above,
// generalizing the teacher's cascade of single-precedence-level
// parseX functions (lang/parse/parser.go parseLogicalOr/And/...) into
// one loop driven by a precedence map, since RL's table has more
// levels (§4.2).
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := precedence[p.peek().Kind]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.next()
		right := p.parseBinary(prec + 1)
		ls, end := left.GetSpan(), p.peek()
		left = &ast.BinaryExpr{
			Op: binOpFor[opTok.Kind], Left: left, Right: right,
			BaseExpr: p.newExprBase(ast.Span{StartLine: ls.StartLine, StartCol: ls.StartCol, EndLine: end.Line, EndCol: end.Column}),
		}
	}
}

func (p *Parser) newExprBase(span ast.Span) ast.BaseExpr {
	return ast.BaseExpr{Span: span, Eid: p.ids.Next()}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.peek()
	if p.check(token.Minus) {
		p.next()
		x := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.UnaryNeg, X: x, BaseExpr: p.newExprBase(p.spanFrom(start))}
	}
	if p.check(token.Not) {
		p.next()
		x := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.UnaryNot, X: x, BaseExpr: p.newExprBase(p.spanFrom(start))}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.peek()
	expr := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.next()
			fieldTok, _ := p.expect(token.Ident, "field name")
			expr = &ast.FieldExpr{Object: expr, Field: fieldTok.Lexeme, BaseExpr: p.newExprBase(p.spanFrom(start))}
		case token.LBracket:
			p.next()
			idx := p.parseExpr()
			p.expectPunct(token.RBracket, "]")
			expr = &ast.IndexExpr{Object: expr, Index: idx, BaseExpr: p.newExprBase(p.spanFrom(start))}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.peek()
	switch start.Kind {
	case token.Int:
		p.next()
		return &ast.IntLit{Value: start.Lexeme, BaseExpr: p.newExprBase(p.spanFrom(start))}
	case token.Float:
		p.next()
		return &ast.FloatLit{Value: start.Lexeme, BaseExpr: p.newExprBase(p.spanFrom(start))}
	case token.Bool:
		p.next()
		return &ast.BoolLit{Value: start.Lexeme == "true", BaseExpr: p.newExprBase(p.spanFrom(start))}
	case token.String:
		p.next()
		return &ast.StringLit{Value: start.Lexeme, BaseExpr: p.newExprBase(p.spanFrom(start))}
	case token.LParen:
		p.next()
		x := p.parseExpr()
		p.expectPunct(token.RParen, ")")
		return &ast.GroupExpr{X: x, BaseExpr: p.newExprBase(p.spanFrom(start))}
	case token.LBracket:
		return p.parseArrayLit(start)
	case token.Ident:
		return p.parseIdentStartingExpr(start)
	case token.IntType, token.FloatType, token.BoolType, token.AngleType:
		// Type-conversion calls (`int(x)`, `float(x)`, `angle(x)`,
		// §4.3 "Call: Type conversion calls") spell the callee with a
		// token kind the lexer keeps distinct from Ident (§3.1's
		// reserved type keywords), so they need their own primary
		// case rather than falling through parseIdentStartingExpr.
		p.next()
		if !p.check(token.LParen) {
			p.errorf("expected '(' after %s", start.Lexeme)
			p.recover()
			return &ast.IntLit{Value: "0", BaseExpr: p.newExprBase(p.spanFrom(start))}
		}
		args := p.parseCallArgs()
		return &ast.CallExpr{Callee: start.Lexeme, Args: args, BaseExpr: p.newExprBase(p.spanFrom(start))}
	default:
		p.errorf("expected an expression, got %s", start.Kind)
		p.recover()
		return &ast.IntLit{Value: "0", BaseExpr: p.newExprBase(p.spanFrom(start))}
	}
}

func (p *Parser) parseArrayLit(start token.Token) ast.Expr {
	p.next() // '['
	var elems []ast.Expr
	for !p.check(token.RBracket) && !p.atEOF() {
		elems = append(elems, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expectPunct(token.RBracket, "]")
	return &ast.ArrayLit{Elements: elems, BaseExpr: p.newExprBase(p.spanFrom(start))}
}

// parseCallArgs parses a parenthesised, comma-separated argument list;
// the caller has already confirmed the next token is '('.
func (p *Parser) parseCallArgs() []ast.Expr {
	p.next() // '('
	var args []ast.Expr
	for !p.check(token.RParen) && !p.atEOF() {
		args = append(args, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expectPunct(token.RParen, ")")
	return args
}

// parseIdentStartingExpr resolves the call/struct-literal/plain-ident
// ambiguity that all begin with an identifier (§4.2: struct literals
// admitted only when the name is a pre-scanned declared type name).
func (p *Parser) parseIdentStartingExpr(start token.Token) ast.Expr {
	name := p.next().Lexeme

	if p.check(token.LParen) {
		args := p.parseCallArgs()
		return &ast.CallExpr{Callee: name, Args: args, BaseExpr: p.newExprBase(p.spanFrom(start))}
	}

	if p.check(token.LBrace) && p.types[name] {
		p.next()
		p.skipNewlines()
		var fields []ast.StructFieldInit
		for !p.check(token.RBrace) && !p.atEOF() {
			fnameTok, _ := p.expect(token.Ident, "field name")
			p.expectPunct(token.Colon, ":")
			val := p.parseExpr()
			fields = append(fields, ast.StructFieldInit{Name: fnameTok.Lexeme, Value: val})
			p.skipNewlines()
			if !p.match(token.Comma) {
				break
			}
			p.skipNewlines()
		}
		p.expectPunct(token.RBrace, "}")
		return &ast.StructLit{TypeName: name, Fields: fields, BaseExpr: p.newExprBase(p.spanFrom(start))}
	}

	return &ast.Ident{Name: name, BaseExpr: p.newExprBase(p.spanFrom(start))}
}
