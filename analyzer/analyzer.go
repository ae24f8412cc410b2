// Package analyzer implements the robot language's two-pass semantic
// analyzer (§4.3): pass 1 collects declarations into symbol, function,
// struct, and constant tables; pass 2 type-checks every function and
// event body against those tables. The structure — a single Analyzer
// holding accumulated tables plus an errors/diagnostics sink, split
// into a declaration-collection phase and a type-check phase — is
// grounded on the teacher's lang/sem/analyzer.go (Analyzer.errors,
// buildSymbolTables, typeCheck), generalized from its single-pass
// flat table into a richer scope-stack-based Pass 2 because RL has
// nested block scoping that the teacher's source language does not.
package analyzer

import (
	"github.com/gmofishsauce/rlc/ast"
	"github.com/gmofishsauce/rlc/token"
)

// Analyzer walks a parsed Program and produces an AnalysisResult plus
// any diagnostics. One Analyzer is used per compilation (§3.6).
type Analyzer struct {
	prog   *ast.Program
	diags  *token.DiagnosticList
	result *ast.AnalysisResult

	scopes    *scopeStack
	loopDepth int

	// currentFunc/currentReturns describe the function or event body
	// currently being walked in Pass 2, for return-type checks.
	currentFuncName string
	currentReturns  []*ast.Type

	nextGlobalOffset int

	// curLocals accumulates the current function's SymbolInfo in
	// declaration order (params first) for ast.AnalysisResult.FuncLocals.
	curLocals []*ast.SymbolInfo
}

// Analyze runs both passes over prog and returns the resolved tables
// together with every diagnostic recorded along the way. It never
// panics on malformed input; rule violations become diagnostics with
// the offending node's span (§4.3 "Failure semantics").
func Analyze(prog *ast.Program) (*ast.AnalysisResult, *token.DiagnosticList) {
	a := &Analyzer{
		prog:             prog,
		diags:            &token.DiagnosticList{},
		result:           ast.NewAnalysisResult(),
		scopes:           newScopeStack(),
		nextGlobalOffset: 64, // bytes [0,64) reserved, §3.4
	}
	a.pass1()
	a.checkGlobalInits()
	a.pass2()
	a.checkTick()
	return a.result, a.diags
}

func (a *Analyzer) errorf(sp ast.Span, format string, args ...interface{}) {
	a.diags.Add(token.PhaseAnalyze, token.Position{Line: sp.StartLine, Column: sp.StartCol}, format, args...)
}

func (a *Analyzer) errorHint(sp ast.Span, hint string, format string, args ...interface{}) {
	a.diags.AddHint(token.PhaseAnalyze, token.Position{Line: sp.StartLine, Column: sp.StartCol}, hint, format, args...)
}

// ============================================================
// Pass 1 — declaration collection (§4.3 Pass 1)
// ============================================================

func (a *Analyzer) pass1() {
	registerAPIFunctions(a.result.Funcs)

	for _, td := range a.prog.Types {
		a.registerStruct(td)
	}
	for _, cd := range a.prog.Consts {
		a.registerConst(cd)
	}
	for _, vd := range a.prog.Globals {
		a.registerGlobal(vd)
	}
	for _, fd := range a.prog.Funcs {
		a.registerFunc(fd)
	}
	for _, ed := range a.prog.Events {
		a.registerEvent(ed)
	}
	a.result.GlobalMemorySize = a.nextGlobalOffset
}

func (a *Analyzer) registerStruct(td *ast.TypeDecl) {
	if _, exists := a.result.Structs[td.Name]; exists {
		a.errorf(td.GetSpan(), "duplicate struct definition: %s", td.Name)
		return
	}
	fields := make([]ast.StructField, 0, len(td.Fields))
	offset := 0
	for _, f := range td.Fields {
		ft := a.resolveTypeNode(f.Type)
		fields = append(fields, ast.StructField{
			Name:   f.Name,
			Type:   ft,
			Offset: offset,
			Size:   ft.ByteSize(),
		})
		offset += ft.ByteSize()
	}
	a.result.Structs[td.Name] = ast.NewStruct(td.Name, fields)
}

// resolveTypeNode resolves an untyped TypeNode against primitives and
// previously declared structs. An unresolvable named type or illegal
// primitive keyword yields ast.Void with a diagnostic rather than nil,
// so callers can keep walking without a nil-check at every site
// (§4.3 "Failure semantics").
func (a *Analyzer) resolveTypeNode(t ast.TypeNode) *ast.Type {
	switch n := t.(type) {
	case *ast.PrimitiveType:
		switch n.Name {
		case "int":
			return ast.Int
		case "float":
			return ast.Float
		case "bool":
			return ast.Bool
		case "angle":
			return ast.Angle
		default:
			a.errorf(n.GetSpan(), "unknown primitive type %q", n.Name)
			return ast.Void
		}
	case *ast.ArrayTypeNode:
		elem := a.resolveTypeNode(n.Element)
		return ast.NewArray(n.Size, elem)
	case *ast.NamedType:
		if st, ok := a.result.Structs[n.Name]; ok {
			return st
		}
		a.errorf(n.GetSpan(), "unknown type %q", n.Name)
		return ast.Void
	default:
		return ast.Void
	}
}

func (a *Analyzer) registerConst(cd *ast.ConstDecl) {
	if _, exists := a.result.Consts[cd.Name]; exists {
		a.errorf(cd.GetSpan(), "duplicate constant definition: %s", cd.Name)
		return
	}
	v, t, ok := ast.FoldConst(cd.Expr, a.result.Consts)
	if !ok {
		a.errorf(cd.Expr.GetSpan(), "const %s: initializer is not a constant expression", cd.Name)
		return
	}
	a.result.Consts[cd.Name] = &ast.ConstInfo{Value: v, Type: t}
}

func (a *Analyzer) registerGlobal(vd *ast.VarDecl) {
	if _, exists := a.result.Symbols[vd.Name]; exists {
		a.errorf(vd.GetSpan(), "duplicate global variable: %s", vd.Name)
		return
	}
	var t *ast.Type
	if vd.Type != nil {
		t = a.resolveTypeNode(vd.Type)
	} else if vd.Init != nil {
		// Global type inference from initializer is limited to the
		// restricted constant grammar; richer inference happens in
		// Pass 2 for locals, but globals need a type during Pass 1 to
		// assign a memory offset.
		if _, ft, ok := ast.FoldConst(vd.Init, a.result.Consts); ok {
			t = ft
		}
	}
	if t == nil {
		a.errorf(vd.GetSpan(), "cannot determine type of global %s", vd.Name)
		t = ast.Void
	}
	offset := a.nextGlobalOffset
	a.nextGlobalOffset += t.ByteSize()
	a.result.Symbols[vd.Name] = &ast.SymbolInfo{
		Name: vd.Name, Type: t, Scope: ast.ScopeGlobal, Location: offset,
	}
}

func (a *Analyzer) registerFunc(fd *ast.FuncDecl) {
	if _, exists := a.result.Funcs[fd.Name]; exists {
		a.errorf(fd.GetSpan(), "duplicate function definition: %s", fd.Name)
		return
	}
	paramTypes := make([]*ast.Type, len(fd.Params))
	paramNames := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		paramTypes[i] = a.resolveTypeNode(p.Type)
		paramNames[i] = p.Name
	}
	returns := make([]*ast.Type, len(fd.ReturnTypes))
	for i, rt := range fd.ReturnTypes {
		returns[i] = a.resolveTypeNode(rt)
	}
	info := &ast.FuncInfo{
		Name: fd.Name, ParamTypes: paramTypes, ParamNames: paramNames,
		ReturnTypes: returns,
	}
	if fd.Name == "init" {
		info.WasmExportName = "init"
	}
	a.result.Funcs[fd.Name] = info
}

func (a *Analyzer) registerEvent(ed *ast.EventDecl) {
	sig, known := eventSignatures[ed.Name]
	if !known {
		a.errorf(ed.GetSpan(), "unknown event %q", ed.Name)
		return
	}
	if len(ed.Params) != len(sig) {
		a.errorf(ed.GetSpan(), "event %s: expected %d parameter(s), got %d", ed.Name, len(sig), len(ed.Params))
		return
	}
	paramTypes := make([]*ast.Type, len(ed.Params))
	paramNames := make([]string, len(ed.Params))
	for i, p := range ed.Params {
		pt := a.resolveTypeNode(p.Type)
		if !pt.Equal(sig[i]) {
			a.errorf(p.Type.GetSpan(), "event %s: parameter %d must be %s, got %s", ed.Name, i+1, sig[i], pt)
		}
		paramTypes[i] = sig[i]
		paramNames[i] = p.Name
	}
	name := "on_" + ed.Name
	if _, exists := a.result.Funcs[name]; exists {
		a.errorf(ed.GetSpan(), "duplicate event handler: %s", ed.Name)
		return
	}
	a.result.Funcs[name] = &ast.FuncInfo{
		Name: name, ParamTypes: paramTypes, ParamNames: paramNames,
		IsEvent: true, WasmExportName: name,
	}
}

// checkTick enforces invariant 5 (§3.5): tick must exist, take no
// parameters, and return nothing.
func (a *Analyzer) checkTick() {
	fi, ok := a.result.Funcs["tick"]
	if !ok {
		a.diags.Add(token.PhaseAnalyze, token.Position{Line: 1, Column: 1}, "missing required function: tick")
		return
	}
	if len(fi.ParamTypes) != 0 || len(fi.ReturnTypes) != 0 {
		a.diags.Add(token.PhaseAnalyze, token.Position{Line: 1, Column: 1}, "tick must take no parameters and return no value")
	}
	fi.WasmExportName = "tick"
}
