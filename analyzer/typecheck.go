package analyzer

import (
	"github.com/gmofishsauce/rlc/ast"
)

// ============================================================
// Pass 2 — body type-checking (§4.3 Pass 2)
// ============================================================

// checkGlobalInits type-checks every global's initializer expression
// against the global's resolved type, populating expr_info for each
// one so the emitter's global-initialization pass (§4.4 "Global
// initialization") can lower them the same way it lowers any other
// expression. Pass 1 only folds initializers well enough to infer a
// type for offset assignment; struct/array literal initializers and
// any type mismatch surface here instead.
func (a *Analyzer) checkGlobalInits() {
	a.scopes = newScopeStack()
	a.scopes.push()
	for _, vd := range a.prog.Globals {
		if vd.Init == nil {
			continue
		}
		sym, ok := a.result.Symbols[vd.Name]
		if !ok {
			continue // duplicate declaration, already reported in Pass 1
		}
		initT := a.typeCheckExpr(vd.Init)
		if !initT.Equal(sym.Type) {
			a.errorf(vd.Init.GetSpan(), "cannot initialize %s (%s) with value of type %s", vd.Name, sym.Type, initT)
		}
	}
	a.scopes.pop()
}

func (a *Analyzer) pass2() {
	for _, fd := range a.prog.Funcs {
		info, ok := a.result.Funcs[fd.Name]
		if !ok {
			continue // duplicate declaration, already reported in Pass 1
		}
		a.typeCheckFunc(fd.Name, info, fd.Params, fd.Body)
	}
	for _, ed := range a.prog.Events {
		name := "on_" + ed.Name
		info, ok := a.result.Funcs[name]
		if !ok {
			continue
		}
		a.typeCheckFunc(name, info, ed.Params, ed.Body)
	}
}

func (a *Analyzer) typeCheckFunc(name string, info *ast.FuncInfo, params []ast.Param, body *ast.BlockStmt) {
	a.currentFuncName = name
	a.currentReturns = info.ReturnTypes
	a.curLocals = nil
	a.loopDepth = 0
	a.scopes = newScopeStack()
	a.scopes.push()
	for i, p := range params {
		if i >= len(info.ParamTypes) {
			break
		}
		sym := &ast.SymbolInfo{Name: p.Name, Type: info.ParamTypes[i], Scope: ast.ScopeParam, Location: len(a.curLocals)}
		if !a.scopes.declare(p.Name, sym) {
			a.errorf(p.Type.GetSpan(), "duplicate parameter: %s", p.Name)
		}
		a.curLocals = append(a.curLocals, sym)
	}
	a.typeCheckBlockNoScope(body)
	a.scopes.pop()
	a.result.FuncLocals[name] = a.curLocals
}

func (a *Analyzer) typeCheckBlock(b *ast.BlockStmt) {
	a.scopes.push()
	a.typeCheckBlockNoScope(b)
	a.scopes.pop()
}

// typeCheckBlockNoScope walks a block's statements without pushing a
// fresh scope frame, used for a function's outer body (which shares
// the parameter frame). A for-loop body goes through typeCheckBlock and
// gets its own frame nested inside the loop-header frame that holds
// the loop variable.
func (a *Analyzer) typeCheckBlockNoScope(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		a.typeCheckStmt(s)
	}
}

func (a *Analyzer) declareLocal(span ast.Span, name string, t *ast.Type) {
	sym := &ast.SymbolInfo{Name: name, Type: t, Scope: ast.ScopeLocal, Location: len(a.curLocals)}
	if !a.scopes.declare(name, sym) {
		a.errorf(span, "duplicate declaration in this scope: %s", name)
		return
	}
	a.curLocals = append(a.curLocals, sym)
}

func (a *Analyzer) typeCheckStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		a.typeCheckBlock(st)

	case *ast.LocalVarStmt:
		var t *ast.Type
		if st.Type != nil {
			t = a.resolveTypeNode(st.Type)
		}
		if st.Init != nil {
			initT := a.typeCheckExpr(st.Init)
			if t == nil {
				t = initT
			} else if !t.Equal(initT) {
				a.errorf(st.Init.GetSpan(), "cannot initialize %s (%s) with value of type %s", st.Name, t, initT)
			}
		}
		if t == nil {
			a.errorf(st.GetSpan(), "cannot determine type of %s", st.Name)
			t = ast.Void
		}
		a.declareLocal(st.GetSpan(), st.Name, t)

	case *ast.ShortDeclStmt:
		a.typeCheckShortDecl(st)

	case *ast.AssignStmt:
		a.typeCheckAssign(st)

	case *ast.IfStmt:
		a.checkCondIsBool(st.Cond)
		a.typeCheckBlock(st.Then)
		for _, e := range st.Elifs {
			a.checkCondIsBool(e.Cond)
			a.typeCheckBlock(e.Body)
		}
		if st.Else != nil {
			a.typeCheckBlock(st.Else)
		}

	case *ast.ForStmt:
		a.scopes.push()
		if st.Init != nil {
			a.typeCheckStmt(st.Init)
		}
		if st.Cond != nil {
			a.checkCondIsBool(st.Cond)
		}
		a.loopDepth++
		a.typeCheckBlock(st.Body)
		if st.Post != nil {
			a.typeCheckStmt(st.Post)
		}
		a.loopDepth--
		a.scopes.pop()

	case *ast.SwitchStmt:
		tagT := a.typeCheckExpr(st.Tag)
		for _, c := range st.Cases {
			for _, v := range c.Values {
				vt := a.typeCheckExpr(v)
				if !vt.Equal(tagT) {
					a.errorf(v.GetSpan(), "case value type %s does not match switch tag type %s", vt, tagT)
				}
			}
			a.scopes.push()
			for _, bs := range c.Body {
				a.typeCheckStmt(bs)
			}
			a.scopes.pop()
		}
		if st.Default != nil {
			a.scopes.push()
			for _, bs := range st.Default {
				a.typeCheckStmt(bs)
			}
			a.scopes.pop()
		}

	case *ast.ReturnStmt:
		if len(st.Values) != len(a.currentReturns) {
			a.errorf(st.GetSpan(), "function %s: return has %d value(s), want %d", a.currentFuncName, len(st.Values), len(a.currentReturns))
		}
		for i, v := range st.Values {
			vt := a.typeCheckExpr(v)
			if i < len(a.currentReturns) && !vt.Equal(a.currentReturns[i]) {
				a.errorf(v.GetSpan(), "function %s: return value %d has type %s, want %s", a.currentFuncName, i+1, vt, a.currentReturns[i])
			}
		}

	case *ast.BreakStmt:
		if a.loopDepth == 0 {
			a.errorf(st.GetSpan(), "break outside a loop")
		}

	case *ast.ContinueStmt:
		if a.loopDepth == 0 {
			a.errorf(st.GetSpan(), "continue outside a loop")
		}

	case *ast.ExprStmt:
		a.typeCheckExpr(st.X)
	}
}

func (a *Analyzer) checkCondIsBool(cond ast.Expr) {
	t := a.typeCheckExpr(cond)
	if !t.Equal(ast.Bool) {
		a.errorf(cond.GetSpan(), "condition must be bool, got %s", t)
	}
}

func (a *Analyzer) typeCheckShortDecl(st *ast.ShortDeclStmt) {
	if len(st.Exprs) == 1 && len(st.Names) > 1 {
		call, ok := st.Exprs[0].(*ast.CallExpr)
		if !ok {
			a.errorf(st.GetSpan(), "short declaration of %d names requires a multi-value call", len(st.Names))
			for _, n := range st.Names {
				a.declareLocal(st.GetSpan(), n, ast.Void)
			}
			return
		}
		fi := a.lookupCallable(call)
		a.typeCheckExpr(call)
		if fi == nil {
			for _, n := range st.Names {
				a.declareLocal(st.GetSpan(), n, ast.Void)
			}
			return
		}
		if len(fi.ReturnTypes) != len(st.Names) {
			a.errorf(st.GetSpan(), "%s returns %d value(s), cannot assign to %d name(s)", call.Callee, len(fi.ReturnTypes), len(st.Names))
		}
		for i, n := range st.Names {
			t := ast.Void
			if i < len(fi.ReturnTypes) {
				t = fi.ReturnTypes[i]
			}
			a.declareLocal(st.GetSpan(), n, t)
		}
		return
	}

	if len(st.Names) != len(st.Exprs) {
		a.errorf(st.GetSpan(), "short declaration: %d name(s) but %d value(s)", len(st.Names), len(st.Exprs))
	}
	for i, n := range st.Names {
		var t *ast.Type = ast.Void
		if i < len(st.Exprs) {
			t = a.typeCheckExpr(st.Exprs[i])
		}
		a.declareLocal(st.GetSpan(), n, t)
	}
}

// lookupCallable peeks at the callee's FuncInfo without re-running the
// full call type-check, used by short-declaration's multi-return path
// to discover how many names to bind before typeCheckExpr(call) runs
// its own (redundant but harmless) argument checking.
func (a *Analyzer) lookupCallable(call *ast.CallExpr) *ast.FuncInfo {
	return a.result.Funcs[call.Callee]
}

func (a *Analyzer) typeCheckAssign(st *ast.AssignStmt) {
	targetInfo := a.typeCheckExprInfo(st.Target)
	valT := a.typeCheckExpr(st.Value)
	if !targetInfo.IsLValue {
		a.errorf(st.Target.GetSpan(), "assignment target is not assignable")
		return
	}
	switch st.Op {
	case ast.AssignSet:
		if !targetInfo.Type.Equal(valT) {
			a.errorf(st.GetSpan(), "cannot assign %s to target of type %s", valT, targetInfo.Type)
		}
	default:
		resT := a.arithmeticResultType(st.GetSpan(), opForAssign(st.Op), targetInfo.Type, valT)
		if !resT.Equal(targetInfo.Type) {
			a.errorf(st.GetSpan(), "compound assignment result type %s does not match target type %s", resT, targetInfo.Type)
		}
	}
}

func opForAssign(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.BinAdd
	case ast.AssignSub:
		return ast.BinSub
	case ast.AssignMul:
		return ast.BinMul
	case ast.AssignDiv:
		return ast.BinDiv
	default:
		return ast.BinAdd
	}
}
