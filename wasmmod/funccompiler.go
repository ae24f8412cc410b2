package wasmmod

import "github.com/gmofishsauce/rlc/ast"

// localGroup is a run of consecutive locals sharing a WASM value type,
// the unit the locals vector is encoded in (grouping keeps the vector
// short instead of one entry per local), mirroring the wasmbe
// grounding package's compactLocals.
type localGroup struct {
	count int
	vtype byte
}

// funcCompiler compiles one function or event body into a WASM code
// entry. It re-derives the analyzer's block scoping with its own
// codeScopeStack instead of trusting AnalysisResult.FuncLocals, which
// cannot distinguish two same-named locals declared in sibling blocks
// (see scope.go).
type funcCompiler struct {
	gen  *generator
	name string

	scopes *codeScopeStack

	// locals/cursor replay analyzer.FuncLocals[name] (params then body
	// locals, in declaration encounter order) one entry at a time as
	// each LocalVarStmt/ShortDeclStmt name is compiled, so a newly
	// declared local's resolved type comes from the exact SymbolInfo
	// the analyzer produced for it, with no re-derivation of type
	// nodes and no ambiguity from same-named locals in sibling blocks
	// (see scope.go).
	locals []*ast.SymbolInfo
	cursor int

	// returnTypes is this function's resolved return type list, used
	// only to recognize a composite return value at a ReturnStmt so
	// its address can be dropped rather than left on the stack (a
	// composite return has no WASM result slot; see funcSigFor).
	returnTypes []*ast.Type

	localTypes []byte // wasm value type per allocated local, by index
	nparams    int    // locals 0..nparams-1 are declared by the function signature
	body       []byte

	// breakTargets/continueTargets track the block-nesting depth a
	// break/continue must branch out to, one entry per enclosing loop.
	breakTargets    []int
	continueTargets []int
	depth           int
}

func newFuncCompiler(g *generator, name string) *funcCompiler {
	return &funcCompiler{gen: g, name: name, scopes: newCodeScopeStack(), locals: g.ar.FuncLocals[name]}
}

// nextLocalType advances the FuncLocals cursor and returns the
// resolved type the analyzer recorded for the local being declared at
// this exact point in the traversal.
func (fc *funcCompiler) nextLocalType() *ast.Type {
	if fc.cursor >= len(fc.locals) {
		return ast.Void
	}
	t := fc.locals[fc.cursor].Type
	fc.cursor++
	return t
}

func (fc *funcCompiler) allocLocal(vtype byte) int {
	idx := len(fc.localTypes)
	fc.localTypes = append(fc.localTypes, vtype)
	return idx
}

func (fc *funcCompiler) allocAnon(vtype byte) int {
	return fc.allocLocal(vtype)
}

func (fc *funcCompiler) bindParam(name string, t *ast.Type) {
	idx := fc.allocLocal(wasmType(t))
	fc.nparams++
	fc.cursor++
	fc.scopes.declare(name, localSlot{index: idx, typ: t, isAddr: t.IsComposite()})
}

// finish appends the closing end, encodes the accumulated locals into
// the compact-group format, and returns the complete code entry body
// (locals vector followed by instructions), per §4.4 "Module shape".
func (fc *funcCompiler) finish() []byte {
	fc.body = append(fc.body, opEnd)

	// Param locals (already present in fc.localTypes from bindParam)
	// are declared implicitly by the function's type signature and
	// must not be re-declared in the locals vector.
	var groups []localGroup
	for _, t := range fc.localTypes[fc.nparams:] {
		if len(groups) > 0 && groups[len(groups)-1].vtype == t {
			groups[len(groups)-1].count++
		} else {
			groups = append(groups, localGroup{count: 1, vtype: t})
		}
	}

	var localsContents []byte
	for _, grp := range groups {
		localsContents = append(localsContents, encodeLEB128U(uint64(grp.count))...)
		localsContents = append(localsContents, grp.vtype)
	}

	out := encodeVector(len(groups), localsContents)
	return append(out, fc.body...)
}

func (fc *funcCompiler) emitI32Const(v int) {
	fc.body = append(fc.body, opI32Const)
	fc.body = append(fc.body, encodeLEB128S(int64(v))...)
}

func (fc *funcCompiler) emitLocalGet(idx int) {
	fc.body = append(fc.body, opLocalGet)
	fc.body = append(fc.body, encodeLEB128U(uint64(idx))...)
}

func (fc *funcCompiler) emitLocalSet(idx int) {
	fc.body = append(fc.body, opLocalSet)
	fc.body = append(fc.body, encodeLEB128U(uint64(idx))...)
}

func (fc *funcCompiler) emitLocalTee(idx int) {
	fc.body = append(fc.body, opLocalTee)
	fc.body = append(fc.body, encodeLEB128U(uint64(idx))...)
}

func (fc *funcCompiler) emitLoad(t *ast.Type) {
	if t.Tag == ast.TFloat || t.Tag == ast.TAngle {
		fc.body = append(fc.body, opF32Load, 0x02, 0x00)
	} else {
		fc.body = append(fc.body, opI32Load, 0x02, 0x00)
	}
}

func (fc *funcCompiler) emitStore(t *ast.Type) {
	if t.Tag == ast.TFloat || t.Tag == ast.TAngle {
		fc.body = append(fc.body, opF32Store, 0x02, 0x00)
	} else {
		fc.body = append(fc.body, opI32Store, 0x02, 0x00)
	}
}

func (fc *funcCompiler) emitLoad8U() {
	fc.body = append(fc.body, opI32Load8U, 0x00, 0x00)
}

func (fc *funcCompiler) emitStore8() {
	fc.body = append(fc.body, opI32Store8, 0x00, 0x00)
}

// allocComposite reserves sz bytes in the module-wide composite area
// and returns the fixed base address (§4.4 "Composite locals": a
// composite local or parameter is an i32 handle holding a compile-time
// constant address, never a WASM local of struct/array type).
func (fc *funcCompiler) allocComposite(sz int) int {
	addr := fc.gen.nextCompositeOffset
	fc.gen.nextCompositeOffset += sz
	return addr
}

// ============================================================
// Statement lowering
// ============================================================

func (fc *funcCompiler) compileBlock(b *ast.BlockStmt) {
	fc.scopes.push()
	fc.compileBlockNoScope(b)
	fc.scopes.pop()
}

// compileBlockNoScope mirrors typeCheckBlockNoScope: used for the
// function's outer body, which shares the parameter frame. A for-loop
// body goes through compileBlock and gets its own frame nested inside
// the loop-header frame.
func (fc *funcCompiler) compileBlockNoScope(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		fc.compileStmt(s)
	}
}

func (fc *funcCompiler) compileStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		fc.compileBlock(st)

	case *ast.LocalVarStmt:
		fc.compileLocalVar(st)

	case *ast.ShortDeclStmt:
		fc.compileShortDecl(st)

	case *ast.AssignStmt:
		fc.compileAssign(st)

	case *ast.IfStmt:
		fc.compileIfStmt(st)

	case *ast.ForStmt:
		fc.compileForStmt(st)

	case *ast.SwitchStmt:
		fc.compileSwitchStmt(st)

	case *ast.ReturnStmt:
		for i, v := range st.Values {
			fc.compileExpr(v)
			if i < len(fc.returnTypes) && fc.returnTypes[i].IsComposite() {
				// No WASM result slot exists for a composite return
				// (funcSigFor drops it); drop the address we just
				// pushed so the stack matches the declared signature.
				fc.body = append(fc.body, opDrop)
			}
		}
		fc.body = append(fc.body, opReturn)

	case *ast.BreakStmt:
		target := fc.breakTargets[len(fc.breakTargets)-1]
		fc.body = append(fc.body, opBr)
		fc.body = append(fc.body, encodeLEB128U(uint64(fc.depth-target))...)

	case *ast.ContinueStmt:
		target := fc.continueTargets[len(fc.continueTargets)-1]
		fc.body = append(fc.body, opBr)
		fc.body = append(fc.body, encodeLEB128U(uint64(fc.depth-target))...)

	case *ast.ExprStmt:
		t := fc.compileExprDiscard(st.X)
		_ = t
	}
}

// compileExprDiscard compiles an expression statement, dropping any
// produced value (a bare call like move(1.0) leaves nothing to use).
func (fc *funcCompiler) compileExprDiscard(e ast.Expr) *ast.Type {
	t := fc.compileExpr(e)
	if t != nil && t != ast.Void {
		fc.body = append(fc.body, opDrop)
	}
	return t
}

func (fc *funcCompiler) declareScalarLocal(name string, t *ast.Type) int {
	idx := fc.allocLocal(wasmType(t))
	fc.scopes.declare(name, localSlot{index: idx, typ: t})
	return idx
}

func (fc *funcCompiler) declareCompositeLocal(name string, t *ast.Type) int {
	addr := fc.allocComposite(t.ByteSize())
	idx := fc.allocLocal(valI32)
	fc.scopes.declare(name, localSlot{index: idx, typ: t, isAddr: true})
	fc.emitI32Const(addr)
	fc.emitLocalSet(idx)
	return idx
}

func (fc *funcCompiler) compileLocalVar(st *ast.LocalVarStmt) {
	t := fc.nextLocalType()

	if t.IsComposite() {
		idx := fc.declareCompositeLocal(st.Name, t)
		if st.Init != nil {
			fc.initComposite(idx, t, st.Init)
		}
		return
	}

	idx := fc.declareScalarLocal(st.Name, t)
	if st.Init != nil {
		fc.compileExpr(st.Init)
	} else {
		fc.zeroValue(t)
	}
	fc.emitLocalSet(idx)
}

func (fc *funcCompiler) zeroValue(t *ast.Type) {
	switch t.Tag {
	case ast.TFloat, ast.TAngle:
		fc.body = append(fc.body, opF32Const)
		fc.body = append(fc.body, encodeF32(0)...)
	default:
		fc.emitI32Const(0)
	}
}

func (fc *funcCompiler) compileShortDecl(st *ast.ShortDeclStmt) {
	if len(st.Exprs) == 1 && len(st.Names) > 1 {
		call := st.Exprs[0].(*ast.CallExpr)
		info := fc.gen.ar.Funcs[call.Callee]
		fc.compileCallRaw(call, info)
		// Types must be pulled off the FuncLocals cursor in forward
		// declaration order to stay in sync with the analyzer, but
		// results land on the stack in call-return order, so locals
		// are popped in reverse.
		types := make([]*ast.Type, len(st.Names))
		for i := range st.Names {
			types[i] = fc.nextLocalType()
		}
		idxs := make([]int, len(st.Names))
		for i := range st.Names {
			idxs[i] = fc.declareScalarLocal(st.Names[i], types[i])
		}
		for i := len(st.Names) - 1; i >= 0; i-- {
			fc.emitLocalSet(idxs[i])
		}
		return
	}
	for i, n := range st.Names {
		t := fc.nextLocalType()
		if t.IsComposite() {
			idx := fc.declareCompositeLocal(n, t)
			fc.initComposite(idx, t, st.Exprs[i])
			continue
		}
		idx := fc.declareScalarLocal(n, t)
		fc.compileExpr(st.Exprs[i])
		fc.emitLocalSet(idx)
	}
}

// initComposite stores value's contents at the address held by the
// WASM local addrLocal: field-by-field / element-by-element for a
// literal, or a byte copy for any other composite-typed expression.
func (fc *funcCompiler) initComposite(addrLocal int, typ *ast.Type, value ast.Expr) {
	v := unwrapGroup(value)
	switch lit := v.(type) {
	case *ast.StructLit:
		fc.storeStructLiteral(addrLocal, typ, lit)
	case *ast.ArrayLit:
		fc.storeArrayLiteral(addrLocal, typ, lit)
	default:
		srcTmp := fc.allocAnon(valI32)
		fc.compileAddr(v)
		fc.emitLocalSet(srcTmp)
		fc.compileMemCopy(addrLocal, srcTmp, typ.ByteSize())
	}
}

func unwrapGroup(e ast.Expr) ast.Expr {
	for {
		g, ok := e.(*ast.GroupExpr)
		if !ok {
			return e
		}
		e = g.X
	}
}

func (fc *funcCompiler) storeStructLiteral(addrLocal int, typ *ast.Type, lit *ast.StructLit) {
	for _, f := range lit.Fields {
		sf, ok := typ.Field(f.Name)
		if !ok {
			continue
		}
		fc.emitLocalGet(addrLocal)
		if sf.Offset != 0 {
			fc.emitI32Const(sf.Offset)
			fc.body = append(fc.body, opI32Add)
		}
		if sf.Type.IsComposite() {
			tmp := fc.allocAnon(valI32)
			fc.emitLocalSet(tmp) // stash this field's address, computed above
			fc.initComposite(tmp, sf.Type, f.Value)
			continue
		}
		fc.compileExpr(f.Value)
		fc.emitStore(sf.Type)
	}
}

func (fc *funcCompiler) storeArrayLiteral(addrLocal int, typ *ast.Type, lit *ast.ArrayLit) {
	elemSize := typ.Elem.ByteSize()
	for i, elem := range lit.Elements {
		off := i * elemSize
		if typ.Elem.IsComposite() {
			fc.emitLocalGet(addrLocal)
			if off != 0 {
				fc.emitI32Const(off)
				fc.body = append(fc.body, opI32Add)
			}
			tmp := fc.allocAnon(valI32)
			fc.emitLocalSet(tmp)
			fc.initComposite(tmp, typ.Elem, elem)
			continue
		}
		fc.emitLocalGet(addrLocal)
		if off != 0 {
			fc.emitI32Const(off)
			fc.body = append(fc.body, opI32Add)
		}
		fc.compileExpr(elem)
		fc.emitStore(typ.Elem)
	}
}

// compileMemCopy copies size bytes from srcLocal to dstLocal using a
// byte-indexed loop, the same block/loop/br_if shape compileForStmt
// lowers a user for loop into.
func (fc *funcCompiler) compileMemCopy(dstLocal, srcLocal, size int) {
	if size == 0 {
		return
	}
	i := fc.allocAnon(valI32)
	fc.emitI32Const(0)
	fc.emitLocalSet(i)

	fc.body = append(fc.body, opBlock, blockVoid)
	fc.depth++
	fc.body = append(fc.body, opLoop, blockVoid)
	fc.depth++

	fc.emitLocalGet(i)
	fc.emitI32Const(size)
	fc.body = append(fc.body, opI32GeS)
	fc.body = append(fc.body, opBrIf)
	fc.body = append(fc.body, encodeLEB128U(1)...)

	fc.emitLocalGet(dstLocal)
	fc.emitLocalGet(i)
	fc.body = append(fc.body, opI32Add)
	fc.emitLocalGet(srcLocal)
	fc.emitLocalGet(i)
	fc.body = append(fc.body, opI32Add)
	fc.emitLoad8U()
	fc.emitStore8()

	fc.emitLocalGet(i)
	fc.emitI32Const(1)
	fc.body = append(fc.body, opI32Add)
	fc.emitLocalSet(i)

	fc.body = append(fc.body, opBr)
	fc.body = append(fc.body, encodeLEB128U(0)...)
	fc.body = append(fc.body, opEnd)
	fc.depth--
	fc.body = append(fc.body, opEnd)
	fc.depth--
}

func (fc *funcCompiler) compileIfStmt(st *ast.IfStmt) {
	fc.compileExpr(st.Cond)
	fc.body = append(fc.body, opIf, blockVoid)
	fc.depth++
	fc.compileBlock(st.Then)

	hasElse := len(st.Elifs) > 0 || st.Else != nil
	if hasElse {
		fc.body = append(fc.body, opElse)
		fc.compileElifChain(st.Elifs, st.Else)
	}
	fc.body = append(fc.body, opEnd)
	fc.depth--
}

func (fc *funcCompiler) compileElifChain(elifs []ast.ElifClause, els *ast.BlockStmt) {
	if len(elifs) == 0 {
		if els != nil {
			fc.compileBlock(els)
		}
		return
	}
	fc.compileExpr(elifs[0].Cond)
	fc.body = append(fc.body, opIf, blockVoid)
	fc.depth++
	fc.compileBlock(elifs[0].Body)
	fc.body = append(fc.body, opElse)
	fc.compileElifChain(elifs[1:], els)
	fc.body = append(fc.body, opEnd)
	fc.depth--
}

// compileForStmt lowers RL's three-part for loop into the
// block($break)/loop/br_if/block($continue)/body/end/post/br/end/end
// shape, the wasmbe grounding package's compileWhileStmt extended with
// an inner $continue block and a post statement run at the end of each
// iteration (before the back-edge, and also after a continue) rather
// than at the start.
func (fc *funcCompiler) compileForStmt(st *ast.ForStmt) {
	fc.scopes.push()
	if st.Init != nil {
		fc.compileStmt(st.Init)
	}

	fc.body = append(fc.body, opBlock, blockVoid)
	fc.depth++
	breakDepth := fc.depth
	fc.body = append(fc.body, opLoop, blockVoid)
	fc.depth++

	if st.Cond != nil {
		fc.compileExpr(st.Cond)
		fc.body = append(fc.body, opI32Eqz)
		fc.body = append(fc.body, opBrIf)
		fc.body = append(fc.body, encodeLEB128U(uint64(fc.depth-breakDepth))...)
	}

	fc.body = append(fc.body, opBlock, blockVoid)
	fc.depth++
	continueDepth := fc.depth

	fc.breakTargets = append(fc.breakTargets, breakDepth)
	fc.continueTargets = append(fc.continueTargets, continueDepth)
	fc.compileBlock(st.Body)
	fc.breakTargets = fc.breakTargets[:len(fc.breakTargets)-1]
	fc.continueTargets = fc.continueTargets[:len(fc.continueTargets)-1]

	fc.body = append(fc.body, opEnd)
	fc.depth--

	if st.Post != nil {
		fc.compileStmt(st.Post)
	}

	fc.body = append(fc.body, opBr)
	fc.body = append(fc.body, encodeLEB128U(0)...)
	fc.body = append(fc.body, opEnd)
	fc.depth--
	fc.body = append(fc.body, opEnd)
	fc.depth--
	fc.scopes.pop()
}

// compileSwitchStmt lowers to an outer block holding a chain of
// per-case equality tests; a matching case's body runs and then
// branches out of the outer block (no fallthrough, §4.1 "switch").
func (fc *funcCompiler) compileSwitchStmt(st *ast.SwitchStmt) {
	tagTmp := fc.allocAnon(wasmType(fc.gen.ar.TypeOf(st.Tag)))
	fc.compileExpr(st.Tag)
	fc.emitLocalSet(tagTmp)

	fc.body = append(fc.body, opBlock, blockVoid)
	fc.depth++
	outerDepth := fc.depth

	fc.breakTargets = append(fc.breakTargets, outerDepth)
	for _, c := range st.Cases {
		// One equality test per case value, folded with i32.or into a
		// single condition, so the body below compiles exactly once
		// per case regardless of how many values it matches — the
		// analyzer's typeCheckStmt visits c.Body once per case too.
		for i, v := range c.Values {
			fc.emitLocalGet(tagTmp)
			fc.compileExpr(v)
			fc.emitEq(fc.gen.ar.TypeOf(v))
			if i > 0 {
				fc.body = append(fc.body, opI32Or)
			}
		}
		fc.body = append(fc.body, opIf, blockVoid)
		fc.depth++
		fc.scopes.push()
		for _, s := range c.Body {
			fc.compileStmt(s)
		}
		fc.scopes.pop()
		fc.body = append(fc.body, opBr)
		fc.body = append(fc.body, encodeLEB128U(uint64(fc.depth-outerDepth))...)
		fc.body = append(fc.body, opEnd)
		fc.depth--
	}
	if st.Default != nil {
		fc.scopes.push()
		for _, s := range st.Default {
			fc.compileStmt(s)
		}
		fc.scopes.pop()
	}
	fc.breakTargets = fc.breakTargets[:len(fc.breakTargets)-1]

	fc.body = append(fc.body, opEnd)
	fc.depth--
}

func (fc *funcCompiler) emitEq(t *ast.Type) {
	if t != nil && (t.Tag == ast.TFloat || t.Tag == ast.TAngle) {
		fc.body = append(fc.body, opF32Eq)
	} else {
		fc.body = append(fc.body, opI32Eq)
	}
}

// ============================================================
// Assignment
// ============================================================

func (fc *funcCompiler) compileAssign(st *ast.AssignStmt) {
	if slot, ok := fc.localScalarTarget(st.Target); ok {
		if st.Op == ast.AssignSet {
			fc.compileExpr(st.Value)
		} else {
			fc.emitLocalGet(slot.index)
			fc.compileExpr(st.Value)
			fc.emitArith(opForAssignOp(st.Op), slot.typ)
		}
		fc.emitLocalSet(slot.index)
		return
	}

	t := fc.gen.ar.TypeOf(st.Target)
	if t != nil && t.IsComposite() {
		dst := fc.allocAnon(valI32)
		fc.compileAddr(st.Target)
		fc.emitLocalSet(dst)
		fc.initComposite(dst, t, st.Value)
		return
	}

	if st.Op == ast.AssignSet {
		fc.compileAddr(st.Target)
		fc.compileExpr(st.Value)
		fc.emitStore(t)
		return
	}

	fc.compileAddr(st.Target)
	addrTmp := fc.allocAnon(valI32)
	fc.emitLocalSet(addrTmp)
	fc.emitLocalGet(addrTmp)
	fc.emitLoad(t)
	fc.compileExpr(st.Value)
	fc.emitArith(opForAssignOp(st.Op), t)
	resTmp := fc.allocAnon(wasmType(t))
	fc.emitLocalSet(resTmp)
	fc.emitLocalGet(addrTmp)
	fc.emitLocalGet(resTmp)
	fc.emitStore(t)
}

// localScalarTarget reports whether target is an identifier bound to
// a plain (non-composite, non-global) WASM local, the fast path that
// needs no address computation at all.
func (fc *funcCompiler) localScalarTarget(target ast.Expr) (localSlot, bool) {
	id, ok := unwrapGroup(target).(*ast.Ident)
	if !ok {
		return localSlot{}, false
	}
	slot, ok := fc.scopes.lookup(id.Name)
	if !ok || slot.isAddr {
		return localSlot{}, false
	}
	return slot, true
}

func opForAssignOp(op ast.AssignOp) ast.BinaryOp {
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
