package wasmmod

// emitGlobalInits lowers every global's initializer expression into
// the init function's body, ahead of any user init statements (§4.4
// "Global initialization"). It is not gated on FuncLocals since
// globals are never entries in any function's local list.
func (fc *funcCompiler) emitGlobalInits() {
	for _, vd := range fc.gen.prog.Globals {
		if vd.Init == nil {
			continue
		}
		sym := fc.gen.ar.Symbols[vd.Name]
		if sym == nil {
			continue
		}
		if sym.Type.IsComposite() {
			tmp := fc.allocAnon(valI32)
			fc.emitI32Const(sym.Location)
			fc.emitLocalSet(tmp)
			fc.initComposite(tmp, sym.Type, vd.Init)
			continue
		}
		fc.emitI32Const(sym.Location)
		fc.compileExpr(vd.Init)
		fc.emitStore(sym.Type)
	}
}
