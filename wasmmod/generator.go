package wasmmod

import (
	"github.com/gmofishsauce/rlc/analyzer"
	"github.com/gmofishsauce/rlc/ast"
	"github.com/gmofishsauce/rlc/token"
)

// funcSig is a WASM function type signature, interned in first-seen
// order (§4.4 "Determinism").
type funcSig struct {
	params  []byte
	results []byte
}

type wasmExport struct {
	name  string
	kind  byte
	index int
}

// funcEntry is one function slated for a post-import WASM index: a
// user function, an event handler (as on_<name>), or the synthesized
// init (§4.4 "Global initialization").
type funcEntry struct {
	name            string
	info            *ast.FuncInfo
	params          []ast.Param
	body            *ast.BlockStmt
	synthesizedInit bool
}

// generator builds a WASM binary module from a type-checked Program.
// The type/import/function/memory/export/code section builders mirror
// the wasmbe grounding package's generator, adapted for an explicit
// Import section (the grounding package's source language had no host
// imports) and for RL's fixed host API registry as the import set.
type generator struct {
	prog  *ast.Program
	ar    *ast.AnalysisResult
	diags *token.DiagnosticList

	types     []funcSig
	typeCache map[string]int

	funcIndex   map[string]int // name -> global wasm function index (imports + functions)
	funcTypeIdx []int          // per post-import function, its type section index
	codes       [][]byte       // per post-import function, its encoded body

	exports []wasmExport

	// nextCompositeOffset is the monotonic bump allocator for the
	// "local composite area" (§4.4 "Memory layout"), starting just
	// past the global region and growing as each function's composite
	// locals are discovered during code generation.
	nextCompositeOffset int
}

// Emit produces a well-formed WASM 1.0 module for prog/ar. It assumes
// the analyzer recorded zero errors (§4.4 "Runs only if the analyzer
// produced no errors"); a stray panic during codegen — which should
// never happen against an analyzer-clean program — is recovered into
// a single codegen-phase diagnostic so the compiler call as a whole
// still satisfies totality (§8.1 invariant 3).
func Emit(prog *ast.Program, ar *ast.AnalysisResult) (wasm []byte, diags *token.DiagnosticList) {
	diags = &token.DiagnosticList{}
	defer func() {
		if r := recover(); r != nil {
			wasm = nil
			diags.Add(token.PhaseCodegen, token.Position{Line: 1, Column: 1}, "internal code generation error: %v", r)
		}
	}()

	g := &generator{
		prog:                prog,
		ar:                  ar,
		diags:               diags,
		typeCache:           make(map[string]int),
		funcIndex:           make(map[string]int),
		nextCompositeOffset: ar.GlobalMemorySize,
	}
	for i, f := range analyzer.Registry {
		g.funcIndex[f.Name] = i
	}

	order := g.buildOrder()
	base := len(analyzer.Registry)
	for i, fe := range order {
		g.funcIndex[fe.name] = base + i
	}
	for _, fe := range order {
		for _, rt := range fe.info.ReturnTypes {
			if rt.IsComposite() {
				diags.Add(token.PhaseCodegen, token.Position{Line: 1, Column: 1},
					"function %s: returning a composite value by handle is not supported", fe.name)
				break
			}
		}
		params, results := g.funcSigFor(fe.info)
		tidx := g.typeIndex(params, results)
		g.funcTypeIdx = append(g.funcTypeIdx, tidx)
		g.codes = append(g.codes, g.compileFunctionBody(fe))
		if fe.info.WasmExportName != "" {
			g.exports = append(g.exports, wasmExport{name: fe.info.WasmExportName, kind: extFunc, index: g.funcIndex[fe.name]})
		}
	}

	wasm = g.assemble()
	return wasm, diags
}

// buildOrder decides the post-import function index assignment order:
// a synthesized init (only when no user init was declared but some
// global has an initializer) first, then user functions in source
// order, then event handlers in source order. Placing a synthesized
// init first treats it as standing in for the earliest-declared
// function a program could have written by hand; see DESIGN.md.
func (g *generator) buildOrder() []funcEntry {
	hasUserInit := false
	for _, fd := range g.prog.Funcs {
		if fd.Name == "init" {
			hasUserInit = true
			break
		}
	}
	anyGlobalInit := false
	for _, vd := range g.prog.Globals {
		if vd.Init != nil {
			anyGlobalInit = true
			break
		}
	}

	var order []funcEntry
	if anyGlobalInit && !hasUserInit {
		order = append(order, funcEntry{
			name:            "init",
			info:            &ast.FuncInfo{Name: "init", WasmExportName: "init"},
			synthesizedInit: true,
		})
	}
	for _, fd := range g.prog.Funcs {
		order = append(order, funcEntry{name: fd.Name, info: g.ar.Funcs[fd.Name], params: fd.Params, body: fd.Body})
	}
	for _, ed := range g.prog.Events {
		name := "on_" + ed.Name
		order = append(order, funcEntry{name: name, info: g.ar.Funcs[name], params: ed.Params, body: ed.Body})
	}
	return order
}

func wasmType(t *ast.Type) byte {
	if t == nil {
		return valI32
	}
	switch t.Tag {
	case ast.TFloat, ast.TAngle:
		return valF32
	default:
		// Int, Bool, and composite handles are all i32 (§4.4 "Type
		// mapping", "Composite locals").
		return valI32
	}
}

// funcSigFor maps a resolved signature to WASM value types. A
// composite return type has no defined calling convention in this
// specification (composites live in linear memory, addressed by a
// handle the callee owns); the emitter drops it to no result rather
// than inventing an ABI, matching the reserved, should-not-occur
// codegen error tier (§7).
func (g *generator) funcSigFor(info *ast.FuncInfo) (params, results []byte) {
	for _, p := range info.ParamTypes {
		params = append(params, wasmType(p))
	}
	for _, r := range info.ReturnTypes {
		if r.IsComposite() {
			continue
		}
		results = append(results, wasmType(r))
	}
	return params, results
}

func (g *generator) typeIndex(params, results []byte) int {
	key := string(params) + "|" + string(results)
	if idx, ok := g.typeCache[key]; ok {
		return idx
	}
	idx := len(g.types)
	g.types = append(g.types, funcSig{params: params, results: results})
	g.typeCache[key] = idx
	return idx
}

func (g *generator) compileFunctionBody(fe funcEntry) []byte {
	fc := newFuncCompiler(g, fe.name)
	fc.returnTypes = fe.info.ReturnTypes
	for i, p := range fe.params {
		pt := ast.Void
		if i < len(fe.info.ParamTypes) {
			pt = fe.info.ParamTypes[i]
		}
		fc.bindParam(p.Name, pt)
	}
	if fe.name == "init" {
		fc.emitGlobalInits()
	}
	if fe.body != nil {
		// Mirrors typeCheckFunc: the outer body shares the parameter
		// frame rather than pushing its own (§4.3 Pass 2).
		fc.compileBlockNoScope(fe.body)
	}
	return fc.finish()
}

// assemble concatenates every present section in the fixed order
// (§4.4 "Module shape").
func (g *generator) assemble() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	// The import section interns its signatures into g.types, so it is
	// built before the type section is encoded.
	var imports []byte
	if len(analyzer.Registry) > 0 {
		imports = g.emitImportSection()
	}
	if len(g.types) > 0 {
		out = append(out, g.emitTypeSection()...)
	}
	out = append(out, imports...)
	if len(g.funcTypeIdx) > 0 {
		out = append(out, g.emitFunctionSection()...)
	}
	out = append(out, g.emitMemorySection()...)
	out = append(out, g.emitExportSection()...)
	if len(g.codes) > 0 {
		out = append(out, g.emitCodeSection()...)
	}
	return out
}

func (g *generator) emitTypeSection() []byte {
	var contents []byte
	for _, sig := range g.types {
		contents = append(contents, 0x60)
		contents = append(contents, encodeVector(len(sig.params), sig.params)...)
		contents = append(contents, encodeVector(len(sig.results), sig.results)...)
	}
	return encodeSection(secType, encodeVector(len(g.types), contents))
}

func (g *generator) emitImportSection() []byte {
	var contents []byte
	for _, f := range analyzer.Registry {
		params, results := g.funcSigFor(&ast.FuncInfo{ParamTypes: f.Params, ReturnTypes: f.Returns})
		tidx := g.typeIndex(params, results)
		contents = append(contents, encodeString("env")...)
		contents = append(contents, encodeString(f.Name)...)
		contents = append(contents, extFunc)
		contents = append(contents, encodeLEB128U(uint64(tidx))...)
	}
	return encodeSection(secImport, encodeVector(len(analyzer.Registry), contents))
}

func (g *generator) emitFunctionSection() []byte {
	var contents []byte
	for _, tidx := range g.funcTypeIdx {
		contents = append(contents, encodeLEB128U(uint64(tidx))...)
	}
	return encodeSection(secFunction, encodeVector(len(g.funcTypeIdx), contents))
}

// emitMemorySection sizes the single linear memory per §4.4 "Memory
// layout": the reserved+global region, plus every composite local
// discovered while compiling function bodies, plus 64KiB headroom,
// rounded up to whole 64KiB pages.
func (g *generator) emitMemorySection() []byte {
	total := g.nextCompositeOffset + 65536
	pages := total / 65536
	if total%65536 != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	contents := []byte{0x00}
	contents = append(contents, encodeLEB128U(uint64(pages))...)
	return encodeSection(secMemory, encodeVector(1, contents))
}

func (g *generator) emitExportSection() []byte {
	var contents []byte
	for _, exp := range g.exports {
		contents = append(contents, encodeString(exp.name)...)
		contents = append(contents, exp.kind)
		contents = append(contents, encodeLEB128U(uint64(exp.index))...)
	}
	contents = append(contents, encodeString("memory")...)
	contents = append(contents, extMem)
	contents = append(contents, encodeLEB128U(0)...)
	return encodeSection(secExport, encodeVector(len(g.exports)+1, contents))
}

func (g *generator) emitCodeSection() []byte {
	var contents []byte
	for _, code := range g.codes {
		contents = append(contents, encodeLEB128U(uint64(len(code)))...)
		contents = append(contents, code...)
	}
	return encodeSection(secCode, encodeVector(len(g.codes), contents))
}
