package ast

// Scope identifies where a SymbolInfo's storage lives (§3.4).
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeLocal
	ScopeParam
)

// SymbolInfo describes one resolved variable binding. For globals,
// Location is a byte offset into linear memory starting at 64 (the
// first 64 bytes are a reserved return/scratch slot, §3.4). For
// locals and params, Location is an abstract slot index not used
// directly by the emitter, which allocates real WASM local indices
// itself during code generation (§4.4 "Local allocation").
type SymbolInfo struct {
	Name     string
	Type     *Type
	Scope    Scope
	Location int
}

// FuncInfo describes one resolved function signature, whether a user
// function, a host import, or an event handler.
type FuncInfo struct {
	Name           string
	ParamTypes     []*Type
	ParamNames     []string
	ReturnTypes    []*Type
	IsImport       bool
	IsEvent        bool
	WasmExportName string // "" if not exported
}

// ConstInfo is a compile-time-folded constant's value and type. Bool
// constants are represented as 0/1 in Value per §3.4's "boolean-as-int".
type ConstInfo struct {
	Value float64 // exact for int-valued constants within float64's range
	Type  *Type
}

// ExprInfo is the analyzer's resolved fact about one expression node:
// its type, whether it denotes a storage location, and — when the
// analyzer could fold it — its constant value.
type ExprInfo struct {
	Type        *Type
	IsLValue    bool
	IsConst     bool
	ConstValue  float64
}

// AnalysisResult is the complete output of the analyzer: every table
// the emitter needs to turn the AST into WASM bytes, plus the
// accumulated diagnostics (§3.4).
type AnalysisResult struct {
	ExprInfo         map[ExprID]ExprInfo
	Symbols          map[string]*SymbolInfo // globals only; locals live in per-function scopes during analysis and are not retained here
	Funcs            map[string]*FuncInfo
	Structs          map[string]*Type
	Consts           map[string]*ConstInfo
	GlobalMemorySize int
	// FuncLocals records, per user function/event name, the ordered
	// list of local SymbolInfo (params first, then body locals in
	// declaration order) the emitter needs to allocate WASM locals;
	// Location in each entry is the local's slot index within the
	// function, not a byte offset.
	FuncLocals map[string][]*SymbolInfo
}

// NewAnalysisResult returns an AnalysisResult with all maps allocated.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		ExprInfo:   make(map[ExprID]ExprInfo),
		Symbols:    make(map[string]*SymbolInfo),
		Funcs:      make(map[string]*FuncInfo),
		Structs:    make(map[string]*Type),
		Consts:     make(map[string]*ConstInfo),
		FuncLocals: make(map[string][]*SymbolInfo),
	}
}

// Info looks up the resolved info for an expression node.
func (r *AnalysisResult) Info(e Expr) (ExprInfo, bool) {
	info, ok := r.ExprInfo[e.ID()]
	return info, ok
}

// TypeOf is a convenience wrapper around Info for call sites that
// only need the type and know analysis already succeeded for e.
func (r *AnalysisResult) TypeOf(e Expr) *Type {
	return r.ExprInfo[e.ID()].Type
}
