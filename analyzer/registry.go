package analyzer

import "github.com/gmofishsauce/rlc/ast"

// APIFunc is one entry of the fixed host import registry (SPEC_FULL
// §G). Order matters: the emitter allocates WASM import indices in
// exactly this order (§4.4 "Function indexing"), so this slice is the
// single source of truth shared by the analyzer and the wasmmod
// emitter, exported for the latter's consumption.
type APIFunc struct {
	Name    string
	Params  []*ast.Type
	Returns []*ast.Type
}

// Registry is the fixed host API (movement, gun, radar, status,
// arena, utility, math, debug) pre-registered as imports before any
// user declaration is processed (§4.3 "API functions"), in the exact
// order wasmmod assigns import indices 0..K-1.
var Registry = []APIFunc{
	{"move", []*ast.Type{ast.Float}, nil},
	{"turn", []*ast.Type{ast.Angle}, nil},
	{"turnGun", []*ast.Type{ast.Angle}, nil},
	{"fire", []*ast.Type{ast.Float}, nil},
	{"turnRadar", []*ast.Type{ast.Angle}, nil},
	{"x", nil, []*ast.Type{ast.Float}},
	{"y", nil, []*ast.Type{ast.Float}},
	{"heading", nil, []*ast.Type{ast.Angle}},
	{"gunHeading", nil, []*ast.Type{ast.Angle}},
	{"radarHeading", nil, []*ast.Type{ast.Angle}},
	{"speed", nil, []*ast.Type{ast.Float}},
	{"energy", nil, []*ast.Type{ast.Float}},
	{"arenaWidth", nil, []*ast.Type{ast.Float}},
	{"arenaHeight", nil, []*ast.Type{ast.Float}},
	{"random", nil, []*ast.Type{ast.Float}},
	{"clamp", []*ast.Type{ast.Float, ast.Float, ast.Float}, []*ast.Type{ast.Float}},
	{"sin", []*ast.Type{ast.Angle}, []*ast.Type{ast.Float}},
	{"cos", []*ast.Type{ast.Angle}, []*ast.Type{ast.Float}},
	{"sqrt", []*ast.Type{ast.Float}, []*ast.Type{ast.Float}},
	{"abs", []*ast.Type{ast.Float}, []*ast.Type{ast.Float}},
	{"atan2", []*ast.Type{ast.Float, ast.Float}, []*ast.Type{ast.Angle}},
	{"debugInt", []*ast.Type{ast.Int}, nil},
	{"debugFloat", []*ast.Type{ast.Float}, nil},
	{"debugBool", []*ast.Type{ast.Bool}, nil},
}

// eventSignatures is the fixed table of §4.3: event name to exact
// parameter type list. Any other event name is an analyzer error.
var eventSignatures = map[string][]*ast.Type{
	"scan":       {ast.Float, ast.Angle},
	"scanned":    {ast.Angle},
	"hit":        {ast.Float, ast.Angle},
	"bulletHit":  {ast.Int},
	"wallHit":    {ast.Angle},
	"robotHit":   {ast.Angle},
	"bulletMiss": {},
	"robotDeath": {ast.Int},
}

// registerAPIFunctions pre-registers the fixed host import list into
// funcs, in registration order, before any user declaration is seen.
func registerAPIFunctions(funcs map[string]*ast.FuncInfo) {
	for _, f := range Registry {
		funcs[f.Name] = &ast.FuncInfo{
			Name:        f.Name,
			ParamTypes:  f.Params,
			ReturnTypes: f.Returns,
			IsImport:    true,
		}
	}
}
