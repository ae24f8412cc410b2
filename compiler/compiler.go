// Package compiler wires the four pipeline stages — lexer, parser,
// analyzer, wasmmod — into the single external entry point described
// by spec.md §6.1: a pure function from source text to a
// CompileResult, never a Go error, never a panic.
package compiler

import (
	"github.com/gmofishsauce/rlc/analyzer"
	"github.com/gmofishsauce/rlc/lexer"
	"github.com/gmofishsauce/rlc/parser"
	"github.com/gmofishsauce/rlc/token"
	"github.com/gmofishsauce/rlc/wasmmod"
)

// CompileResult is the compiler's entire external output (§6.1):
// wasm is present iff Success, and Errors may carry warnings even on
// success (today the compiler has no warning tier, so on success
// Errors is always empty, per token.DiagnosticList.HasErrors).
type CompileResult struct {
	Success bool
	Wasm    []byte
	Errors  []token.Diagnostic
}

// Compile runs source through tokenize/parse/analyze/codegen and
// returns a CompileResult. It never returns a Go error and never
// panics: each stage is individually total (§8.1 invariants 1-2), and
// a stray panic from any stage — which should not happen against a
// stage that behaves as specified — is recovered here into a single
// codegen-phase diagnostic so the call as a whole stays total (§8.1
// invariant 3), matching the teacher's layered recover-at-the-boundary
// style (e.g. `lang/yld`'s linker wrapping each pass's errors rather
// than letting one escape as a panic).
func Compile(source string) (result CompileResult) {
	defer func() {
		if r := recover(); r != nil {
			result = CompileResult{
				Success: false,
				Errors: []token.Diagnostic{{
					Phase:   token.PhaseCodegen,
					Line:    1,
					Column:  1,
					Message: "internal compiler error: " + toString(r),
				}},
			}
		}
	}()

	toks := lexer.Lex(source)

	prog, parseDiags := parser.Parse(toks)
	if parseDiags.HasErrors() {
		return CompileResult{Errors: parseDiags.Items()}
	}

	ar, analyzeDiags := analyzer.Analyze(prog)
	if analyzeDiags.HasErrors() {
		return CompileResult{Errors: analyzeDiags.Items()}
	}

	wasm, codegenDiags := wasmmod.Emit(prog, ar)
	if codegenDiags.HasErrors() {
		return CompileResult{Errors: codegenDiags.Items()}
	}

	return CompileResult{Success: true, Wasm: wasm, Errors: codegenDiags.Items()}
}

func toString(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown panic"
}
