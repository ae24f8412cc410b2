package analyzer

import (
	"testing"

	"github.com/gmofishsauce/rlc/ast"
	"github.com/gmofishsauce/rlc/lexer"
	"github.com/gmofishsauce/rlc/parser"
)

func analyze(t *testing.T, src string) (*ast.AnalysisResult, int) {
	t.Helper()
	toks := lexer.Lex(src)
	prog, pdiags := parser.Parse(toks)
	if pdiags.Len() != 0 {
		t.Fatalf("unexpected parse errors: %v", pdiags.Items())
	}
	res, diags := Analyze(prog)
	return res, diags.Len()
}

func TestAnalyzeMinimalRobotOk(t *testing.T) {
	_, n := analyze(t, "robot \"T\"\nfunc tick() {}\n")
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeMissingTickIsError(t *testing.T) {
	_, n := analyze(t, "robot \"T\"\nfunc other() {}\n")
	if n == 0 {
		t.Fatalf("expected an error for missing tick")
	}
}

func TestAnalyzeTickWithParamsIsError(t *testing.T) {
	_, n := analyze(t, "robot \"T\"\nfunc tick(x int) {}\n")
	if n == 0 {
		t.Fatalf("expected an error for tick with parameters")
	}
}

func TestAnalyzeDuplicateStructIsError(t *testing.T) {
	src := "robot \"T\"\ntype P struct { x int }\ntype P struct { y int }\nfunc tick() {}\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected a duplicate struct error")
	}
}

func TestAnalyzeStructFieldOffsets(t *testing.T) {
	src := "robot \"T\"\ntype P struct { x int\ny float }\nfunc tick() {}\n"
	res, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
	st := res.Structs["P"]
	if st.Size != 8 {
		t.Fatalf("got struct size %d, want 8", st.Size)
	}
	if st.Fields[0].Offset != 0 || st.Fields[1].Offset != 4 {
		t.Fatalf("got offsets %+v", st.Fields)
	}
}

func TestAnalyzeConstFolding(t *testing.T) {
	src := "robot \"T\"\nconst N = 10\nconst M = -N\nfunc tick() {}\n"
	res, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
	if res.Consts["N"].Value != 10 || res.Consts["M"].Value != -10 {
		t.Fatalf("got consts %+v %+v", res.Consts["N"], res.Consts["M"])
	}
}

func TestAnalyzeConstNonFoldableIsError(t *testing.T) {
	src := "robot \"T\"\nfunc f() int { return 1 }\nconst N = f()\nfunc tick() {}\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected a non-foldable constant error")
	}
}

func TestAnalyzeGlobalOffsetsIncrease(t *testing.T) {
	src := "robot \"T\"\nvar a int\nvar b float\nfunc tick() {}\n"
	res, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
	if res.Symbols["a"].Location != 64 || res.Symbols["b"].Location != 68 {
		t.Fatalf("got offsets a=%d b=%d", res.Symbols["a"].Location, res.Symbols["b"].Location)
	}
	if res.GlobalMemorySize != 72 {
		t.Fatalf("got global memory size %d, want 72", res.GlobalMemorySize)
	}
}

func TestAnalyzeEventSignatureMismatchIsError(t *testing.T) {
	src := "robot \"T\"\non hit(d int, b angle) {}\nfunc tick() {}\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected an event parameter-type mismatch error")
	}
}

func TestAnalyzeUnknownEventIsError(t *testing.T) {
	src := "robot \"T\"\non nonsense() {}\nfunc tick() {}\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected an unknown-event error")
	}
}

func TestAnalyzeEventRegisteredAsOnPrefixed(t *testing.T) {
	src := "robot \"T\"\non bulletMiss() {}\nfunc tick() {}\n"
	res, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
	fi, ok := res.Funcs["on_bulletMiss"]
	if !ok || fi.WasmExportName != "on_bulletMiss" {
		t.Fatalf("got %+v", fi)
	}
}

func TestAnalyzeArithmeticIntOk(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { x := 1 + 2 }\n"
	_, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeAngleTimesFloatOk(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { a := angle(1)\nf := 2.0\nb := a * f }\n"
	_, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeFloatTimesAngleIsNamedError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { a := angle(1)\nf := 2.0\nb := f * a }\n"
	res, n := analyze(t, src)
	_ = res
	if n == 0 {
		t.Fatalf("expected the angle-must-be-on-the-left error")
	}
}

func TestAnalyzeDebugBoolIsError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { debug(true) }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected debug(bool) to be rejected")
	}
}

func TestAnalyzeDebugIntOk(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { debug(1) }\n"
	_, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeDirectDebugIntCallOk(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { debugInt(1) }\n"
	_, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeBreakOutsideLoopIsError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { break }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected break-outside-loop error")
	}
}

func TestAnalyzeContinueInsideLoopOk(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { for i := 0; i < 3; i += 1 { continue } }\n"
	_, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeAssignToNonLValueIsError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { 1 = 2 }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected assignment-to-non-lvalue error")
	}
}

func TestAnalyzeFieldAccessOnNonStructIsError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { x := 1\ny := x.field }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected field-access-on-non-struct error")
	}
}

func TestAnalyzeIndexOfNonArrayIsError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { x := 1\ny := x[0] }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected index-of-non-array error")
	}
}

func TestAnalyzeMultiReturnShortDecl(t *testing.T) {
	src := "robot \"T\"\nfunc pair() int, float { return 1, 2.0 }\nfunc tick() { a, b := pair() }\n"
	_, n := analyze(t, src)
	if n != 0 {
		t.Fatalf("unexpected errors: %d", n)
	}
}

func TestAnalyzeReturnCountMismatchIsError(t *testing.T) {
	src := "robot \"T\"\nfunc f() int { return 1, 2 }\nfunc tick() {}\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected return-count-mismatch error")
	}
}

func TestAnalyzeStructLiteralFieldTypeMismatchIsError(t *testing.T) {
	src := "robot \"T\"\ntype P struct { x int }\nfunc tick() { p := P{x: 1.0} }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected struct literal field type mismatch error")
	}
}

func TestAnalyzeSwitchCaseTypeMismatchIsError(t *testing.T) {
	src := "robot \"T\"\nfunc tick() { x := 1\nswitch x {\ncase true:\ndebugInt(1)\ndefault:\ndebugInt(0)\n} }\n"
	_, n := analyze(t, src)
	if n == 0 {
		t.Fatalf("expected switch case type mismatch error")
	}
}
