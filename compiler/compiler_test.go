package compiler

import "testing"

// Table-driven, stdlib testing only (§AMBIENT-D): the compiler
// pipeline packages never pull in testify, matching every _test.go
// file in the teacher's lang/ tree.
func TestCompile_ByteHeaderAndExports(t *testing.T) {
	cases := []struct {
		name       string
		source     string
		wantTick   bool
		wantInit   bool
		wantEvents []string
	}{
		{
			name:     "minimal robot",
			source:   "robot \"T\"\nfunc tick() {}\n",
			wantTick: true,
		},
		{
			name:     "global initializer synthesizes init",
			source:   "robot \"T\"\nvar x int = 1\nfunc tick() {}\n",
			wantTick: true,
			wantInit: true,
		},
		{
			name:       "event handler exported as on_<name>",
			source:     "robot \"T\"\nfunc tick() {}\non scanned(a angle) {}\n",
			wantTick:   true,
			wantEvents: []string{"on_scanned"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Compile(tc.source)
			if !result.Success {
				t.Fatalf("Compile failed: %v", result.Errors)
			}
			if len(result.Wasm) < 8 {
				t.Fatalf("wasm too short: %d bytes", len(result.Wasm))
			}
			magic := [4]byte{0x00, 0x61, 0x73, 0x6D}
			version := [4]byte{0x01, 0x00, 0x00, 0x00}
			var gotMagic, gotVersion [4]byte
			copy(gotMagic[:], result.Wasm[0:4])
			copy(gotVersion[:], result.Wasm[4:8])
			if gotMagic != magic {
				t.Fatalf("bad magic: %v", gotMagic)
			}
			if gotVersion != version {
				t.Fatalf("bad version: %v", gotVersion)
			}
			if !containsExportName(result.Wasm, "memory") {
				t.Fatalf("memory export not found")
			}
			if tc.wantTick != containsExportName(result.Wasm, "tick") {
				t.Fatalf("tick export presence = %v, want %v", containsExportName(result.Wasm, "tick"), tc.wantTick)
			}
			if tc.wantInit != containsExportName(result.Wasm, "init") {
				t.Fatalf("init export presence = %v, want %v", containsExportName(result.Wasm, "init"), tc.wantInit)
			}
			for _, name := range tc.wantEvents {
				if !containsExportName(result.Wasm, name) {
					t.Fatalf("expected export %q not found", name)
				}
			}
		})
	}
}

// TestCompile_Determinism checks §8.1 invariant 8: identical input
// produces byte-identical output across independent calls.
func TestCompile_Determinism(t *testing.T) {
	source := "robot \"T\"\nfunc tick(){ x := 2 + 3 * 4\n debugInt(x) }\n"
	a := Compile(source)
	b := Compile(source)
	if !a.Success || !b.Success {
		t.Fatalf("expected both compiles to succeed: %v / %v", a.Errors, b.Errors)
	}
	if len(a.Wasm) != len(b.Wasm) {
		t.Fatalf("length mismatch: %d vs %d", len(a.Wasm), len(b.Wasm))
	}
	for i := range a.Wasm {
		if a.Wasm[i] != b.Wasm[i] {
			t.Fatalf("byte mismatch at offset %d", i)
		}
	}
}

// TestCompile_Totality asserts §8.1 invariant 3 against inputs chosen
// to exercise each stage's failure path: the call must never panic and
// must always return a CompileResult.
func TestCompile_Totality(t *testing.T) {
	inputs := []string{
		"",
		"robot",
		"robot \"T\"\nfunc tick() { x := \n }",
		"robot \"T\"\nfunc tick() { y = 1 }",
		"robot \"T\"\nfunc tick() { debug(true) }",
	}
	for _, src := range inputs {
		result := Compile(src)
		if result.Success && len(result.Wasm) == 0 {
			t.Fatalf("success with empty wasm for input %q", src)
		}
		if !result.Success && len(result.Errors) == 0 {
			t.Fatalf("failure with no diagnostics for input %q", src)
		}
	}
}

func TestCompile_MissingTickFails(t *testing.T) {
	result := Compile("robot \"T\"\n")
	if result.Success {
		t.Fatalf("expected failure for a program with no tick function")
	}
}

// containsExportName is a narrow, byte-pattern search for an export
// name string inside the encoded export section, good enough for a
// test fixture without decoding the whole module.
func containsExportName(wasm []byte, name string) bool {
	needle := append([]byte{byte(len(name))}, name...)
	for i := 0; i+len(needle) <= len(wasm); i++ {
		match := true
		for j, b := range needle {
			if wasm[i+j] != b {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
