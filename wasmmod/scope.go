package wasmmod

import "github.com/gmofishsauce/rlc/ast"

// localSlot is one codegen-time local binding: the WASM local index
// that holds either the value itself (scalar) or the fixed base
// address of a composite local (handle, §4.4 "Composite locals").
type localSlot struct {
	index   int
	typ     *ast.Type
	isAddr  bool // true for a composite's handle local
}

// codeScopeStack re-derives the analyzer's nested block scoping
// (analyzer/scope.go) during code generation, so that identifier
// references resolve to the same lexical binding the analyzer saw,
// now carrying a WASM local index instead of an abstract slot.
type codeScopeStack struct {
	frames []map[string]localSlot
}

func newCodeScopeStack() *codeScopeStack {
	return &codeScopeStack{frames: []map[string]localSlot{make(map[string]localSlot)}}
}

func (s *codeScopeStack) push() {
	s.frames = append(s.frames, make(map[string]localSlot))
}

func (s *codeScopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *codeScopeStack) declare(name string, slot localSlot) {
	s.frames[len(s.frames)-1][name] = slot
}

func (s *codeScopeStack) lookup(name string) (localSlot, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if slot, ok := s.frames[i][name]; ok {
			return slot, true
		}
	}
	return localSlot{}, false
}
