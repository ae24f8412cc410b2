package analyzer

import "github.com/gmofishsauce/rlc/ast"

// scopeStack is the analyzer's stack of lexical scopes for Pass 2
// (§4.3 "a stack of lexical scopes for locals and parameters;
// innermost-first lookup; duplicate in a single scope is an error").
// It is pushed once per function for the parameter scope and again
// for each nested block.
type scopeStack struct {
	frames []map[string]*ast.SymbolInfo
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[string]*ast.SymbolInfo))
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// declare binds name in the innermost frame. It reports false if name
// is already bound in that same frame (a duplicate-in-scope error);
// shadowing an outer frame is allowed.
func (s *scopeStack) declare(name string, info *ast.SymbolInfo) bool {
	top := s.frames[len(s.frames)-1]
	if _, exists := top[name]; exists {
		return false
	}
	top[name] = info
	return true
}

// lookup searches innermost-first.
func (s *scopeStack) lookup(name string) (*ast.SymbolInfo, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if info, ok := s.frames[i][name]; ok {
			return info, true
		}
	}
	return nil, false
}
