// Package ast defines the untyped parse tree produced by the parser
// and the canonical resolved type language produced by the analyzer.
// Node shapes follow the teacher's (gmofishsauce/wut4 lang/yparse)
// tagged-interface style: one interface per node category with a
// marker method plus GetSpan, generalized here to RL's node set.
package ast

import "fmt"

// Span is a source range, first-character-of-first-token through
// first-character-of-the-token-following-the-last one. Every AST node
// carries a Span (§3.2).
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// IDGen hands out monotonically increasing identities to expression
// nodes so the analyzer can key its expr_info side table by node
// identity without relying on pointer equality (§9 "Cyclic AST /
// shared ownership"). There is no package-level counter: each
// compilation works on its own AST and gets its own IDGen from
// NewIDGen.
type IDGen struct{ next int }

// NewIDGen returns a fresh id generator, used once per Parse call so
// ids are stable and deterministic for a given source (§4.4
// Determinism).
func NewIDGen() *IDGen { return &IDGen{next: 1} }

// Next returns the next unique expression id.
func (g *IDGen) Next() ExprID {
	id := ExprID(g.next)
	g.next++
	return id
}

// ExprID is a stable per-compilation identity for an expression node,
// used to key AnalysisResult.ExprInfo.
type ExprID int
