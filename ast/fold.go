package ast

import "strconv"

// FoldConst evaluates the restricted constant-expression grammar of
// §4.3 Pass 1: literals, unary minus on any foldable numeric operand,
// references to already-folded constants, and parenthesised forms of
// these. It reports ok=false for any
// expression outside that grammar so the caller can raise a
// "non-foldable initializer" diagnostic, generalizing the teacher's
// lang/ypeep constant-folding pass (which only folds small integer
// arithmetic in already-assembled code) to this source-level grammar.
func FoldConst(e Expr, consts map[string]*ConstInfo) (value float64, typ *Type, ok bool) {
	switch x := e.(type) {
	case *IntLit:
		n, err := strconv.ParseInt(x.Value, 10, 64)
		if err != nil {
			return 0, nil, false
		}
		return float64(n), Int, true
	case *FloatLit:
		f, err := strconv.ParseFloat(x.Value, 64)
		if err != nil {
			return 0, nil, false
		}
		return f, Float, true
	case *BoolLit:
		if x.Value {
			return 1, Bool, true
		}
		return 0, Bool, true
	case *UnaryExpr:
		if x.Op != UnaryNeg {
			return 0, nil, false
		}
		v, t, ok := FoldConst(x.X, consts)
		if !ok || !t.IsNumeric() {
			return 0, nil, false
		}
		return -v, t, true
	case *Ident:
		c, found := consts[x.Name]
		if !found {
			return 0, nil, false
		}
		return c.Value, c.Type, true
	case *GroupExpr:
		return FoldConst(x.X, consts)
	default:
		return 0, nil, false
	}
}
