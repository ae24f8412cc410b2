package analyzer

import "github.com/gmofishsauce/rlc/ast"

// typeCheckExpr resolves e's type, recording its full ExprInfo into
// the AnalysisResult, and returns just the type for callers that only
// need it (§3.4 "the emitter can consult the type of any sub-expression
// without re-inferring").
func (a *Analyzer) typeCheckExpr(e ast.Expr) *ast.Type {
	return a.typeCheckExprInfo(e).Type
}

func (a *Analyzer) setInfo(e ast.Expr, info ast.ExprInfo) ast.ExprInfo {
	if info.Type == nil {
		info.Type = ast.Void
	}
	a.result.ExprInfo[e.ID()] = info
	return info
}

// typeCheckExprInfo is the full expression type-check dispatcher
// (§4.3 Pass 2 "Type rules"). Every rule violation is recorded as a
// diagnostic and a placeholder type is returned so sibling expressions
// keep getting checked (§4.3 "Failure semantics").
func (a *Analyzer) typeCheckExprInfo(e ast.Expr) ast.ExprInfo {
	switch x := e.(type) {
	case *ast.IntLit:
		v, t, _ := ast.FoldConst(x, nil)
		return a.setInfo(x, ast.ExprInfo{Type: t, IsConst: true, ConstValue: v})

	case *ast.FloatLit:
		v, t, _ := ast.FoldConst(x, nil)
		return a.setInfo(x, ast.ExprInfo{Type: t, IsConst: true, ConstValue: v})

	case *ast.BoolLit:
		v, t, _ := ast.FoldConst(x, nil)
		return a.setInfo(x, ast.ExprInfo{Type: t, IsConst: true, ConstValue: v})

	case *ast.StringLit:
		a.errorf(x.GetSpan(), "string literals are not allowed in an expression context")
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})

	case *ast.Ident:
		return a.typeCheckIdent(x)

	case *ast.UnaryExpr:
		return a.typeCheckUnary(x)

	case *ast.BinaryExpr:
		lt := a.typeCheckExpr(x.Left)
		rt := a.typeCheckExpr(x.Right)
		resT := a.binaryResultType(x.GetSpan(), x.Op, lt, rt)
		return a.setInfo(x, ast.ExprInfo{Type: resT})

	case *ast.CallExpr:
		return a.typeCheckCall(x)

	case *ast.FieldExpr:
		return a.typeCheckField(x)

	case *ast.IndexExpr:
		return a.typeCheckIndex(x)

	case *ast.StructLit:
		return a.typeCheckStructLit(x)

	case *ast.ArrayLit:
		return a.typeCheckArrayLit(x)

	case *ast.GroupExpr:
		inner := a.typeCheckExprInfo(x.X)
		return a.setInfo(x, inner)

	default:
		return a.setInfo(e, ast.ExprInfo{Type: ast.Void})
	}
}

func (a *Analyzer) typeCheckIdent(x *ast.Ident) ast.ExprInfo {
	if sym, ok := a.scopes.lookup(x.Name); ok {
		return a.setInfo(x, ast.ExprInfo{Type: sym.Type, IsLValue: true})
	}
	if sym, ok := a.result.Symbols[x.Name]; ok {
		return a.setInfo(x, ast.ExprInfo{Type: sym.Type, IsLValue: true})
	}
	if c, ok := a.result.Consts[x.Name]; ok {
		return a.setInfo(x, ast.ExprInfo{Type: c.Type, IsConst: true, ConstValue: c.Value})
	}
	a.errorf(x.GetSpan(), "undefined identifier: %s", x.Name)
	return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
}

func (a *Analyzer) typeCheckUnary(x *ast.UnaryExpr) ast.ExprInfo {
	inner := a.typeCheckExprInfo(x.X)
	switch x.Op {
	case ast.UnaryNeg:
		if !inner.Type.IsNumeric() {
			a.errorf(x.GetSpan(), "unary - requires a numeric operand, got %s", inner.Type)
		}
		return a.setInfo(x, ast.ExprInfo{Type: inner.Type, IsConst: inner.IsConst, ConstValue: -inner.ConstValue})
	case ast.UnaryNot:
		if !inner.Type.Equal(ast.Bool) {
			a.errorf(x.GetSpan(), "unary ! requires a bool operand, got %s", inner.Type)
		}
		return a.setInfo(x, ast.ExprInfo{Type: ast.Bool})
	default:
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}
}

// binaryResultType implements §4.3's per-operator-family rules. It
// always returns a usable type (never nil) so callers can keep
// checking siblings even after recording an error.
func (a *Analyzer) binaryResultType(span ast.Span, op ast.BinaryOp, lt, rt *ast.Type) *ast.Type {
	switch op {
	case ast.BinAdd, ast.BinSub:
		return a.arithAddSub(span, lt, rt)
	case ast.BinMul, ast.BinDiv:
		return a.arithMulDiv(span, lt, rt)
	case ast.BinMod, ast.BinAnd, ast.BinOr, ast.BinXor, ast.BinShl, ast.BinShr:
		if lt.Equal(ast.Int) && rt.Equal(ast.Int) {
			return ast.Int
		}
		a.errorf(span, "operator requires int operands, got %s and %s", lt, rt)
		return ast.Int
	case ast.BinEq, ast.BinNotEq:
		if lt.Equal(rt) {
			return ast.Bool
		}
		a.errorf(span, "equality operands must have the same type, got %s and %s", lt, rt)
		return ast.Bool
	case ast.BinLt, ast.BinGt, ast.BinLtEq, ast.BinGtEq:
		if lt.IsNumeric() && rt.IsNumeric() && lt.Equal(rt) {
			return ast.Bool
		}
		a.errorf(span, "comparison operands must be numeric and the same type, got %s and %s", lt, rt)
		return ast.Bool
	case ast.BinAndAnd, ast.BinOrOr:
		if lt.Equal(ast.Bool) && rt.Equal(ast.Bool) {
			return ast.Bool
		}
		a.errorf(span, "logical operator requires bool operands, got %s and %s", lt, rt)
		return ast.Bool
	default:
		return ast.Void
	}
}

func (a *Analyzer) arithAddSub(span ast.Span, lt, rt *ast.Type) *ast.Type {
	switch {
	case lt.Equal(ast.Int) && rt.Equal(ast.Int):
		return ast.Int
	case lt.Equal(ast.Float) && rt.Equal(ast.Float):
		return ast.Float
	case lt.Equal(ast.Angle) && rt.Equal(ast.Angle):
		return ast.Angle
	default:
		a.errorf(span, "incompatible operand types for arithmetic: %s and %s", lt, rt)
		return lt
	}
}

func (a *Analyzer) arithMulDiv(span ast.Span, lt, rt *ast.Type) *ast.Type {
	switch {
	case lt.Equal(ast.Int) && rt.Equal(ast.Int):
		return ast.Int
	case lt.Equal(ast.Float) && rt.Equal(ast.Float):
		return ast.Float
	case lt.Equal(ast.Angle) && rt.Equal(ast.Float):
		return ast.Angle
	case lt.Equal(ast.Float) && rt.Equal(ast.Angle):
		a.errorf(span, "angle must be on the left")
		return ast.Angle
	default:
		a.errorf(span, "incompatible operand types for arithmetic: %s and %s", lt, rt)
		return lt
	}
}

// arithmeticResultType is the compound-assignment entry point into the
// same rule table binaryResultType uses for plain binary expressions.
func (a *Analyzer) arithmeticResultType(span ast.Span, op ast.BinaryOp, lt, rt *ast.Type) *ast.Type {
	return a.binaryResultType(span, op, lt, rt)
}

var conversionTargets = map[string]*ast.Type{
	"int":   ast.Int,
	"float": ast.Float,
	"angle": ast.Angle,
}

func (a *Analyzer) typeCheckCall(x *ast.CallExpr) ast.ExprInfo {
	argTypes := make([]*ast.Type, len(x.Args))
	for i, arg := range x.Args {
		argTypes[i] = a.typeCheckExpr(arg)
	}

	if target, ok := conversionTargets[x.Callee]; ok {
		if len(argTypes) != 1 {
			a.errorf(x.GetSpan(), "%s(...) takes exactly one argument", x.Callee)
			return a.setInfo(x, ast.ExprInfo{Type: target})
		}
		if !argTypes[0].IsNumeric() {
			a.errorf(x.GetSpan(), "%s(...) requires a numeric argument, got %s", x.Callee, argTypes[0])
		}
		return a.setInfo(x, ast.ExprInfo{Type: target})
	}

	if x.Callee == "bool" {
		a.errorf(x.GetSpan(), "bool is not a valid conversion target")
		return a.setInfo(x, ast.ExprInfo{Type: ast.Bool})
	}

	if x.Callee == "debug" {
		if len(argTypes) != 1 {
			a.errorf(x.GetSpan(), "debug(...) takes exactly one argument")
			return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
		}
		switch argTypes[0].Tag {
		case ast.TInt, ast.TFloat, ast.TAngle:
		case ast.TBool:
			a.errorf(x.GetSpan(), "debug(bool) is not allowed")
		default:
			a.errorf(x.GetSpan(), "debug(...) does not support argument type %s", argTypes[0])
		}
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}

	fi, ok := a.result.Funcs[x.Callee]
	if !ok {
		a.errorf(x.GetSpan(), "undefined function: %s", x.Callee)
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}
	if len(argTypes) != len(fi.ParamTypes) {
		a.errorf(x.GetSpan(), "%s: expected %d argument(s), got %d", x.Callee, len(fi.ParamTypes), len(argTypes))
	}
	for i, pt := range fi.ParamTypes {
		if i >= len(argTypes) {
			break
		}
		if !pt.Equal(argTypes[i]) {
			a.errorf(x.Args[i].GetSpan(), "%s: argument %d has type %s, want %s", x.Callee, i+1, argTypes[i], pt)
		}
	}
	resultType := ast.Void
	if len(fi.ReturnTypes) > 0 {
		resultType = fi.ReturnTypes[0]
	}
	return a.setInfo(x, ast.ExprInfo{Type: resultType})
}

func (a *Analyzer) typeCheckField(x *ast.FieldExpr) ast.ExprInfo {
	objInfo := a.typeCheckExprInfo(x.Object)
	if objInfo.Type == nil || objInfo.Type.Tag != ast.TStruct {
		a.errorf(x.GetSpan(), "field access on non-struct type %s", objInfo.Type)
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}
	field, ok := objInfo.Type.Field(x.Field)
	if !ok {
		a.errorf(x.GetSpan(), "struct %s has no field %s", objInfo.Type.Name, x.Field)
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}
	return a.setInfo(x, ast.ExprInfo{Type: field.Type, IsLValue: objInfo.IsLValue})
}

func (a *Analyzer) typeCheckIndex(x *ast.IndexExpr) ast.ExprInfo {
	objInfo := a.typeCheckExprInfo(x.Object)
	idxT := a.typeCheckExpr(x.Index)
	if !idxT.Equal(ast.Int) {
		a.errorf(x.Index.GetSpan(), "array index must be int, got %s", idxT)
	}
	if objInfo.Type == nil || objInfo.Type.Tag != ast.TArray {
		a.errorf(x.GetSpan(), "index of non-array type %s", objInfo.Type)
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}
	return a.setInfo(x, ast.ExprInfo{Type: objInfo.Type.Elem, IsLValue: objInfo.IsLValue})
}

func (a *Analyzer) typeCheckStructLit(x *ast.StructLit) ast.ExprInfo {
	st, ok := a.result.Structs[x.TypeName]
	if !ok {
		a.errorf(x.GetSpan(), "undefined struct type: %s", x.TypeName)
		for _, f := range x.Fields {
			a.typeCheckExpr(f.Value)
		}
		return a.setInfo(x, ast.ExprInfo{Type: ast.Void})
	}
	for _, f := range x.Fields {
		vt := a.typeCheckExpr(f.Value)
		field, ok := st.Field(f.Name)
		if !ok {
			a.errorf(x.GetSpan(), "struct %s has no field %s", x.TypeName, f.Name)
			continue
		}
		if !field.Type.Equal(vt) {
			a.errorf(f.Value.GetSpan(), "field %s: value has type %s, want %s", f.Name, vt, field.Type)
		}
	}
	return a.setInfo(x, ast.ExprInfo{Type: st})
}

func (a *Analyzer) typeCheckArrayLit(x *ast.ArrayLit) ast.ExprInfo {
	var elemT *ast.Type
	for i, el := range x.Elements {
		t := a.typeCheckExpr(el)
		if i == 0 {
			elemT = t
		} else if !t.Equal(elemT) {
			a.errorf(el.GetSpan(), "array literal: element %d has type %s, want %s", i+1, t, elemT)
		}
	}
	if elemT == nil {
		elemT = ast.Void
	}
	return a.setInfo(x, ast.ExprInfo{Type: ast.NewArray(len(x.Elements), elemT)})
}
