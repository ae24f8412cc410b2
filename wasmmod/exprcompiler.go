package wasmmod

import "github.com/gmofishsauce/rlc/ast"

var conversionTargets = map[string]*ast.Type{
	"int":   ast.Int,
	"float": ast.Float,
	"angle": ast.Angle,
}

// compileExpr lowers e and leaves its value on the stack: a scalar's
// actual value, or a composite's base address (§4.4 "Composite
// locals" — composites are always represented by their handle).
// It returns e's resolved type.
func (fc *funcCompiler) compileExpr(e ast.Expr) *ast.Type {
	switch x := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit:
		return fc.compileLiteral(e)

	case *ast.Ident:
		return fc.compileIdent(x)

	case *ast.UnaryExpr:
		return fc.compileUnaryExpr(x)

	case *ast.BinaryExpr:
		return fc.compileBinaryExpr(x)

	case *ast.CallExpr:
		return fc.compileCallExpr(x)

	case *ast.FieldExpr, *ast.IndexExpr:
		t := fc.compileAddr(x)
		if !t.IsComposite() {
			fc.emitLoad(t)
		}
		return t

	case *ast.StructLit:
		return fc.compileCompositeTemp(x, fc.gen.ar.TypeOf(x))

	case *ast.ArrayLit:
		return fc.compileCompositeTemp(x, fc.gen.ar.TypeOf(x))

	case *ast.GroupExpr:
		return fc.compileExpr(x.X)

	default:
		fc.emitI32Const(0)
		return ast.Void
	}
}

// compileCompositeTemp allocates a fresh composite area, stores the
// literal into it, and leaves its address on the stack — used when a
// composite literal appears somewhere other than directly
// initializing a declared local/global/assignment target (for example
// as a function argument).
func (fc *funcCompiler) compileCompositeTemp(lit ast.Expr, t *ast.Type) *ast.Type {
	idx := fc.declareTempComposite(t)
	fc.initComposite(idx, t, lit)
	fc.emitLocalGet(idx)
	return t
}

func (fc *funcCompiler) declareTempComposite(t *ast.Type) int {
	addr := fc.allocComposite(t.ByteSize())
	idx := fc.allocLocal(valI32)
	fc.emitI32Const(addr)
	fc.emitLocalSet(idx)
	return idx
}

func (fc *funcCompiler) compileLiteral(e ast.Expr) *ast.Type {
	info, _ := fc.gen.ar.Info(e)
	switch info.Type.Tag {
	case ast.TFloat, ast.TAngle:
		fc.body = append(fc.body, opF32Const)
		fc.body = append(fc.body, encodeF32(float32(info.ConstValue))...)
	default:
		fc.emitI32Const(int(info.ConstValue))
	}
	return info.Type
}

func (fc *funcCompiler) compileIdent(x *ast.Ident) *ast.Type {
	if slot, ok := fc.scopes.lookup(x.Name); ok {
		fc.emitLocalGet(slot.index)
		return slot.typ
	}
	if sym, ok := fc.gen.ar.Symbols[x.Name]; ok {
		fc.emitI32Const(sym.Location)
		if !sym.Type.IsComposite() {
			fc.emitLoad(sym.Type)
		}
		return sym.Type
	}
	if c, ok := fc.gen.ar.Consts[x.Name]; ok {
		if c.Type.Tag == ast.TFloat || c.Type.Tag == ast.TAngle {
			fc.body = append(fc.body, opF32Const)
			fc.body = append(fc.body, encodeF32(float32(c.Value))...)
		} else {
			fc.emitI32Const(int(c.Value))
		}
		return c.Type
	}
	fc.emitI32Const(0)
	return ast.Void
}

func (fc *funcCompiler) compileUnaryExpr(x *ast.UnaryExpr) *ast.Type {
	if x.Op == ast.UnaryNeg {
		t := fc.gen.ar.TypeOf(x.X)
		if t != nil && (t.Tag == ast.TFloat || t.Tag == ast.TAngle) {
			fc.compileExpr(x.X)
			fc.body = append(fc.body, opF32Neg)
			return t
		}
		if lit, ok := x.X.(*ast.IntLit); ok {
			// A negated integer literal folds into one signed i32.const.
			info, _ := fc.gen.ar.Info(lit)
			fc.emitI32Const(-int(info.ConstValue))
			return t
		}
		fc.emitI32Const(0)
		fc.compileExpr(x.X)
		fc.body = append(fc.body, opI32Sub)
		return t
	}
	fc.compileExpr(x.X)
	fc.body = append(fc.body, opI32Eqz)
	return ast.Bool
}

// compileBinaryExpr dispatches by the resolved operand type, mirroring
// the wasmbe grounding package's compileBinaryExpr float/int/bool
// split, extended with RL's short-circuit && / || (§4.4 "Expression
// lowering").
func (fc *funcCompiler) compileBinaryExpr(x *ast.BinaryExpr) *ast.Type {
	if x.Op == ast.BinAndAnd {
		fc.compileExpr(x.Left)
		fc.body = append(fc.body, opIf, blockI32)
		fc.depth++
		fc.compileExpr(x.Right)
		fc.body = append(fc.body, opElse)
		fc.emitI32Const(0)
		fc.body = append(fc.body, opEnd)
		fc.depth--
		return ast.Bool
	}
	if x.Op == ast.BinOrOr {
		fc.compileExpr(x.Left)
		fc.body = append(fc.body, opIf, blockI32)
		fc.depth++
		fc.emitI32Const(1)
		fc.body = append(fc.body, opElse)
		fc.compileExpr(x.Right)
		fc.body = append(fc.body, opEnd)
		fc.depth--
		return ast.Bool
	}

	lt := fc.compileExpr(x.Left)
	fc.compileExpr(x.Right)
	isFloat := lt != nil && (lt.Tag == ast.TFloat || lt.Tag == ast.TAngle)
	fc.emitBinOp(x.Op, isFloat)
	return fc.gen.ar.TypeOf(x)
}

// emitArith emits one of the four compound-assignment operators
// (+=, -=, *=, /=), dispatching on t's wasm representation.
func (fc *funcCompiler) emitArith(op ast.BinaryOp, t *ast.Type) {
	isFloat := t != nil && (t.Tag == ast.TFloat || t.Tag == ast.TAngle)
	fc.emitBinOp(op, isFloat)
}

func (fc *funcCompiler) emitBinOp(op ast.BinaryOp, isFloat bool) {
	switch op {
	case ast.BinAdd:
		if isFloat {
			fc.body = append(fc.body, opF32Add)
		} else {
			fc.body = append(fc.body, opI32Add)
		}
	case ast.BinSub:
		if isFloat {
			fc.body = append(fc.body, opF32Sub)
		} else {
			fc.body = append(fc.body, opI32Sub)
		}
	case ast.BinMul:
		if isFloat {
			fc.body = append(fc.body, opF32Mul)
		} else {
			fc.body = append(fc.body, opI32Mul)
		}
	case ast.BinDiv:
		if isFloat {
			fc.body = append(fc.body, opF32Div)
		} else {
			fc.body = append(fc.body, opI32DivS)
		}
	case ast.BinMod:
		fc.body = append(fc.body, opI32RemS)
	case ast.BinAnd:
		fc.body = append(fc.body, opI32And)
	case ast.BinOr:
		fc.body = append(fc.body, opI32Or)
	case ast.BinXor:
		fc.body = append(fc.body, opI32Xor)
	case ast.BinShl:
		fc.body = append(fc.body, opI32Shl)
	case ast.BinShr:
		fc.body = append(fc.body, opI32ShrS)
	case ast.BinEq:
		if isFloat {
			fc.body = append(fc.body, opF32Eq)
		} else {
			fc.body = append(fc.body, opI32Eq)
		}
	case ast.BinNotEq:
		if isFloat {
			fc.body = append(fc.body, opF32Ne)
		} else {
			fc.body = append(fc.body, opI32Ne)
		}
	case ast.BinLt:
		if isFloat {
			fc.body = append(fc.body, opF32Lt)
		} else {
			fc.body = append(fc.body, opI32LtS)
		}
	case ast.BinGt:
		if isFloat {
			fc.body = append(fc.body, opF32Gt)
		} else {
			fc.body = append(fc.body, opI32GtS)
		}
	case ast.BinLtEq:
		if isFloat {
			fc.body = append(fc.body, opF32Le)
		} else {
			fc.body = append(fc.body, opI32LeS)
		}
	case ast.BinGtEq:
		if isFloat {
			fc.body = append(fc.body, opF32Ge)
		} else {
			fc.body = append(fc.body, opI32GeS)
		}
	}
}

// compileCallExpr dispatches a call expression to a type conversion,
// the debug() overload set (resolved by argument type, §SPEC_FULL-G),
// or a user/import/event-less function call.
func (fc *funcCompiler) compileCallExpr(x *ast.CallExpr) *ast.Type {
	if target, ok := conversionTargets[x.Callee]; ok {
		argT := fc.compileExpr(x.Args[0])
		fc.emitConversion(argT, target)
		return target
	}

	if x.Callee == "debug" {
		argT := fc.compileExpr(x.Args[0])
		name := "debugFloat"
		if argT != nil && argT.Tag == ast.TInt {
			name = "debugInt"
		}
		fc.body = append(fc.body, opCall)
		fc.body = append(fc.body, encodeLEB128U(uint64(fc.gen.funcIndex[name]))...)
		return ast.Void
	}

	info := fc.gen.ar.Funcs[x.Callee]
	fc.emitArgsAndCall(x, info)
	if info != nil && len(info.ReturnTypes) > 0 {
		return info.ReturnTypes[0]
	}
	return ast.Void
}

// compileCallRaw compiles a call purely for its side effect of
// pushing results on the stack, used by a multi-value short
// declaration which pops the results itself.
func (fc *funcCompiler) compileCallRaw(x *ast.CallExpr, info *ast.FuncInfo) {
	fc.emitArgsAndCall(x, info)
}

func (fc *funcCompiler) emitArgsAndCall(x *ast.CallExpr, info *ast.FuncInfo) {
	for i, arg := range x.Args {
		if info != nil && i < len(info.ParamTypes) && info.ParamTypes[i].IsComposite() {
			fc.compileAddr(arg)
		} else {
			fc.compileExpr(arg)
		}
	}
	fc.body = append(fc.body, opCall)
	fc.body = append(fc.body, encodeLEB128U(uint64(fc.gen.funcIndex[x.Callee]))...)
}

// emitConversion converts a value already on the stack from "from" to
// "to". Float<->angle conversions are bit-identical (both f32); this
// emitter does not normalize an angle's range on conversion since the
// source language defines no such normalization (see DESIGN.md).
func (fc *funcCompiler) emitConversion(from, to *ast.Type) {
	fromFloat := from != nil && (from.Tag == ast.TFloat || from.Tag == ast.TAngle)
	toFloat := to.Tag == ast.TFloat || to.Tag == ast.TAngle
	switch {
	case fromFloat && !toFloat:
		fc.body = append(fc.body, opI32TruncF32S)
	case !fromFloat && toFloat:
		fc.body = append(fc.body, opF32ConvertI32S)
	}
}

// ============================================================
// Address computation for composites and addressable scalars
// ============================================================

// compileAddr pushes the i32 address of e and returns e's static
// type. Valid for an Ident bound to a global or a composite local, a
// FieldExpr, an IndexExpr (with inline bounds checks, §4.4 "Bounds
// checking"), or a GroupExpr wrapping one of those.
func (fc *funcCompiler) compileAddr(e ast.Expr) *ast.Type {
	switch x := e.(type) {
	case *ast.GroupExpr:
		return fc.compileAddr(x.X)

	case *ast.Ident:
		if slot, ok := fc.scopes.lookup(x.Name); ok {
			fc.emitLocalGet(slot.index)
			return slot.typ
		}
		sym := fc.gen.ar.Symbols[x.Name]
		fc.emitI32Const(sym.Location)
		return sym.Type

	case *ast.FieldExpr:
		objType := fc.compileAddr(x.Object)
		field, _ := objType.Field(x.Field)
		if field.Offset != 0 {
			fc.emitI32Const(field.Offset)
			fc.body = append(fc.body, opI32Add)
		}
		return field.Type

	case *ast.IndexExpr:
		return fc.compileIndexAddr(x)

	default:
		fc.emitI32Const(0)
		return ast.Void
	}
}

func (fc *funcCompiler) compileIndexAddr(x *ast.IndexExpr) *ast.Type {
	objType := fc.compileAddr(x.Object)
	elemType := objType.Elem
	elemSize := elemType.ByteSize()
	count := 0
	if elemSize > 0 {
		count = objType.Size / elemSize
	}

	tmpBase := fc.allocAnon(valI32)
	fc.emitLocalSet(tmpBase)

	fc.compileExpr(x.Index)
	tmpIdx := fc.allocAnon(valI32)
	fc.emitLocalSet(tmpIdx)

	fc.emitLocalGet(tmpIdx)
	fc.emitI32Const(count)
	fc.body = append(fc.body, opI32GeS)
	fc.body = append(fc.body, opIf, blockVoid, opUnreachable, opEnd)

	fc.emitLocalGet(tmpIdx)
	fc.emitI32Const(0)
	fc.body = append(fc.body, opI32LtS)
	fc.body = append(fc.body, opIf, blockVoid, opUnreachable, opEnd)

	fc.emitLocalGet(tmpBase)
	fc.emitLocalGet(tmpIdx)
	fc.emitI32Const(elemSize)
	fc.body = append(fc.body, opI32Mul)
	fc.body = append(fc.body, opI32Add)
	return elemType
}
