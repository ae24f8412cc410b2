package ast

import "fmt"

// TypeTag identifies one variant of the resolved type language (§3.3).
type TypeTag int

const (
	TInvalid TypeTag = iota
	TInt
	TFloat
	TBool
	TAngle
	TVoid
	TArray
	TStruct
)

// StructField is one field of a resolved Struct type: its name, type,
// byte offset, and byte size, offsets running in declaration order
// with no padding (§3.3 invariant, §3.5 invariant 3).
type StructField struct {
	Name   string
	Type   *Type
	Offset int
	Size   int
}

// Type is the resolved, canonical type of the language (§3.3). All
// primitives are 4 bytes; Array.Size = N * element size; Struct.Size =
// sum of field sizes. Type equality is structural for arrays, nominal
// for structs (matching the teacher's Type.String()-based comparison
// in lang/yparse/types.go, generalized into an explicit Equal method
// here because struct identity must be nominal while array identity
// must be structural).
type Type struct {
	Tag    TypeTag
	Size   int // byte size; for TArray, element count * element byte size
	Elem   *Type
	Name   string // struct name, for TStruct
	Fields []StructField
}

// Primitive types are all 4 bytes wide (§3.3).
var (
	Int   = &Type{Tag: TInt, Size: 4}
	Float = &Type{Tag: TFloat, Size: 4}
	Bool  = &Type{Tag: TBool, Size: 4}
	Angle = &Type{Tag: TAngle, Size: 4}
	Void  = &Type{Tag: TVoid, Size: 0}
)

// NewArray builds an Array{size, element} type; ByteSize is N * the
// element's byte size.
func NewArray(size int, elem *Type) *Type {
	return &Type{Tag: TArray, Size: size * elem.ByteSize(), Elem: elem}
}

// NewStruct builds a Struct{name, fields} type. Callers are expected
// to have already computed field offsets per §3.3/§3.5.
func NewStruct(name string, fields []StructField) *Type {
	total := 0
	for _, f := range fields {
		total += f.Size
	}
	return &Type{Tag: TStruct, Size: total, Name: name, Fields: fields}
}

// ByteSize returns the type's size in bytes of linear memory.
func (t *Type) ByteSize() int {
	if t == nil {
		return 0
	}
	return t.Size
}

// IsNumeric reports whether t is one of {Int, Float, Angle} (§3.3:
// numeric = {Int, Float, Angle}).
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Tag == TInt || t.Tag == TFloat || t.Tag == TAngle)
}

// IsComposite reports whether t is stored in linear memory rather
// than in a WASM local (§4.4 "Composite locals").
func (t *Type) IsComposite() bool {
	return t != nil && (t.Tag == TArray || t.Tag == TStruct)
}

// Equal implements §3.3's equality rule: structural for arrays,
// nominal for structs, identity for everything else.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Tag != other.Tag {
		return false
	}
	switch t.Tag {
	case TArray:
		return t.Size == other.Size && t.Elem.Equal(other.Elem)
	case TStruct:
		return t.Name == other.Name
	default:
		return true
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Tag {
	case TInt:
		return "int"
	case TFloat:
		return "float"
	case TBool:
		return "bool"
	case TAngle:
		return "angle"
	case TVoid:
		return "void"
	case TArray:
		n := 0
		if t.Elem != nil && t.Elem.ByteSize() > 0 {
			n = t.Size / t.Elem.ByteSize()
		}
		return fmt.Sprintf("[%d]%s", n, t.Elem)
	case TStruct:
		return t.Name
	default:
		return "<invalid>"
	}
}

// Field looks up a struct field by name.
func (t *Type) Field(name string) (StructField, bool) {
	if t == nil || t.Tag != TStruct {
		return StructField{}, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}
