package vm

import "github.com/daimatz/gojni/pkg/classfile"

// ValueType represents the type of a Value held in a field slot.
type ValueType int

const (
	TypeInt ValueType = iota // boolean, byte, char, short and int
	TypeLong
	TypeFloat
	TypeDouble
	TypeRef
	TypeNull
)

// Value is the content of one field slot.
type Value struct {
	Type   ValueType
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Ref    any
}

// IntValue creates an integer Value.
func IntValue(v int32) Value {
	return Value{Type: TypeInt, Int: v}
}

// LongValue creates a long Value.
func LongValue(v int64) Value {
	return Value{Type: TypeLong, Long: v}
}

// FloatValue creates a float Value.
func FloatValue(v float32) Value {
	return Value{Type: TypeFloat, Float: v}
}

// DoubleValue creates a double Value.
func DoubleValue(v float64) Value {
	return Value{Type: TypeDouble, Double: v}
}

// RefValue creates a reference Value. A nil ref gives the null Value.
func RefValue(ref any) Value {
	if ref == nil {
		return NullValue()
	}
	return Value{Type: TypeRef, Ref: ref}
}

// NullValue creates a null reference Value.
func NullValue() Value {
	return Value{Type: TypeNull}
}

// zeroValue is the initial content of a field of the given kind.
func zeroValue(kind classfile.Kind) Value {
	switch kind {
	case classfile.KindLong:
		return LongValue(0)
	case classfile.KindFloat:
		return FloatValue(0)
	case classfile.KindDouble:
		return DoubleValue(0)
	case classfile.KindObject, classfile.KindArray:
		return NullValue()
	}
	return IntValue(0)
}
