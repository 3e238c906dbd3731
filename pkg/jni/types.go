package jni

// Native types that can be carried by a Field. Each maps to exactly one
// accessor pair on Env.
type (
	Boolean bool
	Byte    int8
	Char    uint16
	Short   int16
	Int     int32
	Long    int64
	Float   float32
	Double  float64
)

// Object is an opaque reference to an object in the managed runtime.
// The zero Object is null.
type Object uintptr

// String is an opaque reference to a java.lang.String instance.
type String Object

// Class is an opaque reference to a runtime class.
type Class Object

// FieldID identifies an instance field of one particular class. It is only
// meaningful for the class it was resolved against; the zero FieldID means
// the lookup failed.
type FieldID uintptr

// Value is the closed set of types a Field can carry.
type Value interface {
	Boolean | Byte | Char | Short | Int | Long | Float | Double | Object | String
}

// Field type signatures
const (
	SigBoolean = "Z"
	SigByte    = "B"
	SigChar    = "C"
	SigShort   = "S"
	SigInt     = "I"
	SigLong    = "J"
	SigFloat   = "F"
	SigDouble  = "D"
	SigObject  = "Ljava/lang/Object;"
	SigString  = "Ljava/lang/String;"
)

// ClassSignature returns the signature of a reference to the named class,
// e.g. "java/util/List" becomes "Ljava/util/List;".
func ClassSignature(internalName string) string {
	return "L" + internalName + ";"
}

// ArraySignature returns the signature of an array whose elements have the
// given signature.
func ArraySignature(elem string) string {
	return "[" + elem
}
