package jni

// Env is the part of the managed runtime's native interface that field
// access needs. An Env belongs to the calling thread; callers serialize use
// across threads themselves.
type Env interface {
	// GetObjectClass returns the runtime class of obj. It does not fail for
	// a live, non-null obj.
	GetObjectClass(obj Object) Class

	// GetFieldID returns the instance field of cls (or one of its
	// superclasses) with the given name and signature, or zero.
	GetFieldID(cls Class, name, sig string) FieldID

	GetObjectField(obj Object, id FieldID) Object
	SetObjectField(obj Object, id FieldID, v Object)
	GetBooleanField(obj Object, id FieldID) Boolean
	SetBooleanField(obj Object, id FieldID, v Boolean)
	GetByteField(obj Object, id FieldID) Byte
	SetByteField(obj Object, id FieldID, v Byte)
	GetCharField(obj Object, id FieldID) Char
	SetCharField(obj Object, id FieldID, v Char)
	GetShortField(obj Object, id FieldID) Short
	SetShortField(obj Object, id FieldID, v Short)
	GetIntField(obj Object, id FieldID) Int
	SetIntField(obj Object, id FieldID, v Int)
	GetLongField(obj Object, id FieldID) Long
	SetLongField(obj Object, id FieldID, v Long)
	GetFloatField(obj Object, id FieldID) Float
	SetFloatField(obj Object, id FieldID, v Float)
	GetDoubleField(obj Object, id FieldID) Double
	SetDoubleField(obj Object, id FieldID, v Double)
}
