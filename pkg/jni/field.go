// Package jni provides typed access to instance fields of objects living in a
// managed runtime, on top of the runtime's native interface (Env).
//
//	count := jni.NewField[jni.Int](env, obj, "count", jni.SigInt)
//	n, err := count.Get()
//	err = count.Set(n + 1)
//
// The accessor used for a Field is chosen by its type parameter at compile
// time; a type outside Value does not compile.
package jni

import "fmt"

// accessor is satisfied only by pointers to the native types of this package.
type accessor[T Value] interface {
	*T
	get(env Env, obj Object, id FieldID)
	set(env Env, obj Object, id FieldID)
}

// Field is a proxy for one instance field of one object. It is meant to be
// built at the access site and dropped afterwards.
//
// The field ID is looked up again on every Get and Set. It cannot be kept:
// the object's class may be unloaded and a different class with the same
// name loaded in its place, and an ID from the old class would then address
// the wrong storage without any error.
//
// T must agree with the signature. A mismatch is not detected here; what
// happens is up to the runtime.
type Field[T Value, P accessor[T]] struct {
	env       Env
	instance  Object
	name      string
	signature string
}

// NewField returns a proxy for the field name of type signature on instance.
// Nothing is validated until the field is accessed.
func NewField[T Value, P accessor[T]](env Env, instance Object, name, signature string) Field[T, P] {
	return Field[T, P]{
		env:       env,
		instance:  instance,
		name:      name,
		signature: signature,
	}
}

// Name returns the field name.
func (f Field[T, P]) Name() string { return f.name }

// Signature returns the field type signature.
func (f Field[T, P]) Signature() string { return f.signature }

// Instance returns the object the field belongs to.
func (f Field[T, P]) Instance() Object { return f.instance }

// Get returns the current value of the field.
func (f Field[T, P]) Get() (T, error) {
	var v T
	id, err := f.fieldID()
	if err != nil {
		return v, err
	}
	P(&v).get(f.env, f.instance, id)
	return v, nil
}

// Set stores v into the field.
func (f Field[T, P]) Set(v T) error {
	id, err := f.fieldID()
	if err != nil {
		return err
	}
	P(&v).set(f.env, f.instance, id)
	return nil
}

// MustGet is like Get but panics if the field cannot be found.
func (f Field[T, P]) MustGet() T {
	v, err := f.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// MustSet is like Set but panics if the field cannot be found.
func (f Field[T, P]) MustSet(v T) {
	if err := f.Set(v); err != nil {
		panic(err)
	}
}

func (f Field[T, P]) fieldID() (FieldID, error) {
	// GetObjectClass cannot fail for a live object.
	cls := f.env.GetObjectClass(f.instance)
	id := f.env.GetFieldID(cls, f.name, f.signature)
	if id == 0 {
		return 0, &FieldNotFoundError{Name: f.name, Signature: f.signature}
	}
	return id, nil
}

// String implements fmt.Stringer.
func (f Field[T, P]) String() string {
	return fmt.Sprintf("%s (%s)", f.name, f.signature)
}
