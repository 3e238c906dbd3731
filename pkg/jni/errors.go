package jni

import (
	"errors"
	"fmt"
)

// ErrFieldNotFound matches any *FieldNotFoundError with errors.Is.
var ErrFieldNotFound = errors.New("field not found")

// FieldNotFoundError reports that no field with the given name and signature
// exists on the object's class. It means native and managed code disagree
// about the class layout; retrying does not help.
type FieldNotFoundError struct {
	Name      string
	Signature string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find field %s (%s)", e.Name, e.Signature)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}
