package vm

import (
	"fmt"

	"github.com/daimatz/gojni/pkg/classfile"
	"github.com/daimatz/gojni/pkg/jni"
)

var _ jni.Env = (*Runtime)(nil)

// GetObjectClass returns a handle to the class of obj. A class handle is
// stable for the lifetime of that class, and differs from the handle of a
// reloaded class of the same name.
func (r *Runtime) GetObjectClass(obj jni.Object) jni.Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.classOfLocked(r.refs[r.index(obj)])
	if c == nil {
		if r.checked {
			panic(fmt.Sprintf("jni: GetObjectClass: invalid object handle %d", obj))
		}
		return 0
	}
	return jni.Class(r.newRefLocked(c))
}

func (r *Runtime) classOfLocked(v any) *Class {
	switch o := v.(type) {
	case *JObject:
		return o.Class
	case *JString:
		return r.stringClass
	}
	return nil
}

// GetFieldID looks up an instance field by name and signature. It returns
// zero when cls has no such field. IDs are kept per class identity, so a
// field of an unloaded class keeps its ID and a reloaded class gets new ones.
func (r *Runtime) GetFieldID(cls jni.Class, name, sig string) jni.FieldID {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.refs[r.index(jni.Object(cls))].(*Class)
	if !ok {
		if r.checked {
			panic(fmt.Sprintf("jni: GetFieldID: invalid class handle %d", cls))
		}
		return 0
	}

	key := fieldKey{class: c, name: name, sig: sig}
	if id, ok := r.fieldIDOf[key]; ok {
		return id
	}
	f, ok := c.LookupField(name, sig)
	if !ok {
		return 0
	}
	id := jni.FieldID(len(r.fieldIDs))
	r.fieldIDs = append(r.fieldIDs, fieldRef{class: c, field: f})
	r.fieldIDOf[key] = id
	return id
}

// slotLocked returns the storage addressed by id in obj. With checking on,
// it panics unless id was resolved against obj's class (or a superclass) and
// the field has the kind the accessor expects.
func (r *Runtime) slotLocked(op string, obj jni.Object, id jni.FieldID, want classfile.Kind) *Value {
	o, ok := r.refs[r.index(obj)].(*JObject)
	if !ok {
		panic(fmt.Sprintf("jni: %s: invalid object handle %d", op, obj))
	}
	if id == 0 || int(id) >= len(r.fieldIDs) {
		panic(fmt.Sprintf("jni: %s: invalid field ID %d", op, id))
	}
	ref := r.fieldIDs[id]

	if r.checked {
		if !o.Class.IsSubclassOf(ref.class) {
			panic(fmt.Sprintf("jni: %s: field ID %d (%s) belongs to %v, object is %v", op, id, ref.field.Name, ref.class, o.Class))
		}
		if !kindMatches(ref.field.Kind, want) {
			panic(fmt.Sprintf("jni: %s: field %s has type %s (%s)", op, ref.field.Name, ref.field.Kind, ref.field.Descriptor))
		}
	}
	if ref.field.Slot >= len(o.Fields) {
		panic(fmt.Sprintf("jni: %s: field ID %d out of range for %v", op, id, o.Class))
	}
	return &o.Fields[ref.field.Slot]
}

func kindMatches(have, want classfile.Kind) bool {
	if want.IsReference() {
		return have.IsReference()
	}
	return have == want
}

func (r *Runtime) GetObjectField(obj jni.Object, id jni.FieldID) jni.Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.slotLocked("GetObjectField", obj, id, classfile.KindObject)
	if v.Type != TypeRef || v.Ref == nil {
		return 0
	}
	return r.newRefLocked(v.Ref)
}

func (r *Runtime) SetObjectField(obj jni.Object, id jni.FieldID, val jni.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slotLocked("SetObjectField", obj, id, classfile.KindObject)
	target := r.refs[r.index(val)]
	if val != 0 && target == nil {
		panic(fmt.Sprintf("jni: SetObjectField: invalid value handle %d", val))
	}
	if r.checked && target != nil {
		desc := r.fieldIDs[id].field.Descriptor
		if c := r.classOfLocked(target); c != nil && !r.assignableLocked(c, desc) {
			panic(fmt.Sprintf("jni: SetObjectField: %s is not assignable to %s", c.Name, desc))
		}
	}
	*slot = RefValue(target)
}

// assignableLocked reports whether an instance of c may be stored in a field
// with descriptor desc. The runtime has no array instances, so nothing is
// assignable to an array field except null.
func (r *Runtime) assignableLocked(c *Class, desc string) bool {
	switch classfile.DescriptorKind(desc) {
	case classfile.KindObject:
		return c.assignableTo(r.classes[classfile.ClassOf(desc)])
	case classfile.KindArray:
		return false
	}
	return true
}

func (r *Runtime) GetBooleanField(obj jni.Object, id jni.FieldID) jni.Boolean {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slotLocked("GetBooleanField", obj, id, classfile.KindBoolean).Int != 0
}

func (r *Runtime) SetBooleanField(obj jni.Object, id jni.FieldID, val jni.Boolean) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var i int32
	if val {
		i = 1
	}
	*r.slotLocked("SetBooleanField", obj, id, classfile.KindBoolean) = IntValue(i)
}

func (r *Runtime) GetByteField(obj jni.Object, id jni.FieldID) jni.Byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Byte(r.slotLocked("GetByteField", obj, id, classfile.KindByte).Int)
}

func (r *Runtime) SetByteField(obj jni.Object, id jni.FieldID, val jni.Byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetByteField", obj, id, classfile.KindByte) = IntValue(int32(val))
}

func (r *Runtime) GetCharField(obj jni.Object, id jni.FieldID) jni.Char {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Char(r.slotLocked("GetCharField", obj, id, classfile.KindChar).Int)
}

func (r *Runtime) SetCharField(obj jni.Object, id jni.FieldID, val jni.Char) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetCharField", obj, id, classfile.KindChar) = IntValue(int32(val))
}

func (r *Runtime) GetShortField(obj jni.Object, id jni.FieldID) jni.Short {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Short(r.slotLocked("GetShortField", obj, id, classfile.KindShort).Int)
}

func (r *Runtime) SetShortField(obj jni.Object, id jni.FieldID, val jni.Short) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetShortField", obj, id, classfile.KindShort) = IntValue(int32(val))
}

func (r *Runtime) GetIntField(obj jni.Object, id jni.FieldID) jni.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Int(r.slotLocked("GetIntField", obj, id, classfile.KindInt).Int)
}

func (r *Runtime) SetIntField(obj jni.Object, id jni.FieldID, val jni.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetIntField", obj, id, classfile.KindInt) = IntValue(int32(val))
}

func (r *Runtime) GetLongField(obj jni.Object, id jni.FieldID) jni.Long {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Long(r.slotLocked("GetLongField", obj, id, classfile.KindLong).Long)
}

func (r *Runtime) SetLongField(obj jni.Object, id jni.FieldID, val jni.Long) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetLongField", obj, id, classfile.KindLong) = LongValue(int64(val))
}

func (r *Runtime) GetFloatField(obj jni.Object, id jni.FieldID) jni.Float {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Float(r.slotLocked("GetFloatField", obj, id, classfile.KindFloat).Float)
}

func (r *Runtime) SetFloatField(obj jni.Object, id jni.FieldID, val jni.Float) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetFloatField", obj, id, classfile.KindFloat) = FloatValue(float32(val))
}

func (r *Runtime) GetDoubleField(obj jni.Object, id jni.FieldID) jni.Double {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jni.Double(r.slotLocked("GetDoubleField", obj, id, classfile.KindDouble).Double)
}

func (r *Runtime) SetDoubleField(obj jni.Object, id jni.FieldID, val jni.Double) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.slotLocked("SetDoubleField", obj, id, classfile.KindDouble) = DoubleValue(float64(val))
}
