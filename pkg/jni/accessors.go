package jni

// Each native type binds to its Env accessor pair through these methods.
// They are unexported so no type outside this package can satisfy accessor.

func (v *Object) get(env Env, obj Object, id FieldID) { *v = env.GetObjectField(obj, id) }
func (v *Object) set(env Env, obj Object, id FieldID) { env.SetObjectField(obj, id, *v) }

func (v *String) get(env Env, obj Object, id FieldID) { *v = String(env.GetObjectField(obj, id)) }
func (v *String) set(env Env, obj Object, id FieldID) { env.SetObjectField(obj, id, Object(*v)) }

func (v *Boolean) get(env Env, obj Object, id FieldID) { *v = env.GetBooleanField(obj, id) }
func (v *Boolean) set(env Env, obj Object, id FieldID) { env.SetBooleanField(obj, id, *v) }

func (v *Byte) get(env Env, obj Object, id FieldID) { *v = env.GetByteField(obj, id) }
func (v *Byte) set(env Env, obj Object, id FieldID) { env.SetByteField(obj, id, *v) }

func (v *Char) get(env Env, obj Object, id FieldID) { *v = env.GetCharField(obj, id) }
func (v *Char) set(env Env, obj Object, id FieldID) { env.SetCharField(obj, id, *v) }

func (v *Short) get(env Env, obj Object, id FieldID) { *v = env.GetShortField(obj, id) }
func (v *Short) set(env Env, obj Object, id FieldID) { env.SetShortField(obj, id, *v) }

func (v *Int) get(env Env, obj Object, id FieldID) { *v = env.GetIntField(obj, id) }
func (v *Int) set(env Env, obj Object, id FieldID) { env.SetIntField(obj, id, *v) }

func (v *Long) get(env Env, obj Object, id FieldID) { *v = env.GetLongField(obj, id) }
func (v *Long) set(env Env, obj Object, id FieldID) { env.SetLongField(obj, id, *v) }

func (v *Float) get(env Env, obj Object, id FieldID) { *v = env.GetFloatField(obj, id) }
func (v *Float) set(env Env, obj Object, id FieldID) { env.SetFloatField(obj, id, *v) }

func (v *Double) get(env Env, obj Object, id FieldID) { *v = env.GetDoubleField(obj, id) }
func (v *Double) set(env Env, obj Object, id FieldID) { env.SetDoubleField(obj, id, *v) }
