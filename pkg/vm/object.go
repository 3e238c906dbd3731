package vm

// JObject represents an instance of a loaded class. Fields is laid out as
// Class.Fields describes.
type JObject struct {
	Class  *Class
	Fields []Value
}

// JString represents a java.lang.String instance.
type JString struct {
	Value string
}

func newObject(c *Class) *JObject {
	obj := &JObject{Class: c, Fields: make([]Value, len(c.Fields))}
	for i, f := range c.Fields {
		obj.Fields[i] = zeroValue(f.Kind)
	}
	return obj
}
