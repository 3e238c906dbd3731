package vm

import (
	"fmt"

	"github.com/daimatz/gojni/pkg/classfile"
)

const accInterface = 0x0200

// Class is a linked class. Each load of a class name produces a new Class,
// even when the bytes are the same; identity is the pointer.
type Class struct {
	Name        string
	Super       *Class
	Interfaces  []string
	AccessFlags uint16

	// Fields is the instance layout: inherited fields first, then the
	// class's own non-static fields in declaration order.
	Fields []InstanceField

	// Generation counts class definitions in the runtime; a reloaded class
	// gets a higher one.
	Generation uint64

	unloaded bool
}

// InstanceField is one slot of an instance layout.
type InstanceField struct {
	Owner      string
	Name       string
	Descriptor string
	Kind       classfile.Kind
	Slot       int
}

// Unloaded reports whether the class has been unloaded. Objects created
// before the unload keep using it.
func (c *Class) Unloaded() bool { return c.unloaded }

// IsInterface reports whether the class is an interface.
func (c *Class) IsInterface() bool { return c.AccessFlags&accInterface != 0 }

// LookupField finds the instance field with the given name and descriptor,
// searching the class before its superclasses.
func (c *Class) LookupField(name, descriptor string) (InstanceField, bool) {
	for i := len(c.Fields) - 1; i >= 0; i-- {
		f := c.Fields[i]
		if f.Name == name && f.Descriptor == descriptor {
			return f, true
		}
	}
	return InstanceField{}, false
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for k := c; k != nil; k = k.Super {
		if k == other {
			return true
		}
	}
	return false
}

// assignableTo reports whether instances of c may be stored in a field
// declared as the named class. Interfaces are only known by direct
// declaration, so unknown targets are accepted.
func (c *Class) assignableTo(target *Class) bool {
	if target == nil || target.IsInterface() {
		return true
	}
	for k := c; k != nil; k = k.Super {
		if k.Name == target.Name {
			return true
		}
		for _, iface := range k.Interfaces {
			if iface == target.Name {
				return true
			}
		}
	}
	return false
}

func (c *Class) String() string {
	return fmt.Sprintf("%s#%d", c.Name, c.Generation)
}

// linkClass builds the Class for cf on top of its already linked super class.
func linkClass(cf *classfile.ClassFile, super *Class, generation uint64) (*Class, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	c := &Class{
		Name:        name,
		Super:       super,
		AccessFlags: cf.AccessFlags,
		Generation:  generation,
	}
	for _, idx := range cf.Interfaces {
		iface, err := classfile.GetClassName(cf.ConstantPool, idx)
		if err != nil {
			return nil, fmt.Errorf("link %s: interface: %w", name, err)
		}
		c.Interfaces = append(c.Interfaces, iface)
	}
	if super != nil {
		c.Fields = append(c.Fields, super.Fields...)
	}
	for _, f := range cf.Fields {
		if f.IsStatic() {
			continue
		}
		kind := classfile.DescriptorKind(f.Descriptor)
		if kind == classfile.KindInvalid {
			return nil, fmt.Errorf("link %s: field %s: invalid descriptor %q", name, f.Name, f.Descriptor)
		}
		c.Fields = append(c.Fields, InstanceField{
			Owner:      name,
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Kind:       kind,
			Slot:       len(c.Fields),
		})
	}
	return c, nil
}
