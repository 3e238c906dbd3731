package classfile

import (
	"bytes"
	"encoding/binary"
)

// Builder assembles the bytes of a minimal class file: a class, its super
// class and its fields, with no methods.
type Builder struct {
	name   string
	super  string
	access uint16
	fields []FieldInfo
}

// NewBuilder returns a Builder for a public class extending java/lang/Object.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		super:  "java/lang/Object",
		access: AccPublic | AccSuper,
	}
}

// Extends sets the super class. An empty name means no super class, which
// only java/lang/Object has.
func (b *Builder) Extends(super string) *Builder {
	b.super = super
	return b
}

// Field adds a field declaration.
func (b *Builder) Field(access uint16, name, descriptor string) *Builder {
	b.fields = append(b.fields, FieldInfo{AccessFlags: access, Name: name, Descriptor: descriptor})
	return b
}

// Bytes encodes the class file.
func (b *Builder) Bytes() []byte {
	var pool constantPoolWriter
	thisClass := pool.class(b.name)
	var superClass uint16
	if b.super != "" {
		superClass = pool.class(b.super)
	}
	type rawField struct {
		AccessFlags uint16
		NameIndex   uint16
		DescIndex   uint16
		AttrCount   uint16
	}
	fields := make([]rawField, len(b.fields))
	for i, f := range b.fields {
		fields[i] = rawField{
			AccessFlags: f.AccessFlags,
			NameIndex:   pool.utf8(f.Name),
			DescIndex:   pool.utf8(f.Descriptor),
		}
	}

	var buf bytes.Buffer
	w := func(v any) { _ = binary.Write(&buf, binary.BigEndian, v) }
	w(uint32(classMagic))
	w(uint16(0))  // minor
	w(uint16(61)) // major: Java 17
	w(uint16(pool.count + 1))
	buf.Write(pool.buf.Bytes())
	w(b.access)
	w(thisClass)
	w(superClass)
	w(uint16(0)) // interfaces
	w(uint16(len(fields)))
	w(fields)
	w(uint16(0)) // methods
	w(uint16(0)) // attributes
	return buf.Bytes()
}

// ClassFile encodes the class and parses it back.
func (b *Builder) ClassFile() (*ClassFile, error) {
	return Parse(bytes.NewReader(b.Bytes()))
}

type constantPoolWriter struct {
	buf   bytes.Buffer
	count uint16
	utf8s map[string]uint16
	names map[string]uint16
}

func (p *constantPoolWriter) utf8(s string) uint16 {
	if idx, ok := p.utf8s[s]; ok {
		return idx
	}
	if p.utf8s == nil {
		p.utf8s = make(map[string]uint16)
	}
	p.count++
	p.buf.WriteByte(TagUtf8)
	_ = binary.Write(&p.buf, binary.BigEndian, uint16(len(s)))
	p.buf.WriteString(s)
	p.utf8s[s] = p.count
	return p.count
}

func (p *constantPoolWriter) class(name string) uint16 {
	if idx, ok := p.names[name]; ok {
		return idx
	}
	if p.names == nil {
		p.names = make(map[string]uint16)
	}
	nameIndex := p.utf8(name)
	p.count++
	p.buf.WriteByte(TagClass)
	_ = binary.Write(&p.buf, binary.BigEndian, nameIndex)
	p.names[name] = p.count
	return p.count
}
