package classfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const classMagic = 0xCAFEBABE

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(bufio.NewReader(f))
}

// Parse reads a class file up to and including its field table.
func Parse(r io.Reader) (*ClassFile, error) {
	cf := &ClassFile{}

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading magic number: %w", err)
	}
	if magic != classMagic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	header := []struct {
		what string
		dst  *uint16
	}{
		{"minor version", &cf.MinorVersion},
		{"major version", &cf.MajorVersion},
	}
	for _, h := range header {
		if err := binary.Read(r, binary.BigEndian, h.dst); err != nil {
			return nil, fmt.Errorf("reading %s: %w", h.what, err)
		}
	}

	var cpCount uint16
	if err := binary.Read(r, binary.BigEndian, &cpCount); err != nil {
		return nil, fmt.Errorf("reading constant pool count: %w", err)
	}
	pool, err := parseConstantPool(r, cpCount)
	if err != nil {
		return nil, fmt.Errorf("parsing constant pool: %w", err)
	}
	cf.ConstantPool = pool

	header = []struct {
		what string
		dst  *uint16
	}{
		{"access flags", &cf.AccessFlags},
		{"this_class", &cf.ThisClass},
		{"super_class", &cf.SuperClass},
	}
	for _, h := range header {
		if err := binary.Read(r, binary.BigEndian, h.dst); err != nil {
			return nil, fmt.Errorf("reading %s: %w", h.what, err)
		}
	}
	if _, err := cf.ClassName(); err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}

	var interfacesCount uint16
	if err := binary.Read(r, binary.BigEndian, &interfacesCount); err != nil {
		return nil, fmt.Errorf("reading interfaces count: %w", err)
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	if err := binary.Read(r, binary.BigEndian, cf.Interfaces); err != nil {
		return nil, fmt.Errorf("reading interfaces: %w", err)
	}

	var fieldsCount uint16
	if err := binary.Read(r, binary.BigEndian, &fieldsCount); err != nil {
		return nil, fmt.Errorf("reading fields count: %w", err)
	}
	cf.Fields, err = parseFields(r, cf.ConstantPool, fieldsCount)
	if err != nil {
		return nil, fmt.Errorf("parsing fields: %w", err)
	}

	return cf, nil
}

func parseFields(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]FieldInfo, error) {
	fields := make([]FieldInfo, count)
	for i := uint16(0); i < count; i++ {
		var raw struct {
			AccessFlags uint16
			NameIndex   uint16
			DescIndex   uint16
			AttrCount   uint16
		}
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, fmt.Errorf("reading field %d: %w", i, err)
		}

		name, err := GetUtf8(pool, raw.NameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving field %d name: %w", i, err)
		}
		desc, err := GetUtf8(pool, raw.DescIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving field %d descriptor: %w", i, err)
		}
		if !ValidFieldDescriptor(desc) {
			return nil, fmt.Errorf("field %s: invalid descriptor %q", name, desc)
		}

		if err := skipAttributes(r, raw.AttrCount); err != nil {
			return nil, fmt.Errorf("skipping field %s attributes: %w", name, err)
		}

		fields[i] = FieldInfo{
			AccessFlags: raw.AccessFlags,
			Name:        name,
			Descriptor:  desc,
		}
	}
	return fields, nil
}

func skipAttributes(r io.Reader, count uint16) error {
	for i := uint16(0); i < count; i++ {
		var head struct {
			NameIndex uint16
			Length    uint32
		}
		if err := binary.Read(r, binary.BigEndian, &head); err != nil {
			return fmt.Errorf("reading attribute %d header: %w", i, err)
		}
		if _, err := io.CopyN(io.Discard, r, int64(head.Length)); err != nil {
			return fmt.Errorf("reading attribute %d data: %w", i, err)
		}
	}
	return nil
}
