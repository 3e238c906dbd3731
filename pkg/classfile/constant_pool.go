package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Constant pool tags
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// entrySize is the payload size of each fixed-size constant pool entry.
var entrySize = map[uint8]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

// parseConstantPool reads constant_pool_count-1 entries from the reader.
// The returned slice is 1-indexed: index 0 is nil. Only Utf8 and Class
// entries keep their contents.
func parseConstantPool(r io.Reader, count uint16) ([]ConstantPoolEntry, error) {
	pool := make([]ConstantPoolEntry, count)

	for i := uint16(1); i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, fmt.Errorf("reading constant pool tag at index %d: %w", i, err)
		}

		switch tag {
		case TagUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, fmt.Errorf("reading Utf8 length at index %d: %w", i, err)
			}
			buf := make([]byte, length)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("reading Utf8 bytes at index %d: %w", i, err)
			}
			pool[i] = &ConstantUtf8{Value: string(buf)}

		case TagClass:
			var nameIndex uint16
			if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
				return nil, fmt.Errorf("reading Class at index %d: %w", i, err)
			}
			pool[i] = &ConstantClass{NameIndex: nameIndex}

		default:
			size, ok := entrySize[tag]
			if !ok {
				return nil, fmt.Errorf("unknown constant pool tag %d at index %d", tag, i)
			}
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("skipping constant pool entry at index %d (tag=%d): %w", i, tag, err)
			}
			pool[i] = &constantOpaque{tag: tag}
			if tag == TagLong || tag == TagDouble {
				i++ // 8-byte constants take 2 slots
			}
		}
	}
	return pool, nil
}

// GetUtf8 returns the string value of a Utf8 entry.
func GetUtf8(pool []ConstantPoolEntry, index uint16) (string, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", index)
	}
	utf8, ok := pool[index].(*ConstantUtf8)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Utf8 (tag=%d)", index, pool[index].Tag())
	}
	return utf8.Value, nil
}

// GetClassName returns the internal name a Class entry points at.
func GetClassName(pool []ConstantPoolEntry, classIndex uint16) (string, error) {
	if int(classIndex) >= len(pool) || pool[classIndex] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", classIndex)
	}
	class, ok := pool[classIndex].(*ConstantClass)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Class (tag=%d)", classIndex, pool[classIndex].Tag())
	}
	return GetUtf8(pool, class.NameIndex)
}
