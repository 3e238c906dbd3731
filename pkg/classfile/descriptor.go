package classfile

// Kind is the category of a field descriptor: its first character.
type Kind byte

const (
	KindInvalid Kind = 0
	KindBoolean Kind = 'Z'
	KindByte    Kind = 'B'
	KindChar    Kind = 'C'
	KindShort   Kind = 'S'
	KindInt     Kind = 'I'
	KindLong    Kind = 'J'
	KindFloat   Kind = 'F'
	KindDouble  Kind = 'D'
	KindObject  Kind = 'L'
	KindArray   Kind = '['
)

// IsReference reports whether fields of this kind hold object references.
func (k Kind) IsReference() bool {
	return k == KindObject || k == KindArray
}

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "invalid"
}

// DescriptorKind returns the kind of a field descriptor, or KindInvalid.
func DescriptorKind(desc string) Kind {
	if !ValidFieldDescriptor(desc) {
		return KindInvalid
	}
	return Kind(desc[0])
}

// ValidFieldDescriptor reports whether desc is a well-formed field
// descriptor, e.g. "I", "Ljava/lang/String;" or "[[J".
func ValidFieldDescriptor(desc string) bool {
	n := fieldDescriptorLen(desc)
	return n > 0 && n == len(desc)
}

// ClassOf returns the internal class name of an object descriptor
// ("Ljava/lang/String;" gives "java/lang/String"), or "" for other kinds.
func ClassOf(desc string) string {
	if DescriptorKind(desc) != KindObject {
		return ""
	}
	return desc[1 : len(desc)-1]
}

func fieldDescriptorLen(desc string) int {
	i := 0
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i > 255 || i == len(desc) {
		return 0
	}
	switch desc[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1
	case 'L':
		start := i + 1
		for j := start; j < len(desc); j++ {
			switch desc[j] {
			case ';':
				if j == start {
					return 0
				}
				return j + 1
			case '.', '[':
				return 0
			}
		}
	}
	return 0
}
