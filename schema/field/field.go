package field

import "fmt"

// Type is the Go type of an entity field.
type Type uint8

// Field types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeInt
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeBool
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeString:  "string",
	TypeInt:     "int",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeBool:    "bool",
}

// String returns the Go spelling of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("field.Type(%d)", t)
}

// Valid reports if the type is a known field type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Kind returns the semantic kind of the type.
func (t Type) Kind() Kind {
	switch t {
	case TypeString:
		return KindString
	case TypeInt, TypeInt32, TypeInt64:
		return KindInteger
	case TypeFloat32, TypeFloat64:
		return KindFloat
	case TypeBool:
		return KindBool
	default:
		return KindInvalid
	}
}

// ParseType returns the Type of a Go type name such as "float32".
func ParseType(name string) (Type, bool) {
	for t := TypeString; t < endTypes; t++ {
		if typeNames[t] == name {
			return t, true
		}
	}
	return TypeInvalid, false
}

// Kind groups field types by how their values compare and coerce.
type Kind uint8

// Semantic kinds.
const (
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "floating-point"
	case KindBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// Descriptor describes one entity field.
type Descriptor struct {
	Name   string // Go field name
	Column string // Storage column, defaults to Name
	Type   Type
}

// String returns a string field descriptor.
func String(name string) Descriptor { return Descriptor{Name: name, Type: TypeString} }

// Int returns an int field descriptor.
func Int(name string) Descriptor { return Descriptor{Name: name, Type: TypeInt} }

// Int32 returns an int32 field descriptor.
func Int32(name string) Descriptor { return Descriptor{Name: name, Type: TypeInt32} }

// Int64 returns an int64 field descriptor.
func Int64(name string) Descriptor { return Descriptor{Name: name, Type: TypeInt64} }

// Float32 returns a float32 field descriptor.
func Float32(name string) Descriptor { return Descriptor{Name: name, Type: TypeFloat32} }

// Float64 returns a float64 field descriptor.
func Float64(name string) Descriptor { return Descriptor{Name: name, Type: TypeFloat64} }

// Bool returns a bool field descriptor.
func Bool(name string) Descriptor { return Descriptor{Name: name, Type: TypeBool} }

// StorageKey sets the column name of the field.
//
//	field.String("PosterUrl").StorageKey("poster_url")
func (d Descriptor) StorageKey(column string) Descriptor {
	d.Column = column
	return d
}

// StorageName returns the column the field is stored in.
func (d Descriptor) StorageName() string {
	if d.Column != "" {
		return d.Column
	}
	return d.Name
}
