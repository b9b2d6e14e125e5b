package models

import (
	"fmt"
	"sort"

	"github.com/mcncl/jsontyper/internal/naming"
)

// TypeName is a validated, Pascal-cased type identifier. Two names are equal
// when their normalized strings are equal, so TypeName is usable as a map key.
type TypeName struct {
	name string
}

// NewTypeName normalizes raw into a TypeName. A raw string that is already
// an exported identifier is kept verbatim so "TestAB" stays "TestAB".
func NewTypeName(raw string) TypeName {
	if isExportedIdent(raw) {
		return TypeName{name: raw}
	}
	return TypeName{name: naming.ToPascal(raw)}
}

func isExportedIdent(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	return naming.Sanitize(s, false) == s
}

func (n TypeName) String() string { return n.name }

// IsZero reports whether n was never assigned.
func (n TypeName) IsZero() bool { return n.name == "" }

// Child derives the name of a type nested under the property key.
func (n TypeName) Child(key PropertyKey) TypeName {
	return TypeName{name: n.name + naming.ToPascal(string(key))}
}

// WithSuffix appends an already-valid identifier fragment.
func (n TypeName) WithSuffix(suffix string) TypeName {
	return TypeName{name: n.name + suffix}
}

// PropertyKey is a JSON field name exactly as it appeared in the input.
type PropertyKey string

func (k PropertyKey) String() string { return string(k) }

// Identifier converts the key to an identifier in the given style.
func (k PropertyKey) Identifier(style naming.Style) string {
	return naming.Default().Convert(string(k), style)
}

// Primitive enumerates scalar property types.
type Primitive int

const (
	String Primitive = iota
	Boolean
	Usize
	Isize
	Float
)

func (p Primitive) String() string {
	switch p {
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case Usize:
		return "Usize"
	case Isize:
		return "Isize"
	case Float:
		return "Float"
	}
	return fmt.Sprintf("Primitive(%d)", int(p))
}

// IsNumber reports whether p is one of the numeric kinds.
func (p Primitive) IsNumber() bool {
	return p == Usize || p == Isize || p == Float
}

// PropertyKind identifies the variant held by a PropertyType.
type PropertyKind int

const (
	PrimitiveKind PropertyKind = iota
	ArrayKind
	OptionalKind
	CustomTypeKind
	AnyKind
)

// PropertyType is the closed algebra describing a field or element type.
type PropertyType struct {
	Kind      PropertyKind
	Primitive Primitive     // PrimitiveKind
	Elem      *PropertyType // ArrayKind, OptionalKind
	Name      TypeName      // CustomTypeKind
}

// PrimitiveType returns Primitive(p).
func PrimitiveType(p Primitive) PropertyType {
	return PropertyType{Kind: PrimitiveKind, Primitive: p}
}

// ArrayOf returns Array(elem).
func ArrayOf(elem PropertyType) PropertyType {
	return PropertyType{Kind: ArrayKind, Elem: &elem}
}

// OptionalOf returns Optional(inner). Optional(Optional(T)) collapses to
// Optional(T).
func OptionalOf(inner PropertyType) PropertyType {
	if inner.Kind == OptionalKind {
		return inner
	}
	return PropertyType{Kind: OptionalKind, Elem: &inner}
}

// CustomType returns a reference to a named type.
func CustomType(name TypeName) PropertyType {
	return PropertyType{Kind: CustomTypeKind, Name: name}
}

// AnyType returns Any.
func AnyType() PropertyType {
	return PropertyType{Kind: AnyKind}
}

// IsOptional reports whether t is Optional.
func (t PropertyType) IsOptional() bool { return t.Kind == OptionalKind }

// Equal reports structural equality.
func (t PropertyType) Equal(o PropertyType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case PrimitiveKind:
		return t.Primitive == o.Primitive
	case ArrayKind, OptionalKind:
		return t.Elem.Equal(*o.Elem)
	case CustomTypeKind:
		return t.Name == o.Name
	}
	return true
}

func (t PropertyType) String() string {
	switch t.Kind {
	case PrimitiveKind:
		return t.Primitive.String()
	case ArrayKind:
		return "Array(" + t.Elem.String() + ")"
	case OptionalKind:
		return "Optional(" + t.Elem.String() + ")"
	case CustomTypeKind:
		return "CustomType(" + t.Name.String() + ")"
	case AnyKind:
		return "Any"
	}
	return fmt.Sprintf("PropertyKind(%d)", int(t.Kind))
}

// StructureKind distinguishes composite declarations from aliases.
type StructureKind int

const (
	Composite StructureKind = iota
	Alias
)

// Property is one field of a composite type.
type Property struct {
	Key  PropertyKey
	Type PropertyType
}

// TypeStructure is one inferred declaration.
type TypeStructure struct {
	Kind       StructureKind
	Name       TypeName
	Properties []Property    // Composite, sorted by Key
	Type       PropertyType // Alias
}

// NewComposite builds a composite type with properties sorted by key.
func NewComposite(name TypeName, props map[PropertyKey]PropertyType) TypeStructure {
	properties := make([]Property, 0, len(props))
	for k, t := range props {
		properties = append(properties, Property{Key: k, Type: t})
	}
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].Key < properties[j].Key
	})
	return TypeStructure{Kind: Composite, Name: name, Properties: properties}
}

// NewAlias builds an alias declaration.
func NewAlias(name TypeName, t PropertyType) TypeStructure {
	return TypeStructure{Kind: Alias, Name: name, Type: t}
}

// Property looks up a composite property by key.
func (s TypeStructure) Property(key PropertyKey) (PropertyType, bool) {
	for _, p := range s.Properties {
		if p.Key == key {
			return p.Type, true
		}
	}
	return PropertyType{}, false
}

// Equal reports whether s and o declare the same shape under the same name.
func (s TypeStructure) Equal(o TypeStructure) bool {
	if s.Kind != o.Kind || s.Name != o.Name {
		return false
	}
	if s.Kind == Alias {
		return s.Type.Equal(o.Type)
	}
	if len(s.Properties) != len(o.Properties) {
		return false
	}
	for i := range s.Properties {
		if s.Properties[i].Key != o.Properties[i].Key || !s.Properties[i].Type.Equal(o.Properties[i].Type) {
			return false
		}
	}
	return true
}
