// Package mapper turns property types into type tokens of a target language.
package mapper

import (
	"fmt"

	"github.com/mcncl/jsontyper/internal/models"
)

// Mapper has one method per case of models.PropertyType. Implementations
// are stateless lookups and never fail.
type Mapper interface {
	CaseString() string
	CaseBoolean() string
	CaseUsize() string
	CaseIsize() string
	CaseFloat() string
	CaseArray(elem string) string
	CaseOptional(inner string) string
	CaseAny() string
	CaseCustomType(name models.TypeName) string
}

// InvariantViolation is the panic value raised when a property type has a
// kind no mapper case covers. It indicates a programming defect.
type InvariantViolation struct {
	Type models.PropertyType
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("rendering invariant violated: no mapper case for %s", v.Type)
}

// Map renders t through m, recursing into array and optional elements.
func Map(m Mapper, t models.PropertyType) string {
	switch t.Kind {
	case models.PrimitiveKind:
		switch t.Primitive {
		case models.String:
			return m.CaseString()
		case models.Boolean:
			return m.CaseBoolean()
		case models.Usize:
			return m.CaseUsize()
		case models.Isize:
			return m.CaseIsize()
		case models.Float:
			return m.CaseFloat()
		}
	case models.ArrayKind:
		return m.CaseArray(Map(m, *t.Elem))
	case models.OptionalKind:
		return m.CaseOptional(Map(m, *t.Elem))
	case models.CustomTypeKind:
		return m.CaseCustomType(t.Name)
	case models.AnyKind:
		return m.CaseAny()
	}
	panic(InvariantViolation{Type: t})
}
