package mapper

import (
	"strings"

	"github.com/mcncl/jsontyper/internal/models"
)

const goAny = "interface{}"

// GoMapper maps to Go types. Integers are int64 regardless of sign, as most
// JSON APIs do not promise an unsigned range. Optional values are pointers,
// except for slices and interface{}, which are already nilable.
type GoMapper struct{}

func (GoMapper) CaseString() string  { return "string" }
func (GoMapper) CaseBoolean() string { return "bool" }
func (GoMapper) CaseUsize() string   { return "int64" }
func (GoMapper) CaseIsize() string   { return "int64" }
func (GoMapper) CaseFloat() string   { return "float64" }
func (GoMapper) CaseAny() string     { return goAny }

func (GoMapper) CaseArray(elem string) string { return "[]" + elem }

func (GoMapper) CaseOptional(inner string) string {
	if inner == goAny || strings.HasPrefix(inner, "[]") {
		return inner
	}
	return "*" + inner
}

func (GoMapper) CaseCustomType(name models.TypeName) string { return name.String() }
