package mapper

import (
	"math/rand"
	"testing"

	"github.com/mcncl/jsontyper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Rust(t *testing.T) {
	tests := []struct {
		typ      models.PropertyType
		expected string
	}{
		{models.PrimitiveType(models.String), "String"},
		{models.PrimitiveType(models.Boolean), "bool"},
		{models.PrimitiveType(models.Usize), "usize"},
		{models.PrimitiveType(models.Isize), "isize"},
		{models.PrimitiveType(models.Float), "f64"},
		{models.AnyType(), "serde_json::Value"},
		{models.ArrayOf(models.PrimitiveType(models.String)), "Vec<String>"},
		{models.OptionalOf(models.ArrayOf(models.PrimitiveType(models.Usize))), "Option<Vec<usize>>"},
		{models.ArrayOf(models.OptionalOf(models.CustomType(models.NewTypeName("TestObj")))), "Vec<Option<TestObj>>"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, Map(RustMapper{}, tt.typ))
		})
	}
}

func TestMap_Go(t *testing.T) {
	tests := []struct {
		typ      models.PropertyType
		expected string
	}{
		{models.PrimitiveType(models.String), "string"},
		{models.PrimitiveType(models.Boolean), "bool"},
		{models.PrimitiveType(models.Usize), "int64"},
		{models.PrimitiveType(models.Isize), "int64"},
		{models.PrimitiveType(models.Float), "float64"},
		{models.AnyType(), "interface{}"},
		{models.OptionalOf(models.AnyType()), "interface{}"},
		{models.OptionalOf(models.PrimitiveType(models.String)), "*string"},
		{models.ArrayOf(models.OptionalOf(models.PrimitiveType(models.Float))), "[]*float64"},
		{models.OptionalOf(models.ArrayOf(models.CustomType(models.NewTypeName("TestArr")))), "[]TestArr"},
		{models.OptionalOf(models.ArrayOf(models.OptionalOf(models.PrimitiveType(models.String)))), "[]*string"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, Map(GoMapper{}, tt.typ))
		})
	}
}

func TestMap_UnknownKindPanics(t *testing.T) {
	bogus := models.PropertyType{Kind: models.PropertyKind(99)}

	assert.PanicsWithValue(t, InvariantViolation{Type: bogus}, func() {
		Map(RustMapper{}, bogus)
	})
}

// randomType builds a random property type no deeper than depth.
func randomType(r *rand.Rand, depth int) models.PropertyType {
	choice := r.Intn(5)
	if depth == 0 {
		choice = r.Intn(2) * 3 // primitive or custom type
	}
	switch choice {
	case 0:
		return models.PrimitiveType(models.Primitive(r.Intn(5)))
	case 1:
		return models.ArrayOf(randomType(r, depth-1))
	case 2:
		return models.OptionalOf(randomType(r, depth-1))
	case 3:
		return models.CustomType(models.NewTypeName("Generated"))
	default:
		return models.AnyType()
	}
}

func TestMap_ExhaustiveForRandomTrees(t *testing.T) {
	r := rand.New(rand.NewSource(20240601))
	mappers := map[string]Mapper{"rust": RustMapper{}, "go": GoMapper{}}

	for i := 0; i < 500; i++ {
		typ := randomType(r, 6)
		for name, m := range mappers {
			require.NotPanics(t, func() {
				token := Map(m, typ)
				assert.NotEmpty(t, token, "%s mapper returned empty token for %s", name, typ)
			})
		}
	}
}
