package schema

import (
	"testing"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	str     = models.PrimitiveType(models.String)
	boolean = models.PrimitiveType(models.Boolean)
	isize   = models.PrimitiveType(models.Isize)
	usize   = models.PrimitiveType(models.Usize)
	float   = models.PrimitiveType(models.Float)
)

func convert(t *testing.T, root, input string) Result {
	t.Helper()
	result, err := Convert(root, []byte(input))
	require.NoError(t, err)
	return result
}

func structNames(structs []models.TypeStructure) []string {
	names := make([]string, len(structs))
	for i, s := range structs {
		names[i] = s.Name.String()
	}
	return names
}

func property(t *testing.T, s models.TypeStructure, key string) models.PropertyType {
	t.Helper()
	typ, ok := s.Property(models.PropertyKey(key))
	require.True(t, ok, "property %q missing from %s", key, s.Name)
	return typ
}

func custom(name string) models.PropertyType {
	return models.CustomType(models.NewTypeName(name))
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid simple schema",
			input:   `{"type": "object"}`,
			wantErr: false,
		},
		{
			name:    "valid schema with properties",
			input:   `{"type": "object", "properties": {"name": {"type": "string"}}}`,
			wantErr: false,
		},
		{
			name:    "multiple types",
			input:   `{"type": ["string", "null"]}`,
			wantErr: false,
		},
		{
			name:    "invalid JSON",
			input:   `{invalid}`,
			wantErr: true,
		},
		{
			name:    "invalid type field",
			input:   `{"type": 5}`,
			wantErr: true,
		},
		{
			name:    "empty object",
			input:   `{}`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := ParseString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsMalformedInput(err))
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, schema)
			}
		})
	}
}

func TestConvertSimpleObject(t *testing.T) {
	result := convert(t, "User", `{
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "integer"},
			"name": {"type": "string"},
			"active": {"type": "boolean"},
			"score": {"type": "number"}
		}
	}`)

	require.Len(t, result.Structures, 1)
	user := result.Structures[0]
	assert.Equal(t, models.Composite, user.Kind)
	assert.Equal(t, "User", user.Name.String())
	require.Len(t, user.Properties, 4)
	assert.Equal(t, models.PropertyKey("active"), user.Properties[0].Key, "properties are sorted")

	assert.Equal(t, isize, property(t, user, "id"))
	assert.Equal(t, str, property(t, user, "name"))
	assert.Equal(t, models.OptionalOf(boolean), property(t, user, "active"))
	assert.Equal(t, models.OptionalOf(float), property(t, user, "score"))
}

func TestConvertIntegerMinimum(t *testing.T) {
	result := convert(t, "Counter", `{
		"type": "object",
		"required": ["count", "delta"],
		"properties": {
			"count": {"type": "integer", "minimum": 0},
			"delta": {"type": "integer", "minimum": -10}
		}
	}`)

	counter := result.Structures[0]
	assert.Equal(t, usize, property(t, counter, "count"))
	assert.Equal(t, isize, property(t, counter, "delta"))
}

func TestConvertWithRef(t *testing.T) {
	result := convert(t, "User", `{
		"type": "object",
		"required": ["home"],
		"properties": {
			"home": {"$ref": "#/definitions/Address"},
			"work": {"$ref": "#/definitions/Address"}
		},
		"definitions": {
			"Address": {
				"type": "object",
				"required": ["street"],
				"properties": {"street": {"type": "string"}}
			}
		}
	}`)

	assert.Equal(t, []string{"User", "Address"}, structNames(result.Structures), "a definition is emitted once")
	user := result.Structures[0]
	assert.Equal(t, custom("Address"), property(t, user, "home"))
	assert.Equal(t, models.OptionalOf(custom("Address")), property(t, user, "work"))
	assert.Equal(t, str, property(t, result.Structures[1], "street"))
}

func TestConvertWithDefsKey(t *testing.T) {
	result := convert(t, "Order", `{
		"type": "object",
		"required": ["status"],
		"properties": {"status": {"$ref": "#/$defs/order_status"}},
		"$defs": {
			"order_status": {"type": "string", "enum": ["open", "closed"]}
		}
	}`)

	require.Len(t, result.Structures, 1)
	assert.Equal(t, str, property(t, result.Structures[0], "status"))
}

func TestConvertRecursiveRef(t *testing.T) {
	result := convert(t, "Tree", `{
		"$ref": "#/definitions/Node",
		"definitions": {
			"Node": {
				"type": "object",
				"required": ["children"],
				"properties": {
					"children": {"type": "array", "items": {"$ref": "#/definitions/Node"}}
				}
			}
		}
	}`)

	assert.Equal(t, []string{"Tree", "Node"}, structNames(result.Structures))
	for _, s := range result.Structures {
		assert.Equal(t, models.ArrayOf(custom("Node")), property(t, s, "children"))
	}
}

func TestConvertUnresolvedRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"missing definition", "#/definitions/Missing"},
		{"external", "https://example.com/schema.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert("Test", []byte(`{"type": "object", "properties": {"x": {"$ref": "`+tt.ref+`"}}}`))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrUnsupportedShape)
			assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeAnalysis})
		})
	}
}

func TestConvertNestedObject(t *testing.T) {
	result := convert(t, "User", `{
		"type": "object",
		"required": ["profile"],
		"properties": {
			"profile": {
				"type": "object",
				"required": ["full_name"],
				"properties": {
					"full_name": {"type": "string"},
					"settings": {"type": "object", "properties": {}}
				}
			}
		}
	}`)

	assert.Equal(t, []string{"User", "UserProfile", "UserProfileSettings"}, structNames(result.Structures))
	assert.Equal(t, custom("UserProfile"), property(t, result.Structures[0], "profile"))
	assert.Equal(t, models.OptionalOf(custom("UserProfileSettings")), property(t, result.Structures[1], "settings"))
	assert.Empty(t, result.Structures[2].Properties)
}

func TestConvertArray(t *testing.T) {
	result := convert(t, "User", `{
		"type": "object",
		"required": ["tags", "addresses", "anything"],
		"properties": {
			"tags": {"type": "array", "items": {"type": "string"}},
			"addresses": {
				"type": "array",
				"items": {"type": "object", "properties": {"city": {"type": "string"}}}
			},
			"anything": {"type": "array"}
		}
	}`)

	assert.Equal(t, []string{"User", "UserAddress"}, structNames(result.Structures))
	user := result.Structures[0]
	assert.Equal(t, models.ArrayOf(str), property(t, user, "tags"))
	assert.Equal(t, models.ArrayOf(custom("UserAddress")), property(t, user, "addresses"))
	assert.Equal(t, models.ArrayOf(models.AnyType()), property(t, user, "anything"))
}

func TestConvertRootArray(t *testing.T) {
	result := convert(t, "Products", `{
		"type": "array",
		"description": "All products.",
		"items": {
			"type": "object",
			"required": ["id"],
			"properties": {"id": {"type": "integer", "minimum": 1}}
		}
	}`)

	require.Len(t, result.Structures, 2)
	alias := result.Structures[0]
	assert.Equal(t, models.Alias, alias.Kind)
	assert.Equal(t, "Products", alias.Name.String())
	assert.Equal(t, models.ArrayOf(custom("Product")), alias.Type)
	assert.Equal(t, "Product", result.Structures[1].Name.String())
	assert.Equal(t, "All products.", result.Comments[models.NewTypeName("Products")])
}

func TestConvertScalarRoot(t *testing.T) {
	result := convert(t, "Name", `{"type": "string"}`)

	require.Len(t, result.Structures, 1)
	assert.Equal(t, models.NewAlias(models.NewTypeName("Name"), str), result.Structures[0])
}

func TestConvertWithDescription(t *testing.T) {
	result := convert(t, "User", `{
		"type": "object",
		"description": "A user account.",
		"required": ["email"],
		"properties": {
			"email": {"type": "string", "description": "Primary address."}
		}
	}`)

	user := models.NewTypeName("User")
	assert.Equal(t, "A user account.", result.Comments[user])
	assert.Equal(t, "Primary address.", result.FieldComments[policy.Field(user, "email")])
}

func TestConvertAllOf(t *testing.T) {
	result := convert(t, "Admin", `{
		"allOf": [
			{"$ref": "#/definitions/Person"},
			{
				"type": "object",
				"required": ["level"],
				"properties": {"level": {"type": "integer", "minimum": 0}}
			}
		],
		"definitions": {
			"Person": {
				"type": "object",
				"description": "A person.",
				"required": ["name"],
				"properties": {"name": {"type": "string"}}
			}
		}
	}`)

	require.Len(t, result.Structures, 1)
	admin := result.Structures[0]
	assert.Equal(t, "Admin", admin.Name.String())
	assert.Equal(t, str, property(t, admin, "name"))
	assert.Equal(t, usize, property(t, admin, "level"))
	assert.Equal(t, "A person.", result.Comments[admin.Name])
}

func TestConvertNullableField(t *testing.T) {
	result := convert(t, "Test", `{
		"type": "object",
		"required": ["a", "b", "c"],
		"properties": {
			"a": {"type": ["string", "null"]},
			"b": {"type": "integer", "nullable": true},
			"c": {"type": "null"}
		}
	}`)

	test := result.Structures[0]
	assert.Equal(t, models.OptionalOf(str), property(t, test, "a"))
	assert.Equal(t, models.OptionalOf(isize), property(t, test, "b"))
	assert.Equal(t, models.OptionalOf(models.AnyType()), property(t, test, "c"))
}

func TestConvertUnions(t *testing.T) {
	result := convert(t, "Test", `{
		"type": "object",
		"required": ["same", "mixed", "nullable"],
		"properties": {
			"same": {"oneOf": [{"type": "string"}, {"type": "string", "format": "uuid"}]},
			"mixed": {"anyOf": [{"type": "string"}, {"type": "integer"}]},
			"nullable": {"anyOf": [{"type": "boolean"}, {"type": "null"}]}
		}
	}`)

	test := result.Structures[0]
	assert.Equal(t, str, property(t, test, "same"))
	assert.Equal(t, models.AnyType(), property(t, test, "mixed"))
	assert.Equal(t, models.OptionalOf(boolean), property(t, test, "nullable"))
}

func TestConvertMapAndEnum(t *testing.T) {
	result := convert(t, "Test", `{
		"type": "object",
		"required": ["labels", "level", "ratio"],
		"properties": {
			"labels": {"type": "object", "additionalProperties": {"type": "string"}},
			"level": {"enum": [1, 2, 3]},
			"ratio": {"enum": [0.5, 1]}
		}
	}`)

	require.Len(t, result.Structures, 1)
	test := result.Structures[0]
	assert.Equal(t, models.AnyType(), property(t, test, "labels"))
	assert.Equal(t, isize, property(t, test, "level"))
	assert.Equal(t, float, property(t, test, "ratio"))
}

func TestConvertRootName(t *testing.T) {
	result := convert(t, "", `{"title": "shipping label", "type": "object"}`)
	assert.Equal(t, "ShippingLabel", result.Structures[0].Name.String())

	result = convert(t, "", `{"type": "object"}`)
	assert.Equal(t, DefaultRootName, result.Structures[0].Name.String())
}

func TestConvertNameCollision(t *testing.T) {
	result := convert(t, "A", `{
		"type": "object",
		"required": ["b_c", "b"],
		"properties": {
			"b_c": {"type": "object", "properties": {}},
			"b": {
				"type": "object",
				"required": ["c"],
				"properties": {"c": {"type": "object", "properties": {}}}
			}
		}
	}`)

	assert.Equal(t, []string{"A", "AB", "ABC", "ABC1"}, structNames(result.Structures))
}

func TestConvertNameCollisionSkipsTakenSuffix(t *testing.T) {
	result := convert(t, "Test", `{
		"type": "object",
		"required": ["aB", "aB1", "a_b"],
		"properties": {
			"aB": {"type": "object", "properties": {"x": {"type": "string"}}},
			"aB1": {"type": "object", "properties": {"y": {"type": "string"}}},
			"a_b": {"type": "object", "properties": {"z": {"type": "string"}}}
		}
	}`)

	assert.Equal(t, []string{"Test", "TestAB", "TestAB1", "TestAB2"}, structNames(result.Structures))

	root := result.Structures[0]
	for key, want := range map[string]string{"aB": "TestAB", "aB1": "TestAB1", "a_b": "TestAB2"} {
		typ, ok := root.Property(models.PropertyKey(key))
		require.True(t, ok, key)
		assert.Equal(t, models.CustomType(models.NewTypeName(want)), typ, key)
	}
}

func TestAnnotateRendersDescriptions(t *testing.T) {
	result := convert(t, "User", `{
		"type": "object",
		"description": "A user account.",
		"required": ["email"],
		"properties": {
			"email": {"type": "string", "description": "Primary address."},
			"nickname": {"type": "string"}
		}
	}`)

	b, err := generator.NewBuilder(generator.Go)
	require.NoError(t, err)
	out := result.Annotate(b.JSONMarshal(true).Package("api")).Build().RenderFile(result.Structures)

	assert.Contains(t, out, "package api\n")
	assert.Contains(t, out, "// A user account.\ntype User struct {\n")
	assert.Contains(t, out, "\t// Primary address.\n\tEmail ")
	assert.Contains(t, out, "`json:\"nickname,omitempty\"`")
	assert.Contains(t, out, "*string")
}
