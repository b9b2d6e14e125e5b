// Package schema converts JSON Schema documents into the same type
// structures the analyzer infers from sample data.
package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/policy"
)

// DefaultRootName names the root when neither the caller nor the schema
// title provides one.
const DefaultRootName = "RootType"

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// Primary returns the first non-null type, or "null" when that is the only one.
func (st SchemaType) Primary() string {
	for _, t := range st.Types {
		if t != "null" {
			return t
		}
	}
	if len(st.Types) > 0 {
		return st.Types[0]
	}
	return ""
}

// IsNullable returns true if "null" is one of the allowed types
func (st SchemaType) IsNullable() bool {
	for _, t := range st.Types {
		if t == "null" {
			return true
		}
	}
	return false
}

// AdditionalProperties handles JSON Schema additionalProperties which can be bool or Schema
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

// UnmarshalJSON handles both boolean and schema forms
func (ap *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		ap.Allowed = b
		ap.Schema = nil
		return nil
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err == nil {
		ap.Allowed = true
		ap.Schema = &s
		return nil
	}

	return fmt.Errorf("additionalProperties must be boolean or schema")
}

// Schema is the subset of a JSON Schema document that affects type shape.
type Schema struct {
	Schema      string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Type SchemaType `json:"type,omitempty"`

	Properties           map[string]*Schema    `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	Items *Schema `json:"items,omitempty"`

	Format  string   `json:"format,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`

	Enum     []interface{} `json:"enum,omitempty"`
	Nullable bool          `json:"nullable,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
}

func (s *Schema) isObject() bool {
	return s.Type.Primary() == "object" || (s.Type.Primary() == "" && (len(s.Properties) > 0 || len(s.AllOf) > 0))
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("schema file %s", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError("failed to read schema file", err)
	}

	return ParseBytes(data)
}

// ParseBytes parses JSON Schema from bytes
func ParseBytes(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, errors.NewParsingError("failed to parse JSON Schema", fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err))
	}

	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// Result holds the declarations derived from a schema together with the
// descriptions found along the way.
type Result struct {
	Structures    []models.TypeStructure
	Comments      map[models.TypeName]string
	FieldComments map[policy.FieldKey]string
}

// Annotate registers every collected description on b, replacing comments
// configured for the same names.
func (r Result) Annotate(b generator.Builder) generator.Builder {
	names := make([]models.TypeName, 0, len(r.Comments))
	for name := range r.Comments {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	for _, name := range names {
		b = b.AddComment(name.String(), r.Comments[name])
	}

	keys := make([]policy.FieldKey, 0, len(r.FieldComments))
	for key := range r.FieldComments {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type.String() < keys[j].Type.String()
		}
		return keys[i].Field < keys[j].Field
	})
	for _, key := range keys {
		b = b.AddFieldComment(key.Type.String(), key.Field.String(), r.FieldComments[key])
	}
	return b
}

// Converter turns one schema document into type structures. A Converter is
// single-use.
type Converter struct {
	schema       *Schema
	structs      []models.TypeStructure
	names        *models.NameSet
	definitions  map[string]*Schema
	resolvedRefs map[string]models.PropertyType
	comments     map[models.TypeName]string
	fieldNotes   map[policy.FieldKey]string
}

// NewConverter creates a new schema converter
func NewConverter(schema *Schema) *Converter {
	definitions := make(map[string]*Schema)
	for k, v := range schema.Definitions {
		definitions[k] = v
	}
	for k, v := range schema.Defs {
		definitions[k] = v
	}

	return &Converter{
		schema:       schema,
		names:        models.NewNameSet(),
		definitions:  definitions,
		resolvedRefs: make(map[string]models.PropertyType),
		comments:     make(map[models.TypeName]string),
		fieldNotes:   make(map[policy.FieldKey]string),
	}
}

// Convert parses data as a schema and converts it under rootName.
func Convert(rootName string, data []byte) (Result, error) {
	s, err := ParseBytes(data)
	if err != nil {
		return Result{}, err
	}
	return NewConverter(s).Convert(rootName)
}

// Convert processes the schema. The root declaration comes first; an object
// root becomes a composite and anything else an alias.
func (c *Converter) Convert(rootName string) (Result, error) {
	if rootName == "" {
		rootName = c.schema.Title
		if rootName == "" {
			rootName = DefaultRootName
		}
	}
	root := models.NewTypeName(rootName)

	resolved, err := c.deref(c.schema)
	if err != nil {
		return Result{}, err
	}

	if resolved.isObject() || len(resolved.AllOf) > 0 {
		if _, err := c.convertObject(resolved, root); err != nil {
			return Result{}, errors.NewAnalysisError("failed to convert schema", err)
		}
	} else {
		name := c.claim(root)
		slot := len(c.structs)
		c.structs = append(c.structs, models.TypeStructure{})
		typ, err := c.convertRoot(resolved, name)
		if err != nil {
			return Result{}, errors.NewAnalysisError("failed to convert schema", err)
		}
		c.structs[slot] = models.NewAlias(name, typ)
		c.describe(name, resolved.Description)
	}

	return Result{
		Structures:    c.structs,
		Comments:      c.comments,
		FieldComments: c.fieldNotes,
	}, nil
}

// convertRoot converts a non-object root. A top-level array names its
// elements apart from the alias that owns the root name.
func (c *Converter) convertRoot(schema *Schema, name models.TypeName) (models.PropertyType, error) {
	if schema.Type.Primary() != "array" && !(schema.Type.Primary() == "" && schema.Items != nil) {
		return c.convertSchema(schema, name)
	}
	if schema.Items == nil {
		return models.ArrayOf(models.AnyType()), nil
	}
	elem, err := c.convertSchema(schema.Items, c.elementName(name, true))
	if err != nil {
		return models.PropertyType{}, fmt.Errorf("failed to convert array items: %w", err)
	}
	if nullable(schema.Items) {
		elem = models.OptionalOf(elem)
	}
	return models.ArrayOf(elem), nil
}

// convertSchema recursively converts a schema. suggestedName names any
// object type the schema introduces.
func (c *Converter) convertSchema(schema *Schema, suggestedName models.TypeName) (models.PropertyType, error) {
	if schema == nil {
		return models.AnyType(), nil
	}
	if schema.Ref != "" {
		return c.resolveRef(schema.Ref)
	}
	if len(schema.AllOf) > 0 {
		merged, err := c.mergeAllOf(schema.AllOf)
		if err != nil {
			return models.PropertyType{}, err
		}
		if merged.Description == "" {
			merged.Description = schema.Description
		}
		return c.convertObject(merged, suggestedName)
	}
	if len(schema.AnyOf) > 0 || len(schema.OneOf) > 0 {
		branches := make([]*Schema, 0, len(schema.AnyOf)+len(schema.OneOf))
		branches = append(branches, schema.AnyOf...)
		branches = append(branches, schema.OneOf...)
		return c.convertUnion(branches, suggestedName)
	}

	schemaType := schema.Type.Primary()
	if schemaType == "" {
		if len(schema.Properties) > 0 {
			schemaType = "object"
		} else if schema.Items != nil {
			schemaType = "array"
		} else if len(schema.Enum) > 0 {
			schemaType = enumType(schema.Enum)
		}
	}

	switch schemaType {
	case "object":
		if len(schema.Properties) == 0 && schema.AdditionalProperties != nil && schema.AdditionalProperties.Allowed {
			// Maps have no counterpart in the type algebra.
			return models.AnyType(), nil
		}
		return c.convertObject(schema, suggestedName)
	case "array":
		return c.convertArray(schema, suggestedName)
	case "string":
		return models.PrimitiveType(models.String), nil
	case "integer":
		if schema.Minimum != nil && *schema.Minimum >= 0 {
			return models.PrimitiveType(models.Usize), nil
		}
		return models.PrimitiveType(models.Isize), nil
	case "number":
		return models.PrimitiveType(models.Float), nil
	case "boolean":
		return models.PrimitiveType(models.Boolean), nil
	case "null":
		return models.OptionalOf(models.AnyType()), nil
	default:
		return models.AnyType(), nil
	}
}

// convertObject emits a composite declaration and returns a reference to it.
func (c *Converter) convertObject(schema *Schema, structName models.TypeName) (models.PropertyType, error) {
	name := c.claim(structName)
	if err := c.fillObject(schema, name); err != nil {
		return models.PropertyType{}, err
	}
	return models.CustomType(name), nil
}

// fillObject converts the properties of schema into a composite named name.
// The slot is reserved before the properties are visited so a parent always
// precedes its children.
func (c *Converter) fillObject(schema *Schema, name models.TypeName) error {
	slot := len(c.structs)
	c.structs = append(c.structs, models.TypeStructure{})
	c.describe(name, schema.Description)

	requiredSet := make(map[string]bool)
	for _, r := range schema.Required {
		requiredSet[r] = true
	}

	propNames := make([]string, 0, len(schema.Properties))
	for propName := range schema.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)

	props := make(map[models.PropertyKey]models.PropertyType, len(propNames))
	for _, propName := range propNames {
		propSchema := schema.Properties[propName]
		key := models.PropertyKey(propName)

		typ, err := c.convertSchema(propSchema, name.Child(key))
		if err != nil {
			return fmt.Errorf("failed to convert property %s.%s: %w", name, propName, err)
		}

		if !requiredSet[propName] || nullable(propSchema) {
			typ = models.OptionalOf(typ)
		}
		props[key] = typ

		if propSchema != nil && propSchema.Description != "" {
			c.fieldNotes[policy.Field(name, key)] = propSchema.Description
		}
	}

	c.structs[slot] = models.NewComposite(name, props)
	return nil
}

func (c *Converter) convertArray(schema *Schema, suggestedName models.TypeName) (models.PropertyType, error) {
	if schema.Items == nil {
		return models.ArrayOf(models.AnyType()), nil
	}
	elem, err := c.convertSchema(schema.Items, c.elementName(suggestedName, false))
	if err != nil {
		return models.PropertyType{}, fmt.Errorf("failed to convert array items: %w", err)
	}
	if nullable(schema.Items) {
		elem = models.OptionalOf(elem)
	}
	return models.ArrayOf(elem), nil
}

// convertUnion accepts anyOf/oneOf branches that agree on one type once
// null branches are set aside. Disagreeing branches degrade to Any.
func (c *Converter) convertUnion(branches []*Schema, suggestedName models.TypeName) (models.PropertyType, error) {
	var (
		result   models.PropertyType
		seen     bool
		optional bool
	)
	for _, b := range branches {
		if b == nil {
			continue
		}
		if b.Ref == "" && len(b.Type.Types) == 1 && b.Type.Types[0] == "null" {
			optional = true
			continue
		}
		typ, err := c.convertSchema(b, suggestedName)
		if err != nil {
			return models.PropertyType{}, err
		}
		if typ.IsOptional() {
			optional = true
			typ = *typ.Elem
		}
		if seen && !typ.Equal(result) {
			return models.AnyType(), nil
		}
		result, seen = typ, true
	}
	if !seen {
		result = models.AnyType()
	}
	if optional {
		return models.OptionalOf(result), nil
	}
	return result, nil
}

// resolveRef converts a local definition once and reuses the result. Object
// definitions are registered before their properties are visited so that
// recursive references terminate.
func (c *Converter) resolveRef(ref string) (models.PropertyType, error) {
	if cached, ok := c.resolvedRefs[ref]; ok {
		return cached, nil
	}

	defName, def, err := c.lookup(ref)
	if err != nil {
		return models.PropertyType{}, err
	}

	if def.Ref == "" && len(def.AllOf) == 0 && def.isObject() &&
		!(len(def.Properties) == 0 && def.AdditionalProperties != nil && def.AdditionalProperties.Allowed) {
		name := c.claim(models.NewTypeName(defName))
		c.resolvedRefs[ref] = models.CustomType(name)
		if err := c.fillObject(def, name); err != nil {
			return models.PropertyType{}, err
		}
		return c.resolvedRefs[ref], nil
	}

	typ, err := c.convertSchema(def, models.NewTypeName(defName))
	if err != nil {
		return models.PropertyType{}, err
	}
	c.resolvedRefs[ref] = typ
	return typ, nil
}

func (c *Converter) lookup(ref string) (string, *Schema, error) {
	var defName string
	switch {
	case strings.HasPrefix(ref, "#/definitions/"):
		defName = strings.TrimPrefix(ref, "#/definitions/")
	case strings.HasPrefix(ref, "#/$defs/"):
		defName = strings.TrimPrefix(ref, "#/$defs/")
	default:
		return "", nil, fmt.Errorf("%w: external $ref not supported: %s", errors.ErrUnsupportedShape, ref)
	}
	def, ok := c.definitions[defName]
	if !ok || def == nil {
		return "", nil, fmt.Errorf("%w: unresolved $ref: %s", errors.ErrUnsupportedShape, ref)
	}
	return defName, def, nil
}

// deref follows a root-level $ref so that a document which only points at a
// definition still produces a composite root.
func (c *Converter) deref(s *Schema) (*Schema, error) {
	for depth := 0; s.Ref != "" && depth < 32; depth++ {
		_, def, err := c.lookup(s.Ref)
		if err != nil {
			return nil, errors.NewAnalysisError("failed to convert schema", err)
		}
		s = def
	}
	if len(s.AllOf) > 0 {
		merged, err := c.mergeAllOf(s.AllOf)
		if err != nil {
			return nil, errors.NewAnalysisError("failed to convert schema", err)
		}
		if merged.Description == "" {
			merged.Description = s.Description
		}
		return merged, nil
	}
	return s, nil
}

// mergeAllOf merges multiple schemas from allOf
func (c *Converter) mergeAllOf(schemas []*Schema) (*Schema, error) {
	merged := &Schema{
		Properties: make(map[string]*Schema),
		Required:   make([]string, 0),
	}

	for _, s := range schemas {
		if s == nil {
			continue
		}
		resolved := s
		if s.Ref != "" {
			_, def, err := c.lookup(s.Ref)
			if err != nil {
				return nil, err
			}
			resolved = def
		}
		if len(resolved.AllOf) > 0 {
			inner, err := c.mergeAllOf(resolved.AllOf)
			if err != nil {
				return nil, err
			}
			inner.Properties, inner.Required = mergeProps(inner, resolved)
			resolved = inner
		}

		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}
		merged.Required = append(merged.Required, resolved.Required...)

		if merged.Title == "" && resolved.Title != "" {
			merged.Title = resolved.Title
		}
		if merged.Description == "" && resolved.Description != "" {
			merged.Description = resolved.Description
		}
	}

	merged.Type = SchemaType{Types: []string{"object"}}
	return merged, nil
}

func mergeProps(into, from *Schema) (map[string]*Schema, []string) {
	props := make(map[string]*Schema, len(into.Properties)+len(from.Properties))
	for k, v := range into.Properties {
		props[k] = v
	}
	for k, v := range from.Properties {
		props[k] = v
	}
	return props, append(into.Required, from.Required...)
}

// claim ensures type names are unique within one conversion.
func (c *Converter) claim(base models.TypeName) models.TypeName {
	name := c.names.Claim(base)
	if name != base {
		slog.Debug("schema type name collision resolved",
			slog.String("name", base.String()),
			slog.String("renamed", name.String()),
		)
	}
	return name
}

// elementName singularizes the name of an array for its elements, falling
// back to an Item suffix when that changes nothing.
func (c *Converter) elementName(base models.TypeName, topLevel bool) models.TypeName {
	singular := inflect.Singularize(base.String())
	if singular != base.String() && singular != "" {
		return models.NewTypeName(singular)
	}
	if topLevel {
		return base.WithSuffix("Item")
	}
	return base
}

func (c *Converter) describe(name models.TypeName, description string) {
	if description != "" {
		c.comments[name] = description
	}
}

func nullable(s *Schema) bool {
	return s != nil && (s.Nullable || s.Type.IsNullable())
}

// enumType guesses the JSON type of an untyped enum from its first value.
func enumType(values []interface{}) string {
	switch values[0].(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		for _, v := range values {
			if f, ok := v.(float64); !ok || f != float64(int64(f)) {
				return "number"
			}
		}
		return "integer"
	}
	return ""
}
