package generator

import (
	"log/slog"
	"slices"

	"github.com/mcncl/jsontyper/internal/analyzer"
	"github.com/mcncl/jsontyper/internal/mapper"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/policy"
)

// Preset bundles the language-specific strategies a Generator combines.
type Preset struct {
	Language Language
	Mapper   mapper.Mapper
	Declare  DeclareConcat
	Property PropertyConcat
	Header   func(pkg string, prelude []string) string

	// Visibility used when no policy names a type or field.
	DefaultVisibility policy.Visibility
	FieldVisibility   policy.Visibility
}

// PresetFor returns the preset of lang.
func PresetFor(lang Language) (Preset, error) {
	switch lang {
	case Rust:
		return RustPreset(), nil
	case Go:
		return GoPreset(), nil
	}
	_, err := ParseLanguage(string(lang))
	return Preset{}, err
}

// Builder accumulates rendering policy. Every method returns a modified
// copy, so a Builder may be branched freely; Build freezes it.
type Builder struct {
	preset      Preset
	declare     DeclarePart
	property    PropertyPart
	pkg         string
	prelude     []string
	singularize bool
}

// NewBuilder starts from the defaults of lang.
func NewBuilder(lang Language) (Builder, error) {
	preset, err := PresetFor(lang)
	if err != nil {
		return Builder{}, err
	}
	return FromPreset(preset), nil
}

// FromPreset starts from a custom preset.
func FromPreset(p Preset) Builder {
	return Builder{
		preset: p,
		declare: DeclarePart{
			Concat:     p.Declare,
			Visibility: policy.NewStore[models.TypeName](p.DefaultVisibility),
			Comments:   policy.NewStore[models.TypeName](""),
			Attributes: policy.NewStore[models.TypeName, []string](nil),
		},
		property: PropertyPart{
			Concat:     p.Property,
			Visibility: policy.NewStore[policy.FieldKey](p.FieldVisibility),
			Comments:   policy.NewStore[policy.FieldKey](""),
			Attributes: policy.NewStore[policy.FieldKey, []string](nil),
		},
	}
}

// Language reports the target of the builder.
func (b Builder) Language() Language { return b.preset.Language }

// PubAll makes every type and field public.
func (b Builder) PubAll() Builder {
	b.declare.Visibility = b.declare.Visibility.WithAll(policy.Public)
	b.property.Visibility = b.property.Visibility.WithAll(policy.Public)
	return b
}

// AllOptional sets the global optional flag.
func (b Builder) AllOptional(enabled bool) Builder {
	b.property.Optional = b.property.Optional.All(enabled)
	return b
}

// JSONMarshal toggles serialization hints: serde renames for Rust and json
// struct tags for Go.
func (b Builder) JSONMarshal(enabled bool) Builder {
	b.property.JSONMarshal = enabled
	return b
}

// Derives appends derive macros to every struct. Languages without derives
// ignore them.
func (b Builder) Derives(derives ...string) Builder {
	b.declare.Derives = append(slices.Clone(b.declare.Derives), derives...)
	return b
}

// AddVisibility sets the visibility of one type. Go output ignores it, since
// other declarations refer to inferred types by their exported names.
func (b Builder) AddVisibility(typeName string, vis policy.Visibility) Builder {
	if b.preset.Language == Go && vis != policy.Public {
		slog.Debug("type visibility has no effect on Go output",
			slog.String("type", typeName),
			slog.String("visibility", vis.String()),
		)
	}
	b.declare.Visibility = b.declare.Visibility.With(models.NewTypeName(typeName), vis)
	return b
}

func (b Builder) AddFieldVisibility(typeName, field string, vis policy.Visibility) Builder {
	b.property.Visibility = b.property.Visibility.With(fieldKey(typeName, field), vis)
	return b
}

func (b Builder) AddComment(typeName, comment string) Builder {
	b.declare.Comments = b.declare.Comments.With(models.NewTypeName(typeName), comment)
	return b
}

func (b Builder) AddFieldComment(typeName, field, comment string) Builder {
	b.property.Comments = b.property.Comments.With(fieldKey(typeName, field), comment)
	return b
}

// AddAttribute appends an attribute to a type, keeping earlier ones.
func (b Builder) AddAttribute(typeName, attr string) Builder {
	name := models.NewTypeName(typeName)
	existing, _ := b.declare.Attributes.Entry(name)
	b.declare.Attributes = b.declare.Attributes.With(name, append(slices.Clone(existing), attr))
	return b
}

// AddFieldAttribute appends an attribute to a field, keeping earlier ones.
func (b Builder) AddFieldAttribute(typeName, field, attr string) Builder {
	key := fieldKey(typeName, field)
	existing, _ := b.property.Attributes.Entry(key)
	b.property.Attributes = b.property.Attributes.With(key, append(slices.Clone(existing), attr))
	return b
}

// AddOptional marks a field optional unless it is also required.
func (b Builder) AddOptional(typeName, field string) Builder {
	b.property.Optional = b.property.Optional.MakeOptional(fieldKey(typeName, field))
	return b
}

// AddRequire marks a field required, overriding every optional setting.
func (b Builder) AddRequire(typeName, field string) Builder {
	b.property.Optional = b.property.Optional.Require(fieldKey(typeName, field))
	return b
}

// Whitelist restricts output to the named types.
func (b Builder) Whitelist(typeNames ...string) Builder {
	b.declare.Filter = b.declare.Filter.Allow(toTypeNames(typeNames)...)
	return b
}

// Blacklist drops the named types from output.
func (b Builder) Blacklist(typeNames ...string) Builder {
	b.declare.Filter = b.declare.Filter.Deny(toTypeNames(typeNames)...)
	return b
}

// Package sets the package clause for languages that have one.
func (b Builder) Package(name string) Builder {
	b.pkg = name
	return b
}

// Prelude appends lines written after the package clause, such as imports.
func (b Builder) Prelude(lines ...string) Builder {
	b.prelude = append(slices.Clone(b.prelude), lines...)
	return b
}

// Singularize names array element types after the singular of their key.
func (b Builder) Singularize(enabled bool) Builder {
	b.singularize = enabled
	return b
}

// Build freezes the configuration into a Generator.
func (b Builder) Build() *Generator {
	return &Generator{
		preset:   b.preset,
		declare:  b.declare,
		property: b.property,
		pkg:      b.pkg,
		prelude:  slices.Clone(b.prelude),
		analyzer: analyzer.New(analyzer.WithSingularize(b.singularize)),
	}
}

func fieldKey(typeName, field string) policy.FieldKey {
	return policy.Field(models.NewTypeName(typeName), models.PropertyKey(field))
}

func toTypeNames(names []string) []models.TypeName {
	out := make([]models.TypeName, len(names))
	for i, n := range names {
		out[i] = models.NewTypeName(n)
	}
	return out
}
