package analyzer

import (
	"log/slog"
	"sort"

	"github.com/go-openapi/inflect"
	"github.com/mcncl/jsontyper/internal/models"
)

// DefaultRootName is the default name for the root type if not specified.
const DefaultRootName = "RootType"

// itemSuffix names the element type of a top-level array.
const itemSuffix = "Item"

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSingularize names array element types after the singular form of
// their field, so "users" yields "RootUser" instead of "RootUsers".
func WithSingularize(enabled bool) Option {
	return func(a *Analyzer) {
		a.singularize = enabled
	}
}

// Analyzer infers type structures from JSON values. It holds only
// configuration; each Infer call keeps its own state, so one Analyzer may be
// shared between goroutines.
type Analyzer struct {
	singularize bool
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Infer walks value and returns every type it declares, root first and the
// rest in discovery order over sorted keys.
func Infer(root models.TypeName, value models.Value) []models.TypeStructure {
	return New().Infer(root, value)
}

// Infer walks value and returns every type it declares. A zero root falls
// back to DefaultRootName. Infer never fails on a parsed value.
func (a *Analyzer) Infer(root models.TypeName, value models.Value) []models.TypeStructure {
	if root.IsZero() {
		root = models.NewTypeName(DefaultRootName)
	}

	in := &inference{
		analyzer: a,
		names:    models.NewNameSet(),
	}
	in.claim(root)

	if value.Kind == models.ObjectValue {
		in.composite(root, []models.Value{value})
		return in.structs
	}

	// Any other document becomes an alias for its inferred type.
	slot := in.reserve(root)
	var typ models.PropertyType
	if value.Kind == models.ArrayValue {
		typ = in.array(a.elementName(root, true), []models.Value{value})
	} else {
		typ = in.infer(root, []models.Value{value})
	}
	in.structs[slot] = models.NewAlias(root, typ)
	in.pop()
	return in.structs
}

// elementName derives the base name for the elements of an array whose own
// name is base. Top-level arrays need a distinct element name because the
// alias already owns base.
func (a *Analyzer) elementName(base models.TypeName, topLevel bool) models.TypeName {
	if a.singularize {
		singular := inflect.Singularize(base.String())
		if singular != base.String() {
			return models.NewTypeName(singular)
		}
	}
	if topLevel {
		return base.WithSuffix(itemSuffix)
	}
	return base
}

// inference is the state of one Infer call: the finished structures in
// output order plus the stack of types still being built.
type inference struct {
	analyzer *Analyzer
	structs  []models.TypeStructure
	stack    []models.TypeName
	names    *models.NameSet
}

// claim registers name and returns it, or a numbered variant when another
// field path already produced the same name.
func (in *inference) claim(base models.TypeName) models.TypeName {
	name := in.names.Claim(base)
	if name != base {
		slog.Debug("type name collision resolved",
			slog.String("name", base.String()),
			slog.String("renamed", name.String()),
			slog.Any("path", in.path()),
		)
	}
	return name
}

// reserve appends a placeholder so a parent precedes its children in the
// output, and pushes name onto the in-progress stack.
func (in *inference) reserve(name models.TypeName) int {
	in.structs = append(in.structs, models.TypeStructure{})
	in.stack = append(in.stack, name)
	return len(in.structs) - 1
}

func (in *inference) pop() {
	in.stack = in.stack[:len(in.stack)-1]
}

func (in *inference) path() []string {
	path := make([]string, len(in.stack))
	for i, n := range in.stack {
		path[i] = n.String()
	}
	return path
}

// composite unions the fields of every sample object into one composite
// type called name. Each key's type is inferred from all values seen for it.
func (in *inference) composite(name models.TypeName, samples []models.Value) models.PropertyType {
	slot := in.reserve(name)

	var keys []models.PropertyKey
	fieldSamples := make(map[models.PropertyKey][]models.Value)
	for _, obj := range samples {
		for _, k := range obj.Keys() {
			key := models.PropertyKey(k)
			if _, seen := fieldSamples[key]; !seen {
				keys = append(keys, key)
			}
			v, _ := obj.Field(k)
			fieldSamples[key] = append(fieldSamples[key], v)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if len(samples) > 1 {
		slog.Debug("merged object shapes",
			slog.String("type", name.String()),
			slog.Int("samples", len(samples)),
			slog.Int("fields", len(keys)),
		)
	}

	props := make(map[models.PropertyKey]models.PropertyType, len(keys))
	for _, key := range keys {
		props[key] = in.infer(name.Child(key), fieldSamples[key])
	}

	in.structs[slot] = models.NewComposite(name, props)
	in.pop()
	return models.CustomType(name)
}

// array infers the element type shared by all items of the sample arrays.
func (in *inference) array(elemBase models.TypeName, samples []models.Value) models.PropertyType {
	var items []models.Value
	for _, s := range samples {
		items = append(items, s.Items...)
	}
	if len(items) == 0 {
		return models.ArrayOf(models.AnyType())
	}
	return models.ArrayOf(in.infer(elemBase, items))
}

// infer unifies samples that share one field path into a single type.
// Nulls carry no shape and are skipped unless nothing else is present;
// samples of different kinds fall back to Any.
func (in *inference) infer(base models.TypeName, samples []models.Value) models.PropertyType {
	present := make([]models.Value, 0, len(samples))
	for _, s := range samples {
		if s.Kind != models.NullValue {
			present = append(present, s)
		}
	}
	if len(present) == 0 {
		return models.AnyType()
	}

	kind := present[0].Kind
	for _, s := range present[1:] {
		if s.Kind != kind {
			return models.AnyType()
		}
	}

	switch kind {
	case models.ObjectValue:
		return in.composite(in.claim(base), present)
	case models.ArrayValue:
		return in.array(in.analyzer.elementName(base, false), present)
	case models.StringValue:
		return models.PrimitiveType(models.String)
	case models.BoolValue:
		return models.PrimitiveType(models.Boolean)
	case models.NumberValue:
		return models.PrimitiveType(unifyNumbers(present))
	}
	return models.AnyType()
}

// unifyNumbers widens number kinds: any float makes Float, a negative
// integer makes Isize, otherwise Usize.
func unifyNumbers(values []models.Value) models.Primitive {
	result := models.Usize
	for _, v := range values {
		switch v.NumberKind() {
		case models.Float:
			return models.Float
		case models.Isize:
			result = models.Isize
		}
	}
	return result
}
