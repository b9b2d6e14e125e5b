package generator

import (
	"github.com/mcncl/jsontyper/internal/mapper"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/policy"
)

// FieldSpec is everything the policies decided about one property.
type FieldSpec struct {
	Key         models.PropertyKey
	Ident       string
	Visibility  policy.Visibility
	Type        string
	Optional    bool
	Comment     string
	Attributes  []string
	JSONMarshal bool
}

// Field is one spelled field line, split so that layouts can align columns.
type Field struct {
	Doc        []string
	Visibility string
	Name       string
	Type       string
	Tag        string
}

// PropertyConcat spells fields for one language.
type PropertyConcat struct {
	Ident func(key models.PropertyKey, vis policy.Visibility) string
	Field func(f FieldSpec) Field
}

// PropertyPart renders fields, consulting the per-field policies.
type PropertyPart struct {
	Concat      PropertyConcat
	Visibility  policy.Store[policy.FieldKey, policy.Visibility]
	Comments    policy.Store[policy.FieldKey, string]
	Attributes  policy.Store[policy.FieldKey, []string]
	Optional    policy.Optional
	JSONMarshal bool
}

// Render spells property p of owner. unique resolves identifier clashes
// within the enclosing declaration.
func (pp PropertyPart) Render(owner models.TypeName, p models.Property, m mapper.Mapper, unique func(string) string) Field {
	key := policy.Field(owner, p.Key)
	vis := pp.Visibility.Lookup(key)

	typ := p.Type
	optional := typ.IsOptional()
	if !optional && pp.Optional.IsOptional(key) {
		typ = models.OptionalOf(typ)
		optional = true
	}

	return pp.Concat.Field(FieldSpec{
		Key:         p.Key,
		Ident:       unique(pp.Concat.Ident(p.Key, vis)),
		Visibility:  vis,
		Type:        mapper.Map(m, typ),
		Optional:    optional,
		Comment:     pp.Comments.Lookup(key),
		Attributes:  pp.Attributes.Lookup(key),
		JSONMarshal: pp.JSONMarshal,
	})
}
