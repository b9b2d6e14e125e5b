package generator

import (
	"strconv"

	"github.com/mcncl/jsontyper/internal/mapper"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/policy"
)

// Declaration is the resolved header of one type declaration.
type Declaration struct {
	Name       models.TypeName
	Visibility policy.Visibility
	Comment    string
	Attributes []string
	Derives    []string
}

// DeclareConcat spells declarations for one language.
type DeclareConcat struct {
	Alias     func(d Declaration, typ string) string
	Composite func(d Declaration, fields []Field) string
}

// DeclarePart renders the shape of a type structure, consulting the
// per-type policies and the filter.
type DeclarePart struct {
	Concat     DeclareConcat
	Visibility policy.Store[models.TypeName, policy.Visibility]
	Comments   policy.Store[models.TypeName, string]
	Attributes policy.Store[models.TypeName, []string]
	Derives    []string
	Filter     policy.Filter
}

// Render returns the declaration of s, or "" when the filter drops it.
func (d DeclarePart) Render(s models.TypeStructure, m mapper.Mapper, props PropertyPart) string {
	if !d.Filter.Allows(s.Name) {
		return ""
	}

	decl := Declaration{
		Name:       s.Name,
		Visibility: d.Visibility.Lookup(s.Name),
		Comment:    d.Comments.Lookup(s.Name),
		Attributes: d.Attributes.Lookup(s.Name),
		Derives:    d.Derives,
	}

	if s.Kind == models.Alias {
		return d.Concat.Alias(decl, mapper.Map(m, s.Type))
	}

	fields := make([]Field, 0, len(s.Properties))
	taken := make(map[string]int, len(s.Properties))
	for _, p := range s.Properties {
		f := props.Render(s.Name, p, m, func(ident string) string {
			return uniqueIdent(taken, ident)
		})
		fields = append(fields, f)
	}
	return d.Concat.Composite(decl, fields)
}

// uniqueIdent numbers identifiers that two keys normalised to, such as
// "user_id" and "userId".
func uniqueIdent(taken map[string]int, ident string) string {
	n, seen := taken[ident]
	if !seen {
		taken[ident] = 1
		return ident
	}
	for {
		candidate := ident + strconv.Itoa(n)
		n++
		if _, clash := taken[candidate]; !clash {
			taken[ident] = n
			taken[candidate] = 1
			return candidate
		}
	}
}
