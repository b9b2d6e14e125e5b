package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsontyper/internal/mapper"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/naming"
	"github.com/mcncl/jsontyper/internal/policy"
)

// DefaultPackage is the package clause used for Go output when none is set.
const DefaultPackage = "models"

// GoPreset renders Go struct and named types. Type visibility has no
// effect because inferred names are referenced verbatim by other types;
// field visibility picks between exported and unexported names.
func GoPreset() Preset {
	return Preset{
		Language: Go,
		Mapper:   mapper.GoMapper{},
		Declare: DeclareConcat{
			Alias:     goAlias,
			Composite: goComposite,
		},
		Property: PropertyConcat{
			Ident: goIdent,
			Field: goField,
		},
		Header:            goHeader,
		FieldVisibility:   policy.Public,
		DefaultVisibility: policy.Public,
	}
}

func goComment(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight("// "+line, " "))
	}
	return lines
}

// goDirective spells a type attribute as a comment directive such as
// //easyjson:json.
func goDirective(attr string) string {
	if strings.HasPrefix(attr, "//") {
		return attr
	}
	return "//" + attr
}

func goDeclHeader(d Declaration) []string {
	lines := goComment(d.Comment)
	for _, attr := range d.Attributes {
		lines = append(lines, goDirective(attr))
	}
	return lines
}

func goAlias(d Declaration, typ string) string {
	var b strings.Builder
	for _, line := range goDeclHeader(d) {
		b.WriteString(line + "\n")
	}
	b.WriteString("type " + d.Name.String() + " " + typ)
	return b.String()
}

func goComposite(d Declaration, fields []Field) string {
	var b strings.Builder
	for _, line := range goDeclHeader(d) {
		b.WriteString(line + "\n")
	}
	if len(fields) == 0 {
		b.WriteString("type " + d.Name.String() + " struct{}")
		return b.String()
	}

	// Align names and types the way gofmt would.
	maxNameWidth, maxTypeWidth := 0, 0
	for _, f := range fields {
		maxNameWidth = max(maxNameWidth, len(f.Name))
		maxTypeWidth = max(maxTypeWidth, len(f.Type))
	}

	b.WriteString("type " + d.Name.String() + " struct {\n")
	for _, f := range fields {
		for _, line := range f.Doc {
			b.WriteString("\t" + line + "\n")
		}
		line := fmt.Sprintf("\t%-*s %-*s %s", maxNameWidth, f.Name, maxTypeWidth, f.Type, f.Tag)
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func goIdent(key models.PropertyKey, vis policy.Visibility) string {
	if vis == policy.Private {
		return naming.GoKeywords.Escape(key.Identifier(naming.Camel))
	}
	return key.Identifier(naming.Pascal)
}

// emptyKeyNote marks a field whose JSON key is "". encoding/json reads an
// empty tag name as "use the field name", so the field is skipped instead.
const emptyKeyNote = `// json key "" cannot be expressed as a struct tag`

func goField(f FieldSpec) Field {
	doc := goComment(f.Comment)
	var parts []string
	if f.JSONMarshal {
		value := f.Key.String()
		switch {
		case value == "":
			value = "-"
			doc = append(doc, emptyKeyNote)
		case f.Optional:
			value += ",omitempty"
		}
		parts = append(parts, "json:"+quoteTagValue(value))
	}
	parts = append(parts, f.Attributes...)

	var tag string
	if len(parts) > 0 {
		tag = "`" + strings.Join(parts, " ") + "`"
	}
	return Field{
		Doc:  doc,
		Name: f.Ident,
		Type: f.Type,
		Tag:  tag,
	}
}

// quoteTagValue quotes s for use inside a raw struct tag literal.
func quoteTagValue(s string) string {
	return strings.ReplaceAll(strconv.Quote(s), "`", `\x60`)
}

func goHeader(pkg string, prelude []string) string {
	if pkg == "" {
		pkg = DefaultPackage
	}
	header := "package " + pkg + "\n"
	if len(prelude) > 0 {
		header += "\n" + strings.Join(prelude, "\n") + "\n"
	}
	return header
}
