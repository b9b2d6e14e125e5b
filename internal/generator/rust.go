package generator

import (
	"strconv"
	"strings"

	"github.com/mcncl/jsontyper/internal/mapper"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/naming"
	"github.com/mcncl/jsontyper/internal/policy"
)

const rustIndent = "    "

// RustPreset renders serde structs and type aliases.
func RustPreset() Preset {
	return Preset{
		Language: Rust,
		Mapper:   mapper.RustMapper{},
		Declare: DeclareConcat{
			Alias:     rustAlias,
			Composite: rustComposite,
		},
		Property: PropertyConcat{
			Ident: rustIdent,
			Field: rustField,
		},
		Header: rustHeader,
	}
}

func rustVisibility(v policy.Visibility) string {
	switch v {
	case policy.Public:
		return "pub "
	case policy.Crate:
		return "pub(crate) "
	default:
		return ""
	}
}

func rustComment(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight("/// "+line, " "))
	}
	return lines
}

func rustAttribute(attr string) string {
	if strings.HasPrefix(attr, "#[") {
		return attr
	}
	return "#[" + attr + "]"
}

func rustDeclHeader(d Declaration, derive bool) []string {
	lines := rustComment(d.Comment)
	if derive && len(d.Derives) > 0 {
		lines = append(lines, "#[derive("+strings.Join(d.Derives, ", ")+")]")
	}
	for _, attr := range d.Attributes {
		lines = append(lines, rustAttribute(attr))
	}
	return lines
}

func rustAlias(d Declaration, typ string) string {
	var b strings.Builder
	for _, line := range rustDeclHeader(d, false) {
		b.WriteString(line + "\n")
	}
	b.WriteString(rustVisibility(d.Visibility) + "type " + d.Name.String() + " = " + typ + ";")
	return b.String()
}

func rustComposite(d Declaration, fields []Field) string {
	var b strings.Builder
	for _, line := range rustDeclHeader(d, true) {
		b.WriteString(line + "\n")
	}
	b.WriteString(rustVisibility(d.Visibility) + "struct " + d.Name.String() + " {")
	if len(fields) == 0 {
		b.WriteString("}")
		return b.String()
	}
	b.WriteString("\n")
	for _, f := range fields {
		for _, line := range f.Doc {
			b.WriteString(rustIndent + line + "\n")
		}
		b.WriteString(rustIndent + f.Visibility + f.Name + ": " + f.Type + ",\n")
	}
	b.WriteString("}")
	return b.String()
}

func rustIdent(key models.PropertyKey, _ policy.Visibility) string {
	return naming.RustKeywords.Escape(key.Identifier(naming.Snake))
}

func rustField(f FieldSpec) Field {
	doc := rustComment(f.Comment)
	if f.JSONMarshal && f.Ident != f.Key.String() {
		doc = append(doc, "#[serde(rename = "+strconv.Quote(f.Key.String())+")]")
	}
	for _, attr := range f.Attributes {
		doc = append(doc, rustAttribute(attr))
	}
	return Field{
		Doc:        doc,
		Visibility: rustVisibility(f.Visibility),
		Name:       f.Ident,
		Type:       f.Type,
	}
}

func rustHeader(_ string, prelude []string) string {
	if len(prelude) == 0 {
		return ""
	}
	return strings.Join(prelude, "\n") + "\n"
}
