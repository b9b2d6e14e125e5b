// Package generator renders inferred type structures as source code.
package generator

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/analyzer"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/parser"
)

const declarationSeparator = "\n\n"

// Generator combines a mapper with the declare and property parts. It is
// read-only after Build and safe for concurrent use.
type Generator struct {
	preset   Preset
	declare  DeclarePart
	property PropertyPart
	pkg      string
	prelude  []string
	analyzer *analyzer.Analyzer
}

// Language reports the output language.
func (g *Generator) Language() Language { return g.preset.Language }

// GenerateConcatDefine renders every structure in order and joins them.
// Declarations removed by the filter leave no gap.
func (g *Generator) GenerateConcatDefine(structs []models.TypeStructure) string {
	parts := make([]string, 0, len(structs))
	for _, s := range structs {
		if decl := g.declare.Render(s, g.preset.Mapper, g.property); decl != "" {
			parts = append(parts, decl)
		}
	}
	return strings.Join(parts, declarationSeparator)
}

// RenderFile renders structs as a complete source file.
func (g *Generator) RenderFile(structs []models.TypeStructure) string {
	var b strings.Builder
	header := g.preset.Header(g.pkg, g.prelude)
	body := g.GenerateConcatDefine(structs)

	b.WriteString(header)
	if header != "" && body != "" {
		b.WriteString("\n")
	}
	if body != "" {
		b.WriteString(body + "\n")
	}
	return b.String()
}

// Infer runs type inference with the generator's analyzer options. An empty
// root falls back to analyzer.DefaultRootName.
func (g *Generator) Infer(root string, v models.Value) []models.TypeStructure {
	var name models.TypeName
	if strings.TrimSpace(root) != "" {
		name = models.NewTypeName(root)
	}
	return g.analyzer.Infer(name, v)
}

// Render infers the types of v under root and renders the file.
func (g *Generator) Render(root string, v models.Value) string {
	return g.RenderFile(g.Infer(root, v))
}

// Generate parses text and renders it. Malformed JSON is returned as a
// parsing error and nothing is rendered.
func (g *Generator) Generate(text string, root string) (string, error) {
	v, err := parser.ParseString(text)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", root, err)
	}
	return g.Render(root, v), nil
}
