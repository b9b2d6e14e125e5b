package formatter

import (
	"strings"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/generator"
	"golang.org/x/tools/imports"
)

const rustIndent = "    "

// Formatter tidies rendered source for its language.
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format formats code with a default Formatter.
func Format(lang generator.Language, code string) (string, error) {
	return NewFormatter().Format(lang, code)
}

// Format returns code in the canonical layout of lang. Go code goes through
// goimports, which also drops unused prelude imports; Rust code has its
// whitespace normalized.
func (f *Formatter) Format(lang generator.Language, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	switch lang {
	case generator.Go:
		return f.formatGo(code)
	case generator.Rust:
		return f.formatRust(code), nil
	}
	_, err := generator.ParseLanguage(string(lang))
	return "", errors.NewFormatError("no formatter for language", err)
}

func (f *Formatter) formatGo(code string) (string, error) {
	formatted, err := imports.Process("", []byte(code), nil)
	if err != nil {
		return "", errors.NewFormatError("failed to parse Go code", err)
	}
	return string(formatted), nil
}

// formatRust trims trailing whitespace, indents with spaces, collapses
// blank line runs and ends the file with exactly one newline.
func (f *Formatter) formatRust(code string) string {
	var out []string
	blank := true // drops leading blank lines
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, expandTabs(line))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n") + "\n"
}

func expandTabs(line string) string {
	trimmed := strings.TrimLeft(line, "\t")
	return strings.Repeat(rustIndent, len(line)-len(trimmed)) + trimmed
}
