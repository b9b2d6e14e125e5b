package generator

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/errors"
)

// Language is a rendering target.
type Language string

const (
	Rust Language = "rust"
	Go   Language = "go"
)

// Languages lists every supported target.
var Languages = []Language{Rust, Go}

// ParseLanguage resolves a target by name or file extension.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "rust", "rs":
		return Rust, nil
	case "go", "golang":
		return Go, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnknownLanguage, s)
}

// Extension returns the source file extension, dot included.
func (l Language) Extension() string {
	if l == Go {
		return ".go"
	}
	return ".rs"
}

func (l Language) String() string { return string(l) }
