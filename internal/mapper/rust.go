package mapper

import "github.com/mcncl/jsontyper/internal/models"

// RustMapper maps to serde-friendly Rust types.
type RustMapper struct{}

func (RustMapper) CaseString() string  { return "String" }
func (RustMapper) CaseBoolean() string { return "bool" }
func (RustMapper) CaseUsize() string   { return "usize" }
func (RustMapper) CaseIsize() string   { return "isize" }
func (RustMapper) CaseFloat() string   { return "f64" }
func (RustMapper) CaseAny() string     { return "serde_json::Value" }

func (RustMapper) CaseArray(elem string) string { return "Vec<" + elem + ">" }

func (RustMapper) CaseOptional(inner string) string { return "Option<" + inner + ">" }

func (RustMapper) CaseCustomType(name models.TypeName) string { return name.String() }
