package naming

// Keywords is a set of reserved words for a target language.
type Keywords map[string]struct{}

func newKeywords(words ...string) Keywords {
	k := make(Keywords, len(words))
	for _, w := range words {
		k[w] = struct{}{}
	}
	return k
}

// Contains reports whether word is reserved.
func (k Keywords) Contains(word string) bool {
	_, ok := k[word]
	return ok
}

// Escape appends an underscore to reserved words.
func (k Keywords) Escape(ident string) string {
	if k.Contains(ident) {
		return ident + "_"
	}
	return ident
}

// RustKeywords are the strict and reserved keywords of Rust 2021.
var RustKeywords = newKeywords(
	"as", "async", "await", "break", "const", "continue", "crate", "dyn", "else",
	"enum", "extern", "false", "fn", "for", "if", "impl", "in", "let", "loop",
	"match", "mod", "move", "mut", "pub", "ref", "return", "self", "Self",
	"static", "struct", "super", "trait", "true", "type", "unsafe", "use",
	"where", "while", "abstract", "become", "box", "do", "final", "macro",
	"override", "priv", "try", "typeof", "unsized", "virtual", "yield",
)

// GoKeywords are the Go keywords plus predeclared identifiers that would
// shadow builtins when used as unexported names.
var GoKeywords = newKeywords(
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type",
	"var", "any", "bool", "error", "string", "len", "new", "make", "nil",
)
