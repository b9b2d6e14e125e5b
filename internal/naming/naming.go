// Package naming converts raw JSON keys into identifiers for a target
// language naming style.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iancoleman/strcase"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Style is an identifier naming convention.
type Style int

const (
	Pascal   Style = iota // UserName
	Camel                 // userName
	Snake                 // user_name
	Chain                 // user-name
	Constant              // USER_NAME
)

var styleNames = map[Style]string{
	Pascal:   "pascal",
	Camel:    "camel",
	Snake:    "snake",
	Chain:    "chain",
	Constant: "constant",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle resolves a style by name. "kebab" is accepted for Chain and
// "screaming_snake" for Constant.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pascal":
		return Pascal, nil
	case "camel":
		return Camel, nil
	case "snake":
		return Snake, nil
	case "chain", "kebab":
		return Chain, nil
	case "constant", "screaming_snake":
		return Constant, nil
	}
	return Pascal, fmt.Errorf("unknown naming style %q", name)
}

// DefaultCacheSize bounds the number of memoised conversions.
const DefaultCacheSize = 4096

type cacheKey struct {
	raw   string
	style Style
}

// Convertor converts keys to identifiers. It is safe for concurrent use.
type Convertor struct {
	cache *lru.Cache[cacheKey, string]
}

// NewConvertor creates a Convertor memoising up to size conversions.
func NewConvertor(size int) (*Convertor, error) {
	c, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, err
	}
	return &Convertor{cache: c}, nil
}

var defaultConvertor *Convertor

func init() {
	c, err := NewConvertor(DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	defaultConvertor = c
}

// Default returns the process-wide Convertor.
func Default() *Convertor {
	return defaultConvertor
}

// Convert turns raw into an identifier in the given style. Characters that
// cannot appear in an identifier are removed, diacritics are folded to their
// base letter, and an identifier starting with a digit gets a prefix.
func (c *Convertor) Convert(raw string, style Style) string {
	key := cacheKey{raw: raw, style: style}
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := convert(raw, style)
	c.cache.Add(key, v)
	return v
}

// Len returns the number of cached conversions.
func (c *Convertor) Len() int {
	return c.cache.Len()
}

func convert(raw string, style Style) string {
	words := separateInvalid(Transliterate(raw))

	var out string
	switch style {
	case Camel:
		out = strcase.ToLowerCamel(words)
	case Snake:
		out = strcase.ToSnake(words)
	case Chain:
		out = strcase.ToKebab(words)
	case Constant:
		out = strcase.ToScreamingSnake(words)
	default:
		out = strcase.ToCamel(words)
	}
	out = Sanitize(out, style == Chain)

	if strings.Trim(out, "_-") == "" {
		return emptyName(style)
	}
	if out[0] >= '0' && out[0] <= '9' {
		return digitPrefix(style) + out
	}
	return out
}

// Transliterate folds accented letters to their unaccented form.
func Transliterate(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// separateInvalid replaces runes strcase does not treat as word separators
// with an underscore so "price($)" splits like "price_$".
func separateInvalid(s string) string {
	return strings.Map(func(r rune) rune {
		if isIdentRune(r) || r == ' ' || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, s)
}

// Sanitize drops every rune that is not an ASCII letter, digit or
// underscore. Hyphens are kept when allowHyphen is set.
func Sanitize(s string, allowHyphen bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isIdentRune(r) || (allowHyphen && r == '-') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func emptyName(style Style) string {
	switch style {
	case Camel, Snake, Chain:
		return "field"
	case Constant:
		return "FIELD"
	default:
		return "Field"
	}
}

func digitPrefix(style Style) string {
	switch style {
	case Camel:
		return "n"
	case Snake, Chain:
		return "_"
	default:
		return "N"
	}
}

// ToPascal converts raw with the default Convertor.
func ToPascal(raw string) string { return defaultConvertor.Convert(raw, Pascal) }

// ToCamel converts raw with the default Convertor.
func ToCamel(raw string) string { return defaultConvertor.Convert(raw, Camel) }

// ToSnake converts raw with the default Convertor.
func ToSnake(raw string) string { return defaultConvertor.Convert(raw, Snake) }

// ToChain converts raw with the default Convertor.
func ToChain(raw string) string { return defaultConvertor.Convert(raw, Chain) }

// ToConstant converts raw with the default Convertor.
func ToConstant(raw string) string { return defaultConvertor.Convert(raw, Constant) }
