package policy

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/models"
)

// Visibility controls how a declaration or field is exposed.
type Visibility int

const (
	Private Visibility = iota
	Public
	// Crate is Rust's pub(crate). Other languages treat it as Public.
	Crate
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Crate:
		return "crate"
	default:
		return "private"
	}
}

// ParseVisibility resolves a visibility by name.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private", "":
		return Private, nil
	case "public", "pub":
		return Public, nil
	case "crate", "pub(crate)":
		return Crate, nil
	}
	return Private, fmt.Errorf("unknown visibility %q", s)
}

// Optional decides whether a field renders as optional. An explicit
// require wins over an explicit optional, which wins over the global flag.
type Optional struct {
	required Store[FieldKey, bool]
	optional Store[FieldKey, bool]
	all      bool
}

// Require returns a copy where key is never optional.
func (o Optional) Require(key FieldKey) Optional {
	o.required = o.required.With(key, true)
	return o
}

// MakeOptional returns a copy where key is optional unless required.
func (o Optional) MakeOptional(key FieldKey) Optional {
	o.optional = o.optional.With(key, true)
	return o
}

// All returns a copy with the global flag set.
func (o Optional) All(enabled bool) Optional {
	o.all = enabled
	return o
}

// IsOptional resolves key.
func (o Optional) IsOptional(key FieldKey) bool {
	if o.required.Lookup(key) {
		return false
	}
	if o.optional.Lookup(key) {
		return true
	}
	return o.all
}

// Filter selects which declarations are emitted. A blacklisted name is
// always dropped; when a whitelist exists only its names are kept.
type Filter struct {
	whitelist map[models.TypeName]struct{}
	blacklist map[models.TypeName]struct{}
}

// Allow returns a copy with names added to the whitelist.
func (f Filter) Allow(names ...models.TypeName) Filter {
	f.whitelist = addNames(f.whitelist, names)
	return f
}

// Deny returns a copy with names added to the blacklist.
func (f Filter) Deny(names ...models.TypeName) Filter {
	f.blacklist = addNames(f.blacklist, names)
	return f
}

// Allows reports whether name should be rendered.
func (f Filter) Allows(name models.TypeName) bool {
	if _, denied := f.blacklist[name]; denied {
		return false
	}
	if len(f.whitelist) == 0 {
		return true
	}
	_, ok := f.whitelist[name]
	return ok
}

func addNames(set map[models.TypeName]struct{}, names []models.TypeName) map[models.TypeName]struct{} {
	out := make(map[models.TypeName]struct{}, len(set)+len(names))
	for n := range set {
		out[n] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
