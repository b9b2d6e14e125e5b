// Package policy holds the rendering decisions keyed by type or field name.
package policy

import (
	"maps"

	"github.com/mcncl/jsontyper/internal/models"
)

// FieldKey addresses one property of one type.
type FieldKey struct {
	Type  models.TypeName
	Field models.PropertyKey
}

// Field builds a FieldKey.
func Field(typeName models.TypeName, key models.PropertyKey) FieldKey {
	return FieldKey{Type: typeName, Field: key}
}

// Store resolves a value for a key in three tiers: an apply-to-all override,
// then a per-key entry, then the default. Stores are values; the With
// methods return modified copies and never touch the receiver.
type Store[K comparable, V any] struct {
	all     *V
	entries map[K]V
	def     V
}

// NewStore creates an empty store falling back to def.
func NewStore[K comparable, V any](def V) Store[K, V] {
	return Store[K, V]{def: def}
}

// With returns a copy with key set to v.
func (s Store[K, V]) With(key K, v V) Store[K, V] {
	entries := make(map[K]V, len(s.entries)+1)
	maps.Copy(entries, s.entries)
	entries[key] = v
	s.entries = entries
	return s
}

// WithAll returns a copy where every lookup yields v.
func (s Store[K, V]) WithAll(v V) Store[K, V] {
	s.all = &v
	return s
}

// WithDefault returns a copy falling back to v.
func (s Store[K, V]) WithDefault(v V) Store[K, V] {
	s.def = v
	return s
}

// Entry returns the per-key value, ignoring the override and default.
func (s Store[K, V]) Entry(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Lookup resolves key.
func (s Store[K, V]) Lookup(key K) V {
	if s.all != nil {
		return *s.all
	}
	if v, ok := s.entries[key]; ok {
		return v
	}
	return s.def
}
