package models

import "fmt"

// NameSet hands out type names that are unique within one inference or
// conversion run. The zero value is not usable; call NewNameSet.
type NameSet struct {
	taken map[TypeName]int
}

// NewNameSet creates an empty NameSet.
func NewNameSet() *NameSet {
	return &NameSet{taken: make(map[TypeName]int)}
}

// Claim registers base and returns it. When base is already taken the first
// free numbered variant (base1, base2, ...) is registered and returned
// instead, so a numbered name never shadows one claimed earlier under its
// own spelling.
func (s *NameSet) Claim(base TypeName) TypeName {
	name := base
	for count := s.taken[base]; count > 0; count++ {
		name = base.WithSuffix(fmt.Sprint(count))
		if s.taken[name] == 0 {
			break
		}
	}
	s.taken[base]++
	if name != base {
		s.taken[name]++
	}
	return name
}

// Taken reports whether name has been claimed.
func (s *NameSet) Taken(name TypeName) bool {
	return s.taken[name] > 0
}
