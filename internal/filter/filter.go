// Package filter implements named UEL filters: caller-declared bitmaps
// over the user-index space, referenced by a small integer filter
// number when reading a symbol's data. A filter records only its members
// and the highest index added; it does not track whether its membership
// forms a contiguous, ascending run, and carries no "sorted" flag.
package filter

import "fmt"

// Set is one named filter: a bitmap over user indices 1..n.
type Set struct {
	number  int
	members map[int]bool
	maxSeen int
}

// NewSet returns an empty filter registered under the given filter
// number (a caller-chosen small integer, unique per open file).
func NewSet(number int) *Set {
	return &Set{number: number, members: map[int]bool{}}
}

// Number returns this filter's number.
func (s *Set) Number() int { return s.number }

// Add marks userIdx as a member of the filter.
func (s *Set) Add(userIdx int) {
	s.members[userIdx] = true
	if userIdx > s.maxSeen {
		s.maxSeen = userIdx
	}
}

// Contains reports whether userIdx is a member.
func (s *Set) Contains(userIdx int) bool { return s.members[userIdx] }

// Count returns the number of members.
func (s *Set) Count() int { return len(s.members) }

// Registry tracks the filters declared on an open file, addressed by
// filter number.
type Registry struct {
	sets map[int]*Set
}

// NewRegistry returns an empty filter registry.
func NewRegistry() *Registry { return &Registry{sets: map[int]*Set{}} }

// Register adds s to the registry. It is an error to reuse a filter
// number already registered.
func (r *Registry) Register(s *Set) error {
	if _, ok := r.sets[s.number]; ok {
		return fmt.Errorf("filter: number %d already registered", s.number)
	}
	r.sets[s.number] = s
	return nil
}

// Get returns the filter registered under number, or nil if none.
func (r *Registry) Get(number int) *Set { return r.sets[number] }

// Unregister drops the filter registered under number.
func (r *Registry) Unregister(number int) { delete(r.sets, number) }
