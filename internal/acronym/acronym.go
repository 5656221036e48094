// Package acronym implements GDX's acronym table. An acronym is a named
// special value encoded in a record's double slot as index*1e300; the
// table tracks the name/explanatory-text pair for each acronym index,
// whether it was declared by the writer or inferred on read from an
// encoded value nobody declared (an "auto-generated" acronym), and the
// index remapping needed when two files define the same acronym index
// with different names.
package acronym

import "fmt"

// Base is the magic multiplier used to encode an acronym index into a
// double value: index*Base.
const Base = 1e300

// Entry describes one acronym.
type Entry struct {
	Name         string
	Text         string
	Index        int // the acronym index as declared (1-based)
	MappedIndex  int // index this acronym's reads remap to, 0 if unmapped
	AutoGenerated bool
}

// Table holds the acronyms encountered in one file.
type Table struct {
	entries []Entry
	byName  map[string]int // name -> 1-based slot in entries, case-sensitive by convention
	byIndex map[int]int    // declared index -> 1-based slot in entries
}

// New returns an empty acronym table.
func New() *Table {
	return &Table{byName: map[string]int{}, byIndex: map[int]int{}}
}

// Add declares an acronym with name, explanatory text and index. It is
// an error to declare the same index twice with conflicting names.
func (t *Table) Add(name, text string, index int) error {
	if slot, ok := t.byIndex[index]; ok {
		if t.entries[slot-1].Name != name {
			return fmt.Errorf("acronym: index %d already declared as %q, cannot redeclare as %q", index, t.entries[slot-1].Name, name)
		}
		return nil
	}
	t.entries = append(t.entries, Entry{Name: name, Text: text, Index: index})
	slot := len(t.entries)
	t.byName[name] = slot
	t.byIndex[index] = slot
	return nil
}

// AddAuto registers an acronym index seen encoded in a value but never
// declared, synthesizing the name "UnknownAcronym<index>" the way GDX's
// reader does.
func (t *Table) AddAuto(index int) *Entry {
	if slot, ok := t.byIndex[index]; ok {
		return &t.entries[slot-1]
	}
	name := fmt.Sprintf("UnknownAcronym%d", index)
	t.entries = append(t.entries, Entry{Name: name, Index: index, AutoGenerated: true})
	slot := len(t.entries)
	t.byName[name] = slot
	t.byIndex[index] = slot
	return &t.entries[slot-1]
}

// Count returns the number of acronyms in the table.
func (t *Table) Count() int { return len(t.entries) }

// Get returns the n-th entry (1-based).
func (t *Table) Get(n int) *Entry { return &t.entries[n-1] }

// ByIndex returns the entry declared with the given acronym index, or
// nil if none.
func (t *Table) ByIndex(index int) *Entry {
	slot, ok := t.byIndex[index]
	if !ok {
		return nil
	}
	return &t.entries[slot-1]
}

// ByName returns the entry with the given name, or nil if none.
func (t *Table) ByName(name string) *Entry {
	slot, ok := t.byName[name]
	if !ok {
		return nil
	}
	return &t.entries[slot-1]
}

// SetMapping records that reads of acronym index `from` (as encoded in
// this file's data) should be treated as acronym index `to` (the index
// the caller's own acronym table uses). This is how gdxAcronymSetInfo's
// "read map" resolves index collisions between independently authored
// files.
func (t *Table) SetMapping(from, to int) error {
	e := t.ByIndex(from)
	if e == nil {
		return fmt.Errorf("acronym: no entry for index %d", from)
	}
	e.MappedIndex = to
	return nil
}

// Resolve returns the effective index for a value decoded as acronym
// index idx: the mapped index if one was set, otherwise idx unchanged.
func (t *Table) Resolve(idx int) int {
	if e := t.ByIndex(idx); e != nil && e.MappedIndex != 0 {
		return e.MappedIndex
	}
	return idx
}

// Encode returns the double value representing acronym index idx.
func Encode(index int) float64 { return float64(index) * Base }

// Decode reports whether v encodes an acronym and, if so, its index.
// An encoded acronym value is a sufficiently large multiple of Base;
// ordinary data values never reach this magnitude.
func Decode(v float64) (index int, ok bool) {
	if v < Base/2 {
		return 0, false
	}
	return int(v/Base + 0.5), true
}
