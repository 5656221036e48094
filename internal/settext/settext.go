// Package settext implements the set-element explanatory-text table: an
// append-only, case-sensitive string table where index 0 is always the
// empty string, used to attach a short description to individual set
// elements.
package settext

import (
	"strconv"

	"github.com/gdxio/gdx/internal/strhash"
)

// MaxTextLength is the longest an explanatory text may be.
const MaxTextLength = 255

// entry tracks the extra bookkeeping GDX keeps per text beyond the
// string itself: the node number assigned when it was last written to a
// file (used by MakeGoodExplText-style callers that need a stable
// reference) and whether anything has referenced it since the table was
// opened.
type entry struct {
	nodeNumber int
	referenced bool
}

// Table is the set-text table. Index 0 is always "" and is never counted
// against MaxTextLength or deduplicated away; every other text is
// interned case-sensitively so "Demand" and "demand" get distinct ids.
type Table struct {
	strs    *strhash.Table
	entries []entry
}

// New returns a set-text table with its index-0 empty-string slot
// already populated.
func New() *Table {
	t := &Table{strs: strhash.NewCaseSensitive()}
	t.strs.Add("")
	t.entries = append(t.entries, entry{})
	return t
}

// Add interns s (deduplicating exact matches) and returns its 0-based
// index. The empty string always returns 0.
func (t *Table) Add(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) > MaxTextLength {
		return 0, errTooLong(s)
	}
	id := t.strs.Add(s)
	idx := id - 1
	for len(t.entries) <= idx {
		t.entries = append(t.entries, entry{})
	}
	t.entries[idx].referenced = true
	return idx, nil
}

// Get returns the text at index idx (0-based; 0 is always "").
func (t *Table) Get(idx int) string {
	if idx == 0 {
		return ""
	}
	return t.strs.Get(idx + 1)
}

// Count returns the number of distinct texts, including the index-0
// empty string.
func (t *Table) Count() int { return t.strs.Count() }

// SetNodeNumber records the on-disk node number last associated with the
// text at idx, used while writing so acronyms referencing this text can
// be cross-checked on the next read.
func (t *Table) SetNodeNumber(idx, node int) {
	for len(t.entries) <= idx {
		t.entries = append(t.entries, entry{})
	}
	t.entries[idx].nodeNumber = node
}

// NodeNumber returns the node number last recorded for idx.
func (t *Table) NodeNumber(idx int) int {
	if idx >= len(t.entries) {
		return 0
	}
	return t.entries[idx].nodeNumber
}

// Referenced reports whether the text at idx has been used by at least
// one Add call (always true for anything but a freshly grown slot).
func (t *Table) Referenced(idx int) bool {
	if idx >= len(t.entries) {
		return false
	}
	return t.entries[idx].referenced
}

type textTooLongError string

func (e textTooLongError) Error() string {
	return "settext: text exceeds " + strconv.Itoa(MaxTextLength) + " characters: " + string(e)
}

func errTooLong(s string) error { return textTooLongError(s) }
