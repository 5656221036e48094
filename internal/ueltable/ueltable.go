// Package ueltable implements the Unique Element Label table: a
// case-insensitive string interner (internal/strhash) plus the two extra
// index spaces GDX layers on top of it when reading a file that was
// written against a different UEL numbering — the user-index space (the
// numbering the calling application sees) and the filter-index space
// (a caller-supplied subset renumbered densely from 1).
package ueltable

import (
	"fmt"

	"github.com/gdxio/gdx/internal/intmap"
	"github.com/gdxio/gdx/internal/strhash"
)

// MaxUELLength is the longest an element label may be.
const MaxUELLength = 63

// Status classifies how a user index relates to the storage table, the
// return value GDX calls UELUserMapStatus.
type Status int

const (
	// NoMapping means the table has no user mapping at all; storage index
	// equals user index.
	NoMapping Status = iota
	// Unmapped means a user mapping exists but this particular user index
	// has not been assigned a storage entry.
	Unmapped
	// Mapped means the user index maps to a valid storage entry.
	Mapped
)

// Table is the UEL table: a case-insensitive strhash.Table of storage
// strings plus optional user<->storage index maps.
type Table struct {
	storage *strhash.Table

	// userToStorage/storageToUser are nil until a user mapping is
	// established (RegisterMapped / NewUserUEL). When nil, NoMapping
	// applies and user index == storage index everywhere.
	userToStorage *intmap.Map
	storageToUser *intmap.Map
	userCount     int // highest user index ever assigned, for NoMapping fallback bound
}

// New returns an empty UEL table.
func New() *Table {
	return &Table{storage: &strhash.Table{}}
}

// Count returns the number of interned element labels (the storage-index
// space size).
func (t *Table) Count() int { return t.storage.Count() }

// Storage returns the element label stored at storage index n (1-based).
func (t *Table) Storage(n int) string { return t.storage.Get(n) }

// IndexOf returns the storage index of s, or 0 if not present.
func (t *Table) IndexOf(s string) int { return t.storage.IndexOf(s) }

func validateLabel(s string) error {
	if len(s) == 0 {
		return fmt.Errorf("ueltable: empty element label")
	}
	if len(s) > MaxUELLength {
		return fmt.Errorf("ueltable: element label %q exceeds %d characters", s, MaxUELLength)
	}
	return nil
}

// RegisterRaw interns s and returns its storage index, independent of any
// user mapping. This is raw mode: the caller is working directly in
// storage-index space.
func (t *Table) RegisterRaw(s string) (int, error) {
	if err := validateLabel(s); err != nil {
		return 0, err
	}
	return t.storage.Add(s), nil
}

// RegisterMapped interns s (if not already present) and binds user index
// userIdx to its storage index, establishing or extending the user
// mapping. It is an error for userIdx to already be bound to a different
// storage index.
func (t *Table) RegisterMapped(userIdx int, s string) (storageIdx int, err error) {
	if err := validateLabel(s); err != nil {
		return 0, err
	}
	if t.userToStorage == nil {
		t.userToStorage = intmap.New()
		t.storageToUser = intmap.New()
	}
	storageIdx = t.storage.Add(s)
	if existing := t.userToStorage.Get(userIdx); existing != -1 && existing != storageIdx {
		return 0, fmt.Errorf("ueltable: user index %d already mapped to a different element", userIdx)
	}
	t.userToStorage.Set(userIdx, storageIdx)
	t.storageToUser.Set(storageIdx, userIdx)
	if userIdx > t.userCount {
		t.userCount = userIdx
	}
	return storageIdx, nil
}

// RegisterString behaves like RegisterRaw: string mode addresses UELs by
// spelling rather than by any index space, so it interns and returns the
// storage index the same way raw mode does.
func (t *Table) RegisterString(s string) (int, error) {
	return t.RegisterRaw(s)
}

// NewUserUEL allocates the next unused user index for storage index
// storageIdx, used when extending the user mapping while reading: a
// storage-index reference to a UEL that was never previously
// user-mapped gets pushed onto the end of the user-index space.
func (t *Table) NewUserUEL(storageIdx int) int {
	if t.userToStorage == nil {
		t.userToStorage = intmap.New()
		t.storageToUser = intmap.New()
	}
	if existing := t.storageToUser.Get(storageIdx); existing != -1 {
		return existing
	}
	t.userCount++
	t.userToStorage.Set(t.userCount, storageIdx)
	t.storageToUser.Set(storageIdx, t.userCount)
	return t.userCount
}

// StorageIndex maps a user index to its storage index, or 0 if
// unmapped/out of range. With no user mapping established, user index
// equals storage index.
func (t *Table) StorageIndex(userIdx int) int {
	if t.userToStorage == nil {
		if userIdx >= 1 && userIdx <= t.storage.Count() {
			return userIdx
		}
		return 0
	}
	v := t.userToStorage.Get(userIdx)
	if v == -1 {
		return 0
	}
	return v
}

// UserIndex maps a storage index to its user index, or 0 if the storage
// entry has never been assigned a user index. With no user mapping
// established, user index equals storage index.
func (t *Table) UserIndex(storageIdx int) int {
	if t.storageToUser == nil {
		return storageIdx
	}
	v := t.storageToUser.Get(storageIdx)
	if v == -1 {
		return 0
	}
	return v
}

// UserMapStatus classifies userIdx the way gdxUMUelGet does.
func (t *Table) UserMapStatus(userIdx int) Status {
	if t.userToStorage == nil {
		return NoMapping
	}
	if t.userToStorage.Get(userIdx) == -1 {
		return Unmapped
	}
	return Mapped
}

// UserCount returns the size of the user-index space (the highest user
// index ever assigned).
func (t *Table) UserCount() int {
	if t.userToStorage == nil {
		return t.storage.Count()
	}
	return t.userCount
}

// Rename changes the spelling stored at storage index n.
func (t *Table) Rename(n int, s string) error {
	if err := validateLabel(s); err != nil {
		return err
	}
	t.storage.Rename(n, s)
	return nil
}

// Filter is a caller-supplied subset of the user-index space, renumbered
// densely from 1 (the filter-index space). It is a separate, disposable
// view: constructing one does not alter the UEL table itself.
type Filter struct {
	userIndices []int // filter index (0-based in slice, 1-based externally) -> user index
	member      map[int]int
}

// NewFilter builds a Filter over the given user indices, in the order
// given.
func NewFilter(userIndices []int) *Filter {
	f := &Filter{
		userIndices: append([]int(nil), userIndices...),
		member:      make(map[int]int, len(userIndices)),
	}
	for i, u := range userIndices {
		f.member[u] = i + 1
	}
	return f
}

// Count returns the number of entries in the filter-index space.
func (f *Filter) Count() int { return len(f.userIndices) }

// UserIndex maps filter index n (1-based) to its user index.
func (f *Filter) UserIndex(n int) int { return f.userIndices[n-1] }

// FilterIndex maps a user index to its filter index, or 0 if it is not a
// member of this filter.
func (f *Filter) FilterIndex(userIdx int) int { return f.member[userIdx] }
