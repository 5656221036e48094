// Package strhash implements the ordered, hash-bucketed string table that
// backs GDX's UEL, set-text and symbol-name tables: insertion-ordered ids,
// O(1) lookup by id, and amortized O(1) lookup by string via a chained hash
// table that is rebuilt (not incrementally rehashed) once the table outgrows
// its current bucket count.
package strhash

// bucket is one hash-chain link. Entries never move once appended: StrNr is
// permanent, so ids handed out by Add are stable for the table's lifetime.
type bucket struct {
	str  string
	next int // index into buckets of the next bucket in this hash chain, or -1
}

// sizeStep is one entry in the table-size growth sequence: while the
// insertion count is below threshold, the table has size buckets; once it
// reaches threshold, the table regrows to the next step's size.
// Values match the original GDX string hash table (gdlib/strhash.hpp).
type sizeStep struct {
	threshold int
	size      int
}

var growthSequence = []sizeStep{
	{1500, 997},
	{15000, 9973},
	{150000, 99991},
	{1500000, 999979},
	{15000000, 9999991},
	{1 << 62, 99999989},
}

func tableSizeFor(count int) int {
	for _, step := range growthSequence {
		if count < step.threshold {
			return step.size
		}
	}
	return growthSequence[len(growthSequence)-1].size
}

// Table is a case-insensitive, insertion-ordered string interner. Ids are
// consecutive starting at 1. The zero value is ready to use.
type Table struct {
	buckets []bucket // insertion order, StrNr = index
	heads   []int    // hash value -> index into buckets, or -1; rebuilt lazily
	sortMap []int    // lazily built permutation for ordered enumeration
	sorted  bool

	caseSensitive bool
}

// NewCaseSensitive returns a Table whose hash and equality are byte-exact
// rather than case-insensitive (used for the set-text table, which must
// distinguish "Foo" from "foo").
func NewCaseSensitive() *Table {
	return &Table{caseSensitive: true}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// hash replicates the original multiply-by-211 hash: res = 211*res + c,
// masked to 31 bits, modulo the current table size. Letters are folded to
// uppercase unless the table is case-sensitive.
func (t *Table) hash(s string, tableSize int) int {
	var res uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !t.caseSensitive {
			c = upper(c)
		}
		res = 211*res + uint32(c)
	}
	return int(res&0x7FFFFFFF) % tableSize
}

func (t *Table) equal(a, b string) bool {
	if t.caseSensitive {
		return a == b
	}
	return len(a) == len(b) && sameFold(a, b)
}

func sameFold(a, b string) bool {
	for i := 0; i < len(a); i++ {
		if upper(a[i]) != upper(b[i]) {
			return false
		}
	}
	return true
}

// rehash rebuilds the hash table at the size appropriate for the current
// count, chaining every existing bucket by re-hashing its string.
func (t *Table) rehash() {
	size := tableSizeFor(len(t.buckets))
	t.heads = make([]int, size)
	for i := range t.heads {
		t.heads[i] = -1
	}
	for i := range t.buckets {
		hv := t.hash(t.buckets[i].str, size)
		t.buckets[i].next = t.heads[hv]
		t.heads[hv] = i
	}
}

func (t *Table) needsRehash() bool {
	if t.heads == nil {
		return true
	}
	// Re-derive the active threshold step from the current table size and
	// compare against count: once we've crossed into the next step's
	// threshold the table must grow.
	return tableSizeFor(len(t.buckets)) != len(t.heads)
}

// IndexOf returns the 1-based id of s, or 0 if s is not present.
func (t *Table) IndexOf(s string) int {
	if len(t.buckets) == 0 {
		return 0
	}
	if t.needsRehash() {
		t.rehash()
	}
	hv := t.hash(s, len(t.heads))
	for i := t.heads[hv]; i != -1; i = t.buckets[i].next {
		if t.equal(t.buckets[i].str, s) {
			return i + 1
		}
	}
	return 0
}

// Add returns the existing id for s if present, otherwise appends it and
// returns its new (1-based) id.
func (t *Table) Add(s string) int {
	if id := t.IndexOf(s); id != 0 {
		return id
	}
	idx := len(t.buckets)
	t.buckets = append(t.buckets, bucket{str: s, next: -1})
	if t.heads != nil {
		hv := t.hash(s, len(t.heads))
		t.buckets[idx].next = t.heads[hv]
		t.heads[hv] = idx
	}
	t.sorted = false
	return idx + 1
}

// Get returns the string stored at id (1-based). It panics on an
// out-of-range id, mirroring the original's unchecked array access.
func (t *Table) Get(id int) string {
	return t.buckets[id-1].str
}

// Rename replaces the string at id, fixing up the hash chains so that
// subsequent IndexOf calls find it under its new spelling.
func (t *Table) Rename(id int, s string) {
	idx := id - 1
	old := t.buckets[idx].str
	t.buckets[idx].str = s
	t.sorted = false
	if t.heads == nil || t.equal(old, s) {
		return
	}
	size := len(t.heads)
	oldHV := t.hash(old, size)
	// unlink idx from its old chain
	prev := -1
	for i := t.heads[oldHV]; i != -1; i = t.buckets[i].next {
		if i == idx {
			if prev == -1 {
				t.heads[oldHV] = t.buckets[i].next
			} else {
				t.buckets[prev].next = t.buckets[i].next
			}
			break
		}
		prev = i
	}
	newHV := t.hash(s, size)
	t.buckets[idx].next = t.heads[newHV]
	t.heads[newHV] = idx
}

// Count returns the number of interned strings.
func (t *Table) Count() int { return len(t.buckets) }

// ensureSortMap lazily builds (or rebuilds) the permutation that yields
// strings in sorted order without disturbing insertion-order ids.
func (t *Table) ensureSortMap() {
	if t.sorted {
		return
	}
	if t.sortMap == nil || len(t.sortMap) != len(t.buckets) {
		t.sortMap = make([]int, len(t.buckets))
		for i := range t.sortMap {
			t.sortMap[i] = i
		}
	}
	sm := t.sortMap
	sortByKey(sm, func(i, j int) bool {
		return t.buckets[sm[i]].str < t.buckets[sm[j]].str
	})
	t.sorted = true
}

// sortByKey is a tiny in-place quicksort avoiding a sort.Interface
// allocation; n is expected to be small to moderate (symbol/UEL counts).
func sortByKey(sm []int, less func(i, j int) bool) {
	quicksort(sm, 0, len(sm)-1, less)
}

func quicksort(sm []int, lo, hi int, less func(i, j int) bool) {
	for lo < hi {
		p := partition(sm, lo, hi, less)
		if p-lo < hi-p {
			quicksort(sm, lo, p-1, less)
			lo = p + 1
		} else {
			quicksort(sm, p+1, hi, less)
			hi = p - 1
		}
	}
}

func partition(sm []int, lo, hi int, less func(i, j int) bool) int {
	mid := lo + (hi-lo)/2
	sm[mid], sm[hi] = sm[hi], sm[mid]
	store := lo
	for i := lo; i < hi; i++ {
		if less(i, hi) {
			sm[i], sm[store] = sm[store], sm[i]
			store++
		}
	}
	sm[store], sm[hi] = sm[hi], sm[store]
	return store
}

// SortedID returns the 1-based id of the n-th string (1-based) in sorted
// order.
func (t *Table) SortedID(n int) int {
	t.ensureSortMap()
	return t.sortMap[n-1] + 1
}
