// Package accum implements the linked data accumulator GDX uses to
// collect records for a symbol while it is being written: a singly
// linked list of fixed-width records (dim integer keys + value doubles),
// plus an in-place multi-key radix sort so out-of-order writes can still
// be flushed in sorted key order.
//
// Grounded on gdlib/datastorage.hpp's TLinkedData/TLinkedDataRec.
package accum

// Record is one accumulated data record: a set of 1-based UEL keys (one
// per dimension) and a value payload. Value is generic over the caller's
// record type (level, plus any additional fields the codec attaches) so
// this package stays agnostic of GDX's record contents; accum only needs
// to sort on Keys.
type Record struct {
	Keys  []int
	Value interface{}
	next  int // index into Accumulator.records of the next record, or -1
}

// Accumulator is a singly linked list of Records along with the running
// min/max key seen per dimension, which the radix sort needs to size its
// buckets.
type Accumulator struct {
	dim     int
	records []Record
	head    int // index of first record, or -1 if empty
	tail    int // index of last record, or -1; see note on Sort below

	minKey []int
	maxKey []int
	sorted bool
}

// New returns an empty accumulator for dim-dimensional keys.
func New(dim int) *Accumulator {
	return &Accumulator{
		dim:    dim,
		head:   -1,
		tail:   -1,
		minKey: make([]int, dim),
		maxKey: make([]int, dim),
		sorted: true,
	}
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int { return len(a.records) }

// Add appends a record, tracking the running min/max key per dimension
// and whether insertion order is still sorted (ascending, dimension 0
// major) so a subsequent Sort can short-circuit when it's already a
// no-op.
func (a *Accumulator) Add(keys []int, value interface{}) {
	if len(keys) != a.dim {
		panic("accum: key dimension mismatch")
	}
	idx := len(a.records)
	rec := Record{Keys: append([]int(nil), keys...), Value: value, next: -1}

	if idx == 0 {
		for d := 0; d < a.dim; d++ {
			a.minKey[d] = keys[d]
			a.maxKey[d] = keys[d]
		}
	} else {
		if a.sorted && compareKeys(a.records[a.tail].Keys, keys) > 0 {
			a.sorted = false
		}
		for d := 0; d < a.dim; d++ {
			if keys[d] < a.minKey[d] {
				a.minKey[d] = keys[d]
			}
			if keys[d] > a.maxKey[d] {
				a.maxKey[d] = keys[d]
			}
		}
	}

	a.records = append(a.records, rec)
	if a.head == -1 {
		a.head = idx
	} else {
		a.records[a.tail].next = idx
	}
	a.tail = idx
}

func compareKeys(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}

// IsSorted reports whether the records are already in ascending key
// order, tracked incrementally as records are added.
func (a *Accumulator) IsSorted() bool { return a.sorted }

// Sort performs an in-place multi-key radix sort, relinking the list
// into ascending key order (dimension 0 major). It is a no-op if the
// accumulator is already sorted.
//
// The sort works from the last dimension to the first, at each step
// scattering the current list into per-key buckets sized
// maxKey[d]-minKey[d]+1 and re-concatenating them by walking buckets
// from the highest key down to the lowest, prepending each bucket onto
// the list assembled so far; after dim passes the list is ascending on
// every dimension.
//
// As in the original, the tail pointer is not recomputed after sorting:
// only head is guaranteed correct, which is sufficient for read-back
// iteration (this package's only post-sort use) but would need a
// trailing scan to restore Tail before any further Add.
func (a *Accumulator) Sort() {
	if a.sorted || len(a.records) < 2 {
		a.sorted = true
		return
	}
	for d := a.dim - 1; d >= 0; d-- {
		span := a.maxKey[d] - a.minKey[d] + 1
		head := make([]int, span)
		tail := make([]int, span)
		for i := range head {
			head[i] = -1
			tail[i] = -1
		}
		for i := a.head; i != -1; {
			next := a.records[i].next
			bucket := a.records[i].Keys[d] - a.minKey[d]
			a.records[i].next = -1
			if head[bucket] == -1 {
				head[bucket] = i
			} else {
				a.records[tail[bucket]].next = i
			}
			tail[bucket] = i
			i = next
		}
		// Concatenate buckets by walking keys from high to low and
		// prepending each bucket to the list assembled so far: each
		// pass is stable, so after dim passes ascending order holds on
		// every dimension simultaneously.
		newHead := -1
		for b := span - 1; b >= 0; b-- {
			if head[b] == -1 {
				continue
			}
			a.records[tail[b]].next = newHead
			newHead = head[b]
		}
		a.head = newHead
		a.tail = -1 // what is the tail???
	}
	a.sorted = true
}

// Iterate calls fn for each record in list order (head to tail as
// currently linked), stopping early if fn returns false.
func (a *Accumulator) Iterate(fn func(keys []int, value interface{}) bool) {
	for i := a.head; i != -1; i = a.records[i].next {
		if !fn(a.records[i].Keys, a.records[i].Value) {
			return
		}
	}
}

// All materializes the records in current list order (head to tail as
// currently linked) as a plain slice, for callers that need random
// access or a cursor instead of a callback.
func (a *Accumulator) All() []Record {
	out := make([]Record, 0, len(a.records))
	for i := a.head; i != -1; i = a.records[i].next {
		out = append(out, Record{Keys: a.records[i].Keys, Value: a.records[i].Value})
	}
	return out
}

// MinKey and MaxKey return the running minimum/maximum key seen in
// dimension d (0-based), valid once at least one record has been added.
func (a *Accumulator) MinKey(d int) int { return a.minKey[d] }
func (a *Accumulator) MaxKey(d int) int { return a.maxKey[d] }
