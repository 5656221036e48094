// Package intmap implements the sparse, growable integer-to-integer map
// GDX uses for its user-index-to-storage-index and storage-index-to-
// user-index UEL mappings. Indices are 1-based; an unmapped slot reads
// back as -1.
package intmap

// chunkSize is the granularity new backing storage grows by. Growing in
// chunks (rather than exactly to the requested index) keeps a sequence of
// nearby Set calls, the common case while registering UELs one at a
// time, from reallocating on every call.
const chunkSize = 256

// Map is a sparse int->int map addressed 1-based, defaulting every unset
// slot to -1. The zero value is ready to use.
type Map struct {
	slots []int32
}

const unset = -1

// New returns an empty Map.
func New() *Map {
	return &Map{}
}

func (m *Map) ensure(n int) {
	if n <= len(m.slots) {
		return
	}
	grown := ((n + chunkSize - 1) / chunkSize) * chunkSize
	old := len(m.slots)
	m.slots = append(m.slots, make([]int32, grown-old)...)
	for i := old; i < grown; i++ {
		m.slots[i] = unset
	}
}

// Get returns the value mapped at index n (1-based), or -1 if unset or
// out of range.
func (m *Map) Get(n int) int {
	if n < 1 || n > len(m.slots) {
		return unset
	}
	return int(m.slots[n-1])
}

// Set maps index n (1-based) to v, growing the backing storage as needed.
func (m *Map) Set(n, v int) {
	m.ensure(n)
	m.slots[n-1] = int32(v)
}

// Len returns the highest index the map has grown to accommodate. It is
// not the count of mapped (non -1) entries.
func (m *Map) Len() int { return len(m.slots) }

// Clear resets every slot back to unset without releasing storage.
func (m *Map) Clear() {
	for i := range m.slots {
		m.slots[i] = unset
	}
}
