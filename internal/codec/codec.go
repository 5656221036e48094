// Package codec implements the GDX record-stream wire format: the
// "_DATA_" block prologue, per-dimension min/max width selection,
// key-delta compression, and the per-value special-value indicator
// byte. It knows nothing about symbols, UELs or sessions; callers feed
// it already-resolved integer keys and raw doubles.
package codec

import (
	"fmt"

	"github.com/gdxio/gdx/internal/gdxio"
)

// DataMarker is the string bracketing a symbol's record block.
const DataMarker = "_DATA_"

// Terminator is the prefix byte that ends a record block.
const Terminator = 255

// width is the integer encoding chosen for a dimension's delta-encoded
// keys, based on that dimension's max-min span.
type width int

const (
	widthByte width = iota
	widthWord
	widthInt
)

func widthFor(span int) width {
	switch {
	case span <= 255:
		return widthByte
	case span <= 65535:
		return widthWord
	default:
		return widthInt
	}
}

// Header describes one record block's dimension bounds, as written
// right after the "_DATA_" / dim / count prologue.
type Header struct {
	Dim        int
	RecordCount int // may be -1 if unknown at start of write
	MinKey     []int
	MaxKey     []int
}

// WriteHeader emits the block prologue: marker, dim byte, record count,
// then per-dimension min/max.
func WriteHeader(s *gdxio.Stream, h Header) error {
	if err := s.WriteString(DataMarker); err != nil {
		return err
	}
	if h.Dim < 0 || h.Dim > 255 {
		return fmt.Errorf("codec: dimension %d out of byte range", h.Dim)
	}
	if err := s.WriteByte(byte(h.Dim)); err != nil {
		return err
	}
	if err := s.WriteInt(int32(h.RecordCount)); err != nil {
		return err
	}
	for d := 0; d < h.Dim; d++ {
		if err := s.WriteInt(int32(h.MinKey[d])); err != nil {
			return err
		}
		if err := s.WriteInt(int32(h.MaxKey[d])); err != nil {
			return err
		}
	}
	return nil
}

// ReadHeader reads a block prologue and validates the marker.
func ReadHeader(s *gdxio.Stream) (Header, error) {
	marker, err := s.ReadString()
	if err != nil {
		return Header{}, err
	}
	if marker != DataMarker {
		return Header{}, fmt.Errorf("codec: bad data marker %q", marker)
	}
	dimByte, err := s.ReadByte()
	if err != nil {
		return Header{}, err
	}
	count, err := s.ReadInt()
	if err != nil {
		return Header{}, err
	}
	h := Header{Dim: int(dimByte), RecordCount: int(count)}
	h.MinKey = make([]int, h.Dim)
	h.MaxKey = make([]int, h.Dim)
	for d := 0; d < h.Dim; d++ {
		lo, err := s.ReadInt()
		if err != nil {
			return Header{}, err
		}
		hi, err := s.ReadInt()
		if err != nil {
			return Header{}, err
		}
		h.MinKey[d] = int(lo)
		h.MaxKey[d] = int(hi)
	}
	return h, nil
}

// Writer encodes a sequence of already-sorted records into a record
// block using key-delta compression.
type Writer struct {
	s       *gdxio.Stream
	h       Header
	widths  []width
	prev    []int
	first   bool
	nrecs   int
}

// NewWriter returns a Writer. WriteHeader must already have been called
// with h on s.
func NewWriter(s *gdxio.Stream, h Header) *Writer {
	w := &Writer{s: s, h: h, first: true, widths: make([]width, h.Dim)}
	for d := 0; d < h.Dim; d++ {
		w.widths[d] = widthFor(h.MaxKey[d] - h.MinKey[d])
	}
	w.prev = make([]int, h.Dim)
	return w
}

func (w *Writer) writeDelta(d int, delta int) error {
	switch w.widths[d] {
	case widthByte:
		return w.s.WriteByte(byte(delta))
	case widthWord:
		return w.s.WriteWord(uint16(delta))
	default:
		return w.s.WriteInt(int32(delta))
	}
}

// WriteRecord emits one record's keys (length h.Dim, caller guarantees
// sorted, non-decreasing order and already-applied min_key subtraction
// is NOT expected: pass the raw keys, WriteRecord subtracts min itself).
func (w *Writer) WriteRecord(keys []int) error {
	dim := w.h.Dim
	if len(keys) != dim {
		return fmt.Errorf("codec: expected %d keys, got %d", dim, len(keys))
	}

	if w.first {
		w.first = false
		if dim == 0 {
			// Scalar: exactly one record, no keys to encode.
			if err := w.s.WriteByte(1); err != nil {
				return err
			}
			w.nrecs++
			return nil
		}
		if err := w.s.WriteByte(1); err != nil {
			return err
		}
		for d := 0; d < dim; d++ {
			if err := w.writeDelta(d, keys[d]-w.h.MinKey[d]); err != nil {
				return err
			}
		}
		copy(w.prev, keys)
		w.nrecs++
		return nil
	}

	firstChanged := dim // 0-based index of first dimension that changed; dim means none changed
	for d := 0; d < dim; d++ {
		if keys[d] != w.prev[d] {
			firstChanged = d
			break
		}
	}

	if firstChanged == dim {
		// No dimension changed: a true duplicate key at the codec level.
		// The caller is responsible for diverting duplicates before they
		// reach the codec; encode it as an explicit record for the last
		// dimension (the fast path below takes only deltas >= 1) so the
		// stream stays well-formed.
		firstChanged = dim - 1
	}

	if firstChanged == dim-1 {
		delta := keys[dim-1] - w.prev[dim-1]
		if delta >= 1 && delta <= 254-dim {
			if err := w.s.WriteByte(byte(dim + delta)); err != nil {
				return err
			}
			w.prev[dim-1] = keys[dim-1]
			w.nrecs++
			return nil
		}
	}

	prefix := firstChanged + 1 // 1-based
	if err := w.s.WriteByte(byte(prefix)); err != nil {
		return err
	}
	for d := firstChanged; d < dim; d++ {
		if err := w.writeDelta(d, keys[d]-w.h.MinKey[d]); err != nil {
			return err
		}
	}
	copy(w.prev, keys)
	w.nrecs++
	return nil
}

// Close writes the block terminator.
func (w *Writer) Close() error {
	return w.s.WriteByte(Terminator)
}

// Count returns the number of records written so far.
func (w *Writer) Count() int { return w.nrecs }

// Reader decodes a record block written by Writer.
type Reader struct {
	s      *gdxio.Stream
	h      Header
	widths []width
	prev   []int
	first  bool
}

// NewReader returns a Reader. ReadHeader must already have been called
// to produce h.
func NewReader(s *gdxio.Stream, h Header) *Reader {
	r := &Reader{s: s, h: h, first: true, widths: make([]width, h.Dim)}
	for d := 0; d < h.Dim; d++ {
		r.widths[d] = widthFor(h.MaxKey[d] - h.MinKey[d])
	}
	r.prev = make([]int, h.Dim)
	return r
}

func (r *Reader) readDelta(d int) (int, error) {
	switch r.widths[d] {
	case widthByte:
		b, err := r.s.ReadByte()
		return int(b), err
	case widthWord:
		w, err := r.s.ReadWord()
		return int(w), err
	default:
		v, err := r.s.ReadInt()
		return int(v), err
	}
}

// Next decodes the next record's keys, or reports done=true if the
// terminator was reached.
func (r *Reader) Next() (keys []int, done bool, err error) {
	dim := r.h.Dim
	prefix, err := r.s.ReadByte()
	if err != nil {
		return nil, false, err
	}
	if prefix == Terminator {
		return nil, true, nil
	}

	out := make([]int, dim)

	if dim == 0 {
		return out, false, nil
	}

	if r.first {
		r.first = false
		// prefix is expected to be 1 here (full key follows).
		for d := 0; d < dim; d++ {
			v, err := r.readDelta(d)
			if err != nil {
				return nil, false, err
			}
			out[d] = v + r.h.MinKey[d]
		}
		copy(r.prev, out)
		return out, false, nil
	}

	if int(prefix) >= dim+1 {
		// Fast path: only the last dimension changed.
		delta := int(prefix) - dim
		copy(out, r.prev)
		out[dim-1] = r.prev[dim-1] + delta
		copy(r.prev, out)
		return out, false, nil
	}

	firstChanged := int(prefix) - 1 // 0-based
	copy(out, r.prev)
	for d := firstChanged; d < dim; d++ {
		v, err := r.readDelta(d)
		if err != nil {
			return nil, false, err
		}
		out[d] = v + r.h.MinKey[d]
	}
	copy(r.prev, out)
	return out, false, nil
}
