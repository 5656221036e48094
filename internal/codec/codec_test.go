package codec

import (
	"io"
	"testing"

	"github.com/gdxio/gdx/internal/gdxio"
)

func flushAndRewind(t *testing.T, s *gdxio.Stream) {
	t.Helper()
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	s := gdxio.NewMemory(false)
	h := Header{Dim: 2, RecordCount: -1, MinKey: []int{1, 3}, MaxKey: []int{10, 30}}
	if err := WriteHeader(s, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	flushAndRewind(t, s)

	got, err := ReadHeader(s)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.Dim != h.Dim || got.RecordCount != h.RecordCount {
		t.Fatalf("ReadHeader() = %+v, want Dim/RecordCount matching %+v", got, h)
	}
	for d := 0; d < h.Dim; d++ {
		if got.MinKey[d] != h.MinKey[d] || got.MaxKey[d] != h.MaxKey[d] {
			t.Fatalf("dim %d bounds = [%d,%d], want [%d,%d]", d, got.MinKey[d], got.MaxKey[d], h.MinKey[d], h.MaxKey[d])
		}
	}
}

func TestReadHeaderRejectsBadMarker(t *testing.T) {
	s := gdxio.NewMemory(false)
	if err := s.WriteString("_NOPE_"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	flushAndRewind(t, s)
	if _, err := ReadHeader(s); err == nil {
		t.Fatalf("ReadHeader should reject a non-_DATA_ marker")
	}
}

func writeRecords(t *testing.T, h Header, records [][]int) *gdxio.Stream {
	t.Helper()
	s := gdxio.NewMemory(false)
	if err := WriteHeader(s, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	w := NewWriter(s, h)
	for _, rec := range records {
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord(%v): %v", rec, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.Count() != len(records) {
		t.Fatalf("Count() = %d, want %d", w.Count(), len(records))
	}
	flushAndRewind(t, s)
	return s
}

func readAllRecords(t *testing.T, s *gdxio.Stream, h Header) [][]int {
	t.Helper()
	got, err := ReadHeader(s)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	r := NewReader(s, got)
	var out [][]int
	for {
		keys, done, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if done {
			break
		}
		out = append(out, append([]int(nil), keys...))
	}
	return out
}

func TestWriterReaderRoundTripByteWidth(t *testing.T) {
	h := Header{Dim: 2, RecordCount: -1, MinKey: []int{0, 0}, MaxKey: []int{10, 10}}
	records := [][]int{{0, 0}, {0, 3}, {1, 0}, {1, 1}, {5, 9}}
	s := writeRecords(t, h, records)
	got := readAllRecords(t, s, h)
	assertRecordsEqual(t, got, records)
}

func TestWriterReaderRoundTripWordWidth(t *testing.T) {
	h := Header{Dim: 1, RecordCount: -1, MinKey: []int{0}, MaxKey: []int{2000}}
	records := [][]int{{0}, {300}, {1999}, {2000}}
	s := writeRecords(t, h, records)
	got := readAllRecords(t, s, h)
	assertRecordsEqual(t, got, records)
}

func TestWriterReaderRoundTripIntWidth(t *testing.T) {
	h := Header{Dim: 1, RecordCount: -1, MinKey: []int{0}, MaxKey: []int{1 << 20}}
	records := [][]int{{0}, {1000000}, {1 << 20}}
	s := writeRecords(t, h, records)
	got := readAllRecords(t, s, h)
	assertRecordsEqual(t, got, records)
}

func TestWriterReaderScalarRecord(t *testing.T) {
	h := Header{Dim: 0, RecordCount: -1}
	s := writeRecords(t, h, [][]int{{}})
	got := readAllRecords(t, s, h)
	if len(got) != 1 {
		t.Fatalf("got %d scalar records, want 1", len(got))
	}
}

func TestWriterReaderEmptyBlock(t *testing.T) {
	h := Header{Dim: 1, RecordCount: -1, MinKey: []int{0}, MaxKey: []int{1}}
	s := writeRecords(t, h, nil)
	got := readAllRecords(t, s, h)
	if len(got) != 0 {
		t.Fatalf("got %d records from an empty block, want 0", len(got))
	}
}

func assertRecordsEqual(t *testing.T, got, want [][]int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("record %d length = %d, want %d", i, len(got[i]), len(want[i]))
		}
		for d := range want[i] {
			if got[i][d] != want[i][d] {
				t.Fatalf("record %d dim %d = %d, want %d", i, d, got[i][d], want[i][d])
			}
		}
	}
}
