package codec

import (
	"io"
	"math"
	"testing"

	"github.com/gdxio/gdx/internal/gdxio"
)

var testSpecialBits = SpecialBits{
	0x7FF00000_00000001,
	0x7FF00000_00000002,
	math.Float64bits(math.Inf(1)),
	math.Float64bits(math.Inf(-1)),
	0x7FF00000_00000003,
}

func roundTripValue(t *testing.T, v float64) float64 {
	t.Helper()
	s := gdxio.NewMemory(false)
	if err := WriteValue(s, v, testSpecialBits); err != nil {
		t.Fatalf("WriteValue(%v): %v", v, err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got, err := ReadValue(s, testSpecialBits)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	return got
}

func TestValueRoundTripNormal(t *testing.T) {
	for _, v := range []float64{3.14159, -2.5, 1e-300, 1e300, 123456.789} {
		if got := roundTripValue(t, v); got != v {
			t.Fatalf("roundTripValue(%v) = %v", v, got)
		}
	}
}

func TestValueRoundTripConstants(t *testing.T) {
	for _, v := range []float64{0.0, 1.0, -1.0, 0.5, 2.0} {
		if got := roundTripValue(t, v); got != v {
			t.Fatalf("roundTripValue(%v) = %v, want exact", v, got)
		}
	}
}

func TestValueRoundTripSpecials(t *testing.T) {
	undef := math.Float64frombits(testSpecialBits[0])
	na := math.Float64frombits(testSpecialBits[1])
	posInf := math.Float64frombits(testSpecialBits[2])
	negInf := math.Float64frombits(testSpecialBits[3])
	eps := math.Float64frombits(testSpecialBits[4])

	for _, v := range []float64{undef, na, posInf, negInf, eps} {
		got := roundTripValue(t, v)
		if math.Float64bits(got) != math.Float64bits(v) {
			t.Fatalf("roundTripValue special = bits %x, want %x", math.Float64bits(got), math.Float64bits(v))
		}
	}
}

func TestValueConstantsUseSingleByteIndicator(t *testing.T) {
	s := gdxio.NewMemory(false)
	if err := WriteValue(s, 1.0, testSpecialBits); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b, err := s.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != indicatorConstOne {
		t.Fatalf("indicator byte for 1.0 = %d, want %d", b, indicatorConstOne)
	}
	if _, err := s.ReadByte(); err != io.EOF {
		t.Fatalf("expected only one byte on the wire for a constant value, got further data (err=%v)", err)
	}
}
