package codec

import (
	"math"

	"github.com/gdxio/gdx/internal/gdxio"
)

// indicator bytes 0..4 are the five special-value sentinels, in the
// order the caller's SpecialBits table lists them; 5..9 are the small
// constant fast paths; 10 means "normal double follows".
const (
	indicatorConstZero indicator = 5 + iota
	indicatorConstOne
	indicatorConstMinusOne
	indicatorConstHalf
	indicatorConstTwo
	indicatorNormal
)

type indicator = byte

// SpecialBits is the five-entry special-value bit-pattern table (undef,
// na, +inf, -inf, eps in that order), supplied by the caller so this
// package does not need to depend on the root package's override
// mechanism.
type SpecialBits [5]uint64

var constBits = [5]uint64{
	math.Float64bits(0.0),
	math.Float64bits(1.0),
	math.Float64bits(-1.0),
	math.Float64bits(0.5),
	math.Float64bits(2.0),
}

// WriteValue writes one value slot: an indicator byte, followed by a
// double only in the "normal" case.
func WriteValue(s *gdxio.Stream, v float64, sv SpecialBits) error {
	bits := math.Float64bits(v)
	for i, b := range sv {
		if b == bits {
			return s.WriteByte(byte(i))
		}
	}
	for i, b := range constBits {
		if b == bits {
			return s.WriteByte(indicatorConstZero + byte(i))
		}
	}
	if err := s.WriteByte(indicatorNormal); err != nil {
		return err
	}
	return s.WriteDouble(v)
}

// ReadValue reads one value slot.
func ReadValue(s *gdxio.Stream, sv SpecialBits) (float64, error) {
	b, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b < 5:
		return math.Float64frombits(sv[b]), nil
	case b >= indicatorConstZero && b < indicatorNormal:
		return math.Float64frombits(constBits[b-indicatorConstZero]), nil
	default:
		return s.ReadDouble()
	}
}
