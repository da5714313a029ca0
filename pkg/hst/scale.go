package hst

import (
	"fmt"
	"math"
	"strconv"
)

// rawFullScale is the raw code mapped to EngFull.
const rawFullScale = 32000

// EngineeringScale maps raw 16-bit sample codes to engineering units.
type EngineeringScale struct {
	RawZero float32
	RawFull float32
	EngZero float32
	EngFull float32
}

// DecodeScale decodes the four little-endian float32 fields of a scale block.
func DecodeScale(b []byte) (EngineeringScale, error) {
	if len(b) < scaleBlockSize {
		return EngineeringScale{}, fmt.Errorf("%w: scale block needs %d bytes, have %d",
			ErrTruncatedHeader, scaleBlockSize, len(b))
	}
	r := newFieldReader(b)
	return EngineeringScale{
		RawZero: r.readF32(),
		RawFull: r.readF32(),
		EngZero: r.readF32(),
		EngFull: r.readF32(),
	}, nil
}

// Calibrate converts a raw code and rounds to precision decimal places.
// RawZero and RawFull are not part of the mapping: the historian always scales
// against a fixed 0..32000 raw span.
func (s EngineeringScale) Calibrate(raw int16, precision int) float64 {
	zero := float64(s.EngZero)
	full := float64(s.EngFull)
	v := zero + (float64(raw)/rawFullScale)*(full-zero)
	return Round(v, precision)
}

// Round rounds v to precision decimal places. Rounding is decided on the exact
// binary value of v, so 0.05 (stored slightly above the tie) rounds up and
// 2.675 (stored slightly below) rounds down; exact ties go to even. A negative
// precision rounds to tens, hundreds and so on.
func Round(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if precision < 0 {
		p := math.Pow10(-precision)
		return math.RoundToEven(v/p) * p
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', precision, 64), 64)
	if err != nil {
		return v
	}
	return r
}
