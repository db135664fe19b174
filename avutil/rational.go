//go:build !ios && !android && (amd64 || arm64)

package avutil

// Rational represents a rational number (fraction) as used by FFmpeg (AVRational).
//
// All arithmetic is implemented in pure Go: FFmpeg's AVRational helpers
// return structs by value, which purego cannot call on non-Darwin platforms.
type Rational struct {
	Num int32 // Numerator
	Den int32 // Denominator
}

// NewRational creates a new Rational with the given numerator and denominator.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

// Float64 converts the rational to a float64.
// Returns 0 if the denominator is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert returns the inverted rational (den/num).
func (r Rational) Invert() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// IsValid reports whether the rational is a usable positive rate:
// both numerator and denominator strictly positive.
func (r Rational) IsValid() bool {
	return r.Num > 0 && r.Den > 0
}

// Cmp compares two rationals.
// Returns -1 if r < other, 0 if r == other, 1 if r > other.
func (r Rational) Cmp(other Rational) int {
	// Cross-multiply: r.Num/r.Den vs other.Num/other.Den
	left := int64(r.Num) * int64(other.Den)
	right := int64(other.Num) * int64(r.Den)

	if left < right {
		return -1
	}
	if left > right {
		return 1
	}
	return 0
}

// Reduce reduces the rational to lowest terms.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	g := gcd(abs(r.Num), abs(r.Den))
	if g == 0 {
		return r
	}
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

// Rescale converts a value expressed in units of this rational into units
// of dst, rounding to nearest. Equivalent to av_rescale_q(a, r, dst).
func (r Rational) Rescale(a int64, dst Rational) int64 {
	// a * r.Num / r.Den * dst.Den / dst.Num
	// = a * (r.Num * dst.Den) / (r.Den * dst.Num)
	b := int64(r.Num) * int64(dst.Den)
	c := int64(r.Den) * int64(dst.Num)
	if c == 0 {
		return 0
	}
	// Round half away from zero, as av_rescale does by default.
	if a >= 0 {
		return (a*b + c/2) / c
	}
	return (a*b - c/2) / c
}

// gcd computes the greatest common divisor.
func gcd(a, b int32) int32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// abs returns the absolute value.
func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// Common frame rates
var (
	FrameRate24    = NewRational(24, 1)
	FrameRate25    = NewRational(25, 1)
	FrameRate30    = NewRational(30, 1)
	FrameRate2997  = NewRational(30000, 1001) // 29.97 fps (NTSC)
	FrameRate50    = NewRational(50, 1)
	FrameRate60    = NewRational(60, 1)
	FrameRate23976 = NewRational(24000, 1001) // 23.976 fps (film)
)

// TimeBase constants
var (
	TimeBaseMicro  = NewRational(1, 1000000) // Microsecond time base
	TimeBase90kHz  = NewRational(1, 90000)   // MPEG 90 kHz time base
	TimeBaseSecond = NewRational(1, 1)       // Second time base
)
