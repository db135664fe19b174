//go:build !ios && !android && (amd64 || arm64)

package avutil

import "testing"

func TestRationalFloat64(t *testing.T) {
	if got := NewRational(30000, 1001).Float64(); got < 29.96 || got > 29.98 {
		t.Errorf("NTSC rate: got %f", got)
	}
	if got := NewRational(1, 0).Float64(); got != 0 {
		t.Errorf("zero denominator: got %f, want 0", got)
	}
}

func TestRationalInvert(t *testing.T) {
	r := NewRational(25, 1).Invert()
	if r.Num != 1 || r.Den != 25 {
		t.Errorf("got %d/%d, want 1/25", r.Num, r.Den)
	}
}

func TestRationalIsValid(t *testing.T) {
	cases := []struct {
		r    Rational
		want bool
	}{
		{NewRational(25, 1), true},
		{NewRational(30000, 1001), true},
		{NewRational(0, 1), false},
		{NewRational(25, 0), false},
		{NewRational(-25, 1), false},
	}
	for _, c := range cases {
		if got := c.r.IsValid(); got != c.want {
			t.Errorf("%d/%d: got %v, want %v", c.r.Num, c.r.Den, got, c.want)
		}
	}
}

func TestRationalCmp(t *testing.T) {
	a := NewRational(1, 25)
	b := NewRational(1, 30)
	if a.Cmp(b) != 1 {
		t.Error("1/25 should compare greater than 1/30")
	}
	if b.Cmp(a) != -1 {
		t.Error("1/30 should compare less than 1/25")
	}
	if a.Cmp(NewRational(2, 50)) != 0 {
		t.Error("1/25 should compare equal to 2/50")
	}
}

func TestRationalReduce(t *testing.T) {
	r := NewRational(90000, 3600).Reduce()
	if r.Num != 25 || r.Den != 1 {
		t.Errorf("got %d/%d, want 25/1", r.Num, r.Den)
	}
}

func TestRescale(t *testing.T) {
	// 5 frame durations at 25 fps expressed in 1/90000 units.
	frameTime := NewRational(1, 25)
	if got := frameTime.Rescale(5, TimeBase90kHz); got != 18000 {
		t.Errorf("got %d, want 18000", got)
	}
	// And back again.
	if got := TimeBase90kHz.Rescale(18000, frameTime); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestRescaleRoundTrip(t *testing.T) {
	rates := []Rational{FrameRate24, FrameRate25, FrameRate30, FrameRate2997, FrameRate60, FrameRate23976}
	bases := []Rational{TimeBase90kHz, TimeBaseMicro, NewRational(1, 15360), NewRational(1, 1000)}

	for _, rate := range rates {
		frameTime := rate.Invert()
		for _, tb := range bases {
			for n := int64(0); n < 500; n += 7 {
				ts := frameTime.Rescale(n, tb)
				back := tb.Rescale(ts, frameTime)
				if back != n {
					t.Fatalf("rate %d/%d tb %d/%d: frame %d -> ts %d -> frame %d",
						rate.Num, rate.Den, tb.Num, tb.Den, n, ts, back)
				}
			}
		}
	}
}

func TestRescaleNegative(t *testing.T) {
	frameTime := NewRational(1, 25)
	if got := frameTime.Rescale(-5, TimeBase90kHz); got != -18000 {
		t.Errorf("got %d, want -18000", got)
	}
}
