//go:build !ios && !android && (amd64 || arm64)

package scrub

import (
	"time"

	"github.com/framepoint/scrub/avutil"
)

// fallbackFrameRate is assumed when the container records no usable
// frame rate.
var fallbackFrameRate = avutil.NewRational(25, 1)

// Timebase converts between frame numbers and stream timestamps.
// All conversions use exact rational arithmetic so that
// PTSToFrame(FrameToPTS(n)) == n for every representable n.
type Timebase struct {
	// FrameRate is the stream frame rate in frames per second.
	FrameRate avutil.Rational

	// TimeBase is the duration of one timestamp tick in seconds.
	TimeBase avutil.Rational
}

// NewTimebase builds a Timebase from a stream's frame rate and time
// base. An invalid frame rate (zero or negative terms) falls back to
// 25/1; an invalid time base falls back to microseconds.
func NewTimebase(frameRate, timeBase avutil.Rational) Timebase {
	if !frameRate.IsValid() {
		frameRate = fallbackFrameRate
	}
	if !timeBase.IsValid() {
		timeBase = avutil.TimeBaseMicro
	}
	return Timebase{FrameRate: frameRate, TimeBase: timeBase}
}

// FrameToPTS returns the timestamp of frame n in stream ticks.
func (tb Timebase) FrameToPTS(n int64) int64 {
	return tb.FrameRate.Invert().Rescale(n, tb.TimeBase)
}

// PTSToFrame returns the frame number containing the given timestamp.
func (tb Timebase) PTSToFrame(pts int64) int64 {
	return tb.TimeBase.Rescale(pts, tb.FrameRate.Invert())
}

// FPS returns the frame rate as a float.
func (tb Timebase) FPS() float64 {
	return tb.FrameRate.Float64()
}

// FrameInterval returns the wall-clock duration of one frame. Useful
// for pacing a playback loop.
func (tb Timebase) FrameInterval() time.Duration {
	fps := tb.FPS()
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
