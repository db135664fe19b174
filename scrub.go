//go:build !ios && !android && (amd64 || arm64)

// Package scrub provides frame-accurate video scrubbing and playback
// on top of FFmpeg, without CGO, using purego.
//
// A Session owns an open media file and its video decoder; SeekToFrame
// and NextFrame give frame-accurate random and sequential access. A
// Converter turns decoded frames into packed BGR24 buffers, and a
// Controller ties the two together behind transport commands
// (play/pause, step, quit).
//
// The low-level packages (avutil, avcodec, avformat, swscale) are
// available for advanced use.
package scrub

import (
	"github.com/framepoint/scrub/avcodec"
	"github.com/framepoint/scrub/avutil"
	"github.com/framepoint/scrub/internal/bindings"
)

// Init loads the FFmpeg libraries. This is called automatically by
// Open, but can be called explicitly to check for errors up front.
// It is safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if the FFmpeg libraries have been loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the loaded FFmpeg library versions.
func Version() (avutil, avcodec, avformat, swscale uint32) {
	return bindings.AVUtilVersion(), bindings.AVCodecVersion(),
		bindings.AVFormatVersion(), bindings.SWScaleVersion()
}

// Re-export common types for convenience
type (
	// Rational represents a rational number (fraction).
	Rational = avutil.Rational

	// PixelFormat represents video pixel formats.
	PixelFormat = avutil.PixelFormat

	// CodecID represents codec identifiers.
	CodecID = avcodec.CodecID
)

// Re-export common constants
const (
	PixelFormatNone    = avutil.PixelFormatNone
	PixelFormatYUV420P = avutil.PixelFormatYUV420P
	PixelFormatBGR24   = avutil.PixelFormatBGR24

	CodecIDNone = avcodec.CodecIDNone
	CodecIDH264 = avcodec.CodecIDH264
	CodecIDHEVC = avcodec.CodecIDHEVC

	// NoPTSValue marks a missing timestamp.
	NoPTSValue = avutil.NoPTSValue
)
