//go:build !ios && !android && (amd64 || arm64)

package scrub

import "errors"

// Sentinel errors returned by the high-level API. FFmpeg-level failures
// are returned as *avutil.Error wrapped with one of these where the
// failure maps onto a well-known condition.
var (
	// ErrNoVideoStream is returned by Open when the container has no
	// video stream.
	ErrNoVideoStream = errors.New("scrub: no video stream found")

	// ErrDecoderUnavailable is returned by Open when no decoder exists
	// for the video stream's codec.
	ErrDecoderUnavailable = errors.New("scrub: no decoder for video codec")

	// ErrSeekFailed is returned when the demuxer rejects a seek request.
	ErrSeekFailed = errors.New("scrub: seek failed")

	// ErrNoFrame is returned when no frame exists at or beyond the
	// requested position, including stepping past the last frame.
	ErrNoFrame = errors.New("scrub: no frame at requested position")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("scrub: session is closed")
)
