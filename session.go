//go:build !ios && !android && (amd64 || arm64)

package scrub

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/framepoint/scrub/avcodec"
	"github.com/framepoint/scrub/avformat"
	"github.com/framepoint/scrub/avutil"
	"github.com/framepoint/scrub/internal/bindings"
)

var quietOnce sync.Once

// Session holds an open media file and its video decoder. All frame
// access goes through a Session; it owns the demuxer, codec context,
// and the reusable packet and frame.
//
// A mutex keeps calls from different goroutines from corrupting the
// decoder state, but the model is one command in flight at a time:
// drive a Session from a single goroutine and open one Session per
// file for anything more.
type Session struct {
	mu sync.Mutex

	formatCtx avformat.FormatContext
	codecCtx  avcodec.Context
	packet    avcodec.Packet
	frame     avutil.Frame

	videoStreamIdx int
	timebase       Timebase
	width          int
	height         int
	pixFmt         avutil.PixelFormat
	codecName      string

	// lastPTS is the effective timestamp of the most recently returned
	// frame, or avutil.NoPTSValue before the first frame and after a
	// seek. Used to synthesize timestamps for streams that omit them.
	lastPTS int64

	// draining is true once the demuxer hit end of file and the
	// decoder has been switched to flush mode. Reset by seeking.
	draining bool

	logger *slog.Logger
	closed bool
}

// SessionOptions configures session behavior.
type SessionOptions struct {
	// Logger receives skip-and-continue decode diagnostics.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// SessionOption is a functional option for configuring a session.
type SessionOption func(*SessionOptions)

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *SessionOptions) {
		o.Logger = logger
	}
}

// Open opens a media file and prepares its first video stream for
// decoding. The returned session is positioned before the first frame;
// call SeekToFrame or NextFrame to decode.
func Open(path string, options ...SessionOption) (*Session, error) {
	opts := &SessionOptions{}
	for _, opt := range options {
		opt(opts)
	}

	// Ensure FFmpeg is loaded
	if err := bindings.Load(); err != nil {
		return nil, err
	}

	// Scan loops decode every frame in a GOP; FFmpeg's default console
	// verbosity would flood stderr while scrubbing.
	quietOnce.Do(func() { _ = avutil.SetLogLevel(avutil.LogError) })

	s := &Session{
		videoStreamIdx: -1,
		lastPTS:        avutil.NoPTSValue,
		logger:         opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	// Open input file
	if err := avformat.OpenInput(&s.formatCtx, path, nil, nil); err != nil {
		return nil, err
	}

	// Find stream info
	if err := avformat.FindStreamInfo(s.formatCtx, nil); err != nil {
		avformat.CloseInput(&s.formatCtx)
		return nil, err
	}

	// Select the first video stream
	stream := s.findVideoStream()
	if stream == nil {
		avformat.CloseInput(&s.formatCtx)
		return nil, ErrNoVideoStream
	}

	codecPar := avformat.GetStreamCodecPar(stream)
	codecID := avformat.GetCodecParCodecID(codecPar)

	// Find and open decoder
	codec := avcodec.FindDecoder(codecID)
	if codec == nil {
		avformat.CloseInput(&s.formatCtx)
		return nil, fmt.Errorf("%w: codec id %d", ErrDecoderUnavailable, codecID)
	}
	s.codecName = avcodec.GetCodecName(codec)

	s.codecCtx = avcodec.AllocContext3(codec)
	if s.codecCtx == nil {
		avformat.CloseInput(&s.formatCtx)
		return nil, fmt.Errorf("scrub: failed to allocate codec context")
	}

	if err := avcodec.ParametersToContext(s.codecCtx, codecPar); err != nil {
		s.Close()
		return nil, err
	}

	if err := avcodec.Open2(s.codecCtx, codec, nil); err != nil {
		s.Close()
		return nil, err
	}

	s.width = int(avformat.GetCodecParWidth(codecPar))
	s.height = int(avformat.GetCodecParHeight(codecPar))
	s.pixFmt = avutil.PixelFormat(avformat.GetCodecParFormat(codecPar))
	s.timebase = NewTimebase(streamFrameRate(stream), avformat.GetStreamTimeBase(stream))

	// Allocate the reusable packet and frame
	s.packet = avcodec.PacketAlloc()
	if s.packet == nil {
		s.Close()
		return nil, fmt.Errorf("scrub: failed to allocate packet")
	}

	s.frame = avutil.FrameAlloc()
	if s.frame == nil {
		s.Close()
		return nil, fmt.Errorf("scrub: failed to allocate frame")
	}

	return s, nil
}

// findVideoStream returns the first video stream, setting videoStreamIdx.
func (s *Session) findVideoStream() avformat.Stream {
	n := avformat.GetNumStreams(s.formatCtx)
	for i := 0; i < n; i++ {
		stream := avformat.GetStream(s.formatCtx, i)
		par := avformat.GetStreamCodecPar(stream)
		if avformat.GetCodecParType(par) == avutil.MediaTypeVideo {
			s.videoStreamIdx = i
			return stream
		}
	}
	return nil
}

// streamFrameRate picks the stream's frame rate: the container average
// when recorded, otherwise the demuxer's real base rate. NewTimebase
// handles the final fallback when both are missing.
func streamFrameRate(stream avformat.Stream) avutil.Rational {
	if r := avformat.GetStreamAvgFrameRate(stream); r.IsValid() {
		return r
	}
	return avformat.GetStreamRFrameRate(stream)
}

// Timebase returns the session's frame/timestamp converter.
func (s *Session) Timebase() Timebase {
	return s.timebase
}

// Width returns the coded frame width in pixels.
func (s *Session) Width() int {
	return s.width
}

// Height returns the coded frame height in pixels.
func (s *Session) Height() int {
	return s.height
}

// PixelFormat returns the decoder's native pixel format.
func (s *Session) PixelFormat() avutil.PixelFormat {
	return s.pixFmt
}

// CodecName returns the short name of the video decoder in use.
func (s *Session) CodecName() string {
	return s.codecName
}

// LastPTS returns the effective timestamp of the most recently decoded
// frame, or avutil.NoPTSValue when no frame has been decoded since the
// last seek.
func (s *Session) LastPTS() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPTS
}

// Duration returns the container duration.
func (s *Session) Duration() time.Duration {
	if s.formatCtx == nil {
		return 0
	}
	us := avformat.GetDuration(s.formatCtx)
	if us <= 0 {
		return 0
	}
	return time.Duration(us) * time.Microsecond
}

// TotalFrames returns the number of frames in the video stream, or 0
// when the container does not record enough to know. Prefers the
// container's declared frame count, falling back to duration times
// frame rate.
func (s *Session) TotalFrames() int64 {
	if s.formatCtx == nil {
		return 0
	}
	stream := avformat.GetStream(s.formatCtx, s.videoStreamIdx)
	if stream == nil {
		return 0
	}
	if n := avformat.GetStreamNbFrames(stream); n > 0 {
		return n
	}
	dur := avformat.GetStreamDuration(stream)
	if dur <= 0 {
		return 0
	}
	// duration is in stream ticks; one past the last timestamp
	return s.timebase.PTSToFrame(dur)
}

// Close releases all resources. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.frame != nil {
		avutil.FrameFree(&s.frame)
	}
	if s.packet != nil {
		avcodec.PacketFree(&s.packet)
	}
	if s.codecCtx != nil {
		avcodec.FreeContext(&s.codecCtx)
	}
	if s.formatCtx != nil {
		avformat.CloseInput(&s.formatCtx)
	}

	return nil
}
