//go:build !ios && !android && (amd64 || arm64)

package scrub

import (
	"fmt"
	"math"

	"github.com/framepoint/scrub/avcodec"
	"github.com/framepoint/scrub/avformat"
	"github.com/framepoint/scrub/avutil"
)

// DecodedFrame describes one decoded video frame. The pixel data is
// owned by the session and is only valid until the next SeekToFrame or
// NextFrame call; use a Converter to copy it out.
type DecodedFrame struct {
	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Format is the frame's pixel format.
	Format avutil.PixelFormat

	// PTS is the frame's effective timestamp in stream ticks. When the
	// stream carries no timestamps this is synthesized so that frames
	// still advance monotonically.
	PTS int64

	// KeyFrame reports whether the frame was coded as a keyframe.
	KeyFrame bool

	frame avutil.Frame
}

// SeekToFrame positions the session at frame n and decodes it.
// Seeking is frame-accurate: the demuxer seeks to the keyframe at or
// before the target and frames are decoded forward until the target
// timestamp is reached. Negative n is treated as 0.
//
// Returns ErrNoFrame when n is beyond the last frame; the session is
// then at end of stream and a further SeekToFrame is needed to resume.
func (s *Session) SeekToFrame(n int64) (*DecodedFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		n = 0
	}

	target := s.timebase.FrameToPTS(n)
	if err := avformat.SeekFrame(s.formatCtx, int32(s.videoStreamIdx), target, avformat.SeekFlagBackward); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeekFailed, err)
	}

	// Frames buffered from before the seek must not leak through.
	// lastPTS is left alone: it changes only when a frame is actually
	// delivered, and on timestamp-less streams the synthetic clock has
	// to keep counting across seeks.
	avcodec.FlushBuffers(s.codecCtx)
	s.draining = false

	return s.scan(target)
}

// NextFrame decodes and returns the next frame in presentation order.
// Returns ErrNoFrame at end of stream; the call is idempotent there.
func (s *Session) NextFrame() (*DecodedFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	return s.scan(math.MinInt64)
}

// scan decodes forward until a frame with an effective timestamp of at
// least minPTS is produced. Frames before minPTS are discarded without
// leaving the decode loop, which is what makes backward-keyframe
// seeking frame-accurate. Caller holds s.mu.
func (s *Session) scan(minPTS int64) (*DecodedFrame, error) {
	for {
		avutil.FrameUnref(s.frame)
		err := avcodec.ReceiveFrame(s.codecCtx, s.frame)
		if err == nil {
			pts := s.effectiveTimestamp()
			if pts < minPTS {
				continue
			}
			s.lastPTS = pts
			return &DecodedFrame{
				Width:    int(avutil.GetFrameWidth(s.frame)),
				Height:   int(avutil.GetFrameHeight(s.frame)),
				Format:   avutil.PixelFormat(avutil.GetFrameFormat(s.frame)),
				PTS:      pts,
				KeyFrame: avutil.GetFrameKeyFrame(s.frame) != 0,
				frame:    s.frame,
			}, nil
		}

		if avutil.IsEOF(err) {
			return nil, ErrNoFrame
		}
		if !avutil.IsAgain(err) {
			// One undecodable frame must not end the scan; keep
			// feeding packets past it.
			s.logger.Warn("frame decode failed, continuing", "error", err)
		}
		if s.draining {
			// Flush already requested; nothing more can arrive.
			return nil, ErrNoFrame
		}

		// Decoder needs input
		if err := s.feedPacket(); err != nil {
			return nil, err
		}
	}
}

// feedPacket reads the next video packet and sends it to the decoder,
// switching to flush mode at end of file. Packets the decoder rejects
// are logged and skipped so one bad packet cannot end playback.
func (s *Session) feedPacket() error {
	for {
		avcodec.PacketUnref(s.packet)
		if err := avformat.ReadFrame(s.formatCtx, s.packet); err != nil {
			if avutil.IsEOF(err) {
				s.draining = true
				return avcodec.SendPacket(s.codecCtx, nil)
			}
			return err
		}

		if int(avcodec.GetPacketStreamIndex(s.packet)) != s.videoStreamIdx {
			continue
		}

		if err := avcodec.SendPacket(s.codecCtx, s.packet); err != nil {
			s.logger.Warn("skipping undecodable packet",
				"pts", avcodec.GetPacketPTS(s.packet),
				"error", err)
			continue
		}
		return nil
	}
}

// effectiveTimestamp resolves the current frame's timestamp: the
// demuxer's best-effort estimate, then the raw pts, then a synthetic
// value one tick past the previous frame (zero for the first frame).
func (s *Session) effectiveTimestamp() int64 {
	pts := avutil.GetFrameBestEffortTS(s.frame)
	if pts == avutil.NoPTSValue {
		pts = avutil.GetFramePTS(s.frame)
	}
	if pts == avutil.NoPTSValue {
		if s.lastPTS == avutil.NoPTSValue {
			return 0
		}
		return s.lastPTS + 1
	}
	return pts
}
