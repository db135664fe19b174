//go:build !ios && !android && (amd64 || arm64)

package scrub

import (
	"errors"
	"log/slog"
	"time"

	"github.com/framepoint/scrub/avutil"
)

// State is the controller's playback state.
type State int

const (
	StatePaused State = iota
	StatePlaying
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Command is a user-facing transport control.
type Command int

const (
	CmdTogglePlay Command = iota
	CmdStepForward
	CmdStepBackward
	CmdQuit
)

// FrameSink receives converted frames for presentation. Display is
// called from whichever goroutine drives the controller.
type FrameSink interface {
	Display(*PixelBuffer) error
}

// frameSource is the slice of Session the controller uses. Split out
// so controller logic is testable without media files.
type frameSource interface {
	SeekToFrame(n int64) (*DecodedFrame, error)
	NextFrame() (*DecodedFrame, error)
	Timebase() Timebase
	Close() error
}

// frameConverter is the slice of Converter the controller uses.
type frameConverter interface {
	Convert(*DecodedFrame) (*PixelBuffer, error)
	Close()
}

// Controller drives frame-accurate playback and scrubbing over a
// session: play/pause, single-frame stepping in both directions, and
// paced advancement while playing.
//
// A Controller is not safe for concurrent use; drive it from a single
// goroutine and pace Tick with FrameInterval.
type Controller struct {
	src  frameSource
	conv frameConverter
	sink FrameSink
	tb   Timebase

	state   State
	lastPTS int64

	logger *slog.Logger
}

// ControllerOptions configures controller behavior.
type ControllerOptions struct {
	// Logger receives playback diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// ControllerOption is a functional option for configuring a controller.
type ControllerOption func(*ControllerOptions)

// WithControllerLogger sets the logger used for playback diagnostics.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(o *ControllerOptions) {
		o.Logger = logger
	}
}

// NewController builds a controller over an open session, displays the
// first frame, and starts paused.
func NewController(session *Session, conv *Converter, sink FrameSink, options ...ControllerOption) (*Controller, error) {
	return newController(session, conv, sink, options...)
}

func newController(src frameSource, conv frameConverter, sink FrameSink, options ...ControllerOption) (*Controller, error) {
	opts := &ControllerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	c := &Controller{
		src:     src,
		conv:    conv,
		sink:    sink,
		tb:      src.Timebase(),
		state:   StatePaused,
		lastPTS: avutil.NoPTSValue,
		logger:  opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	frame, err := src.SeekToFrame(0)
	if err != nil {
		return nil, err
	}
	if err := c.display(frame); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns the current playback state.
func (c *Controller) State() State {
	return c.state
}

// CurrentFrame returns the number of the frame currently displayed.
// Always derived from the displayed frame's timestamp, so stepping,
// seeking, and playback can never drift apart.
func (c *Controller) CurrentFrame() int64 {
	if c.lastPTS == avutil.NoPTSValue {
		return 0
	}
	return c.tb.PTSToFrame(c.lastPTS)
}

// FrameInterval returns the wall-clock duration of one frame, for
// pacing Tick while playing.
func (c *Controller) FrameInterval() time.Duration {
	return c.tb.FrameInterval()
}

// TogglePlayPause switches between playing and paused. No effect once
// stopped.
func (c *Controller) TogglePlayPause() {
	switch c.state {
	case StatePlaying:
		c.state = StatePaused
	case StatePaused:
		c.state = StatePlaying
	}
}

// StepForward pauses playback and advances exactly one frame. The
// step is a seek to the next frame number rather than a sequential
// read, so irregular packet timestamps cannot stall it short of a
// full frame. At the last frame it returns ErrNoFrame and the
// displayed frame and state are unchanged.
func (c *Controller) StepForward() error {
	if c.state == StateStopped {
		return ErrClosed
	}
	c.state = StatePaused

	frame, err := c.src.SeekToFrame(c.CurrentFrame() + 1)
	if err != nil {
		return err
	}
	return c.display(frame)
}

// StepBackward pauses playback and moves exactly one frame back.
// At frame 0 it re-displays frame 0.
func (c *Controller) StepBackward() error {
	if c.state == StateStopped {
		return ErrClosed
	}
	c.state = StatePaused

	target := c.CurrentFrame() - 1
	if target < 0 {
		target = 0
	}
	frame, err := c.src.SeekToFrame(target)
	if err != nil {
		return err
	}
	return c.display(frame)
}

// SeekTo pauses playback and jumps to the given frame number.
func (c *Controller) SeekTo(n int64) error {
	if c.state == StateStopped {
		return ErrClosed
	}
	c.state = StatePaused

	frame, err := c.src.SeekToFrame(n)
	if err != nil {
		return err
	}
	return c.display(frame)
}

// Tick advances one frame when playing; a no-op when paused or
// stopped. At end of stream it pauses and stays on the last frame, so
// further ticks are harmless.
func (c *Controller) Tick() error {
	if c.state != StatePlaying {
		return nil
	}

	frame, err := c.src.NextFrame()
	if err != nil {
		if errors.Is(err, ErrNoFrame) {
			c.state = StatePaused
			c.logger.Debug("end of stream, pausing", "frame", c.CurrentFrame())
			return nil
		}
		return err
	}
	return c.display(frame)
}

// Quit stops playback and releases the session and converter. Further
// transport commands return ErrClosed.
func (c *Controller) Quit() error {
	if c.state == StateStopped {
		return nil
	}
	c.state = StateStopped
	c.conv.Close()
	return c.src.Close()
}

// Handle dispatches a transport command.
func (c *Controller) Handle(cmd Command) error {
	switch cmd {
	case CmdTogglePlay:
		c.TogglePlayPause()
		return nil
	case CmdStepForward:
		return c.StepForward()
	case CmdStepBackward:
		return c.StepBackward()
	case CmdQuit:
		return c.Quit()
	default:
		return nil
	}
}

// display converts and presents a frame, recording its timestamp only
// after the sink accepts it.
func (c *Controller) display(frame *DecodedFrame) error {
	buf, err := c.conv.Convert(frame)
	if err != nil {
		return err
	}
	if err := c.sink.Display(buf); err != nil {
		return err
	}
	c.lastPTS = frame.PTS
	return nil
}
