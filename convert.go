//go:build !ios && !android && (amd64 || arm64)

package scrub

import (
	"fmt"
	"unsafe"

	"github.com/framepoint/scrub/avutil"
	"github.com/framepoint/scrub/swscale"
)

// PixelBuffer is a packed BGR24 image owned by the caller. Rows are
// laid out top to bottom with Stride bytes per row (Stride == Width*3;
// no padding).
type PixelBuffer struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

// Converter turns decoded frames into packed BGR24 pixel buffers. The
// underlying conversion context is cached and only rebuilt when the
// source geometry or pixel format changes, so converting a steady
// stream of frames allocates no new contexts.
//
// A Converter is not safe for concurrent use.
type Converter struct {
	ctx    swscale.Context
	srcW   int
	srcH   int
	srcFmt avutil.PixelFormat

	rebuilds int
}

// NewConverter returns an empty converter. The conversion context is
// created lazily on first use.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert converts a decoded frame to BGR24. The returned buffer is
// freshly allocated and remains valid after the session decodes
// further frames.
func (c *Converter) Convert(f *DecodedFrame) (*PixelBuffer, error) {
	if f == nil || f.frame == nil {
		return nil, ErrNoFrame
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("scrub: cannot convert %dx%d frame", f.Width, f.Height)
	}

	if err := c.ensureContext(f.Width, f.Height, f.Format); err != nil {
		return nil, err
	}

	stride := f.Width * 3
	buf := make([]byte, stride*f.Height)

	var dst [8]unsafe.Pointer
	var dstStride [8]int32
	dst[0] = unsafe.Pointer(&buf[0])
	dstStride[0] = int32(stride)

	if out := swscale.ScaleFrame(c.ctx, f.frame, &dst, &dstStride); out != int32(f.Height) {
		return nil, fmt.Errorf("scrub: pixel conversion produced %d of %d rows", out, f.Height)
	}

	return &PixelBuffer{
		Data:   buf,
		Width:  f.Width,
		Height: f.Height,
		Stride: stride,
	}, nil
}

// ensureContext rebuilds the sws context when the source geometry or
// format differs from the cached one.
func (c *Converter) ensureContext(w, h int, pixFmt avutil.PixelFormat) error {
	if c.ctx != nil && c.srcW == w && c.srcH == h && c.srcFmt == pixFmt {
		return nil
	}

	if c.ctx != nil {
		swscale.FreeContext(c.ctx)
		c.ctx = nil
	}

	ctx := swscale.GetContext(
		w, h, pixFmt,
		w, h, avutil.PixelFormatBGR24,
		swscale.FlagBilinear, nil, nil, nil,
	)
	if ctx == nil {
		return fmt.Errorf("scrub: no conversion from pixel format %d to BGR24", pixFmt)
	}

	c.ctx = ctx
	c.srcW = w
	c.srcH = h
	c.srcFmt = pixFmt
	c.rebuilds++
	return nil
}

// Rebuilds returns how many times the conversion context has been
// (re)built. Mostly useful in tests.
func (c *Converter) Rebuilds() int {
	return c.rebuilds
}

// Close frees the cached conversion context. Safe to call more than
// once; the converter remains usable and will rebuild lazily.
func (c *Converter) Close() {
	if c.ctx != nil {
		swscale.FreeContext(c.ctx)
		c.ctx = nil
	}
}
