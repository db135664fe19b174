//go:build !ios && !android && (amd64 || arm64)

package scrub

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/framepoint/scrub/avutil"
)

func TestConvertNilFrame(t *testing.T) {
	conv := NewConverter()
	defer conv.Close()

	if _, err := conv.Convert(nil); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Expected ErrNoFrame for nil frame, got %v", err)
	}
	if conv.Rebuilds() != 0 {
		t.Errorf("No context should be built for nil input, got %d", conv.Rebuilds())
	}
}

// testFrame allocates a real YUV420P frame filled with mid-gray.
func testFrame(t *testing.T, w, h int) *DecodedFrame {
	t.Helper()

	frame := avutil.FrameAlloc()
	if frame == nil {
		t.Fatal("FrameAlloc returned nil")
	}
	t.Cleanup(func() { avutil.FrameFree(&frame) })

	avutil.SetFrameWidth(frame, int32(w))
	avutil.SetFrameHeight(frame, int32(h))
	avutil.SetFrameFormat(frame, int32(avutil.PixelFormatYUV420P))
	if err := avutil.FrameGetBuffer(frame, 32); err != nil {
		t.Fatalf("FrameGetBuffer failed: %v", err)
	}

	for plane := 0; plane < 3; plane++ {
		data := avutil.GetFrameDataPlane(frame, plane)
		linesize := int(avutil.GetFrameLinesizePlane(frame, plane))
		rows := h
		if plane > 0 {
			rows = h / 2
		}
		buf := unsafe.Slice((*byte)(data), linesize*rows)
		for i := range buf {
			buf[i] = 128
		}
	}

	return &DecodedFrame{
		Width:  w,
		Height: h,
		Format: avutil.PixelFormatYUV420P,
		frame:  frame,
	}
}

func TestConvertYUVFrame(t *testing.T) {
	skipIfNoFFmpeg(t)

	conv := NewConverter()
	defer conv.Close()

	f := testFrame(t, 64, 48)
	buf, err := conv.Convert(f)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if buf.Width != 64 || buf.Height != 48 {
		t.Errorf("Expected 64x48, got %dx%d", buf.Width, buf.Height)
	}
	if buf.Stride != 64*3 {
		t.Errorf("Expected stride %d, got %d", 64*3, buf.Stride)
	}
	if len(buf.Data) != buf.Stride*buf.Height {
		t.Errorf("Expected %d bytes, got %d", buf.Stride*buf.Height, len(buf.Data))
	}

	// Neutral chroma converts to near-equal BGR components.
	b, g, r := buf.Data[0], buf.Data[1], buf.Data[2]
	if diff(b, g) > 4 || diff(g, r) > 4 {
		t.Errorf("Expected gray pixel, got B=%d G=%d R=%d", b, g, r)
	}
}

func TestConverterCachesContext(t *testing.T) {
	skipIfNoFFmpeg(t)

	conv := NewConverter()
	defer conv.Close()

	f := testFrame(t, 64, 48)
	for i := 0; i < 3; i++ {
		if _, err := conv.Convert(f); err != nil {
			t.Fatalf("Convert %d failed: %v", i, err)
		}
	}
	if conv.Rebuilds() != 1 {
		t.Errorf("Expected 1 context build for steady input, got %d", conv.Rebuilds())
	}

	// Geometry change forces a rebuild.
	f2 := testFrame(t, 32, 24)
	if _, err := conv.Convert(f2); err != nil {
		t.Fatalf("Convert after resize failed: %v", err)
	}
	if conv.Rebuilds() != 2 {
		t.Errorf("Expected 2 context builds after resize, got %d", conv.Rebuilds())
	}

	// Converting the original geometry again rebuilds once more.
	if _, err := conv.Convert(f); err != nil {
		t.Fatalf("Convert back failed: %v", err)
	}
	if conv.Rebuilds() != 3 {
		t.Errorf("Expected 3 context builds, got %d", conv.Rebuilds())
	}
}

func TestConverterCloseIsReusable(t *testing.T) {
	skipIfNoFFmpeg(t)

	conv := NewConverter()

	f := testFrame(t, 64, 48)
	if _, err := conv.Convert(f); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	conv.Close()
	conv.Close() // double close is safe

	if _, err := conv.Convert(f); err != nil {
		t.Fatalf("Convert after Close failed: %v", err)
	}
}

func diff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
