//go:build !ios && !android && (amd64 || arm64)

package avformat

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/framepoint/scrub/avcodec"
	"github.com/framepoint/scrub/avutil"
	"github.com/framepoint/scrub/internal/bindings"
)

var ffmpegAvailable bool

func TestMain(m *testing.M) {
	if err := bindings.Load(); err == nil {
		ffmpegAvailable = true
	}
	os.Exit(m.Run())
}

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if !ffmpegAvailable {
		t.Skip("FFmpeg not available")
	}
}

// Helper to create a test video file using ffmpeg CLI
func createTestVideo(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.mp4")

	// Create a 1-second test video using ffmpeg
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=30",
		"-c:v", "libx264", "-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		testFile)

	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available or failed: %v", err)
		return ""
	}

	if _, err := os.Stat(testFile); err != nil {
		t.Skipf("Test file not created: %v", err)
		return ""
	}

	return testFile
}

func openTestVideo(t *testing.T) FormatContext {
	t.Helper()

	testFile := createTestVideo(t)
	if testFile == "" {
		return nil
	}

	var ctx FormatContext
	if err := OpenInput(&ctx, testFile, nil, nil); err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	if err := FindStreamInfo(ctx, nil); err != nil {
		CloseInput(&ctx)
		t.Fatalf("FindStreamInfo failed: %v", err)
	}
	return ctx
}

func TestOpenInput(t *testing.T) {
	skipIfNoFFmpeg(t)

	testFile := createTestVideo(t)
	if testFile == "" {
		return
	}

	var ctx FormatContext
	err := OpenInput(&ctx, testFile, nil, nil)
	if err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	defer CloseInput(&ctx)

	if ctx == nil {
		t.Error("Context should not be nil after OpenInput")
	}
}

func TestOpenInputMissingFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	var ctx FormatContext
	err := OpenInput(&ctx, "/nonexistent/file.mp4", nil, nil)
	if err == nil {
		CloseInput(&ctx)
		t.Fatal("OpenInput should fail for a missing file")
	}
}

func TestFindStreamInfo(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := openTestVideo(t)
	if ctx == nil {
		return
	}
	defer CloseInput(&ctx)

	numStreams := GetNumStreams(ctx)
	if numStreams < 1 {
		t.Errorf("Expected at least 1 stream, got %d", numStreams)
	}
	t.Logf("Found %d streams", numStreams)
}

func TestStreamAccessors(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := openTestVideo(t)
	if ctx == nil {
		return
	}
	defer CloseInput(&ctx)

	stream := GetStream(ctx, 0)
	if stream == nil {
		t.Fatal("GetStream(0) returned nil")
	}

	if idx := GetStreamIndex(stream); idx != 0 {
		t.Errorf("Stream index: expected 0, got %d", idx)
	}

	tb := GetStreamTimeBase(stream)
	if !tb.IsValid() {
		t.Errorf("Stream time base invalid: %d/%d", tb.Num, tb.Den)
	}

	avg := GetStreamAvgFrameRate(stream)
	if avg.IsValid() {
		fps := avg.Float64()
		if fps < 29.0 || fps > 31.0 {
			t.Errorf("avg_frame_rate: expected ~30 fps, got %.3f", fps)
		}
	} else {
		t.Log("avg_frame_rate not recorded by container")
	}

	par := GetStreamCodecPar(stream)
	if par == nil {
		t.Fatal("GetStreamCodecPar returned nil")
	}
	if GetCodecParType(par) != avutil.MediaTypeVideo {
		t.Errorf("codec_type: expected video, got %d", GetCodecParType(par))
	}
	if GetCodecParWidth(par) != 320 || GetCodecParHeight(par) != 240 {
		t.Errorf("dimensions: expected 320x240, got %dx%d",
			GetCodecParWidth(par), GetCodecParHeight(par))
	}
	if GetCodecParCodecID(par) != avcodec.CodecIDH264 {
		t.Errorf("codec_id: expected H264, got %d", GetCodecParCodecID(par))
	}
}

func TestReadFrame(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := openTestVideo(t)
	if ctx == nil {
		return
	}
	defer CloseInput(&ctx)

	pkt := avcodec.PacketAlloc()
	if pkt == nil {
		t.Fatal("PacketAlloc returned nil")
	}
	defer avcodec.PacketFree(&pkt)

	count := 0
	for {
		err := ReadFrame(ctx, pkt)
		if err != nil {
			if avutil.IsEOF(err) {
				break
			}
			t.Fatalf("ReadFrame failed: %v", err)
		}
		count++
		avcodec.PacketUnref(pkt)
	}

	// 1 second at 30 fps
	if count < 30 {
		t.Errorf("Expected at least 30 packets, got %d", count)
	}
	t.Logf("Read %d packets", count)
}

func TestSeekFrame(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := openTestVideo(t)
	if ctx == nil {
		return
	}
	defer CloseInput(&ctx)

	stream := GetStream(ctx, 0)
	if stream == nil {
		t.Fatal("GetStream(0) returned nil")
	}

	// Seek to the middle of the file, then back to the start.
	dur := GetStreamDuration(stream)
	if err := SeekFrame(ctx, 0, dur/2, SeekFlagBackward); err != nil {
		t.Fatalf("SeekFrame to middle failed: %v", err)
	}
	if err := SeekFrame(ctx, 0, 0, SeekFlagBackward); err != nil {
		t.Fatalf("SeekFrame to start failed: %v", err)
	}
}

func TestGetStreamOutOfRange(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := openTestVideo(t)
	if ctx == nil {
		return
	}
	defer CloseInput(&ctx)

	if s := GetStream(ctx, -1); s != nil {
		t.Error("GetStream(-1) should return nil")
	}
	if s := GetStream(ctx, GetNumStreams(ctx)); s != nil {
		t.Error("GetStream past the end should return nil")
	}
}

func TestNilAccessors(t *testing.T) {
	if GetNumStreams(nil) != 0 {
		t.Error("GetNumStreams(nil) should be 0")
	}
	if GetStreamIndex(nil) != -1 {
		t.Error("GetStreamIndex(nil) should be -1")
	}
	if GetStreamStartTime(nil) != avutil.NoPTSValue {
		t.Error("GetStreamStartTime(nil) should be NoPTSValue")
	}
	tb := GetStreamTimeBase(nil)
	if tb.Num != 0 || tb.Den != 1 {
		t.Errorf("GetStreamTimeBase(nil): expected 0/1, got %d/%d", tb.Num, tb.Den)
	}
	if GetCodecParType(nil) != avutil.MediaTypeUnknown {
		t.Error("GetCodecParType(nil) should be unknown")
	}
}
