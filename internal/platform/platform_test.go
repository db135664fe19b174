//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"runtime"
	"strings"
	"testing"
)

func TestFormatLibraryNameVersioned(t *testing.T) {
	name := FormatLibraryName("avcodec", 60)

	switch runtime.GOOS {
	case "darwin":
		if name != "libavcodec.60.dylib" {
			t.Errorf("got %q", name)
		}
	case "windows":
		if name != "avcodec-60.dll" {
			t.Errorf("got %q", name)
		}
	default:
		if name != "libavcodec.so.60" {
			t.Errorf("got %q", name)
		}
	}
}

func TestFormatLibraryNameUnversioned(t *testing.T) {
	name := FormatLibraryName("swscale", 0)
	if !strings.Contains(name, "swscale") {
		t.Errorf("library name %q does not contain base name", name)
	}
	if strings.ContainsAny(name, "0123456789") {
		t.Errorf("unversioned name %q contains a version", name)
	}
}
