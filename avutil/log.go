//go:build !ios && !android && (amd64 || arm64)

package avutil

import (
	"github.com/ebitengine/purego"
	"github.com/framepoint/scrub/internal/bindings"
)

// LogLevel represents FFmpeg log levels.
type LogLevel int32

// Log level constants matching FFmpeg's AV_LOG_* values.
const (
	LogQuiet   LogLevel = -8 // Print no output
	LogPanic   LogLevel = 0  // Something went really wrong, crash
	LogFatal   LogLevel = 8  // Something went wrong, exit now
	LogError   LogLevel = 16 // Something went wrong, recovery possible
	LogWarning LogLevel = 24 // Something unexpected but recovery possible
	LogInfo    LogLevel = 32 // Standard information
	LogVerbose LogLevel = 40 // Detailed information
	LogDebug   LogLevel = 48 // Stuff for debugging
)

var avLogSetLevel func(level int32)

func init() {
	if err := bindings.Load(); err != nil {
		return
	}
	lib := bindings.LibAVUtil()
	if lib == 0 {
		return
	}
	purego.RegisterLibFunc(&avLogSetLevel, lib, "av_log_set_level")
}

// SetLogLevel sets FFmpeg's global console log level. Decoders are
// chatty at the default level; a scrubbing loop usually wants LogError.
func SetLogLevel(level LogLevel) error {
	if avLogSetLevel == nil {
		return bindings.ErrNotLoaded
	}
	avLogSetLevel(int32(level))
	return nil
}
