//go:build !ios && !android && (amd64 || arm64)

package avcodec

// CodecID represents FFmpeg codec identifiers.
type CodecID int32

// Video codec IDs commonly seen in scrubbable media.
const (
	CodecIDNone CodecID = 0

	CodecIDMPEG1VIDEO CodecID = 1
	CodecIDMPEG2VIDEO CodecID = 2
	CodecIDMJPEG      CodecID = 7
	CodecIDMPEG4      CodecID = 12
	CodecIDRAWVIDEO   CodecID = 13
	CodecIDWMV1       CodecID = 17
	CodecIDWMV2       CodecID = 18
	CodecIDFLV1       CodecID = 21
	CodecIDH264       CodecID = 27
	CodecIDTHEORA     CodecID = 30
	CodecIDFFV1       CodecID = 33
	CodecIDWMV3       CodecID = 70
	CodecIDVC1        CodecID = 71
	CodecIDVP8        CodecID = 139
	CodecIDVP9        CodecID = 167
	CodecIDHEVC       CodecID = 173
	CodecIDAV1        CodecID = 226
	CodecIDProRes     CodecID = 147
	CodecIDDNXHD      CodecID = 99
)
