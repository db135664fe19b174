//go:build !ios && !android && (amd64 || arm64)

package avutil

import "unsafe"

// Dictionary is an opaque FFmpeg AVDictionary pointer.
// The demuxing paths in this module pass nil dictionaries, so no
// key/value manipulation functions are bound.
type Dictionary = unsafe.Pointer
