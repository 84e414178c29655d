package database

import (
	"math"
	"path/filepath"
	"runtime"
	"strings"
)

// mtimeTolerance is the maximum modification-time delta, in seconds, at
// which a cached fingerprint still matches the on-disk stat.
const mtimeTolerance = 0.001

// CacheEntry is one cached row of extracted features for a single file.
// Pointer fields are NULL in the store when the feature does not apply to
// the file's type or could not be computed.
type CacheEntry struct {
	Path           string
	LastModified   float64 // seconds since epoch, sub-second precision
	FileSize       int64
	BlurScore      *float64
	PHash          *string
	VideoHash      *string // legacy content signature: md5(size + head bytes)
	FaceCount      *int64
	VideoDuration  *float64
	VideoFrameHash *string
}

// Matches reports whether the entry's fingerprint matches the given on-disk
// stat within tolerance. A mismatch invalidates the whole entry.
func (e *CacheEntry) Matches(mtime float64, size int64) bool {
	return math.Abs(e.LastModified-mtime) < mtimeTolerance && e.FileSize == size
}

// NormalizePath converts a path to the canonical cache key form: absolute,
// cleaned, forward-slash separated. On Windows the key is additionally
// lowercased since paths there compare case-insensitively.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	abs = filepath.ToSlash(abs)
	if runtime.GOOS == "windows" {
		abs = strings.ToLower(abs)
	}
	return abs
}
