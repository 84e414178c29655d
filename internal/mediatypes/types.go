package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the scan class of a file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents a file the scanner ignores.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps file extensions to whether they are scanned as images.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
}

// VideoExtensions maps file extensions to whether they are scanned as videos.
var VideoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
	".flv": true,
	".wmv": true,
}

// ExcludedDirs is the set of directory names pruned from traversal.
// Version-control metadata, OS trash and volume-tracking directories, and
// bytecode caches never contain user media.
var ExcludedDirs = map[string]bool{
	".git":                      true,
	"System Volume Information": true,
	"$RECYCLE.BIN":              true,
	"__pycache__":               true,
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g. ".jpg").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// TypeOf classifies a path by its extension.
func TypeOf(path string) FileType {
	return GetFileType(strings.ToLower(filepath.Ext(path)))
}

// IsMediaFile returns true if the extension represents a scannable file.
func IsMediaFile(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}

// IsExcludedDir reports whether a directory name is pruned from traversal.
func IsExcludedDir(name string) bool {
	return ExcludedDirs[name]
}
