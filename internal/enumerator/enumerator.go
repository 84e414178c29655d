package enumerator

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"media-cleaner/internal/logging"
	"media-cleaner/internal/mediatypes"
)

// Enumerate walks root and returns the paths of all image and video files,
// in traversal order. With recursive false only the immediate children of
// root are listed.
//
// Individual unreadable entries are skipped with a warning; only a root
// that cannot be read at all yields an error.
func Enumerate(root string, recursive bool) ([]string, error) {
	if !recursive {
		return listImmediate(root)
	}

	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("Error accessing path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && mediatypes.IsExcludedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if isMedia(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// listImmediate lists media files directly under root, skipping
// subdirectories entirely.
func listImmediate(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// A vanished entry shows up here as a stat failure later in the
		// pipeline; the listing itself needs no further checks.
		if isMedia(entry.Name()) {
			files = append(files, filepath.Join(root, entry.Name()))
		}
	}
	return files, nil
}

func isMedia(name string) bool {
	return mediatypes.IsMediaFile(strings.ToLower(filepath.Ext(name)))
}
