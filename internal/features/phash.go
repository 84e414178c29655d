package features

import (
	"fmt"
	"image"
	"time"

	"github.com/corona10/goimagehash"
)

// PerceptualHash computes the 64-bit pHash of an image and renders it as a
// 16-digit hex string. Returns an empty string when the image cannot be
// decoded or hashed.
func PerceptualHash(path string) string {
	start := time.Now()

	img, err := loadImage(path)
	if err != nil {
		observe("phash", start, true)
		return ""
	}

	hash, err := hashImage(img)
	observe("phash", start, err != nil)
	if err != nil {
		return ""
	}
	return hash
}

// hashImage computes the pHash of an already-decoded image as a hex string.
func hashImage(img image.Image) (string, error) {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", err
	}
	return FormatHash(hash.GetHash()), nil
}

// FormatHash renders a 64-bit perceptual hash in the canonical fixed-width
// form used as the grouping key and the cache representation.
func FormatHash(bits uint64) string {
	return fmt.Sprintf("%016x", bits)
}
