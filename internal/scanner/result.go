package scanner

import (
	"media-cleaner/internal/grouping"
)

// Config holds the inputs to one scan run. It is immutable for the run's
// duration.
type Config struct {
	Root          string
	Recursive     bool
	BlurThreshold float64 // images scoring below this are blurry
}

// Progress is one ordered progress event: how many files have been
// attempted, out of how many, and which file is current.
type Progress struct {
	Processed int
	Total     int
	Filename  string
}

// BlurImage is one image that scored below the blur threshold.
type BlurImage struct {
	Path      string
	BlurScore float64
	FaceCount int
}

// ScanResult is the aggregate outcome of one run. It is owned exclusively
// by the run that produced it and handed off whole; it holds no reference
// back to the cache.
type ScanResult struct {
	// ScannedCount is the number of files attempted, including files whose
	// extraction partially failed.
	ScannedCount int

	// BlurImages lists images scoring below the run's blur threshold, in
	// processing order.
	BlurImages []BlurImage

	// SimilarGroups maps each shared perceptual hash to its members.
	// Only groups with at least two members appear.
	SimilarGroups map[string][]grouping.ImageRecord

	// DuplicateVideos maps each rendered (duration bucket, frame hash) key
	// to its members. Only groups with at least two members appear.
	DuplicateVideos map[string][]grouping.VideoRecord

	// ImageMetadata holds the collected features of every successfully
	// scanned image, keyed by path. It is the input to ReclusterImages.
	ImageMetadata map[string]grouping.ImageMeta
}

// ReclusterImages recomputes the image grouping at a new Hamming-distance
// threshold, purely from the metadata collected during the scan. It can be
// called repeatedly without re-running the pipeline and never touches the
// filesystem.
func (r *ScanResult) ReclusterImages(threshold int) map[string][]grouping.ImageRecord {
	return grouping.ClusterImages(r.ImageMetadata, threshold)
}

// BestShot designates the member of a group to keep.
func (r *ScanResult) BestShot(members []grouping.ImageRecord) string {
	return grouping.SelectBestShot(members)
}

func newScanResult() *ScanResult {
	return &ScanResult{
		SimilarGroups:   make(map[string][]grouping.ImageRecord),
		DuplicateVideos: make(map[string][]grouping.VideoRecord),
		ImageMetadata:   make(map[string]grouping.ImageMeta),
	}
}
