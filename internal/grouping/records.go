package grouping

// ImageMeta is the per-image feature set the scanner collects for every
// successfully scanned image. It is the sole input to image clustering;
// re-grouping at a new threshold needs nothing else.
type ImageMeta struct {
	BlurScore float64
	FaceCount int
	Size      int64
	PHash     string // 16 hex digits, empty when hashing failed
}

// ImageRecord is one member of an image group. All legacy result shapes
// normalize to this record at ingestion.
type ImageRecord struct {
	Path      string
	BlurScore float64
	FaceCount int
	Size      int64
}

// VideoRecord is one member of a video duplicate group.
type VideoRecord struct {
	Path     string
	Duration float64 // seconds
}

func record(path string, meta ImageMeta) ImageRecord {
	return ImageRecord{
		Path:      path,
		BlurScore: meta.BlurScore,
		FaceCount: meta.FaceCount,
		Size:      meta.Size,
	}
}
