package features

import (
	"context"
	"image"
	"time"

	"media-cleaner/internal/logging"
	"media-cleaner/internal/metrics"

	"github.com/disintegration/imaging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// ImageFeatures holds the three independent features extracted per image.
type ImageFeatures struct {
	BlurScore float64
	PHash     string // 16 hex digits; empty on decode failure
	FaceCount int
}

// VideoFeatures holds the features extracted per video.
type VideoFeatures struct {
	Signature string   // legacy identity hint, never empty
	Duration  *float64 // nil when the container reports no usable metadata
	FrameHash *string  // nil when the midpoint frame cannot be decoded
}

// Extractor computes media features. It carries the face classifier, which
// is loaded once and shared across files; the zero-value faces path (no
// classifier) degrades to a face count of zero.
type Extractor struct {
	faces *faceDetector
}

// NewExtractor creates an Extractor. cascadePath locates the face cascade
// model; when it is empty or the model cannot be loaded, face detection is
// disabled and every image reports zero faces.
func NewExtractor(cascadePath string) *Extractor {
	det, err := newFaceDetector(cascadePath)
	if err != nil {
		logging.Warn("Face detection disabled: %v", err)
	}
	return &Extractor{faces: det}
}

// Image computes all image features for path. Each feature fails
// independently: the blur score falls back to its sentinel, the hash to an
// empty string and the face count to zero.
func (e *Extractor) Image(path string) ImageFeatures {
	return ImageFeatures{
		BlurScore: BlurScore(path),
		PHash:     PerceptualHash(path),
		FaceCount: e.CountFaces(path),
	}
}

// Video computes all video features for path. size is the file's on-disk
// size, already known from the stat that preceded extraction.
func (e *Extractor) Video(ctx context.Context, path string, size int64) VideoFeatures {
	duration, frameHash := AnalyzeVideo(ctx, path)
	return VideoFeatures{
		Signature: VideoSignature(path, size),
		Duration:  duration,
		FrameHash: frameHash,
	}
}

// loadImage decodes an image from disk using the registered decoders.
func loadImage(path string) (image.Image, error) {
	return imaging.Open(path)
}

// loadGrayscale decodes an image and returns its 8-bit luminance plane.
func loadGrayscale(path string) (*image.Gray, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return toGray(img), nil
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// observe records the duration and outcome of one sub-feature computation.
func observe(feature string, start time.Time, failed bool) {
	metrics.ExtractionDuration.WithLabelValues(feature).Observe(time.Since(start).Seconds())
	if failed {
		metrics.ExtractionFailures.WithLabelValues(feature).Inc()
	}
}
