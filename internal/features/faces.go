package features

import (
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
)

// Face detection parameters, fixed per the cascade detector's tuning:
// 1.1 scale step between pyramid levels, 30px minimum detection size, and a
// clustering quality floor standing in for a minimum-neighbors count of 5.
const (
	faceScaleFactor  = 1.1
	faceShiftFactor  = 0.1
	faceMinSize      = 30
	faceMaxSize      = 480
	faceQualityFloor = 5.0
	faceClusterIoU   = 0.2

	// Detection runs on a width-normalized copy for speed.
	faceDetectWidth = 480
)

type faceDetector struct {
	classifier *pigo.Pigo
}

// newFaceDetector loads a cascade model from disk. An empty path or a
// missing/corrupt model disables detection rather than failing the engine.
func newFaceDetector(cascadePath string) (*faceDetector, error) {
	if cascadePath == "" {
		return nil, errors.New("no face cascade model configured")
	}

	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read face cascade %s: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack face cascade %s: %w", cascadePath, err)
	}

	return &faceDetector{classifier: classifier}, nil
}

// CountFaces counts face detections in an image. Returns 0 on any failure,
// including a disabled detector; face counting never raises.
func (e *Extractor) CountFaces(path string) int {
	start := time.Now()

	if e == nil || e.faces == nil {
		return 0
	}

	img, err := loadImage(path)
	if err != nil {
		observe("faces", start, true)
		return 0
	}

	// Normalize to at most faceDetectWidth wide before detection.
	if img.Bounds().Dx() > faceDetectWidth {
		img = imaging.Resize(img, faceDetectWidth, 0, imaging.Box)
	}

	count := e.faces.count(toGray(img))
	observe("faces", start, false)
	return count
}

func (d *faceDetector) count(gray *image.Gray) int {
	bounds := gray.Bounds()
	rows := bounds.Dy()
	cols := bounds.Dx()
	if rows < faceMinSize || cols < faceMinSize {
		return 0
	}

	params := pigo.CascadeParams{
		MinSize:     faceMinSize,
		MaxSize:     faceMaxSize,
		ShiftFactor: faceShiftFactor,
		ScaleFactor: faceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   rows,
			Cols:   cols,
			Dim:    gray.Stride,
		},
	}

	detections := d.classifier.RunCascade(params, 0.0)
	detections = d.classifier.ClusterDetections(detections, faceClusterIoU)

	count := 0
	for _, det := range detections {
		if det.Q >= faceQualityFloor {
			count++
		}
	}
	return count
}
