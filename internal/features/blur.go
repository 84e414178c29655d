package features

import (
	"image"
	"time"
)

// blurFailureScore is returned when an image cannot be decoded. It sits well
// above any plausible blur threshold so unreadable files are never
// misclassified as blurry.
const blurFailureScore = 1000.0

// BlurScore computes the variance of the Laplacian edge response over the
// grayscale pixel matrix. Lower variance means less high-frequency detail
// and a higher likelihood of blur.
func BlurScore(path string) float64 {
	start := time.Now()

	gray, err := loadGrayscale(path)
	if err != nil {
		observe("blur", start, true)
		return blurFailureScore
	}

	score := laplacianVariance(gray)
	observe("blur", start, false)
	return score
}

// laplacianVariance convolves the 4-neighbor Laplacian kernel
//
//	 0  1  0
//	 1 -4  1
//	 0  1  0
//
// over the interior pixels and returns the variance of the response.
// The convolution is done on raw float values rather than through an image
// filter: edge responses are signed, and clamping them into a uint8 image
// before measuring variance would destroy exactly the signal being measured.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}

	n := 0
	mean := 0.0
	m2 := 0.0

	// Welford's algorithm keeps the pass single and numerically stable.
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			response := at(x, y-1) + at(x-1, y) + at(x+1, y) + at(x, y+1) - 4*at(x, y)

			n++
			delta := response - mean
			mean += delta / float64(n)
			m2 += delta * (response - mean)
		}
	}

	if n == 0 {
		return 0
	}
	return m2 / float64(n)
}
