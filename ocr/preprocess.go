package ocr

import (
	"image"

	"github.com/disintegration/gift"
)

// contrastBoost is the fixed contrast enhancement applied before
// binarization, in gift's -100..100 percentage scale.
const contrastBoost = 50

// Preprocess runs the one-time image pipeline shared by all recognition
// passes: grayscale, contrast boost, 3x3 median denoise, then global
// binarization with an Otsu-selected threshold.
func Preprocess(src image.Image) *image.Gray {
	g := gift.New(
		gift.Grayscale(),
		gift.Contrast(contrastBoost),
		gift.Median(3, false),
	)

	gray := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(gray, src)

	threshold := otsuThreshold(gray)
	for i, px := range gray.Pix {
		if px > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray
}

// otsuThreshold picks the global threshold that maximizes between-class
// variance over the grayscale histogram.
func otsuThreshold(img *image.Gray) uint8 {
	var hist [256]int
	for _, px := range img.Pix {
		hist[px]++
	}
	total := len(img.Pix)
	if total == 0 {
		return 0
	}

	var sum float64
	for i, count := range hist {
		sum += float64(i) * float64(count)
	}

	var sumBg, weightBg float64
	var maxVariance float64
	var best uint8

	for t := 0; t < 256; t++ {
		weightBg += float64(hist[t])
		if weightBg == 0 {
			continue
		}
		weightFg := float64(total) - weightBg
		if weightFg == 0 {
			break
		}

		sumBg += float64(t) * float64(hist[t])
		meanBg := sumBg / weightBg
		meanFg := (sum - sumBg) / weightFg

		variance := weightBg * weightFg * (meanBg - meanFg) * (meanBg - meanFg)
		if variance > maxVariance {
			maxVariance = variance
			best = uint8(t)
		}
	}
	return best
}
