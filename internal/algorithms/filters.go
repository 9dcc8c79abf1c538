// Noise reduction filters
package algorithms

import (
	"image"

	"gocv.io/x/gocv"
)

// DefaultBilateralSigma is used when a caller passes a non-positive sigma.
const DefaultBilateralSigma = 75.0

// GaussianBlur smooths src with a square Gaussian kernel. ksize must be odd and positive.
func GaussianBlur(src gocv.Mat, ksize int) (gocv.Mat, error) {
	const op = "gaussian blur"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}
	if err := validateKernel(op, ksize); err != nil {
		return gocv.NewMat(), err
	}

	dst := gocv.NewMat()
	err := gocv.GaussianBlur(src, &dst, image.Pt(ksize, ksize), 0, 0, gocv.BorderDefault)
	return finish(op, dst, err)
}

// MedianBlur replaces every pixel with the median of its ksize x ksize neighbourhood.
func MedianBlur(src gocv.Mat, ksize int) (gocv.Mat, error) {
	const op = "median blur"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}
	if err := validateKernel(op, ksize); err != nil {
		return gocv.NewMat(), err
	}

	dst := gocv.NewMat()
	err := gocv.MedianBlur(src, &dst, ksize)
	return finish(op, dst, err)
}

// Bilateral performs edge-preserving smoothing. A non-positive diameter lets OpenCV
// derive it from sigmaSpace; non-positive sigmas fall back to DefaultBilateralSigma.
func Bilateral(src gocv.Mat, diameter int, sigmaColor, sigmaSpace float64) (gocv.Mat, error) {
	const op = "bilateral filter"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}
	if c := src.Channels(); c != 1 && c != 3 {
		return gocv.NewMat(), imagingErrorf(op, "expected 1 or 3 channels, got %d", c)
	}

	if sigmaColor <= 0 {
		sigmaColor = DefaultBilateralSigma
	}
	if sigmaSpace <= 0 {
		sigmaSpace = DefaultBilateralSigma
	}

	dst := gocv.NewMat()
	err := gocv.BilateralFilter(src, &dst, diameter, sigmaColor, sigmaSpace)
	return finish(op, dst, err)
}

func validateKernel(op string, ksize int) error {
	if ksize < 1 || ksize%2 == 0 {
		return imagingErrorf(op, "kernel size must be odd and positive, got %d", ksize)
	}
	return nil
}
