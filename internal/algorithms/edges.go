// Edge enhancement: sharpening, Laplacian magnitude and Canny
package algorithms

import (
	"image"

	"gocv.io/x/gocv"
)

var sharpenKernel = [3][3]float32{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen convolves src with a 3x3 sharpening kernel, keeping the input depth.
func Sharpen(src gocv.Mat) (gocv.Mat, error) {
	const op = "sharpen"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for row := range sharpenKernel {
		for col, v := range sharpenKernel[row] {
			kernel.SetFloatAt(row, col, v)
		}
	}

	dst := gocv.NewMat()
	err := gocv.Filter2D(src, &dst, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)
	return finish(op, dst, err)
}

// Laplacian computes the second-derivative response at 16-bit signed depth and
// returns its absolute value as an 8-bit image.
func Laplacian(src gocv.Mat) (gocv.Mat, error) {
	const op = "laplacian"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	response := gocv.NewMat()
	defer response.Close()
	if err := gocv.Laplacian(src, &response, gocv.MatTypeCV16S, 3, 1, 0, gocv.BorderDefault); err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}
	if response.Empty() {
		return gocv.NewMat(), imagingError(op, ErrEmptyResult)
	}

	dst := gocv.NewMat()
	err := gocv.ConvertScaleAbs(response, &dst, 1, 0)
	return finish(op, dst, err)
}

// Canny produces a single-channel binary edge map using hysteresis thresholds low and high.
func Canny(src gocv.Mat, low, high float64) (gocv.Mat, error) {
	const op = "canny"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	input := src
	if src.Channels() == 4 {
		bgr, err := ToBGR(src)
		if err != nil {
			return gocv.NewMat(), imagingError(op, err)
		}
		defer bgr.Close()
		input = bgr
	}

	dst := gocv.NewMat()
	err := gocv.Canny(input, &dst, float32(low), float32(high))
	return finish(op, dst, err)
}
