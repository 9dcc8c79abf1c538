// Colour space conversions
package algorithms

import (
	"gocv.io/x/gocv"
)

// Grayscale converts src to a single-channel image. Single-channel input is cloned.
func Grayscale(src gocv.Mat) (gocv.Mat, error) {
	const op = "grayscale"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	switch src.Channels() {
	case 3:
		return convert(op, src, gocv.ColorBGRToGray)
	case 4:
		return convert(op, src, gocv.ColorBGRAToGray)
	}
	return src.Clone(), nil
}

// HSV converts src to a 3-channel hue/saturation/value image whatever its channel count.
func HSV(src gocv.Mat) (gocv.Mat, error) {
	const op = "hsv"
	bgr, err := ToBGR(src)
	if err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}
	defer bgr.Close()

	return convert(op, bgr, gocv.ColorBGRToHSV)
}

// ValueChannel extracts the V plane of an HSV image.
func ValueChannel(hsv gocv.Mat) (gocv.Mat, error) {
	const op = "value channel"
	if err := checkInput(op, hsv); err != nil {
		return gocv.NewMat(), err
	}
	if hsv.Channels() != 3 {
		return gocv.NewMat(), imagingErrorf(op, "expected 3 channels, got %d", hsv.Channels())
	}

	planes := gocv.Split(hsv)
	defer closeAll(planes)
	if len(planes) != 3 {
		return gocv.NewMat(), imagingErrorf(op, "split returned %d planes", len(planes))
	}
	return planes[2].Clone(), nil
}

// ToBGR returns a 3-channel copy of src, converting grey or BGRA input.
func ToBGR(src gocv.Mat) (gocv.Mat, error) {
	const op = "to bgr"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	switch src.Channels() {
	case 1:
		return convert(op, src, gocv.ColorGrayToBGR)
	case 4:
		return convert(op, src, gocv.ColorBGRAToBGR)
	}
	return src.Clone(), nil
}

func convert(op string, src gocv.Mat, code gocv.ColorConversionCode) (gocv.Mat, error) {
	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, code); err != nil {
		dst.Close()
		return gocv.NewMat(), imagingError(op, err)
	}
	return result(op, dst)
}
