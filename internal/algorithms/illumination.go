// Illumination correction: min-max normalisation, flat-field background correction and CLAHE
package algorithms

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	// backgroundKernel is the blur size used to estimate the illumination field.
	backgroundKernel = 101

	// claheTiles is the CLAHE grid size in both directions.
	claheTiles = 8
)

// Normalize stretches every channel linearly so its minimum maps to 0 and its maximum to 255.
func Normalize(src gocv.Mat) (gocv.Mat, error) {
	const op = "normalize"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	if src.Channels() == 1 {
		return normalizePlane(op, src)
	}

	planes := gocv.Split(src)
	defer closeAll(planes)

	scaled := make([]gocv.Mat, 0, len(planes))
	defer func() { closeAll(scaled) }()

	for _, plane := range planes {
		n, err := normalizePlane(op, plane)
		if err != nil {
			return gocv.NewMat(), err
		}
		scaled = append(scaled, n)
	}

	dst := gocv.NewMat()
	err := gocv.Merge(scaled, &dst)
	return finish(op, dst, err)
}

func normalizePlane(op string, plane gocv.Mat) (gocv.Mat, error) {
	dst := gocv.NewMat()
	err := gocv.Normalize(plane, &dst, 0, 255, gocv.NormMinMax)
	return finish(op, dst, err)
}

// BackgroundCorrection flattens uneven lighting. The illumination field is a large
// Gaussian blur of the image; the image is divided by it and rescaled by the global mean.
func BackgroundCorrection(src gocv.Mat) (gocv.Mat, error) {
	const op = "background correction"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	mean := globalMean(src)

	srcF := gocv.NewMat()
	defer srcF.Close()
	if err := src.ConvertTo(&srcF, gocv.MatTypeCV32F); err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}
	if srcF.Empty() {
		return gocv.NewMat(), imagingErrorf(op, "float conversion failed")
	}

	field := gocv.NewMat()
	defer field.Close()
	ksize := image.Pt(backgroundKernel, backgroundKernel)
	if err := gocv.GaussianBlur(srcF, &field, ksize, 0, 0, gocv.BorderDefault); err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}

	// Offset every channel of both terms so black pixels never divide by zero.
	ones := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 1, 1, 1), srcF.Rows(), srcF.Cols(), srcF.Type())
	defer ones.Close()

	num := gocv.NewMat()
	defer num.Close()
	if err := gocv.Add(srcF, ones, &num); err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}
	den := gocv.NewMat()
	defer den.Close()
	if err := gocv.Add(field, ones, &den); err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}

	ratio := gocv.NewMat()
	defer ratio.Close()
	if err := gocv.Divide(num, den, &ratio); err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}

	dst := gocv.NewMat()
	err := ratio.ConvertToWithParams(&dst, gocv.MatTypeCV8U, float32(mean), 0)
	return finish(op, dst, err)
}

// globalMean averages the per-channel means of src.
func globalMean(src gocv.Mat) float64 {
	s := src.Mean()
	vals := []float64{s.Val1, s.Val2, s.Val3, s.Val4}
	channels := src.Channels()
	if channels > len(vals) {
		channels = len(vals)
	}

	sum := 0.0
	for i := 0; i < channels; i++ {
		sum += vals[i]
	}
	return sum / float64(channels)
}

// CLAHE applies contrast-limited adaptive histogram equalisation on an 8x8 tile grid.
// Colour input is equalised on the lightness plane of Lab and returned as BGR.
func CLAHE(src gocv.Mat, clipLimit float64) (gocv.Mat, error) {
	const op = "clahe"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Pt(claheTiles, claheTiles))
	defer clahe.Close()

	if src.Channels() == 1 {
		dst := gocv.NewMat()
		err := clahe.Apply(src, &dst)
		return finish(op, dst, err)
	}

	bgr, err := ToBGR(src)
	if err != nil {
		return gocv.NewMat(), imagingError(op, err)
	}
	defer bgr.Close()

	lab, err := convert(op, bgr, gocv.ColorBGRToLab)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer lab.Close()

	planes := gocv.Split(lab)
	defer func() { closeAll(planes) }()
	if len(planes) != 3 {
		return gocv.NewMat(), imagingErrorf(op, "split returned %d planes", len(planes))
	}

	lightness := gocv.NewMat()
	err = clahe.Apply(planes[0], &lightness)
	lightness, err = finish(op, lightness, err)
	if err != nil {
		return gocv.NewMat(), err
	}
	planes[0].Close()
	planes[0] = lightness

	merged := gocv.NewMat()
	err = gocv.Merge(planes, &merged)
	merged, err = finish(op, merged, err)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer merged.Close()

	return convert(op, merged, gocv.ColorLabToBGR)
}
