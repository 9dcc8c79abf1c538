// Affine transforms: translation and rotation through a shared warp
package algorithms

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// RotateParams fixes the rotation centre and scale. Use DefaultRotateParams for the
// image midpoint at unit scale.
type RotateParams struct {
	CenterX float64
	CenterY float64
	Scale   float64
}

// DefaultRotateParams returns the midpoint of src with scale 1.
func DefaultRotateParams(src gocv.Mat) RotateParams {
	return RotateParams{
		CenterX: float64(src.Cols()) / 2,
		CenterY: float64(src.Rows()) / 2,
		Scale:   1.0,
	}
}

// Translate shifts src by (tx, ty) pixels. Uncovered pixels are black.
func Translate(src gocv.Mat, tx, ty float64) (gocv.Mat, error) {
	const op = "translate"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}
	return warp(op, src, [6]float64{
		1, 0, tx,
		0, 1, ty,
	})
}

// Rotate turns src by angle degrees (positive is counter-clockwise) around p's centre.
func Rotate(src gocv.Mat, angle float64, p RotateParams) (gocv.Mat, error) {
	const op = "rotate"
	if err := checkInput(op, src); err != nil {
		return gocv.NewMat(), err
	}
	if p.Scale == 0 || math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return gocv.NewMat(), imagingErrorf(op, "invalid scale %v", p.Scale)
	}
	return warp(op, src, rotationMatrix(angle, p))
}

// rotationMatrix follows the OpenCV getRotationMatrix2D layout. gocv's binding
// only takes an integer centre, so the matrix is built here.
func rotationMatrix(angle float64, p RotateParams) [6]float64 {
	rad := angle * math.Pi / 180
	alpha := p.Scale * math.Cos(rad)
	beta := p.Scale * math.Sin(rad)
	return [6]float64{
		alpha, beta, (1-alpha)*p.CenterX - beta*p.CenterY,
		-beta, alpha, beta*p.CenterX + (1-alpha)*p.CenterY,
	}
}

// warp applies the 2x3 matrix m with linear interpolation and a constant black border.
func warp(op string, src gocv.Mat, m [6]float64) (gocv.Mat, error) {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return gocv.NewMat(), imagingErrorf(op, "non-finite transform coefficient")
		}
	}

	matrix := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer matrix.Close()
	for i, v := range m {
		matrix.SetDoubleAt(i/3, i%3, v)
	}

	dst := gocv.NewMat()
	size := image.Pt(src.Cols(), src.Rows())
	err := gocv.WarpAffineWithParams(src, &dst, matrix, size, gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	return finish(op, dst, err)
}
