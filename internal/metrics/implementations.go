// Concrete implementations of quality metrics
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned for metrics over an empty Mat.
var ErrEmptyImage = errors.New("empty image")

// PSNR is the peak signal-to-noise ratio between original and processed, in dB.
type PSNR struct{}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	gray1, gray2, release, err := grayPair(original, processed)
	if err != nil {
		return 0, err
	}
	defer release()

	psnr := gocv.PSNR(gray1, gray2)
	// OpenCV reports ~361 dB for identical images.
	if math.IsInf(psnr, 1) || math.IsNaN(psnr) || psnr > 100 {
		return 100.0, nil
	}
	return psnr, nil
}

func (p *PSNR) GetName() string              { return "PSNR" }
func (p *PSNR) GetDescription() string       { return "Peak Signal-to-Noise Ratio" }
func (p *PSNR) GetRange() (float64, float64) { return 0, 100 }
func (p *PSNR) IsHigherBetter() bool         { return true }

// MSE is the mean squared grey-level difference between original and processed.
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	gray1, gray2, release, err := grayPair(original, processed)
	if err != nil {
		return 0, err
	}
	defer release()

	if gray1.Type() != gray2.Type() {
		return 0, fmt.Errorf("mse: type mismatch: %v vs %v", gray1.Type(), gray2.Type())
	}
	n := float64(gray1.Rows() * gray1.Cols())
	l2 := gocv.NormWithMats(gray1, gray2, gocv.NormL2)
	return l2 * l2 / n, nil
}

func (m *MSE) GetName() string              { return "MSE" }
func (m *MSE) GetDescription() string       { return "Mean Squared Error" }
func (m *MSE) GetRange() (float64, float64) { return 0, 65025 }
func (m *MSE) IsHigherBetter() bool         { return false }

// Contrast is the grey-level standard deviation of the processed image.
type Contrast struct{}

func NewContrast() *Contrast { return &Contrast{} }

func (c *Contrast) Calculate(_, processed gocv.Mat) (float64, error) {
	_, stddev, err := MeanStdDev(processed)
	return stddev, err
}

func (c *Contrast) GetName() string              { return "Contrast" }
func (c *Contrast) GetDescription() string       { return "Grey-level standard deviation" }
func (c *Contrast) GetRange() (float64, float64) { return 0, 128 }
func (c *Contrast) IsHigherBetter() bool         { return true }

// Sharpness is the variance of the Laplacian of the processed image.
type Sharpness struct{}

func NewSharpness() *Sharpness { return &Sharpness{} }

func (s *Sharpness) Calculate(_, processed gocv.Mat) (float64, error) {
	return LaplacianVariance(processed)
}

func (s *Sharpness) GetName() string              { return "Sharpness" }
func (s *Sharpness) GetDescription() string       { return "Variance of the Laplacian" }
func (s *Sharpness) GetRange() (float64, float64) { return 0, 2000 }
func (s *Sharpness) IsHigherBetter() bool         { return true }

// SNR is mean over standard deviation of the processed image.
type SNR struct{}

func NewSNR() *SNR { return &SNR{} }

func (s *SNR) Calculate(_, processed gocv.Mat) (float64, error) {
	mean, stddev, err := MeanStdDev(processed)
	if err != nil {
		return 0, err
	}
	return snr(mean, stddev), nil
}

func (s *SNR) GetName() string              { return "SNR" }
func (s *SNR) GetDescription() string       { return "Mean to standard deviation ratio" }
func (s *SNR) GetRange() (float64, float64) { return 0, 20 }
func (s *SNR) IsHigherBetter() bool         { return true }

// snr is zero for a flat image.
func snr(mean, stddev float64) float64 {
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// MeanStdDev returns the grey-level mean and standard deviation of img.
func MeanStdDev(img gocv.Mat) (mean, stddev float64, err error) {
	gray, release, err := grayscale(img)
	if err != nil {
		return 0, 0, err
	}
	defer release()

	m := gocv.NewMat()
	defer m.Close()
	s := gocv.NewMat()
	defer s.Close()

	if err := gocv.MeanStdDev(gray, &m, &s); err != nil {
		return 0, 0, fmt.Errorf("mean/stddev: %w", err)
	}
	if m.Empty() || s.Empty() {
		return 0, 0, fmt.Errorf("mean/stddev: no result")
	}
	return m.GetDoubleAt(0, 0), s.GetDoubleAt(0, 0), nil
}

// LaplacianVariance measures focus: the variance of the 64-bit Laplacian response.
func LaplacianVariance(img gocv.Mat) (float64, error) {
	gray, release, err := grayscale(img)
	if err != nil {
		return 0, err
	}
	defer release()

	lap := gocv.NewMat()
	defer lap.Close()
	if err := gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault); err != nil {
		return 0, fmt.Errorf("laplacian: %w", err)
	}
	if lap.Empty() {
		return 0, fmt.Errorf("laplacian: no result")
	}

	m := gocv.NewMat()
	defer m.Close()
	s := gocv.NewMat()
	defer s.Close()

	if err := gocv.MeanStdDev(lap, &m, &s); err != nil {
		return 0, fmt.Errorf("laplacian variance: %w", err)
	}
	if s.Empty() {
		return 0, fmt.Errorf("laplacian variance: no result")
	}
	sd := s.GetDoubleAt(0, 0)
	return sd * sd, nil
}

// grayscale returns img itself for single-channel input; release frees any copy.
func grayscale(img gocv.Mat) (gocv.Mat, func(), error) {
	if img.Empty() {
		return img, func() {}, ErrEmptyImage
	}

	var code gocv.ColorConversionCode
	switch img.Channels() {
	case 1:
		return img, func() {}, nil
	case 3:
		code = gocv.ColorBGRToGray
	case 4:
		code = gocv.ColorBGRAToGray
	default:
		return img, func() {}, fmt.Errorf("unsupported channel count: %d", img.Channels())
	}

	gray := gocv.NewMat()
	if err := gocv.CvtColor(img, &gray, code); err != nil {
		gray.Close()
		return img, func() {}, err
	}
	return gray, func() { gray.Close() }, nil
}

// grayPair converts both images to grey and checks they have the same size.
func grayPair(original, processed gocv.Mat) (gocv.Mat, gocv.Mat, func(), error) {
	noop := func() {}
	if original.Empty() || processed.Empty() {
		return original, processed, noop, ErrEmptyImage
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return original, processed, noop, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			original.Cols(), original.Rows(), processed.Cols(), processed.Rows())
	}

	gray1, release1, err := grayscale(original)
	if err != nil {
		return original, processed, noop, err
	}
	gray2, release2, err := grayscale(processed)
	if err != nil {
		release1()
		return original, processed, noop, err
	}
	return gray1, gray2, func() { release1(); release2() }, nil
}
