package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func grayFrom(t *testing.T, rows, cols int, pixel func(x, y int) byte) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			data[y*cols+x] = pixel(x, y)
		}
	}
	m, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data)
	require.NoError(t, err)
	defer m.Close()
	return m.Clone()
}

func flat(t *testing.T, v byte) gocv.Mat {
	return grayFrom(t, 32, 32, func(int, int) byte { return v })
}

func checker(t *testing.T) gocv.Mat {
	return grayFrom(t, 32, 32, func(x, y int) byte {
		if (x/4+y/4)%2 == 0 {
			return 0
		}
		return 200
	})
}

func TestQualityOfFlatImage(t *testing.T) {
	img := flat(t, 100)
	defer img.Close()

	q, err := NewEvaluator().Quality(img)
	require.NoError(t, err)
	assert.InDelta(t, 0, q.Contrast, 1e-9)
	assert.InDelta(t, 0, q.Sharpness, 1e-9)
	assert.Equal(t, 0.0, q.SNR)
}

func TestQualityOfChecker(t *testing.T) {
	img := checker(t)
	defer img.Close()

	q, err := NewEvaluator().Quality(img)
	require.NoError(t, err)
	// Half the pixels at 0, half at 200.
	assert.InDelta(t, 100, q.Contrast, 1)
	assert.InDelta(t, 1, q.SNR, 0.02)
	assert.Positive(t, q.Sharpness)
}

func TestQualityAcceptsColour(t *testing.T) {
	gray := checker(t)
	defer gray.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	require.NoError(t, gocv.CvtColor(gray, &bgr, gocv.ColorGrayToBGR))

	q, err := NewEvaluator().Quality(bgr)
	require.NoError(t, err)
	assert.InDelta(t, 100, q.Contrast, 1)
}

func TestComparisonMetrics(t *testing.T) {
	a := flat(t, 100)
	defer a.Close()
	b := flat(t, 110)
	defer b.Close()

	e := NewEvaluator()

	mse, err := e.Calculate("mse", a, b)
	require.NoError(t, err)
	assert.InDelta(t, 100, mse, 1e-6)

	same, err := e.Calculate("mse", a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, same)

	psnr, err := e.Calculate("psnr", a, a)
	require.NoError(t, err)
	assert.Equal(t, 100.0, psnr)

	psnr, err = e.Calculate("psnr", a, b)
	require.NoError(t, err)
	assert.InDelta(t, 28.13, psnr, 0.1)
}

func TestMSEAveragesSquaredDifferences(t *testing.T) {
	pattern := checker(t)
	defer pattern.Close()
	black := flat(t, 0)
	defer black.Close()

	// Half the pixels differ by 200, the rest by 0.
	mse, err := NewMSE().Calculate(black, pattern)
	require.NoError(t, err)
	assert.InDelta(t, 20000, mse, 1e-6)

	bgr := gocv.NewMat()
	defer bgr.Close()
	require.NoError(t, gocv.CvtColor(pattern, &bgr, gocv.ColorGrayToBGR))

	colour, err := NewMSE().Calculate(black, bgr)
	require.NoError(t, err)
	assert.InDelta(t, mse, colour, 1e-6)
}

func TestComparisonRejectsSizeMismatch(t *testing.T) {
	a := flat(t, 1)
	defer a.Close()
	b := grayFrom(t, 16, 16, func(int, int) byte { return 1 })
	defer b.Close()

	_, err := NewEvaluator().Calculate("psnr", a, b)
	assert.Error(t, err)

	all := NewEvaluator().CalculateAll(a, b)
	assert.NotContains(t, all, "psnr")
	assert.NotContains(t, all, "mse")
	assert.Contains(t, all, "contrast")
}

func TestUnknownMetric(t *testing.T) {
	a := flat(t, 1)
	defer a.Close()
	_, err := NewEvaluator().Calculate("ssim", a, a)
	assert.Error(t, err)
}

func TestEmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := NewEvaluator().Quality(empty)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestGenerateReport(t *testing.T) {
	a := checker(t)
	defer a.Close()

	report := NewEvaluator().GenerateReport(a, a)
	assert.Equal(t, 100.0, report.Metrics["psnr"])
	assert.Equal(t, 0.0, report.Metrics["mse"])
	assert.Contains(t, []string{"excellent", "good", "fair", "poor"}, report.Level)
	assert.NotEmpty(t, report.Timestamp)
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)

	s = Summarize([]Sample{
		{Detected: true, Area: 100, Perimeter: 40},
		{Detected: false},
		{Detected: true, Area: 300, Perimeter: 80},
		{Detected: false},
	})
	assert.Equal(t, 4, s.Frames)
	assert.Equal(t, 2, s.Detections)
	assert.InDelta(t, 0.5, s.DetectionRate, 1e-9)
	assert.InDelta(t, 200, s.MeanArea, 1e-9)
	assert.InDelta(t, 141.42, s.StdDevArea, 0.01)
	assert.Equal(t, 100.0, s.MinArea)
	assert.Equal(t, 300.0, s.MaxArea)
	assert.InDelta(t, 60, s.MeanPerimeter, 1e-9)

	one := Summarize([]Sample{{Detected: true, Area: 50, Perimeter: 30}})
	assert.Equal(t, 50.0, one.MeanArea)
	assert.Equal(t, 0.0, one.StdDevArea)
}
