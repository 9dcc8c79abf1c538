package contour

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"contour-inspector/internal/algorithms"
)

func blank(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	return gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
}

func fillRect(m *gocv.Mat, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetUCharAt(y, x, 255)
		}
	}
}

// zeroed returns a single-channel black image; NewMatWithSize does not clear memory.
func zeroed(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	m := blank(t, rows, cols)
	m.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return m
}

func TestMeasureSingleSquare(t *testing.T) {
	img := zeroed(t, 100, 100)
	defer img.Close()
	fillRect(&img, image.Rect(40, 40, 60, 60))

	e := NewEngine(DefaultStyle())
	metrics, display, err := e.Measure(img, 100)
	require.NoError(t, err)
	defer display.Close()

	require.Len(t, metrics, 1)
	m := metrics[0]
	// The traced boundary runs through pixel centres, so a 20x20 block measures 19x19.
	assert.InDelta(t, 400, m.Area, 50)
	assert.InDelta(t, 80, m.Perimeter, 8)
	assert.Equal(t, 40, m.X())
	assert.Equal(t, 40, m.Y())
	assert.Equal(t, 20, m.Width())
	assert.Equal(t, 20, m.Height())

	assert.Equal(t, 3, display.Channels())
	assert.Equal(t, img.Rows(), display.Rows())
	assert.Equal(t, img.Cols(), display.Cols())
}

func TestMeasureFiltersByMinArea(t *testing.T) {
	img := zeroed(t, 100, 100)
	defer img.Close()
	fillRect(&img, image.Rect(40, 40, 60, 60))

	e := NewEngine(DefaultStyle())
	metrics, display, err := e.Measure(img, 500)
	require.NoError(t, err)
	defer display.Close()

	assert.Empty(t, metrics)
	assert.Equal(t, 3, display.Channels())

	// Nothing survived, so the display is a plain colour copy of the input.
	gray := gocv.NewMat()
	defer gray.Close()
	require.NoError(t, gocv.CvtColor(display, &gray, gocv.ColorBGRToGray))
	assert.Equal(t, img.ToBytes(), gray.ToBytes())
}

func TestMeasureAreasExceedThreshold(t *testing.T) {
	img := zeroed(t, 200, 200)
	defer img.Close()
	fillRect(&img, image.Rect(10, 10, 20, 20))     // ~81
	fillRect(&img, image.Rect(40, 40, 70, 70))     // ~841
	fillRect(&img, image.Rect(100, 100, 160, 140)) // ~2301
	fillRect(&img, image.Rect(170, 10, 190, 30))   // ~361

	e := NewEngine(DefaultStyle())
	for _, minArea := range []float64{0, 50, 100, 400, 1000, 5000} {
		metrics, display, err := e.Measure(img, minArea)
		require.NoError(t, err)
		display.Close()

		for _, m := range metrics {
			assert.Greater(t, m.Area, minArea)
		}

		best, ok := Largest(metrics)
		assert.Equal(t, len(metrics) > 0, ok)
		for _, m := range metrics {
			assert.GreaterOrEqual(t, best.Area, m.Area)
		}
	}
}

func TestMeasureDrawsOutlines(t *testing.T) {
	img := zeroed(t, 60, 60)
	defer img.Close()
	fillRect(&img, image.Rect(20, 20, 40, 40))

	e := NewEngine(DefaultStyle())
	metrics, display, err := e.Measure(img, 10)
	require.NoError(t, err)
	defer display.Close()
	require.Len(t, metrics, 1)

	// BGR green on the boundary.
	v := display.GetVecbAt(20, 20)
	assert.Equal(t, uint8(0), v[0])
	assert.Equal(t, uint8(255), v[1])
	assert.Equal(t, uint8(0), v[2])
}

func TestDrawHighlight(t *testing.T) {
	display := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC3)
	defer display.Close()
	display.SetTo(gocv.NewScalar(0, 0, 0, 0))

	e := NewEngine(DefaultStyle())
	m := Metrics{BoundingBox: image.Rect(10, 10, 30, 30)}
	require.NoError(t, e.DrawHighlight(&display, m))

	v := display.GetVecbAt(10, 20)
	assert.Equal(t, uint8(255), v[2])
	assert.Equal(t, uint8(0), v[1])

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, e.DrawHighlight(&empty, m))
}

func TestDrawHighlightReportsDrawingFailure(t *testing.T) {
	display := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC3)
	defer display.Close()

	// OpenCV caps line thickness at 32767.
	style := DefaultStyle()
	style.HighlightThickness = 40000
	err := NewEngine(style).DrawHighlight(&display, Metrics{BoundingBox: image.Rect(10, 10, 30, 30)})

	require.Error(t, err)
	assert.True(t, algorithms.IsImagingError(err))
}

func TestMeasureRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, display, err := NewEngine(DefaultStyle()).Measure(empty, 0)
	defer display.Close()
	assert.Error(t, err)
}

func TestLargest(t *testing.T) {
	_, ok := Largest(nil)
	assert.False(t, ok)

	best, ok := Largest([]Metrics{
		{Area: 10, Index: 0},
		{Area: 30, Index: 1},
		{Area: 30, Index: 2},
		{Area: 20, Index: 3},
	})
	require.True(t, ok)
	assert.Equal(t, 30.0, best.Area)
	assert.Equal(t, 1, best.Index)
}

func TestNewEngineFillsThickness(t *testing.T) {
	e := NewEngine(Style{})
	assert.Equal(t, 2, e.Style().OutlineThickness)
	assert.Equal(t, 3, e.Style().HighlightThickness)
}
