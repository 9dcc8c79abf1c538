package algorithms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// newMat builds a detached Mat from raw interleaved bytes.
func newMat(t *testing.T, rows, cols int, mt gocv.MatType, data []byte) gocv.Mat {
	t.Helper()
	m, err := gocv.NewMatFromBytes(rows, cols, mt, data)
	require.NoError(t, err)
	defer m.Close()
	return m.Clone()
}

func filled(t *testing.T, rows, cols, channels int, value byte) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*channels)
	for i := range data {
		data[i] = value
	}
	return newMat(t, rows, cols, matType(channels), data)
}

func matType(channels int) gocv.MatType {
	switch channels {
	case 3:
		return gocv.MatTypeCV8UC3
	case 4:
		return gocv.MatTypeCV8UC4
	}
	return gocv.MatTypeCV8UC1
}

// gradient produces a smooth image whose channels vary along different axes.
func gradient(t *testing.T, rows, cols, channels int) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*channels)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < channels; c++ {
				var v int
				switch c {
				case 0:
					v = 40 + x*160/cols
				case 1:
					v = 40 + y*160/rows
				default:
					v = 40 + (x+y)*80/(rows+cols)
				}
				data[(y*cols+x)*channels+c] = byte(v)
			}
		}
	}
	return newMat(t, rows, cols, matType(channels), data)
}

// square draws a white size x size block at (x0, y0) on a black single-channel image.
func square(t *testing.T, rows, cols, x0, y0, size int) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols)
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			data[y*cols+x] = 255
		}
	}
	return newMat(t, rows, cols, gocv.MatTypeCV8UC1, data)
}

func requireSameShape(t *testing.T, want, got gocv.Mat) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	require.Equal(t, want.Channels(), got.Channels())
}

// meanAbsDiff compares two same-shaped 8-bit images inside the central window
// that excludes margin pixels on every side.
func meanAbsDiff(t *testing.T, a, b gocv.Mat, margin int) float64 {
	t.Helper()
	requireSameShape(t, a, b)
	ab, bb := a.ToBytes(), b.ToBytes()
	channels, cols := a.Channels(), a.Cols()

	sum, n := 0.0, 0
	for y := margin; y < a.Rows()-margin; y++ {
		for x := margin; x < cols-margin; x++ {
			for c := 0; c < channels; c++ {
				i := (y*cols+x)*channels + c
				sum += math.Abs(float64(ab[i]) - float64(bb[i]))
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func channelRange(m gocv.Mat, channel int) (lo, hi byte) {
	data := m.ToBytes()
	channels := m.Channels()
	lo, hi = 255, 0
	for i := channel; i < len(data); i += channels {
		if data[i] < lo {
			lo = data[i]
		}
		if data[i] > hi {
			hi = data[i]
		}
	}
	return lo, hi
}
