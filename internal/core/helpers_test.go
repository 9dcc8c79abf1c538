package core

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func matFrom(t *testing.T, rows, cols, channels int, pixel func(x, y, c int) byte) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*channels)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < channels; c++ {
				data[(y*cols+x)*channels+c] = pixel(x, y, c)
			}
		}
	}
	f, err := NewFrame(cols, rows, channels, data)
	require.NoError(t, err)
	m, err := f.ToMat()
	require.NoError(t, err)
	return m
}

// squareImage is a black single-channel image with one white filled square.
func squareImage(t *testing.T, size int, r image.Rectangle) gocv.Mat {
	t.Helper()
	return matFrom(t, size, size, 1, func(x, y, _ int) byte {
		if image.Pt(x, y).In(r) {
			return 255
		}
		return 0
	})
}

// sceneImage imitates a photograph: a textured background with a bright disc-like blob.
func sceneImage(t *testing.T) gocv.Mat {
	t.Helper()
	return matFrom(t, 120, 160, 3, func(x, y, c int) byte {
		v := 30 + (x*7+y*3+c*11)%20
		dx, dy := x-80, y-60
		if dx*dx+dy*dy < 30*30 {
			v = 200 + (x+y)%20
		}
		return byte(v)
	})
}

func gradientImage(t *testing.T, channels int) gocv.Mat {
	t.Helper()
	return matFrom(t, 48, 64, channels, func(x, y, c int) byte {
		return byte(20 + x*2 + y + c*10)
	})
}
