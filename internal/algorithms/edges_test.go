package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestSharpenKeepsFlatImage(t *testing.T) {
	src := filled(t, 12, 12, 3, 77)
	defer src.Close()

	dst, err := Sharpen(src)
	require.NoError(t, err)
	defer dst.Close()

	requireSameShape(t, src, dst)
	assert.Equal(t, src.Type(), dst.Type())
	assert.Equal(t, src.ToBytes(), dst.ToBytes())
}

func TestLaplacian(t *testing.T) {
	flat := filled(t, 20, 20, 1, 100)
	defer flat.Close()

	dst, err := Laplacian(flat)
	require.NoError(t, err)
	defer dst.Close()
	assert.Equal(t, gocv.MatTypeCV8UC1, dst.Type())
	assert.Equal(t, 0, gocv.CountNonZero(dst))

	sq := square(t, 40, 40, 10, 10, 20)
	defer sq.Close()
	edges, err := Laplacian(sq)
	require.NoError(t, err)
	defer edges.Close()
	assert.Positive(t, gocv.CountNonZero(edges))
}

func TestCannyProducesBinaryMap(t *testing.T) {
	src := square(t, 60, 60, 20, 20, 20)
	defer src.Close()

	edges, err := Canny(src, 50, 150)
	require.NoError(t, err)
	defer edges.Close()

	assert.Equal(t, 1, edges.Channels())
	assert.Positive(t, gocv.CountNonZero(edges))
	for _, v := range edges.ToBytes() {
		if v != 0 && v != 255 {
			t.Fatalf("non-binary edge value %d", v)
		}
	}
}

func TestCannyAcceptsBGRA(t *testing.T) {
	src := gradient(t, 30, 30, 4)
	defer src.Close()

	edges, err := Canny(src, 10, 30)
	require.NoError(t, err)
	defer edges.Close()
	assert.Equal(t, 1, edges.Channels())
}

func TestCannyReportsOpenCVFailure(t *testing.T) {
	// Canny accepts 8-bit input only.
	src := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV16UC1)
	defer src.Close()

	dst, err := Canny(src, 50, 150)
	defer dst.Close()

	require.Error(t, err)
	assert.True(t, IsImagingError(err))
	assert.NotErrorIs(t, err, ErrEmptyResult)
	assert.True(t, dst.Empty())
}
