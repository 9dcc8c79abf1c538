package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestGrayscaleAlwaysSingleChannel(t *testing.T) {
	for _, channels := range []int{1, 3, 4} {
		src := gradient(t, 32, 48, channels)
		defer src.Close()

		gray, err := Grayscale(src)
		require.NoError(t, err, "channels=%d", channels)
		assert.Equal(t, 1, gray.Channels(), "channels=%d", channels)
		assert.Equal(t, src.Rows(), gray.Rows())
		assert.Equal(t, src.Cols(), gray.Cols())
		gray.Close()
	}
}

func TestHSVAlwaysThreeChannels(t *testing.T) {
	for _, channels := range []int{1, 3, 4} {
		src := gradient(t, 32, 48, channels)
		defer src.Close()

		hsv, err := HSV(src)
		require.NoError(t, err, "channels=%d", channels)
		assert.Equal(t, 3, hsv.Channels(), "channels=%d", channels)
		hsv.Close()
	}
}

func TestGrayscaleDoesNotMutateInput(t *testing.T) {
	src := gradient(t, 16, 16, 3)
	defer src.Close()
	before := src.ToBytes()

	gray, err := Grayscale(src)
	require.NoError(t, err)
	defer gray.Close()

	assert.Equal(t, before, src.ToBytes())
}

func TestValueChannel(t *testing.T) {
	src := filled(t, 8, 8, 3, 200)
	defer src.Close()

	hsv, err := HSV(src)
	require.NoError(t, err)
	defer hsv.Close()

	v, err := ValueChannel(hsv)
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, 1, v.Channels())
	lo, hi := channelRange(v, 0)
	assert.Equal(t, byte(200), lo)
	assert.Equal(t, byte(200), hi)
}

func TestColorRejectsEmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := Grayscale(empty)
	require.Error(t, err)
	assert.True(t, IsImagingError(err))
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = HSV(empty)
	assert.True(t, IsImagingError(err))
}
