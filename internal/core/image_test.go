package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestImageDataLifecycle(t *testing.T) {
	data := NewImageData()
	defer data.Close()

	assert.False(t, data.HasImage())
	original := data.Original()
	assert.True(t, original.Empty())

	img := gradientImage(t, 3)
	defer img.Close()
	require.NoError(t, data.SetOriginal(img, "/tmp/parts/Tray.PNG"))

	assert.True(t, data.HasImage())
	assert.Equal(t, "/tmp/parts/Tray.PNG", data.Source())
	meta := data.Metadata()
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, 48, meta.Height)
	assert.Equal(t, 3, meta.Channels)
	assert.Equal(t, "png", meta.Format)

	gray := gocv.NewMat()
	defer gray.Close()
	require.NoError(t, gocv.CvtColor(img, &gray, gocv.ColorBGRToGray))
	require.NoError(t, data.SetProcessed(gray, Measurement{Detected: true, Area: 12}))

	processed := data.Processed()
	assert.Equal(t, 1, processed.Channels())
	processed.Close()
	assert.True(t, data.Measurement().Detected)

	require.NoError(t, data.ResetToOriginal())
	processed = data.Processed()
	assert.Equal(t, 3, processed.Channels())
	processed.Close()
	assert.False(t, data.Measurement().Detected)

	data.Close()
	assert.False(t, data.HasImage())
	assert.Error(t, data.ResetToOriginal())
}

func TestImageDataRejectsInvalid(t *testing.T) {
	data := NewImageData()
	defer data.Close()

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, data.SetOriginal(empty, "x.png"))

	img := gradientImage(t, 1)
	defer img.Close()
	assert.Error(t, data.SetProcessed(img, Measurement{}))
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "jpg", formatOf("a/b/c.JPG"))
	assert.Equal(t, "unknown", formatOf("Webcam Local"))
	assert.Equal(t, "unknown", formatOf(""))
}
