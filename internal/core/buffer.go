// Raw image buffers and preview thumbnails
package core

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// Frame is an 8-bit image as row-major interleaved bytes. Channel order is
// BGR(A) for colour frames, matching gocv.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// NewFrame validates that data holds exactly width*height*channels bytes.
func NewFrame(width, height, channels int, data []byte) (Frame, error) {
	if width <= 0 || height <= 0 {
		return Frame{}, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if channels != 1 && channels != 3 && channels != 4 {
		return Frame{}, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if want := width * height * channels; len(data) != want {
		return Frame{}, fmt.Errorf("frame data has %d bytes, want %d", len(data), want)
	}
	return Frame{Width: width, Height: height, Channels: channels, Data: data}, nil
}

// FrameFromMat copies an 8-bit Mat into a Frame.
func FrameFromMat(m gocv.Mat) (Frame, error) {
	if m.Empty() {
		return Frame{}, fmt.Errorf("empty mat")
	}
	switch m.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return Frame{}, fmt.Errorf("unsupported mat type %v", m.Type())
	}

	src := m
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}
	return NewFrame(m.Cols(), m.Rows(), m.Channels(), src.ToBytes())
}

// ToMat copies the frame into a new Mat owned by the caller.
func (f Frame) ToMat() (gocv.Mat, error) {
	if _, err := NewFrame(f.Width, f.Height, f.Channels, f.Data); err != nil {
		return gocv.NewMat(), err
	}

	mt := gocv.MatTypeCV8UC1
	switch f.Channels {
	case 3:
		mt = gocv.MatTypeCV8UC3
	case 4:
		mt = gocv.MatTypeCV8UC4
	}

	wrapped, err := gocv.NewMatFromBytes(f.Height, f.Width, mt, f.Data)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer wrapped.Close()
	return wrapped.Clone(), nil
}

// Pixel returns the channel values at (x, y).
func (f Frame) Pixel(x, y int) ([]byte, bool) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return nil, false
	}
	i := (y*f.Width + x) * f.Channels
	return f.Data[i : i+f.Channels], true
}

// Thumbnail converts m to an image.Image scaled to fit within maxW x maxH,
// preserving aspect ratio. Images already small enough are not enlarged.
func Thumbnail(m gocv.Mat, maxW, maxH int) (image.Image, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat: %w", err)
	}
	if maxW <= 0 || maxH <= 0 {
		return img, nil
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos), nil
}
