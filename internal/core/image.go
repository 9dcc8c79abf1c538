// Core image data structure with thread-safe operations
package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// ImageData holds the loaded image, the last pipeline output and the last
// measurement for one interactive session.
type ImageData struct {
	mu        sync.RWMutex
	original  gocv.Mat
	processed gocv.Mat
	hasImage  bool
	source    string
	metadata  ImageMetadata
	result    Measurement
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
	Format   string
}

// Measurement is a Result without its image.
type Measurement struct {
	Detected   bool
	Area       float64
	Perimeter  float64
	Width      int
	Height     int
	Candidates int
}

// MeasurementOf copies the numeric part of r.
func MeasurementOf(r Result) Measurement {
	return Measurement{
		Detected:   r.Detected,
		Area:       r.Area,
		Perimeter:  r.Perimeter,
		Width:      r.Width,
		Height:     r.Height,
		Candidates: r.Candidates,
	}
}

// NewImageData creates an empty container.
func NewImageData() *ImageData {
	return &ImageData{
		original:  gocv.NewMat(),
		processed: gocv.NewMat(),
	}
}

// SetOriginal stores a copy of mat and resets the processed image to it.
// source is a file path or camera name.
func (img *ImageData) SetOriginal(mat gocv.Mat, source string) error {
	if err := ValidateImage(mat); err != nil {
		return err
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	img.original.Close()
	img.processed.Close()

	img.original = mat.Clone()
	img.processed = mat.Clone()
	img.hasImage = true
	img.source = source
	img.result = Measurement{}
	img.metadata = ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
		Format:   formatOf(source),
	}
	return nil
}

// SetProcessed stores a copy of mat as the latest pipeline output.
func (img *ImageData) SetProcessed(mat gocv.Mat, m Measurement) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if !img.hasImage {
		return fmt.Errorf("no original image loaded")
	}
	if mat.Empty() {
		return fmt.Errorf("cannot set empty processed image")
	}

	img.processed.Close()
	img.processed = mat.Clone()
	img.result = m
	return nil
}

// Original returns a copy of the original image, or an empty Mat.
func (img *ImageData) Original() gocv.Mat {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if !img.hasImage {
		return gocv.NewMat()
	}
	return img.original.Clone()
}

// Processed returns a copy of the processed image, or an empty Mat.
func (img *ImageData) Processed() gocv.Mat {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.processed.Empty() {
		return gocv.NewMat()
	}
	return img.processed.Clone()
}

func (img *ImageData) HasImage() bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.hasImage
}

func (img *ImageData) Metadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

func (img *ImageData) Source() string {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.source
}

// Measurement returns the measurement stored with the processed image.
func (img *ImageData) Measurement() Measurement {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.result
}

// ResetToOriginal discards the processed image and measurement.
func (img *ImageData) ResetToOriginal() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if !img.hasImage {
		return fmt.Errorf("no original image available")
	}
	img.processed.Close()
	img.processed = img.original.Clone()
	img.result = Measurement{}
	return nil
}

// Close releases all resources and empties the container.
func (img *ImageData) Close() {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.original.Close()
	img.processed.Close()
	img.original = gocv.NewMat()
	img.processed = gocv.NewMat()
	img.hasImage = false
	img.source = ""
	img.metadata = ImageMetadata{}
	img.result = Measurement{}
}

func formatOf(source string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(source)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

// maxDimension rejects images that would not fit comfortably in memory
const maxDimension = 16384

// ValidateImage checks that mat is a usable pipeline input
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}
	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	switch mat.Channels() {
	case 1, 3, 4:
	default:
		return fmt.Errorf("unsupported channel count: %d", mat.Channels())
	}

	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}
	return nil
}
