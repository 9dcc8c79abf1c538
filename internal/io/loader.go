// Image loading and saving
package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrUnsupportedFormat is returned for file extensions outside SupportedExtensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// SupportedExtensions lists the file extensions accepted for loading and saving.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	if logger == nil {
		logger = discard()
	}
	return &ImageLoader{logger: logger}
}

// LoadImage reads a colour (3-channel BGR) image.
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	return il.load(path, gocv.IMReadColor)
}

// LoadImageGrayscale reads a single-channel image.
func (il *ImageLoader) LoadImageGrayscale(path string) (gocv.Mat, error) {
	return il.load(path, gocv.IMReadGrayScale)
}

func (il *ImageLoader) load(path string, flags gocv.IMReadFlag) (gocv.Mat, error) {
	log := il.logger.WithField("filepath", path)
	log.Debug("Loading image")

	if !IsSupported(path) {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	mat := gocv.IMRead(path, flags)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("failed to load image: %s", path)
	}

	log.WithFields(logrus.Fields{
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")
	return mat, nil
}

// SaveImage writes mat to path; the extension selects the encoder.
func (il *ImageLoader) SaveImage(mat gocv.Mat, path string) error {
	log := il.logger.WithField("filepath", path)
	log.Debug("Saving image")

	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}
	if !IsSupported(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	log.WithFields(logrus.Fields{
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image saved successfully")
	return nil
}

// IsSupported reports whether path has a supported image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedExtensions {
		if ext == format {
			return true
		}
	}
	return false
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}
