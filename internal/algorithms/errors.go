// Error types shared by the filter primitives
package algorithms

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyImage is returned when a primitive receives an empty Mat.
	ErrEmptyImage = errors.New("input image is empty")

	// ErrEmptyResult is returned when OpenCV produced no output for a valid call.
	ErrEmptyResult = errors.New("operation produced an empty image")
)

// ImagingError reports a numeric operation that could not be executed.
// It aborts the pipeline run that triggered it.
type ImagingError struct {
	Op  string
	Err error
}

func (e *ImagingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ImagingError) Unwrap() error {
	return e.Err
}

func imagingError(op string, err error) error {
	return &ImagingError{Op: op, Err: err}
}

func imagingErrorf(op, format string, args ...interface{}) error {
	return &ImagingError{Op: op, Err: fmt.Errorf(format, args...)}
}

// IsImagingError reports whether err carries an ImagingError.
func IsImagingError(err error) bool {
	var ie *ImagingError
	return errors.As(err, &ie)
}

// checkInput validates the Mat every primitive accepts.
func checkInput(op string, src gocv.Mat) error {
	if src.Empty() {
		return imagingError(op, ErrEmptyImage)
	}
	if src.Cols() <= 0 || src.Rows() <= 0 {
		return imagingErrorf(op, "invalid dimensions: %dx%d", src.Cols(), src.Rows())
	}
	switch src.Channels() {
	case 1, 3, 4:
		return nil
	}
	return imagingErrorf(op, "unsupported channel count: %d", src.Channels())
}

// result closes dst and returns an ImagingError when OpenCV left it empty.
func result(op string, dst gocv.Mat) (gocv.Mat, error) {
	if dst.Empty() {
		dst.Close()
		return gocv.NewMat(), imagingError(op, ErrEmptyResult)
	}
	return dst, nil
}

// finish wraps the error returned by the OpenCV call that filled dst, then checks dst.
func finish(op string, dst gocv.Mat, err error) (gocv.Mat, error) {
	if err != nil {
		dst.Close()
		return gocv.NewMat(), imagingError(op, err)
	}
	return result(op, dst)
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
