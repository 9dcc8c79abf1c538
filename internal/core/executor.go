// Pipeline executor: folds an image through an ordered list of steps
package core

import (
	"fmt"
	"image"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"contour-inspector/internal/algorithms"
	"contour-inspector/internal/contour"
)

// Result is the outcome of ProcessWithMetadata. Numeric fields describe the
// largest detected region and are zero when Detected is false.
type Result struct {
	Image       gocv.Mat
	Area        float64
	Perimeter   float64
	Width       int
	Height      int
	Detected    bool
	BoundingBox image.Rectangle
	Candidates  int
}

// Close releases the result image.
func (r *Result) Close() error {
	return r.Image.Close()
}

// Executor runs step sequences. It keeps no per-run state and may be shared
// between goroutines working on independent images.
type Executor struct {
	logger   logrus.FieldLogger
	engine   *contour.Engine
	debugger *PipelineDebugger
}

// NewExecutor creates an executor. A nil logger discards output.
func NewExecutor(logger logrus.FieldLogger, style contour.Style) *Executor {
	if logger == nil {
		logger = NopLogger()
	}
	return &Executor{
		logger: logger,
		engine: contour.NewEngine(style),
	}
}

// WithDebugger returns a copy of e that records every step in d.
func (e *Executor) WithDebugger(d *PipelineDebugger) *Executor {
	c := *e
	c.debugger = d
	return &c
}

// NopLogger returns a logger that discards everything.
func NopLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var defaultExecutor = NewExecutor(nil, contour.DefaultStyle())

// Process runs steps over img with the default style and no logging.
func Process(img gocv.Mat, steps []Step) (gocv.Mat, error) {
	return defaultExecutor.Process(img, steps)
}

// ProcessWithMetadata runs steps over img with the default style and no logging.
func ProcessWithMetadata(img gocv.Mat, steps []Step) (Result, error) {
	return defaultExecutor.ProcessWithMetadata(img, steps)
}

// Process folds img through steps and returns the final image. A measurement
// step replaces the working image with its annotated copy and processing
// continues. img is never modified; the returned Mat is owned by the caller.
func (e *Executor) Process(img gocv.Mat, steps []Step) (gocv.Mat, error) {
	res, err := e.run(img, steps, false)
	if err != nil {
		return gocv.NewMat(), err
	}
	return res.Image, nil
}

// ProcessWithMetadata folds img through steps and stops at the first
// measurement step, returning the largest region found there.
func (e *Executor) ProcessWithMetadata(img gocv.Mat, steps []Step) (Result, error) {
	return e.run(img, steps, true)
}

func (e *Executor) run(img gocv.Mat, steps []Step, metadata bool) (Result, error) {
	log := e.logger.WithFields(logrus.Fields{
		"run_id":   uuid.NewString(),
		"steps":    len(steps),
		"metadata": metadata,
	})

	if img.Empty() {
		return Result{Image: gocv.NewMat()}, &algorithms.ImagingError{Op: "pipeline", Err: algorithms.ErrEmptyImage}
	}

	started := time.Now()
	if e.debugger != nil {
		e.debugger.LogRunStart(len(steps), sizeOf(img))
	}

	current := img.Clone()
	replace := func(next gocv.Mat) {
		current.Close()
		current = next
	}
	fail := func(i int, step Step, err error) (Result, error) {
		current.Close()
		log.WithError(err).WithFields(logrus.Fields{"step": i, "kind": step.Kind, "option": step.Option}).
			Error("PIPELINE: step failed")
		if e.debugger != nil {
			e.debugger.LogRunComplete(false, time.Since(started))
		}
		return Result{Image: gocv.NewMat()}, fmt.Errorf("step %d (%s): %w", i, step.Label(), err)
	}

	for i, step := range steps {
		stepStart := time.Now()

		if step.Kind == KindContourMeasurement {
			found, display, err := e.engine.Measure(current, step.Param1)
			if err != nil {
				display.Close()
				return fail(i, step, err)
			}
			replace(display)

			best, ok := contour.Largest(found)
			if ok {
				if err := e.engine.DrawHighlight(&current, best); err != nil {
					return fail(i, step, err)
				}
				log.WithFields(logrus.Fields{
					"step":       i,
					"candidates": len(found),
					"area":       best.Area,
					"perimeter":  best.Perimeter,
					"width":      best.Width(),
					"height":     best.Height(),
				}).Info("PIPELINE: object detected")
			} else {
				log.WithFields(logrus.Fields{"step": i, "min_area": step.Param1}).Info("PIPELINE: no object above minimum area")
			}
			e.record(i, step, true, stepStart, current)

			if metadata {
				res := Result{Image: current, Candidates: len(found)}
				if ok {
					res.Detected = true
					res.Area = best.Area
					res.Perimeter = best.Perimeter
					res.Width = best.Width()
					res.Height = best.Height()
					res.BoundingBox = best.BoundingBox
				}
				if e.debugger != nil {
					e.debugger.LogRunComplete(true, time.Since(started))
				}
				return res, nil
			}
			continue
		}

		next, handled, err := dispatch(current, step)
		if err != nil {
			return fail(i, step, err)
		}
		if !handled {
			log.WithFields(logrus.Fields{"step": i, "kind": step.Kind, "option": step.Option}).
				Debug("PIPELINE: unrecognised option, image passed through")
			e.record(i, step, false, stepStart, current)
			continue
		}
		replace(next)
		e.record(i, step, true, stepStart, current)

		log.WithFields(logrus.Fields{
			"step":     i,
			"op":       step.Label(),
			"duration": time.Since(stepStart),
			"size":     sizeOf(current),
			"channels": current.Channels(),
		}).Debug("PIPELINE: step completed")
	}

	if e.debugger != nil {
		e.debugger.LogRunComplete(true, time.Since(started))
	}
	return Result{Image: current}, nil
}

func (e *Executor) record(i int, step Step, handled bool, start time.Time, out gocv.Mat) {
	if e.debugger == nil {
		return
	}
	e.debugger.LogStep(i, step, handled, time.Since(start), sizeOf(out))
}

// dispatch applies one non-measurement step. handled is false for (kind, option)
// pairs with no operation, in which case the returned Mat is empty and unused.
func dispatch(img gocv.Mat, s Step) (out gocv.Mat, handled bool, err error) {
	switch s.Kind {
	case KindColorConvert:
		switch s.Option {
		case 1:
			out, err = algorithms.Grayscale(img)
		case 2:
			out, err = algorithms.HSV(img)
		default:
			return gocv.Mat{}, false, nil
		}

	case KindIllumination:
		switch s.Option {
		case 1:
			out, err = algorithms.Normalize(img)
		case 2:
			out, err = algorithms.BackgroundCorrection(img)
		case 3:
			out, err = algorithms.CLAHE(img, s.Param1)
		default:
			return gocv.Mat{}, false, nil
		}

	case KindNoiseReduction:
		switch s.Option {
		case 1:
			out, err = algorithms.GaussianBlur(img, roundInt(s.Param1))
		case 2:
			out, err = algorithms.MedianBlur(img, roundInt(s.Param1))
		case 3:
			out, err = algorithms.Bilateral(img, roundInt(s.Param1), s.Param2, s.Param2)
		default:
			return gocv.Mat{}, false, nil
		}

	case KindEdgeEnhancement:
		switch s.Option {
		case 1:
			out, err = algorithms.Sharpen(img)
		case 2:
			out, err = algorithms.Laplacian(img)
		case 3:
			out, err = algorithms.Canny(img, s.Param1, s.Param2)
		default:
			return gocv.Mat{}, false, nil
		}

	case KindAffine:
		switch s.Option {
		case 1:
			out, err = algorithms.Translate(img, s.Param1, s.Param2)
		case 2:
			out, err = algorithms.Rotate(img, s.Param1, algorithms.DefaultRotateParams(img))
		default:
			return gocv.Mat{}, false, nil
		}

	default:
		return gocv.Mat{}, false, nil
	}

	if err != nil {
		out.Close()
		return gocv.Mat{}, true, err
	}
	return out, true, nil
}

func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func sizeOf(m gocv.Mat) string {
	return fmt.Sprintf("%dx%d", m.Cols(), m.Rows())
}
