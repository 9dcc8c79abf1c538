// internal/core/pipeline.go
// Interactive pipeline: an editable step list bound to the loaded image, with
// debounced preview runs
package core

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"contour-inspector/internal/metrics"
)

// RunReport is delivered after each interactive run.
type RunReport struct {
	Measurement Measurement
	Quality     metrics.QualityMetrics
	Report      metrics.QualityReport
	Duration    time.Duration
}

// Pipeline binds an editable step list to an ImageData and re-runs the steps
// whenever they change.
type Pipeline struct {
	mu        sync.RWMutex
	imageData *ImageData
	executor  *Executor
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger

	steps []Step

	// generation increases on every trigger; stale preview runs drop their output
	generation   uint64
	inFlight     int
	previewTimer *time.Timer
	previewDelay time.Duration
	realtimeMode bool

	// Callbacks run on the processing goroutine; UI code must marshal to its own thread.
	onPreviewUpdate func(preview image.Image, report RunReport)
	onError         func(error)
}

func NewPipeline(imageData *ImageData, executor *Executor, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		logger = NopLogger()
	}
	return &Pipeline{
		imageData:    imageData,
		executor:     executor,
		evaluator:    metrics.NewEvaluator(),
		logger:       logger,
		previewDelay: 200 * time.Millisecond,
		realtimeMode: true,
	}
}

// SetCallbacks registers the preview and error handlers.
func (p *Pipeline) SetCallbacks(onPreviewUpdate func(image.Image, RunReport), onError func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onPreviewUpdate = onPreviewUpdate
	p.onError = onError
}

// SetRealtimeMode enables or disables automatic runs after each edit.
func (p *Pipeline) SetRealtimeMode(enabled bool) {
	p.mu.Lock()
	p.realtimeMode = enabled
	p.mu.Unlock()
	p.logger.WithField("enabled", enabled).Debug("PIPELINE: realtime mode changed")
}

// SetPreviewDelay changes the debounce interval.
func (p *Pipeline) SetPreviewDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.previewDelay = d
}

func (p *Pipeline) AddStep(step Step) {
	p.mu.Lock()
	p.steps = append(p.steps, step)
	count := len(p.steps)
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{"step": step.Label(), "count": count}).Info("PIPELINE: step added")
	p.changed()
}

// UpdateStep replaces the step at index i.
func (p *Pipeline) UpdateStep(i int, step Step) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.steps) {
		p.mu.Unlock()
		return fmt.Errorf("step index %d out of range", i)
	}
	p.steps[i] = step
	p.mu.Unlock()

	p.changed()
	return nil
}

func (p *Pipeline) RemoveStep(i int) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.steps) {
		p.mu.Unlock()
		return fmt.Errorf("step index %d out of range", i)
	}
	p.steps = append(p.steps[:i], p.steps[i+1:]...)
	p.mu.Unlock()

	p.changed()
	return nil
}

// MoveStep moves the step at index i by delta positions.
func (p *Pipeline) MoveStep(i, delta int) error {
	p.mu.Lock()
	j := i + delta
	if i < 0 || i >= len(p.steps) || j < 0 || j >= len(p.steps) {
		p.mu.Unlock()
		return fmt.Errorf("cannot move step %d by %d", i, delta)
	}
	s := p.steps[i]
	p.steps = append(p.steps[:i], p.steps[i+1:]...)
	p.steps = append(p.steps[:j], append([]Step{s}, p.steps[j:]...)...)
	p.mu.Unlock()

	p.changed()
	return nil
}

// SetSteps replaces the whole step list, e.g. from a recipe.
func (p *Pipeline) SetSteps(steps []Step) {
	p.mu.Lock()
	p.steps = append([]Step(nil), steps...)
	p.mu.Unlock()

	p.logger.WithField("count", len(steps)).Info("PIPELINE: steps replaced")
	p.changed()
}

// Steps returns a copy of the step list.
func (p *Pipeline) Steps() []Step {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Step(nil), p.steps...)
}

// ClearSteps empties the list and restores the original image.
func (p *Pipeline) ClearSteps() {
	p.mu.Lock()
	p.steps = nil
	p.generation++
	p.mu.Unlock()

	p.logger.Info("PIPELINE: clearing all processing steps")
	if p.imageData.HasImage() {
		if err := p.imageData.ResetToOriginal(); err != nil {
			p.reportError(err)
		}
	}
}

// Trigger schedules a debounced run.
func (p *Pipeline) Trigger() {
	if !p.imageData.HasImage() {
		p.logger.Debug("PIPELINE: no image available for preview processing")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	gen := p.generation
	if p.previewTimer != nil {
		p.previewTimer.Stop()
	}
	p.previewTimer = time.AfterFunc(p.previewDelay, func() {
		p.runPreview(gen)
	})
}

func (p *Pipeline) changed() {
	p.mu.RLock()
	realtime := p.realtimeMode
	p.mu.RUnlock()
	if realtime {
		p.Trigger()
	}
}

func (p *Pipeline) runPreview(gen uint64) {
	report, preview, err := p.run(gen)

	p.mu.RLock()
	onPreview, onError := p.onPreviewUpdate, p.onError
	p.mu.RUnlock()

	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if preview != nil && onPreview != nil {
		onPreview(preview, report)
	}
}

// Run processes the original image synchronously and stores the output.
func (p *Pipeline) Run() (RunReport, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	report, _, err := p.run(gen)
	return report, err
}

func (p *Pipeline) run(gen uint64) (RunReport, image.Image, error) {
	original := p.imageData.Original()
	defer original.Close()
	if original.Empty() {
		return RunReport{}, nil, fmt.Errorf("no image loaded")
	}

	steps := p.begin()
	defer p.end()

	start := time.Now()
	res, err := p.executor.ProcessWithMetadata(original, steps)
	if err != nil {
		return RunReport{}, nil, err
	}
	defer res.Close()

	report := RunReport{
		Measurement: MeasurementOf(res),
		Report:      p.evaluator.GenerateReport(original, res.Image),
		Duration:    time.Since(start),
	}
	if q, err := p.evaluator.Quality(res.Image); err == nil {
		report.Quality = q
	} else {
		p.logger.WithError(err).Warn("PIPELINE: quality metrics unavailable")
	}

	p.mu.RLock()
	stale := gen != p.generation
	p.mu.RUnlock()
	if stale {
		p.logger.WithField("generation", gen).Debug("PIPELINE: dropping stale result")
		return report, nil, nil
	}

	if err := p.imageData.SetProcessed(res.Image, report.Measurement); err != nil {
		return RunReport{}, nil, err
	}

	preview, err := res.Image.ToImage()
	if err != nil {
		return RunReport{}, nil, fmt.Errorf("convert preview: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"steps":       len(steps),
		"detected":    report.Measurement.Detected,
		"duration_ms": report.Duration.Milliseconds(),
	}).Info("PIPELINE: processing completed")
	return report, preview, nil
}

func (p *Pipeline) reportError(err error) {
	p.mu.RLock()
	onError := p.onError
	p.mu.RUnlock()

	p.logger.WithError(err).Error("PIPELINE: error")
	if onError != nil {
		onError(err)
	}
}

// begin counts a run in and snapshots the step list.
func (p *Pipeline) begin() []Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight++
	return append([]Step(nil), p.steps...)
}

func (p *Pipeline) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--
}

// IsProcessing reports whether any run is in flight. Preview and synchronous
// runs may overlap.
func (p *Pipeline) IsProcessing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inFlight > 0
}

// Stop cancels any pending preview run.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.previewTimer != nil {
		p.previewTimer.Stop()
	}
}
