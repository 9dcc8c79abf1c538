// Image quality metrics for processed frames and capture sessions
package metrics

import (
	"fmt"
	"sort"
	"time"

	"gocv.io/x/gocv"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	GetName() string
	GetDescription() string

	// GetRange returns the value range (min, max) used for scoring
	GetRange() (float64, float64)

	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	e.Register("contrast", NewContrast())
	e.Register("sharpness", NewSharpness())
	e.Register("snr", NewSNR())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names lists the registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll returns every metric that could be computed. Comparison metrics
// are skipped when the two images differ in size.
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}

// QualityMetrics summarises a single image.
type QualityMetrics struct {
	Contrast  float64 `json:"contrast"`
	Sharpness float64 `json:"sharpness"`
	SNR       float64 `json:"snr"`
}

// Quality computes contrast, sharpness and SNR of img.
func (e *Evaluator) Quality(img gocv.Mat) (QualityMetrics, error) {
	mean, stddev, err := MeanStdDev(img)
	if err != nil {
		return QualityMetrics{}, err
	}
	sharpness, err := LaplacianVariance(img)
	if err != nil {
		return QualityMetrics{}, err
	}
	return QualityMetrics{
		Contrast:  stddev,
		Sharpness: sharpness,
		SNR:       snr(mean, stddev),
	}, nil
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)
	for name, metric := range e.metrics {
		min, max := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{min, max},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// QualityReport contains the quality assessment of one processing run
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`
	Level        string             `json:"level"` // "excellent", "good", "fair", "poor"
	Metrics      map[string]float64 `json:"metrics"`
	Timestamp    string             `json:"timestamp"`
}

// GenerateReport scores processed against original
func (e *Evaluator) GenerateReport(original, processed gocv.Mat) QualityReport {
	metrics := e.CalculateAll(original, processed)
	score := e.overallScore(metrics)

	return QualityReport{
		OverallScore: score,
		Level:        qualityLevel(score),
		Metrics:      metrics,
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
	}
}

// overallScore is the mean of the normalised metrics, as a percentage
func (e *Evaluator) overallScore(metrics map[string]float64) float64 {
	total, n := 0.0, 0
	for name, value := range metrics {
		metric, exists := e.metrics[name]
		if !exists {
			continue
		}
		total += normalize(metric, value)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n) * 100
}

func normalize(metric Metric, value float64) float64 {
	min, max := metric.GetRange()
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	if max == min {
		return 1.0
	}

	normalized := (value - min) / (max - min)
	if !metric.IsHigherBetter() {
		normalized = 1.0 - normalized
	}
	return normalized
}

func qualityLevel(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 75:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "poor"
	}
}
