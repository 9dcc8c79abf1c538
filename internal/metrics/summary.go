// Detection statistics over a series of measured frames
package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// Sample is the measurement outcome of one frame.
type Sample struct {
	Detected  bool
	Area      float64
	Perimeter float64
}

// Summary aggregates a series of samples. Area and perimeter statistics cover
// detected frames only.
type Summary struct {
	Frames        int     `json:"frames" toml:"frames"`
	Detections    int     `json:"detections" toml:"detections"`
	DetectionRate float64 `json:"detection_rate" toml:"detection_rate"`
	MeanArea      float64 `json:"mean_area" toml:"mean_area"`
	StdDevArea    float64 `json:"stddev_area" toml:"stddev_area"`
	MinArea       float64 `json:"min_area" toml:"min_area"`
	MaxArea       float64 `json:"max_area" toml:"max_area"`
	MeanPerimeter float64 `json:"mean_perimeter" toml:"mean_perimeter"`
	StdDevPerim   float64 `json:"stddev_perimeter" toml:"stddev_perimeter"`
}

// Summarize computes a Summary of samples.
func Summarize(samples []Sample) Summary {
	s := Summary{Frames: len(samples)}

	var areas, perims []float64
	for _, sample := range samples {
		if !sample.Detected {
			continue
		}
		areas = append(areas, sample.Area)
		perims = append(perims, sample.Perimeter)
	}

	s.Detections = len(areas)
	if s.Frames > 0 {
		s.DetectionRate = float64(s.Detections) / float64(s.Frames)
	}
	if s.Detections == 0 {
		return s
	}

	s.MeanArea, s.StdDevArea = stat.MeanStdDev(areas, nil)
	s.MeanPerimeter, s.StdDevPerim = stat.MeanStdDev(perims, nil)
	if s.Detections == 1 {
		// The unbiased estimator is undefined for one observation.
		s.StdDevArea, s.StdDevPerim = 0, 0
	}

	s.MinArea, s.MaxArea = areas[0], areas[0]
	for _, a := range areas[1:] {
		if a < s.MinArea {
			s.MinArea = a
		}
		if a > s.MaxArea {
			s.MaxArea = a
		}
	}
	return s
}
