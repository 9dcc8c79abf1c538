// Option catalogue used to build steps from the UI, recipes and the CLI
package core

import (
	"math"
	"sort"
)

// ParameterInfo describes a numeric step parameter for UI generation
type ParameterInfo struct {
	Name        string  `json:"name"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Default     float64 `json:"default"`
	Step        float64 `json:"step"`
	Integer     bool    `json:"integer,omitempty"`
	Description string  `json:"description"`
}

// OptionInfo names one (kind, option) pair and the parameters it reads.
type OptionInfo struct {
	Kind   Kind
	Option int
	Label  string
	Params []ParameterInfo
}

// Step builds a Step from positional values. Missing values take the defaults,
// values are clamped to the parameter range, and integer parameters snap to
// their step grid (odd kernel sizes).
func (o OptionInfo) Step(values ...float64) Step {
	p := [2]float64{}
	for i, info := range o.Params {
		if i >= len(p) {
			break
		}
		v := info.Default
		if i < len(values) {
			v = values[i]
		}
		if v < info.Min {
			v = info.Min
		}
		if v > info.Max {
			v = info.Max
		}
		if info.Integer && info.Step > 0 {
			v = info.Min + math.Round((v-info.Min)/info.Step)*info.Step
		}
		p[i] = v
	}
	return Step{Kind: o.Kind, Option: o.Option, Param1: p[0], Param2: p[1]}
}

var catalog = []OptionInfo{
	{Kind: KindColorConvert, Option: 1, Label: "Grayscale"},
	{Kind: KindColorConvert, Option: 2, Label: "HSV"},

	{Kind: KindIllumination, Option: 1, Label: "Normalize"},
	{Kind: KindIllumination, Option: 2, Label: "Background correction"},
	{Kind: KindIllumination, Option: 3, Label: "CLAHE", Params: []ParameterInfo{
		{Name: "clip_limit", Min: 0.1, Max: 40, Step: 0.1, Default: 2.0, Description: "Contrast clip limit"},
	}},

	{Kind: KindNoiseReduction, Option: 1, Label: "Gaussian blur", Params: []ParameterInfo{
		{Name: "kernel_size", Min: 1, Max: 31, Step: 2, Default: 5, Integer: true, Description: "Odd kernel size"},
	}},
	{Kind: KindNoiseReduction, Option: 2, Label: "Median blur", Params: []ParameterInfo{
		{Name: "kernel_size", Min: 1, Max: 31, Step: 2, Default: 5, Integer: true, Description: "Odd kernel size"},
	}},
	{Kind: KindNoiseReduction, Option: 3, Label: "Bilateral filter", Params: []ParameterInfo{
		{Name: "diameter", Min: 1, Max: 25, Step: 1, Default: 9, Integer: true, Description: "Pixel neighbourhood diameter"},
		{Name: "sigma", Min: 0, Max: 200, Step: 1, Default: 75, Description: "Colour and space sigma"},
	}},

	{Kind: KindEdgeEnhancement, Option: 1, Label: "Sharpen"},
	{Kind: KindEdgeEnhancement, Option: 2, Label: "Laplacian"},
	{Kind: KindEdgeEnhancement, Option: 3, Label: "Canny", Params: []ParameterInfo{
		{Name: "low_threshold", Min: 0, Max: 500, Step: 1, Default: 50, Description: "Hysteresis low threshold"},
		{Name: "high_threshold", Min: 0, Max: 500, Step: 1, Default: 150, Description: "Hysteresis high threshold"},
	}},

	{Kind: KindAffine, Option: 1, Label: "Translate", Params: []ParameterInfo{
		{Name: "tx", Min: -4096, Max: 4096, Step: 1, Default: 50, Description: "Horizontal shift in pixels"},
		{Name: "ty", Min: -4096, Max: 4096, Step: 1, Default: 50, Description: "Vertical shift in pixels"},
	}},
	{Kind: KindAffine, Option: 2, Label: "Rotate", Params: []ParameterInfo{
		{Name: "angle", Min: -360, Max: 360, Step: 1, Default: 45, Description: "Degrees, counter-clockwise"},
	}},

	{Kind: KindContourMeasurement, Option: 1, Label: "Measure contours", Params: []ParameterInfo{
		{Name: "min_area", Min: 0, Max: 1e7, Step: 10, Default: 500, Description: "Minimum contour area in px²"},
	}},
}

// Kinds lists the step kinds in dispatch order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Options returns the catalogue entries for kind.
func Options(kind Kind) []OptionInfo {
	var out []OptionInfo
	for _, o := range catalog {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// Lookup finds the catalogue entry for (kind, option). Contour measurement
// ignores the option.
func Lookup(kind Kind, option int) (OptionInfo, bool) {
	for _, o := range catalog {
		if o.Kind != kind {
			continue
		}
		if kind == KindContourMeasurement || o.Option == option {
			return o, true
		}
	}
	return OptionInfo{}, false
}
