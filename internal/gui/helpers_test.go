package gui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contour-inspector/internal/core"
)

func TestResultName(t *testing.T) {
	assert.Equal(t, "measured.png", resultName(""))
	assert.Equal(t, "part_measured.png", resultName("/data/part.jpg"))
	assert.Equal(t, "Webcam Local_measured.png", resultName("Webcam Local"))
}

func TestStepText(t *testing.T) {
	tests := []struct {
		step core.Step
		want string
	}{
		{core.Step{Kind: core.KindColorConvert, Option: 1}, "Grayscale"},
		{core.Step{Kind: core.KindNoiseReduction, Option: 1, Param1: 7}, "Gaussian blur (kernel_size=7)"},
		{core.Step{Kind: core.KindEdgeEnhancement, Option: 3, Param1: 50, Param2: 150}, "Canny (low_threshold=50, high_threshold=150)"},
		{core.Step{Kind: core.KindIllumination, Option: 3, Param1: 2.5}, "CLAHE (clip_limit=2.5)"},
		{core.Step{Kind: core.KindAffine, Option: 9}, "affine/9(0, 0)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, stepText(tt.step))
		})
	}
}
