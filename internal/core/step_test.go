package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"color", KindColorConvert},
		{" Edge ", KindEdgeEnhancement},
		{"contour", KindContourMeasurement},
		{"3", KindNoiseReduction},
		{"5", KindAffine},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "blur", "0", "7", "-1"} {
		_, err := ParseKind(bad)
		assert.Error(t, err, bad)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "illumination", KindIllumination.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
	assert.False(t, Kind(0).Valid())
}

func TestStepLabel(t *testing.T) {
	assert.Equal(t, "Canny", Step{Kind: KindEdgeEnhancement, Option: 3}.Label())
	assert.Equal(t, "Measure contours", Step{Kind: KindContourMeasurement, Option: 7}.Label())
	assert.Equal(t, "edge/9(1, 2)", Step{Kind: KindEdgeEnhancement, Option: 9, Param1: 1, Param2: 2}.Label())
}

func TestCatalogCoversDispatch(t *testing.T) {
	want := map[Kind]int{
		KindColorConvert:       2,
		KindIllumination:       3,
		KindNoiseReduction:     3,
		KindEdgeEnhancement:    3,
		KindAffine:             2,
		KindContourMeasurement: 1,
	}
	assert.Len(t, Kinds(), len(want))
	for _, k := range Kinds() {
		assert.Len(t, Options(k), want[k], k.String())
	}
}

func TestOptionInfoStep(t *testing.T) {
	canny, ok := Lookup(KindEdgeEnhancement, 3)
	require.True(t, ok)

	assert.Equal(t, Step{Kind: KindEdgeEnhancement, Option: 3, Param1: 50, Param2: 150}, canny.Step())
	assert.Equal(t, Step{Kind: KindEdgeEnhancement, Option: 3, Param1: 10, Param2: 150}, canny.Step(10))

	// Values are clamped into range.
	s := canny.Step(-5, 9000)
	assert.Equal(t, 0.0, s.Param1)
	assert.Equal(t, 500.0, s.Param2)

	gray, ok := Lookup(KindColorConvert, 1)
	require.True(t, ok)
	assert.Equal(t, Step{Kind: KindColorConvert, Option: 1}, gray.Step(3, 4))

	area, ok := Lookup(KindContourMeasurement, 0)
	require.True(t, ok)
	assert.Equal(t, 500.0, area.Step().Param1)

	_, ok = Lookup(KindAffine, 3)
	assert.False(t, ok)
}

func TestOptionInfoStepSnapsKernels(t *testing.T) {
	blur, ok := Lookup(KindNoiseReduction, 1)
	require.True(t, ok)

	assert.Equal(t, 5.0, blur.Step(4).Param1)
	assert.Equal(t, 7.0, blur.Step(7).Param1)
	assert.Equal(t, 31.0, blur.Step(100).Param1)
	assert.Equal(t, 1.0, blur.Step(0).Param1)
}
