package session

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"contour-inspector/internal/contour"
	"contour-inspector/internal/core"
	imgio "contour-inspector/internal/io"
)

// squareReader yields black frames with a white square whose side grows by
// two pixels per frame, up to limit frames.
type squareReader struct {
	reads int
	limit int
}

func (s *squareReader) Read(m *gocv.Mat) bool {
	if s.reads >= s.limit {
		return false
	}
	frame := gocv.NewMatWithSize(80, 80, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(0, 0, 0, 0))

	side := 20 + 2*s.reads
	roi := frame.Region(image.Rect(10, 10, 10+side, 10+side))
	roi.SetTo(gocv.NewScalar(255, 255, 255, 0))
	roi.Close()

	frame.CopyTo(m)
	s.reads++
	return true
}

func newRunner() *Runner {
	return NewRunner(core.NewExecutor(nil, contour.DefaultStyle()), imgio.NewCapturer(nil), nil)
}

func TestDirNaming(t *testing.T) {
	root := t.TempDir()

	first, err := Dir(root, "Line Check", "Dock Cam")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Line_Check", "Dock_Cam"), first)
	assert.DirExists(t, first)

	second, err := Dir(root, "Line Check", "Dock Cam")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Line_Check_v2", "Dock_Cam"), second)

	third, err := Dir(root, "Line Check", "Dock Cam")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Line_Check_v3", "Dock_Cam"), third)

	// Another camera in the same session does not collide.
	other, err := Dir(root, "Line Check", "Webcam Local")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Line_Check", "Webcam_Local"), other)

	_, err = Dir(root, " ", "cam")
	assert.Error(t, err)
}

func TestFrameName(t *testing.T) {
	assert.Equal(t, "frame_000.jpg", FrameName(0))
	assert.Equal(t, "frame_042.jpg", FrameName(42))
	assert.Equal(t, "frame_1234.jpg", FrameName(1234))
}

func TestRunSession(t *testing.T) {
	root := t.TempDir()
	opts := Options{
		Root:    root,
		Session: "batch 1",
		Camera:  "Webcam Local",
		FPS:     100,
		Seconds: 0.05,
		Steps: []core.Step{
			{Kind: core.KindColorConvert, Option: 1},
			{Kind: core.KindContourMeasurement, Param1: 100},
		},
	}

	var progress [][2]int
	report, err := newRunner().Run(context.Background(), &squareReader{limit: 100}, opts, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "batch_1", "Webcam_Local"), report.Dir)
	require.Len(t, report.Frames, 5)
	assert.Equal(t, [][2]int{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}}, progress)

	for i, f := range report.Frames {
		assert.Equal(t, FrameName(i), f.File)
		assert.True(t, f.Detected)
		assert.FileExists(t, filepath.Join(report.Dir, f.File))
	}
	// The square grows every frame.
	assert.Greater(t, report.Frames[4].Area, report.Frames[0].Area)

	assert.Equal(t, 5, report.Summary.Frames)
	assert.Equal(t, 5, report.Summary.Detections)
	assert.Equal(t, 1.0, report.Summary.DetectionRate)

	manifest, err := ReadManifest(filepath.Join(report.Dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, report.ID, manifest.ID)
	assert.Equal(t, report.Frames, manifest.Frames)
	assert.Equal(t, report.Summary, manifest.Summary)
	assert.WithinDuration(t, report.Started, manifest.Started, time.Second)
}

func TestRunSessionSourceEnds(t *testing.T) {
	opts := Options{
		Root:    t.TempDir(),
		Session: "short",
		Camera:  "cam",
		FPS:     100,
		Seconds: 0.1,
		Steps:   []core.Step{{Kind: core.KindContourMeasurement, Param1: 10000}},
	}

	report, err := newRunner().Run(context.Background(), &squareReader{limit: 3}, opts, nil)
	assert.ErrorIs(t, err, imgio.ErrSourceClosed)
	assert.Len(t, report.Frames, 3)
	assert.Equal(t, 0, report.Summary.Detections)

	_, statErr := os.Stat(filepath.Join(report.Dir, ManifestName))
	assert.NoError(t, statErr)
}

func TestRunSessionProcessingError(t *testing.T) {
	opts := Options{
		Root:    t.TempDir(),
		Session: "bad",
		Camera:  "cam",
		FPS:     100,
		Seconds: 0.03,
		Steps:   []core.Step{{Kind: core.KindNoiseReduction, Option: 1, Param1: 2}},
	}

	report, err := newRunner().Run(context.Background(), &squareReader{limit: 10}, opts, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "process frame 0")
	assert.Empty(t, report.Frames)
}
