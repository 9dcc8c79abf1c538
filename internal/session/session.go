// Capture sessions: grab a paced frame sequence, run the pipeline on every
// frame and store the annotated frames with a summary manifest
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"contour-inspector/internal/core"
	imgio "contour-inspector/internal/io"
	"contour-inspector/internal/metrics"
)

// ManifestName is the summary file written into every session directory.
const ManifestName = "session.toml"

// maxVersions bounds the _vN suffix search.
const maxVersions = 1000

// Options configures one capture session.
type Options struct {
	Root    string
	Session string
	Camera  string
	FPS     float64
	Seconds float64
	Steps   []core.Step
}

// FrameRecord is the outcome for one captured frame.
type FrameRecord struct {
	Index      int     `toml:"index"`
	File       string  `toml:"file"`
	Detected   bool    `toml:"detected"`
	Area       float64 `toml:"area"`
	Perimeter  float64 `toml:"perimeter"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Candidates int     `toml:"candidates"`
}

// Report describes a finished (or interrupted) session.
type Report struct {
	ID       string          `toml:"id"`
	Dir      string          `toml:"dir"`
	Camera   string          `toml:"camera"`
	FPS      float64         `toml:"fps"`
	Seconds  float64         `toml:"seconds"`
	Started  time.Time       `toml:"started"`
	Finished time.Time       `toml:"finished"`
	Summary  metrics.Summary `toml:"summary"`
	Frames   []FrameRecord   `toml:"frames"`
}

// Progress is called after each processed frame.
type Progress func(done, total int)

// Dir returns <root>/<session>/<camera> with spaces replaced by underscores.
// When that directory exists the session name gets a _v2, _v3, ... suffix.
// The chosen directory is created.
func Dir(root, session, camera string) (string, error) {
	session, camera = sanitize(session), sanitize(camera)
	if session == "" || camera == "" {
		return "", fmt.Errorf("session and camera names are required")
	}

	candidate := filepath.Join(root, session, camera)
	for v := 2; exists(candidate); v++ {
		if v > maxVersions {
			return "", fmt.Errorf("no free session directory for %s", session)
		}
		candidate = filepath.Join(root, fmt.Sprintf("%s_v%d", session, v), camera)
	}

	if err := os.MkdirAll(candidate, 0o755); err != nil {
		return "", fmt.Errorf("create session directory: %w", err)
	}
	return candidate, nil
}

func sanitize(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// FrameName is the file name of frame i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%03d.jpg", i)
}

// Runner executes capture sessions.
type Runner struct {
	executor *core.Executor
	loader   *imgio.ImageLoader
	capturer *imgio.Capturer
	logger   logrus.FieldLogger
}

func NewRunner(executor *core.Executor, capturer *imgio.Capturer, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Runner{
		executor: executor,
		loader:   imgio.NewImageLoader(logger),
		capturer: capturer,
		logger:   logger,
	}
}

// Run captures frames from reader, processes each one in metadata mode, saves
// the result images and writes the manifest. On error the partial report is
// returned together with the error, and the manifest still covers the frames
// that were saved.
func (r *Runner) Run(ctx context.Context, reader imgio.FrameReader, opts Options, progress Progress) (Report, error) {
	dir, err := Dir(opts.Root, opts.Session, opts.Camera)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ID:      uuid.NewString(),
		Dir:     dir,
		Camera:  opts.Camera,
		FPS:     opts.FPS,
		Seconds: opts.Seconds,
		Started: time.Now(),
	}
	log := r.logger.WithFields(logrus.Fields{"session_id": report.ID, "dir": dir, "camera": opts.Camera})
	log.Info("SESSION: capture started")

	total := imgio.FrameCount(opts.FPS, opts.Seconds)
	var samples []metrics.Sample

	_, runErr := r.capturer.CaptureSequence(ctx, reader, opts.FPS, opts.Seconds, func(i int, frame gocv.Mat) error {
		res, err := r.executor.ProcessWithMetadata(frame, opts.Steps)
		if err != nil {
			return fmt.Errorf("process frame %d: %w", i, err)
		}
		defer res.Close()

		name := FrameName(i)
		if err := r.loader.SaveImage(res.Image, filepath.Join(dir, name)); err != nil {
			return err
		}

		report.Frames = append(report.Frames, FrameRecord{
			Index:      i,
			File:       name,
			Detected:   res.Detected,
			Area:       res.Area,
			Perimeter:  res.Perimeter,
			Width:      res.Width,
			Height:     res.Height,
			Candidates: res.Candidates,
		})
		samples = append(samples, metrics.Sample{Detected: res.Detected, Area: res.Area, Perimeter: res.Perimeter})

		if progress != nil {
			progress(i+1, total)
		}
		return nil
	})

	report.Finished = time.Now()
	report.Summary = metrics.Summarize(samples)

	if err := writeManifest(filepath.Join(dir, ManifestName), report); err != nil {
		log.WithError(err).Error("SESSION: manifest not written")
		if runErr == nil {
			runErr = err
		}
	}

	entry := log.WithFields(logrus.Fields{
		"frames":     report.Summary.Frames,
		"detections": report.Summary.Detections,
		"mean_area":  report.Summary.MeanArea,
	})
	if runErr != nil {
		entry.WithError(runErr).Warn("SESSION: capture interrupted")
		return report, runErr
	}
	entry.Info("SESSION: capture finished")
	return report, nil
}

func writeManifest(path string, report Report) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(report); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadManifest loads a session manifest.
func ReadManifest(path string) (Report, error) {
	var report Report
	if _, err := toml.DecodeFile(path, &report); err != nil {
		return Report{}, fmt.Errorf("read manifest: %w", err)
	}
	return report, nil
}
