package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"contour-inspector/internal/config"
	"contour-inspector/internal/core"
	imgio "contour-inspector/internal/io"
	"contour-inspector/internal/session"
)

// loadSteps reads a recipe, or returns a single contour measurement with the
// default minimum area when path is empty.
func loadSteps(path string) ([]core.Step, error) {
	if path == "" {
		info, _ := core.Lookup(core.KindContourMeasurement, 1)
		return []core.Step{info.Step()}, nil
	}
	recipe, err := core.LoadRecipe(path)
	if err != nil {
		return nil, err
	}
	return recipe.Steps, nil
}

func runImage(logger logrus.FieldLogger, executor *core.Executor, in, out string, steps []core.Step) error {
	if in == "" {
		return fmt.Errorf("-out needs -image")
	}
	loader := imgio.NewImageLoader(logger)
	img, err := loader.LoadImage(in)
	if err != nil {
		return err
	}
	defer img.Close()

	res, err := executor.ProcessWithMetadata(img, steps)
	if err != nil {
		return err
	}
	defer res.Close()

	if err := loader.SaveImage(res.Image, out); err != nil {
		return err
	}

	if res.Detected {
		fmt.Fprintf(os.Stdout, "detected area=%.1f perimeter=%.1f box=%dx%d candidates=%d\n",
			res.Area, res.Perimeter, res.Width, res.Height, res.Candidates)
	} else {
		fmt.Fprintln(os.Stdout, "no object detected")
	}
	return nil
}

// runCapture resolves camera as a configured name first, then as a raw URL.
func runCapture(ctx context.Context, logger logrus.FieldLogger, settings *config.Settings, executor *core.Executor, camera string, steps []core.Step) error {
	cam, ok := settings.Camera(camera)
	if !ok {
		cam = config.Camera{Name: camera, URL: camera}
	}

	vc, err := imgio.OpenSource(cam.URL)
	if err != nil {
		return err
	}
	defer vc.Close()

	runner := session.NewRunner(executor, imgio.NewCapturer(logger), logger)
	report, err := runner.Run(ctx, vc, session.Options{
		Root:    settings.Capture.OutputRoot,
		Session: settings.Capture.Session,
		Camera:  cam.Name,
		FPS:     settings.Capture.FPS,
		Seconds: settings.Capture.Seconds,
		Steps:   steps,
	}, func(done, total int) {
		logger.WithFields(logrus.Fields{"done": done, "total": total}).Debug("Frame processed")
	})
	if report.Dir != "" {
		s := report.Summary
		fmt.Fprintf(os.Stdout, "session %s: %d frames, %d detections, mean area %.1f (sd %.1f) -> %s\n",
			report.ID, s.Frames, s.Detections, s.MeanArea, s.StdDevArea, report.Dir)
	}
	return err
}
