// Main application window: pipeline editor, image views, metrics and cameras
package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"contour-inspector/internal/config"
	"contour-inspector/internal/core"
	imgio "contour-inspector/internal/io"
	"contour-inspector/internal/session"
)

const (
	AppName    = "Contour Inspector"
	AppVersion = "1.0.0"
)

// Application represents the main application window
type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger

	settings     *config.Settings
	settingsPath string

	// Core components
	imageData *core.ImageData
	executor  *core.Executor
	pipeline  *core.Pipeline
	loader    *imgio.ImageLoader
	runner    *session.Runner

	// GUI components
	canvas        *ImageCanvas
	pipelinePanel *PipelinePanel
	metricsPanel  *MetricsPanel
	cameraPanel   *CameraPanel
	menuHandler   *MenuHandler
	status        *widget.Label
}

func NewApplication(app fyne.App, logger logrus.FieldLogger, settings *config.Settings, settingsPath string, executor *core.Executor) *Application {
	window := app.NewWindow(AppName)
	window.Resize(fyne.NewSize(1500, 950))
	window.CenterOnScreen()

	a := &Application{
		app:          app,
		window:       window,
		logger:       logger,
		settings:     settings,
		settingsPath: settingsPath,
		executor:     executor,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeCore() {
	a.imageData = core.NewImageData()
	a.pipeline = core.NewPipeline(a.imageData, a.executor, a.logger)
	a.loader = imgio.NewImageLoader(a.logger)
	a.runner = session.NewRunner(a.executor, imgio.NewCapturer(a.logger), a.logger)
}

func (a *Application) initializeGUI() {
	a.canvas = NewImageCanvas(a.imageData, a.logger)
	a.pipelinePanel = NewPipelinePanel(a.pipeline, a.window, a.logger)
	a.metricsPanel = NewMetricsPanel()
	a.cameraPanel = NewCameraPanel(a.settings, a.settingsPath, a.pipeline, a.imageData, a.runner, a.window, a.logger)
	a.menuHandler = NewMenuHandler(a.window, a.imageData, a.pipeline, a.loader, a.logger)
	a.status = widget.NewLabel("Open an image or take a camera snapshot")
}

func (a *Application) setupLayout() {
	left := container.NewVSplit(
		a.pipelinePanel.GetContainer(),
		a.cameraPanel.GetContainer(),
	)
	left.SetOffset(0.6)

	center := container.NewBorder(nil, a.status, nil, nil,
		container.NewPadded(a.canvas.GetContainer()))

	centerAndRight := container.NewHSplit(center, a.metricsPanel.GetContainer())
	centerAndRight.SetOffset(0.75)

	root := container.NewHSplit(left, centerAndRight)
	root.SetOffset(0.25)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(root)
}

func (a *Application) setupCallbacks() {
	// Pipeline callbacks arrive on the processing goroutine
	a.pipeline.SetCallbacks(
		func(preview image.Image, report core.RunReport) {
			fyne.Do(func() {
				a.canvas.UpdatePreview(preview)
				a.metricsPanel.Update(report)
				a.updateStatus(report)
			})
		},
		func(err error) {
			fyne.Do(func() {
				a.showError("Processing Error", err)
			})
		},
	)

	a.menuHandler.SetCallbacks(
		func(path string) {
			if err := a.LoadImageFromPath(path); err != nil {
				a.showError("Failed to Load Image", err)
			}
		},
		func(path string) {
			a.setStatus(fmt.Sprintf("Saved: %s", path))
		},
		func(recipe core.Recipe) {
			a.pipelinePanel.Refresh()
			a.setStatus(fmt.Sprintf("Recipe %q loaded with %d steps", recipe.Name, len(recipe.Steps)))
		},
		func() {
			a.pipelinePanel.Refresh()
			a.canvas.ClearPreview()
			a.metricsPanel.Clear()
			a.setStatus("Reset to original image")
		},
	)

	a.cameraPanel.SetCallbacks(
		func(camera string) {
			a.imageLoaded(camera)
		},
		func(report session.Report) {
			a.metricsPanel.ShowSummary(report.Summary)
			a.setStatus(fmt.Sprintf("Session %s: %d frames in %s", report.ID, report.Summary.Frames, report.Dir))
		},
	)
}

func (a *Application) updateStatus(report core.RunReport) {
	m := report.Measurement
	if !m.Detected {
		a.setStatus(fmt.Sprintf("No object detected (%v)", report.Duration.Round(1e6)))
		return
	}
	a.setStatus(fmt.Sprintf("Area %.1f px², perimeter %.1f px, box %dx%d", m.Area, m.Perimeter, m.Width, m.Height))
}

func (a *Application) setStatus(message string) {
	a.status.SetText(message)
}

// imageLoaded refreshes views after a new original. Must run on the UI thread.
func (a *Application) imageLoaded(source string) {
	a.canvas.ClearPreview()
	a.canvas.UpdateOriginalImage()
	a.metricsPanel.Clear()
	a.setStatus(fmt.Sprintf("Loaded: %s", source))
	a.pipeline.Trigger()
}

// LoadImageFromPath loads a file as the original image. Must run on the UI thread.
func (a *Application) LoadImageFromPath(path string) error {
	mat, err := a.loader.LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	defer mat.Close()

	if err := a.imageData.SetOriginal(mat, path); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}

	a.logger.WithField("filepath", path).Info("Image loaded successfully")
	a.imageLoaded(path)
	return nil
}

// LoadRecipeFromPath replaces the step list with a recipe file. Must run on the UI thread.
func (a *Application) LoadRecipeFromPath(path string) error {
	recipe, err := core.LoadRecipe(path)
	if err != nil {
		return err
	}
	a.pipeline.SetSteps(recipe.Steps)
	a.pipelinePanel.Refresh()
	return nil
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	a.cameraPanel.Stop()
	a.pipeline.Stop()
	a.imageData.Close()
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.setStatus(fmt.Sprintf("Error: %s", err.Error()))
}
