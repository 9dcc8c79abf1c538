// internal/gui/camera_panel.go
// Camera registry and capture sessions
package gui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"contour-inspector/internal/config"
	"contour-inspector/internal/core"
	imgio "contour-inspector/internal/io"
	"contour-inspector/internal/session"
)

// CameraPanel manages configured cameras and runs capture sessions on them
type CameraPanel struct {
	settings     *config.Settings
	settingsPath string
	pipeline     *core.Pipeline
	imageData    *core.ImageData
	runner       *session.Runner
	window       fyne.Window
	logger       logrus.FieldLogger

	container *fyne.Container

	cameraSelect  *widget.Select
	nameEntry     *widget.Entry
	urlEntry      *widget.Entry
	sessionEntry  *widget.Entry
	fpsEntry      *widget.Entry
	secondsEntry  *widget.Entry
	progress      *widget.ProgressBar
	status        *widget.Label
	snapButton    *widget.Button
	captureButton *widget.Button
	stopButton    *widget.Button
	removeButton  *widget.Button

	mu     sync.Mutex
	cancel context.CancelFunc

	onSnapshot    func(camera string)
	onSessionDone func(session.Report)
}

func NewCameraPanel(settings *config.Settings, settingsPath string, pipeline *core.Pipeline, imageData *core.ImageData,
	runner *session.Runner, window fyne.Window, logger logrus.FieldLogger) *CameraPanel {
	cp := &CameraPanel{
		settings:     settings,
		settingsPath: settingsPath,
		pipeline:     pipeline,
		imageData:    imageData,
		runner:       runner,
		window:       window,
		logger:       logger,
	}
	cp.initializeUI()
	return cp
}

func (cp *CameraPanel) initializeUI() {
	cp.cameraSelect = widget.NewSelect(nil, func(string) { cp.updateButtons() })
	cp.refreshCameras()

	cp.nameEntry = widget.NewEntry()
	cp.nameEntry.SetPlaceHolder("Name")
	cp.urlEntry = widget.NewEntry()
	cp.urlEntry.SetPlaceHolder("Device index or rtsp://...")
	addButton := widget.NewButton("Add camera", cp.addCamera)
	cp.removeButton = widget.NewButton("Remove selected", cp.removeCamera)

	capture := cp.settings.Capture
	cp.sessionEntry = widget.NewEntry()
	cp.sessionEntry.SetText(capture.Session)
	cp.fpsEntry = widget.NewEntry()
	cp.fpsEntry.SetText(strconv.FormatFloat(capture.FPS, 'f', -1, 64))
	cp.secondsEntry = widget.NewEntry()
	cp.secondsEntry.SetText(strconv.FormatFloat(capture.Seconds, 'f', -1, 64))

	cp.progress = widget.NewProgressBar()
	cp.status = widget.NewLabel("Idle")
	cp.snapButton = widget.NewButton("Snapshot", cp.snapshot)
	cp.captureButton = widget.NewButton("Start capture", cp.startCapture)
	cp.captureButton.Importance = widget.HighImportance
	cp.stopButton = widget.NewButton("Stop", cp.stopCapture)
	cp.stopButton.Disable()

	registry := container.NewVBox(
		cp.cameraSelect,
		container.NewGridWithColumns(2, cp.nameEntry, cp.urlEntry),
		container.NewGridWithColumns(2, addButton, cp.removeButton),
	)

	form := widget.NewForm(
		widget.NewFormItem("Session", cp.sessionEntry),
		widget.NewFormItem("FPS", cp.fpsEntry),
		widget.NewFormItem("Seconds", cp.secondsEntry),
	)
	captureBox := container.NewVBox(
		form,
		container.NewGridWithColumns(3, cp.snapButton, cp.captureButton, cp.stopButton),
		cp.progress,
		cp.status,
	)

	cp.container = container.NewVBox(
		widget.NewCard("Cameras", "", registry),
		widget.NewCard("Capture", "", captureBox),
	)
	cp.updateButtons()
}

func (cp *CameraPanel) GetContainer() fyne.CanvasObject {
	return container.NewScroll(cp.container)
}

// SetCallbacks registers the snapshot and session-finished handlers. Both run on the UI thread.
func (cp *CameraPanel) SetCallbacks(onSnapshot func(string), onSessionDone func(session.Report)) {
	cp.onSnapshot = onSnapshot
	cp.onSessionDone = onSessionDone
}

func (cp *CameraPanel) refreshCameras() {
	names := make([]string, 0, len(cp.settings.Cameras))
	for _, c := range cp.settings.Cameras {
		names = append(names, c.Name)
	}
	cp.cameraSelect.Options = names
	if _, ok := cp.settings.Camera(cp.cameraSelect.Selected); !ok && len(names) > 0 {
		cp.cameraSelect.SetSelected(names[0])
	}
	cp.cameraSelect.Refresh()
}

func (cp *CameraPanel) updateButtons() {
	if cp.removeButton == nil {
		return
	}
	if cp.cameraSelect.Selected == "" || cp.cameraSelect.Selected == config.LocalCameraName {
		cp.removeButton.Disable()
	} else {
		cp.removeButton.Enable()
	}
}

func (cp *CameraPanel) addCamera() {
	if err := cp.settings.AddCamera(cp.nameEntry.Text, cp.urlEntry.Text); err != nil {
		dialog.ShowError(err, cp.window)
		return
	}
	if err := cp.settings.Save(cp.settingsPath); err != nil {
		cp.logger.WithError(err).Error("Failed to save settings")
		dialog.ShowError(err, cp.window)
	}
	added := cp.settings.Cameras[len(cp.settings.Cameras)-1]
	cp.logger.WithFields(logrus.Fields{"camera": added.Name, "url": added.URL}).Info("Camera added")
	cp.nameEntry.SetText("")
	cp.urlEntry.SetText("")
	cp.refreshCameras()
	cp.cameraSelect.SetSelected(added.Name)
}

func (cp *CameraPanel) removeCamera() {
	name := cp.cameraSelect.Selected
	dialog.ShowConfirm("Remove camera", fmt.Sprintf("Remove %q?", name), func(ok bool) {
		if !ok {
			return
		}
		if err := cp.settings.RemoveCamera(name); err != nil {
			dialog.ShowError(err, cp.window)
			return
		}
		if err := cp.settings.Save(cp.settingsPath); err != nil {
			cp.logger.WithError(err).Error("Failed to save settings")
			dialog.ShowError(err, cp.window)
		}
		cp.logger.WithField("camera", name).Info("Camera removed")
		cp.cameraSelect.ClearSelected()
		cp.refreshCameras()
		cp.updateButtons()
	}, cp.window)
}

func (cp *CameraPanel) selectedCamera() (config.Camera, error) {
	cam, ok := cp.settings.Camera(cp.cameraSelect.Selected)
	if !ok {
		return config.Camera{}, errors.New("select a camera first")
	}
	return cam, nil
}

// snapshot grabs one frame from the selected camera and loads it as the original image.
func (cp *CameraPanel) snapshot() {
	cam, err := cp.selectedCamera()
	if err != nil {
		dialog.ShowError(err, cp.window)
		return
	}
	cp.status.SetText("Grabbing frame from " + cam.Name)

	go func() {
		err := cp.grab(cam)
		fyne.Do(func() {
			if err != nil {
				cp.status.SetText("Snapshot failed")
				dialog.ShowError(err, cp.window)
				return
			}
			cp.status.SetText("Snapshot from " + cam.Name)
			if cp.onSnapshot != nil {
				cp.onSnapshot(cam.Name)
			}
		})
	}()
}

func (cp *CameraPanel) grab(cam config.Camera) error {
	vc, err := imgio.OpenSource(cam.URL)
	if err != nil {
		return err
	}
	defer vc.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	if !vc.Read(&frame) || frame.Empty() {
		return imgio.ErrSourceClosed
	}
	return cp.imageData.SetOriginal(frame, cam.Name)
}

func (cp *CameraPanel) captureOptions(cam config.Camera) (session.Options, error) {
	fps, err := strconv.ParseFloat(cp.fpsEntry.Text, 64)
	if err != nil || fps <= 0 {
		return session.Options{}, fmt.Errorf("fps must be a positive number")
	}
	seconds, err := strconv.ParseFloat(cp.secondsEntry.Text, 64)
	if err != nil || seconds <= 0 {
		return session.Options{}, fmt.Errorf("seconds must be a positive number")
	}
	if cp.sessionEntry.Text == "" {
		return session.Options{}, fmt.Errorf("session name is required")
	}
	return session.Options{
		Root:    cp.settings.Capture.OutputRoot,
		Session: cp.sessionEntry.Text,
		Camera:  cam.Name,
		FPS:     fps,
		Seconds: seconds,
		Steps:   cp.pipeline.Steps(),
	}, nil
}

func (cp *CameraPanel) startCapture() {
	cam, err := cp.selectedCamera()
	if err != nil {
		dialog.ShowError(err, cp.window)
		return
	}
	opts, err := cp.captureOptions(cam)
	if err != nil {
		dialog.ShowError(err, cp.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cp.mu.Lock()
	cp.cancel = cancel
	cp.mu.Unlock()

	cp.captureButton.Disable()
	cp.snapButton.Disable()
	cp.stopButton.Enable()
	cp.progress.SetValue(0)
	cp.status.SetText("Capturing from " + cam.Name)

	go cp.runSession(ctx, cam, opts)
}

func (cp *CameraPanel) runSession(ctx context.Context, cam config.Camera, opts session.Options) {
	var report session.Report
	vc, err := imgio.OpenSource(cam.URL)
	if err == nil {
		report, err = cp.runner.Run(ctx, vc, opts, func(done, total int) {
			fyne.Do(func() {
				if total > 0 {
					cp.progress.SetValue(float64(done) / float64(total))
				}
			})
		})
		vc.Close()
	}

	cp.mu.Lock()
	if cp.cancel != nil {
		cp.cancel()
		cp.cancel = nil
	}
	cp.mu.Unlock()

	fyne.Do(func() {
		cp.captureButton.Enable()
		cp.snapButton.Enable()
		cp.stopButton.Disable()

		switch {
		case errors.Is(err, context.Canceled):
			cp.status.SetText(fmt.Sprintf("Stopped after %d frames", len(report.Frames)))
		case err != nil:
			cp.status.SetText("Capture failed")
			dialog.ShowError(err, cp.window)
		default:
			cp.status.SetText(fmt.Sprintf("Saved %d frames to %s", len(report.Frames), report.Dir))
		}
		if report.Dir != "" && cp.onSessionDone != nil {
			cp.onSessionDone(report)
		}
	})
}

func (cp *CameraPanel) stopCapture() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.cancel != nil {
		cp.cancel()
	}
}

// Stop cancels a running capture.
func (cp *CameraPanel) Stop() {
	cp.stopCapture()
}
