// Menu handler for application actions
package gui

import (
	"errors"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"contour-inspector/internal/core"
	imgio "contour-inspector/internal/io"
)

var recipeExtensions = []string{".toml"}

// MenuHandler handles menu actions
type MenuHandler struct {
	window    fyne.Window
	imageData *core.ImageData
	pipeline  *core.Pipeline
	loader    *imgio.ImageLoader
	logger    logrus.FieldLogger

	onImageLoaded  func(string)
	onImageSaved   func(string)
	onRecipeLoaded func(core.Recipe)
	onReset        func()
}

func NewMenuHandler(window fyne.Window, imageData *core.ImageData, pipeline *core.Pipeline, loader *imgio.ImageLoader, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		window:    window,
		imageData: imageData,
		pipeline:  pipeline,
		loader:    loader,
		logger:    logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mh.openImage),
		fyne.NewMenuItem("Save Result...", mh.saveImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Recipe...", mh.loadRecipe),
		fyne.NewMenuItem("Save Recipe...", mh.saveRecipe),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Reset to Original", func() {
			if !mh.imageData.HasImage() {
				return
			}
			mh.pipeline.ClearSteps()
			mh.logger.Info("Reset to original image")
			if mh.onReset != nil {
				mh.onReset()
			}
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, helpMenu)
}

func (mh *MenuHandler) openImage() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		mh.logger.WithField("filepath", path).Info("Loading selected image")
		if mh.onImageLoaded != nil {
			mh.onImageLoaded(path)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(imgio.SupportedExtensions))
	fileDialog.Show()
}

func (mh *MenuHandler) saveImage() {
	if !mh.imageData.HasImage() {
		mh.showError("No Image", errors.New("no image loaded to save"))
		return
	}

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		// SaveImage encodes by extension through OpenCV, not through the writer
		writer.Close()

		processed := mh.imageData.Processed()
		defer processed.Close()

		if err := mh.loader.SaveImage(processed, path); err != nil {
			mh.showError("Failed to Save Image", err)
			return
		}

		mh.logger.WithField("filepath", path).Info("Image saved successfully")
		if mh.onImageSaved != nil {
			mh.onImageSaved(path)
		}
	}, mh.window)

	fileDialog.SetFileName(resultName(mh.imageData.Source()))
	fileDialog.SetFilter(storage.NewExtensionFileFilter(imgio.SupportedExtensions))
	fileDialog.Show()
}

// resultName suggests <stem>_measured.png for the loaded source.
func resultName(source string) string {
	if source == "" {
		return "measured.png"
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_measured.png"
}

func (mh *MenuHandler) loadRecipe() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		recipe, err := core.LoadRecipe(path)
		if err != nil {
			mh.showError("Failed to Load Recipe", err)
			return
		}
		mh.pipeline.SetSteps(recipe.Steps)
		mh.logger.WithFields(logrus.Fields{"filepath": path, "steps": len(recipe.Steps)}).Info("Recipe loaded")
		if mh.onRecipeLoaded != nil {
			mh.onRecipeLoaded(recipe)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(recipeExtensions))
	fileDialog.Show()
}

func (mh *MenuHandler) saveRecipe() {
	steps := mh.pipeline.Steps()
	if len(steps) == 0 {
		mh.showError("Empty Pipeline", errors.New("add at least one step before saving a recipe"))
		return
	}

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := core.SaveRecipe(path, core.Recipe{Name: name, Steps: steps}); err != nil {
			mh.showError("Failed to Save Recipe", err)
			return
		}
		mh.logger.WithFields(logrus.Fields{"filepath": path, "steps": len(steps)}).Info("Recipe saved")
	}, mh.window)

	fileDialog.SetFileName("recipe.toml")
	fileDialog.SetFilter(storage.NewExtensionFileFilter(recipeExtensions))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel(AppName+" "+AppVersion),
		widget.NewSeparator(),
		widget.NewLabel("Image processing pipeline with contour measurement"),
		widget.NewLabel("for camera and file inspection."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne v2.6 and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 240))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}

// SetCallbacks registers handlers; nil leaves a handler unset.
func (mh *MenuHandler) SetCallbacks(onImageLoaded, onImageSaved func(string), onRecipeLoaded func(core.Recipe), onReset func()) {
	mh.onImageLoaded = onImageLoaded
	mh.onImageSaved = onImageSaved
	mh.onRecipeLoaded = onRecipeLoaded
	mh.onReset = onReset
}
