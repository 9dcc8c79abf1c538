// internal/gui/canvas.go
// Side-by-side original and processed image display
package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"contour-inspector/internal/core"
)

// displayLimit bounds the size of images handed to the renderer
const displayLimit = 1600

// ImageCanvas shows the loaded image above the latest pipeline output
type ImageCanvas struct {
	imageData *core.ImageData
	logger    logrus.FieldLogger

	split         *container.Split
	originalImage *canvas.Image
	previewImage  *canvas.Image
}

func NewImageCanvas(imageData *core.ImageData, logger logrus.FieldLogger) *ImageCanvas {
	ic := &ImageCanvas{
		imageData: imageData,
		logger:    logger,
	}
	ic.initializeUI()
	return ic
}

func (ic *ImageCanvas) initializeUI() {
	ic.originalImage = newDisplayImage()
	ic.previewImage = newDisplayImage()

	ic.split = container.NewVSplit(
		widget.NewCard("Original", "", ic.originalImage),
		widget.NewCard("Result", "", ic.previewImage),
	)
	ic.split.SetOffset(0.5)
}

func newDisplayImage() *canvas.Image {
	img := canvas.NewImageFromImage(placeholder())
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(200, 150))
	return img
}

func placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}
	return img
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.split
}

// UpdateOriginalImage redraws the original from ImageData. Must run on the UI thread.
func (ic *ImageCanvas) UpdateOriginalImage() {
	original := ic.imageData.Original()
	defer original.Close()
	if original.Empty() {
		return
	}

	img, err := core.Thumbnail(original, displayLimit, displayLimit)
	if err != nil {
		ic.logger.WithError(err).Error("Failed to convert original for display")
		return
	}
	ic.originalImage.Image = img
	ic.originalImage.Refresh()
}

// UpdatePreview shows a pipeline result. Must run on the UI thread.
func (ic *ImageCanvas) UpdatePreview(preview image.Image) {
	if preview == nil {
		return
	}
	b := preview.Bounds()
	if b.Dx() > displayLimit || b.Dy() > displayLimit {
		preview = imaging.Fit(preview, displayLimit, displayLimit, imaging.Lanczos)
	}
	ic.previewImage.Image = preview
	ic.previewImage.Refresh()
}

// ClearPreview resets the result view to the placeholder.
func (ic *ImageCanvas) ClearPreview() {
	ic.previewImage.Image = placeholder()
	ic.previewImage.Refresh()
}
