// Contour measurement: external contours, geometric metrics and overlay drawing
package contour

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"contour-inspector/internal/algorithms"
)

// Metrics describes one connected region that survived the minimum-area filter.
type Metrics struct {
	Area        float64
	Perimeter   float64
	BoundingBox image.Rectangle
	Index       int
}

func (m Metrics) X() int      { return m.BoundingBox.Min.X }
func (m Metrics) Y() int      { return m.BoundingBox.Min.Y }
func (m Metrics) Width() int  { return m.BoundingBox.Dx() }
func (m Metrics) Height() int { return m.BoundingBox.Dy() }

// Style controls how outlines and the highlight rectangle are drawn.
type Style struct {
	Outline            color.RGBA
	OutlineThickness   int
	Highlight          color.RGBA
	HighlightThickness int
}

// DefaultStyle draws green outlines and a thicker red highlight.
func DefaultStyle() Style {
	return Style{
		Outline:            color.RGBA{R: 0, G: 255, B: 0, A: 255},
		OutlineThickness:   2,
		Highlight:          color.RGBA{R: 255, G: 0, B: 0, A: 255},
		HighlightThickness: 3,
	}
}

// Engine measures contours and annotates a display copy of the image.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	style Style
}

// NewEngine creates an Engine. Non-positive thicknesses fall back to the defaults.
func NewEngine(style Style) *Engine {
	def := DefaultStyle()
	if style.OutlineThickness <= 0 {
		style.OutlineThickness = def.OutlineThickness
	}
	if style.HighlightThickness <= 0 {
		style.HighlightThickness = def.HighlightThickness
	}
	return &Engine{style: style}
}

// Style returns the drawing style in use.
func (e *Engine) Style() Style {
	return e.style
}

// Measure extracts external contours from src, keeps those whose area is strictly
// greater than minArea and draws their outlines on a 3-channel copy of src.
// The returned display Mat is owned by the caller.
func (e *Engine) Measure(src gocv.Mat, minArea float64) ([]Metrics, gocv.Mat, error) {
	if src.Empty() {
		return nil, gocv.NewMat(), &algorithms.ImagingError{Op: "measure", Err: algorithms.ErrEmptyImage}
	}

	binary, err := algorithms.Grayscale(src)
	if err != nil {
		return nil, gocv.NewMat(), err
	}
	defer binary.Close()

	if binary.Type() != gocv.MatTypeCV8UC1 {
		return nil, gocv.NewMat(), &algorithms.ImagingError{
			Op:  "measure",
			Err: fmt.Errorf("expected 8-bit single channel image, got type %v", binary.Type()),
		}
	}

	display, err := algorithms.ToBGR(src)
	if err != nil {
		return nil, gocv.NewMat(), err
	}

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var found []Metrics
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area <= minArea {
			continue
		}

		found = append(found, Metrics{
			Area:        area,
			Perimeter:   gocv.ArcLength(c, true),
			BoundingBox: gocv.BoundingRect(c),
			Index:       i,
		})
		if err := gocv.DrawContours(&display, contours, i, e.style.Outline, e.style.OutlineThickness); err != nil {
			display.Close()
			return nil, gocv.NewMat(), &algorithms.ImagingError{Op: "measure", Err: err}
		}
	}

	return found, display, nil
}

// DrawHighlight draws the bounding box of m onto display in the highlight style.
func (e *Engine) DrawHighlight(display *gocv.Mat, m Metrics) error {
	if display == nil || display.Empty() {
		return &algorithms.ImagingError{Op: "highlight", Err: algorithms.ErrEmptyImage}
	}
	if err := gocv.Rectangle(display, m.BoundingBox, e.style.Highlight, e.style.HighlightThickness); err != nil {
		return &algorithms.ImagingError{Op: "highlight", Err: err}
	}
	return nil
}

// Largest returns the record with the greatest area. On exact ties the earliest
// record wins. ok is false for an empty slice.
func Largest(metrics []Metrics) (best Metrics, ok bool) {
	for i, m := range metrics {
		if i == 0 || m.Area > best.Area {
			best = m
		}
	}
	return best, len(metrics) > 0
}
