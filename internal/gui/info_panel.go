// internal/gui/info_panel.go
// Detection results and image quality metrics
package gui

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"contour-inspector/internal/core"
	"contour-inspector/internal/metrics"
)

// MetricsPanel shows the measurement of the last run and its quality metrics
type MetricsPanel struct {
	container *fyne.Container

	detection      *widget.Label
	area           *widget.Label
	perimeter      *widget.Label
	box            *widget.Label
	candidates     *widget.Label
	qualityContent *fyne.Container
	score          *widget.Label
	duration       *widget.Label
}

func NewMetricsPanel() *MetricsPanel {
	mp := &MetricsPanel{}
	mp.initializeUI()
	return mp
}

func (mp *MetricsPanel) initializeUI() {
	mp.detection = widget.NewLabel("No run yet")
	mp.area = widget.NewLabel("-")
	mp.perimeter = widget.NewLabel("-")
	mp.box = widget.NewLabel("-")
	mp.candidates = widget.NewLabel("-")

	detectionForm := widget.NewForm(
		widget.NewFormItem("Status", mp.detection),
		widget.NewFormItem("Area (px²)", mp.area),
		widget.NewFormItem("Perimeter (px)", mp.perimeter),
		widget.NewFormItem("Bounding box", mp.box),
		widget.NewFormItem("Candidates", mp.candidates),
	)

	mp.qualityContent = container.NewVBox(widget.NewLabel("Quality metrics appear after processing."))
	mp.score = widget.NewLabel("")
	mp.duration = widget.NewLabel("")

	mp.container = container.NewVBox(
		widget.NewCard("Detection", "", detectionForm),
		widget.NewCard("Quality", "", container.NewVBox(mp.qualityContent, mp.score)),
		mp.duration,
	)
}

func (mp *MetricsPanel) GetContainer() fyne.CanvasObject {
	return container.NewScroll(mp.container)
}

// Update shows report. Must run on the UI thread.
func (mp *MetricsPanel) Update(report core.RunReport) {
	m := report.Measurement
	if m.Detected {
		mp.detection.SetText("Object detected")
		mp.area.SetText(fmt.Sprintf("%.1f", m.Area))
		mp.perimeter.SetText(fmt.Sprintf("%.1f", m.Perimeter))
		mp.box.SetText(fmt.Sprintf("%d x %d", m.Width, m.Height))
	} else {
		mp.detection.SetText("No object detected")
		mp.area.SetText("0")
		mp.perimeter.SetText("0")
		mp.box.SetText("-")
	}
	mp.candidates.SetText(fmt.Sprintf("%d", m.Candidates))

	mp.qualityContent.RemoveAll()
	mp.qualityContent.Add(metricRow("Contrast", report.Quality.Contrast))
	mp.qualityContent.Add(metricRow("Sharpness", report.Quality.Sharpness))
	mp.qualityContent.Add(metricRow("SNR", report.Quality.SNR))
	mp.qualityContent.Add(widget.NewSeparator())

	names := make([]string, 0, len(report.Report.Metrics))
	for name := range report.Report.Metrics {
		if name == "psnr" || name == "mse" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		mp.qualityContent.Add(metricRow(name, report.Report.Metrics[name]))
	}
	mp.qualityContent.Refresh()

	mp.score.SetText(fmt.Sprintf("Overall: %.0f%% (%s)", report.Report.OverallScore, report.Report.Level))
	mp.duration.SetText(fmt.Sprintf("Processed in %v", report.Duration.Round(1e6)))
}

// ShowSummary displays the aggregate of a capture session.
func (mp *MetricsPanel) ShowSummary(s metrics.Summary) {
	mp.detection.SetText(fmt.Sprintf("Session: %d/%d frames detected", s.Detections, s.Frames))
	mp.area.SetText(fmt.Sprintf("%.1f ± %.1f", s.MeanArea, s.StdDevArea))
	mp.perimeter.SetText(fmt.Sprintf("%.1f ± %.1f", s.MeanPerimeter, s.StdDevPerim))
	mp.box.SetText(fmt.Sprintf("area range %.0f – %.0f", s.MinArea, s.MaxArea))
	mp.candidates.SetText(fmt.Sprintf("rate %.0f%%", s.DetectionRate*100))
}

func (mp *MetricsPanel) Clear() {
	mp.detection.SetText("No run yet")
	for _, l := range []*widget.Label{mp.area, mp.perimeter, mp.box, mp.candidates} {
		l.SetText("-")
	}
	mp.qualityContent.RemoveAll()
	mp.qualityContent.Add(widget.NewLabel("Quality metrics appear after processing."))
	mp.score.SetText("")
	mp.duration.SetText("")
}

func metricRow(name string, value float64) fyne.CanvasObject {
	return container.NewGridWithColumns(2,
		widget.NewLabel(name),
		widget.NewLabel(fmt.Sprintf("%.3f", value)),
	)
}
