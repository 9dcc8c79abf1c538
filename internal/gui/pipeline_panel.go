// internal/gui/pipeline_panel.go
// Step editor: choose a kind and option, set parameters, order the step list
package gui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"contour-inspector/internal/core"
)

var kindTitles = map[core.Kind]string{
	core.KindColorConvert:       "Color conversion",
	core.KindIllumination:       "Illumination",
	core.KindNoiseReduction:     "Noise reduction",
	core.KindEdgeEnhancement:    "Edge enhancement",
	core.KindAffine:             "Affine transform",
	core.KindContourMeasurement: "Contour measurement",
}

// PipelinePanel edits the step list of a core.Pipeline
type PipelinePanel struct {
	pipeline *core.Pipeline
	window   fyne.Window
	logger   logrus.FieldLogger

	container *fyne.Container

	kindSelect   *widget.Select
	optionSelect *widget.Select
	paramForm    *fyne.Container
	paramEntries []*widget.Entry

	stepList *widget.List
	steps    []core.Step
	selected int

	addButton    *widget.Button
	updateButton *widget.Button
	removeButton *widget.Button
	upButton     *widget.Button
	downButton   *widget.Button
	runButton    *widget.Button
	realtime     *widget.Check

	option core.OptionInfo
}

func NewPipelinePanel(pipeline *core.Pipeline, window fyne.Window, logger logrus.FieldLogger) *PipelinePanel {
	pp := &PipelinePanel{
		pipeline: pipeline,
		window:   window,
		logger:   logger,
		selected: -1,
	}
	pp.initializeUI()
	return pp
}

func (pp *PipelinePanel) initializeUI() {
	var kindLabels []string
	for _, k := range core.Kinds() {
		kindLabels = append(kindLabels, kindTitles[k])
	}

	pp.paramForm = container.NewVBox()
	pp.optionSelect = widget.NewSelect(nil, pp.onOptionChanged)
	pp.kindSelect = widget.NewSelect(kindLabels, pp.onKindChanged)

	pp.addButton = widget.NewButton("Add step", pp.addStep)
	pp.updateButton = widget.NewButton("Update", pp.updateStep)

	pp.stepList = widget.NewList(
		func() int { return len(pp.steps) },
		func() fyne.CanvasObject { return widget.NewLabel("step") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(pp.steps) {
				obj.(*widget.Label).SetText(fmt.Sprintf("%d. %s", id+1, stepText(pp.steps[id])))
			}
		},
	)
	pp.stepList.OnSelected = pp.onStepSelected
	pp.stepList.OnUnselected = func(widget.ListItemID) {
		pp.selected = -1
		pp.updateButtons()
	}

	pp.removeButton = widget.NewButton("Remove", pp.removeStep)
	pp.upButton = widget.NewButton("Up", func() { pp.moveStep(-1) })
	pp.downButton = widget.NewButton("Down", func() { pp.moveStep(1) })

	pp.realtime = widget.NewCheck("Realtime preview", func(on bool) {
		pp.pipeline.SetRealtimeMode(on)
	})
	pp.realtime.SetChecked(true)
	pp.runButton = widget.NewButton("Run", func() {
		pp.pipeline.Trigger()
	})
	pp.runButton.Importance = widget.HighImportance

	editor := container.NewVBox(
		widget.NewLabel("Kind"),
		pp.kindSelect,
		widget.NewLabel("Option"),
		pp.optionSelect,
		pp.paramForm,
		container.NewGridWithColumns(2, pp.addButton, pp.updateButton),
	)

	listControls := container.NewGridWithColumns(3, pp.removeButton, pp.upButton, pp.downButton)
	runControls := container.NewHBox(pp.realtime, pp.runButton)

	pp.container = container.NewBorder(
		widget.NewCard("New step", "", editor),
		container.NewVBox(listControls, runControls),
		nil, nil,
		widget.NewCard("Steps", "", pp.stepList),
	)

	pp.kindSelect.SetSelectedIndex(0)
	pp.updateButtons()
}

func (pp *PipelinePanel) GetContainer() fyne.CanvasObject {
	return pp.container
}

func stepText(s core.Step) string {
	info, ok := core.Lookup(s.Kind, s.Option)
	if !ok || len(info.Params) == 0 {
		return s.Label()
	}
	text := info.Label + " ("
	values := []float64{s.Param1, s.Param2}
	for i, p := range info.Params {
		if i > 0 {
			text += ", "
		}
		text += fmt.Sprintf("%s=%s", p.Name, formatParam(values[i], p))
	}
	return text + ")"
}

func formatParam(v float64, p core.ParameterInfo) string {
	if p.Integer {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (pp *PipelinePanel) selectedKind() (core.Kind, bool) {
	i := pp.kindSelect.SelectedIndex()
	kinds := core.Kinds()
	if i < 0 || i >= len(kinds) {
		return 0, false
	}
	return kinds[i], true
}

func (pp *PipelinePanel) onKindChanged(string) {
	kind, ok := pp.selectedKind()
	if !ok {
		return
	}
	var labels []string
	for _, o := range core.Options(kind) {
		labels = append(labels, o.Label)
	}
	pp.optionSelect.Options = labels
	pp.optionSelect.ClearSelected()
	pp.optionSelect.SetSelectedIndex(0)
}

func (pp *PipelinePanel) onOptionChanged(string) {
	kind, ok := pp.selectedKind()
	if !ok {
		return
	}
	options := core.Options(kind)
	i := pp.optionSelect.SelectedIndex()
	if i < 0 || i >= len(options) {
		return
	}
	pp.option = options[i]
	pp.buildParams(pp.option, nil)
}

// buildParams lays out one entry per parameter, prefilled with values or the defaults.
func (pp *PipelinePanel) buildParams(info core.OptionInfo, values []float64) {
	pp.paramForm.RemoveAll()
	pp.paramEntries = pp.paramEntries[:0]

	for i, p := range info.Params {
		v := p.Default
		if i < len(values) {
			v = values[i]
		}
		entry := widget.NewEntry()
		entry.SetText(formatParam(v, p))
		entry.SetPlaceHolder(fmt.Sprintf("%g to %g", p.Min, p.Max))
		pp.paramEntries = append(pp.paramEntries, entry)

		label := widget.NewLabel(p.Name)
		label.TextStyle = fyne.TextStyle{Bold: true}
		pp.paramForm.Add(label)
		pp.paramForm.Add(entry)
		if p.Description != "" {
			pp.paramForm.Add(widget.NewLabel(p.Description))
		}
	}
	pp.paramForm.Refresh()
}

// formStep reads the entries into a clamped step.
func (pp *PipelinePanel) formStep() (core.Step, error) {
	values := make([]float64, 0, len(pp.paramEntries))
	for i, entry := range pp.paramEntries {
		v, err := strconv.ParseFloat(entry.Text, 64)
		if err != nil {
			return core.Step{}, fmt.Errorf("%s: %q is not a number", pp.option.Params[i].Name, entry.Text)
		}
		values = append(values, v)
	}
	return pp.option.Step(values...), nil
}

func (pp *PipelinePanel) addStep() {
	step, err := pp.formStep()
	if err != nil {
		dialog.ShowError(err, pp.window)
		return
	}
	pp.pipeline.AddStep(step)
	pp.Refresh()
}

func (pp *PipelinePanel) updateStep() {
	if pp.selected < 0 {
		return
	}
	step, err := pp.formStep()
	if err != nil {
		dialog.ShowError(err, pp.window)
		return
	}
	if err := pp.pipeline.UpdateStep(pp.selected, step); err != nil {
		pp.logger.WithError(err).Warn("Step update rejected")
		return
	}
	pp.Refresh()
}

func (pp *PipelinePanel) removeStep() {
	if pp.selected < 0 {
		return
	}
	if err := pp.pipeline.RemoveStep(pp.selected); err != nil {
		pp.logger.WithError(err).Warn("Step removal rejected")
		return
	}
	pp.stepList.UnselectAll()
	pp.Refresh()
}

func (pp *PipelinePanel) moveStep(delta int) {
	if pp.selected < 0 {
		return
	}
	target := pp.selected + delta
	if err := pp.pipeline.MoveStep(pp.selected, delta); err != nil {
		return
	}
	pp.Refresh()
	pp.stepList.Select(target)
}

// onStepSelected loads the chosen step into the editor.
func (pp *PipelinePanel) onStepSelected(id widget.ListItemID) {
	if id >= len(pp.steps) {
		return
	}
	pp.selected = id
	step := pp.steps[id]

	kinds := core.Kinds()
	for i, k := range kinds {
		if k == step.Kind {
			pp.kindSelect.SetSelectedIndex(i)
			break
		}
	}
	for i, o := range core.Options(step.Kind) {
		if o.Option == step.Option || step.Kind == core.KindContourMeasurement {
			pp.optionSelect.SetSelectedIndex(i)
			pp.option = o
			pp.buildParams(o, []float64{step.Param1, step.Param2})
			break
		}
	}
	pp.updateButtons()
}

// Refresh reloads the step list from the pipeline. Must run on the UI thread.
func (pp *PipelinePanel) Refresh() {
	pp.steps = pp.pipeline.Steps()
	if pp.selected >= len(pp.steps) {
		pp.selected = -1
	}
	pp.stepList.Refresh()
	pp.updateButtons()
}

func (pp *PipelinePanel) updateButtons() {
	has := pp.selected >= 0
	for _, b := range []*widget.Button{pp.updateButton, pp.removeButton, pp.upButton, pp.downButton} {
		if has {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}
