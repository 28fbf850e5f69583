package trainer

import (
	"fmt"
	"log"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// Page names for tview.Pages
const (
	pageStructure  = "structure"
	pageTimer      = "timer"
	pageFullScreen = "fullscreen"
	pagePresets    = "presets"
	pageModal      = "modal"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger       *log.Logger
	app          *tview.Application
	model        *UIModel
	controller   *UIController
	currentMode  UIMode
	audioEnabled bool
	modalOpen    bool

	// Root containers
	pages       *tview.Pages
	contentFlex *tview.Flex // Mode pages on the left, logs on the right
	mainFlex    *tview.Flex // Header above contentFlex

	// Shared components (visible in all modes)
	header  *tview.TextView
	logView *tview.TextView

	// Structure mode components
	structureFlex       *tview.Flex
	structureForm       *tview.Form
	phaseList           *tview.List
	structureTabWidgets []tview.Primitive
	plan                timer.Plan

	// Timer mode components
	timerPanel *tview.TextView

	// Full Screen mode components
	fullScreenPanel *tview.TextView

	// Presets mode components
	presetsFlex       *tview.Flex
	presetList        *tview.List
	presetHelp        *tview.TextView
	presetsTabWidgets []tview.Primitive
	presets           PresetsState
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	return &CursesUIViewImpl{
		logger:       logger,
		app:          app,
		model:        model,
		currentMode:  -1,
		audioEnabled: true,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	ui.controller = controller

	// Don't use SetChangedFunc with app.Draw() on the log view: it can hang during
	// shutdown. BaseUIView draws after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	ui.pages = tview.NewPages()

	ui.initStructureMode(controller)
	ui.initTimerMode()
	ui.initFullScreenMode()
	ui.initPresetsMode(controller)

	ui.pages.AddPage(pageStructure, ui.structureFlex, true, true)
	ui.pages.AddPage(pageTimer, ui.timerPanel, true, false)
	ui.pages.AddPage(pageFullScreen, ui.fullScreenPanel, true, false)
	ui.pages.AddPage(pagePresets, ui.presetsFlex, true, false)

	ui.contentFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.header, 2, 0, false).
		AddItem(ui.contentFlex, 0, 1, true)

	ui.updateHeader()
}

// initStructureMode sets up the structure builder: a form for the numeric
// fields on the left and the generated phase list on the right
func (ui *CursesUIViewImpl) initStructureMode(controller *UIController) {
	ui.structureForm = tview.NewForm().
		AddInputField(labelExercises, "", 6, tview.InputFieldInteger, nil).
		AddInputField(labelSets, "", 6, tview.InputFieldInteger, nil).
		AddInputField(labelWork, "", 6, tview.InputFieldInteger, nil).
		AddInputField(labelRestSets, "", 6, tview.InputFieldInteger, nil).
		AddInputField(labelRestExercises, "", 6, tview.InputFieldInteger, nil).
		AddInputField(labelCap, "", 8, tview.InputFieldFloat, nil).
		AddCheckbox(labelRepeat, false, nil).
		AddInputField(labelNames, "", 40, nil, nil).
		AddButton("Apply", func() { ui.applyStructureForm(controller) })
	ui.structureForm.SetBorder(true).SetTitle(" Structure ")
	// Esc leaves the form so the global keys work again
	ui.structureForm.SetCancelFunc(func() {
		ui.app.SetFocus(ui.phaseList)
	})

	// Enter on the names field renames without regenerating intervals
	if names, ok := ui.structureForm.GetFormItemByLabel(labelNames).(*tview.InputField); ok {
		names.SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter {
				controller.RenameExercises(parseExerciseNames(names.GetText()))
			}
		})
	}

	ui.phaseList = tview.NewList().
		ShowSecondaryText(false).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			if index < len(ui.plan.Block.Phases) {
				ui.openPhaseEditor(controller, ui.plan.Block.Phases[index])
			}
		})
	ui.phaseList.SetBorder(true).SetTitle(" Generated Intervals ")

	instructions := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Tab[white] Form/Intervals  |  [yellow]Esc[white] Leave form  |  [yellow]Enter[white] Edit interval  |  [yellow]A[white] Add  |  [yellow]X[white] Delete")

	// The list comes first so mode keys work until the form is entered
	ui.structureTabWidgets = []tview.Primitive{ui.phaseList, ui.structureForm}

	columns := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.structureForm, 0, 1, false).
		AddItem(ui.phaseList, 0, 1, true)

	ui.structureFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructions, 1, 0, false).
		AddItem(columns, 0, 1, true)
}

func (ui *CursesUIViewImpl) initTimerMode() {
	ui.timerPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.timerPanel.SetBorder(true).SetTitle(" Timer ")
	ui.timerPanel.SetText(formatTimerText(timer.Snapshot{}, ui.audioEnabled))
}

func (ui *CursesUIViewImpl) initFullScreenMode() {
	ui.fullScreenPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.fullScreenPanel.SetBorder(true)
	ui.fullScreenPanel.SetText(formatFullScreenText(timer.Snapshot{}))
}

func (ui *CursesUIViewImpl) initPresetsMode(controller *UIController) {
	ui.presetList = tview.NewList().
		ShowSecondaryText(false).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			if index < len(ui.presets.Names) {
				controller.LoadPreset(ui.presets.Names[index])
			}
		})
	ui.presetList.SetBorder(true).SetTitle(" Presets ")

	ui.presetHelp = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.presetHelp.SetBorder(true).SetTitle(" Help ")

	ui.presetsTabWidgets = []tview.Primitive{ui.presetList}

	ui.presetsFlex = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.presetList, 0, 1, true).
		AddItem(ui.presetHelp, 0, 1, false)

	ui.updatePresetHelp()
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}
	ui.currentMode = mode

	switch mode {
	case UIModeStructure:
		ui.pages.SwitchToPage(pageStructure)
	case UIModeTimer:
		ui.pages.SwitchToPage(pageTimer)
	case UIModeFullScreen:
		ui.pages.SwitchToPage(pageFullScreen)
	case UIModePresets:
		ui.pages.SwitchToPage(pagePresets)
	}

	// Full screen gives the whole width to the countdown
	if mode == UIModeFullScreen {
		ui.contentFlex.ResizeItem(ui.logView, 0, 0)
	} else {
		ui.contentFlex.ResizeItem(ui.logView, 0, 1)
	}

	ui.updateHeader()
	ui.setFocusForCurrentMode()
	ui.app.Draw()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// SetAudioEnabled shows the mute state in the header
func (ui *CursesUIViewImpl) SetAudioEnabled(enabled bool) {
	ui.audioEnabled = enabled
	ui.updateHeader()
}

func (ui *CursesUIViewImpl) updateHeader() {
	if ui.header != nil {
		ui.header.SetText(formatHeader(ui.currentMode, ui.audioEnabled))
	}
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	widgets := ui.getTabWidgetsForCurrentMode()
	if len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
		return
	}
	ui.app.SetFocus(ui.pages)
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []tview.Primitive {
	switch ui.currentMode {
	case UIModeStructure:
		return ui.structureTabWidgets
	case UIModePresets:
		return ui.presetsTabWidgets
	default:
		return nil
	}
}

// isEditing reports whether key presses belong to a text field
func (ui *CursesUIViewImpl) isEditing() bool {
	return ui.modalOpen || (ui.currentMode == UIModeStructure && ui.structureForm.HasFocus())
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.isEditing() {
			return event
		}

		if event.Key() == tcell.KeyRune {
			// Number keys for mode switching; the controller updates the model, which notifies us
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				controller.OnModeChange(mode)
				return nil
			}
			switch event.Rune() {
			case KeyToggle:
				controller.ToggleTimer()
				return nil
			case KeyReset:
				controller.ResetTimer()
				return nil
			case KeyMute:
				controller.ToggleAudio()
				return nil
			}
		}

		// Tab to switch focus between widgets in current mode
		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			for i, w := range widgets {
				if w.HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%len(widgets)])
					break
				}
			}
			return nil
		}

		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if event.Key() != tcell.KeyRune {
			return event
		}

		// Mode-specific key handlers
		switch ui.currentMode {
		case UIModeStructure:
			switch event.Rune() {
			case KeyAppendPhase:
				controller.AppendPhase()
				return nil
			case KeyDeletePhase:
				if phase, ok := ui.selectedPhase(); ok {
					controller.RemovePhase(phase.ID)
				}
				return nil
			}
		case UIModePresets:
			switch event.Rune() {
			case KeySavePreset:
				ui.openPresetNameEditor(controller)
				return nil
			case KeyDeletePreset:
				if name, ok := ui.selectedPreset(); ok {
					controller.DeletePreset(name)
				}
				return nil
			case KeyExportPreset:
				if name, ok := ui.selectedPreset(); ok {
					controller.ExportPreset(name)
				}
				return nil
			}
		}

		return event
	})
}

func (ui *CursesUIViewImpl) selectedPhase() (workout.Phase, bool) {
	index := ui.phaseList.GetCurrentItem()
	if index < 0 || index >= len(ui.plan.Block.Phases) {
		return workout.Phase{}, false
	}
	return ui.plan.Block.Phases[index], true
}

func (ui *CursesUIViewImpl) selectedPreset() (string, bool) {
	index := ui.presetList.GetCurrentItem()
	if index < 0 || index >= len(ui.presets.Names) {
		return "", false
	}
	return ui.presets.Names[index], true
}

// --- Modal editors ---

func (ui *CursesUIViewImpl) openModal(form *tview.Form, width, height int) {
	form.SetCancelFunc(ui.closeModal)
	ui.modalOpen = true
	ui.pages.AddPage(pageModal, center(form, width, height), true, true)
	ui.app.SetFocus(form)
}

func (ui *CursesUIViewImpl) closeModal() {
	ui.pages.RemovePage(pageModal)
	ui.modalOpen = false
	ui.setFocusForCurrentMode()
}

func (ui *CursesUIViewImpl) openPhaseEditor(controller *UIController, phase workout.Phase) {
	form := tview.NewForm().
		AddInputField("Label", phase.Label, 30, nil, nil).
		AddInputField("Seconds", fmt.Sprint(phase.Seconds), 6, tview.InputFieldInteger, nil)
	form.AddButton("Save", func() {
		label := form.GetFormItemByLabel("Label").(*tview.InputField).GetText()
		seconds, err := parseSeconds(form.GetFormItemByLabel("Seconds").(*tview.InputField).GetText())
		if err != nil {
			ui.logger.Printf("UI: %v", err)
			return
		}
		ui.closeModal()
		controller.UpdatePhase(phase.ID, label, seconds)
	})
	form.AddButton("Cancel", ui.closeModal)
	form.SetBorder(true).SetTitle(" Edit Interval ")
	ui.openModal(form, 50, 9)
}

func (ui *CursesUIViewImpl) openPresetNameEditor(controller *UIController) {
	form := tview.NewForm().
		AddInputField("Name", ui.presets.Loaded, 30, nil, nil)
	form.AddButton("Save", func() {
		name := form.GetFormItemByLabel("Name").(*tview.InputField).GetText()
		if err := controller.SavePreset(name); err != nil {
			return
		}
		ui.closeModal()
	})
	form.AddButton("Cancel", ui.closeModal)
	form.SetBorder(true).SetTitle(" Save Preset ")
	ui.openModal(form, 50, 7)
}

// center places p in the middle of the screen at a fixed size
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// --- Structure mode ---

func (ui *CursesUIViewImpl) applyStructureForm(controller *UIController) {
	fields := structureFields{
		Exercises:     ui.inputText(labelExercises),
		Sets:          ui.inputText(labelSets),
		Work:          ui.inputText(labelWork),
		RestSets:      ui.inputText(labelRestSets),
		RestExercises: ui.inputText(labelRestExercises),
		Cap:           ui.inputText(labelCap),
		Names:         ui.inputText(labelNames),
	}
	if repeat, ok := ui.structureForm.GetFormItemByLabel(labelRepeat).(*tview.Checkbox); ok {
		fields.Repeat = repeat.IsChecked()
	}

	structure, err := fields.structure()
	if err != nil {
		ui.logger.Printf("UI: %v", err)
		return
	}
	controller.UpdateStructure(structure)
}

func (ui *CursesUIViewImpl) inputText(label string) string {
	if field, ok := ui.structureForm.GetFormItemByLabel(label).(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}

func (ui *CursesUIViewImpl) setInputText(label, text string) {
	if field, ok := ui.structureForm.GetFormItemByLabel(label).(*tview.InputField); ok {
		field.SetText(text)
	}
}

// UpdateWorkoutPlan refreshes the form and the generated phase list
func (ui *CursesUIViewImpl) UpdateWorkoutPlan(plan timer.Plan) {
	ui.plan = plan

	// Leave the form alone while the user is typing in it
	if !ui.structureForm.HasFocus() {
		fields := fieldsFromStructure(plan.Structure)
		ui.setInputText(labelExercises, fields.Exercises)
		ui.setInputText(labelSets, fields.Sets)
		ui.setInputText(labelWork, fields.Work)
		ui.setInputText(labelRestSets, fields.RestSets)
		ui.setInputText(labelRestExercises, fields.RestExercises)
		ui.setInputText(labelCap, fields.Cap)
		ui.setInputText(labelNames, fields.Names)
		if repeat, ok := ui.structureForm.GetFormItemByLabel(labelRepeat).(*tview.Checkbox); ok {
			repeat.SetChecked(fields.Repeat)
		}
	}

	selected := ui.phaseList.GetCurrentItem()
	ui.phaseList.Clear()
	for i, phase := range plan.Block.Phases {
		ui.phaseList.AddItem(formatPhaseItem(i, phase), "", 0, nil)
	}
	if selected < ui.phaseList.GetItemCount() {
		ui.phaseList.SetCurrentItem(selected)
	}
	ui.phaseList.SetTitle(fmt.Sprintf(" Generated Intervals (x%d, %s between) ",
		plan.Block.BlockRepeats, workout.FormatDuration(plan.Block.BetweenBlockRestSec)))
}

// --- Timer and Full Screen modes ---

// UpdateTimerState renders an engine snapshot on the timer and full screen pages
func (ui *CursesUIViewImpl) UpdateTimerState(state timer.Snapshot) {
	ui.timerPanel.SetText(formatTimerText(state, ui.audioEnabled))
	ui.fullScreenPanel.SetText(formatFullScreenText(state))
}

// --- Presets mode ---

// SetPresetList populates the preset list, keeping the selection on the same name
func (ui *CursesUIViewImpl) SetPresetList(state PresetsState) {
	previous, hadSelection := ui.selectedPreset()
	ui.presets = state

	ui.presetList.Clear()
	for _, name := range state.Names {
		text := tview.Escape(name)
		if name == state.Loaded {
			text = fmt.Sprintf("[green]●[white] %s", text)
		} else {
			text = "  " + text
		}
		ui.presetList.AddItem(text, "", 0, nil)
	}
	if hadSelection {
		if index := slices.Index(state.Names, previous); index >= 0 {
			ui.presetList.SetCurrentItem(index)
		}
	}
	ui.updatePresetHelp()
}

func (ui *CursesUIViewImpl) updatePresetHelp() {
	text := "\n"
	if len(ui.presets.Names) == 0 {
		text += "  [gray]No presets saved yet.[white]\n\n"
	}
	if ui.presets.Loaded != "" {
		text += fmt.Sprintf("  [gray]Loaded:[white] [yellow]%s[white]\n\n", tview.Escape(ui.presets.Loaded))
	}
	text += "  [yellow]Enter[white] Load selected\n"
	text += "  [yellow]S[white]     Save current structure\n"
	text += "  [yellow]D[white]     Delete selected\n"
	text += "  [yellow]E[white]     Export selected to YAML\n"
	ui.presetHelp.SetText(text)
}

// --- Log view ---

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
