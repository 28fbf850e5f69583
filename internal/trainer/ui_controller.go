package trainer

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/lowaak/interval-timer/internal/presets"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// TimerControl is the part of timer.TimerManager the controller drives
type TimerControl interface {
	Start() timer.Snapshot
	Pause() timer.Snapshot
	Reset() timer.Snapshot
	Toggle() timer.Snapshot
	ApplyStructure(structure workout.WorkoutStructure) (timer.Snapshot, bool)
	SetExerciseNames(names []string) timer.Snapshot
	EditBlock(edit timer.BlockEdit) (workout.CompiledBlock, bool)
	Structure() workout.WorkoutStructure
	Plan() timer.Plan
	Shutdown()
}

// PresetStore persists named structures
type PresetStore interface {
	Save(p presets.Preset) error
	Get(name string) (*presets.Preset, error)
	List() ([]string, error)
	Delete(name string) error
}

// UIController handles UI events and coordinates the timer, presets and UIModel
type UIController struct {
	model     *UIModel
	timer     TimerControl
	presets   PresetStore
	cues      *CuePlayer
	exportDir string
	logger    *log.Logger
}

// NewUIControllerArg holds the arguments for creating a new UIController
type NewUIControllerArg struct {
	Model     *UIModel
	Timer     TimerControl
	Presets   PresetStore
	CuePlayer *CuePlayer
	ExportDir string // Where ExportPreset writes YAML files
	Logger    *log.Logger
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(args NewUIControllerArg) *UIController {
	if args.Model == nil {
		panic("UIController: model cannot be nil")
	}
	if args.Timer == nil {
		panic("UIController: timer cannot be nil")
	}
	if args.Presets == nil {
		panic("UIController: presets cannot be nil")
	}
	if args.CuePlayer == nil {
		panic("UIController: cue player cannot be nil")
	}
	if args.Logger == nil {
		panic("UIController: logger cannot be nil")
	}

	c := &UIController{
		model:     args.Model,
		timer:     args.Timer,
		presets:   args.Presets,
		cues:      args.CuePlayer,
		exportDir: args.ExportDir,
		logger:    args.Logger,
	}
	c.model.SetAudioEnabled(c.cues.Enabled())
	c.RefreshPresets()
	return c
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	if mode == UIModePresets {
		c.RefreshPresets()
	}
	c.model.SetMode(mode)
}

// --- Timer Methods ---

// ToggleTimer starts the timer when paused and pauses it when running
func (c *UIController) ToggleTimer() {
	if state := c.timer.Toggle(); !state.Running && state.PhaseCount == 0 {
		c.logger.Printf("No phases to run - add one in Structure mode (press 1)")
	}
}

// StartTimer starts or resumes the timer
func (c *UIController) StartTimer() {
	c.timer.Start()
}

// PauseTimer pauses the timer
func (c *UIController) PauseTimer() {
	c.timer.Pause()
}

// ResetTimer stops the timer and rewinds to the first phase
func (c *UIController) ResetTimer() {
	c.timer.Reset()
}

// ToggleAudio mutes or unmutes cues
func (c *UIController) ToggleAudio() {
	enabled := !c.cues.Enabled()
	c.cues.SetEnabled(enabled)
	c.model.SetAudioEnabled(enabled)
	if enabled {
		c.logger.Printf("Audio cues on")
	} else {
		c.logger.Printf("Audio cues muted")
	}
}

// --- Structure Methods ---

// UpdateStructure applies an edited structure. The block is only rebuilt,
// and the timer only reset, when a field that shapes the block changed.
func (c *UIController) UpdateStructure(structure workout.WorkoutStructure) {
	if _, rebuilt := c.timer.ApplyStructure(structure); rebuilt {
		c.logger.Printf("Structure changed, intervals regenerated")
	}
}

// RenameExercises replaces exercise names without touching the timer position
func (c *UIController) RenameExercises(names []string) {
	c.timer.SetExerciseNames(names)
}

// UpdatePhase changes one generated phase. Editing resets the timer.
func (c *UIController) UpdatePhase(id, label string, seconds int) {
	c.editPhase(id, func(b workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return b.WithPhaseUpdated(id, label, seconds)
	})
}

// RemovePhase deletes one generated phase. Editing resets the timer.
func (c *UIController) RemovePhase(id string) {
	c.editPhase(id, func(b workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return b.WithPhaseRemoved(id)
	})
}

// AppendPhase adds a new work phase at the end of the block
func (c *UIController) AppendPhase() {
	c.timer.EditBlock(func(b workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return b.WithPhaseAppended(), true
	})
}

func (c *UIController) editPhase(id string, edit timer.BlockEdit) {
	if _, ok := c.timer.EditBlock(edit); !ok {
		c.logger.Printf("Phase %s not found", id)
	}
}

// --- Preset Methods ---

// RefreshPresets reloads the preset list from the store
func (c *UIController) RefreshPresets() {
	names, err := c.presets.List()
	if err != nil {
		c.logger.Printf("Failed to list presets: %v", err)
		return
	}
	c.model.SetPresetNames(names)
}

// SavePreset stores the current structure under name
func (c *UIController) SavePreset(name string) error {
	name, err := presets.NormalizeName(name)
	if err != nil {
		c.logger.Printf("Failed to save preset: %v", err)
		return err
	}
	if err := c.presets.Save(presets.Preset{Name: name, Structure: c.timer.Structure()}); err != nil {
		c.logger.Printf("Failed to save preset %q: %v", name, err)
		return err
	}
	c.logger.Printf("Preset saved: %s", name)
	c.RefreshPresets()
	c.model.SetLoadedPreset(name)
	return nil
}

// LoadPreset applies the named preset to the timer
func (c *UIController) LoadPreset(name string) error {
	p, err := c.presets.Get(name)
	if err != nil {
		c.logger.Printf("Failed to load preset %q: %v", name, err)
		return err
	}
	c.timer.ApplyStructure(p.Structure)
	c.model.SetLoadedPreset(p.Name)
	c.logger.Printf("Preset loaded: %s", p.Name)
	return nil
}

// DeletePreset removes the named preset
func (c *UIController) DeletePreset(name string) error {
	if err := c.presets.Delete(name); err != nil {
		c.logger.Printf("Failed to delete preset %q: %v", name, err)
		return err
	}
	c.logger.Printf("Preset deleted: %s", name)
	if c.model.GetPresets().Loaded == name {
		c.model.SetLoadedPreset("")
	}
	c.RefreshPresets()
	return nil
}

// ImportPresetFile stores the preset in a YAML file and applies it
func (c *UIController) ImportPresetFile(path string) error {
	p, err := presets.LoadFile(path)
	if err != nil {
		c.logger.Printf("Failed to import %s: %v", path, err)
		return err
	}
	if err := c.presets.Save(*p); err != nil {
		c.logger.Printf("Failed to save imported preset %q: %v", p.Name, err)
		return err
	}
	c.RefreshPresets()
	return c.LoadPreset(p.Name)
}

// ExportPreset writes the named preset to <exportDir>/<name>.yaml and returns the path
func (c *UIController) ExportPreset(name string) (string, error) {
	if c.exportDir == "" {
		return "", errors.New("no export directory configured")
	}
	p, err := c.presets.Get(name)
	if err != nil {
		c.logger.Printf("Failed to export preset %q: %v", name, err)
		return "", err
	}
	path := filepath.Join(c.exportDir, fmt.Sprintf("%s.yaml", filepath.Base(p.Name)))
	if err := presets.WriteFile(path, *p); err != nil {
		c.logger.Printf("Failed to export preset %q: %v", name, err)
		return "", err
	}
	c.logger.Printf("Preset %s exported to %s", p.Name, path)
	return path, nil
}

// RestoreLastPreset reloads the preset that was applied when the app last ran
func (c *UIController) RestoreLastPreset() {
	name := c.model.GetPresets().Loaded
	if name == "" {
		return
	}
	if err := c.LoadPreset(name); errors.Is(err, presets.ErrNotFound) {
		c.model.SetLoadedPreset("")
	}
}

// Shutdown stops the timer and the cue player
func (c *UIController) Shutdown() {
	c.timer.Shutdown()
	c.cues.Shutdown()
}
