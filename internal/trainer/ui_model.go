package trainer

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/timer"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode         UIMode
	AudioEnabled bool
}

// PresetsState is the preset list shown in Presets mode
type PresetsState struct {
	Names  []string
	Loaded string // Name of the preset currently applied, "" when none
}

// UIModel holds everything the view renders. It is the timer's StateSink:
// the TimerManager pushes every snapshot and plan here and the model fans
// them out to the view.
type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	timerStateEvent       *events.ChannelEvent[timer.Snapshot]
	timerState            timer.Snapshot
	workoutPlanEvent      *events.ChannelEvent[timer.Plan]
	workoutPlan           timer.Plan
	presetsEvent          *events.ChannelEvent[PresetsState]
	presets               PresetsState
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

var _ timer.StateSink = (*UIModel)(nil)

// NewUIModel creates the model. statePath is the persisted UI state file;
// "" keeps UI state in memory only.
func NewUIModel(logger *log.Logger, uiLogChan <-chan string, statePath string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeStructure, AudioEnabled: true},
		timerStateEvent:       events.NewChannelEvent[timer.Snapshot](true),
		workoutPlanEvent:      events.NewChannelEvent[timer.Plan](true),
		presetsEvent:          events.NewChannelEvent[PresetsState](true),
		persistence:           newUIModelPersistence(statePath, logger),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}
	if mode, ok := model.persistence.lastMode(); ok {
		model.uiState.Mode = mode
	}
	model.presets.Loaded = model.persistence.lastPreset()

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, "UIModel log reader", func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode, remembers it and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	m.persistence.setLastMode(mode)
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// SetAudioEnabled records whether cues are audible and notifies listeners
func (m *UIModel) SetAudioEnabled(enabled bool) {
	m.mu.Lock()
	if m.uiState.AudioEnabled == enabled {
		m.mu.Unlock()
		return
	}
	m.uiState.AudioEnabled = enabled
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// --- Timer ---

// ListenToTimerState registers a channel to receive every engine snapshot
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToTimerState(ch chan<- timer.Snapshot) func() {
	return m.timerStateEvent.Listen(ch)
}

// GetTimerState returns the latest engine snapshot
func (m *UIModel) GetTimerState() timer.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timerState
}

// SetTimerState stores state and notifies listeners. Called from the timer goroutine.
func (m *UIModel) SetTimerState(state timer.Snapshot) {
	m.mu.Lock()
	m.timerState = state
	m.mu.Unlock()

	m.timerStateEvent.Notify(state)
}

// ListenToWorkoutPlan registers a channel to receive structure and block changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToWorkoutPlan(ch chan<- timer.Plan) func() {
	return m.workoutPlanEvent.Listen(ch)
}

// GetWorkoutPlan returns the current structure and compiled block
func (m *UIModel) GetWorkoutPlan() timer.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workoutPlan
}

// SetWorkoutPlan stores plan and notifies listeners. Called from the timer goroutine.
func (m *UIModel) SetWorkoutPlan(plan timer.Plan) {
	m.mu.Lock()
	m.workoutPlan = plan
	m.mu.Unlock()

	m.workoutPlanEvent.Notify(plan)
}

// --- Presets ---

// ListenToPresets registers a channel to receive preset list changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToPresets(ch chan<- PresetsState) func() {
	return m.presetsEvent.Listen(ch)
}

// GetPresets returns a copy of the preset list state
func (m *UIModel) GetPresets() PresetsState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyPresets()
}

// SetPresetNames replaces the preset list and notifies listeners
func (m *UIModel) SetPresetNames(names []string) {
	m.mu.Lock()
	m.presets.Names = slices.Clone(names)
	state := m.copyPresets()
	m.mu.Unlock()

	m.presetsEvent.Notify(state)
}

// SetLoadedPreset records the applied preset, remembers it and notifies listeners
func (m *UIModel) SetLoadedPreset(name string) {
	m.mu.Lock()
	m.presets.Loaded = name
	m.persistence.setLastPreset(name)
	state := m.copyPresets()
	m.mu.Unlock()

	m.presetsEvent.Notify(state)
}

// copyPresets must be called with mu held
func (m *UIModel) copyPresets() PresetsState {
	return PresetsState{Names: slices.Clone(m.presets.Names), Loaded: m.presets.Loaded}
}

// --- Log ---

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n >= len(m.logLines) {
		return slices.Clone(m.logLines)
	}
	return slices.Clone(m.logLines[len(m.logLines)-n:])
}
