package timer

import (
	"slices"

	"github.com/lowaak/interval-timer/internal/workout"
)

// State is the runtime position of the engine
type State struct {
	Running               bool
	PhaseIndex            int
	ExerciseIndex         int
	InBetweenExerciseRest bool
	TimeLeftSec           int
	TotalElapsedSec       int
	CompletedCycles       int
}

// TickResult tells the caller what a single tick did
type TickResult struct {
	Cues     []Cue
	Advanced bool // moved to a new phase, exercise or cycle
	Stopped  bool // the cap was reached on this tick
	Skipped  bool // engine was not running or had nothing to run
}

// Engine is the interval state machine. It is not safe for concurrent use;
// TimerManager serializes access to it.
type Engine struct {
	structure workout.WorkoutStructure
	block     workout.CompiledBlock
	state     State
}

// NewEngine compiles s and positions the engine at the start of the workout
func NewEngine(s workout.WorkoutStructure) *Engine {
	e := &Engine{}
	e.Rebuild(s)
	return e
}

// State returns a copy of the current position
func (e *Engine) State() State {
	return e.state
}

// Structure returns a copy of the structure the engine runs
func (e *Engine) Structure() workout.WorkoutStructure {
	return e.structure.Clone()
}

// Block returns a copy of the compiled block
func (e *Engine) Block() workout.CompiledBlock {
	return e.block.Clone()
}

// Rebuild recompiles the block from s and resets the position
func (e *Engine) Rebuild(s workout.WorkoutStructure) {
	e.structure = s.Clone()
	e.block = workout.Compile(s)
	e.resetPosition()
}

// SetStructure applies s, rebuilding only when a field that shapes the block
// changed. Cap, repeat flag and names are updated in place. Returns true if
// the block was rebuilt.
func (e *Engine) SetStructure(s workout.WorkoutStructure) bool {
	if !e.structure.SameBlockShape(s) {
		e.Rebuild(s)
		return true
	}
	e.structure = s.Clone()
	return false
}

// SetExerciseNames replaces the exercise names without touching the position
func (e *Engine) SetExerciseNames(names []string) {
	e.structure.ExerciseNames = slices.Clone(names)
}

// SetBlock installs a hand-edited block, clamped like a compiled one, and
// resets the position
func (e *Engine) SetBlock(b workout.CompiledBlock) {
	e.block = b.Clone()
	e.block.BlockRepeats = min(max(1, e.block.BlockRepeats), workout.MaxNumExercises)
	e.block.BetweenBlockRestSec = min(max(0, e.block.BetweenBlockRestSec), workout.MaxPhaseSec)
	for i := range e.block.Phases {
		e.block.Phases[i].Seconds = workout.ClampPhaseSec(e.block.Phases[i].Seconds)
	}
	e.resetPosition()
}

// Start begins or resumes the countdown. A run that has not accumulated any
// time is re-seated at the first phase. Returns false for an empty block.
func (e *Engine) Start() bool {
	if e.block.IsEmpty() {
		return false
	}
	if e.state.TotalElapsedSec == 0 {
		e.state.PhaseIndex = 0
		e.state.InBetweenExerciseRest = false
		e.state.TimeLeftSec = e.block.FirstSeconds()
	}
	e.state.Running = true
	return true
}

// Pause freezes all counters
func (e *Engine) Pause() {
	e.state.Running = false
}

// Reset stops the engine and returns to the first phase of the first exercise
func (e *Engine) Reset() {
	e.resetPosition()
}

func (e *Engine) resetPosition() {
	e.state = State{TimeLeftSec: e.block.FirstSeconds()}
}

// Tick advances the countdown by one second
func (e *Engine) Tick() TickResult {
	if !e.state.Running || e.block.IsEmpty() {
		return TickResult{Skipped: true}
	}

	var result TickResult
	prev := e.state.TimeLeftSec
	e.state.TimeLeftSec = max(0, prev-1)
	if prev > 0 && e.state.TimeLeftSec <= countdownCueSeconds {
		result.Cues = append(result.Cues, CueTick)
	}

	e.state.TotalElapsedSec++

	if planned, capped := e.structure.PlannedSeconds(); capped && e.state.TotalElapsedSec >= planned {
		e.state.Running = false
		result.Stopped = true
		return result
	}

	if e.state.TimeLeftSec > 0 {
		return result
	}

	e.advance()
	result.Advanced = true
	result.Cues = append(result.Cues, CueTransition)
	return result
}

// advance moves to whatever follows the phase that just ran out
func (e *Engine) advance() {
	s := &e.state
	switch {
	case !s.InBetweenExerciseRest && s.PhaseIndex < e.block.LastIndex():
		s.PhaseIndex++
		s.TimeLeftSec = e.block.Phases[s.PhaseIndex].Seconds
	case !s.InBetweenExerciseRest:
		if s.ExerciseIndex < e.block.BlockRepeats-1 {
			if e.block.BetweenBlockRestSec > 0 {
				s.InBetweenExerciseRest = true
				s.TimeLeftSec = e.block.BetweenBlockRestSec
			} else {
				e.startNextExercise()
			}
		} else {
			e.resetCycle()
		}
	default:
		s.InBetweenExerciseRest = false
		e.startNextExercise()
	}
}

func (e *Engine) startNextExercise() {
	e.state.ExerciseIndex++
	e.state.PhaseIndex = 0
	e.state.TimeLeftSec = e.block.FirstSeconds()
}

// resetCycle wraps to the first exercise; elapsed time keeps accumulating
func (e *Engine) resetCycle() {
	e.state.ExerciseIndex = 0
	e.state.PhaseIndex = 0
	e.state.InBetweenExerciseRest = false
	e.state.TimeLeftSec = e.block.FirstSeconds()
	e.state.CompletedCycles++
}
