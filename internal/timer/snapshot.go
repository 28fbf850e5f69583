package timer

import (
	"fmt"
	"math"

	"github.com/lowaak/interval-timer/internal/workout"
)

// Snapshot is a consistent, read-only view of the engine for rendering
type Snapshot struct {
	Running               bool   `json:"running"`
	CurrentLabel          string `json:"currentLabel"`
	ContextualLabel       string `json:"contextualLabel"`
	NextLabel             string `json:"nextLabel"`
	ExerciseName          string `json:"exerciseName"`
	TimeLeftSec           int    `json:"timeLeftSec"`
	TotalElapsedSec       int    `json:"totalElapsedSec"`
	PhaseIndex            int    `json:"phaseIndex"`
	PhaseCount            int    `json:"phaseCount"`
	ExerciseIndex         int    `json:"exerciseIndex"`
	ExerciseCount         int    `json:"exerciseCount"`
	InBetweenExerciseRest bool   `json:"inBetweenExerciseRest"`
	CompletedCycles       int    `json:"completedCycles"`
	ProgressPct           int    `json:"progressPct"`
	PlannedSeconds        int    `json:"plannedSeconds"`
	Capped                bool   `json:"capped"`
	TimeLeftText          string `json:"timeLeftText"`
	ElapsedText           string `json:"elapsedText"`
	CapText               string `json:"capText"`
	Position              string `json:"position"`
}

// Snapshot derives the display projections from the current state
func (e *Engine) Snapshot() Snapshot {
	planned, capped := e.structure.PlannedSeconds()
	return Snapshot{
		Running:               e.state.Running,
		CurrentLabel:          e.CurrentLabel(),
		ContextualLabel:       e.ContextualLabel(),
		NextLabel:             e.NextLabel(),
		ExerciseName:          e.structure.ExerciseName(e.state.ExerciseIndex),
		TimeLeftSec:           e.state.TimeLeftSec,
		TotalElapsedSec:       e.state.TotalElapsedSec,
		PhaseIndex:            e.state.PhaseIndex,
		PhaseCount:            len(e.block.Phases),
		ExerciseIndex:         e.state.ExerciseIndex,
		ExerciseCount:         e.block.BlockRepeats,
		InBetweenExerciseRest: e.state.InBetweenExerciseRest,
		CompletedCycles:       e.state.CompletedCycles,
		ProgressPct:           e.ProgressPct(),
		PlannedSeconds:        planned,
		Capped:                capped,
		TimeLeftText:          workout.FormatDuration(e.state.TimeLeftSec),
		ElapsedText:           workout.FormatDuration(e.state.TotalElapsedSec),
		CapText:               workout.FormatCap(planned, capped),
		Position:              e.Position(),
	}
}

// currentPhase returns the active block phase, false during inter-exercise
// rest or for an empty block
func (e *Engine) currentPhase() (workout.Phase, bool) {
	if e.state.InBetweenExerciseRest {
		return workout.Phase{}, false
	}
	if e.state.PhaseIndex < 0 || e.state.PhaseIndex >= len(e.block.Phases) {
		return workout.Phase{}, false
	}
	return e.block.Phases[e.state.PhaseIndex], true
}

// CurrentLabel is the raw label of whatever is counting down
func (e *Engine) CurrentLabel() string {
	if e.state.InBetweenExerciseRest {
		return workout.BetweenExercisesRestLabel
	}
	phase, ok := e.currentPhase()
	if !ok {
		return ""
	}
	return phase.Label
}

// ContextualLabel adds the exercise name and, during work, the set counter
func (e *Engine) ContextualLabel() string {
	if e.block.IsEmpty() {
		return ""
	}
	ex := e.state.ExerciseIndex
	label := fmt.Sprintf("%s • %s (%d/%d)",
		e.CurrentLabel(), e.structure.ExerciseName(ex), ex+1, e.block.BlockRepeats)

	phase, ok := e.currentPhase()
	if !ok || phase.IsRest() {
		return label
	}
	return label + fmt.Sprintf(" — Set %d/%d", phase.SetNumber, e.structure.SetsForDisplay())
}

// NextLabel describes what follows the current phase, in the same order the
// transitions are evaluated
func (e *Engine) NextLabel() string {
	if e.block.IsEmpty() {
		return ""
	}
	s := e.state
	if s.InBetweenExerciseRest {
		return "Next exercise: " + e.structure.ExerciseName(s.ExerciseIndex+1)
	}
	if s.PhaseIndex < e.block.LastIndex() {
		return e.block.Phases[s.PhaseIndex+1].Label
	}
	if s.ExerciseIndex < e.block.BlockRepeats-1 {
		next := e.structure.ExerciseName(s.ExerciseIndex + 1)
		if e.block.BetweenBlockRestSec > 0 {
			return workout.BetweenExercisesRestLabel + " → " + next
		}
		return e.block.FirstLabel() + " — " + next
	}
	return fmt.Sprintf("%s — %s (cycle)", e.block.FirstLabel(), e.structure.ExerciseName(0))
}

// ProgressPct is elapsed time as a share of the cap, 0 when uncapped
func (e *Engine) ProgressPct() int {
	planned, capped := e.structure.PlannedSeconds()
	if !capped {
		return 0
	}
	pct := math.Round(float64(e.state.TotalElapsedSec) / float64(planned) * 100)
	return int(math.Min(100, pct))
}

// Position renders "(Exercise x/y, Step a/b[, rest])"
func (e *Engine) Position() string {
	rest := ""
	if e.state.InBetweenExerciseRest {
		rest = ", rest"
	}
	return fmt.Sprintf("(Exercise %d/%d, Step %d/%d%s)",
		e.state.ExerciseIndex+1, max(1, e.block.BlockRepeats),
		e.state.PhaseIndex+1, max(1, len(e.block.Phases)), rest)
}
