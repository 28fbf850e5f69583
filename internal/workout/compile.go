package workout

import "slices"

// CompiledBlock is the phase list for one exercise plus how often it repeats.
// Treat it as immutable; the With* helpers return modified copies.
type CompiledBlock struct {
	Phases              []Phase `json:"phases"`
	BlockRepeats        int     `json:"blockRepeats"`
	BetweenBlockRestSec int     `json:"betweenBlockRestSec"`
}

// Compile turns a structure into the phases of a single exercise.
//
// Each set contributes a work phase; a rest phase follows every set except the
// last, and only when the rest is longer than zero seconds. Inputs below their
// minimums or above the Max bounds are clamped rather than rejected.
func Compile(s WorkoutStructure) CompiledBlock {
	sets := clampSets(s.SetsPerExercise)
	work := ClampPhaseSec(s.SetWorkSec)
	rest := min(s.RestBetweenSetsSec, MaxPhaseSec)

	phases := make([]Phase, 0, 2*sets-1)
	for set := 1; set <= sets; set++ {
		phases = append(phases, Phase{
			ID:        newPhaseID(),
			Label:     WorkLabel(set),
			Seconds:   work,
			Kind:      PhaseKindWork,
			SetNumber: set,
		})
		if set < sets && rest > 0 {
			phases = append(phases, Phase{
				ID:        newPhaseID(),
				Label:     RestBetweenSetsLabel,
				Seconds:   rest,
				Kind:      PhaseKindRest,
				SetNumber: set,
			})
		}
	}

	return CompiledBlock{
		Phases:              phases,
		BlockRepeats:        clampExercises(s.NumExercises),
		BetweenBlockRestSec: min(max(0, s.RestBetweenExercisesSec), MaxPhaseSec),
	}
}

// IsEmpty reports whether the block has no phases to run
func (b CompiledBlock) IsEmpty() bool {
	return len(b.Phases) == 0
}

// LastIndex is the index of the final phase, -1 for an empty block
func (b CompiledBlock) LastIndex() int {
	return len(b.Phases) - 1
}

// FirstSeconds returns the duration of the first phase, or 0 when empty
func (b CompiledBlock) FirstSeconds() int {
	if b.IsEmpty() {
		return 0
	}
	return b.Phases[0].Seconds
}

// FirstLabel returns the label of the first phase, or "" when empty
func (b CompiledBlock) FirstLabel() string {
	if b.IsEmpty() {
		return ""
	}
	return b.Phases[0].Label
}

// Clone returns a deep copy of the block
func (b CompiledBlock) Clone() CompiledBlock {
	b.Phases = slices.Clone(b.Phases)
	return b
}
