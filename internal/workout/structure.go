package workout

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Default values for a new structure, matching the builder form's initial state
const (
	DefaultNumExercises            = 5
	DefaultSetsPerExercise         = 3
	DefaultSetWorkSec              = 45
	DefaultRestBetweenSetsSec      = 60
	DefaultRestBetweenExercisesSec = 60
	DefaultTotalMinutesCap         = 30
)

// Upper bounds for structure fields. Compile clamps to them like it clamps
// to the minimums; Validate rejects values above them at the input edges.
const (
	MaxNumExercises    = 100
	MaxSetsPerExercise = 100
	MaxPhaseSec        = 24 * 60 * 60
)

// maxPlannedSeconds keeps an absurd cap from overflowing int arithmetic
const maxPlannedSeconds = math.MaxInt32

// ErrOutOfRange is wrapped by Validate for fields above their bound
var ErrOutOfRange = errors.New("value out of range")

// WorkoutStructure describes a workout as entered by the user
type WorkoutStructure struct {
	NumExercises            int      `json:"numExercises" yaml:"num_exercises"`
	SetsPerExercise         int      `json:"setsPerExercise" yaml:"sets_per_exercise"`
	SetWorkSec              int      `json:"setWorkSec" yaml:"set_work_sec"`
	RestBetweenSetsSec      int      `json:"restBetweenSetsSec" yaml:"rest_between_sets_sec"`
	RestBetweenExercisesSec int      `json:"restBetweenExercisesSec" yaml:"rest_between_exercises_sec"`
	TotalMinutesCap         float64  `json:"totalMinutesCap" yaml:"total_minutes_cap"`
	RepeatIndefinitely      bool     `json:"repeatIndefinitely" yaml:"repeat_indefinitely"`
	ExerciseNames           []string `json:"exerciseNames" yaml:"exercise_names"`
}

// DefaultStructure returns the structure a fresh session starts with
func DefaultStructure() WorkoutStructure {
	return WorkoutStructure{
		NumExercises:            DefaultNumExercises,
		SetsPerExercise:         DefaultSetsPerExercise,
		SetWorkSec:              DefaultSetWorkSec,
		RestBetweenSetsSec:      DefaultRestBetweenSetsSec,
		RestBetweenExercisesSec: DefaultRestBetweenExercisesSec,
		TotalMinutesCap:         DefaultTotalMinutesCap,
		ExerciseNames:           ResizeExerciseNames(nil, DefaultNumExercises),
	}
}

// Clone returns a copy that shares no memory with s
func (s WorkoutStructure) Clone() WorkoutStructure {
	s.ExerciseNames = slices.Clone(s.ExerciseNames)
	return s
}

// PlannedSeconds returns the cap in seconds. capped is false when the
// structure repeats indefinitely, in which case seconds is meaningless.
func (s WorkoutStructure) PlannedSeconds() (seconds int, capped bool) {
	if s.RepeatIndefinitely {
		return 0, false
	}
	minutes := s.TotalMinutesCap
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		minutes = 1
	}
	secs := math.Round(minutes * 60)
	if secs < 1 {
		return 1, true
	}
	if secs > maxPlannedSeconds {
		return maxPlannedSeconds, true
	}
	return int(secs), true
}

// SameBlockShape reports whether s and other compile to the same phase
// sequence. Cap, repeat flag and exercise names do not affect the block.
func (s WorkoutStructure) SameBlockShape(other WorkoutStructure) bool {
	return s.NumExercises == other.NumExercises &&
		s.SetsPerExercise == other.SetsPerExercise &&
		s.SetWorkSec == other.SetWorkSec &&
		s.RestBetweenSetsSec == other.RestBetweenSetsSec &&
		s.RestBetweenExercisesSec == other.RestBetweenExercisesSec
}

// ExerciseName returns the configured name for the 0-based exercise index,
// or a generated "Exercise N" when the list is too short.
func (s WorkoutStructure) ExerciseName(index int) string {
	if index >= 0 && index < len(s.ExerciseNames) {
		return s.ExerciseNames[index]
	}
	return defaultExerciseName(index)
}

// Validate reports fields above their upper bound. Values below the minimums
// are not errors; Compile clamps them.
func (s WorkoutStructure) Validate() error {
	limits := []struct {
		name  string
		value int
		limit int
	}{
		{"exercises", s.NumExercises, MaxNumExercises},
		{"sets per exercise", s.SetsPerExercise, MaxSetsPerExercise},
		{"work seconds", s.SetWorkSec, MaxPhaseSec},
		{"rest between sets seconds", s.RestBetweenSetsSec, MaxPhaseSec},
		{"rest between exercises seconds", s.RestBetweenExercisesSec, MaxPhaseSec},
	}
	for _, l := range limits {
		if l.value > l.limit {
			return fmt.Errorf("%s must be at most %d, got %d: %w", l.name, l.limit, l.value, ErrOutOfRange)
		}
	}
	return nil
}

// SetsForDisplay is SetsPerExercise clamped the same way the compiler clamps it
func (s WorkoutStructure) SetsForDisplay() int {
	return clampSets(s.SetsPerExercise)
}

func clampSets(sets int) int {
	return min(max(1, sets), MaxSetsPerExercise)
}

func clampExercises(n int) int {
	return min(max(1, n), MaxNumExercises)
}

// ClampPhaseSec bounds a materialized phase duration to [1, MaxPhaseSec]
func ClampPhaseSec(sec int) int {
	return min(max(1, sec), MaxPhaseSec)
}

// ResizeExerciseNames grows names with generated defaults or truncates it so
// that it has exactly n entries, n being capped at MaxNumExercises. The input
// slice is not modified.
func ResizeExerciseNames(names []string, n int) []string {
	n = min(max(0, n), MaxNumExercises)
	result := make([]string, n)
	copy(result, names)
	for i := len(names); i < n; i++ {
		result[i] = defaultExerciseName(i)
	}
	return result
}

func defaultExerciseName(index int) string {
	return fmt.Sprintf("Exercise %d", index+1)
}
