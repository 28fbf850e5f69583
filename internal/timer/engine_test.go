package timer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/workout"
)

func scenarioStructure() workout.WorkoutStructure {
	return workout.WorkoutStructure{
		NumExercises:            2,
		SetsPerExercise:         2,
		SetWorkSec:              3,
		RestBetweenSetsSec:      2,
		RestBetweenExercisesSec: 5,
		TotalMinutesCap:         1,
		ExerciseNames:           []string{"Squats", "Rows"},
	}
}

func tickN(e *Engine, n int) []TickResult {
	results := make([]TickResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, e.Tick())
	}
	return results
}

func TestEngine_InitialState(t *testing.T) {
	e := NewEngine(scenarioStructure())
	s := e.State()

	assert.False(t, s.Running)
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 0, s.ExerciseIndex)
	assert.False(t, s.InBetweenExerciseRest)
	assert.Equal(t, 3, s.TimeLeftSec)
	assert.Equal(t, 0, s.TotalElapsedSec)
}

func TestEngine_Scenario(t *testing.T) {
	e := NewEngine(scenarioStructure())
	require.True(t, e.Start())

	tickN(e, 3)
	s := e.State()
	assert.Equal(t, 1, s.PhaseIndex)
	assert.Equal(t, 2, s.TimeLeftSec)
	assert.Equal(t, workout.RestBetweenSetsLabel, e.CurrentLabel())

	tickN(e, 2)
	s = e.State()
	assert.Equal(t, 2, s.PhaseIndex)
	assert.Equal(t, 3, s.TimeLeftSec)

	tickN(e, 3)
	s = e.State()
	assert.Equal(t, 8, s.TotalElapsedSec)
	assert.True(t, s.InBetweenExerciseRest)
	assert.Equal(t, 0, s.ExerciseIndex)
	assert.Equal(t, 5, s.TimeLeftSec)
	assert.Equal(t, workout.BetweenExercisesRestLabel, e.CurrentLabel())

	tickN(e, 5)
	s = e.State()
	assert.Equal(t, 13, s.TotalElapsedSec)
	assert.False(t, s.InBetweenExerciseRest)
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 3, s.TimeLeftSec)

	// second exercise: 3 + 2 + 3 seconds, then the cycle wraps
	tickN(e, 7)
	s = e.State()
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 2, s.PhaseIndex)
	assert.Equal(t, 1, s.TimeLeftSec)

	res := e.Tick()
	s = e.State()
	assert.True(t, res.Advanced)
	assert.Equal(t, 21, s.TotalElapsedSec)
	assert.Equal(t, 0, s.ExerciseIndex)
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 3, s.TimeLeftSec)
	assert.Equal(t, 1, s.CompletedCycles)
	assert.True(t, s.Running)

	// keeps cycling until the 60 s cap
	for e.State().Running {
		e.Tick()
		require.LessOrEqual(t, e.State().TotalElapsedSec, 60)
	}
	s = e.State()
	assert.Equal(t, 60, s.TotalElapsedSec)
	assert.Equal(t, 2, s.CompletedCycles)
	// 18 s into the third cycle, stopped on the rest between sets
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 1, s.PhaseIndex)
	assert.Equal(t, 0, s.TimeLeftSec)
	assert.Equal(t, 100, e.ProgressPct())

	res = e.Tick()
	assert.True(t, res.Skipped)
	assert.Equal(t, 60, e.State().TotalElapsedSec)
}

func TestEngine_CycleWrapWithoutCap(t *testing.T) {
	e := NewEngine(workout.WorkoutStructure{
		NumExercises:       2,
		SetsPerExercise:    1,
		SetWorkSec:         2,
		RepeatIndefinitely: true,
	})
	require.True(t, e.Start())

	tickN(e, 3)
	s := e.State()
	require.Equal(t, 1, s.ExerciseIndex)
	require.Equal(t, 0, s.PhaseIndex)
	require.Equal(t, 1, s.TimeLeftSec)

	res := e.Tick()
	s = e.State()
	assert.False(t, res.Stopped)
	assert.True(t, res.Advanced)
	assert.Equal(t, []Cue{CueTick, CueTransition}, res.Cues)
	assert.Equal(t, 0, s.ExerciseIndex)
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 2, s.TimeLeftSec)
	assert.Equal(t, 4, s.TotalElapsedSec)
	assert.True(t, s.Running)
}

func TestEngine_CapReachedOnCycleBoundary(t *testing.T) {
	e := NewEngine(workout.WorkoutStructure{
		NumExercises:    2,
		SetsPerExercise: 1,
		SetWorkSec:      2,
		TotalMinutesCap: 4.0 / 60,
	})
	require.True(t, e.Start())

	tickN(e, 3)
	require.Equal(t, 1, e.State().ExerciseIndex)
	require.Equal(t, 1, e.State().TimeLeftSec)

	res := e.Tick()
	s := e.State()
	assert.True(t, res.Stopped)
	assert.False(t, res.Advanced)
	assert.Equal(t, []Cue{CueTick}, res.Cues)
	assert.False(t, s.Running)
	// left exactly at the end of the cycle
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 0, s.TimeLeftSec)
	assert.Equal(t, 0, s.CompletedCycles)
}

func TestEngine_ZeroRestBetweenExercisesSkipsRest(t *testing.T) {
	e := NewEngine(workout.WorkoutStructure{
		NumExercises:       3,
		SetsPerExercise:    1,
		SetWorkSec:         2,
		RepeatIndefinitely: true,
	})
	e.Start()

	tickN(e, 2)
	s := e.State()
	assert.False(t, s.InBetweenExerciseRest)
	assert.Equal(t, 1, s.ExerciseIndex)
	assert.Equal(t, 2, s.TimeLeftSec)
}

func TestEngine_TickCues(t *testing.T) {
	e := NewEngine(workout.WorkoutStructure{
		NumExercises:       1,
		SetsPerExercise:    2,
		SetWorkSec:         5,
		RestBetweenSetsSec: 1,
		RepeatIndefinitely: true,
	})
	e.Start()

	results := tickN(e, 6)
	assert.Empty(t, results[0].Cues, "5 -> 4")
	assert.Equal(t, []Cue{CueTick}, results[1].Cues, "4 -> 3")
	assert.Equal(t, []Cue{CueTick}, results[2].Cues, "3 -> 2")
	assert.Equal(t, []Cue{CueTick}, results[3].Cues, "2 -> 1")
	assert.Equal(t, []Cue{CueTick, CueTransition}, results[4].Cues, "1 -> 0")
	// one second rest: both cues again
	assert.Equal(t, []Cue{CueTick, CueTransition}, results[5].Cues)
}

func TestEngine_ElapsedIsMonotonic(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.Start()

	last := 0
	for i := 0; i < 80; i++ {
		e.Tick()
		if i == 30 {
			e.Pause()
		}
		if i == 35 {
			e.Start()
		}
		elapsed := e.State().TotalElapsedSec
		require.GreaterOrEqual(t, elapsed, last)
		last = elapsed
	}

	e.Reset()
	assert.Equal(t, 0, e.State().TotalElapsedSec)
}

func TestEngine_PauseFreezesAndStartResumes(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.Start()
	tickN(e, 4)
	before := e.State()

	e.Pause()
	res := e.Tick()
	assert.True(t, res.Skipped)
	after := e.State()
	before.Running = false
	assert.Equal(t, before, after)

	require.True(t, e.Start())
	assert.Equal(t, 1, e.State().PhaseIndex, "resume does not re-seat")
	assert.Equal(t, 1, e.State().TimeLeftSec)
}

func TestEngine_Reset(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.Start()
	tickN(e, 10)

	e.Reset()
	assert.Equal(t, State{TimeLeftSec: 3}, e.State())
}

func TestEngine_SetStructureSelectiveRebuild(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.Start()
	tickN(e, 4)

	s := scenarioStructure()
	s.TotalMinutesCap = 10
	s.ExerciseNames = []string{"Lunges", "Dips"}
	assert.False(t, e.SetStructure(s))
	assert.True(t, e.State().Running)
	assert.Equal(t, 4, e.State().TotalElapsedSec)
	planned, capped := e.Structure().PlannedSeconds()
	assert.True(t, capped)
	assert.Equal(t, 600, planned)
	assert.Contains(t, e.ContextualLabel(), "Lunges")

	s.SetWorkSec = 10
	assert.True(t, e.SetStructure(s))
	assert.Equal(t, State{TimeLeftSec: 10}, e.State())
}

func TestEngine_SetExerciseNamesKeepsPosition(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.Start()
	tickN(e, 2)

	e.SetExerciseNames([]string{"Push-ups"})
	assert.Equal(t, 2, e.State().TotalElapsedSec)
	assert.True(t, e.State().Running)
	assert.Equal(t, "Push-ups", e.Structure().ExerciseName(0))
}

func TestEngine_StartReseatsFreshRun(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.state.PhaseIndex = 2
	e.state.TimeLeftSec = 0

	require.True(t, e.Start())
	assert.Equal(t, 0, e.State().PhaseIndex)
	assert.Equal(t, 3, e.State().TimeLeftSec)
}

func TestEngine_StartAfterCapResumesUntilNextTick(t *testing.T) {
	s := scenarioStructure()
	s.TotalMinutesCap = 2.0 / 60
	e := NewEngine(s)
	e.Start()
	tickN(e, 2)
	require.False(t, e.State().Running)

	require.True(t, e.Start())
	res := e.Tick()
	assert.True(t, res.Stopped)
	assert.Equal(t, 3, e.State().TotalElapsedSec)
}

func TestEngine_EmptyBlock(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.SetBlock(workout.CompiledBlock{BlockRepeats: 2})

	assert.False(t, e.Start())
	assert.False(t, e.State().Running)
	assert.True(t, e.Tick().Skipped)
	assert.Equal(t, 0, e.State().TimeLeftSec)

	e.Pause()
	e.Reset()
	assert.Equal(t, State{}, e.State())

	assert.Equal(t, "", e.CurrentLabel())
	assert.Equal(t, "", e.ContextualLabel())
	assert.Equal(t, "", e.NextLabel())
	snap := e.Snapshot()
	assert.Equal(t, "0:00", snap.TimeLeftText)
	assert.Equal(t, 0, snap.PhaseCount)
}

func TestEngine_SetBlockResetsPosition(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.Start()
	tickN(e, 4)

	edited := e.Block().WithPhaseAppended()
	e.SetBlock(edited)
	assert.Equal(t, State{TimeLeftSec: 3}, e.State())
	assert.Len(t, e.Block().Phases, 4)
}

func TestEngine_SetBlockClampsValues(t *testing.T) {
	e := NewEngine(scenarioStructure())
	e.SetBlock(workout.CompiledBlock{
		Phases: []workout.Phase{
			{ID: "a", Label: "Work", Seconds: math.MaxInt, Kind: workout.PhaseKindWork, SetNumber: 1},
			{ID: "b", Label: "Rest", Seconds: -4, Kind: workout.PhaseKindRest, SetNumber: 1},
		},
		BlockRepeats:        math.MaxInt,
		BetweenBlockRestSec: math.MaxInt,
	})

	block := e.Block()
	assert.Equal(t, workout.MaxPhaseSec, block.Phases[0].Seconds)
	assert.Equal(t, 1, block.Phases[1].Seconds)
	assert.Equal(t, workout.MaxNumExercises, block.BlockRepeats)
	assert.Equal(t, workout.MaxPhaseSec, block.BetweenBlockRestSec)
	assert.Equal(t, workout.MaxPhaseSec, e.State().TimeLeftSec)
}

func TestEngine_IndefiniteRepetition(t *testing.T) {
	s := scenarioStructure()
	s.RepeatIndefinitely = true
	e := NewEngine(s)
	e.Start()

	for i := 0; i < 500; i++ {
		res := e.Tick()
		require.False(t, res.Stopped)
		require.Equal(t, 0, e.ProgressPct())
	}
	assert.True(t, e.State().Running)
	assert.Equal(t, 500, e.State().TotalElapsedSec)
	assert.Equal(t, 500/21, e.State().CompletedCycles)
}
