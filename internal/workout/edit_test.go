package workout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiledBlock_WithPhaseUpdated(t *testing.T) {
	block := Compile(WorkoutStructure{NumExercises: 1, SetsPerExercise: 2, SetWorkSec: 30, RestBetweenSetsSec: 10})
	id := block.Phases[0].ID

	updated, ok := block.WithPhaseUpdated(id, "Sprint", 0)
	require.True(t, ok)
	assert.Equal(t, "Sprint", updated.Phases[0].Label)
	assert.Equal(t, 1, updated.Phases[0].Seconds)
	assert.Equal(t, id, updated.Phases[0].ID)

	// original untouched
	assert.Equal(t, "Set 1 – Work", block.Phases[0].Label)

	relabelled, ok := block.WithPhaseUpdated(id, "Active rest", 20)
	require.True(t, ok)
	assert.True(t, relabelled.Phases[0].IsRest())

	_, ok = block.WithPhaseUpdated("missing", "x", 5)
	assert.False(t, ok)
}

func TestCompiledBlock_WithPhaseRemoved(t *testing.T) {
	block := Compile(WorkoutStructure{NumExercises: 1, SetsPerExercise: 2, SetWorkSec: 30, RestBetweenSetsSec: 10})

	removed, ok := block.WithPhaseRemoved(block.Phases[1].ID)
	require.True(t, ok)
	require.Len(t, removed.Phases, 2)
	assert.Equal(t, 1, removed.Phases[0].SetNumber)
	assert.Equal(t, 2, removed.Phases[1].SetNumber)
	assert.Len(t, block.Phases, 3)

	for len(removed.Phases) > 0 {
		removed, ok = removed.WithPhaseRemoved(removed.Phases[0].ID)
		require.True(t, ok)
	}
	assert.True(t, removed.IsEmpty())

	_, ok = removed.WithPhaseRemoved("missing")
	assert.False(t, ok)
}

func TestCompiledBlock_WithPhaseAppended(t *testing.T) {
	block := Compile(WorkoutStructure{NumExercises: 1, SetsPerExercise: 1, SetWorkSec: 30})

	appended := block.WithPhaseAppended()
	require.Len(t, appended.Phases, 2)
	last := appended.Phases[1]
	assert.Equal(t, NewPhaseLabel, last.Label)
	assert.Equal(t, NewPhaseSeconds, last.Seconds)
	assert.Equal(t, PhaseKindWork, last.Kind)
	assert.Equal(t, 2, last.SetNumber)
	assert.NotEqual(t, appended.Phases[0].ID, last.ID)

	empty := CompiledBlock{}.WithPhaseAppended()
	require.Len(t, empty.Phases, 1)
	assert.Equal(t, 1, empty.Phases[0].SetNumber)
}

func TestPhaseKind_Text(t *testing.T) {
	raw, err := json.Marshal(Phase{Label: "Rest", Seconds: 5, Kind: PhaseKindRest})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"kind":"rest"`)

	var p Phase
	require.NoError(t, json.Unmarshal([]byte(`{"label":"x","seconds":3,"kind":"work"}`), &p))
	assert.Equal(t, PhaseKindWork, p.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"nap"}`), &p))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:00", FormatDuration(-4))
	assert.Equal(t, "0:09", FormatDuration(9))
	assert.Equal(t, "1:05", FormatDuration(65))
	assert.Equal(t, "59:59", FormatDuration(3599))
	assert.Equal(t, "1:00:00", FormatDuration(3600))
	assert.Equal(t, "2:03:04", FormatDuration(2*3600+3*60+4))
}

func TestFormatCap(t *testing.T) {
	assert.Equal(t, "30:00", FormatCap(1800, true))
	assert.Equal(t, "∞", FormatCap(0, false))
}
