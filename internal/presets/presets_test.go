package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/workout"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func tabata() Preset {
	return Preset{
		Name: "Tabata",
		Structure: workout.WorkoutStructure{
			NumExercises:            2,
			SetsPerExercise:         8,
			SetWorkSec:              20,
			RestBetweenSetsSec:      10,
			RestBetweenExercisesSec: 60,
			TotalMinutesCap:         9,
			ExerciseNames:           []string{"Burpees", "Mountain climbers"},
		},
	}
}

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "presets.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(tabata()))
	require.NoError(t, s.Close())

	// reopening keeps data and does not re-run migrations
	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Tabata"}, names)
}

func TestStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(tabata()))

	p, err := s.Get("Tabata")
	require.NoError(t, err)
	assert.Equal(t, "Tabata", p.Name)
	assert.Equal(t, tabata().Structure, p.Structure)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestStore_SaveUpserts(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(tabata()))

	updated := tabata()
	updated.Structure.SetsPerExercise = 4
	updated.Structure.RepeatIndefinitely = true
	updated.Structure.ExerciseNames = []string{"Jump squats"}
	require.NoError(t, s.Save(updated))

	p, err := s.Get("Tabata")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Structure.SetsPerExercise)
	assert.True(t, p.Structure.RepeatIndefinitely)
	assert.Equal(t, []string{"Jump squats"}, p.Structure.ExerciseNames)

	names, err := s.List()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestStore_NamesAreTrimmed(t *testing.T) {
	s := newTestStore(t)
	p := tabata()
	p.Name = "  EMOM 20  "
	require.NoError(t, s.Save(p))

	got, err := s.Get("EMOM 20 ")
	require.NoError(t, err)
	assert.Equal(t, "EMOM 20", got.Name)
}

func TestStore_EmptyNameRejected(t *testing.T) {
	s := newTestStore(t)
	p := tabata()
	p.Name = "   "
	assert.ErrorIs(t, s.Save(p), ErrEmptyName)

	_, err := s.Get("")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, s.Delete(""), ErrEmptyName)
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListOrdered(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"Legs", "Arms", "Core"} {
		p := tabata()
		p.Name = name
		require.NoError(t, s.Save(p))
	}

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Arms", "Core", "Legs"}, names)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(tabata()))

	require.NoError(t, s.Delete("Tabata"))
	_, err := s.Get("Tabata")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM preset_exercises`).Scan(&count))
	assert.Equal(t, 0, count, "exercise names cascade with the preset")

	assert.ErrorIs(t, s.Delete("Tabata"), ErrNotFound)
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tabata.yaml")
	require.NoError(t, WriteFile(path, tabata()))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Tabata", p.Name)
	assert.Equal(t, tabata().Structure, p.Structure)
}

func TestLoadFile_NameFromFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiit.yaml")
	doc := `
structure:
  num_exercises: 4
  sets_per_exercise: 3
  set_work_sec: 40
  rest_between_sets_sec: 20
  rest_between_exercises_sec: 60
  total_minutes_cap: 20
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hiit", p.Name)
	assert.Equal(t, 40, p.Structure.SetWorkSec)
	assert.Nil(t, p.Structure.ExerciseNames)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("structure: [not, a, map]"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)

	huge := filepath.Join(t.TempDir(), "huge.yaml")
	require.NoError(t, os.WriteFile(huge, []byte("structure:\n  sets_per_exercise: 1099511627776\n"), 0o644))
	_, err = LoadFile(huge)
	assert.ErrorIs(t, err, workout.ErrOutOfRange)
}
