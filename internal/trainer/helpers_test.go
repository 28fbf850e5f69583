package trainer

import (
	"bytes"
	"errors"
	"io"
	"log"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/presets"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// syncBuffer is a bytes.Buffer safe to read while other goroutines log into it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeBeeper struct {
	mu       sync.Mutex
	count    int
	err      error
	panicOne bool
}

func (b *fakeBeeper) Beep() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.panicOne {
		b.panicOne = false
		panic("speaker unplugged")
	}
	b.count++
	return b.err
}

func (b *fakeBeeper) beeps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

var errBeep = errors.New("no terminal")

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestModel(t *testing.T, statePath string) (*UIModel, chan string) {
	t.Helper()
	logs := make(chan string)
	model := NewUIModel(discardLogger(), logs, statePath)
	t.Cleanup(model.Shutdown)
	return model, logs
}

// testStructure compiles to 3 phases: work, rest, work
func testStructure() workout.WorkoutStructure {
	return workout.WorkoutStructure{
		NumExercises:            2,
		SetsPerExercise:         2,
		SetWorkSec:              30,
		RestBetweenSetsSec:      15,
		RestBetweenExercisesSec: 60,
		TotalMinutesCap:         10,
		ExerciseNames:           []string{"Squats", "Rows"},
	}
}

type controllerFixture struct {
	model      *UIModel
	timer      *timer.TimerManager
	store      *presets.Store
	beeper     *fakeBeeper
	cues       *CuePlayer
	logs       *syncBuffer
	exportDir  string
	controller *UIController
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	dir := t.TempDir()
	f := &controllerFixture{
		beeper:    &fakeBeeper{},
		logs:      &syncBuffer{},
		exportDir: filepath.Join(dir, "exports"),
	}
	f.model, _ = newTestModel(t, filepath.Join(dir, UIStateFileName))

	store, err := presets.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	f.store = store

	// a long tick keeps the engine still while the controller is checked
	f.timer = timer.NewTimerManager(f.model, testStructure(), time.Hour, discardLogger())
	f.cues = NewCuePlayer(f.beeper, true, discardLogger())

	f.controller = NewUIController(NewUIControllerArg{
		Model:     f.model,
		Timer:     f.timer,
		Presets:   f.store,
		CuePlayer: f.cues,
		ExportDir: f.exportDir,
		Logger:    log.New(f.logs, "", 0),
	})
	t.Cleanup(f.controller.Shutdown)
	return f
}
