package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

type discardSink struct{}

func (discardSink) SetTimerState(timer.Snapshot) {}
func (discardSink) SetWorkoutPlan(timer.Plan)    {}

func newTestServer(t *testing.T) (*Server, *timer.TimerManager, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	structure := workout.WorkoutStructure{
		NumExercises:            2,
		SetsPerExercise:         2,
		SetWorkSec:              30,
		RestBetweenSetsSec:      15,
		RestBetweenExercisesSec: 60,
		TotalMinutesCap:         10,
		ExerciseNames:           []string{"Squats", "Rows"},
	}
	// a long tick keeps the engine still while requests are checked
	tm := timer.NewTimerManager(discardSink{}, structure, time.Hour, log.New(io.Discard, "", 0))
	t.Cleanup(tm.Shutdown)
	return New(tm, logger), tm, &logs
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestNew_NilDependencies(t *testing.T) {
	assert.Panics(t, func() { New(nil, log.New(io.Discard, "", 0)) })
}

func TestHandleState(t *testing.T) {
	s, _, logs := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	snap := decode[timer.Snapshot](t, rec)
	assert.False(t, snap.Running)
	assert.Equal(t, "Set 1 – Work • Squats (1/2) — Set 1/2", snap.ContextualLabel)
	assert.Equal(t, "0:30", snap.TimeLeftText)
	assert.Equal(t, "10:00", snap.CapText)

	assert.Contains(t, logs.String(), "RemoteServer: GET /api/state -> 200")
}

func TestHandleControl(t *testing.T) {
	s, tm, _ := newTestServer(t)

	snap := decode[timer.Snapshot](t, do(t, s, http.MethodPost, "/api/start", ""))
	assert.True(t, snap.Running)
	assert.True(t, tm.Snapshot().Running)

	snap = decode[timer.Snapshot](t, do(t, s, http.MethodPost, "/api/pause", ""))
	assert.False(t, snap.Running)

	snap = decode[timer.Snapshot](t, do(t, s, http.MethodPost, "/api/toggle", ""))
	assert.True(t, snap.Running)

	snap = decode[timer.Snapshot](t, do(t, s, http.MethodPost, "/api/reset", ""))
	assert.False(t, snap.Running)
	assert.Equal(t, 0, snap.TotalElapsedSec)
}

func TestHandleControl_WrongMethod(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/start", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleStructure(t *testing.T) {
	s, tm, _ := newTestServer(t)

	got := decode[workout.WorkoutStructure](t, do(t, s, http.MethodGet, "/api/structure", ""))
	assert.Equal(t, 30, got.SetWorkSec)

	body := `{"numExercises":3,"setsPerExercise":1,"setWorkSec":20,"restBetweenSetsSec":0,
		"restBetweenExercisesSec":10,"totalMinutesCap":5,"repeatIndefinitely":false,
		"exerciseNames":["Plank"]}`
	rec := do(t, s, http.MethodPut, "/api/structure", body)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[timer.Snapshot](t, rec)
	assert.Equal(t, 1, snap.PhaseCount)
	assert.Equal(t, 3, snap.ExerciseCount)
	assert.Equal(t, []string{"Plank", "Exercise 2", "Exercise 3"}, tm.Structure().ExerciseNames)
}

func TestHandleStructure_BadJSON(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/structure", `{"numExercises":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/structure", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid JSON")
}

func TestHandleStructure_OutOfRange(t *testing.T) {
	s, tm, _ := newTestServer(t)
	before := tm.Plan()

	bodies := map[string]string{
		"sets per exercise": `{"numExercises":2,"setsPerExercise":1099511627776,"setWorkSec":30}`,
		"exercises":         `{"numExercises":2000000000,"setsPerExercise":2,"setWorkSec":30}`,
		"work seconds":      `{"numExercises":2,"setsPerExercise":2,"setWorkSec":86401}`,
	}
	for field, body := range bodies {
		t.Run(field, func(t *testing.T) {
			rec := do(t, s, http.MethodPut, "/api/structure", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], field)
		})
	}

	// the server is still up and the timer untouched
	rec := do(t, s, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before, tm.Plan())
}

func TestHandleExerciseNames(t *testing.T) {
	s, tm, _ := newTestServer(t)
	tm.Start()

	rec := do(t, s, http.MethodPut, "/api/exercises", `{"exerciseNames":["Lunges","Dips"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[timer.Snapshot](t, rec)
	assert.True(t, snap.Running, "renaming does not reset")
	assert.Equal(t, "Lunges", snap.ExerciseName)
}

func TestHandleExerciseNames_TooMany(t *testing.T) {
	s, tm, _ := newTestServer(t)

	names := make([]string, workout.MaxNumExercises+1)
	body, err := json.Marshal(map[string][]string{"exerciseNames": names})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPut, "/api/exercises", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Squats", "Rows"}, tm.Structure().ExerciseNames)
}

func TestHandlePhases(t *testing.T) {
	s, tm, _ := newTestServer(t)

	block := decode[workout.CompiledBlock](t, do(t, s, http.MethodGet, "/api/phases", ""))
	require.Len(t, block.Phases, 3)

	rec := do(t, s, http.MethodPost, "/api/phases", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	block = decode[workout.CompiledBlock](t, rec)
	require.Len(t, block.Phases, 4)
	assert.Equal(t, "New", block.Phases[3].Label)

	id := block.Phases[3].ID
	rec = do(t, s, http.MethodPut, "/api/phases/"+id, `{"label":"Finisher","seconds":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	block = decode[workout.CompiledBlock](t, rec)
	assert.Equal(t, "Finisher", block.Phases[3].Label)
	assert.Equal(t, 1, block.Phases[3].Seconds)

	rec = do(t, s, http.MethodDelete, "/api/phases/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, tm.Plan().Block.Phases, 3)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/phases/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/api/phases/missing", `{"label":"x","seconds":3}`).Code)
}

func TestHandlePhases_ConcurrentAppends(t *testing.T) {
	s, tm, _ := newTestServer(t)

	const requests = 25
	var wg sync.WaitGroup
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(t, s, http.MethodPost, "/api/phases", "")
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
	}
	wg.Wait()

	assert.Len(t, tm.Plan().Block.Phases, 3+requests)
}

func TestWriteJSON_EncodeErrorIsLogged(t *testing.T) {
	s, _, logs := newTestServer(t)

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, math.NaN())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[map[string]string](t, rec)["error"])
	assert.Contains(t, logs.String(), "RemoteServer: encode response: json: unsupported value: NaN")
}

func TestHandleIndex(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/state")
}

func TestCORS_Preflight(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodOptions, "/api/start", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartAndShutdown(t *testing.T) {
	s, _, _ := newTestServer(t)

	require.NoError(t, s.Start("127.0.0.1:0"))
	assert.Error(t, s.Start("127.0.0.1:0"))

	resp, err := http.Get("http://" + s.Addr() + "/api/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	s, _, _ := newTestServer(t)
	assert.Equal(t, "", s.Addr())
	assert.NoError(t, s.Shutdown(context.Background()))
}
