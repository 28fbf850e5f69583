package remote

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

const maxBodyBytes = 64 << 10

type phaseRequest struct {
	Label   string `json:"label"`
	Seconds int    `json:"seconds"`
}

type namesRequest struct {
	ExerciseNames []string `json:"exerciseNames"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.timer.Snapshot())
}

func (s *Server) handleControl(op func() timer.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, op())
	}
}

func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.timer.Plan().Structure)
}

func (s *Server) handlePutStructure(w http.ResponseWriter, r *http.Request) {
	var structure workout.WorkoutStructure
	if !s.decodeJSON(w, r, &structure) {
		return
	}
	if err := structure.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.timer.SetStructure(structure))
}

func (s *Server) handlePutExerciseNames(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.ExerciseNames) > workout.MaxNumExercises {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d exercise names allowed", workout.MaxNumExercises))
		return
	}
	s.writeJSON(w, http.StatusOK, s.timer.SetExerciseNames(req.ExerciseNames))
}

func (s *Server) handleGetPhases(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.timer.Plan().Block)
}

func (s *Server) handleAppendPhase(w http.ResponseWriter, r *http.Request) {
	block, _ := s.timer.EditBlock(func(b workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return b.WithPhaseAppended(), true
	})
	s.writeJSON(w, http.StatusCreated, block)
}

func (s *Server) handleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	var req phaseRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	s.writeEdit(w, func(b workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return b.WithPhaseUpdated(id, req.Label, req.Seconds)
	})
}

func (s *Server) handleDeletePhase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.writeEdit(w, func(b workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return b.WithPhaseRemoved(id)
	})
}

// writeEdit applies a single-phase edit and answers 404 when the phase is gone
func (s *Server) writeEdit(w http.ResponseWriter, edit timer.BlockEdit) {
	block, ok := s.timer.EditBlock(edit)
	if !ok {
		s.writeError(w, http.StatusNotFound, "phase not found")
		return
	}
	s.writeJSON(w, http.StatusOK, block)
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes v before touching w so an unencodable value becomes a 500
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("RemoteServer: encode response: %v", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Printf("RemoteServer: write response: %v", err)
	}
}
