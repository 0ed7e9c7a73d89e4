package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/workout"
)

type exerciseRequest struct {
	Name          string   `json:"name"`
	MuscleGroup   *string  `json:"muscle_group"`
	DefaultWeight *float64 `json:"default_weight"`
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	exercises, err := s.db.ListExercises(r.Context(), uid)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req exerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	exercise, err := s.db.CreateExercise(r.Context(), uid, req.Name, req.MuscleGroup, req.DefaultWeight)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exercise)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req exerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.db.UpdateExercise(r.Context(), uid, id, req.Name, req.MuscleGroup, req.DefaultWeight); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.DeleteExercise(r.Context(), uid, id); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExerciseHistory returns the exercise's full set history grouped per
// session day, newest first, with per-day volume stats.
func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	records, err := s.db.ExerciseHistory(r.Context(), uid, id, nil)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	days := workout.GroupByDay(records)
	type dayResponse struct {
		Date  string               `json:"date"`
		Sets  []setResponse        `json:"sets"`
		Stats workout.SessionStats `json:"stats"`
	}
	response := make([]dayResponse, 0, len(days))
	for _, day := range days {
		response = append(response, dayResponse{
			Date:  day.Date,
			Sets:  setResponses(day.Records),
			Stats: workout.Stats(day.Records),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// handlePreviousPerformance answers "what did I lift last time". The
// strategy parameter selects between the single best set of the most recent
// day and that day's final two sets; the current session can be excluded so
// it does not count as its own history.
func (s *Server) handlePreviousPerformance(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	strategy := workout.BestSet
	switch r.URL.Query().Get("strategy") {
	case "", "best":
	case "last":
		strategy = workout.LastSets
	default:
		writeError(w, http.StatusBadRequest, "strategy must be best or last")
		return
	}

	var excludeSession *uuid.UUID
	if raw := r.URL.Query().Get("exclude_session"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid exclude_session")
			return
		}
		excludeSession = &parsed
	}

	records, err := s.db.ExerciseHistory(r.Context(), uid, id, excludeSession)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	prev := workout.ResolvePrevious(records, strategy)
	if prev == nil {
		writeJSON(w, http.StatusOK, map[string]any{"previous": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"previous": map[string]any{
			"date": prev.Date,
			"sets": setResponses(prev.Sets),
			"best": setResponse{
				SetNumber: prev.Best().SetNumber,
				Reps:      prev.Best().Reps,
				Weight:    prev.Best().Weight,
			},
		},
	})
}

type setResponse struct {
	SetNumber int     `json:"set_number"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
}

func setResponses(records []models.HistoryRecord) []setResponse {
	sets := make([]setResponse, 0, len(records))
	for _, rec := range records {
		sets = append(sets, setResponse{SetNumber: rec.SetNumber, Reps: rec.Reps, Weight: rec.Weight})
	}
	return sets
}
