package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/timer"
	"github.com/meltforce/ironlog/internal/workout"
)

// handleListSessions returns the session history newest first. With
// include=sets each session carries its logged set records, which is what
// the history view renders.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	sessions, err := s.db.ListSessions(r.Context(), uid)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	if r.URL.Query().Get("include") != "sets" {
		writeJSON(w, http.StatusOK, sessions)
		return
	}

	type sessionWithSets struct {
		models.WorkoutSession
		Sets []models.SetRecord `json:"sets"`
	}
	response := make([]sessionWithSets, 0, len(sessions))
	for _, session := range sessions {
		sets, err := s.db.ListSessionSets(r.Context(), session.ID)
		if err != nil {
			s.writeStorageError(w, err)
			return
		}
		response = append(response, sessionWithSets{WorkoutSession: session, Sets: sets})
	}
	writeJSON(w, http.StatusOK, response)
}

// handleStartSession begins a workout. The single-active constraint lives in
// the store; a second concurrent start comes back as a conflict.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		RoutineID *uuid.UUID `json:"routine_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := s.db.StartSession(r.Context(), uid, req.RoutineID, time.Now())
	if err != nil {
		if active, activeErr := s.db.ActiveSession(r.Context(), uid); activeErr == nil {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":   "a session is already active",
				"session": active,
			})
			return
		}
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleActiveSession returns the in-progress session with its elapsed
// clock, or 404 when none is running.
func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	session, err := s.db.ActiveSession(r.Context(), uid)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	elapsed := ""
	if session.StartTime != nil {
		elapsed = timer.Elapsed(*session.StartTime, time.Now())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"elapsed": elapsed,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	session, err := s.db.GetSession(r.Context(), uid, id)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleEndSession finishes a workout, deriving the stored duration from the
// start and end instants rounded to whole minutes. The user's rest timer is
// stopped with the session.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	session, err := s.db.GetSession(r.Context(), uid, id)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	if !session.Active() {
		writeError(w, http.StatusConflict, "session already ended")
		return
	}

	end := time.Now()
	duration := workout.DurationMinutes(*session.StartTime, end)
	if err := s.db.EndSession(r.Context(), uid, id, end, duration); err != nil {
		s.writeStorageError(w, err)
		return
	}

	s.restTimer(uid).Stop(r.Context())

	session, err = s.db.GetSession(r.Context(), uid, id)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.DeleteSession(r.Context(), uid, id); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedSession checks session ownership before set mutations.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request, uid int) (*models.WorkoutSession, bool) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return nil, false
	}
	session, err := s.db.GetSession(r.Context(), uid, id)
	if err != nil {
		s.writeStorageError(w, err)
		return nil, false
	}
	return session, true
}

func (s *Server) handleListSessionSets(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	session, ok := s.ownedSession(w, r, uid)
	if !ok {
		return
	}
	records, err := s.db.ListSessionSets(r.Context(), session.ID)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleAddSet logs one set. The set number is assigned in the store as
// count(existing sets for this exercise in this session)+1.
func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	session, ok := s.ownedSession(w, r, uid)
	if !ok {
		return
	}
	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
		Reps       int       `json:"reps"`
		Weight     float64   `json:"weight"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ExerciseID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "exercise_id is required")
		return
	}
	if req.Reps <= 0 {
		writeError(w, http.StatusBadRequest, "reps must be positive")
		return
	}
	if req.Weight < 0 {
		writeError(w, http.StatusBadRequest, "weight must not be negative")
		return
	}

	record, err := s.db.InsertSetRecord(r.Context(), session.ID, req.ExerciseID, req.Reps, req.Weight)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// handleReplaceSessionSets rewrites a past session's sets in one shot, for
// the edit-workout flow.
func (s *Server) handleReplaceSessionSets(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	session, ok := s.ownedSession(w, r, uid)
	if !ok {
		return
	}
	var req struct {
		Sets []struct {
			ExerciseID uuid.UUID `json:"exercise_id"`
			SetNumber  int       `json:"set_number"`
			Reps       int       `json:"reps"`
			Weight     float64   `json:"weight"`
		} `json:"sets"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	records := make([]models.SetRecord, 0, len(req.Sets))
	for _, set := range req.Sets {
		if set.ExerciseID == uuid.Nil || set.Reps <= 0 || set.Weight < 0 {
			writeError(w, http.StatusBadRequest, "invalid set")
			return
		}
		records = append(records, models.SetRecord{
			SessionID:  session.ID,
			ExerciseID: set.ExerciseID,
			SetNumber:  set.SetNumber,
			Reps:       set.Reps,
			Weight:     set.Weight,
		})
	}

	if err := s.db.ReplaceSessionSets(r.Context(), session.ID, records); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	session, ok := s.ownedSession(w, r, uid)
	if !ok {
		return
	}
	recordID, ok := pathUUID(w, r, "recordID")
	if !ok {
		return
	}
	if err := s.db.DeleteSetRecord(r.Context(), session.ID, recordID); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
