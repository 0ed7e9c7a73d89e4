package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/workout"
)

// handleListRoutines returns the user's routines with their ordered
// exercises, each annotated with the rounded average duration of its
// completed sessions.
func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	routines, err := s.db.ListRoutines(r.Context(), uid)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(routines))
	for _, routine := range routines {
		ids = append(ids, routine.ID)
	}
	durations, err := s.db.CompletedSessionDurations(r.Context(), uid, ids)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	averages := workout.AverageDurations(durations)
	for i := range routines {
		if avg, ok := averages[routines[i].ID]; ok {
			v := avg
			routines[i].AverageDuration = &v
		}
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	routine, err := s.db.CreateRoutine(r.Context(), uid, req.Name)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

func (s *Server) handleRenameRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.db.RenameRoutine(r.Context(), uid, id, req.Name); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.DeleteRoutine(r.Context(), uid, id); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedRoutine verifies the routine belongs to the requester before any
// nested mutation; a false return means the response was written.
func (s *Server) ownedRoutine(w http.ResponseWriter, r *http.Request, uid int) (uuid.UUID, bool) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return uuid.Nil, false
	}
	owned, err := s.db.RoutineOwnedBy(r.Context(), uid, id)
	if err != nil {
		s.writeStorageError(w, err)
		return uuid.Nil, false
	}
	if !owned {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleAddRoutineExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	routineID, ok := s.ownedRoutine(w, r, uid)
	if !ok {
		return
	}
	var req struct {
		ExerciseID  uuid.UUID `json:"exercise_id"`
		DefaultSets int       `json:"default_sets"`
		DefaultReps int       `json:"default_reps"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ExerciseID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "exercise_id is required")
		return
	}

	if err := s.db.AddRoutineExercise(r.Context(), routineID, req.ExerciseID, req.DefaultSets, req.DefaultReps); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRemoveRoutineExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	routineID, ok := s.ownedRoutine(w, r, uid)
	if !ok {
		return
	}
	exerciseID, ok := pathUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	if err := s.db.RemoveRoutineExercise(r.Context(), routineID, exerciseID); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateRoutineExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	routineID, ok := s.ownedRoutine(w, r, uid)
	if !ok {
		return
	}
	exerciseID, ok := pathUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req struct {
		DefaultSets int `json:"default_sets"`
		DefaultReps int `json:"default_reps"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.db.UpdateRoutineExerciseDefaults(r.Context(), routineID, exerciseID, req.DefaultSets, req.DefaultReps); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReorderRoutine moves one exercise within a routine. The request
// names a position move; the whole order is rewritten so indexes stay
// contiguous 0..n-1.
func (s *Server) handleReorderRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	routineID, ok := s.ownedRoutine(w, r, uid)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	exercises, err := s.db.ListRoutineExercises(r.Context(), routineID)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(exercises))
	for _, re := range exercises {
		ids = append(ids, re.ExerciseID)
	}
	if req.From < 0 || req.From >= len(ids) || req.To < 0 || req.To >= len(ids) {
		writeError(w, http.StatusBadRequest, "position out of range")
		return
	}

	if err := s.db.SetRoutineOrder(r.Context(), routineID, workout.ReorderIDs(ids, req.From, req.To)); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
