package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// handleRestTimerStatus reports the countdown state. The timer ticks before
// answering so the remaining seconds always reflect the wall clock, not the
// last background tick.
func (s *Server) handleRestTimerStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	rt := s.restTimer(uid)
	rt.Tick(r.Context())

	timeLeft, isActive := rt.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"time_left": timeLeft,
		"is_active": isActive,
		"visible":   rt.Visible(),
		"display":   rt.Display(),
	})
}

// handleStartRestTimer starts (or restarts) the countdown after a logged
// set. Failures to persist are deliberately swallowed: a broken timer must
// never block workout logging.
func (s *Server) handleStartRestTimer(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		SessionID       uuid.UUID `json:"session_id"`
		ExerciseID      uuid.UUID `json:"exercise_id"`
		DurationSeconds int       `json:"duration_seconds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == uuid.Nil || req.ExerciseID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "session_id and exercise_id are required")
		return
	}

	rt := s.restTimer(uid)
	rt.Start(r.Context(), req.SessionID, req.ExerciseID, req.DurationSeconds)

	timeLeft, isActive := rt.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"time_left": timeLeft,
		"is_active": isActive,
		"display":   rt.Display(),
	})
}

func (s *Server) handleStopRestTimer(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	s.restTimer(uid).Stop(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleRestTimerEvents streams timer change signals as SSE. Each event is
// a cue to refetch the timer status; the payload carries no state, so a
// missed event costs nothing once the next one lands.
func (s *Server) handleRestTimerEvents(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, err := s.db.SubscribeRestTimers(r.Context(), uid, s.log)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	defer events.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events.Events():
			if !ok {
				return
			}
			fmt.Fprint(w, "event: timer\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
