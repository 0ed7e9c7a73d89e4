package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is a set record joined with its exercise and owning
// session. It is the common input shape for the previous-performance
// resolver, the history grouping, and the CSV export.
type HistoryRecord struct {
	RecordID     uuid.UUID `json:"record_id"`
	SessionID    uuid.UUID `json:"session_id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	MuscleGroup  string    `json:"muscle_group"`
	SetNumber    int       `json:"set_number"`
	Reps         int       `json:"reps"`
	Weight       float64   `json:"weight"`
	CreatedAt    time.Time `json:"created_at"`

	SessionDate     string     `json:"session_date"` // YYYY-MM-DD
	RoutineName     string     `json:"routine_name"`
	SessionStart    *time.Time `json:"session_start,omitempty"`
	SessionEnd      *time.Time `json:"session_end,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// Completed reports whether the owning session is finished. A session is
// unfinished only while it has a start instant and no end; imported sessions
// carry neither and count as completed history.
func (r HistoryRecord) Completed() bool {
	return r.SessionEnd != nil || r.SessionStart == nil
}
