package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account identified by its login name. With the Tailscale
// listener enabled the login comes from WhoIs; in dev mode it is the
// configured fallback identity.
type User struct {
	ID          int       `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Exercise is a user-defined movement referenced by routines and set records.
type Exercise struct {
	ID            uuid.UUID `json:"id"`
	UserID        int       `json:"user_id"`
	Name          string    `json:"name"`
	MuscleGroup   *string   `json:"muscle_group,omitempty"`
	DefaultWeight *float64  `json:"default_weight,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// WorkoutRoutine owns an ordered list of routine exercises.
type WorkoutRoutine struct {
	ID        uuid.UUID         `json:"id"`
	UserID    int               `json:"user_id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Exercises []RoutineExercise `json:"exercises,omitempty"`

	// AverageDuration is the rounded mean duration_minutes across this
	// routine's completed sessions. Nil when no completed session exists.
	AverageDuration *int `json:"average_duration,omitempty"`
}

// RoutineExercise links an exercise into a routine. Identity is the
// (routine_id, exercise_id) pair; OrderIndex is the zero-based position,
// kept contiguous by reassigning the whole list on every mutation.
type RoutineExercise struct {
	RoutineID   uuid.UUID `json:"routine_id"`
	ExerciseID  uuid.UUID `json:"exercise_id"`
	OrderIndex  int       `json:"order_index"`
	DefaultSets int       `json:"default_sets"`
	DefaultReps int       `json:"default_reps"`

	// Denormalized for listings.
	ExerciseName string  `json:"exercise_name,omitempty"`
	MuscleGroup  *string `json:"muscle_group,omitempty"`
}

// WorkoutSession is one gym visit. A session is active while EndTime is
// nil; at most one session per user is active (partial unique index).
type WorkoutSession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          int        `json:"user_id"`
	RoutineID       *uuid.UUID `json:"routine_id,omitempty"`
	RoutineName     *string    `json:"routine_name,omitempty"`
	Date            string     `json:"date"` // YYYY-MM-DD
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Active reports whether the session has been started but not ended.
// Imported sessions have neither instant and are never active.
func (s WorkoutSession) Active() bool {
	return s.StartTime != nil && s.EndTime == nil
}

// SetRecord is one logged set. SetNumber is assigned as
// count(existing records for the exercise in the session)+1 at insert time
// and never renumbered, so deletions can leave gaps.
type SetRecord struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetNumber  int       `json:"set_number"`
	Reps       int       `json:"reps"`
	Weight     float64   `json:"weight"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyLog holds per-day bodyweight and calorie entries, one row per user
// per calendar date. Each field is updated independently; an upsert must
// not null out the field it is not writing.
type DailyLog struct {
	UserID   int      `json:"user_id"`
	Date     string   `json:"date"` // YYYY-MM-DD
	Weight   *float64 `json:"weight,omitempty"`
	Calories *int     `json:"calories,omitempty"`
}

// RestTimer is the persisted countdown between sets. At most one row per
// (user, session) is active; starting a new timer deactivates the prior one
// first. Remaining time always derives from StartTime, so the countdown
// survives reloads and multiple tabs.
type RestTimer struct {
	ID              uuid.UUID `json:"id"`
	UserID          int       `json:"user_id"`
	SessionID       uuid.UUID `json:"session_id"`
	ExerciseID      uuid.UUID `json:"exercise_id"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int       `json:"duration_seconds"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Remaining returns the seconds left on the timer at the given instant,
// clamped at zero.
func (t RestTimer) Remaining(now time.Time) int {
	elapsed := int(now.Sub(t.StartTime).Seconds())
	if left := t.DurationSeconds - elapsed; left > 0 {
		return left
	}
	return 0
}
