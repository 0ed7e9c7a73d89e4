package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/ironlog/internal/models"
)

// StartRestTimer deactivates any active timer for the (user, session) pair
// and inserts a fresh active row. Two statements, no transaction: the insert
// is protected by the partial unique index, so losing the race surfaces as
// an insert error rather than two active timers.
func (db *DB) StartRestTimer(ctx context.Context, userID int, sessionID, exerciseID uuid.UUID, startTime time.Time, durationSeconds int) (*models.RestTimer, error) {
	if err := db.StopRestTimer(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	var t models.RestTimer
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO rest_timers (user_id, session_id, exercise_id, start_time, duration_seconds, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, user_id, session_id, exercise_id, start_time, duration_seconds, is_active, created_at`,
		userID, sessionID, exerciseID, startTime, durationSeconds,
	).Scan(&t.ID, &t.UserID, &t.SessionID, &t.ExerciseID, &t.StartTime, &t.DurationSeconds, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting rest timer: %w", err)
	}
	return &t, nil
}

// StopRestTimer marks the active timer for the (user, session) pair
// inactive. No-op when none is active.
func (db *DB) StopRestTimer(ctx context.Context, userID int, sessionID uuid.UUID) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE rest_timers SET is_active = FALSE
		 WHERE user_id = $1 AND session_id = $2 AND is_active`,
		userID, sessionID)
	if err != nil {
		return fmt.Errorf("stopping rest timer: %w", err)
	}
	return nil
}

// ActiveRestTimer returns the user's active timer, or ErrNotFound. Timers
// are scoped per session but a user has at most one active session, so the
// most recent active row is the one to show.
func (db *DB) ActiveRestTimer(ctx context.Context, userID int) (*models.RestTimer, error) {
	var t models.RestTimer
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, session_id, exercise_id, start_time, duration_seconds, is_active, created_at
		 FROM rest_timers
		 WHERE user_id = $1 AND is_active
		 ORDER BY start_time DESC
		 LIMIT 1`,
		userID,
	).Scan(&t.ID, &t.UserID, &t.SessionID, &t.ExerciseID, &t.StartTime, &t.DurationSeconds, &t.IsActive, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying active rest timer: %w", err)
	}
	return &t, nil
}

// DeactivateRestTimer marks one specific timer row inactive. Used when the
// countdown reaches zero.
func (db *DB) DeactivateRestTimer(ctx context.Context, userID int, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE rest_timers SET is_active = FALSE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("deactivating rest timer: %w", err)
	}
	return nil
}
