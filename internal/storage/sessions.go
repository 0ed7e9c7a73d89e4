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

const sessionColumns = `s.id, s.user_id, s.routine_id, r.name,
	to_char(s.date, 'YYYY-MM-DD'), s.start_time, s.end_time, s.duration_minutes, s.created_at`

func scanSession(row pgx.Row) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := row.Scan(&s.ID, &s.UserID, &s.RoutineID, &s.RoutineName,
		&s.Date, &s.StartTime, &s.EndTime, &s.DurationMinutes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StartSession creates an active session with start_time = now. The partial
// unique index on (user_id) WHERE end_time IS NULL rejects a second active
// session, so two tabs racing to start cannot both win.
func (db *DB) StartSession(ctx context.Context, userID int, routineID *uuid.UUID, now time.Time) (*models.WorkoutSession, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workout_sessions (user_id, routine_id, date, start_time)
		 VALUES ($1, $2, $3::date, $3)
		 RETURNING id`,
		userID, routineID, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return db.GetSession(ctx, userID, id)
}

// GetSession fetches one session with its routine name.
func (db *DB) GetSession(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutSession, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM workout_sessions s
		 LEFT JOIN workout_routines r ON r.id = s.routine_id
		 WHERE s.id = $1 AND s.user_id = $2`,
		id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

// ActiveSession returns the user's current unended session, or ErrNotFound.
// Rows predating the single-active index are tie-broken by most recent
// start_time.
func (db *DB) ActiveSession(ctx context.Context, userID int) (*models.WorkoutSession, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM workout_sessions s
		 LEFT JOIN workout_routines r ON r.id = s.routine_id
		 WHERE s.user_id = $1 AND s.end_time IS NULL AND s.start_time IS NOT NULL
		 ORDER BY s.start_time DESC
		 LIMIT 1`,
		userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying active session: %w", err)
	}
	return s, nil
}

// EndSession sets end_time and the rounded duration in minutes.
func (db *DB) EndSession(ctx context.Context, userID int, id uuid.UUID, endTime time.Time, durationMinutes int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions SET end_time = $1, duration_minutes = $2
		 WHERE id = $3 AND user_id = $4 AND end_time IS NULL`,
		endTime, durationMinutes, id, userID)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions returns the user's sessions newest first.
func (db *DB) ListSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM workout_sessions s
		 LEFT JOIN workout_routines r ON r.id = s.routine_id
		 WHERE s.user_id = $1
		 ORDER BY s.date DESC, s.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// CompletedSessionDurations returns (routine_id, duration_minutes) pairs for
// the user's completed sessions restricted to the given routines. Input for
// the routine average-duration aggregation.
func (db *DB) CompletedSessionDurations(ctx context.Context, userID int, routineIDs []uuid.UUID) (map[uuid.UUID][]int, error) {
	if len(routineIDs) == 0 {
		return map[uuid.UUID][]int{}, nil
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT routine_id, duration_minutes
		 FROM workout_sessions
		 WHERE user_id = $1 AND routine_id = ANY($2) AND duration_minutes IS NOT NULL`,
		userID, routineIDs)
	if err != nil {
		return nil, fmt.Errorf("querying session durations: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]int)
	for rows.Next() {
		var routineID uuid.UUID
		var minutes int
		if err := rows.Scan(&routineID, &minutes); err != nil {
			return nil, fmt.Errorf("scanning session duration: %w", err)
		}
		result[routineID] = append(result[routineID], minutes)
	}
	return result, rows.Err()
}

// DeleteSession removes a session and its set records (records first, then
// the session, mirroring the legacy two-step delete; the cascade would cover
// it but the explicit order keeps the behavior observable).
func (db *DB) DeleteSession(ctx context.Context, userID int, id uuid.UUID) error {
	owned, err := db.GetSession(ctx, userID, id)
	if err != nil {
		return err
	}
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM set_records WHERE session_id = $1`, owned.ID); err != nil {
		return fmt.Errorf("deleting session records: %w", err)
	}
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CreateImportedSession inserts a completed session reconstructed from a CSV
// import: date, routine and duration only, no start/end instants.
func (db *DB) CreateImportedSession(ctx context.Context, userID int, routineID *uuid.UUID, date string, durationMinutes *int) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workout_sessions (user_id, routine_id, date, duration_minutes)
		 VALUES ($1, $2, $3::date, $4)
		 RETURNING id`,
		userID, routineID, date, durationMinutes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting imported session: %w", err)
	}
	return id, nil
}

// CountSessions returns the user's total number of workout sessions.
func (db *DB) CountSessions(ctx context.Context, userID int) (int64, error) {
	var count int64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}
