package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/ironlog/internal/models"
)

const historyColumns = `sr.id, sr.session_id, sr.exercise_id, e.name,
	COALESCE(e.muscle_group, ''), sr.set_number, sr.reps, sr.weight, sr.created_at,
	to_char(s.date, 'YYYY-MM-DD'), COALESCE(r.name, ''), s.start_time, s.end_time, s.duration_minutes`

func scanHistoryRows(rows pgx.Rows) ([]models.HistoryRecord, error) {
	var result []models.HistoryRecord
	for rows.Next() {
		var rec models.HistoryRecord
		if err := rows.Scan(&rec.RecordID, &rec.SessionID, &rec.ExerciseID, &rec.ExerciseName,
			&rec.MuscleGroup, &rec.SetNumber, &rec.Reps, &rec.Weight, &rec.CreatedAt,
			&rec.SessionDate, &rec.RoutineName, &rec.SessionStart, &rec.SessionEnd, &rec.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// ExerciseHistory returns the full joined set-record history for one
// exercise, newest session first, sets in ascending set-number order within
// a session. An optional session id excludes the in-progress session so it
// does not count as its own previous performance.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, exerciseID uuid.UUID, excludeSessionID *uuid.UUID) ([]models.HistoryRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+historyColumns+`
		 FROM set_records sr
		 JOIN workout_sessions s ON s.id = sr.session_id
		 JOIN exercises e ON e.id = sr.exercise_id
		 LEFT JOIN workout_routines r ON r.id = s.routine_id
		 WHERE s.user_id = $1 AND sr.exercise_id = $2
		   AND ($3::uuid IS NULL OR sr.session_id <> $3)
		 ORDER BY s.date DESC, sr.set_number ASC`,
		userID, exerciseID, excludeSessionID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// AllHistory returns every joined set record for the user, newest session
// first. Input for the history listing and the CSV export.
func (db *DB) AllHistory(ctx context.Context, userID int) ([]models.HistoryRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+historyColumns+`
		 FROM set_records sr
		 JOIN workout_sessions s ON s.id = sr.session_id
		 JOIN exercises e ON e.id = sr.exercise_id
		 LEFT JOIN workout_routines r ON r.id = s.routine_id
		 WHERE s.user_id = $1
		 ORDER BY s.date DESC, s.created_at DESC, sr.created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}
