package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
)

// InsertSetRecord logs one set. The set number is assigned as
// count(existing records for this exercise in this session)+1 at insert
// time; it is never re-derived after deletions, so gaps can remain.
func (db *DB) InsertSetRecord(ctx context.Context, sessionID, exerciseID uuid.UUID, reps int, weight float64) (*models.SetRecord, error) {
	var rec models.SetRecord
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO set_records (session_id, exercise_id, set_number, reps, weight)
		 VALUES ($1, $2,
		         (SELECT COUNT(*) + 1 FROM set_records WHERE session_id = $1 AND exercise_id = $2),
		         $3, $4)
		 RETURNING id, session_id, exercise_id, set_number, reps, weight, created_at`,
		sessionID, exerciseID, reps, weight,
	).Scan(&rec.ID, &rec.SessionID, &rec.ExerciseID, &rec.SetNumber, &rec.Reps, &rec.Weight, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting set record: %w", err)
	}
	return &rec, nil
}

// ListSessionSets returns all set records of one session, ordered by
// creation time.
func (db *DB) ListSessionSets(ctx context.Context, sessionID uuid.UUID) ([]models.SetRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_id, set_number, reps, weight, created_at
		 FROM set_records
		 WHERE session_id = $1
		 ORDER BY created_at ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetRecord
	for rows.Next() {
		var rec models.SetRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ExerciseID, &rec.SetNumber,
			&rec.Reps, &rec.Weight, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning set record: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// ReplaceSessionSets deletes a session's set records and re-inserts the given
// list, preserving the provided set numbers. Used by the session edit flow.
func (db *DB) ReplaceSessionSets(ctx context.Context, sessionID uuid.UUID, records []models.SetRecord) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM set_records WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clearing session records: %w", err)
	}
	return db.BulkInsertSetRecords(ctx, records)
}

// BulkInsertSetRecords batch-inserts set records with explicit set numbers,
// as reconstructed by the CSV importer.
func (db *DB) BulkInsertSetRecords(ctx context.Context, records []models.SetRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO set_records (session_id, exercise_id, set_number, reps, weight) VALUES `
	args := make([]any, 0, len(records)*5)
	valueStrings := make([]string, 0, len(records))

	for i, r := range records {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, r.SessionID, r.ExerciseID, r.SetNumber, r.Reps, r.Weight)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting set records: %w", err)
	}
	return nil
}

// DeleteSetRecord removes one set record. Remaining records keep their
// numbers.
func (db *DB) DeleteSetRecord(ctx context.Context, sessionID, recordID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM set_records WHERE id = $1 AND session_id = $2`, recordID, sessionID)
	if err != nil {
		return fmt.Errorf("deleting set record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
