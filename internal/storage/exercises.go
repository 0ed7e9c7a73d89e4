package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/ironlog/internal/models"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// CreateExercise inserts an exercise for the user and returns it.
func (db *DB) CreateExercise(ctx context.Context, userID int, name string, muscleGroup *string, defaultWeight *float64) (*models.Exercise, error) {
	var ex models.Exercise
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (user_id, name, muscle_group, default_weight)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, name, muscle_group, default_weight, created_at`,
		userID, name, muscleGroup, defaultWeight,
	).Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.MuscleGroup, &ex.DefaultWeight, &ex.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}
	return &ex, nil
}

// ListExercises returns the user's exercises ordered by name.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, muscle_group, default_weight, created_at
		 FROM exercises
		 WHERE user_id = $1
		 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.MuscleGroup, &ex.DefaultWeight, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// FindExerciseByName looks up an exercise by exact name for the user.
// Returns ErrNotFound when absent; used by the CSV importer.
func (db *DB) FindExerciseByName(ctx context.Context, userID int, name string) (*models.Exercise, error) {
	var ex models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, muscle_group, default_weight, created_at
		 FROM exercises
		 WHERE user_id = $1 AND name = $2
		 LIMIT 1`,
		userID, name,
	).Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.MuscleGroup, &ex.DefaultWeight, &ex.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise by name: %w", err)
	}
	return &ex, nil
}

// UpdateExercise updates name, muscle group and default weight.
func (db *DB) UpdateExercise(ctx context.Context, userID int, id uuid.UUID, name string, muscleGroup *string, defaultWeight *float64) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises
		 SET name = $1, muscle_group = $2, default_weight = $3
		 WHERE id = $4 AND user_id = $5`,
		name, muscleGroup, defaultWeight, id, userID)
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExercise removes an exercise. Referential integrity is left to the
// schema: the delete fails while routine_exercises or set_records still
// reference the row.
func (db *DB) DeleteExercise(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercises WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountExercises returns the number of exercises the user has defined.
func (db *DB) CountExercises(ctx context.Context, userID int) (int64, error) {
	var count int64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting exercises: %w", err)
	}
	return count, nil
}
