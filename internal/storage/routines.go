package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/ironlog/internal/models"
)

// CreateRoutine inserts a routine and returns it.
func (db *DB) CreateRoutine(ctx context.Context, userID int, name string) (*models.WorkoutRoutine, error) {
	var r models.WorkoutRoutine
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workout_routines (user_id, name)
		 VALUES ($1, $2)
		 RETURNING id, user_id, name, created_at`,
		userID, name,
	).Scan(&r.ID, &r.UserID, &r.Name, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting routine: %w", err)
	}
	return &r, nil
}

// ListRoutines returns the user's routines newest first, each with its
// ordered exercise list.
func (db *DB) ListRoutines(ctx context.Context, userID int) ([]models.WorkoutRoutine, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, created_at
		 FROM workout_routines
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRoutine
	for rows.Next() {
		var r models.WorkoutRoutine
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		exercises, err := db.ListRoutineExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Exercises = exercises
	}
	return result, nil
}

// FindRoutineByName returns the user's routine with the exact given name,
// or ErrNotFound. Used by the CSV importer to relink reconstructed sessions.
func (db *DB) FindRoutineByName(ctx context.Context, userID int, name string) (*models.WorkoutRoutine, error) {
	var r models.WorkoutRoutine
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at
		 FROM workout_routines
		 WHERE user_id = $1 AND name = $2
		 ORDER BY created_at ASC
		 LIMIT 1`,
		userID, name,
	).Scan(&r.ID, &r.UserID, &r.Name, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine by name: %w", err)
	}
	return &r, nil
}

// ListRoutineExercises returns a routine's exercises ordered by order_index.
func (db *DB) ListRoutineExercises(ctx context.Context, routineID uuid.UUID) ([]models.RoutineExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT re.routine_id, re.exercise_id, re.order_index, re.default_sets, re.default_reps,
		        e.name, e.muscle_group
		 FROM routine_exercises re
		 JOIN exercises e ON e.id = re.exercise_id
		 WHERE re.routine_id = $1
		 ORDER BY re.order_index ASC`,
		routineID)
	if err != nil {
		return nil, fmt.Errorf("querying routine exercises: %w", err)
	}
	defer rows.Close()

	var result []models.RoutineExercise
	for rows.Next() {
		var re models.RoutineExercise
		if err := rows.Scan(&re.RoutineID, &re.ExerciseID, &re.OrderIndex, &re.DefaultSets,
			&re.DefaultReps, &re.ExerciseName, &re.MuscleGroup); err != nil {
			return nil, fmt.Errorf("scanning routine exercise: %w", err)
		}
		result = append(result, re)
	}
	return result, rows.Err()
}

// RenameRoutine updates a routine's name.
func (db *DB) RenameRoutine(ctx context.Context, userID int, id uuid.UUID, name string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_routines SET name = $1 WHERE id = $2 AND user_id = $3`,
		name, id, userID)
	if err != nil {
		return fmt.Errorf("renaming routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoutine removes a routine; its routine_exercises rows cascade.
func (db *DB) DeleteRoutine(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_routines WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRoutineExercise appends an exercise at the end of the routine's order.
func (db *DB) AddRoutineExercise(ctx context.Context, routineID, exerciseID uuid.UUID, defaultSets, defaultReps int) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO routine_exercises (routine_id, exercise_id, order_index, default_sets, default_reps)
		 VALUES ($1, $2,
		         (SELECT COALESCE(MAX(order_index) + 1, 0) FROM routine_exercises WHERE routine_id = $1),
		         $3, $4)`,
		routineID, exerciseID, defaultSets, defaultReps)
	if err != nil {
		return fmt.Errorf("adding routine exercise: %w", err)
	}
	return nil
}

// RemoveRoutineExercise deletes one link row. Callers are expected to follow
// up with SetRoutineOrder so the remaining order_index values stay contiguous.
func (db *DB) RemoveRoutineExercise(ctx context.Context, routineID, exerciseID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM routine_exercises WHERE routine_id = $1 AND exercise_id = $2`,
		routineID, exerciseID)
	if err != nil {
		return fmt.Errorf("removing routine exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRoutineOrder rewrites order_index for the whole routine from the given
// exercise-id list: position in the slice becomes the index, 0..n-1. Updates
// are issued per row without a transaction; the first error is returned after
// the remaining updates have been attempted, matching the best-effort batch
// policy used elsewhere.
func (db *DB) SetRoutineOrder(ctx context.Context, routineID uuid.UUID, orderedExerciseIDs []uuid.UUID) error {
	var firstErr error
	for idx, exerciseID := range orderedExerciseIDs {
		_, err := db.Pool.Exec(ctx,
			`UPDATE routine_exercises SET order_index = $1
			 WHERE routine_id = $2 AND exercise_id = $3`,
			idx, routineID, exerciseID)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("updating order_index %d: %w", idx, err)
		}
	}
	return firstErr
}

// UpdateRoutineExerciseDefaults upserts the default set/rep counts for one
// routine exercise.
func (db *DB) UpdateRoutineExerciseDefaults(ctx context.Context, routineID, exerciseID uuid.UUID, defaultSets, defaultReps int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE routine_exercises SET default_sets = $1, default_reps = $2
		 WHERE routine_id = $3 AND exercise_id = $4`,
		defaultSets, defaultReps, routineID, exerciseID)
	if err != nil {
		return fmt.Errorf("updating routine exercise defaults: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RoutineOwnedBy reports whether the routine belongs to the user.
func (db *DB) RoutineOwnedBy(ctx context.Context, userID int, id uuid.UUID) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_routines WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking routine ownership: %w", err)
	}
	return count > 0, nil
}
