// Package importer restores workout history from a previously exported CSV
// file. Rows are regrouped into sessions by (date, routine); routines and
// exercises referenced by name are relinked to existing rows or created on
// the fly. The import is best-effort: a bad group or unresolvable exercise
// is logged and skipped, everything else still lands.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/csvio"
	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

func isNotFound(err error) bool { return errors.Is(err, storage.ErrNotFound) }

// Stats tracks import progress.
type Stats struct {
	SessionsCreated  int
	RoutinesCreated  int
	ExercisesCreated int
	SetsInserted     int
	RowsDropped      int
	GroupsFailed     int
}

// Store is the persistence surface the importer needs. *storage.DB
// satisfies it.
type Store interface {
	FindRoutineByName(ctx context.Context, userID int, name string) (*models.WorkoutRoutine, error)
	CreateRoutine(ctx context.Context, userID int, name string) (*models.WorkoutRoutine, error)
	FindExerciseByName(ctx context.Context, userID int, name string) (*models.Exercise, error)
	CreateExercise(ctx context.Context, userID int, name string, muscleGroup *string, defaultWeight *float64) (*models.Exercise, error)
	CreateImportedSession(ctx context.Context, userID int, routineID *uuid.UUID, date string, durationMinutes *int) (uuid.UUID, error)
	BulkInsertSetRecords(ctx context.Context, records []models.SetRecord) error
}

// Importer reads exported CSV and inserts reconstructed sessions.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
	stats  Stats

	routines  map[string]*uuid.UUID
	exercises map[string]uuid.UUID
}

// New creates a new Importer. With dryRun set, rows are parsed and counted
// but nothing is written.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{
		store:     store,
		log:       log,
		dryRun:    dryRun,
		routines:  map[string]*uuid.UUID{},
		exercises: map[string]uuid.UUID{},
	}
}

// Import reads one CSV export for the given user. Structural errors (bad
// header, malformed line) abort the whole import; per-group failures are
// counted and skipped.
func (imp *Importer) Import(ctx context.Context, userID int, r io.Reader) (*Stats, error) {
	rows, err := csvio.Decode(r)
	if err != nil {
		return &imp.stats, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return &imp.stats, fmt.Errorf("no data rows")
	}

	for _, group := range csvio.GroupSessions(rows) {
		if err := imp.importGroup(ctx, userID, group); err != nil {
			imp.stats.GroupsFailed++
			imp.log.Error("skipping session group",
				"date", group.Date, "routine", group.Routine, "error", err)
		}
	}
	return &imp.stats, nil
}

// importGroup creates one session with its set records. Rows whose exercise
// cannot be resolved are dropped, the rest of the group still imports.
func (imp *Importer) importGroup(ctx context.Context, userID int, group csvio.SessionGroup) error {
	if imp.dryRun {
		imp.stats.SessionsCreated++
		imp.stats.SetsInserted += len(group.Rows)
		return nil
	}

	routineID, err := imp.resolveRoutine(ctx, userID, group.Routine)
	if err != nil {
		return fmt.Errorf("resolving routine %q: %w", group.Routine, err)
	}

	sessionID, err := imp.store.CreateImportedSession(ctx, userID, routineID, group.Date, group.DurationMinutes)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	imp.stats.SessionsCreated++

	var records []models.SetRecord
	for _, row := range group.Rows {
		exerciseID, err := imp.resolveExercise(ctx, userID, row.Exercise, row.MuscleGroup)
		if err != nil {
			imp.stats.RowsDropped++
			imp.log.Warn("dropping row with unresolvable exercise",
				"date", row.Date, "exercise", row.Exercise, "error", err)
			continue
		}
		records = append(records, models.SetRecord{
			SessionID:  sessionID,
			ExerciseID: exerciseID,
			SetNumber:  row.SetNumber,
			Reps:       row.Reps,
			Weight:     row.Weight,
		})
	}

	if err := imp.store.BulkInsertSetRecords(ctx, records); err != nil {
		return fmt.Errorf("inserting set records: %w", err)
	}
	imp.stats.SetsInserted += len(records)
	return nil
}

// resolveRoutine maps a routine name to an id, creating the routine when no
// match exists. An empty name means the session had no routine.
func (imp *Importer) resolveRoutine(ctx context.Context, userID int, name string) (*uuid.UUID, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := imp.routines[name]; ok {
		return id, nil
	}

	routine, err := imp.store.FindRoutineByName(ctx, userID, name)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		routine, err = imp.store.CreateRoutine(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		imp.stats.RoutinesCreated++
	}

	id := routine.ID
	imp.routines[name] = &id
	return &id, nil
}

// resolveExercise maps an exercise name to an id, creating the exercise with
// the row's muscle group when no match exists.
func (imp *Importer) resolveExercise(ctx context.Context, userID int, name, muscleGroup string) (uuid.UUID, error) {
	if id, ok := imp.exercises[name]; ok {
		return id, nil
	}

	exercise, err := imp.store.FindExerciseByName(ctx, userID, name)
	if err != nil {
		if !isNotFound(err) {
			return uuid.Nil, err
		}
		var group *string
		if muscleGroup != "" {
			group = &muscleGroup
		}
		exercise, err = imp.store.CreateExercise(ctx, userID, name, group, nil)
		if err != nil {
			return uuid.Nil, err
		}
		imp.stats.ExercisesCreated++
	}

	imp.exercises[name] = exercise.ID
	return exercise.ID, nil
}
