package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/csvio"
	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

// fakeStore records everything the importer writes.
type fakeStore struct {
	routines  map[string]*models.WorkoutRoutine
	exercises map[string]*models.Exercise
	sessions  []importedSession
	records   []models.SetRecord

	failExercise string // exercise name whose creation fails
	failSessions bool
}

type importedSession struct {
	routineID *uuid.UUID
	date      string
	duration  *int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		routines:  map[string]*models.WorkoutRoutine{},
		exercises: map[string]*models.Exercise{},
	}
}

func (f *fakeStore) FindRoutineByName(_ context.Context, _ int, name string) (*models.WorkoutRoutine, error) {
	if r, ok := f.routines[name]; ok {
		return r, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) CreateRoutine(_ context.Context, userID int, name string) (*models.WorkoutRoutine, error) {
	r := &models.WorkoutRoutine{ID: uuid.New(), UserID: userID, Name: name}
	f.routines[name] = r
	return r, nil
}

func (f *fakeStore) FindExerciseByName(_ context.Context, _ int, name string) (*models.Exercise, error) {
	if e, ok := f.exercises[name]; ok {
		return e, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) CreateExercise(_ context.Context, userID int, name string, muscleGroup *string, _ *float64) (*models.Exercise, error) {
	if name == f.failExercise {
		return nil, errors.New("store down")
	}
	e := &models.Exercise{ID: uuid.New(), UserID: userID, Name: name, MuscleGroup: muscleGroup}
	f.exercises[name] = e
	return e, nil
}

func (f *fakeStore) CreateImportedSession(_ context.Context, _ int, routineID *uuid.UUID, date string, durationMinutes *int) (uuid.UUID, error) {
	if f.failSessions {
		return uuid.Nil, errors.New("store down")
	}
	f.sessions = append(f.sessions, importedSession{routineID: routineID, date: date, duration: durationMinutes})
	return uuid.New(), nil
}

func (f *fakeStore) BulkInsertSetRecords(_ context.Context, records []models.SetRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleCSV = csvio.Header + "\n" +
	`"2024-01-08","Push Day","Bench Press","Chest","1","10","52.5","45"` + "\n" +
	`"2024-01-08","Push Day","Bench Press","Chest","2","8","55","45"` + "\n" +
	`"2024-01-08","Push Day","Dips","Triceps","1","12","0","45"` + "\n" +
	`"2024-01-10","Legs","Squat","Legs","1","5","100",""`

// TestImport verifies the happy path: two sessions reconstructed, routines
// and exercises created once each, set records carrying their CSV numbers.
func TestImport(t *testing.T) {
	store := newFakeStore()
	imp := New(store, discard(), false)

	stats, err := imp.Import(context.Background(), 1, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}

	if stats.SessionsCreated != 2 {
		t.Errorf("SessionsCreated = %d, want 2", stats.SessionsCreated)
	}
	if stats.RoutinesCreated != 2 {
		t.Errorf("RoutinesCreated = %d, want 2", stats.RoutinesCreated)
	}
	if stats.ExercisesCreated != 3 {
		t.Errorf("ExercisesCreated = %d, want 3", stats.ExercisesCreated)
	}
	if stats.SetsInserted != 4 {
		t.Errorf("SetsInserted = %d, want 4", stats.SetsInserted)
	}
	if stats.RowsDropped != 0 || stats.GroupsFailed != 0 {
		t.Errorf("dropped=%d failed=%d, want 0/0", stats.RowsDropped, stats.GroupsFailed)
	}

	if len(store.sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(store.sessions))
	}
	first := store.sessions[0]
	if first.date != "2024-01-08" || first.duration == nil || *first.duration != 45 {
		t.Errorf("session 0 = %+v", first)
	}
	if first.routineID == nil || *first.routineID != store.routines["Push Day"].ID {
		t.Error("session 0 not linked to the Push Day routine")
	}
	if store.sessions[1].duration != nil {
		t.Error("session 1 duration should be nil")
	}

	if len(store.records) != 4 {
		t.Fatalf("records = %d, want 4", len(store.records))
	}
	if store.records[1].SetNumber != 2 || store.records[1].Reps != 8 || store.records[1].Weight != 55 {
		t.Errorf("record 1 = %+v", store.records[1])
	}
	dips := store.exercises["Dips"]
	if dips.MuscleGroup == nil || *dips.MuscleGroup != "Triceps" {
		t.Error("created exercise missing muscle group from the row")
	}
}

// TestImportReusesExistingRows verifies that matching routines and exercises
// are relinked instead of duplicated.
func TestImportReusesExistingRows(t *testing.T) {
	store := newFakeStore()
	existing := &models.Exercise{ID: uuid.New(), UserID: 1, Name: "Bench Press"}
	store.exercises["Bench Press"] = existing
	store.routines["Push Day"] = &models.WorkoutRoutine{ID: uuid.New(), UserID: 1, Name: "Push Day"}

	imp := New(store, discard(), false)
	stats, err := imp.Import(context.Background(), 1, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}

	if stats.RoutinesCreated != 1 {
		t.Errorf("RoutinesCreated = %d, want 1 (Legs only)", stats.RoutinesCreated)
	}
	if stats.ExercisesCreated != 2 {
		t.Errorf("ExercisesCreated = %d, want 2", stats.ExercisesCreated)
	}
	if store.records[0].ExerciseID != existing.ID {
		t.Error("bench press row not linked to the existing exercise")
	}
}

// TestImportDropsUnresolvableRows verifies best-effort behavior: a row whose
// exercise cannot be created is dropped, the rest of its group still lands.
func TestImportDropsUnresolvableRows(t *testing.T) {
	store := newFakeStore()
	store.failExercise = "Dips"
	imp := New(store, discard(), false)

	stats, err := imp.Import(context.Background(), 1, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}

	if stats.RowsDropped != 1 {
		t.Errorf("RowsDropped = %d, want 1", stats.RowsDropped)
	}
	if stats.SetsInserted != 3 {
		t.Errorf("SetsInserted = %d, want 3", stats.SetsInserted)
	}
	if stats.SessionsCreated != 2 {
		t.Errorf("SessionsCreated = %d, want 2", stats.SessionsCreated)
	}
}

// TestImportSkipsFailedGroups verifies that a session-level failure skips
// the group without aborting the import.
func TestImportSkipsFailedGroups(t *testing.T) {
	store := newFakeStore()
	store.failSessions = true
	imp := New(store, discard(), false)

	stats, err := imp.Import(context.Background(), 1, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if stats.GroupsFailed != 2 {
		t.Errorf("GroupsFailed = %d, want 2", stats.GroupsFailed)
	}
	if stats.SessionsCreated != 0 || stats.SetsInserted != 0 {
		t.Errorf("writes counted despite failures: %+v", stats)
	}
}

// TestImportStructuralErrors verifies that malformed CSV aborts the import.
func TestImportStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"header only", csvio.Header},
		{"bad line", csvio.Header + "\n" + `"2024-01-01","R","E","M","1","ten","50",""`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			imp := New(newFakeStore(), discard(), false)
			if _, err := imp.Import(context.Background(), 1, strings.NewReader(tc.csv)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// TestImportDryRun verifies that a dry run counts work without writing.
func TestImportDryRun(t *testing.T) {
	store := newFakeStore()
	imp := New(store, discard(), true)

	stats, err := imp.Import(context.Background(), 1, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if stats.SessionsCreated != 2 || stats.SetsInserted != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if len(store.sessions) != 0 || len(store.records) != 0 || len(store.routines) != 0 {
		t.Error("dry run wrote to the store")
	}
}
