package workout_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/workout"
)

func TestGroupByExercise(t *testing.T) {
	bench := uuid.New()
	squat := uuid.New()
	records := []models.HistoryRecord{
		{ExerciseID: bench, ExerciseName: "Bench Press", MuscleGroup: "Chest", SetNumber: 1, Reps: 10, Weight: 60},
		{ExerciseID: squat, ExerciseName: "Squat", MuscleGroup: "Legs", SetNumber: 1, Reps: 8, Weight: 100},
		{ExerciseID: bench, ExerciseName: "Bench Press", MuscleGroup: "Chest", SetNumber: 2, Reps: 8, Weight: 65},
	}

	groups := workout.GroupByExercise(records)
	require.Len(t, groups, 2)

	// First-seen order preserved.
	assert.Equal(t, "Bench Press", groups[0].Name)
	assert.Len(t, groups[0].Records, 2)
	assert.Equal(t, "Squat", groups[1].Name)
	assert.Len(t, groups[1].Records, 1)
}

func TestStats(t *testing.T) {
	records := []models.HistoryRecord{
		{Reps: 10, Weight: 60},
		{Reps: 8, Weight: 65},
		{Reps: 6, Weight: 70},
	}

	s := workout.Stats(records)
	assert.Equal(t, 10*60.0+8*65.0+6*70.0, s.TotalVolume)
	assert.Equal(t, 70.0, s.MaxWeight)
	assert.Equal(t, 24, s.TotalReps)
	assert.Equal(t, 3, s.TotalSets)
}

func TestStatsEmpty(t *testing.T) {
	s := workout.Stats(nil)
	assert.Zero(t, s.TotalVolume)
	assert.Zero(t, s.MaxWeight)
	assert.Zero(t, s.TotalSets)
}

func TestGroupByDay(t *testing.T) {
	records := []models.HistoryRecord{
		{SessionDate: "2024-01-08", RoutineName: "Push", SetNumber: 1, Reps: 10, Weight: 52},
		{SessionDate: "2024-01-01", RoutineName: "Push", SetNumber: 1, Reps: 10, Weight: 50},
		{SessionDate: "2024-01-01", RoutineName: "Push", SetNumber: 2, Reps: 8, Weight: 55},
	}

	groups := workout.GroupByDay(records)
	require.Len(t, groups, 2)
	assert.Equal(t, "2024-01-08", groups[0].Date)
	assert.Equal(t, 52.0, groups[0].Stats.MaxWeight)
	assert.Equal(t, "2024-01-01", groups[1].Date)
	assert.Equal(t, 55.0, groups[1].Stats.MaxWeight)
	assert.Len(t, groups[1].Records, 2)
}
