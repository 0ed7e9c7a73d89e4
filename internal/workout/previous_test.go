package workout_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/workout"
)

func completedRec(date string, setNumber, reps int, weight float64) models.HistoryRecord {
	end := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return models.HistoryRecord{
		RecordID:    uuid.New(),
		SessionDate: date,
		SetNumber:   setNumber,
		Reps:        reps,
		Weight:      weight,
		SessionEnd:  &end,
	}
}

func TestResolvePrevious_MostRecentDayWins(t *testing.T) {
	// Session A is heavier, session B is more recent; B must win.
	records := []models.HistoryRecord{
		completedRec("2024-01-01", 1, 10, 50),
		completedRec("2024-01-01", 2, 8, 55),
		completedRec("2024-01-08", 1, 10, 52),
	}

	prev := workout.ResolvePrevious(records, workout.BestSet)
	require.NotNil(t, prev)
	assert.Equal(t, "2024-01-08", prev.Date)
	require.Len(t, prev.Sets, 1)
	assert.Equal(t, 52.0, prev.Sets[0].Weight)
	assert.Equal(t, 52.0, prev.Best().Weight)
}

func TestResolvePrevious_BestSetTieBrokenByReps(t *testing.T) {
	records := []models.HistoryRecord{
		completedRec("2024-02-01", 1, 8, 60),
		completedRec("2024-02-01", 2, 11, 60),
		completedRec("2024-02-01", 3, 9, 60),
	}

	prev := workout.ResolvePrevious(records, workout.BestSet)
	require.NotNil(t, prev)
	require.Len(t, prev.Sets, 1)
	assert.Equal(t, 11, prev.Sets[0].Reps)
}

func TestResolvePrevious_LastSetsStrategy(t *testing.T) {
	records := []models.HistoryRecord{
		completedRec("2024-02-01", 3, 6, 80),
		completedRec("2024-02-01", 1, 10, 70),
		completedRec("2024-02-01", 2, 8, 75),
	}

	prev := workout.ResolvePrevious(records, workout.LastSets)
	require.NotNil(t, prev)
	require.Len(t, prev.Sets, 2)
	// Ascending set-number order, final two sets of the day.
	assert.Equal(t, 2, prev.Sets[0].SetNumber)
	assert.Equal(t, 3, prev.Sets[1].SetNumber)
}

func TestResolvePrevious_LastSetsSingleRecord(t *testing.T) {
	records := []models.HistoryRecord{
		completedRec("2024-02-01", 1, 10, 70),
	}

	prev := workout.ResolvePrevious(records, workout.LastSets)
	require.NotNil(t, prev)
	require.Len(t, prev.Sets, 1)
	assert.Equal(t, 1, prev.Sets[0].SetNumber)
}

func TestResolvePrevious_IgnoresActiveSessions(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	active := models.HistoryRecord{
		RecordID:     uuid.New(),
		SessionDate:  "2024-03-01",
		SetNumber:    1,
		Reps:         12,
		Weight:       100,
		SessionStart: &start, // started, not ended
	}
	records := []models.HistoryRecord{
		active,
		completedRec("2024-02-20", 1, 10, 60),
	}

	prev := workout.ResolvePrevious(records, workout.BestSet)
	require.NotNil(t, prev)
	assert.Equal(t, "2024-02-20", prev.Date)
	assert.Equal(t, 60.0, prev.Sets[0].Weight)
}

// Sessions reconstructed from a CSV import carry neither start nor end
// instant and still count as previous performance.
func TestResolvePrevious_IncludesImportedSessions(t *testing.T) {
	imported := models.HistoryRecord{
		RecordID:    uuid.New(),
		SessionDate: "2024-03-01",
		SetNumber:   1,
		Reps:        12,
		Weight:      100,
	}

	prev := workout.ResolvePrevious([]models.HistoryRecord{imported}, workout.BestSet)
	require.NotNil(t, prev)
	assert.Equal(t, "2024-03-01", prev.Date)
}

func TestResolvePrevious_NoCompletedSessions(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	unfinished := models.HistoryRecord{SessionDate: "2024-03-01", Reps: 10, Weight: 50, SessionStart: &start}
	assert.Nil(t, workout.ResolvePrevious([]models.HistoryRecord{unfinished}, workout.BestSet))
	assert.Nil(t, workout.ResolvePrevious(nil, workout.BestSet))
}

func TestProgressing(t *testing.T) {
	best := completedRec("2024-01-08", 1, 10, 52)

	tests := []struct {
		name   string
		weight float64
		reps   int
		want   bool
	}{
		{"same weight more reps", 52, 12, true},
		{"heavier fewer reps", 53, 5, true},
		{"lighter more reps", 50, 12, false},
		{"same weight same reps", 52, 10, false},
		{"same weight fewer reps", 52, 8, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, workout.Progressing(tc.weight, tc.reps, best))
		})
	}
}
