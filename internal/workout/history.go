// Package workout holds the pure domain logic of the tracker: history
// grouping and per-session statistics, the previous-performance resolver,
// and duration aggregation. Everything operates on rows already fetched
// from storage and is side-effect free.
package workout

import (
	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
)

// ExerciseGroup is one exercise's records within a session or history view.
type ExerciseGroup struct {
	ExerciseID  uuid.UUID              `json:"exercise_id"`
	Name        string                 `json:"name"`
	MuscleGroup string                 `json:"muscle_group"`
	Records     []models.HistoryRecord `json:"records"`
}

// GroupByExercise partitions records by exercise id, preserving first-seen
// exercise order and record order within each group.
func GroupByExercise(records []models.HistoryRecord) []ExerciseGroup {
	index := make(map[uuid.UUID]int)
	var groups []ExerciseGroup

	for _, rec := range records {
		i, ok := index[rec.ExerciseID]
		if !ok {
			i = len(groups)
			index[rec.ExerciseID] = i
			groups = append(groups, ExerciseGroup{
				ExerciseID:  rec.ExerciseID,
				Name:        rec.ExerciseName,
				MuscleGroup: rec.MuscleGroup,
			})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// SessionStats summarizes one group of set records.
type SessionStats struct {
	TotalVolume float64 `json:"total_volume"`
	MaxWeight   float64 `json:"max_weight"`
	TotalReps   int     `json:"total_reps"`
	TotalSets   int     `json:"total_sets"`
}

// Stats computes volume (Σ reps × weight), max weight, total reps and set
// count over a group of records.
func Stats(records []models.HistoryRecord) SessionStats {
	var s SessionStats
	s.TotalSets = len(records)
	for _, rec := range records {
		s.TotalVolume += float64(rec.Reps) * rec.Weight
		s.TotalReps += rec.Reps
		if rec.Weight > s.MaxWeight {
			s.MaxWeight = rec.Weight
		}
	}
	return s
}

// DayGroup is all of one calendar day's records for a single exercise,
// with stats precomputed for display.
type DayGroup struct {
	Date    string                 `json:"date"`
	Routine string                 `json:"routine"`
	Records []models.HistoryRecord `json:"records"`
	Stats   SessionStats           `json:"stats"`
}

// GroupByDay partitions one exercise's history records by session date,
// newest day first (records are expected date-descending, as storage
// returns them). Used by the exercise history view, where each day is
// compared against the previous day's max weight.
func GroupByDay(records []models.HistoryRecord) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup

	for _, rec := range records {
		i, ok := index[rec.SessionDate]
		if !ok {
			i = len(groups)
			index[rec.SessionDate] = i
			groups = append(groups, DayGroup{Date: rec.SessionDate, Routine: rec.RoutineName})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	for i := range groups {
		groups[i].Stats = Stats(groups[i].Records)
	}
	return groups
}
