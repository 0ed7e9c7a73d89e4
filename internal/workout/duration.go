package workout

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DurationMinutes returns the session length in whole minutes, rounded to
// nearest, from start and end instants.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// AverageDurations computes, per routine, the rounded mean of completed
// session durations. Routines without completed sessions are absent from
// the result: no sessions means no average, not zero.
func AverageDurations(durations map[uuid.UUID][]int) map[uuid.UUID]int {
	result := make(map[uuid.UUID]int, len(durations))
	for routineID, minutes := range durations {
		if len(minutes) == 0 {
			continue
		}
		sum := 0
		for _, m := range minutes {
			sum += m
		}
		result[routineID] = int(math.Round(float64(sum) / float64(len(minutes))))
	}
	return result
}

// ReorderIDs moves the element at index from to index to and returns the
// resulting order. The returned slice is fresh; positions in it are the new
// contiguous order_index values 0..n-1. Out-of-range indices return the
// input order unchanged.
func ReorderIDs(ids []uuid.UUID, from, to int) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]uuid.UUID{moved}, out[to:]...)...)
	return out
}
