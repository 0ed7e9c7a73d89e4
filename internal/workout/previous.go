package workout

import (
	"sort"

	"github.com/meltforce/ironlog/internal/models"
)

// Strategy selects which sets from the most recent completed day count as
// "previous performance". Both behaviors exist in the product history, so
// the call site chooses.
type Strategy int

const (
	// BestSet picks the single heaviest set of the most recent day, ties
	// broken by higher reps.
	BestSet Strategy = iota
	// LastSets picks the final two sets of the most recent day, in
	// ascending set-number order.
	LastSets
)

// PreviousPerformance is the resolver result: the most recent completed
// day's strategy-selected sets.
type PreviousPerformance struct {
	Date string                 `json:"date"`
	Sets []models.HistoryRecord `json:"sets"`
}

// Best returns the heaviest of the selected sets, ties broken by reps.
// With the BestSet strategy that is the only set.
func (p PreviousPerformance) Best() models.HistoryRecord {
	best := p.Sets[0]
	for _, rec := range p.Sets[1:] {
		if rec.Weight > best.Weight || (rec.Weight == best.Weight && rec.Reps > best.Reps) {
			best = rec
		}
	}
	return best
}

// ResolvePrevious finds the most recent completed session day in an
// exercise's history and applies the strategy to it. Records from sessions
// that have not ended are ignored: an in-progress workout is not previous
// performance. Returns nil when no completed-session record exists.
func ResolvePrevious(records []models.HistoryRecord, strategy Strategy) *PreviousPerformance {
	var completed []models.HistoryRecord
	for _, rec := range records {
		if rec.Completed() {
			completed = append(completed, rec)
		}
	}
	if len(completed) == 0 {
		return nil
	}

	// Most recent day wins, regardless of weights on earlier days.
	// ISO dates compare lexicographically.
	latest := completed[0].SessionDate
	for _, rec := range completed[1:] {
		if rec.SessionDate > latest {
			latest = rec.SessionDate
		}
	}

	var day []models.HistoryRecord
	for _, rec := range completed {
		if rec.SessionDate == latest {
			day = append(day, rec)
		}
	}
	sort.SliceStable(day, func(i, j int) bool {
		return day[i].SetNumber < day[j].SetNumber
	})

	result := &PreviousPerformance{Date: latest}
	switch strategy {
	case LastSets:
		if len(day) > 2 {
			day = day[len(day)-2:]
		}
		result.Sets = day
	default:
		best := day[0]
		for _, rec := range day[1:] {
			if rec.Weight > best.Weight || (rec.Weight == best.Weight && rec.Reps > best.Reps) {
				best = rec
			}
		}
		result.Sets = []models.HistoryRecord{best}
	}
	return result
}

// Progressing reports whether a (weight, reps) entry beats the previous
// best: strictly heavier, or equal weight with more reps.
func Progressing(weight float64, reps int, best models.HistoryRecord) bool {
	if weight > best.Weight {
		return true
	}
	return weight == best.Weight && reps > best.Reps
}
