package storage

import (
	"context"
	"fmt"
	"math"
)

// OverviewStats holds aggregate statistics about a user's training history.
type OverviewStats struct {
	TotalWorkouts   int64 `json:"total_workouts"`
	TotalExercises  int64 `json:"total_exercises"`
	AverageDuration int   `json:"average_duration"`
}

// GetOverviewStats returns workout/exercise counts and the rounded mean
// duration across all completed sessions.
func (db *DB) GetOverviewStats(ctx context.Context, userID int) (*OverviewStats, error) {
	stats := &OverviewStats{}

	var err error
	if stats.TotalWorkouts, err = db.CountSessions(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TotalExercises, err = db.CountExercises(ctx, userID); err != nil {
		return nil, err
	}

	var avg *float64
	err = db.Pool.QueryRow(ctx,
		`SELECT AVG(duration_minutes)
		 FROM workout_sessions
		 WHERE user_id = $1 AND duration_minutes IS NOT NULL`, userID,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("querying average duration: %w", err)
	}
	if avg != nil {
		stats.AverageDuration = int(math.Round(*avg))
	}

	return stats, nil
}

// DayActivity is one day's training totals.
type DayActivity struct {
	Date            string  `json:"date"`
	DurationMinutes int     `json:"duration_minutes"`
	TotalVolume     float64 `json:"total_volume"`
}

// DailyActivity returns per-day session duration and training volume
// (Σ reps × weight) in an inclusive date range, keyed by YYYY-MM-DD.
func (db *DB) DailyActivity(ctx context.Context, userID int, startDate, endDate string) (map[string]DayActivity, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT to_char(s.date, 'YYYY-MM-DD'),
		        COALESCE(MAX(s.duration_minutes), 0),
		        COALESCE(SUM(sr.reps * sr.weight), 0)
		 FROM workout_sessions s
		 LEFT JOIN set_records sr ON sr.session_id = s.id
		 WHERE s.user_id = $1 AND s.date >= $2::date AND s.date <= $3::date
		 GROUP BY s.date`,
		userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("querying daily activity: %w", err)
	}
	defer rows.Close()

	result := make(map[string]DayActivity)
	for rows.Next() {
		var day DayActivity
		if err := rows.Scan(&day.Date, &day.DurationMinutes, &day.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning daily activity: %w", err)
		}
		result[day.Date] = day
	}
	return result, rows.Err()
}
