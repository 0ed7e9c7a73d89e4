package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meltforce/ironlog/internal/models"
)

// GetDailyLog returns the user's log row for the given date, or ErrNotFound.
func (db *DB) GetDailyLog(ctx context.Context, userID int, date string) (*models.DailyLog, error) {
	var log models.DailyLog
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, to_char(date, 'YYYY-MM-DD'), weight, calories
		 FROM daily_logs
		 WHERE user_id = $1 AND date = $2::date`,
		userID, date,
	).Scan(&log.UserID, &log.Date, &log.Weight, &log.Calories)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying daily log: %w", err)
	}
	return &log, nil
}

// UpsertDailyLog writes weight and/or calories for one (user, date) row.
// A nil field leaves the stored value untouched: updating calories must not
// null out a previously logged weight, and vice versa.
func (db *DB) UpsertDailyLog(ctx context.Context, userID int, date string, weight *float64, calories *int) (*models.DailyLog, error) {
	var log models.DailyLog
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO daily_logs (user_id, date, weight, calories)
		 VALUES ($1, $2::date, $3, $4)
		 ON CONFLICT (user_id, date) DO UPDATE
			SET weight = COALESCE(EXCLUDED.weight, daily_logs.weight),
			    calories = COALESCE(EXCLUDED.calories, daily_logs.calories)
		 RETURNING user_id, to_char(date, 'YYYY-MM-DD'), weight, calories`,
		userID, date, weight, calories,
	).Scan(&log.UserID, &log.Date, &log.Weight, &log.Calories)
	if err != nil {
		return nil, fmt.Errorf("upserting daily log: %w", err)
	}
	return &log, nil
}

// ListDailyLogs returns the user's logs in an inclusive date range, oldest
// first.
func (db *DB) ListDailyLogs(ctx context.Context, userID int, startDate, endDate string) ([]models.DailyLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, to_char(date, 'YYYY-MM-DD'), weight, calories
		 FROM daily_logs
		 WHERE user_id = $1 AND date >= $2::date AND date <= $3::date
		 ORDER BY date ASC`,
		userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("querying daily logs: %w", err)
	}
	defer rows.Close()

	var result []models.DailyLog
	for rows.Next() {
		var log models.DailyLog
		if err := rows.Scan(&log.UserID, &log.Date, &log.Weight, &log.Calories); err != nil {
			return nil, fmt.Errorf("scanning daily log: %w", err)
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
