package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	FindExerciseByName(ctx context.Context, userID int, name string) (*models.Exercise, error)
	ExerciseHistory(ctx context.Context, userID int, exerciseID uuid.UUID, excludeSessionID *uuid.UUID) ([]models.HistoryRecord, error)
	ListSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error)
	GetSession(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutSession, error)
	ListSessionSets(ctx context.Context, sessionID uuid.UUID) ([]models.SetRecord, error)
	ListRoutines(ctx context.Context, userID int) ([]models.WorkoutRoutine, error)
	CompletedSessionDurations(ctx context.Context, userID int, routineIDs []uuid.UUID) (map[uuid.UUID][]int, error)
	GetOverviewStats(ctx context.Context, userID int) (*storage.OverviewStats, error)
	DailyActivity(ctx context.Context, userID int, startDate, endDate string) (map[string]storage.DayActivity, error)
	ListDailyLogs(ctx context.Context, userID int, startDate, endDate string) ([]models.DailyLog, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
