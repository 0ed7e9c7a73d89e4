package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/ironlog/internal/workout"
)

// dateRange returns start/end defaulting to the last 30 days, as YYYY-MM-DD.
func dateRange(startStr, endStr string) (string, string, error) {
	const layout = "2006-01-02"

	end := time.Now().Format(layout)
	if endStr != "" {
		parsed, err := time.Parse(layout, endStr)
		if err != nil {
			return "", "", err
		}
		end = parsed.Format(layout)
	}

	start := time.Now().AddDate(0, 0, -30).Format(layout)
	if startStr != "" {
		parsed, err := time.Parse(layout, startStr)
		if err != nil {
			return "", "", err
		}
		start = parsed.Format(layout)
	}

	return start, end, nil
}

// --- Tool definitions ---

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Full set history for one exercise grouped per training day, newest first, with per-day volume stats (total volume, max weight, total reps)."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name (e.g. 'Bench Press')")),
)

var toolGetPreviousBest = mcp.NewTool("get_previous_best",
	mcp.WithDescription("The target to beat for an exercise: the most recent completed day's performance. Strategy 'best' returns that day's single heaviest set, 'last' its final two sets."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name")),
	mcp.WithString("strategy", mcp.Description("Resolution strategy. Defaults to 'best'."), mcp.Enum("best", "last")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Workout sessions in a date range, newest first, with routine name and duration."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetSessionSets = mcp.NewTool("get_session_sets",
	mcp.WithDescription("All logged sets of one workout session."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetRoutines = mcp.NewTool("get_routines",
	mcp.WithDescription("The user's workout routines with their ordered exercises and the average duration of completed sessions per routine."),
)

var toolGetOverviewStats = mcp.NewTool("get_overview_stats",
	mcp.WithDescription("Lifetime totals: workout count, exercise count, average session duration."),
)

var toolGetDailyActivity = mcp.NewTool("get_daily_activity",
	mcp.WithDescription("Per-day training duration and lifted volume (sum of reps x weight) for a date range."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetDailyLogs = mcp.NewTool("get_daily_logs",
	mcp.WithDescription("Daily bodyweight and calorie log entries for a date range."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

// --- Tool handlers ---

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)

	exercise, err := h.ds.FindExerciseByName(ctx, uid, name)
	if err != nil {
		return mcp.NewToolResultError("unknown exercise: " + name), nil
	}

	records, err := h.ds.ExerciseHistory(ctx, uid, exercise.ID, nil)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	days := workout.GroupByDay(records)
	type day struct {
		Date  string               `json:"date"`
		Sets  int                  `json:"sets"`
		Stats workout.SessionStats `json:"stats"`
	}
	out := make([]day, 0, len(days))
	for _, d := range days {
		out = append(out, day{Date: d.Date, Sets: len(d.Records), Stats: workout.Stats(d.Records)})
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise.Name,
		"days":     out,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPreviousBest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	strategy := workout.BestSet
	if req.GetString("strategy", "best") == "last" {
		strategy = workout.LastSets
	}
	uid := UserIDFromContext(ctx)

	exercise, err := h.ds.FindExerciseByName(ctx, uid, name)
	if err != nil {
		return mcp.NewToolResultError("unknown exercise: " + name), nil
	}

	records, err := h.ds.ExerciseHistory(ctx, uid, exercise.ID, nil)
	if err != nil {
		h.log.Error("mcp get_previous_best", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	prev := workout.ResolvePrevious(records, strategy)
	if prev == nil {
		return mcp.NewToolResultText("No completed sessions with this exercise yet."), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise.Name,
		"date":     prev.Date,
		"sets":     prev.Sets,
		"best":     prev.Best(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.ListSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	filtered := sessions[:0:0]
	for _, s := range sessions {
		if s.Date >= start && s.Date <= end {
			filtered = append(filtered, s)
		}
	}

	result, err := mcp.NewToolResultJSON(filtered)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid session_id"), nil
	}
	uid := UserIDFromContext(ctx)

	// Ownership check before reading sets.
	if _, err := h.ds.GetSession(ctx, uid, sessionID); err != nil {
		return mcp.NewToolResultError("unknown session"), nil
	}

	records, err := h.ds.ListSessionSets(ctx, sessionID)
	if err != nil {
		h.log.Error("mcp get_session_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routines, err := h.routinesWithAverages(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(routines)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getOverviewStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetOverviewStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_overview_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDailyActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	activity, err := h.ds.DailyActivity(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_daily_activity", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(activity)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDailyLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.ListDailyLogs(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_daily_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
