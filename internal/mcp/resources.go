package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/workout"
)

var resRoutines = mcp.NewResource(
	"ironlog://routines",
	"Workout Routines",
	mcp.WithResourceDescription("All routines with their ordered exercises and average completed-session durations"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"ironlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resOverview = mcp.NewResource(
	"ironlog://overview",
	"Training Overview",
	mcp.WithResourceDescription("Lifetime workout totals and average session duration"),
	mcp.WithMIMEType("application/json"),
)

// routinesWithAverages loads the routines and annotates each with the
// rounded mean duration of its completed sessions.
func (h *handlers) routinesWithAverages(ctx context.Context, uid int) ([]models.WorkoutRoutine, error) {
	routines, err := h.ds.ListRoutines(ctx, uid)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(routines))
	for _, r := range routines {
		ids = append(ids, r.ID)
	}
	durations, err := h.ds.CompletedSessionDurations(ctx, uid, ids)
	if err != nil {
		return nil, err
	}

	averages := workout.AverageDurations(durations)
	for i := range routines {
		if avg, ok := averages[routines[i].ID]; ok {
			v := avg
			routines[i].AverageDuration = &v
		}
	}
	return routines, nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) routinesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	routines, err := h.routinesWithAverages(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, routines)
}

func (h *handlers) recentSessionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.ListSessions(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -14).Format("2006-01-02")
	recent := sessions[:0:0]
	for _, s := range sessions {
		if s.Date >= cutoff {
			recent = append(recent, s)
		}
	}
	return jsonResource(req.Params.URI, recent)
}

func (h *handlers) overviewResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.ds.GetOverviewStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, stats)
}
