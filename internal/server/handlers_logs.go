package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

// pathDate parses a YYYY-MM-DD route parameter.
func pathDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// handleGetDailyLog returns the day's entry. A day with no entry is an
// empty log, not an error.
func (s *Server) handleGetDailyLog(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	s.getDailyLog(w, r, date)
}

// handleGetTodayLog is the shorthand the logging screen uses on load.
func (s *Server) handleGetTodayLog(w http.ResponseWriter, r *http.Request) {
	s.getDailyLog(w, r, time.Now().Format("2006-01-02"))
}

func (s *Server) getDailyLog(w http.ResponseWriter, r *http.Request, date string) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	log, err := s.db.GetDailyLog(r.Context(), uid, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, models.DailyLog{UserID: uid, Date: date})
			return
		}
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// handleUpsertDailyLog writes weight and/or calories for a day. Omitted
// fields keep their stored values, so logging calories never clears the
// morning's weight.
func (s *Server) handleUpsertDailyLog(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	s.upsertDailyLog(w, r, date)
}

func (s *Server) handleUpsertTodayLog(w http.ResponseWriter, r *http.Request) {
	s.upsertDailyLog(w, r, time.Now().Format("2006-01-02"))
}

func (s *Server) upsertDailyLog(w http.ResponseWriter, r *http.Request, date string) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Weight   *float64 `json:"weight"`
		Calories *int     `json:"calories"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Weight == nil && req.Calories == nil {
		writeError(w, http.StatusBadRequest, "weight or calories required")
		return
	}
	if req.Weight != nil && *req.Weight <= 0 {
		writeError(w, http.StatusBadRequest, "weight must be positive")
		return
	}
	if req.Calories != nil && *req.Calories < 0 {
		writeError(w, http.StatusBadRequest, "calories must not be negative")
		return
	}

	log, err := s.db.UpsertDailyLog(r.Context(), uid, date, req.Weight, req.Calories)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleListDailyLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	logs, err := s.db.ListDailyLogs(r.Context(), uid, start, end)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleOverviewStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.db.GetOverviewStats(r.Context(), uid)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleDailyStats returns per-day workout duration and lifted volume for
// the requested range, keyed by date.
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	activity, err := s.db.DailyActivity(r.Context(), uid, start, end)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// dateRange reads start/end query parameters, defaulting to the last 30
// days. A days=N parameter is the shorthand for "N days ending today".
func dateRange(w http.ResponseWriter, r *http.Request) (start, end string, ok bool) {
	const layout = "2006-01-02"
	now := time.Now()
	start = now.AddDate(0, 0, -30).Format(layout)
	end = now.Format(layout)

	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return "", "", false
		}
		return now.AddDate(0, 0, -(days - 1)).Format(layout), end, true
	}

	if raw := r.URL.Query().Get("start"); raw != "" {
		if _, err := time.Parse(layout, raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start, want YYYY-MM-DD")
			return "", "", false
		}
		start = raw
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if _, err := time.Parse(layout, raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end, want YYYY-MM-DD")
			return "", "", false
		}
		end = raw
	}
	return start, end, true
}
