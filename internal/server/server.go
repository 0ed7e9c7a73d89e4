package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/ironlog/internal/storage"
	"github.com/meltforce/ironlog/internal/timer"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db                 *storage.DB
	log                *slog.Logger
	whois              WhoIsFunc
	devUser            string
	defaultRestSeconds int
	router             chi.Router

	baseCtx context.Context

	usersMu sync.Mutex
	users   map[string]int // login -> user id

	timersMu sync.Mutex
	timers   map[int]*timer.RestTimer
}

// New creates a new Server with all routes configured. whois may be nil; the
// dev user identity is used then. baseCtx bounds background work such as the
// per-user rest-timer loops.
func New(baseCtx context.Context, db *storage.DB, whois WhoIsFunc, devUser string, defaultRestSeconds int, log *slog.Logger) *Server {
	s := &Server{
		db:                 db,
		log:                log,
		whois:              whois,
		devUser:            devUser,
		defaultRestSeconds: defaultRestSeconds,
		router:             chi.NewRouter(),
		baseCtx:            baseCtx,
		users:              map[string]int{},
		timers:             map[int]*timer.RestTimer{},
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Put("/{id}", s.handleUpdateExercise)
			r.Delete("/{id}", s.handleDeleteExercise)
			r.Get("/{id}/history", s.handleExerciseHistory)
			r.Get("/{id}/previous-best", s.handlePreviousPerformance)
		})

		r.Route("/routines", func(r chi.Router) {
			r.Get("/", s.handleListRoutines)
			r.Post("/", s.handleCreateRoutine)
			r.Put("/{id}", s.handleRenameRoutine)
			r.Delete("/{id}", s.handleDeleteRoutine)
			r.Post("/{id}/exercises", s.handleAddRoutineExercise)
			r.Delete("/{id}/exercises/{exerciseID}", s.handleRemoveRoutineExercise)
			r.Put("/{id}/exercises/{exerciseID}", s.handleUpdateRoutineExercise)
			r.Put("/{id}/order", s.handleReorderRoutine)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleStartSession)
			r.Get("/active", s.handleActiveSession)
			r.Get("/{id}", s.handleGetSession)
			r.Post("/{id}/end", s.handleEndSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Get("/{id}/sets", s.handleListSessionSets)
			r.Post("/{id}/sets", s.handleAddSet)
			r.Put("/{id}/records", s.handleReplaceSessionSets)
			r.Delete("/{id}/sets/{recordID}", s.handleDeleteSet)
		})

		r.Route("/rest-timer", func(r chi.Router) {
			r.Get("/active", s.handleRestTimerStatus)
			r.Post("/start", s.handleStartRestTimer)
			r.Post("/stop", s.handleStopRestTimer)
			r.Get("/events", s.handleRestTimerEvents)
		})

		// Today's row as the default; explicit dates for history views.
		r.Get("/daily-log", s.handleGetTodayLog)
		r.Put("/daily-log", s.handleUpsertTodayLog)
		r.Route("/daily-logs", func(r chi.Router) {
			r.Get("/", s.handleListDailyLogs)
			r.Get("/{date}", s.handleGetDailyLog)
			r.Put("/{date}", s.handleUpsertDailyLog)
		})

		r.Get("/stats/overview", s.handleOverviewStats)
		r.Get("/stats/daily", s.handleDailyStats)

		r.Get("/history/export", s.handleExportHistory)
		r.Post("/history/import", s.handleImportHistory)
	})
}

// restTimer returns the user's in-process rest timer, creating it on first
// use. A background loop keeps it ticking and refreshes it whenever the
// change feed signals that the user's timer rows changed elsewhere.
func (s *Server) restTimer(userID int) *timer.RestTimer {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if rt, ok := s.timers[userID]; ok {
		return rt
	}

	rt := timer.NewRestTimer(s.db, userID, s.defaultRestSeconds, nil, s.log)
	s.timers[userID] = rt

	go func() {
		events, err := s.db.SubscribeRestTimers(s.baseCtx, userID, s.log)
		if err != nil {
			s.log.Error("rest timer subscription failed, falling back to ticks only",
				"user_id", userID, "error", err)
			rt.Run(s.baseCtx, timer.TickInterval, nil)
			return
		}
		defer events.Close()
		rt.Refresh(s.baseCtx)
		rt.Run(s.baseCtx, timer.TickInterval, events.Events())
	}()

	return rt
}
