package timer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

// TickInterval is how often a running rest timer recomputes its countdown.
const TickInterval = time.Second

// Store is the persistence surface the rest timer needs. *storage.DB
// satisfies it; tests use a fake.
type Store interface {
	StartRestTimer(ctx context.Context, userID int, sessionID, exerciseID uuid.UUID, startTime time.Time, durationSeconds int) (*models.RestTimer, error)
	StopRestTimer(ctx context.Context, userID int, sessionID uuid.UUID) error
	ActiveRestTimer(ctx context.Context, userID int) (*models.RestTimer, error)
	DeactivateRestTimer(ctx context.Context, userID int, id uuid.UUID) error
}

// RestTimer tracks the recommended rest between sets for one user. Local
// state is a cache of the persisted row: Refresh reloads it, Tick
// recomputes the remaining seconds from the row's start instant so the
// countdown stays correct after a reload mid-rest.
type RestTimer struct {
	store          Store
	userID         int
	defaultSeconds int
	now            func() time.Time
	log            *slog.Logger

	mu       sync.Mutex
	active   *models.RestTimer
	timeLeft int
	isActive bool
}

// NewRestTimer creates a timer for one user. defaultSeconds is used when
// Start is called without an explicit duration; now defaults to time.Now.
func NewRestTimer(store Store, userID, defaultSeconds int, now func() time.Time, log *slog.Logger) *RestTimer {
	if now == nil {
		now = time.Now
	}
	if defaultSeconds <= 0 {
		defaultSeconds = 150
	}
	return &RestTimer{
		store:          store,
		userID:         userID,
		defaultSeconds: defaultSeconds,
		now:            now,
		log:            log,
	}
}

// Start begins a countdown for the given session and exercise,
// deactivating any prior active timer for the session first. A
// non-positive duration selects the default. Persistence failures are
// logged and swallowed; local state is not advanced on failure.
func (t *RestTimer) Start(ctx context.Context, sessionID, exerciseID uuid.UUID, durationSeconds int) {
	if durationSeconds <= 0 {
		durationSeconds = t.defaultSeconds
	}

	row, err := t.store.StartRestTimer(ctx, t.userID, sessionID, exerciseID, t.now(), durationSeconds)
	if err != nil {
		t.log.Error("failed to start rest timer", "error", err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = row
	t.timeLeft = durationSeconds
	t.isActive = true
}

// Stop deactivates the current timer and clears local state. No-op when
// nothing is running.
func (t *RestTimer) Stop(ctx context.Context) {
	t.mu.Lock()
	active := t.active
	t.active = nil
	t.timeLeft = 0
	t.isActive = false
	t.mu.Unlock()

	if active == nil {
		return
	}
	if err := t.store.StopRestTimer(ctx, t.userID, active.SessionID); err != nil {
		t.log.Error("failed to stop rest timer", "error", err)
	}
}

// Tick recomputes the remaining seconds from the authoritative start
// instant. When the countdown reaches zero the persisted row is
// deactivated and local state cleared.
func (t *RestTimer) Tick(ctx context.Context) {
	t.mu.Lock()
	if !t.isActive || t.active == nil {
		t.mu.Unlock()
		return
	}
	remaining := t.active.Remaining(t.now())
	t.timeLeft = remaining
	if remaining > 0 {
		t.mu.Unlock()
		return
	}
	finished := t.active
	t.active = nil
	t.isActive = false
	t.mu.Unlock()

	if err := t.store.DeactivateRestTimer(ctx, t.userID, finished.ID); err != nil {
		t.log.Error("failed to deactivate finished rest timer", "error", err)
	}
}

// Refresh reloads the active timer row. Called on startup and whenever the
// change feed signals that this user's timers changed.
func (t *RestTimer) Refresh(ctx context.Context) {
	row, err := t.store.ActiveRestTimer(ctx, t.userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.log.Error("failed to fetch active rest timer", "error", err)
			return
		}
		t.mu.Lock()
		t.active = nil
		t.timeLeft = 0
		t.isActive = false
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	t.active = row
	t.timeLeft = row.Remaining(t.now())
	t.isActive = true
	t.mu.Unlock()

	// A row that expired while nobody was watching is cleaned up right away.
	t.Tick(ctx)
}

// Snapshot returns the current countdown state.
func (t *RestTimer) Snapshot() (timeLeft int, isActive bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeLeft, t.isActive
}

// Visible reports whether the timer should be shown: while active or while
// any time remains. Guards against the display vanishing mid-transition
// when the countdown completes.
func (t *RestTimer) Visible() bool {
	left, active := t.Snapshot()
	return active || left > 0
}

// Display renders the remaining time as "M:SS".
func (t *RestTimer) Display() string {
	left, _ := t.Snapshot()
	return FormatSeconds(left)
}

// Run drives the timer: one Tick per interval while the context lives, and
// a Refresh for every change-feed signal. Returns when ctx is done or the
// event channel closes.
func (t *RestTimer) Run(ctx context.Context, interval time.Duration, events <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			t.Refresh(ctx)
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}
