package timer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

// fakeStore keeps at most one active timer row in memory.
type fakeStore struct {
	active    *models.RestTimer
	failStart bool
	stops     int
}

func (f *fakeStore) StartRestTimer(_ context.Context, userID int, sessionID, exerciseID uuid.UUID, startTime time.Time, durationSeconds int) (*models.RestTimer, error) {
	if f.failStart {
		return nil, errors.New("store down")
	}
	f.active = &models.RestTimer{
		ID:              uuid.New(),
		UserID:          userID,
		SessionID:       sessionID,
		ExerciseID:      exerciseID,
		StartTime:       startTime,
		DurationSeconds: durationSeconds,
		IsActive:        true,
	}
	return f.active, nil
}

func (f *fakeStore) StopRestTimer(_ context.Context, _ int, _ uuid.UUID) error {
	f.stops++
	f.active = nil
	return nil
}

func (f *fakeStore) ActiveRestTimer(_ context.Context, _ int) (*models.RestTimer, error) {
	if f.active == nil {
		return nil, storage.ErrNotFound
	}
	return f.active, nil
}

func (f *fakeStore) DeactivateRestTimer(_ context.Context, _ int, _ uuid.UUID) error {
	f.active = nil
	return nil
}

// movableClock lets tests advance wall-clock time explicitly.
type movableClock struct{ t time.Time }

func (c *movableClock) now() time.Time          { return c.t }
func (c *movableClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTimer(store Store, clock *movableClock) *RestTimer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRestTimer(store, 1, 150, clock.now, log)
}

// TestStartDefaultDuration verifies that starting without an explicit
// duration uses the 150-second default and makes the timer visible.
func TestStartDefaultDuration(t *testing.T) {
	store := &fakeStore{}
	clock := &movableClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	rt := newTestTimer(store, clock)

	rt.Start(context.Background(), uuid.New(), uuid.New(), 0)

	left, active := rt.Snapshot()
	if left != 150 {
		t.Errorf("timeLeft = %d, want 150", left)
	}
	if !active {
		t.Error("isActive = false, want true")
	}
	if !rt.Visible() {
		t.Error("timer should be visible after start")
	}
	if store.active == nil || store.active.DurationSeconds != 150 {
		t.Error("store row not created with default duration")
	}
}

// TestCountdownFromWallClock verifies that remaining time derives from the
// persisted start instant: one Tick after 150 elapsed seconds finishes the
// countdown, without 150 discrete tick invocations.
func TestCountdownFromWallClock(t *testing.T) {
	store := &fakeStore{}
	clock := &movableClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	rt := newTestTimer(store, clock)
	ctx := context.Background()

	rt.Start(ctx, uuid.New(), uuid.New(), 150)

	clock.advance(40 * time.Second)
	rt.Tick(ctx)
	if left, _ := rt.Snapshot(); left != 110 {
		t.Errorf("timeLeft after 40s = %d, want 110", left)
	}

	clock.advance(110 * time.Second)
	rt.Tick(ctx)

	left, active := rt.Snapshot()
	if left != 0 {
		t.Errorf("timeLeft = %d, want 0", left)
	}
	if active {
		t.Error("isActive = true after countdown finished")
	}
	if rt.Visible() {
		t.Error("timer still visible after countdown finished")
	}
	if store.active != nil {
		t.Error("finished timer row not deactivated")
	}
}

// TestStartFailureLeavesStateUntouched verifies the fail-silent contract:
// a store error on start is logged, not surfaced, and local state is not
// optimistically advanced.
func TestStartFailureLeavesStateUntouched(t *testing.T) {
	store := &fakeStore{failStart: true}
	clock := &movableClock{t: time.Now()}
	rt := newTestTimer(store, clock)

	rt.Start(context.Background(), uuid.New(), uuid.New(), 90)

	left, active := rt.Snapshot()
	if left != 0 || active {
		t.Errorf("state advanced on failed start: timeLeft=%d isActive=%v", left, active)
	}
	if rt.Visible() {
		t.Error("timer visible after failed start")
	}
}

// TestStopClearsState verifies Stop deactivates the row and zeroes local
// state, and that stopping an idle timer is a no-op against the store.
func TestStopClearsState(t *testing.T) {
	store := &fakeStore{}
	clock := &movableClock{t: time.Now()}
	rt := newTestTimer(store, clock)
	ctx := context.Background()

	rt.Stop(ctx) // idle: no store call
	if store.stops != 0 {
		t.Errorf("idle Stop hit the store %d times", store.stops)
	}

	rt.Start(ctx, uuid.New(), uuid.New(), 120)
	rt.Stop(ctx)

	left, active := rt.Snapshot()
	if left != 0 || active {
		t.Errorf("state after stop: timeLeft=%d isActive=%v", left, active)
	}
	if store.stops != 1 {
		t.Errorf("stops = %d, want 1", store.stops)
	}
}

// TestRefreshAdoptsRemoteRow verifies that Refresh picks up a timer row
// started elsewhere (another tab) and computes remaining time from its
// start instant.
func TestRefreshAdoptsRemoteRow(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{active: &models.RestTimer{
		ID:              uuid.New(),
		UserID:          1,
		SessionID:       uuid.New(),
		ExerciseID:      uuid.New(),
		StartTime:       start,
		DurationSeconds: 150,
		IsActive:        true,
	}}
	clock := &movableClock{t: start.Add(30 * time.Second)}
	rt := newTestTimer(store, clock)

	rt.Refresh(context.Background())

	left, active := rt.Snapshot()
	if left != 120 {
		t.Errorf("timeLeft = %d, want 120", left)
	}
	if !active {
		t.Error("isActive = false after adopting remote row")
	}
}

// TestRefreshExpiredRow verifies that a row whose countdown already lapsed
// is deactivated on refresh instead of being shown.
func TestRefreshExpiredRow(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{active: &models.RestTimer{
		ID:              uuid.New(),
		StartTime:       start,
		DurationSeconds: 60,
		IsActive:        true,
	}}
	clock := &movableClock{t: start.Add(5 * time.Minute)}
	rt := newTestTimer(store, clock)

	rt.Refresh(context.Background())

	if rt.Visible() {
		t.Error("expired timer visible after refresh")
	}
	if store.active != nil {
		t.Error("expired row not deactivated")
	}
}

// TestRefreshClearsWhenNoRow verifies that Refresh with no active row
// clears any stale local state.
func TestRefreshClearsWhenNoRow(t *testing.T) {
	store := &fakeStore{}
	clock := &movableClock{t: time.Now()}
	rt := newTestTimer(store, clock)
	ctx := context.Background()

	rt.Start(ctx, uuid.New(), uuid.New(), 120)
	store.active = nil // stopped from another tab

	rt.Refresh(ctx)

	left, active := rt.Snapshot()
	if left != 0 || active {
		t.Errorf("state after refresh: timeLeft=%d isActive=%v", left, active)
	}
}

// TestFormatSeconds verifies the "M:SS" rendering: minutes unpadded,
// seconds zero-padded.
func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{150, "2:30"},
		{90, "1:30"},
		{61, "1:01"},
		{9, "0:09"},
		{0, "0:00"},
		{600, "10:00"},
	}
	for _, tc := range tests {
		if got := FormatSeconds(tc.seconds); got != tc.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
