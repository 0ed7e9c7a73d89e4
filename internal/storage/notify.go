package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// TimerEvents is a subscription handle for rest-timer change notifications.
// Each delivered value is an opaque "something changed for this user"
// signal; subscribers react by refetching the active timer, never by
// inspecting a payload. Close tears the subscription down.
type TimerEvents struct {
	ch     chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// Events returns the signal channel. It is closed when the subscription
// ends, whether by Close or by a connection failure.
func (e *TimerEvents) Events() <-chan struct{} {
	return e.ch
}

// Close tears down the subscription and releases its connection.
func (e *TimerEvents) Close() {
	e.cancel()
	<-e.done
}

// SubscribeRestTimers listens on the rest_timers NOTIFY channel and forwards
// a signal for every change affecting the given user. The trigger installed
// by the schema sends the owning user id as payload; events for other users
// are dropped here. A dedicated connection is held for the lifetime of the
// subscription.
func (db *DB) SubscribeRestTimers(ctx context.Context, userID int, log *slog.Logger) (*TimerEvents, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, `LISTEN rest_timers`); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listening on rest_timers: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	ev := &TimerEvents{
		ch:     make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(ev.done)
		defer close(ev.ch)
		defer conn.Release()

		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					log.Warn("rest timer subscription ended", "error", err)
				}
				return
			}
			if id, err := strconv.Atoi(n.Payload); err != nil || id != userID {
				continue
			}
			// Coalesce: one pending signal is enough to trigger a refetch.
			select {
			case ev.ch <- struct{}{}:
			default:
			}
		}
	}()

	return ev, nil
}
