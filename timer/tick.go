package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// task is a recurring tick. cancel is idempotent and safe on a nil task.
type task struct {
	ticker clockwork.Ticker
	done   chan struct{}
	once   sync.Once
}

func startTask(clock clockwork.Clock, every time.Duration, fn func(*task)) *task {
	t := &task{
		ticker: clock.NewTicker(every),
		done:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.Chan():
				fn(t)
			}
		}
	}()

	return t
}

func (t *task) cancel() {
	if t == nil {
		return
	}

	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// startTickLocked replaces any running tick with a fresh one.
func (e *Engine) startTickLocked() {
	e.tick.cancel()
	e.ticks = 0
	e.tick = startTask(e.clock, e.tickInterval, e.onTick)
}

func (e *Engine) stopTickLocked() {
	e.tick.cancel()
	e.tick = nil
}

// onTick ignores ticks from a task that has since been replaced.
func (e *Engine) onTick(t *task) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tick != t {
		return
	}

	e.tickLocked(context.Background())
}

// Tick advances the running session once. It is what the periodic task
// calls and may also be driven directly.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickLocked(ctx)
}

func (e *Engine) tickLocked(ctx context.Context) {
	if e.active == nil {
		return
	}

	now := e.clock.Now()
	e.elapsed = now.Sub(e.active.StartTime)
	e.ticks++

	if e.refreshEvery > 0 && e.ticks%e.refreshEvery == 0 {
		e.issue(ctx, "touch pointer", func(context.Context) error {
			return e.Pointer.Touch(now)
		})
	}

	if interval, ok := e.Settings.ReminderInterval(); ok && e.reminderDue(now, interval) {
		e.lastReminderAt = now

		name, elapsed := eventName(e.activeType), e.elapsed

		e.log.Debug(
			"reminder due",
			slog.String("record_id", e.active.ID),
			slog.Duration("elapsed", elapsed),
		)

		e.issue(ctx, "remind", func(ctx context.Context) error {
			return e.Reminders.Remind(ctx, name, elapsed)
		})
	}

	e.publishLocked()
}

// reminderDue reports whether a full interval has passed since the last
// reminder, or since the session was armed when none has fired.
func (e *Engine) reminderDue(now time.Time, interval time.Duration) bool {
	anchor := e.reminderFrom
	if e.lastReminderAt.After(anchor) {
		anchor = e.lastReminderAt
	}

	return e.elapsed >= interval && now.Sub(anchor) >= interval
}
