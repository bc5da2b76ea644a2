package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/store"
)

// stopKind distinguishes a stop the user asked for from one performed on
// their behalf by Start.
type stopKind int

const (
	explicitStop stopKind = iota
	implicitStop
)

const completedTitle = "Session completed"

// Start begins a session for et. A running session is stopped first with
// the default policy, without calendar sync or a completion notification.
func (e *Engine) Start(ctx context.Context, et *models.EventType) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		e.stopLocked(ctx, models.DefaultCompletionPolicy(), implicitStop)
	}

	e.startLocked(ctx, et)
	e.publishLocked()

	return e.snapshotLocked()
}

// Stop ends the running session and returns the completed record. It is a
// no-op returning nil when idle.
func (e *Engine) Stop(ctx context.Context, policy models.CompletionPolicy) *models.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	done := e.stopLocked(ctx, policy, explicitStop)
	if done != nil {
		e.publishLocked()
	}

	return done
}

// Switch stops the running session with policy and starts one for et.
// Observers see only the final state.
func (e *Engine) Switch(
	ctx context.Context,
	et *models.EventType,
	policy models.CompletionPolicy,
) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked(ctx, policy, explicitStop)
	e.startLocked(ctx, et)
	e.publishLocked()

	return e.snapshotLocked()
}

func (e *Engine) startLocked(ctx context.Context, et *models.EventType) {
	now := e.clock.Now()

	rec := &models.Record{
		ID:          e.newID(),
		EventTypeID: et.ID,
		StartTime:   now,
	}

	typ := *et

	e.active = rec
	e.activeType = &typ
	e.elapsed = 0
	e.resetReminderLocked(now)

	inserted := rec.Clone()

	e.log.Info(
		"session started",
		slog.String("record_id", rec.ID),
		slog.String("event_type", typ.Name),
	)

	e.issue(ctx, "insert record", func(ctx context.Context) error {
		return e.Records.InsertRecord(ctx, inserted)
	})

	e.issue(ctx, "set pointer", func(context.Context) error {
		return e.Pointer.SetActive(inserted.ID, now)
	})

	e.scheduleReminderLocked(ctx, now)
	e.startTickLocked()
}

func (e *Engine) stopLocked(
	ctx context.Context,
	policy models.CompletionPolicy,
	kind stopKind,
) *models.Record {
	if e.active == nil {
		return nil
	}

	e.stopTickLocked()

	rec, et := e.active, e.activeType

	if err := rec.Complete(e.clock.Now(), policy.MinValidDuration); err != nil {
		e.log.Error("complete record", slog.Any("error", err))
	}

	e.active = nil
	e.activeType = nil
	e.elapsed = 0
	e.resetReminderLocked(e.clock.Now())

	done, saved := rec.Clone(), rec.Clone()
	name := eventName(et)
	syncCalendar := done.Valid && policy.CalendarSyncEnabled && e.Calendar != nil

	e.log.Info(
		"session stopped",
		slog.String("record_id", done.ID),
		slog.Duration("duration", done.Duration),
		slog.Bool("valid", done.Valid),
		slog.Bool("implicit", kind == implicitStop),
	)

	e.issue(ctx, "save record", func(ctx context.Context) error {
		if syncCalendar {
			id, err := e.Calendar.CreateEvent(
				ctx,
				name,
				saved.StartTime,
				*saved.EndTime,
				policy.CalendarID,
			)
			if err != nil {
				e.log.Warn(
					"calendar sync failed",
					slog.String("record_id", saved.ID),
					slog.Any("error", err),
				)
			} else if id != "" {
				saved.CalendarEventID = id
			}
		}

		err := e.Records.SaveRecord(ctx, saved)
		if err != nil && saved.CalendarEventID != "" {
			derr := e.Calendar.DeleteEvent(ctx, saved.CalendarEventID, policy.CalendarID)
			if derr != nil {
				e.log.Warn(
					"unable to remove orphaned calendar event",
					slog.String("record_id", saved.ID),
					slog.String("event_id", saved.CalendarEventID),
					slog.Any("error", derr),
				)
			}
		}

		return err
	})

	e.issue(ctx, "clear pointer", func(context.Context) error {
		return e.Pointer.Clear()
	})

	e.issue(ctx, "cancel reminder", func(ctx context.Context) error {
		return e.Reminders.CancelReminder(ctx)
	})

	if kind == implicitStop {
		return done
	}

	e.lastCompleted = done.Clone()

	body := fmt.Sprintf("%s: %s", name, timeutil.FormatClock(done.Duration))
	if !done.Valid {
		body += " (too short to count)"
	}

	e.issue(ctx, "completion notice", func(ctx context.Context) error {
		return e.Reminders.NotifyNow(ctx, completedTitle, body)
	})

	return done
}

// Resume restores the session recorded by the pointer, if it is still
// active in the store. It is idempotent and reports whether a session is
// running afterwards.
func (e *Engine) Resume(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return true
	}

	ptr, ok, err := e.Pointer.Active()
	if err != nil {
		e.log.Warn("read active pointer", slog.Any("error", err))
		return false
	}

	if !ok {
		return false
	}

	records, err := e.Records.Records(ctx, store.RecordQuery{
		ID:         ptr.RecordID,
		ActiveOnly: true,
		Limit:      1,
	})
	if err != nil {
		e.log.Warn(
			"look up active record",
			slog.String("record_id", ptr.RecordID),
			slog.Any("error", err),
		)

		return false
	}

	if len(records) == 0 {
		e.log.Info(
			"clearing stale active pointer",
			slog.String("record_id", ptr.RecordID),
		)

		e.issue(ctx, "clear pointer", func(context.Context) error {
			return e.Pointer.Clear()
		})

		return false
	}

	rec := records[0]

	et, err := e.Records.EventType(ctx, rec.EventTypeID)
	if err != nil {
		e.log.Warn(
			"look up event type",
			slog.String("event_type_id", rec.EventTypeID),
			slog.Any("error", err),
		)

		et = &models.EventType{ID: rec.EventTypeID, Name: unknownEventTypeName}
	}

	now := e.clock.Now()

	e.active = rec
	e.activeType = et
	e.elapsed = now.Sub(rec.StartTime)
	e.resetReminderLocked(now)

	e.log.Info(
		"session resumed",
		slog.String("record_id", rec.ID),
		slog.Duration("elapsed", e.elapsed),
	)

	e.scheduleReminderLocked(ctx, now)
	e.startTickLocked()
	e.publishLocked()

	return true
}

// resetReminderLocked forgets past reminders and counts the next interval
// from now.
func (e *Engine) resetReminderLocked(now time.Time) {
	e.lastReminderAt = time.Time{}
	e.reminderFrom = now
}

func (e *Engine) scheduleReminderLocked(ctx context.Context, now time.Time) {
	interval, ok := e.Settings.ReminderInterval()
	if !ok {
		return
	}

	name := eventName(e.activeType)

	e.issue(ctx, "schedule reminder", func(ctx context.Context) error {
		return e.Reminders.ScheduleReminder(ctx, name, now.Add(interval), interval)
	})
}
