// Package timer runs the session engine: it owns the single active record,
// drives the periodic tick, and recovers an interrupted session after a
// restart.
package timer

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/state"
	"github.com/itimeapp/itime/store"
)

const (
	defaultTickInterval  = time.Second
	defaultRefreshEvery  = 10
	unknownEventTypeName = "Unknown"
)

type (
	// RecordStore persists records and resolves their event types.
	RecordStore interface {
		InsertRecord(ctx context.Context, r *models.Record) error
		SaveRecord(ctx context.Context, r *models.Record) error
		Records(ctx context.Context, q store.RecordQuery) ([]*models.Record, error)
		EventType(ctx context.Context, id string) (*models.EventType, error)
	}

	// PointerStore holds the id of the active record across restarts.
	PointerStore interface {
		SetActive(id string, at time.Time) error
		Touch(at time.Time) error
		Active() (state.Pointer, bool, error)
		Clear() error
	}

	// Reminders schedules and delivers user notifications.
	Reminders interface {
		ScheduleReminder(ctx context.Context, eventName string, fireAt time.Time, interval time.Duration) error
		CancelReminder(ctx context.Context) error
		Remind(ctx context.Context, eventName string, elapsed time.Duration) error
		NotifyNow(ctx context.Context, title, body string) error
	}

	// Calendar mirrors completed sessions as calendar events.
	Calendar interface {
		CreateEvent(ctx context.Context, title string, start, end time.Time, calendarID string) (string, error)
		DeleteEvent(ctx context.Context, eventID, calendarID string) error
	}

	// Settings exposes the user preferences the engine reads.
	Settings interface {
		CompletionPolicy() models.CompletionPolicy
		ReminderInterval() (time.Duration, bool)
	}
)

// Deps are the collaborators of an Engine. Calendar may be nil.
type Deps struct {
	Records   RecordStore
	Pointer   PointerStore
	Reminders Reminders
	Calendar  Calendar
	Settings  Settings
}

// Snapshot is an immutable view of the engine state.
type Snapshot struct {
	Active         *models.Record
	EventType      *models.EventType
	LastCompleted  *models.Record
	LastReminderAt time.Time
	Elapsed        time.Duration
}

// Running reports whether a session is active.
func (s Snapshot) Running() bool {
	return s.Active != nil
}

// Engine is the single authority over the active session.
type Engine struct {
	reminderFrom   time.Time
	lastReminderAt time.Time
	Deps
	clock         clockwork.Clock
	log           *slog.Logger
	active        *models.Record
	activeType    *models.EventType
	lastCompleted *models.Record
	tick          *task
	effects       *queue
	notices       *queue
	newID         func() string
	observers     []func(Snapshot)
	elapsed       time.Duration
	tickInterval  time.Duration
	refreshEvery  int
	ticks         int
	mu            sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTickInterval sets how often elapsed time is recomputed.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}

// WithPointerRefresh sets how many ticks pass between refreshes of the
// pointer's advisory timestamp.
func WithPointerRefresh(ticks int) Option {
	return func(e *Engine) {
		e.refreshEvery = ticks
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New returns an idle Engine. Call Resume once at startup.
func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		Deps:         deps,
		clock:        clockwork.NewRealClock(),
		log:          slog.Default(),
		tickInterval: defaultTickInterval,
		refreshEvery: defaultRefreshEvery,
		newID:        uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.effects = newQueue()
	e.notices = newQueue()

	return e
}

// Subscribe registers fn to receive a snapshot after every transition and
// tick. Callbacks run in order on a dedicated goroutine.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, fn)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshotLocked()
}

// Settle blocks until every side effect and notification issued so far has
// run.
func (e *Engine) Settle() {
	e.effects.settle()
	e.notices.settle()
}

// Close stops the tick and drains pending side effects. The active session,
// if any, stays recorded for the next Resume.
func (e *Engine) Close() {
	e.mu.Lock()
	e.tick.cancel()
	e.tick = nil
	e.mu.Unlock()

	e.effects.close()
	e.notices.close()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Active:         e.active.Clone(),
		LastCompleted:  e.lastCompleted.Clone(),
		Elapsed:        e.elapsed,
		LastReminderAt: e.lastReminderAt,
	}

	if e.activeType != nil {
		et := *e.activeType
		s.EventType = &et
	}

	return s
}

func (e *Engine) publishLocked() {
	if len(e.observers) == 0 {
		return
	}

	snap := e.snapshotLocked()
	observers := slices.Clone(e.observers)

	e.notices.issue(func() {
		for _, fn := range observers {
			fn(snap)
		}
	})
}

// issue queues a side effect. Effects run detached from the caller's
// cancellation so a finished command does not abort its own writes.
func (e *Engine) issue(ctx context.Context, name string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	e.effects.issue(func() {
		if err := fn(ctx); err != nil {
			e.log.Warn(
				"side effect failed",
				slog.String("effect", name),
				slog.Any("error", err),
			)
		}
	})
}

func eventName(et *models.EventType) string {
	if et == nil || et.Name == "" {
		return unknownEventTypeName
	}

	return et.Name
}
