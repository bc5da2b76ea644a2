// Package notify delivers desktop notifications and owns the single pending
// session reminder.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/jonboulle/clockwork"

	"github.com/itimeapp/itime/internal/timeutil"
)

const reminderTitle = "Time reminder"

// dedupeWindow suppresses a reminder that repeats one delivered moments
// earlier by the other path (scheduled or tick-driven).
const dedupeWindow = 30 * time.Second

// Sender displays one notification.
type Sender func(title, message, icon string) error

func beeepSender(title, message, icon string) error {
	return beeep.Notify(title, message, icon)
}

// Coordinator schedules, supersedes and cancels reminders.
type Coordinator struct {
	lastReminder time.Time
	fireAt       time.Time
	clock        clockwork.Clock
	pending      clockwork.Timer
	send         Sender
	log          *slog.Logger
	icon         string
	mu           sync.Mutex
	enabled      bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithSender(s Sender) Option {
	return func(c *Coordinator) {
		c.send = s
	}
}

func WithIcon(path string) Option {
	return func(c *Coordinator) {
		c.icon = path
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// New returns a Coordinator. A disabled coordinator accepts every call and
// delivers nothing.
func New(clock clockwork.Clock, enabled bool, opts ...Option) *Coordinator {
	c := &Coordinator{
		clock:   clock,
		send:    beeepSender,
		log:     slog.Default(),
		enabled: enabled,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ScheduleReminder arms a reminder for eventName at fireAt, replacing any
// pending one.
func (c *Coordinator) ScheduleReminder(
	_ context.Context,
	eventName string,
	fireAt time.Time,
	interval time.Duration,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()

	if !c.enabled {
		return nil
	}

	if !fireAt.After(c.clock.Now()) {
		c.log.Debug("reminder not armed: fire time has passed",
			slog.Time("fire_at", fireAt))

		return nil
	}

	body := fmt.Sprintf(
		"%s has been running for %s",
		eventName,
		timeutil.Describe(interval),
	)

	var timer clockwork.Timer

	timer = c.clock.AfterFunc(c.clock.Until(fireAt), func() {
		c.mu.Lock()

		if c.pending != timer {
			c.mu.Unlock()
			return
		}

		c.pending = nil
		c.fireAt = time.Time{}
		deliver := c.markReminderLocked()
		c.mu.Unlock()

		if deliver {
			c.deliver(reminderTitle, body)
		}
	})

	c.pending = timer
	c.fireAt = fireAt

	return nil
}

// CancelReminder drops the pending reminder. It is safe to call when none
// is pending.
func (c *Coordinator) CancelReminder(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()

	return nil
}

// Remind delivers an immediate reminder for a running session.
func (c *Coordinator) Remind(
	_ context.Context,
	eventName string,
	elapsed time.Duration,
) error {
	c.mu.Lock()
	deliver := c.enabled && c.markReminderLocked()
	c.mu.Unlock()

	if !deliver {
		return nil
	}

	return c.deliver(reminderTitle, fmt.Sprintf(
		"%s has been running for %s",
		eventName,
		timeutil.FormatClock(elapsed),
	))
}

// NotifyNow delivers a notification immediately.
func (c *Coordinator) NotifyNow(_ context.Context, title, body string) error {
	if !c.enabled {
		return nil
	}

	return c.deliver(title, body)
}

// Pending returns the fire time of the armed reminder.
func (c *Coordinator) Pending() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fireAt, c.pending != nil
}

func (c *Coordinator) cancelLocked() {
	if c.pending != nil {
		c.pending.Stop()
	}

	c.pending = nil
	c.fireAt = time.Time{}
}

func (c *Coordinator) markReminderLocked() bool {
	now := c.clock.Now()

	if !c.lastReminder.IsZero() && now.Sub(c.lastReminder) < dedupeWindow {
		return false
	}

	c.lastReminder = now

	return true
}

func (c *Coordinator) deliver(title, body string) error {
	err := c.send(title, body, c.icon)
	if err != nil {
		c.log.Warn(
			"unable to display notification",
			slog.String("title", title),
			slog.Any("error", err),
		)
	}

	return err
}
