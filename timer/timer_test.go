package timer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itimeapp/itime/internal/logger"
	"github.com/itimeapp/itime/internal/models"
)

var (
	t0 = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	coding  = &models.EventType{ID: "et-code", Name: "Programming"}
	reading = &models.EventType{ID: "et-read", Name: "Reading"}

	strict = models.CompletionPolicy{MinValidDuration: 300 * time.Second}
)

type harness struct {
	engine    *Engine
	clock     *clockwork.FakeClock
	records   *memRecords
	pointer   *memPointer
	reminders *fakeReminders
	calendar  *fakeCalendar
}

func newHarness(t *testing.T, settings fakeSettings) *harness {
	t.Helper()

	h := &harness{
		clock:     clockwork.NewFakeClockAt(t0),
		records:   newMemRecords(coding, reading),
		pointer:   &memPointer{},
		reminders: &fakeReminders{},
		calendar:  &fakeCalendar{},
	}

	n := 0

	h.engine = New(
		Deps{
			Records:   h.records,
			Pointer:   h.pointer,
			Reminders: h.reminders,
			Calendar:  h.calendar,
			Settings:  settings,
		},
		WithClock(h.clock),
		WithLogger(logger.Discard()),
		// ticks are driven by hand
		WithTickInterval(24*time.Hour),
		WithPointerRefresh(10),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("rec-%d", n)
		}),
	)

	t.Cleanup(h.engine.Close)

	return h
}

func defaultSettings() fakeSettings {
	return fakeSettings{policy: strict, interval: time.Hour}
}

func TestStartCreatesActiveRecord(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	snap := h.engine.Start(ctx, coding)
	h.engine.Settle()

	require.True(t, snap.Running())
	assert.Equal(t, "rec-1", snap.Active.ID)
	assert.Equal(t, coding.Name, snap.EventType.Name)
	assert.Zero(t, snap.Elapsed)

	rec := h.records.get("rec-1")
	require.NotNil(t, rec)
	assert.True(t, rec.Active())
	assert.True(t, rec.StartTime.Equal(t0))

	ptr, ok := h.pointer.current()
	require.True(t, ok)
	assert.Equal(t, "rec-1", ptr.RecordID)

	pending := h.reminders.pendingReminder()
	require.NotNil(t, pending)
	assert.True(t, pending.fireAt.Equal(t0.Add(time.Hour)))
	assert.Equal(t, coding.Name, pending.name)
}

func TestSingleActiveRecord(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	steps := []func(){
		func() { h.engine.Start(ctx, coding) },
		func() { h.engine.Start(ctx, reading) },
		func() { h.engine.Switch(ctx, coding, strict) },
		func() { h.engine.Stop(ctx, strict) },
		func() { h.engine.Stop(ctx, strict) },
		func() { h.engine.Switch(ctx, reading, strict) },
		func() { h.engine.Start(ctx, reading) },
	}

	for i, step := range steps {
		h.clock.Advance(time.Minute)
		step()
		h.engine.Settle()

		assert.LessOrEqual(t, h.records.activeCount(), 1, "after step %d", i)
	}

	assert.Equal(t, 1, h.records.activeCount())
	assert.Len(t, h.records.all(), 5)
}

func TestDurationIsWallClock(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.engine.Start(ctx, coding)

	// a couple of ticks must not influence the final duration
	h.clock.Advance(50 * time.Second)
	h.engine.Tick(ctx)
	h.clock.Advance(75 * time.Second)

	done := h.engine.Stop(ctx, strict)
	h.engine.Settle()

	require.NotNil(t, done)
	assert.Equal(t, 125*time.Second, done.Duration)
	assert.Equal(t, 125*time.Second, h.records.get(done.ID).Duration)
}

func TestValidityThreshold(t *testing.T) {
	testCases := []struct {
		name    string
		elapsed time.Duration
		valid   bool
	}{
		{"should be invalid just under the threshold", 299 * time.Second, false},
		{"should be valid at the threshold", 300 * time.Second, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, defaultSettings())
			ctx := context.Background()

			h.engine.Start(ctx, coding)
			h.clock.Advance(tc.elapsed)

			done := h.engine.Stop(ctx, strict)
			h.engine.Settle()

			require.NotNil(t, done)
			assert.Equal(t, tc.valid, done.Valid)
			assert.Equal(t, tc.valid, h.records.get(done.ID).Valid)
		})
	}
}

func TestSwitchIsAtomic(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	var (
		mu    sync.Mutex
		snaps []Snapshot
	)

	h.engine.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()

		snaps = append(snaps, s)
	})

	h.engine.Start(ctx, coding)
	h.clock.Advance(10 * time.Minute)

	snap := h.engine.Switch(ctx, reading, strict)
	h.engine.Settle()

	require.True(t, snap.Running())
	assert.Equal(t, reading.ID, snap.Active.EventTypeID)

	all := h.records.all()
	require.Len(t, all, 2)

	first, second := all[0], all[1]
	require.NotNil(t, first.EndTime)
	assert.True(t, first.EndTime.Equal(t0.Add(10*time.Minute)))
	assert.True(t, first.Valid)
	assert.True(t, second.Active())
	assert.True(t, second.StartTime.Equal(*first.EndTime))

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, snaps, 2)

	for _, s := range snaps {
		assert.True(t, s.Running(), "observers never see an idle engine")
	}

	assert.Equal(t, second.ID, snaps[1].Active.ID)
}

func TestStopWhenIdle(t *testing.T) {
	h := newHarness(t, defaultSettings())

	assert.Nil(t, h.engine.Stop(context.Background(), strict))
	h.engine.Settle()

	assert.Empty(t, h.reminders.kinds())
	assert.Empty(t, h.records.all())
}

func TestResumeIsIdempotent(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	require.NoError(t, h.records.InsertRecord(ctx, &models.Record{
		ID: "old", EventTypeID: coding.ID, StartTime: t0.Add(-10 * time.Minute),
	}))
	require.NoError(t, h.pointer.SetActive("old", t0.Add(-time.Minute)))

	require.True(t, h.engine.Resume(ctx))

	h.engine.mu.Lock()
	firstTick := h.engine.tick
	h.engine.mu.Unlock()

	first := h.engine.Snapshot()

	require.True(t, h.engine.Resume(ctx))
	h.engine.Settle()

	h.engine.mu.Lock()
	assert.Same(t, firstTick, h.engine.tick)
	h.engine.mu.Unlock()

	assert.Equal(t, first, h.engine.Snapshot())
	assert.Len(t, h.records.all(), 1)
	assert.Equal(t, 1, h.reminders.count("schedule"))
}

func TestResumeAfterRestart(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	require.NoError(t, h.records.InsertRecord(ctx, &models.Record{
		ID: "old", EventTypeID: reading.ID, StartTime: t0.Add(-600 * time.Second),
	}))
	require.NoError(t, h.pointer.SetActive("old", t0.Add(-5*time.Second)))

	require.True(t, h.engine.Resume(ctx))
	h.engine.Settle()

	snap := h.engine.Snapshot()
	require.True(t, snap.Running())
	assert.Equal(t, "old", snap.Active.ID)
	assert.Equal(t, reading.Name, snap.EventType.Name)
	assert.InDelta(t, 600, snap.Elapsed.Seconds(), 1)

	pending := h.reminders.pendingReminder()
	require.NotNil(t, pending)
	assert.True(t, pending.fireAt.Equal(t0.Add(time.Hour)), "re-armed from resume time")

	h.clock.Advance(time.Second)
	h.engine.Tick(ctx)
	assert.InDelta(t, 601, h.engine.Snapshot().Elapsed.Seconds(), 1)
}

func TestResumeClearsStalePointer(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	rec := &models.Record{ID: "done", EventTypeID: coding.ID, StartTime: t0.Add(-time.Hour)}
	require.NoError(t, rec.Complete(t0.Add(-time.Minute), 0))
	require.NoError(t, h.records.InsertRecord(ctx, rec))
	require.NoError(t, h.pointer.SetActive("done", t0.Add(-time.Minute)))

	assert.False(t, h.engine.Resume(ctx))
	h.engine.Settle()

	assert.False(t, h.engine.Snapshot().Running())

	_, ok := h.pointer.current()
	assert.False(t, ok)
}

func TestResumeMissingRecordClearsPointer(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	require.NoError(t, h.pointer.SetActive("ghost", t0))

	assert.False(t, h.engine.Resume(ctx))
	h.engine.Settle()

	_, ok := h.pointer.current()
	assert.False(t, ok)
}

func TestResumeKeepsPointerOnStoreError(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.records.queryErr = errBoom
	require.NoError(t, h.pointer.SetActive("maybe", t0))

	assert.False(t, h.engine.Resume(ctx))
	h.engine.Settle()

	_, ok := h.pointer.current()
	assert.True(t, ok)
}

func TestResumeWithNothingToRecover(t *testing.T) {
	h := newHarness(t, defaultSettings())

	assert.False(t, h.engine.Resume(context.Background()))

	h.pointer.readErr = errBoom
	assert.False(t, h.engine.Resume(context.Background()))
}

func TestStopCancelsReminder(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.engine.Start(ctx, coding)
	h.clock.Advance(10 * time.Minute)
	h.engine.Stop(ctx, strict)
	h.engine.Settle()

	assert.Nil(t, h.reminders.pendingReminder())

	h.clock.Advance(5 * time.Minute)
	h.engine.Start(ctx, reading)
	h.engine.Settle()

	pending := h.reminders.pendingReminder()
	require.NotNil(t, pending)
	assert.True(t, pending.fireAt.Equal(t0.Add(15*time.Minute+time.Hour)))
	assert.Equal(t, reading.Name, pending.name)

	assert.Equal(t, []string{"schedule", "cancel", "notify", "schedule"}, h.reminders.kinds())
}

func TestImplicitStopOrdersCancelBeforeSchedule(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.engine.Start(ctx, coding)
	h.clock.Advance(time.Minute)
	h.engine.Start(ctx, reading)
	h.engine.Settle()

	// no completion notice for an implicit stop
	assert.Equal(t, []string{"schedule", "cancel", "schedule"}, h.reminders.kinds())
	assert.Equal(t, reading.Name, h.reminders.pendingReminder().name)
	assert.Nil(t, h.engine.Snapshot().LastCompleted)
}

func TestImplicitStopUsesDefaultPolicy(t *testing.T) {
	lenient := models.CompletionPolicy{
		MinValidDuration:    time.Minute,
		CalendarSyncEnabled: true,
		CalendarID:          "work",
	}

	h := newHarness(t, fakeSettings{policy: lenient, interval: time.Hour})
	ctx := context.Background()

	h.engine.Start(ctx, coding)
	h.clock.Advance(2 * time.Minute)
	h.engine.Start(ctx, reading)
	h.engine.Settle()

	first := h.records.get("rec-1")
	require.NotNil(t, first.EndTime)
	assert.Equal(t, 2*time.Minute, first.Duration)
	assert.False(t, first.Valid)
	assert.Empty(t, first.CalendarEventID)
	assert.Zero(t, h.calendar.count())
}

func TestNoReminderWhenNever(t *testing.T) {
	h := newHarness(t, fakeSettings{policy: strict})
	ctx := context.Background()

	h.engine.Start(ctx, coding)
	h.clock.Advance(3 * time.Hour)
	h.engine.Tick(ctx)
	h.engine.Settle()

	assert.Zero(t, h.reminders.count("schedule"))
	assert.Zero(t, h.reminders.count("remind"))
}

func TestCalendarSync(t *testing.T) {
	testCases := []struct {
		name      string
		elapsed   time.Duration
		enabled   bool
		calErr    error
		wantCalls int
		wantID    string
	}{
		{"should sync a valid session", 10 * time.Minute, true, nil, 1, "cal-event-1"},
		{"should skip an invalid session", 299 * time.Second, true, nil, 0, ""},
		{"should skip when disabled", 10 * time.Minute, false, nil, 0, ""},
		{"should save the record when sync fails", 10 * time.Minute, true, errBoom, 1, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, defaultSettings())
			h.calendar.err = tc.calErr
			ctx := context.Background()

			policy := strict
			policy.CalendarSyncEnabled = tc.enabled

			h.engine.Start(ctx, coding)
			h.clock.Advance(tc.elapsed)
			done := h.engine.Stop(ctx, policy)
			h.engine.Settle()

			assert.Equal(t, tc.wantCalls, h.calendar.count())

			saved := h.records.get(done.ID)
			require.NotNil(t, saved.EndTime)
			assert.Equal(t, tc.wantID, saved.CalendarEventID)
		})
	}
}

func TestCalendarEventRemovedWhenSaveFails(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	policy := strict
	policy.CalendarSyncEnabled = true

	h.engine.Start(ctx, coding)
	h.records.mu.Lock()
	h.records.saveErr = errBoom
	h.records.mu.Unlock()

	h.clock.Advance(10 * time.Minute)
	h.engine.Stop(ctx, policy)
	h.engine.Settle()

	assert.Equal(t, 1, h.calendar.count())
	assert.Equal(t, []string{"cal-event-1"}, h.calendar.deletedEvents())
}

func TestCloseFlushesPendingEffects(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.engine.Start(ctx, coding)
	h.clock.Advance(10 * time.Minute)
	done := h.engine.Stop(ctx, strict)
	h.engine.Close()

	saved := h.records.get(done.ID)
	require.NotNil(t, saved.EndTime)
	assert.True(t, saved.Valid)

	_, ok, err := h.pointer.Active()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, h.reminders.count("cancel"))
	assert.Equal(t, 1, h.reminders.count("notify"))
}

func TestTickRefreshesPointer(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.engine.Start(ctx, coding)

	for range 25 {
		h.clock.Advance(time.Second)
		h.engine.Tick(ctx)
	}

	h.engine.Settle()

	h.pointer.mu.Lock()
	defer h.pointer.mu.Unlock()

	assert.Equal(t, 2, h.pointer.touches)
	assert.True(t, h.pointer.ptr.UpdatedAt.Equal(t0.Add(20*time.Second)))
}

func TestTickFiresReminderOncePerInterval(t *testing.T) {
	h := newHarness(t, fakeSettings{policy: strict, interval: 15 * time.Minute})
	ctx := context.Background()

	h.engine.Start(ctx, coding)

	h.clock.Advance(14 * time.Minute)
	h.engine.Tick(ctx)
	h.engine.Settle()
	assert.Zero(t, h.reminders.count("remind"))

	h.clock.Advance(time.Minute)
	h.engine.Tick(ctx)
	h.engine.Tick(ctx)
	h.engine.Settle()
	assert.Equal(t, 1, h.reminders.count("remind"))
	assert.True(t, h.engine.Snapshot().LastReminderAt.Equal(t0.Add(15*time.Minute)))

	h.clock.Advance(15 * time.Minute)
	h.engine.Tick(ctx)
	h.engine.Settle()
	assert.Equal(t, 2, h.reminders.count("remind"))
}

func TestTickIgnoredWhenIdle(t *testing.T) {
	h := newHarness(t, defaultSettings())

	h.engine.Tick(context.Background())
	h.engine.Settle()

	assert.Zero(t, h.engine.Snapshot().Elapsed)
	assert.Empty(t, h.reminders.kinds())
}

func TestBackgroundTick(t *testing.T) {
	h := newHarness(t, defaultSettings())
	h.engine.tickInterval = time.Second
	ctx := context.Background()

	h.engine.Start(ctx, coding)

	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(time.Second)

	assert.Eventually(t, func() bool {
		return h.engine.Snapshot().Elapsed == time.Second
	}, time.Second, 5*time.Millisecond)

	h.engine.Stop(ctx, strict)
	h.engine.Settle()

	h.engine.mu.Lock()
	assert.Nil(t, h.engine.tick)
	h.engine.mu.Unlock()
}

func TestTaskCancelIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	tk := startTask(clock, time.Second, func(*task) {})

	tk.cancel()
	tk.cancel()

	var nilTask *task
	nilTask.cancel()
}

func TestCloseDrainsEffects(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ctx := context.Background()

	h.engine.Start(ctx, coding)
	h.engine.Close()

	assert.NotNil(t, h.records.get("rec-1"))

	_, ok := h.pointer.current()
	assert.True(t, ok, "closing leaves the session recoverable")
}
