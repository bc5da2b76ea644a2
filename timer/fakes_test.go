package timer

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/state"
	"github.com/itimeapp/itime/store"
)

var errBoom = errors.New("boom")

type memRecords struct {
	records  map[string]*models.Record
	types    map[string]*models.EventType
	order    []string
	queryErr error
	saveErr  error
	mu       sync.Mutex
}

func newMemRecords(types ...*models.EventType) *memRecords {
	m := &memRecords{
		records: make(map[string]*models.Record),
		types:   make(map[string]*models.EventType),
	}

	for _, et := range types {
		m.types[et.ID] = et
	}

	return m
}

func (m *memRecords) InsertRecord(_ context.Context, r *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[r.ID] = r.Clone()
	m.order = append(m.order, r.ID)

	return nil
}

func (m *memRecords) SaveRecord(_ context.Context, r *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	if _, ok := m.records[r.ID]; !ok {
		return store.ErrNotFound.Fmt("record", r.ID)
	}

	m.records[r.ID] = r.Clone()

	return nil
}

func (m *memRecords) Records(_ context.Context, q store.RecordQuery) ([]*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queryErr != nil {
		return nil, m.queryErr
	}

	var out []*models.Record

	for _, id := range m.order {
		r := m.records[id]

		if q.ID != "" && r.ID != q.ID {
			continue
		}

		if q.ActiveOnly && !r.Active() {
			continue
		}

		out = append(out, r.Clone())
	}

	return out, nil
}

func (m *memRecords) EventType(_ context.Context, id string) (*models.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	et, ok := m.types[id]
	if !ok {
		return nil, store.ErrNotFound.Fmt("event type", id)
	}

	c := *et

	return &c, nil
}

func (m *memRecords) get(id string) *models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.records[id].Clone()
}

func (m *memRecords) all() []*models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Clone())
	}

	return out
}

func (m *memRecords) activeCount() int {
	n := 0

	for _, r := range m.all() {
		if r.Active() {
			n++
		}
	}

	return n
}

type memPointer struct {
	ptr     *state.Pointer
	touches int
	readErr error
	mu      sync.Mutex
}

func (p *memPointer) SetActive(id string, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ptr = &state.Pointer{RecordID: id, UpdatedAt: at}

	return nil
}

func (p *memPointer) Touch(at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ptr != nil {
		p.ptr.UpdatedAt = at
		p.touches++
	}

	return nil
}

func (p *memPointer) Active() (state.Pointer, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readErr != nil {
		return state.Pointer{}, false, p.readErr
	}

	if p.ptr == nil {
		return state.Pointer{}, false, nil
	}

	return *p.ptr, true, nil
}

func (p *memPointer) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ptr = nil

	return nil
}

func (p *memPointer) current() (state.Pointer, bool) {
	ptr, ok, _ := p.Active()
	return ptr, ok
}

type reminderCall struct {
	fireAt time.Time
	kind   string
	name   string
}

type fakeReminders struct {
	calls   []reminderCall
	pending *reminderCall
	mu      sync.Mutex
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, name string, fireAt time.Time, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := reminderCall{kind: "schedule", name: name, fireAt: fireAt}
	f.calls = append(f.calls, c)
	f.pending = &c

	return nil
}

func (f *fakeReminders) CancelReminder(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, reminderCall{kind: "cancel"})
	f.pending = nil

	return nil
}

func (f *fakeReminders) Remind(_ context.Context, name string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, reminderCall{kind: "remind", name: name})

	return nil
}

func (f *fakeReminders) NotifyNow(_ context.Context, title, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, reminderCall{kind: "notify", name: title})

	return nil
}

func (f *fakeReminders) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.kind)
	}

	return out
}

func (f *fakeReminders) count(kind string) int {
	n := 0

	for _, k := range f.kinds() {
		if k == kind {
			n++
		}
	}

	return n
}

func (f *fakeReminders) pendingReminder() *reminderCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pending
}

type fakeCalendar struct {
	err     error
	deleted []string
	calls   int
	mu      sync.Mutex
}

func (f *fakeCalendar) CreateEvent(context.Context, string, time.Time, time.Time, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.err != nil {
		return "", f.err
	}

	return "cal-event-1", nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, eventID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, eventID)

	return nil
}

func (f *fakeCalendar) deletedEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.deleted)
}

func (f *fakeCalendar) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakeSettings struct {
	policy   models.CompletionPolicy
	interval time.Duration
}

func (s fakeSettings) CompletionPolicy() models.CompletionPolicy {
	return s.policy
}

func (s fakeSettings) ReminderInterval() (time.Duration, bool) {
	return s.interval, s.interval > 0
}
