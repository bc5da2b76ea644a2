package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itimeapp/itime/internal/logger"
	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/timer"
)

var t0 = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

type call struct {
	op   string
	name string
}

type fakeEngine struct {
	snap  timer.Snapshot
	calls []call
}

func (f *fakeEngine) Start(_ context.Context, et *models.EventType) timer.Snapshot {
	f.calls = append(f.calls, call{"start", et.Name})
	f.run(et)

	return f.snap
}

func (f *fakeEngine) Stop(_ context.Context, _ models.CompletionPolicy) *models.Record {
	f.calls = append(f.calls, call{op: "stop"})

	if !f.snap.Running() {
		return nil
	}

	done := f.snap.Active
	_ = done.Complete(t0.Add(time.Hour), time.Minute)
	f.snap = timer.Snapshot{LastCompleted: done}

	return done
}

func (f *fakeEngine) Switch(
	_ context.Context,
	et *models.EventType,
	_ models.CompletionPolicy,
) timer.Snapshot {
	f.calls = append(f.calls, call{"switch", et.Name})
	f.run(et)

	return f.snap
}

func (f *fakeEngine) Snapshot() timer.Snapshot {
	return f.snap
}

func (f *fakeEngine) run(et *models.EventType) {
	f.snap = timer.Snapshot{
		Active:    &models.Record{ID: "r-" + et.ID, EventTypeID: et.ID, StartTime: t0},
		EventType: et,
	}
}

type policy struct{}

func (policy) CompletionPolicy() models.CompletionPolicy {
	return models.DefaultCompletionPolicy()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *fakeEngine) {
	t.Helper()

	eng := &fakeEngine{}
	types := []*models.EventType{
		{ID: "a", Name: "Reading", CategoryID: "c"},
		{ID: "b", Name: "Writing", CustomColorHex: "#FF0000"},
	}
	cats := map[string]*models.Category{
		"c": {ID: "c", Name: "Study", ColorHex: "#00FF00"},
	}

	return New(context.Background(), eng, policy{}, types, cats, logger.Discard()), eng
}

func TestPickStartsThenSwitches(t *testing.T) {
	m, eng := newTestModel(t)

	m.Update(runes("1"))
	require.True(t, m.snap.Running())
	assert.Equal(t, "a", m.snap.Active.EventTypeID)

	// picking the running type again does nothing
	m.Update(runes("1"))

	m.Update(runes("2"))
	assert.Equal(t, "b", m.snap.Active.EventTypeID)

	assert.Equal(t, []call{{"start", "Reading"}, {"switch", "Writing"}}, eng.calls)
}

func TestPickOutOfRangeIgnored(t *testing.T) {
	m, eng := newTestModel(t)

	m.Update(runes("7"))

	assert.Empty(t, eng.calls)
	assert.False(t, m.snap.Running())
}

func TestStopShowsLastCompleted(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(runes("1"))
	m.Update(runes("s"))

	assert.False(t, m.snap.Running())
	assert.Contains(t, m.View(), "No session running")
	assert.Contains(t, m.View(), "1:00:00")
}

func TestQuitLeavesSessionRunning(t *testing.T) {
	m, eng := newTestModel(t)

	m.Update(runes("1"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.Equal(t, []call{{"start", "Reading"}}, eng.calls)
}

func TestSnapshotMsgUpdatesView(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(SnapshotMsg(timer.Snapshot{
		Active:    &models.Record{ID: "x", EventTypeID: "b", StartTime: t0},
		EventType: &models.EventType{ID: "b", Name: "Writing"},
		Elapsed:   90 * time.Second,
	}))

	out := m.View()
	assert.Contains(t, out, "Writing")
	assert.Contains(t, out, "1:30")
}

func TestEmptyTypesHint(t *testing.T) {
	m := New(context.Background(), &fakeEngine{}, policy{}, nil, nil, logger.Discard())

	assert.Contains(t, m.View(), "itime type add")
}
