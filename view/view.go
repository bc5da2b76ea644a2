// Package view is the live terminal screen that hosts the timer engine.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/timer"
)

// Engine is the part of the timer engine the view drives.
type Engine interface {
	Start(ctx context.Context, et *models.EventType) timer.Snapshot
	Stop(ctx context.Context, policy models.CompletionPolicy) *models.Record
	Switch(ctx context.Context, et *models.EventType, policy models.CompletionPolicy) timer.Snapshot
	Snapshot() timer.Snapshot
}

// PolicySource supplies the policy for explicit stops.
type PolicySource interface {
	CompletionPolicy() models.CompletionPolicy
}

// SnapshotMsg carries an engine snapshot into the program.
type SnapshotMsg timer.Snapshot

// Model is the bubbletea model of the live screen.
type Model struct {
	ctx        context.Context
	engine     Engine
	policy     PolicySource
	log        *slog.Logger
	categories map[string]*models.Category
	help       help.Model
	types      []*models.EventType
	snap       timer.Snapshot
}

// New returns a Model listing types for quick selection. Only the first
// nine are reachable from the keyboard.
func New(
	ctx context.Context,
	engine Engine,
	policy PolicySource,
	types []*models.EventType,
	categories map[string]*models.Category,
	log *slog.Logger,
) *Model {
	if len(types) > maxTypes {
		types = types[:maxTypes]
	}

	return &Model{
		ctx:        ctx,
		engine:     engine,
		policy:     policy,
		types:      types,
		categories: categories,
		log:        log,
		help:       help.New(),
		snap:       engine.Snapshot(),
	}
}

// Observe returns an engine observer that forwards snapshots to p.
func Observe(p *tea.Program) func(timer.Snapshot) {
	return func(s timer.Snapshot) {
		p.Send(SnapshotMsg(s))
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = timer.Snapshot(msg)

		return m, nil

	case tea.KeyMsg:
		m.log.Debug("key press", slog.String("msg", spew.Sdump(msg)))

		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width - padding*2

		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.quit):
		// the session keeps running and is resumed on next launch
		return m, tea.Quit

	case key.Matches(msg, defaultKeymap.stop):
		m.engine.Stop(m.ctx, m.policy.CompletionPolicy())
		m.snap = m.engine.Snapshot()

	case key.Matches(msg, defaultKeymap.pick):
		idx := int(msg.Runes[0] - '1')
		if idx >= len(m.types) {
			return m, nil
		}

		et := m.types[idx]

		if m.snap.Running() && m.snap.Active.EventTypeID == et.ID {
			return m, nil
		}

		if m.snap.Running() {
			m.snap = m.engine.Switch(m.ctx, et, m.policy.CompletionPolicy())
		} else {
			m.snap = m.engine.Start(m.ctx, et)
		}
	}

	return m, nil
}

func (m *Model) View() string {
	var s strings.Builder

	if m.snap.Running() {
		et := m.snap.EventType

		s.WriteString(titleStyle(m.colorOf(et)).Render(et.Name))
		s.WriteString(hintStyle.Render(
			" since " + m.snap.Active.StartTime.Local().Format("15:04"),
		))
		s.WriteString("\n\n")
		s.WriteString(clockStyle.Render(timeutil.FormatClock(m.snap.Elapsed)))
	} else {
		s.WriteString(hintStyle.Render("No session running"))

		if done := m.snap.LastCompleted; done != nil {
			s.WriteString(hintStyle.Render(fmt.Sprintf(
				" (last: %s%s)",
				timeutil.FormatClock(done.Duration),
				validity(done),
			)))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(m.typesView())
	s.WriteString("\n" + m.help.View(defaultKeymap))

	return baseStyle.Render(s.String())
}

func (m *Model) typesView() string {
	if len(m.types) == 0 {
		return hintStyle.Render("No event types yet. Add one with 'itime type add'.") + "\n"
	}

	var s strings.Builder

	for i, et := range m.types {
		line := fmt.Sprintf("%d  %s", i+1, titleStyle(m.colorOf(et)).Render(et.Name))

		if m.snap.Running() && m.snap.Active.EventTypeID == et.ID {
			s.WriteString(activeItemStyle.Render(line+" ●") + "\n")
			continue
		}

		s.WriteString(itemStyle.Render(line) + "\n")
	}

	return s.String()
}

func (m *Model) colorOf(et *models.EventType) string {
	return et.DisplayColor(m.categories[et.CategoryID])
}

func validity(r *models.Record) string {
	if r.Valid {
		return ""
	}

	return ", not counted"
}
