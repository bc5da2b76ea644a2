// Package stats aggregates completed records by category and event type
package stats

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/internal/ui"
)

const (
	barChartChar      = "▇"
	uncategorizedName = "Uncategorized"
	unknownName       = "Unknown"
	dayLayout         = "Mon Jan 02"
	maxDailyBars      = 31
)

// Group is the total for one category or event type.
type Group struct {
	Name       string        `json:"name"`
	Color      string        `json:"color"`
	Duration   time.Duration `json:"duration_ns"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
}

// Day is the counted time of one calendar day.
type Day struct {
	Date     time.Time     `json:"date"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats summarises the valid, completed records of a period.
type Stats struct {
	Since      time.Time     `json:"since"`
	Until      time.Time     `json:"until"`
	Categories []Group       `json:"categories"`
	EventTypes []Group       `json:"event_types"`
	Daily      []Day         `json:"daily"`
	Total      time.Duration `json:"total_ns"`
	Sessions   int           `json:"sessions"`
	Skipped    int           `json:"skipped"`
}

// Compute aggregates records started in [since, until]. Running and
// too-short records are counted in Skipped only.
func Compute(
	records []*models.Record,
	types []*models.EventType,
	cats map[string]*models.Category,
	since, until time.Time,
) *Stats {
	s := &Stats{Since: since, Until: until}

	typeIdx := make(map[string]*models.EventType, len(types))
	for _, et := range types {
		typeIdx[et.ID] = et
	}

	byCategory := make(map[string]*Group)
	byType := make(map[string]*Group)
	daily := make(map[time.Time]time.Duration)

	for _, r := range records {
		if r.Active() || !r.Valid {
			s.Skipped++
			continue
		}

		s.Total += r.Duration
		s.Sessions++

		daily[timeutil.RoundToStart(r.StartTime.Local())] += r.Duration

		et := typeIdx[r.EventTypeID]

		typeName, typeColor := unknownName, ""
		catName, catColor := uncategorizedName, ""

		if et != nil {
			cat := cats[et.CategoryID]

			typeName, typeColor = et.Name, et.DisplayColor(cat)

			if cat != nil {
				catName, catColor = cat.Name, cat.ColorHex
			}
		}

		add(byCategory, catName, catColor, r.Duration)
		add(byType, typeName, typeColor, r.Duration)
	}

	s.Categories = sorted(byCategory, s.Total)
	s.EventTypes = sorted(byType, s.Total)

	for date, d := range daily {
		s.Daily = append(s.Daily, Day{Date: date, Duration: d})
	}

	slices.SortFunc(s.Daily, func(a, b Day) int {
		return a.Date.Compare(b.Date)
	})

	return s
}

func add(m map[string]*Group, name, color string, d time.Duration) {
	g, ok := m[name]
	if !ok {
		g = &Group{Name: name, Color: color}
		m[name] = g
	}

	g.Duration += d
	g.Count++
}

// sorted orders groups by duration, longest first, and fills in their share
// of total.
func sorted(m map[string]*Group, total time.Duration) []Group {
	groups := make([]Group, 0, len(m))

	for _, g := range m {
		if total > 0 {
			g.Percentage = float64(g.Duration) / float64(total) * 100
		}

		groups = append(groups, *g)
	}

	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(b.Duration, a.Duration); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return groups
}

func groupsText(title string, groups []Group) string {
	if len(groups) == 0 {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", pterm.Blue(title))

	for _, g := range groups {
		fmt.Fprintf(
			&b,
			"%s: %s (%.0f%%, %d sessions)\n",
			ui.Hex(g.Color, g.Name),
			ui.Green(timeutil.FormatClock(g.Duration)),
			g.Percentage,
			g.Count,
		)
	}

	return b.String()
}

func dailyChart(days []Day) string {
	if len(days) < 2 || len(days) > maxDailyBars {
		return ""
	}

	bars := make(pterm.Bars, 0, len(days))

	for _, d := range days {
		bars = append(bars, pterm.Bar{
			Label: d.Date.Format(dayLayout),
			Value: int(d.Duration.Round(time.Minute) / time.Minute),
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return fmt.Sprintf("\n%s\n%s", pterm.Blue("Daily breakdown (minutes)"), chart)
}

// Render writes a text report of s to w.
func (s *Stats) Render(w io.Writer) {
	var period string
	if s.Since.IsZero() {
		period = "Reporting period: all time"
	} else {
		period = fmt.Sprintf(
			"Reporting period: %s - %s",
			s.Since.Format("January 02, 2006"),
			s.Until.Format("January 02, 2006"),
		)
	}

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintln(period)

	summary := fmt.Sprintf(
		"%s\nTime logged: %s\nSessions counted: %s\nSessions not counted: %s\n",
		pterm.Blue("Summary"),
		ui.Green(timeutil.FormatClock(s.Total)),
		ui.Green(s.Sessions),
		ui.Green(s.Skipped),
	)

	output := fmt.Sprint(
		header,
		summary,
		groupsText("Categories", s.Categories),
		groupsText("Event types", s.EventTypes),
		dailyChart(s.Daily),
	)

	fmt.Fprintln(w, strings.TrimSpace(output))
}
