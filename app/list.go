package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/internal/ui"
)

const (
	noRecordsMsg = "No sessions found for the specified time range"
	dateLayout   = "Jan 02, 2006 03:04 PM"
)

// recordRow is a record joined with its event type for display.
type recordRow struct {
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	ID              string     `json:"id"`
	EventType       string     `json:"event_type"`
	Category        string     `json:"category,omitempty"`
	CalendarEventID string     `json:"calendar_event_id,omitempty"`
	color           string
	Seconds         int64 `json:"duration_seconds"`
	Valid           bool  `json:"valid"`
	Active          bool  `json:"active"`
}

// lookup resolves ids to catalog entries.
type lookup struct {
	types      map[string]*models.EventType
	categories map[string]*models.Category
}

func newLookup(types []*models.EventType, cats map[string]*models.Category) lookup {
	l := lookup{
		types:      make(map[string]*models.EventType, len(types)),
		categories: cats,
	}

	for _, et := range types {
		l.types[et.ID] = et
	}

	return l
}

func (l lookup) rows(records []*models.Record, now time.Time) []recordRow {
	rows := make([]recordRow, 0, len(records))

	for _, r := range records {
		row := recordRow{
			ID:              r.ID,
			EventType:       "Unknown",
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			Seconds:         int64(r.Elapsed(now) / time.Second),
			Valid:           r.Valid,
			Active:          r.Active(),
			CalendarEventID: r.CalendarEventID,
		}

		if et, ok := l.types[r.EventTypeID]; ok {
			cat := l.categories[et.CategoryID]

			row.EventType = et.Name
			row.color = et.DisplayColor(cat)

			if cat != nil {
				row.Category = cat.Name
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func recordStatus(row recordRow) string {
	switch {
	case row.Active:
		return ui.Yellow("running")
	case row.Valid:
		return ui.Green("counted")
	default:
		return ui.Red("too short")
	}
}

// printRecordsTable prints a session table to the command-line.
func printRecordsTable(w io.Writer, rows []recordRow, now time.Time) {
	body := make([][]string, 0, len(rows)+1)

	body = append(body, []string{
		"#", "EVENT TYPE", "STARTED", "ENDED", "DURATION", "STATUS",
	})

	for i, row := range rows {
		started := fmt.Sprintf(
			"%s (%s)",
			row.StartTime.Local().Format(dateLayout),
			humanize.RelTime(row.StartTime, now, "ago", "from now"),
		)

		var ended string
		if row.EndTime != nil {
			ended = row.EndTime.Local().Format(dateLayout)
		}

		body = append(body, []string{
			strconv.Itoa(i + 1),
			ui.Hex(row.color, row.EventType),
			started,
			ended,
			timeutil.FormatClock(time.Duration(row.Seconds) * time.Second),
			recordStatus(row),
		})
	}

	ui.PrintTable(body, w)
}

func printTotals(w io.Writer, rows []recordRow) {
	var counted, total time.Duration

	for _, row := range rows {
		d := time.Duration(row.Seconds) * time.Second

		total += d

		if row.Valid {
			counted += d
		}
	}

	fmt.Fprintf(
		w,
		"%s sessions, %s counted of %s tracked\n",
		humanize.Comma(int64(len(rows))),
		timeutil.FormatClock(counted),
		timeutil.FormatClock(total),
	)
}

func printCategoriesTable(
	w io.Writer,
	cats []*models.Category,
	types []*models.EventType,
) {
	counts := make(map[string]int)

	for _, et := range types {
		counts[et.CategoryID]++
	}

	body := [][]string{{"#", "NAME", "COLOR", "ICON", "EVENT TYPES"}}

	for i, cat := range cats {
		body = append(body, []string{
			strconv.Itoa(i + 1),
			ui.Hex(cat.ColorHex, cat.Name),
			cat.ColorHex,
			cat.Icon,
			strconv.Itoa(counts[cat.ID]),
		})
	}

	ui.PrintTable(body, w)
}

func printEventTypesTable(
	w io.Writer,
	types []*models.EventType,
	cats map[string]*models.Category,
) {
	if len(types) == 0 {
		pterm.Info.Println("No event types yet. Add one with 'itime type add'")
		return
	}

	body := [][]string{{"#", "NAME", "CATEGORY", "COLOR"}}

	for i, et := range types {
		cat := cats[et.CategoryID]
		color := et.DisplayColor(cat)

		var catName string
		if cat != nil {
			catName = cat.Name
		}

		body = append(body, []string{
			strconv.Itoa(i + 1),
			ui.Hex(color, et.Name),
			catName,
			color,
		})
	}

	ui.PrintTable(body, w)
}
