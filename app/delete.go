package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pterm/pterm"

	"github.com/itimeapp/itime/internal/models"
)

// recordDeleter is the persistence delRecords needs.
type recordDeleter interface {
	DeleteRecord(ctx context.Context, id string) error
}

// eventDeleter removes calendar copies of deleted records.
type eventDeleter interface {
	DeleteEvent(ctx context.Context, eventID, calendarID string) error
}

// delRecords deletes the specified finished records along with their
// calendar events. It requests confirmation before proceeding. Running
// sessions are never deleted.
func delRecords(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	db recordDeleter,
	cal eventDeleter,
	calendarID string,
	records []*models.Record,
	rows []recordRow,
	now time.Time,
) (int, error) {
	var (
		targets    []*models.Record
		targetRows []recordRow
	)

	for i, r := range records {
		if r.Active() {
			continue
		}

		targets = append(targets, r)
		targetRows = append(targetRows, rows[i])
	}

	if len(targets) == 0 {
		pterm.Info.Println(noRecordsMsg)
		return 0, nil
	}

	printRecordsTable(out, targetRows, now)

	warning := pterm.Warning.Sprint(
		"The above sessions will be deleted permanently. Press ENTER to proceed",
	)

	fmt.Fprint(out, warning)

	reader := bufio.NewReader(in)

	_, _ = reader.ReadString('\n')

	for i, r := range targets {
		if err := db.DeleteRecord(ctx, r.ID); err != nil {
			return i, err
		}

		if r.CalendarEventID == "" {
			continue
		}

		err := cal.DeleteEvent(ctx, r.CalendarEventID, calendarID)
		if err != nil {
			slog.WarnContext(
				ctx,
				"delete calendar event",
				slog.String("record_id", r.ID),
				slog.Any("error", err),
			)
		}
	}

	return len(targets), nil
}
