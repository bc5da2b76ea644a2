// Package report prints command outcomes to the terminal.
package report

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/timeutil"
)

func Started(eventName string) {
	pterm.Success.Printfln("%s started", eventName)
}

// Stopped summarises a completed record.
func Stopped(eventName string, r *models.Record) {
	msg := fmt.Sprintf(
		"%s stopped after %s",
		eventName,
		timeutil.FormatClock(r.Duration),
	)

	if !r.Valid {
		pterm.Warning.Println(msg + " (too short to count)")
		return
	}

	pterm.Success.Println(msg)
}

func Idle() {
	pterm.Info.Println("No session is running")
}

func Error(err error) {
	pterm.Error.Println(err)
}
