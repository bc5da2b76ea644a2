// Package models holds the domain types shared by the store, the catalog and
// the timer engine.
package models

import (
	"strings"
	"time"

	"github.com/itimeapp/itime/internal/apperr"
)

// DefaultMinValidDuration is the shortest session that counts as valid.
const DefaultMinValidDuration = 5 * time.Minute

const defaultColorHex = "#3B82F6"

// ErrAlreadyCompleted is returned when Complete is called twice.
var ErrAlreadyCompleted = &apperr.Error{
	Message: "record %s is already completed",
}

type (
	// Category groups event types for colour and display purposes.
	Category struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ColorHex  string `json:"color_hex"`
		Icon      string `json:"icon"`
		SortOrder int    `json:"sort_order"`
	}

	// EventType is a named activity that sessions are recorded against.
	EventType struct {
		CreatedAt      time.Time `json:"created_at"`
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		CustomColorHex string    `json:"custom_color_hex,omitempty"`
		CategoryID     string    `json:"category_id,omitempty"`
	}

	// Record is one timed session. EndTime is nil while the session runs.
	Record struct {
		StartTime       time.Time     `json:"start_time"`
		EndTime         *time.Time    `json:"end_time,omitempty"`
		ID              string        `json:"id"`
		EventTypeID     string        `json:"event_type_id"`
		CalendarEventID string        `json:"calendar_event_id,omitempty"`
		Duration        time.Duration `json:"duration"`
		Valid           bool          `json:"is_valid"`
	}

	// CompletionPolicy controls how a stopped session is finalised.
	CompletionPolicy struct {
		CalendarID          string
		MinValidDuration    time.Duration
		CalendarSyncEnabled bool
	}
)

// DisplayColor resolves the colour shown for the event type: its own
// colour, else its category's, else the default.
func (e *EventType) DisplayColor(cat *Category) string {
	if e.CustomColorHex != "" {
		return e.CustomColorHex
	}

	if cat != nil && cat.ColorHex != "" {
		return cat.ColorHex
	}

	return defaultColorHex
}

// SameName reports whether two names are equal ignoring case and
// surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Active reports whether the session is still running.
func (r *Record) Active() bool {
	return r.EndTime == nil
}

// Elapsed returns the running time at now, or the final duration once
// completed.
func (r *Record) Elapsed(now time.Time) time.Duration {
	if r.EndTime != nil {
		return r.Duration
	}

	return now.Sub(r.StartTime)
}

// Complete closes the record at end. The session is valid when its duration
// is at least minValid.
func (r *Record) Complete(end time.Time, minValid time.Duration) error {
	if r.EndTime != nil {
		return ErrAlreadyCompleted.Fmt(r.ID)
	}

	r.EndTime = &end
	r.Duration = end.Sub(r.StartTime)
	r.Valid = r.Duration >= minValid

	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	c := *r

	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}

	return &c
}

// DefaultCompletionPolicy is applied to implicit stops.
func DefaultCompletionPolicy() CompletionPolicy {
	return CompletionPolicy{MinValidDuration: DefaultMinValidDuration}
}
