// Package calendar writes completed sessions as events into local iCalendar
// files. Each calendar is one .ics file whose stem is the calendar id.
package calendar

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/itimeapp/itime/internal/apperr"
	"github.com/itimeapp/itime/internal/pathutil"
)

// DefaultID is used when no calendar is selected.
const DefaultID = "default"

const (
	extension = ".ics"
	productID = "-//itime//itime//EN"
	dirPerm   = 0o755
	filePerm  = 0o644
)

var (
	errInvalidID = &apperr.Error{Message: "invalid calendar id: %q"}

	errEventNotFound = &apperr.Error{
		Message: "event %s not found in calendar %s",
	}

	errParseCalendar = &apperr.Error{Message: "unable to read calendar %s"}
)

// Event is a calendar entry as read back from disk.
type Event struct {
	Start   time.Time
	End     time.Time
	ID      string
	Summary string
}

// Store manages the calendar directory.
type Store struct {
	clock clockwork.Clock
	newID func() string
	dir   string
	mu    sync.Mutex
}

// New returns a Store rooted at dir.
func New(dir string, clock clockwork.Clock) *Store {
	return &Store{
		dir:   dir,
		clock: clock,
		newID: func() string { return uuid.NewString() },
	}
}

// CreateEvent appends an event to the calendar and returns its id.
func (s *Store) CreateEvent(
	_ context.Context,
	title string,
	start, end time.Time,
	calendarID string,
) (string, error) {
	path, err := s.path(calendarID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.load(path)
	if err != nil {
		return "", err
	}

	id := s.newID()

	ev := cal.AddEvent(id)
	ev.SetDtStampTime(s.clock.Now())
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(title)

	if err := s.save(path, cal); err != nil {
		return "", err
	}

	return id, nil
}

// DeleteEvent removes an event from the calendar.
func (s *Store) DeleteEvent(_ context.Context, eventID, calendarID string) error {
	path, err := s.path(calendarID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.load(path)
	if err != nil {
		return err
	}

	n := len(cal.Components)

	cal.Components = slices.DeleteFunc(cal.Components, func(c ics.Component) bool {
		ev, ok := c.(*ics.VEvent)
		return ok && ev.Id() == eventID
	})

	if len(cal.Components) == n {
		return errEventNotFound.Fmt(eventID, resolve(calendarID))
	}

	return s.save(path, cal)
}

// Events lists the events of a calendar in file order.
func (s *Store) Events(calendarID string) ([]Event, error) {
	path, err := s.path(calendarID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cal, err := s.load(path)
	if err != nil {
		return nil, err
	}

	var events []Event

	for _, ev := range cal.Events() {
		e := Event{ID: ev.Id()}

		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			e.Summary = p.Value
		}

		e.Start, err = ev.GetStartAt()
		if err != nil {
			return nil, errParseCalendar.Fmt(path).Wrap(err)
		}

		e.End, err = ev.GetEndAt()
		if err != nil {
			return nil, errParseCalendar.Fmt(path).Wrap(err)
		}

		events = append(events, e)
	}

	return events, nil
}

// Calendars lists the ids of the calendars on disk. The default calendar is
// always included.
func (s *Store) Calendars() ([]string, error) {
	ids := []string{DefaultID}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ids, nil
		}

		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}

		id := pathutil.StripExtension(entry.Name())
		if id != DefaultID {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids[1:])

	return ids, nil
}

func resolve(calendarID string) string {
	if calendarID == "" {
		return DefaultID
	}

	return calendarID
}

func (s *Store) path(calendarID string) (string, error) {
	id := resolve(calendarID)

	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", errInvalidID.Fmt(id)
	}

	return filepath.Join(s.dir, id+extension), nil
}

func (s *Store) load(path string) (*ics.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cal := ics.NewCalendar()
			cal.SetProductId(productID)
			cal.SetMethod(ics.MethodPublish)

			return cal, nil
		}

		return nil, err
	}
	defer f.Close()

	cal, err := ics.ParseCalendar(f)
	if err != nil {
		return nil, errParseCalendar.Fmt(path).Wrap(err)
	}

	return cal, nil
}

// save writes the calendar through a temporary file so readers never see a
// partial file.
func (s *Store) save(path string, cal *ics.Calendar) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(cal.Serialize()), filePerm); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
