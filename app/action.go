package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/itimeapp/itime/calendar"
	"github.com/itimeapp/itime/internal/apperr"
	"github.com/itimeapp/itime/internal/config"
	"github.com/itimeapp/itime/internal/logger"
	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/pathutil"
	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/internal/ui"
	"github.com/itimeapp/itime/report"
	"github.com/itimeapp/itime/stats"
	"github.com/itimeapp/itime/timer"
	"github.com/itimeapp/itime/view"
)

const (
	envNoColor      = "NO_COLOR"
	envITimeNoColor = "ITIME_NO_COLOR"
)

var (
	errNoEventTypes = errors.New(
		"no event types yet: add one with 'itime type add <name> --category <category>'",
	)

	errMissingArg = &apperr.Error{Message: "missing argument: %s"}

	errTypeRunning = &apperr.Error{
		Message: "%s is running: stop the session before deleting its event type",
	}

	errCategoryRunning = &apperr.Error{
		Message: "%s is running: stop the session before deleting category %s",
	}
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	pterm.Println(string(b))

	return nil
}

// runAction hosts the engine in the live view until the user quits. A
// running session outlives the view and is recovered on the next launch.
func runAction(ctx *cli.Context, s *services) error {
	types, err := s.catalog.EventTypes(ctx.Context)
	if err != nil {
		return err
	}

	cats, err := s.catalog.CategoryIndex(ctx.Context)
	if err != nil {
		return err
	}

	m := view.New(ctx.Context, s.engine, s.cfg, types, cats, s.log)

	p := tea.NewProgram(m, tea.WithContext(ctx.Context))

	s.engine.Subscribe(view.Observe(p))

	_, err = p.Run()

	return err
}

// pickEventType resolves name, or asks the user to choose when name is
// empty.
func pickEventType(ctx *cli.Context, s *services, name string) (*models.EventType, error) {
	if name != "" {
		return s.catalog.FindEventType(ctx.Context, name)
	}

	types, err := s.catalog.EventTypes(ctx.Context)
	if err != nil {
		return nil, err
	}

	if len(types) == 0 {
		return nil, errNoEventTypes
	}

	opts := make([]huh.Option[int], len(types))
	for i, et := range types {
		opts[i] = huh.NewOption(et.Name, i)
	}

	var idx int

	err = huh.NewSelect[int]().
		Title("What are you working on?").
		Options(opts...).
		Value(&idx).
		Run()
	if err != nil {
		return nil, err
	}

	return types[idx], nil
}

// startAction begins a session, implicitly stopping the running one.
func startAction(ctx *cli.Context, s *services) error {
	et, err := pickEventType(ctx, s, ctx.Args().First())
	if err != nil {
		return err
	}

	prev := s.engine.Snapshot()

	snap := s.engine.Start(ctx.Context, et)

	if prev.Running() {
		pterm.Info.Printfln("%s stopped", prev.EventType.Name)
	}

	report.Started(snap.EventType.Name)

	return nil
}

func stopAction(ctx *cli.Context, s *services) error {
	snap := s.engine.Snapshot()

	done := s.engine.Stop(ctx.Context, s.cfg.CompletionPolicy())
	if done == nil {
		report.Idle()
		return nil
	}

	report.Stopped(snap.EventType.Name, done)

	return nil
}

func switchAction(ctx *cli.Context, s *services) error {
	name := ctx.Args().First()
	if name == "" {
		return errMissingArg.Fmt("event type")
	}

	et, err := s.catalog.FindEventType(ctx.Context, name)
	if err != nil {
		return err
	}

	prev := s.engine.Snapshot()

	snap := s.engine.Switch(ctx.Context, et, s.cfg.CompletionPolicy())

	if prev.Running() {
		if done := snap.LastCompleted; done != nil {
			report.Stopped(prev.EventType.Name, done)
		}
	}

	report.Started(snap.EventType.Name)

	return nil
}

type statusOutput struct {
	StartTime      *time.Time `json:"start_time,omitempty"`
	EventType      string     `json:"event_type,omitempty"`
	RecordID       string     `json:"record_id,omitempty"`
	ElapsedSeconds int64      `json:"elapsed_seconds"`
	Running        bool       `json:"running"`
}

// statusAction prints the running session, if any.
func statusAction(ctx *cli.Context, s *services) error {
	snap := s.engine.Snapshot()

	if ctx.Bool("json") {
		out := statusOutput{Running: snap.Running()}

		if snap.Running() {
			start := snap.Active.StartTime
			out.StartTime = &start
			out.EventType = snap.EventType.Name
			out.RecordID = snap.Active.ID
			out.ElapsedSeconds = int64(snap.Elapsed / time.Second)
		}

		return printJSON(out)
	}

	if !snap.Running() {
		report.Idle()
		return nil
	}

	pterm.Printfln(
		"%s: %s (started %s)",
		pterm.Bold.Sprint(snap.EventType.Name),
		timeutil.FormatClock(snap.Elapsed),
		humanize.Time(snap.Active.StartTime),
	)

	return nil
}

// recordsFor runs the filtered query shared by list and delete.
func recordsFor(ctx *cli.Context, s *services, now time.Time) ([]*models.Record, []recordRow, error) {
	q, err := recordQuery(filterFromContext(ctx), now)
	if err != nil {
		return nil, nil, err
	}

	if name := ctx.String("type"); name != "" {
		et, err := s.catalog.FindEventType(ctx.Context, name)
		if err != nil {
			return nil, nil, err
		}

		q.EventTypeID = et.ID
	}

	records, err := s.db.Records(ctx.Context, q)
	if err != nil {
		return nil, nil, err
	}

	types, err := s.catalog.EventTypes(ctx.Context)
	if err != nil {
		return nil, nil, err
	}

	cats, err := s.catalog.CategoryIndex(ctx.Context)
	if err != nil {
		return nil, nil, err
	}

	return records, newLookup(types, cats).rows(records, now), nil
}

// listAction prints a table of the sessions started within a time period.
func listAction(ctx *cli.Context, s *services) error {
	now := time.Now()

	_, rows, err := recordsFor(ctx, s, now)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(rows)
	}

	if len(rows) == 0 {
		pterm.Info.Println(noRecordsMsg)
		return nil
	}

	printRecordsTable(os.Stdout, rows, now)
	printTotals(os.Stdout, rows)

	return nil
}

// statsAction reports counted time per category and event type.
func statsAction(ctx *cli.Context, s *services) error {
	q, err := recordQuery(filterFromContext(ctx), time.Now())
	if err != nil {
		return err
	}

	records, err := s.db.Records(ctx.Context, q)
	if err != nil {
		return err
	}

	types, err := s.catalog.EventTypes(ctx.Context)
	if err != nil {
		return err
	}

	cats, err := s.catalog.CategoryIndex(ctx.Context)
	if err != nil {
		return err
	}

	st := stats.Compute(records, types, cats, q.Since, q.Until)

	if ctx.Bool("json") {
		return printJSON(st)
	}

	st.Render(os.Stdout)

	return nil
}

func deleteAction(ctx *cli.Context, s *services) error {
	now := time.Now()

	records, rows, err := recordsFor(ctx, s, now)
	if err != nil {
		return err
	}

	n, err := delRecords(
		ctx.Context,
		config.Stdin,
		config.Stdout,
		s.db,
		s.calendar,
		s.cfg.Calendar.SelectedID,
		records,
		rows,
		now,
	)
	if err != nil {
		return err
	}

	if n > 0 {
		pterm.Success.Printfln("%d sessions deleted", n)
	}

	return nil
}

func categoryListAction(ctx *cli.Context, s *services) error {
	cats, err := s.catalog.Categories(ctx.Context)
	if err != nil {
		return err
	}

	types, err := s.catalog.EventTypes(ctx.Context)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(cats)
	}

	printCategoriesTable(os.Stdout, cats, types)

	return nil
}

func categoryAddAction(ctx *cli.Context, s *services) error {
	name := ctx.Args().First()

	cat, err := s.catalog.AddCategory(
		ctx.Context,
		name,
		ctx.String("color"),
		ctx.String("icon"),
	)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("category %s added", ui.Hex(cat.ColorHex, cat.Name))

	return nil
}

func categoryDeleteAction(ctx *cli.Context, s *services) error {
	name := ctx.Args().First()
	if name == "" {
		return errMissingArg.Fmt("category")
	}

	cat, err := s.catalog.FindCategory(ctx.Context, name)
	if err != nil {
		return err
	}

	if err := checkCategoryIdle(s.engine.Snapshot(), cat); err != nil {
		return err
	}

	if err := s.catalog.DeleteCategory(ctx.Context, name); err != nil {
		return err
	}

	pterm.Success.Printfln(
		"category %s deleted with its event types and sessions",
		name,
	)

	return nil
}

// checkCategoryIdle refuses to delete the category of the running event type.
func checkCategoryIdle(snap timer.Snapshot, cat *models.Category) error {
	if !snap.Running() || snap.EventType == nil {
		return nil
	}

	if snap.EventType.CategoryID == cat.ID {
		return errCategoryRunning.Fmt(snap.EventType.Name, cat.Name)
	}

	return nil
}

func typeListAction(ctx *cli.Context, s *services) error {
	types, err := s.catalog.EventTypes(ctx.Context)
	if err != nil {
		return err
	}

	cats, err := s.catalog.CategoryIndex(ctx.Context)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(types)
	}

	printEventTypesTable(os.Stdout, types, cats)

	return nil
}

func typeAddAction(ctx *cli.Context, s *services) error {
	et, err := s.catalog.AddEventType(
		ctx.Context,
		ctx.Args().First(),
		ctx.String("category"),
		ctx.String("color"),
	)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("event type %s added", et.Name)

	return nil
}

func typeDeleteAction(ctx *cli.Context, s *services) error {
	name := ctx.Args().First()
	if name == "" {
		return errMissingArg.Fmt("event type")
	}

	snap := s.engine.Snapshot()
	if snap.Running() && models.SameName(snap.EventType.Name, name) {
		return errTypeRunning.Fmt(snap.EventType.Name)
	}

	if err := s.catalog.DeleteEventType(ctx.Context, name); err != nil {
		return err
	}

	pterm.Success.Printfln("event type %s deleted with its sessions", name)

	return nil
}

// calendarsAction lists the calendars completed sessions can be copied to.
func calendarsAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	cal := calendar.New(pathutil.CalendarDir(), clockwork.NewRealClock())

	ids, err := cal.Calendars()
	if err != nil {
		return err
	}

	selected := cfg.Calendar.SelectedID
	if selected == "" {
		selected = calendar.DefaultID
	}

	body := [][]string{{"ID", "EVENTS", "SELECTED"}}

	for _, id := range ids {
		events, err := cal.Events(id)
		if err != nil {
			return err
		}

		var mark string
		if id == selected {
			mark = ui.Green("yes")

			if !cfg.Calendar.SyncEnabled {
				mark = ui.Gray("yes (sync off)")
			}
		}

		body = append(body, []string{id, strconv.Itoa(len(events)), mark})
	}

	ui.PrintTable(body, os.Stdout)

	return nil
}

func configShowAction(ctx *cli.Context) error {
	cfg, err := config.New(config.WithViperConfig(pathutil.ConfigFilePath()))
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(cfg.Entries())
	}

	body := [][]string{{"KEY", "VALUE"}}
	for _, e := range cfg.Entries() {
		body = append(body, []string{e.Key, e.Value})
	}

	ui.PrintTable(body, os.Stdout)
	pterm.Println(ui.Gray(cfg.Path))

	return nil
}

func configSetAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errMissingArg.Fmt("expected <key> <value>")
	}

	key, value := ctx.Args().Get(0), ctx.Args().Get(1)

	if err := config.Set(pathutil.ConfigFilePath(), key, value); err != nil {
		return err
	}

	pterm.Success.Printfln("%s set to %s", key, value)

	return nil
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if ITIME_NO_COLOR is set
	if _, exists := os.LookupEnv(envITimeNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	if err := pathutil.Initialize(); err != nil {
		return fmt.Errorf("resolve application paths: %w", err)
	}

	slog.SetDefault(logger.New(pathutil.LogFilePath(), logger.LevelFromEnv()))

	slog.DebugContext(
		ctx.Context,
		"starting itime",
		slog.String("version", config.Version),
		slog.Any("args", ctx.Args().Slice()),
	)

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.DebugContext(ctx.Context, "exiting itime")

	return nil
}
