package app

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v2"

	"github.com/itimeapp/itime/calendar"
	"github.com/itimeapp/itime/catalog"
	"github.com/itimeapp/itime/internal/config"
	"github.com/itimeapp/itime/internal/pathutil"
	"github.com/itimeapp/itime/internal/state"
	"github.com/itimeapp/itime/internal/static"
	"github.com/itimeapp/itime/notify"
	"github.com/itimeapp/itime/store"
	"github.com/itimeapp/itime/timer"
)

// services is the object graph shared by commands. It is built once per
// invocation and owns every open file.
type services struct {
	cfg      *config.Config
	db       *store.Client
	state    *state.Store
	calendar *calendar.Store
	notifier *notify.Coordinator
	catalog  *catalog.Catalog
	engine   *timer.Engine
	log      *slog.Logger
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := pathutil.ConfigFilePath()

	return config.New(
		config.WithPromptConfig(path),
		config.WithViperConfig(path),
		config.WithCLIConfig(ctx),
	)
}

// newServices wires the application and recovers an interrupted session.
func newServices(ctx *cli.Context) (*services, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	s := &services{
		cfg: cfg,
		log: slog.Default(),
	}

	clock := clockwork.NewRealClock()

	s.db, err = store.Open(ctx.Context, pathutil.DBFilePath())
	if err != nil {
		return nil, err
	}

	s.state, err = state.Open(pathutil.StateFilePath())
	if err != nil {
		s.db.Close()
		return nil, err
	}

	icon, err := static.Install(pathutil.DataDir())
	if err != nil {
		s.log.Warn("install static files", slog.Any("error", err))
	}

	s.calendar = calendar.New(pathutil.CalendarDir(), clock)
	s.notifier = notify.New(
		clock,
		cfg.Notifications.Enabled,
		notify.WithIcon(icon),
		notify.WithLogger(s.log),
	)

	s.catalog = catalog.New(s.db, s.state, clock, s.log)

	if err := s.prepareCatalog(ctx.Context); err != nil {
		s.closeStores()
		return nil, err
	}

	s.engine = timer.New(
		timer.Deps{
			Records:   s.db,
			Pointer:   s.state,
			Reminders: s.notifier,
			Calendar:  s.calendar,
			Settings:  cfg,
		},
		timer.WithClock(clock),
		timer.WithLogger(s.log),
		timer.WithTickInterval(cfg.Timer.TickInterval),
		timer.WithPointerRefresh(cfg.Timer.PointerRefreshTicks),
	)

	s.engine.Resume(ctx.Context)

	return s, nil
}

func (s *services) prepareCatalog(ctx context.Context) error {
	if err := s.catalog.InitializePresets(ctx); err != nil {
		return err
	}

	removed, err := s.catalog.ReconcileDuplicates(ctx)
	if err != nil {
		return err
	}

	if removed > 0 {
		s.log.Info("merged duplicate categories", slog.Int("removed", removed))
	}

	return nil
}

// close waits for pending writes, then releases the stores. A running
// session is left in place for the next invocation.
func (s *services) close() {
	if s.engine != nil {
		s.engine.Close()
	}

	s.closeStores()
}

func (s *services) closeStores() {
	if err := s.state.Close(); err != nil {
		s.log.Warn("close state", slog.Any("error", err))
	}

	if err := s.db.Close(); err != nil {
		s.log.Warn("close database", slog.Any("error", err))
	}
}

// withServices adapts an action that needs the application services.
func withServices(fn func(*cli.Context, *services) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		s, err := newServices(ctx)
		if err != nil {
			return err
		}

		defer s.close()

		return fn(ctx, s)
	}
}
