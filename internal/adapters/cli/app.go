package cli

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/logging"
	"github.com/andrescamacho/idlecolony-go/internal/adapters/metrics"
	"github.com/andrescamacho/idlecolony-go/internal/adapters/persistence"
	"github.com/andrescamacho/idlecolony-go/internal/adapters/schema"
	"github.com/andrescamacho/idlecolony-go/internal/adapters/snapshot"
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	gameCmd "github.com/andrescamacho/idlecolony-go/internal/application/game/commands"
	gameQuery "github.com/andrescamacho/idlecolony-go/internal/application/game/queries"
	appLedger "github.com/andrescamacho/idlecolony-go/internal/application/ledger"
	ledgerCmd "github.com/andrescamacho/idlecolony-go/internal/application/ledger/commands"
	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/config"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/database"
)

// App is a fully wired colony for one save slot
type App struct {
	Config   *config.Config
	Slot     string
	Logger   *logging.StdLogger
	Engine   *game.Engine
	Mediator common.Mediator
	Saves    game.SaveRepository
	Commands *metrics.CommandMetricsCollector

	db          *gorm.DB
	eventLogger *logging.EventLogger
	eventLog    *persistence.GormEventLogRepository
}

// newApp loads config, opens the database and wires engine, stores and
// handlers. Flags override user defaults, which override config.
func newApp() (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyUserDefaults(cfg)
	if slotFlag != "" {
		cfg.Simulation.SaveSlot = slotFlag
	}
	if catalogFlag != "" {
		cfg.Simulation.CatalogPath = catalogFlag
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	logger, err := logging.NewStdLogger(cfg.Logging, "idlecolony")
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Slot: cfg.Simulation.SaveSlot, Logger: logger}
	if err := app.wire(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire() error {
	cfg := a.Config

	cat, err := catalog.LoadOrDefault(cfg.Simulation.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	a.db, err = database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(a.db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	switch cfg.Simulation.Store {
	case config.StoreDatabase:
		a.Saves = persistence.NewGormSaveRepository(a.db, validator)
	case config.StoreFile:
		a.Saves = snapshot.NewFileStore(cfg.Simulation.SnapshotDir, validator)
	}

	bus := events.NewBus()
	engineOpts := []game.Option{
		game.WithBus(bus),
		game.WithLogger(a.Logger),
		game.WithJournalSize(cfg.Simulation.JournalSize),
	}
	if cfg.Simulation.Seed != 0 {
		engineOpts = append(engineOpts, game.WithSeed(cfg.Simulation.Seed))
	}
	a.Engine, err = game.NewEngine(cat, engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	var writer logging.EventLogWriter
	if cfg.Logging.EventLog {
		a.eventLog = persistence.NewGormEventLogRepository(a.db, a.Slot, nil, cfg.Logging.DedupWindow)
		writer = a.eventLog
	}
	a.eventLogger = logging.NewEventLogger(a.Logger, writer, 0)
	a.eventLogger.Subscribe(bus)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		a.Commands = metrics.NewCommandMetricsCollector()
		if err := a.Commands.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
	}

	a.Mediator = common.NewMediator()
	a.Mediator.Use(common.LoggingMiddleware)
	if a.Commands != nil {
		a.Mediator.Use(metrics.PrometheusMiddleware(a.Commands))
	}

	if err := gameCmd.RegisterHandlers(a.Mediator, a.Engine, a.Saves); err != nil {
		return fmt.Errorf("failed to register game commands: %w", err)
	}
	if err := gameQuery.RegisterHandlers(a.Mediator, a.Engine, a.Saves); err != nil {
		return fmt.Errorf("failed to register game queries: %w", err)
	}
	journal := persistence.NewGormTransactionRepository(a.db, a.Slot)
	if err := appLedger.RegisterHandlers(a.Mediator, a.Engine, journal); err != nil {
		return fmt.Errorf("failed to register journal handlers: %w", err)
	}
	return nil
}

// Context carries the app logger for handlers
func (a *App) Context(ctx context.Context) context.Context {
	return common.WithLogger(ctx, a.Logger)
}

// Send dispatches a request through the mediator with the app logger attached
func (a *App) Send(ctx context.Context, request common.Request) (common.Response, error) {
	return a.Mediator.Send(a.Context(ctx), request)
}

// Restore loads the slot if it exists
func (a *App) Restore(ctx context.Context) (bool, error) {
	if a.Saves == nil {
		return false, nil
	}
	resp, err := a.Send(ctx, &gameCmd.LoadGameCommand{Slot: a.Slot, IgnoreMissing: true})
	if err != nil {
		return false, err
	}
	return resp.(*gameCmd.LoadGameResponse).Loaded, nil
}

// Persist saves the slot and flushes pending journal entries
func (a *App) Persist(ctx context.Context) error {
	if a.Saves != nil {
		if _, err := a.Send(ctx, &gameCmd.SaveGameCommand{Slot: a.Slot}); err != nil {
			return err
		}
	}
	_, err := a.Send(ctx, &ledgerCmd.FlushTransactionsCommand{})
	return err
}

// ClearHistory drops the slot's journal and event log
func (a *App) ClearHistory(ctx context.Context) error {
	if _, err := a.Send(ctx, &ledgerCmd.ClearTransactionsCommand{}); err != nil {
		return err
	}
	if a.eventLog != nil {
		return a.eventLog.DeleteAll(ctx)
	}
	return nil
}

// EventLog returns a reader over the slot's event log
func (a *App) EventLog() *persistence.GormEventLogRepository {
	if a.eventLog != nil {
		return a.eventLog
	}
	if a.db == nil {
		return nil
	}
	return persistence.NewGormEventLogRepository(a.db, a.Slot, nil, 0)
}

// Close flushes the event log and releases the database and log file
func (a *App) Close() {
	if a.eventLogger != nil {
		a.eventLogger.Close()
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.Logger.Log(common.LevelWarn, fmt.Sprintf("Failed to close database: %v", err), nil)
		}
	}
	_ = a.Logger.Close()
}
