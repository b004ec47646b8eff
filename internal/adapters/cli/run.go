package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/metrics"
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/pidfile"
)

const defaultTick = 100 * time.Millisecond

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		duration     time.Duration
		force        bool
		reportEvery  time.Duration
		metricsEvery time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the colony simulation",
		Long: `Run the simulation loop for the current slot.

The loop advances the colony by the real time elapsed between ticks,
autosaves on the configured interval and saves once more on exit.
Only one simulation may run per pid file.

Examples:
  idlecolony run
  idlecolony run --duration 10m
  idlecolony run --slot speedrun --report-every 5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			lock := pidfile.New(app.Config.Simulation.PIDFile)
			if force {
				_ = os.Remove(lock.Path())
			}
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			loaded, err := app.Restore(ctx)
			if err != nil {
				return err
			}
			if loaded {
				fmt.Printf("✓ Loaded slot %s\n", app.Slot)
			} else {
				fmt.Printf("✓ New colony in slot %s\n", app.Slot)
			}

			if app.Config.Metrics.Enabled {
				startMetrics(ctx, app, metricsEvery)
			}

			runErr := runLoop(ctx, app, reportEvery)

			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Persist(saveCtx); err != nil {
				return fmt.Errorf("final save failed: %w", err)
			}
			fmt.Printf("✓ Saved slot %s\n", app.Slot)
			return runErr
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVar(&force, "force", false, "Remove an existing pid file before starting")
	cmd.Flags().DurationVar(&reportEvery, "report-every", 30*time.Second, "Interval between status lines (0 disables)")
	cmd.Flags().DurationVar(&metricsEvery, "metrics-every", 15*time.Second, "Interval between gauge refreshes")

	return cmd
}

// runLoop ticks the engine at the configured rate until ctx ends
func runLoop(ctx context.Context, app *App, reportEvery time.Duration) error {
	cfg := app.Config.Simulation
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = defaultTick
	}
	limiter := rate.NewLimiter(rate.Every(tick), 1)

	last := time.Now()
	lastSave := last
	lastReport := last

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		now := time.Now()
		if err := app.Engine.Update(app.Context(ctx), now.Sub(last)); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("simulation tick failed: %w", err)
		}
		last = now

		if cfg.AutosaveInterval > 0 && now.Sub(lastSave) >= cfg.AutosaveInterval {
			if err := app.Persist(ctx); err != nil {
				app.Logger.Log(common.LevelError, fmt.Sprintf("Autosave failed: %v", err), map[string]interface{}{"slot": app.Slot})
			} else {
				app.Logger.Log(common.LevelDebug, "Autosaved", map[string]interface{}{"slot": app.Slot})
			}
			lastSave = now
		}

		if reportEvery > 0 && now.Sub(lastReport) >= reportEvery {
			fmt.Println(statusLine(app.Engine.Status()))
			lastReport = now
		}
	}
}

// startMetrics wires the collectors and serves the registry until ctx ends
func startMetrics(ctx context.Context, app *App, interval time.Duration) {
	colony := metrics.NewColonyMetricsCollector(app.Engine)
	if err := colony.Register(); err != nil {
		app.Logger.Log(common.LevelWarn, fmt.Sprintf("Colony metrics disabled: %v", err), nil)
	} else {
		colony.Subscribe(app.Engine.Bus())
		colony.Start(ctx, interval)
	}

	journal := metrics.NewLedgerMetricsCollector(app.Mediator)
	if err := journal.Register(); err != nil {
		app.Logger.Log(common.LevelWarn, fmt.Sprintf("Journal metrics disabled: %v", err), nil)
	} else {
		metrics.SetGlobalLedgerCollector(journal)
		journal.Start(app.Context(ctx), interval)
	}

	go func() {
		cfg := app.Config.Metrics
		app.Logger.Log(common.LevelInfo, "Serving metrics", map[string]interface{}{
			"address": fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			"path":    cfg.Path,
		})
		if err := metrics.Serve(ctx, cfg); err != nil {
			app.Logger.Log(common.LevelError, fmt.Sprintf("Metrics server failed: %v", err), nil)
		}
	}()
}

// statusLine summarizes the colony in one line
func statusLine(s game.Status) string {
	free, total := 0, 0
	for _, wt := range s.WorkerTypes {
		free += wt.Free
		total += wt.Total
	}
	halted := 0
	for _, a := range s.Activities {
		if a.Status == activity.StatusHalted {
			halted++
		}
	}
	line := fmt.Sprintf("[%s] workers %d/%d free | %s", s.Elapsed.Round(time.Second), free, total, formatResources(s.Resources))
	if halted > 0 {
		line += fmt.Sprintf(" | %d halted", halted)
	}
	return line
}
