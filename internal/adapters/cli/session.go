package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/pidfile"
)

// withColony opens the slot and runs fn against it. Mutating sessions hold
// the run lock and save the slot afterwards.
func withColony(mutate bool, fn func(ctx context.Context, app *App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if mutate {
		lock := pidfile.New(app.Config.Simulation.PIDFile)
		if err := lock.Acquire(); err != nil {
			return fmt.Errorf("cannot modify slot %s: %w", app.Slot, err)
		}
		defer func() { _ = lock.Release() }()
	}

	if _, err := app.Restore(ctx); err != nil {
		return err
	}
	if err := fn(ctx, app); err != nil {
		return describeError(err)
	}
	if mutate {
		return app.Persist(ctx)
	}
	return nil
}

// describeError turns a rejection into a one-line player message
func describeError(err error) error {
	var rejection *shared.RejectionError
	if errors.As(err, &rejection) {
		return fmt.Errorf("✗ %s (%s)", rejection.Reason(), rejection.Code)
	}
	return err
}

func formatAmount(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func formatResources(m map[string]float64) string {
	if len(m) == 0 {
		return "-"
	}
	keys := sortedKeys(m)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %s", formatAmount(m[k]), k)
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
