package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/idlecolony-go/internal/adapters/schema"
	gameCmd "github.com/andrescamacho/idlecolony-go/internal/application/game/commands"
	gameQuery "github.com/andrescamacho/idlecolony-go/internal/application/game/queries"
)

// NewSavesCommand creates the saves command with subcommands
func NewSavesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Manage save slots",
		Long: `List and delete save slots in the configured store.

Saves live in the database or as compressed snapshot files, depending on
simulation.store.

Examples:
  idlecolony saves list
  idlecolony saves delete speedrun`,
	}

	cmd.AddCommand(newSavesListCommand())
	cmd.AddCommand(newSavesDeleteCommand())

	return cmd
}

func newSavesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List save slots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(false, func(ctx context.Context, app *App) error {
				if app.Saves == nil {
					return fmt.Errorf("saving is disabled (simulation.store=%s)", app.Config.Simulation.Store)
				}
				resp, err := app.Send(ctx, &gameQuery.ListSavesQuery{})
				if err != nil {
					return err
				}
				saves := resp.(*gameQuery.ListSavesResponse).Saves
				if len(saves) == 0 {
					fmt.Println("No saves found")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "Slot\tSaved\tClock\tSize\tVersion")
				fmt.Fprintln(w, "────\t─────\t─────\t────\t───────")
				for _, s := range saves {
					marker := ""
					if s.Slot == app.Slot {
						marker = " *"
					}
					fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%d\n",
						s.Slot, marker,
						humanize.Time(s.SavedAt),
						s.ClockTime.Format("2006-01-02 15:04:05"),
						humanize.Bytes(uint64(s.Size)),
						s.Version,
					)
				}
				return w.Flush()
			})
		},
	}
}

func newSavesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(false, func(ctx context.Context, app *App) error {
				if app.Saves == nil {
					return fmt.Errorf("saving is disabled (simulation.store=%s)", app.Config.Simulation.Store)
				}
				if _, err := app.Send(ctx, &gameCmd.DeleteSaveCommand{Slot: args[0]}); err != nil {
					return err
				}
				fmt.Printf("✓ Slot %s deleted\n", args[0])
				return nil
			})
		},
	}
}

// NewSchemaCommand creates the schema command
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [path]",
		Short: "Print or write the save file JSON schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := schema.Export(args[0]); err != nil {
					return err
				}
				fmt.Printf("✓ Schema written to %s\n", args[0])
				return nil
			}
			doc, err := schema.Generate()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(doc, '\n'))
			return err
		},
	}
}
