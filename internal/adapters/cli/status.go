package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	gameQuery "github.com/andrescamacho/idlecolony-go/internal/application/game/queries"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	var (
		tree      bool
		buildable bool
		workers   bool
		colors    bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the colony",
		Long: `Show resources, workers, nodes, activities, buildings and skills of
the current slot.

Examples:
  idlecolony status
  idlecolony status --tree
  idlecolony status --buildable
  idlecolony status --workers --slot speedrun`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(false, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameQuery.GetStatusQuery{})
				if err != nil {
					return err
				}
				status := resp.(*game.Status)

				if tree {
					f := NewTreeFormatter(colors, colors)
					root := BuildColonyTree(*status)
					fmt.Print(f.FormatTree(root))
					fmt.Println(f.FormatTreeSummary(root))
					return nil
				}

				fmt.Printf("\nCOLONY %s\n", app.Slot)
				fmt.Println(separator)
				writeStatus(os.Stdout, status, workers)

				if buildable {
					resp, err := app.Send(ctx, &gameQuery.CanBuildQuery{})
					if err != nil {
						return err
					}
					writeBuildOptions(os.Stdout, resp.(*gameQuery.CanBuildResponse))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Render the colony as a tree")
	cmd.Flags().BoolVar(&buildable, "buildable", false, "List construction options and their costs")
	cmd.Flags().BoolVar(&workers, "workers", false, "List every worker entity")
	cmd.Flags().BoolVar(&colors, "color", false, "Use colors and emojis in tree output")

	return cmd
}

func writeStatus(out io.Writer, s *game.Status, withWorkers bool) {
	fmt.Fprintf(out, "Elapsed:    %s\n", s.Elapsed.Round(time.Second))
	fmt.Fprintf(out, "Slots:      %d/%d used\n", s.UsedSlots, s.AvailableSlots)
	fmt.Fprintf(out, "Resources:  %s\n", formatResources(s.Resources))
	if len(s.Upgrades) > 0 {
		fmt.Fprintf(out, "Upgrades:   %v\n", s.Upgrades)
	}
	if len(s.Achievements) > 0 {
		fmt.Fprintf(out, "Unlocked:   %v\n", s.Achievements)
	}
	for _, b := range s.Boosts {
		fmt.Fprintf(out, "Boost:      %s (%.0fs left)\n", b.ID, b.Remaining)
	}
	fmt.Fprintf(out, "Mined:      %s total, %s\n", formatAmount(s.Stats.TotalMined), humanize.Comma(int64(s.Stats.BuildingsCompleted))+" buildings completed")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "\nWORKERS\tTotal\tAssigned\tFree")
	for _, wt := range s.WorkerTypes {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", wt.Type, wt.Total, wt.Assigned, wt.Free)
	}

	if len(s.Nodes) > 0 {
		fmt.Fprintln(w, "\nNODES\tAvailable\tSpawn/s\tLevels\tAssigned")
		for _, n := range s.Nodes {
			fmt.Fprintf(w, "%s\t%s/%s\t%.2f\tcap %d, spawn %d\t%d\n",
				n.ID, formatAmount(n.Available), formatAmount(n.Capacity), n.SpawnRate, n.CapacityLevel, n.SpawnLevel, n.Assigned)
		}
	}

	if len(s.Activities) > 0 {
		fmt.Fprintln(w, "\nACTIVITIES\tStatus\tSpeed\tCycle\tAssigned\tCompleted")
		for _, a := range s.Activities {
			state := string(a.Status)
			if a.Reason != "" {
				state += " (" + a.Reason + ")"
			}
			cycle := "-"
			if a.EffectiveDuration > 0 {
				cycle = fmt.Sprintf("%.1fs", a.EffectiveDuration)
			}
			fmt.Fprintf(w, "%s\t%s\tx%.2f\t%s\t%d\t%s\n",
				a.ID, state, a.SpeedMultiplier, cycle, a.Assigned, humanize.Comma(int64(a.Completions)))
		}
	}

	if len(s.Buildings) > 0 {
		fmt.Fprintln(w, "\nBUILDINGS\tType\tState\tOccupancy\tQueue")
		for _, b := range s.Buildings {
			state := "complete"
			if !b.Complete {
				state = fmt.Sprintf("%.0f%%", b.Progress*100)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", b.ID, b.TypeID, state, b.Occupancy, b.TrainingQueue)
		}
	}

	if len(s.Skills) > 0 {
		fmt.Fprintln(w, "\nSKILLS\tLevel\tXP\tNext")
		for _, sk := range s.Skills {
			fmt.Fprintf(w, "%s\t%d\t%s\t%.0f%%\n", sk.Skill, sk.Level, formatAmount(sk.XP), sk.Progress*100)
		}
	}

	if withWorkers && len(s.Workers) > 0 {
		fmt.Fprintln(w, "\nENTITY\tType\tState\tTarget\tCarrying\tHarvests\tDistance")
		for _, e := range s.Workers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.1f\n",
				e.ID, e.Type, e.State, orDash(e.TargetID), formatResources(e.Carrying), e.Harvests, e.Distance)
		}
	}

	w.Flush()
}

func writeBuildOptions(out io.Writer, resp *gameQuery.CanBuildResponse) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nBUILD\tCost\tAvailable")
	for _, opt := range resp.Options {
		avail := "✓"
		if !opt.Check.CanBuild {
			avail = fmt.Sprintf("✗ %s (%s)", opt.Check.Reason, opt.Check.Code)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", opt.BuildingType, formatResources(opt.Cost), avail)
	}
	w.Flush()
}
