package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	gameCmd "github.com/andrescamacho/idlecolony-go/internal/application/game/commands"
)

// slotLockNote is appended to the help of every command that changes a slot
const slotLockNote = `The slot is loaded, changed and saved again before the command returns.
It is refused while 'idlecolony run' holds the slot; stop the simulation first.`

// newActionCommands creates the player commands that change the colony
func newActionCommands() []*cobra.Command {
	cmds := []*cobra.Command{
		newAssignCommand(),
		newUnassignCommand(),
		newReassignCommand(),
		newBuildCommand(),
		newUpgradeCommand(),
		newBuildingUpgradeCommand(),
		newTrainCommand(),
		newBoostCommand(),
		newHarvestCommand(),
		newResetCommand(),
	}
	for _, cmd := range cmds {
		long := cmd.Long
		if long == "" {
			long = cmd.Short + "."
		}
		cmd.Long = long + "\n\n" + slotLockNote
	}
	return cmds
}

func parseCount(args []string, index int) (int, error) {
	if len(args) <= index {
		return 1, nil
	}
	n, err := strconv.Atoi(args[index])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("count must be a positive integer, got %q", args[index])
	}
	return n, nil
}

func printAssignment(resp *gameCmd.AssignmentResponse) {
	fmt.Printf("✓ %d %s at %s (%d free)\n", resp.Assigned, resp.WorkerType, resp.TargetID, resp.Free)
}

func newAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <worker-type> <target> [count]",
		Short: "Assign free workers to a node or activity",
		Long: `Assign free workers to a resource node or production activity.

Assigned workers start walking when the simulation next runs.

Examples:
  idlecolony assign peasant forest
  idlecolony assign peasant quarry 3`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount(args, 2)
			if err != nil {
				return err
			}
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.AssignWorkersCommand{WorkerType: args[0], TargetID: args[1], Count: count})
				if err != nil {
					return err
				}
				printAssignment(resp.(*gameCmd.AssignmentResponse))
				return nil
			})
		},
	}
}

func newUnassignCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "unassign <worker-type> <target> [count]",
		Short: "Return workers from a target to the free pool",
		Long: `Return workers to the free pool. Carried resources are lost.

Examples:
  idlecolony unassign peasant forest 2
  idlecolony unassign peasant forest --all`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount(args, 2)
			if err != nil {
				return err
			}
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.UnassignWorkersCommand{WorkerType: args[0], TargetID: args[1], Count: count, All: all})
				if err != nil {
					return err
				}
				printAssignment(resp.(*gameCmd.AssignmentResponse))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Unassign every worker of the type from the target")
	return cmd
}

func newReassignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reassign <worker-type> <from> <to> [count]",
		Short: "Move workers between targets",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount(args, 3)
			if err != nil {
				return err
			}
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.ReassignWorkersCommand{WorkerType: args[0], FromID: args[1], ToID: args[2], Count: count})
				if err != nil {
					return err
				}
				printAssignment(resp.(*gameCmd.AssignmentResponse))
				return nil
			})
		},
	}
}

func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build <building-type>",
		Short: "Start construction of a building",
		Long: `Pay the construction cost and start building.

The cost grows with every instance already built. Use 'idlecolony status
--buildable' to see what can be afforded.

Example:
  idlecolony build house`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.StartConstructionCommand{BuildingType: args[0]})
				if err != nil {
					return err
				}
				r := resp.(*gameCmd.StartConstructionResponse)
				fmt.Printf("✓ Construction of %s started (%s)\n", r.BuildingType, r.InstanceID)
				return nil
			})
		},
	}
}

func newUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <upgrade-id>",
		Short: "Purchase a global upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.PurchaseUpgradeCommand{UpgradeID: args[0]})
				if err != nil {
					return err
				}
				r := resp.(*gameCmd.PurchaseUpgradeResponse)
				fmt.Printf("✓ Upgrade %s purchased\n", r.UpgradeID)
				fmt.Printf("  Balances: %s\n", formatResources(r.Balances))
				return nil
			})
		},
	}
}

func newBuildingUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "building-upgrade <building-id> <upgrade-id>",
		Short: "Buy the next level of a building's upgrade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.PurchaseBuildingUpgradeCommand{InstanceID: args[0], UpgradeID: args[1]})
				if err != nil {
					return err
				}
				r := resp.(*gameCmd.PurchaseBuildingUpgradeResponse)
				fmt.Printf("✓ %s %s is now level %d\n", r.InstanceID, r.UpgradeID, r.Level)
				return nil
			})
		},
	}
}

func newTrainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train <building-id> <program-id>",
		Short: "Queue a training program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.StartTrainingCommand{BuildingID: args[0], ProgramID: args[1]})
				if err != nil {
					return err
				}
				r := resp.(*gameCmd.StartTrainingResponse)
				fmt.Printf("✓ Training %d %s at %s, done in %.1fs\n", r.OutputCount, r.OutputWorker, r.BuildingID, r.CompletesIn)
				return nil
			})
		},
	}
}

func newBoostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "boost <boost-id>",
		Short: "Activate a consumable speed boost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				if _, err := app.Send(ctx, &gameCmd.ActivateBoostCommand{BoostID: args[0]}); err != nil {
					return err
				}
				fmt.Printf("✓ Boost %s active\n", args[0])
				return nil
			})
		},
	}
}

func newHarvestCommand() *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:   "harvest <node>",
		Short: "Harvest a node by hand",
		Long: `Harvest a resource node directly, crediting the colony immediately.

Example:
  idlecolony harvest forest --times 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				resp, err := app.Send(ctx, &gameCmd.ManualHarvestCommand{TargetID: args[0], Times: times})
				if err != nil {
					return err
				}
				r := resp.(*gameCmd.ManualHarvestResponse)
				fmt.Printf("✓ Harvested %s %d time(s): %s\n", r.TargetID, r.Times, formatResources(r.Credited))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&times, "times", 1, "Number of harvests")
	return cmd
}

func newResetCommand() *cobra.Command {
	var keepHistory bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the colony to its starting state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withColony(true, func(ctx context.Context, app *App) error {
				if _, err := app.Send(ctx, &gameCmd.ResetGameCommand{}); err != nil {
					return err
				}
				if !keepHistory {
					if err := app.ClearHistory(ctx); err != nil {
						return err
					}
				}
				fmt.Printf("✓ Slot %s reset\n", app.Slot)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&keepHistory, "keep-history", false, "Keep the transaction journal and event log")
	return cmd
}
