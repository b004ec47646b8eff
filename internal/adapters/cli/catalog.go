package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/config"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect game content",
		Long: `Inspect, export and validate the content catalog: worker types,
nodes, activities, buildings, upgrades, achievements and boosts.

Examples:
  idlecolony catalog show
  idlecolony catalog export colony.yaml
  idlecolony catalog validate colony.yaml`,
	}

	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogExportCommand())
	cmd.AddCommand(newCatalogValidateCommand())

	return cmd
}

func newCatalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := activeCatalogPath()
			if err != nil {
				return err
			}
			cat, err := catalog.LoadOrDefault(path)
			if err != nil {
				return err
			}
			displayCatalog(cat)
			return nil
		},
	}
}

func newCatalogExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write the built-in catalog as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.WriteFile(args[0], catalog.DefaultYAML(), 0644); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
			fmt.Printf("✓ Built-in catalog written to %s\n", args[0])
			return nil
		},
	}
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s is valid (%d worker types, %d nodes, %d activities, %d buildings)\n",
				args[0], len(cat.WorkerTypes), len(cat.Nodes), len(cat.Activities), len(cat.Buildings))
			return nil
		},
	}
}

// activeCatalogPath resolves the catalog the way newApp does, without
// opening the database
func activeCatalogPath() (string, error) {
	if catalogFlag != "" {
		return catalogFlag, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	applyUserDefaults(cfg)
	return cfg.Simulation.CatalogPath, nil
}

func displayCatalog(cat *catalog.Catalog) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Starting resources:\t%s\n", formatResources(cat.StartingResources))
	fmt.Fprintf(w, "Base slots:\t%d\n", cat.BaseSlots)

	fmt.Fprintln(w, "\nWORKER TYPE\tWalk\tCarry\tHarvest\tBase speed")
	for _, t := range cat.WorkerTypes {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", t.ID, t.WalkSpeed, t.CarrySpeed, t.HarvestSpeed, t.BaseSpeed)
	}

	fmt.Fprintln(w, "\nNODE\tCapacity\tSpawn/s\tHarvest\tOutputs")
	for _, n := range cat.Nodes {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.1fs\t%s\n", n.ID, formatAmount(n.Capacity), n.SpawnRate, n.HarvestTime, formatResources(n.Outputs))
	}

	fmt.Fprintln(w, "\nACTIVITY\tDuration\tInputs\tOutputs")
	for _, a := range cat.Activities {
		fmt.Fprintf(w, "%s\t%.1fs\t%s\t%s\n", a.ID, a.Duration, formatResources(a.Inputs), formatResources(a.Outputs))
	}

	fmt.Fprintln(w, "\nBUILDING\tKind\tBase cost\tBuild time\tMax")
	for _, b := range cat.Buildings {
		limit := "-"
		if b.MaxCount > 0 {
			limit = fmt.Sprintf("%d", b.MaxCount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%s\n", b.ID, b.Kind, formatResources(b.BaseCost), b.BuildTime, limit)
	}

	fmt.Fprintln(w, "\nUPGRADE\tEffect\tValue\tCost")
	for _, u := range cat.Upgrades {
		fmt.Fprintf(w, "%s\t%s %s\t%.2f\t%s\n", u.ID, u.Effect, u.Target, u.Value, formatResources(u.Cost))
	}

	fmt.Fprintln(w, "\nBOOST\tMultiplier\tDuration\tCost")
	for _, b := range cat.Boosts {
		fmt.Fprintf(w, "%s\tx%.2f\t%.0fs\t%s\n", b.ID, b.Multiplier, b.Duration, formatResources(b.Cost))
	}

	w.Flush()
}
