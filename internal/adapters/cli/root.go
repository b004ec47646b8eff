package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	slotFlag    string
	catalogFlag string
	verbose     bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "idlecolony",
		Short: "Idle colony simulation",
		Long: `Idle colony runs a worker-driven resource economy.

Workers walk to resource nodes and production activities, harvest, carry
their payload home and credit it to the colony ledger. Buildings add
workers, storage and speed; upgrades and boosts make everything faster.

Examples:
  idlecolony run --duration 10m
  idlecolony status
  idlecolony assign peasant forest 3
  idlecolony build house
  idlecolony harvest forest --times 5
  idlecolony journal --resource wood --limit 20
  idlecolony saves list`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&slotFlag, "slot", "",
		"Save slot (default: user preference or simulation.save_slot)")
	rootCmd.PersistentFlags().StringVar(&catalogFlag, "catalog", "",
		"Catalog YAML file (default: built-in catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewSavesCommand())
	rootCmd.AddCommand(NewJournalCommand())
	rootCmd.AddCommand(NewFlowCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	for _, cmd := range newActionCommands() {
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
