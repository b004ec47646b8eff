package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage idle colony configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (IC_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default slot and catalog) are stored in ~/.idlecolony/config.json

Examples:
  idlecolony config show
  idlecolony config set-slot alpha
  idlecolony config set-catalog ./colony.yaml
  idlecolony config clear`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetSlotCommand())
	cmd.AddCommand(newConfigSetCatalogCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// applyUserDefaults fills slot and catalog from user preferences when the
// config left them at their defaults
func applyUserDefaults(cfg *config.Config) {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return
	}
	userCfg, err := handler.Load()
	if err != nil {
		return
	}
	if userCfg.DefaultSlot != "" && cfg.Simulation.SaveSlot == "default" {
		cfg.Simulation.SaveSlot = userCfg.DefaultSlot
	}
	if userCfg.DefaultCatalog != "" && cfg.Simulation.CatalogPath == "" {
		cfg.Simulation.CatalogPath = userCfg.DefaultCatalog
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Shows both system configuration and user preferences.

Example:
  idlecolony config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.Default()
			}
			applyUserDefaults(cfg)

			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := handler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("Idle Colony Configuration")
			fmt.Println("=========================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", handler.GetConfigPath())
			fmt.Printf("  Default slot:     %s\n", orNotSet(userCfg.DefaultSlot))
			fmt.Printf("  Default catalog:  %s\n", orNotSet(userCfg.DefaultCatalog))

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}

			fmt.Println("\nSimulation:")
			fmt.Printf("  Save slot:        %s\n", cfg.Simulation.SaveSlot)
			fmt.Printf("  Store:            %s\n", cfg.Simulation.Store)
			if cfg.Simulation.Store == config.StoreFile {
				fmt.Printf("  Snapshot dir:     %s\n", cfg.Simulation.SnapshotDir)
			}
			fmt.Printf("  Catalog:          %s\n", orBuiltIn(cfg.Simulation.CatalogPath))
			fmt.Printf("  Tick interval:    %s\n", cfg.Simulation.TickInterval)
			fmt.Printf("  Autosave:         %s\n", cfg.Simulation.AutosaveInterval)
			fmt.Printf("  PID file:         %s\n", cfg.Simulation.PIDFile)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)
			fmt.Printf("  Event log:        %t (dedup %s)\n", cfg.Logging.EventLog, cfg.Logging.DedupWindow)

			fmt.Println("\nMetrics:")
			if cfg.Metrics.Enabled {
				fmt.Printf("  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			} else {
				fmt.Println("  Disabled")
			}

			return nil
		},
	}
}

func newConfigSetSlotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-slot <slot>",
		Short: "Set default save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultSlot(args[0]); err != nil {
				return fmt.Errorf("failed to set default slot: %w", err)
			}
			fmt.Printf("✓ Default slot set to %s\n", args[0])
			fmt.Println("Override with the --slot flag.")
			return nil
		},
	}
}

func newConfigSetCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-catalog <path>",
		Short: "Set default catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultCatalog(args[0]); err != nil {
				return fmt.Errorf("failed to set default catalog: %w", err)
			}
			fmt.Printf("✓ Default catalog set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear user preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}
			fmt.Println("✓ User preferences cleared")
			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func orBuiltIn(s string) string {
	if s == "" {
		return "(built-in)"
	}
	return s
}
