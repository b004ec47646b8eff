package config

import "time"

// Save store kinds
const (
	StoreDatabase = "database"
	StoreFile     = "file"
	StoreNone     = "none"
)

// DefaultAutosaveInterval applies when autosave_interval is not configured
const DefaultAutosaveInterval = time.Minute

// SimulationConfig holds the host loop configuration
type SimulationConfig struct {
	// Wall-clock time between engine ticks
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required"`

	// Seed for worker jitter; 0 picks one from the clock
	Seed int64 `mapstructure:"seed"`

	// Save slot loaded on start and written by autosave
	SaveSlot string `mapstructure:"save_slot" validate:"required,save_slot"`

	// Autosave period; 0 disables autosave
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"min=0"`

	// Catalog YAML path; empty uses the built-in catalog
	CatalogPath string `mapstructure:"catalog_path"`

	// Where saves go: database, file or none
	Store string `mapstructure:"store" validate:"required,oneof=database file none"`

	// Directory of compressed snapshots when Store is "file"
	SnapshotDir string `mapstructure:"snapshot_dir" validate:"required_if=Store file"`

	// PID file guarding against two simulations on one save
	PIDFile string `mapstructure:"pid_file"`

	// Transactions kept in memory before they are flushed
	JournalSize int `mapstructure:"journal_size" validate:"min=1"`
}
