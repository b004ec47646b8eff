package config

import "time"

// SetDefaults sets default values for all configuration fields. The autosave
// interval is not touched here since zero disables autosave; LoadConfig and
// Default supply it when the key is absent.
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" && cfg.Database.URL == "" {
		cfg.Database.Path = "idlecolony.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "idlecolony"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "idlecolony"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Simulation defaults
	if cfg.Simulation.TickInterval == 0 {
		cfg.Simulation.TickInterval = 100 * time.Millisecond
	}
	if cfg.Simulation.SaveSlot == "" {
		cfg.Simulation.SaveSlot = "default"
	}
	if cfg.Simulation.Store == "" {
		cfg.Simulation.Store = StoreDatabase
	}
	if cfg.Simulation.SnapshotDir == "" {
		cfg.Simulation.SnapshotDir = "saves"
	}
	if cfg.Simulation.PIDFile == "" {
		cfg.Simulation.PIDFile = "/tmp/idlecolony.pid"
	}
	if cfg.Simulation.JournalSize == 0 {
		cfg.Simulation.JournalSize = 1000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.DedupWindow == 0 {
		cfg.Logging.DedupWindow = 5 * time.Second
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
