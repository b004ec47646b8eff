package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents player preferences stored in ~/.idlecolony/config.json
type UserConfig struct {
	// Save slot used when --slot is not given
	DefaultSlot string `json:"default_slot,omitempty"`

	// Catalog used when --catalog is not given
	DefaultCatalog string `json:"default_catalog,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for the config file in the home directory
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".idlecolony", "config.json"))
}

// NewUserConfigHandlerAt creates a handler for an explicit path
func NewUserConfigHandlerAt(configPath string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: configPath}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	// If file doesn't exist, return empty config
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// SetDefaultSlot remembers the save slot to use by default
func (h *UserConfigHandler) SetDefaultSlot(slot string) error {
	if !ValidSlotName(slot) {
		return fmt.Errorf("invalid save slot %q: use letters, digits, '.', '-' or '_'", slot)
	}
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultSlot = slot
	return h.Save(config)
}

// SetDefaultCatalog remembers the catalog to use by default
func (h *UserConfigHandler) SetDefaultCatalog(path string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultCatalog = path
	return h.Save(config)
}

// Clear removes every preference
func (h *UserConfigHandler) Clear() error {
	return h.Save(&UserConfig{})
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
