// Package config handles loading redo.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the redo.toml configuration file.
type Config struct {
	Database string `toml:"database"`
	KeyFile  string `toml:"key-file"`
	Author   Author `toml:"author"`
}

// Author contains identity-related configuration.
type Author struct {
	// Name is the optional display name stamped onto authored events.
	Name string `toml:"name"`
	// DeviceID distinguishes this device's writes; defaults to hostname.
	DeviceID string `toml:"device-id"`
}

// Load loads configuration from the working directory and the global
// config file. Local values override global ones; defaults fill whatever
// remains unset. Returns a fully defaulted config if no file exists.
func Load() (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	localCfg, localMeta, err := loadConfigFile("redo.toml")
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, localCfg, localMeta)
	if err := applyDefaults(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func globalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "redo", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, meta, nil
}

// mergeConfigs overlays local values onto global ones. A key wins only if
// the file actually defined it, so empty strings in the local file do not
// clobber global settings.
func mergeConfigs(global, local *Config, localMeta toml.MetaData) *Config {
	merged := *global

	if localMeta.IsDefined("database") {
		merged.Database = local.Database
	}
	if localMeta.IsDefined("key-file") {
		merged.KeyFile = local.KeyFile
	}
	if localMeta.IsDefined("author", "name") {
		merged.Author.Name = local.Author.Name
	}
	if localMeta.IsDefined("author", "device-id") {
		merged.Author.DeviceID = local.Author.DeviceID
	}

	return &merged
}

func applyDefaults(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("get home directory: %w", err)
	}

	if cfg.Database == "" {
		cfg.Database = filepath.Join(homeDir, ".local", "share", "redo", "redo.db")
	}
	if cfg.KeyFile == "" {
		cfg.KeyFile = filepath.Join(homeDir, ".config", "redo", "identity.key")
	}
	if cfg.Author.DeviceID == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "unknown-device"
		}
		cfg.Author.DeviceID = hostname
	}

	return nil
}
