// Package config loads application settings from TOML files, layering the
// user config under any config.toml in the working directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all tunable application settings. Every field has a usable
// default, so a missing config file is not an error.
type Config struct {
	// DataDir overrides where the library, playlist and download documents
	// live. Empty means the platform data directory.
	DataDir string `koanf:"data_dir"`

	Log    LogConfig    `koanf:"log"`
	Remote RemoteConfig `koanf:"remote"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "text" or "json"
}

// RemoteConfig controls the yt-dlp integration and the connectivity probe.
type RemoteConfig struct {
	YtdlpPath   string `koanf:"ytdlp_path"`   // executable name or path
	SearchLimit int    `koanf:"search_limit"` // results per search (default 10)
	ProbeAddr   string `koanf:"probe_addr"`   // host:port for the online check
}

// Load reads the config files in priority order (last wins) and applies
// defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.DataDir = expandPath(cfg.DataDir)
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Remote.YtdlpPath == "" {
		c.Remote.YtdlpPath = "yt-dlp"
	}
	if c.Remote.SearchLimit <= 0 || c.Remote.SearchLimit > 50 {
		c.Remote.SearchLimit = 10
	}
}

// ResolveDataDir returns the configured data directory, or the per-user
// application data directory when unset.
func (c *Config) ResolveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(xdg.DataHome, "minuet")
}

func configPaths() []string {
	paths := []string{}

	// 1. ~/.config/minuet/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "minuet", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
