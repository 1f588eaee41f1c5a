// Package config loads and saves the reelmatch TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/logging"
	"github.com/halfmoss/reelmatch/internal/paths"
)

// FoldersConfig holds the persistent monitor folder categories.
type FoldersConfig struct {
	Default  []string `mapstructure:"default"`
	Source   []string `mapstructure:"source"`
	Finished []string `mapstructure:"finished"`
}

// MatchConfig holds matching defaults.
type MatchConfig struct {
	// Threshold is the minimum similarity score (0-100) for a file to
	// surface as a match candidate.
	Threshold int `mapstructure:"threshold"`
}

// ServeConfig holds daemon settings.
type ServeConfig struct {
	Addr  string `mapstructure:"addr"`
	Watch bool   `mapstructure:"watch"`
}

type Config struct {
	Folders FoldersConfig  `mapstructure:"folders"`
	Match   MatchConfig    `mapstructure:"match"`
	Serve   ServeConfig    `mapstructure:"serve"`
	Logging logging.Config `mapstructure:"logging"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Folders: FoldersConfig{
			Default:  []string{},
			Source:   []string{},
			Finished: []string{},
		},
		Match: MatchConfig{
			Threshold: 80,
		},
		Serve: ServeConfig{
			Addr:  ":8787",
			Watch: false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// FolderSet builds the matching scope from the configured folders.
// Session temp folders are supplied by the caller per scan.
func (c *Config) FolderSet() catalog.FolderSet {
	return catalog.FolderSet{
		Default:  c.Folders.Default,
		Source:   c.Folders.Source,
		Finished: c.Folders.Finished,
	}
}

// Threshold returns the configured threshold clamped to 0-100.
func (c *Config) Threshold() int {
	t := c.Match.Threshold
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}

// Load loads configuration from the config file or returns defaults.
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadPath(configPath)
}

// LoadPath loads configuration from a specific file, falling back to
// defaults when the file does not exist.
func LoadPath(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	configFile, err := paths.ConfigPath()
	if err != nil {
		return err
	}
	return c.SavePath(configFile)
}

// SavePath writes the configuration to a specific file.
func (c *Config) SavePath(configFile string) error {
	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	return os.WriteFile(configFile, []byte(c.ToTOML()), 0644)
}

// ConfigExists reports whether a config file is present.
func ConfigExists() bool {
	path, err := paths.ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# reelmatch configuration
# Generated by: reelmatch config init

# ============================================================================
# MONITOR FOLDERS
# Directories scanned during material matching, by category.
# ============================================================================
[folders]
# General folders - matches from these carry no category tag
default = %s

# Raw/original footage library
source = %s

# Completed output library
finished = %s

# ============================================================================
# MATCHING
# ============================================================================
[match]
# Minimum similarity score (0-100) for a file to appear as a candidate
threshold = %d

# ============================================================================
# SERVE DAEMON
# ============================================================================
[serve]
addr = "%s"

# Watch configured folders for newly arrived media files
watch = %v

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = "%s"
file = "%s"
max_size_mb = %d
max_backups = %d
`,
		formatStringSlice(c.Folders.Default),
		formatStringSlice(c.Folders.Source),
		formatStringSlice(c.Folders.Finished),
		c.Match.Threshold,
		c.Serve.Addr,
		c.Serve.Watch,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
