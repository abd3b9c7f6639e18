package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	configFileName     = "config.yaml"
	tomlConfigFileName = "config.toml"
)

// Defaults mirror the option sets the PHP-oriented tag workflow was built on.
const (
	DefaultCommand         = "ctags"
	DefaultTagFileName     = "ctags.tmp"
	DefaultGenerateOptions = "-R --fields=-aiklmnSzt+fsK --languages=php --php-kinds=cidf --excmd=number"
	DefaultOutlineOptions  = "--fields=-aiklmnSzt+fsK --php-kinds=cidf --excmd=number -f -"
	DefaultMaxTagFileMB    = 50
	DefaultWatchDebounce   = 300 * time.Millisecond
)

// Environment overrides.
const (
	EnvCommand = "TAGNAV_CTAGS"
	EnvEditor  = "TAGNAV_EDITOR"
)

// Config represents the tagnav configuration.
type Config struct {
	Command         string        `yaml:"command" toml:"command"`
	TagFileName     string        `yaml:"tagFile" toml:"tag_file"`
	GenerateOptions string        `yaml:"generateOptions" toml:"generate_options"`
	OutlineOptions  string        `yaml:"outlineOptions" toml:"outline_options"`
	MaxTagFileMB    int64         `yaml:"maxTagFileMB" toml:"max_tag_file_mb"`
	Editor          string        `yaml:"editor,omitempty" toml:"editor"`
	WatchDebounce   time.Duration `yaml:"watchDebounce,omitempty" toml:"watch_debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Command:         DefaultCommand,
		TagFileName:     DefaultTagFileName,
		GenerateOptions: DefaultGenerateOptions,
		OutlineOptions:  DefaultOutlineOptions,
		MaxTagFileMB:    DefaultMaxTagFileMB,
		WatchDebounce:   DefaultWatchDebounce,
	}
}

// MaxTagFileBytes returns the load size cap in bytes.
func (c *Config) MaxTagFileBytes() int64 {
	return c.MaxTagFileMB * 1024 * 1024
}

// ConfigPath returns the path to the config file in the tagnav directory.
func ConfigPath(toolDir string) string {
	return filepath.Join(toolDir, configFileName)
}

// Save writes the configuration to disk as YAML.
func Save(cfg *Config, toolDir string) error {
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(toolDir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load is LoadFile with the environment overrides applied.
func Load(toolDir string) (*Config, error) {
	cfg, err := LoadFile(toolDir)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads config.yaml, or config.toml when there is no YAML file,
// from toolDir. A missing file is not an error: defaults are used. Fields
// left empty in the file keep their defaults.
func LoadFile(toolDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(toolDir))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		tomlPath := filepath.Join(toolDir, tomlConfigFileName)
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode %s: %w", tomlConfigFileName, err)
		}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Command == "" {
		c.Command = d.Command
	}
	if c.TagFileName == "" {
		c.TagFileName = d.TagFileName
	}
	if c.GenerateOptions == "" {
		c.GenerateOptions = d.GenerateOptions
	}
	if c.OutlineOptions == "" {
		c.OutlineOptions = d.OutlineOptions
	}
	if c.MaxTagFileMB <= 0 {
		c.MaxTagFileMB = d.MaxTagFileMB
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = d.WatchDebounce
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvCommand); v != "" {
		c.Command = v
	}
	if v := os.Getenv(EnvEditor); v != "" {
		c.Editor = v
	} else if c.Editor == "" {
		c.Editor = os.Getenv("EDITOR")
	}
}
