// Package config loads zap's user settings from ~/.config/zap/config.yaml
// (or $ZAP_CONFIG) and ZAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix  = "ZAP"
	configName = "config"
	configType = "yaml"
)

// Config holds user settings. Every key can be overridden by ZAP_<KEY>.
type Config struct {
	Backend            string        `mapstructure:"backend"`
	Yes                bool          `mapstructure:"yes"`
	Debounce           time.Duration `mapstructure:"debounce"`
	MinQuery           int           `mapstructure:"min_query"`
	DisableUpdateCheck bool          `mapstructure:"disable_update_check"`
	Debug              bool          `mapstructure:"debug"`
	LogDir             string        `mapstructure:"log_dir"`
	BackendsFile       string        `mapstructure:"backends_file"`
	// Path is the file the settings were read from, empty when none existed.
	Path string `mapstructure:"-"`
}

// Dir returns ~/.config/zap.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "zap")
	}
	return filepath.Join(home, ".config", "zap")
}

// DefaultLogDir returns <user cache>/zap/logs.
func DefaultLogDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "zap", "logs")
	}
	return filepath.Join(cache, "zap", "logs")
}

// Path returns the config file location: $ZAP_CONFIG or ~/.config/zap/config.yaml.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), configName+"."+configType)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("backend", "auto")
	v.SetDefault("yes", false)
	v.SetDefault("debounce", 300*time.Millisecond)
	v.SetDefault("min_query", 2)
	v.SetDefault("disable_update_check", false)
	v.SetDefault("debug", false)
	v.SetDefault("log_dir", DefaultLogDir())
	v.SetDefault("backends_file", filepath.Join(Dir(), "backends.yaml"))

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if present and applies env overrides. A missing
// file is not an error; a malformed one is.
func Load() (*Config, error) {
	v := newViper()
	path := Path()
	v.SetConfigFile(path)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		found = false
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if found {
		c.Path = path
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("config: debounce must not be negative, got %s", c.Debounce)
	}
	if c.MinQuery < 1 {
		return fmt.Errorf("config: min_query must be at least 1, got %d", c.MinQuery)
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = "auto"
	}
	return nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("backend", cfg.Backend)
	v.Set("yes", cfg.Yes)
	v.Set("debounce", cfg.Debounce.String())
	v.Set("min_query", cfg.MinQuery)
	v.Set("disable_update_check", cfg.DisableUpdateCheck)
	v.Set("debug", cfg.Debug)
	v.Set("log_dir", cfg.LogDir)
	v.Set("backends_file", cfg.BackendsFile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
