// Package config loads application configuration from the XDG config
// directory, an optional explicit file and ZENFOCUS_* environment variables.
// User preferences that change at runtime live in the settings store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "zenfocus"

// Config holds all configuration for zenfocus.
type Config struct {
	DataDir string      `mapstructure:"data_dir"`
	DBPath  string      `mapstructure:"db_path"`
	Lang    string      `mapstructure:"lang"`
	Log     LogConfig   `mapstructure:"log"`
	Timer   TimerConfig `mapstructure:"timer"`
	Input   InputConfig `mapstructure:"input"`
	IPC     IPCConfig   `mapstructure:"ipc"`
	Sound   SoundConfig `mapstructure:"sound"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type TimerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	AutoAdvance  bool          `mapstructure:"auto_advance"`
}

type InputConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// IPCConfig controls the host messaging endpoint. An empty Address means
// a loopback port derived from the app name.
type IPCConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	SignalsDir string `mapstructure:"signals_dir"`
}

type SoundConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	AlertID string `mapstructure:"alert_id"`
}

// Load reads configuration. An empty path searches the user config
// directory and tolerates a missing file; an explicit path must exist.
// Precedence (highest to lowest):
// 1. ZENFOCUS_* environment variables (ZENFOCUS_TIMER_TICK_INTERVAL, ...)
// 2. The config file
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(UserConfigDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading user config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("ZENFOCUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.fillPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("data_dir", cfg.DataDir)
	v.Set("db_path", cfg.DBPath)
	v.Set("lang", cfg.Lang)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("timer.tick_interval", cfg.Timer.TickInterval.String())
	v.Set("timer.auto_advance", cfg.Timer.AutoAdvance)
	v.Set("input.debounce", cfg.Input.Debounce.String())
	v.Set("ipc.enabled", cfg.IPC.Enabled)
	v.Set("ipc.address", cfg.IPC.Address)
	v.Set("ipc.signals_dir", cfg.IPC.SignalsDir)
	v.Set("sound.enabled", cfg.Sound.Enabled)
	v.Set("sound.dir", cfg.Sound.Dir)
	v.Set("sound.alert_id", cfg.Sound.AlertID)

	return v.WriteConfigAs(path)
}

// Validate rejects values the timer cannot run with.
func (c *Config) Validate() error {
	if c.Timer.TickInterval <= 0 {
		return fmt.Errorf("timer.tick_interval must be positive, got %s", c.Timer.TickInterval)
	}
	if c.Input.Debounce < 0 {
		return fmt.Errorf("input.debounce must not be negative, got %s", c.Input.Debounce)
	}
	return nil
}

// UserConfigPath returns the default config file location.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// UserConfigDir returns the XDG config directory for zenfocus.
func UserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

func (c *Config) fillPaths() {
	if c.DataDir == "" {
		c.DataDir = UserConfigDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, appName+".db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, appName+".log")
	}
	if c.IPC.SignalsDir == "" {
		c.IPC.SignalsDir = filepath.Join(c.DataDir, "signals")
	}
	if c.Sound.Dir == "" {
		c.Sound.Dir = filepath.Join(c.DataDir, "sounds")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("lang", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("timer.tick_interval", "1s")
	v.SetDefault("timer.auto_advance", true)

	v.SetDefault("input.debounce", "300ms")

	v.SetDefault("ipc.enabled", true)
	v.SetDefault("ipc.address", "")
	v.SetDefault("ipc.signals_dir", "")

	v.SetDefault("sound.enabled", true)
	v.SetDefault("sound.dir", "")
	v.SetDefault("sound.alert_id", "4112001")
}

// Default returns a Config with default values and derived paths.
func Default() *Config {
	cfg := &Config{
		Log: LogConfig{Level: "info"},
		Timer: TimerConfig{
			TickInterval: time.Second,
			AutoAdvance:  true,
		},
		Input: InputConfig{Debounce: 300 * time.Millisecond},
		IPC:   IPCConfig{Enabled: true},
		Sound: SoundConfig{Enabled: true, AlertID: "4112001"},
	}
	cfg.fillPaths()
	return cfg
}
