package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sadopc/zenfocus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or change configuration",
	Long: `View or modify zenfocus configuration.

Without arguments, displays the effective configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the value and saves the config file.

Session preferences (durations, rounds, sounds) are changed in the Settings
and Sounds views instead.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configFile())
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.UserConfigPath()
}

type configKey struct {
	name string
	get  func(*config.Config) string
	set  func(*config.Config, string) error
}

var configKeys = []configKey{
	{"data_dir", func(c *config.Config) string { return c.DataDir }, setString(func(c *config.Config) *string { return &c.DataDir })},
	{"db_path", func(c *config.Config) string { return c.DBPath }, setString(func(c *config.Config) *string { return &c.DBPath })},
	{"lang", func(c *config.Config) string { return c.Lang }, setString(func(c *config.Config) *string { return &c.Lang })},
	{"log.level", func(c *config.Config) string { return c.Log.Level }, setString(func(c *config.Config) *string { return &c.Log.Level })},
	{"log.file", func(c *config.Config) string { return c.Log.File }, setString(func(c *config.Config) *string { return &c.Log.File })},
	{"timer.tick_interval", func(c *config.Config) string { return c.Timer.TickInterval.String() }, setDuration(func(c *config.Config) *time.Duration { return &c.Timer.TickInterval })},
	{"timer.auto_advance", func(c *config.Config) string { return strconv.FormatBool(c.Timer.AutoAdvance) }, setBool(func(c *config.Config) *bool { return &c.Timer.AutoAdvance })},
	{"input.debounce", func(c *config.Config) string { return c.Input.Debounce.String() }, setDuration(func(c *config.Config) *time.Duration { return &c.Input.Debounce })},
	{"ipc.enabled", func(c *config.Config) string { return strconv.FormatBool(c.IPC.Enabled) }, setBool(func(c *config.Config) *bool { return &c.IPC.Enabled })},
	{"ipc.address", func(c *config.Config) string { return c.IPC.Address }, setString(func(c *config.Config) *string { return &c.IPC.Address })},
	{"ipc.signals_dir", func(c *config.Config) string { return c.IPC.SignalsDir }, setString(func(c *config.Config) *string { return &c.IPC.SignalsDir })},
	{"sound.enabled", func(c *config.Config) string { return strconv.FormatBool(c.Sound.Enabled) }, setBool(func(c *config.Config) *bool { return &c.Sound.Enabled })},
	{"sound.dir", func(c *config.Config) string { return c.Sound.Dir }, setString(func(c *config.Config) *string { return &c.Sound.Dir })},
	{"sound.alert_id", func(c *config.Config) string { return c.Sound.AlertID }, setString(func(c *config.Config) *string { return &c.Sound.AlertID })},
}

func setString(field func(*config.Config) *string) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setBool(field func(*config.Config) *bool) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}

func setDuration(field func(*config.Config) *time.Duration) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		*field(c) = d
		return nil
	}
}

func lookupConfigKey(name string) (configKey, error) {
	name = strings.ToLower(name)
	for _, k := range configKeys {
		if k.name == name {
			return k, nil
		}
	}
	return configKey{}, fmt.Errorf("unknown configuration key: %s", name)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch len(args) {
	case 0:
		for _, k := range configKeys {
			fmt.Fprintf(out, "%s: %s\n", k.name, k.get(cfg))
		}
		return nil
	case 1:
		k, err := lookupConfigKey(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, k.get(cfg))
		return nil
	}

	k, err := lookupConfigKey(args[0])
	if err != nil {
		return err
	}
	if err := k.set(cfg, args[1]); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, configFile()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Set %s = %s\n", k.name, args[1])
	return nil
}
