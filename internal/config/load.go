package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks a configuration precondition violation. All
// validation failures wrap it so callers can classify via errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns the baseline configuration used before file values
// and CLI overrides are applied. The numbers match the historical
// FreeBSD scripts: 500 kB log rotation with 30 backups, a 5 second
// probe bound and `shutdown -p now`.
func Default() Config {
	return Config{
		Log: LogConfig{
			MaxSizeKB:  500,
			MaxBackups: 30,
			Level:      "info",
		},
		OfflineWindow:   Duration(30 * time.Minute),
		PollInterval:    Duration(5 * time.Minute),
		ProbeTimeout:    Duration(5 * time.Second),
		Pinger:          PingerExternal,
		ShutdownCommand: []string{"/sbin/shutdown", "-p", "now"},
		Rsync: RsyncConfig{
			Path: "rsync",
		},
	}
}

// Load reads the YAML configuration file, merges it over the defaults
// and applies CLI overrides. Validation is left to the per-program
// Validate* methods since the two binaries share one file format.
func Load(path string, overrides CLIOverrides) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyCLIOverrides(&cfg, overrides)
	return &cfg, nil
}

// ValidateWatchdog checks the settings the reachability watchdog needs.
func (c *Config) ValidateWatchdog() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("%w: no hosts to check", ErrInvalidConfig)
	}
	for _, host := range c.Hosts {
		if host.Address == "" {
			return fmt.Errorf("%w: host %q has no address", ErrInvalidConfig, host.Name)
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: probe_timeout must be positive", ErrInvalidConfig)
	}
	if c.OfflineWindow < 0 {
		return fmt.Errorf("%w: offline_window must not be negative", ErrInvalidConfig)
	}
	// A positive window must allow at least two polls before a shutdown
	// is committed, so a single flaky poll can never decide it.
	if c.OfflineWindow > 0 && c.OfflineWindow.Std() <= 2*c.PollInterval.Std() {
		return fmt.Errorf("%w: offline_window (%s) must be greater than twice poll_interval (%s)",
			ErrInvalidConfig, c.OfflineWindow.Std(), c.PollInterval.Std())
	}
	switch c.Pinger {
	case PingerExternal, PingerICMP, PingerAuto:
	default:
		return fmt.Errorf("%w: unknown pinger mode %q", ErrInvalidConfig, c.Pinger)
	}
	if len(c.ShutdownCommand) == 0 {
		return fmt.Errorf("%w: shutdown_command is empty", ErrInvalidConfig)
	}
	return nil
}

// ValidateTasks checks the settings the sync task runner needs. Task
// source/target preconditions are checked when tasks are constructed.
func (c *Config) ValidateTasks() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("%w: no sync tasks defined", ErrInvalidConfig)
	}
	if c.Rsync.Path == "" {
		return fmt.Errorf("%w: rsync.path is empty", ErrInvalidConfig)
	}
	if c.Rsync.LogDir == "" {
		return fmt.Errorf("%w: rsync.log_dir is empty", ErrInvalidConfig)
	}
	info, err := os.Stat(c.Rsync.LogDir)
	if err != nil {
		return fmt.Errorf("%w: rsync.log_dir: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: rsync.log_dir is not a directory: %s", ErrInvalidConfig, c.Rsync.LogDir)
	}
	seen := make(map[string]struct{}, len(c.Tasks))
	for _, task := range c.Tasks {
		if task.Name == "" {
			return fmt.Errorf("%w: task with empty name", ErrInvalidConfig)
		}
		if _, dup := seen[task.Name]; dup {
			return fmt.Errorf("%w: duplicate task name %q", ErrInvalidConfig, task.Name)
		}
		seen[task.Name] = struct{}{}
	}
	return nil
}

func applyCLIOverrides(cfg *Config, overrides CLIOverrides) {
	if overrides.PollInterval != nil {
		cfg.PollInterval = Duration(*overrides.PollInterval)
	}
	if overrides.OfflineWindow != nil {
		cfg.OfflineWindow = Duration(*overrides.OfflineWindow)
	}
	if overrides.ProbeTimeout != nil {
		cfg.ProbeTimeout = Duration(*overrides.ProbeTimeout)
	}
	if overrides.Pinger != nil {
		cfg.Pinger = *overrides.Pinger
	}
	if overrides.LogPath != nil {
		cfg.Log.Path = *overrides.LogPath
	}
	if overrides.RsyncPath != nil {
		cfg.Rsync.Path = *overrides.RsyncPath
	}
	if overrides.RsyncLogDir != nil {
		cfg.Rsync.LogDir = *overrides.RsyncLogDir
	}
}
