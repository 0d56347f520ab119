package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PingerMode selects the probe implementation.
type PingerMode string

const (
	// PingerExternal shells out to the system ping binary.
	PingerExternal PingerMode = "external"
	// PingerICMP sends echo requests over raw sockets.
	PingerICMP PingerMode = "icmp"
	// PingerAuto tries raw sockets and falls back to the external binary.
	PingerAuto PingerMode = "auto"
)

// Duration wraps time.Duration for YAML decoding of values like "5m".
type Duration time.Duration

// UnmarshalYAML decodes a duration string via time.ParseDuration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back to its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LogConfig configures the shared log stream.
type LogConfig struct {
	Path       string `yaml:"path"`
	MaxSizeKB  int    `yaml:"max_size_kb"`
	MaxBackups int    `yaml:"max_backups"`
	Level      string `yaml:"level"`
}

// HostConfig names one monitored network endpoint.
type HostConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// RsyncConfig locates the mirroring binary and its capture-file directory.
type RsyncConfig struct {
	Path   string `yaml:"path"`
	LogDir string `yaml:"log_dir"`
}

// TaskConfig is one directory-mirroring task definition.
type TaskConfig struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Config is the full parsed configuration for both programs.
type Config struct {
	Log             LogConfig    `yaml:"log"`
	Hosts           []HostConfig `yaml:"hosts"`
	OfflineWindow   Duration     `yaml:"offline_window"`
	PollInterval    Duration     `yaml:"poll_interval"`
	ProbeTimeout    Duration     `yaml:"probe_timeout"`
	Pinger          PingerMode   `yaml:"pinger"`
	ShutdownCommand []string     `yaml:"shutdown_command"`
	Rsync           RsyncConfig  `yaml:"rsync"`
	Tasks           []TaskConfig `yaml:"tasks"`
}

// CLIOverrides holds optional CLI values that override config file values.
type CLIOverrides struct {
	PollInterval  *time.Duration
	OfflineWindow *time.Duration
	ProbeTimeout  *time.Duration
	Pinger        *PingerMode
	LogPath       *string
	RsyncPath     *string
	RsyncLogDir   *string
}
