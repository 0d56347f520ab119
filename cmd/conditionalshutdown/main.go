// Command conditionalshutdown powers the machine off when none of the
// configured hosts has been reachable for a sustained offline window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jgehrcke/freenas-utils/internal/cli"
	"github.com/jgehrcke/freenas-utils/internal/config"
	"github.com/jgehrcke/freenas-utils/internal/logging"
	"github.com/jgehrcke/freenas-utils/internal/ping"
	"github.com/jgehrcke/freenas-utils/internal/watchdog"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagInterval     cli.OptionalDuration
		flagWindow       cli.OptionalDuration
		flagProbeTimeout cli.OptionalDuration
		flagPinger       cli.OptionalPingerMode
		flagLogfile      cli.OptionalString
		flagVersion      bool
		flagVersionShort bool
	)

	flag.Var(&flagInterval, "interval", "poll interval between host checks (override config)")
	flag.Var(&flagInterval, "i", "poll interval between host checks (override config)")
	flag.Var(&flagWindow, "offline-window", "required continuous-offline duration, 0 for one-shot (override config)")
	flag.Var(&flagProbeTimeout, "probe-timeout", "per-host probe timeout (override config)")
	flag.Var(&flagPinger, "pinger", "probe implementation: external|icmp|auto (override config)")
	flag.Var(&flagLogfile, "logfile", "rotated log file path (override config)")
	flag.BoolVar(&flagVersion, "version", false, "show version")
	flag.BoolVar(&flagVersionShort, "v", false, "show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <config-file>\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flagVersion || flagVersionShort {
		fmt.Fprintf(os.Stdout, "conditionalshutdown version %s\n", version)
		return 0
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return 1
	}
	configPath := args[0]

	overrides := buildOverrides(flagInterval, flagWindow, flagProbeTimeout, flagPinger, flagLogfile)

	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.ValidateWatchdog(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{
		Level:      logging.ParseLevel(cfg.Log.Level),
		Path:       cfg.Log.Path,
		MaxBytes:   int64(cfg.Log.MaxSizeKB) * 1024,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		return 1
	}
	defer logger.Close()

	shutdowner, err := watchdog.NewExecShutdowner(cfg.ShutdownCommand)
	if err != nil {
		logger.Error("invalid shutdown command", map[string]interface{}{"error": err.Error()})
		return 1
	}

	loop, err := watchdog.New(watchdog.Options{
		Hosts:         cfg.Hosts,
		OfflineWindow: cfg.OfflineWindow.Std(),
		PollInterval:  cfg.PollInterval.Std(),
		ProbeTimeout:  cfg.ProbeTimeout.Std(),
		Pinger:        buildPinger(cfg.Pinger),
		Shutdowner:    shutdowner,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("invalid watchdog setup", map[string]interface{}{"error": err.Error()})
		return 1
	}

	decision, err := loop.Run(context.Background())
	if err != nil {
		logger.Error("run aborted", map[string]interface{}{"error": err.Error()})
		return 1
	}
	logger.Info("run finished", map[string]interface{}{"decision": decision.String()})
	return 0
}

func buildPinger(mode config.PingerMode) ping.Pinger {
	switch mode {
	case config.PingerICMP:
		return ping.NewICMPPinger()
	case config.PingerAuto:
		return ping.NewFallbackPinger(ping.NewICMPPinger(), ping.NewExternalPinger())
	default:
		return ping.NewExternalPinger()
	}
}

func buildOverrides(
	interval cli.OptionalDuration,
	window cli.OptionalDuration,
	probeTimeout cli.OptionalDuration,
	pinger cli.OptionalPingerMode,
	logfile cli.OptionalString,
) config.CLIOverrides {
	overrides := config.CLIOverrides{}

	if v, ok := interval.Value(); ok {
		value := v
		overrides.PollInterval = &value
	}
	if v, ok := window.Value(); ok {
		value := v
		overrides.OfflineWindow = &value
	}
	if v, ok := probeTimeout.Value(); ok {
		value := v
		overrides.ProbeTimeout = &value
	}
	if v, ok := pinger.Value(); ok {
		value := v
		overrides.Pinger = &value
	}
	if v, ok := logfile.Value(); ok && v != "" {
		value := v
		overrides.LogPath = &value
	}

	return overrides
}
