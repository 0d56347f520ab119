// Command syncdirtasks mirrors a fixed list of directories via rsync,
// one task at a time, capturing each task's output into its own file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jgehrcke/freenas-utils/internal/cli"
	"github.com/jgehrcke/freenas-utils/internal/config"
	"github.com/jgehrcke/freenas-utils/internal/logging"
	"github.com/jgehrcke/freenas-utils/internal/syncrun"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagLogfile      cli.OptionalString
		flagRsyncPath    cli.OptionalString
		flagRsyncLogDir  cli.OptionalString
		flagVersion      bool
		flagVersionShort bool
	)

	flag.Var(&flagLogfile, "logfile", "rotated log file path (override config)")
	flag.Var(&flagRsyncPath, "rsync-path", "rsync binary to invoke (override config)")
	flag.Var(&flagRsyncLogDir, "rsync-log-dir", "directory for per-task rsync capture files (override config)")
	flag.BoolVar(&flagVersion, "version", false, "show version")
	flag.BoolVar(&flagVersionShort, "v", false, "show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <config-file>\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flagVersion || flagVersionShort {
		fmt.Fprintf(os.Stdout, "syncdirtasks version %s\n", version)
		return 0
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return 1
	}
	configPath := args[0]

	overrides := config.CLIOverrides{}
	if v, ok := flagLogfile.Value(); ok && v != "" {
		value := v
		overrides.LogPath = &value
	}
	if v, ok := flagRsyncPath.Value(); ok && v != "" {
		value := v
		overrides.RsyncPath = &value
	}
	if v, ok := flagRsyncLogDir.Value(); ok && v != "" {
		value := v
		overrides.RsyncLogDir = &value
	}

	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.ValidateTasks(); err != nil {
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

	logger.Info("program launch", map[string]interface{}{"tasks": len(cfg.Tasks)})

	tasks, err := syncrun.NewTasks(cfg.Tasks)
	if err != nil {
		logger.Error("task validation failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	runner, err := syncrun.NewRunner(tasks, cfg.Rsync.Path, cfg.Rsync.LogDir, logger)
	if err != nil {
		logger.Error("runner setup failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	// Individual task failures are already logged; the run as a whole
	// still counts as a normal completion.
	runner.RunAll(context.Background())
	logger.Info("program termination", nil)
	return 0
}
