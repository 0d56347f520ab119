package syncrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/jgehrcke/freenas-utils/internal/logging"
)

// rsyncFlags mirror one directory into another: preserve everything,
// keep hard links, delete extraneous destination entries, allow fuzzy
// basis-file matching and print transfer statistics.
var rsyncFlags = []string{
	"--archive",
	"--verbose",
	"--hard-links",
	"--delete",
	"--fuzzy",
	"--stats",
}

// Report is the outcome of one task.
type Report struct {
	Name        string
	ExitCode    int
	Duration    time.Duration
	CaptureFile string
	// Err is set when rsync could not be launched or the capture file
	// could not be opened; the task was skipped, not failed.
	Err error
}

// Runner executes the tasks strictly in listed order. Tasks may contend
// for shared disk and network bandwidth, so serial execution is
// intentional.
type Runner struct {
	tasks     []Task
	rsyncPath string
	logDir    string
	logger    *logging.Logger
	now       func() time.Time
}

// NewRunner builds a runner. logDir must be an existing directory; it
// receives one capture file per task per run.
func NewRunner(tasks []Task, rsyncPath, logDir string, logger *logging.Logger) (*Runner, error) {
	if rsyncPath == "" {
		return nil, errors.New("syncrun: empty rsync path")
	}
	info, err := os.Stat(logDir)
	if err != nil {
		return nil, fmt.Errorf("syncrun: capture log dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("syncrun: capture log dir is not a directory: %s", logDir)
	}
	return &Runner{
		tasks:     tasks,
		rsyncPath: rsyncPath,
		logDir:    logDir,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// RunAll executes every task. A task's nonzero rsync exit or launch
// failure never stops the remaining tasks.
func (r *Runner) RunAll(ctx context.Context) []Report {
	r.logger.Info("running tasks", map[string]interface{}{"tasks": len(r.tasks)})
	t0 := r.now()

	reports := make([]Report, 0, len(r.tasks))
	for _, task := range r.tasks {
		r.logger.Info("starting task", map[string]interface{}{"task": task.Name})
		reports = append(reports, r.runTask(ctx, task))
	}

	r.logger.Info("task iteration done", map[string]interface{}{
		"runtime": formatHMS(r.now().Sub(t0)),
	})
	return reports
}

func (r *Runner) runTask(ctx context.Context, task Task) Report {
	report := Report{Name: task.Name}

	captureName := fmt.Sprintf("rsync_stdouterr_%s_%s.log", task.Name, r.now().Format("20060102-150405"))
	capturePath := filepath.Join(r.logDir, captureName)
	report.CaptureFile = capturePath

	capture, err := os.Create(capturePath)
	if err != nil {
		report.Err = fmt.Errorf("open capture file: %w", err)
		r.logger.LogTaskResult(task.Name, -1, 0, report.Err)
		return report
	}
	defer capture.Close()

	args := append(append([]string{}, rsyncFlags...), task.Source, task.Target)
	cmd := exec.CommandContext(ctx, r.rsyncPath, args...)
	cmd.Stdout = capture
	cmd.Stderr = capture

	r.logger.Info("running rsync", map[string]interface{}{
		"task":    task.Name,
		"source":  task.Source,
		"target":  task.Target,
		"capture": capturePath,
	})

	t0 := r.now()
	runErr := cmd.Run()
	report.Duration = r.now().Sub(t0)

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// rsync never started; skip this task, the next ones are
			// independent.
			report.Err = fmt.Errorf("launch rsync: %w", runErr)
			r.logger.LogTaskResult(task.Name, -1, report.Duration, report.Err)
			return report
		}
		report.ExitCode = exitErr.ExitCode()
	}

	fmt.Fprintf(capture, "\nwrapper info: rsync exit code: %d\n", report.ExitCode)
	fmt.Fprintf(capture, "wrapper info: rsync runtime (walltime): %s\n", formatHMS(report.Duration))

	r.logger.LogTaskResult(task.Name, report.ExitCode, report.Duration, nil)
	return report
}

// formatHMS renders a duration as hours:minutes:seconds with
// centisecond precision, e.g. "1:2:5.25".
func formatHMS(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	remainder := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%d:%d:%.2f", hours, minutes, remainder)
}
