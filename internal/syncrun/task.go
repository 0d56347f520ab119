// Package syncrun runs a fixed list of directory-mirroring tasks
// through rsync, strictly in order, capturing each task's output into
// its own per-run log file.
package syncrun

import (
	"fmt"
	"os"
	"strings"

	"github.com/jgehrcke/freenas-utils/internal/config"
)

// PreconditionError reports an invalid task definition. It is fatal
// before any task runs.
type PreconditionError struct {
	Task   string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("task %q: %s", e.Task, e.Reason)
}

// Task is one validated (name, source, target) mirroring triple.
type Task struct {
	Name   string
	Source string
	Target string
}

// NewTask validates a task definition. Source and target must be
// existing directories. The source must not carry a trailing separator:
// rsync uses its presence to decide whether to nest the source
// directory under the target, and these tasks always nest.
func NewTask(cfg config.TaskConfig) (Task, error) {
	if strings.HasSuffix(cfg.Source, "/") {
		return Task{}, &PreconditionError{Task: cfg.Name, Reason: fmt.Sprintf("source has trailing slash: %s", cfg.Source)}
	}
	if err := mustBeDir(cfg.Source); err != nil {
		return Task{}, &PreconditionError{Task: cfg.Name, Reason: fmt.Sprintf("source is no directory: %v", err)}
	}
	if err := mustBeDir(cfg.Target); err != nil {
		return Task{}, &PreconditionError{Task: cfg.Name, Reason: fmt.Sprintf("target is no directory: %v", err)}
	}
	return Task{Name: cfg.Name, Source: cfg.Source, Target: cfg.Target}, nil
}

// NewTasks validates all task definitions, failing fast on the first
// violation so nothing runs against a half-valid list.
func NewTasks(cfgs []config.TaskConfig) ([]Task, error) {
	tasks := make([]Task, 0, len(cfgs))
	for _, cfg := range cfgs {
		task, err := NewTask(cfg)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func mustBeDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}
