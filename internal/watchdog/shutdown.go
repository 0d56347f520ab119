package watchdog

import (
	"context"
	"errors"
	"os/exec"
)

// Shutdowner invokes the power-off action and reports its exit code.
type Shutdowner interface {
	Shutdown(ctx context.Context) (int, error)
}

// ExecShutdowner runs a configured shutdown command, typically
// /sbin/shutdown -p now.
type ExecShutdowner struct {
	command []string
}

// NewExecShutdowner builds a shutdowner from a non-empty argv.
func NewExecShutdowner(command []string) (*ExecShutdowner, error) {
	if len(command) == 0 {
		return nil, errors.New("watchdog: empty shutdown command")
	}
	return &ExecShutdowner{command: command}, nil
}

// Shutdown runs the command and returns its exit code. An error is
// returned only when the command could not be launched.
func (s *ExecShutdowner) Shutdown(ctx context.Context) (int, error) {
	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
