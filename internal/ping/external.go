package ping

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// ExternalPinger invokes the system ping command and reduces it to its
// exit status: 0 means at least one reply was heard.
type ExternalPinger struct {
	binary string
}

// NewExternalPinger returns a probe that shells out to ping.
func NewExternalPinger() *ExternalPinger {
	return &ExternalPinger{binary: "ping"}
}

// Ping runs the ping command, configured to exit on the first reply and
// to give up after timeout.
func (p *ExternalPinger) Ping(ctx context.Context, addr string, timeout time.Duration) Result {
	args := pingArgs(addr, timeout)
	cmd := exec.CommandContext(ctx, p.binary, args...)
	err := cmd.Run()
	if err == nil {
		return Result{Alive: true, ExitCode: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The command ran; a nonzero exit code means no reply. No
		// distinction is made between "host down" and "probe tool
		// failed" once the tool could be launched.
		return Result{Alive: false, ExitCode: exitErr.ExitCode()}
	}

	// ping itself could not be launched. That is a broken environment,
	// not a network condition.
	return Result{Alive: false, ExitCode: -1, Err: err}
}

func pingArgs(addr string, timeout time.Duration) []string {
	timeoutSec := maxInt(1, int(timeout.Seconds()+0.5))
	switch runtime.GOOS {
	case "linux":
		return []string{"-n", "-c", "1", "-W", strconv.Itoa(timeoutSec), addr}
	default:
		// BSD and darwin ping: -o exits on the first reply, -t bounds
		// the total runtime in seconds.
		return []string{"-o", "-t", strconv.Itoa(timeoutSec), addr}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
