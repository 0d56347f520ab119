package ping

import (
	"context"
	"time"
)

// Result captures a single reachability probe.
//
// Alive reports whether the host answered. Err is set only when the
// probe could not run at all (missing binary, socket permission);
// a host that simply does not answer yields Alive=false with a nil Err.
type Result struct {
	Alive    bool
	ExitCode int
	Err      error
}

// Pinger probes one host once and returns the result.
type Pinger interface {
	Ping(ctx context.Context, addr string, timeout time.Duration) Result
}
