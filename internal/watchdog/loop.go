// Package watchdog implements the host-reachability shutdown decision:
// probe a fixed host list, and only after the whole list has stayed
// unreachable for a sustained window, power the machine off.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jgehrcke/freenas-utils/internal/config"
	"github.com/jgehrcke/freenas-utils/internal/logging"
	"github.com/jgehrcke/freenas-utils/internal/ping"
	"github.com/jgehrcke/freenas-utils/internal/state"
)

// Decision is the terminal state of one watchdog run.
type Decision int

const (
	// DecisionNone means the run ended in an error before a decision.
	DecisionNone Decision = iota
	// DecisionAborted means a host answered; no shutdown happened.
	DecisionAborted
	// DecisionCommitted means the shutdown action was invoked.
	DecisionCommitted
)

func (d Decision) String() string {
	switch d {
	case DecisionAborted:
		return "aborted"
	case DecisionCommitted:
		return "committed"
	default:
		return "none"
	}
}

// Options configures a Loop. Now and Sleep default to the real clock
// and are injectable for tests.
type Options struct {
	Hosts         []config.HostConfig
	OfflineWindow time.Duration
	PollInterval  time.Duration
	ProbeTimeout  time.Duration
	Pinger        ping.Pinger
	Shutdowner    Shutdowner
	Tracker       *state.Tracker
	Logger        *logging.Logger
	Now           func() time.Time
	Sleep         func(time.Duration)
}

// Loop runs the shutdown decision state machine. Probing is strictly
// sequential and the inter-poll sleep is not interruptible; the loop
// ends only in one of its terminal decisions or an environment error.
type Loop struct {
	hosts         []config.HostConfig
	offlineWindow time.Duration
	pollInterval  time.Duration
	probeTimeout  time.Duration
	pinger        ping.Pinger
	shutdowner    Shutdowner
	tracker       *state.Tracker
	logger        *logging.Logger
	now           func() time.Time
	sleep         func(time.Duration)
}

// New validates the options and constructs a loop. An offline window of
// zero selects one-shot mode: the decision is made on the first round.
// A positive window must allow at least two polls before the deadline.
func New(opts Options) (*Loop, error) {
	if len(opts.Hosts) == 0 {
		return nil, errors.New("watchdog: no hosts to check")
	}
	if opts.Pinger == nil {
		return nil, errors.New("watchdog: no pinger")
	}
	if opts.Shutdowner == nil {
		return nil, errors.New("watchdog: no shutdowner")
	}
	if opts.Logger == nil {
		return nil, errors.New("watchdog: no logger")
	}
	if opts.PollInterval <= 0 {
		return nil, errors.New("watchdog: poll interval must be positive")
	}
	if opts.ProbeTimeout <= 0 {
		return nil, errors.New("watchdog: probe timeout must be positive")
	}
	if opts.OfflineWindow < 0 {
		return nil, errors.New("watchdog: offline window must not be negative")
	}
	if opts.OfflineWindow > 0 && opts.OfflineWindow <= 2*opts.PollInterval {
		return nil, fmt.Errorf("watchdog: offline window (%s) must be greater than twice the poll interval (%s)",
			opts.OfflineWindow, opts.PollInterval)
	}

	l := &Loop{
		hosts:         opts.Hosts,
		offlineWindow: opts.OfflineWindow,
		pollInterval:  opts.PollInterval,
		probeTimeout:  opts.ProbeTimeout,
		pinger:        opts.Pinger,
		shutdowner:    opts.Shutdowner,
		tracker:       opts.Tracker,
		logger:        opts.Logger,
		now:           opts.Now,
		sleep:         opts.Sleep,
	}
	if l.tracker == nil {
		l.tracker = state.NewTracker(opts.Hosts)
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.sleep == nil {
		l.sleep = time.Sleep
	}
	return l, nil
}

// Run executes the decision loop once. The first round happens
// immediately, so a reachable environment exits fast. When every host
// stays dead for the whole offline window the shutdown action is
// invoked exactly once and DecisionCommitted is returned.
func (l *Loop) Run(ctx context.Context) (Decision, error) {
	l.logger.Info("pinging hosts", map[string]interface{}{"hosts": len(l.hosts)})

	alive, err := l.anyAlive(ctx)
	if err != nil {
		return DecisionNone, err
	}
	if alive {
		l.logger.Info("a host is reachable, not shutting down", nil)
		return DecisionAborted, nil
	}

	deadline := l.now().Add(l.offlineWindow)
	if l.offlineWindow > 0 {
		l.logger.Info("all hosts down, waiting for sustained offline window", map[string]interface{}{
			"offline_window": l.offlineWindow.String(),
			"poll_interval":  l.pollInterval.String(),
			"deadline":       deadline.Format(time.RFC3339),
		})
	}

	for l.now().Before(deadline) {
		l.sleep(l.pollInterval)

		alive, err := l.anyAlive(ctx)
		if err != nil {
			return DecisionNone, err
		}
		if alive {
			// Any-time abort: one reply anywhere in the window
			// cancels the shutdown, however late it arrives.
			l.logger.Info("a host came back during the offline window, not shutting down", nil)
			return DecisionAborted, nil
		}
	}

	l.logCommitSummary()
	exitCode, err := l.shutdowner.Shutdown(ctx)
	if err != nil {
		l.logger.Error("shutdown command could not be launched", map[string]interface{}{
			"error": err.Error(),
		})
		return DecisionCommitted, err
	}
	l.logger.Info("shutdown command finished", map[string]interface{}{"exit_code": exitCode})
	return DecisionCommitted, nil
}

// anyAlive probes the hosts in listed order, short-circuiting on the
// first reply. A probe that cannot run at all aborts the whole run.
func (l *Loop) anyAlive(ctx context.Context) (bool, error) {
	for _, host := range l.hosts {
		name := hostName(host)
		result := l.pinger.Ping(ctx, host.Address, l.probeTimeout)
		if result.Err != nil {
			l.logger.LogProbeResult(name, false, result.ExitCode, result.Err)
			return false, fmt.Errorf("probe %s: %w", name, result.Err)
		}
		l.tracker.Record(name, result.Alive, l.now())
		l.logger.LogProbeResult(name, result.Alive, result.ExitCode, nil)
		if result.Alive {
			return true, nil
		}
	}
	return false, nil
}

func (l *Loop) logCommitSummary() {
	l.logger.Info("no host answered for the whole offline window, invoking shutdown", nil)
	for _, host := range l.tracker.Snapshot() {
		fields := map[string]interface{}{
			"host":             host.Name,
			"consecutive_down": host.ConsecutiveDown,
			"total_probes":     host.TotalProbes,
		}
		if !host.LastAliveAt.IsZero() {
			fields["last_alive"] = host.LastAliveAt.Format(time.RFC3339)
		}
		l.logger.Info("host summary", fields)
	}
}

func hostName(host config.HostConfig) string {
	if host.Name != "" {
		return host.Name
	}
	return host.Address
}
