package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// The watchdog interval invariant: for any positive offline window, the
// configuration is accepted iff the window exceeds twice the poll
// interval, so at least two polls always happen before a shutdown.
func TestPropertyOfflineWindowInvariant(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	props.Property("window accepted iff greater than twice the interval", prop.ForAll(
		func(windowSec, intervalSec int) bool {
			cfg := Default()
			cfg.Hosts = []HostConfig{{Name: "a", Address: "192.0.2.1"}}
			cfg.OfflineWindow = Duration(time.Duration(windowSec) * time.Second)
			cfg.PollInterval = Duration(time.Duration(intervalSec) * time.Second)

			err := cfg.ValidateWatchdog()
			if windowSec > 2*intervalSec {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(1, 3600),
		gen.IntRange(1, 3600),
	))

	props.TestingRun(t)
}
