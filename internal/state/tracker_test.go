package state

import (
	"testing"
	"time"

	"github.com/jgehrcke/freenas-utils/internal/config"
)

func testHosts() []config.HostConfig {
	return []config.HostConfig{
		{Name: "desktop", Address: "192.0.2.1"},
		{Name: "laptop", Address: "192.0.2.2"},
	}
}

func TestTrackerInitialState(t *testing.T) {
	tracker := NewTracker(testHosts())

	snapshot := tracker.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(snapshot))
	}
	for _, host := range snapshot {
		if host.Status != StatusUnknown {
			t.Fatalf("expected UNKNOWN before any probe, got %s", host.Status)
		}
		if host.TotalProbes != 0 {
			t.Fatalf("expected zero probes, got %d", host.TotalProbes)
		}
	}
}

func TestTrackerConsecutiveDownAccounting(t *testing.T) {
	tracker := NewTracker(testHosts())
	base := time.Date(2026, 8, 29, 3, 0, 0, 0, time.UTC)

	tracker.Record("desktop", false, base)
	tracker.Record("desktop", false, base.Add(time.Minute))
	tracker.Record("desktop", false, base.Add(2*time.Minute))

	host, ok := tracker.Host("desktop")
	if !ok {
		t.Fatalf("expected host to exist")
	}
	if host.Status != StatusDead {
		t.Fatalf("expected DEAD, got %s", host.Status)
	}
	if host.ConsecutiveDown != 3 {
		t.Fatalf("expected 3 consecutive down, got %d", host.ConsecutiveDown)
	}
	if host.TotalProbes != 3 {
		t.Fatalf("expected 3 total probes, got %d", host.TotalProbes)
	}
}

func TestTrackerAliveResetsConsecutiveDown(t *testing.T) {
	tracker := NewTracker(testHosts())
	base := time.Date(2026, 8, 29, 3, 0, 0, 0, time.UTC)

	tracker.Record("laptop", false, base)
	tracker.Record("laptop", false, base.Add(time.Minute))
	aliveAt := base.Add(2 * time.Minute)
	tracker.Record("laptop", true, aliveAt)

	host, _ := tracker.Host("laptop")
	if host.Status != StatusAlive {
		t.Fatalf("expected ALIVE, got %s", host.Status)
	}
	if host.ConsecutiveDown != 0 {
		t.Fatalf("expected consecutive down reset, got %d", host.ConsecutiveDown)
	}
	if !host.LastAliveAt.Equal(aliveAt) {
		t.Fatalf("expected last alive %v, got %v", aliveAt, host.LastAliveAt)
	}
}

func TestTrackerSnapshotPreservesOrder(t *testing.T) {
	tracker := NewTracker(testHosts())
	snapshot := tracker.Snapshot()
	if snapshot[0].Name != "desktop" || snapshot[1].Name != "laptop" {
		t.Fatalf("expected configured order, got %v", snapshot)
	}
}

func TestTrackerSnapshotIsACopy(t *testing.T) {
	tracker := NewTracker(testHosts())
	snapshot := tracker.Snapshot()
	snapshot[0].ConsecutiveDown = 99

	host, _ := tracker.Host("desktop")
	if host.ConsecutiveDown != 0 {
		t.Fatalf("snapshot mutation leaked into the tracker")
	}
}

func TestTrackerUnnamedHostUsesAddress(t *testing.T) {
	tracker := NewTracker([]config.HostConfig{{Address: "192.0.2.9"}})
	host, ok := tracker.Host("192.0.2.9")
	if !ok {
		t.Fatalf("expected host keyed by address")
	}
	if host.Address != "192.0.2.9" {
		t.Fatalf("unexpected address %q", host.Address)
	}
}
