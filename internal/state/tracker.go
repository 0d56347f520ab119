package state

import (
	"time"

	"github.com/jgehrcke/freenas-utils/internal/config"
)

// Status represents the last observed reachability of a host.
type Status string

const (
	StatusUnknown Status = "UNKNOWN"
	StatusAlive   Status = "ALIVE"
	StatusDead    Status = "DEAD"
)

// HostStatus captures the probe bookkeeping for one host.
type HostStatus struct {
	Name            string
	Address         string
	Status          Status
	LastCheckedAt   time.Time
	LastAliveAt     time.Time
	ConsecutiveDown int
	TotalProbes     int
}

// Tracker records probe outcomes per host. It is used from a single
// goroutine between probes, so no locking is involved.
type Tracker struct {
	order []string
	hosts map[string]*HostStatus
}

// NewTracker creates a tracker initialized with the configured hosts,
// preserving their listed order for snapshots.
func NewTracker(hosts []config.HostConfig) *Tracker {
	t := &Tracker{hosts: make(map[string]*HostStatus, len(hosts))}
	for _, host := range hosts {
		name := host.Name
		if name == "" {
			name = host.Address
		}
		if _, ok := t.hosts[name]; ok {
			continue
		}
		t.order = append(t.order, name)
		t.hosts[name] = &HostStatus{
			Name:    name,
			Address: host.Address,
			Status:  StatusUnknown,
		}
	}
	return t
}

// Record updates a host's bookkeeping with one probe outcome.
func (t *Tracker) Record(name string, alive bool, at time.Time) {
	host, ok := t.hosts[name]
	if !ok {
		host = &HostStatus{Name: name, Address: name, Status: StatusUnknown}
		t.order = append(t.order, name)
		t.hosts[name] = host
	}

	host.LastCheckedAt = at
	host.TotalProbes++
	if alive {
		host.Status = StatusAlive
		host.LastAliveAt = at
		host.ConsecutiveDown = 0
		return
	}
	host.Status = StatusDead
	host.ConsecutiveDown++
}

// Snapshot returns copies of all host states in configured order.
func (t *Tracker) Snapshot() []HostStatus {
	out := make([]HostStatus, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.hosts[name])
	}
	return out
}

// Host returns a copy of a single host's state.
func (t *Tracker) Host(name string) (HostStatus, bool) {
	host, ok := t.hosts[name]
	if !ok {
		return HostStatus{}, false
	}
	return *host, true
}
