package ping

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
	"time"
)

// FallbackPinger delegates to primary, then secondary when the primary
// cannot run for permission reasons (typically raw sockets without
// CAP_NET_RAW or root).
type FallbackPinger struct {
	primary   Pinger
	secondary Pinger
}

// NewFallbackPinger wraps primary with a secondary fallback.
func NewFallbackPinger(primary, secondary Pinger) *FallbackPinger {
	return &FallbackPinger{primary: primary, secondary: secondary}
}

// Ping uses the primary pinger and falls back on permission-related errors.
func (p *FallbackPinger) Ping(ctx context.Context, addr string, timeout time.Duration) Result {
	result := p.primary.Ping(ctx, addr, timeout)
	if result.Err == nil || !isPermissionError(result.Err) {
		return result
	}
	return p.secondary.Ping(ctx, addr, timeout)
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "permission denied")
}
