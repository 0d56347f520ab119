package watchdog

import (
	"context"
	"testing"
)

func TestExecShutdownerExitZero(t *testing.T) {
	s, err := NewExecShutdowner([]string{"true"})
	if err != nil {
		t.Fatalf("NewExecShutdowner: %v", err)
	}
	code, err := s.Shutdown(context.Background())
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestExecShutdownerNonzeroExit(t *testing.T) {
	s, err := NewExecShutdowner([]string{"false"})
	if err != nil {
		t.Fatalf("NewExecShutdowner: %v", err)
	}
	code, err := s.Shutdown(context.Background())
	if err != nil {
		t.Fatalf("nonzero exit must not be a launch error: %v", err)
	}
	if code == 0 {
		t.Fatalf("expected nonzero exit code")
	}
}

func TestExecShutdownerLaunchFailure(t *testing.T) {
	s, err := NewExecShutdowner([]string{"/nonexistent/shutdown-binary", "-p", "now"})
	if err != nil {
		t.Fatalf("NewExecShutdowner: %v", err)
	}
	if _, err := s.Shutdown(context.Background()); err == nil {
		t.Fatalf("expected launch error for missing binary")
	}
}

func TestNewExecShutdownerEmptyCommand(t *testing.T) {
	if _, err := NewExecShutdowner(nil); err == nil {
		t.Fatalf("expected error for empty command")
	}
}
