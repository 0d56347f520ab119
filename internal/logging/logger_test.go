package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("dropped", nil)
	l.Info("dropped", nil)
	l.Warn("kept", nil)
	l.Error("kept too", nil)

	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), lines)
	}
}

func TestLoggerEntriesAreJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)

	l.Info("probing host", map[string]interface{}{"host": "192.0.2.1"})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Fatalf("expected level INFO, got %q", entry.Level)
	}
	if entry.Fields["host"] != "192.0.2.1" {
		t.Fatalf("expected host field, got %v", entry.Fields)
	}
}

func TestLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")
	var console bytes.Buffer

	l, err := New(Options{Level: LevelInfo, Path: path, Console: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hello", nil)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("file sink missing entry: %q", data)
	}
	if !strings.Contains(console.String(), "hello") {
		t.Fatalf("console sink missing entry: %q", console.String())
	}
}

func TestRotationKeepsAllEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	l, err := New(Options{
		Level:      LevelInfo,
		Path:       path,
		MaxBytes:   2048,
		MaxBackups: 5,
		Console:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const entries = 100
	for i := 0; i < entries; i++ {
		l.Info(fmt.Sprintf("entry-%03d", i), nil)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected backup file after exceeding threshold: %v", err)
	}

	// Every entry must survive the rotation boundaries, spread over the
	// live file and the backups.
	var all strings.Builder
	matches, err := filepath.Glob(path + "*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			t.Fatalf("read %s: %v", m, err)
		}
		all.Write(data)
	}
	for i := 0; i < entries; i++ {
		needle := fmt.Sprintf("entry-%03d", i)
		if !strings.Contains(all.String(), needle) {
			t.Fatalf("entry %q lost across rotation", needle)
		}
	}
}

func TestRotationDropsOldestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	r, err := newRotatingFile(path, 128, 2)
	if err != nil {
		t.Fatalf("newRotatingFile: %v", err)
	}
	line := strings.Repeat("x", 64) + "\n"
	for i := 0; i < 20; i++ {
		if _, err := r.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := os.Stat(path + ".2"); err != nil {
		t.Fatalf("expected backup .2 to exist: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("backup .3 must not exist with maxBackups=2")
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
