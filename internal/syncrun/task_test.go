package syncrun

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgehrcke/freenas-utils/internal/config"
)

func TestNewTaskValid(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	task, err := NewTask(config.TaskConfig{Name: "home", Source: source, Target: target})
	require.NoError(t, err)
	assert.Equal(t, "home", task.Name)
	assert.Equal(t, source, task.Source)
	assert.Equal(t, target, task.Target)
}

func TestNewTaskRejectsTrailingSlash(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	_, err := NewTask(config.TaskConfig{Name: "home", Source: source + "/", Target: target})
	require.Error(t, err)

	var precondition *PreconditionError
	require.True(t, errors.As(err, &precondition))
	assert.Equal(t, "home", precondition.Task)
	assert.Contains(t, precondition.Reason, "trailing slash")
}

func TestNewTaskRejectsMissingSource(t *testing.T) {
	target := t.TempDir()
	_, err := NewTask(config.TaskConfig{
		Name:   "home",
		Source: filepath.Join(target, "does-not-exist"),
		Target: target,
	})
	var precondition *PreconditionError
	require.True(t, errors.As(err, &precondition))
}

func TestNewTaskRejectsFileAsTarget(t *testing.T) {
	source := t.TempDir()
	file := filepath.Join(t.TempDir(), "plain-file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewTask(config.TaskConfig{Name: "home", Source: source, Target: file})
	var precondition *PreconditionError
	require.True(t, errors.As(err, &precondition))
}

func TestNewTasksFailsFastOnFirstViolation(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	_, err := NewTasks([]config.TaskConfig{
		{Name: "good", Source: source, Target: target},
		{Name: "bad", Source: source + "/", Target: target},
		{Name: "unreached", Source: source, Target: target},
	})
	var precondition *PreconditionError
	require.True(t, errors.As(err, &precondition))
	assert.Equal(t, "bad", precondition.Task)
}
