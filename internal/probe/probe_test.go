package probe

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/procrun/internal/exec"
	"github.com/jmgilman/procrun/internal/exec/mocks"
)

func TestLookupCommand(t *testing.T) {
	assert.Equal(t, "where", LookupCommand("windows"))
	assert.Equal(t, "which", LookupCommand("linux"))
	assert.Equal(t, "which", LookupCommand("darwin"))
}

func TestChecker_Available(t *testing.T) {
	t.Run("zero exit means available", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(opts *exec.RunOptions) (*exec.Result, error) {
				assert.Equal(t, "which", opts.Name)
				assert.Equal(t, []string{"git"}, opts.Args)
				assert.True(t, opts.CaptureStdout)
				assert.True(t, opts.CaptureStderr)
				return &exec.Result{Stdout: []string{"/usr/bin/git"}, ExitCode: 0}, nil
			},
		}

		assert.True(t, New(mockExec, "linux").Available("git"))
		assert.Len(t, mockExec.RunCalls(), 1)
	})

	t.Run("non-zero exit means unavailable", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(opts *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{ExitCode: 1}, nil
			},
		}

		assert.False(t, New(mockExec, "linux").Available("missing"))
	})

	t.Run("uses where on windows", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(opts *exec.RunOptions) (*exec.Result, error) {
				assert.Equal(t, "where", opts.Name)
				return &exec.Result{ExitCode: 0}, nil
			},
		}

		assert.True(t, New(mockExec, "windows").Available("cmd.exe"))
	})

	t.Run("spawn failure means unavailable", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(opts *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{ExitCode: exec.FailedToRunExitCode}, errors.New("process did not start")
			},
		}

		assert.False(t, New(mockExec, "linux").Available("git"))
	})

	t.Run("empty name is never available", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{}

		assert.False(t, New(mockExec, "linux").Available(""))
		assert.Empty(t, mockExec.RunCalls())
	})
}

func TestChecker_Available_Host(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX executables")
	}

	c := New(exec.New(), "")
	require.NotNil(t, c)

	assert.True(t, c.Available("sh"))
	assert.True(t, c.Available("/bin/sh"))
	assert.False(t, c.Available("nonexistent_command_12345"))
}
