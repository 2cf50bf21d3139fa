//go:build !windows

package exec

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
}

func TestExecutor_Run(t *testing.T) {
	e := New()

	t.Run("captures stdout lines", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", "echo hello; echo world"},
			CaptureStdout: true,
			CaptureStderr: true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"hello", "world"}, result.Stdout)
		assert.Empty(t, result.Stderr)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("captures stderr lines", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", "echo error >&2"},
			CaptureStdout: true,
			CaptureStderr: true,
		})

		require.NoError(t, err)
		assert.Empty(t, result.Stdout)
		assert.Equal(t, []string{"error"}, result.Stderr)
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", "exit 42"},
			CaptureStdout: true,
			CaptureStderr: true,
		})

		require.NoError(t, err)
		assert.Equal(t, 42, result.ExitCode)
	})

	t.Run("keeps final line without newline", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "printf",
			Args:          []string{"a\\nb"},
			CaptureStdout: true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, result.Stdout)
	})

	t.Run("strips carriage returns", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "printf",
			Args:          []string{"one\\r\\ntwo\\r\\n"},
			CaptureStdout: true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, result.Stdout)
	})

	t.Run("uncaptured stream stays empty", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", "echo out; echo err >&2"},
			CaptureStdout: false,
			CaptureStderr: true,
		})

		require.NoError(t, err)
		assert.Empty(t, result.Stdout)
		assert.Equal(t, []string{"err"}, result.Stderr)
	})

	t.Run("calls line sinks in order", func(t *testing.T) {
		var mu sync.Mutex
		var seenOut, seenErr []string

		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", "echo 1; echo 2; echo x >&2"},
			CaptureStdout: true,
			CaptureStderr: true,
			OnStdout: func(line string) {
				mu.Lock()
				defer mu.Unlock()
				seenOut = append(seenOut, line)
			},
			OnStderr: func(line string) {
				mu.Lock()
				defer mu.Unlock()
				seenErr = append(seenErr, line)
			},
		})

		require.NoError(t, err)
		assert.Equal(t, result.Stdout, seenOut)
		assert.Equal(t, result.Stderr, seenErr)
	})

	t.Run("respects working directory", func(t *testing.T) {
		dir := t.TempDir()
		result, err := e.Run(&RunOptions{
			Name:          "pwd",
			Dir:           dir,
			CaptureStdout: true,
		})

		require.NoError(t, err)
		require.Len(t, result.Stdout, 1)
		// On macOS, /var is a symlink to /private/var
		assert.True(t, strings.HasSuffix(result.Stdout[0], filepath.Base(dir)),
			"expected %s to end with %s", result.Stdout[0], filepath.Base(dir))
	})

	t.Run("drains both streams concurrently", func(t *testing.T) {
		// Each stream carries ~1 MiB, far beyond a single pipe buffer.
		script := `i=0; while [ $i -lt 20000 ]; do ` +
			`echo "out line $i padding padding padding padding"; ` +
			`echo "err line $i padding padding padding padding" >&2; ` +
			`i=$((i+1)); done`

		done := make(chan struct{})
		var result *Result
		var err error
		go func() {
			defer close(done)
			result, err = e.Run(&RunOptions{
				Name:          "sh",
				Args:          []string{"-c", script},
				CaptureStdout: true,
				CaptureStderr: true,
			})
		}()

		select {
		case <-done:
		case <-time.After(60 * time.Second):
			t.Fatal("run did not finish; streams were not drained concurrently")
		}

		require.NoError(t, err)
		assert.Len(t, result.Stdout, 20000)
		assert.Len(t, result.Stderr, 20000)
		assert.Equal(t, "out line 0 padding padding padding padding", result.Stdout[0])
		assert.Equal(t, "err line 19999 padding padding padding padding", result.Stderr[19999])
	})

	t.Run("signalled process reports 128 plus signal", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", "echo before; kill -9 $$"},
			CaptureStdout: true,
		})

		require.NoError(t, err)
		assert.Equal(t, 137, result.ExitCode)
		assert.NotEqual(t, FailedToRunExitCode, result.ExitCode)
		assert.Equal(t, []string{"before"}, result.Stdout)
	})

	t.Run("keeps reading after a line longer than the limit", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "sh",
			Args:          []string{"-c", `head -c 9000000 /dev/zero | tr '\0' x; echo; echo after`},
			CaptureStdout: true,
		})

		require.NoError(t, err)
		require.Len(t, result.Stdout, 3)
		assert.Len(t, result.Stdout[0], maxLineBytes)
		assert.Len(t, result.Stdout[1], 9000000-maxLineBytes)
		assert.Equal(t, "after", result.Stdout[2])
	})

	t.Run("returns spawn error for nonexistent command", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name:          "nonexistent_command_12345",
			CaptureStdout: true,
			CaptureStderr: true,
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSpawn))
		assert.Equal(t, FailedToRunExitCode, result.ExitCode)
		assert.Empty(t, result.Stdout)
	})

	t.Run("returns spawn error for missing working directory", func(t *testing.T) {
		result, err := e.Run(&RunOptions{
			Name: "true",
			Dir:  filepath.Join(t.TempDir(), "missing"),
		})

		require.ErrorIs(t, err, ErrSpawn)
		assert.Equal(t, FailedToRunExitCode, result.ExitCode)
	})
}

func TestExecutor_LookPath(t *testing.T) {
	e := New()

	t.Run("finds existing command", func(t *testing.T) {
		path, err := e.LookPath("sh")

		require.NoError(t, err)
		assert.NotEmpty(t, path)
		assert.True(t, strings.HasSuffix(path, "sh"), "expected path to end with sh, got: %s", path)
	})

	t.Run("returns error for nonexistent command", func(t *testing.T) {
		_, err := e.LookPath("nonexistent_command_12345")

		require.Error(t, err)
		var execErr *exec.Error
		assert.ErrorAs(t, err, &execErr)
	})
}
