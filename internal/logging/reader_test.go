package logging

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, p *PathManager, runID string, lines int) {
	t.Helper()
	path, err := p.EnsureTranscript(runID)
	require.NoError(t, err)

	var b strings.Builder
	for i := 1; i <= lines; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
}

func TestReader_ReadAll(t *testing.T) {
	p := NewPathManager(t.TempDir())
	writeTranscript(t, p, "run", 3)

	lines, err := NewReader(p).ReadAll("run")
	require.NoError(t, err)
	assert.Equal(t, []string{"line 1", "line 2", "line 3"}, lines)

	_, err = NewReader(p).ReadAll("missing")
	assert.Error(t, err)
}

func TestReader_ReadLastN(t *testing.T) {
	p := NewPathManager(t.TempDir())
	writeTranscript(t, p, "run", 5)
	r := NewReader(p)

	t.Run("fewer lines than n", func(t *testing.T) {
		lines, err := r.ReadLastN("run", 10)
		require.NoError(t, err)
		assert.Len(t, lines, 5)
	})

	t.Run("last n in order", func(t *testing.T) {
		lines, err := r.ReadLastN("run", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"line 4", "line 5"}, lines)
	})

	t.Run("non-positive n uses default", func(t *testing.T) {
		lines, err := r.ReadLastN("run", 0)
		require.NoError(t, err)
		assert.Len(t, lines, 5)
	})
}
