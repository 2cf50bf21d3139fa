package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathManager_TranscriptPath(t *testing.T) {
	p := NewPathManager("/var/procrun")

	assert.Equal(t, "/var/procrun", p.BaseDir())
	assert.Equal(t, filepath.Join("/var/procrun", "abc.log"), p.TranscriptPath("abc"))
}

func TestPathManager_Lifecycle(t *testing.T) {
	base := filepath.Join(t.TempDir(), "transcripts")
	p := NewPathManager(base)

	ids, err := p.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	path, err := p.EnsureTranscript("run-b")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o600))

	path, err = p.EnsureTranscript("run-a")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("y\n"), 0o600))

	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("z"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(base, "dir.log"), 0o750))

	assert.True(t, p.Exists("run-a"))
	assert.False(t, p.Exists("run-c"))

	ids, err = p.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, ids)

	require.NoError(t, p.Remove("run-a"))
	require.NoError(t, p.Remove("run-a"))
	assert.False(t, p.Exists("run-a"))
}

func TestPathManager_NewRunID(t *testing.T) {
	p := NewPathManager(t.TempDir())

	id, err := p.NewRunID()
	require.NoError(t, err)
	assert.Regexp(t, `^[a-z]+_[a-z]+[0-9]*$`, id)
	assert.False(t, p.Exists(id))

	path, err := p.EnsureTranscript(id)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	for range 20 {
		next, err := p.NewRunID()
		require.NoError(t, err)
		assert.NotEqual(t, id, next)
	}
}
