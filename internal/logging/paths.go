// Package logging stores transcripts of the output echoed during runs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/docker/docker/pkg/namesgenerator"
)

// transcriptExt is the file extension of transcripts.
const transcriptExt = ".log"

// maxNameAttempts bounds the search for an unused run ID.
const maxNameAttempts = 100

// PathManager handles transcript path construction and directory management.
type PathManager struct {
	baseDir string
}

// NewPathManager creates a new PathManager rooted at baseDir.
func NewPathManager(baseDir string) *PathManager {
	return &PathManager{baseDir: baseDir}
}

// BaseDir returns the transcript directory.
func (p *PathManager) BaseDir() string {
	return p.baseDir
}

// TranscriptPath returns the path of a run's transcript.
// Path format: <baseDir>/<runID>.log
func (p *PathManager) TranscriptPath(runID string) string {
	return filepath.Join(p.baseDir, runID+transcriptExt)
}

// EnsureTranscript creates the transcript directory and returns the path
// for runID.
func (p *PathManager) EnsureTranscript(runID string) (string, error) {
	if err := os.MkdirAll(p.baseDir, 0o750); err != nil {
		return "", fmt.Errorf("create transcript directory: %w", err)
	}
	return p.TranscriptPath(runID), nil
}

// NewRunID returns an adjective_surname ID (e.g. "focused_turing") that
// has no transcript yet. Retries append a digit to the name.
func (p *PathManager) NewRunID() (string, error) {
	for attempt := range maxNameAttempts {
		id := namesgenerator.GetRandomName(attempt)
		if !p.Exists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unused run ID after %d attempts", maxNameAttempts)
}

// Exists reports whether a transcript exists for runID.
func (p *PathManager) Exists(runID string) bool {
	_, err := os.Stat(p.TranscriptPath(runID))
	return err == nil
}

// Remove deletes a run's transcript if it exists.
func (p *PathManager) Remove(runID string) error {
	if err := os.Remove(p.TranscriptPath(runID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove transcript: %w", err)
	}
	return nil
}

// List returns the run IDs that have transcripts, sorted.
func (p *PathManager) List() ([]string, error) {
	entries, err := os.ReadDir(p.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcript directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == transcriptExt {
			ids = append(ids, name[:len(name)-len(transcriptExt)])
		}
	}
	sort.Strings(ids)
	return ids, nil
}
