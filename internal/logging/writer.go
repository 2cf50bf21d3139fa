package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TeeWriter copies everything written to it into a transcript file and,
// when set, a primary writer. It implements io.WriteCloser.
type TeeWriter struct {
	primary io.Writer
	file    *os.File
	mu      *sync.Mutex
	owner   bool // closes file on Close
}

// NewTeeWriter creates a TeeWriter that writes to both the primary writer
// and the file at path. The file is created or truncated.
func NewTeeWriter(primary io.Writer, path string) (*TeeWriter, error) {
	//nolint:gosec // G304: path comes from PathManager or an explicit user flag
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}

	return &TeeWriter{
		primary: primary,
		file:    file,
		mu:      &sync.Mutex{},
		owner:   true,
	}, nil
}

// Write writes p to the transcript first, then to the primary writer.
// A nil primary writes only to the transcript.
func (t *TeeWriter) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		if _, err := t.file.Write(p); err != nil {
			return 0, fmt.Errorf("write transcript: %w", err)
		}
	}

	if t.primary != nil {
		return t.primary.Write(p)
	}

	return len(p), nil
}

// Close closes the transcript file if this writer owns it. The primary
// writer is not closed.
func (t *TeeWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil && t.owner {
		if err := t.file.Close(); err != nil {
			return fmt.Errorf("close transcript: %w", err)
		}
	}
	t.file = nil
	return nil
}

// Path returns the transcript path, or empty string once closed.
func (t *TeeWriter) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		return t.file.Name()
	}
	return ""
}

// Transcript pairs the stdout and stderr writers of one run. Both write
// into the same file, one line at a time.
type Transcript struct {
	Stdout *TeeWriter
	Stderr *TeeWriter
}

// NewTranscript creates the transcript file at path. stdout and stderr are
// the primary writers and may be nil.
func NewTranscript(stdout, stderr io.Writer, path string) (*Transcript, error) {
	out, err := NewTeeWriter(stdout, path)
	if err != nil {
		return nil, err
	}

	return &Transcript{
		Stdout: out,
		Stderr: &TeeWriter{primary: stderr, file: out.file, mu: out.mu},
	}, nil
}

// Path returns the transcript file path.
func (t *Transcript) Path() string {
	return t.Stdout.Path()
}

// Close closes the shared transcript file.
func (t *Transcript) Close() error {
	if err := t.Stderr.Close(); err != nil {
		return err
	}
	return t.Stdout.Close()
}
