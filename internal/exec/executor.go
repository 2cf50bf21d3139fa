package exec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// maxLineBytes bounds a single captured line. Longer lines are captured as
// consecutive chunks of at most this size.
const maxLineBytes = 8 * 1024 * 1024

// readBufferBytes is the size of the read buffer for each pipe.
const readBufferBytes = 64 * 1024

type executor struct{}

// New returns a new Executor that uses os/exec.
func New() Executor {
	return &executor{}
}

// stream is one captured output pipe.
type stream struct {
	name   string
	reader io.Reader
	lines  *[]string
	sink   LineFunc
}

func (e *executor) Run(opts *RunOptions) (*Result, error) {
	// G204: This is intentional - we're an executor that runs user-specified commands.
	// The caller is responsible for validating the command and arguments.
	cmd := exec.Command(opts.Name, opts.Args...) //nolint:gosec // Intentional subprocess execution

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	applyCmdLine(cmd, opts)

	result := &Result{
		Stdout:   []string{},
		Stderr:   []string{},
		ExitCode: FailedToRunExitCode,
	}

	var streams []stream

	if opts.CaptureStdout {
		r, err := cmd.StdoutPipe()
		if err != nil {
			return result, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
		}
		streams = append(streams, stream{name: "stdout", reader: r, lines: &result.Stdout, sink: opts.OnStdout})
	} else {
		cmd.Stdout = os.Stdout
	}

	if opts.CaptureStderr {
		r, err := cmd.StderrPipe()
		if err != nil {
			return result, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
		}
		streams = append(streams, stream{name: "stderr", reader: r, lines: &result.Stderr, sink: opts.OnStderr})
	} else {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("%w: %s: %v", ErrSpawn, opts.Name, err)
	}

	drainErr := drainAll(streams, maxLineBytes)

	// Wait closes the pipes, so it must only run once draining has finished.
	waitErr := cmd.Wait()
	if cmd.ProcessState != nil {
		result.ExitCode = exitCode(cmd.ProcessState)
	}

	if drainErr != nil {
		return result, fmt.Errorf("read output: %w", drainErr)
	}
	if waitErr != nil && cmd.ProcessState == nil {
		return result, fmt.Errorf("wait: %w", waitErr)
	}

	return result, nil
}

func (e *executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// drainAll drains every stream at once; reading one to EOF first can leave
// the child blocked on a full pipe for the other. The error joins the
// failures of all streams.
func drainAll(streams []stream, limit int) error {
	errs := make([]error, len(streams))

	var g errgroup.Group
	for i, s := range streams {
		g.Go(func() error {
			if err := drain(s, limit); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.name, err)
			}
			return errs[i]
		})
	}

	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

// drain reads s line by line until EOF. Line endings (\n or \r\n) are
// removed and lines longer than limit are split into chunks of limit bytes.
// On a read error the pending bytes are kept as a final line and the rest of
// the stream is discarded so the child can still exit.
func drain(s stream, limit int) error {
	br := bufio.NewReaderSize(s.reader, readBufferBytes)
	var pending []byte

	emit := func(b []byte) {
		line := string(b)
		*s.lines = append(*s.lines, line)
		if s.sink != nil {
			s.sink(line)
		}
	}
	flushChunks := func() {
		for len(pending) > limit {
			emit(pending[:limit])
			pending = pending[limit:]
		}
	}

	for {
		frag, err := br.ReadSlice('\n')
		pending = append(pending, frag...)

		if err == bufio.ErrBufferFull {
			flushChunks()
			continue
		}

		complete := err == nil
		if complete {
			pending = bytes.TrimSuffix(pending, []byte("\n"))
		}
		if complete || errors.Is(err, io.EOF) {
			pending = bytes.TrimSuffix(pending, []byte("\r"))
		}
		flushChunks()
		if complete || len(pending) > 0 {
			emit(pending)
		}
		pending = pending[:0]

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			_, _ = io.Copy(io.Discard, br)
			return err
		}
	}
}
