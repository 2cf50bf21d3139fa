package runner

import (
	"log/slog"

	"github.com/jmgilman/procrun/internal/exec"
	"github.com/jmgilman/procrun/internal/probe"
	"github.com/jmgilman/procrun/internal/slogger"
)

// Option configures Runner construction.
type Option func(*settings)

// settings collects options before the Runner is built.
type settings struct {
	workingDir     string
	redirectStdout bool
	redirectStderr bool
	goos           string
	logger         *slog.Logger
	exec           exec.Executor
	checker        probe.Checker
	display        *Display
}

// WithWorkingDir sets the directory runs start in.
func WithWorkingDir(dir string) Option {
	return func(s *settings) { s.workingDir = dir }
}

// WithStdoutRedirect sets whether stdout is captured (default true).
func WithStdoutRedirect(redirect bool) Option {
	return func(s *settings) { s.redirectStdout = redirect }
}

// WithStderrRedirect sets whether stderr is captured (default true).
func WithStderrRedirect(redirect bool) Option {
	return func(s *settings) { s.redirectStderr = redirect }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithExecutor replaces the process executor.
func WithExecutor(e exec.Executor) Option {
	return func(s *settings) { s.exec = e }
}

// WithChecker replaces the availability checker.
func WithChecker(c probe.Checker) Option {
	return func(s *settings) { s.checker = c }
}

// WithGOOS resolves interpreters for another operating system family.
func WithGOOS(goos string) Option {
	return func(s *settings) { s.goos = goos }
}

// WithDisplay echoes captured lines live.
func WithDisplay(d *Display) Option {
	return func(s *settings) { s.display = d }
}

func newSettings(opts []Option) *settings {
	s := &settings{
		redirectStdout: true,
		redirectStderr: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slogger.Discard()
	}
	if s.exec == nil {
		s.exec = exec.New()
	}
	if s.checker == nil {
		s.checker = probe.New(s.exec, s.goos)
	}
	return s
}

// config builds the Config for application from the collected options.
func (s *settings) config(application string) Config {
	return Config{
		Application:    application,
		WorkingDir:     s.workingDir,
		RedirectStdout: s.redirectStdout,
		RedirectStderr: s.redirectStderr,
	}
}
