// Package runner runs command text through an application (usually a shell)
// and keeps the captured output of the most recent run.
//
// A Runner runs one invocation at a time: the configuration and the output
// buffers are replaced on every run, so concurrent callers need separate
// Runner instances. Runs cannot be canceled or timed out; Run returns once
// the child process has exited.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jmgilman/procrun/internal/exec"
	"github.com/jmgilman/procrun/internal/probe"
	"github.com/jmgilman/procrun/internal/shell"
	"github.com/jmgilman/procrun/internal/slogger"
)

// Sentinel errors for runner construction and configuration.
var (
	ErrDirectoryNotFound          = errors.New("directory not found")
	ErrUnsupportedApplication     = shell.ErrUnsupportedApplication
	ErrUnsupportedOperatingSystem = shell.ErrUnsupportedOperatingSystem
)

// Display receives a live copy of captured lines. Nil writers are skipped.
type Display struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs command text through a single application.
type Runner struct {
	cfg     Config
	builder shell.ArgumentBuilder
	kind    shell.Kind
	hasKind bool

	exec    exec.Executor
	checker probe.Checker
	logger  *slog.Logger
	display *Display

	stdout []string
	stderr []string
}

// NewForKind creates a Runner for a supported interpreter.
func NewForKind(kind shell.Kind, opts ...Option) (*Runner, error) {
	s := newSettings(opts)

	path, err := shell.NewResolver(s.goos).Resolve(kind)
	if err != nil {
		s.logger.Error("cannot resolve application", "kind", kind, "error", err)
		return nil, err
	}
	s.logger.Debug("resolved application", "kind", kind, "path", path)

	return build(s.config(path), shell.KindBuilder{Kind: kind}, &kind, s)
}

// NewForName creates a Runner from a kind name ("Bash"), an interpreter
// path ("/bin/sh") or any other application name. Command text given to
// a non-interpreter application is passed through as its arguments.
func NewForName(name string, opts ...Option) (*Runner, error) {
	s := newSettings(opts)

	path, err := shell.NewResolver(s.goos).ResolveName(name)
	if err != nil {
		s.logger.Error("cannot resolve application", "name", name, "error", err)
		return nil, err
	}
	s.logger.Debug("resolved application", "name", name, "path", path)

	builder, kind := builderFor(path)
	return build(s.config(path), builder, kind, s)
}

// NewDefault creates a Runner for the default interpreter of the host OS.
func NewDefault(opts ...Option) (*Runner, error) {
	s := newSettings(opts)

	kind, err := shell.NewResolver(s.goos).DefaultKind()
	if err != nil {
		s.logger.Error("no default application", "goos", s.goos, "error", err)
		return nil, err
	}
	return NewForKind(kind, opts...)
}

// NewWithConfig creates a Runner from a prepared Config, used as-is once it
// validates. Options only supply collaborators (logger, executor, checker,
// display); working directory and redirect options are ignored.
func NewWithConfig(cfg Config, opts ...Option) (*Runner, error) {
	s := newSettings(opts)
	builder, kind := builderFor(cfg.Application)
	return build(cfg, builder, kind, s)
}

// builderFor picks the argument builder for an application path.
func builderFor(application string) (shell.ArgumentBuilder, *shell.Kind) {
	kind, err := shell.KindFromName(application)
	if err != nil {
		return shell.Passthrough{}, nil
	}
	return shell.KindBuilder{Kind: kind}, &kind
}

// build validates cfg and checks the application before returning a Runner.
func build(cfg Config, builder shell.ArgumentBuilder, kind *shell.Kind, s *settings) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		s.logger.Error("invalid runner configuration", "application", cfg.Application, "dir", cfg.WorkingDir, "error", err)
		return nil, err
	}

	if !s.checker.Available(cfg.Application) {
		err := fmt.Errorf("%w: application %q not found on the system", ErrUnsupportedApplication, cfg.Application)
		s.logger.Error("application not available", "application", cfg.Application)
		return nil, err
	}

	r := &Runner{
		cfg:     cfg,
		builder: builder,
		exec:    s.exec,
		checker: s.checker,
		logger:  s.logger,
		display: s.display,
		stdout:  []string{},
		stderr:  []string{},
	}
	if kind != nil {
		r.kind = *kind
		r.hasKind = true
	}

	r.logger.Debug("initialized runner",
		"application", cfg.Application,
		"dir", cfg.WorkingDir,
		"stdout_redirect", cfg.RedirectStdout,
		"stderr_redirect", cfg.RedirectStderr,
	)

	return r, nil
}

// Application returns the executable the runner starts.
func (r *Runner) Application() string {
	return r.cfg.Application
}

// Kind returns the interpreter kind, if the application is one.
func (r *Runner) Kind() (shell.Kind, bool) {
	return r.kind, r.hasKind
}

// WorkingDirectory returns the configured working directory.
func (r *Runner) WorkingDirectory() string {
	return r.cfg.WorkingDir
}

// Config returns a copy of the runner configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Stdout returns the stdout lines of the most recent run.
func (r *Runner) Stdout() []string {
	return slices.Clone(r.stdout)
}

// Stderr returns the stderr lines of the most recent run.
func (r *Runner) Stderr() []string {
	return slices.Clone(r.stderr)
}

// StdoutRedirect reports whether stdout is captured.
func (r *Runner) StdoutRedirect() bool {
	return r.cfg.RedirectStdout
}

// StderrRedirect reports whether stderr is captured.
func (r *Runner) StderrRedirect() bool {
	return r.cfg.RedirectStderr
}

// SetStandardOutputRedirect toggles stdout capture for subsequent runs.
func (r *Runner) SetStandardOutputRedirect(redirect bool) {
	r.cfg.RedirectStdout = redirect
	r.logger.Debug("stdout redirect changed", "redirect", redirect)
}

// SetStandardErrorRedirect toggles stderr capture for subsequent runs.
func (r *Runner) SetStandardErrorRedirect(redirect bool) {
	r.cfg.RedirectStderr = redirect
	r.logger.Debug("stderr redirect changed", "redirect", redirect)
}

// SetWorkingDirectory changes the directory subsequent runs start in.
func (r *Runner) SetWorkingDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		r.logger.Error("directory does not exist", "dir", path)
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, path)
	}

	r.cfg.WorkingDir = path
	r.logger.Debug("working directory changed", "dir", path)
	return nil
}

// SetDisplay sets where captured lines are echoed live. Nil disables echo.
func (r *Runner) SetDisplay(d *Display) {
	r.display = d
}

// IsApplicationAvailable reports whether name can be found on the host.
func (r *Runner) IsApplicationAvailable(name string) bool {
	return r.checker.Available(name)
}

// Run runs command and blocks until the process exits. Failures are
// reported through the returned Outcome, never as a panic or error.
func (r *Runner) Run(command string) Outcome {
	r.stdout = []string{}
	r.stderr = []string{}

	log := r.logger.With("run_id", uuid.NewString())

	args, err := r.builder.BuildArguments(command)
	if err != nil {
		log.Error("cannot build arguments", "command", command, "error", err)
		return didNotRun(r.cfg.Application+" "+command, err)
	}

	invocation := r.cfg.Application + " " + args
	opts, err := r.runOptions(command, args, log)
	if err != nil {
		log.Error("cannot prepare command", "command", invocation, "error", err)
		return didNotRun(invocation, err)
	}

	log.Info("running command", "command", invocation, "dir", r.cfg.WorkingDir)

	result, err := r.exec.Run(opts)
	if result != nil {
		r.stdout = result.Stdout
		r.stderr = result.Stderr
	}

	if errors.Is(err, exec.ErrSpawn) || result == nil {
		if err == nil {
			err = exec.ErrSpawn
		}
		log.Error("process did not start", "command", invocation, "error", err)
		return didNotRun(invocation, err)
	}
	if err != nil {
		log.Error("output capture incomplete", "command", invocation, "exit_code", result.ExitCode, "error", err)
		return incompleteCapture(result.ExitCode, invocation, err)
	}

	outcome := outcomeFromExit(result.ExitCode, invocation)
	if outcome.OK() {
		log.Info("command succeeded", "command", invocation)
	} else {
		log.Error("command failed", "command", invocation, "exit_code", result.ExitCode)
	}

	return outcome
}

// RunAsync runs command on a new goroutine. The channel delivers exactly
// one Outcome and is then closed. The runner must not be used again until
// the Outcome has been received.
func (r *Runner) RunAsync(command string) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- r.Run(command)
	}()
	return ch
}

// TryRun runs command and reports whether it succeeded.
func (r *Runner) TryRun(command string) bool {
	return r.Run(command).OK()
}

// TryRunAsync is the asynchronous form of TryRun.
func (r *Runner) TryRunAsync(command string) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		defer close(ch)
		ch <- (<-r.RunAsync(command)).OK()
	}()
	return ch
}

// runOptions builds the executor options for one run. Redirect flags are
// read here, so later toggles never affect a run in flight. Windows gets the
// argument line as the raw command line; elsewhere the builder's argv is
// used so the command text reaches the interpreter untouched.
func (r *Runner) runOptions(command, args string, log *slog.Logger) (*exec.RunOptions, error) {
	opts := &exec.RunOptions{
		Name:          r.cfg.Application,
		Dir:           r.cfg.WorkingDir,
		CaptureStdout: r.cfg.RedirectStdout,
		CaptureStderr: r.cfg.RedirectStderr,
	}

	if runtime.GOOS == shell.GOOSWindows {
		opts.CmdLine = args
	} else {
		argv, err := r.builder.BuildArgv(command)
		if err != nil {
			return nil, err
		}
		opts.Args = argv
	}

	var mu sync.Mutex
	var stdoutSink, stderrSink io.Writer
	if r.display != nil {
		stdoutSink, stderrSink = r.display.Stdout, r.display.Stderr
	}
	opts.OnStdout = lineSink(log, "stdout", stdoutSink, &mu)
	opts.OnStderr = lineSink(log, "stderr", stderrSink, &mu)

	return opts, nil
}

// lineSink traces each captured line and echoes it to w. Both streams share
// mu so echoed lines never interleave mid-line.
func lineSink(log *slog.Logger, stream string, w io.Writer, mu *sync.Mutex) exec.LineFunc {
	return func(line string) {
		slogger.Trace(log, "output", "stream", stream, "line", line)
		if w == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(w, line)
	}
}
