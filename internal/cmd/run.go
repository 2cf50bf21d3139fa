package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/procrun/internal/config"
	"github.com/jmgilman/procrun/internal/logging"
	"github.com/jmgilman/procrun/internal/prompt"
	"github.com/jmgilman/procrun/internal/runner"
	"github.com/jmgilman/procrun/internal/slogger"
	"github.com/jmgilman/procrun/internal/spinner"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command>...",
	Short: "Run a command and report its outcome",
	Long: `Run command text through a shell or another application and wait for it
to exit.

The application defaults to runner.application from the config file, or the
default shell of the operating system when that is empty. It may be a shell
name (CMD, PowerShell, Bash, Sh), an interpreter path, or any other program,
in which case the command text is passed to it as its arguments.

Captured stdout and stderr are printed once the command has exited. Use --echo
to print lines as they arrive instead, or --spinner to show the latest line
next to a spinner. procrun exits with the exit code of the command, or 1 if
the command could not be started.`,
	Example: `  # Run through the default shell
  procrun run -- echo Hello World

  # Run through a specific shell in another directory
  procrun run --app Sh --dir /tmp -- ls -la

  # Pass arguments straight to a program
  procrun run --app git -- status --short

  # Machine-readable result
  procrun run -o json -- make test

  # Keep a transcript of everything the command printed
  procrun run --echo --transcript build.log -- make`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRunCmd,
}

// runFlags holds parsed flags for the run command, merged with config.
type runFlags struct {
	app        string
	dir        string
	stdout     bool
	stderr     bool
	echo       bool
	spinner    bool
	transcript string
	confirm    bool
	async      bool
	format     string
}

// runReport is the structured result printed by -o json and -o yaml.
type runReport struct {
	runner.Outcome `yaml:",inline"`
	Application    string   `json:"application" yaml:"application"`
	Stdout         []string `json:"stdout" yaml:"stdout"`
	Stderr         []string `json:"stderr" yaml:"stderr"`
	Transcript     string   `json:"transcript,omitempty" yaml:"transcript,omitempty"`
}

// parseRunFlags extracts flags from the command, falling back to cfg for
// anything not given explicitly.
func parseRunFlags(cmd *cobra.Command, cfg *config.Config) (*runFlags, error) {
	f := &runFlags{
		app:     cfg.Runner.Application,
		dir:     cfg.Runner.WorkingDir,
		stdout:  cfg.Runner.RedirectStdout,
		stderr:  cfg.Runner.RedirectStderr,
		echo:    cfg.Output.Echo,
		spinner: cfg.Output.Spinner,
		format:  cfg.Output.Format,
	}

	flags := cmd.Flags()
	var err error

	if flags.Changed("app") {
		if f.app, err = flags.GetString("app"); err != nil {
			return nil, fmt.Errorf("get app flag: %w", err)
		}
	}
	if flags.Changed("dir") {
		if f.dir, err = flags.GetString("dir"); err != nil {
			return nil, fmt.Errorf("get dir flag: %w", err)
		}
	}
	if noStdout, _ := flags.GetBool("no-stdout"); noStdout {
		f.stdout = false
	}
	if noStderr, _ := flags.GetBool("no-stderr"); noStderr {
		f.stderr = false
	}
	if flags.Changed("echo") {
		if f.echo, err = flags.GetBool("echo"); err != nil {
			return nil, fmt.Errorf("get echo flag: %w", err)
		}
	}
	if flags.Changed("spinner") {
		if f.spinner, err = flags.GetBool("spinner"); err != nil {
			return nil, fmt.Errorf("get spinner flag: %w", err)
		}
	}
	if flags.Changed("output") {
		if f.format, err = flags.GetString("output"); err != nil {
			return nil, fmt.Errorf("get output flag: %w", err)
		}
	}
	if !config.IsValidFormat(f.format) {
		return nil, fmt.Errorf("%w: %s (valid: text, json, yaml)", config.ErrInvalidFormat, f.format)
	}

	if f.transcript, err = flags.GetString("transcript"); err != nil {
		return nil, fmt.Errorf("get transcript flag: %w", err)
	}
	if f.confirm, err = flags.GetBool("confirm"); err != nil {
		return nil, fmt.Errorf("get confirm flag: %w", err)
	}
	if f.async, err = flags.GetBool("async"); err != nil {
		return nil, fmt.Errorf("get async flag: %w", err)
	}

	// Echo and spinner both draw on the terminal; echo wins.
	if f.echo {
		f.spinner = false
	}

	return f, nil
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := slogger.L(ctx)

	flags, err := parseRunFlags(cmd, currentConfig(ctx))
	if err != nil {
		return err
	}

	command := strings.Join(args, " ")

	r, err := newRunner(flags, log)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	if flags.confirm {
		if err := confirmRun(prompt.New(), r.Application(), command); err != nil {
			return err
		}
	}

	var sp *spinner.Spinner
	if flags.spinner && isTerminal(os.Stderr) {
		sp = spinner.New(os.Stderr, command)
	} else if flags.spinner {
		log.Debug("stderr is not a terminal, spinner disabled")
	}

	display := liveDisplay(flags, sp)

	transcript, err := openTranscript(ctx, flags, display)
	if err != nil {
		return err
	}
	if transcript != nil {
		defer func() {
			if err := transcript.Close(); err != nil {
				log.Warn("failed to close transcript", "error", err)
			}
		}()
		display = &runner.Display{Stdout: transcript.Stdout, Stderr: transcript.Stderr}
	}

	r.SetDisplay(display)

	var outcome runner.Outcome
	execute := func() {
		if flags.async {
			log.Debug("waiting for asynchronous run")
			outcome = <-r.RunAsync(command)
			return
		}
		outcome = r.Run(command)
	}

	if sp != nil {
		if err := sp.Run(execute); err != nil {
			log.Debug("spinner stopped with error", "error", err)
		}
	} else {
		execute()
	}

	report := &runReport{
		Outcome:     outcome,
		Application: r.Application(),
		Stdout:      r.Stdout(),
		Stderr:      r.Stderr(),
	}
	if transcript != nil {
		report.Transcript = transcript.Path()
		log.Info("transcript written", "path", report.Transcript)
	}

	if err := writeReport(os.Stdout, os.Stderr, flags.format, report, flags.echo); err != nil {
		return err
	}

	return exitErrorFor(outcome)
}

// newRunner builds the runner described by flags.
func newRunner(flags *runFlags, log *slog.Logger) (*runner.Runner, error) {
	opts := []runner.Option{
		runner.WithLogger(log),
		runner.WithWorkingDir(flags.dir),
		runner.WithStdoutRedirect(flags.stdout),
		runner.WithStderrRedirect(flags.stderr),
	}

	if flags.app == "" {
		return runner.NewDefault(opts...)
	}
	return runner.NewForName(flags.app, opts...)
}

// confirmRun asks the user before running command through application.
func confirmRun(p prompt.Prompter, application, command string) error {
	ok, err := p.Confirm("Run this command?", fmt.Sprintf("%s\n\nvia %s", command, application))
	if err != nil {
		return err
	}
	if !ok {
		return prompt.ErrCanceled
	}
	return nil
}

// liveDisplay returns where captured lines are shown while the command
// runs, or nil when they are only printed afterwards.
func liveDisplay(flags *runFlags, sp *spinner.Spinner) *runner.Display {
	switch {
	case flags.echo:
		return &runner.Display{Stdout: os.Stdout, Stderr: os.Stderr}
	case sp != nil:
		return &runner.Display{Stdout: sp.Writer(), Stderr: sp.Writer()}
	default:
		return nil
	}
}

// openTranscript creates the transcript file for this run, if one was
// requested with --transcript or output.transcript_dir. Lines written to
// the transcript are forwarded to display.
func openTranscript(ctx context.Context, flags *runFlags, display *runner.Display) (*logging.Transcript, error) {
	path := flags.transcript
	if path == "" {
		dir := currentConfig(ctx).Output.TranscriptDir
		if dir == "" {
			return nil, nil
		}

		pathMgr := logging.NewPathManager(dir)
		runID, err := pathMgr.NewRunID()
		if err != nil {
			return nil, err
		}
		if path, err = pathMgr.EnsureTranscript(runID); err != nil {
			return nil, err
		}
	}

	var stdout, stderr io.Writer
	if display != nil {
		stdout, stderr = display.Stdout, display.Stderr
	}
	return logging.NewTranscript(stdout, stderr, path)
}

// writeReport prints the result of a run in format. In text mode the
// captured lines go to their own streams, unless they were echoed live, and
// the outcome message is printed only when the command did not succeed.
func writeReport(stdout, stderr io.Writer, format string, report *runReport, echoed bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case "yaml":
		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}

	if !echoed {
		for _, line := range report.Stdout {
			_, _ = fmt.Fprintln(stdout, line)
		}
		for _, line := range report.Stderr {
			_, _ = fmt.Fprintln(stderr, line)
		}
	}

	if !report.OK() {
		_, _ = fmt.Fprintln(stderr, report.Message)
	}
	return nil
}

// exitErrorFor maps an outcome to the error that sets procrun's exit code.
func exitErrorFor(outcome runner.Outcome) error {
	switch outcome.Status {
	case runner.Success:
		return nil
	case runner.Failed:
		if outcome.ExitCode > 0 {
			return &ExitError{Code: outcome.ExitCode}
		}
	}
	return &ExitError{Code: 1}
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().String("app", "", "shell name, interpreter path or program to run the command with")
	c.Flags().String("dir", "", "working directory for the command")
	c.Flags().Bool("no-stdout", false, "let stdout go straight to the console instead of capturing it")
	c.Flags().Bool("no-stderr", false, "let stderr go straight to the console instead of capturing it")
	c.Flags().Bool("echo", false, "print captured lines as they arrive")
	c.Flags().Bool("spinner", false, "show a spinner with the latest output line")
	c.Flags().String("transcript", "", "write captured output to `FILE`")
	c.Flags().Bool("confirm", false, "ask before running the command")
	c.Flags().Bool("async", false, "run on a background goroutine and wait for the outcome")
	c.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")

	c.MarkFlagsMutuallyExclusive("echo", "spinner")
	c.MarkFlagsMutuallyExclusive("spinner", "no-stdout")
}
