package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/procrun/internal/config"
	procexec "github.com/jmgilman/procrun/internal/exec"
	"github.com/jmgilman/procrun/internal/probe"
	"github.com/jmgilman/procrun/internal/runner"
	"github.com/jmgilman/procrun/internal/shell"
	"github.com/jmgilman/procrun/internal/slogger"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or change the defaults used by procrun run",
	Long: `Show or change the defaults used by "procrun run".

  runner.application      shell name (CMD, PowerShell, Bash, Sh), interpreter
                          path or program; empty means the OS default shell
  runner.working_dir      directory commands start in; empty means the
                          current directory
  runner.redirect_stdout  capture stdout (true) or pass it to the console
  runner.redirect_stderr  capture stderr (true) or pass it to the console
  output.format           text, json or yaml
  output.echo             print captured lines as they arrive
  output.spinner          show a spinner with the latest line
  output.transcript_dir   keep a transcript of every run in this directory

Values are checked before they are saved: a shell name must exist on this
operating system, any other application must be found on the search path,
and the working directory must exist. Variables such as PROCRUN_APPLICATION,
PROCRUN_WORKING_DIR and PROCRUN_OUTPUT override the file without changing it.`,
	Example: `  # Show the whole file, or as JSON
  procrun config
  procrun config -o json

  # Which application runs commands?
  procrun config runner.application

  # Run commands through sh, in a fixed directory
  procrun config runner.application Sh
  procrun config runner.working_dir ~/src

  # Go back to the default shell
  procrun config runner.application ""

  # Where is the file?
  procrun config --path`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runConfigCmd,
}

func runConfigCmd(cmd *cobra.Command, args []string) error {
	loader := LoaderFromContext(cmd.Context())
	if loader == nil {
		var err error
		if loader, err = config.NewLoader(); err != nil {
			return fmt.Errorf("init config loader: %w", err)
		}
	}

	if showPath, _ := cmd.Flags().GetBool("path"); showPath {
		fmt.Println(loader.Path())
		return nil
	}
	if edit, _ := cmd.Flags().GetBool("edit"); edit {
		return runEdit(loader)
	}

	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("get output flag: %w", err)
	}
	if format != "yaml" && format != "json" {
		return fmt.Errorf("%w: %s (valid: yaml, json)", config.ErrInvalidFormat, format)
	}

	// Load creates the file with defaults on first use.
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch len(args) {
	case 0:
		return writeValue(os.Stdout, format, cfg)
	case 1:
		return runShowKey(loader, args[0], format)
	default:
		executor := procexec.New()
		s := &settingChecker{
			resolver: shell.NewResolver(""),
			checker:  probe.New(executor, ""),
			expand:   loader.ExpandPath,
		}
		return runSetKey(cmd, loader, s, args[0], args[1])
	}
}

// runEdit opens the config file in $VISUAL or $EDITOR.
func runEdit(loader *config.Loader) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		return config.ErrNoEditor
	}

	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The editor needs the terminal, so it is started directly rather than
	// through a runner, which would leave stdin unattached.
	editorCmd := exec.Command(editor, loader.Path()) //nolint:gosec // Editor chosen by the user
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runShowKey(loader *config.Loader, key, format string) error {
	value, err := loader.Get(key)
	if err != nil {
		return err
	}

	if section, ok := value.(map[string]any); ok {
		return writeValue(os.Stdout, format, section)
	}
	if value == nil {
		value = ""
	}
	fmt.Println(value)
	return nil
}

func runSetKey(cmd *cobra.Command, loader *config.Loader, s *settingChecker, key, value string) error {
	log := slogger.L(cmd.Context())

	if err := config.ValidateKey(key); err != nil {
		return err
	}

	note, err := s.check(key, value)
	if err != nil {
		log.Debug("rejected setting", "key", key, "value", value, "error", err)
		return err
	}

	if err := loader.Set(key, value); err != nil {
		return err
	}
	log.Debug("saved setting", "key", key, "value", value, "path", loader.Path())

	if note != "" {
		fmt.Printf("Set %s = %s (%s)\n", key, value, note)
	} else {
		fmt.Printf("Set %s = %s\n", key, value)
	}
	return nil
}

// writeValue prints v as YAML or indented JSON.
func writeValue(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// settingChecker validates values for keys that name things on the host
// before they reach the config file.
type settingChecker struct {
	resolver *shell.Resolver
	checker  probe.Checker
	expand   func(string) string
}

// check validates value for key. The returned note describes what the value
// resolves to, when that is worth showing.
func (s *settingChecker) check(key, value string) (string, error) {
	switch key {
	case "runner.application":
		return s.checkApplication(value)
	case "runner.working_dir":
		return s.checkWorkingDir(value)
	}
	return "", nil
}

func (s *settingChecker) checkApplication(name string) (string, error) {
	if name == "" {
		kind, err := s.resolver.DefaultKind()
		if err != nil {
			return "", err
		}
		return "default shell: " + kind.String(), nil
	}

	path, err := s.resolver.ResolveName(name)
	if err != nil {
		return "", err
	}
	if !s.checker.Available(path) {
		return "", fmt.Errorf("%w: application %q not found on the system", runner.ErrUnsupportedApplication, path)
	}
	if path != name {
		return "runs as " + path, nil
	}
	return "", nil
}

func (s *settingChecker) checkWorkingDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}

	expanded := s.expand(dir)
	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", runner.ErrDirectoryNotFound, expanded)
	}
	if expanded != dir {
		return expanded, nil
	}
	return "", nil
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("edit", false, "open the config file in $VISUAL or $EDITOR")
	configCmd.Flags().Bool("path", false, "print the config file path")
	configCmd.Flags().StringP("output", "o", "yaml", "format for shown values (yaml, json)")
	configCmd.MarkFlagsMutuallyExclusive("edit", "path")
}
