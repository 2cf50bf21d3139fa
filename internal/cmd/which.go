package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/procrun/internal/exec"
	"github.com/jmgilman/procrun/internal/probe"
	"github.com/jmgilman/procrun/internal/slogger"
)

var whichCmd = &cobra.Command{
	Use:   "which <name>...",
	Short: "Check whether applications are available",
	Long: `Check whether each named application can be found on this system, using
the same lookup (where on Windows, which elsewhere) that procrun performs
before running a command.

Exits with status 1 if any application is missing.`,
	Example: `  # Check a single shell
  procrun which bash

  # Check several programs at once
  procrun which git make /bin/sh`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		executor := exec.New()
		return runWhich(probe.New(executor, ""), executor, args, cmd)
	},
}

func runWhich(checker probe.Checker, executor exec.Executor, names []string, cmd *cobra.Command) error {
	log := slogger.L(cmd.Context())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tSTATUS\tPATH"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var missing []string
	for _, name := range names {
		status, path := "available", "-"
		if checker.Available(name) {
			if found, err := executor.LookPath(name); err == nil {
				path = found
			}
		} else {
			status = "missing"
			missing = append(missing, name)
		}
		log.Debug("checked application", "name", name, "status", status)

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, path); err != nil {
			return fmt.Errorf("write application: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	if len(missing) > 0 {
		log.Error("applications not found", "names", formatList(missing))
		return &ExitError{Code: 1}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(whichCmd)
}
