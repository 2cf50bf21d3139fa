package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/procrun/internal/shell"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [kind]",
	Short: "Print the executable used for a shell",
	Long: `Print the executable procrun starts for a shell kind (CMD, PowerShell,
Bash or Sh). With no argument, the default shell of the operating system is
resolved. Use --os to resolve for another operating system and --all to list
every kind.`,
	Example: `  # Default shell of this system
  procrun resolve

  # A specific kind
  procrun resolve PowerShell

  # Every kind on Windows
  procrun resolve --all --os windows`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolveCmd,
}

func runResolveCmd(cmd *cobra.Command, args []string) error {
	goos, err := cmd.Flags().GetString("os")
	if err != nil {
		return fmt.Errorf("get os flag: %w", err)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("get all flag: %w", err)
	}

	resolver := shell.NewResolver(goos)

	if all {
		return listKinds(resolver)
	}

	var kind shell.Kind
	if len(args) == 1 {
		var ok bool
		if kind, ok = shell.ParseKind(args[0]); !ok {
			return fmt.Errorf("%w: unknown kind %q", shell.ErrUnsupportedApplication, args[0])
		}
	} else if kind, err = resolver.DefaultKind(); err != nil {
		return err
	}

	path, err := resolver.Resolve(kind)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

// listKinds prints every kind with its executable on the resolver's OS.
func listKinds(resolver *shell.Resolver) error {
	defaultKind, defaultErr := resolver.DefaultKind()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "KIND\tPATH\tDEFAULT"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, kind := range shell.Kinds() {
		path, err := resolver.Resolve(kind)
		if err != nil {
			if !errors.Is(err, shell.ErrUnsupportedApplication) {
				return err
			}
			path = "-"
		}

		isDefault := ""
		if defaultErr == nil && kind == defaultKind {
			isDefault = "*"
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", kind, path, isDefault); err != nil {
			return fmt.Errorf("write kind: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().String("os", "", "operating system to resolve for (windows, linux, darwin)")
	resolveCmd.Flags().Bool("all", false, "list every kind")
}
