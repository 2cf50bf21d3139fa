// Command procrun runs command text through a shell and reports the outcome.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmgilman/procrun/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
