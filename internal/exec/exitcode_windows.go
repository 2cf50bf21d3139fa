//go:build windows

package exec

import "os"

// exitCode reports the exit status of a finished process.
func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}
