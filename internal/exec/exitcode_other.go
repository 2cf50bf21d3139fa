//go:build !windows

package exec

import (
	"os"
	"syscall"
)

// exitCode reports the exit status of a finished process. A process killed
// by a signal reports 128+signal, as shells do, instead of -1.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
