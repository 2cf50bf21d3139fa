//go:build !windows

package exec

import "os/exec"

// applyCmdLine is a no-op outside Windows; the argv in RunOptions.Args is used.
func applyCmdLine(_ *exec.Cmd, _ *RunOptions) {}
