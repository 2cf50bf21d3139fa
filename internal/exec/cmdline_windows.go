//go:build windows

package exec

import (
	"os/exec"
	"strings"
	"syscall"
)

// applyCmdLine hands the raw argument line to CreateProcess untouched, so
// interpreters such as cmd.exe see exactly what the caller built.
func applyCmdLine(cmd *exec.Cmd, opts *RunOptions) {
	if opts.CmdLine == "" {
		return
	}

	name := opts.Name
	if strings.ContainsAny(name, " \t") {
		name = `"` + name + `"`
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: name + " " + opts.CmdLine,
	}
}
