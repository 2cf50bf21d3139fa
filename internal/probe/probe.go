// Package probe checks whether executables can be found on the search path.
package probe

import (
	"runtime"

	"github.com/jmgilman/procrun/internal/exec"
)

// Checker reports whether an application is available on the host.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/checker.go . Checker
type Checker interface {
	// Available reports whether name can be located. It never fails: any
	// problem running the lookup is reported as false.
	Available(name string) bool
}

// lookupChecker asks the OS lookup utility (where/which) about a name.
type lookupChecker struct {
	exec exec.Executor
	goos string
}

// New returns a Checker that runs the lookup utility for goos through e.
// An empty goos selects the host.
func New(e exec.Executor, goos string) Checker {
	if goos == "" {
		goos = runtime.GOOS
	}
	return &lookupChecker{exec: e, goos: goos}
}

// LookupCommand returns the utility that locates executables on goos.
func LookupCommand(goos string) string {
	if goos == "windows" {
		return "where"
	}
	return "which"
}

func (c *lookupChecker) Available(name string) bool {
	if name == "" {
		return false
	}

	// Output is captured and dropped so lookups never reach the console.
	result, err := c.exec.Run(&exec.RunOptions{
		Name:          LookupCommand(c.goos),
		Args:          []string{name},
		CaptureStdout: true,
		CaptureStderr: true,
	})
	if err != nil || result == nil {
		return false
	}

	return result.ExitCode == 0
}
