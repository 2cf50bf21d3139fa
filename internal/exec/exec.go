// Package exec spawns external processes and captures their output as lines.
package exec

import "errors"

// FailedToRunExitCode is reported when a process could not be started.
const FailedToRunExitCode = -1

// ErrSpawn is returned when the operating system could not start a process.
var ErrSpawn = errors.New("process did not start")

// LineFunc receives one complete line of output, without its line ending.
type LineFunc func(line string)

// Result holds the output from a completed command.
type Result struct {
	Stdout   []string // Captured stdout lines (empty when not captured)
	Stderr   []string // Captured stderr lines (empty when not captured)
	ExitCode int
}

// RunOptions configures command execution.
type RunOptions struct {
	Name          string   // Command name or path (required)
	Args          []string // Command arguments
	CmdLine       string   // Raw argument line; on Windows it is handed to the OS verbatim
	Dir           string   // Working directory (empty = current)
	CaptureStdout bool     // Capture stdout lines; otherwise stdout is inherited
	CaptureStderr bool     // Capture stderr lines; otherwise stderr is inherited
	OnStdout      LineFunc // Called for every captured stdout line
	OnStderr      LineFunc // Called for every captured stderr line
}

// Executor runs external commands.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/executor.go . Executor
type Executor interface {
	// Run starts a command, drains the captured streams concurrently and
	// waits for it to exit. A non-zero exit is not an error; it is reported
	// in Result.ExitCode. Errors wrapping ErrSpawn mean the process never
	// started and Result.ExitCode is FailedToRunExitCode.
	//
	// Run cannot be canceled and blocks until the process exits.
	Run(opts *RunOptions) (*Result, error)

	// LookPath searches for an executable in PATH.
	// Returns the full path if found, or an error if not.
	LookPath(name string) (string, error)
}
