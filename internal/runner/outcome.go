package runner

import (
	"fmt"

	"github.com/jmgilman/procrun/internal/exec"
)

// Status is the terminal state of one invocation.
type Status int

// Invocation states.
const (
	Success Status = iota
	Failed
	DidNotRun
)

var statusNames = map[Status]string{
	Success:   "success",
	Failed:    "failed",
	DidNotRun: "did_not_run",
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler so JSON and YAML output
// carry the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome records how one invocation ended.
type Outcome struct {
	Status   Status `json:"status" yaml:"status"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool {
	return o.Status == Success
}

// outcomeFromExit maps the exit code of a process that ran.
func outcomeFromExit(exitCode int, invocation string) Outcome {
	if exitCode == 0 {
		return Outcome{
			Status:   Success,
			ExitCode: exitCode,
			Message:  "Command executed successfully: " + invocation,
		}
	}
	return Outcome{
		Status:   Failed,
		ExitCode: exitCode,
		Message:  "Command ran and failed: " + invocation,
	}
}

// incompleteCapture builds the outcome for a process that ran but whose
// output could not be read in full. A zero exit code is reported as Failed
// since the captured lines are not the whole output.
func incompleteCapture(exitCode int, invocation string, err error) Outcome {
	return Outcome{
		Status:   Failed,
		ExitCode: exitCode,
		Message:  fmt.Sprintf("Command ran but output was incomplete: %s: %v", invocation, err),
	}
}

// didNotRun builds the outcome for an invocation that never started.
func didNotRun(invocation string, err error) Outcome {
	return Outcome{
		Status:   DidNotRun,
		ExitCode: exec.FailedToRunExitCode,
		Message:  fmt.Sprintf("Command did not run: %s: %v", invocation, err),
	}
}
