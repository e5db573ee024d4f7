package bootstrap

import (
	"errors"
	"fmt"
)

// HostTaskOutcome records what happened when the host's environment task
// was invoked.
type HostTaskOutcome int

const (
	// HostTaskPending means the environment task has not been attempted.
	HostTaskPending HostTaskOutcome = iota
	// HostTaskInvoked means the task ran successfully.
	HostTaskInvoked
	// HostTaskAbsent means no environment task is defined.
	HostTaskAbsent
	// HostTaskFailed means the task ran and returned an error.
	HostTaskFailed
)

func (o HostTaskOutcome) String() string {
	switch o {
	case HostTaskInvoked:
		return "invoked"
	case HostTaskAbsent:
		return "absent"
	case HostTaskFailed:
		return "failed"
	default:
		return "pending"
	}
}

// TaskState tracks whether the built-in task definitions were loaded.
type TaskState int

const (
	TasksNotLoaded TaskState = iota
	TasksLoaded
)

func (s TaskState) String() string {
	if s == TasksLoaded {
		return "loaded"
	}
	return "not_loaded"
}

// ExitError asks the CLI to exit with Code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// StatusCoder is implemented by definition layer errors that carry their
// own exit status.
type StatusCoder interface {
	StatusCode() int
}

func statusOf(err error) int {
	var coder StatusCoder
	if errors.As(err, &coder) && coder.StatusCode() != 0 {
		return coder.StatusCode()
	}
	return 1
}
