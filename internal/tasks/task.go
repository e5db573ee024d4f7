// Package tasks runs named tasks with prerequisites, guards and run-once
// semantics. Task definitions are declared in TOML files.
package tasks

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTaskNotDefined reports an invocation of an unknown task.
	ErrTaskNotDefined = errors.New("tasks: task not defined")
	// ErrActionNotRegistered reports a task naming an unknown action.
	ErrActionNotRegistered = errors.New("tasks: action not registered")
	// ErrActionExists reports a second registration under the same name.
	ErrActionExists = errors.New("tasks: action already registered")
)

// Task is a defined task.
type Task struct {
	Name          string
	Description   string
	Prerequisites []string
	// Action names the registered Action run by the task. Tasks without an
	// action only run their prerequisites.
	Action string
	// When is a guard expression evaluated against the resolved options.
	// The task is skipped when it evaluates to false.
	When string
	// Source is the definition file the task was last declared in.
	Source string
}

func (t Task) clone() Task {
	t.Prerequisites = append([]string(nil), t.Prerequisites...)
	return t
}

// Invocation is handed to an Action when its task runs.
type Invocation struct {
	Task   Task
	Runner *Runner
}

// Action is the body of a task.
type Action func(ctx context.Context, inv Invocation) error

// TaskError wraps the failure of a single task.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("tasks: %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
