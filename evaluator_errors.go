package annotate

import (
	"errors"
	"fmt"
	"strings"
)

// maxReportedExpr caps how much of a guard expression error messages quote.
const maxReportedExpr = 80

// EvaluationError reports a guard that failed to compile or run, naming the
// task it guarded.
type EvaluationError struct {
	Engine string
	Expr   string
	Task   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	task := e.Task
	if task == "" {
		task = "unknown"
	}
	return fmt.Sprintf("annotate: %s guard for task %s (%s): %v", e.Engine, task, quoteExpr(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func quoteExpr(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "empty expression"
	}
	if runes := []rune(expr); len(runes) > maxReportedExpr {
		expr = string(runes[:maxReportedExpr]) + "..."
	}
	return fmt.Sprintf("%q", expr)
}

// wrapEvaluatorError prefixes engine failures that carry no guard context.
func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "annotate:") {
		return err
	}
	return fmt.Errorf("annotate: %s guard: %w", engine, err)
}

// wrapEvaluationError attaches guard context to err, filling only the
// fields an existing EvaluationError leaves empty.
func wrapEvaluationError(engine, expr, task string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, Task: task, Err: err}
	}
	fill := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	fill(&evalErr.Engine, engine)
	fill(&evalErr.Expr, expr)
	fill(&evalErr.Task, task)
	return evalErr
}
