// Package logging builds the charm loggers used by the CLI and adapts them
// to the annotate logging hooks.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	annotate "github.com/goliatone/go-annotate"
)

// Prefix is stamped on every CLI log line.
const Prefix = "annotate"

// New returns a logger writing to w at level. An empty level means info.
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl := log.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  lvl,
	}), nil
}

// EvaluatorLogger reports guard evaluations at debug level, failures at warn.
func EvaluatorLogger(logger *log.Logger) annotate.EvaluatorLogger {
	if logger == nil {
		return annotate.EvaluatorLoggerFunc(nil)
	}
	return annotate.EvaluatorLoggerFunc(func(event annotate.EvaluatorLogEvent) {
		keyvals := []any{
			"engine", event.Engine,
			"task", event.Task,
			"expr", event.Expr,
			"duration", event.Duration,
		}
		if event.Err != nil {
			logger.Warn("guard evaluation failed", append(keyvals, "err", event.Err)...)
			return
		}
		logger.Debug("guard evaluated", append(keyvals, "result", event.Result)...)
	})
}
