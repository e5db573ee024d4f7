package annotate

import "time"

// EvaluatorLogEvent describes one guard evaluation. Result holds the value
// the guard produced and is nil when Err is set.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Task     string
	Result   any
	Duration time.Duration
	Err      error
}

// EvaluatorLogger observes guard evaluations.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger. A nil func
// discards events.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger reports every guard evaluation to logger.
func WithEvaluatorLogger(logger EvaluatorLogger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
		if logger == nil {
			g.logger = noopEvaluatorLogger{}
		}
	}
}
