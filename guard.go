package annotate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoEvaluator indicates a guard without a usable evaluator.
	ErrNoEvaluator = errors.New("annotate: evaluator not configured")
	// ErrEngineUnavailable indicates an engine missing from this build.
	ErrEngineUnavailable = errors.New("annotate: evaluator engine unavailable")
	// ErrUnknownEngine indicates an unrecognized engine name.
	ErrUnknownEngine = errors.New("annotate: unknown evaluator engine")
	// ErrGuardNotBool indicates a guard expression that did not yield a boolean.
	ErrGuardNotBool = errors.New("annotate: guard must evaluate to a boolean")
)

// Evaluator engine names.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Guard evaluates task guard expressions against resolved options.
type Guard struct {
	evaluator Evaluator
	engine    string
	cache     ProgramCache
	functions *FunctionRegistry
	logger    EvaluatorLogger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithEvaluator sets a custom evaluator, overriding WithEngine.
func WithEvaluator(evaluator Evaluator) GuardOption {
	return func(g *Guard) {
		g.evaluator = evaluator
	}
}

// WithEngine selects a built-in engine by name.
func WithEngine(engine string) GuardOption {
	return func(g *Guard) {
		g.engine = strings.ToLower(strings.TrimSpace(engine))
	}
}

// NewGuard builds a guard. Without options it uses expr with an LRU program
// cache and the default function registry.
func NewGuard(opts ...GuardOption) (*Guard, error) {
	g := &Guard{
		engine: EngineExpr,
		logger: noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.cache == nil {
		g.cache = NewLRUProgramCache(DefaultProgramCacheSize)
	}
	if g.functions == nil {
		g.functions = DefaultFunctionRegistry()
	}
	if g.evaluator != nil {
		return g, nil
	}
	evaluator, err := NewEvaluatorForEngine(g.engine, g.cache, g.functions)
	if err != nil {
		return nil, err
	}
	g.evaluator = evaluator
	return g, nil
}

// NewEvaluatorForEngine builds one of the built-in evaluators.
func NewEvaluatorForEngine(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, engine)
	}
}

// Functions returns a copy of the guard's function registry.
func (g *Guard) Functions() *FunctionRegistry {
	return g.functions.Clone()
}

// Evaluate runs expr against ctx and logs the attempt.
func (g *Guard) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("annotate: expression must not be empty")
	}
	if g == nil || g.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	start := time.Now()
	value, err := g.evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(evaluatorEngineName(g.evaluator), expr, ctx.taskLabel(), err)
	event := EvaluatorLogEvent{
		Engine:   evaluatorEngineName(g.evaluator),
		Expr:     expr,
		Task:     ctx.taskLabel(),
		Duration: time.Since(start),
		Err:      err,
	}
	if err == nil {
		event.Result = value
	}
	g.logger.LogEvaluation(event)
	return value, err
}

// Allow reports whether task may run. A blank expression always allows.
func (g *Guard) Allow(resolved ResolvedOptions, task, expr string) (bool, error) {
	if blank(expr) {
		return true, nil
	}
	value, err := g.Evaluate(NewRuleContext(resolved, task), expr)
	if err != nil {
		return false, err
	}
	allowed, ok := value.(bool)
	if !ok {
		return false, &EvaluationError{
			Engine: evaluatorEngineName(g.evaluator),
			Expr:   expr,
			Task:   task,
			Err:    fmt.Errorf("%w: got %T", ErrGuardNotBool, value),
		}
	}
	return allowed, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	default:
		if name := fmt.Sprintf("%T", e); name == "*annotate.jsEvaluator" {
			return EngineJS
		}
		return "custom"
	}
}
