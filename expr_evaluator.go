package annotate

import (
	"errors"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

const exprEngine = "expr"

var errEmptyExpression = errors.New("expression must not be empty")

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache stores compiled guard programs in cache.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) { e.cache = cache }
}

// ExprWithFunctionRegistry exposes the registry functions to guards, both as
// direct calls and through call(name, args...).
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry != nil {
			e.registry = registry.Clone()
		}
	}
}

type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	options  []exprlang.Option
}

// NewExprEvaluator returns the default guard engine, backed by
// github.com/expr-lang/expr. Undefined identifiers evaluate to nil so a guard
// may reference options that were never set.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.options = []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.registry != nil {
		for _, name := range e.registry.Names() {
			name := name
			e.options = append(e.options, exprlang.Function(name, func(arguments ...any) (any, error) {
				return e.registry.Call(name, arguments...)
			}))
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression, CompileForTask(ctx.Task))
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(exprEngine, errEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	program, err := e.program(expression, cfg.task)
	if err != nil {
		return nil, err
	}
	return &exprRule{evaluator: e, program: program, expression: expression, task: cfg.task}, nil
}

func (e *exprEvaluator) program(expression, task string) (*exprvm.Program, error) {
	key := exprEngine + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression, e.options...)
	if err != nil {
		return nil, wrapEvaluationError(exprEngine, expression, task, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// env flattens the snapshot into top-level identifiers next to the
// reserved now, args, metadata and task names.
func (e *exprEvaluator) env(ctx RuleContext) map[string]any {
	env := make(map[string]any, len(ctx.Snapshot)+5)
	for key, value := range ctx.Snapshot {
		env[key] = value
	}
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	env["task"] = ctx.Task
	if e.registry != nil {
		env["call"] = e.registry.Call
	}
	return env
}

type exprRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
	task       string
}

func (r *exprRule) Evaluate(ctx RuleContext) (any, error) {
	if ctx.Task == "" {
		ctx.Task = r.task
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	result, err := exprlang.Run(r.program, r.evaluator.env(ctx))
	if err != nil {
		return nil, wrapEvaluationError(exprEngine, r.expression, ctx.taskLabel(), err)
	}
	return result, nil
}
