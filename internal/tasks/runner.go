package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/pkg/activity"
)

// Runner holds task definitions and registered actions. Each task runs at
// most once until it is re-enabled. Runners are not safe for concurrent use.
type Runner struct {
	tasks   map[string]*Task
	actions map[string]Action
	invoked map[string]bool

	guard   *annotate.Guard
	options func() annotate.ResolvedOptions
	emitter *activity.Emitter
	logger  annotate.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithGuard sets the guard used for `when` expressions.
func WithGuard(guard *annotate.Guard) Option {
	return func(r *Runner) {
		r.guard = guard
	}
}

// WithOptions sets the source of resolved options handed to guards.
func WithOptions(fn func() annotate.ResolvedOptions) Option {
	return func(r *Runner) {
		if fn != nil {
			r.options = fn
		}
	}
}

// WithEmitter reports task.invoked events through emitter.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(r *Runner) {
		r.emitter = emitter
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger annotate.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner builds an empty runner. Guards see annotate.Resolve(nil) unless
// WithOptions is given.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		tasks:   map[string]*Task{},
		actions: map[string]Action{},
		invoked: map[string]bool{},
		options: func() annotate.ResolvedOptions { return annotate.Resolve(nil) },
		logger:  annotate.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// UseGuard replaces the guard used for `when` expressions.
func (r *Runner) UseGuard(guard *annotate.Guard) {
	r.guard = guard
}

// RegisterAction stores action under name.
func (r *Runner) RegisterAction(name string, action Action) error {
	name = strings.TrimSpace(name)
	if name == "" || action == nil {
		return fmt.Errorf("tasks: action name and body are required")
	}
	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("%w: %s", ErrActionExists, name)
	}
	r.actions[name] = action
	return nil
}

// RegisterActions registers every action in actions, in name order. It
// stops at the first name that is empty, nil or already registered.
func (r *Runner) RegisterActions(actions map[string]Action) error {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.RegisterAction(name, actions[name]); err != nil {
			return err
		}
	}
	return nil
}

// Define declares task. Declaring an existing task enhances it: new
// prerequisites are appended and non-empty fields replace the old ones.
func (r *Runner) Define(task Task) error {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" {
		return fmt.Errorf("tasks: task name is required")
	}
	existing, ok := r.tasks[task.Name]
	if !ok {
		defined := task.clone()
		r.tasks[task.Name] = &defined
		return nil
	}
	for _, prereq := range task.Prerequisites {
		if !contains(existing.Prerequisites, prereq) {
			existing.Prerequisites = append(existing.Prerequisites, prereq)
		}
	}
	if task.Description != "" {
		existing.Description = task.Description
	}
	if task.Action != "" {
		existing.Action = task.Action
	}
	if task.When != "" {
		existing.When = task.When
	}
	if task.Source != "" {
		existing.Source = task.Source
	}
	return nil
}

// Lookup returns the task defined under name.
func (r *Runner) Lookup(name string) (Task, bool) {
	task, ok := r.tasks[name]
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// Tasks lists every defined task sorted by name.
func (r *Runner) Tasks() []Task {
	out := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, task.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoked reports whether name already ran in this runner.
func (r *Runner) Invoked(name string) bool {
	return r.invoked[name]
}

// Reenable allows name to run again.
func (r *Runner) Reenable(name string) {
	delete(r.invoked, name)
}

// Plan returns the execution order for name, prerequisites first.
func (r *Runner) Plan(name string) ([]string, error) {
	g := newGraph()
	seen := map[string]bool{}
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if seen[name] {
			return nil
		}
		seen[name] = true
		task, ok := r.tasks[name]
		if !ok {
			if len(path) == 0 {
				return fmt.Errorf("%w: %s", ErrTaskNotDefined, name)
			}
			return fmt.Errorf("%w: %s (required by %s)", ErrTaskNotDefined, name, strings.Join(path, " -> "))
		}
		g.addNode(name)
		for _, prereq := range task.Prerequisites {
			if err := visit(prereq, append(path, name)); err != nil {
				return err
			}
			g.addEdge(prereq, name)
		}
		return nil
	}
	if err := visit(name, nil); err != nil {
		return nil, err
	}
	return g.sort()
}

// Invoke runs name after its prerequisites. Tasks that already ran are
// skipped. The first failure stops the invocation.
func (r *Runner) Invoke(ctx context.Context, name string) error {
	order, err := r.Plan(name)
	if err != nil {
		return err
	}
	for _, step := range order {
		if r.invoked[step] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.execute(ctx, *r.tasks[step]); err != nil {
			return &TaskError{Task: step, Err: err}
		}
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, task Task) error {
	r.invoked[task.Name] = true

	allowed, err := r.allow(task)
	if err != nil {
		return err
	}
	if !allowed {
		r.logger.Debug("task skipped", "task", task.Name, "when", task.When)
		r.emit(ctx, activity.TaskEventInput{Task: task.Name, Skipped: true})
		return nil
	}

	if task.Action == "" {
		r.emit(ctx, activity.TaskEventInput{Task: task.Name})
		return nil
	}
	action, ok := r.actions[task.Action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrActionNotRegistered, task.Action)
	}

	start := time.Now()
	r.logger.Debug("task started", "task", task.Name)
	if err := action(ctx, Invocation{Task: task.clone(), Runner: r}); err != nil {
		return err
	}
	elapsed := time.Since(start)
	r.logger.Debug("task finished", "task", task.Name, "duration", elapsed)
	r.emit(ctx, activity.TaskEventInput{Task: task.Name, Duration: elapsed})
	return nil
}

func (r *Runner) allow(task Task) (bool, error) {
	if strings.TrimSpace(task.When) == "" {
		return true, nil
	}
	if r.guard == nil {
		guard, err := annotate.NewGuard()
		if err != nil {
			return false, err
		}
		r.guard = guard
	}
	return r.guard.Allow(r.options(), task.Name, task.When)
}

func (r *Runner) emit(ctx context.Context, input activity.TaskEventInput) {
	if err := r.emitter.Emit(ctx, activity.BuildTaskInvokedEvent(input)); err != nil {
		r.logger.Warn("activity hook failed", "task", input.Task, "err", err)
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
