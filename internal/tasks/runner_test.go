package tasks

import (
	"context"
	"errors"
	"testing"

	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/pkg/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) action(name string) Action {
	return func(_ context.Context, inv Invocation) error {
		r.calls = append(r.calls, name+":"+inv.Task.Name)
		return nil
	}
}

func newRecordingRunner(t *testing.T, opts ...Option) (*Runner, *recorder) {
	t.Helper()
	rec := &recorder{}
	runner := NewRunner(opts...)
	for _, name := range []string{"prepare", "build", "ship"} {
		require.NoError(t, runner.RegisterAction(name, rec.action(name)))
	}
	return runner, rec
}

func TestInvokeRunsPrerequisitesFirstAndOnce(t *testing.T) {
	runner, rec := newRecordingRunner(t)
	require.NoError(t, runner.Define(Task{Name: "prepare", Action: "prepare"}))
	require.NoError(t, runner.Define(Task{Name: "build", Action: "build", Prerequisites: []string{"prepare"}}))
	require.NoError(t, runner.Define(Task{Name: "ship", Action: "ship", Prerequisites: []string{"build", "prepare"}}))

	require.NoError(t, runner.Invoke(context.Background(), "ship"))
	require.NoError(t, runner.Invoke(context.Background(), "ship"))
	require.NoError(t, runner.Invoke(context.Background(), "build"))

	assert.Equal(t, []string{"prepare:prepare", "build:build", "ship:ship"}, rec.calls)
	assert.True(t, runner.Invoked("prepare"))
}

func TestReenableAllowsSecondRun(t *testing.T) {
	runner, rec := newRecordingRunner(t)
	require.NoError(t, runner.Define(Task{Name: "prepare", Action: "prepare"}))

	require.NoError(t, runner.Invoke(context.Background(), "prepare"))
	runner.Reenable("prepare")
	require.NoError(t, runner.Invoke(context.Background(), "prepare"))

	assert.Equal(t, []string{"prepare:prepare", "prepare:prepare"}, rec.calls)
}

func TestInvokeUnknownTask(t *testing.T) {
	runner := NewRunner()
	err := runner.Invoke(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotDefined)

	require.NoError(t, runner.Define(Task{Name: "top", Prerequisites: []string{"gone"}}))
	err = runner.Invoke(context.Background(), "top")
	require.ErrorIs(t, err, ErrTaskNotDefined)
	assert.Contains(t, err.Error(), "required by top")
}

func TestInvokeDetectsCycles(t *testing.T) {
	runner := NewRunner()
	require.NoError(t, runner.Define(Task{Name: "a", Prerequisites: []string{"b"}}))
	require.NoError(t, runner.Define(Task{Name: "b", Prerequisites: []string{"a"}}))

	err := runner.Invoke(context.Background(), "a")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.ElementsMatch(t, []string{"a", "b"}, cycle.Cycle)
	assert.False(t, runner.Invoked("a"))
}

func TestInvokeMissingAction(t *testing.T) {
	runner := NewRunner()
	require.NoError(t, runner.Define(Task{Name: "a", Action: "nope"}))

	err := runner.Invoke(context.Background(), "a")
	assert.ErrorIs(t, err, ErrActionNotRegistered)
	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "a", taskErr.Task)
}

func TestInvokeStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	runner, rec := newRecordingRunner(t)
	require.NoError(t, runner.RegisterAction("fail", func(context.Context, Invocation) error { return boom }))
	require.NoError(t, runner.Define(Task{Name: "broken", Action: "fail"}))
	require.NoError(t, runner.Define(Task{Name: "ship", Action: "ship", Prerequisites: []string{"broken"}}))

	err := runner.Invoke(context.Background(), "ship")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.calls)
}

func TestRegisterActionRejectsDuplicates(t *testing.T) {
	runner, _ := newRecordingRunner(t)
	err := runner.RegisterAction("build", func(context.Context, Invocation) error { return nil })
	assert.ErrorIs(t, err, ErrActionExists)
	assert.Error(t, runner.RegisterAction("", func(context.Context, Invocation) error { return nil }))
}

func TestRegisterActionsReportsConflicts(t *testing.T) {
	noop := func(context.Context, Invocation) error { return nil }
	runner := NewRunner()
	require.NoError(t, runner.RegisterActions(map[string]Action{"build": noop, "test": noop}))

	err := runner.RegisterActions(map[string]Action{"test": noop})
	assert.ErrorIs(t, err, ErrActionExists)
	assert.Error(t, runner.RegisterActions(map[string]Action{"lint": nil}))
	assert.Error(t, runner.RegisterActions(map[string]Action{" ": noop}))
}

func TestDefineEnhancesExistingTask(t *testing.T) {
	runner := NewRunner()
	require.NoError(t, runner.Define(Task{Name: "a", Description: "first", Prerequisites: []string{"x"}}))
	require.NoError(t, runner.Define(Task{Name: "a", Action: "run", Prerequisites: []string{"x", "y"}}))

	task, ok := runner.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "first", task.Description)
	assert.Equal(t, "run", task.Action)
	assert.Equal(t, []string{"x", "y"}, task.Prerequisites)

	assert.Error(t, runner.Define(Task{Name: "  "}))
}

func TestTasksSortedByName(t *testing.T) {
	runner := NewRunner()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, runner.Define(Task{Name: name}))
	}
	tasks := runner.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].Name)
	assert.Equal(t, "c", tasks[2].Name)
}

func TestGuardSkipsTask(t *testing.T) {
	resolved := annotate.Resolve(annotate.Snapshot{annotate.Models: "true"})
	runner, rec := newRecordingRunner(t, WithOptions(func() annotate.ResolvedOptions { return resolved }))
	require.NoError(t, runner.Define(Task{Name: "models", Action: "build", When: "truthy(models)"}))
	require.NoError(t, runner.Define(Task{Name: "routes", Action: "ship", When: "truthy(routes)"}))

	require.NoError(t, runner.Invoke(context.Background(), "models"))
	require.NoError(t, runner.Invoke(context.Background(), "routes"))

	assert.Equal(t, []string{"build:models"}, rec.calls)
	assert.True(t, runner.Invoked("routes"))
}

func TestGuardErrorsPropagate(t *testing.T) {
	runner, _ := newRecordingRunner(t)
	require.NoError(t, runner.Define(Task{Name: "odd", Action: "build", When: `"not a bool"`}))

	err := runner.Invoke(context.Background(), "odd")
	assert.ErrorIs(t, err, annotate.ErrGuardNotBool)
}

func TestUseGuardWithCustomRegistry(t *testing.T) {
	registry := annotate.DefaultFunctionRegistry()
	require.NoError(t, registry.Register("always", func(...any) (any, error) { return true, nil }))
	guard, err := annotate.NewGuard(annotate.WithFunctionRegistry(registry))
	require.NoError(t, err)

	runner, rec := newRecordingRunner(t)
	runner.UseGuard(guard)
	require.NoError(t, runner.Define(Task{Name: "a", Action: "build", When: "always()"}))
	require.NoError(t, runner.Invoke(context.Background(), "a"))
	assert.Equal(t, []string{"build:a"}, rec.calls)
}

func TestInvokeEmitsTaskEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	runner, _ := newRecordingRunner(t, WithEmitter(emitter))
	require.NoError(t, runner.Define(Task{Name: "prepare", Action: "prepare"}))
	require.NoError(t, runner.Define(Task{Name: "skip", When: "false", Prerequisites: []string{"prepare"}}))

	require.NoError(t, runner.Invoke(context.Background(), "skip"))

	require.Len(t, capture.Events, 2)
	assert.Equal(t, "prepare", capture.Events[0].ObjectID)
	assert.Equal(t, "skip", capture.Events[1].ObjectID)
	assert.Equal(t, true, capture.Events[1].Metadata["skipped"])
}

func TestInvokeHonoursCancellation(t *testing.T) {
	runner, rec := newRecordingRunner(t)
	require.NoError(t, runner.Define(Task{Name: "prepare", Action: "prepare"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, runner.Invoke(ctx, "prepare"), context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestActionsCanInvokeOtherTasks(t *testing.T) {
	runner, rec := newRecordingRunner(t)
	require.NoError(t, runner.RegisterAction("fanout", func(ctx context.Context, inv Invocation) error {
		return inv.Runner.Invoke(ctx, "build")
	}))
	require.NoError(t, runner.Define(Task{Name: "build", Action: "build"}))
	require.NoError(t, runner.Define(Task{Name: "all", Action: "fanout"}))

	require.NoError(t, runner.Invoke(context.Background(), "all"))
	assert.Equal(t, []string{"build:build"}, rec.calls)
}
