package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/internal/bootstrap"
	"github.com/goliatone/go-annotate/internal/tasks"
	"github.com/goliatone/go-annotate/pkg/envstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	fs     afero.Fs
	store  *envstore.Memory
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newTestCLI(t *testing.T, env map[string]string) *testCLI {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/project/app/models", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/project/app/models/user.rb", []byte("class User; end"), 0o644))
	return &testCLI{fs: fs, store: envstore.NewMemory(env)}
}

func (tc *testCLI) run(args ...string) error {
	c := &cli{
		fs:    tc.fs,
		store: tc.store,
		annotator: func(w io.Writer, logger annotate.Logger) annotate.Annotator {
			return newReportAnnotator(w, logger)
		},
	}
	root := newRootCmd(c)
	root.SetOut(&tc.stdout)
	root.SetErr(&tc.stderr)
	root.SetArgs(append(args, "--root", "/project"))
	return root.ExecuteContext(context.Background())
}

func TestModelsCommandUsesSettingsDefaults(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, afero.WriteFile(tc.fs, "/project/.annotate.toml", []byte(`
[options]
position_in_class = "after"
show_indexes = true
`), 0o644))

	require.NoError(t, tc.run("models"))

	assert.Contains(t, tc.stdout.String(), "annotate models")
	assert.Contains(t, tc.stdout.String(), "position_in_class=after")
	assert.Contains(t, tc.stdout.String(), "show_indexes=true")
	value, _ := tc.store.Lookup("position_in_class")
	assert.Equal(t, "after", value)
}

func TestOverrideFlagsBeatEnvironment(t *testing.T) {
	tc := newTestCLI(t, map[string]string{"position_in_routes": "before"})

	require.NoError(t, tc.run("routes", "--set", "position_in_routes=after"))
	assert.Contains(t, tc.stdout.String(), "position_in_routes=after")
}

func TestOverrideFlagsRejectUnknownKeys(t *testing.T) {
	tc := newTestCLI(t, nil)
	err := tc.run("models", "--set", "colour=red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")

	err = tc.run("models", "--set", "novalue")
	require.Error(t, err)
}

func TestOptionsExplainReportsOverrides(t *testing.T) {
	tc := newTestCLI(t, map[string]string{"position": "before"})

	require.NoError(t, tc.run("options", "explain", "position", "--position", "after", "--json"))

	trace, err := annotate.TraceFromJSON(tc.stdout.Bytes())
	require.NoError(t, err)
	winner, ok := trace.Winner()
	require.True(t, ok)
	assert.Equal(t, annotate.ScopeOverrides, winner.Name)
	assert.Equal(t, "after", trace.Value)
}

func TestOptionsExplainUnknownKey(t *testing.T) {
	tc := newTestCLI(t, nil)
	assert.Error(t, tc.run("options", "explain", "nope"))
}

func TestOptionsShowJSON(t *testing.T) {
	tc := newTestCLI(t, map[string]string{"model_dir": "app/models,lib/models"})

	require.NoError(t, tc.run("options", "show", "--json"))

	var values map[string]any
	require.NoError(t, json.Unmarshal(tc.stdout.Bytes(), &values))
	assert.Equal(t, []any{"app/models", "lib/models"}, values["model_dir"])
	assert.Equal(t, "before", values["position"])
	assert.Len(t, values, len(annotate.AllOptions()))
}

func TestOptionsSchema(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, tc.run("options", "schema"))

	var fields []annotate.FieldDescriptor
	require.NoError(t, json.Unmarshal(tc.stdout.Bytes(), &fields))
	assert.Len(t, fields, len(annotate.AllOptions()))
}

func TestTasksCommandListsBuiltins(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, tc.run("tasks"))
	assert.Contains(t, tc.stdout.String(), "annotate_models")
	assert.Contains(t, tc.stdout.String(), "remove_routes")
}

func TestMigrateHook(t *testing.T) {
	tc := newTestCLI(t, map[string]string{"models": "true"})
	require.NoError(t, tc.run("migrate-hook"))
	assert.Contains(t, tc.stdout.String(), "annotate models")
	assert.NotContains(t, tc.stdout.String(), "annotate routes")

	skipped := newTestCLI(t, map[string]string{"models": "true", annotate.EnvSkipOnDBMigrate: "yes"})
	require.NoError(t, skipped.run("migrate-hook"))
	assert.Empty(t, skipped.stdout.String())
}

func TestRemoveCommand(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, tc.run("remove", "--routes"))
	assert.Contains(t, tc.stdout.String(), "remove route annotations")
}

func TestRunUnknownTask(t *testing.T) {
	tc := newTestCLI(t, nil)
	assert.Error(t, tc.run("run", "missing_task"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 4, exitCode(&bootstrap.ExitError{Code: 4, Err: errors.New("definitions")}))
}

func TestInvalidDefinitionFileExitsWithStatus(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, afero.WriteFile(tc.fs, "/project/.annotate.toml", []byte(`definitions = ["lib/tasks"]`), 0o644))
	require.NoError(t, afero.WriteFile(tc.fs, "/project/lib/tasks/broken.toml", []byte(`
[[task]]
description = "missing a name"
`), 0o644))

	err := tc.run("models")
	require.Error(t, err)
	assert.Equal(t, tasks.DefinitionExitStatus, exitCode(err))
	assert.Contains(t, tc.stderr.String(), "/project/lib/tasks/broken.toml")
	assert.Empty(t, tc.stdout.String())
}

func TestMissingDefinitionDirExitsWithStatus(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, afero.WriteFile(tc.fs, "/project/.annotate.toml", []byte(`definitions = ["lib/tasks"]`), 0o644))

	err := tc.run("tasks")
	require.Error(t, err)
	assert.Equal(t, tasks.DefinitionExitStatus, exitCode(err))
}

func TestDefinitionDirTasksAreRunnable(t *testing.T) {
	tc := newTestCLI(t, nil)
	require.NoError(t, afero.WriteFile(tc.fs, "/project/.annotate.toml", []byte(`definitions = ["lib/tasks"]`), 0o644))
	require.NoError(t, afero.WriteFile(tc.fs, "/project/lib/tasks/extra.toml", []byte(`
[[task]]
name = "annotate_everything"
description = "Models then routes"
prerequisites = ["annotate_models", "annotate_routes"]
`), 0o644))

	require.NoError(t, tc.run("tasks"))
	assert.Contains(t, tc.stdout.String(), "annotate_everything")

	tc.stdout.Reset()
	require.NoError(t, tc.run("run", "annotate_everything"))
	assert.Contains(t, tc.stdout.String(), "annotate models")
	assert.Contains(t, tc.stdout.String(), "annotate routes")
}
