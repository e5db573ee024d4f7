package tasks

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionLayerAcceptsBuiltinsAndValidDirs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/project/lib/tasks/a.toml", []byte("[[task]]\nname = \"a\""), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/project/lib/tasks/notes.txt", []byte("not toml"), 0o644))

	assert.NoError(t, DefinitionLayer(fsys)(context.Background()))
	assert.NoError(t, DefinitionLayer(fsys, "/project/lib/tasks")(context.Background()))
}

func TestDefinitionLayerReportsInvalidFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/project/lib/tasks/a.toml", []byte("[[task]]\nname = \"a\""), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/project/lib/tasks/b.toml", []byte("[[task]]\nwhen = \"force\""), 0o644))

	err := DefinitionLayer(fsys, "/project/lib/tasks")(context.Background())
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "/project/lib/tasks/b.toml", defErr.Source)
	assert.Equal(t, DefinitionExitStatus, defErr.StatusCode())
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestDefinitionLayerRequiresDirs(t *testing.T) {
	err := DefinitionLayer(afero.NewMemMapFs(), "/missing")(context.Background())
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "/missing", defErr.Source)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestRunnerLoadDirDefinesTasksInLexicalOrder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/defs/b.toml", []byte("[[task]]\nname = \"shared\"\nprerequisites = [\"second\"]"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/defs/a.toml", []byte("[[task]]\nname = \"shared\"\nprerequisites = [\"first\"]"), 0o644))

	runner := NewRunner()
	require.NoError(t, runner.LoadDir(fsys, "/defs"))

	task, ok := runner.Lookup("shared")
	require.True(t, ok)
	assert.Equal(t, []string{"first", "second"}, task.Prerequisites)
}
