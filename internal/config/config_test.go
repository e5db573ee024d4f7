package config

import (
	"context"
	"errors"
	"testing"

	annotate "github.com/goliatone/go-annotate"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/project", 0o755))

	settings, used, err := Load(context.Background(), fs, LoadOptions{Dir: "/project"})
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Equal(t, DefaultTaskFile, settings.TaskFile)
	assert.Equal(t, []string{DefaultDotenv}, settings.Dotenv)
	assert.Equal(t, "info", settings.Log.Level)
	assert.Equal(t, "expr", settings.Guard.Engine)
	assert.Equal(t, annotate.DefaultProgramCacheSize, settings.Guard.CacheSize)
	assert.Equal(t, annotate.NoHost{}, settings.HostFor("/project", nil))
}

func TestLoadTOMLSettings(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/.annotate.toml", []byte(`
task_file = "tasks/annotate.toml"
dotenv = [".env", ".env.local"]

[options]
model_dir = ["app/models", "lib/models"]
show_indexes = true
position = "after"

[host]
version = 2
eager_load_paths = ["app", "/abs/lib"]

[log]
level = "DEBUG"

[guard]
engine = "cel"
cache_size = 16
`), 0o644))

	settings, used, err := Load(context.Background(), fs, LoadOptions{Dir: "/project"})
	require.NoError(t, err)

	assert.Equal(t, "/project/.annotate.toml", used)
	assert.Equal(t, "tasks/annotate.toml", settings.TaskFile)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, "cel", settings.Guard.Engine)
	assert.Equal(t, 16, settings.Guard.CacheSize)
	assert.Equal(t, []string{"/project/.env", "/project/.env.local"}, settings.DotenvPaths("/project"))

	raw := settings.RawOptions()
	assert.Equal(t, true, raw["show_indexes"])
	assert.Equal(t, "after", raw["position"])

	snapshot := annotate.SnapshotFromRaw(raw)
	assert.Equal(t, "app/models,lib/models", snapshot[annotate.ModelDir])

	host := settings.HostFor("/project", nil)
	require.True(t, host.Present())
	assert.Equal(t, 2, host.MajorVersion())
	assert.Equal(t, []string{"/project/app", "/abs/lib"}, host.EagerLoadPaths())
}

func TestLoadExplicitFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/annotate.yaml", []byte("task_file: Custom.toml\n"), 0o644))

	settings, used, err := Load(context.Background(), fs, LoadOptions{File: "/etc/annotate.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/annotate.yaml", used)
	assert.Equal(t, "Custom.toml", settings.TaskFile)

	_, _, err = Load(context.Background(), fs, LoadOptions{File: "/missing.toml"})
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("ANNOTATE_LOG_LEVEL", "warn")
	t.Setenv("ANNOTATE_GUARD_ENGINE", "expr")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/.annotate.toml", []byte("[log]\nlevel = \"error\"\n[guard]\nengine = \"cel\"\n"), 0o644))

	settings, _, err := Load(context.Background(), fs, LoadOptions{Dir: "/p"})
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.Log.Level)
	assert.Equal(t, "expr", settings.Guard.Engine)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/.annotate.toml", []byte("[guard]\nengine = \"lua\"\n"), 0o644))

	_, _, err := Load(context.Background(), fs, LoadOptions{Dir: "/p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Load(ctx, afero.NewMemMapFs(), LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
