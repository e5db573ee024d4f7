// Package config loads annotate settings from an optional settings file and
// ANNOTATE_ prefixed environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	annotate "github.com/goliatone/go-annotate"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Defaults applied before the settings file and environment.
const (
	FileName         = ".annotate"
	EnvPrefix        = "ANNOTATE"
	DefaultTaskFile  = "Taskfile.toml"
	DefaultDotenv    = ".env"
	DefaultLogLevel  = "info"
	DefaultEngine    = annotate.EngineExpr
	DefaultCacheSize = annotate.DefaultProgramCacheSize
)

// Settings holds everything the CLI needs besides the options themselves.
type Settings struct {
	// Options are the caller defaults handed to set_annotation_options.
	Options  map[string]any `mapstructure:"options"`
	Host     HostSettings   `mapstructure:"host"`
	Dotenv   []string       `mapstructure:"dotenv"`
	TaskFile string         `mapstructure:"task_file" validate:"required"`
	// Definitions lists extra task definition directories.
	Definitions []string      `mapstructure:"definitions"`
	Log         LogSettings   `mapstructure:"log"`
	Guard       GuardSettings `mapstructure:"guard"`
}

// HostSettings describes the host framework. A zero version means no host.
type HostSettings struct {
	Version        int      `mapstructure:"version" validate:"gte=0"`
	EagerLoadPaths []string `mapstructure:"eager_load_paths"`
}

// LogSettings controls CLI logging.
type LogSettings struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error fatal"`
}

// GuardSettings selects the task guard engine.
type GuardSettings struct {
	Engine    string `mapstructure:"engine" validate:"oneof=expr cel js"`
	CacheSize int    `mapstructure:"cache_size" validate:"gte=0"`
}

// LoadOptions points the loader at a settings file or directory.
type LoadOptions struct {
	// File is used exclusively when set and must exist.
	File string
	// Dir is searched for .annotate.{toml,yaml,yml,json} when File is empty.
	Dir string
}

// ErrFileNotFound is returned when an explicit settings file is missing.
var ErrFileNotFound = errors.New("config: settings file not found")

var validate = validator.New()

// Load reads settings through fs. It returns the settings and the path of
// the file used, which is empty when only defaults and environment applied.
func Load(ctx context.Context, fs afero.Fs, opts LoadOptions) (*Settings, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("config: load canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetFs(fs)

	v.SetDefault("options", map[string]any{})
	v.SetDefault("host.version", 0)
	v.SetDefault("host.eager_load_paths", []string{})
	v.SetDefault("dotenv", []string{DefaultDotenv})
	v.SetDefault("task_file", DefaultTaskFile)
	v.SetDefault("definitions", []string{})
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("guard.engine", DefaultEngine)
	v.SetDefault("guard.cache_size", DefaultCacheSize)

	used := ""
	if opts.File != "" {
		if ok, _ := afero.Exists(fs, opts.File); !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrFileNotFound, opts.File)
		}
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("config: read %s: %w", opts.File, err)
		}
		used = opts.File
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, "", fmt.Errorf("config: read settings: %w", err)
			}
		} else {
			used = v.ConfigFileUsed()
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, "", fmt.Errorf("config: decode settings: %w", err)
	}
	settings.Log.Level = strings.ToLower(strings.TrimSpace(settings.Log.Level))
	settings.Guard.Engine = strings.ToLower(strings.TrimSpace(settings.Guard.Engine))

	if err := validate.Struct(&settings); err != nil {
		return nil, "", fmt.Errorf("config: invalid settings: %w", err)
	}
	return &settings, used, nil
}

// RawOptions returns the configured caller defaults.
func (s *Settings) RawOptions() annotate.RawOptions {
	out := make(annotate.RawOptions, len(s.Options))
	for key, value := range s.Options {
		out[key] = value
	}
	return out
}

// HostFor builds the host capability, resolving eager-load paths against
// root. eagerLoad backs the modern strategy's delegated call.
func (s *Settings) HostFor(root string, eagerLoad func(ctx context.Context) error) annotate.Host {
	if s.Host.Version <= 0 {
		return annotate.NoHost{}
	}
	paths := make([]string, 0, len(s.Host.EagerLoadPaths))
	for _, path := range s.Host.EagerLoadPaths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		paths = append(paths, path)
	}
	return annotate.StaticHost{
		Version:       s.Host.Version,
		Paths:         paths,
		EagerLoadFunc: eagerLoad,
	}
}

// DotenvPaths resolves the configured dotenv files against root.
func (s *Settings) DotenvPaths(root string) []string {
	return resolvePaths(root, s.Dotenv)
}

// DefinitionDirs resolves the configured task definition directories
// against root.
func (s *Settings) DefinitionDirs(root string) []string {
	return resolvePaths(root, s.Definitions)
}

func resolvePaths(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		out = append(out, path)
	}
	return out
}
