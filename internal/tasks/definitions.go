package tasks

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// DefinitionExt is the extension of task definition files.
const DefinitionExt = ".toml"

// Definitions holds the built-in task definition files.
//
//go:embed definitions/*.toml
var Definitions embed.FS

// DefinitionsDir is the directory of Definitions holding the files.
const DefinitionsDir = "definitions"

// ErrInvalidDefinition reports a task file that failed to parse or validate.
var ErrInvalidDefinition = errors.New("tasks: invalid task definition")

var validate = validator.New()

// File is the decoded form of a task definition file.
type File struct {
	Tasks []Definition `toml:"task" validate:"dive"`
}

// Definition declares one task.
type Definition struct {
	Name          string   `toml:"name" validate:"required"`
	Description   string   `toml:"description"`
	Prerequisites []string `toml:"prerequisites" validate:"dive,required"`
	Action        string   `toml:"action"`
	When          string   `toml:"when"`
}

// Task converts the definition into a Task declared in source.
func (d Definition) Task(source string) Task {
	return Task{
		Name:          strings.TrimSpace(d.Name),
		Description:   d.Description,
		Prerequisites: append([]string(nil), d.Prerequisites...),
		Action:        strings.TrimSpace(d.Action),
		When:          d.When,
		Source:        source,
	}
}

// Parse decodes and validates a task definition file.
func Parse(data []byte, source string) (File, error) {
	var file File
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return File{}, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, source, err)
	}
	if err := validate.Struct(file); err != nil {
		return File{}, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, source, err)
	}
	return file, nil
}

// Load parses data and defines every task it declares.
func (r *Runner) Load(data []byte, source string) error {
	file, err := Parse(data, source)
	if err != nil {
		return err
	}
	for _, def := range file.Tasks {
		if err := r.Define(def.Task(source)); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	r.logger.Debug("task file loaded", "source", source, "tasks", len(file.Tasks))
	return nil
}

// LoadFile loads the task file at name from fsys.
func (r *Runner) LoadFile(fsys afero.Fs, name string) error {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("tasks: read %s: %w", name, err)
	}
	return r.Load(data, name)
}

// LoadFS loads every definition file beneath dir in fsys in walk order.
func (r *Runner) LoadFS(fsys fs.FS, dir string) error {
	return fs.WalkDir(fsys, dir, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || path.Ext(name) != DefinitionExt {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("tasks: read %s: %w", name, err)
		}
		return r.Load(data, name)
	})
}

// LoadBuiltins loads the embedded Definitions.
func (r *Runner) LoadBuiltins() error {
	return r.LoadFS(Definitions, DefinitionsDir)
}
