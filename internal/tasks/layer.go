package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefinitionExitStatus is the exit status for a definition layer failure
// (EX_CONFIG).
const DefinitionExitStatus = 78

// DefinitionError reports a definition source that could not be read or
// validated.
type DefinitionError struct {
	Source string
	Err    error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("tasks: definition layer %s: %v", e.Source, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// StatusCode reports DefinitionExitStatus.
func (e *DefinitionError) StatusCode() int { return DefinitionExitStatus }

// DefinitionLayer returns a check that parses the embedded Definitions and
// every definition file beneath dirs in fsys without defining any task.
// Every dir must exist.
func DefinitionLayer(fsys afero.Fs, dirs ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		err := fs.WalkDir(Definitions, DefinitionsDir, func(name string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() || path.Ext(name) != DefinitionExt {
				return nil
			}
			data, err := fs.ReadFile(Definitions, name)
			if err != nil {
				return err
			}
			_, err = Parse(data, name)
			return err
		})
		if err != nil {
			return &DefinitionError{Source: DefinitionsDir, Err: err}
		}
		for _, dir := range dirs {
			if err := ctx.Err(); err != nil {
				return err
			}
			files, err := definitionFiles(fsys, dir)
			if err != nil {
				return &DefinitionError{Source: dir, Err: err}
			}
			for _, file := range files {
				data, err := afero.ReadFile(fsys, file)
				if err != nil {
					return &DefinitionError{Source: file, Err: err}
				}
				if _, err := Parse(data, file); err != nil {
					return &DefinitionError{Source: file, Err: err}
				}
			}
		}
		return nil
	}
}

// LoadDir loads every definition file beneath dir in fsys in lexical order.
func (r *Runner) LoadDir(fsys afero.Fs, dir string) error {
	files, err := definitionFiles(fsys, dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := r.LoadFile(fsys, file); err != nil {
			return err
		}
	}
	return nil
}

func definitionFiles(fsys afero.Fs, dir string) ([]string, error) {
	ok, err := afero.DirExists(fsys, dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("directory %s: %w", dir, fs.ErrNotExist)
	}
	var files []string
	err = afero.Walk(fsys, dir, func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(name) == DefinitionExt {
			files = append(files, name)
		}
		return nil
	})
	return files, err
}
