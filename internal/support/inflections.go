// Package support provides the inflection helpers loaded when no host
// application supplies its own. They are exposed to task guards through the
// function registry.
package support

import (
	"fmt"
	"path"
	"strings"

	annotate "github.com/goliatone/go-annotate"
	"github.com/stoewer/go-strcase"
)

// NamespaceSeparator joins namespaced constant names.
const NamespaceSeparator = "::"

// Underscore turns a namespaced constant name into a path:
// "Admin::UserRole" becomes "admin/user_role".
func Underscore(name string) string {
	parts := strings.Split(strings.TrimSpace(name), NamespaceSeparator)
	for i, part := range parts {
		parts[i] = strcase.SnakeCase(part)
	}
	return strings.Join(parts, "/")
}

// Camelize turns a path into a namespaced constant name:
// "admin/user_role" becomes "Admin::UserRole".
func Camelize(name string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(name), "/"), "/")
	for i, part := range parts {
		parts[i] = strcase.UpperCamelCase(part)
	}
	return strings.Join(parts, NamespaceSeparator)
}

// Demodulize drops the namespace: "Admin::UserRole" becomes "UserRole".
func Demodulize(name string) string {
	if i := strings.LastIndex(name, NamespaceSeparator); i >= 0 {
		return name[i+len(NamespaceSeparator):]
	}
	return name
}

// ClassifyPath maps a source path relative to a model directory to the
// constant it defines: "admin/user_role.rb" becomes "Admin::UserRole".
func ClassifyPath(file string) string {
	file = path.Clean(strings.ReplaceAll(file, "\\", "/"))
	return Camelize(strings.TrimSuffix(file, path.Ext(file)))
}

// Functions returns the helpers keyed by the name guards call them by.
func Functions() map[string]annotate.Function {
	return map[string]annotate.Function{
		"underscore": stringFunction(Underscore),
		"camelize":   stringFunction(Camelize),
		"demodulize": stringFunction(Demodulize),
		"classify":   stringFunction(ClassifyPath),
	}
}

// Register adds the helpers to registry. It stops at the first name that is
// already registered.
func Register(registry *annotate.FunctionRegistry) error {
	if registry == nil {
		return fmt.Errorf("support: function registry is nil")
	}
	for _, name := range []string{"underscore", "camelize", "demodulize", "classify"} {
		if err := registry.Register(name, Functions()[name]); err != nil {
			return fmt.Errorf("support: %w", err)
		}
	}
	return nil
}

func stringFunction(fn func(string) string) annotate.Function {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("support: expected 1 argument, got %d", len(args))
		}
		switch v := args[0].(type) {
		case nil:
			return "", nil
		case string:
			return fn(v), nil
		default:
			return fn(fmt.Sprint(v)), nil
		}
	}
}
