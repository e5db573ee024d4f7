package annotate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by lowercase name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// DefaultFunctionRegistry returns a registry holding the option helpers:
// truthy(v), blank(v), present(v) and csv(v).
func DefaultFunctionRegistry() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("truthy", unaryString(func(value string) any { return Truthy(value) }))
	_ = registry.Register("blank", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("annotate: blank expects 1 argument, got %d", len(args))
		}
		return !present(args[0]), nil
	})
	_ = registry.Register("present", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("annotate: present expects 1 argument, got %d", len(args))
		}
		return present(args[0]), nil
	})
	_ = registry.Register("csv", unaryString(func(value string) any {
		if blank(value) {
			return []string{}
		}
		return strings.Split(value, ",")
	}))
	return registry
}

func unaryString(fn func(string) any) Function {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("annotate: expected 1 argument, got %d", len(args))
		}
		switch v := args[0].(type) {
		case nil:
			return fn(""), nil
		case string:
			return fn(v), nil
		default:
			return fn(fmt.Sprint(v)), nil
		}
	}
}

func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return !blank(v)
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case bool:
		return v
	default:
		return true
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("annotate: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("annotate: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("annotate: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("annotate: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("annotate: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry replaces the guard's registry with a copy of registry.
func WithFunctionRegistry(registry *FunctionRegistry) GuardOption {
	return func(g *Guard) {
		if registry == nil {
			return
		}
		g.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name on the guard's registry.
func WithCustomFunction(name string, fn Function) GuardOption {
	return func(g *Guard) {
		if g.functions == nil {
			g.functions = DefaultFunctionRegistry()
		}
		_ = g.functions.Register(name, fn)
	}
}
