package annotate

import "github.com/goliatone/go-annotate/pkg/activity"

// WithActivityHooks attaches activity hooks to the runtime. Nil entries are
// dropped and the slice is copied.
func WithActivityHooks(hooks activity.Hooks) RuntimeOption {
	normalized := hooks.Compact()
	return func(r *Runtime) {
		r.hooks = normalized
	}
}

// ActivityHooks returns a copy of the hooks configured on the runtime.
func (r *Runtime) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return r.hooks.Compact()
}
