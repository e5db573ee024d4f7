package annotate

import (
	"github.com/goliatone/go-annotate/pkg/activity"
	"github.com/goliatone/go-annotate/pkg/envstore"
)

// State tracks whether caller defaults have been materialized.
type State int

const (
	// StateUninitialized accepts one SetDefaults call.
	StateUninitialized State = iota
	// StateInitialized is terminal; SetDefaults becomes a no-op.
	StateInitialized
)

func (s State) String() string {
	if s == StateInitialized {
		return "initialized"
	}
	return "uninitialized"
}

// Environment keys consulted outside the option registry.
const (
	EnvSkipOnDBMigrate = "ANNOTATE_SKIP_ON_DB_MIGRATE"
)

// Runtime is the explicit context that owns the option store, the
// materialization state and the layer stack used for provenance. Runtimes
// are not safe for concurrent mutation.
type Runtime struct {
	store   envstore.Store
	dotenv  map[string]string
	logger  Logger
	hooks   activity.Hooks
	emitter *activity.Emitter
	actorID string

	state State
	stack *Stack
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithStore replaces the process environment with store.
func WithStore(store envstore.Store) RuntimeOption {
	return func(r *Runtime) {
		if store != nil {
			r.store = store
		}
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDotenv supplies values read from dotenv files. They rank above caller
// defaults and below the store's own values.
func WithDotenv(values map[string]string) RuntimeOption {
	return func(r *Runtime) {
		if len(values) == 0 {
			return
		}
		r.dotenv = make(map[string]string, len(values))
		for key, value := range values {
			r.dotenv[key] = value
		}
	}
}

// WithActorID tags emitted activity with an actor identifier.
func WithActorID(id string) RuntimeOption {
	return func(r *Runtime) {
		r.actorID = id
	}
}

// NewRuntime builds a runtime backed by the process environment unless
// WithStore is given.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		store:  envstore.OS(),
		logger: NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.emitter = activity.NewEmitter(r.hooks, activity.Config{
		Enabled: r.hooks.Enabled(),
		ActorID: r.actorID,
	})
	return r
}

// State reports the materialization state.
func (r *Runtime) State() State {
	return r.state
}

// Store exposes the backing store.
func (r *Runtime) Store() envstore.Store {
	return r.store
}

// RunID identifies this runtime on emitted activity events.
func (r *Runtime) RunID() string {
	return r.emitter.RunID()
}

// SetupOptions resolves the options currently held by the store.
func (r *Runtime) SetupOptions() ResolvedOptions {
	return Resolve(SnapshotFromStore(r.store))
}

// Stack returns the layer stack captured by the last materialization or
// override, or a stack holding only the store's values.
func (r *Runtime) Stack() *Stack {
	if r.stack != nil {
		return r.stack
	}
	stack, err := NewConfigBuilder().Environment(r.store).Build()
	if err != nil {
		r.logger.Warn("environment stack", "err", err)
		return &Stack{}
	}
	return stack
}

// Trace reports which layer supplied key.
func (r *Runtime) Trace(key Key) Trace {
	return r.Stack().Trace(key)
}

// SkipOnMigration reports whether the migration hook should skip
// annotation. Either environment key holding a true value is enough.
func (r *Runtime) SkipOnMigration() bool {
	for _, name := range []string{EnvSkipOnDBMigrate, string(SkipOnDBMigrate)} {
		if value, ok := r.store.Lookup(name); ok && Truthy(value) {
			return true
		}
	}
	return false
}

// IncludeRoutes reports whether route annotation is enabled.
func (r *Runtime) IncludeRoutes() bool {
	value, _ := r.store.Lookup(string(Routes))
	return Truthy(value)
}

// IncludeModels reports whether model annotation is enabled.
func (r *Runtime) IncludeModels() bool {
	value, _ := r.store.Lookup(string(Models))
	return Truthy(value)
}

// Emitter exposes the runtime's activity emitter so collaborators share
// its run ID.
func (r *Runtime) Emitter() *activity.Emitter {
	return r.emitter
}
