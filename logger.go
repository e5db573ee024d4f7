package annotate

// Logger is the structured logger the runtime reports through. It matches
// the method set of github.com/charmbracelet/log.Logger.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// NopLogger discards everything. It is the default wherever a Logger is
// optional.
type NopLogger struct{}

func (NopLogger) Debug(any, ...any) {}
func (NopLogger) Info(any, ...any)  {}
func (NopLogger) Warn(any, ...any)  {}
func (NopLogger) Error(any, ...any) {}
