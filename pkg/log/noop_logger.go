package log

var _ Logger = NoopLogger{}

// NoopLogger discards all entries.
type NoopLogger struct{}

// NewNoopLogger returns a Logger that discards all entries.
func NewNoopLogger() Logger {
	return NoopLogger{}
}

func (n NoopLogger) Debug(string, ...any)      {}
func (n NoopLogger) Info(string, ...any)       {}
func (n NoopLogger) Warn(string, ...any)       {}
func (n NoopLogger) Error(string, ...any)      {}
func (n NoopLogger) Fatal(string, ...any)      {}
func (n NoopLogger) WithKV(string, any) Logger { return n }
func (n NoopLogger) GetAllKV() []any           { return []any{} }
func (n NoopLogger) WithName(string) Logger    { return n }
func (n NoopLogger) Name() string              { return "noop" }
func (n NoopLogger) AddCallerSkip(int) Logger  { return n }
