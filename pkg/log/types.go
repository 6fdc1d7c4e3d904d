package log

// Logger is the leveled, structured logger every component of the client
// receives. keysAndValues are alternating key/value pairs ("method", m, ...).
type Logger interface {
	// Debug logs wire-level detail such as raw request and response bodies.
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress, e.g. a request envelope being created.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected but recoverable situations, e.g. a failed guard.
	Warn(msg string, keysAndValues ...any)
	// Error logs failures surfaced to the caller, e.g. an unreachable daemon.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure and may terminate the program.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that adds the pair to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the pairs added through WithKV.
	GetAllKV() []any
	// WithName returns a child logger; names nest with dots ("vergecli.rpc").
	WithName(name string) Logger
	// Name returns the logger's full name.
	Name() string
	// AddCallerSkip returns a logger that reports the caller skip frames
	// further up the stack. Implementations without caller info return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SpanEventRecorder receives log entries as events on a trace span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string

	// RecordEvent adds a plain event to the span.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds an event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
