// Package log provides the structured logger used across the wallet client.
//
// Components never reach for a global logger: they are handed a Logger at
// construction time (or pull one from a context with FromContext) and derive
// named children from it:
//
//	lg := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	adapterLg := lg.WithName("rpc").WithKV("endpoint", "http://127.0.0.1:20102/")
//	adapterLg.Info("request created", "method", "getbalance")
//
// Implementations:
//
//   - ZapLogger writes console, logfmt or json entries through zap.
//   - NoopLogger discards everything; it is what FromContext returns when the
//     context carries no logger.
//   - SpanLogger forwards every entry to a wrapped logger and records it on an
//     OpenTelemetry span. SetContextLogger installs it automatically when the
//     context already holds a valid span, so each RPC call's log lines show up
//     on that call's span.
//
// Config is read from the environment by the CLI:
//
//   - LOG_FORMAT: console, logfmt or json
//   - LOG_LEVEL: debug, info, warn, error or fatal
//   - LOG_OUTPUT: stderr, stdout or a file path
package log
