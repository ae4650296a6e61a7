package interfaces

// Logger defines a generic structured logging interface. keyvals are
// alternating keys and values.
type Logger interface {
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	Debug(msg string, keyvals ...interface{})
	SetLevel(level string)
	// With returns a child logger that adds keyvals to every entry.
	With(keyvals ...interface{}) Logger
}
