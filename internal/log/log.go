package log

import "sync/atomic"

// Logger behind the package level functions.  Unset means logging is silently dropped, which is what tests rely on.
var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger installs the logger used by the package level functions.  nil turns them into no-ops.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// DefaultLogger returns the current default logger, or nil
func DefaultLogger() *Logger {
	return defaultLogger.Load()
}

func Debug(msg string, args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.Error(msg, args...)
	}
}

// Trace logs at debug level, and only when the default logger has trace enabled
func Trace(msg string, args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.Trace(msg, args...)
	}
}
