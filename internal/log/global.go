package log

import "sync"

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// SetDefaultLogger installs the process-wide default logger. The CLI calls
// this once after reading config; libraries only read it.
func SetDefaultLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// DefaultLogger returns the process-wide default logger, initializing one
// with standard defaults if none was configured yet.
func DefaultLogger() *Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()

	if logger != nil {
		return logger
	}

	logger = Default()
	SetDefaultLogger(logger)
	return logger
}
