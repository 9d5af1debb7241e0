package util

import (
	"sync"
)

var (
	globalLogger LoggerInterface = discardLogger()
	loggerMu     sync.RWMutex
	loggerOnce   sync.Once
)

func discardLogger() *Logger {
	return &Logger{core: &loggerCore{level: LevelError}}
}

// InitLogger initializes the global logger once. Later calls are no-ops.
func InitLogger(logLevel, logFile string, debugToConsole bool) error {
	var err error
	loggerOnce.Do(func() {
		var logger *Logger
		logger, err = NewLogger(logLevel, logFile, debugToConsole)
		if err == nil {
			SetLogger(logger)
		}
	})
	return err
}

// SetLogger replaces the global logger
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = discardLogger()
	}
	globalLogger = logger
}

// GetLogger returns the global logger
func GetLogger() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// Named returns a component logger derived from the global one
func Named(component string) LoggerInterface {
	return GetLogger().Named(component)
}

func LogInfo(msg string, fields ...Field)  { GetLogger().Info(msg, fields...) }
func LogDebug(msg string, fields ...Field) { GetLogger().Debug(msg, fields...) }
func LogWarn(msg string, fields ...Field)  { GetLogger().Warn(msg, fields...) }
func LogError(msg string, fields ...Field) { GetLogger().Error(msg, fields...) }

func LogInfof(format string, args ...any)  { GetLogger().Infof(format, args...) }
func LogDebugf(format string, args ...any) { GetLogger().Debugf(format, args...) }
func LogWarnf(format string, args ...any)  { GetLogger().Warnf(format, args...) }
func LogErrorf(format string, args ...any) { GetLogger().Errorf(format, args...) }
