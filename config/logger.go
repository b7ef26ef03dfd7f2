package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

// InitLogger builds the process-wide Zap logger at the given level.
// Unknown level strings fall back to info.
func InitLogger(logLevelStr string) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(logLevelStr)))
	if err != nil {
		level = zap.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	globalLogger = logger
	return logger, nil
}

// Cleanup flushes any buffered log entries.
func Cleanup() {
	if globalLogger != nil {
		globalLogger.Sync()
	}
}
