package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// InitializeLogger initializes the global logger.
func InitializeLogger() {
	env := os.Getenv("ENV")
	var err error
	var logger *zap.Logger
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	Logger = logger
}

// Close flushes any buffered log entries.
func Close() {
	_ = Logger.Sync()
}

// L returns the global logger, initializing it on first use.
func L() *zap.Logger {
	if Logger == nil {
		InitializeLogger()
	}
	return Logger
}

// Global logging methods to avoid `logger.Logger` repetition

func Info(msg string, args ...zapcore.Field) {
	L().Info(msg, args...)
}

func Warn(msg string, args ...zapcore.Field) {
	L().Warn(msg, args...)
}

func Error(msg string, args ...zapcore.Field) {
	L().Error(msg, args...)
}

func Fatal(msg string, args ...zapcore.Field) {
	L().Fatal(msg, args...)
}

func Debug(msg string, args ...zapcore.Field) {
	L().Debug(msg, args...)
}
