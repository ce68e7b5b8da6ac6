package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "ROUTERCTL_LOG_LEVEL"

// maxBodyLog caps how much of a response body is written to the log
const maxBodyLog = 512

// Initialize creates a new logger with the specified level.
// If level is empty, it checks ROUTERCTL_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the ROUTERCTL_LOG_LEVEL
// environment variable. Commands stay silent unless the variable is set.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogSOAPRequest logs an outgoing SOAP call
func LogSOAPRequest(l *zap.Logger, url, action string, bodyLen int) {
	l.Debug("SOAP request",
		zap.String("url", url),
		zap.String("action", action),
		zap.Int("length", bodyLen),
	)
}

// LogSOAPResponse logs a received SOAP response
func LogSOAPResponse(l *zap.Logger, action string, statusCode int, body string) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.Int("status_code", statusCode),
		zap.Int("length", len(body)),
	}

	if l.Core().Enabled(zapcore.DebugLevel) {
		fields = append(fields, zap.String("body", PrintableBody(body)))
	}

	l.Debug("SOAP response", fields...)
}

// LogInvalidResponse logs a response that failed validation.
// The body is truncated and made printable.
func LogInvalidResponse(l *zap.Logger, action string, statusCode int, responseCode string, body string) {
	l.Warn("Invalid router response",
		zap.String("action", action),
		zap.Int("status_code", statusCode),
		zap.String("response_code", responseCode),
		zap.String("body", PrintableBody(body)),
	)
}

// LogSessionTransition logs a change of authentication state
func LogSessionTransition(l *zap.Logger, host string, from, to string, reason string) {
	l.Info("Session state changed",
		zap.String("host", host),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("reason", reason),
	)
}

// PrintableBody returns body limited to the first 512 bytes with
// non-printable characters replaced by '.'.
func PrintableBody(body string) string {
	if len(body) == 0 {
		return ""
	}

	data := []byte(body)
	truncated := false
	if len(data) > maxBodyLog {
		data = data[:maxBodyLog]
		truncated = true
	}

	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}

	if truncated {
		return string(result) + "..."
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
