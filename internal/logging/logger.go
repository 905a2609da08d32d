package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "OOKBRIDGE_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks OOKBRIDGE_LOG_LEVEL environment variable.
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

// InitializeFromEnv initializes the logger from the OOKBRIDGE_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer cores.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
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

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogConnection logs a feed client connection event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogFrame logs an assembled byte frame at debug level
func LogFrame(protocol string, data []byte) {
	Debug("Frame assembled",
		zap.String("protocol", protocol),
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
	)
}

// LogBits logs a one-byte-per-bit frame at debug level
func LogBits(protocol string, bits []uint8) {
	Debug("Frame assembled",
		zap.String("protocol", protocol),
		zap.Int("bits", len(bits)),
		zap.String("bitstring", bitString(bits)),
	)
}

// LogReading logs one accepted sensor value
func LogReading(protocol string, deviceID int, metric string, value string) {
	Info("Reading decoded",
		zap.String("protocol", protocol),
		zap.Int("device_id", deviceID),
		zap.String("metric", metric),
		zap.String("value", value),
	)
}

// LogRejection logs a decode attempt that produced no reading. Timeouts are
// routine and only visible at debug level.
func LogRejection(protocol string, kind string, err error) {
	fields := []zap.Field{
		zap.String("protocol", protocol),
		zap.String("kind", kind),
		zap.Error(err),
	}
	if kind == "timeout" {
		Debug("No sync found", fields...)
		return
	}
	Info("Frame rejected", fields...)
}

// LogPublish logs the outcome of one publish call
func LogPublish(sink string, topic string, payload string, err error) {
	if err != nil {
		Warn("Publish failed",
			zap.String("sink", sink),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}
	Debug("Published",
		zap.String("sink", sink),
		zap.String("topic", topic),
		zap.String("payload", payload),
	)
}

func hexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) > 256 {
		return hex.EncodeToString(data[:256]) + "..."
	}
	return hex.EncodeToString(data)
}

// bitString renders bits in groups of four, e.g. "0100 0000 1010".
func bitString(bits []uint8) string {
	var b strings.Builder
	for i, bit := range bits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		if bit != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
