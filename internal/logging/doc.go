// Package logging provides structured logging for the bridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the bridge: decode cycle diagnostics, frame dumps,
// publish results and feed client connections.
//
// # Log Levels
//
//   - Debug: Frame dumps, rejected cycles, every published message
//   - Info: Startup, connections, accepted readings
//   - Warn: Publish failures, dropped feed clients
//   - Error: Source failures, startup errors
//
// Rejected frames are routine on a noisy 433 MHz band, so they are only
// logged at debug level.
//
// # Structured Logging
//
//	logging.Info("Reading decoded",
//	    zap.String("protocol", "raingauge"),
//	    zap.Int("device_id", 0x1234),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// When no level is given the OOKBRIDGE_LOG_LEVEL environment variable is
// consulted; if that is empty too, logging is silent.
//
// Logs go to stderr so that command output on stdout stays parseable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
