// Package logging provides structured logging for gxdccpp.
//
// It wraps log/slog so that every component logs through the same handler
// with the same default fields.
//
// Logging is configured via the logging section of the configuration file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	portLogger := logger.With("component", "port")
//	portLogger.Info("port opened", "port", "/dev/ttyACM0")
package logging
