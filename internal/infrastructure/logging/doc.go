// Package logging provides structured logging for Smart Home Core.
//
// It wraps log/slog so every component logs with the same handler, level
// filtering, and default fields (service, version).
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.With("component", "reconcile").Warn("no grid values", "start", start)
//
// Never log secrets, tokens or passwords.
package logging
