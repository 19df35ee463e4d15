// Package logger provides structured logging backed by zerolog.
//
// It supports console and JSON output, level configuration, and
// component-scoped loggers with map-based structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("sse-session")
//	log.Info("stream opened", logger.Fields("url", u))
package logger
