// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers, and request-id propagation through context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("poller")
//	log.Debug("status checked", logger.Fields("job_id", id, "state", "pending"))
package logger
