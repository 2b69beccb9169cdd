// Package logger provides structured logging for edlflash using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("process")
//	log.Info("tool finished", logger.Fields("run_id", id))
package logger
