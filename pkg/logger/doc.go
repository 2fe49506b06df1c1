// Package logger provides a structured logging interface for the emoji scraper.
//
// It wraps zerolog with:
//   - leveled methods (Debug, Info, Warn, Error, Fatal)
//   - child loggers carrying fields (WithField, WithFields, WithError)
//   - colored console output, optionally mirrored to a file
//   - a global instance for command wiring
//
// Usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("selector", cfg.Scan.Selector).Info("Collector starting")
//
// Components take a Logger in their constructors; tests pass NewTestLogger
// or NewNopLogger.
package logger
