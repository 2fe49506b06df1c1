package logger

import (
	"context"
	"fmt"

	"emojiscraper/pkg/models"

	"github.com/rs/zerolog"
)

// RegisteredMessage renders the line printed for every newly collected emoji.
func RegisteredMessage(rec models.EmojiRecord) string {
	return fmt.Sprintf(`Registered emoji "%s" of server "%s"`, rec.Name, rec.Server)
}

// LogRegistered logs a newly collected emoji
func LogRegistered(l Logger, rec models.EmojiRecord) {
	l.InfoWithFields(RegisteredMessage(rec), map[string]interface{}{
		"emoji_id": rec.ID,
	})
}

// LogScanFailure logs a scan invocation that aborted
func LogScanFailure(l Logger, err error, registered int) {
	l.WithError(err).ErrorWithFields("Scan aborted", map[string]interface{}{
		"registered_before_failure": registered,
	})
}

// LogDownload logs one emoji image download outcome
func LogDownload(l Logger, emojiID, server string, skipped bool, err error) {
	entry := l.WithFields(map[string]interface{}{
		"emoji_id": emojiID,
		"server":   server,
	})

	switch {
	case err != nil:
		entry.WithError(err).Error("Download failed")
	case skipped:
		entry.Debug("Download skipped, image already present")
	default:
		entry.Debug("Download completed")
	}
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(settings) > 0 {
		entry = entry.WithFields(settings)
	}
	entry.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, reason string) {
	l.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
