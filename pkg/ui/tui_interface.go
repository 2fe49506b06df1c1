package ui

import "emojiscraper/pkg/models"

// TUI is an interface for terminal user interfaces following a collection run
type TUI interface {
	Registered(rec models.EmojiRecord)
	ScanFailed(err error)
	Saved(fileName string, servers, emojis, size int)
	SaveFailed(err error)
	LogInfo(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
}
