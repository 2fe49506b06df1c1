package models

import (
	"errors"
	"fmt"
)

// EmojiRecord is one custom emoji discovered on the page.
type EmojiRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Server string `json:"server"`
}

// EmojiData is the layout of emoji-data.json. Servers come first.
type EmojiData struct {
	Servers []string      `json:"servers"`
	Emojis  []EmojiRecord `json:"emojis"`
}

// Artifact is a named blob handed to a deliverer.
type Artifact struct {
	Name     string
	MIMEType string
	Data     []byte
}

const (
	// ExportFileName is the file the collector writes.
	ExportFileName = "emoji-data.json"
	// ExportMIMEType is the content type of the export.
	ExportMIMEType = "application/json"
)

// ValidateEmojiID rejects ids that are not a plain token of letters, digits,
// '_' or '-'. Ids become file names and URL path segments.
func ValidateEmojiID(id string) error {
	if id == "" {
		return errors.New("empty emoji id")
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
		default:
			return fmt.Errorf("invalid emoji id %q", id)
		}
	}
	return nil
}
