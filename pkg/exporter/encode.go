package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"emojiscraper/pkg/models"
)

// Indent is the indentation of the exported JSON.
const Indent = "  "

// Marshal renders data as emoji-data.json: servers before emojis, two-space
// indentation, no HTML escaping, no trailing newline, ASCII only.
func Marshal(data models.EmojiData) ([]byte, error) {
	clean := models.EmojiData{
		Servers: make([]string, 0, len(data.Servers)),
		Emojis:  make([]models.EmojiRecord, 0, len(data.Emojis)),
	}
	for _, s := range data.Servers {
		clean.Servers = append(clean.Servers, ScrubString(s))
	}
	for _, e := range data.Emojis {
		clean.Emojis = append(clean.Emojis, models.EmojiRecord{
			ID:     ScrubString(e.ID),
			Name:   ScrubString(e.Name),
			Server: ScrubString(e.Server),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(clean); err != nil {
		return nil, fmt.Errorf("failed to encode emoji data: %w", err)
	}

	return Scrub(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Scrub replaces every character outside ASCII with a single ".". Each
// invalid UTF-8 byte counts as one character.
func Scrub(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		if b[0] < utf8.RuneSelf {
			out = append(out, b[0])
			b = b[1:]
			continue
		}
		_, size := utf8.DecodeRune(b)
		out = append(out, '.')
		b = b[size:]
	}
	return out
}

// ScrubString is Scrub for strings.
func ScrubString(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return string(Scrub([]byte(s)))
		}
	}
	return s
}

// Unmarshal parses an emoji-data.json document.
func Unmarshal(data []byte) (models.EmojiData, error) {
	var out models.EmojiData
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return models.EmojiData{}, fmt.Errorf("failed to decode emoji data: %w", err)
	}
	if out.Servers == nil {
		out.Servers = []string{}
	}
	if out.Emojis == nil {
		out.Emojis = []models.EmojiRecord{}
	}
	return out, nil
}
