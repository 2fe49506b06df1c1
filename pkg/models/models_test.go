package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmojiID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"1133507195453337670", false},
		{"abc_DEF-9", false},
		{"", true},
		{"..", true},
		{"../../x", true},
		{"a/b", true},
		{`a\b`, true},
		{"a b", true},
		{"a.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateEmojiID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
