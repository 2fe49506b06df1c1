package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExtractor(t *testing.T) {
	tests := []struct {
		label  string
		server string
		ok     bool
	}{
		{":joy: from Alpha", "Alpha", true},
		{":x: from Beta Server", "Beta Server", true},
		{":a: from b: from c", "b: from c", true},
		{":: from Empty Name", "Empty Name", true},
		{":joy: from ", "", true},
		{"joy from Alpha", "", false},
		{":joy:", "", false},
		{"", "", false},
		{"prefix :joy: from Alpha", "", false},
	}

	e := DefaultExtractor()
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			server, ok := e.Extract(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.server, server)
		})
	}
}

func TestNewPatternExtractor(t *testing.T) {
	e, err := NewPatternExtractor(`^(.+) emoji$`)
	require.NoError(t, err)
	server, ok := e.Extract("Alpha emoji")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", server)
	assert.Equal(t, `^(.+) emoji$`, e.String())

	_, err = NewPatternExtractor(`(`)
	assert.Error(t, err)

	_, err = NewPatternExtractor(`no groups`)
	assert.Error(t, err)

	_, err = NewPatternExtractor(`(a)(b)`)
	assert.Error(t, err)
}
