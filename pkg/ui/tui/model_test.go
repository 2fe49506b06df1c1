package tui

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"emojiscraper/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRecords(t *testing.T) {
	model := NewModel(nil)

	model.Update(RegisteredMsg{Record: models.EmojiRecord{ID: "1", Name: "joy", Server: "Alpha"}})
	model.Update(RegisteredMsg{Record: models.EmojiRecord{ID: "2", Name: "x", Server: "Beta"}})
	model.Update(RegisteredMsg{Record: models.EmojiRecord{ID: "3", Name: "y", Server: "Beta"}})

	emojis, servers := model.Totals()
	assert.Equal(t, 3, emojis)
	assert.Equal(t, 2, servers)

	top := model.TopServers(5)
	require.Len(t, top, 2)
	assert.Equal(t, ServerCount{Server: "Beta", Count: 2}, top[0])
	assert.Equal(t, ServerCount{Server: "Alpha", Count: 1}, top[1])
	assert.Len(t, model.TopServers(1), 1)
}

func TestModelKeepsRecentWindow(t *testing.T) {
	model := NewModel(nil)
	for i := 0; i < 20; i++ {
		model.AddRecord(models.EmojiRecord{ID: string(rune('a' + i)), Server: "S"})
	}

	recent := model.Recent()
	assert.Len(t, recent, model.maxRecent)
	assert.Equal(t, string(rune('a'+19)), recent[len(recent)-1].ID)
}

func TestAnyKeyRequestsSaveOnce(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 2)
	model := NewModel(func() {
		calls.Add(1)
		done <- struct{}{}
	})

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	assert.Nil(t, cmd)
	assert.Equal(t, PhaseSaving, model.Phase())

	model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("save not requested")
	}
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestKeyAfterSaveQuits(t *testing.T) {
	model := NewModel(nil)
	model.Update(SavedMsg{FileName: "emoji-data.json", Servers: 1, Emojis: 2, Size: 100})
	assert.Equal(t, PhaseSaved, model.Phase())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCtrlCQuitsWithoutSaving(t *testing.T) {
	model := NewModel(func() { t.Error("save requested on ctrl+c") })

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, PhaseCollecting, model.Phase())
}

func TestSaveFailedAndScanErrors(t *testing.T) {
	model := NewModel(nil)
	model.Update(ScanErrorMsg{Err: errors.New("missing label")})
	model.Update(SaveFailedMsg{Err: errors.New("disk full")})

	assert.Equal(t, PhaseFailed, model.Phase())
	assert.Equal(t, 1, model.scanErrors)
	require.Len(t, model.logMessages, 2)
	assert.Equal(t, "ERROR", model.logMessages[1].Level)
}

func TestView(t *testing.T) {
	model := NewModel(nil)
	assert.Equal(t, "Initializing...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model.Update(RegisteredMsg{Record: models.EmojiRecord{ID: "1", Name: "joy", Server: "Alpha"}})
	model.Update(LogMsg{Level: "INFO", Message: "Collector started"})

	view := model.View()
	assert.Contains(t, view, "COLLECTION")
	assert.Contains(t, view, ":joy:")
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Collector started")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatBytes(test.bytes))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "日本語...", truncate("日本語日本語日本語", 6))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "COLLECTING", PhaseCollecting.String())
	assert.Equal(t, "SAVED", PhaseSaved.String())
	assert.Equal(t, "UNKNOWN", Phase(99).String())
}
