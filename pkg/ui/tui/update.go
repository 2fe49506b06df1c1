package tui

import (
	"fmt"
	"time"

	"emojiscraper/pkg/models"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Message types for the TUI

// RegisteredMsg is sent when an emoji is registered
type RegisteredMsg struct {
	Record models.EmojiRecord
}

// ScanErrorMsg is sent when a scan fails
type ScanErrorMsg struct {
	Err error
}

// SavedMsg is sent when emoji-data.json has been delivered
type SavedMsg struct {
	FileName string
	Servers  int
	Emojis   int
	Size     int
}

// SaveFailedMsg is sent when the export could not be delivered
type SaveFailedMsg struct {
	Err error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case RegisteredMsg:
		m.AddRecord(msg.Record)
		return m, nil

	case ScanErrorMsg:
		m.AddScanError(msg.Err)
		m.AddLogMessage("ERROR", "Scan failed: "+msg.Err.Error())
		return m, nil

	case SavedMsg:
		m.SetSaved(msg.FileName, msg.Size)
		m.AddLogMessage("SUCCESS", fmt.Sprintf("Saved %d emojis from %d servers to %s", msg.Emojis, msg.Servers, msg.FileName))
		return m, nil

	case SaveFailedMsg:
		m.SetFailed(msg.Err)
		m.AddLogMessage("ERROR", "Save failed: "+msg.Err.Error())
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input. While collecting, any key requests
// the save; once the save has finished, any key quits.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.Phase() {
	case PhaseCollecting:
		m.SetSaving()
		m.AddLogMessage("INFO", "Save requested")
		if m.onSave != nil {
			go m.onSave()
		}
		return m, nil

	case PhaseSaved, PhaseFailed:
		return m, tea.Quit
	}

	return m, nil
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
