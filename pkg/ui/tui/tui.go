package tui

import (
	"fmt"

	"emojiscraper/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI represents the terminal user interface of a collection run
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a new TUI. onSave is called from a separate goroutine on
// the first key press.
func NewTUI(onSave func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(onSave)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(model, opts...)

	return &TUI{
		program: program,
		model:   model,
	}
}

// Start runs the TUI until the user quits
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Model returns the underlying model
func (t *TUI) Model() *Model {
	return t.model
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Registered reports a newly registered emoji
func (t *TUI) Registered(rec models.EmojiRecord) {
	t.Send(RegisteredMsg{Record: rec})
}

// ScanFailed reports a failed scan
func (t *TUI) ScanFailed(err error) {
	t.Send(ScanErrorMsg{Err: err})
}

// Saved reports a delivered export
func (t *TUI) Saved(fileName string, servers, emojis, size int) {
	t.Send(SavedMsg{FileName: fileName, Servers: servers, Emojis: emojis, Size: size})
}

// SaveFailed reports a failed export
func (t *TUI) SaveFailed(err error) {
	t.Send(SaveFailedMsg{Err: err})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
