package tui

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"emojiscraper/pkg/models"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase is the stage of a collection run
type Phase int

const (
	PhaseCollecting Phase = iota
	PhaseSaving
	PhaseSaved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "COLLECTING"
	case PhaseSaving:
		return "SAVING"
	case PhaseSaved:
		return "SAVED"
	case PhaseFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ServerCount is the number of emojis collected for one server
type ServerCount struct {
	Server string
	Count  int
}

// Model represents the TUI model
type Model struct {
	// UI components
	spinner  spinner.Model
	shareBar progress.Model

	// Collection state
	recent       []models.EmojiRecord
	maxRecent    int
	total        int
	serverCounts map[string]int
	serverOrder  []string
	scanErrors   int
	lastError    error
	phase        Phase
	savedFile    string
	savedBytes   int
	startTime    time.Time

	// UI state
	width          int
	height         int
	logMessages    []LogMessage
	maxLogMessages int

	// onSave runs when a key is pressed while collecting
	onSave func()

	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new TUI model. onSave may be nil.
func NewModel(onSave func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 20

	return &Model{
		spinner:        s,
		shareBar:       bar,
		maxRecent:      12,
		serverCounts:   make(map[string]int),
		serverOrder:    []string{},
		phase:          PhaseCollecting,
		startTime:      time.Now(),
		logMessages:    []LogMessage{},
		maxLogMessages: 50,
		onSave:         onSave,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// AddRecord adds a newly registered emoji
func (m *Model) AddRecord(rec models.EmojiRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.recent = append(m.recent, rec)
	if len(m.recent) > m.maxRecent {
		m.recent = m.recent[len(m.recent)-m.maxRecent:]
	}
	if _, ok := m.serverCounts[rec.Server]; !ok {
		m.serverOrder = append(m.serverOrder, rec.Server)
	}
	m.serverCounts[rec.Server]++
}

// AddScanError records a failed scan
func (m *Model) AddScanError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanErrors++
	m.lastError = err
}

// SetSaving marks the export as in progress
func (m *Model) SetSaving() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseCollecting {
		m.phase = PhaseSaving
	}
}

// SetSaved marks the export as written
func (m *Model) SetSaved(fileName string, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = PhaseSaved
	m.savedFile = fileName
	m.savedBytes = size
}

// SetFailed marks the export as failed
func (m *Model) SetFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = PhaseFailed
	m.lastError = err
}

// Phase returns the current phase
func (m *Model) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Totals returns the number of emojis and servers seen
func (m *Model) Totals() (emojis, servers int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total, len(m.serverOrder)
}

// Recent returns the most recent registrations, oldest first
func (m *Model) Recent() []models.EmojiRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.EmojiRecord, len(m.recent))
	copy(out, m.recent)
	return out
}

// TopServers returns up to n servers with the most emojis. Ties keep
// first-seen order.
func (m *Model) TopServers(n int) []ServerCount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make([]ServerCount, 0, len(m.serverOrder))
	for _, s := range m.serverOrder {
		counts = append(counts, ServerCount{Server: s, Count: m.serverCounts[s]})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// FormatBytes formats bytes to human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
