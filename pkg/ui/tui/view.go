package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderLogo())

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftColumn(),
		"  ",
		m.renderRightColumn(),
	)
	sections = append(sections, mainContent)
	sections = append(sections, m.renderFooter())

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the title block
func (m *Model) renderLogo() string {
	logo := `
╔════════════════════════════════════════════╗
║        E M O J I    S C R A P E R          ║
╚════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

func (m *Model) renderLeftColumn() string {
	width := (m.width - 4) / 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(width),
		m.renderServersPanel(width),
	)
}

func (m *Model) renderRightColumn() string {
	width := (m.width - 4) / 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderRecentPanel(width),
		m.renderLogsPanel(width),
	)
}

// renderStatsPanel renders the statistics panel
func (m *Model) renderStatsPanel(width int) string {
	emojis, servers := m.Totals()

	m.mu.RLock()
	phase := m.phase
	scanErrors := m.scanErrors
	elapsed := time.Since(m.startTime)
	m.mu.RUnlock()

	title := titleStyle.Render(" COLLECTION ")

	status := phaseStyle(phase).Render(phase.String())
	if phase == PhaseCollecting {
		status = m.spinner.View() + " " + status
	}

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Status:"), status),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Emojis:"), statsValueStyle.Render(fmt.Sprintf("%d", emojis))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Servers:"), statsValueStyle.Render(fmt.Sprintf("%d", servers))),
	}
	if scanErrors > 0 {
		stats = append(stats, warningStyle.Render(fmt.Sprintf("%d failed scans", scanErrors)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

// renderServersPanel renders the servers with the most emojis
func (m *Model) renderServersPanel(width int) string {
	title := titleStyle.Render(" SERVERS ")

	emojis, _ := m.Totals()
	top := m.TopServers(8)
	if len(top) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Open the emoji picker and scroll through it")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	bar := m.shareBar
	bar.Width = width / 3
	nameWidth := width - bar.Width - 14
	if nameWidth < 8 {
		nameWidth = 8
	}

	var rows []string
	for _, sc := range top {
		share := float64(sc.Count) / float64(emojis)
		rows = append(rows, fmt.Sprintf("%s %s %s",
			serverNameStyle.Width(nameWidth).Render(truncate(sc.Server, nameWidth)),
			bar.ViewAs(share),
			statsValueStyle.Render(fmt.Sprintf("%4d", sc.Count)),
		))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)),
	)
}

// renderRecentPanel renders the latest registrations
func (m *Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENTLY REGISTERED ")

	recent := m.Recent()
	if len(recent) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Waiting for emojis...")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	var rows []string
	for i := len(recent) - 1; i >= 0; i-- {
		rec := recent[i]
		line := fmt.Sprintf(":%s: from %s", rec.Name, rec.Server)
		rows = append(rows, recordStyle.Render(truncate(line, width-6)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)),
	)
}

// renderLogsPanel renders the logs panel
func (m *Model) renderLogsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" LOG ")

	start := len(m.logMessages) - 6
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(truncate(log.Message, width-25))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderFooter renders the key hint for the current phase
func (m *Model) renderFooter() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch m.phase {
	case PhaseSaving:
		return helpStyle.Render("Saving emoji data...")
	case PhaseSaved:
		return helpStyle.Render(fmt.Sprintf("Wrote %s (%s). Press any key to exit.", m.savedFile, FormatBytes(int64(m.savedBytes))))
	case PhaseFailed:
		msg := "Save failed"
		if m.lastError != nil {
			msg += ": " + m.lastError.Error()
		}
		return errorStyle.Render(msg) + helpStyle.Render("Press any key to exit.")
	default:
		return helpStyle.Render("After all custom emojis are registered, press any key to save. ctrl+c aborts.")
	}
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
