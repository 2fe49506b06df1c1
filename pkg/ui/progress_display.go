package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay renders a one-line progress bar for image downloads
type ProgressDisplay struct {
	mu              sync.Mutex
	label           string
	total           int
	downloadedCount int
	skippedCount    int
	currentID       string
	startTime       time.Time
	bytesDownloaded int64
	errors          int
	isDebug         bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(label string, total int, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		label:     label,
		total:     total,
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// StartDownload marks the start of a new download
func (p *ProgressDisplay) StartDownload(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentID = id
	if !p.isDebug {
		p.printProgress()
	}
}

// CompleteDownload marks a download as complete
func (p *ProgressDisplay) CompleteDownload(id, name string, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.downloadedCount++
	p.bytesDownloaded += size

	if p.isDebug {
		fmt.Fprintf(out, "%s %s :%s: • %s\n", Green("✓"), id, name, formatBytes(size))
		return
	}
	p.printProgress()
}

// SkipDownload marks an image that was already present
func (p *ProgressDisplay) SkipDownload(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.skippedCount++
	if p.isDebug {
		fmt.Fprintf(out, "%s %s already downloaded\n", Dim("•"), id)
		return
	}
	p.printProgress()
}

// FailDownload marks a download as failed
func (p *ProgressDisplay) FailDownload(id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errors++
	if p.isDebug {
		fmt.Fprintf(out, "%s Failed: %s - %v\n", Red("✗"), id, err)
		return
	}
	p.printProgress()
}

// Counts returns downloaded, skipped and failed totals
func (p *ProgressDisplay) Counts() (downloaded, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.downloadedCount, p.skippedCount, p.errors
}

// printProgress prints the progress line
func (p *ProgressDisplay) printProgress() {
	if quietMode {
		return
	}

	done := p.downloadedCount + p.skippedCount + p.errors
	progress := 1.0
	if p.total > 0 {
		progress = float64(done) / float64(p.total)
	}
	const barWidth = 20
	filled := int(progress * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d • %s • %s",
		Cyan(p.label),
		bar,
		done,
		p.total,
		formatBytes(p.bytesDownloaded),
		p.calculateETA(done),
	)
	if p.currentID != "" {
		line += fmt.Sprintf(" • %s", p.currentID)
	}
	if p.errors > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.errors)))
	}

	fmt.Fprintf(out, "\r%s\r%s", strings.Repeat(" ", 120), line)
}

// Complete prints the summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	fmt.Fprintf(out, "\n\n%s Downloaded %d emoji images into %s\n",
		Green("✓"),
		p.downloadedCount,
		p.label,
	)
	fmt.Fprintf(out, "  %s %s in %s\n",
		Dim("•"),
		formatBytes(p.bytesDownloaded),
		formatDuration(elapsed),
	)
	if p.skippedCount > 0 {
		fmt.Fprintf(out, "  %s %d already present\n", Dim("•"), p.skippedCount)
	}
	if p.errors > 0 {
		fmt.Fprintf(out, "  %s %d downloads failed\n", Dim("•"), p.errors)
	}
}

// calculateETA estimates time remaining
func (p *ProgressDisplay) calculateETA(done int) string {
	if done == 0 {
		return "calculating..."
	}

	remaining := p.total - done
	rate := float64(done) / time.Since(p.startTime).Seconds()
	if rate == 0 || remaining <= 0 {
		return "0s"
	}

	return formatDuration(time.Duration(float64(remaining)/rate) * time.Second)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatBytes formats bytes in a human-readable way
func formatBytes(bytes int64) string {
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
