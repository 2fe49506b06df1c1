package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetColor(false)
	t.Cleanup(func() {
		SetOutput(nil)
		SetColor(true)
		SetQuietMode(false)
	})
	return &buf
}

func TestPrintBanner(t *testing.T) {
	buf := captureOutput(t)
	PrintBanner()
	assert.Equal(t, Banner+"\n", buf.String())
	assert.Contains(t, Banner, `"save()"`)
}

func TestQuietMode(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)

	PrintLogo()
	PrintInfo("Output", "dir")
	PrintSuccess("done")
	PrintError("failed")

	assert.Equal(t, "failed\n", buf.String())
	assert.True(t, IsQuietMode())
}

func TestColorToggle(t *testing.T) {
	captureOutput(t)
	assert.Equal(t, "x", Cyan("x"))
	SetColor(true)
	assert.Equal(t, "\033[36mx\033[0m", Cyan("x"))
}

func TestConsoleNotifier(t *testing.T) {
	buf := captureOutput(t)
	n := NewConsoleNotifier()
	n.SendSuccess("Saved", "emoji-data.json")
	n.SendError("Failed", "disk full")

	assert.Contains(t, buf.String(), "Saved: emoji-data.json")
	assert.Contains(t, buf.String(), "Failed: disk full")
}

func TestSenderFor(t *testing.T) {
	assert.NotNil(t, senderFor("linux"))
	assert.NotNil(t, senderFor("darwin"))
	assert.Nil(t, senderFor("plan9"))
}

func TestProgressDisplay(t *testing.T) {
	buf := captureOutput(t)
	p := NewProgressDisplay("workspace", 3, false)

	p.StartDownload("1")
	p.CompleteDownload("1", "joy", 2048)
	p.SkipDownload("2")
	p.FailDownload("3", errors.New("404"))

	downloaded, skipped, failed := p.Counts()
	assert.Equal(t, 1, downloaded)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, failed)
	assert.Contains(t, buf.String(), "3/3")
	assert.Contains(t, buf.String(), "1 errors")

	p.Complete()
	assert.Contains(t, buf.String(), "Downloaded 1 emoji images into workspace")
	assert.Contains(t, buf.String(), "1 already present")
}

func TestProgressDisplayDebug(t *testing.T) {
	buf := captureOutput(t)
	p := NewProgressDisplay("ws", 1, true)
	p.CompleteDownload("1", "joy", 10)
	assert.True(t, strings.Contains(buf.String(), ":joy:"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "500 B", formatBytes(500))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "2m5s", formatDuration(125*time.Second))
	assert.Equal(t, "1h1m", formatDuration(61*time.Minute))
}
