package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// commandSender runs a platform tool to show a notification
type commandSender struct {
	build func(title, message string) *exec.Cmd
}

func (c commandSender) Send(title, message string) error {
	return c.build(title, message).Run()
}

// senderFor returns the notification tool of goos, or nil when unsupported
func senderFor(goos string) NotificationSender {
	switch goos {
	case "linux":
		return commandSender{func(title, message string) *exec.Cmd {
			return exec.Command("notify-send", "--app-name=emojiscraper", title, message)
		}}
	case "darwin":
		return commandSender{func(title, message string) *exec.Cmd {
			script := fmt.Sprintf(`display notification %q with title %q`, message, title)
			return exec.Command("osascript", "-e", script)
		}}
	case "windows":
		return commandSender{func(title, message string) *exec.Cmd {
			script := fmt.Sprintf(`New-BurntToastNotification -Text '%s', '%s'`, title, message)
			return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
		}}
	default:
		return nil
	}
}

// Notifier prints a message and mirrors it as a desktop notification
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier for the current platform
func NewNotifier() *Notifier {
	return &Notifier{sender: senderFor(runtime.GOOS)}
}

// NewConsoleNotifier creates a Notifier that only prints
func NewConsoleNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) send(title, message string) {
	// desktop notifications are best effort
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}

// SendNotification sends an informational notification
func (n *Notifier) SendNotification(title, message string) {
	if !quietMode {
		fmt.Fprintf(out, "\n%s: %s\n", Cyan(title), Yellow(message))
	}
	n.send(title, message)
}

// SendError sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(out, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	if !quietMode {
		fmt.Fprintf(out, "\n%s: %s\n", Green(title), Green(message))
	}
	n.send(title, message)
}
