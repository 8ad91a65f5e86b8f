package notify

import (
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier delivers short user-facing notices
type Notifier interface {
	Notify(title, body string) error
}

// Nop discards every notice
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// Desktop sends notices through notify-send
type Desktop struct {
	enabled bool
	command string
}

// NewDesktop creates a desktop notifier
func NewDesktop(enabled bool) *Desktop {
	return &Desktop{
		enabled: enabled,
		command: "notify-send",
	}
}

// SetEnabled enables or disables notifications
func (d *Desktop) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (d *Desktop) IsEnabled() bool {
	return d.enabled
}

// Args builds the notify-send argument list for n
func Args(n Notification) []string {
	args := []string{}

	switch n.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout is in milliseconds
	if n.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(n.Timeout.Milliseconds())))
	}

	if n.Icon != "" {
		args = append(args, "-i", n.Icon)
	}

	args = append(args, "-a", "ticklist")

	args = append(args, n.Title)
	if n.Body != "" {
		args = append(args, n.Body)
	}
	return args
}

// Send sends a desktop notification
func (d *Desktop) Send(n Notification) error {
	if !d.enabled {
		return nil
	}
	return exec.Command(d.command, Args(n)...).Run()
}

// Notify sends a transient, low urgency notice
func (d *Desktop) Notify(title, body string) error {
	return d.Send(Notification{
		Title:   title,
		Body:    body,
		Urgency: UrgencyLow,
		Timeout: 3 * time.Second,
		Icon:    "dialog-warning-symbolic",
	})
}
