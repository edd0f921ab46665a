// Package tui renders the inline progress display shown while the bot runs
// in an interactive terminal.
package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Run starts the TUI and blocks until the event channel is closed or a
// DoneEvent arrives.
func Run(events <-chan Event, opts ...ModelOption) error {
	model := NewModel(events, opts...)
	// Render inline so the report prints below the progress display.
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

// ciVars are environment variables set by common CI systems, where the bot
// usually runs on a schedule.
var ciVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"GITLAB_CI",
	"BUILDKITE",
}

// ShouldUseTUI returns true if the TUI should be used based on environment.
func ShouldUseTUI() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return !inCI(os.Getenv)
}

func inCI(getenv func(string) string) bool {
	for _, v := range ciVars {
		if getenv(v) != "" {
			return true
		}
	}
	return false
}

// SendEvent sends an event to the channel in a non-blocking manner.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
		// drop the event rather than stall the run
	}
}

// SendTaskEvent is a convenience function for sending task events.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{
		Task:   task,
		Status: status,
	}
	for _, opt := range opts {
		opt(&e)
	}
	SendEvent(ch, e)
}

// TaskEventOption is a functional option for TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage sets the message on a TaskEvent.
func WithMessage(msg string) TaskEventOption {
	return func(e *TaskEvent) {
		e.Message = msg
	}
}

// WithCount sets the count on a TaskEvent.
func WithCount(count int) TaskEventOption {
	return func(e *TaskEvent) {
		e.Count = count
	}
}

// WithProgress sets the progress on a TaskEvent.
func WithProgress(progress float64) TaskEventOption {
	return func(e *TaskEvent) {
		e.Progress = progress
	}
}

// WithError sets the error on a TaskEvent.
func WithError(err error) TaskEventOption {
	return func(e *TaskEvent) {
		e.Error = err
	}
}
