package cmd

import (
	"os"
	"sync"

	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/log"
	"github.com/spiffcs/issuebot/internal/tui"
)

// runtime holds the display state shared by the steps of a run.
type runtime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
	once    sync.Once
}

// setupRuntime decides between TUI and log output and initializes logging
// accordingly. Logs are discarded while the TUI owns the terminal.
func setupRuntime(opts *Options) *runtime {
	useTUI := shouldUseTUI(opts)
	if useTUI {
		log.Discard()
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}
	return &runtime{useTUI: useTUI}
}

// startTUI launches the progress display in the background.
func (rt *runtime) startTUI(opts ...tui.ModelOption) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, constants.TUIEventBuffer)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, opts...)
	}()
}

// close stops the TUI and waits for it to restore the terminal. Safe to
// call more than once.
func (rt *runtime) close() {
	rt.once.Do(func() {
		if rt.events == nil {
			return
		}
		close(rt.events)
		if err := <-rt.tuiDone; err != nil {
			log.Warn("progress display failed", "error", err)
		}
	})
}

// sendEvent sends a task event to the TUI if it is running.
func (rt *runtime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt == nil || rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}
