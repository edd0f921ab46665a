package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTaskIDsDistinct(t *testing.T) {
	ids := []TaskID{TaskAuth, TaskFetch, TaskReactivate, TaskSweep}
	seen := make(map[TaskID]bool)

	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate task ID: %d", id)
		}
		seen[id] = true
	}
}

func TestTaskLists(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  []TaskID
	}{
		{"run", RunTasks(), []TaskID{TaskAuth, TaskFetch, TaskReactivate, TaskSweep}},
		{"sweep", SweepTasks(), []TaskID{TaskAuth, TaskFetch, TaskSweep}},
		{"reactivate", ReactivateTasks(), []TaskID{TaskAuth, TaskFetch, TaskReactivate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.tasks) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d", len(tt.want), len(tt.tasks))
			}
			for i, task := range tt.tasks {
				if task.ID != tt.want[i] {
					t.Errorf("task %d: expected ID %d, got %d", i, tt.want[i], task.ID)
				}
				if task.Status != StatusPending {
					t.Errorf("task %d: expected pending status", i)
				}
			}
		})
	}
}

func TestSendEvent(t *testing.T) {
	ch := make(chan Event, 1)

	SendEvent(ch, TaskEvent{Task: TaskAuth, Status: StatusComplete})

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Task != TaskAuth {
			t.Errorf("expected task %d, got %d", TaskAuth, te.Task)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestSendEventDoesNotBlock(t *testing.T) {
	ch := make(chan Event, 1)
	SendEvent(ch, DoneEvent{})
	SendEvent(ch, DoneEvent{}) // channel full, dropped
	SendEvent(nil, TaskEvent{})

	if len(ch) != 1 {
		t.Errorf("expected 1 buffered event, got %d", len(ch))
	}
}

func TestSendTaskEvent(t *testing.T) {
	ch := make(chan Event, 1)
	testErr := errors.New("boom")

	SendTaskEvent(ch, TaskSweep, StatusRunning,
		WithMessage("3/10"),
		WithCount(10),
		WithProgress(0.3),
		WithError(testErr),
	)

	te, ok := (<-ch).(TaskEvent)
	if !ok {
		t.Fatal("expected TaskEvent type")
	}
	if te.Task != TaskSweep || te.Status != StatusRunning {
		t.Errorf("unexpected task/status %d/%d", te.Task, te.Status)
	}
	if te.Message != "3/10" || te.Count != 10 || te.Progress != 0.3 || te.Error != testErr {
		t.Errorf("options not applied: %+v", te)
	}
}

func TestInCI(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	if inCI(getenv) {
		t.Error("expected no CI with empty environment")
	}
	env["GITHUB_ACTIONS"] = "true"
	if !inCI(getenv) {
		t.Error("expected CI when GITHUB_ACTIONS is set")
	}
}

func TestModelUpdatesTask(t *testing.T) {
	ch := make(chan Event)
	m := NewModel(ch, WithTasks(SweepTasks()), WithRepository("octo/repo"), WithDryRun(true))

	updated, _ := m.Update(TaskEvent{Task: TaskAuth, Status: StatusComplete, Message: "issuebot"})
	m = updated.(Model)
	updated, _ = m.Update(TaskEvent{Task: TaskFetch, Status: StatusComplete, Count: 42})
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"octo/repo", "(dry run)", "Authenticated as", "issuebot", "(42 issues)", "Sweeping", "Ctrl+C"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Reactivating") {
		t.Error("sweep view should not list the reactivate task")
	}
}

func TestModelCancelCallsHook(t *testing.T) {
	calls := 0
	m := NewModel(make(chan Event), WithCancel(func() { calls++ }))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	if cmd != nil {
		t.Error("expected the display to keep running after cancel")
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)

	if calls != 1 {
		t.Errorf("expected cancel hook called once, got %d", calls)
	}
	if !strings.Contains(m.View(), "Cancelling") {
		t.Error("expected cancelling notice in view")
	}
}

func TestModelDone(t *testing.T) {
	m := NewModel(make(chan Event))

	updated, cmd := m.Update(DoneEvent{})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if strings.Contains(m.View(), "Ctrl+C") {
		t.Error("cancel hint should be hidden once done")
	}
}

func TestStatusIcon(t *testing.T) {
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}

	for _, status := range statuses {
		if icon := StatusIcon(status, ">"); icon == "" {
			t.Errorf("StatusIcon returned empty string for status %d", status)
		}
	}
}
