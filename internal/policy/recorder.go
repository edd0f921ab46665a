package policy

import (
	"context"
	"sync"

	"github.com/spiffcs/issuebot/internal/log"
)

// Call is a mutation captured by a Recorder.
type Call struct {
	Op       Operation
	IssueID  string
	Body     string
	LabelIDs []string
}

// Recorder is a Mutator that records calls instead of performing them. It
// backs --dry-run.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Debug("dry run", "op", c.Op, "issue", c.IssueID, "labels", c.LabelIDs)
	r.calls = append(r.calls, c)
}

// AddComment records a comment.
func (r *Recorder) AddComment(_ context.Context, issueID, body string) error {
	r.record(Call{Op: OpComment, IssueID: issueID, Body: body})
	return nil
}

// AddLabels records a label addition.
func (r *Recorder) AddLabels(_ context.Context, issueID string, labelIDs []string) error {
	r.record(Call{Op: OpAddLabel, IssueID: issueID, LabelIDs: labelIDs})
	return nil
}

// RemoveLabels records a label removal.
func (r *Recorder) RemoveLabels(_ context.Context, issueID string, labelIDs []string) error {
	r.record(Call{Op: OpRemoveLabels, IssueID: issueID, LabelIDs: labelIDs})
	return nil
}

// CloseIssue records a close.
func (r *Recorder) CloseIssue(_ context.Context, issueID string) error {
	r.record(Call{Op: OpClose, IssueID: issueID})
	return nil
}
