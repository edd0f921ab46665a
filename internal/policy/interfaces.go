// Package policy applies the inactivity policy to open issues: it labels,
// nudges and finally closes issues nobody has touched, and removes the
// inactivity labels once activity resumes.
package policy

import "context"

// Mutator is the set of issue tracker operations the engine needs. Label
// operations take provider label ids, not role names.
type Mutator interface {
	AddComment(ctx context.Context, issueID, body string) error
	AddLabels(ctx context.Context, issueID string, labelIDs []string) error
	// RemoveLabels must treat labels that are not on the issue as a no-op.
	RemoveLabels(ctx context.Context, issueID string, labelIDs []string) error
	CloseIssue(ctx context.Context, issueID string) error
}

// Ensure Recorder implements Mutator interface.
var _ Mutator = (*Recorder)(nil)
