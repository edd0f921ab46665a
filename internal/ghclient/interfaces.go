// Package ghclient provides GitHub API client functionality.
package ghclient

import (
	"context"

	"github.com/spiffcs/issuebot/internal/policy"
)

// IssueSource fetches open issues. It is the query side of the client.
type IssueSource interface {
	OpenIssues(ctx context.Context, filter IssueFilter) (IssuePage, error)
}

// Ensure Client implements IssueSource interface.
var _ IssueSource = (*Client)(nil)

// Ensure Client implements policy.Mutator interface.
var _ policy.Mutator = (*Client)(nil)

// Ensure HTTPExecutor implements Executor interface.
var _ Executor = (*HTTPExecutor)(nil)
