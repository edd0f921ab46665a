package ghclient

import (
	"context"

	"github.com/spiffcs/issuebot/internal/log"
)

// AddComment posts body as a comment on the issue.
func (c *Client) AddComment(ctx context.Context, issueID, body string) error {
	log.Debug("adding comment", "issue", issueID)
	_, err := c.executor.Execute(ctx, AddCommentRequest(issueID, body))
	return err
}

// AddLabels attaches labels to the issue.
func (c *Client) AddLabels(ctx context.Context, issueID string, labelIDs []string) error {
	log.Debug("adding labels", "issue", issueID, "labels", labelIDs)
	_, err := c.executor.Execute(ctx, AddLabelsRequest(issueID, labelIDs))
	return err
}

// RemoveLabels detaches labels from the issue. GitHub ignores labels the
// issue does not carry.
func (c *Client) RemoveLabels(ctx context.Context, issueID string, labelIDs []string) error {
	log.Debug("removing labels", "issue", issueID, "labels", labelIDs)
	_, err := c.executor.Execute(ctx, RemoveLabelsRequest(issueID, labelIDs))
	return err
}

// CloseIssue closes the issue as not planned.
func (c *Client) CloseIssue(ctx context.Context, issueID string) error {
	log.Debug("closing issue", "issue", issueID)
	_, err := c.executor.Execute(ctx, CloseIssueRequest(issueID))
	return err
}
