package ghclient

import (
	"embed"
	"fmt"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

// GraphQL documents loaded at init time. Values are always sent as
// variables; the documents themselves are never formatted.
var (
	openIssuesQuery     string
	addCommentMutation  string
	addLabelsMutation   string
	removeLabelMutation string
	closeIssueMutation  string
)

func init() {
	openIssuesQuery = mustLoad("open_issues.graphql")
	addCommentMutation = mustLoad("add_comment.graphql")
	addLabelsMutation = mustLoad("add_labels.graphql")
	removeLabelMutation = mustLoad("remove_labels.graphql")
	closeIssueMutation = mustLoad("close_issue.graphql")
}

func mustLoad(name string) string {
	data, err := queryFiles.ReadFile("queries/" + name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s: %v", name, err))
	}
	return string(data)
}

// IssueFilter selects which open issues a query returns.
type IssueFilter struct {
	// Labels restricts the result to issues carrying any of these labels.
	Labels []string
	// First is the page size. Zero means the client's batch size.
	First int
	// After resumes from a cursor returned by a previous page.
	After string
}

// OpenIssuesRequest builds the request for one page of open issues.
func OpenIssuesRequest(owner, repo string, filter IssueFilter) Request {
	vars := map[string]any{
		"owner": owner,
		"repo":  repo,
		"first": filter.First,
	}
	if filter.After != "" {
		vars["after"] = filter.After
	}
	if len(filter.Labels) > 0 {
		vars["labels"] = filter.Labels
	}
	return Request{
		Query:         openIssuesQuery,
		OperationName: "OpenIssues",
		Variables:     vars,
	}
}

// AddCommentRequest builds the addComment mutation.
func AddCommentRequest(issueID, body string) Request {
	return Request{
		Query:         addCommentMutation,
		OperationName: "AddComment",
		Variables: map[string]any{
			"subjectId": issueID,
			"body":      body,
		},
	}
}

// AddLabelsRequest builds the addLabelsToLabelable mutation.
func AddLabelsRequest(issueID string, labelIDs []string) Request {
	return Request{
		Query:         addLabelsMutation,
		OperationName: "AddLabels",
		Variables: map[string]any{
			"labelableId": issueID,
			"labelIds":    labelIDs,
		},
	}
}

// RemoveLabelsRequest builds the removeLabelsFromLabelable mutation.
func RemoveLabelsRequest(issueID string, labelIDs []string) Request {
	return Request{
		Query:         removeLabelMutation,
		OperationName: "RemoveLabels",
		Variables: map[string]any{
			"labelableId": issueID,
			"labelIds":    labelIDs,
		},
	}
}

// CloseIssueRequest builds the closeIssue mutation. Issues are closed as
// not planned.
func CloseIssueRequest(issueID string) Request {
	return Request{
		Query:         closeIssueMutation,
		OperationName: "CloseIssue",
		Variables: map[string]any{
			"issueId":     issueID,
			"stateReason": "NOT_PLANNED",
		},
	}
}
