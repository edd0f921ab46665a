package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spiffcs/issuebot/internal/log"
	"github.com/spiffcs/issuebot/internal/model"
)

// IssuePage is one page of open issues. Only a single page is fetched per
// call; callers wanting more pass EndCursor back as IssueFilter.After.
type IssuePage struct {
	Issues      []model.Issue
	StartCursor string
	EndCursor   string
	HasNextPage bool
}

type issuesResponse struct {
	Repository *struct {
		Issues struct {
			Edges []struct {
				Cursor string    `json:"cursor"`
				Node   issueNode `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				StartCursor string `json:"startCursor"`
				EndCursor   string `json:"endCursor"`
				HasNextPage bool   `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"issues"`
	} `json:"repository"`
}

type issueNode struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Labels    struct {
		Nodes []model.Label `json:"nodes"`
	} `json:"labels"`
	Comments struct {
		Nodes []commentNode `json:"nodes"`
	} `json:"comments"`
}

type actorRef struct {
	Login string `json:"login"`
}

type commentNode struct {
	Author    *actorRef `json:"author"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	Reactions struct {
		Nodes []model.Reaction `json:"nodes"`
	} `json:"reactions"`
}

// OpenIssues fetches one page of open issues matching filter, least
// recently updated first.
func (c *Client) OpenIssues(ctx context.Context, filter IssueFilter) (IssuePage, error) {
	if filter.First <= 0 || filter.First > c.batchSize {
		filter.First = c.batchSize
	}

	data, err := c.executor.Execute(ctx, OpenIssuesRequest(c.owner, c.repo, filter))
	if err != nil {
		// Partial data is still usable when the repository resolved.
		var te *TransportError
		if !errors.As(err, &te) || len(te.Messages) == 0 || !hasData(data) {
			return IssuePage{}, err
		}
		log.Warn("issues query returned errors", "repo", c.Repository(), "error", err)
	}

	return parseIssuesResponse(data, c.Repository())
}

func parseIssuesResponse(data json.RawMessage, repoName string) (IssuePage, error) {
	var resp issuesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return IssuePage{}, fmt.Errorf("failed to parse issues response: %w", err)
	}
	if resp.Repository == nil {
		return IssuePage{}, fmt.Errorf("repository %s not found or not accessible", repoName)
	}

	conn := resp.Repository.Issues
	page := IssuePage{
		Issues:      make([]model.Issue, 0, len(conn.Edges)),
		StartCursor: conn.PageInfo.StartCursor,
		EndCursor:   conn.PageInfo.EndCursor,
		HasNextPage: conn.PageInfo.HasNextPage,
	}

	for _, edge := range conn.Edges {
		page.Issues = append(page.Issues, toIssue(edge.Node))
	}
	if page.EndCursor == "" && len(conn.Edges) > 0 {
		page.EndCursor = conn.Edges[len(conn.Edges)-1].Cursor
	}

	log.Debug("fetched issues", "repo", repoName, "count", len(page.Issues), "hasNextPage", page.HasNextPage)
	return page, nil
}

func toIssue(n issueNode) model.Issue {
	issue := model.Issue{
		ID:        n.ID,
		Number:    n.Number,
		Title:     n.Title,
		URL:       n.URL,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Labels:    n.Labels.Nodes,
		Comments:  make([]model.Comment, 0, len(n.Comments.Nodes)),
	}

	for _, cn := range n.Comments.Nodes {
		comment := model.Comment{
			CreatedAt: cn.CreatedAt,
			UpdatedAt: cn.UpdatedAt,
			Reactions: cn.Reactions.Nodes,
		}
		if cn.Author != nil {
			comment.Author = cn.Author.Login
		}
		issue.Comments = append(issue.Comments, comment)
	}

	return issue
}
