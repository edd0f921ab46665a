package ghclient

import (
	"context"
	"errors"
	"fmt"
	"sort"

	gh "github.com/google/go-github/v57/github"
)

// errNoREST is returned by REST helpers on a client built without one.
var errNoREST = errors.New("REST API client not configured")

// RepoLabel is a repository label with the node id GraphQL mutations expect.
type RepoLabel struct {
	Name        string `json:"name"`
	NodeID      string `json:"id"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// AuthenticatedUser returns the login the token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	if c.rest == nil {
		return "", errNoREST
	}
	user, _, err := c.rest.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	if c.rest == nil {
		return nil, errNoREST
	}
	limits, _, err := c.rest.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// Labels lists every label defined on the repository, sorted by name.
func (c *Client) Labels(ctx context.Context) ([]RepoLabel, error) {
	if c.rest == nil {
		return nil, errNoREST
	}

	opts := &gh.ListOptions{PerPage: 100}
	var labels []RepoLabel

	for {
		page, resp, err := c.rest.Issues.ListLabels(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels for %s: %w", c.Repository(), err)
		}

		for _, l := range page {
			labels = append(labels, toRepoLabel(l))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	sort.Slice(labels, func(i, j int) bool {
		return labels[i].Name < labels[j].Name
	})
	return labels, nil
}

func toRepoLabel(l *gh.Label) RepoLabel {
	return RepoLabel{
		Name:        l.GetName(),
		NodeID:      l.GetNodeID(),
		Color:       l.GetColor(),
		Description: l.GetDescription(),
	}
}
