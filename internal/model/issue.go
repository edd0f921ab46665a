// Package model defines the issue records exchanged between the GitHub
// client and the inactivity policy.
package model

// Issue is an open issue as returned by the issues query. Timestamps are
// kept as the raw strings the API returned; the activity analyzer parses
// them so that malformed values surface as errors for that issue only.
type Issue struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	Labels    []Label   `json:"labels"`
	Comments  []Comment `json:"comments"`
}

// Comment is a single issue comment with its reactions.
type Comment struct {
	// Author is the login of the comment author. Empty when the account
	// has been deleted.
	Author    string     `json:"author"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
	Reactions []Reaction `json:"reactions"`
}

// Reaction is an emoji reaction on a comment.
type Reaction struct {
	CreatedAt string `json:"createdAt"`
}

// Label is a label currently attached to an issue.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabelNames returns the names of the labels on the issue.
func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}
