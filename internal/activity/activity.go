// Package activity computes how long an issue has gone without human
// activity.
package activity

import (
	"fmt"
	"time"

	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/model"
)

// InputError reports issue data the analyzer could not interpret.
type InputError struct {
	IssueID string
	Field   string
	Value   string
	Err     error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("issue %s: invalid %s %q: %v", e.IssueID, e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// LastActivity returns the most recent timestamp of human activity on the
// issue: its creation, and the creation, edit and reaction times of every
// comment not written by botLogin. The issue's own updatedAt is ignored
// because label changes made by the bot bump it.
func LastActivity(issue model.Issue, botLogin string) (time.Time, error) {
	latest, err := parse(issue.ID, "createdAt", issue.CreatedAt)
	if err != nil {
		return time.Time{}, err
	}

	consider := func(field, value string) error {
		ts, err := parse(issue.ID, field, value)
		if err != nil {
			return err
		}
		if ts.After(latest) {
			latest = ts
		}
		return nil
	}

	for i, c := range issue.Comments {
		if botLogin != "" && c.Author == botLogin {
			continue
		}
		if err := consider(fmt.Sprintf("comments[%d].createdAt", i), c.CreatedAt); err != nil {
			return time.Time{}, err
		}
		if err := consider(fmt.Sprintf("comments[%d].updatedAt", i), c.UpdatedAt); err != nil {
			return time.Time{}, err
		}
		for j, r := range c.Reactions {
			if err := consider(fmt.Sprintf("comments[%d].reactions[%d].createdAt", i, j), r.CreatedAt); err != nil {
				return time.Time{}, err
			}
		}
	}

	return latest, nil
}

// Age returns the time elapsed between the last human activity on the issue
// and now.
func Age(issue model.Issue, now time.Time, botLogin string) (time.Duration, error) {
	last, err := LastActivity(issue, botLogin)
	if err != nil {
		return 0, err
	}
	return now.Sub(last), nil
}

// Days floors an age to whole days.
func Days(age time.Duration) int {
	return int(age / (24 * time.Hour))
}

func parse(issueID, field, value string) (time.Time, error) {
	ts, err := time.Parse(constants.TimestampLayout, value)
	if err != nil {
		return time.Time{}, &InputError{IssueID: issueID, Field: field, Value: value, Err: err}
	}
	return ts, nil
}
