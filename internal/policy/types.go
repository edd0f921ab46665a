package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/issuebot/internal/model"
)

// Tier is the inactivity classification of an issue at evaluation time.
type Tier string

const (
	TierFresh        Tier = "fresh"
	TierWarn         Tier = "warn"
	TierPendingClose Tier = "pending_close"
	TierClosed       Tier = "closed"
	// TierSkip marks an inactive issue whose tier label is already applied.
	TierSkip Tier = "skip"
	// TierInvalid marks an issue whose data could not be evaluated.
	TierInvalid Tier = "invalid"
)

// Display returns a human-readable tier name
func (t Tier) Display() string {
	switch t {
	case TierFresh:
		return "Fresh"
	case TierWarn:
		return "Warn"
	case TierPendingClose:
		return "Pending close"
	case TierClosed:
		return "Closed"
	case TierSkip:
		return "Already labelled"
	case TierInvalid:
		return "Invalid"
	default:
		return string(t)
	}
}

// Operation names a single mutation against the issue tracker.
type Operation string

const (
	OpComment      Operation = "comment"
	OpAddLabel     Operation = "add_label"
	OpRemoveLabels Operation = "remove_labels"
	OpClose        Operation = "close"
)

// Step is one mutation in a tier's action sequence.
type Step struct {
	Op    Operation    `json:"op"`
	Roles []model.Role `json:"roles,omitempty"`
}

func (s Step) String() string {
	if len(s.Roles) == 0 {
		return string(s.Op)
	}
	roles := make([]string, len(s.Roles))
	for i, r := range s.Roles {
		roles[i] = string(r)
	}
	return fmt.Sprintf("%s(%s)", s.Op, strings.Join(roles, ","))
}

// Config carries everything the engine needs from configuration.
type Config struct {
	BotLogin      string
	LabelIDs      model.LabelIDs
	FirstMessage  string
	SecondMessage string
	FinalMessage  string
}

// Mode distinguishes the forward sweep from reactivation.
type Mode string

const (
	ModeSweep      Mode = "sweep"
	ModeReactivate Mode = "reactivate"
)

// Outcome records what happened to one issue during a run.
type Outcome struct {
	IssueID string `json:"id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Days    int    `json:"days"`
	Tier    Tier   `json:"tier"`
	// Steps holds the mutations that completed, in order.
	Steps []Step `json:"steps,omitempty"`
	Err   error  `json:"-"`
}

// Failed reports whether evaluating or mutating the issue failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Report is the result of running the engine over a batch.
type Report struct {
	Mode        Mode      `json:"mode"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
	DryRun      bool      `json:"dryRun"`
	Outcomes    []Outcome `json:"outcomes"`
	// Aborted is set when the context was cancelled before the batch finished.
	Aborted error `json:"-"`
}

// Count returns the number of outcomes in the given tier.
func (r Report) Count(tier Tier) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Tier == tier {
			n++
		}
	}
	return n
}

// Acted returns the number of issues on which at least one mutation completed.
func (r Report) Acted() int {
	n := 0
	for _, o := range r.Outcomes {
		if len(o.Steps) > 0 {
			n++
		}
	}
	return n
}

// Failures returns the outcomes that carry an error.
func (r Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}
