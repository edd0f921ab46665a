package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/issuebot/internal/activity"
	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/log"
	"github.com/spiffcs/issuebot/internal/model"
)

// Engine applies the inactivity policy through a Mutator.
type Engine struct {
	mutator    Mutator
	cfg        Config
	dryRun     bool
	onProgress func(completed, total int)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProgress registers a callback invoked after each issue is processed.
func WithProgress(fn func(completed, total int)) EngineOption {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

// WithDryRun marks reports produced by the engine as dry runs.
func WithDryRun(dryRun bool) EngineOption {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// NewEngine creates an engine that mutates issues through m.
func NewEngine(m Mutator, cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		mutator: m,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify maps an age in whole days and the issue's current labels to a
// tier. Tiers are checked from most to least severe so an issue only ever
// lands in one of them.
func Classify(days int, issue model.Issue, ids model.LabelIDs) Tier {
	switch {
	case days >= constants.CloseDays:
		return TierClosed
	case days >= constants.PendingCloseDays:
		if issue.HasRole(model.RolePendingClosure, ids) {
			return TierSkip
		}
		return TierPendingClose
	case days >= constants.WarnDays:
		if issue.HasRole(model.RoleInactive, ids) {
			return TierSkip
		}
		return TierWarn
	default:
		return TierFresh
	}
}

// Sweep evaluates every issue in the batch and applies the actions of the
// tier it falls into. Issues are processed one at a time; a failure on one
// issue is recorded in the report and does not stop the batch.
func (e *Engine) Sweep(ctx context.Context, issues []model.Issue, now time.Time) Report {
	return e.run(ctx, ModeSweep, issues, now, e.sweepOne)
}

// Reactivate removes the inactive and pending_closure labels from every
// issue in the batch that has seen human activity in the last 182 days.
// Callers select the batch, typically issues carrying either label.
func (e *Engine) Reactivate(ctx context.Context, issues []model.Issue, now time.Time) Report {
	return e.run(ctx, ModeReactivate, issues, now, e.reactivateOne)
}

func (e *Engine) run(ctx context.Context, mode Mode, issues []model.Issue, now time.Time, fn func(context.Context, model.Issue, time.Time) Outcome) Report {
	report := Report{
		Mode:        mode,
		EvaluatedAt: now,
		DryRun:      e.dryRun,
		Outcomes:    make([]Outcome, 0, len(issues)),
	}

	for i, issue := range issues {
		if err := ctx.Err(); err != nil {
			report.Aborted = err
			log.Warn("run cancelled", "mode", mode, "processed", i, "total", len(issues))
			break
		}

		outcome := fn(ctx, issue, now)
		if outcome.Err != nil {
			log.Debug("issue failed", "mode", mode, "issue", issue.Number, "error", outcome.Err)
		}
		report.Outcomes = append(report.Outcomes, outcome)

		if e.onProgress != nil {
			e.onProgress(i+1, len(issues))
		}
	}

	return report
}

func (e *Engine) sweepOne(ctx context.Context, issue model.Issue, now time.Time) Outcome {
	outcome := newOutcome(issue)

	age, err := activity.Age(issue, now, e.cfg.BotLogin)
	if err != nil {
		outcome.Tier = TierInvalid
		outcome.Err = err
		return outcome
	}
	outcome.Days = activity.Days(age)
	outcome.Tier = Classify(outcome.Days, issue, e.cfg.LabelIDs)

	actions := e.plan(issue.ID, outcome.Tier)
	if len(actions) == 0 {
		log.Trace("no action", "issue", issue.Number, "days", outcome.Days, "tier", outcome.Tier, "labels", issue.LabelNames())
		return outcome
	}

	log.Info("applying tier", "issue", issue.Number, "days", outcome.Days, "tier", outcome.Tier)
	outcome.Steps, outcome.Err = execute(ctx, issue.ID, actions)
	return outcome
}

func (e *Engine) reactivateOne(ctx context.Context, issue model.Issue, now time.Time) Outcome {
	outcome := newOutcome(issue)

	age, err := activity.Age(issue, now, e.cfg.BotLogin)
	if err != nil {
		outcome.Tier = TierInvalid
		outcome.Err = err
		return outcome
	}
	outcome.Days = activity.Days(age)

	if outcome.Days >= constants.WarnDays {
		outcome.Tier = TierSkip
		return outcome
	}
	outcome.Tier = TierFresh

	ids := []string{e.cfg.LabelIDs.Inactive, e.cfg.LabelIDs.PendingClosure}
	step := Step{Op: OpRemoveLabels, Roles: []model.Role{model.RoleInactive, model.RolePendingClosure}}

	log.Info("reactivating", "issue", issue.Number, "days", outcome.Days)
	outcome.Steps, outcome.Err = execute(ctx, issue.ID, []action{{
		step: step,
		run: func(ctx context.Context) error {
			return e.mutator.RemoveLabels(ctx, issue.ID, ids)
		},
	}})
	return outcome
}

// action is a step bound to the mutator call that performs it.
type action struct {
	step Step
	run  func(ctx context.Context) error
}

// plan returns the ordered mutations for a tier: post the message, add the
// tier label, and close when the tier is Closed.
func (e *Engine) plan(issueID string, tier Tier) []action {
	var message string
	var role model.Role

	switch tier {
	case TierWarn:
		message, role = e.cfg.FirstMessage, model.RoleInactive
	case TierPendingClose:
		message, role = e.cfg.SecondMessage, model.RolePendingClosure
	case TierClosed:
		message, role = e.cfg.FinalMessage, model.RoleAutomaticallyClosed
	default:
		return nil
	}

	labelID := e.cfg.LabelIDs.For(role)
	actions := []action{
		{
			step: Step{Op: OpComment},
			run: func(ctx context.Context) error {
				return e.mutator.AddComment(ctx, issueID, message)
			},
		},
		{
			step: Step{Op: OpAddLabel, Roles: []model.Role{role}},
			run: func(ctx context.Context) error {
				return e.mutator.AddLabels(ctx, issueID, []string{labelID})
			},
		},
	}

	if tier == TierClosed {
		actions = append(actions, action{
			step: Step{Op: OpClose},
			run: func(ctx context.Context) error {
				return e.mutator.CloseIssue(ctx, issueID)
			},
		})
	}

	return actions
}

// execute runs actions in order and stops at the first failure.
func execute(ctx context.Context, issueID string, actions []action) ([]Step, error) {
	var done []Step
	for _, a := range actions {
		if err := a.run(ctx); err != nil {
			if len(done) > 0 {
				return done, &PartialMutationFailure{
					IssueID:   issueID,
					Completed: done,
					Failed:    a.step,
					Err:       err,
				}
			}
			return nil, fmt.Errorf("issue %s: %s: %w", issueID, a.step, err)
		}
		done = append(done, a.step)
	}
	return done, nil
}

func newOutcome(issue model.Issue) Outcome {
	return Outcome{
		IssueID: issue.ID,
		Number:  issue.Number,
		Title:   issue.Title,
		URL:     issue.URL,
	}
}
