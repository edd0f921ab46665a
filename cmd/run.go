package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/issuebot/config"
	"github.com/spiffcs/issuebot/internal/ghclient"
	"github.com/spiffcs/issuebot/internal/log"
	"github.com/spiffcs/issuebot/internal/metrics"
	"github.com/spiffcs/issuebot/internal/model"
	"github.com/spiffcs/issuebot/internal/output"
	"github.com/spiffcs/issuebot/internal/policy"
	"github.com/spiffcs/issuebot/internal/stats"
	"github.com/spiffcs/issuebot/internal/tui"
)

// Modes in execution order. Reactivation runs first so revived issues lose
// their labels before the sweep looks at the repository.
var (
	runModes        = []policy.Mode{policy.ModeReactivate, policy.ModeSweep}
	sweepModes      = []policy.Mode{policy.ModeSweep}
	reactivateModes = []policy.Mode{policy.ModeReactivate}
)

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reactivate revived issues, then sweep inactive ones",
		Long: `Fetch the open issues of the configured repository, remove the inactivity
labels from issues that saw activity again, then warn, label and close issues
that have been inactive for too long.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, opts, runModes)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

// NewCmdSweep creates the sweep command.
func NewCmdSweep(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Warn, label and close inactive issues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, opts, sweepModes)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

// NewCmdReactivate creates the reactivate command.
func NewCmdReactivate(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reactivate",
		Short: "Remove inactivity labels from issues with recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, opts, reactivateModes)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

// addRunFlags adds the flags shared by run, sweep and reactivate.
func addRunFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "table", "Output format (table, json, markdown)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Evaluate and report without changing any issue")
	cmd.Flags().StringVar(&opts.Now, "now", "", "Evaluate as of this RFC3339 time instead of the current time")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Issues fetched per batch (default: batch_size from config)")
	cmd.Flags().BoolVarP(&opts.ShowAll, "all", "a", false, "Include issues that needed no action in the report")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record this run in the history")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
	cmd.Flags().Lookup("tui").NoOptDefVal = "true"
}

// evaluationTime returns the instant issues are aged against.
func evaluationTime(override string, clock func() time.Time) (time.Time, error) {
	if override == "" {
		return clock().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, override)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: expected RFC3339 such as 2024-01-02T15:04:05Z: %w", override, err)
	}
	return t.UTC(), nil
}

// reactivateLabels selects the reactivation batch by label name.
var reactivateLabels = []string{string(model.RoleInactive), string(model.RolePendingClosure)}

// filterFor returns the fetch filter for one mode.
func filterFor(mode policy.Mode, limit int) ghclient.IssueFilter {
	filter := ghclient.IssueFilter{First: limit}
	if mode == policy.ModeReactivate {
		filter.Labels = reactivateLabels
	}
	return filter
}

func taskFor(mode policy.Mode) tui.TaskID {
	if mode == policy.ModeReactivate {
		return tui.TaskReactivate
	}
	return tui.TaskSweep
}

func tasksFor(modes []policy.Mode) []tui.Task {
	switch {
	case len(modes) > 1:
		return tui.RunTasks()
	case modes[0] == policy.ModeReactivate:
		return tui.ReactivateTasks()
	default:
		return tui.SweepTasks()
	}
}

// pipeline fetches the batches a run needs and feeds them to the engine.
type pipeline struct {
	source  ghclient.IssueSource
	mutator policy.Mutator
	policy  policy.Config
	metrics *metrics.Metrics
	limit   int
	dryRun  bool
	rt      *runtime
	clock   func() time.Time
}

// fetch loads one batch per mode concurrently. Any failure aborts the run.
func (p *pipeline) fetch(ctx context.Context, modes []policy.Mode) ([][]model.Issue, error) {
	p.rt.sendEvent(tui.TaskFetch, tui.StatusRunning)
	log.Progress("Fetching issues...")

	batches := make([][]model.Issue, len(modes))
	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			page, err := p.source.OpenIssues(gctx, filterFor(mode, p.limit))
			if err != nil {
				return fmt.Errorf("failed to fetch %s batch: %w", mode, err)
			}
			batches[i] = page.Issues
			log.Debug("fetched batch", "mode", mode, "count", len(page.Issues), "hasNextPage", page.HasNextPage)
			if page.HasNextPage {
				log.Info("batch truncated to one page", "mode", mode, "count", len(page.Issues), "endCursor", page.EndCursor)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.ProgressClear()
		p.rt.sendEvent(tui.TaskFetch, tui.StatusError, tui.WithError(err))
		return nil, err
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	log.Progress("Fetching issues... %d", total)
	log.ProgressDone()
	p.rt.sendEvent(tui.TaskFetch, tui.StatusComplete, tui.WithCount(total))
	return batches, nil
}

// evaluate runs the engine over each batch in mode order.
func (p *pipeline) evaluate(ctx context.Context, modes []policy.Mode, batches [][]model.Issue, now time.Time) []policy.Report {
	reports := make([]policy.Report, 0, len(modes))
	for i, mode := range modes {
		task := taskFor(mode)
		issues := batches[i]
		p.rt.sendEvent(task, tui.StatusRunning, tui.WithMessage(fmt.Sprintf("0/%d", len(issues))))

		engine := policy.NewEngine(p.mutator, p.policy,
			policy.WithDryRun(p.dryRun),
			policy.WithProgress(func(completed, total int) {
				p.rt.sendEvent(task, tui.StatusRunning,
					tui.WithMessage(fmt.Sprintf("%d/%d", completed, total)),
					tui.WithProgress(float64(completed)/float64(total)))
				log.Progress("%s: %d/%d", mode, completed, total)
			}),
		)

		start := p.clock()
		var report policy.Report
		if mode == policy.ModeReactivate {
			report = engine.Reactivate(ctx, issues, now)
		} else {
			report = engine.Sweep(ctx, issues, now)
		}
		finished := p.clock()
		log.ProgressDone()

		if p.metrics != nil {
			p.metrics.ObserveReport(report, finished.Sub(start), finished)
		}
		if len(report.Failures()) > 0 {
			p.rt.sendEvent(task, tui.StatusError, tui.WithCount(len(report.Outcomes)),
				tui.WithError(fmt.Errorf("%d failed", len(report.Failures()))))
		} else {
			p.rt.sendEvent(task, tui.StatusComplete, tui.WithCount(len(report.Outcomes)))
		}
		log.Info("finished", "mode", mode, "evaluated", len(report.Outcomes), "acted", report.Acted(), "failed", len(report.Failures()))

		reports = append(reports, report)
		if report.Aborted != nil {
			break
		}
	}
	return reports
}

// run fetches and evaluates. Only a fetch failure is returned as an error;
// per-issue failures live in the reports.
func (p *pipeline) run(ctx context.Context, modes []policy.Mode, now time.Time) ([]policy.Report, error) {
	batches, err := p.fetch(ctx, modes)
	if err != nil {
		return nil, err
	}
	return p.evaluate(ctx, modes, batches, now), nil
}

// connect builds the GitHub client and resolves the bot identity.
func connect(ctx context.Context, cfg *config.Config, rt *runtime) (*ghclient.Client, string, error) {
	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)

	client, err := ghclient.NewClient(ctx, cfg.ClientOptions())
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return nil, "", err
	}

	// The bot's own comments must not count as activity, so an unknown
	// identity is fatal.
	login := cfg.BotLogin
	if login == "" {
		login, err = client.AuthenticatedUser(ctx)
		if err != nil {
			err = fmt.Errorf("bot_login not configured and the authenticated user could not be resolved: %w", err)
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, "", err
		}
		log.Debug("resolved bot login", "login", login)
	}

	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(login))
	return client, login, nil
}

func runBot(cmd *cobra.Command, opts *Options, modes []policy.Mode) error {
	now, err := evaluationTime(opts.Now, time.Now)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt := setupRuntime(opts)
	if log.IsDebug() {
		log.Debug("configuration", "repo", cfg.FullName(), "endpoint", cfg.Endpoint(),
			"batch", cfg.Batch(), "sslVerify", cfg.VerifySSL(), "dryRun", opts.DryRun, "now", now)
	}
	rt.startTUI(
		tui.WithTasks(tasksFor(modes)),
		tui.WithRepository(cfg.FullName()),
		tui.WithDryRun(opts.DryRun),
		tui.WithCancel(cancel),
	)
	defer rt.close()

	client, login, err := connect(ctx, cfg, rt)
	if err != nil {
		return err
	}

	m := metrics.New()
	var mutator policy.Mutator = client
	if opts.DryRun {
		mutator = policy.NewRecorder()
	}

	p := &pipeline{
		source:  client,
		mutator: m.Instrument(mutator),
		policy:  cfg.PolicyConfig(login),
		metrics: m,
		limit:   opts.Limit,
		dryRun:  opts.DryRun,
		rt:      rt,
		clock:   time.Now,
	}

	reports, err := p.run(ctx, modes, now)
	rt.close()
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(format, output.Options{
		ShowAll:    opts.ShowAll,
		Hyperlinks: output.StdoutIsTerminal(),
	})
	if err := formatter.Format(reports, cmd.OutOrStdout()); err != nil {
		return err
	}

	record(cfg.FullName(), reports, opts, m)
	output.WriteFailures(reports, cmd.ErrOrStderr())
	return nil
}

// record persists the run history and metrics. Failures here are logged;
// the issues have already been processed.
func record(repo string, reports []policy.Report, opts *Options, m *metrics.Metrics) {
	if !opts.NoHistory {
		if store, err := stats.NewStore(); err != nil {
			log.Warn("history unavailable", "error", err)
		} else {
			snaps := make([]stats.Snapshot, 0, len(reports))
			for _, r := range reports {
				snaps = append(snaps, stats.FromReport(repo, r))
			}
			if err := store.Append(snaps...); err != nil {
				log.Warn("failed to record history", "error", err)
			}
		}
	}

	if opts.MetricsFile != "" {
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			log.Warn("failed to write metrics", "error", err)
		}
	}
}
