package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiffcs/issuebot/config"
	"github.com/spiffcs/issuebot/internal/ghclient"
	"github.com/spiffcs/issuebot/internal/metrics"
	"github.com/spiffcs/issuebot/internal/model"
	"github.com/spiffcs/issuebot/internal/policy"
	"github.com/spiffcs/issuebot/internal/stats"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "issuebot" {
		t.Errorf("expected Use to be 'issuebot', got %q", cmd.Use)
	}

	want := []string{"run", "sweep", "reactivate", "labels", "ratelimit", "history", "config", "version"}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRunFlags(t *testing.T) {
	for _, name := range []string{"run", "sweep", "reactivate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := New().Find([]string{name})
			require.NoError(t, err)
			for _, flag := range []string{"dry-run", "now", "limit", "output", "tui", "metrics-file", "no-history", "all"} {
				assert.NotNil(t, sub.Flags().Lookup(flag), "flag --%s", flag)
			}
		})
	}
}

func TestNewCmdVersion(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")

	cmd := NewCmdVersion()
	if cmd.Use != "version" {
		t.Errorf("expected Use to be 'version', got %q", cmd.Use)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	assert.Contains(t, out.String(), "issuebot 1.0.0")
	assert.Contains(t, out.String(), "commit: abc123")
}

func TestNewOptions(t *testing.T) {
	opts := NewOptions(
		WithFormat("json"),
		WithDryRun(true),
		WithLimit(25),
		WithNow("2024-01-01T00:00:00Z"),
		WithVerbosity(2),
		WithNoHistory(true),
	)
	assert.Equal(t, "json", opts.Format)
	assert.True(t, opts.DryRun)
	assert.Equal(t, 25, opts.Limit)
	assert.Equal(t, "2024-01-01T00:00:00Z", opts.Now)
	assert.Equal(t, 2, opts.Verbosity)
	assert.True(t, opts.NoHistory)

	assert.Equal(t, "table", NewOptions().Format)
}

func TestTUIFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"true", "true", false},
		{"yes", "true", false},
		{"false", "false", false},
		{"0", "false", false},
		{"auto", "auto", false},
		{"sometimes", "auto", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			opts := &Options{}
			f := newTUIFlag(opts)
			err := f.Set(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldUseTUIVerbose(t *testing.T) {
	force := true
	opts := &Options{Verbosity: 1, TUI: &force}
	if shouldUseTUI(opts) {
		t.Error("verbose output must disable the TUI")
	}

	off := false
	if shouldUseTUI(&Options{TUI: &off}) {
		t.Error("--tui=false must disable the TUI")
	}
	if !shouldUseTUI(&Options{TUI: &force}) {
		t.Error("--tui=true must enable the TUI")
	}
}

func TestEvaluationTime(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	}

	tests := []struct {
		name     string
		override string
		want     time.Time
		wantErr  bool
	}{
		{
			name: "clock when unset",
			want: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		},
		{
			name:     "override",
			override: "2024-01-01T00:00:00Z",
			want:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "override with offset",
			override: "2024-01-01T02:00:00+02:00",
			want:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "not RFC3339",
			override: "2024-01-01",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluationTime(tt.override, clock)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--now")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestFilterFor(t *testing.T) {
	sweep := filterFor(policy.ModeSweep, 40)
	assert.Equal(t, 40, sweep.First)
	assert.Empty(t, sweep.Labels)

	reactivate := filterFor(policy.ModeReactivate, 0)
	assert.Equal(t, 0, reactivate.First)
	assert.Equal(t, []string{"inactive", "pending_closure"}, reactivate.Labels)
}

// fakeSource serves a fixed batch per filter.
type fakeSource struct {
	mu      sync.Mutex
	sweep   []model.Issue
	labeled []model.Issue
	err     error
	filters []ghclient.IssueFilter
}

func (f *fakeSource) OpenIssues(_ context.Context, filter ghclient.IssueFilter) (ghclient.IssuePage, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()

	if len(filter.Labels) > 0 {
		if f.err != nil {
			return ghclient.IssuePage{}, f.err
		}
		return ghclient.IssuePage{Issues: f.labeled}, nil
	}
	return ghclient.IssuePage{Issues: f.sweep}, nil
}

var testPolicy = policy.Config{
	BotLogin: "issuebot",
	LabelIDs: model.LabelIDs{
		Inactive:            "LA_inactive",
		PendingClosure:      "LA_pending",
		AutomaticallyClosed: "LA_closed",
	},
	FirstMessage:  "first",
	SecondMessage: "second",
	FinalMessage:  "final",
}

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testPipeline(source ghclient.IssueSource, mutator policy.Mutator) *pipeline {
	return &pipeline{
		source:  source,
		mutator: mutator,
		policy:  testPolicy,
		rt:      &runtime{},
		clock:   func() time.Time { return testNow },
	}
}

func TestPipelineRun(t *testing.T) {
	source := &fakeSource{
		sweep: []model.Issue{
			{ID: "I_stale", Number: 1, CreatedAt: "2023-06-01T00:00:00Z"},
			{ID: "I_new", Number: 2, CreatedAt: "2023-12-20T00:00:00Z"},
		},
		labeled: []model.Issue{
			{
				ID: "I_revived", Number: 3, CreatedAt: "2022-01-01T00:00:00Z",
				Labels: []model.Label{{ID: "LA_inactive", Name: "inactive"}},
				Comments: []model.Comment{
					{Author: "octocat", CreatedAt: "2023-12-01T00:00:00Z", UpdatedAt: "2023-12-01T00:00:00Z"},
				},
			},
		},
	}
	rec := policy.NewRecorder()
	p := testPipeline(source, rec)

	reports, err := p.run(context.Background(), runModes, testNow)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, policy.ModeReactivate, reports[0].Mode)
	assert.Equal(t, policy.ModeSweep, reports[1].Mode)
	assert.Equal(t, 1, reports[1].Count(policy.TierWarn))
	assert.Equal(t, 1, reports[1].Count(policy.TierFresh))

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, policy.OpRemoveLabels, calls[0].Op)
	assert.Equal(t, "I_revived", calls[0].IssueID)
	assert.Equal(t, []string{"LA_inactive", "LA_pending"}, calls[0].LabelIDs)
	assert.Equal(t, policy.OpComment, calls[1].Op)
	assert.Equal(t, "first", calls[1].Body)
	assert.Equal(t, policy.OpAddLabel, calls[2].Op)
	assert.Equal(t, []string{"LA_inactive"}, calls[2].LabelIDs)

	assert.Len(t, source.filters, 2)
}

func TestPipelineSweepOnly(t *testing.T) {
	source := &fakeSource{
		sweep: []model.Issue{{ID: "I_old", Number: 1, CreatedAt: "2022-06-01T00:00:00Z"}},
	}
	rec := policy.NewRecorder()
	p := testPipeline(source, rec)
	p.limit = 10

	reports, err := p.run(context.Background(), sweepModes, testNow)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Count(policy.TierClosed))

	require.Len(t, source.filters, 1)
	assert.Equal(t, 10, source.filters[0].First)
	assert.Empty(t, source.filters[0].Labels)
	assert.Len(t, rec.Calls(), 3)
}

func TestPipelineFetchFailure(t *testing.T) {
	source := &fakeSource{
		sweep: []model.Issue{{ID: "I_stale", Number: 1, CreatedAt: "2023-06-01T00:00:00Z"}},
		err:   errors.New("HTTP 502"),
	}
	rec := policy.NewRecorder()
	p := testPipeline(source, rec)

	reports, err := p.run(context.Background(), runModes, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reactivate batch")
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Nil(t, reports)
	assert.Empty(t, rec.Calls(), "nothing is mutated when a fetch fails")
}

func TestPipelineRecordsMetrics(t *testing.T) {
	source := &fakeSource{
		sweep: []model.Issue{{ID: "I_stale", Number: 1, CreatedAt: "2023-06-01T00:00:00Z"}},
	}
	m := metrics.New()
	p := testPipeline(source, m.Instrument(policy.NewRecorder()))
	p.metrics = m

	_, err := p.run(context.Background(), sweepModes, testNow)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "issuebot.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `issuebot_issues_evaluated_total{mode="sweep",tier="warn"} 1`)
	assert.Contains(t, string(data), `issuebot_mutations_total{operation="comment",result="success"} 1`)
}

func TestPipelineCancelled(t *testing.T) {
	source := &fakeSource{
		sweep: []model.Issue{{ID: "I_stale", Number: 1, CreatedAt: "2023-06-01T00:00:00Z"}},
	}
	rec := policy.NewRecorder()
	p := testPipeline(source, rec)

	batches := [][]model.Issue{source.sweep, source.sweep}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports := p.evaluate(ctx, runModes, batches, testNow)
	require.Len(t, reports, 1, "a cancelled run stops after the first mode")
	assert.Empty(t, rec.Calls())
}

func TestTasksFor(t *testing.T) {
	assert.Len(t, tasksFor(runModes), 4)
	assert.Len(t, tasksFor(sweepModes), 3)
	assert.Len(t, tasksFor(reactivateModes), 3)
}

func TestWriteLabels(t *testing.T) {
	labels := []ghclient.RepoLabel{
		{Name: "bug", NodeID: "LA_bug"},
		{Name: "inactive", NodeID: "LA_inactive"},
		{Name: "stale-ish", NodeID: "LA_pending"},
	}
	ids := model.LabelIDs{PendingClosure: "LA_pending"}

	var buf bytes.Buffer
	require.NoError(t, writeLabels(labels, ids, "table", &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "NODE ID")
	assert.NotContains(t, lines[2], "inactive", "bug has no role")
	assert.Contains(t, lines[3], "inactive (by name)")
	assert.Contains(t, lines[4], "pending_closure")

	buf.Reset()
	require.NoError(t, writeLabels(labels, ids, "json", &buf))
	assert.Contains(t, buf.String(), `"id": "LA_bug"`)

	assert.Error(t, writeLabels(labels, ids, "xml", &buf))
}

func TestWriteRateLimits(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limits := &gh.RateLimits{
		Core:    &gh.Rate{Limit: 5000, Remaining: 4999, Reset: gh.Timestamp{Time: now.Add(30 * time.Minute)}},
		GraphQL: &gh.Rate{Limit: 5000, Remaining: 4990, Reset: gh.Timestamp{Time: now.Add(-time.Minute)}},
	}

	var buf bytes.Buffer
	writeRateLimits(limits, now, &buf)
	out := buf.String()
	assert.Contains(t, out, "GraphQL:   4990/5000 remaining (resets in 0s)")
	assert.Contains(t, out, "Core API:  4999/5000 remaining (resets in 30m0s)")
}

func TestWriteConfigPaths(t *testing.T) {
	var buf bytes.Buffer
	writeConfigPaths(config.ConfigPathInfo{
		EnvPath:      "/etc/issuebot.yaml",
		GlobalPath:   "/home/me/.config/issuebot/config.yaml",
		GlobalExists: true,
		LocalPath:    "/work/.issuebot.yaml",
	}, &buf)

	out := buf.String()
	assert.Contains(t, out, "$GITISSUEBOT_CONFIG: /etc/issuebot.yaml")
	assert.Contains(t, out, "config.yaml (exists)")
	assert.Contains(t, out, ".issuebot.yaml (not found)")
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvToken, "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestRunConfigInit(t *testing.T) {
	dir := isolateConfig(t)

	var out bytes.Buffer
	require.NoError(t, runConfigInit(false, false, strings.NewReader("2\n"), &out))
	assert.Contains(t, out.String(), "Choose [1/2]")

	cfg, err := config.LoadFile(filepath.Join(dir, ".issuebot.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "my-org", cfg.Owner)

	err = runConfigInit(false, true, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.Error(t, runConfigInit(true, true, strings.NewReader(""), &out))
	assert.Error(t, runConfigInit(false, false, strings.NewReader("3\n"), &out))
}

func TestRunConfigShowRedactsToken(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: octo\nrepository: hello\napi_key: ghp_secret\n"), 0o600))

	for _, format := range []string{"yaml", "json"} {
		var buf bytes.Buffer
		require.NoError(t, runConfigShow(&Options{ConfigPath: path}, format, &buf))
		assert.NotContains(t, buf.String(), "ghp_secret")
		assert.Contains(t, buf.String(), "********")
		assert.Contains(t, buf.String(), "octo")
	}

	var buf bytes.Buffer
	assert.Error(t, runConfigShow(&Options{ConfigPath: path}, "toml", &buf))
}

func TestRunBotInvalidConfig(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: octo\n"), 0o600))

	cmd := New()
	cmd.SetArgs([]string{"run", "--config", path, "--tui=false", "--no-history"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Missing, "repository")
	assert.Contains(t, verr.Missing, "label_ids.inactive")
}

func TestRunBotInvalidNow(t *testing.T) {
	isolateConfig(t)

	cmd := New()
	cmd.SetArgs([]string{"sweep", "--now", "yesterday", "--tui=false"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --now")
}

func TestHistoryAfter(t *testing.T) {
	cutoff := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	snaps := []stats.Snapshot{
		{Timestamp: cutoff.Add(-time.Hour), Mode: policy.ModeSweep},
		{Timestamp: cutoff, Mode: policy.ModeReactivate},
		{Timestamp: cutoff.Add(time.Hour), Mode: policy.ModeSweep},
	}

	assert.Len(t, after(snaps, time.Time{}), 3)

	kept := after(snaps, cutoff)
	require.Len(t, kept, 2)
	assert.Equal(t, policy.ModeReactivate, kept[0].Mode)
}
