package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/issuebot/config"
	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/duration"
	"github.com/spiffcs/issuebot/internal/log"
	"github.com/spiffcs/issuebot/internal/output"
	"github.com/spiffcs/issuebot/internal/stats"
)

// NewCmdHistory creates the history command.
func NewCmdHistory(opts *Options) *cobra.Command {
	var (
		limit    int
		since    string
		allRepos bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long: `Show the most recent runs recorded for the configured repository, oldest
first. Dry runs are marked with an asterisk. Runs made with --no-history are
not recorded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := ""
			if !allRepos {
				cfg, err := config.Load(opts.ConfigPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				if cfg.Owner != "" && cfg.Repository != "" {
					repo = cfg.FullName()
				}
			}

			var cutoff time.Time
			if since != "" {
				var err error
				if cutoff, err = duration.Since(since, time.Now()); err != nil {
					return err
				}
			}

			store, err := stats.NewStore()
			if err != nil {
				return err
			}
			log.Debug("reading history", "path", store.Path(), "repo", repo, "since", cutoff)
			output.FormatHistory(after(store.Recent(limit, repo), cutoff), cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "number", "n", constants.DefaultHistoryShown, "Number of runs to show")
	cmd.Flags().StringVarP(&since, "since", "s", "", "Only show runs within this window (e.g., 1w, 30d, 6mo)")
	cmd.Flags().BoolVar(&allRepos, "all-repos", false, "Show runs for every repository")
	return cmd
}

// after drops snapshots taken before cutoff. A zero cutoff keeps everything.
func after(snaps []stats.Snapshot, cutoff time.Time) []stats.Snapshot {
	if cutoff.IsZero() {
		return snaps
	}
	kept := make([]stats.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if !s.Timestamp.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	return kept
}
