package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/spiffcs/issuebot/config"
	"github.com/spiffcs/issuebot/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display the remaining GraphQL and core API quota and when each resets.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := ghclient.NewClient(cmd.Context(), cfg.ClientOptions())
			if err != nil {
				return err
			}
			limits, err := client.RateLimits(cmd.Context())
			if err != nil {
				return err
			}
			writeRateLimits(limits, time.Now(), cmd.OutOrStdout())
			return nil
		},
	}
}

func writeRateLimits(limits *gh.RateLimits, now time.Time, w io.Writer) {
	_, _ = fmt.Fprintln(w, "GitHub API Rate Limits:")
	_, _ = fmt.Fprintln(w)
	writeRate(w, "GraphQL:", limits.GraphQL, now)
	writeRate(w, "Core API:", limits.Core, now)
}

func writeRate(w io.Writer, name string, rate *gh.Rate, now time.Time) {
	if rate == nil {
		return
	}
	resetIn := rate.Reset.Time.Sub(now).Round(time.Second)
	if resetIn < 0 {
		resetIn = 0
	}
	_, _ = fmt.Fprintf(w, "%-10s %d/%d remaining (resets in %s)\n", name, rate.Remaining, rate.Limit, resetIn)
}
