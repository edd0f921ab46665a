package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/issuebot/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "issuebot",
		Short: "Label, warn and close inactive GitHub issues",
		Long: `issuebot finds open issues nobody has touched for a long time.

After six months without human activity an issue gets a first notice and the
inactive label, after eleven months a second notice and the pending_closure
label, and after a year it is closed. Issues that see new activity lose the
inactivity labels again.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.Initialize(opts.Verbosity, os.Stderr)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, opts, runModes)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default: $"+"GITISSUEBOT_CONFIG, then global and local config)")
	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// `issuebot` and `issuebot run` work identically
	addRunFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdRun(opts))
	rootCmd.AddCommand(NewCmdSweep(opts))
	rootCmd.AddCommand(NewCmdReactivate(opts))
	rootCmd.AddCommand(NewCmdLabels(opts))
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdHistory(opts))
	rootCmd.AddCommand(NewCmdConfig(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
