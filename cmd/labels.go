package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spiffcs/issuebot/config"
	"github.com/spiffcs/issuebot/internal/format"
	"github.com/spiffcs/issuebot/internal/ghclient"
	"github.com/spiffcs/issuebot/internal/model"
)

// NewCmdLabels creates the labels command.
func NewCmdLabels(opts *Options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List repository labels with their node ids",
		Long: `List the labels of the configured repository together with the node ids
the label_ids section of the config expects. Labels already mapped to a role
are marked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Owner == "" || cfg.Repository == "" {
				return fmt.Errorf("owner and repository must be configured")
			}
			client, err := ghclient.NewClient(cmd.Context(), cfg.ClientOptions())
			if err != nil {
				return err
			}
			labels, err := client.Labels(cmd.Context())
			if err != nil {
				return err
			}
			return writeLabels(labels, cfg.LabelIDs, outputFormat, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	return cmd
}

// roleFor returns the role a label is mapped to, by configured id or by name.
func roleFor(l ghclient.RepoLabel, ids model.LabelIDs) string {
	for _, role := range model.Roles() {
		if id := ids.For(role); id != "" && id == l.NodeID {
			return string(role)
		}
	}
	for _, role := range model.Roles() {
		if l.Name == string(role) {
			return string(role) + " (by name)"
		}
	}
	return ""
}

func writeLabels(labels []ghclient.RepoLabel, ids model.LabelIDs, outputFormat string, w io.Writer) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(labels)
	case "table":
	default:
		return fmt.Errorf("invalid format: %s (must be table or json)", outputFormat)
	}

	if len(labels) == 0 {
		_, _ = fmt.Fprintln(w, "No labels found.")
		return nil
	}

	nameWidth := len("NAME")
	for _, l := range labels {
		if width := format.DisplayWidth(l.Name); width > nameWidth {
			nameWidth = width
		}
	}

	_, _ = fmt.Fprintf(w, "%s  %-24s  %s\n", format.Fit("NAME", nameWidth), "NODE ID", "ROLE")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", nameWidth+2+24+2+20))
	for _, l := range labels {
		_, _ = fmt.Fprintf(w, "%s  %-24s  %s\n", format.Fit(l.Name, nameWidth), l.NodeID, roleFor(l, ids))
	}
	return nil
}
