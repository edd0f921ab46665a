package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spiffcs/issuebot/config"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig(opts *Options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the current merged configuration.

Subcommands:
  init      Create a starter config file
  path      Show config file locations
  show      Show current merged config (same as bare 'issuebot config')
  validate  Check that every required key is set`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(opts, outputFormat, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigShow(opts))
	cmd.AddCommand(NewCmdConfigValidate(opts))

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var global, local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		Long: `Create a starter config file with the three notice messages and empty
label ids.

Use --global to create in ~/.config/issuebot/config.yaml (applies everywhere)
Use --local to create in ./.issuebot.yaml (applies only in this directory)
Without flags, you'll be prompted to choose.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(global, local, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Create global config file (~/.config/issuebot/config.yaml)")
	cmd.Flags().BoolVar(&local, "local", false, "Create local config file (./.issuebot.yaml)")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the config file named by $GITISSUEBOT_CONFIG and the global and local config files, and indicate which exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeConfigPaths(config.GetConfigPaths(), cmd.OutOrStdout())
			return nil
		},
	}
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow(opts *Options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current merged configuration",
		Long:  `Show the current configuration after merging the global and local configs. The API key is redacted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(opts, outputFormat, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigValidate creates the config validate subcommand.
func NewCmdConfigValidate(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every required key is set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration for %s is valid.\n", cfg.FullName())
			return nil
		},
	}
}

func runConfigInit(global, local bool, in io.Reader, out io.Writer) error {
	if global && local {
		return fmt.Errorf("cannot specify both --global and --local")
	}

	paths := config.GetConfigPaths()
	var targetPath string
	var location string

	if global {
		targetPath = paths.GlobalPath
		location = "global"
	} else if local {
		targetPath = paths.LocalPath
		location = "local"
	} else {
		// Prompt user to choose
		_, _ = fmt.Fprintln(out, "Where would you like to create the config file?")
		_, _ = fmt.Fprintf(out, "  [1] Global (%s) - applies everywhere\n", paths.GlobalPath)
		_, _ = fmt.Fprintf(out, "  [2] Local (%s) - applies only in this directory\n", paths.LocalPath)
		_, _ = fmt.Fprint(out, "Choose [1/2]: ")

		reader := bufio.NewReader(in)
		choice, err := reader.ReadString('\n')
		if err != nil && choice == "" {
			return fmt.Errorf("failed to read input: %w", err)
		}

		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			targetPath = paths.GlobalPath
			location = "global"
		case "2":
			targetPath = paths.LocalPath
			location = "local"
		default:
			return fmt.Errorf("invalid choice: %s (must be 1 or 2)", choice)
		}
		_, _ = fmt.Fprintln(out)
	}

	if _, err := os.Stat(targetPath); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'issuebot config show' to view current config", targetPath)
	}

	if err := config.SaveTo(targetPath, config.MinimalConfig()); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Created %s config file: %s\n\n", location, targetPath)
	_, _ = fmt.Fprintln(out, "Fill in label_ids ('issuebot labels' lists them), then run 'issuebot config validate'.")

	return nil
}

func writeConfigPaths(paths config.ConfigPathInfo, w io.Writer) {
	_, _ = fmt.Fprintln(w, "Configuration file locations:")
	_, _ = fmt.Fprintln(w)

	if paths.EnvPath != "" {
		_, _ = fmt.Fprintf(w, "  $%s: %s (used instead of global and local)\n", config.EnvConfigPath, paths.EnvPath)
	}

	_, _ = fmt.Fprintf(w, "  Global: %s (%s)\n", paths.GlobalPath, existence(paths.GlobalExists))
	_, _ = fmt.Fprintf(w, "  Local:  %s (%s)\n", paths.LocalPath, existence(paths.LocalExists))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Load order: --config -> $"+config.EnvConfigPath+" -> global + local (local overrides global)")
}

func existence(exists bool) string {
	if exists {
		return "exists"
	}
	return "not found"
}

func runConfigShow(opts *Options, format string, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfg = cfg.Redacted()

	switch format {
	case "yaml":
		yamlStr, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(w, yamlStr)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		_, _ = fmt.Fprintln(w, string(data))
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}

	return nil
}
