package configcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal"
	"github.com/tinyland-inc/picobuttons/pkg/config"
)

const redacted = "[redacted]"

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialise configuration",
		Example: `  picobuttons config show
  picobuttons config init
  picobuttons config init --force`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfig(false)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := internal.GetConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(showCmd, initCmd)
	return cmd
}

func printConfig(w io.Writer, cfg *config.Config) error {
	shown := *cfg
	for _, secret := range []*string{
		&shown.Channels.Discord.Token,
		&shown.Channels.Slack.BotToken,
		&shown.Channels.Slack.AppToken,
		&shown.Channels.Telegram.Token,
	} {
		if *secret != "" {
			*secret = redacted
		}
	}
	data, err := json.MarshalIndent(&shown, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
