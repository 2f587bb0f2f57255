package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskplan/pkg/config"
	"github.com/harrisonrobin/taskplan/pkg/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := a.path()
				if err != nil {
					return err
				}
				cfg, err := config.LoadFrom(path)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, ui.LabelValue("file", path))
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			},
		},
		&cobra.Command{
			Use:   "set-calendar <name>",
			Short: "Set the default Google Calendar name",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) != 1 {
					return errors.New("calendar name is required")
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.update(cmd, "calendar", args[0])
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set one setting (e.g. block_minutes 25)",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) != 2 {
					return errors.New("key and value are required")
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.update(cmd, args[0], args[1])
			},
		},
	)
	return cmd
}

func (a *app) update(cmd *cobra.Command, key, value string) error {
	path, err := a.path()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(fmt.Sprintf("%s %s set to %s", ui.IconDone, key, value)))
	return nil
}
