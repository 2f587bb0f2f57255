package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskplan/pkg/auth"
	"github.com/harrisonrobin/taskplan/pkg/ui"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access (replaces any stored token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenFile, err := auth.TokenPath()
			if err != nil {
				return fmt.Errorf("could not find path to token file: %w", err)
			}
			if err := os.Remove(tokenFile); err == nil {
				log.Printf("Removed existing token file at '%s'", tokenFile)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("could not delete token file '%s': %w. Please delete it manually", tokenFile, err)
			}

			if err := auth.Authorize(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Authentication successful! Token saved to "+tokenFile))
			return nil
		},
	}
}
