package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskplan/pkg/export"
	"github.com/harrisonrobin/taskplan/pkg/ui"
)

func newExtractCmd(a *app) *cobra.Command {
	var flags sessionFlags
	var asJSON bool
	var csvPath, mdPath string

	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Extract tasks from text, PDFs or stdin ('-')",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.session(cmd, a)
			if err != nil {
				return err
			}
			tasks, err := flags.collectTasks(cmd.Context(), cmd, sess, args)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := writeOutput(cmd, csvPath, export.CSV(tasks)); err != nil {
					return err
				}
			}
			if mdPath != "" {
				if err := writeOutput(cmd, mdPath, export.Markdown(tasks, sess.Settings.Location)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			fmt.Fprintln(out, ui.Heading(ui.IconTask, fmt.Sprintf("%d task(s)", len(tasks))))
			fmt.Fprintln(out, ui.TaskTable(tasks, sess.Settings.Location))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tasks as JSON")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write tasks as CSV ('-' for stdout)")
	cmd.Flags().StringVar(&mdPath, "md", "", "Write tasks as Markdown ('-' for stdout)")

	return cmd
}
