package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskplan/pkg/export"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/orgmode"
	"github.com/harrisonrobin/taskplan/pkg/planner"
	"github.com/harrisonrobin/taskplan/pkg/taskwarrior"
	"github.com/harrisonrobin/taskplan/pkg/ui"
)

type planOutputs struct {
	ics         string
	csv         string
	md          string
	org         string
	taskwarrior string
	importTasks bool
}

func (o *planOutputs) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&o.ics, "ics", "", "Write the blocks as an iCalendar file ('-' for stdout)")
	fs.StringVar(&o.csv, "csv", "", "Write tasks as CSV")
	fs.StringVar(&o.md, "md", "", "Write tasks as Markdown")
	fs.StringVar(&o.org, "org", "", "Write tasks as org-mode TODO entries")
	fs.StringVar(&o.taskwarrior, "taskwarrior", "", "Write tasks as Taskwarrior import JSON")
	fs.BoolVar(&o.importTasks, "import", false, "Import the tasks into Taskwarrior")
}

func (o *planOutputs) write(cmd *cobra.Command, sess *planner.Session, tasks []model.Task, blocks []model.Block) error {
	loc := sess.Settings.Location
	now := sess.Now()

	docs := []struct {
		path   string
		render func() (string, error)
	}{
		{o.ics, func() (string, error) { return export.ICS(blocks, now), nil }},
		{o.csv, func() (string, error) { return export.CSV(tasks), nil }},
		{o.md, func() (string, error) { return export.Markdown(tasks, loc), nil }},
		{o.org, func() (string, error) { return orgmode.Export(tasks, blocks, loc), nil }},
		{o.taskwarrior, func() (string, error) {
			var sb strings.Builder
			err := taskwarrior.WriteJSON(&sb, taskwarrior.FromTasks(tasks, blocks, now))
			return sb.String(), err
		}},
	}
	for _, d := range docs {
		if d.path == "" {
			continue
		}
		content, err := d.render()
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, d.path, content); err != nil {
			return err
		}
	}

	if o.importTasks {
		if err := taskwarrior.NewClient().Import(cmd.Context(), taskwarrior.FromTasks(tasks, blocks, now)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(fmt.Sprintf("%s imported %d task(s) into Taskwarrior", ui.IconDone, len(tasks))))
	}
	return nil
}

// runPlan extracts and schedules, printing the task list, the plan and any shortfall.
func runPlan(cmd *cobra.Command, a *app, flags *sessionFlags, args []string) (*planner.Session, []model.Task, []model.Block, error) {
	sess, err := flags.session(cmd, a)
	if err != nil {
		return nil, nil, nil, err
	}
	tasks, err := flags.collectTasks(cmd.Context(), cmd, sess, args)
	if err != nil {
		return nil, nil, nil, err
	}
	blocks, report := sess.Plan(tasks)

	out := cmd.OutOrStdout()
	loc := sess.Settings.Location
	fmt.Fprintln(out, ui.Heading(ui.IconTask, fmt.Sprintf("%d task(s)", len(tasks))))
	fmt.Fprintln(out, ui.TaskTable(tasks, loc))
	fmt.Fprintln(out, ui.Heading(ui.IconCalendar, fmt.Sprintf("%d block(s)", len(blocks))))
	fmt.Fprintln(out, ui.BlockTable(blocks, loc))
	for _, line := range ui.ShortfallLines(report) {
		fmt.Fprintln(out, line)
	}
	return sess, tasks, blocks, nil
}

func newPlanCmd(a *app) *cobra.Command {
	var flags sessionFlags
	var outputs planOutputs

	cmd := &cobra.Command{
		Use:   "plan [file...]",
		Short: "Extract tasks and schedule them into work blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, tasks, blocks, err := runPlan(cmd, a, &flags, args)
			if err != nil {
				return err
			}
			return outputs.write(cmd, sess, tasks, blocks)
		},
	}

	flags.register(cmd)
	outputs.register(cmd)

	return cmd
}
