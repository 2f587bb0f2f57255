package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskplan/pkg/colors"
	"github.com/harrisonrobin/taskplan/pkg/google"
	"github.com/harrisonrobin/taskplan/pkg/index"
	"github.com/harrisonrobin/taskplan/pkg/ui"
)

func newPushCmd(a *app) *cobra.Command {
	var flags sessionFlags
	var calendarName string
	var dryRun bool
	var list bool

	cmd := &cobra.Command{
		Use:   "push [file...]",
		Short: "Plan and replace the previously pushed blocks in Google Calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listPushed(cmd, a, calendarName)
			}
			sess, _, blocks, err := runPlan(cmd, a, &flags, args)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Info("dry run: calendar left untouched"))
				return nil
			}

			name := sess.Config.Calendar
			if calendarName != "" {
				name = calendarName
			}

			idx, err := index.NewEventIndex()
			if err != nil {
				return fmt.Errorf("could not load event index: %w", err)
			}
			cache, err := colors.NewColorCache()
			if err != nil {
				log.Printf("Warning: could not load color cache, colors will not persist: %v", err)
				cache = nil
			}

			client, err := google.NewClient(cmd.Context(), name, idx, cache)
			if err != nil {
				return err
			}
			res, pushErr := client.PushPlan(blocks)

			// Persist whatever was recorded, even after a partial failure.
			if err := idx.Save(); err != nil {
				log.Printf("Error saving event index: %v", err)
			}
			if cache != nil {
				if err := cache.Save(); err != nil {
					log.Printf("Error saving color cache: %v", err)
				}
			}
			if pushErr != nil {
				return pushErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("%s pushed %d block(s) to %q", ui.IconDone, res.Created, name)))
			if res.Deleted > 0 {
				fmt.Fprintln(out, ui.Info(fmt.Sprintf("removed %d block(s) from the previous push", res.Deleted)))
			}
			if res.Failed > 0 {
				fmt.Fprintln(out, ui.Warning(fmt.Sprintf("%d block(s) failed, see log", res.Failed)))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&calendarName, "calendar", "c", "", "Google Calendar name (overrides config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan only, do not touch the calendar")
	cmd.Flags().BoolVar(&list, "list", false, "List the upcoming pushed blocks instead of planning")

	return cmd
}

// listPushed prints the upcoming events created by earlier pushes.
func listPushed(cmd *cobra.Command, a *app, calendarName string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	name := cfg.Calendar
	if calendarName != "" {
		name = calendarName
	}

	idx, err := index.NewEventIndex()
	if err != nil {
		return fmt.Errorf("could not load event index: %w", err)
	}
	client, err := google.NewClient(cmd.Context(), name, idx, nil)
	if err != nil {
		return err
	}
	events, err := client.ListPlannedEvents(time.Now())
	if err != nil {
		return err
	}
	writePlannedEvents(cmd.OutOrStdout(), name, events, idx, loc)
	return nil
}

// writePlannedEvents marks events the index does not know with "*"; the next
// push cannot remove those.
func writePlannedEvents(w io.Writer, name string, events []*calendar.Event, idx *index.EventIndex, loc *time.Location) {
	fmt.Fprintln(w, ui.Heading(ui.IconCalendar, fmt.Sprintf("Pushed blocks in %q", name)))
	untracked := 0
	for _, e := range events {
		mark := " "
		if idx.Get(e.Id) == "" {
			mark = "*"
			untracked++
		}
		start := ""
		if e.Start != nil {
			start = e.Start.DateTime
			if t, err := time.Parse(time.RFC3339, start); err == nil {
				start = t.In(loc).Format("Mon Jan 02 15:04")
			}
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, ui.Muted.Render(start), e.Summary)
	}
	fmt.Fprintln(w, ui.Info(fmt.Sprintf("%d upcoming block(s), %d event(s) in the local index", len(events), idx.Len())))
	if untracked > 0 {
		fmt.Fprintln(w, ui.Warning(fmt.Sprintf("%d block(s) marked * are not in the index and will not be replaced by the next push", untracked)))
	}
}
