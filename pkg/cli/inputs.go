package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskplan/pkg/extract"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/orgmode"
	"github.com/harrisonrobin/taskplan/pkg/planner"
	"github.com/harrisonrobin/taskplan/pkg/taskwarrior"
	"github.com/harrisonrobin/taskplan/pkg/textract"
)

// sessionFlags are the input and planner flags shared by extract, plan and push.
type sessionFlags struct {
	text       string
	fromOrg    []string
	fromOrgTag string
	fromTask   string

	timezone string
	start    int
	end      int
	daily    float64
	block    int
	useLLM   bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.text, "text", "t", "", "Pasted text to extract tasks from")
	fs.StringSliceVar(&f.fromOrg, "from-org", nil, "Org file(s) with TODO entries to add as tasks")
	fs.StringVar(&f.fromOrgTag, "from-org-tag", "", "Only add org entries carrying this tag")
	fs.StringVar(&f.fromTask, "from-task", "", "Taskwarrior filter whose pending tasks are added (e.g. project:CS61), or '-' to read Taskwarrior export JSON from stdin")

	fs.StringVar(&f.timezone, "tz", "", "Timezone for dates and work hours")
	fs.IntVar(&f.start, "start", 0, "Work day start hour (0-23)")
	fs.IntVar(&f.end, "end", 0, "Work day end hour (1-24)")
	fs.Float64Var(&f.daily, "daily", 0, "Maximum scheduled hours per day")
	fs.IntVar(&f.block, "block", 0, "Block length in minutes")
	fs.BoolVar(&f.useLLM, "llm", false, "Use the language model extractor (falls back to rules)")
}

// overrides keeps only the flags the user actually set.
func (f *sessionFlags) overrides(cmd *cobra.Command) planner.Overrides {
	var o planner.Overrides
	fs := cmd.Flags()
	if fs.Changed("tz") {
		o.Timezone = &f.timezone
	}
	if fs.Changed("start") {
		o.WorkStartHour = &f.start
	}
	if fs.Changed("end") {
		o.WorkEndHour = &f.end
	}
	if fs.Changed("daily") {
		o.DailyHours = &f.daily
	}
	if fs.Changed("block") {
		o.BlockMinutes = &f.block
	}
	if fs.Changed("llm") {
		o.UseLLM = &f.useLLM
	}
	return o
}

func (f *sessionFlags) session(cmd *cobra.Command, a *app) (*planner.Session, error) {
	base, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg := f.overrides(cmd).Apply(base)
	completer := planner.CompleterFor(cfg)
	if cfg.UseLLM && completer == nil {
		log.Printf("LLM extraction requested but %s is not set; using rule-based extraction", cfg.LLM.APIKeyEnv)
	}
	return planner.NewSession(cfg, completer, nil)
}

// collectTasks extracts from --text and file args, then merges structured inputs.
func (f *sessionFlags) collectTasks(ctx context.Context, cmd *cobra.Command, sess *planner.Session, args []string) ([]model.Task, error) {
	if f.fromTask == "-" && slices.Contains(args, "-") {
		return nil, fmt.Errorf("stdin cannot be both a file argument and --from-task -")
	}
	files, err := textract.ReadFiles(args, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	sources := textract.Collect(f.text, files)
	if len(sources) == 0 && len(f.fromOrg) == 0 && f.fromTask == "" {
		return nil, fmt.Errorf("no input: pass files, '-' for stdin, --text, --from-org or --from-task")
	}
	read := make(map[string]bool, len(sources))
	for _, src := range sources {
		read[src.Name] = true
	}
	for _, file := range files {
		if !read[filepath.Base(file.Name)] {
			log.Printf("Warning: no text could be read from %s", file.Name)
		}
	}

	tasks := sess.Extract(ctx, sources)

	if len(f.fromOrg) > 0 {
		orgTasks, err := orgmode.ParseFiles(f.fromOrg, sess.Settings.Location)
		if err != nil {
			return nil, err
		}
		if f.fromOrgTag != "" {
			orgTasks = orgmode.FilterTasks(orgTasks, f.fromOrgTag)
		}
		tasks = append(tasks, orgTasks...)
	}
	if f.fromTask != "" {
		tws, err := f.taskwarriorTasks(ctx, cmd)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, taskwarrior.ToTasks(tws)...)
	}
	return extract.Dedupe(tasks), nil
}

// taskwarriorTasks runs `task export` with the --from-task filter, or decodes
// an export piped on stdin when the filter is "-".
func (f *sessionFlags) taskwarriorTasks(ctx context.Context, cmd *cobra.Command) ([]taskwarrior.Task, error) {
	client := taskwarrior.NewClient()
	if f.fromTask == "-" {
		return client.ParseTasks(cmd.InOrStdin())
	}
	return client.GetTasks(ctx, append(strings.Fields(f.fromTask), "status:pending"))
}

// writeOutput writes content to path, or to stdout for "-".
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
