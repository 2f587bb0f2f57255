package orgmode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/export"
	"github.com/harrisonrobin/taskplan/pkg/model"
)

const timestampLayout = "2006-01-02 Mon 15:04"

var (
	headlineRegex  = regexp.MustCompile(`^\* (TODO|DONE)\s*(?:\[#([A-C])\])?\s*(.*?)(?:\s+:([\w@:]+):)?\s*$`)
	deadlineRegex  = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2}\s+[A-Za-z]{3}\s+\d{2}:\d{2})>`)
	propertyRegex  = regexp.MustCompile(`^:([A-Z_]+):\s*(.*)$`)
	effortRegex    = regexp.MustCompile(`^(\d+):(\d{2})$`)
	tagUnsafeChars = strings.NewReplacer(" ", "_", ":", "_")
)

// OrgPriority maps planner priorities onto org's [#A]..[#C] cookies.
func OrgPriority(p int) string {
	switch {
	case p <= 2:
		return "A"
	case p == 3:
		return "B"
	default:
		return "C"
	}
}

func priorityFromCookie(cookie string) int {
	switch cookie {
	case "A":
		return 1
	case "C":
		return 4
	default:
		return model.DefaultPriority
	}
}

// Export renders tasks as org-mode TODO entries in priority order. Times are
// written in loc and each task's first block becomes its SCHEDULED stamp.
func Export(tasks []model.Task, blocks []model.Block, loc *time.Location) string {
	firstBlock := make(map[string]time.Time)
	for _, b := range blocks {
		if s, ok := firstBlock[b.TaskID]; !ok || b.Start.Before(s) {
			firstBlock[b.TaskID] = b.Start
		}
	}

	var b strings.Builder
	b.WriteString("#+TITLE: Tasks\n")
	for _, t := range export.SortTasks(tasks) {
		fmt.Fprintf(&b, "\n* TODO [#%s] %s", OrgPriority(t.Priority), t.Title)
		if t.Tag != "" {
			fmt.Fprintf(&b, " :%s:", tagUnsafeChars.Replace(t.Tag))
		}
		b.WriteString("\n")

		var stamps []string
		if t.Due != nil {
			stamps = append(stamps, "DEADLINE: <"+t.Due.In(loc).Format(timestampLayout)+">")
		}
		if s, ok := firstBlock[t.ID]; ok {
			stamps = append(stamps, "SCHEDULED: <"+s.In(loc).Format(timestampLayout)+">")
		}
		if len(stamps) > 0 {
			b.WriteString("  " + strings.Join(stamps, " ") + "\n")
		}

		b.WriteString("  :PROPERTIES:\n")
		fmt.Fprintf(&b, "  :ID: %s\n", t.ID)
		fmt.Fprintf(&b, "  :EFFORT: %d:%02d\n", t.EstMinutes/60, t.EstMinutes%60)
		if t.Source != "" {
			fmt.Fprintf(&b, "  :SOURCE: %s\n", t.Source)
		}
		b.WriteString("  :END:\n")
	}
	return b.String()
}

// ParseFiles parses multiple org files, keeping open TODO entries only.
func ParseFiles(paths []string, loc *time.Location) ([]model.Task, error) {
	var all []model.Task
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		tasks, err := Parse(f, path, loc)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// Parse reads TODO headlines with their DEADLINE and property drawer.
// DONE entries are skipped; entries without an :ID: get a fresh one.
func Parse(r io.Reader, source string, loc *time.Location) ([]model.Task, error) {
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var current *model.Task
	done := false

	flush := func() {
		if current != nil && !done && current.Title != "" {
			tasks = append(tasks, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := headlineRegex.FindStringSubmatch(line); m != nil {
			flush()
			done = m[1] == "DONE"
			tag := strings.ReplaceAll(strings.SplitN(m[4], ":", 2)[0], "_", " ")
			t := model.NewTask(strings.TrimSpace(m[3]), nil, model.DefaultEstimate, tag, priorityFromCookie(m[2]), source)
			current = &t
			continue
		}
		if strings.HasPrefix(line, "* ") {
			flush()
			continue
		}
		if current == nil {
			continue
		}

		if m := deadlineRegex.FindStringSubmatch(line); m != nil {
			if due, err := time.ParseInLocation(timestampLayout, m[1], loc); err == nil {
				current.Due = &due
			}
			continue
		}
		m := propertyRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "ID":
			if m[2] != "" {
				current.ID = m[2]
			}
		case "EFFORT":
			if e := effortRegex.FindStringSubmatch(m[2]); e != nil {
				h, _ := strconv.Atoi(e[1])
				mins, _ := strconv.Atoi(e[2])
				if total := h*60 + mins; total > 0 {
					current.EstMinutes = total
				}
			}
		case "SOURCE":
			current.Source = m[2]
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FilterTasks keeps the tasks carrying the given tag.
func FilterTasks(tasks []model.Task, tag string) []model.Task {
	var filtered []model.Task
	for _, task := range tasks {
		if strings.EqualFold(task.Tag, tag) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}
