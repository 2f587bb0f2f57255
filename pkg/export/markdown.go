package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

const (
	EmptyMarkdown = "# Tasks\n\n(No tasks extracted)\n"

	markdownDueLayout = "Mon Jan 02, 03:04 PM"
)

// SortTasks orders tasks by priority, then due date with undated tasks last.
// The input slice is not modified.
func SortTasks(tasks []model.Task) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Due == nil || b.Due == nil {
			return a.Due != nil && b.Due == nil
		}
		return a.Due.Before(*b.Due)
	})
	return sorted
}

// Markdown renders a notes-friendly task list with due dates shown in loc.
func Markdown(tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return EmptyMarkdown
	}
	lines := []string{"# Tasks", ""}
	for _, t := range SortTasks(tasks) {
		due := "—"
		if t.Due != nil {
			due = t.Due.In(loc).Format(markdownDueLayout)
		}
		tag := t.Tag
		if tag == "" {
			tag = "-"
		}
		lines = append(lines, fmt.Sprintf("- **P%d** %s  \n  • Tag: `%s`  \n  • Est: %dm  \n  • Due: %s",
			t.Priority, t.Title, tag, t.EstMinutes, due))
	}
	return strings.Join(lines, "\n") + "\n"
}
