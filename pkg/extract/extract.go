// Package extract turns unstructured text into task records.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

// Source is one named input blob ("pasted" or a file name).
type Source struct {
	Name string `json:"source"`
	Text string `json:"text"`
}

// Extractor converts the text of one source into tasks. Implementations
// never fail: the worst case is an empty result.
type Extractor interface {
	Extract(ctx context.Context, text, source string) []model.Task
}

// Clock returns the current instant; it is swapped out in tests.
type Clock func() time.Time

// ExtractAll runs the extractor over every source and dedupes the combined result.
func ExtractAll(ctx context.Context, ex Extractor, sources []Source) []model.Task {
	var all []model.Task
	for _, src := range sources {
		if strings.TrimSpace(src.Text) == "" {
			continue
		}
		all = append(all, ex.Extract(ctx, src.Text, src.Name)...)
	}
	return Dedupe(all)
}

// Dedupe drops tasks whose normalized title was already seen, keeping the first.
func Dedupe(tasks []model.Task) []model.Task {
	seen := make(map[string]bool, len(tasks))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		key := normalizeTitle(t.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// PriorityFor maps the time left until due onto a 1..5 priority.
func PriorityFor(due *time.Time, now time.Time) int {
	if due == nil {
		return model.DefaultPriority
	}
	days := due.Sub(now).Hours() / 24
	switch {
	case days <= 1:
		return 1
	case days <= 3:
		return 2
	case days >= 14:
		return 4
	}
	return model.DefaultPriority
}
