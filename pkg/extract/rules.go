package extract

import (
	"context"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/dates"
	"github.com/harrisonrobin/taskplan/pkg/match"
	"github.com/harrisonrobin/taskplan/pkg/model"
)

const fallbackTitleRunes = 60

// RuleExtractor is the deterministic line-based extractor.
type RuleExtractor struct {
	Resolver *dates.Resolver
	Now      Clock
}

func NewRuleExtractor(resolver *dates.Resolver, now Clock) *RuleExtractor {
	if now == nil {
		now = time.Now
	}
	return &RuleExtractor{Resolver: resolver, Now: now}
}

// Extract turns every line containing an action verb into a task. Text with
// no such line still yields a single "Review: ..." task.
func (r *RuleExtractor) Extract(_ context.Context, text, source string) []model.Task {
	now := r.Now().In(r.Resolver.Location)
	var tasks []model.Task

	// Lines have no length cap; PDF text often arrives as one long line.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !match.HasActionVerb(line) {
			continue
		}
		tasks = append(tasks, r.taskFromLine(line, source, now))
	}

	if len(tasks) == 0 && strings.TrimSpace(text) != "" {
		tasks = append(tasks, model.NewTask(fallbackTitle(text), nil, model.DefaultEstimate, "", model.DefaultPriority, source))
	}
	return tasks
}

func (r *RuleExtractor) taskFromLine(line, source string, now time.Time) model.Task {
	var due *time.Time
	if phrase, ok := match.FindDue(line); ok {
		if t, ok := r.Resolver.ResolveDue(phrase, now); ok {
			due = &t
		}
	}
	est := model.DefaultEstimate
	if minutes, ok := match.FindMinutes(line); ok && minutes > 0 {
		est = minutes
	}
	tag, _ := match.FindTag(line)
	return model.NewTask(line, due, est, tag, PriorityFor(due, now), source)
}

func fallbackTitle(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > fallbackTitleRunes {
		runes = runes[:fallbackTitleRunes]
	}
	title := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(string(runes))
	if len([]rune(text)) > fallbackTitleRunes {
		title += "..."
	}
	return "Review: " + title
}
