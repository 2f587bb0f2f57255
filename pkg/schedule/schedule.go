// Package schedule places estimated task work into bounded time blocks
// inside daily work hours.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

const (
	minTaskMinutes  = 30
	breakAfterBlock = 10 * time.Minute
	deadlineMargin  = time.Hour
	noDueHorizon    = 14 * 24 * time.Hour
)

// Clock is a time of day as hour and minute.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Settings are the per-session planner options.
type Settings struct {
	Location     *time.Location
	WorkStart    Clock
	WorkEnd      Clock
	DailyHours   float64
	BlockMinutes int
}

// DefaultSettings returns the stock planner configuration.
func DefaultSettings() Settings {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.Local
	}
	return Settings{
		Location:     loc,
		WorkStart:    Clock{Hour: 9},
		WorkEnd:      Clock{Hour: 21},
		DailyHours:   2,
		BlockMinutes: 50,
	}
}

// Planner runs one greedy scheduling pass.
type Planner struct {
	settings Settings
}

func NewPlanner(s Settings) *Planner {
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.BlockMinutes < 1 {
		s.BlockMinutes = 1
	}
	return &Planner{settings: s}
}

func (p *Planner) Settings() Settings {
	return p.settings
}

// NextWorkStart snaps t forward into work hours: before the start of the work
// day moves to the start, at or after the end moves to the next day's start.
func (p *Planner) NextWorkStart(t time.Time) time.Time {
	local := t.In(p.settings.Location)
	minuteOfDay := local.Hour()*60 + local.Minute()
	switch {
	case minuteOfDay < p.settings.WorkStart.minutes():
		return p.at(local, p.settings.WorkStart)
	case minuteOfDay >= p.settings.WorkEnd.minutes():
		return p.at(local.AddDate(0, 0, 1), p.settings.WorkStart)
	}
	return local
}

func (p *Planner) at(day time.Time, c Clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, p.settings.Location)
}

// Plan schedules tasks by (priority, due) starting from now. The cursor and
// the per-day minute budget are shared by all tasks. Tasks that cannot be
// fully placed before their cutoff are left short without error; see Summarize.
func (p *Planner) Plan(tasks []model.Task, now time.Time) []model.Block {
	now = now.In(p.settings.Location)
	ordered := make([]model.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		switch {
		case a.Due == nil:
			return false
		case b.Due == nil:
			return true
		}
		return a.Due.Before(*b.Due)
	})

	dailyCap := int(p.settings.DailyHours * 60)
	dayBudget := map[string]int{}
	cursor := p.NextWorkStart(now)
	var blocks []model.Block

	for _, task := range ordered {
		remaining := task.EstMinutes
		if remaining <= 0 {
			remaining = model.DefaultEstimate
		}
		if remaining < minTaskMinutes {
			remaining = minTaskMinutes
		}
		cutoff := now.Add(noDueHorizon)
		if task.Due != nil {
			cutoff = task.Due.Add(-deadlineMargin)
		}

		for remaining > 0 {
			cursor = p.NextWorkStart(cursor)
			if cursor.After(cutoff) {
				break
			}
			dayKey := cursor.Format("2006-01-02")
			used := dayBudget[dayKey]
			if used >= dailyCap {
				cursor = p.at(cursor, p.settings.WorkEnd)
				continue
			}

			length := min(p.settings.BlockMinutes, remaining, dailyCap-used)
			end := cursor.Add(time.Duration(length) * time.Minute)
			if end.After(p.at(cursor, p.settings.WorkEnd)) {
				// Discard rather than shorten the block at the day boundary.
				cursor = p.at(cursor, p.settings.WorkEnd)
				continue
			}
			if task.Due != nil && end.After(*task.Due) {
				break
			}

			blocks = append(blocks, model.Block{
				TaskID: task.ID,
				Title:  task.DisplayTitle(),
				Start:  cursor,
				End:    end,
				Due:    task.Due,
				Tag:    task.Tag,
				Source: task.Source,
			})
			remaining -= length
			dayBudget[dayKey] = used + length
			cursor = end.Add(breakAfterBlock)
		}
	}
	return blocks
}

// TaskReport compares required and placed minutes for one task.
type TaskReport struct {
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Required  int    `json:"required_minutes"`
	Scheduled int    `json:"scheduled_minutes"`
	Blocks    int    `json:"blocks"`
}

// Short reports whether the task got less time than it needs.
func (r TaskReport) Short() bool {
	return r.Scheduled < r.Required
}

// Summarize reports placed minutes per task, in task order.
func Summarize(tasks []model.Task, blocks []model.Block) []TaskReport {
	placed := map[string]int{}
	counts := map[string]int{}
	for _, b := range blocks {
		placed[b.TaskID] += b.Minutes()
		counts[b.TaskID]++
	}
	reports := make([]TaskReport, 0, len(tasks))
	for _, t := range tasks {
		required := t.EstMinutes
		if required <= 0 {
			required = model.DefaultEstimate
		}
		reports = append(reports, TaskReport{
			TaskID:    t.ID,
			Title:     t.Title,
			Required:  max(minTaskMinutes, required),
			Scheduled: placed[t.ID],
			Blocks:    counts[t.ID],
		})
	}
	return reports
}
