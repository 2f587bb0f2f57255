package schedule

import (
	"testing"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

func testPlanner(t *testing.T) (*Planner, *time.Location) {
	t.Helper()
	s := DefaultSettings()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	s.Location = loc
	return NewPlanner(s), loc
}

func due(t time.Time) *time.Time {
	return &t
}

func TestNextWorkStart(t *testing.T) {
	p, loc := testPlanner(t)
	cases := []struct {
		in, want time.Time
	}{
		{time.Date(2025, 9, 29, 7, 30, 0, 0, loc), time.Date(2025, 9, 29, 9, 0, 0, 0, loc)},
		{time.Date(2025, 9, 29, 9, 0, 0, 0, loc), time.Date(2025, 9, 29, 9, 0, 0, 0, loc)},
		{time.Date(2025, 9, 29, 14, 15, 0, 0, loc), time.Date(2025, 9, 29, 14, 15, 0, 0, loc)},
		{time.Date(2025, 9, 29, 21, 0, 0, 0, loc), time.Date(2025, 9, 30, 9, 0, 0, 0, loc)},
		{time.Date(2025, 9, 29, 23, 50, 0, 0, loc), time.Date(2025, 9, 30, 9, 0, 0, 0, loc)},
		{time.Date(2025, 9, 29, 20, 0, 0, 0, time.UTC), time.Date(2025, 9, 29, 13, 0, 0, 0, loc)},
	}
	for _, c := range cases {
		if got := p.NextWorkStart(c.in); !got.Equal(c.want) {
			t.Errorf("NextWorkStart(%v): expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestPlanPriorityThenDueOrdering(t *testing.T) {
	p, loc := testPlanner(t)
	now := time.Date(2025, 9, 29, 8, 0, 0, 0, loc)
	later := model.Task{ID: "later", Title: "Write essay", Due: due(now.Add(20 * 24 * time.Hour)), EstMinutes: 90, Priority: 3}
	soon := model.Task{ID: "soon", Title: "Solve set", Due: due(now.Add(2 * 24 * time.Hour)), EstMinutes: 90, Priority: 3, Tag: "Physics"}

	blocks := p.Plan([]model.Task{later, soon}, now)

	at := func(day, h, m int) time.Time { return time.Date(2025, 9, day, h, m, 0, 0, loc) }
	want := []struct {
		id         string
		start, end time.Time
	}{
		{"soon", at(29, 9, 0), at(29, 9, 50)},
		{"soon", at(29, 10, 0), at(29, 10, 40)},
		{"later", at(29, 10, 50), at(29, 11, 20)},
		{"later", at(30, 9, 0), at(30, 9, 50)},
		{"later", at(30, 10, 0), at(30, 10, 10)},
	}
	if len(blocks) != len(want) {
		t.Fatalf("Expected %d blocks, got %d: %+v", len(want), len(blocks), blocks)
	}
	for i, w := range want {
		b := blocks[i]
		if b.TaskID != w.id || !b.Start.Equal(w.start) || !b.End.Equal(w.end) {
			t.Errorf("block %d: expected %s %v-%v, got %s %v-%v", i, w.id, w.start, w.end, b.TaskID, b.Start, b.End)
		}
	}
	if blocks[0].Title != "[Physics] Solve set" {
		t.Errorf("Expected tag-prefixed block title, got %q", blocks[0].Title)
	}
	if blocks[0].Due == nil || !blocks[0].Due.Equal(*soon.Due) {
		t.Errorf("Expected block due copied from task, got %v", blocks[0].Due)
	}

	var lastSoon, firstLater time.Time
	for _, b := range blocks {
		if b.TaskID == "soon" {
			lastSoon = b.End
		} else if firstLater.IsZero() {
			firstLater = b.Start
		}
	}
	if lastSoon.After(firstLater) {
		t.Errorf("Expected soon-due task fully placed before the later one begins")
	}
}

func TestPlanNoDueSortsLast(t *testing.T) {
	p, loc := testPlanner(t)
	now := time.Date(2025, 9, 29, 8, 0, 0, 0, loc)
	tasks := []model.Task{
		{ID: "nodue", Title: "Read", EstMinutes: 30, Priority: 3},
		{ID: "due", Title: "Review", EstMinutes: 30, Priority: 3, Due: due(now.Add(10 * 24 * time.Hour))},
		{ID: "urgent", Title: "Fix", EstMinutes: 30, Priority: 1},
	}
	blocks := p.Plan(tasks, now)
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}
	for i, id := range []string{"urgent", "due", "nodue"} {
		if blocks[i].TaskID != id {
			t.Errorf("block %d: expected task %s, got %s", i, id, blocks[i].TaskID)
		}
	}
}

func TestPlanMinimumAndDefaultEstimate(t *testing.T) {
	p, loc := testPlanner(t)
	now := time.Date(2025, 9, 29, 8, 0, 0, 0, loc)
	blocks := p.Plan([]model.Task{
		{ID: "tiny", Title: "Email TA", EstMinutes: 10, Priority: 1},
		{ID: "unset", Title: "Read", Priority: 2},
	}, now)
	reports := Summarize([]model.Task{
		{ID: "tiny", EstMinutes: 10},
		{ID: "unset"},
	}, blocks)
	if reports[0].Scheduled != 30 || reports[0].Required != 30 {
		t.Errorf("Expected 30 minutes for tiny task, got %+v", reports[0])
	}
	if reports[1].Scheduled != 60 || reports[1].Required != 60 || reports[1].Blocks != 2 {
		t.Errorf("Expected 60 minutes in 2 blocks for unset task, got %+v", reports[1])
	}
}

func TestPlanDiscardsBlockCrossingWorkEnd(t *testing.T) {
	p, loc := testPlanner(t)
	now := time.Date(2025, 9, 29, 20, 30, 0, 0, loc)
	blocks := p.Plan([]model.Task{{ID: "a", Title: "Study", EstMinutes: 50, Priority: 3}}, now)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	want := time.Date(2025, 9, 30, 9, 0, 0, 0, loc)
	if !blocks[0].Start.Equal(want) {
		t.Errorf("Expected block moved to %v, got %v", want, blocks[0].Start)
	}
}

func TestPlanPastDueIsSilentlyUnscheduled(t *testing.T) {
	p, loc := testPlanner(t)
	now := time.Date(2025, 9, 29, 10, 0, 0, 0, loc)
	tasks := []model.Task{
		{ID: "late", Title: "Submit", EstMinutes: 60, Priority: 1, Due: due(now.Add(-time.Hour))},
		{ID: "tight", Title: "Finish", EstMinutes: 300, Priority: 1, Due: due(now.Add(3 * time.Hour))},
	}
	blocks := p.Plan(tasks, now)
	reports := Summarize(tasks, blocks)
	if reports[0].Scheduled != 0 || !reports[0].Short() {
		t.Errorf("Expected past-due task unscheduled, got %+v", reports[0])
	}
	if !reports[1].Short() || reports[1].Scheduled == 0 {
		t.Errorf("Expected tight task partially scheduled, got %+v", reports[1])
	}
	for _, b := range blocks {
		if b.End.After(*tasks[1].Due) {
			t.Errorf("Block %v-%v ends after due %v", b.Start, b.End, tasks[1].Due)
		}
	}
}

func TestPlanProperties(t *testing.T) {
	p, loc := testPlanner(t)
	s := p.Settings()
	now := time.Date(2025, 9, 29, 13, 17, 0, 0, loc)
	var tasks []model.Task
	for i := 0; i < 12; i++ {
		task := model.Task{
			ID:         string(rune('a' + i)),
			Title:      "task",
			EstMinutes: 25 + i*20,
			Priority:   1 + i%5,
		}
		if i%3 != 0 {
			task.Due = due(now.Add(time.Duration(10+i*9) * time.Hour))
		}
		tasks = append(tasks, task)
	}

	blocks := p.Plan(tasks, now)
	if len(blocks) == 0 {
		t.Fatal("Expected some blocks")
	}

	byID := map[string]model.Task{}
	for _, task := range tasks {
		byID[task.ID] = task
	}
	perDay := map[string]int{}
	lastEnd := map[string]time.Time{}
	for _, b := range blocks {
		if !b.End.After(b.Start) || b.Minutes() > s.BlockMinutes {
			t.Errorf("Bad block length %v-%v", b.Start, b.End)
		}
		start := b.Start.In(loc)
		end := b.End.In(loc)
		if start.Hour()*60+start.Minute() < s.WorkStart.minutes() {
			t.Errorf("Block starts before work hours: %v", start)
		}
		if end.Hour()*60+end.Minute() > s.WorkEnd.minutes() || end.YearDay() != start.YearDay() {
			t.Errorf("Block ends after work hours: %v", end)
		}
		if task := byID[b.TaskID]; task.Due != nil && b.End.After(*task.Due) {
			t.Errorf("Block for %s ends after due: %v > %v", b.TaskID, b.End, task.Due)
		}
		if prev, ok := lastEnd[b.TaskID]; ok && b.Start.Before(prev) {
			t.Errorf("Blocks for %s out of order", b.TaskID)
		}
		lastEnd[b.TaskID] = b.End
		perDay[start.Format("2006-01-02")] += b.Minutes()
	}
	for day, minutes := range perDay {
		if minutes > int(s.DailyHours*60) {
			t.Errorf("Day %s has %d minutes, over the cap", day, minutes)
		}
	}
}
