package taskwarrior

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

func TestParseTasksSingleExport(t *testing.T) {
	input := `{
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Finish problem set 3",
		"status": "pending",
		"due": "20251003T235900Z",
		"project": "Calc 3",
		"priority": "H",
		"est": "PT1H30M",
		"tags": ["school", "math"],
		"annotations": [
			{"entry": "20250929T120500Z", "description": "source: syllabus.pdf"}
		]
	}`

	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]

	if task.UUID != "f45a05b3-c12e-42e5-9c9c-333333333333" {
		t.Errorf("Expected UUID f45a05b3-c12e-42e5-9c9c-333333333333, got %s", task.UUID)
	}
	if task.Description != "Finish problem set 3" {
		t.Errorf("Expected Description 'Finish problem set 3', got '%s'", task.Description)
	}
	if task.Project != "Calc 3" {
		t.Errorf("Expected Project 'Calc 3', got '%s'", task.Project)
	}
	if len(task.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(task.Tags))
	}
	if len(task.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(task.Annotations))
	}
	expectedDue, _ := time.Parse(time.RFC3339, "2025-10-03T23:59:00Z")
	if !task.Due.Time.Equal(expectedDue) {
		t.Errorf("Expected Due %v, got %v", expectedDue, task.Due.Time)
	}

	planned := ToTasks([]Task{task})
	if len(planned) != 1 {
		t.Fatalf("Expected 1 planner task, got %d", len(planned))
	}
	p := planned[0]
	if p.ID != "f45a05b3" || p.EstMinutes != 90 || p.Priority != 1 || p.Tag != "Calc 3" {
		t.Errorf("Unexpected conversion: %+v", p)
	}
}

func TestParseTasksArrayAndStream(t *testing.T) {
	client := NewClient()
	array := `[{"uuid":"a","description":"one","status":"pending"},{"uuid":"b","description":"two","status":"completed"}]`
	stream := "{\"uuid\":\"a\",\"description\":\"one\",\"status\":\"pending\"}\n{\"uuid\":\"b\",\"description\":\"two\",\"status\":\"completed\"}\n"

	for name, input := range map[string]string{"array": array, "stream": stream} {
		tasks, err := client.ParseTasks(strings.NewReader(input))
		if err != nil {
			t.Fatalf("%s: ParseTasks failed: %v", name, err)
		}
		if len(tasks) != 2 {
			t.Fatalf("%s: expected 2 tasks, got %d", name, len(tasks))
		}
		if pending := ToTasks(tasks); len(pending) != 1 || pending[0].Title != "one" {
			t.Errorf("%s: expected only the pending task, got %+v", name, pending)
		}
	}

	if _, err := client.ParseTasks(strings.NewReader(`{"uuid":`)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestFromTasksRoundTrip(t *testing.T) {
	now := time.Date(2025, 9, 29, 17, 0, 0, 0, time.UTC)
	due := time.Date(2025, 10, 4, 6, 59, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "t1", Title: "Submit Lab 5", Due: &due, EstMinutes: 90, Tag: "CS61", Priority: 2, Source: "pasted"},
		{ID: "t2", Title: "Read chapter 7", EstMinutes: 45, Priority: 4},
	}
	blocks := []model.Block{
		{TaskID: "t1", Start: now.Add(2 * time.Hour), End: now.Add(170 * time.Minute)},
		{TaskID: "t1", Start: now.Add(time.Hour), End: now.Add(110 * time.Minute)},
	}

	tws := FromTasks(tasks, blocks, now)
	if len(tws) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(tws))
	}
	first := tws[0]
	if first.Priority != "H" || first.Project != "CS61" || first.Est != "PT1H30M" || first.Status != PENDING {
		t.Errorf("Unexpected record: %+v", first)
	}
	if first.Scheduled == nil || !first.Scheduled.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected scheduled at earliest block, got %v", first.Scheduled)
	}
	if len(first.Annotations) != 1 || first.Annotations[0].Description != "source: pasted" {
		t.Errorf("Expected source annotation, got %+v", first.Annotations)
	}
	if tws[1].Scheduled != nil || tws[1].Due != nil || tws[1].Priority != "L" {
		t.Errorf("Unexpected unscheduled record: %+v", tws[1])
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, tws); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"due": "20251004T065900Z"`) {
		t.Errorf("Expected Taskwarrior due format in output:\n%s", buf.String())
	}

	parsed, err := NewClient().ParseTasks(&buf)
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	back := ToTasks(parsed)
	if len(back) != 2 || back[0].Title != "Submit Lab 5" || back[0].Due == nil || !back[0].Due.Equal(due) {
		t.Errorf("Round trip lost data: %+v", back)
	}
	if back[1].EstMinutes != 45 || back[1].Priority != 4 {
		t.Errorf("Expected 45m at priority 4, got %+v", back[1])
	}
}

func TestPriorityMapping(t *testing.T) {
	for p, want := range map[int]string{1: "H", 2: "H", 3: "M", 4: "L", 5: "L"} {
		if got := PriorityLetter(p); got != want {
			t.Errorf("PriorityLetter(%d): expected %s, got %s", p, want, got)
		}
	}
	if PriorityNumber("") != model.DefaultPriority || PriorityNumber("h") != 1 {
		t.Error("Unexpected PriorityNumber mapping")
	}
}
