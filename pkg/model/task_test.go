package model

import (
	"testing"
	"time"
)

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask("Read chapter 4", nil, 0, "", 0, "pasted")
	if task.EstMinutes != 60 {
		t.Errorf("Expected default estimate 60, got %d", task.EstMinutes)
	}
	if task.Priority != 3 {
		t.Errorf("Expected default priority 3, got %d", task.Priority)
	}
	if len(task.ID) != 8 {
		t.Errorf("Expected 8 character id, got %q", task.ID)
	}

	other := NewTask("Read chapter 4", nil, 0, "", 9, "pasted")
	if other.ID == task.ID {
		t.Errorf("Expected distinct ids, got %s twice", task.ID)
	}
	if other.Priority != 5 {
		t.Errorf("Expected priority clamped to 5, got %d", other.Priority)
	}
}

func TestDisplayTitleAndMinutes(t *testing.T) {
	task := Task{Title: "Solve set 3", Tag: "Physics"}
	if got := task.DisplayTitle(); got != "[Physics] Solve set 3" {
		t.Errorf("Expected tag-prefixed title, got %q", got)
	}
	start := time.Date(2025, 9, 29, 9, 0, 0, 0, time.UTC)
	b := Block{Start: start, End: start.Add(50 * time.Minute)}
	if b.Minutes() != 50 {
		t.Errorf("Expected 50 minutes, got %d", b.Minutes())
	}
}
