package index

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEventIndexPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskplan", "events.json")

	idx, err := NewEventIndexAt(path)
	if err != nil {
		t.Fatalf("NewEventIndexAt failed: %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("Expected empty index, got %d entries", idx.Len())
	}

	// Nothing dirty, nothing written.
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected no file before any change, got %v", err)
	}

	idx.Set("evt-b", "task-2")
	idx.Set("evt-a", "task-1")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewEventIndexAt(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	ids := reloaded.EventIDs()
	if len(ids) != 2 || ids[0] != "evt-a" || ids[1] != "evt-b" {
		t.Errorf("Expected [evt-a evt-b], got %v", ids)
	}
	if reloaded.Get("evt-b") != "task-2" {
		t.Errorf("Expected task-2, got %q", reloaded.Get("evt-b"))
	}

	reloaded.Remove("evt-a")
	reloaded.Remove("missing")
	if reloaded.Len() != 1 {
		t.Errorf("Expected 1 entry after remove, got %d", reloaded.Len())
	}
}
