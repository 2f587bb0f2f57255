package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/harrisonrobin/taskplan/pkg/config"
)

const indexFile = "events.json"

// EventIndex remembers which calendar events were created by the last push,
// keyed by event ID with the owning task ID as value.
type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

func NewEventIndex() (*EventIndex, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewEventIndexAt(filepath.Join(dir, indexFile))
}

// NewEventIndexAt opens the index stored at path, starting empty if the file is absent.
func NewEventIndexAt(path string) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func (idx *EventIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&idx.Mappings); err != nil {
		return err
	}
	if idx.Mappings == nil {
		idx.Mappings = make(map[string]string)
	}
	return nil
}

func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.Path), 0700); err != nil {
		return err
	}

	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(eventID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[eventID]
}

func (idx *EventIndex) Set(eventID, taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[eventID] != taskID {
		idx.Mappings[eventID] = taskID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[eventID]; exists {
		delete(idx.Mappings, eventID)
		idx.dirty = true
	}
}

// EventIDs returns the indexed event IDs in sorted order.
func (idx *EventIndex) EventIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.Mappings))
	for id := range idx.Mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (idx *EventIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.Mappings)
}
