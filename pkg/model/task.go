package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultEstimate = 60
	DefaultPriority = 3
)

// Task represents a unit of work extracted from one input source.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Due        *time.Time `json:"due,omitempty"`
	EstMinutes int        `json:"est_minutes"`
	Tag        string     `json:"tag,omitempty"`
	Priority   int        `json:"priority"`
	Source     string     `json:"source,omitempty"`
}

// Block is one scheduled work session for a task.
type Block struct {
	TaskID string     `json:"task_id"`
	Title  string     `json:"title"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Due    *time.Time `json:"due,omitempty"`
	Tag    string     `json:"tag,omitempty"`
	Source string     `json:"source,omitempty"`
}

// NewID returns a short random task identifier.
func NewID() string {
	return uuid.NewString()[:8]
}

// NewTask builds a task with a fresh id, defaulting the estimate and clamping priority to 1..5.
func NewTask(title string, due *time.Time, estMinutes int, tag string, priority int, source string) Task {
	if estMinutes < 1 {
		estMinutes = DefaultEstimate
	}
	if priority == 0 {
		priority = DefaultPriority
	}
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}
	return Task{
		ID:         NewID(),
		Title:      title,
		Due:        due,
		EstMinutes: estMinutes,
		Tag:        tag,
		Priority:   priority,
		Source:     source,
	}
}

// Minutes returns the block duration in whole minutes.
func (b Block) Minutes() int {
	return int(b.End.Sub(b.Start) / time.Minute)
}

// DisplayTitle is the title used for blocks and calendar events.
func (t Task) DisplayTitle() string {
	if t.Tag != "" {
		return "[" + t.Tag + "] " + t.Title
	}
	return t.Title
}
