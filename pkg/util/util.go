package util

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

const (
	// TaskIDProperty is the private extended property linking an event to its task.
	TaskIDProperty = "taskplan_task_id"

	BlockDescription = "Auto-planned block"
)

var (
	isoDurationRegex = regexp.MustCompile(`(\d+)([HMS])`)
	taskIDRegex      = regexp.MustCompile(`Task: ([A-Za-z0-9\-]+)`)
)

// ParseDuration parses ISO 8601 duration format (PT1H30M) as used by Taskwarrior UDAs.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO 8601 duration format: %s", s)
	}

	s = s[1:]
	if len(s) == 0 || s[0] != 'T' {
		return 0, fmt.Errorf("invalid ISO 8601 duration (missing T): P%s", s)
	}
	s = s[1:]

	var total time.Duration
	for _, match := range isoDurationRegex.FindAllStringSubmatch(s, -1) {
		value, _ := strconv.Atoi(match[1])
		switch match[2] {
		case "H":
			total += time.Duration(value) * time.Hour
		case "M":
			total += time.Duration(value) * time.Minute
		case "S":
			total += time.Duration(value) * time.Second
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("invalid ISO 8601 duration: PT%s", s)
	}
	return total, nil
}

// FormatDuration renders whole minutes as an ISO 8601 duration (PT1H30M).
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("PT")
	if h := minutes / 60; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m := minutes % 60; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	return b.String()
}

// ConvertBlockToCalendarEvent builds the Google Calendar event for one planned block.
func ConvertBlockToCalendarEvent(block *model.Block, colorID string) (*calendar.Event, error) {
	if block == nil {
		return nil, fmt.Errorf("could not convert nil Block")
	}
	if !block.End.After(block.Start) {
		return nil, fmt.Errorf("block for task %s has no duration", block.TaskID)
	}

	var desc strings.Builder
	desc.WriteString(BlockDescription + "\n\n")
	fmt.Fprintf(&desc, "Task: %s\n", block.TaskID)
	if block.Due != nil {
		fmt.Fprintf(&desc, "Due: %s\n", block.Due.Format(time.RFC1123))
	}
	if block.Source != "" {
		fmt.Fprintf(&desc, "Source: %s\n", block.Source)
	}

	return &calendar.Event{
		Summary:     block.Title,
		Description: desc.String(),
		ColorId:     colorID,
		Start: &calendar.EventDateTime{
			DateTime: block.Start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: block.End.UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: block.TaskID,
			},
		},
	}, nil
}

// GetTaskIDFromEvent returns the task id of a planned event, preferring the
// extended property and falling back to the description.
func GetTaskIDFromEvent(event *calendar.Event) (string, bool) {
	if event == nil {
		return "", false
	}
	if event.ExtendedProperties != nil {
		if id := event.ExtendedProperties.Private[TaskIDProperty]; id != "" {
			return id, true
		}
	}
	return GetTaskIDFromEventDescription(event.Description)
}

// GetTaskIDFromEventDescription parses the task ID from the event description.
func GetTaskIDFromEventDescription(description string) (string, bool) {
	matches := taskIDRegex.FindStringSubmatch(description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
