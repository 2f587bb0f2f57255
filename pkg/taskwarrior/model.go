package taskwarrior

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/util"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"

	// PlannerTag marks tasks created by the planner.
	PlannerTag = "taskplan"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, always UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.UTC().Format(taskwarriorTimeLayout) + `"`), nil
}

func newCustomTime(t *time.Time) *CustomTime {
	if t == nil {
		return nil
	}
	return &CustomTime{Time: t.UTC()}
}

type Annotation struct {
	Description string      `json:"description"`
	Entry       *CustomTime `json:"entry"`
}

type Task struct {
	UUID        string       `json:"uuid"`
	Description string       `json:"description"`
	Entry       *CustomTime  `json:"entry,omitempty"`
	Due         *CustomTime  `json:"due,omitempty"`
	Scheduled   *CustomTime  `json:"scheduled,omitempty"`
	Status      string       `json:"status"`
	Project     string       `json:"project,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	// Estimate UDA (uda.est.type=duration), ISO 8601 like PT1H30M.
	Est string `json:"est,omitempty"`
}

// PriorityLetter maps planner priorities onto Taskwarrior's H/M/L.
func PriorityLetter(p int) string {
	switch {
	case p <= 2:
		return "H"
	case p == 3:
		return "M"
	default:
		return "L"
	}
}

// PriorityNumber is the inverse of PriorityLetter; an unset priority is the planner default.
func PriorityNumber(letter string) int {
	switch strings.ToUpper(letter) {
	case "H":
		return 1
	case "L":
		return 4
	default:
		return model.DefaultPriority
	}
}

// FromTasks converts planner tasks to Taskwarrior import records. Each task's
// first planned block, if any, becomes its scheduled date.
func FromTasks(tasks []model.Task, blocks []model.Block, now time.Time) []Task {
	firstBlock := make(map[string]time.Time)
	for _, b := range blocks {
		if s, ok := firstBlock[b.TaskID]; !ok || b.Start.Before(s) {
			firstBlock[b.TaskID] = b.Start
		}
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		tw := Task{
			UUID:        uuid.NewString(),
			Description: t.Title,
			Entry:       &CustomTime{Time: now.UTC()},
			Due:         newCustomTime(t.Due),
			Status:      PENDING,
			Project:     t.Tag,
			Priority:    PriorityLetter(t.Priority),
			Tags:        []string{PlannerTag},
			Est:         util.FormatDuration(t.EstMinutes),
		}
		if s, ok := firstBlock[t.ID]; ok {
			tw.Scheduled = newCustomTime(&s)
		}
		if t.Source != "" {
			tw.Annotations = []Annotation{{
				Description: "source: " + t.Source,
				Entry:       &CustomTime{Time: now.UTC()},
			}}
		}
		out = append(out, tw)
	}
	return out
}

// ToTasks converts pending Taskwarrior records into planner tasks.
func ToTasks(tws []Task) []model.Task {
	var out []model.Task
	for _, tw := range tws {
		if tw.Status != "" && tw.Status != PENDING {
			continue
		}
		var due *time.Time
		if tw.Due != nil && !tw.Due.IsZero() {
			d := tw.Due.Time
			due = &d
		}
		est := model.DefaultEstimate
		if d, err := util.ParseDuration(tw.Est); err == nil && d > 0 {
			est = int(d / time.Minute)
		}
		task := model.NewTask(tw.Description, due, est, tw.Project, PriorityNumber(tw.Priority), "taskwarrior")
		if len(tw.UUID) >= 8 {
			task.ID = tw.UUID[:8]
		}
		out = append(out, task)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
