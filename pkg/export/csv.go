package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

// CSVHeader is the fixed column order of the task table.
var CSVHeader = []string{"id", "title", "due", "est_minutes", "tag", "priority", "source"}

// WriteCSV writes the task table, header first. Due dates are RFC 3339.
func WriteCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		due := ""
		if t.Due != nil {
			due = t.Due.Format(time.RFC3339Nano)
		}
		record := []string{t.ID, t.Title, due, strconv.Itoa(t.EstMinutes), t.Tag, strconv.Itoa(t.Priority), t.Source}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV is WriteCSV into a string.
func CSV(tasks []model.Task) string {
	var sb strings.Builder
	// strings.Builder never fails a write.
	_ = WriteCSV(&sb, tasks)
	return sb.String()
}

// ParseCSV reads a task table written by WriteCSV.
func ParseCSV(r io.Reader) ([]model.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(CSVHeader, ",") {
		return nil, fmt.Errorf("unexpected csv header: %v", header)
	}

	var tasks []model.Task
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		task, err := taskFromRecord(record)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func taskFromRecord(record []string) (model.Task, error) {
	est, err := strconv.Atoi(record[3])
	if err != nil {
		return model.Task{}, fmt.Errorf("invalid est_minutes %q: %w", record[3], err)
	}
	priority, err := strconv.Atoi(record[5])
	if err != nil {
		return model.Task{}, fmt.Errorf("invalid priority %q: %w", record[5], err)
	}
	task := model.Task{
		ID:         record[0],
		Title:      record[1],
		EstMinutes: est,
		Tag:        record[4],
		Priority:   priority,
		Source:     record[6],
	}
	if record[2] != "" {
		due, err := time.Parse(time.RFC3339Nano, record[2])
		if err != nil {
			return model.Task{}, fmt.Errorf("invalid due %q: %w", record[2], err)
		}
		task.Due = &due
	}
	if task.ID == "" {
		task.ID = model.NewID()
	}
	return task, nil
}
