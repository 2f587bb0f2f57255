package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/schedule"
)

const (
	IconTask     = "📝"
	IconCalendar = "📅"
	IconDone     = "✅"
	IconInfo     = "ℹ️"
	IconWarn     = "⚠️"
	IconError    = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

const rowTimeLayout = "Mon Jan 02 15:04"

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func Info(msg string) string {
	return Muted.Render(IconInfo + " " + msg)
}

func Warning(msg string) string {
	return Warn.Render(IconWarn + " " + msg)
}

// PriorityText colors a 1..5 priority from urgent to relaxed.
func PriorityText(p int) string {
	label := fmt.Sprintf("P%d", p)
	switch {
	case p <= 1:
		return Bad.Render(label)
	case p == 2:
		return Warn.Render(label)
	case p == 3:
		return H2.Render(label)
	default:
		return Muted.Render(label)
	}
}

func cell(width int, s string) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// TaskTable renders tasks one per row with due times shown in loc.
func TaskTable(tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return Info("no tasks found")
	}
	rows := []string{
		Key.Render(cell(10, "ID") + cell(5, "PRI") + cell(18, "DUE") + cell(6, "EST") + "TITLE"),
	}
	for _, t := range tasks {
		due := Muted.Render("-")
		if t.Due != nil {
			due = t.Due.In(loc).Format(rowTimeLayout)
		}
		rows = append(rows, cell(10, t.ID)+cell(5, PriorityText(t.Priority))+cell(18, due)+
			cell(6, fmt.Sprintf("%dm", t.EstMinutes))+t.DisplayTitle())
	}
	return Panel.Render(strings.Join(rows, "\n"))
}

// BlockTable renders the plan grouped by local day.
func BlockTable(blocks []model.Block, loc *time.Location) string {
	if len(blocks) == 0 {
		return Info("nothing could be scheduled")
	}
	var rows []string
	day := ""
	for _, b := range blocks {
		start, end := b.Start.In(loc), b.End.In(loc)
		if d := start.Format("Monday, Jan 02"); d != day {
			if day != "" {
				rows = append(rows, "")
			}
			rows = append(rows, H2.Render(IconCalendar+" "+d))
			day = d
		}
		rows = append(rows, fmt.Sprintf("  %s-%s  %s", start.Format("15:04"), end.Format("15:04"), b.Title))
	}
	return Panel.Render(strings.Join(rows, "\n"))
}

// ShortfallLines lists tasks that did not get their full estimate.
func ShortfallLines(reports []schedule.TaskReport) []string {
	var lines []string
	for _, r := range reports {
		if !r.Short() {
			continue
		}
		if r.Scheduled == 0 {
			lines = append(lines, Warning(fmt.Sprintf("%s: not scheduled (needs %dm)", r.Title, r.Required)))
			continue
		}
		lines = append(lines, Warning(fmt.Sprintf("%s: %dm of %dm scheduled", r.Title, r.Scheduled, r.Required)))
	}
	return lines
}
