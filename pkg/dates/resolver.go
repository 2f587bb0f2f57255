// Package dates resolves due-date text into timezone-aware instants.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/harrisonrobin/taskplan/pkg/match"
)

var (
	clockRegex = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([ap]m)?$`)

	// Any sign that the text carries a time of day, including bare epoch numbers.
	clockHintRegex = regexp.MustCompile(`(?i)\d:\d|\d\s*[ap]\.?m\b|\dT\d|noon|midnight|^\d{9,}$`)
)

var monthAbbr = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

var weekdayAbbr = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// Resolver interprets dates in a single configured location.
// Phrases without a time of day resolve to 23:59 local.
type Resolver struct {
	Location *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Location: loc}
}

// Resolve parses free text such as an ISO timestamp. A date without a year
// takes the year of now, and a date without a time of day lands on 23:59.
// When the text is not a plain timestamp it falls back to the first due
// phrase found inside it.
func (r *Resolver) Resolve(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if t, err := r.parseAbsolute(text); err == nil {
		// dateparse leaves year zero when the text names none ("Oct 3", "10/05").
		if t.Year() == 0 {
			t = time.Date(now.In(r.Location).Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), r.Location)
		}
		if isMidnight(t) && !clockHintRegex.MatchString(text) {
			t = endOfDay(t)
		}
		return t.In(r.Location), true
	}
	due, ok := match.FindDue(text)
	if !ok {
		return time.Time{}, false
	}
	return r.ResolveDue(due, now)
}

// ResolveDue turns a recognized phrase into an instant relative to now.
func (r *Resolver) ResolveDue(d match.Due, now time.Time) (time.Time, bool) {
	now = now.In(r.Location)
	var day time.Time

	switch {
	case d.Relative != "":
		day = dateOf(now)
		if d.Relative == "tomorrow" {
			day = day.AddDate(0, 0, 1)
		}
	case d.NextWeekday != "":
		target := indexOf(weekdayAbbr, d.NextWeekday)
		if target < 0 {
			return time.Time{}, false
		}
		ahead := (target - int(now.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		day = dateOf(now).AddDate(0, 0, ahead)
	case d.Month != "":
		month := indexOf(monthAbbr, d.Month)
		dayNum, err := strconv.Atoi(d.Day)
		if month < 0 || err != nil {
			return time.Time{}, false
		}
		year := now.Year()
		if d.Year != "" {
			year, _ = strconv.Atoi(d.Year)
		}
		t, err := r.parseAbsolute(fmt.Sprintf("%s %d, %d", monthAbbr[month], dayNum, year))
		if err != nil {
			return time.Time{}, false
		}
		day = t
	case d.NumMonth != "":
		m, errM := strconv.Atoi(d.NumMonth)
		dd, errD := strconv.Atoi(d.NumDay)
		if errM != nil || errD != nil {
			return time.Time{}, false
		}
		year := now.Year()
		if d.NumYear != "" {
			year, _ = strconv.Atoi(d.NumYear)
			if year < 100 {
				year += 2000
			}
		}
		t, err := r.parseAbsolute(fmt.Sprintf("%d/%d/%d", m, dd, year))
		if err != nil {
			return time.Time{}, false
		}
		day = t
	default:
		return time.Time{}, false
	}

	hour, minute, ok := parseClock(d.Clock)
	if !ok {
		return endOfDay(day), true
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, r.Location), true
}

// parseAbsolute wraps dateparse, which can panic on some malformed inputs.
func (r *Resolver) parseAbsolute(s string) (t time.Time, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("could not parse date %q: %v", s, rec)
		}
	}()
	return dateparse.ParseIn(s, r.Location)
}

func parseClock(s string) (hour, minute int, ok bool) {
	m := clockRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
}

func indexOf(abbrs []string, name string) int {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return -1
	}
	for i, a := range abbrs {
		if name[:3] == a {
			return i
		}
	}
	return -1
}
