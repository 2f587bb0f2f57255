// Package match holds the line-level recognizers used by task extraction:
// due-date phrases, duration estimates, category tags and action verbs.
// Each recognizer reports only the first match, scanning left to right.
package match

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	weekdayPat = `(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)`
	monthPat   = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	clockPat   = `(?:\d{1,2}(?::\d{2})?\s*[ap]m|\d{1,2}:\d{2})`
)

var (
	dueRegex = regexp.MustCompile(`(?i)(?:\b(?:due|deadline|submit|by)\s*:?\s*)?(?:\bon\s+)?` +
		`\b(?P<date>` +
		`(?:(?P<wd>` + weekdayPat + `)\b\.?,?\s+)?(?P<month>` + monthPat + `)\b\.?\s+(?P<day>\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s*(?P<year>\d{4})\b)?` +
		`|(?P<nm>\d{1,2})/(?P<nd>\d{1,2})(?:/(?P<ny>\d{4}|\d{2}))?\b` +
		`|(?P<rel>today|tomorrow)\b` +
		`|next\s+(?P<next>` + weekdayPat + `)\b` +
		`)(?:,?\s*(?:by|at|@)?\s*(?P<clock>` + clockPat + `)\b)?`)

	durationRegex = regexp.MustCompile(`(?i)~?\s*(\d+(?:\.\d+)?)\s*(h(?:ours?)?|m(?:in(?:s|utes)?)?)\b`)
	tagRegex      = regexp.MustCompile(`(?i)\b(?:CS\d{1,3}|Calc\s*3|Linear\s*Algebra|Physics|Project|Work|Personal)\b`)
	actionRegex   = regexp.MustCompile(`(?i)\b(?:assign|finish|read|solve|submit|implement|study|review|fix|email|apply|prepare|meet|write)\b`)
)

// Due is a recognized due-date phrase broken into its parts.
// Exactly one of the three date shapes is populated.
type Due struct {
	Text string

	Weekday string
	Month   string
	Day     string
	Year    string

	NumMonth string
	NumDay   string
	NumYear  string

	Relative    string
	NextWeekday string

	Clock string
}

// FindDue returns the first due-date phrase in line.
func FindDue(line string) (Due, bool) {
	loc := dueRegex.FindStringSubmatchIndex(line)
	if loc == nil {
		return Due{}, false
	}
	group := func(name string) string {
		i := dueRegex.SubexpIndex(name)
		if loc[2*i] < 0 {
			return ""
		}
		return line[loc[2*i]:loc[2*i+1]]
	}
	start := loc[2*dueRegex.SubexpIndex("date")]
	return Due{
		Text:        strings.TrimSpace(line[start:loc[1]]),
		Weekday:     group("wd"),
		Month:       group("month"),
		Day:         group("day"),
		Year:        group("year"),
		NumMonth:    group("nm"),
		NumDay:      group("nd"),
		NumYear:     group("ny"),
		Relative:    strings.ToLower(group("rel")),
		NextWeekday: strings.ToLower(group("next")),
		Clock:       group("clock"),
	}, true
}

// FindMinutes returns the first duration estimate in line, converted to whole minutes.
func FindMinutes(line string) (int, bool) {
	m := durationRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		value *= 60
	}
	return int(math.RoundToEven(value)), true
}

// FindTag returns the first known course or project label in line, as written.
func FindTag(line string) (string, bool) {
	tag := tagRegex.FindString(line)
	return tag, tag != ""
}

// HasActionVerb reports whether line reads like something to do.
func HasActionVerb(line string) bool {
	return actionRegex.MatchString(line)
}
