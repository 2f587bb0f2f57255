// Package export renders tasks and planned blocks as calendar, CSV and markdown documents.
package export

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

const (
	ProductID        = "-//taskplan//EN"
	BlockDescription = "Auto-planned block"

	icsTimeLayout = "20060102T150405Z"
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// ICS renders blocks as an iCalendar document, one VEVENT per block. Times
// are written in UTC and stamped with now.
func ICS(blocks []model.Block, now time.Time) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:" + ProductID}
	stamp := now.UTC().Format(icsTimeLayout)
	for _, b := range blocks {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+uuid.NewString(),
			"DTSTAMP:"+stamp,
			"DTSTART:"+b.Start.UTC().Format(icsTimeLayout),
			"DTEND:"+b.End.UTC().Format(icsTimeLayout),
			"SUMMARY:"+icsEscaper.Replace(b.Title),
			"DESCRIPTION:"+BlockDescription,
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\n") + "\n"
}
