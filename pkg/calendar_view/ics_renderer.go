package calendar_view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nichecal/nichecal/pkg/calendar_date"
)

const icsProductID = "-//nichecal//Calendario Personalizado//PT"

type IcsRendererImpl struct{}

func NewIcsRenderer() *IcsRendererImpl {
	return &IcsRendererImpl{}
}

// RenderCalendar writes entries as all-day events. Entries whose date does
// not parse are skipped.
func (r *IcsRendererImpl) RenderCalendar(w io.Writer, niches []string, entries []calendar_date.Entry, now time.Time) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\r\n", args...)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", icsProductID)
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:%s", escapeText(Heading+" ("+strings.Join(niches, ", ")+")"))

	stamp := now.UTC().Format("20060102T150405Z")
	for _, e := range entries {
		date, err := time.Parse(time.DateOnly, e.Date)
		if err != nil {
			continue
		}
		badge := BadgeFor(e.Category)
		line("BEGIN:VEVENT")
		line("UID:%s@nichecal", eventUID(e))
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", date.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", date.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", escapeText(e.Title))
		line("DESCRIPTION:%s", escapeText(e.Description))
		line("CATEGORIES:%s", escapeText(badge.Label))
		line("TRANSP:TRANSPARENT")
		line("END:VEVENT")
	}
	line("END:VCALENDAR")

	_, err := io.WriteString(w, b.String())
	return err
}

// eventUID is derived from the date and title only, so an entry keeps its UID
// whatever niche selection it was exported with.
func eventUID(e calendar_date.Entry) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("nichecal:"+e.Date+":"+e.Title)).String()
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`, "\r", "")

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}
