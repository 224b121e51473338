package calendar_view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nichecal/nichecal/pkg/calendar_date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcsRendererImpl_RenderCalendar(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	input := []calendar_date.Entry{
		{Date: "2025-06-07", Title: "Dia X, especial", Category: calendar_date.CategoryHoliday, Description: "Dia X; feriado"},
		{Date: "not-a-date", Title: "Broken", Category: calendar_date.CategoryOptional, Description: "Broken"},
	}
	var buf bytes.Buffer

	err := NewIcsRenderer().RenderCalendar(&buf, []string{"pets", "finance"}, input, now)

	require.NoError(t, err)
	ics := buf.String()
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250607\r\n")
	assert.Contains(t, ics, "DTEND;VALUE=DATE:20250608\r\n")
	assert.Contains(t, ics, "DTSTAMP:20250102T030405Z\r\n")
	assert.Contains(t, ics, `SUMMARY:Dia X\, especial`)
	assert.Contains(t, ics, `DESCRIPTION:Dia X\; feriado`)
	assert.Contains(t, ics, "CATEGORIES:Feriado")
	assert.Contains(t, ics, `X-WR-CALNAME:Seu Calendário Personalizado (pets\, finance)`)
	assert.NotContains(t, ics, "Broken")
}

func TestIcsRendererImpl_StableUID(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	holiday := calendar_date.Entry{Date: "2025-09-07", Title: "Independência", Category: calendar_date.CategoryHoliday, Description: "Independência"}
	pets := calendar_date.Entry{Date: "2025-04-04", Title: "Dia do Cão", Category: calendar_date.CategoryCommemorative, Description: "Dia do Cão"}
	render := func(niches []string, entries ...calendar_date.Entry) []string {
		var buf bytes.Buffer
		require.NoError(t, NewIcsRenderer().RenderCalendar(&buf, niches, entries, now))
		var uids []string
		for _, l := range strings.Split(buf.String(), "\r\n") {
			if strings.HasPrefix(l, "UID:") {
				uids = append(uids, l)
			}
		}
		return uids
	}

	both := render([]string{"pets", "finance"}, pets, holiday)
	onlyFinance := render([]string{"finance"}, holiday)

	require.Len(t, both, 2)
	require.Len(t, onlyFinance, 1)
	assert.Equal(t, both[1], onlyFinance[0])
	assert.NotEqual(t, both[0], both[1])
}
