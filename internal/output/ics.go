package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sirupsen/logrus"

	"github.com/five82/famwall/internal/familywall"
)

const productID = "-//famwall//FamilyWall calendar//EN"

// WriteICS writes events as an iCalendar feed. Events whose start date cannot
// be parsed are skipped. Date-only starts become all-day events.
func WriteICS(w io.Writer, name string, events []familywall.CalendarEvent) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	stamp := time.Now().UTC()
	for _, e := range events {
		start := e.ParsedStart()
		if start.IsZero() {
			logrus.WithFields(logrus.Fields{
				"event": e.EventID,
				"start": e.StartDate,
			}).Warnln("Skipping event with unparsable start")
			continue
		}

		uid := e.EventID
		if uid == "" {
			uid = fmt.Sprintf("%s-%d", strings.ReplaceAll(e.Text, " ", "-"), start.Unix())
		}
		ev := cal.AddEvent(uid + "@familywall")
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Text)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.Where != "" {
			ev.SetLocation(e.Where)
		}

		end := e.ParsedEnd()
		if isDateOnly(e.StartDate) {
			ev.SetAllDayStartAt(start)
			if end.IsZero() || !end.After(start) {
				end = start.AddDate(0, 0, 1)
			}
			ev.SetAllDayEndAt(end)
			continue
		}
		ev.SetStartAt(start)
		if !end.IsZero() && !end.Before(start) {
			ev.SetEndAt(end)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func isDateOnly(value string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	return err == nil
}
