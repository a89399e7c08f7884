package services

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/foaademad/event-test/models"
)

const (
	calendarProductID = "-//EventHub//Events//EN"
	// Events only carry a start time.
	DefaultEventDuration = 2 * time.Hour
)

// ExportCalendar renders events as a PUBLISH iCalendar document. Times are
// read in loc.
func ExportCalendar(events []models.Event, loc *time.Location, stamp time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, e := range events {
		start, err := e.StartsAt(loc)
		if err != nil {
			return "", fmt.Errorf("export event %s: %w", e.ID, err)
		}

		ev := cal.AddEvent(fmt.Sprintf("event-%s@eventhub", e.ID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(DefaultEventDuration))
		ev.SetSummary(e.Title)
		ev.SetLocation(e.Location)
		ev.SetDescription(fmt.Sprintf("%s\n\nOrganized by %s", e.Description, e.Organizer))
	}

	var b strings.Builder
	if err := cal.SerializeTo(&b); err != nil {
		return "", fmt.Errorf("serialize calendar: %w", err)
	}
	return b.String(), nil
}
