package services

import (
	"strings"
	"testing"
	"time"

	"github.com/foaademad/event-test/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCalendar(t *testing.T) {
	event := testEvent("4", "2025-05-20", "85", models.CategoryFood)
	event.Title = "Culinary Masterclass"
	event.Time = "18:00"
	event.Location = "Gourmet Cooking School"

	stamp := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	ics, err := ExportCalendar([]models.Event{event}, time.UTC, stamp)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR"))
	assert.Contains(t, ics, "METHOD:PUBLISH")
	assert.Contains(t, ics, "UID:event-4@eventhub")
	assert.Contains(t, ics, "SUMMARY:Culinary Masterclass")
	assert.Contains(t, ics, "LOCATION:Gourmet Cooking School")
	assert.Contains(t, ics, "DTSTART:20250520T180000Z")
	assert.Contains(t, ics, "DTEND:20250520T200000Z")
	assert.Contains(t, ics, "DTSTAMP:20250501T080000Z")
}

func TestExportCalendar_ConvertsFromLocation(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)

	ics, err := ExportCalendar([]models.Event{testEvent("1", "2025-05-14", "0", models.CategoryMusic)}, berlin, time.Now())
	require.NoError(t, err)

	// 10:00 CEST is 08:00 UTC.
	assert.Contains(t, ics, "DTSTART:20250514T080000Z")
}

func TestExportCalendar_BadDate(t *testing.T) {
	_, err := ExportCalendar([]models.Event{testEvent("x", "soon", "0", models.CategoryMusic)}, time.UTC, time.Now())

	assert.ErrorContains(t, err, "export event x")
}
