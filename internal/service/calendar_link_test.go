package service

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventlink-api/internal/models"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
)

func TestBuildCalendarLinkDefaultsToOneHour(t *testing.T) {
	link, err := BuildCalendarLink(&models.EventFields{
		Title:     "LS Women's Group | Fundamentals at Work",
		StartDate: "2025-12-21",
		StartTime: "14:00",
		TimeZone:  models.StringPtr("America/New_York"),
		Location:  models.StringPtr("Gathertown"),
	})
	require.NoError(t, err)

	expected := "https://calendar.google.com/calendar/u/0/r/eventedit" +
		"?text=LS+Women%27s+Group+%7C+Fundamentals+at+Work" +
		"&ctz=America%2FNew_York" +
		"&dates=20251221T140000%2F20251221T150000" +
		"&location=Gathertown"
	assert.Equal(t, expected, link)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "calendar.google.com", parsed.Host)
	assert.Equal(t, "/calendar/u/0/r/eventedit", parsed.Path)
	assert.Equal(t, "LS Women's Group | Fundamentals at Work", parsed.Query().Get("text"))
	assert.Equal(t, "20251221T140000/20251221T150000", parsed.Query().Get("dates"))
}

func TestBuildCalendarLinkUsesExplicitEnd(t *testing.T) {
	link, err := BuildCalendarLink(&models.EventFields{
		Title:     "Test Event",
		StartDate: "2025-12-21",
		StartTime: "14:00",
		EndDate:   models.StringPtr("2025-12-21"),
		EndTime:   models.StringPtr("15:30"),
		TimeZone:  models.StringPtr("America/Los_Angeles"),
		Location:  models.StringPtr("Zoom"),
	})
	require.NoError(t, err)

	query, err := url.Parse(link)
	require.NoError(t, err)
	values := query.Query()
	assert.Equal(t, "20251221T140000/20251221T153000", values.Get("dates"))
	assert.Equal(t, "America/Los_Angeles", values.Get("ctz"))
	assert.Equal(t, "Zoom", values.Get("location"))
	assert.Equal(t, "Test Event", values.Get("text"))
}

func TestBuildCalendarLinkEmptyOptionalParams(t *testing.T) {
	link, err := BuildCalendarLink(&models.EventFields{Title: "Lunch with Sam", StartDate: "2026-03-03", StartTime: "12:00"})
	require.NoError(t, err)

	assert.Equal(t, GoogleCalendarEventURL+"?text=Lunch+with+Sam&ctz=&dates=20260303T120000%2F20260303T130000&location=", link)
}

func TestBuildCalendarLinkPartialEndFallsBackToDefault(t *testing.T) {
	cases := []*models.EventFields{
		{Title: "A", StartDate: "2025-12-21", StartTime: "14:00", EndDate: models.StringPtr("2025-12-22")},
		{Title: "A", StartDate: "2025-12-21", StartTime: "14:00", EndTime: models.StringPtr("18:00")},
	}
	for _, fields := range cases {
		start, end, err := EventWindow(fields)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, end.Sub(start))
	}
}

func TestBuildCalendarLinkCrossesMidnight(t *testing.T) {
	start, end, err := EventWindow(&models.EventFields{Title: "Late show", StartDate: "2025-12-31", StartTime: "23:30"})
	require.NoError(t, err)

	assert.Equal(t, "20251231T233000", start.Format(calendarTimestamp))
	assert.Equal(t, "20260101T003000", end.Format(calendarTimestamp))
}

func TestBuildCalendarLinkIgnoresZoneForArithmetic(t *testing.T) {
	// 2026-03-08 02:00 does not exist in New York; the wall clock is kept as-is.
	link, err := BuildCalendarLink(&models.EventFields{
		Title:     "DST",
		StartDate: "2026-03-08",
		StartTime: "02:00",
		TimeZone:  models.StringPtr("America/New_York"),
	})
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "20260308T020000/20260308T030000", parsed.Query().Get("dates"))
}

func TestBuildCalendarLinkRejectsOutOfRangeValues(t *testing.T) {
	_, err := BuildCalendarLink(&models.EventFields{Title: "X", StartDate: "2026-13-01", StartTime: "10:00"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	_, err = BuildCalendarLink(&models.EventFields{Title: "X", StartDate: "2026-01-01", StartTime: "25:00"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
