package service

import (
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/eventlink-api/internal/models"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
)

const (
	// GoogleCalendarEventURL is the event-creation page prefilled by the link.
	GoogleCalendarEventURL = "https://calendar.google.com/calendar/u/0/r/eventedit"

	// DefaultEventDuration applies when the end is not fully specified.
	DefaultEventDuration = time.Hour

	wallClockLayout   = "2006-01-02T15:04"
	calendarTimestamp = "20060102T150405"
)

// EventWindow resolves the wall-clock start and end of the event. Times are
// anchored to UTC purely for arithmetic; the time zone is never applied.
func EventWindow(fields *models.EventFields) (time.Time, time.Time, error) {
	start, err := parseWallClock(fields.StartDate, fields.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !fields.HasEnd() {
		return start, start.Add(DefaultEventDuration), nil
	}

	end, err := parseWallClock(*fields.EndDate, *fields.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// BuildCalendarLink renders the Google Calendar event-creation URL. Query
// parameters keep a fixed order: text, ctz, dates, location.
func BuildCalendarLink(fields *models.EventFields) (string, error) {
	start, end, err := EventWindow(fields)
	if err != nil {
		return "", err
	}

	params := []struct{ key, value string }{
		{"text", fields.Title},
		{"ctz", deref(fields.TimeZone)},
		{"dates", start.Format(calendarTimestamp) + "/" + end.Format(calendarTimestamp)},
		{"location", deref(fields.Location)},
	}

	var b strings.Builder
	b.WriteString(GoogleCalendarEventURL)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String(), nil
}

func parseWallClock(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(wallClockLayout, date+"T"+clock, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Event date or time is out of range.")
	}
	return t, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
