package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const (
	productID      = "-//eventlink//EN"
	floatingLayout = "20060102T150405"
)

// Event is a single calendar entry with wall-clock start and end times.
// Start and End carry no zone of their own; TimeZone names it when known.
type Event struct {
	Title    string
	Start    time.Time
	End      time.Time
	TimeZone string
	Location string
}

// ICSExporter renders events as iCalendar documents.
type ICSExporter struct {
	now    func() time.Time
	newUID func() string
}

// NewICSExporter builds an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{
		now:    time.Now,
		newUID: func() string { return uuid.NewString() + "@eventlink" },
	}
}

// Render produces an RFC 5545 calendar containing the event.
func (e *ICSExporter) Render(event Event) ([]byte, error) {
	if strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("ics requires an event title")
	}
	if event.End.Before(event.Start) {
		return nil, fmt.Errorf("ics event ends before it starts")
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, e.toVEvent(event))

	buf := &bytes.Buffer{}
	if err := ical.NewEncoder(buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ICSExporter) toVEvent(event Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.newUID())
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, e.now().UTC())
	ve.Props.Set(wallClockProp(ical.PropDateTimeStart, event.Start, event.TimeZone))
	ve.Props.Set(wallClockProp(ical.PropDateTimeEnd, event.End, event.TimeZone))
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	return ve
}

// wallClockProp writes the time as local to zone, or as floating time when the
// zone is unknown.
func wallClockProp(name string, t time.Time, zone string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDateTime)
	prop.Value = t.Format(floatingLayout)
	if zone != "" {
		prop.Params.Set(ical.ParamTimezoneID, zone)
	}
	return prop
}
