package models

// EventFields is the structured event extracted from free-form text. Optional
// values are nil when unknown; an empty string is never a valid "unknown".
type EventFields struct {
	Title     string  `json:"title"`
	StartDate string  `json:"startDate"`
	StartTime string  `json:"startTime"`
	EndDate   *string `json:"endDate"`
	EndTime   *string `json:"endTime"`
	TimeZone  *string `json:"timeZone"`
	Location  *string `json:"location"`
}

// HasEnd reports whether both end fields are present.
func (e EventFields) HasEnd() bool {
	return e.EndDate != nil && *e.EndDate != "" && e.EndTime != nil && *e.EndTime != ""
}

// SupportedTimeZones lists the IANA zones the extractor may return.
var SupportedTimeZones = []string{
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Europe/London",
	"Asia/Tokyo",
}

// IsSupportedTimeZone reports whether zone is one of SupportedTimeZones.
func IsSupportedTimeZone(zone string) bool {
	for _, z := range SupportedTimeZones {
		if z == zone {
			return true
		}
	}
	return false
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
