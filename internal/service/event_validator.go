package service

import (
	"regexp"

	"github.com/noah-isme/eventlink-api/internal/models"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
)

// Shape checks only: month and hour ranges are not enforced here.
var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// IsValidDate reports whether value is a YYYY-MM-DD string, or nil when nullable.
func IsValidDate(value *string, nullable bool) bool {
	if value == nil {
		return nullable
	}
	return datePattern.MatchString(*value)
}

// IsValidTime reports whether value is an HH:MM string, or nil when nullable.
func IsValidTime(value *string, nullable bool) bool {
	if value == nil {
		return nullable
	}
	return timePattern.MatchString(*value)
}

// ValidateEventFields returns the first violated rule as a validation error.
func ValidateEventFields(fields *models.EventFields) error {
	if fields == nil {
		return appErrors.Validation("Event info is not an object.")
	}
	if fields.Title == "" {
		return appErrors.Validation("Event title is empty.")
	}
	if !IsValidDate(&fields.StartDate, false) {
		return appErrors.Validation("Event start date is invalid.")
	}
	if !IsValidTime(&fields.StartTime, false) {
		return appErrors.Validation("Event start time is invalid.")
	}
	if !IsValidDate(fields.EndDate, true) {
		return appErrors.Validation("Event end date is invalid.")
	}
	if !IsValidTime(fields.EndTime, true) {
		return appErrors.Validation("Event end time is invalid.")
	}
	if fields.TimeZone != nil && *fields.TimeZone == "" {
		return appErrors.Validation("Unknown time zone should be null, not empty string.")
	}
	if fields.Location != nil && *fields.Location == "" {
		return appErrors.Validation("Unknown location should be null, not empty string.")
	}
	return nil
}
