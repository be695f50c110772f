package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventlink-api/internal/models"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
	"github.com/noah-isme/eventlink-api/pkg/openai"
)

type completerStub struct {
	output   string
	err      error
	calls    int
	captured openai.StructuredRequest
}

func (s *completerStub) Complete(_ context.Context, req openai.StructuredRequest) (string, error) {
	s.calls++
	s.captured = req
	return s.output, s.err
}

const lunchPayload = `{"title":"Lunch with Sam","startDate":"2026-10-20","startTime":"12:00","endDate":null,"endTime":null,"timeZone":"America/New_York","location":"NYC"}`

func TestEventExtractorExtractsValidEvent(t *testing.T) {
	stub := &completerStub{output: lunchPayload}
	extractor := NewEventExtractor(stub, NewMetricsService(), nil)

	fields, err := extractor.Extract(context.Background(), "lunch with Sam next Tuesday at noon in NYC", "sk-test")
	require.NoError(t, err)

	assert.Equal(t, "Lunch with Sam", fields.Title)
	assert.Equal(t, "2026-10-20", fields.StartDate)
	assert.Nil(t, fields.EndDate)
	assert.Nil(t, fields.EndTime)
	require.NotNil(t, fields.TimeZone)
	assert.Equal(t, "America/New_York", *fields.TimeZone)
	assert.Equal(t, 1, stub.calls)

	assert.Equal(t, "sk-test", stub.captured.APIKey)
	assert.Equal(t, "lunch with Sam next Tuesday at noon in NYC", stub.captured.Input)
	assert.Equal(t, "event_extraction", stub.captured.SchemaName)
	assert.Contains(t, stub.captured.Instructions, "Today's date is "+processStartDate+".")
	assert.Contains(t, stub.captured.Instructions, `"Wyoming" → "America/Denver"`)
}

func TestEventExtractorUsesCapturedDate(t *testing.T) {
	stub := &completerStub{output: lunchPayload}
	extractor := NewEventExtractor(stub, nil, nil)
	extractor.today = "2024-02-29"

	_, err := extractor.Extract(context.Background(), "lunch", "k")
	require.NoError(t, err)

	assert.Contains(t, stub.captured.Instructions, "Today's date is 2024-02-29.")
}

func TestExtractionSchemaIsStrict(t *testing.T) {
	schema := ExtractionSchema()

	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []string{"title", "startDate", "startTime", "endDate", "endTime", "timeZone", "location"}, schema["required"])

	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"enum":["America/New_York","America/Chicago","America/Denver","America/Los_Angeles","Europe/London","Asia/Tokyo",null]`)
	assert.Contains(t, string(raw), `"endDate":{"type":["string","null"]}`)
}

func TestEventExtractorProviderFailureIsInternal(t *testing.T) {
	cases := []error{
		errors.New("openai: request failed: context deadline exceeded"),
		&openai.APIError{StatusCode: http.StatusServiceUnavailable, Message: "overloaded"},
	}
	for _, providerErr := range cases {
		extractor := NewEventExtractor(&completerStub{err: providerErr}, nil, nil)

		_, err := extractor.Extract(context.Background(), "lunch", "k")

		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, http.StatusInternalServerError, appErr.Status)
		assert.Equal(t, "Unexpected error occurred", appErr.Message)
		assert.ErrorIs(t, err, providerErr)
	}
}

func TestEventExtractorParseFailuresAreClientErrors(t *testing.T) {
	cases := map[string]struct {
		output  string
		err     error
		message string
	}{
		"no output":      {err: fmt.Errorf("%w: EOF", openai.ErrNoOutput), message: "Failed to parse event data from API response."},
		"empty text":     {output: "   ", message: "Failed to parse event data from API response."},
		"not json":       {output: "Sure! Here is the event", message: "Failed to parse event data from API response."},
		"truncated":      {output: `{"title":"Lunch"`, message: "Failed to parse event data from API response."},
		"wrong types":    {output: `{"title":42,"startDate":"2026-01-01","startTime":"10:00"}`, message: "Failed to parse event data from API response."},
		"array":          {output: `[` + lunchPayload + `]`, message: "Event info is not an object."},
		"null":           {output: `null`, message: "Event info is not an object."},
		"empty object":   {output: `{}`, message: "Event title is empty."},
		"empty zone":     {output: strings.Replace(lunchPayload, `"America/New_York"`, `""`, 1), message: "Unknown time zone should be null, not empty string."},
		"empty location": {output: strings.Replace(lunchPayload, `"NYC"`, `""`, 1), message: "Unknown location should be null, not empty string."},
		"bad start time": {output: strings.Replace(lunchPayload, `"12:00"`, `"noon"`, 1), message: "Event start time is invalid."},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			extractor := NewEventExtractor(&completerStub{output: tc.output, err: tc.err}, NewMetricsService(), nil)

			_, err := extractor.Extract(context.Background(), "lunch", "k")

			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestEventExtractorKeepsWallClockFields(t *testing.T) {
	payload := `{"title":"Standup","startDate":"2026-01-05","startTime":"09:15","endDate":"2026-01-05","endTime":"09:30","timeZone":null,"location":null}`
	extractor := NewEventExtractor(&completerStub{output: payload}, nil, nil)

	fields, err := extractor.Extract(context.Background(), "standup", "k")
	require.NoError(t, err)

	assert.Equal(t, models.EventFields{
		Title:     "Standup",
		StartDate: "2026-01-05",
		StartTime: "09:15",
		EndDate:   models.StringPtr("2026-01-05"),
		EndTime:   models.StringPtr("09:30"),
	}, *fields)
}
