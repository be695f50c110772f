package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eventlink-api/internal/models"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
	"github.com/noah-isme/eventlink-api/pkg/openai"
)

const extractionSchemaName = "event_extraction"

// processStartDate is the "today" the model uses to infer missing years.
var processStartDate = time.Now().UTC().Format("2006-01-02")

const instructionTemplate = `
You are an expert at structured data extraction. Extract event information from unstructured text.

Extract the event start and end times.

Return all dates as YYYY-MM-DD and times as HH:MM in 24-hour format.
If you cannot determine an exact value, return null.

If no year is specified in the text, use the current date to infer the correct year.
Today's date is %s.
If a state, city, or region is mentioned, convert it to the correct IANA time zone.
For example:
- "Wyoming" → "America/Denver"
- "New York" → "America/New_York"
- "Los Angeles" → "America/Los_Angeles"
If no information is present, return null for the timezone.
`

// StructuredCompleter is the language-model capability: instructions, user
// text and a JSON schema in, JSON text out.
type StructuredCompleter interface {
	Complete(ctx context.Context, req openai.StructuredRequest) (string, error)
}

// EventExtractor turns free-form text into validated EventFields.
type EventExtractor struct {
	model   StructuredCompleter
	metrics *MetricsService
	logger  *zap.Logger
	today   string
}

// NewEventExtractor constructs the extractor.
func NewEventExtractor(model StructuredCompleter, metrics *MetricsService, logger *zap.Logger) *EventExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventExtractor{model: model, metrics: metrics, logger: logger, today: processStartDate}
}

// Instructions returns the system prompt sent with every request.
func (e *EventExtractor) Instructions() string {
	return fmt.Sprintf(instructionTemplate, e.today)
}

// ExtractionSchema returns the strict JSON schema for EventFields.
func ExtractionSchema() map[string]interface{} {
	zones := make([]interface{}, 0, len(models.SupportedTimeZones)+1)
	for _, zone := range models.SupportedTimeZones {
		zones = append(zones, zone)
	}
	zones = append(zones, nil)

	nullableString := func() map[string]interface{} {
		return map[string]interface{}{"type": []string{"string", "null"}}
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":     map[string]interface{}{"type": "string"},
			"startDate": map[string]interface{}{"type": "string"},
			"startTime": map[string]interface{}{"type": "string"},
			"endDate":   nullableString(),
			"endTime":   nullableString(),
			"timeZone":  map[string]interface{}{"type": []string{"string", "null"}, "enum": zones},
			"location":  nullableString(),
		},
		"required":             []string{"title", "startDate", "startTime", "endDate", "endTime", "timeZone", "location"},
		"additionalProperties": false,
	}
}

// Extract calls the model once and validates its answer. Provider failures
// are internal errors; unusable or invalid payloads are client input errors.
func (e *EventExtractor) Extract(ctx context.Context, text, apiKey string) (*models.EventFields, error) {
	start := time.Now()
	raw, err := e.model.Complete(ctx, openai.StructuredRequest{
		APIKey:       apiKey,
		Instructions: e.Instructions(),
		Input:        text,
		SchemaName:   extractionSchemaName,
		Schema:       ExtractionSchema(),
	})
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, openai.ErrNoOutput) {
			e.metrics.RecordExtraction(ExtractionParseError, elapsed)
			e.logger.Warn("extraction returned no output", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, appErrors.ErrExtractionParse.Message)
		}
		e.metrics.RecordExtraction(ExtractionProviderError, elapsed)
		e.logger.Error("extraction provider call failed", zap.Error(err), zap.Duration("latency", elapsed))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	fields, err := decodeEventFields(raw)
	if err != nil {
		e.metrics.RecordExtraction(ExtractionParseError, elapsed)
		e.logger.Warn("extraction payload unparseable", zap.Error(err))
		return nil, err
	}

	if err := ValidateEventFields(fields); err != nil {
		e.metrics.RecordExtraction(ExtractionInvalid, elapsed)
		e.logger.Info("extraction payload rejected", zap.String("reason", appErrors.FromError(err).Message))
		return nil, err
	}

	e.metrics.RecordExtraction(ExtractionSuccess, elapsed)
	return fields, nil
}

func decodeEventFields(raw string) (*models.EventFields, error) {
	payload := bytes.TrimSpace([]byte(raw))
	if len(payload) == 0 || !json.Valid(payload) {
		return nil, appErrors.Clone(appErrors.ErrExtractionParse, "")
	}
	if payload[0] != '{' {
		return nil, ValidateEventFields(nil)
	}

	var fields models.EventFields
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, appErrors.ErrExtractionParse.Message)
	}
	return &fields, nil
}
