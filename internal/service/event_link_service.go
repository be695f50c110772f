package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/eventlink-api/internal/dto"
	"github.com/noah-isme/eventlink-api/internal/models"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
)

type eventExtractor interface {
	Extract(ctx context.Context, text, apiKey string) (*models.EventFields, error)
}

type requestLimiter interface {
	Allow(ctx context.Context, clientID string) models.RateLimitDecision
}

// EventLinkService sequences input checks, rate limiting, extraction and
// link building for one parse request.
type EventLinkService struct {
	extractor eventExtractor
	limiter   requestLimiter
	apiKey    func() string
	logger    *zap.Logger
}

// NewEventLinkService constructs the service. apiKey is looked up on every
// request so a missing credential surfaces as a configuration error.
func NewEventLinkService(extractor eventExtractor, limiter requestLimiter, apiKey func() string, logger *zap.Logger) *EventLinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == nil {
		apiKey = func() string { return "" }
	}
	return &EventLinkService{extractor: extractor, limiter: limiter, apiKey: apiKey, logger: logger}
}

// StaticAPIKey returns a lookup for a fixed credential.
func StaticAPIKey(key string) func() string {
	key = strings.TrimSpace(key)
	return func() string { return key }
}

// CreateLink turns the request text into a calendar link.
func (s *EventLinkService) CreateLink(ctx context.Context, req dto.ParseEventRequest) (*dto.ParseEventResponse, error) {
	if req.Text == nil {
		return nil, appErrors.ErrMissingText
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		return nil, appErrors.ErrMissingClientID
	}

	apiKey := s.apiKey()
	if apiKey == "" {
		s.logger.Error("openai api key is not configured")
		return nil, appErrors.ErrMissingAPIKey
	}

	if s.limiter != nil {
		decision := s.limiter.Allow(ctx, clientID)
		if !decision.Allowed {
			return nil, appErrors.RateLimited(RetryAfterSeconds(decision.RetryAfter))
		}
	}

	fields, err := s.extractor.Extract(ctx, *req.Text, apiKey)
	if err != nil {
		return nil, err
	}

	link, err := BuildCalendarLink(fields)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("calendar link created", zap.String("client_id", clientID), zap.String("title", fields.Title))
	return &dto.ParseEventResponse{CalendarLink: link}, nil
}
