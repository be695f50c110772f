package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/eventlink-api/internal/dto"
	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
	"github.com/noah-isme/eventlink-api/pkg/response"
)

type eventLinkService interface {
	CreateLink(ctx context.Context, req dto.ParseEventRequest) (*dto.ParseEventResponse, error)
}

// EventHandler exposes the free-text to calendar link endpoint.
type EventHandler struct {
	service eventLinkService
	logger  *zap.Logger
}

// NewEventHandler builds a new handler.
func NewEventHandler(service eventLinkService, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{service: service, logger: logger}
}

// Parse godoc
// @Summary Convert event text into a Google Calendar link
// @Tags Events
// @Accept json
// @Produce json
// @Param X-Client-UUID header string true "Opaque client identity"
// @Param payload body dto.ParseEventPayload true "Event text"
// @Success 200 {object} dto.ParseEventResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 429 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /parse-event [post]
func (h *EventHandler) Parse(c *gin.Context) {
	var payload dto.ParseEventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// A body that is not an object with a string text counts as missing text.
		payload.Text = nil
	}

	req := dto.ParseEventRequest{
		ClientID: strings.TrimSpace(c.GetHeader(dto.ClientIDHeader)),
		Text:     payload.Text,
	}
	resp, err := h.service.CreateLink(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("parse event failed",
				zap.String("code", appErr.Code),
				zap.Error(appErr.Unwrap()),
			)
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
