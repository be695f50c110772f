package dto

// ClientIDHeader carries the opaque client identity used for rate limiting.
const ClientIDHeader = "X-Client-UUID"

// ParseEventPayload is the JSON body accepted by POST /parse-event.
type ParseEventPayload struct {
	Text *string `json:"text"`
}

// ParseEventRequest is the handler-independent input to the parse flow.
type ParseEventRequest struct {
	ClientID string
	Text     *string
}

// ParseEventResponse is returned on success.
type ParseEventResponse struct {
	CalendarLink string `json:"calendar_link"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status string `json:"status"`
}
