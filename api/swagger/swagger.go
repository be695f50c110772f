package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EventLink API",
        "description": "Turns free-text event descriptions into Google Calendar links.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Events", "description": "Event text to calendar link conversion"},
        {"name": "Health", "description": "Liveness and readiness probes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "description": "Reports degraded when the counter store is unreachable. Requests are still served.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK or degraded", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/parse-event": {
            "post": {
                "tags": ["Events"],
                "summary": "Convert event text into a Google Calendar link",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-Client-UUID", "in": "header", "required": true, "type": "string", "description": "Opaque client identity used for rate limiting"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ParseEventPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ParseEventResponse"}},
                    "400": {"description": "Missing input or unusable extraction", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "429": {
                        "description": "Rate limit exceeded",
                        "headers": {"Retry-After": {"type": "integer", "description": "Seconds until the window resets"}},
                        "schema": {"$ref": "#/definitions/ErrorBody"}
                    },
                    "500": {"description": "Misconfiguration or provider failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "ParseEventPayload": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string", "example": "LS Women's Group | Fundamentals at Work, Dec 21 2pm ET on Gathertown"}
            }
        },
        "ParseEventResponse": {
            "type": "object",
            "properties": {
                "calendar_link": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "retry_after_seconds": {"type": "integer"}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["ok", "degraded"]}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
