package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
)

// ErrorBody is the error contract returned to API clients.
type ErrorBody struct {
	Error             string `json:"error"`
	RetryAfterSeconds *int   `json:"retry_after_seconds,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Error converts the error to its HTTP status and writes the public message.
// Untyped errors collapse to the generic internal error; their cause never
// reaches the client.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")

	body := ErrorBody{Error: appErr.Message}
	if appErr.Status == http.StatusTooManyRequests && appErr.RetryAfter > 0 {
		retry := appErr.RetryAfter
		body.RetryAfterSeconds = &retry
		c.Header("Retry-After", strconv.Itoa(retry))
	}
	c.JSON(appErr.Status, body)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
