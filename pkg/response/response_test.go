package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/eventlink-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestErrorWritesPublicMessage(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.Validation("Event title is empty."))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Event title is empty."}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorHidesUntypedCause(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("dial tcp: secret-host:443"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Unexpected error occurred"}`, w.Body.String())
}

func TestErrorRateLimited(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.RateLimited(42))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Rate limit exceeded","retry_after_seconds":42}`, w.Body.String())
}

func TestJSON(t *testing.T) {
	c, w := newContext()

	JSON(c, http.StatusOK, gin.H{"calendar_link": "https://example.test"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"calendar_link":"https://example.test"}`, w.Body.String())
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
}
