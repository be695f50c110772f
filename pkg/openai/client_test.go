package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventlink-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.OpenAIConfig{BaseURL: server.URL + "/", Model: "gpt-test", Timeout: time.Second})
}

func sampleRequest() StructuredRequest {
	return StructuredRequest{
		APIKey:       "sk-test",
		Instructions: "extract",
		Input:        "lunch tomorrow",
		SchemaName:   "event_extraction",
		Schema:       map[string]interface{}{"type": "object"},
	}
}

func TestCompleteSendsStructuredRequest(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"output":[{"type":"message","content":[{"type":"output_text","text":"{\"title\":\"Lunch\"}"}]}]}`))
	})

	text, err := client.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Lunch"}`, text)

	assert.Equal(t, "gpt-test", captured["model"])
	input := captured["input"].([]interface{})
	require.Len(t, input, 2)
	assert.Equal(t, "system", input[0].(map[string]interface{})["role"])
	assert.Equal(t, "lunch tomorrow", input[1].(map[string]interface{})["content"])
	format := captured["text"].(map[string]interface{})["format"].(map[string]interface{})
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "event_extraction", format["name"])
	assert.Equal(t, true, format["strict"])
}

func TestCompleteSkipsNonMessageOutput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"reasoning","content":[]},{"type":"message","content":[{"type":"output_text","text":"{}"}]}]}`))
	})

	text, err := client.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
}

func TestCompleteReturnsErrNoOutput(t *testing.T) {
	for _, body := range []string{`{"output":[]}`, `{"output":[{"type":"message","content":[{"type":"refusal","refusal":"no"}]}]}`, `not json`} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		_, err := client.Complete(context.Background(), sampleRequest())
		assert.ErrorIs(t, err, ErrNoOutput, body)
	}
}

func TestCompleteReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	})

	_, err := client.Complete(context.Background(), sampleRequest())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect API key provided", apiErr.Message)
	assert.NotErrorIs(t, err, ErrNoOutput)
}

func TestCompleteHonoursTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(server.Close)
	client := NewClient(config.OpenAIConfig{BaseURL: server.URL, Model: "gpt-test", Timeout: 50 * time.Millisecond})

	_, err := client.Complete(context.Background(), sampleRequest())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoOutput)
}
