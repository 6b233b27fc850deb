package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiment-analyzer/config"
	"github.com/spacesedan/sentiment-analyzer/internal/models"
)

// fakeInvoker records calls and plays back a canned result per function.
type fakeInvoker struct {
	calls   map[string]int
	results map[string]any
	err     error
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		calls:   make(map[string]int),
		results: make(map[string]any),
	}
}

func (f *fakeInvoker) Invoke(_ context.Context, function string, _ any, out any) error {
	f.calls[function]++
	if f.err != nil {
		return f.err
	}
	raw, err := json.Marshal(f.results[function])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func newTestRouter(inv *fakeInvoker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AppName: "sentiment-analyzer"}
	return NewRouter(NewHandler(cfg, inv, nil, nil))
}

func postJSON(t *testing.T, router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint_BlankTextNeverInvokesModel(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing text key", `{}`},
		{"empty text", `{"text": ""}`},
		{"whitespace only", `{"text": "   \t\n"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newFakeInvoker()
			router := newTestRouter(inv)

			w := postJSON(t, router, "/sentiment", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, models.StatusError, resp.Status)
			assert.Zero(t, inv.calls["analyze_sentiment"], "model must not be invoked for blank input")
		})
	}
}

func TestAnalyzeEndpoint_ReturnsResultVerbatim(t *testing.T) {
	inv := newFakeInvoker()
	inv.results["analyze_sentiment"] = models.Result{
		Text:       "I love this workshop!",
		Label:      "Positive",
		Score:      0.988,
		Confidence: "98.8%",
		Emoji:      "😊",
		Status:     models.StatusSuccess,
	}
	router := newTestRouter(inv)

	w := postJSON(t, router, "/sentiment", `{"text": "I love this workshop!"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, inv.results["analyze_sentiment"], resp)
	assert.Equal(t, 1, inv.calls["analyze_sentiment"])
}

func TestAnalyzeEndpoint_ErrorResultPassesThrough(t *testing.T) {
	inv := newFakeInvoker()
	inv.results["analyze_sentiment"] = models.Result{
		Text:   "boom",
		Error:  "model load failed",
		Status: models.StatusError,
	}
	router := newTestRouter(inv)

	w := postJSON(t, router, "/sentiment", `{"text": "boom"}`)

	// analysis failures are structured results, not transport errors
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Equal(t, "model load failed", resp.Error)
}

func TestAnalyzeEndpoint_InvocationFailure(t *testing.T) {
	inv := newFakeInvoker()
	inv.err = errors.New("platform unreachable")
	router := newTestRouter(inv)

	w := postJSON(t, router, "/sentiment", `{"text": "hello"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusError, resp.Status)
}

func TestBatchEndpoint_OrderPreserved(t *testing.T) {
	inv := newFakeInvoker()
	inv.results["batch_sentiment_analysis"] = []models.Result{
		{Text: "a", Label: "Positive", Status: models.StatusSuccess},
		{Text: "b", Error: "inference failed", Status: models.StatusError},
	}
	router := newTestRouter(inv)

	w := postJSON(t, router, "/sentiment/batch", `{"texts": ["a", "b"]}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []models.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "a", resp[0].Text)
	assert.Equal(t, "b", resp[1].Text)
	assert.Equal(t, models.StatusError, resp[1].Status)
}

func TestBatchEndpoint_EmptyListRejected(t *testing.T) {
	inv := newFakeInvoker()
	router := newTestRouter(inv)

	w := postJSON(t, router, "/sentiment/batch", `{"texts": []}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, inv.calls["batch_sentiment_analysis"])
}

func TestHealthEndpoint_StaticAndIdempotent(t *testing.T) {
	router := newTestRouter(newFakeInvoker())

	var bodies []string
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, "/health", http.NoBody)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		bodies = append(bodies, w.Body.String())
	}

	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "sentiment-analyzer", resp.Service)
	assert.NotEmpty(t, resp.Message)
}

func TestWatchPlatform_FlagReflectedInHealthState(t *testing.T) {
	inv := newFakeInvoker()
	cfg := &config.Config{AppName: "sentiment-analyzer"}
	h := NewHandler(cfg, inv, nil, nil)

	// no monitor wired: assume healthy
	assert.True(t, h.platformHealthy())

	var flag atomic.Bool
	flag.Store(true)
	h.WatchPlatform(&flag)
	assert.True(t, h.platformHealthy())

	flag.Store(false)
	assert.False(t, h.platformHealthy())

	// degraded platform still yields a structured error response
	inv.err = errors.New("platform unreachable")
	status, payload := h.AnalyzeJSON(context.Background(), []byte(`{"text": "hello"}`))
	assert.Equal(t, http.StatusBadGateway, status)
	resp, ok := payload.(models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, models.StatusError, resp.Status)
}

func TestAnalyzeEndpoint_MalformedJSON(t *testing.T) {
	inv := newFakeInvoker()
	router := newTestRouter(inv)

	w := postJSON(t, router, "/sentiment", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, inv.calls["analyze_sentiment"])
}
