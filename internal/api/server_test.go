package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocabkeep/vocabkeep/internal/dictionary"
	"github.com/vocabkeep/vocabkeep/internal/message"
	"github.com/vocabkeep/vocabkeep/internal/search"
	"github.com/vocabkeep/vocabkeep/internal/service"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

func setupTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(t.TempDir(), "data"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Init(context.Background()))

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	dict, err := dictionary.NewFromEntries(nil, index, logger)
	require.NoError(t, err)

	v := validation.New()
	lists := service.NewListService(st, v, logger)
	router := message.NewRouter(message.Services{
		Words:    service.NewWordService(st, dict, index, v, logger),
		Lists:    lists,
		Settings: service.NewSettingsService(st, lists, v, logger),
		Reviews:  service.NewReviewService(st, logger),
	}, v, logger)

	s := NewServer(cfg, st, index, router, logger)
	t.Cleanup(s.Close)
	return s
}

func postMessage(t *testing.T, s *Server, body string, headers map[string]string) (*httptest.ResponseRecorder, message.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, messagesPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	var resp message.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t, Config{Version: "1.2.3"})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, healthPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "healthy", body.Components["database"].Status)
	assert.Equal(t, "healthy", body.Components["search"].Status)
}

func TestHealthCheck_NoSearchIndexIsDegraded(t *testing.T) {
	s := setupTestServer(t, Config{})
	s.index = nil

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, healthPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestMessages_Success(t *testing.T) {
	s := setupTestServer(t, Config{})

	w, resp := postMessage(t, s,
		`{"action":"addWord","payload":{"text":"Hello","definitions":[{"meaning":"a greeting"}]}}`,
		map[string]string{RequestIDHeader: "corr-1"},
	)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "corr-1", resp.ID)
	assert.Equal(t, "corr-1", w.Header().Get(RequestIDHeader))

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", data["normalizedText"])
}

func TestMessages_BodyIDWins(t *testing.T) {
	s := setupTestServer(t, Config{})

	w, resp := postMessage(t, s, `{"id":"msg-7","action":"getSettings"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "msg-7", resp.ID)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestMessages_ErrorStatuses(t *testing.T) {
	s := setupTestServer(t, Config{})

	_, resp := postMessage(t, s, `{"action":"addList","payload":{"name":"Verbs"}}`, nil)
	require.True(t, resp.Success)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unknown action", `{"action":"nope"}`, http.StatusBadRequest, "VALIDATION"},
		{"malformed body", `{"action":`, http.StatusBadRequest, "VALIDATION"},
		{"empty body", ``, http.StatusBadRequest, "VALIDATION"},
		{"missing word", `{"action":"getWord","payload":{"id":"word-nope"}}`, http.StatusNotFound, "NOT_FOUND"},
		{"duplicate list", `{"action":"addList","payload":{"name":"verbs"}}`, http.StatusConflict, "DUPLICATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postMessage(t, s, tt.body, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, string(resp.Code))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := setupTestServer(t, Config{RateLimitRPS: 0.001, RateLimitBurst: 2})
	body := `{"action":"getStats"}`

	for range 2 {
		w, _ := postMessage(t, s, body, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp := postMessage(t, s, body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", string(resp.Code))

	// Another client has its own bucket.
	w, _ = postMessage(t, s, body, map[string]string{"X-Real-IP": "10.0.0.9"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Health checks are never throttled.
	hw := httptest.NewRecorder()
	s.ServeHTTP(hw, httptest.NewRequest(http.MethodGet, healthPath, nil))
	assert.Equal(t, http.StatusOK, hw.Code)
}

func TestCORS(t *testing.T) {
	s := setupTestServer(t, Config{CORSAllowedOrigins: []string{"chrome-extension://*"}})

	req := httptest.NewRequest(http.MethodOptions, messagesPath, nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, "chrome-extension://abcdef", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, messagesPath, nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	s := setupTestServer(t, Config{})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}
