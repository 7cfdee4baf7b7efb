package routers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"podium/internal/collab"
	"podium/internal/handlers"
	"podium/internal/models"
	"podium/internal/rating"
	"podium/internal/session"
)

func setupRouter(t *testing.T) http.Handler {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	agg := session.NewAggregator(rating.NewStore(rdb))
	h := handlers.NewHandlers(agg, rdb, nil, collab.NewVisualGenerator(1), []byte("test-secret"))

	return NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "podium_http_in_flight_requests")
}

func TestSessionRoutesRegistered(t *testing.T) {
	router := setupRouter(t)

	// Full cycle through the mounted routes
	w := doJSON(t, router, http.MethodPost, "/api/v1/session/start", `{"userId":"alice","sessionId":"s1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/session/feedback/speech", `{"userId":"alice","feedback":{"overallScore":80}}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/session/feedback/visual", `{"userId":"alice","feedback":{"overallScore":60}}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/session/end", `{"userId":"alice"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK   bool                  `json:"ok"`
		Info models.SessionSummary `json:"info"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 74, resp.Info.CombinedScore)

	w = doJSON(t, router, http.MethodGet, "/api/v1/session/history?userId=alice", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/rating?userId=alice", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTranscriptRoute_UnconfiguredCritique(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/session/transcript", `{"userId":"alice","transcript":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
