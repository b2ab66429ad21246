package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/internal/manager"
	"github.com/duynguyendang/geoqa/pkg/metrics"
	"github.com/duynguyendang/geoqa/pkg/ntriples"
	"github.com/duynguyendang/geoqa/pkg/ontology/ontologytest"
	"github.com/duynguyendang/geoqa/pkg/service"
	"github.com/duynguyendang/geoqa/pkg/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T, load bool) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ontology.nt")
	_, err := ntriples.WriteFile(context.Background(), path, ontologytest.Open(t))
	require.NoError(t, err)

	mgr := manager.NewOntologyManager(path, nil)
	t.Cleanup(func() { mgr.Close() })
	if load {
		_, err = mgr.Load(context.Background())
		require.NoError(t, err)
	}

	m := metrics.New()
	return NewServer(mgr, service.NewQAService(mgr, service.WithMetrics(m)), m)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := do(setupServer(t, true), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = do(setupServer(t, false), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAsk(t *testing.T) {
	s := setupServer(t, true)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
		answer string
		status service.Status
	}{
		{"post", http.MethodPost, "/v1/ask", `{"question": "What is the capital of France?"}`, http.StatusOK, "Paris", service.StatusAnswered},
		{"get", http.MethodGet, "/v1/ask?q=What+is+the+population+of+France%3F", "", http.StatusOK, "67,000,000", service.StatusAnswered},
		{"no results", http.MethodPost, "/v1/ask", `{"question": "What is the capital of Nauru?"}`, http.StatusOK, "no results found.", service.StatusNoResults},
		{"unrecognized", http.MethodPost, "/v1/ask", `{"question": "Tell me about France"}`, http.StatusOK, "unrecognized query.", service.StatusUnrecognized},
		{"missing question", http.MethodPost, "/v1/ask", `{"question": "  "}`, http.StatusBadRequest, "", ""},
		{"bad body", http.MethodPost, "/v1/ask", `{`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, tt.method, tt.target, tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var a service.Answer
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
			assert.Equal(t, tt.answer, a.Text)
			assert.Equal(t, tt.status, a.Status)
		})
	}
}

func TestAskWithoutOntology(t *testing.T) {
	w := do(setupServer(t, false), http.MethodPost, "/v1/ask", `{"question": "What is the capital of France?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatsAndSchema(t *testing.T) {
	s := setupServer(t, true)

	w := do(s, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum stats.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 6, sum.Countries)

	w = do(s, http.MethodGet, "/v1/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http://example.org/government_to_country")
}

func TestReloadAndMetrics(t *testing.T) {
	s := setupServer(t, false)

	w := do(s, http.MethodPost, "/v1/reload", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, s.manager.Info().Loaded)

	do(s, http.MethodPost, "/v1/ask", `{"question": "What is the capital of France?"}`)

	w = do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `geoqa_questions_total{intent="capital",status="answered"} 1`)
	assert.Contains(t, w.Body.String(), `geoqa_ontology_reloads_total{status="ok"} 1`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := setupServer(t, true)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
