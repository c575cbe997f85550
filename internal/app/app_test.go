package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/middleware"
)

func newTestServer(t *testing.T, args ...string) *Server {
	t.Helper()
	for _, key := range []string{"DATABASE_URI", "REDIS_ADDR", "AMQP_URL", "SMTP_HOST", "STATIC_DIR", "ADMIN_USER", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	server, err := NewServer(context.Background(), append([]string{"-l", "error", "-c", "../../data"}, args...))
	require.NoError(t, err)
	return server
}

func TestNewServer_Routes(t *testing.T) {
	server := newTestServer(t, "-admin-user", "admin", "-admin-password", "secret")
	h := server.srv.Handler

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v0/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	var summaries []catalog.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	slugs := make([]string, 0, len(summaries))
	for _, s := range summaries {
		slugs = append(slugs, s.Slug)
	}
	assert.Contains(t, slugs, "traccion")
	assert.Contains(t, slugs, catalog.Batteries)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_http_requests_total{method="GET",path="/api/v0/categories",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `catalog_catalog_products{category="traccion"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v0/catalog/export?archiveType=tar", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-tar", rec.Header().Get("Content-Type"))
}

func TestNewServer_InvalidOptions(t *testing.T) {
	t.Setenv("CONTACT_RATE_LIMIT", "many")
	_, err := NewServer(context.Background(), nil)
	assert.ErrorContains(t, err, "CONTACT_RATE_LIMIT")

	t.Setenv("CONTACT_RATE_LIMIT", "")
	_, err = NewServer(context.Background(), []string{"-l", "loud"})
	assert.Error(t, err)
}

func TestServer_Shutdown(t *testing.T) {
	server := newTestServer(t, "-a", "127.0.0.1:0")

	done := make(chan error, 1)
	go func() { done <- server.Serve() }()

	// give ListenAndServe a moment to start
	time.Sleep(50 * time.Millisecond)
	server.Shutdown(time.Second)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
