package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/drstein77/batterycatalog/internal/compress"
)

func archive(t *testing.T, typ string, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w, err := compress.NewWriter(typ, &buf)
	require.NoError(t, err)
	for name, data := range files {
		require.NoError(t, w.Add(name, []byte(data)))
	}
	require.NoError(t, w.Close())
	return &buf
}

func TestArchiveTypeMiddleware(t *testing.T) {
	var (
		gotType    string
		gotEntries []compress.Entry
		gotOK      bool
	)
	h := ArchiveTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = ArchiveType(r.Context())
		gotEntries, gotOK = ArchiveEntries(r.Context())
	}))

	t.Run("tar upload", func(t *testing.T) {
		body := archive(t, compress.Tar, map[string]string{"traccion.json": "[]"})
		req := httptest.NewRequest(http.MethodPost, "/api/v0/catalog?archiveType=tar", body)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, compress.Tar, gotType)
		require.True(t, gotOK)
		assert.Equal(t, []compress.Entry{{Name: "traccion.json", Data: []byte("[]")}}, gotEntries)
	})

	t.Run("content encoding wins over the default", func(t *testing.T) {
		body := archive(t, compress.Zip, map[string]string{"ciclado.json": "[]"})
		req := httptest.NewRequest(http.MethodPost, "/api/v0/catalog", body)
		req.Header.Set("Content-Encoding", "zip")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, compress.Zip, gotType)
		assert.Len(t, gotEntries, 1)
	})

	t.Run("unknown type falls back to zip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v0/catalog/export?archiveType=rar", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, compress.Zip, gotType)
		assert.False(t, gotOK)
	})

	t.Run("broken archive", func(t *testing.T) {
		gotType = ""
		req := httptest.NewRequest(http.MethodPost, "/api/v0/catalog", strings.NewReader("not a zip"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
		assert.Empty(t, gotType)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

type recordingLog struct {
	msg    string
	fields map[string]any
}

func (l *recordingLog) Info(msg string, fields ...zap.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	l.msg, l.fields = msg, enc.Fields
}

func TestRequestLogger(t *testing.T) {
	log := &recordingLog{}
	h := RequestIDMiddleware(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v0/contact", nil))

	assert.Equal(t, "request", log.msg)
	assert.Equal(t, "POST", log.fields["method"])
	assert.Equal(t, "/api/v0/contact", log.fields["path"])
	assert.EqualValues(t, http.StatusTeapot, log.fields["status"])
	assert.EqualValues(t, 5, log.fields["size"])
	assert.NotEmpty(t, log.fields["request_id"])
}

type observed struct {
	method, path, status string
}

type fakeObserver struct {
	calls []observed
}

func (f *fakeObserver) ObserveRequest(method, path, status string, _ time.Time) {
	f.calls = append(f.calls, observed{method, path, status})
}

func TestMetricsMiddleware(t *testing.T) {
	obs := &fakeObserver{}
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(obs))
	r.Get("/api/v0/categories/{category}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v0/categories/traccion", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Len(t, obs.calls, 2)
	assert.Equal(t, observed{"GET", "/api/v0/categories/{category}", "200"}, obs.calls[0])
	assert.Equal(t, "404", obs.calls[1].status)
}
