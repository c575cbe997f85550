package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
)

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method, path, status string, started time.Time)
}

// MetricsMiddleware adds prometheus metrics to track HTTP requests.
// Requests are labelled by route pattern to keep label cardinality bounded.
func MetricsMiddleware(m RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Start timer for request duration
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			// Process request
			next.ServeHTTP(ww, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}
			m.ObserveRequest(r.Method, path, strconv.Itoa(status(ww)), start)
		})
	}
}
