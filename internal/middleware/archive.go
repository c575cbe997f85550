package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/drstein77/batterycatalog/internal/compress"
)

type ctxKey int

const (
	archiveTypeKey ctxKey = iota
	archiveEntriesKey
	requestIDKey
)

// ArchiveTypeMiddleware selects the archive format from the archiveType query
// parameter or a zip/tar Content-Encoding, zip by default. Request bodies are
// unpacked and their JSON files made available through ArchiveEntries.
func ArchiveTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		archiveType := r.URL.Query().Get("archiveType")
		if enc := r.Header.Get("Content-Encoding"); compress.Supported(enc) {
			archiveType = enc
		}
		if !compress.Supported(archiveType) {
			archiveType = compress.Zip // Default value
		}
		ctx := context.WithValue(r.Context(), archiveTypeKey, archiveType)

		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			reader, err := compress.NewReader(archiveType, r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+archiveType+" archive: "+err.Error())
				return
			}
			defer reader.Close()
			ctx = context.WithValue(ctx, archiveEntriesKey, reader.Entries())
		}

		// Transfer control to the handler
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ArchiveType returns the archive format chosen for the request.
func ArchiveType(ctx context.Context) string {
	if t, ok := ctx.Value(archiveTypeKey).(string); ok {
		return t
	}
	return compress.Zip
}

// ArchiveEntries returns the files unpacked from the request body.
func ArchiveEntries(ctx context.Context) ([]compress.Entry, bool) {
	entries, ok := ctx.Value(archiveEntriesKey).([]compress.Entry)
	return entries, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
