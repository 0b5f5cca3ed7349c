package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agbank/banking-api/internal/models"
	"github.com/agbank/banking-api/internal/repository"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Money-movement POSTs are the operations worth replay protection; the
// request path includes the account ID, so cached responses are scoped to
// the account they were produced for.
var idempotentSuffixes = []string{
	"/withdraw",
	"/deposit",
	"/transfer",
}

type responseCapture struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // Default if WriteHeader not called
	}
}

func (rc *responseCapture) WriteHeader(code int) {
	rc.statusCode = code
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b) // Capture for caching
	return rc.ResponseWriter.Write(b)
}

// Idempotency creates middleware that handles idempotent request caching.
func Idempotency(repo repository.IdempotencyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresIdempotency(r) {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get(idempotencyKeyHeader)
			if idempotencyKey == "" {
				// Key is optional; without one the request runs uncached.
				next.ServeHTTP(w, r)
				return
			}

			requestPath := normalizeRequestPath(r.URL.Path)
			ctx := r.Context()

			cached, err := repo.Get(ctx, idempotencyKey, requestPath)
			if err != nil {
				logger.Error("failed to check idempotency cache", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if cached != nil {
				logger.Debug("returning cached idempotent response",
					"key", idempotencyKey,
					"path", requestPath,
					"status", cached.ResponseStatus,
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotent-Replayed", "true")
				w.WriteHeader(cached.ResponseStatus)
				//nolint:errcheck // Best effort response writing
				w.Write([]byte(cached.ResponseBody))
				return
			}

			capture := newResponseCapture(w)
			next.ServeHTTP(capture, r)

			if shouldCacheResponse(capture.statusCode) {
				idemKey := &models.IdempotencyKey{
					Key:            idempotencyKey,
					RequestPath:    requestPath,
					ResponseStatus: capture.statusCode,
					ResponseBody:   capture.body.String(),
					CreatedAt:      time.Now(),
				}

				if err := repo.Store(ctx, idemKey); err != nil {
					logger.Error("failed to store idempotency key",
						"error", err,
						"key", idempotencyKey,
					)
				}
			}
		})
	}
}

func requiresIdempotency(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}

	path := normalizeRequestPath(r.URL.Path)
	for _, suffix := range idempotentSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
