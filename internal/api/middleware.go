package api

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

// apiPrefix is the path prefix guarded by the admin token.
const apiPrefix = "/api/v1"

// requireAdminToken rejects /api/v1 requests without the configured bearer
// token. An empty token disables the check.
func requireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, apiPrefix) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			scheme, given, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") ||
				subtle.ConstantTimeCompare([]byte(strings.TrimSpace(given)), []byte(token)) != 1 {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var errAdminToken = domainerrors.Unauthorized("missing or invalid admin token")

func writeUnauthorized(w http.ResponseWriter) {
	apiErr := fromDomain(errAdminToken, errAdminToken)
	w.Header().Set("Content-Type", apiErr.ContentType(""))
	w.Header().Set("WWW-Authenticate", `Bearer realm="padlink"`)
	w.WriteHeader(apiErr.GetStatus())
	_ = json.NewEncoder(w).Encode(errorEnvelope(apiErr))
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			switch {
			case ww.Status() >= 500:
				level = slog.LevelError
			case ww.Status() >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
