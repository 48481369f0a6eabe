// Package middleware holds the HTTP plumbing shared by every route:
// request ids, logging, panic recovery, and JSON response helpers.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/DheerG/LogicPull/pkg/fault"
)

type contextKey int

const requestIDKey contextKey = iota

// RequestID tags every request with a uuid for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request id placed in the context, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logging wraps a handler with request logging.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Info("request started",
			"request_id", RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		next.ServeHTTP(w, r)

		duration := time.Since(start)
		slog.Info("request completed",
			"request_id", RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// Recover converts a handler panic into a 500 so one bad request can
// never take the process down with unrelated in-flight work.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				slog.Error("handler panicked",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"panic", p,
				)
				ErrorResponse(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSONResponse writes a JSON response.
func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, errorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// NotFound writes the uniform not-found response. Missing resources,
// group mismatches, and capability-hash mismatches all share this shape
// so none of them leaks which case occurred.
func NotFound(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusNotFound, "not found")
}

// WriteFault maps an error from the lower layers onto an HTTP status.
// Infrastructure failures log and answer 500/503; the process stays up.
func WriteFault(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case fault.IsNotFound(err):
		NotFound(w)
	case errors.Is(err, fault.ErrPermissionDenied):
		ErrorResponse(w, http.StatusForbidden, "forbidden")
	case fault.IsConflict(err):
		ErrorResponse(w, http.StatusConflict, "conflict")
	case errors.Is(err, fault.ErrStoreUnavailable):
		slog.Error("store failure", "request_id", RequestIDFrom(r.Context()), "error", err)
		ErrorResponse(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		slog.Error("request failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}
