package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fbo-launchpad/fuel-ops/pkg/logger"
)

// Header names whose values never belong in a log line.
var redactedHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
}

// RequestLogger logs one line per request with method, path, status, size and
// latency. It reads the logger off the context so trace ids stamped by
// TraceID ride along.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w}

		lg := logger.From(r.Context())
		if lg.Enabled(r.Context(), slog.LevelDebug) {
			lg.Debug("request headers", "headers", RedactHeaders(r.Header))
		}

		next.ServeHTTP(ww, r)

		lg.Log(r.Context(), levelForStatus(ww.status()), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"remote_addr", r.RemoteAddr,
			"status", ww.status(),
			"bytes", ww.written,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// statusWriter captures the status code and response size for the log line.
type statusWriter struct {
	http.ResponseWriter
	code    int
	written int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RedactHeaders returns a copy of headers safe to log.
func RedactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedacted(name) {
			out[name] = "[REDACTED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func isRedacted(name string) bool {
	lower := strings.ToLower(name)
	for _, h := range redactedHeaders {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
