package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fbo-launchpad/fuel-ops/pkg/logger"
)

const traceHeader = "X-Trace-ID"

// TraceID honors an inbound trace id or mints one, stamps it on the
// request-scoped logger, and echoes it back so callers can correlate.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(traceHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(traceHeader, id)

		ctx := logger.With(r.Context(), "trace_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
