package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/realslimshanky/Pricy/utils"
)

// TraceHeader carries the trace id of a request in both directions.
const TraceHeader = "X-Trace-ID"

type ctxKey int

const loggerKey ctxKey = iota

// maxTraceIDLen bounds client supplied trace ids
const maxTraceIDLen = 64

// traceLogging tags each request with a trace id, attaches a request-scoped
// logger to the context and logs one line per completed request.
func traceLogging(base *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := sanitizeTraceID(r.Header.Get(TraceHeader))
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceHeader, traceID)

			logger := base.With("trace_id", traceID)
			ctx := context.WithValue(r.Context(), loggerKey, logger)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Infow("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// loggerFrom returns the request-scoped logger, or fallback outside a request.
func loggerFrom(ctx context.Context, fallback *utils.Logger) *utils.Logger {
	if l, ok := ctx.Value(loggerKey).(*utils.Logger); ok {
		return l
	}
	return fallback
}

func sanitizeTraceID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxTraceIDLen {
		return ""
	}
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return s
}
