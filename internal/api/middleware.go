// internal/api/middleware.go
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RequestLogger hands out a logger per request. *logger.Logger implements it.
type RequestLogger interface {
	WithOperation(operation string) *zap.Logger
}

// HTTPRecorder observes finished requests. *metrics.Collector implements it.
type HTTPRecorder interface {
	RecordHTTP(route string, status int, duration time.Duration)
}

type loggerKey struct{}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestLogging attaches a per-request logger carrying a correlation id
// and records the route, status and duration once the handler returns.
func withRequestLogging(logs RequestLogger, recorder HTTPRecorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zap.NewNop()
		if logs != nil {
			log = logs.WithOperation(r.Method + " " + r.URL.Path)
		}
		r = r.WithContext(withLogger(r.Context(), log))
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		if recorder != nil {
			recorder.RecordHTTP(route, sw.status, duration)
		}
		log.Info("Request served",
			zap.String("route", route),
			zap.Int("status", sw.status),
			zap.Duration("duration", duration))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			requestLogger(r).Error("Handler panicked", zap.Any("panic", rec), zap.Stack("stack"))
			if sw, ok := w.(*statusWriter); ok && sw.written {
				return
			}
			writeError(r, w, http.StatusInternalServerError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}
