// internal/api/server.go
package api

import (
	"net/http"
	"strconv"
	"time"
)

// ServiceName is reported by the index route.
const ServiceName = "meteora-lp-reader"

// NewServer creates an HTTP server with all routes and middleware configured.
// metricsHandler may be nil, in which case /metrics is not served.
func NewServer(port int, handler *Handler, metricsHandler http.Handler, logs RequestLogger, recorder HTTPRecorder) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      NewRouter(handler, metricsHandler, logs, recorder),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter registers the routes on a ServeMux and wraps it in the middleware chain.
func NewRouter(handler *Handler, metricsHandler http.Handler, logs RequestLogger, recorder HTTPRecorder) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.Index)
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /lp/{$}", handler.MissingPositionID)
	mux.HandleFunc("GET /lp/{positionId}", handler.GetLPPosition)
	mux.HandleFunc("GET /hl/{$}", handler.MissingWallet)
	mux.HandleFunc("GET /hl/{wallet}", handler.GetPerpPosition)
	mux.HandleFunc("GET /hl/{wallet}/{coin}", handler.GetPerpPosition)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return withCORS(withRequestLogging(logs, recorder, withRecover(mux)))
}
