// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/apperr"
	"github.com/rovshanmuradov/lp-reader/internal/perp"
	"github.com/rovshanmuradov/lp-reader/internal/position"
)

// PositionResolver values LP positions. *position.Service implements it.
type PositionResolver interface {
	Resolve(ctx context.Context, positionID string) (*position.Snapshot, error)
	Source() string
}

// PerpReporter assembles perp views. *perp.Service implements it.
type PerpReporter interface {
	Report(ctx context.Context, wallet, coin string) (*perp.Report, error)
}

// VersionReader reports the Solana node version.
type VersionReader interface {
	GetVersion(ctx context.Context) (string, error)
}

// MidsReader is the Hyperliquid call used as a liveness ping.
type MidsReader interface {
	AllMids(ctx context.Context) (map[string]any, error)
}

// HealthDeps describes what /health reports on. Solana is nil when no RPC credential is configured.
type HealthDeps struct {
	HeliusKeyPresent bool
	RPCEndpoint      string
	Solana           VersionReader
	Hyperliquid      MidsReader
}

// Handler provides the HTTP endpoints of the reader.
type Handler struct {
	positions PositionResolver
	perps     PerpReporter
	health    HealthDeps
}

// NewHandler creates a new API handler.
func NewHandler(positions PositionResolver, perps PerpReporter, health HealthDeps) *Handler {
	return &Handler{positions: positions, perps: perps, health: health}
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(r, w, http.StatusOK, indexResponse{
		OK:        true,
		Service:   ServiceName,
		Endpoints: []string{"/health", "/lp/:positionId", "/hl/:wallet?coin=SOL", "/hl/:wallet/:coin"},
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	out := healthResponse{
		OK:               true,
		HeliusKeyPresent: h.health.HeliusKeyPresent,
		RPCEndpoint:      h.health.RPCEndpoint,
	}

	if h.health.Solana != nil {
		version, err := h.health.Solana.GetVersion(r.Context())
		if err != nil {
			requestLogger(r).Error("Solana version check failed", zap.Error(err))
			writeError(r, w, http.StatusInternalServerError, err.Error())
			return
		}
		out.SolanaVersion = &version
	}

	if h.health.Hyperliquid != nil {
		mids, err := h.health.Hyperliquid.AllMids(r.Context())
		if err != nil {
			msg := err.Error()
			out.Hyperliquid = hyperliquidHealth{OK: false, Error: &msg}
		} else {
			out.Hyperliquid = hyperliquidHealth{OK: mids != nil}
		}
	}

	writeJSON(r, w, http.StatusOK, out)
}

// GetLPPosition handles GET /lp/{positionId}.
func (h *Handler) GetLPPosition(w http.ResponseWriter, r *http.Request) {
	positionID := r.PathValue("positionId")

	snap, err := h.positions.Resolve(r.Context(), positionID)
	if err != nil {
		h.writeLPError(w, r, positionID, snap, err)
		return
	}
	writeJSON(r, w, http.StatusOK, newLPResponse(snap))
}

func (h *Handler) writeLPError(w http.ResponseWriter, r *http.Request, positionID string, snap *position.Snapshot, err error) {
	status := apperr.HTTPStatus(err)
	log := requestLogger(r).With(zap.String("position", positionID), zap.String("source", h.positions.Source()))
	if status >= http.StatusInternalServerError {
		log.Error("LP position failed", zap.Error(err))
	} else {
		log.Info("LP position rejected", zap.Int("status", status), zap.Error(err))
	}

	body := errorResponse{OK: false, Error: apperr.Message(err)}
	if errors.Is(err, apperr.ErrNotFound) && snap != nil {
		body.Meta = snap.Meta.Raw
	}
	writeJSON(r, w, status, body)
}

// MissingPositionID answers GET /lp/ with the same JSON 400 an empty id gets from the resolver.
func (h *Handler) MissingPositionID(w http.ResponseWriter, r *http.Request) {
	writeError(r, w, http.StatusBadRequest, "missing positionId")
}

// MissingWallet answers GET /hl/.
func (h *Handler) MissingWallet(w http.ResponseWriter, r *http.Request) {
	writeError(r, w, http.StatusBadRequest, "missing wallet")
}

// GetPerpPosition handles GET /hl/{wallet} and GET /hl/{wallet}/{coin}.
func (h *Handler) GetPerpPosition(w http.ResponseWriter, r *http.Request) {
	wallet := r.PathValue("wallet")
	coin := r.PathValue("coin")
	if coin == "" {
		coin = r.URL.Query().Get("coin")
	}

	report, err := h.perps.Report(r.Context(), wallet, coin)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			requestLogger(r).Error("Perp position failed", zap.String("wallet", wallet), zap.Error(err))
		}
		writeError(r, w, status, apperr.Message(err))
		return
	}
	writeJSON(r, w, http.StatusOK, newPerpResponse(report))
}

func withLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func requestLogger(r *http.Request) *zap.Logger {
	if log, ok := r.Context().Value(loggerKey{}).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

func writeJSON(r *http.Request, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		requestLogger(r).Error("Failed to marshal JSON response", zap.Error(err))
		http.Error(w, `{"ok":false,"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		requestLogger(r).Warn("Failed to write HTTP response body", zap.Error(err))
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(r *http.Request, w http.ResponseWriter, status int, msg string) {
	writeJSON(r, w, status, errorResponse{OK: false, Error: msg})
}
