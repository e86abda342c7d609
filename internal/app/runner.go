// internal/app/runner.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/api"
	"github.com/rovshanmuradov/lp-reader/internal/blockchain/solbc"
	"github.com/rovshanmuradov/lp-reader/internal/config"
	"github.com/rovshanmuradov/lp-reader/internal/dex/dlmm"
	"github.com/rovshanmuradov/lp-reader/internal/dex/meteora"
	"github.com/rovshanmuradov/lp-reader/internal/perp"
	"github.com/rovshanmuradov/lp-reader/internal/perp/hyperliquid"
	"github.com/rovshanmuradov/lp-reader/internal/position"
	"github.com/rovshanmuradov/lp-reader/internal/upstream"
	"github.com/rovshanmuradov/lp-reader/internal/utils/logger"
	"github.com/rovshanmuradov/lp-reader/internal/utils/metrics"
)

// Runner owns the wired service graph and the HTTP server.
type Runner struct {
	cfg      *config.Config
	logger   *logger.Logger
	metrics  *metrics.Collector
	server   *http.Server
	shutdown *ShutdownHandler
}

// NewRunner builds every client and service from cfg. Missing Solana credentials are not
// an error here: the on-chain strategy reports them on each /lp request instead.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if log == nil {
		return nil, errors.New("nil logger")
	}

	collector := metrics.NewCollector()
	zl := log.Logger
	opts := upstream.Options{
		Timeout: cfg.RequestTimeout(),
		Retries: cfg.Retries,
		Step:    cfg.RetryStep(),
	}

	meteoraHTTP := upstream.New("meteora", nil, opts, zl, collector)
	meteoraClient := meteora.NewClient(meteoraHTTP, cfg.MeteoraAPIURL, cfg.MeteoraPoolAPIURL, zl)

	hlHTTP := upstream.New("hyperliquid", nil, opts, zl, collector)
	hlClient := hyperliquid.NewClient(hlHTTP, cfg.HyperliquidURL, zl)

	health := api.HealthDeps{
		HeliusKeyPresent: cfg.HeliusAPIKey != "",
		RPCEndpoint:      cfg.RPCEndpointKind(),
		Hyperliquid:      hlClient,
	}

	var amounts position.AmountResolver
	switch cfg.AmountSource {
	case config.SourceIndexer:
		amounts = position.IndexerResolver{}
	default:
		var solClient *solbc.Client
		if endpoint := cfg.RPCEndpoint(); endpoint != "" {
			solClient = solbc.NewClient(endpoint, opts, zl, collector)
			health.Solana = solClient
		}
		reader, err := newDLMMReader(solClient, zl)
		if err != nil {
			zl.Warn("On-chain reader unavailable", zap.String("rpc", cfg.RPCEndpointKind()), zap.Error(err))
		}
		amounts = position.NewOnChainResolver(reader, err)
	}

	positions := position.NewService(meteoraClient, meteoraClient, amounts, position.Options{
		MemoTTL:  cfg.MemoTTL(),
		Recorder: collector,
	}, zl)
	perps := perp.NewService(hlClient, zl)

	handler := api.NewHandler(positions, perps, health)
	server := api.NewServer(cfg.Port, handler, collector.Handler(), log, collector)

	r := &Runner{
		cfg:      cfg,
		logger:   log,
		metrics:  collector,
		server:   server,
		shutdown: NewShutdownHandler(log.WithComponent("shutdown"), cfg.ShutdownTimeout()),
	}
	r.shutdown.Add("logger", func(context.Context) error { return log.Sync() })
	r.shutdown.Add("http-server", server.Shutdown)

	zl.Info("Service configured",
		zap.Int("port", cfg.Port),
		zap.String("amount_source", amounts.Name()),
		zap.String("rpc", cfg.RPCEndpointKind()),
		zap.Duration("memo_ttl", cfg.MemoTTL()))
	return r, nil
}

// newDLMMReader keeps a nil *solbc.Client from turning into a non-nil interface.
func newDLMMReader(client *solbc.Client, logger *zap.Logger) (*dlmm.Reader, error) {
	if client == nil {
		return dlmm.NewReader(nil, logger)
	}
	return dlmm.NewReader(client, logger)
}

// Handler exposes the routed handler.
func (r *Runner) Handler() http.Handler { return r.server.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.server.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("meteora-lp-reader listening", zap.String("addr", ln.Addr().String()))
		if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		r.logger.Info("Shutdown requested", zap.Error(context.Cause(ctx)))
	}

	return r.shutdown.Shutdown(context.Background())
}
