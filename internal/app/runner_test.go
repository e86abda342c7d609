package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/lp-reader/internal/amount"
	"github.com/rovshanmuradov/lp-reader/internal/config"
	"github.com/rovshanmuradov/lp-reader/internal/utils/logger"
)

const testPositionID = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func fakeMeteora(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /position/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != testPositionID {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pair_address":   "BGm1tav58oGcsQJehL9WXBFXF7D27vZsKefj4xJKD5Y",
			"owner":          "owner1",
			"mint_x":         amount.MintWSOL,
			"mint_y":         amount.MintUSDC,
			"total_x_amount": "26400000000",
			"total_y_amount": "120500000",
		})
	})
	mux.HandleFunc("GET /pools/{address}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current_price": 85.3}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fakeHyperliquid(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Type {
		case "allMids":
			_, _ = w.Write([]byte(`{"SOL":"85.3","BTC":"64000"}`))
		case "metaAndAssetCtxs":
			_, _ = w.Write([]byte(`[{"universe":[{"name":"BTC"},{"name":"SOL"}]},[{"funding":"0.00001"},{"funding":"0.0000125","midPx":"85.2"}]]`))
		case "clearinghouseState":
			_, _ = w.Write([]byte(`{"assetPositions":[{"position":{"coin":"SOL","szi":"-2.5","entryPx":"90","unrealizedPnl":"11.75"}}]}`))
		default:
			http.Error(w, "unknown type", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	cfg.AmountSource = source
	cfg.HeliusAPIKey = ""
	cfg.RPCURL = ""
	cfg.Retries = 0
	cfg.MeteoraAPIURL = fakeMeteora(t).URL
	cfg.MeteoraPoolAPIURL = cfg.MeteoraAPIURL
	cfg.HyperliquidURL = fakeHyperliquid(t).URL
	cfg.Port = 0
	return cfg
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.DefaultConfig())
	require.NoError(t, err)
	return log
}

func get(t *testing.T, h http.Handler, target string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestRunnerIndexerSource(t *testing.T) {
	r, err := NewRunner(testConfig(t, config.SourceIndexer), testLogger(t))
	require.NoError(t, err)

	status, body := get(t, r.Handler(), "/lp/"+testPositionID)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "indexer", body["source"])
	assert.Equal(t, 26.4, body["q_sol"])
	assert.Equal(t, 120.5, body["u_usdc"])
	assert.InDelta(t, 2372.42, body["lp_total_usd"], 1e-9)

	status, body = get(t, r.Handler(), "/lp/"+testPositionID)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 2372.42, body["lp_total_usd"], 1e-9)
}

func TestRunnerOnChainWithoutCredential(t *testing.T) {
	r, err := NewRunner(testConfig(t, config.SourceOnChain), testLogger(t))
	require.NoError(t, err)

	status, body := get(t, r.Handler(), "/lp/"+testPositionID)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing HELIUS_API_KEY env", body["error"])

	status, body = get(t, r.Handler(), "/health")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["heliusKeyPresent"])
	assert.Equal(t, "missing", body["rpcEndpoint"])
	assert.NotContains(t, body, "solanaVersion")
	assert.Equal(t, map[string]any{"ok": true}, body["hyperliquid"])
}

func TestRunnerPerp(t *testing.T) {
	r, err := NewRunner(testConfig(t, config.SourceIndexer), testLogger(t))
	require.NoError(t, err)

	status, body := get(t, r.Handler(), "/hl/0x00000000000000000000000000000000000000aa/sol")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 85.3, body["hl_price"])
	assert.Equal(t, 0.0000125, body["funding_rate"])
	assert.Equal(t, -2.5, body["position_sz"])
	assert.Equal(t, "short", body["position_side"])
	assert.Equal(t, 11.75, body["pnl_usd"])
}

func TestRunnerServeAndShutdown(t *testing.T) {
	r, err := NewRunner(testConfig(t, config.SourceIndexer), testLogger(t))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestNewRunnerRejectsNil(t *testing.T) {
	_, err := NewRunner(nil, testLogger(t))
	assert.Error(t, err)
	_, err = NewRunner(&config.Config{}, nil)
	assert.Error(t, err)
}
