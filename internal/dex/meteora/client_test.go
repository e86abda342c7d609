package meteora

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/upstream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := upstream.Options{Timeout: time.Second, Retries: 0, Step: time.Millisecond}
	httpc := upstream.New("meteora", nil, opts, zap.NewNop(), nil)
	return NewClient(httpc, srv.URL, srv.URL+"/", zap.NewNop())
}

func TestPositionMeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/position/Pos111", r.URL.Path)
		_, _ = w.Write([]byte(`{"address":"Pos111","pair_address":"Pool111","owner":"Owner111",
			"total_fee_x_claimed":1500000000,"total_fee_usd_claimed":"12.75","fee_apr_24h":null}`))
	})

	rec, err := c.PositionMeta(context.Background(), "Pos111")
	require.NoError(t, err)

	meta := ParsePositionMeta(rec)
	require.NotNil(t, meta.Pool)
	assert.Equal(t, "Pool111", *meta.Pool)
	assert.Equal(t, "Owner111", *meta.Owner)
	assert.Equal(t, 1.5e9, *meta.ClaimedFeeXFloat())
	assert.Equal(t, 12.75, *meta.FeeUSDClaimed)
	assert.Nil(t, meta.FeeAPR24h)
	assert.Nil(t, meta.ClaimedFeeYFloat())
	assert.Nil(t, meta.MintX)
}

func TestPositionMetaNonObjectBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	rec, err := c.PositionMeta(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, rec)
	assert.Nil(t, ParsePositionMeta(rec).Pool)
}

func TestPoolPriceAliases(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *float64
	}{
		{"current_price wins", `{"current_price":85.3,"price":1,"spot_price":2}`, ptr(85.3)},
		{"price fallback", `{"price":"84.9"}`, ptr(84.9)},
		{"spot fallback", `{"current_price":null,"spot_price":83}`, ptr(83)},
		{"absent", `{"name":"SOL-USDC"}`, nil},
		{"unparseable", `{"current_price":"n/a"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/pools/Pool111", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})
			got, err := c.PoolPrice(context.Background(), "Pool111")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoolPriceTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.PoolPrice(context.Background(), "Pool111")
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode(err))
}

func ptr(f float64) *float64 { return &f }
