// internal/dex/meteora/client.go
package meteora

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/amount"
	"github.com/rovshanmuradov/lp-reader/internal/schema"
	"github.com/rovshanmuradov/lp-reader/internal/upstream"
)

const (
	DefaultPositionAPIURL = "https://dlmm-api.meteora.ag"
	DefaultPoolAPIURL     = "https://dlmm.datapi.meteora.ag"
)

// Client reads position metadata and pool state from the Meteora indexers.
type Client struct {
	http           *upstream.Client
	positionAPIURL string
	poolAPIURL     string
	logger         *zap.Logger
}

// NewClient creates a client; empty base URLs fall back to the public endpoints.
func NewClient(httpClient *upstream.Client, positionAPIURL, poolAPIURL string, logger *zap.Logger) *Client {
	if positionAPIURL == "" {
		positionAPIURL = DefaultPositionAPIURL
	}
	if poolAPIURL == "" {
		poolAPIURL = DefaultPoolAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:           httpClient,
		positionAPIURL: strings.TrimRight(positionAPIURL, "/"),
		poolAPIURL:     strings.TrimRight(poolAPIURL, "/"),
		logger:         logger.Named("meteora"),
	}
}

// PositionMeta returns the raw metadata record of a position. A non-object body yields an empty record.
func (c *Client) PositionMeta(ctx context.Context, positionID string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/position/%s", c.positionAPIURL, url.PathEscape(positionID))
	return c.getRecord(ctx, endpoint)
}

// Pool returns the raw pool record.
func (c *Client) Pool(ctx context.Context, poolAddress string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/pools/%s", c.poolAPIURL, url.PathEscape(poolAddress))
	return c.getRecord(ctx, endpoint)
}

// PoolPrice returns the first finite price alias of the pool record, nil when none parses.
func (c *Client) PoolPrice(ctx context.Context, poolAddress string) (*float64, error) {
	rec, err := c.Pool(ctx, poolAddress)
	if err != nil {
		return nil, err
	}
	price := amount.FirstFloat(rec, schema.MeteoraPoolV1.Price)
	if price == nil {
		c.logger.Debug("Pool record has no usable price",
			zap.String("pool", poolAddress),
			zap.Strings("aliases", schema.MeteoraPoolV1.Price.Keys()))
	}
	return price, nil
}

func (c *Client) getRecord(ctx context.Context, endpoint string) (map[string]any, error) {
	var body any
	if err := c.http.GetJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	rec, ok := body.(map[string]any)
	if !ok {
		c.logger.Debug("Unexpected record shape", zap.String("type", fmt.Sprintf("%T", body)))
		return map[string]any{}, nil
	}
	return rec, nil
}
