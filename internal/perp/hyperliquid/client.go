// internal/perp/hyperliquid/client.go
package hyperliquid

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/upstream"
)

const DefaultInfoURL = "https://api.hyperliquid.xyz/info"

// Client calls the public /info endpoint.
type Client struct {
	http    *upstream.Client
	infoURL string
	logger  *zap.Logger
}

// NewClient creates a client; an empty infoURL uses the mainnet endpoint.
func NewClient(httpClient *upstream.Client, infoURL string, logger *zap.Logger) *Client {
	if infoURL == "" {
		infoURL = DefaultInfoURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    httpClient,
		infoURL: infoURL,
		logger:  logger.Named("hyperliquid"),
	}
}

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

// AllMids returns coin -> mid price as sent by the venue (usually decimal strings).
func (c *Client) AllMids(ctx context.Context) (map[string]any, error) {
	var out any
	if err := c.http.PostJSON(ctx, c.infoURL, infoRequest{Type: "allMids"}, &out); err != nil {
		return nil, err
	}
	mids, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("allMids: unexpected response type %T", out)
	}
	return mids, nil
}

// MetaAndAssetCtxs returns the perp universe with its index-aligned asset contexts.
func (c *Client) MetaAndAssetCtxs(ctx context.Context) (*Market, error) {
	var out any
	if err := c.http.PostJSON(ctx, c.infoURL, infoRequest{Type: "metaAndAssetCtxs"}, &out); err != nil {
		return nil, err
	}
	return ParseMarket(out)
}

// ClearinghouseState returns the raw margin summary and positions of user.
func (c *Client) ClearinghouseState(ctx context.Context, user string) (*State, error) {
	var out any
	if err := c.http.PostJSON(ctx, c.infoURL, infoRequest{Type: "clearinghouseState", User: user}, &out); err != nil {
		return nil, err
	}
	return ParseState(out), nil
}
