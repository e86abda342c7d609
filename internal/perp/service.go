// internal/perp/service.go
package perp

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/lp-reader/internal/amount"
	"github.com/rovshanmuradov/lp-reader/internal/apperr"
	"github.com/rovshanmuradov/lp-reader/internal/perp/hyperliquid"
	"github.com/rovshanmuradov/lp-reader/internal/schema"
)

// DefaultCoin is used when the caller names no coin.
const DefaultCoin = "SOL"

var walletRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Venue is the subset of the Hyperliquid info API the service reads.
type Venue interface {
	AllMids(ctx context.Context) (map[string]any, error)
	MetaAndAssetCtxs(ctx context.Context) (*hyperliquid.Market, error)
	ClearinghouseState(ctx context.Context, user string) (*hyperliquid.State, error)
}

// Service resolves perp positions and reference prices.
type Service struct {
	venue  Venue
	logger *zap.Logger
}

func NewService(venue Venue, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{venue: venue, logger: logger.Named("perp")}
}

// NormalizeCoin trims and upper-cases coin, defaulting to SOL.
func NormalizeCoin(coin string) string {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return DefaultCoin
	}
	return coin
}

// ValidateWallet rejects empty or non-address wallets.
func ValidateWallet(wallet string) error {
	if wallet == "" {
		return apperr.InvalidInput("perp.ValidateWallet", "missing wallet")
	}
	if !walletRe.MatchString(wallet) {
		return apperr.InvalidInput("perp.ValidateWallet", "wallet must be a 0x-prefixed 20-byte hex address")
	}
	return nil
}

// ResolvePosition returns the wallet's position in coin; a wallet without one is flat.
func (s *Service) ResolvePosition(ctx context.Context, wallet, coin string) (Snapshot, error) {
	wallet = strings.TrimSpace(wallet)
	if err := ValidateWallet(wallet); err != nil {
		return Snapshot{}, err
	}
	coin = NormalizeCoin(coin)

	state, err := s.venue.ClearinghouseState(ctx, wallet)
	if err != nil {
		return Snapshot{}, apperr.Upstream("hyperliquid.clearinghouseState", err)
	}
	return SnapshotFromState(wallet, coin, state), nil
}

// SnapshotFromState extracts coin's position from state.
func SnapshotFromState(wallet, coin string, state *hyperliquid.State) Snapshot {
	snap := Snapshot{Wallet: wallet, Coin: coin}
	pos := state.Position(coin)
	if pos == nil {
		return snap
	}

	h := schema.HyperliquidV1
	if size := amount.FirstFloat(pos, h.Size); size != nil {
		snap.SignedSize = *size
	}
	snap.EntryPrice = amount.FirstFloat(pos, h.EntryPx)
	snap.UnrealizedPnlUSD = amount.FirstFloat(pos, h.PnL)
	snap.CumulativeFundingUSD = cumulativeFunding(pos)
	snap.Funding8hUSD = amount.FirstFloat(pos, h.Funding8h)
	return snap
}

// cumulativeFunding accepts a plain number or the {allTime, sinceOpen, sinceChange} object.
func cumulativeFunding(pos map[string]any) *float64 {
	h := schema.HyperliquidV1
	v := amount.PickFirst(pos, h.CumFunding)
	if nested, ok := v.(map[string]any); ok {
		return amount.FirstFloat(nested, h.CumFundingSinceOpen)
	}
	return amount.Float(v)
}

// ResolvePrice looks coin up in allMids, then in the market contexts at the universe index.
func (s *Service) ResolvePrice(ctx context.Context, coin string) (Price, error) {
	coin = NormalizeCoin(coin)

	mids, err := s.venue.AllMids(ctx)
	if err != nil {
		return Price{}, apperr.Upstream("hyperliquid.allMids", err)
	}
	if p := priceFromMids(mids, coin); p.Value != nil {
		return p, nil
	}

	market, err := s.venue.MetaAndAssetCtxs(ctx)
	if err != nil {
		return Price{}, apperr.Upstream("hyperliquid.metaAndAssetCtxs", err)
	}
	return PriceFrom(mids, market, coin), nil
}

// PriceFrom applies the two-tier lookup to already fetched payloads.
func PriceFrom(mids map[string]any, market *hyperliquid.Market, coin string) Price {
	if p := priceFromMids(mids, coin); p.Value != nil {
		return p
	}

	ctx := market.Context(coin)
	if mid := amount.FirstFloat(ctx, schema.HyperliquidV1.MidPx); mid != nil {
		return Price{Value: mid, Source: PriceFromCtxMid}
	}
	if mark := amount.FirstFloat(ctx, schema.HyperliquidV1.MarkPx); mark != nil {
		return Price{Value: mark, Source: PriceFromCtxMark}
	}
	return Price{Source: PriceUnavailable}
}

func priceFromMids(mids map[string]any, coin string) Price {
	if v := amount.Float(mids[coin]); v != nil {
		return Price{Value: v, Source: PriceFromAllMids}
	}
	for k, raw := range mids {
		if strings.EqualFold(k, coin) {
			if v := amount.Float(raw); v != nil {
				return Price{Value: v, Source: PriceFromAllMids}
			}
		}
	}
	return Price{Source: PriceUnavailable}
}

// FundingRate returns the current funding rate of coin from the market contexts.
func FundingRate(market *hyperliquid.Market, coin string) *float64 {
	return amount.FirstFloat(market.Context(coin), schema.HyperliquidV1.Funding)
}

// Report fans out the three info calls and assembles the /hl view.
// Market contexts are optional: their failure only blanks funding and the price fallback.
func (s *Service) Report(ctx context.Context, wallet, coin string) (*Report, error) {
	wallet = strings.TrimSpace(wallet)
	if err := ValidateWallet(wallet); err != nil {
		return nil, err
	}
	coin = NormalizeCoin(coin)

	var (
		mids   map[string]any
		market *hyperliquid.Market
		state  *hyperliquid.State
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mids, err = s.venue.AllMids(gctx)
		return apperr.Upstream("hyperliquid.allMids", err)
	})
	g.Go(func() error {
		var err error
		market, err = s.venue.MetaAndAssetCtxs(gctx)
		if err != nil {
			s.logger.Warn("Market contexts unavailable", zap.String("coin", coin), zap.Error(err))
			market = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		state, err = s.venue.ClearinghouseState(gctx, wallet)
		return apperr.Upstream("hyperliquid.clearinghouseState", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Coin:        coin,
		Price:       PriceFrom(mids, market, coin),
		FundingRate: FundingRate(market, coin),
		Position:    SnapshotFromState(wallet, coin, state),
	}

	s.logger.Debug("Perp report resolved",
		zap.String("wallet", wallet),
		zap.String("coin", coin),
		zap.String("price_source", string(report.Price.Source)),
		zap.Float64("size", report.Position.SignedSize))
	return report, nil
}
