// internal/api/response.go
package api

import (
	"github.com/rovshanmuradov/lp-reader/internal/perp"
	"github.com/rovshanmuradov/lp-reader/internal/position"
)

const perpSources = "allMids + metaAndAssetCtxs + clearinghouseState"

type errorResponse struct {
	OK    bool           `json:"ok"`
	Error string         `json:"error"`
	Meta  map[string]any `json:"meta,omitempty"`
}

type indexResponse struct {
	OK        bool     `json:"ok"`
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
}

type hyperliquidHealth struct {
	OK    bool    `json:"ok"`
	Error *string `json:"error,omitempty"`
}

type healthResponse struct {
	OK               bool              `json:"ok"`
	HeliusKeyPresent bool              `json:"heliusKeyPresent"`
	RPCEndpoint      string            `json:"rpcEndpoint"`
	SolanaVersion    *string           `json:"solanaVersion,omitempty"`
	Hyperliquid      hyperliquidHealth `json:"hyperliquid"`
}

type feesResponse struct {
	SOLClaimed    *float64 `json:"sol_claimed"`
	USDCClaimed   *float64 `json:"usdc_claimed"`
	SOLUnclaimed  *float64 `json:"sol_unclaimed"`
	USDCUnclaimed *float64 `json:"usdc_unclaimed"`
}

type lpResponse struct {
	OK         bool     `json:"ok"`
	PositionID string   `json:"positionId"`
	Pool       string   `json:"pool"`
	Owner      *string  `json:"owner"`
	TokenXMint *string  `json:"tokenXMint"`
	TokenYMint *string  `json:"tokenYMint"`
	Spot       *float64 `json:"spot"`
	QSol       *float64 `json:"q_sol"`
	UUSDC      *float64 `json:"u_usdc"`
	TotalUSD   *float64 `json:"lp_total_usd"`
	InRange    *bool    `json:"in_range"`

	TotalFeeXClaimed      *float64 `json:"total_fee_x_claimed"`
	TotalFeeYClaimed      *float64 `json:"total_fee_y_claimed"`
	TotalFeeUSDClaimed    *float64 `json:"total_fee_usd_claimed"`
	TotalRewardXClaimed   *float64 `json:"total_reward_x_claimed"`
	TotalRewardYClaimed   *float64 `json:"total_reward_y_claimed"`
	TotalRewardUSDClaimed *float64 `json:"total_reward_usd_claimed"`
	FeeAPR24h             *float64 `json:"fee_apr_24h"`
	FeeAPY24h             *float64 `json:"fee_apy_24h"`
	DailyFeeYield         *float64 `json:"daily_fee_yield"`

	Fees           feesResponse   `json:"fees"`
	SlotAssignment string         `json:"slot_assignment"`
	Source         string         `json:"source"`
	Meta           map[string]any `json:"meta"`
}

func newLPResponse(s *position.Snapshot) lpResponse {
	m := s.Meta
	return lpResponse{
		OK:         true,
		PositionID: s.PositionID,
		Pool:       s.Pool,
		Owner:      s.Owner,
		TokenXMint: s.TokenXMint,
		TokenYMint: s.TokenYMint,
		Spot:       s.Spot,
		QSol:       s.QSol.Human(),
		UUSDC:      s.UUSDC.Human(),
		TotalUSD:   s.TotalUSD,
		InRange:    s.InRange,

		TotalFeeXClaimed:      m.ClaimedFeeXFloat(),
		TotalFeeYClaimed:      m.ClaimedFeeYFloat(),
		TotalFeeUSDClaimed:    m.FeeUSDClaimed,
		TotalRewardXClaimed:   m.RewardXClaimed,
		TotalRewardYClaimed:   m.RewardYClaimed,
		TotalRewardUSDClaimed: m.RewardUSDClaimed,
		FeeAPR24h:             m.FeeAPR24h,
		FeeAPY24h:             m.FeeAPY24h,
		DailyFeeYield:         m.DailyFeeYield,

		Fees: feesResponse{
			SOLClaimed:    s.SOLFeesClaimed.Human(),
			USDCClaimed:   s.USDCFeesClaimed.Human(),
			SOLUnclaimed:  s.SOLFeesUnclaimed.Human(),
			USDCUnclaimed: s.USDCFeesUnclaimed.Human(),
		},
		SlotAssignment: string(s.SlotAssignment),
		Source:         s.Source,
		Meta:           m.Raw,
	}
}

type perpMeta struct {
	Coin string `json:"hl_coin"`
}

type perpDebug struct {
	Source      string `json:"source"`
	PriceSource string `json:"price_source"`
}

type perpResponse struct {
	OK            bool      `json:"ok"`
	Price         *float64  `json:"hl_price"`
	FundingRate   *float64  `json:"funding_rate"`
	Size          float64   `json:"position_sz"`
	Side          perp.Side `json:"position_side"`
	EntryPx       *float64  `json:"entry_px"`
	PnlUSD        *float64  `json:"pnl_usd"`
	FundingAccUSD *float64  `json:"funding_acc_usd"`
	Funding8hUSD  *float64  `json:"funding_8h_usd"`
	Meta          perpMeta  `json:"meta"`
	Debug         perpDebug `json:"debug"`
}

func newPerpResponse(r *perp.Report) perpResponse {
	p := r.Position
	return perpResponse{
		OK:            true,
		Price:         r.Price.Value,
		FundingRate:   r.FundingRate,
		Size:          p.SignedSize,
		Side:          p.Side(),
		EntryPx:       p.EntryPrice,
		PnlUSD:        p.UnrealizedPnlUSD,
		FundingAccUSD: p.CumulativeFundingUSD,
		Funding8hUSD:  p.Funding8hUSD,
		Meta:          perpMeta{Coin: r.Coin},
		Debug:         perpDebug{Source: perpSources, PriceSource: string(r.Price.Source)},
	}
}
