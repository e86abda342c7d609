// internal/schema/aliases.go

// Package schema lists, per upstream API version, the ordered field names under which each
// logical value has been observed. Lookups always scan in this order and stop at the first hit.
package schema

// Alias is the ordered list of wire keys for one logical field.
type Alias []string

// Keys returns the aliases as a plain slice.
func (a Alias) Keys() []string { return a }

// MeteoraPositionV1 describes GET dlmm-api.meteora.ag/position/{id}.
var MeteoraPositionV1 = struct {
	Version string
	Pool    Alias
	Owner   Alias
	MintX   Alias
	MintY   Alias
	AmountX Alias
	AmountY Alias

	FeeXUnclaimed Alias
	FeeYUnclaimed Alias

	FeeXClaimed      Alias
	FeeYClaimed      Alias
	FeeUSDClaimed    Alias
	RewardXClaimed   Alias
	RewardYClaimed   Alias
	RewardUSDClaimed Alias
	FeeAPR24h        Alias
	FeeAPY24h        Alias
	DailyFeeYield    Alias
}{
	Version: "meteora-dlmm-api/v1",
	Pool:    Alias{"pair_address", "pairAddress", "pool", "lb_pair"},
	Owner:   Alias{"owner"},
	MintX:   Alias{"mint_x", "token_x_mint", "tokenXMint"},
	MintY:   Alias{"mint_y", "token_y_mint", "tokenYMint"},
	AmountX: Alias{"total_x_amount", "totalXAmount", "amount_x", "amountX"},
	AmountY: Alias{"total_y_amount", "totalYAmount", "amount_y", "amountY"},

	FeeXUnclaimed: Alias{"fee_x_unclaimed", "unclaimed_fee_x", "feeX"},
	FeeYUnclaimed: Alias{"fee_y_unclaimed", "unclaimed_fee_y", "feeY"},

	FeeXClaimed:      Alias{"total_fee_x_claimed"},
	FeeYClaimed:      Alias{"total_fee_y_claimed"},
	FeeUSDClaimed:    Alias{"total_fee_usd_claimed"},
	RewardXClaimed:   Alias{"total_reward_x_claimed"},
	RewardYClaimed:   Alias{"total_reward_y_claimed"},
	RewardUSDClaimed: Alias{"total_reward_usd_claimed"},
	FeeAPR24h:        Alias{"fee_apr_24h"},
	FeeAPY24h:        Alias{"fee_apy_24h"},
	DailyFeeYield:    Alias{"daily_fee_yield"},
}

// MeteoraPoolV1 describes GET dlmm.datapi.meteora.ag/pools/{address}.
var MeteoraPoolV1 = struct {
	Version string
	Price   Alias
}{
	Version: "meteora-datapi/v1",
	Price:   Alias{"current_price", "price", "spot_price"},
}

// HyperliquidV1 describes the /info payloads: clearinghouseState positions and perp asset contexts.
var HyperliquidV1 = struct {
	Version    string
	Size       Alias
	EntryPx    Alias
	PnL        Alias
	CumFunding Alias
	Funding8h  Alias

	// nested cumFunding object
	CumFundingSinceOpen Alias

	MidPx   Alias
	MarkPx  Alias
	Funding Alias
}{
	Version:    "hyperliquid-info/v1",
	Size:       Alias{"szi"},
	EntryPx:    Alias{"entryPx"},
	PnL:        Alias{"unrealizedPnl", "pnl", "uPnL"},
	CumFunding: Alias{"cumFunding", "cumulativeFunding", "funding"},
	Funding8h:  Alias{"fundingSinceOpen8h", "funding8h"},

	CumFundingSinceOpen: Alias{"sinceOpen", "allTime"},

	MidPx:   Alias{"midPx"},
	MarkPx:  Alias{"markPx"},
	Funding: Alias{"funding", "fundingRate", "funding_rate"},
}
