// internal/dex/meteora/meta.go
package meteora

import (
	"github.com/rovshanmuradov/lp-reader/internal/amount"
	"github.com/rovshanmuradov/lp-reader/internal/schema"
)

// PositionMeta is the typed view of a position metadata record.
type PositionMeta struct {
	Pool  *string
	Owner *string
	MintX *string
	MintY *string

	// raw integer amounts, nil when the indexer omits them
	AmountX any
	AmountY any

	FeeXClaimed      any
	FeeYClaimed      any
	FeeXUnclaimed    any
	FeeYUnclaimed    any
	FeeUSDClaimed    *float64
	RewardXClaimed   *float64
	RewardYClaimed   *float64
	RewardUSDClaimed *float64
	FeeAPR24h        *float64
	FeeAPY24h        *float64
	DailyFeeYield    *float64

	Raw map[string]any
}

// ParsePositionMeta resolves every alias of rec. Missing fields stay nil.
func ParsePositionMeta(rec map[string]any) PositionMeta {
	s := schema.MeteoraPositionV1
	return PositionMeta{
		Pool:  amount.FirstString(rec, s.Pool),
		Owner: amount.FirstString(rec, s.Owner),
		MintX: amount.FirstString(rec, s.MintX),
		MintY: amount.FirstString(rec, s.MintY),

		AmountX: amount.PickFirst(rec, s.AmountX),
		AmountY: amount.PickFirst(rec, s.AmountY),

		FeeXClaimed:      amount.PickFirst(rec, s.FeeXClaimed),
		FeeYClaimed:      amount.PickFirst(rec, s.FeeYClaimed),
		FeeXUnclaimed:    amount.PickFirst(rec, s.FeeXUnclaimed),
		FeeYUnclaimed:    amount.PickFirst(rec, s.FeeYUnclaimed),
		FeeUSDClaimed:    amount.FirstFloat(rec, s.FeeUSDClaimed),
		RewardXClaimed:   amount.FirstFloat(rec, s.RewardXClaimed),
		RewardYClaimed:   amount.FirstFloat(rec, s.RewardYClaimed),
		RewardUSDClaimed: amount.FirstFloat(rec, s.RewardUSDClaimed),
		FeeAPR24h:        amount.FirstFloat(rec, s.FeeAPR24h),
		FeeAPY24h:        amount.FirstFloat(rec, s.FeeAPY24h),
		DailyFeeYield:    amount.FirstFloat(rec, s.DailyFeeYield),

		Raw: rec,
	}
}

// ClaimedFeeXFloat is the float passthrough of total_fee_x_claimed.
func (m PositionMeta) ClaimedFeeXFloat() *float64 { return amount.Float(m.FeeXClaimed) }

// ClaimedFeeYFloat is the float passthrough of total_fee_y_claimed.
func (m PositionMeta) ClaimedFeeYFloat() *float64 { return amount.Float(m.FeeYClaimed) }
