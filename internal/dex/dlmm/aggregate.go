// internal/dex/dlmm/aggregate.go
package dlmm

import "math/big"

// scaleOffset is the Q64 fixed-point shift used for shares and fee growth.
const scaleOffset = 64

// Totals is the position's token amounts summed over its bins.
type Totals struct {
	AmountX *big.Int
	AmountY *big.Int
	// FeeX and FeeY are unclaimed swap fees.
	FeeX *big.Int
	FeeY *big.Int
	// BinsMissing counts bins with shares whose bin array could not be read.
	BinsMissing int
}

// Aggregate sums share-weighted bin amounts and pending fees for pos.
// arrays is keyed by bin array index; amounts are floored per bin.
func Aggregate(pos *PositionV2, arrays map[int64]*BinArray) Totals {
	t := Totals{
		AmountX: new(big.Int),
		AmountY: new(big.Int),
		FeeX:    new(big.Int),
		FeeY:    new(big.Int),
	}

	for i := 0; i <= int(pos.UpperBinID-pos.LowerBinID); i++ {
		binID := pos.LowerBinID + int32(i)
		share := pos.LiquidityShares[i]
		fee := pos.FeeInfos[i]

		t.FeeX.Add(t.FeeX, new(big.Int).SetUint64(fee.FeeXPending))
		t.FeeY.Add(t.FeeY, new(big.Int).SetUint64(fee.FeeYPending))

		if share == nil || share.Sign() == 0 {
			continue
		}

		idx := BinArrayIndex(binID)
		arr, ok := arrays[idx]
		if !ok || arr == nil {
			t.BinsMissing++
			continue
		}
		b := arr.Bins[int64(binID)-idx*MaxBinsPerArray]

		if b.LiquiditySupply != nil && b.LiquiditySupply.Sign() > 0 {
			t.AmountX.Add(t.AmountX, shareOf(share, b.AmountX, b.LiquiditySupply))
			t.AmountY.Add(t.AmountY, shareOf(share, b.AmountY, b.LiquiditySupply))
		}

		t.FeeX.Add(t.FeeX, accruedFee(share, b.FeeXPerTokenStored, fee.FeeXPerTokenComplete))
		t.FeeY.Add(t.FeeY, accruedFee(share, b.FeeYPerTokenStored, fee.FeeYPerTokenComplete))
	}
	return t
}

// shareOf returns floor(share * amount / supply).
func shareOf(share *big.Int, amount uint64, supply *big.Int) *big.Int {
	out := new(big.Int).Mul(share, new(big.Int).SetUint64(amount))
	return out.Quo(out, supply)
}

// accruedFee returns ((share >> 64) * (stored - complete)) >> 64, zero when stored lags.
func accruedFee(share, stored, complete *big.Int) *big.Int {
	if stored == nil || complete == nil {
		return new(big.Int)
	}
	delta := new(big.Int).Sub(stored, complete)
	if delta.Sign() <= 0 {
		return new(big.Int)
	}
	out := new(big.Int).Rsh(share, scaleOffset)
	out.Mul(out, delta)
	return out.Rsh(out, scaleOffset)
}
