// internal/perp/types.go
package perp

// Side is the direction of a perp position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
	SideFlat  Side = "flat"
)

// Snapshot is one wallet's position in one coin.
// SignedSize keeps the venue sign: negative is short, zero is flat.
type Snapshot struct {
	Wallet               string
	Coin                 string
	SignedSize           float64
	EntryPrice           *float64
	UnrealizedPnlUSD     *float64
	CumulativeFundingUSD *float64
	Funding8hUSD         *float64
}

// Side derives the direction from SignedSize.
func (s Snapshot) Side() Side {
	switch {
	case s.SignedSize > 0:
		return SideLong
	case s.SignedSize < 0:
		return SideShort
	default:
		return SideFlat
	}
}

// PriceSource names the lookup tier that produced a price.
type PriceSource string

const (
	PriceFromAllMids PriceSource = "allMids"
	PriceFromCtxMid  PriceSource = "metaAndAssetCtxs.midPx"
	PriceFromCtxMark PriceSource = "metaAndAssetCtxs.markPx"
	PriceUnavailable PriceSource = "none"
)

// Price is a reference price and where it came from.
type Price struct {
	Value  *float64
	Source PriceSource
}

// Report is everything /hl returns for one wallet and coin.
type Report struct {
	Coin        string
	Price       Price
	FundingRate *float64
	Position    Snapshot
}
