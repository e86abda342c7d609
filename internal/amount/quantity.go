// internal/amount/quantity.go
package amount

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	MintWSOL = "So11111111111111111111111111111111111111112"
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// fallbackScales covers assets whose scale upstream sources sometimes omit.
var fallbackScales = map[string]int{
	MintWSOL: 9,
	MintUSDC: 6,
}

// ScaleForMint returns the canonical decimals of a well-known mint, or nil.
func ScaleForMint(mint string) *int {
	if s, ok := fallbackScales[mint]; ok {
		return &s
	}
	return nil
}

// Quantity is an exact amount of a fungible asset: Raw / 10^Scale.
type Quantity struct {
	Raw   *big.Int
	Scale int
}

// NewQuantity coerces raw and pairs it with scale. Nil when either is unusable.
func NewQuantity(raw any, scale *int) *Quantity {
	if scale == nil || *scale < 0 {
		return nil
	}
	i, ok := CoerceInteger(raw)
	if !ok {
		return nil
	}
	return &Quantity{Raw: i, Scale: *scale}
}

// Decimal returns the exact human value.
func (q *Quantity) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(q.Raw, -int32(q.Scale))
}

// Human returns the human value as float64, nil on a nil receiver.
func (q *Quantity) Human() *float64 {
	if q == nil {
		return nil
	}
	scale := q.Scale
	return ToHumanAmount(q.Raw, &scale)
}

// String renders the exact human value.
func (q *Quantity) String() string {
	if q == nil {
		return ""
	}
	return q.Decimal().String()
}

// AssetRef identifies an asset by mint or symbol; Scale may be unknown.
type AssetRef struct {
	ID    string
	Scale *int
}

// ResolvedScale falls back to the static table when the upstream omitted decimals.
func (a AssetRef) ResolvedScale() *int {
	if a.Scale != nil {
		return a.Scale
	}
	return ScaleForMint(a.ID)
}

// IntPtr is a small helper for optional scales.
func IntPtr(v int) *int { return &v }
