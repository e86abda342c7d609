// internal/position/slots.go
package position

import "github.com/rovshanmuradov/lp-reader/internal/amount"

// SlotAssignment tells how X/Y were mapped onto the SOL and USDC slots.
type SlotAssignment string

const (
	// SlotsByIdentity: at least one side is a known mint and sits in its own slot.
	SlotsByIdentity SlotAssignment = "identity"
	// SlotsPositional: no mint was reported, X is taken as SOL and Y as USDC.
	SlotsPositional SlotAssignment = "positional"
	// SlotsUnmatched: mints are known but neither is SOL or USDC.
	SlotsUnmatched SlotAssignment = "unmatched"
)

// Side is the index of a venue side.
type Side int

const (
	SideNone Side = iota
	SideX
	SideY
)

// Slots maps the semantic slots to venue sides.
type Slots struct {
	SOL        Side
	USDC       Side
	Assignment SlotAssignment
}

// AssignSlots maps by asset identity first and falls back to venue order only when
// neither mint is reported at all.
func AssignSlots(mintX, mintY string) Slots {
	if mintX == "" && mintY == "" {
		return Slots{SOL: SideX, USDC: SideY, Assignment: SlotsPositional}
	}

	s := Slots{Assignment: SlotsByIdentity}
	switch {
	case mintX == amount.MintWSOL:
		s.SOL = SideX
	case mintY == amount.MintWSOL:
		s.SOL = SideY
	}
	switch {
	case mintY == amount.MintUSDC:
		s.USDC = SideY
	case mintX == amount.MintUSDC:
		s.USDC = SideX
	}
	if s.SOL == SideNone && s.USDC == SideNone {
		s.Assignment = SlotsUnmatched
	}
	return s
}

// Pick returns the X or Y value for side, nil for SideNone.
func Pick[T any](side Side, x, y *T) *T {
	switch side {
	case SideX:
		return x
	case SideY:
		return y
	default:
		return nil
	}
}
