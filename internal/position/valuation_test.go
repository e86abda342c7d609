package position

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestValuePosition(t *testing.T) {
	// 10 SOL at 20 plus 200 USDC
	got := ValuePosition(f(10), f(200), f(20))
	require.NotNil(t, got)
	assert.Equal(t, 400.0, *got)

	got = ValuePosition(f(26.4), f(120.5), f(85.3))
	require.NotNil(t, got)
	assert.InDelta(t, 2372.42, *got, 1e-9)
}

func TestValuePositionMissingInputs(t *testing.T) {
	assert.Nil(t, ValuePosition(nil, f(200), f(20)))
	assert.Nil(t, ValuePosition(f(10), nil, f(20)))
	assert.Nil(t, ValuePosition(f(10), f(200), nil))
	assert.Nil(t, ValuePosition(f(10), f(200), f(math.NaN())))
	assert.Nil(t, ValuePosition(f(math.Inf(1)), f(200), f(20)))
}

func TestValuePositionZeroIsAValue(t *testing.T) {
	got := ValuePosition(f(0), f(0), f(85))
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestAssignSlots(t *testing.T) {
	const other = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	tests := []struct {
		name         string
		mintX, mintY string
		want         Slots
	}{
		{"sol/usdc", wsol, usdc, Slots{SOL: SideX, USDC: SideY, Assignment: SlotsByIdentity}},
		{"usdc/sol", usdc, wsol, Slots{SOL: SideY, USDC: SideX, Assignment: SlotsByIdentity}},
		{"sol/other", wsol, other, Slots{SOL: SideX, Assignment: SlotsByIdentity}},
		{"other/usdc", other, usdc, Slots{USDC: SideY, Assignment: SlotsByIdentity}},
		{"unknown mints", "", "", Slots{SOL: SideX, USDC: SideY, Assignment: SlotsPositional}},
		{"unrelated pair", other, other, Slots{Assignment: SlotsUnmatched}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignSlots(tt.mintX, tt.mintY))
		})
	}
}

func TestMachineRejectsSkippedStates(t *testing.T) {
	m := newMachine(nopLogger())
	m.advance(StateMetaResolved)
	assert.Panics(t, func() { m.advance(StateValued) })
}

func TestMachineFailureKeepsLastState(t *testing.T) {
	m := newMachine(nopLogger())
	m.advance(StateMetaResolved)
	err := m.fail(assert.AnError)

	var fe *FailedError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StateMetaResolved, fe.At)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "FAILED", StateFailed.String())
}
