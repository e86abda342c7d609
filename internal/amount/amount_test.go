package amount

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bnLike struct{ s string }

func (b bnLike) String() string { return b.s }

func TestCoerceIntegerAccepts(t *testing.T) {
	long := "123456789012345678901234567890"
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"digit string", "123456789012345678", "123456789012345678"},
		{"long digit string", long, long},
		{"padded", "  42 ", "42"},
		{"int", 7, "7"},
		{"uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"integer float", float64(1e6), "1000000"},
		{"json number", json.Number("900"), "900"},
		{"json number exponent", json.Number("1.5e9"), "1500000000"},
		{"json number trailing zero", json.Number("100.0"), "100"},
		{"json number large float spelling", json.Number("26400000000.0"), "26400000000"},
		{"big int", big.NewInt(55), "55"},
		{"stringer", bnLike{"31337"}, "31337"},
		{"decimal", decimal.RequireFromString("12"), "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceInteger(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCoerceIntegerRejects(t *testing.T) {
	var nilBig *big.Int
	tests := []struct {
		name string
		in   any
	}{
		{"fraction string", "12.5"},
		{"empty", ""},
		{"nil", nil},
		{"empty object", map[string]any{}},
		{"negative string", "-5"},
		{"hex", "0x10"},
		{"fractional float", 12.5},
		{"fractional json number", json.Number("1.5")},
		{"json number tiny exponent", json.Number("1e-3")},
		{"json number huge exponent", json.Number("1e100000")},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"nil big", nilBig},
		{"decimal stringer", bnLike{"1.5"}},
		{"bool", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceInteger(tt.in)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestToHumanAmount(t *testing.T) {
	got := ToHumanAmount(big.NewInt(123456789), IntPtr(6))
	require.NotNil(t, got)
	assert.Equal(t, 123.456789, *got)

	assert.Nil(t, ToHumanAmount(nil, IntPtr(6)))
	assert.Nil(t, ToHumanAmount(big.NewInt(1), nil))
	assert.Nil(t, ToHumanAmount(big.NewInt(1), IntPtr(-1)))

	zero := ToHumanAmount(big.NewInt(0), IntPtr(9))
	require.NotNil(t, zero)
	assert.Equal(t, 0.0, *zero)
}

func TestPickFirst(t *testing.T) {
	rec := map[string]any{"a": nil, "b": 5, "c": 9}
	assert.Equal(t, 5, PickFirst(rec, []string{"a", "b", "c"}))
	assert.Equal(t, 9, PickFirst(rec, []string{"c", "b"}))
	assert.Nil(t, PickFirst(rec, []string{"x", "a"}))
	assert.Nil(t, PickFirst(nil, []string{"a"}))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 85.3, *Float("85.30"))
	assert.Equal(t, 2.0, *Float(2))
	assert.Equal(t, -0.5, *Float(json.Number("-0.5")))
	assert.Nil(t, Float(""))
	assert.Nil(t, Float("abc"))
	assert.Nil(t, Float(nil))
	assert.Nil(t, Float(math.NaN()))
	assert.Nil(t, Float(map[string]any{}))
}

func TestFirstFloatSkipsUnparseable(t *testing.T) {
	rec := map[string]any{"current_price": "n/a", "price": nil, "spot_price": "85.3"}
	got := FirstFloat(rec, []string{"current_price", "price", "spot_price"})
	require.NotNil(t, got)
	assert.Equal(t, 85.3, *got)
}

func TestQuantity(t *testing.T) {
	q := NewQuantity("26400000000", ScaleForMint(MintWSOL))
	require.NotNil(t, q)
	assert.Equal(t, "26.4", q.String())
	assert.InDelta(t, 26.4, *q.Human(), 1e-12)

	assert.Nil(t, NewQuantity("1.5", IntPtr(6)))
	assert.Nil(t, NewQuantity("15", nil))

	var none *Quantity
	assert.Nil(t, none.Human())
}

func TestAssetRefResolvedScale(t *testing.T) {
	assert.Equal(t, 6, *AssetRef{ID: MintUSDC}.ResolvedScale())
	assert.Equal(t, 8, *AssetRef{ID: MintUSDC, Scale: IntPtr(8)}.ResolvedScale())
	assert.Nil(t, AssetRef{ID: "unknown"}.ResolvedScale())
}

func TestCoerceIntegerDecodedNumbersMatchFloatPath(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"a":1.5e9,"b":26400000000.0,"c":1500000000}`))
	dec.UseNumber()
	var rec map[string]any
	require.NoError(t, dec.Decode(&rec))

	for _, key := range []string{"a", "b", "c"} {
		got, ok := CoerceInteger(rec[key])
		require.True(t, ok, key)

		var plain map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"v":`+rec[key].(json.Number).String()+`}`), &plain))
		want, ok := CoerceInteger(plain["v"])
		require.True(t, ok, key)
		assert.Equal(t, want.String(), got.String(), key)
	}
}
