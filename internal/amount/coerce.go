// internal/amount/coerce.go
package amount

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var digitsRe = regexp.MustCompile(`^\d+$`)

// CoerceInteger converts a loosely typed wire value into an exact integer.
//
// Digit strings, json.Number, big integers and stringifiable big-number objects keep full
// precision. Floats are accepted only when finite and integer-valued; beyond 2^53 that path is
// approximate by nature of the input.
func CoerceInteger(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case *big.Int:
		if t == nil {
			return nil, false
		}
		return new(big.Int).Set(t), true
	case big.Int:
		return new(big.Int).Set(&t), true
	case int:
		return big.NewInt(int64(t)), true
	case int8:
		return big.NewInt(int64(t)), true
	case int16:
		return big.NewInt(int64(t)), true
	case int32:
		return big.NewInt(int64(t)), true
	case int64:
		return big.NewInt(t), true
	case uint:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(t)), true
	case uint64:
		return new(big.Int).SetUint64(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case json.Number:
		return numberToInt(t)
	case string:
		return digitsToInt(t)
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			return nil, false
		}
		return digitsToInt(string(b))
	case fmt.Stringer:
		return digitsToInt(t.String())
	default:
		return nil, false
	}
}

func floatToInt(f float64) (*big.Int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return nil, false
	}
	i, _ := big.NewFloat(f).Int(nil)
	return i, true
}

// maxNumberExponent bounds the decimal exponent of a JSON number; float64 overflows well before it.
const maxNumberExponent = 400

// numberToInt takes the exact digit path first, then accepts float spellings
// ("1.5e9", "100.0") whose value is an exact integer, like the float64 path does.
func numberToInt(n json.Number) (*big.Int, bool) {
	if i, ok := digitsToInt(string(n)); ok {
		return i, true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(n)))
	if err != nil || d.Exponent() > maxNumberExponent || !d.IsInteger() {
		return nil, false
	}
	return d.BigInt(), true
}

func digitsToInt(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if !digitsRe.MatchString(s) {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}

// ToHumanAmount returns raw / 10^scale, or nil when either input is missing.
func ToHumanAmount(raw *big.Int, scale *int) *float64 {
	if raw == nil || scale == nil || *scale < 0 || *scale > math.MaxInt32 {
		return nil
	}
	f := decimal.NewFromBigInt(raw, -int32(*scale)).InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Float is the approximate, display-only path: any finite number or numeric string.
func Float(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case uint32:
		f = float64(t)
	case *big.Int:
		if t == nil {
			return nil
		}
		f, _ = new(big.Float).SetInt(t).Float64()
	case json.Number:
		return parseFloat(string(t))
	case string:
		return parseFloat(t)
	case fmt.Stringer:
		return parseFloat(t.String())
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// PickFirst returns the value of the first key, in order, that is present and non-nil.
func PickFirst(record map[string]any, keys []string) any {
	if record == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := record[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// FirstFloat returns the first alias whose value parses as a finite number.
func FirstFloat(record map[string]any, keys []string) *float64 {
	if record == nil {
		return nil
	}
	for _, k := range keys {
		if f := Float(record[k]); f != nil {
			return f
		}
	}
	return nil
}

// FirstString returns the first alias holding a non-empty string.
func FirstString(record map[string]any, keys []string) *string {
	if record == nil {
		return nil
	}
	for _, k := range keys {
		if s, ok := record[k].(string); ok && strings.TrimSpace(s) != "" {
			s = strings.TrimSpace(s)
			return &s
		}
	}
	return nil
}
