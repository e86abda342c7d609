// internal/position/valuation.go
package position

import "math"

// ValuePosition returns qSol*spot + uUSDC, or nil unless all three are finite.
// A missing input never degrades to zero.
func ValuePosition(qSol, uUSDC, spot *float64) *float64 {
	if !finite(qSol) || !finite(uUSDC) || !finite(spot) {
		return nil
	}
	q, u, p := *qSol, *uUSDC, *spot
	total := q*p + u
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return nil
	}
	return &total
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
