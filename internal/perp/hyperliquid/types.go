// internal/perp/hyperliquid/types.go
package hyperliquid

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Market is the decoded metaAndAssetCtxs pair: universe[i] describes contexts[i].
type Market struct {
	Universe []string
	Contexts []map[string]any
}

// ParseMarket decodes [meta{universe:[{name}]}, [ctx...]]. Malformed entries keep their slot.
func ParseMarket(v any) (*Market, error) {
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return nil, fmt.Errorf("metaAndAssetCtxs: expected [meta, ctxs], got %T", v)
	}

	m := &Market{}
	if meta, ok := pair[0].(map[string]any); ok {
		if universe, ok := meta["universe"].([]any); ok {
			m.Universe = lo.Map(universe, func(item any, _ int) string {
				asset, _ := item.(map[string]any)
				name, _ := asset["name"].(string)
				return name
			})
		}
	}
	if ctxs, ok := pair[1].([]any); ok {
		m.Contexts = lo.Map(ctxs, func(item any, _ int) map[string]any {
			ctx, _ := item.(map[string]any)
			return ctx
		})
	}
	return m, nil
}

// Index returns the universe position of coin (case-insensitive), or -1.
func (m *Market) Index(coin string) int {
	if m == nil {
		return -1
	}
	_, idx, ok := lo.FindIndexOf(m.Universe, func(name string) bool {
		return strings.EqualFold(name, coin)
	})
	if !ok {
		return -1
	}
	return idx
}

// Context returns the asset context of coin: index-aligned first, then by a "coin" field.
func (m *Market) Context(coin string) map[string]any {
	if m == nil {
		return nil
	}
	if idx := m.Index(coin); idx >= 0 && idx < len(m.Contexts) && m.Contexts[idx] != nil {
		return m.Contexts[idx]
	}
	ctx, ok := lo.Find(m.Contexts, func(c map[string]any) bool {
		name, _ := c["coin"].(string)
		return name != "" && strings.EqualFold(name, coin)
	})
	if !ok {
		return nil
	}
	return ctx
}

// State is the decoded clearinghouseState.
type State struct {
	Positions []map[string]any
	Raw       map[string]any
}

// ParseState extracts assetPositions[].position. Missing or odd shapes yield no positions.
func ParseState(v any) *State {
	raw, _ := v.(map[string]any)
	s := &State{Raw: raw}
	aps, _ := raw["assetPositions"].([]any)
	for _, item := range aps {
		entry, _ := item.(map[string]any)
		if pos, ok := entry["position"].(map[string]any); ok {
			s.Positions = append(s.Positions, pos)
		}
	}
	return s
}

// Position returns the position of coin (case-insensitive), or nil.
func (s *State) Position(coin string) map[string]any {
	if s == nil {
		return nil
	}
	pos, ok := lo.Find(s.Positions, func(p map[string]any) bool {
		name, _ := p["coin"].(string)
		return strings.EqualFold(strings.TrimSpace(name), coin)
	})
	if !ok {
		return nil
	}
	return pos
}
