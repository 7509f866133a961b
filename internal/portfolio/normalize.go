// Package portfolio turns the bot's raw portfolio row into the dashboard's
// display model. Two position schemas are in the wild: the legacy one keys
// positions by "SYMBOL_buy"/"SYMBOL_sell" with a qty field, the current one
// keys by plain symbol and carries explicit side and notional_usdt fields.
// Both normalize to the same PositionView.
package portfolio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/camuig/bot-dashboard/internal/coerce"
)

// PositionView is one open position in uniform display form.
type PositionView struct {
	Symbol     string
	Side       string // "long" or "short"
	Collateral float64
	Leverage   float64
	Notional   float64
	Entry      float64
	PnL        float64
	ROIPct     float64
}

// RawPositions is the decoded positions column: position key to field map.
type RawPositions map[string]map[string]any

// ParsePositions decodes the positions column of the portfolio row. Postgres
// returns jsonb as bytes, SQLite as text, and a pre-decoded map passes
// through unchanged. A missing column yields an empty mapping.
func ParsePositions(raw any) (RawPositions, error) {
	switch x := raw.(type) {
	case nil:
		return RawPositions{}, nil
	case map[string]any:
		out := make(RawPositions, len(x))
		for key, v := range x {
			fields, ok := v.(map[string]any)
			if !ok {
				continue
			}
			out[key] = fields
		}
		return out, nil
	case []byte:
		return unmarshalPositions(x)
	case string:
		return unmarshalPositions([]byte(x))
	default:
		return nil, fmt.Errorf("unexpected positions type %T", raw)
	}
}

func unmarshalPositions(data []byte) (RawPositions, error) {
	if len(data) == 0 {
		return RawPositions{}, nil
	}
	var out RawPositions
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	if out == nil {
		out = RawPositions{}
	}
	return out, nil
}

// Normalize maps every raw position onto a PositionView. Views are sorted by
// symbol for stable rendering across refreshes. latestPrice is the price
// taken from the newest decision log; nil or zero disables PnL.
func Normalize(positions RawPositions, latestPrice *float64) []PositionView {
	views := make([]PositionView, 0, len(positions))

	keys := make([]string, 0, len(positions))
	for key := range positions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		views = append(views, normalizeOne(key, positions[key], latestPrice))
	}
	return views
}

func normalizeOne(key string, pos map[string]any, latestPrice *float64) PositionView {
	lev := leverageOf(pos)
	entry := coerce.Float(pos["entry_price"], 0)

	var notional float64
	var side string

	_, hasNotional := pos["notional_usdt"]
	_, hasSide := pos["side"]
	if hasNotional || hasSide {
		// current schema: explicit side and notional
		notional = coerce.Float(pos["notional_usdt"], 0)
		side = strings.ToLower(coerce.String(pos["side"], "long"))
		if side == "" {
			side = "long"
		}
	} else {
		// legacy schema: qty holds the notional, side is encoded in the key
		notional = coerce.Float(pos["qty"], 0)
		if strings.Contains(strings.ToLower(key), "buy") {
			side = "long"
		} else {
			side = "short"
		}
	}

	collateral := 0.0
	if lev != 0 {
		collateral = notional / lev
	}

	pnl := 0.0
	if latestPrice != nil && *latestPrice != 0 && entry != 0 {
		if side == "long" {
			pnl = (*latestPrice - entry) / entry * notional
		} else {
			pnl = (entry - *latestPrice) / entry * notional
		}
	}

	roi := 0.0
	if collateral > 0 {
		roi = pnl / collateral * 100
	}

	return PositionView{
		Symbol:     key,
		Side:       side,
		Collateral: collateral,
		Leverage:   lev,
		Notional:   notional,
		Entry:      entry,
		PnL:        pnl,
		ROIPct:     roi,
	}
}

// leverageOf defaults to 1 when the field is missing or null. An explicit
// numeric zero is kept as-is and falls into the zero-collateral guard.
func leverageOf(pos map[string]any) float64 {
	raw, ok := pos["leverage"]
	if !ok || raw == nil {
		return 1
	}
	return coerce.Float(raw, 1)
}
