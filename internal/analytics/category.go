package analytics

import (
	"tradejournal/internal/models"
)

// ContextKey returns the aggregation key for a trade's context label: the
// short label of a recognized context, or the free text with any
// parenthetical alias removed.
func ContextKey(label string) string {
	if c := models.ParseContext(label); c.Known() {
		return c.Short()
	}
	return models.ShortLabel(label)
}

// ContextPnL sums P&L per context key. Only keys with at least one trade
// are present.
func ContextPnL(trades []models.Trade, valuePerR float64) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range trades {
		t.Normalize()
		out[ContextKey(t.Context)] += t.RValue * valuePerR
	}
	return out
}

// ContextTotal is one entry of a context breakdown.
type ContextTotal struct {
	Context string  `json:"context" yaml:"context"`
	Known   bool    `json:"known" yaml:"known"`
	Trades  int     `json:"trades" yaml:"trades"`
	PnL     float64 `json:"pnl" yaml:"pnl"`
}

// ContextBreakdown returns the same totals as ContextPnL, ordered with the
// six known contexts first and then free-text keys by first appearance.
func ContextBreakdown(trades []models.Trade, valuePerR float64) []ContextTotal {
	totals := make(map[string]*ContextTotal)
	var freeText []string

	for _, t := range trades {
		t.Normalize()
		key := ContextKey(t.Context)
		ct, ok := totals[key]
		if !ok {
			ct = &ContextTotal{Context: key}
			totals[key] = ct
			if !isKnownShort(key) {
				freeText = append(freeText, key)
			}
		}
		ct.Trades++
		ct.PnL += t.RValue * valuePerR
	}

	out := make([]ContextTotal, 0, len(totals))
	for _, c := range models.Contexts() {
		if ct, ok := totals[c.Short()]; ok {
			ct.Known = true
			out = append(out, *ct)
		}
	}
	for _, key := range freeText {
		out = append(out, *totals[key])
	}
	return out
}

func isKnownShort(key string) bool {
	for _, c := range models.Contexts() {
		if c.Short() == key {
			return true
		}
	}
	return false
}
