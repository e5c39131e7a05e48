// Package analytics derives performance statistics from journal trades.
//
// Every function here is pure: inputs are read, never mutated, and the same
// inputs always produce the same outputs.
package analytics

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"tradejournal/internal/models"
)

// ProfitFactor is gross win over gross loss. It is infinite when there are
// winning trades and no losing R.
type ProfitFactor float64

// InfiniteProfitFactor is the value used when gross loss is zero and gross
// win is positive.
var InfiniteProfitFactor = ProfitFactor(math.Inf(1))

// IsInfinite reports whether pf is the infinite sentinel.
func (pf ProfitFactor) IsInfinite() bool {
	return math.IsInf(float64(pf), 1)
}

func (pf ProfitFactor) String() string {
	if pf.IsInfinite() {
		return "∞"
	}
	return strconv.FormatFloat(float64(pf), 'f', 2, 64)
}

// MarshalJSON encodes the infinite sentinel as the string "inf".
func (pf ProfitFactor) MarshalJSON() ([]byte, error) {
	if pf.IsInfinite() {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(pf))
}

// UnmarshalJSON accepts a number or "inf".
func (pf *ProfitFactor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "inf" {
			*pf = InfiniteProfitFactor
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*pf = ProfitFactor(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*pf = ProfitFactor(f)
	return nil
}

// MarshalYAML encodes the infinite sentinel as "inf".
func (pf ProfitFactor) MarshalYAML() (interface{}, error) {
	if pf.IsInfinite() {
		return "inf", nil
	}
	return float64(pf), nil
}

// Metrics holds the scalar statistics of a trade set.
type Metrics struct {
	TotalTrades  int          `json:"total_trades" yaml:"total_trades"`
	TotalR       float64      `json:"total_r" yaml:"total_r"`
	TotalPnL     float64      `json:"total_pnl" yaml:"total_pnl"`
	Wins         int          `json:"wins" yaml:"wins"`
	Losses       int          `json:"losses" yaml:"losses"`
	Breakevens   int          `json:"breakevens" yaml:"breakevens"`
	WinRate      int          `json:"win_rate" yaml:"win_rate"`
	GrossWin     float64      `json:"gross_win" yaml:"gross_win"`
	GrossLoss    float64      `json:"gross_loss" yaml:"gross_loss"`
	ProfitFactor ProfitFactor `json:"profit_factor" yaml:"profit_factor"`
}

// ComputeMetrics summarizes trades. valuePerR is applied as a plain
// multiplier, so zero or negative values are accepted.
func ComputeMetrics(trades []models.Trade, valuePerR float64) Metrics {
	var m Metrics
	m.TotalTrades = len(trades)

	for _, t := range trades {
		t.Normalize()

		m.TotalR += t.RValue
		switch t.Result {
		case models.ResultWin:
			m.Wins++
		case models.ResultLoss:
			m.Losses++
		case models.ResultBreakeven:
			m.Breakevens++
		}

		if t.RValue > 0 {
			m.GrossWin += t.RValue
		} else if t.RValue < 0 {
			m.GrossLoss += t.RValue
		}
	}

	m.GrossLoss = math.Abs(m.GrossLoss)
	m.TotalPnL = m.TotalR * valuePerR
	m.WinRate = percent(m.Wins, m.TotalTrades)
	m.ProfitFactor = profitFactor(m.GrossWin, m.GrossLoss)
	return m
}

func profitFactor(grossWin, grossLoss float64) ProfitFactor {
	switch {
	case grossLoss > 0:
		if !isFinite(grossWin) || !isFinite(grossLoss) {
			return ProfitFactor(grossWin / grossLoss)
		}
		q := decimal.NewFromFloat(grossWin).Div(decimal.NewFromFloat(grossLoss))
		f, _ := q.Round(2).Float64()
		return ProfitFactor(f)
	case grossWin > 0:
		return InfiniteProfitFactor
	}
	return 0
}

// percent returns round(part/whole*100), half away from zero, or 0 when
// whole is zero.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(part) * 100).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).
		IntPart())
}

// Round rounds x to places decimals, half away from zero. Non-finite values
// are returned unchanged.
func Round(x float64, places int32) float64 {
	if !isFinite(x) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
