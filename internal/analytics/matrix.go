package analytics

import (
	"encoding/json"
	"fmt"

	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

// Tier classifies a matrix cell's win rate.
type Tier int

const (
	TierNoData Tier = iota
	TierLow
	TierMid
	TierHigh
)

// Win-rate thresholds, in percent.
const (
	HighTierMin = 60
	MidTierMin  = 40
)

var tierNames = [...]string{"no_data", "low", "mid", "high"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalText encodes the tier name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ClassifyRate maps a win rate in percent to a tier.
func ClassifyRate(rate int) Tier {
	switch {
	case rate >= HighTierMin:
		return TierHigh
	case rate >= MidTierMin:
		return TierMid
	}
	return TierLow
}

// Cell counts trades for one (context, method) pair.
type Cell struct {
	Method string `json:"method" yaml:"method"`
	Wins   int    `json:"wins" yaml:"wins"`
	Total  int    `json:"total" yaml:"total"`
}

// HasData reports whether any trade fell into the cell.
func (c Cell) HasData() bool {
	return c.Total > 0
}

// Rate returns the rounded win rate and false when the cell has no data.
func (c Cell) Rate() (int, bool) {
	if c.Total == 0 {
		return 0, false
	}
	return percent(c.Wins, c.Total), true
}

// Tier classifies the cell. A cell without trades is TierNoData.
func (c Cell) Tier() Tier {
	rate, ok := c.Rate()
	if !ok {
		return TierNoData
	}
	return ClassifyRate(rate)
}

// MarshalJSON adds the derived rate (null without data) and tier.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.view())
}

// MarshalYAML adds the derived rate and tier.
func (c Cell) MarshalYAML() (interface{}, error) {
	return c.view(), nil
}

type cellView struct {
	Method string `json:"method" yaml:"method"`
	Wins   int    `json:"wins" yaml:"wins"`
	Total  int    `json:"total" yaml:"total"`
	Rate   *int   `json:"rate" yaml:"rate"`
	Tier   Tier   `json:"tier" yaml:"tier"`
}

func (c Cell) view() cellView {
	v := cellView{Method: c.Method, Wins: c.Wins, Total: c.Total, Tier: c.Tier()}
	if rate, ok := c.Rate(); ok {
		v.Rate = &rate
	}
	return v
}

// MatrixRow is one context's cells, one per registered method.
type MatrixRow struct {
	Context models.MarketContext `json:"context" yaml:"context"`
	Label   string               `json:"label" yaml:"label"`
	Cells   []Cell               `json:"cells" yaml:"cells"`
}

// Matrix is the dense context × method win-rate table.
type Matrix struct {
	Methods []string    `json:"methods" yaml:"methods"`
	Rows    []MatrixRow `json:"rows" yaml:"rows"`
	// Excluded counts trades with an unrecognized context or an
	// unregistered method.
	Excluded int `json:"excluded" yaml:"excluded"`
}

// BuildMatrix counts wins and totals for every known context and every
// registered method. Trades are matched on exact labels only.
func BuildMatrix(trades []models.Trade, methods *registry.Methods) Matrix {
	names := methods.List()
	contexts := models.Contexts()

	m := Matrix{
		Methods: names,
		Rows:    make([]MatrixRow, len(contexts)),
	}
	rowOf := make(map[models.MarketContext]int, len(contexts))
	for i, c := range contexts {
		cells := make([]Cell, len(names))
		for j, name := range names {
			cells[j] = Cell{Method: name}
		}
		m.Rows[i] = MatrixRow{Context: c, Label: c.Short(), Cells: cells}
		rowOf[c] = i
	}

	for _, t := range trades {
		c := models.ParseContext(t.Context)
		col := methods.Index(t.Method)
		if !c.Known() || col < 0 {
			m.Excluded++
			continue
		}
		cell := &m.Rows[rowOf[c]].Cells[col]
		cell.Total++
		if t.IsWin() {
			cell.Wins++
		}
	}
	return m
}

// Cell returns the cell for a context and method.
func (m Matrix) Cell(c models.MarketContext, method string) (Cell, bool) {
	for _, row := range m.Rows {
		if row.Context != c {
			continue
		}
		for _, cell := range row.Cells {
			if cell.Method == method {
				return cell, true
			}
		}
	}
	return Cell{}, false
}
