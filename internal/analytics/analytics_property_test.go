package analytics

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

var propertyContexts = []string{
	"Strong Trend (強趨勢)",
	"Trading Range",
	"寬通道 (Broad Channel)",
	"Tight Channel (窄通道)",
	"Breakout Mode",
	"Climax (高潮)",
	"Opening Gap (跳空)",
	"",
}

var propertyMethods = append(registry.DefaultMethods(), "Unlisted Setup")

// tradesFromSeeds builds a deterministic trade list. R values are
// multiples of 0.25 so that sums stay exact.
func tradesFromSeeds(seeds []int) []models.Trade {
	results := models.Results()
	trades := make([]models.Trade, len(seeds))
	for i, s := range seeds {
		ts := fmt.Sprintf("2024-03-%02dT%02d:%02d", s%28+1, s%24, s%60)
		switch s % 11 {
		case 0:
			ts = ""
		case 1:
			ts = "yesterday"
		}
		trades[i] = models.Trade{
			ID:      int64(i + 1),
			Time:    ts,
			Context: propertyContexts[s%len(propertyContexts)],
			Method:  propertyMethods[(s/7)%len(propertyMethods)],
			Result:  results[(s/3)%len(results)],
			RValue:  float64(s%17-8) * 0.25,
		}
	}
	return trades
}

func seedsGen() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 1_000_000))
}

func TestProperty_TotalPnLIsTotalRTimesValuePerR(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("total_r * value_per_r == total_pnl", prop.ForAll(
		func(seeds []int, valuePerR float64) bool {
			m := ComputeMetrics(tradesFromSeeds(seeds), valuePerR)
			return m.TotalR*valuePerR == m.TotalPnL
		},
		seedsGen(),
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_EquityCurveEndsAtTotalPnL(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("equity curve has one point per trade and ends at total_pnl", prop.ForAll(
		func(seeds []int, valuePerR float64) bool {
			trades := tradesFromSeeds(seeds)
			points := EquityPoints(trades, valuePerR)
			if len(points) != len(trades) {
				t.Logf("Expected %d points, got %d", len(trades), len(points))
				return false
			}
			if len(points) == 0 {
				return true
			}
			want := ComputeMetrics(trades, valuePerR).TotalPnL
			if points[len(points)-1] != want {
				t.Logf("Last point %v != total_pnl %v", points[len(points)-1], want)
				return false
			}
			return true
		},
		seedsGen(),
		gen.Float64Range(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_ProfitFactorSentinels(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("profit factor is infinite iff no loss and some win", prop.ForAll(
		func(seeds []int) bool {
			m := ComputeMetrics(tradesFromSeeds(seeds), 200)
			wantInf := m.GrossLoss == 0 && m.GrossWin > 0
			wantZero := m.GrossLoss == 0 && m.GrossWin == 0
			if m.ProfitFactor.IsInfinite() != wantInf {
				return false
			}
			if wantZero && m.ProfitFactor != 0 {
				return false
			}
			return m.GrossLoss >= 0 && m.GrossWin >= 0
		},
		seedsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_NormalizationBeforeAggregation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("losses never add to gross win and breakevens add nothing", prop.ForAll(
		func(seeds []int) bool {
			trades := tradesFromSeeds(seeds)
			var wins []models.Trade
			for _, tr := range trades {
				if tr.IsWin() {
					wins = append(wins, tr)
				}
			}
			// Only winning trades can carry positive R after normalization.
			return ComputeMetrics(trades, 1).GrossWin == ComputeMetrics(wins, 1).GrossWin
		},
		seedsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_WinRateBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("win rate is within 0..100", prop.ForAll(
		func(seeds []int) bool {
			m := ComputeMetrics(tradesFromSeeds(seeds), 200)
			return m.WinRate >= 0 && m.WinRate <= 100 &&
				m.Wins+m.Losses+m.Breakevens == m.TotalTrades
		},
		seedsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_MatrixIsDense(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	methods := registry.Default()

	properties.Property("matrix covers every context and method and accounts for every trade", prop.ForAll(
		func(seeds []int) bool {
			trades := tradesFromSeeds(seeds)
			m := BuildMatrix(trades, methods)
			if len(m.Rows) != len(models.Contexts()) {
				return false
			}
			counted := 0
			for _, row := range m.Rows {
				if len(row.Cells) != methods.Len() {
					return false
				}
				for _, cell := range row.Cells {
					counted += cell.Total
					if cell.Wins > cell.Total {
						return false
					}
					if (cell.Total == 0) != (cell.Tier() == TierNoData) {
						return false
					}
				}
			}
			return counted+m.Excluded == len(trades)
		},
		seedsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_ContextAndHourlyTotals(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("context totals sum to total_pnl and hourly totals sum to timed trades", prop.ForAll(
		func(seeds []int) bool {
			trades := tradesFromSeeds(seeds)
			total := ComputeMetrics(trades, 200).TotalPnL

			var byContext float64
			for _, v := range ContextPnL(trades, 200) {
				byContext += v
			}
			if math.Abs(byContext-total) > 1e-6 {
				t.Logf("context sum %v != total %v", byContext, total)
				return false
			}

			var timed []models.Trade
			for _, tr := range trades {
				if _, ok := tr.ParseTime(time.UTC); ok {
					timed = append(timed, tr)
				}
			}
			var byHour float64
			for _, v := range HourlyPnL(trades, 200, time.UTC) {
				byHour += v
			}
			return math.Abs(byHour-ComputeMetrics(timed, 200).TotalPnL) <= 1e-6
		},
		seedsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_ComputeIsPure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	methods := registry.Default()
	params := Params{ValuePerR: 200, Location: time.UTC}

	properties.Property("compute does not mutate inputs and is idempotent", prop.ForAll(
		func(seeds []int) bool {
			trades := tradesFromSeeds(seeds)
			before := tradesFromSeeds(seeds)

			first := Compute(trades, methods, params)
			second := Compute(trades, methods, params)

			return reflect.DeepEqual(trades, before) &&
				reflect.DeepEqual(first, second) &&
				methods.Len() == len(registry.DefaultMethods())
		},
		seedsGen(),
	))

	properties.TestingRun(t)
}
