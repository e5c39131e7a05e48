package analytics

import (
	"iter"
	"time"

	"tradejournal/internal/models"
)

// EquityCurve yields the cumulative P&L after each trade, in input order.
// The sequence can be ranged over any number of times. Its last value equals
// ComputeMetrics(trades, valuePerR).TotalPnL exactly.
func EquityCurve(trades []models.Trade, valuePerR float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		var cumR float64
		for _, t := range trades {
			t.Normalize()
			cumR += t.RValue
			if !yield(cumR * valuePerR) {
				return
			}
		}
	}
}

// EquityPoints collects EquityCurve into a slice. It is never nil.
func EquityPoints(trades []models.Trade, valuePerR float64) []float64 {
	out := make([]float64, 0, len(trades))
	for v := range EquityCurve(trades, valuePerR) {
		out = append(out, v)
	}
	return out
}

// HourlyBuckets holds P&L per hour of day, index 0 through 23.
type HourlyBuckets [24]float64

// HourlyPnL adds each trade's P&L to the bucket of its local hour.
// Trades without a parseable time are skipped.
func HourlyPnL(trades []models.Trade, valuePerR float64, loc *time.Location) HourlyBuckets {
	var buckets HourlyBuckets
	for _, t := range trades {
		ts, ok := t.ParseTime(loc)
		if !ok {
			continue
		}
		t.Normalize()
		buckets[ts.Hour()] += t.RValue * valuePerR
	}
	return buckets
}

// Slice returns the buckets as a slice.
func (b HourlyBuckets) Slice() []float64 {
	out := make([]float64, len(b))
	copy(out, b[:])
	return out
}
