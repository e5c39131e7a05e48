package analytics

import (
	"time"

	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

// DefaultValuePerR is the currency value of one R when none is configured.
const DefaultValuePerR = 200.0

// Params are the tunables of a report.
type Params struct {
	ValuePerR float64
	// Location is used to read the hour of naive trade times. Nil means
	// time.Local.
	Location *time.Location
}

// DefaultParams returns a value of 200 per R in the local time zone.
func DefaultParams() Params {
	return Params{ValuePerR: DefaultValuePerR, Location: time.Local}
}

// Report bundles every analytics output for one trade set.
type Report struct {
	ValuePerR float64        `json:"value_per_r" yaml:"value_per_r"`
	Metrics   Metrics        `json:"metrics" yaml:"metrics"`
	Equity    []float64      `json:"equity" yaml:"equity"`
	Hourly    HourlyBuckets  `json:"hourly" yaml:"hourly"`
	Contexts  []ContextTotal `json:"contexts" yaml:"contexts"`
	Matrix    Matrix         `json:"matrix" yaml:"matrix"`
}

// Compute recomputes the full report from scratch.
func Compute(trades []models.Trade, methods *registry.Methods, p Params) *Report {
	return &Report{
		ValuePerR: p.ValuePerR,
		Metrics:   ComputeMetrics(trades, p.ValuePerR),
		Equity:    EquityPoints(trades, p.ValuePerR),
		Hourly:    HourlyPnL(trades, p.ValuePerR, p.Location),
		Contexts:  ContextBreakdown(trades, p.ValuePerR),
		Matrix:    BuildMatrix(trades, methods),
	}
}
