// Package models provides domain models for the trading journal.
package models

import (
	"encoding/json"
	"strings"
)

// Result represents the outcome of a trade.
type Result string

const (
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultBreakeven Result = "breakeven"
)

// legacyResults maps the labels written by earlier journal versions.
var legacyResults = map[string]Result{
	"獲利": ResultWin,
	"虧損": ResultLoss,
	"打平": ResultBreakeven,
}

// Results returns all valid results in display order.
func Results() []Result {
	return []Result{ResultWin, ResultLoss, ResultBreakeven}
}

// ParseResult parses a result label. Legacy labels and the short forms
// "w", "l" and "be" are accepted.
func ParseResult(s string) (Result, bool) {
	if r, ok := legacyResults[strings.TrimSpace(s)]; ok {
		return r, true
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win", "w":
		return ResultWin, true
	case "loss", "l":
		return ResultLoss, true
	case "breakeven", "be", "even":
		return ResultBreakeven, true
	}
	return Result(s), false
}

// Valid reports whether r is one of the known results.
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultBreakeven:
		return true
	}
	return false
}

// UnmarshalJSON accepts current and legacy result labels. Unknown labels are
// kept verbatim so that a stored record is never dropped.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, _ := ParseResult(s)
	*r = parsed
	return nil
}
