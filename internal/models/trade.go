package models

import (
	"math"
	"strings"
	"time"

	apperrors "tradejournal/internal/errors"
)

// Trade represents one logged trade.
//
// JSON keys follow the journal file format so that existing trades.json
// files load unchanged.
type Trade struct {
	ID        int64   `json:"id" csv:"id" yaml:"id"`
	Time      string  `json:"time" csv:"time" yaml:"time"`
	Image     string  `json:"img" csv:"img" yaml:"img"`
	Context   string  `json:"context" csv:"context" yaml:"context"`
	Method    string  `json:"method" csv:"method" yaml:"method"`
	TradeType string  `json:"trade_type" csv:"trade_type" yaml:"trade_type"`
	Emotion   string  `json:"emotion" csv:"emotion" yaml:"emotion"`
	Result    Result  `json:"result" csv:"result" yaml:"result"`
	RValue    float64 `json:"rValue" csv:"rValue" yaml:"r_value"`
	Remark    string  `json:"remark" csv:"remark" yaml:"remark"`
}

// Layouts accepted for local-naive trade times, tried in order.
var naiveTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Normalize forces the R value sign to agree with the result.
// A loss is never positive (zero becomes -1R) and a breakeven is always 0R.
func (t *Trade) Normalize() {
	switch t.Result {
	case ResultLoss:
		if t.RValue > 0 {
			t.RValue = -t.RValue
		} else if t.RValue == 0 {
			t.RValue = -1
		}
	case ResultBreakeven:
		t.RValue = 0
	}
}

// Normalized returns a normalized copy of t.
func (t Trade) Normalized() Trade {
	t.Normalize()
	return t
}

// IsWin reports whether the trade was recorded as a win.
func (t Trade) IsWin() bool {
	return t.Result == ResultWin
}

// MarketContext resolves the trade's context label.
func (t Trade) MarketContext() MarketContext {
	return ParseContext(t.Context)
}

// ParseTime parses the trade time. Naive timestamps are interpreted in loc;
// zoned timestamps are converted into loc. A nil loc means time.Local.
func (t Trade) ParseTime(loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(t.Time)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.In(loc), true
	}
	for _, layout := range naiveTimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Validate checks the fields a new trade must carry.
func (t Trade) Validate() error {
	if !t.Result.Valid() {
		return apperrors.NewValidationError("result", t.Result, "must be win, loss or breakeven")
	}
	if strings.TrimSpace(t.Method) == "" {
		return apperrors.NewValidationError("method", t.Method, "is required")
	}
	if strings.TrimSpace(t.Context) == "" {
		return apperrors.NewValidationError("context", t.Context, "is required")
	}
	if math.IsNaN(t.RValue) || math.IsInf(t.RValue, 0) {
		return apperrors.NewValidationError("rValue", t.RValue, "must be a finite number")
	}
	if t.Time != "" {
		if _, ok := t.ParseTime(time.UTC); !ok {
			return apperrors.NewValidationError("time", t.Time, "unrecognized timestamp format")
		}
	}
	return nil
}

// DefaultRValue returns the R value used when none is supplied for result.
func DefaultRValue(r Result) float64 {
	switch r {
	case ResultWin:
		return 2.0
	case ResultLoss:
		return -1.0
	}
	return 0
}

// ShortTime renders the time as "MM-DD HH:MM", or "-" when unset.
func (t Trade) ShortTime() string {
	s := strings.TrimSpace(t.Time)
	if s == "" {
		return "-"
	}
	if len(s) >= 16 && s[4] == '-' {
		return strings.Replace(s[5:16], "T", " ", 1)
	}
	return s
}
