package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
)

func TestParseResult(t *testing.T) {
	testCases := []struct {
		in   string
		want Result
		ok   bool
	}{
		{"win", ResultWin, true},
		{" W ", ResultWin, true},
		{"Loss", ResultLoss, true},
		{"be", ResultBreakeven, true},
		{"獲利", ResultWin, true},
		{"虧損", ResultLoss, true},
		{"打平", ResultBreakeven, true},
		{"maybe", Result("maybe"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseResult(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResult_UnmarshalLegacy(t *testing.T) {
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"result":"虧損","rValue":-1}`), &trade))
	assert.Equal(t, ResultLoss, trade.Result)
	assert.Equal(t, -1.0, trade.RValue)
}

func TestParseContext(t *testing.T) {
	for _, c := range Contexts() {
		assert.Equal(t, c, ParseContext(c.Label()))
		assert.Equal(t, c, ParseContext(c.Short()))
		assert.Equal(t, c, ParseContext(c.Legacy()))
	}

	assert.Equal(t, ContextUnknown, ParseContext("strong trend"))
	assert.Equal(t, ContextUnknown, ParseContext("Gap Day"))
	assert.Equal(t, "Unknown", ContextUnknown.String())
	assert.Equal(t, "Climax", ContextClimax.String())
	assert.Len(t, Contexts(), 6)
}

func TestShortLabel(t *testing.T) {
	assert.Equal(t, "Gap Day", ShortLabel("Gap Day (跳空日)"))
	assert.Equal(t, "Gap Day", ShortLabel("  Gap Day "))
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name   string
		result Result
		r      float64
		want   float64
	}{
		{"positive loss", ResultLoss, 2, -2},
		{"zero loss", ResultLoss, 0, -1},
		{"negative loss", ResultLoss, -0.5, -0.5},
		{"breakeven", ResultBreakeven, 3, 0},
		{"win kept", ResultWin, 1.5, 1.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade := Trade{Result: tc.result, RValue: tc.r}.Normalized()
			assert.Equal(t, tc.want, trade.RValue)
		})
	}
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	ts, ok := Trade{Time: "2024-05-01T09:30"}.ParseTime(loc)
	require.True(t, ok)
	assert.Equal(t, 9, ts.Hour())

	ts, ok = Trade{Time: "2024-05-01T01:30:00Z"}.ParseTime(loc)
	require.True(t, ok)
	assert.Equal(t, 9, ts.Hour())

	_, ok = Trade{Time: "yesterday"}.ParseTime(loc)
	assert.False(t, ok)

	_, ok = Trade{}.ParseTime(loc)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := Trade{Result: ResultWin, Context: "Climax (高潮)", Method: "Wedge Top", Time: "2024-05-01T09:30"}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Result = "maybe"
	assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidTrade)

	bad = valid
	bad.Method = "  "
	assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidTrade)

	bad = valid
	bad.Time = "soon"
	assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidTrade)

	for _, r := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		bad = valid
		bad.RValue = r
		assert.ErrorIs(t, bad.Validate(), apperrors.ErrInvalidTrade, "rValue %v", r)
	}
}

func TestShortTime(t *testing.T) {
	assert.Equal(t, "05-01 09:30", Trade{Time: "2024-05-01T09:30"}.ShortTime())
	assert.Equal(t, "-", Trade{}.ShortTime())
	assert.Equal(t, "odd", Trade{Time: "odd"}.ShortTime())
}

func TestDefaultRValue(t *testing.T) {
	assert.Equal(t, 2.0, DefaultRValue(ResultWin))
	assert.Equal(t, -1.0, DefaultRValue(ResultLoss))
	assert.Equal(t, 0.0, DefaultRValue(ResultBreakeven))
}
