package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tradejournal/internal/analytics"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

func sampleTrades() []models.Trade {
	return []models.Trade{
		{
			ID:        1,
			Time:      "2024-05-01T09:30",
			Image:     "img_01HXYZ.png",
			Context:   "Strong Trend (強趨勢)",
			Method:    "Double Bottom",
			TradeType: "Long",
			Emotion:   "Calm",
			Result:    models.ResultWin,
			RValue:    2.5,
			Remark:    "a, b",
		},
		{
			ID:      2,
			Time:    "2024-05-01T10:00",
			Context: "Climax (高潮)",
			Method:  "Wedge Top",
			Result:  models.ResultLoss,
			RValue:  -1,
		},
	}
}

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, sampleTrades()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, utf8BOM))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, utf8BOM)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,time,img,context,method,trade_type,emotion,result,rValue,remark", lines[0])
	assert.Contains(t, lines[1], "img_01HXYZ.png")
	assert.Contains(t, lines[1], `"a, b"`)

	var decoded []models.Trade
	require.NoError(t, gocsv.UnmarshalString(strings.TrimPrefix(out, utf8BOM), &decoded))
	assert.Equal(t, sampleTrades(), decoded)
}

func TestWriteTradesCSV_NoData(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteTradesCSV(&buf, nil)

	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "no data", err.Error())
	assert.Zero(t, buf.Len())
}

func TestTradesCSVFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Unix(1714550400, 0)

	path, err := TradesCSVFile(dir, sampleTrades(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export_1714550400.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(utf8BOM)))
}

func TestTradesCSVFile_NoData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := TradesCSVFile(dir, []models.Trade{}, time.Now())
	assert.ErrorIs(t, err, ErrNoData)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteReportYAML(t *testing.T) {
	t.Parallel()

	trades := sampleTrades()[:1]
	report := analytics.Compute(trades, registry.Default(), analytics.Params{ValuePerR: 200, Location: time.UTC})

	var buf bytes.Buffer
	require.NoError(t, WriteReportYAML(&buf, report))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	metrics := decoded["metrics"].(map[string]interface{})
	assert.Equal(t, "inf", metrics["profit_factor"])
	assert.EqualValues(t, 500, metrics["total_pnl"])
	assert.Contains(t, buf.String(), "tier: high")
	assert.Contains(t, buf.String(), "tier: no_data")
	assert.Contains(t, buf.String(), "context: Strong Trend (強趨勢)")
}
