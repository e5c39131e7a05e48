package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

func sampleTrades() []models.Trade {
	return []models.Trade{
		{
			ID:        1714550400000,
			Time:      "2024-05-01T09:30",
			Image:     "img_01HXYZ.jpg",
			Context:   "Strong Trend (強趨勢)",
			Method:    "Double Bottom",
			TradeType: "Long",
			Emotion:   "Calm",
			Result:    models.ResultWin,
			RValue:    2.5,
			Remark:    "clean entry, \"quoted\"",
		},
		{
			ID:      1714550400001,
			Time:    "2024-05-01T10:05",
			Context: "Climax (高潮)",
			Method:  "Wedge Top",
			Result:  models.ResultLoss,
			RValue:  -1,
		},
	}
}

func TestJSONStore_MissingFiles(t *testing.T) {
	t.Parallel()

	s, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	trades := s.LoadTrades(ctx)
	assert.NotNil(t, trades)
	assert.Empty(t, trades)
	assert.Equal(t, registry.DefaultMethods(), s.LoadMethods(ctx))
}

func TestJSONStore_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.SaveTrades(ctx, sampleTrades()))
	require.NoError(t, s.SaveMethods(ctx, []string{"B", "A"}))

	reopened, err := NewJSONStore(dir)
	require.NoError(t, err)
	assert.Equal(t, sampleTrades(), reopened.LoadTrades(ctx))
	assert.Equal(t, []string{"B", "A"}, reopened.LoadMethods(ctx))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJSONStore_CorruptFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TradesFileName), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MethodsFileName), []byte("[1, 2"), 0644))

	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Empty(t, s.LoadTrades(ctx))
	assert.Equal(t, registry.DefaultMethods(), s.LoadMethods(ctx))
}

func TestJSONStore_EmptyMethodsStayEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveMethods(ctx, []string{}))
	reopened, err := NewJSONStore(dir)
	require.NoError(t, err)
	methods := reopened.LoadMethods(ctx)
	assert.NotNil(t, methods)
	assert.Empty(t, methods)

	require.NoError(t, os.WriteFile(filepath.Join(dir, MethodsFileName), []byte(`["", "  "]`), 0644))
	assert.Empty(t, reopened.LoadMethods(ctx))
}

func TestJSONStore_LegacyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	legacy := `[
		{"id": 1700000000000, "time": "2023-11-14T22:13", "img": "img_1700000000000.jpg",
		 "context": "強趨勢 (Strong Trend)", "method": "雙底", "trade_type": "順勢",
		 "emotion": "平靜", "result": "虧損", "rValue": 1, "remark": ""},
		{"id": 1700000000001, "result": "打平", "rValue": 3},
		"garbage",
		{"id": 1700000000002, "result": "獲利", "rValue": 2}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TradesFileName), []byte(legacy), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MethodsFileName), []byte(`["雙底", "雙頂", "雙底"]`), 0644))

	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	trades := s.LoadTrades(ctx)
	require.Len(t, trades, 3)

	assert.Equal(t, models.ResultLoss, trades[0].Result)
	assert.Equal(t, -1.0, trades[0].RValue, "positive loss is normalized on load")
	assert.Equal(t, models.ContextStrongTrend, trades[0].MarketContext())
	assert.Equal(t, models.ResultBreakeven, trades[1].Result)
	assert.Equal(t, 0.0, trades[1].RValue)
	assert.Equal(t, models.ResultWin, trades[2].Result)

	assert.Equal(t, []string{"雙底", "雙頂"}, s.LoadMethods(ctx))
}

func TestJSONStore_WriteFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	// A directory in place of the target file makes the rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, TradesFileName), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TradesFileName, "keep"), nil, 0644))

	err = s.SaveTrades(context.Background(), sampleTrades())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	var perr *apperrors.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, BackendJSON, perr.Store)
	assert.Equal(t, "save_trades", perr.Operation)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	js, err := Open(BackendJSON, dir)
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, js)
	require.NoError(t, js.Close())

	ss, err := Open(BackendSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, ss)
	require.NoError(t, ss.Close())
	assert.FileExists(t, filepath.Join(dir, SQLiteFileName))

	_, err = Open("postgres", dir)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}
