package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	assert.True(t, ValidLevel("error"))
	assert.False(t, ValidLevel("verbose"))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, FromContext(context.Background()).GetLevel())

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), logger)

	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestLogTradeAdded(t *testing.T) {
	var buf bytes.Buffer
	LogTradeAdded(zerolog.New(&buf), 42, "Double Top", "win", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trade_added", entry["event"])
	assert.Equal(t, float64(42), entry["trade_id"])
	assert.Equal(t, "Double Top", entry["method"])
}

func TestLogPersistenceError(t *testing.T) {
	var buf bytes.Buffer
	LogPersistence(zerolog.New(&buf), "save_trades", 3, errors.New("disk full"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "save_trades", entry["action"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(zerolog.New(&buf), "add_trade")
	LogPersistence(logger, "save_trades", 1, nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "add_trade", entry["operation"])
	assert.Equal(t, "save_trades", entry["action"])
}

func TestLogRequestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogRequest(logger, "GET", "/api/report", 404, 0)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	var console bytes.Buffer

	logger := newLogger(LogConfig{Level: "debug", Console: true, File: true, FilePath: path, MaxSize: 1}, &console)
	logger.Debug().Msg("written")

	assert.FileExists(t, path)
	assert.Contains(t, console.String(), "written")
}
