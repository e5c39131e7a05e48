package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"tradejournal/internal/logging"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

// File names used by JSONStore. They match the layout of journals written
// by earlier versions so existing data directories load unchanged.
const (
	TradesFileName  = "trades.json"
	MethodsFileName = "config.json"
)

// JSONStore keeps trades and methods as JSON files in a directory.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONStore creates the data directory if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, persistenceError(BackendJSON, "mkdir", err)
	}
	return &JSONStore{dir: dir}, nil
}

// Dir returns the data directory.
func (s *JSONStore) Dir() string {
	return s.dir
}

// LoadTrades reads trades.json. Records that fail to decode are skipped.
func (s *JSONStore) LoadTrades(ctx context.Context) []models.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.WithStore(logging.FromContext(ctx), BackendJSON)

	data, err := os.ReadFile(s.path(TradesFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Msg("Failed to read trades, starting empty")
		}
		return []models.Trade{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn().Err(err).Msg("Trades file is corrupt, starting empty")
		return []models.Trade{}
	}

	trades := make([]models.Trade, 0, len(raw))
	for i, r := range raw {
		var t models.Trade
		if err := json.Unmarshal(r, &t); err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("Skipping unreadable trade")
			continue
		}
		trades = append(trades, t)
	}

	logging.LogPersistence(logger, "load_trades", len(trades), nil)
	return prepareLoaded(trades)
}

// SaveTrades replaces trades.json.
func (s *JSONStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	if trades == nil {
		trades = []models.Trade{}
	}
	return s.write(ctx, TradesFileName, "save_trades", trades, len(trades))
}

// LoadMethods reads config.json, a JSON array of method names.
func (s *JSONStore) LoadMethods(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.WithStore(logging.FromContext(ctx), BackendJSON)

	data, err := os.ReadFile(s.path(MethodsFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Msg("Failed to read methods, using defaults")
		}
		return registry.DefaultMethods()
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		logger.Warn().Err(err).Msg("Methods file is corrupt, using defaults")
		return registry.DefaultMethods()
	}

	return prepareMethods(names)
}

// SaveMethods replaces config.json.
func (s *JSONStore) SaveMethods(ctx context.Context, methods []string) error {
	if methods == nil {
		methods = []string{}
	}
	return s.write(ctx, MethodsFileName, "save_methods", methods, len(methods))
}

// Close is a no-op.
func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// write encodes v to a temp file and renames it over name.
func (s *JSONStore) write(ctx context.Context, name, operation string, v interface{}, records int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.WithStore(logging.FromContext(ctx), BackendJSON)

	err := s.writeFile(name, v)
	logging.LogPersistence(logger, operation, records, err)
	if err != nil {
		return persistenceError(BackendJSON, operation, err)
	}
	return nil
}

func (s *JSONStore) writeFile(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
