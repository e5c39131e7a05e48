// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"path/filepath"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/id"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// TradeStore persists the trade list.
//
// LoadTrades never fails: a missing or unreadable store yields an empty
// list and the problem is logged.
type TradeStore interface {
	LoadTrades(ctx context.Context) []models.Trade
	SaveTrades(ctx context.Context, trades []models.Trade) error
}

// MethodStore persists the method registry.
//
// LoadMethods falls back to registry.DefaultMethods when no registry has
// been stored or the stored copy is unreadable.
type MethodStore interface {
	LoadMethods(ctx context.Context) []string
	SaveMethods(ctx context.Context, methods []string) error
}

// JournalStore is a backend holding both trades and methods.
type JournalStore interface {
	TradeStore
	MethodStore
	Close() error
}

// Open opens the named backend rooted at dataDir.
func Open(backend, dataDir string) (JournalStore, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, SQLiteFileName))
	}
	return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown store backend %q", backend)
}

// prepareLoaded normalizes loaded trades and advances the ID sequence past
// every stored ID.
func prepareLoaded(trades []models.Trade) []models.Trade {
	for i := range trades {
		trades[i].Normalize()
		id.Observe(trades[i].ID)
	}
	return trades
}

// prepareMethods deduplicates stored methods and drops blank names. A stored
// empty registry stays empty.
func prepareMethods(names []string) []string {
	methods := registry.New(names).List()
	if methods == nil {
		return []string{}
	}
	return methods
}

func persistenceError(backend, operation string, err error) error {
	return apperrors.NewPersistenceError(backend, operation, err)
}
