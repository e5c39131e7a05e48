package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"

	"tradejournal/internal/logging"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

// SQLiteFileName is the database file created in the data directory.
const SQLiteFileName = "journal.db"

const metaMethodsSaved = "methods_saved"

// SQLiteStore implements JournalStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	// maxElapsed bounds how long a write keeps retrying a busy database.
	maxElapsed time.Duration
}

// NewSQLiteStore creates a new SQLite-based journal store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:         db,
		maxElapsed: 10 * time.Second,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades in insertion order
	CREATE TABLE IF NOT EXISTS trades (
		position INTEGER PRIMARY KEY,
		id INTEGER NOT NULL,
		time TEXT NOT NULL DEFAULT '',
		img TEXT NOT NULL DEFAULT '',
		context TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL DEFAULT '',
		trade_type TEXT NOT NULL DEFAULT '',
		emotion TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL,
		r_value REAL NOT NULL DEFAULT 0,
		remark TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_trades_id ON trades(id);

	-- Method registry in display order
	CREATE TABLE IF NOT EXISTS methods (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	-- Journal settings; methods_saved marks a registry written at least once
	CREATE TABLE IF NOT EXISTS journal_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades
// ============================================================================

// LoadTrades reads every trade in insertion order.
func (s *SQLiteStore) LoadTrades(ctx context.Context) []models.Trade {
	logger := logging.WithStore(logging.FromContext(ctx), BackendSQLite)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, time, img, context, method, trade_type, emotion, result, r_value, remark
		FROM trades
		ORDER BY position ASC
	`)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to query trades, starting empty")
		return []models.Trade{}
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		var t models.Trade
		var result string
		if err := rows.Scan(&t.ID, &t.Time, &t.Image, &t.Context, &t.Method,
			&t.TradeType, &t.Emotion, &result, &t.RValue, &t.Remark); err != nil {
			logger.Warn().Err(err).Msg("Skipping unreadable trade row")
			continue
		}
		t.Result, _ = models.ParseResult(result)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		logger.Warn().Err(err).Msg("Trade query interrupted, starting empty")
		return []models.Trade{}
	}

	logging.LogPersistence(logger, "load_trades", len(trades), nil)
	return prepareLoaded(trades)
}

// SaveTrades replaces the stored trades in one transaction.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
			return fmt.Errorf("failed to clear trades: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO trades (position, id, time, img, context, method, trade_type, emotion, result, r_value, remark)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, t := range trades {
			if _, err := stmt.ExecContext(ctx, i, t.ID, t.Time, t.Image, t.Context, t.Method,
				t.TradeType, t.Emotion, string(t.Result), t.RValue, t.Remark); err != nil {
				return fmt.Errorf("failed to insert trade %d: %w", t.ID, err)
			}
		}
		return nil
	})

	logging.LogPersistence(logging.WithStore(logging.FromContext(ctx), BackendSQLite), "save_trades", len(trades), err)
	if err != nil {
		return persistenceError(BackendSQLite, "save_trades", err)
	}
	return nil
}

// ============================================================================
// Methods
// ============================================================================

// LoadMethods reads the registry, falling back to the defaults when it has
// never been saved or cannot be read.
func (s *SQLiteStore) LoadMethods(ctx context.Context) []string {
	logger := logging.WithStore(logging.FromContext(ctx), BackendSQLite)

	var saved string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM journal_meta WHERE key = ?`, metaMethodsSaved).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.DefaultMethods()
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read journal metadata, using defaults")
		return registry.DefaultMethods()
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM methods ORDER BY position ASC`)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to query methods, using defaults")
		return registry.DefaultMethods()
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			logger.Warn().Err(err).Msg("Skipping unreadable method row")
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		logger.Warn().Err(err).Msg("Method query interrupted, using defaults")
		return registry.DefaultMethods()
	}

	return prepareMethods(names)
}

// SaveMethods replaces the stored registry in one transaction.
func (s *SQLiteStore) SaveMethods(ctx context.Context, methods []string) error {
	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM methods`); err != nil {
			return fmt.Errorf("failed to clear methods: %w", err)
		}
		for i, name := range methods {
			if _, err := tx.ExecContext(ctx, `INSERT INTO methods (position, name) VALUES (?, ?)`, i, name); err != nil {
				return fmt.Errorf("failed to insert method %q: %w", name, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO journal_meta (key, value) VALUES (?, '1')`, metaMethodsSaved); err != nil {
			return fmt.Errorf("failed to mark methods saved: %w", err)
		}
		return nil
	})

	logging.LogPersistence(logging.WithStore(logging.FromContext(ctx), BackendSQLite), "save_methods", len(methods), err)
	if err != nil {
		return persistenceError(BackendSQLite, "save_methods", err)
	}
	return nil
}

// ============================================================================
// Transactions
// ============================================================================

// withRetry runs fn in a transaction, retrying with exponential backoff
// while the database reports it is busy or locked.
func (s *SQLiteStore) withRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = s.maxElapsed

	operation := func() error {
		err := s.inTx(ctx, fn)
		if err == nil || isBusy(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
