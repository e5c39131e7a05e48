// Package journal owns the mutable trade list and method registry and keeps
// them in sync with a store.
package journal

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradejournal/internal/analytics"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/export"
	"tradejournal/internal/id"
	"tradejournal/internal/images"
	"tradejournal/internal/logging"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
	"tradejournal/internal/store"
)

// Service is safe for concurrent use. Mutations are persisted before the
// next mutation starts; reports are computed from a snapshot.
type Service struct {
	mu      sync.RWMutex
	store   store.JournalStore
	images  *images.Store
	trades  []models.Trade
	methods *registry.Methods
	params  analytics.Params
	logger  zerolog.Logger
}

// Options configure a Service.
type Options struct {
	ValuePerR float64
	Location  *time.Location
	Logger    zerolog.Logger
}

// NewService creates a service with an empty journal. Call Load to read the
// store. img may be nil, in which case images are rejected.
func NewService(st store.JournalStore, img *images.Store, opts Options) *Service {
	params := analytics.Params{ValuePerR: opts.ValuePerR, Location: opts.Location}
	if params.Location == nil {
		params.Location = time.Local
	}
	return &Service{
		store:   st,
		images:  img,
		trades:  []models.Trade{},
		methods: registry.Default(),
		params:  params,
		logger:  opts.Logger,
	}
}

// Load replaces the in-memory state with the store's content.
func (s *Service) Load(ctx context.Context) {
	ctx = s.ctx(ctx)
	trades := s.store.LoadTrades(ctx)
	methods := registry.New(s.store.LoadMethods(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = trades
	s.methods = methods

	s.logger.Debug().
		Int("trades", len(trades)).
		Int("methods", methods.Len()).
		Msg("Journal loaded")
}

// NewTrade is the input for AddTrade.
type NewTrade struct {
	Time      string
	Context   string
	Method    string
	TradeType string
	Emotion   string
	Result    models.Result
	// RValue nil means the default for Result.
	RValue *float64
	Remark string
	// Image holds raw bytes, ImageDataURL a base64 payload. At most one is
	// used, Image first.
	Image        []byte
	ImageDataURL string
}

// AddResult reports the recorded trade and any image failure. The trade is
// recorded even when the image could not be stored.
type AddResult struct {
	Trade    models.Trade
	ImageErr error
}

// AddTrade validates, normalizes, records and persists a trade. A
// validation error leaves the journal unchanged. A persistence error is
// returned alongside a populated result; the trade stays in memory.
func (s *Service) AddTrade(ctx context.Context, in NewTrade) (AddResult, error) {
	ctx = s.opCtx(ctx, "add_trade")

	t := models.Trade{
		Time:      strings.TrimSpace(in.Time),
		Context:   strings.TrimSpace(in.Context),
		Method:    strings.TrimSpace(in.Method),
		TradeType: in.TradeType,
		Emotion:   in.Emotion,
		Result:    in.Result,
		Remark:    in.Remark,
	}
	if in.RValue != nil {
		t.RValue = *in.RValue
	} else {
		t.RValue = models.DefaultRValue(in.Result)
	}
	if err := t.Validate(); err != nil {
		return AddResult{}, err
	}
	t.Normalize()

	var res AddResult
	if len(in.Image) > 0 || in.ImageDataURL != "" {
		ref, err := s.storeImage(ctx, in)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Image not stored, recording trade without it")
			res.ImageErr = err
		}
		t.Image = ref
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = id.NextTradeID()
	s.trades = append(s.trades, t)
	res.Trade = t

	logging.LogTradeAdded(s.logger, t.ID, t.Method, string(t.Result), t.RValue)
	return res, s.store.SaveTrades(ctx, s.trades)
}

func (s *Service) storeImage(ctx context.Context, in NewTrade) (string, error) {
	if s.images == nil {
		return "", apperrors.NewImageError("", "image storage is not configured", nil)
	}
	if len(in.Image) > 0 {
		return s.images.Put(ctx, in.Image)
	}
	return s.images.PutDataURL(ctx, in.ImageDataURL)
}

// DeleteTrade removes the trade with the given ID and persists.
func (s *Service) DeleteTrade(ctx context.Context, tradeID int64) error {
	ctx = s.opCtx(ctx, "delete_trade")

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.trades, func(t models.Trade) bool { return t.ID == tradeID })
	if i < 0 {
		return apperrors.Wrapf(apperrors.ErrTradeNotFound, "id %d", tradeID)
	}
	s.trades = slices.Delete(slices.Clone(s.trades), i, i+1)

	logging.LogTradeDeleted(s.logger, tradeID, 1)
	return s.store.SaveTrades(ctx, s.trades)
}

// ClearTrades removes every trade and persists. It returns how many trades
// were removed. Stored images are kept.
func (s *Service) ClearTrades(ctx context.Context) (int, error) {
	ctx = s.opCtx(ctx, "clear_trades")

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.trades)
	s.trades = []models.Trade{}

	logging.LogTradeDeleted(s.logger, 0, n)
	return n, s.store.SaveTrades(ctx, s.trades)
}

// Trades returns a copy of all trades in insertion order.
func (s *Service) Trades() []models.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.trades)
}

// RecentTrades returns up to limit trades, newest first. A limit of zero
// or less returns all of them.
func (s *Service) RecentTrades(limit int) []models.Trade {
	trades := s.Trades()
	slices.Reverse(trades)
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades
}

// Trade looks up a trade by ID.
func (s *Service) Trade(tradeID int64) (models.Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trades {
		if t.ID == tradeID {
			return t, true
		}
	}
	return models.Trade{}, false
}

// Methods returns the registered method names in order.
func (s *Service) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.methods.List()
}

// AddMethod registers a method and persists the registry.
func (s *Service) AddMethod(ctx context.Context, name string) error {
	ctx = s.opCtx(ctx, "add_method")

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.methods.Clone()
	if err := next.Add(name); err != nil {
		return err
	}
	s.methods = next
	return s.store.SaveMethods(ctx, next.List())
}

// RemoveMethod unregisters a method and persists the registry. Trades
// using it are kept.
func (s *Service) RemoveMethod(ctx context.Context, name string) error {
	ctx = s.opCtx(ctx, "remove_method")

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.methods.Clone()
	if err := next.Remove(name); err != nil {
		return err
	}
	s.methods = next
	return s.store.SaveMethods(ctx, next.List())
}

// Params returns the current report parameters.
func (s *Service) Params() analytics.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetValuePerR changes the currency value of one R for later reports.
func (s *Service) SetValuePerR(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.ValuePerR = v
}

// Report computes analytics over a snapshot of the journal.
func (s *Service) Report() *analytics.Report {
	s.mu.RLock()
	trades := slices.Clone(s.trades)
	methods := s.methods.Clone()
	params := s.params
	s.mu.RUnlock()

	return analytics.Compute(trades, methods, params)
}

// ExportCSV writes all trades to an export file in dir.
func (s *Service) ExportCSV(dir string, now time.Time) (string, error) {
	return export.TradesCSVFile(dir, s.Trades(), now)
}

// Image returns the stored image for ref.
func (s *Service) Image(ctx context.Context, ref string) ([]byte, bool) {
	if s.images == nil {
		return nil, false
	}
	return s.images.Get(s.ctx(ctx), ref)
}

// ImageDataURL returns the stored image for ref as a data URL, or "".
func (s *Service) ImageDataURL(ctx context.Context, ref string) string {
	if s.images == nil {
		return ""
	}
	return s.images.DataURL(s.ctx(ctx), ref)
}

// DeleteImage removes a stored image. Trades that reference it keep the
// reference and render without an image.
func (s *Service) DeleteImage(ctx context.Context, ref string) error {
	if s.images == nil {
		return apperrors.NewImageError(ref, "image storage is not configured", nil)
	}
	return s.images.Delete(s.ctx(ctx), ref)
}

// opCtx attaches a logger tagged with operation.
func (s *Service) opCtx(ctx context.Context, operation string) context.Context {
	logger := s.logger
	if l, ok := ctx.Value(logging.LoggerKey).(zerolog.Logger); ok {
		logger = l
	}
	return logging.WithLogger(ctx, logging.WithOperation(logger, operation))
}

// ctx attaches the service logger unless the caller already did.
func (s *Service) ctx(ctx context.Context) context.Context {
	if _, ok := ctx.Value(logging.LoggerKey).(zerolog.Logger); ok {
		return ctx
	}
	return logging.WithLogger(ctx, s.logger)
}
