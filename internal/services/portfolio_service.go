package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gerardrbentley/fidelity-account-overview/internal/config"
	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
	ws "github.com/gerardrbentley/fidelity-account-overview/internal/websocket"
)

// PortfolioInfo describes the currently loaded dataset.
type PortfolioInfo struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
	RawRows     int       `json:"raw_rows"`
	CleanRows   int       `json:"clean_rows"`
}

// PortfolioService owns the current portfolio state. A single dataset is
// active at a time; uploads replace it. All pipeline results are memoized
// by content fingerprint so repeated reads of an unchanged portfolio do
// not recompute.
type PortfolioService struct {
	mu     sync.RWMutex
	logger *slog.Logger
	hub    ws.Broadcaster
	cache  *holdings.Cache

	raw         *holdings.Dataset
	cleaned     *holdings.Dataset
	fingerprint string
	selection   holdings.Selection
	source      string
	loadedAt    time.Time
}

// NewPortfolioService creates the portfolio service. hub may be nil when
// running without live updates, as the CLI does.
func NewPortfolioService(cfg config.PortfolioConfig, hub ws.Broadcaster, logger *slog.Logger) *PortfolioService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortfolioService{
		logger: logger.With(slog.String("service", "portfolio")),
		hub:    hub,
		cache:  holdings.NewCache(cfg.CacheEntries),
	}
}

// LoadCSV reads, cleans and installs a new portfolio from r. The previous
// dataset and selection are replaced and connected dashboard clients are
// told to refresh.
func (s *PortfolioService) LoadCSV(ctx context.Context, r io.Reader, source string) (*PortfolioInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	fingerprint := holdings.Fingerprint(data)

	raw, err := holdings.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	cleaned, err := s.cache.Do(holdings.CleanKey(fingerprint), func() (*holdings.Dataset, error) {
		return holdings.Clean(raw)
	})
	if err != nil {
		return nil, err
	}

	accounts, err := cleaned.Distinct(holdings.ColumnAccountName)
	if err != nil {
		return nil, err
	}
	symbols, err := cleaned.Distinct(holdings.ColumnSymbol)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.raw = raw
	s.cleaned = cleaned
	s.fingerprint = fingerprint
	s.selection = holdings.Selection{Accounts: accounts, Symbols: symbols}
	s.source = source
	s.loadedAt = time.Now()
	info := s.infoLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "portfolio loaded",
		slog.String("source", source),
		slog.String("fingerprint", fingerprint[:12]),
		slog.Int("raw_rows", info.RawRows),
		slog.Int("clean_rows", info.CleanRows))

	if s.hub != nil {
		s.hub.BroadcastDataUpdate(ws.EventPortfolioUploaded, info)
	}
	return info, nil
}

func (s *PortfolioService) infoLocked() *PortfolioInfo {
	return &PortfolioInfo{
		Source:      s.source,
		Fingerprint: s.fingerprint,
		LoadedAt:    s.loadedAt,
		RawRows:     s.raw.Len(),
		CleanRows:   s.cleaned.Len(),
	}
}

// Info returns metadata about the loaded portfolio.
func (s *PortfolioService) Info(ctx context.Context) (*PortfolioInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cleaned == nil {
		return nil, ErrNoPortfolio
	}
	return s.infoLocked(), nil
}

// Raw returns the dataset as parsed from the upload, before cleaning.
func (s *PortfolioService) Raw(ctx context.Context) (*holdings.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.raw == nil {
		return nil, ErrNoPortfolio
	}
	return s.raw, nil
}

// Cleaned returns the cleaned dataset.
func (s *PortfolioService) Cleaned(ctx context.Context) (*holdings.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cleaned == nil {
		return nil, ErrNoPortfolio
	}
	return s.cleaned, nil
}

// Accounts lists the distinct account names in first-appearance order.
func (s *PortfolioService) Accounts(ctx context.Context) ([]string, error) {
	cleaned, err := s.Cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return cleaned.Distinct(holdings.ColumnAccountName)
}

// Symbols lists the distinct symbols held by the currently selected
// accounts, in first-appearance order. Narrowing the account selection
// narrows the symbol choices with it.
func (s *PortfolioService) Symbols(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	cleaned := s.cleaned
	accounts := s.selection.Accounts
	s.mu.RUnlock()
	if cleaned == nil {
		return nil, ErrNoPortfolio
	}
	return holdings.SymbolsForAccounts(cleaned, accounts)
}

// Selection returns the active account/symbol selection.
func (s *PortfolioService) Selection(ctx context.Context) (holdings.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cleaned == nil {
		return holdings.Selection{}, ErrNoPortfolio
	}
	return s.selection, nil
}

// UpdateSelection replaces the active selection and tells dashboard
// clients to refresh. Values that match nothing simply select nothing.
func (s *PortfolioService) UpdateSelection(ctx context.Context, sel holdings.Selection) error {
	s.mu.Lock()
	if s.cleaned == nil {
		s.mu.Unlock()
		return ErrNoPortfolio
	}
	s.selection = sel
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "selection updated",
		slog.Int("accounts", len(sel.Accounts)),
		slog.Int("symbols", len(sel.Symbols)))

	if s.hub != nil {
		s.hub.BroadcastDataUpdate(ws.EventSelectionChanged, sel)
	}
	return nil
}

// Filtered returns the cleaned dataset restricted to the active selection.
func (s *PortfolioService) Filtered(ctx context.Context) (*holdings.Dataset, error) {
	s.mu.RLock()
	cleaned := s.cleaned
	fingerprint := s.fingerprint
	sel := s.selection
	s.mu.RUnlock()
	if cleaned == nil {
		return nil, ErrNoPortfolio
	}

	return s.cache.Do(holdings.FilterKey(fingerprint, sel), func() (*holdings.Dataset, error) {
		return holdings.Filter(cleaned, sel)
	})
}

// Summary returns the selection's holdings grouped by account with every
// numeric column summed.
func (s *PortfolioService) Summary(ctx context.Context) (*holdings.Dataset, error) {
	filtered, err := s.Filtered(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	fingerprint := s.fingerprint
	sel := s.selection
	s.mu.RUnlock()

	key := "summary|" + holdings.FilterKey(fingerprint, sel)
	return s.cache.Do(key, func() (*holdings.Dataset, error) {
		return holdings.SummarizeByAccount(filtered)
	})
}

// SymbolSummary returns the selection's holdings grouped by symbol, merging
// positions held across several accounts.
func (s *PortfolioService) SymbolSummary(ctx context.Context) (*holdings.Dataset, error) {
	filtered, err := s.Filtered(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	fingerprint := s.fingerprint
	sel := s.selection
	s.mu.RUnlock()

	key := "symbol_summary|" + holdings.FilterKey(fingerprint, sel)
	return s.cache.Do(key, func() (*holdings.Dataset, error) {
		return holdings.SummarizeBySymbol(filtered)
	})
}

// GrandTotal returns the summed current value and total gain/loss of the
// active selection.
func (s *PortfolioService) GrandTotal(ctx context.Context) (currentValue, totalGainLoss float64, err error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return 0, 0, err
	}
	return holdings.GrandTotal(summary)
}
