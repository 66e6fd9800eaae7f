// internal/service/aggregator.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/tickerlens/internal/model"
)

var (
	ErrTickerRequired     = errors.New("ticker is required")
	ErrNoData             = errors.New("no data found")
	ErrTooFewTickers      = errors.New("please enter at least two valid stock tickers to compare")
	ErrTooManyTickers     = errors.New("too many tickers to compare")
	ErrNotEnoughCompanies = errors.New("not enough valid companies to compare")
)

// CompareError is returned when fewer than two tickers could be fetched. It
// carries the per-ticker failures.
type CompareError struct {
	Errors []string
}

func (e *CompareError) Error() string {
	return ErrNotEnoughCompanies.Error() + ". " + strings.Join(e.Errors, ". ")
}

func (e *CompareError) Unwrap() error { return ErrNotEnoughCompanies }

// CompareResult holds the bundles that loaded, in input order, plus a message
// for each ticker that did not.
type CompareResult struct {
	Bundles []*model.CompanyBundle `json:"bundles"`
	Errors  []string               `json:"errors,omitempty"`
}

// ── Aggregator ──────────────────────────────────────────

type AggregatorOptions struct {
	StatementLimit     int
	CacheTTL           time.Duration // zero disables caching
	FetchTimeout       time.Duration // zero means no extra deadline
	MaxCompareTickers  int
	CompareConcurrency int
}

// Aggregator assembles a CompanyBundle per ticker from the six FMP resources.
type Aggregator struct {
	fmp   *FMPClient
	opts  AggregatorOptions
	cache map[string]*cachedBundle
	mu    sync.RWMutex
}

type cachedBundle struct {
	data      *model.CompanyBundle
	expiresAt time.Time
}

func NewAggregator(fmp *FMPClient, opts AggregatorOptions) *Aggregator {
	if opts.StatementLimit < 1 {
		opts.StatementLimit = 5
	}
	if opts.MaxCompareTickers < 2 {
		opts.MaxCompareTickers = 6
	}
	if opts.CompareConcurrency < 1 {
		opts.CompareConcurrency = 1
	}
	return &Aggregator{
		fmp:   fmp,
		opts:  opts,
		cache: make(map[string]*cachedBundle),
	}
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Fetch loads every resource for ticker. The profile is requested first; an
// empty profile fails with ErrNoData and nothing else is requested. Any other
// failure fails the whole bundle.
func (a *Aggregator) Fetch(ctx context.Context, ticker string) (*model.CompanyBundle, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return nil, ErrTickerRequired
	}

	if b := a.cached(symbol); b != nil {
		log.Debug().Str("ticker", symbol).Msg("Bundle cache hit")
		return b, nil
	}

	if a.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.FetchTimeout)
		defer cancel()
	}

	profile, err := a.fmp.Profile(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w for ticker %q", ErrNoData, symbol)
	}

	b := &model.CompanyBundle{Symbol: symbol, Profile: profile}
	limit := a.opts.StatementLimit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.IncomeStatement, err = a.fmp.IncomeStatements(gctx, symbol, limit)
		return err
	})
	g.Go(func() (err error) {
		b.BalanceSheet, err = a.fmp.BalanceSheets(gctx, symbol, limit)
		return err
	})
	g.Go(func() (err error) {
		b.CashFlow, err = a.fmp.CashFlows(gctx, symbol, limit)
		return err
	})
	g.Go(func() (err error) {
		b.KeyRatios, err = a.fmp.RatiosTTM(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		b.GrowthMetrics, err = a.fmp.FinancialGrowth(gctx, symbol, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.Normalize(limit)
	b.FetchedAt = time.Now().UTC()

	a.store(symbol, b)

	log.Info().
		Str("ticker", symbol).
		Str("company", b.DisplayName()).
		Int("statements", len(b.IncomeStatement)).
		Msg("Company bundle fetched")

	return b, nil
}

// Compare fetches every ticker in parallel, keeping input order. Blank and
// repeated tickers are dropped before the count is checked.
func (a *Aggregator) Compare(ctx context.Context, tickers []string) (*CompareResult, error) {
	symbols := CleanTickers(tickers)
	if len(symbols) < 2 {
		return nil, ErrTooFewTickers
	}
	if len(symbols) > a.opts.MaxCompareTickers {
		return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyTickers, a.opts.MaxCompareTickers)
	}

	bundles := make([]*model.CompanyBundle, len(symbols))
	failures := make([]error, len(symbols))

	sem := make(chan struct{}, a.opts.CompareConcurrency)
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				failures[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			bundles[i], failures[i] = a.Fetch(ctx, sym)
		}(i, sym)
	}
	wg.Wait()

	result := &CompareResult{}
	for i, sym := range symbols {
		if failures[i] != nil {
			log.Warn().Err(failures[i]).Str("ticker", sym).Msg("Compare fetch failed")
			result.Errors = append(result.Errors, fmt.Sprintf("Error fetching data for %s: %v", sym, failures[i]))
			continue
		}
		result.Bundles = append(result.Bundles, bundles[i])
	}

	if len(result.Bundles) < 2 {
		return nil, &CompareError{Errors: result.Errors}
	}
	return result, nil
}

// CleanTickers normalizes, drops blanks and removes repeats.
func CleanTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	var out []string
	for _, t := range tickers {
		sym := NormalizeTicker(t)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// SplitTickers splits comma separated input, e.g. "AAPL, MSFT".
func SplitTickers(values ...string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func (a *Aggregator) cached(symbol string) *model.CompanyBundle {
	if a.opts.CacheTTL <= 0 {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if c, ok := a.cache[symbol]; ok && time.Now().Before(c.expiresAt) {
		return c.data
	}
	return nil
}

func (a *Aggregator) store(symbol string, b *model.CompanyBundle) {
	if a.opts.CacheTTL <= 0 {
		return
	}
	a.mu.Lock()
	a.cache[symbol] = &cachedBundle{data: b, expiresAt: time.Now().Add(a.opts.CacheTTL)}
	a.mu.Unlock()
}

// ClearCache removes expired entries
func (a *Aggregator) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now()
	for k, v := range a.cache {
		if now.After(v.expiresAt) {
			delete(a.cache, k)
		}
	}
}

// StartCacheJanitor sweeps expired bundles until ctx is done.
func (a *Aggregator) StartCacheJanitor(ctx context.Context, every time.Duration) {
	if a.opts.CacheTTL <= 0 || every <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.ClearCache()
			}
		}
	}()
}
