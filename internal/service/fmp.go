// internal/service/fmp.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/yourusername/tickerlens/internal/model"
)

// Upstream resource paths, relative to the v3 base URL.
const (
	ResourceProfile  = "profile"
	ResourceIncome   = "income-statement"
	ResourceBalance  = "balance-sheet-statement"
	ResourceCashFlow = "cash-flow-statement"
	ResourceRatios   = "ratios-ttm"
	ResourceGrowth   = "financial-growth"
)

const userAgent = "tickerlens/1.0 (+https://github.com/yourusername/tickerlens)"

// APIError is a non-2xx response, or a 200 carrying FMP's error envelope.
type APIError struct {
	Resource   string
	StatusCode int
	Status     string
	Message    string // upstream "Error Message", if any
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: %s", e.Message)
	}
	if e.Status != "" {
		return fmt.Sprintf("API request failed: %s", e.Status)
	}
	return fmt.Sprintf("API request failed: %d", e.StatusCode)
}

// ── FMP Client ──────────────────────────────────────────

type FMPClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFMPClient builds a client. rps caps outbound requests per second; zero
// or less means unlimited.
func NewFMPClient(apiKey, baseURL string, rps int) *FMPClient {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps
	}
	return &FMPClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *FMPClient) Profile(ctx context.Context, symbol string) ([]model.Profile, error) {
	var out []model.Profile
	if err := c.get(ctx, ResourceProfile, symbol, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FMPClient) IncomeStatements(ctx context.Context, symbol string, limit int) ([]model.IncomeStatement, error) {
	var out []model.IncomeStatement
	if err := c.get(ctx, ResourceIncome, symbol, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FMPClient) BalanceSheets(ctx context.Context, symbol string, limit int) ([]model.BalanceSheet, error) {
	var out []model.BalanceSheet
	if err := c.get(ctx, ResourceBalance, symbol, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FMPClient) CashFlows(ctx context.Context, symbol string, limit int) ([]model.CashFlow, error) {
	var out []model.CashFlow
	if err := c.get(ctx, ResourceCashFlow, symbol, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FMPClient) RatiosTTM(ctx context.Context, symbol string) ([]model.KeyRatios, error) {
	var out []model.KeyRatios
	if err := c.get(ctx, ResourceRatios, symbol, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FMPClient) FinancialGrowth(ctx context.Context, symbol string, limit int) ([]model.GrowthMetrics, error) {
	var out []model.GrowthMetrics
	if err := c.get(ctx, ResourceGrowth, symbol, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get fetches {base}/{resource}/{symbol} and decodes the JSON array into out.
func (c *FMPClient) get(ctx context.Context, resource, symbol string, limit int, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		// Wait refuses up front when the next token lands past the deadline,
		// without the context having expired yet.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("waiting for rate limiter: %w", ctxErr)
		}
		if _, ok := ctx.Deadline(); ok {
			return fmt.Errorf("waiting for rate limiter: %v: %w", err, context.DeadlineExceeded)
		}
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	q.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, resource, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", resource, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", resource, err)
	}

	log.Debug().
		Str("resource", resource).
		Str("ticker", symbol).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("FMP request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncateBytes(body, 200),
		}
	}

	// Bad keys and plan limits come back as 200 with {"Error Message": "..."}.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			ErrorMessage string `json:"Error Message"`
		}
		if json.Unmarshal(trimmed, &envelope) == nil && envelope.ErrorMessage != "" {
			return &APIError{
				Resource:   resource,
				StatusCode: resp.StatusCode,
				Message:    truncateString(envelope.ErrorMessage, 200),
			}
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", resource, err)
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func truncateBytes(b []byte, maxLen int) string {
	return truncateString(string(b), maxLen)
}
