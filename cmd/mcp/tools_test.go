package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tickerlens/internal/service"
)

func testAggregator(t *testing.T) *service.Aggregator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		resource, sym := parts[0], parts[len(parts)-1]
		if sym != "AAPL" && sym != "MSFT" {
			fmt.Fprint(w, "[]")
			return
		}
		switch resource {
		case "profile":
			fmt.Fprintf(w, `[{"symbol":%q,"companyName":"%s Corp","price":100,"mktCap":1e12,"sector":"Technology","industry":"Software"}]`, sym, sym)
		case "income-statement":
			fmt.Fprint(w, `[{"date":"2023-12-31","revenue":1e11,"netIncome":2e10}]`)
		case "ratios-ttm":
			fmt.Fprint(w, `[{"returnOnEquityTTM":0.25}]`)
		default:
			fmt.Fprint(w, "[]")
		}
	}))
	t.Cleanup(srv.Close)
	return service.NewAggregator(service.NewFMPClient("k", srv.URL, 0), service.AggregatorOptions{})
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res, res.Content[0].(mcp.TextContent).Text
}

func TestLookupCompany(t *testing.T) {
	h := handleLookupCompany(testAggregator(t))

	res, text := call(t, h, map[string]any{"ticker": "aapl"})
	assert.False(t, res.IsError)
	assert.True(t, strings.HasPrefix(text, "# AAPL Corp (AAPL)"))
	assert.Contains(t, text, "_No cash flow data available_")
	assert.Contains(t, text, "_Insufficient data for analysis_")

	res, text = call(t, h, map[string]any{"ticker": "ZZZZ"})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "no data found")

	res, _ = call(t, h, map[string]any{})
	assert.True(t, res.IsError)
}

func TestCompareCompanies(t *testing.T) {
	h := handleCompareCompanies(testAggregator(t))

	res, text := call(t, h, map[string]any{"tickers": []any{"AAPL", "MSFT", "ZZZZ"}})
	assert.False(t, res.IsError)
	assert.Contains(t, text, "# Comparison: AAPL, MSFT")
	assert.Contains(t, text, "> Error fetching data for ZZZZ")
	assert.Contains(t, text, "### Comparative Analysis")

	res, text = call(t, h, map[string]any{"tickers": []any{"AAPL", "ZZZZ"}})
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(text, "Not enough valid companies to compare."), text)
	assert.Contains(t, text, "- Error fetching data for ZZZZ")

	res, text = call(t, h, map[string]any{"tickers": []any{"AAPL"}})
	assert.True(t, res.IsError)
	assert.Equal(t, "Please enter at least two valid stock tickers to compare.", text)

	res, _ = call(t, h, map[string]any{})
	assert.True(t, res.IsError)
}
