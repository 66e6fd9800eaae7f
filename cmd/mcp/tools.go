package main

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yourusername/tickerlens/internal/render"
	"github.com/yourusername/tickerlens/internal/service"
	"github.com/yourusername/tickerlens/internal/view"
)

func registerTools(s *server.MCPServer, agg *service.Aggregator) {
	s.AddTool(createLookupCompanyTool(), handleLookupCompany(agg))
	s.AddTool(createCompareCompaniesTool(), handleCompareCompanies(agg))
}

func createLookupCompanyTool() mcp.Tool {
	return mcp.NewTool("lookup_company",
		mcp.WithDescription("Look up one listed company: profile, the last five income statements, balance sheets and cash flows, trailing ratios, growth metrics and a rule-based analysis summary. Returns Markdown."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Stock ticker symbol (e.g., AAPL)")),
	)
}

func createCompareCompaniesTool() mcp.Tool {
	return mcp.NewTool("compare_companies",
		mcp.WithDescription("Compare two or more listed companies side by side on profile, latest statements, ratios and growth, with a comparative analysis. Tickers that fail to load are reported and skipped. Returns Markdown."),
		mcp.WithArray("tickers", mcp.WithStringItems(), mcp.Required(), mcp.Description("Ticker symbols to compare (e.g., ['AAPL', 'MSFT'])")),
	)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// Tool calls have no browser to draw in, so each one gets a throwaway session.
func withSession(build func(s *view.Session) string) string {
	s := view.NewSession()
	defer s.Close()
	return build(s)
}

func handleLookupCompany(agg *service.Aggregator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil {
			return errorResult("Error: ticker parameter is required"), nil
		}

		b, err := agg.Fetch(ctx, ticker)
		if err != nil {
			return errorResult("An error occurred: " + err.Error() + ". Check API key or ticker symbol."), nil
		}

		return textResult(withSession(func(s *view.Session) string {
			return render.CompanyMarkdown(view.BuildCompanyPage(s, b))
		})), nil
	}
}

func handleCompareCompanies(agg *service.Aggregator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tickers := request.GetStringSlice("tickers", nil)
		if len(tickers) == 0 {
			return errorResult("Error: tickers parameter is required"), nil
		}

		res, err := agg.Compare(ctx, service.SplitTickers(tickers...))
		if err != nil {
			var ce *service.CompareError
			switch {
			case errors.As(err, &ce):
				msg := "Not enough valid companies to compare."
				for _, e := range ce.Errors {
					msg += "\n- " + e
				}
				return errorResult(msg), nil
			case errors.Is(err, service.ErrTooFewTickers):
				return errorResult("Please enter at least two valid stock tickers to compare."), nil
			}
			return errorResult("An error occurred during comparison: " + err.Error()), nil
		}

		return textResult(withSession(func(s *view.Session) string {
			return render.ComparisonMarkdown(view.BuildComparisonPage(s, res.Bundles, res.Errors))
		})), nil
	}
}
