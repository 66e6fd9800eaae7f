package view

import (
	"time"

	"github.com/yourusername/tickerlens/internal/analysis"
	"github.com/yourusername/tickerlens/internal/format"
	"github.com/yourusername/tickerlens/internal/model"
)

type cb = *model.CompanyBundle

// Compare tables have one column per company and read the latest period.

var compareProfileRows = []rowSpec[cb]{
	plain("Price", func(b cb) string { return profileValue(b, func(p *model.Profile) string { return format.Price(p.Price) }) }),
	plain("Market Cap", func(b cb) string { return profileValue(b, func(p *model.Profile) string { return format.Currency(p.MktCap) }) }),
	plain("P/E Ratio", func(b cb) string {
		if r := b.LatestRatios(); r != nil && r.PERatioTTM != nil {
			return format.FixedPtr(r.PERatioTTM)
		}
		return profileValue(b, func(p *model.Profile) string { return format.FixedPtr(p.PE) })
	}),
	plain("EPS", func(b cb) string {
		if inc := b.LatestIncome(); inc != nil {
			return format.Currency(inc.EPS)
		}
		return profileValue(b, func(p *model.Profile) string { return format.CurrencyPtr(p.EPS) })
	}),
	plain("Beta", func(b cb) string { return profileValue(b, func(p *model.Profile) string { return format.FixedPtr(p.Beta) }) }),
	plain("Last Dividend", func(b cb) string {
		return profileValue(b, func(p *model.Profile) string {
			if p.LastDiv == nil {
				return format.NA
			}
			return format.Price(*p.LastDiv)
		})
	}),
	plain("Sector", func(b cb) string { return profileValue(b, func(p *model.Profile) string { return format.Text(p.Sector) }) }),
	plain("Industry", func(b cb) string { return profileValue(b, func(p *model.Profile) string { return format.Text(p.Industry) }) }),
}

func profileValue(b cb, f func(*model.Profile) string) string {
	p := b.LatestProfile()
	if p == nil {
		return format.NA
	}
	return f(p)
}

var compareIncomeRows = []rowSpec[cb]{
	plain("Revenue", func(b cb) string { return format.Currency(b.LatestIncome().Revenue) }),
	plain("Gross Profit", func(b cb) string { return format.Currency(b.LatestIncome().GrossProfit) }),
	plain("Gross Margin", func(b cb) string { return analysis.GrossMargin(b.LatestIncome()).Percent() }),
	plain("Operating Income", func(b cb) string { return format.Currency(b.LatestIncome().OperatingIncome) }),
	plain("Operating Margin", func(b cb) string { return analysis.OperatingMargin(b.LatestIncome()).Percent() }),
	emph("Net Income", func(b cb) string { return format.Currency(b.LatestIncome().NetIncome) }),
	plain("Net Profit Margin", func(b cb) string { return analysis.NetMargin(b.LatestIncome()).Percent() }),
	plain("EPS", func(b cb) string { return format.Currency(b.LatestIncome().EPS) }),
}

var compareBalanceRows = []rowSpec[cb]{
	emph("Total Assets", func(b cb) string { return format.Currency(b.LatestBalance().TotalAssets) }),
	emph("Total Liabilities", func(b cb) string { return format.Currency(b.LatestBalance().TotalLiabilities) }),
	emph("Total Equity", func(b cb) string { return format.Currency(b.LatestBalance().TotalStockholdersEquity) }),
	plain("Cash & Equivalents", func(b cb) string { return format.Currency(b.LatestBalance().CashAndCashEquivalents) }),
	plain("Cash to Assets Ratio", func(b cb) string { return analysis.CashToAssets(b.LatestBalance()).Percent() }),
	plain("Total Current Assets", func(b cb) string { return format.Currency(b.LatestBalance().TotalCurrentAssets) }),
	plain("Total Debt", func(b cb) string { return format.Currency(b.LatestBalance().TotalDebt) }),
	plain("Debt to Equity Ratio", func(b cb) string { return analysis.DebtToEquity(b.LatestBalance()).Fixed() }),
	plain("Current Ratio", func(b cb) string { return analysis.CurrentRatio(b.LatestBalance()).Fixed() }),
}

var compareCashFlowRows = []rowSpec[cb]{
	emph("Operating Cash Flow", func(b cb) string {
		return format.Currency(b.LatestCashFlow().NetCashProvidedByOperatingActivities)
	}),
	plain("Operating Cash Flow Margin", func(b cb) string {
		return analysis.OperatingCashFlowMargin(b.LatestCashFlow(), b.LatestIncome()).Percent()
	}),
	plain("Cash Flow to Net Income Ratio", func(b cb) string {
		return analysis.CashFlowToNetIncome(b.LatestCashFlow(), b.LatestIncome()).Fixed()
	}),
	plain("Capital Expenditures", func(b cb) string { return format.Currency(b.LatestCashFlow().CapitalExpenditure) }),
	emph("Free Cash Flow", func(b cb) string { return format.Currency(b.LatestCashFlow().FreeCashFlow) }),
	plain("FCF Yield (approx.)", func(b cb) string {
		mktCap := 0.0
		if p := b.LatestProfile(); p != nil {
			mktCap = p.MktCap
		}
		return analysis.FCFYield(b.LatestCashFlow(), mktCap).Percent()
	}),
	plain("Dividends Paid", func(b cb) string { return format.Currency(b.LatestCashFlow().DividendsPaid) }),
	plain("Share Repurchases", func(b cb) string { return format.Currency(b.LatestCashFlow().CommonStockRepurchased) }),
}

func ratioOf(label string, pctFmt bool, v func(*model.KeyRatios) *float64) rowSpec[cb] {
	return plain(label, func(b cb) string {
		if pctFmt {
			return format.PercentPtr(v(b.LatestRatios()))
		}
		return format.FixedPtr(v(b.LatestRatios()))
	})
}

var compareRatioRows = []rowSpec[cb]{
	section[cb]("Profitability"),
	ratioOf("Return on Equity (ROE)", true, func(r *kr) *float64 { return r.ReturnOnEquityTTM }),
	ratioOf("Return on Assets (ROA)", true, func(r *kr) *float64 { return r.ReturnOnAssetsTTM }),
	ratioOf("Profit Margin", true, func(r *kr) *float64 { return r.NetProfitMarginTTM }),
	ratioOf("Operating Margin", true, func(r *kr) *float64 { return r.OperatingProfitMarginTTM }),
	section[cb]("Valuation"),
	ratioOf("P/E Ratio", false, func(r *kr) *float64 { return r.PERatioTTM }),
	ratioOf("PEG Ratio", false, func(r *kr) *float64 { return r.PEGRatioTTM }),
	ratioOf("Price to Book", false, func(r *kr) *float64 { return r.PriceToBookRatioTTM }),
	ratioOf("Price to Sales", false, func(r *kr) *float64 { return r.PriceToSalesRatioTTM }),
	section[cb]("Liquidity & Debt"),
	ratioOf("Current Ratio", false, func(r *kr) *float64 { return r.CurrentRatioTTM }),
	ratioOf("Quick Ratio", false, func(r *kr) *float64 { return r.QuickRatioTTM }),
	ratioOf("Debt to Equity", false, func(r *kr) *float64 { return r.DebtEquityRatioTTM }),
	ratioOf("Interest Coverage", false, func(r *kr) *float64 { return r.InterestCoverageTTM }),
}

func growthOf(label string, v func(*model.GrowthMetrics) *float64) rowSpec[cb] {
	return signed(label, func(b cb) *float64 { return v(b.LatestGrowth()) })
}

var compareGrowthRows = []rowSpec[cb]{
	section[cb]("Revenue & Profit"),
	growthOf("Revenue Growth", func(g *gm) *float64 { return g.RevenueGrowth }),
	growthOf("Gross Profit Growth", func(g *gm) *float64 { return g.GrossProfitGrowth }),
	growthOf("Operating Income Growth", func(g *gm) *float64 { return g.OperatingIncomeGrowth }),
	growthOf("Net Income Growth", func(g *gm) *float64 { return g.NetIncomeGrowth }),
	growthOf("EPS Growth", func(g *gm) *float64 { return g.EPSGrowth }),
	section[cb]("Cash Flow"),
	growthOf("Operating Cash Flow Growth", func(g *gm) *float64 { return g.OperatingCashFlowGrowth }),
	growthOf("Free Cash Flow Growth", func(g *gm) *float64 { return g.FreeCashFlowGrowth }),
	section[cb]("Balance Sheet"),
	growthOf("Assets Growth", func(g *gm) *float64 { return g.TotalAssetsGrowth }),
	growthOf("Equity Growth", func(g *gm) *float64 { return g.StockholdersEquityGrowth }),
}

// BuildComparisonPage resets s and fills it with the comparison charts.
// warnings are per-ticker fetch failures that did not block the comparison.
func BuildComparisonPage(s *Session, bundles []*model.CompanyBundle, warnings []string) *ComparisonPage {
	s.Reset()

	page := &ComparisonPage{
		SessionID:   s.ID,
		Generation:  s.Generation(),
		Warnings:    warnings,
		GeneratedAt: time.Now().UTC(),
	}
	for _, b := range bundles {
		page.Symbols = append(page.Symbols, b.Symbol)
	}

	page.Profiles = Table{
		LabelHeader: "Metric",
		Columns:     profileHeaders(bundles),
		Rows:        buildRows(bundles, compareProfileRows),
	}

	page.Sections = []Section{
		compareIncomeSection(s, having(bundles, func(b cb) bool { return b.LatestIncome() != nil })),
		compareBalanceSection(s, having(bundles, func(b cb) bool { return b.LatestBalance() != nil })),
		compareCashFlowSection(s, having(bundles, func(b cb) bool { return b.LatestCashFlow() != nil })),
		compareTableSection("ratios", "Key Ratios", "Ratio", "No key ratios data available for comparison",
			having(bundles, func(b cb) bool { return b.LatestRatios() != nil }), compareRatioRows),
		compareTableSection("growth", "Growth Metrics", "Metric", "No growth metrics data available for comparison",
			having(bundles, func(b cb) bool { return b.LatestGrowth() != nil }), compareGrowthRows),
	}

	if c, err := analysis.Compare(bundles); err == nil {
		page.Comparison = c
	} else {
		page.ComparisonNote = "Insufficient data for comparison analysis"
	}

	return page
}

func having(bundles []cb, ok func(cb) bool) []cb {
	var out []cb
	for _, b := range bundles {
		if ok(b) {
			out = append(out, b)
		}
	}
	return out
}

func symbols(bundles []cb) []string {
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.Symbol
	}
	return out
}

func profileHeaders(bundles []cb) []string {
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.DisplayName() + " (" + b.Symbol + ")"
	}
	return out
}

func latestSeries(bundles []cb, v func(cb) float64) []float64 {
	out := make([]float64, len(bundles))
	for i, b := range bundles {
		out[i] = format.Millions(v(b))
	}
	return out
}

func compareIncomeSection(s *Session, bundles []cb) Section {
	sec := Section{Key: "income", Title: "Income Statement"}
	if len(bundles) == 0 {
		sec.Placeholder = "No income statement data available for comparison"
		return sec
	}
	sec.Chart = s.Place(Chart{
		Slot:   SlotIncome,
		Title:  "Revenue vs Net Income (in Millions)",
		Labels: symbols(bundles),
		Datasets: []Dataset{
			dataset("Revenue", 0, latestSeries(bundles, func(b cb) float64 { return b.LatestIncome().Revenue })),
			dataset("Net Income", 1, latestSeries(bundles, func(b cb) float64 { return b.LatestIncome().NetIncome })),
		},
		BeginAtZero: true,
	})
	sec.Tables = []Table{{LabelHeader: "Metric", Columns: symbols(bundles), Rows: buildRows(bundles, compareIncomeRows)}}
	return sec
}

func compareBalanceSection(s *Session, bundles []cb) Section {
	sec := Section{Key: "balance", Title: "Balance Sheet"}
	if len(bundles) == 0 {
		sec.Placeholder = "No balance sheet data available for comparison"
		return sec
	}
	sec.Chart = s.Place(Chart{
		Slot:   SlotBalance,
		Title:  "Assets, Liabilities & Equity (in Millions)",
		Labels: symbols(bundles),
		Datasets: []Dataset{
			dataset("Total Assets", 0, latestSeries(bundles, func(b cb) float64 { return b.LatestBalance().TotalAssets })),
			dataset("Total Liabilities", 1, latestSeries(bundles, func(b cb) float64 { return b.LatestBalance().TotalLiabilities })),
			dataset("Total Equity", 2, latestSeries(bundles, func(b cb) float64 { return b.LatestBalance().TotalStockholdersEquity })),
		},
		BeginAtZero: true,
	})
	sec.Tables = []Table{{LabelHeader: "Metric", Columns: symbols(bundles), Rows: buildRows(bundles, compareBalanceRows)}}
	return sec
}

func compareCashFlowSection(s *Session, bundles []cb) Section {
	sec := Section{Key: "cashflow", Title: "Cash Flow"}
	if len(bundles) == 0 {
		sec.Placeholder = "No cash flow data available for comparison"
		return sec
	}
	sec.Chart = s.Place(Chart{
		Slot:   SlotCashFlow,
		Title:  "Cash Flow Comparison (in Millions)",
		Labels: symbols(bundles),
		Datasets: []Dataset{
			dataset("Operating Cash Flow", 0, latestSeries(bundles, func(b cb) float64 {
				return b.LatestCashFlow().NetCashProvidedByOperatingActivities
			})),
			dataset("Free Cash Flow", 2, latestSeries(bundles, func(b cb) float64 { return b.LatestCashFlow().FreeCashFlow })),
		},
		BeginAtZero: false,
	})
	sec.Tables = []Table{{LabelHeader: "Metric", Columns: symbols(bundles), Rows: buildRows(bundles, compareCashFlowRows)}}
	return sec
}

func compareTableSection(key, title, labelHeader, placeholder string, bundles []cb, rows []rowSpec[cb]) Section {
	sec := Section{Key: key, Title: title}
	if len(bundles) == 0 {
		sec.Placeholder = placeholder
		return sec
	}
	sec.Tables = []Table{{LabelHeader: labelHeader, Columns: symbols(bundles), Rows: buildRows(bundles, rows)}}
	return sec
}
