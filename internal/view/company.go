package view

import (
	"time"

	"github.com/yourusername/tickerlens/internal/analysis"
	"github.com/yourusername/tickerlens/internal/format"
	"github.com/yourusername/tickerlens/internal/model"
)

type (
	is = model.IncomeStatement
	bs = model.BalanceSheet
	cf = model.CashFlow
)

var incomeRows = []rowSpec[is]{
	section[is]("Revenue"),
	plain("Revenue", func(s is) string { return format.Currency(s.Revenue) }),
	plain("Cost of Revenue", func(s is) string { return format.Currency(s.CostOfRevenue) }),
	emph("Gross Profit", func(s is) string { return format.Currency(s.GrossProfit) }),
	plain("Gross Margin", func(s is) string { return analysis.GrossMargin(&s).Percent() }),

	section[is]("Operating Expenses"),
	plain("Research & Development", func(s is) string { return format.Currency(s.ResearchAndDevelopmentExpenses) }),
	plain("SG&A Expenses", func(s is) string { return format.Currency(s.SellingGeneralAndAdministrativeExpenses) }),
	plain("Operating Expenses", func(s is) string { return format.Currency(s.OperatingExpenses) }),
	emph("Operating Income", func(s is) string { return format.Currency(s.OperatingIncome) }),
	plain("Operating Margin", func(s is) string { return analysis.OperatingMargin(&s).Percent() }),

	section[is]("Other Income & Expenses"),
	plain("Interest Expense", func(s is) string { return format.Currency(s.InterestExpense) }),
	plain("Income Before Tax", func(s is) string { return format.Currency(s.IncomeBeforeTax) }),
	plain("Income Tax Expense", func(s is) string { return format.Currency(s.IncomeTaxExpense) }),
	plain("Effective Tax Rate", func(s is) string { return analysis.EffectiveTaxRate(&s).Percent() }),

	section[is]("Profitability"),
	emph("Net Income", func(s is) string { return format.Currency(s.NetIncome) }),
	plain("Net Profit Margin", func(s is) string { return analysis.NetMargin(&s).Percent() }),
	emph("EPS (Basic)", func(s is) string { return format.Currency(s.EPS) }),
	plain("EPS (Diluted)", func(s is) string {
		if s.EPSDiluted == 0 {
			return format.Currency(s.EPS)
		}
		return format.Currency(s.EPSDiluted)
	}),
	plain("Weighted Avg Shares", func(s is) string { return format.Shares(s.WeightedAverageShsOut) }),
}

var balanceRows = []rowSpec[bs]{
	section[bs]("Assets"),
	plain("Cash & Equivalents", func(s bs) string { return format.Currency(s.CashAndCashEquivalents) }),
	plain("Short-term Investments", func(s bs) string { return format.Currency(s.ShortTermInvestments) }),
	plain("Accounts Receivable", func(s bs) string { return format.Currency(s.NetReceivables) }),
	plain("Inventory", func(s bs) string { return format.Currency(s.Inventory) }),
	emph("Total Current Assets", func(s bs) string { return format.Currency(s.TotalCurrentAssets) }),
	plain("Property, Plant & Equipment", func(s bs) string { return format.Currency(s.PropertyPlantEquipmentNet) }),
	plain("Long-term Investments", func(s bs) string { return format.Currency(s.LongTermInvestments) }),
	plain("Goodwill & Intangibles", func(s bs) string { return format.Currency(s.Goodwill + s.IntangibleAssets) }),
	emph("Total Assets", func(s bs) string { return format.Currency(s.TotalAssets) }),

	section[bs]("Liabilities"),
	plain("Accounts Payable", func(s bs) string { return format.Currency(s.AccountPayables) }),
	plain("Short-term Debt", func(s bs) string { return format.Currency(s.ShortTermDebt) }),
	emph("Total Current Liabilities", func(s bs) string { return format.Currency(s.TotalCurrentLiabilities) }),
	plain("Long-term Debt", func(s bs) string { return format.Currency(s.LongTermDebt) }),
	emph("Total Liabilities", func(s bs) string { return format.Currency(s.TotalLiabilities) }),

	section[bs]("Shareholders' Equity"),
	plain("Common Stock", func(s bs) string { return format.Currency(s.CommonStock) }),
	plain("Retained Earnings", func(s bs) string { return format.Currency(s.RetainedEarnings) }),
	emph("Total Shareholders' Equity", func(s bs) string { return format.Currency(s.TotalStockholdersEquity) }),

	section[bs]("Key Metrics"),
	emph("Total Debt", func(s bs) string { return format.Currency(s.TotalDebt) }),
	plain("Net Debt", func(s bs) string { return format.Currency(analysis.NetDebt(&s)) }),
	plain("Working Capital", func(s bs) string { return format.Currency(analysis.WorkingCapital(&s)) }),
}

var cashFlowRows = []rowSpec[cf]{
	section[cf]("Operating Activities"),
	plain("Net Income", func(s cf) string { return format.Currency(s.NetIncome) }),
	plain("Depreciation & Amortization", func(s cf) string { return format.Currency(s.DepreciationAndAmortization) }),
	plain("Change in Working Capital", func(s cf) string { return format.Currency(s.ChangeInWorkingCapital) }),
	emph("Net Cash from Operations", func(s cf) string { return format.Currency(s.NetCashProvidedByOperatingActivities) }),

	section[cf]("Investing Activities"),
	plain("Capital Expenditures", func(s cf) string { return format.Currency(s.CapitalExpenditure) }),
	plain("Acquisitions", func(s cf) string { return format.Currency(s.AcquisitionsNet) }),
	plain("Purchase of Investments", func(s cf) string { return format.Currency(s.PurchasesOfInvestments) }),
	plain("Sale of Investments", func(s cf) string { return format.Currency(s.SalesMaturitiesOfInvestments) }),
	emph("Net Cash from Investing", func(s cf) string { return format.Currency(s.NetCashUsedForInvestingActivities) }),

	section[cf]("Financing Activities"),
	plain("Debt Repayment", func(s cf) string { return format.Currency(s.DebtRepayment) }),
	plain("Common Stock Issued", func(s cf) string { return format.Currency(s.CommonStockIssued) }),
	plain("Common Stock Repurchased", func(s cf) string { return format.Currency(s.CommonStockRepurchased) }),
	plain("Dividends Paid", func(s cf) string { return format.Currency(s.DividendsPaid) }),
	emph("Net Cash from Financing", func(s cf) string { return format.Currency(s.NetCashUsedProvidedByFinancingActivities) }),

	section[cf]("Summary"),
	plain("Net Change in Cash", func(s cf) string { return format.Currency(s.NetChangeInCash) }),
	emph("Free Cash Flow", func(s cf) string { return format.Currency(s.FreeCashFlow) }),
}

type ratioGroup struct {
	title string
	rows  []rowSpec[model.KeyRatios]
}

type kr = model.KeyRatios

func pct(label string, v func(kr) *float64) rowSpec[kr] {
	return plain(label, func(r kr) string { return format.PercentPtr(v(r)) })
}

func fixed(label string, v func(kr) *float64) rowSpec[kr] {
	return plain(label, func(r kr) string { return format.FixedPtr(v(r)) })
}

var ratioGroups = []ratioGroup{
	{"Profitability", []rowSpec[kr]{
		pct("Return on Equity (ROE)", func(r kr) *float64 { return r.ReturnOnEquityTTM }),
		pct("Return on Assets (ROA)", func(r kr) *float64 { return r.ReturnOnAssetsTTM }),
		pct("Profit Margin", func(r kr) *float64 { return r.NetProfitMarginTTM }),
		pct("Operating Margin", func(r kr) *float64 { return r.OperatingProfitMarginTTM }),
		pct("Gross Margin", func(r kr) *float64 { return r.GrossProfitMarginTTM }),
	}},
	{"Valuation", []rowSpec[kr]{
		fixed("P/E Ratio", func(r kr) *float64 { return r.PERatioTTM }),
		fixed("PEG Ratio", func(r kr) *float64 { return r.PEGRatioTTM }),
		fixed("Price to Book", func(r kr) *float64 { return r.PriceToBookRatioTTM }),
		fixed("Price to Sales", func(r kr) *float64 { return r.PriceToSalesRatioTTM }),
		fixed("Enterprise Value / EBITDA", func(r kr) *float64 { return r.EnterpriseValueMultipleTTM }),
	}},
	{"Liquidity", []rowSpec[kr]{
		fixed("Current Ratio", func(r kr) *float64 { return r.CurrentRatioTTM }),
		fixed("Quick Ratio", func(r kr) *float64 { return r.QuickRatioTTM }),
		fixed("Cash Ratio", func(r kr) *float64 { return r.CashRatioTTM }),
		fixed("Days of Sales Outstanding", func(r kr) *float64 { return r.DaysOfSalesOutstandingTTM }),
		fixed("Days of Inventory Outstanding", func(r kr) *float64 { return r.DaysOfInventoryOutstandingTTM }),
	}},
	{"Debt & Coverage", []rowSpec[kr]{
		fixed("Debt to Equity", func(r kr) *float64 { return r.DebtEquityRatioTTM }),
		fixed("Debt to Assets", func(r kr) *float64 { return r.DebtRatioTTM }),
		fixed("Interest Coverage", func(r kr) *float64 { return r.InterestCoverageTTM }),
		pct("Dividend Payout Ratio", func(r kr) *float64 { return r.PayoutRatioTTM }),
		pct("Dividend Yield", func(r kr) *float64 { return r.DividendYieldTTM }),
	}},
}

type gm = model.GrowthMetrics

type growthGroup struct {
	title string
	rows  []rowSpec[gm]
}

var growthGroups = []growthGroup{
	{"Revenue & Profit Growth", []rowSpec[gm]{
		signed("Revenue Growth", func(g gm) *float64 { return g.RevenueGrowth }),
		signed("Gross Profit Growth", func(g gm) *float64 { return g.GrossProfitGrowth }),
		signed("EBIT Growth", func(g gm) *float64 { return g.EBITGrowth }),
		signed("Operating Income Growth", func(g gm) *float64 { return g.OperatingIncomeGrowth }),
		signed("Net Income Growth", func(g gm) *float64 { return g.NetIncomeGrowth }),
		signed("EPS Growth", func(g gm) *float64 { return g.EPSGrowth }),
	}},
	{"Cash Flow Growth", []rowSpec[gm]{
		signed("Operating Cash Flow Growth", func(g gm) *float64 { return g.OperatingCashFlowGrowth }),
		signed("Free Cash Flow Growth", func(g gm) *float64 { return g.FreeCashFlowGrowth }),
		signed("Capex Growth", func(g gm) *float64 { return g.CapitalExpenditureGrowth }),
		signed("Dividend per Share Growth", func(g gm) *float64 { return g.DividendsPerShareGrowth }),
	}},
	{"Balance Sheet Growth", []rowSpec[gm]{
		signed("Assets Growth", func(g gm) *float64 { return g.TotalAssetsGrowth }),
		signed("Debt Growth", func(g gm) *float64 { return g.DebtGrowth }),
		signed("Equity Growth", func(g gm) *float64 { return g.StockholdersEquityGrowth }),
		signed("Book Value per Share Growth", func(g gm) *float64 { return g.BookValuePerShareGrowth }),
	}},
}

// BuildCompanyPage resets s and fills it with the charts for b.
func BuildCompanyPage(s *Session, b *model.CompanyBundle) *CompanyPage {
	s.Reset()

	page := &CompanyPage{
		SessionID:   s.ID,
		Generation:  s.Generation(),
		Symbol:      b.Symbol,
		Name:        b.DisplayName(),
		GeneratedAt: time.Now().UTC(),
	}

	if p := b.LatestProfile(); p != nil {
		page.Profile = profileCard(p)
	} else {
		page.ProfileNote = "No company profile data available"
	}

	page.Sections = []Section{
		incomeSection(s, b.IncomeStatement),
		balanceSection(s, b.BalanceSheet),
		cashFlowSection(s, b.CashFlow),
		ratiosSection(b.LatestRatios()),
		growthSection(b.LatestGrowth()),
	}

	if n, err := analysis.Analyze(b); err == nil {
		page.Narrative = n
	} else {
		page.NarrativeNote = "Insufficient data for analysis"
	}

	return page
}

func profileCard(p *model.Profile) *ProfileCard {
	change := analysis.PriceChange(p)
	card := &ProfileCard{
		Name:        p.CompanyName,
		Symbol:      p.Symbol,
		Image:       p.Image,
		Price:       format.Price(p.Price),
		Change:      format.Price(p.Changes) + " (" + change.Percent() + ")",
		Description: p.Description,
	}
	if p.Changes >= 0 {
		card.ChangeClass = "positive"
	} else {
		card.ChangeClass = "negative"
	}

	exchange := p.ExchangeShortName
	if exchange == "" {
		exchange = p.Exchange
	}
	employees := format.NA
	if p.FullTimeEmployees > 0 {
		employees = format.Count(int64(p.FullTimeEmployees))
	}

	card.Fields = []Field{
		{Label: "Exchange", Value: format.Text(exchange)},
		{Label: "Sector", Value: format.Text(p.Sector)},
		{Label: "Industry", Value: format.Text(p.Industry)},
		{Label: "Market Cap", Value: format.Currency(p.MktCap)},
		{Label: "CEO", Value: format.Text(p.CEO)},
		{Label: "Website", Value: format.Text(p.Website), URL: p.Website},
		{Label: "Employees", Value: employees},
		{Label: "Country", Value: format.Text(p.Country)},
	}
	return card
}

func dates[T any](rows []T, date func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = date(r)
	}
	return out
}

func series[T any](rows []T, v func(T) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = format.Millions(v(r))
	}
	return out
}

func years(ds []string) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = format.Year(d)
	}
	return out
}

func incomeSection(s *Session, rows []is) Section {
	sec := Section{Key: "income", Title: "Income Statement"}
	if len(rows) == 0 {
		sec.Placeholder = "No income statement data available"
		return sec
	}
	cols := dates(rows, func(r is) string { return r.Date })
	sec.Chart = s.Place(Chart{
		Slot:   SlotIncome,
		Title:  "Revenue vs Net Income (in Millions)",
		Labels: years(cols),
		Datasets: []Dataset{
			dataset("Revenue", 0, series(rows, func(r is) float64 { return r.Revenue })),
			dataset("Net Income", 1, series(rows, func(r is) float64 { return r.NetIncome })),
		},
		BeginAtZero: true,
	})
	sec.Tables = []Table{{LabelHeader: "Fiscal Period", Columns: cols, Rows: buildRows(rows, incomeRows)}}
	return sec
}

func balanceSection(s *Session, rows []bs) Section {
	sec := Section{Key: "balance", Title: "Balance Sheet"}
	if len(rows) == 0 {
		sec.Placeholder = "No balance sheet data available"
		return sec
	}
	cols := dates(rows, func(r bs) string { return r.Date })
	sec.Chart = s.Place(Chart{
		Slot:   SlotBalance,
		Title:  "Assets, Liabilities & Equity (in Millions)",
		Labels: years(cols),
		Datasets: []Dataset{
			dataset("Total Assets", 0, series(rows, func(r bs) float64 { return r.TotalAssets })),
			dataset("Total Liabilities", 1, series(rows, func(r bs) float64 { return r.TotalLiabilities })),
			dataset("Total Equity", 2, series(rows, func(r bs) float64 { return r.TotalStockholdersEquity })),
		},
		BeginAtZero: true,
	})
	sec.Tables = []Table{{LabelHeader: "Fiscal Period", Columns: cols, Rows: buildRows(rows, balanceRows)}}
	return sec
}

func cashFlowSection(s *Session, rows []cf) Section {
	sec := Section{Key: "cashflow", Title: "Cash Flow"}
	if len(rows) == 0 {
		sec.Placeholder = "No cash flow data available"
		return sec
	}
	cols := dates(rows, func(r cf) string { return r.Date })
	sec.Chart = s.Place(Chart{
		Slot:   SlotCashFlow,
		Title:  "Cash Flow Components (in Millions)",
		Labels: years(cols),
		Datasets: []Dataset{
			dataset("Operating Cash Flow", 0, series(rows, func(r cf) float64 { return r.NetCashProvidedByOperatingActivities })),
			dataset("Investing Cash Flow", 1, series(rows, func(r cf) float64 { return r.NetCashUsedForInvestingActivities })),
			dataset("Financing Cash Flow", 2, series(rows, func(r cf) float64 { return r.NetCashUsedProvidedByFinancingActivities })),
		},
		BeginAtZero: false,
	})
	sec.Tables = []Table{{LabelHeader: "Fiscal Period", Columns: cols, Rows: buildRows(rows, cashFlowRows)}}
	return sec
}

func ratiosSection(r *model.KeyRatios) Section {
	sec := Section{Key: "ratios", Title: "Key Ratios"}
	if r == nil {
		sec.Placeholder = "No key ratios data available"
		return sec
	}
	for _, g := range ratioGroups {
		sec.Tables = append(sec.Tables, Table{Title: g.title, Rows: buildRows([]kr{*r}, g.rows)})
	}
	return sec
}

func growthSection(g *model.GrowthMetrics) Section {
	sec := Section{Key: "growth", Title: "Growth Metrics"}
	if g == nil {
		sec.Placeholder = "No growth metrics data available"
		return sec
	}
	for _, grp := range growthGroups {
		sec.Tables = append(sec.Tables, Table{Title: grp.title, Rows: buildRows([]gm{*g}, grp.rows)})
	}
	return sec
}
