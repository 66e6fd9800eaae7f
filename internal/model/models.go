package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ── Company data (Financial Modeling Prep shapes) ──────

// Count decodes integers that the API sometimes sends as quoted strings.
type Count int64

func (n *Count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Count(v)
	return nil
}

type Profile struct {
	Symbol            string   `json:"symbol"`
	CompanyName       string   `json:"companyName"`
	Price             float64  `json:"price"`
	Changes           float64  `json:"changes"`
	MktCap            float64  `json:"mktCap"`
	Beta              *float64 `json:"beta"`
	LastDiv           *float64 `json:"lastDiv"`
	PE                *float64 `json:"pe,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	Currency          string   `json:"currency"`
	Exchange          string   `json:"exchange"`
	ExchangeShortName string   `json:"exchangeShortName"`
	Sector            string   `json:"sector"`
	Industry          string   `json:"industry"`
	Description       string   `json:"description"`
	CEO               string   `json:"ceo"`
	Website           string   `json:"website"`
	Country           string   `json:"country"`
	FullTimeEmployees Count    `json:"fullTimeEmployees"`
	Image             string   `json:"image"`
}

type IncomeStatement struct {
	Date                                    string  `json:"date"`
	Revenue                                 float64 `json:"revenue"`
	CostOfRevenue                           float64 `json:"costOfRevenue"`
	GrossProfit                             float64 `json:"grossProfit"`
	ResearchAndDevelopmentExpenses          float64 `json:"researchAndDevelopmentExpenses"`
	SellingGeneralAndAdministrativeExpenses float64 `json:"sellingGeneralAndAdministrativeExpenses"`
	OperatingExpenses                       float64 `json:"operatingExpenses"`
	OperatingIncome                         float64 `json:"operatingIncome"`
	InterestExpense                         float64 `json:"interestExpense"`
	IncomeBeforeTax                         float64 `json:"incomeBeforeTax"`
	IncomeTaxExpense                        float64 `json:"incomeTaxExpense"`
	NetIncome                               float64 `json:"netIncome"`
	EPS                                     float64 `json:"eps"`
	EPSDiluted                              float64 `json:"epsdiluted"`
	WeightedAverageShsOut                   float64 `json:"weightedAverageShsOut"`
}

type BalanceSheet struct {
	Date                      string  `json:"date"`
	CashAndCashEquivalents    float64 `json:"cashAndCashEquivalents"`
	ShortTermInvestments      float64 `json:"shortTermInvestments"`
	NetReceivables            float64 `json:"netReceivables"`
	Inventory                 float64 `json:"inventory"`
	TotalCurrentAssets        float64 `json:"totalCurrentAssets"`
	PropertyPlantEquipmentNet float64 `json:"propertyPlantEquipmentNet"`
	LongTermInvestments       float64 `json:"longTermInvestments"`
	Goodwill                  float64 `json:"goodwill"`
	IntangibleAssets          float64 `json:"intangibleAssets"`
	TotalAssets               float64 `json:"totalAssets"`
	AccountPayables           float64 `json:"accountPayables"`
	ShortTermDebt             float64 `json:"shortTermDebt"`
	TotalCurrentLiabilities   float64 `json:"totalCurrentLiabilities"`
	LongTermDebt              float64 `json:"longTermDebt"`
	TotalLiabilities          float64 `json:"totalLiabilities"`
	CommonStock               float64 `json:"commonStock"`
	RetainedEarnings          float64 `json:"retainedEarnings"`
	TotalStockholdersEquity   float64 `json:"totalStockholdersEquity"`
	TotalDebt                 float64 `json:"totalDebt"`
}

type CashFlow struct {
	Date                                     string  `json:"date"`
	NetIncome                                float64 `json:"netIncome"`
	DepreciationAndAmortization              float64 `json:"depreciationAndAmortization"`
	ChangeInWorkingCapital                   float64 `json:"changeInWorkingCapital"`
	NetCashProvidedByOperatingActivities     float64 `json:"netCashProvidedByOperatingActivities"`
	CapitalExpenditure                       float64 `json:"capitalExpenditure"`
	AcquisitionsNet                          float64 `json:"acquisitionsNet"`
	PurchasesOfInvestments                   float64 `json:"purchasesOfInvestments"`
	SalesMaturitiesOfInvestments             float64 `json:"salesMaturitiesOfInvestments"`
	NetCashUsedForInvestingActivities        float64 `json:"netCashUsedForInvestingActivites"` // sic, upstream field name
	DebtRepayment                            float64 `json:"debtRepayment"`
	CommonStockIssued                        float64 `json:"commonStockIssued"`
	CommonStockRepurchased                   float64 `json:"commonStockRepurchased"`
	DividendsPaid                            float64 `json:"dividendsPaid"`
	NetCashUsedProvidedByFinancingActivities float64 `json:"netCashUsedProvidedByFinancingActivities"`
	NetChangeInCash                          float64 `json:"netChangeInCash"`
	FreeCashFlow                             float64 `json:"freeCashFlow"`
}

// KeyRatios is the trailing-twelve-month ratio snapshot. Any field may be null upstream.
type KeyRatios struct {
	ReturnOnEquityTTM             *float64 `json:"returnOnEquityTTM"`
	ReturnOnAssetsTTM             *float64 `json:"returnOnAssetsTTM"`
	NetProfitMarginTTM            *float64 `json:"netProfitMarginTTM"`
	OperatingProfitMarginTTM      *float64 `json:"operatingProfitMarginTTM"`
	GrossProfitMarginTTM          *float64 `json:"grossProfitMarginTTM"`
	PERatioTTM                    *float64 `json:"peRatioTTM"`
	PEGRatioTTM                   *float64 `json:"pegRatioTTM"`
	PriceToBookRatioTTM           *float64 `json:"priceToBookRatioTTM"`
	PriceToSalesRatioTTM          *float64 `json:"priceToSalesRatioTTM"`
	EnterpriseValueMultipleTTM    *float64 `json:"enterpriseValueMultipleTTM"`
	CurrentRatioTTM               *float64 `json:"currentRatioTTM"`
	QuickRatioTTM                 *float64 `json:"quickRatioTTM"`
	CashRatioTTM                  *float64 `json:"cashRatioTTM"`
	DaysOfSalesOutstandingTTM     *float64 `json:"daysOfSalesOutstandingTTM"`
	DaysOfInventoryOutstandingTTM *float64 `json:"daysOfInventoryOutstandingTTM"`
	DebtEquityRatioTTM            *float64 `json:"debtEquityRatioTTM"`
	DebtRatioTTM                  *float64 `json:"debtRatioTTM"`
	InterestCoverageTTM           *float64 `json:"interestCoverageTTM"`
	PayoutRatioTTM                *float64 `json:"payoutRatioTTM"`
	DividendYieldTTM              *float64 `json:"dividendYieldTTM"`
}

type GrowthMetrics struct {
	Date                     string   `json:"date"`
	RevenueGrowth            *float64 `json:"revenueGrowth"`
	GrossProfitGrowth        *float64 `json:"grossProfitGrowth"`
	EBITGrowth               *float64 `json:"ebitgrowth"`
	OperatingIncomeGrowth    *float64 `json:"operatingIncomeGrowth"`
	NetIncomeGrowth          *float64 `json:"netIncomeGrowth"`
	EPSGrowth                *float64 `json:"epsgrowth"`
	OperatingCashFlowGrowth  *float64 `json:"operatingCashFlowGrowth"`
	FreeCashFlowGrowth       *float64 `json:"freeCashFlowGrowth"`
	CapitalExpenditureGrowth *float64 `json:"capitalExpenditureGrowth"`
	DividendsPerShareGrowth  *float64 `json:"dividendsperShareGrowth"`
	TotalAssetsGrowth        *float64 `json:"totalAssetsGrowth"`
	DebtGrowth               *float64 `json:"debtGrowth"`
	StockholdersEquityGrowth *float64 `json:"stockholdersEquityGrowth"`
	BookValuePerShareGrowth  *float64 `json:"bookValueperShareGrowth"`
}

// CompanyBundle is everything fetched for one ticker. Dated slices are ordered
// newest first once Normalize has run, and the bundle is not mutated afterwards.
type CompanyBundle struct {
	Symbol          string            `json:"symbol"`
	Profile         []Profile         `json:"profile"`
	IncomeStatement []IncomeStatement `json:"incomeStatement"`
	BalanceSheet    []BalanceSheet    `json:"balanceSheet"`
	CashFlow        []CashFlow        `json:"cashFlow"`
	KeyRatios       []KeyRatios       `json:"keyRatios"`
	GrowthMetrics   []GrowthMetrics   `json:"growthMetrics"`
	FetchedAt       time.Time         `json:"fetchedAt"`
}

// Normalize sorts every dated slice newest first, drops repeated dates and
// keeps at most limit rows. A limit below 1 keeps everything.
func (b *CompanyBundle) Normalize(limit int) {
	b.IncomeStatement = newestFirst(b.IncomeStatement, func(s IncomeStatement) string { return s.Date }, limit)
	b.BalanceSheet = newestFirst(b.BalanceSheet, func(s BalanceSheet) string { return s.Date }, limit)
	b.CashFlow = newestFirst(b.CashFlow, func(s CashFlow) string { return s.Date }, limit)
	b.GrowthMetrics = newestFirst(b.GrowthMetrics, func(s GrowthMetrics) string { return s.Date }, limit)
}

func newestFirst[T any](rows []T, date func(T) string, limit int) []T {
	seen := make(map[string]bool, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		d := date(r)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return DateAfter(date(out[i]), date(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DateAfter reports whether a is later than b. Dates are YYYY-MM-DD; anything
// unparseable falls back to string comparison.
func DateAfter(a, b string) bool {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA != nil || errB != nil {
		return a > b
	}
	return ta.After(tb)
}

func (b *CompanyBundle) LatestProfile() *Profile {
	if len(b.Profile) == 0 {
		return nil
	}
	return &b.Profile[0]
}

func (b *CompanyBundle) LatestIncome() *IncomeStatement {
	if len(b.IncomeStatement) == 0 {
		return nil
	}
	return &b.IncomeStatement[0]
}

func (b *CompanyBundle) LatestBalance() *BalanceSheet {
	if len(b.BalanceSheet) == 0 {
		return nil
	}
	return &b.BalanceSheet[0]
}

func (b *CompanyBundle) LatestCashFlow() *CashFlow {
	if len(b.CashFlow) == 0 {
		return nil
	}
	return &b.CashFlow[0]
}

func (b *CompanyBundle) LatestRatios() *KeyRatios {
	if len(b.KeyRatios) == 0 {
		return nil
	}
	return &b.KeyRatios[0]
}

func (b *CompanyBundle) LatestGrowth() *GrowthMetrics {
	if len(b.GrowthMetrics) == 0 {
		return nil
	}
	return &b.GrowthMetrics[0]
}

// DisplayName prefers the company name, falling back to the symbol.
func (b *CompanyBundle) DisplayName() string {
	if p := b.LatestProfile(); p != nil && p.CompanyName != "" {
		return p.CompanyName
	}
	return b.Symbol
}

// ── Search history ─────────────────────────────────────

const (
	SearchKindCompany = "company"
	SearchKindCompare = "compare"
)

// SearchRecord is one lookup or comparison persisted for the history view.
type SearchRecord struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"userId"` // Firebase UID, "" for anonymous
	Kind      string          `json:"kind"`
	Tickers   []string        `json:"tickers"`
	Succeeded bool            `json:"succeeded"`
	Errors    json.RawMessage `json:"errors,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
