package analysis

import (
	"math"

	"github.com/yourusername/tickerlens/internal/format"
	"github.com/yourusername/tickerlens/internal/model"
)

// Ratio is a derived figure that may be unavailable, e.g. when its
// denominator is zero. Unavailable ratios display as N/A.
type Ratio struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// Unavailable is the zero Ratio.
var Unavailable = Ratio{}

// Divide returns num/den, or Unavailable when the quotient is undefined.
func Divide(num, den float64) Ratio {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return Unavailable
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return Ratio{Value: v, OK: true}
}

// Percent formats the ratio as a percentage.
func (r Ratio) Percent() string {
	if !r.OK {
		return format.NA
	}
	return format.Percent(r.Value)
}

// Fixed formats the ratio with two decimals.
func (r Ratio) Fixed() string {
	if !r.OK {
		return format.NA
	}
	return format.Fixed(r.Value)
}

// ── Income statement ───────────────────────────────────

func GrossMargin(is *model.IncomeStatement) Ratio {
	if is == nil {
		return Unavailable
	}
	return Divide(is.GrossProfit, is.Revenue)
}

func OperatingMargin(is *model.IncomeStatement) Ratio {
	if is == nil {
		return Unavailable
	}
	return Divide(is.OperatingIncome, is.Revenue)
}

func NetMargin(is *model.IncomeStatement) Ratio {
	if is == nil {
		return Unavailable
	}
	return Divide(is.NetIncome, is.Revenue)
}

func EffectiveTaxRate(is *model.IncomeStatement) Ratio {
	if is == nil {
		return Unavailable
	}
	return Divide(is.IncomeTaxExpense, is.IncomeBeforeTax)
}

// ── Balance sheet ──────────────────────────────────────

// DebtToEquity uses total debt over stockholders' equity.
func DebtToEquity(bs *model.BalanceSheet) Ratio {
	if bs == nil {
		return Unavailable
	}
	return Divide(bs.TotalDebt, bs.TotalStockholdersEquity)
}

func CurrentRatio(bs *model.BalanceSheet) Ratio {
	if bs == nil {
		return Unavailable
	}
	return Divide(bs.TotalCurrentAssets, bs.TotalCurrentLiabilities)
}

func CashToAssets(bs *model.BalanceSheet) Ratio {
	if bs == nil {
		return Unavailable
	}
	return Divide(bs.CashAndCashEquivalents, bs.TotalAssets)
}

func WorkingCapital(bs *model.BalanceSheet) float64 {
	return bs.TotalCurrentAssets - bs.TotalCurrentLiabilities
}

func NetDebt(bs *model.BalanceSheet) float64 {
	return bs.TotalDebt - bs.CashAndCashEquivalents
}

// ── Cash flow ──────────────────────────────────────────

// FCFYield is free cash flow over market capitalisation.
func FCFYield(cf *model.CashFlow, marketCap float64) Ratio {
	if cf == nil {
		return Unavailable
	}
	return Divide(cf.FreeCashFlow, marketCap)
}

// CashFlowToNetIncome compares operating cash flow with reported earnings.
func CashFlowToNetIncome(cf *model.CashFlow, is *model.IncomeStatement) Ratio {
	if cf == nil || is == nil {
		return Unavailable
	}
	return Divide(cf.NetCashProvidedByOperatingActivities, is.NetIncome)
}

func OperatingCashFlowMargin(cf *model.CashFlow, is *model.IncomeStatement) Ratio {
	if cf == nil || is == nil {
		return Unavailable
	}
	return Divide(cf.NetCashProvidedByOperatingActivities, is.Revenue)
}

// PriceChange is the day's change as a fraction of the current price.
func PriceChange(p *model.Profile) Ratio {
	if p == nil {
		return Unavailable
	}
	return Divide(p.Changes, p.Price)
}
