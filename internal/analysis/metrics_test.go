package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/tickerlens/internal/model"
)

func TestDivide(t *testing.T) {
	assert.Equal(t, Ratio{Value: 0.5, OK: true}, Divide(1, 2))
	assert.False(t, Divide(1, 0).OK)
	assert.False(t, Divide(1, math.NaN()).OK)
	assert.False(t, Divide(math.NaN(), 2).OK)
	assert.False(t, Divide(1, math.Inf(1)).OK)
}

func TestRatioFormatting(t *testing.T) {
	assert.Equal(t, "25.00%", Divide(1, 4).Percent())
	assert.Equal(t, "0.25", Divide(1, 4).Fixed())
	assert.Equal(t, "N/A", Divide(1, 0).Percent())
	assert.Equal(t, "N/A", Unavailable.Fixed())
}

func TestIncomeMargins(t *testing.T) {
	is := &model.IncomeStatement{
		Revenue:          1000,
		GrossProfit:      400,
		OperatingIncome:  250,
		NetIncome:        200,
		IncomeBeforeTax:  240,
		IncomeTaxExpense: 40,
	}
	assert.InDelta(t, 0.4, GrossMargin(is).Value, 1e-9)
	assert.InDelta(t, 0.25, OperatingMargin(is).Value, 1e-9)
	assert.InDelta(t, 0.2, NetMargin(is).Value, 1e-9)
	assert.InDelta(t, 1.0/6.0, EffectiveTaxRate(is).Value, 1e-9)

	zero := &model.IncomeStatement{}
	assert.Equal(t, "N/A", GrossMargin(zero).Percent())
	assert.False(t, NetMargin(nil).OK)
}

func TestBalanceMetrics(t *testing.T) {
	bs := &model.BalanceSheet{
		TotalCurrentAssets:      300,
		TotalCurrentLiabilities: 200,
		TotalDebt:               500,
		TotalStockholdersEquity: 1000,
		CashAndCashEquivalents:  100,
		TotalAssets:             2000,
	}
	assert.InDelta(t, 0.5, DebtToEquity(bs).Value, 1e-9)
	assert.InDelta(t, 1.5, CurrentRatio(bs).Value, 1e-9)
	assert.InDelta(t, 0.05, CashToAssets(bs).Value, 1e-9)
	assert.Equal(t, float64(100), WorkingCapital(bs))
	assert.Equal(t, float64(400), NetDebt(bs))

	assert.False(t, DebtToEquity(&model.BalanceSheet{TotalDebt: 10}).OK)
}

func TestCashFlowMetrics(t *testing.T) {
	cf := &model.CashFlow{NetCashProvidedByOperatingActivities: 300, FreeCashFlow: 50}
	is := &model.IncomeStatement{Revenue: 1000, NetIncome: 150}

	assert.InDelta(t, 0.05, FCFYield(cf, 1000).Value, 1e-9)
	assert.InDelta(t, 2.0, CashFlowToNetIncome(cf, is).Value, 1e-9)
	assert.InDelta(t, 0.3, OperatingCashFlowMargin(cf, is).Value, 1e-9)
	assert.False(t, FCFYield(cf, 0).OK)
	assert.False(t, CashFlowToNetIncome(cf, nil).OK)
}

func TestPriceChange(t *testing.T) {
	assert.InDelta(t, 0.02, PriceChange(&model.Profile{Price: 100, Changes: 2}).Value, 1e-9)
	assert.False(t, PriceChange(&model.Profile{}).OK)
}
