package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tickerlens/internal/model"
)

func f(v float64) *float64 { return &v }

type fixture struct {
	roe, revGrowth, niGrowth, de, pe, currentRatio *float64
	fcf, netIncome                                 float64
}

func bundleFor(symbol, name string, fx fixture) *model.CompanyBundle {
	return &model.CompanyBundle{
		Symbol:  symbol,
		Profile: []model.Profile{{Symbol: symbol, CompanyName: name, Sector: "Technology", Industry: "Consumer Electronics"}},
		IncomeStatement: []model.IncomeStatement{
			{Date: "2023-09-30", Revenue: 383e9, NetIncome: fx.netIncome},
		},
		BalanceSheet: []model.BalanceSheet{{Date: "2023-09-30"}},
		CashFlow:     []model.CashFlow{{Date: "2023-09-30", FreeCashFlow: fx.fcf}},
		KeyRatios: []model.KeyRatios{{
			ReturnOnEquityTTM:  fx.roe,
			DebtEquityRatioTTM: fx.de,
			PERatioTTM:         fx.pe,
			CurrentRatioTTM:    fx.currentRatio,
		}},
		GrowthMetrics: []model.GrowthMetrics{{
			Date:            "2023-09-30",
			RevenueGrowth:   fx.revGrowth,
			NetIncomeGrowth: fx.niGrowth,
		}},
	}
}

func titles(in []Insight) []string {
	var out []string
	for _, i := range in {
		out = append(out, i.Title)
	}
	return out
}

func TestAnalyze_StrongCompany(t *testing.T) {
	b := bundleFor("ACME", "Acme Corp", fixture{
		roe: f(0.20), revGrowth: f(0.12), niGrowth: f(0.15), de: f(0.3), pe: f(8), currentRatio: f(1.8),
		fcf: 120e9, netIncome: 100e9,
	})

	n, err := Analyze(b)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(n.Specific()), 5)
	assert.Equal(t, OutlookStrong, n.Outlook)
	assert.Contains(t, n.Summary, "a strong financial profile")
	assert.Equal(t, []string{
		"Strong Profitability",
		"Solid Revenue Growth",
		"Improving Efficiency",
		"Strong Balance Sheet",
		"Excellent Cash Generation",
		"Potential Value Opportunity",
	}, titles(n.Insights))
	assert.Contains(t, n.Insights[0].Text, "20.00%")
}

func TestAnalyze_ConcernsAndFiller(t *testing.T) {
	b := bundleFor("WEAK", "Weak Inc", fixture{
		roe: f(0.02), revGrowth: f(0.01), niGrowth: f(-0.3), de: f(1.0), pe: f(15), currentRatio: f(0.8),
		fcf: -5e6, netIncome: 2e6,
	})

	n, err := Analyze(b)
	require.NoError(t, err)

	assert.Equal(t, []string{"Profitability Concerns", "Cash Flow Concerns", "", ""}, titles(n.Insights))
	assert.Contains(t, n.Insights[2].Text, "Technology sector")
	assert.Contains(t, n.Insights[3].Text, "$383.00B")
	assert.Equal(t, OutlookMixed, n.Outlook)
}

func TestAnalyze_OutlookVariants(t *testing.T) {
	growthProfit := bundleFor("GP", "GP", fixture{
		roe: f(0.12), revGrowth: f(0.08), niGrowth: f(0.02), de: f(1.8), currentRatio: f(1.2),
	})
	n, err := Analyze(growthProfit)
	require.NoError(t, err)
	assert.Equal(t, OutlookGrowthProfit, n.Outlook)

	stable := bundleFor("ST", "ST", fixture{
		roe: f(0.08), revGrowth: f(0.01), niGrowth: f(0.01), de: f(0.9), currentRatio: f(1.5),
	})
	n, err = Analyze(stable)
	require.NoError(t, err)
	assert.Equal(t, OutlookStable, n.Outlook)
	assert.Contains(t, n.Summary, "relatively stable financial position")
}

func TestAnalyze_MissingRatiosDoNotFire(t *testing.T) {
	b := bundleFor("NUL", "Null Co", fixture{})

	n, err := Analyze(b)
	require.NoError(t, err)
	assert.Empty(t, n.Specific())
	assert.Len(t, n.Insights, 2)
	assert.Equal(t, OutlookMixed, n.Outlook)
}

func TestAnalyze_PremiumAndLeverage(t *testing.T) {
	b := bundleFor("HYPE", "Hype Co", fixture{roe: f(0.1), de: f(2.5), pe: f(45), fcf: 1, netIncome: 1})

	n, err := Analyze(b)
	require.NoError(t, err)
	assert.Contains(t, titles(n.Insights), "High Leverage Risk")
	assert.Contains(t, titles(n.Insights), "Premium Valuation")
}

func TestAnalyze_InsufficientData(t *testing.T) {
	b := bundleFor("X", "X", fixture{})
	b.KeyRatios = nil

	_, err := Analyze(b)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Analyze(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestNarrative_Markdown(t *testing.T) {
	b := bundleFor("ACME", "Acme Corp", fixture{roe: f(0.2)})
	n, err := Analyze(b)
	require.NoError(t, err)

	md := n.Markdown()
	assert.Contains(t, md, "### Key Insights")
	assert.Contains(t, md, "- **Strong Profitability:**")
	assert.Contains(t, md, "*Note: This analysis is generated automatically")
}

func TestOutlook_MarshalText(t *testing.T) {
	b, err := OutlookStrong.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "strong", string(b))
}
